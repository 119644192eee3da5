// Copyright 2025 TiKV Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package maploader

import (
	"time"

	"github.com/google/uuid"
	"github.com/tikv/tileloader/internal/logutil"
	"github.com/tikv/tileloader/metrics"
	"github.com/tikv/tileloader/platform"
	"github.com/tikv/tileloader/tasks"
	"go.uber.org/zap"
)

// taskContentLoader is the ContentLoader a MapLoaderTask hands its state
// machine.
type taskContentLoader struct {
	platform.Platform
	id      uuid.UUID
	file    string
	fillers MapFillers
	waits   []tasks.BackgroundTask
}

func (l *taskContentLoader) DelayRequired() bool { return len(l.waits) > 0 }

func (l *taskContentLoader) WaitOn(t tasks.BackgroundTask) { l.waits = append(l.waits, t) }

func (l *taskContentLoader) AddWarning(kind WarningKind) {
	metrics.MapLoadWarningCounter.WithLabelValues(kind.String()).Inc()
	logutil.BgLogger().Debug("map load warning",
		zap.Stringer("task-id", l.id), zap.String("file", l.file), zap.Stringer("kind", kind))
}

func (l *taskContentLoader) MapFillers() MapFillers { return l.fillers }

func (l *taskContentLoader) takeWaits() []tasks.BackgroundTask {
	waits := l.waits
	l.waits = nil
	return waits
}

// MapLoaderTask is a background task loading one map file.
type MapLoaderTask struct {
	id      uuid.UUID
	file    string
	loader  *taskContentLoader
	machine *MapLoadStateMachine
	started time.Time

	done   bool
	region *MapRegion
	err    error
}

// NewMapLoaderTask creates a task loading filename through plat. The file is
// requested right away.
func NewMapLoaderTask(filename string, plat platform.Platform, fillers MapFillers) *MapLoaderTask {
	id := uuid.New()
	return &MapLoaderTask{
		id:      id,
		file:    filename,
		loader:  &taskContentLoader{Platform: plat, id: id, file: filename, fillers: fillers},
		machine: NewMapLoadStateMachine(plat, filename),
		started: time.Now(),
	}
}

// ID identifies the task in logs.
func (t *MapLoaderTask) ID() uuid.UUID { return t.id }

// Filename returns the map being loaded.
func (t *MapLoaderTask) Filename() string { return t.file }

// InBackground implements tasks.BackgroundTask.
func (t *MapLoaderTask) InBackground(_ tasks.Callbacks, strat tasks.ContinuationStrategy) tasks.Continuation {
	if t.done {
		return strat.FinishTask()
	}
	res := t.machine.UpdateProgress(t.loader)
	if res.IsEmpty() {
		c := strat.Continue()
		for _, w := range t.loader.takeWaits() {
			c.WaitOn(w)
		}
		return *c
	}
	t.done = true
	t.region, t.err = res.Region(), res.Err()
	t.machine.Close()

	elapsed := time.Since(t.started)
	if t.err != nil {
		metrics.MapLoadDurationErr.Observe(elapsed.Seconds())
		logutil.BgLogger().Warn("map load failed",
			zap.Stringer("task-id", t.id), zap.String("file", t.file),
			zap.Duration("duration", elapsed), zap.Error(t.err))
	} else {
		metrics.MapLoadDurationOK.Observe(elapsed.Seconds())
		logutil.BgLogger().Info("map loaded",
			zap.Stringer("task-id", t.id), zap.String("file", t.file),
			zap.Duration("duration", elapsed),
			zap.Int("width", t.region.Width()), zap.Int("height", t.region.Height()),
			zap.Int("producables", t.region.ProducableCount()),
			zap.Int("warnings", len(t.region.Warnings())))
	}
	return strat.FinishTask()
}

// Done reports whether loading has finished.
func (t *MapLoaderTask) Done() bool { return t.done }

// Result returns the loaded region or the loading error. Before the task has
// finished it returns ErrNotFinished.
func (t *MapLoaderTask) Result() (*MapRegion, error) {
	if !t.done {
		return nil, ErrNotFinished
	}
	return t.region, t.err
}
