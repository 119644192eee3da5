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

package scheduler

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/logutil"
	"github.com/tikv/tileloader/metrics"
	"github.com/tikv/tileloader/tasks"
	"go.uber.org/zap"
)

// TaskSource hands over newly registered tasks.
type TaskSource interface {
	EveryFrameTasks() []*tasks.EveryFrameHandle
	LoaderTasks() []tasks.LoaderTask
	BackgroundTasks() []tasks.BackgroundTask
	ClearAll()
}

// RunableTasks groups every-frame tasks, one-shot loader tasks and the
// background scheduler behind one per-frame entry point.
type RunableTasks struct {
	everyFrame []*tasks.EveryFrameHandle
	loaders    []tasks.LoaderTask
	background *RunableBackgroundTasks
}

// NewRunableTasks creates an empty RunableTasks.
func NewRunableTasks() *RunableTasks {
	return &RunableTasks{background: NewRunableBackgroundTasks()}
}

// Background returns the background scheduler.
func (r *RunableTasks) Background() *RunableBackgroundTasks {
	return r.background
}

// EveryFrameLen returns the number of every-frame tasks kept.
func (r *RunableTasks) EveryFrameLen() int {
	return len(r.everyFrame)
}

// LoaderLen returns the number of loader tasks waiting to run.
func (r *RunableTasks) LoaderLen() int {
	return len(r.loaders)
}

// RunExistingTasks runs one frame: unregistered every-frame tasks are dropped,
// the rest see elapsed, loader tasks run once and are discarded, then the
// background scheduler runs a pass.
func (r *RunableTasks) RunExistingTasks(cb tasks.Callbacks, elapsed float64) error {
	r.pruneEveryFrame()
	for _, h := range r.everyFrame {
		// a task run earlier this frame may have unregistered it
		if h.Registered() {
			h.Task().OnEveryFrame(cb, elapsed)
		}
	}
	metrics.EveryFrameTaskGauge.Set(float64(len(r.everyFrame)))

	loaders := r.loaders
	r.loaders = nil
	for _, t := range loaders {
		t.Run(cb)
		metrics.LoaderTaskCounter.Inc()
	}
	return r.background.RunPass(cb)
}

// ReplaceTasksWith takes every task of src, which is cleared. Background
// tasks held here must have been moved out by TakeTasksFrom. outer is the
// RunableTasks running beside this one, or nil. A background task already
// scheduled in outer, or registered twice, is ignored so it never steps twice
// in one frame. A task AddTask rejects is dropped and the first such error
// is returned once the other tasks are taken. Until TakeTasksFrom, tasks
// spawned here may not wait on tasks scheduled in outer.
func (r *RunableTasks) ReplaceTasksWith(src TaskSource, outer *RunableTasks) error {
	if !r.background.IsEmpty() {
		return errors.Annotatef(ErrInvalidArgument, "%d background tasks were not taken", r.BackgroundLen())
	}
	background := NewRunableBackgroundTasks()
	if outer != nil && outer != r {
		background.outer = outer.background
	}
	var firstErr error
	for _, t := range src.BackgroundTasks() {
		if background.HasTask(t) {
			logutil.BgLogger().Warn("ignored background task that is already scheduled",
				zap.String("task", fmt.Sprintf("%T", t)))
			metrics.SchedulerStepDuplicate.Inc()
			continue
		}
		if err := background.AddTask(t); err != nil && firstErr == nil {
			firstErr = errors.Trace(err)
		}
	}
	r.everyFrame = append([]*tasks.EveryFrameHandle(nil), src.EveryFrameTasks()...)
	r.loaders = append([]tasks.LoaderTask(nil), src.LoaderTasks()...)
	r.background = background
	src.ClearAll()
	return firstErr
}

// BackgroundLen returns the number of running, staged and parked background
// tasks.
func (r *RunableTasks) BackgroundLen() int {
	bg := r.background
	return bg.Len() + bg.StagedLen() + bg.ParkedLen()
}

// TakeTasksFrom moves every task of other after the tasks held here.
func (r *RunableTasks) TakeTasksFrom(other *RunableTasks) error {
	if err := r.background.CombineTasksWith(other.background); err != nil {
		return errors.Trace(err)
	}
	r.everyFrame = append(r.everyFrame, other.everyFrame...)
	r.loaders = append(r.loaders, other.loaders...)
	other.everyFrame = nil
	other.loaders = nil
	other.background.outer = nil
	return nil
}

func (r *RunableTasks) pruneEveryFrame() {
	kept := r.everyFrame[:0]
	for _, h := range r.everyFrame {
		if h.Registered() {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(r.everyFrame); i++ {
		r.everyFrame[i] = nil
	}
	r.everyFrame = kept
}
