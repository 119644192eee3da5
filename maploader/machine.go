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
	"context"

	"github.com/tikv/tileloader/internal/logutil"
	"github.com/tikv/tileloader/metrics"
	"github.com/tikv/tileloader/platform"
	"github.com/tikv/tileloader/statemachine"
	"github.com/tikv/tileloader/tasks"
	"github.com/tikv/tileloader/trace"
	"go.uber.org/zap"
)

// ContentLoader is what map loading states need from their host.
type ContentLoader interface {
	platform.Platform
	// DelayRequired reports whether the caller has to yield before the
	// state machine may continue, which is the case while waits are pending.
	DelayRequired() bool
	// WaitOn makes the hosting task wait on t before its next step.
	WaitOn(t tasks.BackgroundTask)
	// AddWarning reports a recoverable problem.
	AddWarning(kind WarningKind)
	// MapFillers returns the fillers tile kinds are produced with.
	MapFillers() MapFillers
}

// MapLoadStateMachine drives loading of one map file.
type MapLoadStateMachine struct {
	driver statemachine.Driver[BaseState]
}

// NewMapLoadStateMachine starts fetching filename from plat.
func NewMapLoadStateMachine(plat platform.Platform, filename string) *MapLoadStateMachine {
	m := &MapLoadStateMachine{}
	m.driver.SetCurrentState(&FileContentsWaitState{
		baseState: baseState{sh: sharedState{filename: filename}},
		contents:  plat.PromiseFileContents(filename),
	})
	return m
}

// UpdateProgress advances through as many states as can complete without
// waiting. The result is empty while loading continues.
func (m *MapLoadStateMachine) UpdateProgress(loader ContentLoader) MapLoadResult {
	for {
		sw := m.driver.StateSwitcher()
		res := m.driver.OnAdvanceable(onAdvance).Advance().Current().UpdateProgress(sw, loader)
		if !res.IsEmpty() || loader.DelayRequired() || !m.driver.IsAdvanceable() {
			return res
		}
	}
}

// State returns the current state.
func (m *MapLoadStateMachine) State() BaseState {
	return m.driver.Current()
}

// IsExpired reports whether the machine has produced its result.
func (m *MapLoadStateMachine) IsExpired() bool {
	_, ok := m.driver.Current().(*ExpiredState)
	return ok
}

// Close releases the held states.
func (m *MapLoadStateMachine) Close() {
	m.driver.Close()
}

func onAdvance(current, next BaseState) {
	copySharedState(current, next)
	metrics.MapLoadStateTransitions.WithLabelValues(next.Name()).Inc()
	file := current.shared().filename
	if trace.IsCategoryEnabled(trace.CategoryMapLoad) {
		trace.TraceEvent(context.Background(), trace.CategoryMapLoad, "map-load.advance",
			zap.String("file", file), zap.String("from", current.Name()), zap.String("to", next.Name()))
	}
	logutil.BgLogger().Debug("map load state advanced",
		zap.String("file", file), zap.String("from", current.Name()), zap.String("to", next.Name()))
}
