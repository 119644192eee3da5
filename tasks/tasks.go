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

// Package tasks defines the contracts between the frame-driven scheduler and
// the engine code that feeds it work.
package tasks

import (
	"github.com/tikv/tileloader/platform"
)

// BackgroundTask is a unit of cooperative work stepped once per scheduling
// pass until it reports that it has finished. Tasks are tracked by identity,
// so implementations must be comparable; pointer receivers are the norm.
type BackgroundTask interface {
	// InBackground performs one step of work and reports how the scheduler
	// should proceed. The returned value must come from strat.
	InBackground(cb Callbacks, strat ContinuationStrategy) Continuation
}

// EveryFrameTask is called once per frame for as long as its handle stays
// registered.
type EveryFrameTask interface {
	OnEveryFrame(cb Callbacks, elapsed float64)
}

// LoaderTask runs exactly once, on the frame after it was registered.
type LoaderTask interface {
	Run(cb Callbacks)
}

// Callbacks is the registration surface handed to running tasks.
type Callbacks interface {
	// AddEveryFrameTask registers t and returns the handle that unregisters it.
	// A nil task yields a nil handle.
	AddEveryFrameTask(t EveryFrameTask) *EveryFrameHandle
	AddLoaderTask(t LoaderTask)
	AddBackgroundTask(t BackgroundTask)
	AddEntity(e Entity)
	AddTriangleLink(l *TriangleLink) error
	RemoveTriangleLink(l *TriangleLink) error
	// Platform returns the platform assigned by the host.
	Platform() (platform.Platform, error)
}

// EveryFrameHandle ties an every-frame task to its registration. Once
// Unregister is called the scheduler drops the task before its next frame.
type EveryFrameHandle struct {
	task         EveryFrameTask
	unregistered bool
}

// NewEveryFrameHandle creates a registered handle for t.
func NewEveryFrameHandle(t EveryFrameTask) *EveryFrameHandle {
	return &EveryFrameHandle{task: t}
}

// Task returns the task behind the handle.
func (h *EveryFrameHandle) Task() EveryFrameTask {
	return h.task
}

// Unregister marks the task for removal. It is safe to call more than once.
func (h *EveryFrameHandle) Unregister() {
	h.unregistered = true
}

// Registered reports whether the task should still run.
func (h *EveryFrameHandle) Registered() bool {
	return h != nil && !h.unregistered
}

// Entity is a scene object. Entities that also implement EveryFrameCarrier or
// BackgroundCarrier get those tasks registered when the entity is added.
type Entity interface {
	Name() string
}

// EveryFrameCarrier is an entity component holding an every-frame task.
type EveryFrameCarrier interface {
	EveryFrameTask() EveryFrameTask
	// BindEveryFrameHandle receives the handle created for the task.
	BindEveryFrameHandle(h *EveryFrameHandle)
}

// BackgroundCarrier is an entity component holding a background task. The
// task is taken out of the entity when the entity is registered.
type BackgroundCarrier interface {
	TakeBackgroundTask() BackgroundTask
}

// Vector is a point in world space.
type Vector [3]float64

// TriangleLink is a walkable triangle handed to the point-and-plane driver.
type TriangleLink struct {
	A, B, C Vector
}
