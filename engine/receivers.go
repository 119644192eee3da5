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

// Package engine is the registration surface engine code uses to hand work to
// the frame-driven scheduler.
package engine

import (
	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/platform"
	"github.com/tikv/tileloader/tasks"
)

var (
	// ErrNoPlatform is returned by Platform before AssignPlatform.
	ErrNoPlatform = errors.New("no platform was assigned")
	// ErrNoDriver is returned by triangle link calls before a point and
	// plane driver is assigned.
	ErrNoDriver = errors.New("no point and plane driver was assigned")
)

// PointAndPlaneDriver keeps the triangles entities move on.
type PointAndPlaneDriver interface {
	AddTriangle(l *tasks.TriangleLink)
	RemoveTriangle(l *tasks.TriangleLink)
}

// Scene receives the entities registered since the last frame.
type Scene interface {
	AddEntities(entities []tasks.Entity)
	UpdateEntities()
}

// TasksReceiver collects tasks registered during a frame.
type TasksReceiver struct {
	everyFrame []*tasks.EveryFrameHandle
	loaders    []tasks.LoaderTask
	background []tasks.BackgroundTask
}

// AddEveryFrameTask registers t. A nil task is ignored and yields a nil handle.
func (r *TasksReceiver) AddEveryFrameTask(t tasks.EveryFrameTask) *tasks.EveryFrameHandle {
	if t == nil {
		return nil
	}
	h := tasks.NewEveryFrameHandle(t)
	r.everyFrame = append(r.everyFrame, h)
	return h
}

// AddLoaderTask registers t. A nil task is ignored.
func (r *TasksReceiver) AddLoaderTask(t tasks.LoaderTask) {
	if t != nil {
		r.loaders = append(r.loaders, t)
	}
}

// AddBackgroundTask registers t. A nil task is ignored.
func (r *TasksReceiver) AddBackgroundTask(t tasks.BackgroundTask) {
	if t != nil {
		r.background = append(r.background, t)
	}
}

// ClearAll forgets every registered task.
func (r *TasksReceiver) ClearAll() {
	r.everyFrame, r.loaders, r.background = nil, nil, nil
}

// HasAnyTasks reports whether a task was registered since the last ClearAll.
func (r *TasksReceiver) HasAnyTasks() bool {
	return len(r.everyFrame) > 0 || len(r.loaders) > 0 || len(r.background) > 0
}

func (r *TasksReceiver) EveryFrameTasks() []*tasks.EveryFrameHandle { return r.everyFrame }

func (r *TasksReceiver) LoaderTasks() []tasks.LoaderTask { return r.loaders }

func (r *TasksReceiver) BackgroundTasks() []tasks.BackgroundTask { return r.background }

// TriangleLinksReceiver forwards triangle links to the assigned driver.
type TriangleLinksReceiver struct {
	driver PointAndPlaneDriver
	links  map[*tasks.TriangleLink]struct{}
}

// AssignPointAndPlaneDriver sets the driver links are forwarded to.
func (r *TriangleLinksReceiver) AssignPointAndPlaneDriver(d PointAndPlaneDriver) {
	r.driver = d
}

// AddTriangleLink hands l to the driver.
func (r *TriangleLinksReceiver) AddTriangleLink(l *tasks.TriangleLink) error {
	if r.driver == nil {
		return ErrNoDriver
	}
	if l == nil {
		return errors.New("nil triangle link")
	}
	if r.links == nil {
		r.links = make(map[*tasks.TriangleLink]struct{})
	}
	if _, ok := r.links[l]; ok {
		return nil
	}
	r.links[l] = struct{}{}
	r.driver.AddTriangle(l)
	return nil
}

// RemoveTriangleLink takes l away from the driver. Unknown links are ignored.
func (r *TriangleLinksReceiver) RemoveTriangleLink(l *tasks.TriangleLink) error {
	if r.driver == nil {
		return ErrNoDriver
	}
	if _, ok := r.links[l]; !ok {
		return nil
	}
	delete(r.links, l)
	r.driver.RemoveTriangle(l)
	return nil
}

// TriangleLinkCount returns the number of links handed to the driver.
func (r *TriangleLinksReceiver) TriangleLinkCount() int {
	return len(r.links)
}

// EntitiesReceiver collects entities until they are added to a scene.
type EntitiesReceiver struct {
	entities []tasks.Entity
}

// AddEntitiesTo hands the collected entities to scene.
func (r *EntitiesReceiver) AddEntitiesTo(scene Scene) {
	if len(r.entities) == 0 {
		return
	}
	scene.AddEntities(r.entities)
	scene.UpdateEntities()
	r.entities = nil
}

// MultiReceiver is the tasks.Callbacks implementation handed to every task.
type MultiReceiver struct {
	TasksReceiver
	TriangleLinksReceiver
	EntitiesReceiver

	platform platform.Platform
}

var _ tasks.Callbacks = (*MultiReceiver)(nil)

// AddEntity registers e and the tasks its components carry. A background
// task is taken out of the entity.
func (m *MultiReceiver) AddEntity(e tasks.Entity) {
	if e == nil {
		return
	}
	m.entities = append(m.entities, e)
	if c, ok := e.(tasks.EveryFrameCarrier); ok {
		c.BindEveryFrameHandle(m.AddEveryFrameTask(c.EveryFrameTask()))
	}
	if c, ok := e.(tasks.BackgroundCarrier); ok {
		m.AddBackgroundTask(c.TakeBackgroundTask())
	}
}

// AssignPlatform sets the platform returned by Platform.
func (m *MultiReceiver) AssignPlatform(p platform.Platform) {
	m.platform = p
}

// Platform implements tasks.Callbacks.
func (m *MultiReceiver) Platform() (platform.Platform, error) {
	if m.platform == nil {
		return nil, ErrNoPlatform
	}
	return m.platform, nil
}
