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

package engine

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
	"github.com/tikv/tileloader/tasks"
)

type recordingDriver struct {
	added, removed []*tasks.TriangleLink
}

func (d *recordingDriver) AddTriangle(l *tasks.TriangleLink) { d.added = append(d.added, l) }
func (d *recordingDriver) RemoveTriangle(l *tasks.TriangleLink) { d.removed = append(d.removed, l) }

type recordingScene struct {
	entities []tasks.Entity
	updates  int
}

func (s *recordingScene) AddEntities(es []tasks.Entity) { s.entities = append(s.entities, es...) }
func (s *recordingScene) UpdateEntities() { s.updates++ }

type namedEntity string

func (e namedEntity) Name() string { return string(e) }

// carrierEntity carries both kinds of task, like a player with an animation
// and a pending map load.
type carrierEntity struct {
	everyFrame tasks.EveryFrameTask
	handle     *tasks.EveryFrameHandle
	background tasks.BackgroundTask
}

func (e *carrierEntity) Name() string { return "carrier" }
func (e *carrierEntity) EveryFrameTask() tasks.EveryFrameTask { return e.everyFrame }
func (e *carrierEntity) BindEveryFrameHandle(h *tasks.EveryFrameHandle) { e.handle = h }

func (e *carrierEntity) TakeBackgroundTask() tasks.BackgroundTask {
	t := e.background
	e.background = nil
	return t
}

func TestTriangleLinks(t *testing.T) {
	var r TriangleLinksReceiver
	link := &tasks.TriangleLink{A: tasks.Vector{0, 0, 0}, B: tasks.Vector{1, 0, 0}, C: tasks.Vector{0, 0, 1}}
	require.Equal(t, ErrNoDriver, errors.Cause(r.AddTriangleLink(link)))
	require.Equal(t, ErrNoDriver, errors.Cause(r.RemoveTriangleLink(link)))

	d := &recordingDriver{}
	r.AssignPointAndPlaneDriver(d)
	require.Error(t, r.AddTriangleLink(nil))
	require.NoError(t, r.AddTriangleLink(link))
	require.NoError(t, r.AddTriangleLink(link))
	require.Equal(t, 1, r.TriangleLinkCount())
	require.Equal(t, []*tasks.TriangleLink{link}, d.added)

	require.NoError(t, r.RemoveTriangleLink(&tasks.TriangleLink{}))
	require.Empty(t, d.removed)
	require.NoError(t, r.RemoveTriangleLink(link))
	require.Equal(t, []*tasks.TriangleLink{link}, d.removed)
	require.Zero(t, r.TriangleLinkCount())
}

func TestAddEntityRegistersCarriedTasks(t *testing.T) {
	var m MultiReceiver
	m.AddEntity(nil)
	m.AddEntity(namedEntity("rock"))
	require.False(t, m.HasAnyTasks())

	bg := tasks.MakeBackgroundTask(func(_ tasks.Callbacks, strat tasks.ContinuationStrategy) tasks.Continuation {
		return strat.FinishTask()
	})
	e := &carrierEntity{
		everyFrame: tasks.MakeEveryFrameTask(func(tasks.Callbacks, float64) {}),
		background: bg,
	}
	m.AddEntity(e)
	require.Nil(t, e.background)
	require.True(t, e.handle.Registered())
	require.Len(t, m.EveryFrameTasks(), 1)
	require.Same(t, e.handle, m.EveryFrameTasks()[0])
	require.Equal(t, []tasks.BackgroundTask{bg}, m.BackgroundTasks())

	scene := &recordingScene{}
	m.AddEntitiesTo(scene)
	require.Len(t, scene.entities, 2)
	require.Equal(t, 1, scene.updates)
	m.AddEntitiesTo(scene)
	require.Equal(t, 1, scene.updates)

	m.ClearAll()
	require.False(t, m.HasAnyTasks())
}
