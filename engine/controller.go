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
	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/scheduler"
	"github.com/tikv/tileloader/platform"
	"github.com/tikv/tileloader/tasks"
)

// TasksController owns the scheduler. Tasks registered through it, or by
// running tasks, join on the next RunTasks.
type TasksController struct {
	multi   MultiReceiver
	oldPart *scheduler.RunableTasks
	newPart *scheduler.RunableTasks
}

// NewTasksController creates a controller with no tasks.
func NewTasksController() *TasksController {
	return &TasksController{
		oldPart: scheduler.NewRunableTasks(),
		newPart: scheduler.NewRunableTasks(),
	}
}

// RunTasks runs one frame. Tasks known before the frame run first. Tasks
// registered since then, including by those tasks, run next and are kept
// for later frames. Registering a background task that is still scheduled
// does nothing.
func (c *TasksController) RunTasks(elapsed float64) error {
	if err := c.oldPart.RunExistingTasks(&c.multi, elapsed); err != nil {
		return errors.Trace(err)
	}
	replaceErr := c.newPart.ReplaceTasksWith(&c.multi, c.oldPart)
	runErr := c.newPart.RunExistingTasks(&c.multi, elapsed)
	// new tasks are always handed over, so none is lost to a failed frame
	if err := c.oldPart.TakeTasksFrom(c.newPart); err != nil {
		return errors.Trace(err)
	}
	if replaceErr != nil {
		return errors.Trace(replaceErr)
	}
	return errors.Trace(runErr)
}

// HasAnyTasks reports whether any task is registered, running or parked.
func (c *TasksController) HasAnyTasks() bool {
	return c.multi.HasAnyTasks() ||
		c.oldPart.EveryFrameLen() > 0 || c.oldPart.LoaderLen() > 0 ||
		!c.oldPart.Background().IsEmpty()
}

// BackgroundLen returns the number of running and parked background tasks.
func (c *TasksController) BackgroundLen() int {
	return c.oldPart.BackgroundLen()
}

// AddEveryFrameTask registers t and returns the handle unregistering it.
func (c *TasksController) AddEveryFrameTask(t tasks.EveryFrameTask) *tasks.EveryFrameHandle {
	return c.multi.AddEveryFrameTask(t)
}

func (c *TasksController) AddLoaderTask(t tasks.LoaderTask) { c.multi.AddLoaderTask(t) }

func (c *TasksController) AddBackgroundTask(t tasks.BackgroundTask) { c.multi.AddBackgroundTask(t) }

func (c *TasksController) AddEntity(e tasks.Entity) { c.multi.AddEntity(e) }

func (c *TasksController) AddTriangleLink(l *tasks.TriangleLink) error {
	return c.multi.AddTriangleLink(l)
}

func (c *TasksController) RemoveTriangleLink(l *tasks.TriangleLink) error {
	return c.multi.RemoveTriangleLink(l)
}

func (c *TasksController) AssignPlatform(p platform.Platform) { c.multi.AssignPlatform(p) }

func (c *TasksController) AssignPointAndPlaneDriver(d PointAndPlaneDriver) {
	c.multi.AssignPointAndPlaneDriver(d)
}

// AddEntitiesTo hands entities registered since the last call to scene.
func (c *TasksController) AddEntitiesTo(scene Scene) { c.multi.AddEntitiesTo(scene) }

// Platform returns the assigned platform.
func (c *TasksController) Platform() (platform.Platform, error) { return c.multi.Platform() }
