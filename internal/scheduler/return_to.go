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
	"reflect"

	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/tasks"
)

var (
	// ErrInvalidArgument is returned on misuse of dependency tracking.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrProtocolViolation is returned when a step yields a continuation the scheduler cannot interpret.
	ErrProtocolViolation = errors.New("background task protocol violation")
)

// NewTaskEntry is a task ready to join the running set together with the
// task it resumes once it finishes.
type NewTaskEntry struct {
	Task     tasks.BackgroundTask
	ReturnTo tasks.BackgroundTask
}

type returnToEntry struct {
	returnTo  tasks.BackgroundTask
	remaining int
}

// ReturnToTasksCollection holds parked tasks and counts down their pending
// dependencies.
type ReturnToTasksCollection struct {
	entries map[tasks.BackgroundTask]*returnToEntry
}

// NewReturnToTasksCollection creates an empty collection.
func NewReturnToTasksCollection() *ReturnToTasksCollection {
	return &ReturnToTasksCollection{entries: make(map[tasks.BackgroundTask]*returnToEntry)}
}

// TrackReturnTask parks waiting until waitCount dependencies have finished.
// returnTo is the task waiting itself resumes when it finishes, nil for a top
// level task.
func (c *ReturnToTasksCollection) TrackReturnTask(waiting, returnTo tasks.BackgroundTask, waitCount int) error {
	if err := checkTask(waiting); err != nil {
		return err
	}
	if waitCount <= 0 {
		return errors.Annotatef(ErrInvalidArgument, "wait count must be positive, got %d", waitCount)
	}
	if _, ok := c.entries[waiting]; ok {
		return errors.Annotate(ErrInvalidArgument, "task is already waiting")
	}
	c.entries[waiting] = &returnToEntry{returnTo: returnTo, remaining: waitCount}
	return nil
}

// RemovedReturnToTaskFor resolves one dependency of returnTo, the task a
// finished task was started for. Once the last dependency resolves the entry
// is removed and returned. A nil returnTo resolves nothing.
func (c *ReturnToTasksCollection) RemovedReturnToTaskFor(returnTo tasks.BackgroundTask) (NewTaskEntry, bool, error) {
	if returnTo == nil {
		return NewTaskEntry{}, false, nil
	}
	return c.resolve(returnTo)
}

// AddReturnTaskTo resolves one dependency of task and passes the entry to
// collect once the task is ready to run again.
func (c *ReturnToTasksCollection) AddReturnTaskTo(collect func(NewTaskEntry), task tasks.BackgroundTask) error {
	if task == nil {
		return errors.Annotate(ErrInvalidArgument, "nil task")
	}
	entry, ready, err := c.resolve(task)
	if err != nil {
		return err
	}
	if ready {
		collect(entry)
	}
	return nil
}

// IsTracked reports whether task is parked.
func (c *ReturnToTasksCollection) IsTracked(task tasks.BackgroundTask) bool {
	if !isComparable(task) {
		return false
	}
	_, ok := c.entries[task]
	return ok
}

// Remaining returns the number of unresolved dependencies of task.
func (c *ReturnToTasksCollection) Remaining(task tasks.BackgroundTask) int {
	if !c.IsTracked(task) {
		return 0
	}
	return c.entries[task].remaining
}

// Len returns the number of parked tasks.
func (c *ReturnToTasksCollection) Len() int {
	return len(c.entries)
}

func (c *ReturnToTasksCollection) resolve(task tasks.BackgroundTask) (NewTaskEntry, bool, error) {
	if !isComparable(task) {
		return NewTaskEntry{}, false, errors.Annotatef(ErrInvalidArgument, "task of type %T is not comparable", task)
	}
	entry, ok := c.entries[task]
	if !ok {
		return NewTaskEntry{}, false, errors.Annotatef(ErrInvalidArgument, "task %T is not waiting on anything", task)
	}
	entry.remaining--
	if entry.remaining > 0 {
		return NewTaskEntry{}, false, nil
	}
	delete(c.entries, task)
	return NewTaskEntry{Task: task, ReturnTo: entry.returnTo}, true, nil
}

func (c *ReturnToTasksCollection) takeFrom(other *ReturnToTasksCollection) {
	for task, entry := range other.entries {
		c.entries[task] = entry
	}
	other.entries = make(map[tasks.BackgroundTask]*returnToEntry)
}

func checkTask(task tasks.BackgroundTask) error {
	if task == nil {
		return errors.Annotate(ErrInvalidArgument, "nil task")
	}
	if !isComparable(task) {
		return errors.Annotatef(ErrInvalidArgument, "task of type %T is not comparable", task)
	}
	return nil
}

func isComparable(task tasks.BackgroundTask) bool {
	return task != nil && reflect.TypeOf(task).Comparable()
}
