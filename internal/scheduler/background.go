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
	"context"
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/pingcap/errors"
	"github.com/tikv/tileloader/internal/logutil"
	"github.com/tikv/tileloader/metrics"
	"github.com/tikv/tileloader/tasks"
	"github.com/tikv/tileloader/trace"
	"go.uber.org/zap"
)

const btreeDegree = 32

// runningTask is an entry of the running set. seq orders the set by
// insertion so every pass visits tasks in a stable order.
type runningTask struct {
	seq      uint64
	task     tasks.BackgroundTask
	returnTo tasks.BackgroundTask
}

func runningTaskLess(a, b *runningTask) bool {
	return a.seq < b.seq
}

// TaskStrategy is the ContinuationStrategy shared by all steps of a pass.
type TaskStrategy struct {
	cont tasks.Continuation
}

// NewTaskStrategy returns a strategy ready for a step.
func NewTaskStrategy() *TaskStrategy {
	s := &TaskStrategy{}
	s.Reset()
	return s
}

// FinishTask implements tasks.ContinuationStrategy.
func (s *TaskStrategy) FinishTask() tasks.Continuation {
	return tasks.Finished()
}

// Continue implements tasks.ContinuationStrategy.
func (s *TaskStrategy) Continue() *tasks.Continuation {
	return &s.cont
}

// Reset prepares the strategy for the next step.
func (s *TaskStrategy) Reset() {
	s.cont = tasks.Continued()
}

// RunableBackgroundTasks owns the running set, the tasks staged to join it
// after the current pass and the tasks parked on dependencies.
type RunableBackgroundTasks struct {
	running   *btree.BTreeG[*runningTask]
	index     map[tasks.BackgroundTask]*runningTask
	staged    []NewTaskEntry
	stagedSet map[tasks.BackgroundTask]struct{}
	parked    *ReturnToTasksCollection
	strategy  TaskStrategy
	nextSeq   uint64
	// outer is a scheduler running beside this one. Its tasks count as
	// scheduled here.
	outer *RunableBackgroundTasks
}

// NewRunableBackgroundTasks creates an empty scheduler.
func NewRunableBackgroundTasks() *RunableBackgroundTasks {
	return &RunableBackgroundTasks{
		running:   btree.NewG(btreeDegree, runningTaskLess),
		index:     make(map[tasks.BackgroundTask]*runningTask),
		stagedSet: make(map[tasks.BackgroundTask]struct{}),
		parked:    NewReturnToTasksCollection(),
	}
}

// AddTask stages a top level task. It joins the running set at the end of
// the current pass, or at the start of the next one.
func (r *RunableBackgroundTasks) AddTask(task tasks.BackgroundTask) error {
	if err := checkTask(task); err != nil {
		return err
	}
	if r.HasTask(task) {
		return errors.Annotatef(ErrInvalidArgument, "task %T is already scheduled", task)
	}
	r.stage(NewTaskEntry{Task: task})
	return nil
}

// HasTask reports whether task is running, staged or parked, here or in the
// outer scheduler.
func (r *RunableBackgroundTasks) HasTask(task tasks.BackgroundTask) bool {
	if !isComparable(task) {
		return false
	}
	if r.outer != nil && r.outer.HasTask(task) {
		return true
	}
	if _, ok := r.index[task]; ok {
		return true
	}
	if _, ok := r.stagedSet[task]; ok {
		return true
	}
	return r.parked.IsTracked(task)
}

// Len returns the size of the running set.
func (r *RunableBackgroundTasks) Len() int {
	return r.running.Len()
}

// StagedLen returns the number of tasks waiting to join the running set.
func (r *RunableBackgroundTasks) StagedLen() int {
	return len(r.staged)
}

// ParkedLen returns the number of tasks waiting on dependencies.
func (r *RunableBackgroundTasks) ParkedLen() int {
	return r.parked.Len()
}

// IsEmpty reports whether no task is known to the scheduler.
func (r *RunableBackgroundTasks) IsEmpty() bool {
	return r.Len() == 0 && r.StagedLen() == 0 && r.ParkedLen() == 0
}

// RunPass merges staged tasks, then steps every running task once in order.
// Tasks spawned or released during the pass are merged at its end and are
// not stepped before the next pass. A step that breaks the continuation
// protocol stops the pass and its error is returned. Panics raised by steps
// are not recovered.
func (r *RunableBackgroundTasks) RunPass(cb tasks.Callbacks) (err error) {
	start := time.Now()
	r.mergeStaged()
	defer func() {
		r.mergeStaged()
		metrics.SchedulerRunningGauge.Set(float64(r.Len()))
		metrics.SchedulerParkedGauge.Set(float64(r.ParkedLen()))
		metrics.SchedulerPassHistogram.Observe(time.Since(start).Seconds())
	}()

	pass := make([]*runningTask, 0, r.running.Len())
	r.running.Ascend(func(it *runningTask) bool {
		pass = append(pass, it)
		return true
	})
	for _, it := range pass {
		if err = r.step(cb, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *RunableBackgroundTasks) step(cb tasks.Callbacks, it *runningTask) error {
	r.strategy.Reset()
	cont := it.task.InBackground(cb, &r.strategy)
	waits := cont.WaitingOn()
	switch {
	case cont.Kind() == tasks.KindFinished && len(waits) == 0:
		metrics.SchedulerStepFinished.Inc()
		r.removeRunning(it)
		entry, released, err := r.parked.RemovedReturnToTaskFor(it.returnTo)
		if err != nil {
			return errors.Trace(err)
		}
		if released {
			r.stage(entry)
			traceStep("task released", entry.Task)
		}
	case cont.Kind() == tasks.KindContinue && len(waits) == 0:
		metrics.SchedulerStepContinue.Inc()
	case cont.Kind() == tasks.KindContinue:
		metrics.SchedulerStepWait.Inc()
		deps, err := r.dependenciesOf(it.task, waits)
		if err != nil {
			return err
		}
		r.removeRunning(it)
		if err := r.parked.TrackReturnTask(it.task, it.returnTo, len(deps)); err != nil {
			return errors.Trace(err)
		}
		for _, dep := range deps {
			r.stage(NewTaskEntry{Task: dep, ReturnTo: it.task})
		}
		traceStep("task parked", it.task, zap.Int("dependencies", len(deps)))
	default:
		metrics.SchedulerStepViolation.Inc()
		err := errors.Annotatef(ErrProtocolViolation, "task %T returned %s", it.task, cont)
		logutil.BgLogger().Error("background task broke the continuation protocol",
			zap.String("task", fmt.Sprintf("%T", it.task)),
			zap.Stringer("continuation", cont),
			zap.Error(err))
		return err
	}
	return nil
}

// dependenciesOf validates the waits of task and removes duplicates.
func (r *RunableBackgroundTasks) dependenciesOf(task tasks.BackgroundTask, waits []tasks.BackgroundTask) ([]tasks.BackgroundTask, error) {
	deps := make([]tasks.BackgroundTask, 0, len(waits))
	seen := make(map[tasks.BackgroundTask]struct{}, len(waits))
	for _, dep := range waits {
		if err := checkTask(dep); err != nil {
			return nil, errors.Annotatef(err, "waiting task %T", task)
		}
		if dep == task {
			return nil, errors.Annotatef(ErrInvalidArgument, "task %T waits on itself", task)
		}
		if _, ok := seen[dep]; ok {
			continue
		}
		if r.HasTask(dep) {
			return nil, errors.Annotatef(ErrInvalidArgument, "task %T waits on %T which is already scheduled", task, dep)
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	return deps, nil
}

// CombineTasksWith moves every running, staged and parked task of other into
// r and leaves other empty. Tasks of other keep their relative order and come
// after the tasks of r. If a task is known to both, neither is modified.
func (r *RunableBackgroundTasks) CombineTasksWith(other *RunableBackgroundTasks) error {
	if other == nil || other == r {
		return nil
	}
	conflict := func(task tasks.BackgroundTask) error {
		if r.HasTask(task) {
			return errors.Annotatef(ErrInvalidArgument, "task %T is scheduled on both sides", task)
		}
		return nil
	}
	for task := range other.index {
		if err := conflict(task); err != nil {
			return err
		}
	}
	for _, entry := range other.staged {
		if err := conflict(entry.Task); err != nil {
			return err
		}
	}
	for task := range other.parked.entries {
		if err := conflict(task); err != nil {
			return err
		}
	}

	other.running.Ascend(func(it *runningTask) bool {
		r.insertRunning(NewTaskEntry{Task: it.task, ReturnTo: it.returnTo})
		return true
	})
	for _, entry := range other.staged {
		r.stage(entry)
	}
	r.parked.takeFrom(other.parked)

	other.running.Clear(false)
	other.index = make(map[tasks.BackgroundTask]*runningTask)
	other.staged = nil
	other.stagedSet = make(map[tasks.BackgroundTask]struct{})
	return nil
}

func (r *RunableBackgroundTasks) stage(entry NewTaskEntry) {
	r.staged = append(r.staged, entry)
	r.stagedSet[entry.Task] = struct{}{}
}

func (r *RunableBackgroundTasks) mergeStaged() {
	for _, entry := range r.staged {
		r.insertRunning(entry)
	}
	r.staged = r.staged[:0]
	r.stagedSet = make(map[tasks.BackgroundTask]struct{})
}

func (r *RunableBackgroundTasks) insertRunning(entry NewTaskEntry) {
	it := &runningTask{seq: r.nextSeq, task: entry.Task, returnTo: entry.ReturnTo}
	r.nextSeq++
	r.running.ReplaceOrInsert(it)
	r.index[entry.Task] = it
}

func (r *RunableBackgroundTasks) removeRunning(it *runningTask) {
	r.running.Delete(it)
	delete(r.index, it.task)
}

func traceStep(name string, task tasks.BackgroundTask, fields ...zap.Field) {
	if !trace.IsCategoryEnabled(trace.CategoryScheduler) {
		return
	}
	fields = append(fields, zap.String("task", fmt.Sprintf("%T", task)))
	trace.TraceEvent(context.Background(), trace.CategoryScheduler, name, fields...)
}
