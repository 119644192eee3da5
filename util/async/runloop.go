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

package async

import (
	"context"
	"sync"

	"github.com/pingcap/errors"
)

// State represents the state of a run loop.
type State uint32

const (
	StateIdle State = iota
	StateWaiting
	StateRunning
)

var errAlreadyExecuting = errors.New("runloop: already executing")

// RunLoop is an Executor drained by a single goroutine, normally the one
// running frames. Worker goroutines started with Go append their results and
// the frame goroutine runs them with Poll or Exec.
type RunLoop struct {
	Pool

	lock     sync.Mutex
	ready    chan struct{}
	runnable []func()
	running  []func()
	state    State
}

// NewRunLoop creates a new run-loop.
func NewRunLoop() *RunLoop {
	// holds at most one pending wake-up, Append never blocks on it
	return &RunLoop{ready: make(chan struct{}, 1)}
}

// Go runs f on the pool, or on a new goroutine when no pool is set.
func (l *RunLoop) Go(f func()) {
	if l.Pool == nil {
		go f()
	} else {
		l.Pool.Go(f)
	}
}

// State returns the current state of the run-loop.
func (l *RunLoop) State() State {
	l.lock.Lock()
	state := l.state
	l.lock.Unlock()
	return state
}

// NumRunnable returns the number of queued functions.
func (l *RunLoop) NumRunnable() int {
	l.lock.Lock()
	n := len(l.runnable)
	l.lock.Unlock()
	return n
}

// Append implements Executor.
func (l *RunLoop) Append(fs ...func()) {
	if len(fs) == 0 {
		return
	}

	notify := false

	l.lock.Lock()
	l.runnable = append(l.runnable, fs...)
	if l.state == StateWaiting {
		l.state = StateIdle // waiting -> idle
		notify = true
	}
	l.lock.Unlock()

	if notify {
		select {
		case l.ready <- struct{}{}:
		default:
		}
	}
}

// Poll runs what is queued, including functions queued while it runs, and
// returns without waiting when the queue is empty.
func (l *RunLoop) Poll() (int, error) {
	l.lock.Lock()
	if l.state != StateIdle {
		l.lock.Unlock()
		return 0, errAlreadyExecuting
	}
	if len(l.runnable) == 0 {
		l.lock.Unlock()
		return 0, nil
	}
	l.running, l.runnable = l.runnable, l.running[:0]
	l.state = StateRunning // idle -> running
	l.lock.Unlock()
	return l.run(context.Background())
}

// Exec is Poll that waits for the first function to be queued when there is
// none yet. It returns the context error if ctx is done first, leaving what
// was not run queued.
func (l *RunLoop) Exec(ctx context.Context) (int, error) {
	for {
		l.lock.Lock()
		if l.state != StateIdle {
			l.lock.Unlock()
			return 0, errAlreadyExecuting
		}

		if len(l.runnable) == 0 {
			l.state = StateWaiting // idle -> waiting
			l.lock.Unlock()
			select {
			case <-l.ready:
				continue
			case <-ctx.Done():
				l.lock.Lock()
				l.state = StateIdle // waiting -> idle
				l.lock.Unlock()
				return 0, ctx.Err()
			}
		} else {
			l.running, l.runnable = l.runnable, l.running[:0]
			l.state = StateRunning // idle -> running
			l.lock.Unlock()
			return l.run(ctx)
		}
	}
}

func (l *RunLoop) run(ctx context.Context) (int, error) {
	count := 0
	for {
		for i, f := range l.running {
			select {
			case <-ctx.Done():
				l.lock.Lock()
				// requeue what was not run ahead of newer functions
				l.running = append(l.running[:0], l.running[i:]...)
				l.running = append(l.running, l.runnable...)
				l.running, l.runnable = l.runnable, l.running
				l.state = StateIdle // running -> idle
				l.lock.Unlock()
				return count, ctx.Err()
			default:
				f()
				count++
			}
		}
		l.lock.Lock()
		if len(l.runnable) == 0 {
			l.state = StateIdle // running -> idle
			l.lock.Unlock()
			return count, nil
		}
		l.running, l.runnable = l.runnable, l.running[:0]
		l.lock.Unlock()
	}
}
