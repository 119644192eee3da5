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
// Package async moves results produced on worker goroutines back onto the
// goroutine that drives frames.
package async

import (
	"github.com/tikv/tileloader/util"
	"go.uber.org/atomic"
)

// Pool runs functions on worker goroutines.
type Pool interface {
	Go(f func())
}

// Executor queues functions for the goroutine that drains it.
type Executor interface {
	Pool
	// Append queues fs. It is safe to call from any goroutine.
	Append(fs ...func())
}

// Handoff carries the result of one piece of work from a worker goroutine to
// the goroutine draining its Executor. It settles at most once: the first
// Deliver or Settle wins.
type Handoff[T any] struct {
	e       Executor
	claimed atomic.Bool
	steps   []func(T, error) (T, error)
	done    func(T, error)
}

// NewHandoff creates a handoff passing its result to done.
func NewHandoff[T any](e Executor, done func(T, error)) *Handoff[T] {
	return &Handoff[T]{e: e, done: done}
}

// Then adds a step applied to the result before done. Steps run in the order
// they were added, on the draining goroutine. Add steps before Start.
func (h *Handoff[T]) Then(step func(T, error) (T, error)) *Handoff[T] {
	h.steps = append(h.steps, step)
	return h
}

// Start runs work on the executor's pool and delivers what it returns. If
// work panics, the error built by onPanic is delivered instead.
func (h *Handoff[T]) Start(work func() (T, error), onPanic func(r interface{}) error) {
	h.e.Go(func() {
		util.WithRecovery(func() {
			h.Deliver(work())
		}, func(r interface{}) {
			if r != nil {
				var zero T
				h.Deliver(zero, onPanic(r))
			}
		})
	})
}

// Deliver queues the result on the executor. It is safe from any goroutine
// and reports false when the handoff had already settled.
func (h *Handoff[T]) Deliver(val T, err error) bool {
	if !h.claimed.CompareAndSwap(false, true) {
		return false
	}
	h.e.Append(func() { h.finish(val, err) })
	return true
}

// Settle finishes the handoff on the calling goroutine, which must be the
// one draining the executor. It reports false when already settled.
func (h *Handoff[T]) Settle(val T, err error) bool {
	if !h.claimed.CompareAndSwap(false, true) {
		return false
	}
	h.finish(val, err)
	return true
}

// Settled reports whether Deliver or Settle has been called.
func (h *Handoff[T]) Settled() bool {
	return h.claimed.Load()
}

func (h *Handoff[T]) finish(val T, err error) {
	for _, step := range h.steps {
		val, err = step(val, err)
	}
	h.done(val, err)
}
