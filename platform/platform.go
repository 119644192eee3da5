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

// Package platform provides the host services a loader needs: file contents
// delivered through futures that only change state on the frame goroutine.
package platform

import (
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
)

var (
	// ErrFileNotFound is returned by a future whose file does not exist.
	ErrFileNotFound = errors.New("platform: file not found")
	// ErrLost is returned by a future whose value will never arrive.
	ErrLost = errors.New("platform: promise lost")
)

// Platform hands out file contents.
type Platform interface {
	// PromiseFileContents starts fetching name. The returned future is
	// polled, never waited on.
	PromiseFileContents(name string) Future[string]
}

// Future is the read side of a Promise.
type Future[T any] interface {
	// Retrieve returns the value and true once it has arrived. Before that it
	// returns false and a nil error, and a non-nil error once the value is
	// lost for good.
	Retrieve() (T, bool, error)
}

const (
	promisePending int32 = iota
	promiseSettling
	promiseSettled
)

// Promise is settled at most once, by Fulfill or Fail.
type Promise[T any] struct {
	state atomic.Int32
	val   T
	err   error
}

// NewPromise creates a pending promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Fulfill settles p with val. It reports false if p was already settled.
func (p *Promise[T]) Fulfill(val T) bool {
	if !p.state.CompareAndSwap(promisePending, promiseSettling) {
		return false
	}
	p.val = val
	p.state.Store(promiseSettled)
	return true
}

// Fail settles p with err, ErrLost when err is nil. It reports false if p
// was already settled.
func (p *Promise[T]) Fail(err error) bool {
	if !p.state.CompareAndSwap(promisePending, promiseSettling) {
		return false
	}
	if err == nil {
		err = ErrLost
	}
	p.err = err
	p.state.Store(promiseSettled)
	return true
}

// Settled reports whether Fulfill or Fail has completed.
func (p *Promise[T]) Settled() bool {
	return p.state.Load() == promiseSettled
}

// Future returns the read side of p.
func (p *Promise[T]) Future() Future[T] {
	return future[T]{p}
}

type future[T any] struct {
	p *Promise[T]
}

func (f future[T]) Retrieve() (T, bool, error) {
	var zero T
	if !f.p.Settled() {
		return zero, false, nil
	}
	if f.p.err != nil {
		return zero, false, f.p.err
	}
	return f.p.val, true, nil
}

// Ready returns a future that already holds val.
func Ready[T any](val T) Future[T] {
	p := NewPromise[T]()
	p.Fulfill(val)
	return p.Future()
}
