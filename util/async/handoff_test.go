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
	"sync"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

// queueExecutor runs nothing until drained, on the draining goroutine.
type queueExecutor struct {
	lock  sync.Mutex
	queue []func()
}

func (e *queueExecutor) Go(f func()) {
	e.Append(f)
}

func (e *queueExecutor) Append(fs ...func()) {
	e.lock.Lock()
	e.queue = append(e.queue, fs...)
	e.lock.Unlock()
}

func (e *queueExecutor) pending() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.queue)
}

func (e *queueExecutor) drain() {
	for {
		e.lock.Lock()
		if len(e.queue) == 0 {
			e.lock.Unlock()
			return
		}
		f := e.queue[0]
		e.queue = e.queue[1:]
		e.lock.Unlock()
		f()
	}
}

func TestStepsRunInOrder(t *testing.T) {
	e := &queueExecutor{}
	var got string
	h := NewHandoff(e, func(s string, err error) {
		require.NoError(t, err)
		got = s
	}).
		Then(func(s string, err error) (string, error) { return s + ">size", err }).
		Then(func(s string, err error) (string, error) { return s + ">log", err })
	require.True(t, h.Deliver("town.tmx", nil))
	require.Empty(t, got)
	e.drain()
	require.Equal(t, "town.tmx>size>log", got)
}

func TestStepCanTurnIntoError(t *testing.T) {
	empty := errors.New("empty file")
	var gotErr error
	h := NewHandoff(&queueExecutor{}, func(_ string, err error) { gotErr = err }).
		Then(func(s string, err error) (string, error) {
			if s == "" {
				return s, empty
			}
			return s, err
		})
	require.True(t, h.Settle("", nil))
	require.Same(t, empty, gotErr)
}

func TestHandoffSettlesOnce(t *testing.T) {
	e := &queueExecutor{}
	var got []string
	h := NewHandoff(e, func(s string, _ error) { got = append(got, s) })
	require.False(t, h.Settled())
	require.True(t, h.Deliver("a", nil))
	require.True(t, h.Settled())
	require.False(t, h.Deliver("b", nil))
	require.False(t, h.Settle("c", nil))
	require.Equal(t, 1, e.pending())
	e.drain()
	require.Equal(t, []string{"a"}, got)

	got = nil
	h = NewHandoff(e, func(s string, _ error) { got = append(got, s) })
	require.True(t, h.Settle("a", nil))
	require.False(t, h.Deliver("b", nil))
	require.Zero(t, e.pending())
	require.Equal(t, []string{"a"}, got)
}

func TestStartDeliversWorkResult(t *testing.T) {
	e := &queueExecutor{}
	var (
		got    string
		gotErr error
	)
	h := NewHandoff(e, func(s string, err error) { got, gotErr = s, err })
	h.Start(func() (string, error) { return "<map/>", nil }, nil)
	require.False(t, h.Settled())
	e.drain()
	require.Equal(t, "<map/>", got)
	require.NoError(t, gotErr)
}

func TestStartRecoversPanic(t *testing.T) {
	e := &queueExecutor{}
	lost := errors.New("lost")
	var (
		got    string
		gotErr error
	)
	h := NewHandoff(e, func(s string, err error) { got, gotErr = s, err })
	h.Start(func() (string, error) { panic("disk gone") }, func(r interface{}) error {
		require.Equal(t, "disk gone", r)
		return lost
	})
	e.drain()
	require.Empty(t, got)
	require.Same(t, lost, gotErr)
	require.True(t, h.Settled())
}
