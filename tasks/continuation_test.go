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

package tasks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContinuationZeroValueIsInvalid(t *testing.T) {
	var c Continuation
	require.Equal(t, KindInvalid, c.Kind())
	require.False(t, c.IsFinished())
	require.Equal(t, "invalid", c.String())
}

func TestWaitOnAccumulates(t *testing.T) {
	a := MakeBackgroundTask(func(Callbacks, ContinuationStrategy) Continuation { return Finished() })
	b := MakeBackgroundTask(func(Callbacks, ContinuationStrategy) Continuation { return Finished() })

	c := Continued()
	c.WaitOn(a).WaitOn(b)
	require.Equal(t, KindContinue, c.Kind())
	require.Equal(t, []BackgroundTask{a, b}, c.WaitingOn())
	require.Equal(t, "continue(waiting on 2)", c.String())
}

func TestFuncAdaptersHaveDistinctIdentity(t *testing.T) {
	f := func(Callbacks, ContinuationStrategy) Continuation { return Finished() }
	a, b := MakeBackgroundTask(f), MakeBackgroundTask(f)
	require.False(t, a == b)

	set := map[BackgroundTask]struct{}{a: {}, b: {}}
	require.Len(t, set, 2)
}

func TestEveryFrameHandle(t *testing.T) {
	calls := 0
	task := MakeEveryFrameTask(func(Callbacks, float64) { calls++ })
	h := NewEveryFrameHandle(task)
	require.True(t, h.Registered())
	h.Task().OnEveryFrame(nil, 0)
	require.Equal(t, 1, calls)

	h.Unregister()
	h.Unregister()
	require.False(t, h.Registered())

	var nilHandle *EveryFrameHandle
	require.False(t, nilHandle.Registered())
}
