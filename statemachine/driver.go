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

// Package statemachine provides a double-buffered holder for one state out of
// a closed set, with a two-phase "stage next, then advance" protocol.
package statemachine

import (
	"github.com/pingcap/errors"
)

// ErrNotCopyable is returned by Clone when a held state cannot be cloned.
var ErrNotCopyable = errors.New("state is not copyable")

// Cloner is implemented by states that can be deep copied.
type Cloner[B any] interface {
	CloneState() B
}

// Disposer is implemented by states that release resources when their slot
// is cleared.
type Disposer interface {
	Dispose()
}

// slot holds one state together with the operations recorded when it was placed.
type slot[B any] struct {
	state   B
	live    bool
	clone   func() B
	dispose func()
}

func (s *slot[B]) place(state B) {
	s.state, s.live = state, true
	s.clone, s.dispose = nil, nil
	if c, ok := any(state).(Cloner[B]); ok {
		s.clone = c.CloneState
	}
	if d, ok := any(state).(Disposer); ok {
		s.dispose = d.Dispose
	}
}

func (s *slot[B]) clear() {
	if s.live && s.dispose != nil {
		s.dispose()
	}
	*s = slot[B]{}
}

// Driver holds the current state and at most one staged next state. The zero
// value is an empty driver; SetCurrentState must be called before Current or
// Advance are meaningful.
type Driver[B any] struct {
	slots [2]slot[B]
	cur   int
}

func (d *Driver[B]) current() *slot[B] { return &d.slots[d.cur] }

func (d *Driver[B]) next() *slot[B] { return &d.slots[1-d.cur] }

// SetCurrentState disposes the current state and replaces it with state.
func (d *Driver[B]) SetCurrentState(state B) B {
	s := d.current()
	s.clear()
	s.place(state)
	return state
}

// StateSwitcher returns a handle that can only stage the next state.
func (d *Driver[B]) StateSwitcher() Switcher[B] {
	return Switcher[B]{d: d}
}

// OnAdvanceable calls f with the current and the staged state when a next
// state is staged, and does nothing otherwise.
func (d *Driver[B]) OnAdvanceable(f func(current, next B)) *Driver[B] {
	if d.IsAdvanceable() {
		f(d.current().state, d.next().state)
	}
	return d
}

// Advance promotes the staged state to current and disposes the old current
// state. It is a no-op when nothing is staged.
func (d *Driver[B]) Advance() *Driver[B] {
	if !d.IsAdvanceable() {
		return d
	}
	d.cur = 1 - d.cur
	d.next().clear()
	return d
}

// IsAdvanceable reports whether a next state is staged.
func (d *Driver[B]) IsAdvanceable() bool {
	return d.next().live
}

// HasState reports whether a current state was set.
func (d *Driver[B]) HasState() bool {
	return d.current().live
}

// Current returns the current state, or the zero B before SetCurrentState.
func (d *Driver[B]) Current() B {
	return d.current().state
}

// Clone deep copies both slots. Every held state must implement Cloner.
func (d *Driver[B]) Clone() (*Driver[B], error) {
	c := &Driver[B]{cur: d.cur}
	for i := range d.slots {
		src := &d.slots[i]
		if !src.live {
			continue
		}
		if src.clone == nil {
			c.Close()
			return nil, errors.Annotatef(ErrNotCopyable, "%T", src.state)
		}
		c.slots[i].place(src.clone())
	}
	return c, nil
}

// MoveFrom disposes the states held by d and takes over the states of other,
// which is left empty.
func (d *Driver[B]) MoveFrom(other *Driver[B]) {
	if other == d {
		return
	}
	d.Close()
	d.slots, d.cur = other.slots, other.cur
	other.slots, other.cur = [2]slot[B]{}, 0
}

// Close disposes both slots.
func (d *Driver[B]) Close() {
	d.slots[0].clear()
	d.slots[1].clear()
	d.cur = 0
}

// Switcher is the restricted view handed to a running state. It cannot swap
// states, so a state never replaces itself in the middle of its own step.
type Switcher[B any] struct {
	d *Driver[B]
}

// SetNextState stages state, disposing a previously staged one.
func (s Switcher[B]) SetNextState(state B) B {
	n := s.d.next()
	n.clear()
	n.place(state)
	return state
}
