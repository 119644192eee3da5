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

package statemachine

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

type animal interface {
	Speak() string
}

// census counts live animals of each kind and remembers the peak.
type census struct {
	live map[string]int
	peak map[string]int
}

func newCensus() *census {
	return &census{live: map[string]int{}, peak: map[string]int{}}
}

func (c *census) born(kind string) {
	c.live[kind]++
	if c.live[kind] > c.peak[kind] {
		c.peak[kind] = c.live[kind]
	}
}

func (c *census) died(kind string) {
	c.live[kind]--
}

type cat struct {
	c    *census
	name string
}

func newCat(c *census, name string) *cat {
	c.born("cat")
	return &cat{c: c, name: name}
}

func (a *cat) Speak() string      { return "meow from " + a.name }
func (a *cat) Dispose()           { a.c.died("cat") }
func (a *cat) CloneState() animal { return newCat(a.c, a.name) }

type dog struct {
	c *census
}

func newDog(c *census) *dog {
	c.born("dog")
	return &dog{c: c}
}

func (a *dog) Speak() string { return "woof" }
func (a *dog) Dispose()      { a.c.died("dog") }

// fish can neither be cloned nor disposed.
type fish struct{}

func (fish) Speak() string { return "..." }

func TestAdvanceSwapsWithoutLeaks(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	require.False(t, d.HasState())
	require.Nil(t, d.Current())

	d.SetCurrentState(newCat(c, "tom"))
	d.StateSwitcher().SetNextState(newDog(c))
	require.True(t, d.IsAdvanceable())
	require.Equal(t, "meow from tom", d.Current().Speak())

	d.Advance()
	require.IsType(t, &dog{}, d.Current())
	require.False(t, d.IsAdvanceable())
	require.Equal(t, map[string]int{"cat": 0, "dog": 1}, c.live)
	require.Equal(t, map[string]int{"cat": 1, "dog": 1}, c.peak)

	d.Close()
	require.Equal(t, map[string]int{"cat": 0, "dog": 0}, c.live)
}

func TestAdvanceWithoutNextIsNoop(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	first := d.SetCurrentState(newCat(c, "tom"))
	require.Same(t, &d, d.Advance())
	require.Same(t, first, d.Current())
	require.Equal(t, 1, c.live["cat"])
}

func TestUnusedNextStateIsDisposedWithDriver(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newDog(c))
	d.StateSwitcher().SetNextState(newCat(c, "tom"))
	d.Close()
	require.Equal(t, map[string]int{"cat": 0, "dog": 0}, c.live)
}

func TestSecondNextStateReplacesFirst(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newDog(c))
	sw := d.StateSwitcher()
	sw.SetNextState(newCat(c, "tom"))
	sw.SetNextState(newCat(c, "felix"))
	require.Equal(t, 1, c.live["cat"])

	d.Advance()
	require.Equal(t, "meow from felix", d.Current().Speak())
	require.Equal(t, 0, c.live["dog"])
}

func TestSetCurrentStateDisposesPrevious(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newDog(c))
	d.SetCurrentState(newCat(c, "tom"))
	require.Equal(t, map[string]int{"cat": 1, "dog": 0}, c.live)
}

func TestSwitcherFollowsAdvance(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	sw := d.StateSwitcher()
	d.SetCurrentState(newDog(c))
	sw.SetNextState(newCat(c, "tom"))
	d.Advance()
	sw.SetNextState(newDog(c))
	d.Advance()
	require.IsType(t, &dog{}, d.Current())
	require.Equal(t, map[string]int{"cat": 0, "dog": 1}, c.live)
}

func TestOnAdvanceable(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newCat(c, "tom"))

	calls := 0
	hook := func(cur, next animal) {
		calls++
		require.Equal(t, "meow from tom", cur.Speak())
		require.Equal(t, "woof", next.Speak())
	}
	d.OnAdvanceable(hook)
	require.Equal(t, 0, calls)

	d.StateSwitcher().SetNextState(newDog(c))
	d.OnAdvanceable(hook).Advance()
	require.Equal(t, 1, calls)
	require.Equal(t, "woof", d.Current().Speak())
}

func TestClone(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newCat(c, "tom"))
	d.StateSwitcher().SetNextState(newCat(c, "felix"))

	cp, err := d.Clone()
	require.NoError(t, err)
	require.Equal(t, 4, c.live["cat"])
	require.NotSame(t, d.Current(), cp.Current())
	require.Equal(t, d.Current().Speak(), cp.Current().Speak())

	cp.Advance()
	require.Equal(t, "meow from felix", cp.Current().Speak())
	require.Equal(t, "meow from tom", d.Current().Speak())

	cp.Close()
	d.Close()
	require.Equal(t, 0, c.live["cat"])
}

func TestCloneRejectsNonCloneable(t *testing.T) {
	c := newCensus()
	var d Driver[animal]
	d.SetCurrentState(newCat(c, "tom"))
	d.StateSwitcher().SetNextState(newDog(c))

	cp, err := d.Clone()
	require.Nil(t, cp)
	require.Equal(t, ErrNotCopyable, errors.Cause(err))
	require.Equal(t, 1, c.live["cat"])

	var f Driver[animal]
	f.SetCurrentState(fish{})
	_, err = f.Clone()
	require.Equal(t, ErrNotCopyable, errors.Cause(err))
}

func TestMoveFrom(t *testing.T) {
	c := newCensus()
	var src, dst Driver[animal]
	src.SetCurrentState(newCat(c, "tom"))
	src.StateSwitcher().SetNextState(newDog(c))
	dst.SetCurrentState(newDog(c))

	dst.MoveFrom(&src)
	require.False(t, src.HasState())
	require.False(t, src.IsAdvanceable())
	require.Equal(t, map[string]int{"cat": 1, "dog": 1}, c.live)

	dst.Advance()
	require.Equal(t, "woof", dst.Current().Speak())
	require.Equal(t, map[string]int{"cat": 0, "dog": 1}, c.live)

	// moving from an empty driver clears the target
	var empty Driver[animal]
	dst.MoveFrom(&empty)
	require.False(t, dst.HasState())
	require.Equal(t, 0, c.live["dog"])
}
