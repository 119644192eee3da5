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
	"fmt"
)

// Kind is the outcome carried by a Continuation.
type Kind uint8

const (
	// KindInvalid is the zero value. A step returning it breaks the protocol.
	KindInvalid Kind = iota
	// KindFinished means the task is done and is dropped.
	KindFinished
	// KindContinue means the task runs again, after its waits finish if it has any.
	KindContinue
)

func (k Kind) String() string {
	switch k {
	case KindFinished:
		return "finished"
	case KindContinue:
		return "continue"
	default:
		return "invalid"
	}
}

// Continuation is the result of one background step.
type Continuation struct {
	kind      Kind
	waitingOn []BackgroundTask
}

// Finished returns the finished continuation.
func Finished() Continuation {
	return Continuation{kind: KindFinished}
}

// Continued returns a continuation that runs again next pass with no waits.
func Continued() Continuation {
	return Continuation{kind: KindContinue}
}

// Kind returns the outcome of the step.
func (c Continuation) Kind() Kind {
	return c.kind
}

// IsFinished reports whether the task is done.
func (c Continuation) IsFinished() bool {
	return c.kind == KindFinished
}

// WaitingOn returns the tasks that must finish before the task runs again.
func (c Continuation) WaitingOn() []BackgroundTask {
	return c.waitingOn
}

// WaitOn adds a dependency. Calls chain and accumulate.
func (c *Continuation) WaitOn(t BackgroundTask) *Continuation {
	c.waitingOn = append(c.waitingOn, t)
	return c
}

func (c Continuation) String() string {
	if len(c.waitingOn) == 0 {
		return c.kind.String()
	}
	return fmt.Sprintf("%s(waiting on %d)", c.kind, len(c.waitingOn))
}

// ContinuationStrategy is handed to every step and produces its result.
type ContinuationStrategy interface {
	// FinishTask returns the finished continuation.
	FinishTask() Continuation
	// Continue returns the continuation of the current step. Every call within
	// a step returns the same object so that WaitOn calls accumulate.
	Continue() *Continuation
}
