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

// BackgroundFunc adapts a function to BackgroundTask.
type BackgroundFunc func(cb Callbacks, strat ContinuationStrategy) Continuation

type backgroundFunc struct {
	f BackgroundFunc
}

// MakeBackgroundTask wraps f. Each call yields a task with its own identity.
func MakeBackgroundTask(f BackgroundFunc) BackgroundTask {
	return &backgroundFunc{f: f}
}

func (t *backgroundFunc) InBackground(cb Callbacks, strat ContinuationStrategy) Continuation {
	return t.f(cb, strat)
}

// EveryFrameFunc adapts a function to EveryFrameTask.
type EveryFrameFunc func(cb Callbacks, elapsed float64)

type everyFrameFunc struct {
	f EveryFrameFunc
}

// MakeEveryFrameTask wraps f.
func MakeEveryFrameTask(f EveryFrameFunc) EveryFrameTask {
	return &everyFrameFunc{f: f}
}

func (t *everyFrameFunc) OnEveryFrame(cb Callbacks, elapsed float64) {
	t.f(cb, elapsed)
}

// LoaderFunc adapts a function to LoaderTask.
type LoaderFunc func(cb Callbacks)

type loaderFunc struct {
	f LoaderFunc
}

// MakeLoaderTask wraps f.
func MakeLoaderTask(f LoaderFunc) LoaderTask {
	return &loaderFunc{f: f}
}

func (t *loaderFunc) Run(cb Callbacks) {
	t.f(cb)
}
