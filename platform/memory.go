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

package platform

import (
	"github.com/pingcap/errors"
)

type pendingRead struct {
	name    string
	promise *Promise[string]
}

// MemoryPlatform serves files from memory. With deferred delivery enabled,
// promises stay pending until Resolve or ResolveAll.
type MemoryPlatform struct {
	files    map[string]string
	deferred bool
	pending  []pendingRead
	requests map[string]int
}

// NewMemoryPlatform creates an empty platform delivering immediately.
func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{
		files:    make(map[string]string),
		requests: make(map[string]int),
	}
}

// Set stores contents under name.
func (p *MemoryPlatform) Set(name, contents string) *MemoryPlatform {
	p.files[name] = contents
	return p
}

// SetDeferred switches between immediate and deferred delivery.
func (p *MemoryPlatform) SetDeferred(deferred bool) *MemoryPlatform {
	p.deferred = deferred
	return p
}

// PromiseFileContents implements Platform.
func (p *MemoryPlatform) PromiseFileContents(name string) Future[string] {
	p.requests[name]++
	promise := NewPromise[string]()
	if p.deferred {
		p.pending = append(p.pending, pendingRead{name: name, promise: promise})
	} else {
		p.settle(name, promise)
	}
	return promise.Future()
}

func (p *MemoryPlatform) settle(name string, promise *Promise[string]) {
	contents, ok := p.files[name]
	if !ok {
		promise.Fail(errors.Annotatef(ErrFileNotFound, "read %s", name))
		return
	}
	promise.Fulfill(contents)
}

// Requests returns how many times name was asked for.
func (p *MemoryPlatform) Requests(name string) int {
	return p.requests[name]
}

// Pending returns the number of deferred reads not yet settled.
func (p *MemoryPlatform) Pending() int {
	return len(p.pending)
}

// Resolve settles the deferred reads of name and reports how many there were.
func (p *MemoryPlatform) Resolve(name string) int {
	n := 0
	kept := p.pending[:0]
	for _, r := range p.pending {
		if r.name != name {
			kept = append(kept, r)
			continue
		}
		p.settle(r.name, r.promise)
		n++
	}
	p.pending = kept
	return n
}

// Lose fails the deferred reads of name with ErrLost.
func (p *MemoryPlatform) Lose(name string) int {
	n := 0
	kept := p.pending[:0]
	for _, r := range p.pending {
		if r.name != name {
			kept = append(kept, r)
			continue
		}
		r.promise.Fail(errors.Annotatef(ErrLost, "read %s", name))
		n++
	}
	p.pending = kept
	return n
}

// ResolveAll settles every deferred read.
func (p *MemoryPlatform) ResolveAll() int {
	n := len(p.pending)
	for _, r := range p.pending {
		p.settle(r.name, r.promise)
	}
	p.pending = p.pending[:0]
	return n
}
