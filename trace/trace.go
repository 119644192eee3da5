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

package trace

import (
	"context"
	"sync/atomic"

	"github.com/tikv/tileloader/internal/logutil"
	"go.uber.org/zap"
)

// Category identifies a trace event family emitted from the engine.
type Category uint32

const (
	// CategoryScheduler traces background task steps, parks and releases.
	CategoryScheduler Category = iota
	// CategoryMapLoad traces map load state machine advances and results.
	CategoryMapLoad
)

func (c Category) String() string {
	switch c {
	case CategoryScheduler:
		return "scheduler"
	case CategoryMapLoad:
		return "map-load"
	default:
		return "unknown"
	}
}

// EventTracer is the interface for recording trace events.
// This allows the host to inject its trace event implementation without creating a dependency.
type EventTracer interface {
	// TraceEvent records a trace event with the given category, name, and fields.
	TraceEvent(ctx context.Context, category Category, name string, fields ...zap.Field)
}

// CategoryChecker is an optional interface that EventTracer implementations can provide
// to allow efficient category enablement checks before expensive event construction.
type CategoryChecker interface {
	// IsCategoryEnabled returns true if the specified category is currently enabled for tracing.
	IsCategoryEnabled(category Category) bool
}

// noopTracer is a no-op implementation used when no tracer is set.
type noopTracer struct{}

func (noopTracer) TraceEvent(context.Context, Category, string, ...zap.Field) {}

func (noopTracer) IsCategoryEnabled(Category) bool { return false }

var globalTracer atomic.Value // stores EventTracer

func init() {
	globalTracer.Store(EventTracer(noopTracer{}))
}

// SetGlobalTracer sets the global tracer implementation.
func SetGlobalTracer(tracer EventTracer) {
	if tracer == nil {
		tracer = noopTracer{}
	}
	globalTracer.Store(tracer)
}

// TraceEvent records a trace event using the global tracer.
func TraceEvent(ctx context.Context, category Category, name string, fields ...zap.Field) {
	tracer := globalTracer.Load().(EventTracer)
	tracer.TraceEvent(ctx, category, name, fields...)
}

// IsCategoryEnabled checks if a category is enabled for tracing.
// Returns true if the tracer supports category checking and the category is enabled,
// or true if the tracer doesn't support checking (conservative default).
func IsCategoryEnabled(category Category) bool {
	tracer := globalTracer.Load().(EventTracer)
	if checker, ok := tracer.(CategoryChecker); ok {
		return checker.IsCategoryEnabled(category)
	}
	return true
}

// LogTracer writes events of the enabled categories to the contextual logger
// at debug level.
type LogTracer struct {
	Flags CategoryFlags
}

// TraceEvent implements EventTracer.
func (t LogTracer) TraceEvent(ctx context.Context, category Category, name string, fields ...zap.Field) {
	if !t.IsCategoryEnabled(category) {
		return
	}
	logutil.Logger(ctx).Debug(name, append(fields, zap.Stringer("category", category))...)
}

// IsCategoryEnabled implements CategoryChecker.
func (t LogTracer) IsCategoryEnabled(category Category) bool {
	return t.Flags.Has(FlagOf(category))
}
