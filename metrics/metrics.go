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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Client metrics.
var (
	SchedulerStepCounter    *prometheus.CounterVec
	SchedulerRunningGauge   prometheus.Gauge
	SchedulerParkedGauge    prometheus.Gauge
	SchedulerPassHistogram  prometheus.Histogram
	MapLoadDuration         *prometheus.HistogramVec
	MapLoadStateTransitions *prometheus.CounterVec
	MapLoadWarningCounter   *prometheus.CounterVec
	FileFetchCounter        *prometheus.CounterVec
	FileFetchBytes          prometheus.Counter
	EveryFrameTaskGauge     prometheus.Gauge
	LoaderTaskCounter       prometheus.Counter
)

// Label constants.
const (
	LblResult = "result"
	LblState  = "state"
	LblKind   = "kind"
)

// Step outcomes used with SchedulerStepCounter.
const (
	StepFinished  = "finished"
	StepContinue  = "continue"
	StepWait      = "wait"
	StepViolation = "violation"
	StepDuplicate = "duplicate"
)

// Results used with MapLoadDuration and FileFetchCounter.
const (
	ResultOK  = "ok"
	ResultErr = "err"
)

func initMetrics(namespace, subsystem string, constLabels prometheus.Labels) {
	SchedulerStepCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scheduler_step_total",
			Help:        "Counter of background task steps by outcome.",
			ConstLabels: constLabels,
		}, []string{LblResult})

	SchedulerRunningGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scheduler_running_tasks",
			Help:        "Background tasks in the running set after the last pass.",
			ConstLabels: constLabels,
		})

	SchedulerParkedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scheduler_parked_tasks",
			Help:        "Background tasks waiting on dependencies after the last pass.",
			ConstLabels: constLabels,
		})

	SchedulerPassHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "scheduler_pass_duration_seconds",
			Help:        "Bucketed histogram of the time spent in one background pass.",
			Buckets:     prometheus.ExponentialBuckets(0.00001, 2, 20), // 10us ~ 5s
			ConstLabels: constLabels,
		})

	MapLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "map_load_duration_seconds",
			Help:        "Bucketed histogram of the time from map load start to its result.",
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 18), // 0.5ms ~ 65s
			ConstLabels: constLabels,
		}, []string{LblResult})

	MapLoadStateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "map_load_state_transitions_total",
			Help:        "Counter of map load state machine advances by entered state.",
			ConstLabels: constLabels,
		}, []string{LblState})

	MapLoadWarningCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "map_load_warnings_total",
			Help:        "Counter of map loading warnings by kind.",
			ConstLabels: constLabels,
		}, []string{LblKind})

	FileFetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "file_fetch_total",
			Help:        "Counter of asset file reads by result.",
			ConstLabels: constLabels,
		}, []string{LblResult})

	FileFetchBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "file_fetch_bytes_total",
			Help:        "Bytes read from asset files.",
			ConstLabels: constLabels,
		})

	EveryFrameTaskGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "every_frame_tasks",
			Help:        "Registered every-frame tasks after the last frame.",
			ConstLabels: constLabels,
		})

	LoaderTaskCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "loader_task_total",
			Help:        "Counter of one-shot loader tasks run.",
			ConstLabels: constLabels,
		})

	initShortcuts()
}

func init() {
	initMetrics("tileloader", "engine", nil)
}

// InitMetrics initializes metrics variables with given namespace and subsystem name.
func InitMetrics(namespace, subsystem string) {
	initMetrics(namespace, subsystem, nil)
}

// InitMetricsWithConstLabels initializes metrics variables with given namespace, subsystem name and const labels.
func InitMetricsWithConstLabels(namespace, subsystem string, constLabels prometheus.Labels) {
	initMetrics(namespace, subsystem, constLabels)
}

// RegisterMetrics registers all metrics variables.
// Note: to change default namespace and subsystem name, call `InitMetrics` before registering.
func RegisterMetrics() {
	prometheus.MustRegister(SchedulerStepCounter)
	prometheus.MustRegister(SchedulerRunningGauge)
	prometheus.MustRegister(SchedulerParkedGauge)
	prometheus.MustRegister(SchedulerPassHistogram)
	prometheus.MustRegister(MapLoadDuration)
	prometheus.MustRegister(MapLoadStateTransitions)
	prometheus.MustRegister(MapLoadWarningCounter)
	prometheus.MustRegister(FileFetchCounter)
	prometheus.MustRegister(FileFetchBytes)
	prometheus.MustRegister(EveryFrameTaskGauge)
	prometheus.MustRegister(LoaderTaskCounter)
}
