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

import "github.com/prometheus/client_golang/prometheus"

// Shortcuts for performance improvement.
var (
	SchedulerStepFinished  prometheus.Counter
	SchedulerStepContinue  prometheus.Counter
	SchedulerStepWait      prometheus.Counter
	SchedulerStepViolation prometheus.Counter
	SchedulerStepDuplicate prometheus.Counter

	MapLoadDurationOK  prometheus.Observer
	MapLoadDurationErr prometheus.Observer

	FileFetchOK  prometheus.Counter
	FileFetchErr prometheus.Counter
)

func initShortcuts() {
	SchedulerStepFinished = SchedulerStepCounter.WithLabelValues(StepFinished)
	SchedulerStepContinue = SchedulerStepCounter.WithLabelValues(StepContinue)
	SchedulerStepWait = SchedulerStepCounter.WithLabelValues(StepWait)
	SchedulerStepViolation = SchedulerStepCounter.WithLabelValues(StepViolation)
	SchedulerStepDuplicate = SchedulerStepCounter.WithLabelValues(StepDuplicate)

	MapLoadDurationOK = MapLoadDuration.WithLabelValues(ResultOK)
	MapLoadDurationErr = MapLoadDuration.WithLabelValues(ResultErr)

	FileFetchOK = FileFetchCounter.WithLabelValues(ResultOK)
	FileFetchErr = FileFetchCounter.WithLabelValues(ResultErr)
}
