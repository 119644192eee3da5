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
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/tikv/tileloader/internal/logutil"
	"go.uber.org/zap"
)

// PushMetrics pushes metrics to Prometheus Pushgateway. `instance` should be global identical.
func PushMetrics(ctx context.Context, addr string, interval time.Duration, job, instance string) {
	pusher := push.New(addr, job).
		Grouping("instance", instance).
		Gatherer(prometheus.DefaultGatherer)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := pusher.Add(); err != nil {
			logutil.BgLogger().Error("cannot push metrics to prometheus pushgateway", zap.String("addr", addr), zap.Error(err))
		}
	}
}
