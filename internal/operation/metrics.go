// Copyright 2025 Tom Barlow
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

package operation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helm_mcp_operation_calls_total",
			Help: "Total operation calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helm_mcp_operation_duration_seconds",
			Help:    "Duration of operation calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"operation"},
	)
)

// recordCall records a finished call.
func recordCall(operation, outcome string, duration time.Duration) {
	callsTotal.WithLabelValues(operation, outcome).Inc()
	callDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
