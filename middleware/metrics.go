// Copyright 2024 xgfone
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

package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xgfone/harbor"
)

// Metrics is a middleware to collect the prometheus metrics of the requests.
//
// The requests are labeled by the method, the route pattern and the status
// code. The request matching no route has the pattern "unmatched".
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewMetrics returns a new Metrics middleware, and registers its collectors
// into reg, which is prometheus.DefaultRegisterer by default.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labels := []string{"method", "pattern", "code"}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of the HTTP requests.",
		}, labels),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of the HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, labels),

		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of the HTTP requests being handled.",
		}),
	}

	reg.MustRegister(m.Requests, m.Duration, m.InFlight)
	return m
}

// Handle implements the interface harbor.Middleware.
func (m *Metrics) Handle(c *harbor.Context) *harbor.Response {
	m.InFlight.Inc()
	defer m.InFlight.Dec()

	start := time.Now()
	resp := c.Next()

	pattern := c.Pattern()
	if pattern == "" {
		pattern = "unmatched"
	}

	labels := prometheus.Labels{
		"method":  c.Request().Method,
		"pattern": pattern,
		"code":    strconv.Itoa(resp.Status),
	}
	m.Requests.With(labels).Inc()
	m.Duration.With(labels).Observe(time.Since(start).Seconds())
	return resp
}
