// Copyright © 2024 The Node-Blue Authors
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

package prometheus

import (
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// labeledTimer records durations in seconds in a histogram.
type labeledTimer struct {
	ph *prometheus.HistogramVec
}

func (lt *labeledTimer) WithValues(labels ...string) metrics.Timer {
	return &timer{o: lt.ph.WithLabelValues(labels...)}
}

func (lt *labeledTimer) Describe(c chan<- *prometheus.Desc) { lt.ph.Describe(c) }
func (lt *labeledTimer) Collect(c chan<- prometheus.Metric) { lt.ph.Collect(c) }

type timer struct {
	o prometheus.Observer
}

func (t *timer) Update(d time.Duration) {
	t.o.Observe(d.Seconds())
}

func (t *timer) UpdateSince(start time.Time) {
	t.Update(time.Since(start))
}
