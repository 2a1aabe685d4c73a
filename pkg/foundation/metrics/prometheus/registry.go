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
	"sync"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is a metrics.Registry backed by prometheus collectors. The
// Registry itself is a prometheus.Collector and needs to be registered with
// a prometheus registerer to expose its metrics.
type Registry struct {
	labels  map[string]string
	mu      sync.Mutex
	metrics []prometheus.Collector
}

var _ metrics.Registry = (*Registry)(nil)

// NewRegistry returns a registry that attaches the static labels to every
// metric it creates.
func NewRegistry(labels map[string]string) *Registry {
	return &Registry{labels: labels}
}

func (r *Registry) NewCounter(name, help string, opts ...metrics.Option) metrics.Counter {
	c := &counter{pc: prometheus.NewCounter(r.counterOpts(name, help))}
	r.add(c)
	return c
}

func (r *Registry) NewLabeledCounter(name, help string, labels []string, opts ...metrics.Option) metrics.LabeledCounter {
	c := &labeledCounter{pc: prometheus.NewCounterVec(r.counterOpts(name, help), labels)}
	r.add(c)
	return c
}

func (r *Registry) NewLabeledGauge(name, help string, labels []string, opts ...metrics.Option) metrics.LabeledGauge {
	g := &labeledGauge{pg: prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	}, labels)}
	r.add(g)
	return g
}

func (r *Registry) NewLabeledTimer(name, help string, labels []string, opts ...metrics.Option) metrics.LabeledTimer {
	promOpts := prometheus.HistogramOpts{
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	}
	for _, mopt := range opts {
		if opt, ok := mopt.(histogramOption); ok {
			promOpts = opt.apply(promOpts)
		}
	}
	t := &labeledTimer{ph: prometheus.NewHistogramVec(promOpts, labels)}
	r.add(t)
	return t
}

func (r *Registry) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Name:        name,
		Help:        help,
		ConstLabels: r.labels,
	}
}

func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, metric := range r.metrics {
		metric.Describe(ch)
	}
}

func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, metric := range r.metrics {
		metric.Collect(ch)
	}
}

func (r *Registry) add(collector prometheus.Collector) {
	r.mu.Lock()
	r.metrics = append(r.metrics, collector)
	r.mu.Unlock()
}
