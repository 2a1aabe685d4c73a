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

// Package metrics defines the metric types used by the runtime independently
// of the backend that collects them. Metrics are created once at package
// level and fan out to every Registry passed to Register, including
// registries added after the metric was created.
package metrics

import (
	"sync"
	"time"
)

// Registry creates backend specific metrics.
type Registry interface {
	NewCounter(name, help string, opts ...Option) Counter
	NewLabeledCounter(name, help string, labels []string, opts ...Option) LabeledCounter
	NewLabeledGauge(name, help string, labels []string, opts ...Option) LabeledGauge
	NewLabeledTimer(name, help string, labels []string, opts ...Option) LabeledTimer
}

// Option is a backend specific option. Registries ignore options they don't
// understand.
type Option interface{}

type Counter interface {
	// Inc adds Sum(vs) to the counter. Sum(vs) must be positive.
	//
	// If len(vs) == 0, increments the counter by 1.
	Inc(vs ...float64)
}

type LabeledCounter interface {
	// WithValues returns the Counter for the given label values, in the
	// same order as the label names used when creating the LabeledCounter.
	WithValues(vs ...string) Counter
}

type Gauge interface {
	// Inc adds Sum(vs) to the gauge. If len(vs) == 0, increments by 1.
	Inc(vs ...float64)
	// Dec subtracts Sum(vs) from the gauge. If len(vs) == 0, decrements by 1.
	Dec(vs ...float64)
	// Set replaces the gauge's current value with the provided value.
	Set(float64)
}

type LabeledGauge interface {
	WithValues(vs ...string) Gauge
}

type Timer interface {
	// Update records a duration.
	Update(time.Duration)
	// UpdateSince records the duration elapsed since t.
	UpdateSince(t time.Time)
}

type LabeledTimer interface {
	WithValues(vs ...string) Timer
}

var global = struct {
	m          sync.Mutex
	metrics    []metric
	registries []Registry
}{}

// Register adds r to the global registries. All metrics created so far and
// all metrics created in the future are also created in r.
func Register(r Registry) {
	global.m.Lock()
	defer global.m.Unlock()
	global.registries = append(global.registries, r)
	for _, mt := range global.metrics {
		mt.New(r)
	}
}

func NewCounter(name, help string, opts ...Option) Counter {
	mt := &counter{definition: definition{name: name, help: help, opts: opts}}
	addMetric(mt)
	return mt
}

func NewLabeledCounter(name, help string, labels []string, opts ...Option) LabeledCounter {
	mt := &labeledCounter{definition: definition{name: name, help: help, labels: labels, opts: opts}}
	addMetric(mt)
	return mt
}

func NewLabeledGauge(name, help string, labels []string, opts ...Option) LabeledGauge {
	mt := &labeledGauge{definition: definition{name: name, help: help, labels: labels, opts: opts}}
	addMetric(mt)
	return mt
}

func NewLabeledTimer(name, help string, labels []string, opts ...Option) LabeledTimer {
	mt := &labeledTimer{definition: definition{name: name, help: help, labels: labels, opts: opts}}
	addMetric(mt)
	return mt
}

func addMetric(mt metric) {
	global.m.Lock()
	defer global.m.Unlock()
	global.metrics = append(global.metrics, mt)
	for _, r := range global.registries {
		mt.New(r)
	}
}

type metric interface {
	New(Registry)
}

type definition struct {
	name   string
	help   string
	labels []string
	opts   []Option
}

// snapshot copies the backend metrics under the global lock so a concurrent
// Register does not race with an observation.
func snapshot[T any](ms *[]T) []T {
	global.m.Lock()
	defer global.m.Unlock()
	out := make([]T, len(*ms))
	copy(out, *ms)
	return out
}

type counter struct {
	definition
	metrics []Counter
}

func (mt *counter) New(r Registry) {
	mt.metrics = append(mt.metrics, r.NewCounter(mt.name, mt.help, mt.opts...))
}

func (mt *counter) Inc(vs ...float64) {
	for _, m := range snapshot(&mt.metrics) {
		m.Inc(vs...)
	}
}

type labeledCounter struct {
	definition
	metrics []LabeledCounter
}

func (mt *labeledCounter) New(r Registry) {
	mt.metrics = append(mt.metrics, r.NewLabeledCounter(mt.name, mt.help, mt.labels, mt.opts...))
}

func (mt *labeledCounter) WithValues(vs ...string) Counter {
	ms := snapshot(&mt.metrics)
	c := &counter{definition: mt.definition, metrics: make([]Counter, len(ms))}
	for i, m := range ms {
		c.metrics[i] = m.WithValues(vs...)
	}
	return c
}

type gauge struct {
	definition
	metrics []Gauge
}

func (mt *gauge) Inc(vs ...float64) {
	for _, m := range mt.metrics {
		m.Inc(vs...)
	}
}

func (mt *gauge) Dec(vs ...float64) {
	for _, m := range mt.metrics {
		m.Dec(vs...)
	}
}

func (mt *gauge) Set(v float64) {
	for _, m := range mt.metrics {
		m.Set(v)
	}
}

type labeledGauge struct {
	definition
	metrics []LabeledGauge
}

func (mt *labeledGauge) New(r Registry) {
	mt.metrics = append(mt.metrics, r.NewLabeledGauge(mt.name, mt.help, mt.labels, mt.opts...))
}

func (mt *labeledGauge) WithValues(vs ...string) Gauge {
	ms := snapshot(&mt.metrics)
	g := &gauge{definition: mt.definition, metrics: make([]Gauge, len(ms))}
	for i, m := range ms {
		g.metrics[i] = m.WithValues(vs...)
	}
	return g
}

type timer struct {
	definition
	metrics []Timer
}

func (mt *timer) Update(d time.Duration) {
	for _, m := range mt.metrics {
		m.Update(d)
	}
}

func (mt *timer) UpdateSince(t time.Time) {
	for _, m := range mt.metrics {
		m.UpdateSince(t)
	}
}

type labeledTimer struct {
	definition
	metrics []LabeledTimer
}

func (mt *labeledTimer) New(r Registry) {
	mt.metrics = append(mt.metrics, r.NewLabeledTimer(mt.name, mt.help, mt.labels, mt.opts...))
}

func (mt *labeledTimer) WithValues(vs ...string) Timer {
	ms := snapshot(&mt.metrics)
	t := &timer{definition: mt.definition, metrics: make([]Timer, len(ms))}
	for i, m := range ms {
		t.metrics[i] = m.WithValues(vs...)
	}
	return t
}
