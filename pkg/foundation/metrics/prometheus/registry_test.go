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
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounter(t *testing.T) {
	testCases := []struct {
		name    string
		observe func(c interface{ Inc(...float64) })
		want    float64
	}{{
		name:    "empty counter",
		observe: func(interface{ Inc(...float64) }) {},
		want:    0,
	}, {
		name:    "increment once",
		observe: func(c interface{ Inc(...float64) }) { c.Inc() },
		want:    1,
	}, {
		name: "increment 10 times",
		observe: func(c interface{ Inc(...float64) }) {
			for i := 0; i < 10; i++ {
				c.Inc()
			}
		},
		want: 10,
	}, {
		name:    "increment sum",
		observe: func(c interface{ Inc(...float64) }) { c.Inc(1.5, 2) },
		want:    3.5,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			reg := NewRegistry(nil)
			c := reg.NewCounter("my_counter", "test counter")
			tc.observe(c)
			is.Equal(tc.want, testutil.ToFloat64(c.(*counter).pc))
		})
	}
}

func TestCounter_IncNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected negative increment to panic")
		}
	}()

	reg := NewRegistry(nil)
	reg.NewCounter("my_counter", "test counter").Inc(-1)
}

func TestLabeledCounter(t *testing.T) {
	is := is.New(t)

	reg := NewRegistry(map[string]string{"static": "x"})
	c := reg.NewLabeledCounter("my_labeled_counter", "test labeled counter", []string{"node_id"})
	c.WithValues("a").Inc()
	c.WithValues("a").Inc(2)
	c.WithValues("b")

	want := `
# HELP my_labeled_counter test labeled counter
# TYPE my_labeled_counter counter
my_labeled_counter{node_id="a",static="x"} 3
my_labeled_counter{node_id="b",static="x"} 0
`
	err := testutil.CollectAndCompare(reg, strings.NewReader(want))
	is.NoErr(err)
}

func TestLabeledGauge(t *testing.T) {
	is := is.New(t)

	reg := NewRegistry(nil)
	g := reg.NewLabeledGauge("my_gauge", "test gauge", []string{"status"})
	g.WithValues("running").Inc()
	g.WithValues("running").Inc(2)
	g.WithValues("running").Dec()
	g.WithValues("stopped").Set(5)

	want := `
# HELP my_gauge test gauge
# TYPE my_gauge gauge
my_gauge{status="running"} 2
my_gauge{status="stopped"} 5
`
	err := testutil.CollectAndCompare(reg, strings.NewReader(want))
	is.NoErr(err)
}

func TestLabeledTimer(t *testing.T) {
	is := is.New(t)

	reg := NewRegistry(nil)
	tm := reg.NewLabeledTimer("my_timer", "test timer", []string{"node_id"},
		HistogramOpts{Buckets: []float64{0.5, 1, 2}})
	tm.WithValues("a").Update(time.Second)
	tm.WithValues("a").Update(250 * time.Millisecond)

	want := `
# HELP my_timer test timer
# TYPE my_timer histogram
my_timer_bucket{node_id="a",le="0.5"} 1
my_timer_bucket{node_id="a",le="1"} 2
my_timer_bucket{node_id="a",le="2"} 2
my_timer_bucket{node_id="a",le="+Inf"} 2
my_timer_sum{node_id="a"} 1.25
my_timer_count{node_id="a"} 2
`
	err := testutil.CollectAndCompare(reg, strings.NewReader(want))
	is.NoErr(err)
}

func TestRegistry_RegisterTwice(t *testing.T) {
	is := is.New(t)

	reg := NewRegistry(nil)
	reg.NewCounter("my_counter", "test counter")

	promRegistry := prometheus.NewRegistry()
	is.NoErr(promRegistry.Register(reg))
	is.True(promRegistry.Register(reg) != nil)
}
