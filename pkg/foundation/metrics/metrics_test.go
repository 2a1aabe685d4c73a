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

package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/prometheus"
	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_FansOutToLateRegistries(t *testing.T) {
	is := is.New(t)

	// created before any registry exists
	early := metrics.NewLabeledCounter("fanout_test_early", "early", []string{"k"})

	reg := prometheus.NewRegistry(nil)
	metrics.Register(reg)

	// created after the registry was registered
	late := metrics.NewLabeledTimer("fanout_test_late", "late", []string{"k"},
		prometheus.HistogramOpts{Buckets: []float64{1}})

	early.WithValues("v").Inc()
	late.WithValues("v").Update(time.Millisecond)

	want := `
# HELP fanout_test_early early
# TYPE fanout_test_early counter
fanout_test_early{k="v"} 1
`
	err := testutil.CollectAndCompare(reg, strings.NewReader(want), "fanout_test_early")
	is.NoErr(err)
	is.Equal(2, testutil.CollectAndCount(reg, "fanout_test_early", "fanout_test_late"))
}
