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

import "github.com/prometheus/client_golang/prometheus"

type histogramOption interface {
	apply(prometheus.HistogramOpts) prometheus.HistogramOpts
}

// HistogramOpts can be passed to metrics.NewLabeledTimer to change the
// buckets of the underlying histogram.
type HistogramOpts struct {
	Buckets []float64
}

func (o HistogramOpts) apply(opts prometheus.HistogramOpts) prometheus.HistogramOpts {
	if o.Buckets != nil {
		opts.Buckets = o.Buckets
	}
	return opts
}
