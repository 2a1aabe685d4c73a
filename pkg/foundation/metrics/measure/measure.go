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

// Package measure declares the metrics exported by the runtime.
package measure

import (
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/prometheus"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

var (
	NodeBlueInfo = metrics.NewLabeledGauge("nodeblue_info",
		"Information about Node-Blue.",
		[]string{"version"})

	FlowsGauge = metrics.NewLabeledGauge("nodeblue_flows",
		"Number of flows by status.",
		[]string{"status"})

	NodeMessagesCounter = metrics.NewLabeledCounter("nodeblue_node_messages_total",
		"Number of messages handled by a node, by node ID, role and outcome (ok, failed).",
		[]string{"node_id", "role", "outcome"})

	NodeProcessingDurationTimer = metrics.NewLabeledTimer("nodeblue_node_processing_duration_seconds",
		"Amount of time a node body spent on a single message, by node ID and role.",
		[]string{"node_id", "role"},
		prometheus.HistogramOpts{Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}},
	)

	PipeDroppedMessagesCounter = metrics.NewCounter("nodeblue_pipe_dropped_messages_total",
		"Number of buffered messages discarded by clearing a pipe.")
)
