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

package flow

import (
	"context"
	"strings"
	"sync"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/ctxutil"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/measure"
	"gopkg.in/tomb.v2"
)

type Status int

const (
	StatusCreated Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	}
	return "unknown"
}

// Flow is a set of connected nodes that run together. Nodes are added while
// the flow is being built, once it runs the graph can't be changed anymore.
type Flow struct {
	id     string
	logger log.CtxLogger

	m      sync.Mutex
	nodes  []*stream.Node
	index  map[string]*stream.Node
	status Status
	// t is responsible for running the goroutines of the nodes.
	t *tomb.Tomb
}

func New(id string, logger log.CtxLogger) (*Flow, error) {
	if id == "" {
		return nil, ErrEmptyFlowID
	}
	logger = logger.WithComponent("flow.Flow")
	logger.Logger = logger.With().Str(log.FlowIDField, id).Logger()
	return &Flow{
		id:     id,
		logger: logger,
		index:  make(map[string]*stream.Node),
	}, nil
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) Status() Status {
	f.m.Lock()
	defer f.m.Unlock()
	return f.status
}

// AddNode adds the node to the flow and hands it the flow logger.
func (f *Flow) AddNode(n *stream.Node) error {
	if n == nil {
		return ErrNilNode
	}

	f.m.Lock()
	defer f.m.Unlock()

	if f.t != nil && f.t.Alive() {
		return cerrors.Errorf("can't add node %s: %w", n.ID(), ErrFlowRunning)
	}
	if _, ok := f.index[n.ID()]; ok {
		return cerrors.Errorf("%s: %w", n.ID(), ErrDuplicateNode)
	}

	n.SetLogger(f.logger)
	f.nodes = append(f.nodes, n)
	f.index[n.ID()] = n
	return nil
}

// Node returns the node with the given ID.
func (f *Flow) Node(id string) (*stream.Node, bool) {
	f.m.Lock()
	defer f.m.Unlock()
	n, ok := f.index[id]
	return n, ok
}

// Nodes returns the nodes in the order they were added.
func (f *Flow) Nodes() []*stream.Node {
	f.m.Lock()
	defer f.m.Unlock()
	out := make([]*stream.Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Pipes returns the distinct pipes attached to the output ports of the
// nodes. Pipes attached to error ports are not included.
func (f *Flow) Pipes() []*stream.Pipe {
	seen := make(map[*stream.Pipe]bool)
	var pipes []*stream.Pipe
	for _, n := range f.Nodes() {
		out, ok := n.OutPort()
		if !ok {
			continue
		}
		for _, p := range out.Pipes() {
			if !seen[p] {
				seen[p] = true
				pipes = append(pipes, p)
			}
		}
	}
	return pipes
}

// Run starts every node in its own goroutine and returns immediately. The
// nodes run until Stop is called or ctx is cancelled. A node that stops with
// an error is logged, the remaining nodes keep running.
func (f *Flow) Run(ctx context.Context) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.t != nil && f.t.Alive() {
		return cerrors.Errorf("can't run flow %s: %w", f.id, ErrFlowRunning)
	}
	if len(f.nodes) == 0 {
		f.logger.Debug(ctx).Msg("flow has no nodes, nothing to run")
		return nil
	}

	f.logger.Debug(ctx).Int("nodes", len(f.nodes)).Msg("starting flow")

	// the tomb is responsible for running goroutines related to the flow
	var tctx context.Context
	f.t, tctx = tomb.WithContext(ctxutil.ContextWithFlowID(ctx, f.id))

	// keep tomb alive until the end of this function, this way we guarantee we
	// can run the cleanup goroutine even if all nodes stop before we get to it
	keepAlive := make(chan struct{})
	f.t.Go(func() error {
		<-keepAlive
		return nil
	})
	defer close(keepAlive)

	// nodesWg is done once all nodes stop running
	var nodesWg sync.WaitGroup
	for _, node := range f.nodes {
		nodesWg.Add(1)
		f.t.Go(func() error {
			defer nodesWg.Done()
			// tctx is cancelled once the tomb is killed, this stops the node
			ctx := tctx
			f.logger.Trace(ctx).Str(log.NodeIDField, node.ID()).Msg("running node")

			err := node.Run(ctx)
			if err != nil {
				f.logger.Err(ctx, err).
					Str(log.NodeIDField, node.ID()).
					Str(log.NodeStatusField, node.Status().String()).
					Msg("node stopped with error")
				// keep the flow alive, other nodes are not affected
				return nil
			}
			f.logger.Trace(ctx).Str(log.NodeIDField, node.ID()).Msg("node stopped")
			return nil
		})
	}

	f.setStatus(StatusRunning)
	f.logger.Info(ctx).Msg("flow started")

	// cleanup updates the metrics and flow status once all nodes stop
	f.t.Go(func() error {
		nodesWg.Wait()
		f.m.Lock()
		f.setStatus(StatusStopped)
		f.m.Unlock()
		f.logger.Info(context.Background()).Msg("flow stopped")
		return nil
	})

	return nil
}

// setStatus updates the status and the flows gauge, the caller must hold
// the lock.
func (f *Flow) setStatus(s Status) {
	if f.status != StatusCreated {
		measure.FlowsGauge.WithValues(strings.ToLower(f.status.String())).Dec()
	}
	f.status = s
	measure.FlowsGauge.WithValues(strings.ToLower(f.status.String())).Inc()
}

// Stop cancels the context of every node and waits for all of them to stop.
// Stop can be called multiple times and on a flow that never ran.
func (f *Flow) Stop() error {
	f.m.Lock()
	t := f.t
	f.m.Unlock()
	if t == nil {
		return nil
	}
	t.Kill(nil)
	return t.Wait()
}

// Wait blocks until all nodes of a running flow stop.
func (f *Flow) Wait() error {
	f.m.Lock()
	t := f.t
	f.m.Unlock()
	if t == nil {
		return nil
	}
	return t.Wait()
}
