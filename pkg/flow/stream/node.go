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

package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/ctxutil"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/measure"
	"github.com/jpillora/backoff"
)

const (
	// MetadataError is the metadata key holding the error message of a
	// message routed to an error port.
	MetadataError = "error"
	// MetadataErrorNode is the metadata key holding the ID of the node that
	// failed to handle a message routed to an error port.
	MetadataErrorNode = "error.node"
)

const (
	defaultIdleMin = 10 * time.Millisecond
	defaultIdleMax = time.Second
)

// Role defines which ports a node owns.
type Role int

const (
	RoleSource Role = iota + 1
	RoleSink
	RoleTransform
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleSink:
		return "sink"
	case RoleTransform:
		return "transform"
	}
	return "unknown"
}

type Status int32

const (
	StatusCreated Status = iota
	StatusRunning
	StatusStopped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Node is a vertex in a flow. The role of a node is fixed when it is created
// and determines which body it runs and which ports it owns.
type Node struct {
	id     string
	role   Role
	status atomic.Int32

	in  *InPort
	out *OutPort
	// errOut receives messages the body failed to handle, only sinks and
	// transforms have one.
	errOut *OutPort

	body      any
	producer  Producer
	consumer  Consumer
	processor Processor

	idleMin time.Duration
	idleMax time.Duration

	logger log.CtxLogger
}

// NewSource creates a node that produces messages with p and owns only an
// output port.
func NewSource(id string, p Producer) (*Node, error) {
	if p == nil {
		return nil, ErrNilBody
	}
	n, err := newNode(id, RoleSource, p)
	if err != nil {
		return nil, err
	}
	n.producer = p
	n.out = NewOutPort(id)
	return n, nil
}

// NewSink creates a node that consumes messages with c and owns only an
// input port.
func NewSink(id string, c Consumer) (*Node, error) {
	if c == nil {
		return nil, ErrNilBody
	}
	n, err := newNode(id, RoleSink, c)
	if err != nil {
		return nil, err
	}
	n.consumer = c
	n.in = NewInPort(id)
	n.errOut = NewOutPort(id)
	return n, nil
}

// NewTransform creates a node that processes messages with p and owns an
// input and an output port. If p is nil the node forwards every message.
func NewTransform(id string, p Processor) (*Node, error) {
	if p == nil {
		p = Forward
	}
	n, err := newNode(id, RoleTransform, p)
	if err != nil {
		return nil, err
	}
	n.processor = p
	n.in = NewInPort(id)
	n.out = NewOutPort(id)
	n.errOut = NewOutPort(id)
	return n, nil
}

func newNode(id string, role Role, body any) (*Node, error) {
	if id == "" {
		return nil, ErrEmptyNodeID
	}
	return &Node{
		id:      id,
		role:    role,
		body:    body,
		idleMin: defaultIdleMin,
		idleMax: defaultIdleMax,
		logger:  log.Nop(),
	}, nil
}

func (n *Node) ID() string { return n.id }
func (n *Node) Role() Role { return n.role }
func (n *Node) Body() any { return n.body }
func (n *Node) Status() Status {
	return Status(n.status.Load())
}

// InPort returns the input port of the node, ok is false if the node is a
// source.
func (n *Node) InPort() (port *InPort, ok bool) {
	return n.in, n.in != nil
}

// OutPort returns the output port of the node, ok is false if the node is a
// sink.
func (n *Node) OutPort() (port *OutPort, ok bool) {
	return n.out, n.out != nil
}

// ErrorPort returns the port on which messages are emitted that the body
// failed to handle, ok is false if the node is a source.
func (n *Node) ErrorPort() (port *OutPort, ok bool) {
	return n.errOut, n.errOut != nil
}

// SetIdleBackoff changes how long a source waits before calling its producer
// again after the producer had nothing to emit or failed. The wait doubles on
// every consecutive idle call, starting at min and capped at max.
func (n *Node) SetIdleBackoff(min, max time.Duration) {
	n.idleMin, n.idleMax = min, max
}

// Run runs the node loop and blocks until the context is cancelled. The body
// is opened before the loop starts and closed after it stops. Run returns an
// error only if opening or closing the body failed, in which case the node
// status is StatusError.
func (n *Node) Run(ctx context.Context) (err error) {
	if !n.start() {
		return ErrNodeRunning
	}
	ctx = ctxutil.ContextWithNodeID(ctx, n.id)
	n.logger.Debug(ctx).Str(log.NodeRoleField, n.role.String()).Msg("starting node")

	if opener, ok := n.body.(Opener); ok {
		if err := opener.Open(ctx); err != nil {
			n.status.Store(int32(StatusError))
			return cerrors.Errorf("node %s: could not open body: %w", n.id, err)
		}
	}
	defer func() {
		if closer, ok := n.body.(Closer); ok {
			// the run context is done at this point
			if cErr := closer.Close(context.WithoutCancel(ctx)); cErr != nil {
				n.status.Store(int32(StatusError))
				err = cerrors.Errorf("node %s: could not close body: %w", n.id, cErr)
				return
			}
		}
		n.status.Store(int32(StatusStopped))
		n.logger.Debug(ctx).Msg("node stopped")
	}()

	switch n.role {
	case RoleSource:
		n.runSource(ctx)
	case RoleSink, RoleTransform:
		n.runReceiver(ctx)
	}
	return nil
}

func (n *Node) start() bool {
	for {
		current := n.status.Load()
		if Status(current) == StatusRunning {
			return false
		}
		if n.status.CompareAndSwap(current, int32(StatusRunning)) {
			return true
		}
	}
}

func (n *Node) runSource(ctx context.Context) {
	var (
		ok     = measure.NodeMessagesCounter.WithValues(n.id, n.role.String(), measure.OutcomeOK)
		failed = measure.NodeMessagesCounter.WithValues(n.id, n.role.String(), measure.OutcomeFailed)
		timer  = measure.NodeProcessingDurationTimer.WithValues(n.id, n.role.String())
		b      = &backoff.Backoff{Min: n.idleMin, Max: n.idleMax, Factor: 2}
	)

	for ctx.Err() == nil {
		start := time.Now()
		msg, err := n.produce(ctx)
		timer.UpdateSince(start)

		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			failed.Inc()
			n.logger.Warn(ctx).Err(err).Msg("source failed to create message")
		case msg != nil:
			ok.Inc()
			b.Reset()
			mctx := ctxutil.ContextWithMessageID(ctx, msg.ID())
			n.logger.Trace(mctx).Msg("emitting message")
			_ = n.out.Propagate(mctx, msg) // only fails on cancellation
			continue
		}

		if !n.idle(ctx, b.Duration()) {
			return
		}
	}
}

// idle waits for d and returns false if the context was cancelled in the
// meantime.
func (n *Node) idle(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (n *Node) runReceiver(ctx context.Context) {
	var (
		ok     = measure.NodeMessagesCounter.WithValues(n.id, n.role.String(), measure.OutcomeOK)
		failed = measure.NodeMessagesCounter.WithValues(n.id, n.role.String(), measure.OutcomeFailed)
		timer  = measure.NodeProcessingDurationTimer.WithValues(n.id, n.role.String())
	)

	for {
		msg, err := n.in.Consume(ctx)
		if err != nil {
			// Consume only fails when the context is cancelled
			return
		}

		mctx := ctxutil.ContextWithMessageID(ctx, msg.ID())
		n.logger.Trace(mctx).Msg("received message")

		start := time.Now()
		err = n.handle(mctx, msg)
		timer.UpdateSince(start)

		if err != nil {
			if ctx.Err() != nil {
				// interrupted by shutdown, not a failure of the body
				return
			}
			failed.Inc()
			n.logger.Err(mctx, err).Msg("node failed to handle message")
			n.deadLetter(mctx, msg, err)
			continue
		}
		ok.Inc()
	}
}

func (n *Node) produce(ctx context.Context) (msg *Message, err error) {
	defer n.recoverBody(&err)
	return n.producer.CreateMessage(ctx)
}

func (n *Node) handle(ctx context.Context, msg *Message) (err error) {
	defer n.recoverBody(&err)
	if n.role == RoleSink {
		return n.consumer.OnMessage(ctx, msg)
	}
	return n.processor.OnMessage(ctx, msg, n.out)
}

// recoverBody turns a panic in the body into an error.
func (n *Node) recoverBody(err *error) {
	if r := recover(); r != nil {
		*err = cerrors.Errorf("node %s: body panicked: %v", n.id, r)
	}
}

// deadLetter emits the message on the error port annotated with the error,
// if a pipe is attached to the error port.
func (n *Node) deadLetter(ctx context.Context, msg *Message, err error) {
	if n.errOut == nil || len(n.errOut.Pipes()) == 0 {
		return
	}
	dl := msg.WithMetadata(MetadataError, err.Error()).WithMetadata(MetadataErrorNode, n.id)
	if pErr := n.errOut.Propagate(ctx, dl); pErr != nil {
		n.logger.Warn(ctx).Err(pErr).Msg("could not route failed message to error port")
	}
}
