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
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// ScanPolicy decides in which order an InPort checks its pipes for data.
type ScanPolicy int

const (
	// ScanOrdered always checks pipes in the order they were added. Pipes
	// added first are preferred and can starve pipes added later.
	ScanOrdered ScanPolicy = iota
	// ScanRoundRobin starts checking at the pipe after the one that produced
	// the last message.
	ScanRoundRobin
)

func (p ScanPolicy) String() string {
	switch p {
	case ScanOrdered:
		return "ordered"
	case ScanRoundRobin:
		return "round-robin"
	}
	return "unknown"
}

// ParseScanPolicy parses "ordered" (also the empty string) and
// "round-robin".
func ParseScanPolicy(s string) (ScanPolicy, error) {
	switch s {
	case "", "ordered":
		return ScanOrdered, nil
	case "round-robin":
		return ScanRoundRobin, nil
	}
	return 0, cerrors.Errorf("%q: %w", s, ErrUnknownPolicy)
}

// InPort is the input port of a node. It consumes messages from all pipes
// attached to it.
type InPort struct {
	id     string
	nodeID string

	m      sync.Mutex
	pipes  []*Pipe
	policy ScanPolicy
	// cursor is the index of the pipe where the next round-robin scan starts.
	cursor int
}

func NewInPort(nodeID string) *InPort {
	return &InPort{
		id:     uuid.NewString(),
		nodeID: nodeID,
	}
}

func (p *InPort) ID() string { return p.id }
func (p *InPort) NodeID() string { return p.nodeID }

func (p *InPort) ScanPolicy() ScanPolicy {
	p.m.Lock()
	defer p.m.Unlock()
	return p.policy
}

func (p *InPort) SetScanPolicy(policy ScanPolicy) {
	p.m.Lock()
	defer p.m.Unlock()
	p.policy = policy
	p.cursor = 0
}

// AddPipe attaches the pipe as an input. A pipe can be attached to a single
// input port only.
func (p *InPort) AddPipe(pipe *Pipe) error {
	if pipe == nil {
		return ErrNilPipe
	}
	if !pipe.attachedIn.CompareAndSwap(false, true) {
		return cerrors.Errorf("pipe %s: %w", pipe.ID(), ErrPipeAttached)
	}
	p.m.Lock()
	defer p.m.Unlock()
	p.pipes = append(p.pipes, pipe)
	return nil
}

// RemovePipe detaches the pipe and reports whether it was attached to this
// port.
func (p *InPort) RemovePipe(pipe *Pipe) bool {
	p.m.Lock()
	defer p.m.Unlock()
	i := slices.Index(p.pipes, pipe)
	if i < 0 {
		return false
	}
	p.pipes = slices.Delete(p.pipes, i, i+1)
	p.cursor = 0
	pipe.attachedIn.Store(false)
	return true
}

// Pipes returns a copy of the attached pipes in the order they were added.
func (p *InPort) Pipes() []*Pipe {
	p.m.Lock()
	defer p.m.Unlock()
	return slices.Clone(p.pipes)
}

// HasAvailableData reports whether any attached pipe holds a message.
func (p *InPort) HasAvailableData() bool {
	for _, pipe := range p.Pipes() {
		if !pipe.IsEmpty() {
			return true
		}
	}
	return false
}

// Consume returns the next available message. Pipes are checked according
// to the scan policy, if none of them holds a message Consume blocks until
// any of them receives one or the context is cancelled. A port without pipes
// blocks until the context is cancelled.
func (p *InPort) Consume(ctx context.Context) (*Message, error) {
	pipes, start := p.scanOrder()
	if len(pipes) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	for i := range pipes {
		idx := (start + i) % len(pipes)
		if msg, ok := pipes[idx].TryPoll(); ok {
			p.advance(idx, len(pipes))
			return msg, nil
		}
	}

	cases := make([]reflect.SelectCase, len(pipes)+1)
	cases[0] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())}
	for i, pipe := range pipes {
		cases[i+1] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(pipe.ch)}
	}

	chosen, value, _ := reflect.Select(cases)
	if chosen == 0 {
		return nil, ctx.Err()
	}
	p.advance(chosen-1, len(pipes))
	return value.Interface().(*Message), nil
}

func (p *InPort) scanOrder() ([]*Pipe, int) {
	p.m.Lock()
	defer p.m.Unlock()
	start := 0
	if p.policy == ScanRoundRobin {
		start = p.cursor
	}
	return slices.Clone(p.pipes), start
}

func (p *InPort) advance(idx, n int) {
	p.m.Lock()
	defer p.m.Unlock()
	if p.policy == ScanRoundRobin {
		p.cursor = (idx + 1) % n
	}
}

// OutPort is the output port of a node. Messages propagated through the port
// are offered to every attached pipe.
type OutPort struct {
	id     string
	nodeID string
	logger log.CtxLogger

	m     sync.Mutex
	pipes []*Pipe
}

func NewOutPort(nodeID string) *OutPort {
	return &OutPort{
		id:     uuid.NewString(),
		nodeID: nodeID,
		logger: log.Nop(),
	}
}

func (p *OutPort) ID() string { return p.id }
func (p *OutPort) NodeID() string { return p.nodeID }

func (p *OutPort) SetLogger(logger log.CtxLogger) {
	p.logger = logger
}

// AddPipe attaches the pipe as an output. A pipe can be attached to a single
// output port only.
func (p *OutPort) AddPipe(pipe *Pipe) error {
	if pipe == nil {
		return ErrNilPipe
	}
	if !pipe.attachedOut.CompareAndSwap(false, true) {
		return cerrors.Errorf("pipe %s: %w", pipe.ID(), ErrPipeAttached)
	}
	p.m.Lock()
	defer p.m.Unlock()
	p.pipes = append(p.pipes, pipe)
	return nil
}

// RemovePipe detaches the pipe and reports whether it was attached to this
// port.
func (p *OutPort) RemovePipe(pipe *Pipe) bool {
	p.m.Lock()
	defer p.m.Unlock()
	i := slices.Index(p.pipes, pipe)
	if i < 0 {
		return false
	}
	p.pipes = slices.Delete(p.pipes, i, i+1)
	pipe.attachedOut.Store(false)
	return true
}

// Pipes returns a copy of the attached pipes in the order they were added.
func (p *OutPort) Pipes() []*Pipe {
	p.m.Lock()
	defer p.m.Unlock()
	return slices.Clone(p.pipes)
}

// CanAcceptData reports whether any attached pipe has room for a message.
func (p *OutPort) CanAcceptData() bool {
	for _, pipe := range p.Pipes() {
		if !pipe.IsFull() {
			return true
		}
	}
	return false
}

// Propagate offers the message to every attached pipe in order, blocking
// while a pipe is full. A pipe that fails to accept the message is skipped.
// Propagate only fails if msg is nil or if the context was cancelled, in
// which case the message might not have reached all pipes.
func (p *OutPort) Propagate(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	for _, pipe := range p.Pipes() {
		err := pipe.Offer(ctx, msg)
		if err != nil {
			if ctx.Err() != nil {
				// shutting down
				continue
			}
			p.logger.Warn(ctx).
				Err(err).
				Str(log.PipeIDField, pipe.ID()).
				Str(log.PortIDField, p.id).
				Msg("failed to offer message to pipe, skipping pipe")
			continue
		}
	}
	return ctx.Err()
}

// Emit implements Emitter.
func (p *OutPort) Emit(ctx context.Context, msg *Message) error {
	return p.Propagate(ctx, msg)
}
