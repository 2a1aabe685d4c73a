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

	"github.com/google/uuid"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/measure"
)

const (
	// DefaultPipeCapacity is used when a pipe is created with a capacity < 1.
	DefaultPipeCapacity = 1024
	// MaxPipeCapacity is the largest capacity a pipe can be created with,
	// larger capacities are capped.
	MaxPipeCapacity = 1 << 20
)

// Pipe is a bounded FIFO queue of messages connecting the output port of one
// node with the input port of another. A pipe has exactly one producer and
// one consumer, which is enforced when attaching it to ports.
type Pipe struct {
	id string
	ch chan *Message

	// attachedOut and attachedIn are set once the pipe is attached to an
	// output or input port.
	attachedOut atomic.Bool
	attachedIn  atomic.Bool
}

func NewPipe(capacity int) *Pipe {
	switch {
	case capacity < 1:
		capacity = DefaultPipeCapacity
	case capacity > MaxPipeCapacity:
		capacity = MaxPipeCapacity
	}
	return &Pipe{
		id: uuid.NewString(),
		ch: make(chan *Message, capacity),
	}
}

func (p *Pipe) ID() string {
	return p.id
}

// Offer appends the message to the pipe, blocking while the pipe is full. If
// the context is cancelled while waiting the message is not added and the
// context error is returned.
func (p *Pipe) Offer(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	select {
	case p.ch <- msg:
		return nil
	default:
	}
	select {
	case p.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll removes and returns the oldest message, blocking while the pipe is
// empty. If the context is cancelled while waiting the context error is
// returned.
func (p *Pipe) Poll(ctx context.Context) (*Message, error) {
	select {
	case msg := <-p.ch:
		return msg, nil
	default:
	}
	select {
	case msg := <-p.ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryPoll removes and returns the oldest message if there is one, it never
// blocks.
func (p *Pipe) TryPoll() (*Message, bool) {
	select {
	case msg := <-p.ch:
		return msg, true
	default:
		return nil, false
	}
}

func (p *Pipe) IsEmpty() bool {
	return len(p.ch) == 0
}

func (p *Pipe) IsFull() bool {
	return len(p.ch) == cap(p.ch)
}

func (p *Pipe) Size() int {
	return len(p.ch)
}

func (p *Pipe) Capacity() int {
	return cap(p.ch)
}

// Clear discards all buffered messages and returns how many were discarded.
// The discarded messages are lost, they are not delivered to any node.
func (p *Pipe) Clear() int {
	var dropped int
	for {
		if _, ok := p.TryPoll(); !ok {
			break
		}
		dropped++
	}
	if dropped > 0 {
		measure.PipeDroppedMessagesCounter.Inc(float64(dropped))
	}
	return dropped
}
