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

//go:generate mockgen -typed -destination=mock/body.go -package=mock -mock_names=Producer=Producer,Consumer=Consumer,Processor=Processor,Emitter=Emitter . Producer,Consumer,Processor,Emitter

package stream

import (
	"context"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// Producer is the body of a source node.
type Producer interface {
	// CreateMessage is called in a loop while the node is running. Returning
	// a nil message means there is nothing to emit right now, the node backs
	// off before calling it again.
	CreateMessage(ctx context.Context) (*Message, error)
}

// Consumer is the body of a sink node.
type Consumer interface {
	OnMessage(ctx context.Context, msg *Message) error
}

// Processor is the body of a transform node. The processor decides what to
// emit, it can emit the received message, any number of new messages or
// nothing at all.
type Processor interface {
	OnMessage(ctx context.Context, msg *Message, out Emitter) error
}

// Emitter sends messages to the nodes downstream.
type Emitter interface {
	Emit(ctx context.Context, msg *Message) error
}

// Opener can be implemented by a body that needs to acquire resources before
// the node starts handling messages. If Open fails the node does not start.
type Opener interface {
	Open(ctx context.Context) error
}

// Closer can be implemented by a body that needs to release resources after
// the node stops.
type Closer interface {
	Close(ctx context.Context) error
}

// LoggingBody can be implemented by a body to receive the logger of the node
// it is attached to.
type LoggingBody interface {
	SetLogger(log.CtxLogger)
}

type ProducerFunc func(ctx context.Context) (*Message, error)

func (f ProducerFunc) CreateMessage(ctx context.Context) (*Message, error) {
	return f(ctx)
}

type ConsumerFunc func(ctx context.Context, msg *Message) error

func (f ConsumerFunc) OnMessage(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

type ProcessorFunc func(ctx context.Context, msg *Message, out Emitter) error

func (f ProcessorFunc) OnMessage(ctx context.Context, msg *Message, out Emitter) error {
	return f(ctx, msg, out)
}

type EmitterFunc func(ctx context.Context, msg *Message) error

func (f EmitterFunc) Emit(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Forward is a processor that emits every received message unchanged.
var Forward Processor = ProcessorFunc(func(ctx context.Context, msg *Message, out Emitter) error {
	return out.Emit(ctx, msg)
})
