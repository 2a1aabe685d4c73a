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

package core

import (
	"context"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

type InjectConfig struct {
	// Payload is the payload of every injected message.
	Payload any
	// Metadata is copied into every injected message.
	Metadata map[string]any
	// Repeat is the interval between injected messages. If it is 0 a single
	// message is injected.
	Repeat time.Duration
	// Once injects the first message right after the node starts instead of
	// waiting for the first interval.
	Once bool
}

func (c InjectConfig) Validate() error {
	if c.Payload == nil {
		return cerrors.Errorf("property %q: %w", "payload", loader.ErrMissingProperty)
	}
	if c.Repeat < 0 {
		return cerrors.Errorf("property %q: repeat interval must not be negative: %w", "repeat", loader.ErrInvalidProperty)
	}
	return nil
}

// Inject is a source that emits messages with a fixed payload, either once
// or periodically.
type Inject struct {
	config InjectConfig
	logger log.CtxLogger

	sent bool
}

func NewInject(config InjectConfig) (*Inject, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Metadata == nil {
		config.Metadata = map[string]any{}
	}
	return &Inject{config: config, logger: log.Nop()}, nil
}

// NewInjectNode is the factory of the Inject node type.
func NewInjectNode(id string, props loader.Properties) (*stream.Node, error) {
	payload, err := props.Any("payload")
	if err != nil {
		return nil, err
	}
	metadata, err := props.OptionalMap("metadata", nil)
	if err != nil {
		return nil, err
	}
	repeat, err := props.OptionalDuration("repeat", 0)
	if err != nil {
		return nil, err
	}
	once, err := props.OptionalBool("once", false)
	if err != nil {
		return nil, err
	}

	body, err := NewInject(InjectConfig{
		Payload:  payload,
		Metadata: metadata,
		Repeat:   repeat,
		Once:     once,
	})
	if err != nil {
		return nil, err
	}
	return stream.NewSource(id, body)
}

func (i *Inject) SetLogger(logger log.CtxLogger) {
	i.logger = logger
}

// Open resets the injector, a restarted node injects its first message
// again.
func (i *Inject) Open(context.Context) error {
	i.sent = false
	return nil
}

// CreateMessage blocks until the next message is due. After a single
// message was injected it blocks until ctx is cancelled.
func (i *Inject) CreateMessage(ctx context.Context) (*stream.Message, error) {
	switch {
	case !i.sent && (i.config.Repeat == 0 || i.config.Once):
		// first message is injected immediately
	case i.config.Repeat == 0:
		<-ctx.Done()
		return nil, ctx.Err()
	default:
		if err := sleep(ctx, i.config.Repeat); err != nil {
			return nil, err
		}
	}

	msg, err := stream.NewMessageWithMetadata(i.config.Payload, i.config.Metadata)
	if err != nil {
		return nil, err
	}
	i.sent = true
	i.logger.Trace(ctx).Str(log.MessageIDField, msg.ID()).Msg("injecting message")
	return msg, nil
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
