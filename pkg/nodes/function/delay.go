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

package function

import (
	"context"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

// Delay forwards every message after a fixed delay. Messages are delayed one
// after another, a delay of 1s limits the node to one message per second.
type Delay struct {
	delay time.Duration
}

func NewDelay(delay time.Duration) (*Delay, error) {
	if delay < 0 {
		return nil, cerrors.Errorf("property %q: delay must not be negative: %w", "delay", loader.ErrInvalidProperty)
	}
	return &Delay{delay: delay}, nil
}

// NewDelayNode is the factory of the Delay node type.
func NewDelayNode(id string, props loader.Properties) (*stream.Node, error) {
	delay, err := props.Duration("delay")
	if err != nil {
		return nil, err
	}
	body, err := NewDelay(delay)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (d *Delay) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	if d.delay > 0 {
		t := time.NewTimer(d.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return out.Emit(ctx, msg)
}
