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
	"sync"
	"testing"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/matryer/is"
)

// collector is an emitter that keeps all emitted messages.
type collector struct {
	m    sync.Mutex
	msgs []*stream.Message
}

func (c *collector) Emit(_ context.Context, msg *stream.Message) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *collector) payloads() []any {
	c.m.Lock()
	defer c.m.Unlock()
	out := make([]any, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Payload()
	}
	return out
}

func newMessage(t *testing.T, payload any, metadata map[string]any) *stream.Message {
	t.Helper()
	if metadata == nil {
		metadata = map[string]any{}
	}
	msg, err := stream.NewMessageWithMetadata(payload, metadata)
	is.New(t).NoErr(err)
	return msg
}
