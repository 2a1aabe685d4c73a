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
	"strings"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

// Change sets a metadata key on every message and forwards it.
type Change struct {
	key   string
	value any
}

func NewChange(key string, value any) (*Change, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, cerrors.Errorf("property %q: metadata key must not be empty: %w", "key", loader.ErrInvalidProperty)
	}
	return &Change{key: key, value: value}, nil
}

// NewChangeNode is the factory of the Change node type.
func NewChangeNode(id string, props loader.Properties) (*stream.Node, error) {
	key, err := props.String("key")
	if err != nil {
		return nil, err
	}
	value, err := props.OptionalAny("value", nil)
	if err != nil {
		return nil, err
	}
	body, err := NewChange(key, value)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (c *Change) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	return out.Emit(ctx, msg.WithMetadata(c.key, c.value))
}
