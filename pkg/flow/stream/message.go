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
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// Message is the unit of data passed between nodes. A message is immutable,
// annotating it creates a new message that keeps the ID of the original so
// the message can be traced through the flow.
type Message struct {
	id       string
	payload  any
	metadata map[string]any
}

// NewMessage creates a message with a random ID and empty metadata.
func NewMessage(payload any) (*Message, error) {
	return NewMessageWithMetadata(payload, map[string]any{})
}

// NewMessageWithMetadata creates a message with a random ID. The metadata
// map is copied.
func NewMessageWithMetadata(payload any, metadata map[string]any) (*Message, error) {
	return NewMessageWithID(uuid.NewString(), payload, metadata)
}

// NewMessageWithID creates a message with the supplied ID. The metadata map
// is copied.
func NewMessageWithID(id string, payload any, metadata map[string]any) (*Message, error) {
	switch {
	case id == "":
		return nil, ErrEmptyMessageID
	case payload == nil:
		return nil, ErrNilPayload
	case metadata == nil:
		return nil, ErrNilMetadata
	}
	return &Message{
		id:       id,
		payload:  payload,
		metadata: maps.Clone(metadata),
	}, nil
}

func (m *Message) ID() string {
	return m.id
}

func (m *Message) Payload() any {
	return m.payload
}

// Metadata returns a shallow copy of the metadata. Changing the returned map
// does not change the message.
func (m *Message) Metadata() map[string]any {
	return maps.Clone(m.metadata)
}

// MetadataValue returns a single metadata value without copying the map.
func (m *Message) MetadataValue(key string) (any, bool) {
	v, ok := m.metadata[key]
	return v, ok
}

// WithPayload returns a copy of the message with the payload replaced.
func (m *Message) WithPayload(payload any) (*Message, error) {
	if payload == nil {
		return nil, ErrNilPayload
	}
	return &Message{
		id:       m.id,
		payload:  payload,
		metadata: m.metadata,
	}, nil
}

// WithMetadata returns a copy of the message with key set to value.
func (m *Message) WithMetadata(key string, value any) *Message {
	md := maps.Clone(m.metadata)
	md[key] = value
	return &Message{
		id:       m.id,
		payload:  m.payload,
		metadata: md,
	}
}

// WithAllMetadata returns a copy of the message with the metadata replaced
// by a copy of md.
func (m *Message) WithAllMetadata(md map[string]any) (*Message, error) {
	if md == nil {
		return nil, ErrNilMetadata
	}
	return &Message{
		id:       m.id,
		payload:  m.payload,
		metadata: maps.Clone(md),
	}, nil
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{id=%s, payload=%v, metadata=%v}", m.id, m.payload, m.metadata)
}
