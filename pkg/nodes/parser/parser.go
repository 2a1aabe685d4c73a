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

// Package parser contains transform nodes converting payloads between
// structured values and their JSON or YAML text form.
package parser

import (
	"bytes"
	"context"

	"github.com/conduitio/yaml/v3"
	"github.com/goccy/go-json"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

// Codec decodes text into a structured value and encodes a structured value
// into text.
type Codec interface {
	Name() string
	Decode([]byte) (any, error)
	Encode(any) ([]byte, error)
}

// Parser decodes string and []byte payloads and encodes all other payloads
// using its codec. The converted payload replaces the payload of the
// message, ID and metadata are kept.
type Parser struct {
	codec Codec
}

func New(codec Codec) *Parser {
	return &Parser{codec: codec}
}

// NewJSONNode is the factory of the JsonParser node type.
func NewJSONNode(id string, _ loader.Properties) (*stream.Node, error) {
	return stream.NewTransform(id, New(JSON{}))
}

// NewYAMLNode is the factory of the YamlParser node type.
func NewYAMLNode(id string, _ loader.Properties) (*stream.Node, error) {
	return stream.NewTransform(id, New(YAML{}))
}

func (p *Parser) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	converted, err := p.convert(msg.Payload())
	if err != nil {
		return cerrors.Errorf("%s: %w", p.codec.Name(), err)
	}
	m, err := msg.WithPayload(converted)
	if err != nil {
		return cerrors.Errorf("%s: %w", p.codec.Name(), err)
	}
	return out.Emit(ctx, m)
}

func (p *Parser) convert(payload any) (any, error) {
	switch v := payload.(type) {
	case string:
		return p.codec.Decode([]byte(v))
	case []byte:
		return p.codec.Decode(v)
	}
	b, err := p.codec.Encode(payload)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Decode(b []byte) (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, cerrors.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}

func (JSON) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, cerrors.Errorf("failed to encode JSON: %w", err)
	}
	return b, nil
}

type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Decode(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, cerrors.Errorf("failed to decode YAML: %w", err)
	}
	return v, nil
}

func (YAML) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, cerrors.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, cerrors.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}
