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

// Package file contains transform nodes reading and writing local files.
package file

import (
	"bufio"
	"context"
	"os"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// Read replaces the payload of every received message with the content of a
// file. It emits either the first line as a string or all lines as a list.
// Nothing is emitted if the file is empty.
type Read struct {
	path         string
	readAllLines bool
	logger       log.CtxLogger
}

func NewRead(path string, readAllLines bool) (*Read, error) {
	if path == "" {
		return nil, cerrors.Errorf("property %q: path must not be empty: %w", "path", loader.ErrInvalidProperty)
	}
	return &Read{path: path, readAllLines: readAllLines, logger: log.Nop()}, nil
}

// NewReadNode is the factory of the ReadFile node type.
func NewReadNode(id string, props loader.Properties) (*stream.Node, error) {
	path, err := props.String("path")
	if err != nil {
		return nil, err
	}
	readAllLines, err := props.OptionalBool("readAllLines", false)
	if err != nil {
		return nil, err
	}
	body, err := NewRead(path, readAllLines)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (r *Read) SetLogger(logger log.CtxLogger) {
	r.logger = logger
}

func (r *Read) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	lines, err := r.readLines()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		r.logger.Debug(ctx).Str(log.FilepathField, r.path).Msg("file is empty, dropping message")
		return nil
	}

	var payload any = lines[0]
	if r.readAllLines {
		payload = lines
	}
	m, err := msg.WithPayload(payload)
	if err != nil {
		return err
	}
	return out.Emit(ctx, m)
}

func (r *Read) readLines() ([]any, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, cerrors.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	var lines []any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if !r.readAllLines {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, cerrors.Errorf("could not read file %s: %w", r.path, err)
	}
	return lines, nil
}
