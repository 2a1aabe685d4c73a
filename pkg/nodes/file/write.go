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

package file

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// Write writes the payload of every received message as a line to a file
// and forwards the message. Strings and byte slices are written as they
// are, maps and lists as JSON and everything else in its default format.
// Unless append is set the file is truncated when the node starts.
type Write struct {
	path   string
	append bool
	logger log.CtxLogger

	m sync.Mutex
	f *os.File
}

func NewWrite(path string, appendLines bool) (*Write, error) {
	if path == "" {
		return nil, cerrors.Errorf("property %q: path must not be empty: %w", "path", loader.ErrInvalidProperty)
	}
	return &Write{path: path, append: appendLines, logger: log.Nop()}, nil
}

// NewWriteNode is the factory of the WriteFile node type.
func NewWriteNode(id string, props loader.Properties) (*stream.Node, error) {
	path, err := props.String("path")
	if err != nil {
		return nil, err
	}
	appendLines, err := props.OptionalBool("append", false)
	if err != nil {
		return nil, err
	}
	body, err := NewWrite(path, appendLines)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (w *Write) SetLogger(logger log.CtxLogger) {
	w.logger = logger
}

func (w *Write) Open(ctx context.Context) error {
	flags := os.O_CREATE | os.O_WRONLY
	if w.append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return cerrors.Errorf("could not open file: %w", err)
	}

	w.m.Lock()
	defer w.m.Unlock()
	w.f = f
	w.logger.Debug(ctx).Str(log.FilepathField, w.path).Bool("append", w.append).Msg("opened file")
	return nil
}

func (w *Write) Close(context.Context) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	if err != nil {
		return cerrors.Errorf("could not close file: %w", err)
	}
	return nil
}

func (w *Write) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	line, err := formatLine(msg.Payload())
	if err != nil {
		return err
	}
	if err := w.writeLine(line); err != nil {
		return err
	}
	return out.Emit(ctx, msg)
}

func (w *Write) writeLine(line []byte) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.f == nil {
		return cerrors.New("file is not open")
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(append(buf, line...), '\n')
	if _, err := w.f.Write(buf); err != nil {
		return cerrors.Errorf("could not write to file %s: %w", w.path, err)
	}
	return nil
}

func formatLine(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, cerrors.Errorf("could not encode payload: %w", err)
		}
		return b, nil
	}
	return []byte(fmt.Sprint(payload)), nil
}
