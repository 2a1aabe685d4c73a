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
	"strings"
	"sync"

	"github.com/gammazero/deque"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/rs/zerolog"
)

const DefaultDebugHistory = 100

type DebugConfig struct {
	// Level is the log level used for received messages, one of debug,
	// info, warn or error.
	Level zerolog.Level
	// IncludeMetadata adds the message metadata to the log event.
	IncludeMetadata bool
	// History is the number of recent messages kept in memory, 0 disables
	// the history.
	History int
}

// ParseDebugLevel parses the level property of the Debug node. Levels are
// case insensitive.
func ParseDebugLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, cerrors.Errorf("property %q: unknown level %q: %w", "level", level, loader.ErrInvalidProperty)
}

// Debug is a sink that logs every received message and keeps the most recent
// ones in memory.
type Debug struct {
	config DebugConfig
	logger log.CtxLogger

	m       sync.Mutex
	history deque.Deque[*stream.Message]
}

func NewDebug(config DebugConfig) (*Debug, error) {
	if config.History < 0 {
		return nil, cerrors.Errorf("property %q: history must not be negative: %w", "history", loader.ErrInvalidProperty)
	}
	return &Debug{config: config, logger: log.Nop()}, nil
}

// NewDebugNode is the factory of the Debug node type.
func NewDebugNode(id string, props loader.Properties) (*stream.Node, error) {
	levelStr, err := props.OptionalString("level", "info")
	if err != nil {
		return nil, err
	}
	level, err := ParseDebugLevel(levelStr)
	if err != nil {
		return nil, err
	}
	includeMetadata, err := props.OptionalBool("includeMetadata", false)
	if err != nil {
		return nil, err
	}
	history, err := props.OptionalInt("history", DefaultDebugHistory)
	if err != nil {
		return nil, err
	}

	body, err := NewDebug(DebugConfig{
		Level:           level,
		IncludeMetadata: includeMetadata,
		History:         history,
	})
	if err != nil {
		return nil, err
	}
	return stream.NewSink(id, body)
}

func (d *Debug) SetLogger(logger log.CtxLogger) {
	d.logger = logger
}

func (d *Debug) OnMessage(ctx context.Context, msg *stream.Message) error {
	e := d.logger.WithLevel(ctx, d.config.Level).Interface("payload", msg.Payload())
	if d.config.IncludeMetadata {
		e = e.Interface("metadata", msg.Metadata())
	}
	e.Msg("debug")

	if d.config.History == 0 {
		return nil
	}
	d.m.Lock()
	defer d.m.Unlock()
	if d.history.Len() == d.config.History {
		d.history.PopFront()
	}
	d.history.PushBack(msg)
	return nil
}

// Recent returns the most recently received messages, oldest first.
func (d *Debug) Recent() []*stream.Message {
	d.m.Lock()
	defer d.m.Unlock()
	out := make([]*stream.Message, d.history.Len())
	for i := range out {
		out[i] = d.history.At(i)
	}
	return out
}
