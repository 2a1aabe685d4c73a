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

package log

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.ErrorStackMarshaler = cerrors.GetStackTrace
}

// CtxLogger is a wrapper around a zerolog.Logger which adds support for
// context hooks. All methods that return *zerolog.Event take a context, so
// that hooks registered with zerolog (see ctxutil) can enrich the event with
// values stored in the context, e.g. the ID of the message being processed.
type CtxLogger struct {
	zerolog.Logger
	// component is attached to all messages and can be replaced
	component string
}

// New returns a new CtxLogger wrapping logger.
func New(logger zerolog.Logger) CtxLogger {
	return CtxLogger{Logger: logger}
}

// Nop returns a CtxLogger that discards everything.
func Nop() CtxLogger {
	return CtxLogger{Logger: zerolog.Nop()}
}

// Test returns a CtxLogger that writes to the test log of t.
func Test(t testing.TB) CtxLogger {
	return CtxLogger{Logger: zerolog.New(zerolog.NewTestWriter(t))}
}

// InitLogger returns a logger writing with format f at the given level.
func InitLogger(level zerolog.Level, f Format) CtxLogger {
	w := GetWriter(f, os.Stdout)
	logger := zerolog.New(w).
		With().
		Timestamp().
		Stack().
		Logger().
		Level(level)

	return New(logger)
}

// WithComponent returns a copy of the logger that attaches the component
// field to every event.
func (l CtxLogger) WithComponent(component string) CtxLogger {
	l.component = component
	return l
}

// WithComponentFromType derives the component name from the package path and
// name of the type of c, e.g. "flow.loader.Loader".
func (l CtxLogger) WithComponentFromType(c any) CtxLogger {
	cType := reflect.TypeOf(c)
	for cType.Kind() == reflect.Ptr || cType.Kind() == reflect.Interface {
		cType = cType.Elem()
	}

	pkgPath := cType.PkgPath()
	pkgPath = strings.TrimPrefix(pkgPath, "github.com/jangwonseong/Node-Blue/pkg/")
	pkgPath = strings.ReplaceAll(pkgPath, "/", ".")
	l.component = pkgPath + "." + cType.Name()
	return l
}

// WithNodeID returns a copy of the logger that attaches the node ID to every
// event.
func (l CtxLogger) WithNodeID(id string) CtxLogger {
	l.Logger = l.Logger.With().Str(NodeIDField, id).Logger()
	return l
}

func (l CtxLogger) Component() string {
	return l.component
}

func (l CtxLogger) Trace(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Trace().Ctx(ctx))
}

func (l CtxLogger) Debug(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Debug().Ctx(ctx))
}

func (l CtxLogger) Info(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Info().Ctx(ctx))
}

func (l CtxLogger) Warn(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Warn().Ctx(ctx))
}

func (l CtxLogger) Error(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Error().Ctx(ctx))
}

// Err starts a new message with error level if err is not nil, otherwise with
// info level.
func (l CtxLogger) Err(ctx context.Context, err error) *zerolog.Event {
	return l.attachComponent(l.Logger.Err(err).Ctx(ctx))
}

func (l CtxLogger) WithLevel(ctx context.Context, level zerolog.Level) *zerolog.Event {
	return l.attachComponent(l.Logger.WithLevel(level).Ctx(ctx))
}

func (l CtxLogger) Log(ctx context.Context) *zerolog.Event {
	return l.attachComponent(l.Logger.Log().Ctx(ctx))
}

func (l CtxLogger) attachComponent(e *zerolog.Event) *zerolog.Event {
	if l.component != "" {
		e.Str(ComponentField, l.component)
	}
	return e
}
