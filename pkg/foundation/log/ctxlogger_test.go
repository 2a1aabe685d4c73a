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
	"bytes"
	"context"
	"testing"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestCtxLogger_Levels(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		logfunc func(CtxLogger)
		want    string
	}{{
		name: "log empty",
		logfunc: func(logger CtxLogger) {
			logger.Log(ctx).Msg("")
		},
		want: `{}` + "\n",
	}, {
		name: "debug one-field",
		logfunc: func(logger CtxLogger) {
			logger.Debug(ctx).Str("foo", "bar").Msg("")
		},
		want: `{"level":"debug","foo":"bar"}` + "\n",
	}, {
		name: "info two-field",
		logfunc: func(logger CtxLogger) {
			logger.Info(ctx).
				Str("foo", "bar").
				Int("n", 123).
				Msg("")
		},
		want: `{"level":"info","foo":"bar","n":123}` + "\n",
	}, {
		name: "err without error",
		logfunc: func(logger CtxLogger) {
			logger.Err(ctx, nil).Msg("")
		},
		want: `{"level":"info"}` + "\n",
	}, {
		name: "with level",
		logfunc: func(logger CtxLogger) {
			logger.WithLevel(ctx, zerolog.WarnLevel).Msg("")
		},
		want: `{"level":"warn"}` + "\n",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			var buf bytes.Buffer
			logger := New(zerolog.New(&buf))
			tc.logfunc(logger)
			is.Equal(tc.want, buf.String())
		})
	}
}

func TestCtxLogger_WithHook(t *testing.T) {
	is := is.New(t)

	type strVal struct{}
	ctx := context.WithValue(context.Background(), strVal{}, "bar")
	hook := zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Interface("strval", e.GetCtx().Value(strVal{}))
	})

	var buf bytes.Buffer
	logger := New(zerolog.New(&buf).Hook(hook))
	logger.Info(ctx).Msg("")

	is.Equal(`{"level":"info","strval":"bar"}`+"\n", buf.String())
}

func TestCtxLogger_Component(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	var buf bytes.Buffer
	logger := New(zerolog.New(&buf)).WithComponent("flow.Flow")
	logger.Info(ctx).Msg("started")

	is.Equal(`{"level":"info","component":"flow.Flow","message":"started"}`+"\n", buf.String())
}

func TestCtxLogger_ComponentFromType(t *testing.T) {
	is := is.New(t)

	logger := Nop().WithComponentFromType(CtxLogger{})
	is.Equal("foundation.log.CtxLogger", logger.Component())
}

func TestCtxLogger_WithNodeID(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	logger := New(zerolog.New(&buf)).WithNodeID("Inject_1")
	logger.Info(context.Background()).Msg("")

	is.Equal(`{"level":"info","node_id":"Inject_1"}`+"\n", buf.String())
}

func TestCtxLogger_ErrWithStack(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	logger := New(zerolog.New(&buf).With().Stack().Logger())
	logger.Err(context.Background(), cerrors.New("boom")).Msg("")

	is.True(bytes.Contains(buf.Bytes(), []byte(`"error":"boom"`)))
	is.True(bytes.Contains(buf.Bytes(), []byte(`"stack":[{"func":`)))
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	f, err := ParseFormat("json")
	is.NoErr(err)
	is.Equal(FormatJSON, f)

	f, err = ParseFormat(" CLI ")
	is.NoErr(err)
	is.Equal(FormatCLI, f)
	is.Equal(f.String(), "cli")

	_, err = ParseFormat("xml")
	is.True(err != nil)
}

func TestGetWriter(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.Equal(GetWriter(FormatJSON, &buf), &buf)

	w := GetWriter(FormatCLI, &buf)
	logger := zerolog.New(w)
	logger.Info().Str(NodeIDField, "Inject_1").Msg("node started")
	is.True(bytes.Contains(buf.Bytes(), []byte("node started")))
	is.True(!bytes.HasPrefix(buf.Bytes(), []byte("{")))
}
