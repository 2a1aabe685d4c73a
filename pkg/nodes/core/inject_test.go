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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/matryer/is"
)

func TestInject_SingleMessage(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	underTest, err := NewInject(InjectConfig{Payload: "hello"})
	is.NoErr(err)

	msg, err := underTest.CreateMessage(ctx)
	is.NoErr(err)
	is.Equal(msg.Payload(), "hello")
	is.Equal(len(msg.Metadata()), 0)

	// no more messages until the context is done
	msg, err = underTest.CreateMessage(ctx)
	is.True(cerrors.Is(err, context.DeadlineExceeded))
	is.Equal(msg, nil)

	// opening the body again rearms it
	is.NoErr(underTest.Open(context.Background()))
	msg, err = underTest.CreateMessage(context.Background())
	is.NoErr(err)
	is.Equal(msg.Payload(), "hello")
}

func TestInject_Repeat(t *testing.T) {
	testCases := []struct {
		name         string
		once         bool
		wantFirstMin time.Duration
	}{
		{"wait for first interval", false, 20 * time.Millisecond},
		{"first message immediately", true, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			ctx := context.Background()

			underTest, err := NewInject(InjectConfig{
				Payload:  42.0,
				Metadata: map[string]any{"topic": "sensors"},
				Repeat:   20 * time.Millisecond,
				Once:     tc.once,
			})
			is.NoErr(err)

			start := time.Now()
			first, err := underTest.CreateMessage(ctx)
			is.NoErr(err)
			is.True(time.Since(start) >= tc.wantFirstMin)

			start = time.Now()
			second, err := underTest.CreateMessage(ctx)
			is.NoErr(err)
			is.True(time.Since(start) >= 20*time.Millisecond)

			is.True(first.ID() != second.ID())
			is.Equal(second.Payload(), 42.0)
			if diff := cmp.Diff(map[string]any{"topic": "sensors"}, second.Metadata()); diff != "" {
				t.Errorf("metadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInject_RepeatCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	underTest, err := NewInject(InjectConfig{Payload: "x", Repeat: time.Hour})
	is.NoErr(err)

	cancel()
	_, err = underTest.CreateMessage(ctx)
	is.True(cerrors.Is(err, context.Canceled))
}

func TestNewInjectNode(t *testing.T) {
	testCases := []struct {
		name    string
		props   loader.Properties
		wantErr error
	}{{
		name:  "payload only",
		props: loader.Properties{"payload": "x"},
	}, {
		name:  "all properties",
		props: loader.Properties{"payload": map[string]any{"t": 1.0}, "metadata": map[string]any{"k": "v"}, "repeat": "1s", "once": true},
	}, {
		name:  "repeat in milliseconds",
		props: loader.Properties{"payload": "x", "repeat": 500.0},
	}, {
		name:    "missing payload",
		props:   loader.Properties{},
		wantErr: loader.ErrMissingProperty,
	}, {
		name:    "null payload",
		props:   loader.Properties{"payload": nil},
		wantErr: loader.ErrMissingProperty,
	}, {
		name:    "invalid metadata",
		props:   loader.Properties{"payload": "x", "metadata": "k=v"},
		wantErr: loader.ErrInvalidProperty,
	}, {
		name:    "invalid repeat",
		props:   loader.Properties{"payload": "x", "repeat": "often"},
		wantErr: loader.ErrInvalidProperty,
	}, {
		name:    "negative repeat",
		props:   loader.Properties{"payload": "x", "repeat": "-1s"},
		wantErr: loader.ErrInvalidProperty,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			n, err := NewInjectNode("inject", tc.props)
			if tc.wantErr != nil {
				is.True(cerrors.Is(err, tc.wantErr))
				return
			}
			is.NoErr(err)
			is.Equal(n.ID(), "inject")
			is.Equal(n.Role(), stream.RoleSource)
		})
	}
}

func TestInject_Node(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := NewInjectNode("inject", loader.Properties{"payload": "tick", "repeat": "5ms", "once": true})
	is.NoErr(err)
	n.SetLogger(log.Test(t))

	p := stream.NewPipe(10)
	out, _ := n.OutPort()
	is.NoErr(out.AddPipe(p))

	done := make(chan error)
	go func() { done <- n.Run(ctx) }()

	for range 3 {
		msg, err := p.Poll(ctx)
		is.NoErr(err)
		is.Equal(msg.Payload(), "tick")
	}

	cancel()
	select {
	case err := <-done:
		is.NoErr(err)
	case <-time.After(time.Second):
		t.Fatal("node did not stop")
	}
}
