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

package stream_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream/mock"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/matryer/is"
	"go.uber.org/mock/gomock"
)

// runNode starts the node in a goroutine and returns a function that stops
// it and returns the error returned by Run.
func runNode(t *testing.T, n *stream.Node) (stop func() error) {
	t.Helper()
	n.SetLogger(log.Test(t))
	n.SetIdleBackoff(time.Millisecond, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() {
		errC <- n.Run(ctx)
	}()
	return func() error {
		cancel()
		select {
		case err := <-errC:
			return err
		case <-time.After(time.Second):
			t.Fatal("node did not stop in time")
			return nil
		}
	}
}

func connect(t *testing.T, from, to *stream.Node, capacity int) *stream.Pipe {
	t.Helper()
	out, ok := from.OutPort()
	if !ok {
		t.Fatalf("node %s has no output port", from.ID())
	}
	in, ok := to.InPort()
	if !ok {
		t.Fatalf("node %s has no input port", to.ID())
	}
	p := stream.NewPipe(capacity)
	if err := out.AddPipe(p); err != nil {
		t.Fatal(err)
	}
	if err := in.AddPipe(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func waitFor[T any](t *testing.T, c <-chan T) T {
	t.Helper()
	select {
	case v := <-c:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
		var zero T
		return zero
	}
}

func TestNewNode_Errors(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)

	_, err := stream.NewSource("", mock.NewProducer(ctrl))
	is.Equal(err, stream.ErrEmptyNodeID)
	_, err = stream.NewSource("s", nil)
	is.Equal(err, stream.ErrNilBody)
	_, err = stream.NewSink("", mock.NewConsumer(ctrl))
	is.Equal(err, stream.ErrEmptyNodeID)
	_, err = stream.NewSink("s", nil)
	is.Equal(err, stream.ErrNilBody)
	_, err = stream.NewTransform("", nil)
	is.Equal(err, stream.ErrEmptyNodeID)
}

func TestNode_PortsByRole(t *testing.T) {
	ctrl := gomock.NewController(t)

	source, err := stream.NewSource("source", mock.NewProducer(ctrl))
	if err != nil {
		t.Fatal(err)
	}
	sink, err := stream.NewSink("sink", mock.NewConsumer(ctrl))
	if err != nil {
		t.Fatal(err)
	}
	transform, err := stream.NewTransform("transform", mock.NewProcessor(ctrl))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		node                    *stream.Node
		role                    stream.Role
		wantIn, wantOut, wantEr bool
	}{
		{node: source, role: stream.RoleSource, wantIn: false, wantOut: true, wantEr: false},
		{node: sink, role: stream.RoleSink, wantIn: true, wantOut: false, wantEr: true},
		{node: transform, role: stream.RoleTransform, wantIn: true, wantOut: true, wantEr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.role.String(), func(t *testing.T) {
			is := is.New(t)
			is.Equal(tc.node.Role(), tc.role)
			is.Equal(tc.node.Status(), stream.StatusCreated)

			_, ok := tc.node.InPort()
			is.Equal(ok, tc.wantIn)
			_, ok = tc.node.OutPort()
			is.Equal(ok, tc.wantOut)
			_, ok = tc.node.ErrorPort()
			is.Equal(ok, tc.wantEr)
		})
	}
}

func TestNode_SourceToSink(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)

	want := make([]*stream.Message, 3)
	for i := range want {
		msg, err := stream.NewMessage(i)
		is.NoErr(err)
		want[i] = msg
	}

	producer := mock.NewProducer(ctrl)
	gomock.InOrder(
		producer.EXPECT().CreateMessage(gomock.Any()).Return(want[0], nil),
		producer.EXPECT().CreateMessage(gomock.Any()).Return(want[1], nil),
		producer.EXPECT().CreateMessage(gomock.Any()).Return(want[2], nil),
		producer.EXPECT().CreateMessage(gomock.Any()).Return(nil, nil).AnyTimes(),
	)

	received := make(chan *stream.Message, len(want))
	consumer := mock.NewConsumer(ctrl)
	consumer.EXPECT().
		OnMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *stream.Message) error {
			received <- msg
			return nil
		}).
		Times(len(want))

	source, err := stream.NewSource("source", producer)
	is.NoErr(err)
	sink, err := stream.NewSink("sink", consumer)
	is.NoErr(err)
	connect(t, source, sink, 1)

	stopSink := runNode(t, sink)
	stopSource := runNode(t, source)

	for _, w := range want {
		got := waitFor(t, received)
		is.Equal(got.ID(), w.ID())
		is.Equal(got.Payload(), w.Payload())
	}

	is.Equal(source.Status(), stream.StatusRunning)
	is.NoErr(stopSource())
	is.NoErr(stopSink())
	is.Equal(source.Status(), stream.StatusStopped)
	is.Equal(sink.Status(), stream.StatusStopped)
}

func TestNode_TransformForwardsByDefault(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	transform, err := stream.NewTransform("forward", nil)
	is.NoErr(err)

	in := stream.NewPipe(1)
	outs := []*stream.Pipe{stream.NewPipe(1), stream.NewPipe(1)}
	inPort, _ := transform.InPort()
	outPort, _ := transform.OutPort()
	is.NoErr(inPort.AddPipe(in))
	for _, out := range outs {
		is.NoErr(outPort.AddPipe(out))
	}

	stop := runNode(t, transform)

	msg, err := stream.NewMessageWithMetadata("hello", map[string]any{"k": "v"})
	is.NoErr(err)
	is.NoErr(in.Offer(ctx, msg))

	pollCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	for _, out := range outs {
		got, err := out.Poll(pollCtx)
		is.NoErr(err)
		is.Equal(got.ID(), msg.ID())
		is.Equal(got.Payload(), "hello")
		is.Equal(got.Metadata(), map[string]any{"k": "v"})
	}
	is.NoErr(stop())
}

func TestNode_SurvivesFailingMessages(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	var calls atomic.Int32
	received := make(chan *stream.Message, 1)
	sink, err := stream.NewSink("sink", stream.ConsumerFunc(func(_ context.Context, msg *stream.Message) error {
		switch calls.Add(1) {
		case 1:
			return cerrors.New("boom")
		case 2:
			panic("kaboom")
		}
		received <- msg
		return nil
	}))
	is.NoErr(err)

	in := stream.NewPipe(3)
	inPort, _ := sink.InPort()
	is.NoErr(inPort.AddPipe(in))

	stop := runNode(t, sink)

	msgs := make([]*stream.Message, 3)
	for i := range msgs {
		msgs[i], err = stream.NewMessage(i)
		is.NoErr(err)
		is.NoErr(in.Offer(ctx, msgs[i]))
	}

	got := waitFor(t, received)
	is.Equal(got, msgs[2])
	is.Equal(sink.Status(), stream.StatusRunning)
	is.NoErr(stop())
}

func TestNode_DeadLetter(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	processor := mock.NewProcessor(ctrl)
	processor.EXPECT().
		OnMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cerrors.New("cannot process"))

	transform, err := stream.NewTransform("failing", processor)
	is.NoErr(err)

	in, dlq := stream.NewPipe(1), stream.NewPipe(1)
	inPort, _ := transform.InPort()
	errPort, _ := transform.ErrorPort()
	is.NoErr(inPort.AddPipe(in))
	is.NoErr(errPort.AddPipe(dlq))

	stop := runNode(t, transform)

	msg, err := stream.NewMessageWithMetadata("payload", map[string]any{"k": "v"})
	is.NoErr(err)
	is.NoErr(in.Offer(ctx, msg))

	pollCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	got, err := dlq.Poll(pollCtx)
	is.NoErr(err)
	is.NoErr(stop())

	is.Equal(got.ID(), msg.ID())
	is.Equal(got.Payload(), "payload")
	is.Equal(got.Metadata(), map[string]any{
		"k":                      "v",
		stream.MetadataError:     "cannot process",
		stream.MetadataErrorNode: "failing",
	})
}

func TestNode_SourceRetriesAfterError(t *testing.T) {
	is := is.New(t)
	ctrl := gomock.NewController(t)

	msg, err := stream.NewMessage("after error")
	is.NoErr(err)

	producer := mock.NewProducer(ctrl)
	gomock.InOrder(
		producer.EXPECT().CreateMessage(gomock.Any()).Return(nil, cerrors.New("not ready")),
		producer.EXPECT().CreateMessage(gomock.Any()).Return(msg, nil),
		producer.EXPECT().CreateMessage(gomock.Any()).Return(nil, nil).AnyTimes(),
	)

	source, err := stream.NewSource("source", producer)
	is.NoErr(err)
	out := stream.NewPipe(1)
	outPort, _ := source.OutPort()
	is.NoErr(outPort.AddPipe(out))

	stop := runNode(t, source)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := out.Poll(ctx)
	is.NoErr(err)
	is.Equal(got, msg)
	is.NoErr(stop())
}

func TestNode_RunTwice(t *testing.T) {
	is := is.New(t)

	sink, err := stream.NewSink("sink", stream.ConsumerFunc(func(context.Context, *stream.Message) error { return nil }))
	is.NoErr(err)

	stop := runNode(t, sink)
	for sink.Status() != stream.StatusRunning {
		time.Sleep(time.Millisecond)
	}

	err = sink.Run(context.Background())
	is.Equal(err, stream.ErrNodeRunning)
	is.NoErr(stop())
}

type lifecycleBody struct {
	openErr, closeErr error
	opened, closed    atomic.Bool
	logger            log.CtxLogger
}

func (b *lifecycleBody) Open(context.Context) error {
	b.opened.Store(true)
	return b.openErr
}

func (b *lifecycleBody) Close(ctx context.Context) error {
	if ctx.Err() != nil {
		return cerrors.New("close received a cancelled context")
	}
	b.closed.Store(true)
	return b.closeErr
}

func (b *lifecycleBody) SetLogger(logger log.CtxLogger) { b.logger = logger }

func (b *lifecycleBody) OnMessage(context.Context, *stream.Message) error { return nil }

func TestNode_Lifecycle(t *testing.T) {
	testCases := []struct {
		name       string
		body       *lifecycleBody
		wantStatus stream.Status
		wantErr    bool
		wantClosed bool
	}{{
		name:       "open and close succeed",
		body:       &lifecycleBody{},
		wantStatus: stream.StatusStopped,
		wantClosed: true,
	}, {
		name:       "open fails",
		body:       &lifecycleBody{openErr: cerrors.New("no connection")},
		wantStatus: stream.StatusError,
		wantErr:    true,
		wantClosed: false,
	}, {
		name:       "close fails",
		body:       &lifecycleBody{closeErr: cerrors.New("flush failed")},
		wantStatus: stream.StatusError,
		wantErr:    true,
		wantClosed: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)

			n, err := stream.NewSink("sink", tc.body)
			is.NoErr(err)
			is.Equal(n.Body(), tc.body)

			stop := runNode(t, n)
			if tc.body.openErr == nil {
				for n.Status() != stream.StatusRunning {
					time.Sleep(time.Millisecond)
				}
			}
			err = stop()

			is.Equal(err != nil, tc.wantErr)
			is.True(tc.body.opened.Load())
			is.Equal(tc.body.closed.Load(), tc.wantClosed)
			is.Equal(n.Status(), tc.wantStatus)
			is.Equal(tc.body.logger.Component(), "lifecycleBody")
		})
	}
}
