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
	"context"
	"testing"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

func newTestMessage(t *testing.T, payload any) *Message {
	t.Helper()
	msg, err := NewMessage(payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestNewPipe_Capacity(t *testing.T) {
	testCases := []struct {
		capacity int
		want     int
	}{
		{capacity: -1, want: DefaultPipeCapacity},
		{capacity: 0, want: DefaultPipeCapacity},
		{capacity: 1, want: 1},
		{capacity: 5, want: 5},
		{capacity: MaxPipeCapacity, want: MaxPipeCapacity},
		{capacity: 1 << 40, want: MaxPipeCapacity},
	}
	for _, tc := range testCases {
		is := is.New(t)
		p := NewPipe(tc.capacity)
		is.Equal(p.Capacity(), tc.want)
		is.True(p.IsEmpty())
		is.True(!p.IsFull())
		is.Equal(p.Size(), 0)
	}
}

func TestPipe_FIFO(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	p := NewPipe(10)
	want := make([]*Message, 10)
	for i := range want {
		want[i] = newTestMessage(t, i)
		is.NoErr(p.Offer(ctx, want[i]))
	}
	is.True(p.IsFull())
	is.Equal(p.Size(), 10)

	for i := range want {
		got, err := p.Poll(ctx)
		is.NoErr(err)
		is.Equal(got, want[i])
	}
	is.True(p.IsEmpty())
}

func TestPipe_OfferNil(t *testing.T) {
	is := is.New(t)
	err := NewPipe(1).Offer(context.Background(), nil)
	is.Equal(err, ErrNilMessage)
}

func TestPipe_OfferBlocksWhileFull(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	p := NewPipe(1)
	first := newTestMessage(t, 1)
	second := newTestMessage(t, 2)
	is.NoErr(p.Offer(ctx, first))

	offered := make(chan error)
	go func() {
		offered <- p.Offer(ctx, second)
	}()

	select {
	case <-offered:
		t.Fatal("expected Offer to block on a full pipe")
	case <-time.After(50 * time.Millisecond):
	}

	got, err := p.Poll(ctx)
	is.NoErr(err)
	is.Equal(got, first)
	is.NoErr(<-offered)

	got, err = p.Poll(ctx)
	is.NoErr(err)
	is.Equal(got, second)
}

func TestPipe_OfferCancelled(t *testing.T) {
	is := is.New(t)

	p := NewPipe(1)
	is.NoErr(p.Offer(context.Background(), newTestMessage(t, 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Offer(ctx, newTestMessage(t, 2))
	is.True(cerrors.Is(err, context.DeadlineExceeded))
	is.Equal(p.Size(), 1)
}

func TestPipe_PollCancelled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	msg, err := NewPipe(1).Poll(ctx)
	is.Equal(msg, nil)
	is.True(cerrors.Is(err, context.Canceled))
}

func TestPipe_TryPoll(t *testing.T) {
	is := is.New(t)

	p := NewPipe(1)
	_, ok := p.TryPoll()
	is.True(!ok)

	want := newTestMessage(t, "x")
	is.NoErr(p.Offer(context.Background(), want))
	got, ok := p.TryPoll()
	is.True(ok)
	is.Equal(got, want)
}

func TestPipe_Clear(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	p := NewPipe(5)
	for i := 0; i < 3; i++ {
		is.NoErr(p.Offer(ctx, newTestMessage(t, i)))
	}

	is.Equal(p.Clear(), 3)
	is.True(p.IsEmpty())
	is.Equal(p.Clear(), 0)
}
