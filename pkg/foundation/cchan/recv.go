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

// Package cchan contains context aware channel helpers.
package cchan

import (
	"context"
	"time"
)

// Recv receives a value from c. It returns the context error if ctx is done
// before a value arrives. The bool is false if c was closed.
func Recv[T any](ctx context.Context, c <-chan T) (T, bool, error) {
	select {
	case val, ok := <-c:
		return val, ok, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

// RecvTimeout is like Recv but gives up with context.DeadlineExceeded after
// timeout.
func RecvTimeout[T any](ctx context.Context, c <-chan T, timeout time.Duration) (T, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Recv(ctx, c)
}
