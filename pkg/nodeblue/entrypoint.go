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

package nodeblue

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

const (
	exitCodeErr       = 1
	exitCodeInterrupt = 2
)

// Entrypoint runs Node-Blue with a parsed configuration and exits the
// process with a non-zero code if the runtime fails.
type Entrypoint struct{}

// Serve builds a runtime out of cfg and runs it until the process receives an
// interrupt signal.
func (*Entrypoint) Serve(cfg Config) {
	runtime, err := NewRuntime(cfg)
	if err != nil {
		exitWithError(cerrors.Errorf("failed to set up node-blue runtime: %w", err))
	}

	// As per the docs, the signals SIGKILL and SIGSTOP may not be caught by a program
	ctx := cancelOnInterrupt(context.Background())
	err = runtime.Run(ctx)
	if err != nil && !cerrors.Is(err, context.Canceled) {
		exitWithError(cerrors.Errorf("node-blue runtime error: %w", err))
	}
}

// cancelOnInterrupt returns a context that is canceled when the interrupt
// signal is received.
//   - After the first signal the function will continue to listen
//   - On the second signal executes a hard exit, without waiting for a graceful
//     shutdown.
func cancelOnInterrupt(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-signalChan: // first interrupt signal
			cancel()
		case <-ctx.Done():
		}
		<-signalChan // second interrupt signal
		os.Exit(exitCodeInterrupt)
	}()

	return ctx
}

func exitWithError(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
	os.Exit(exitCodeErr)
}
