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

// Package nodeblue wires up everything needed to run Node-Blue flows,
// including logging, metrics, the node registry and the flow pool.
package nodeblue

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cchan"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/ctxutil"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/measure"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/metrics/prometheus"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/builtin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

const metricsServerExitTimeout = 5 * time.Second

// Runtime loads the configured flows and runs them until its context is
// canceled.
type Runtime struct {
	Config Config

	Registry *loader.Registry
	Loader   *loader.Loader
	Pool     *flow.Pool
	// Ready will be closed when Runtime has successfully started
	Ready chan struct{}

	gatherer promclient.Gatherer
	logger   log.CtxLogger
}

// NewRuntime sets up a Runtime instance and primes it for start.
func NewRuntime(cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)

	var gatherer promclient.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = configurePrometheus()
	}
	measure.NodeBlueInfo.WithValues(Version(true)).Inc()

	registry := cfg.NodeRegistry
	if registry == nil {
		registry = builtin.NewRegistry()
	}

	return &Runtime{
		Config:   cfg,
		Registry: registry,
		Loader:   loader.New(logger, registry, cfg.Flows.PipeCapacity),
		Pool:     flow.NewPool(logger),
		Ready:    make(chan struct{}),
		gatherer: gatherer,
		logger:   logger.WithComponent("nodeblue.Runtime"),
	}, nil
}

func newLogger(level string, format string) log.CtxLogger {
	l, _ := zerolog.ParseLevel(level)
	f, _ := log.ParseFormat(format)
	logger := log.InitLogger(l, f)
	logger.Logger = logger.
		Hook(ctxutil.MessageIDLogCtxHook{}).
		Hook(ctxutil.NodeIDLogCtxHook{}).
		Hook(ctxutil.FlowIDLogCtxHook{}).
		Hook(ctxutil.FilepathLogCtxHook{})
	zerolog.DefaultContextLogger = &logger.Logger
	return logger
}

// configurePrometheus registers a fresh metrics registry and returns the
// gatherer exposing it.
func configurePrometheus() promclient.Gatherer {
	registry := prometheus.NewRegistry(nil)
	promRegistry := promclient.NewRegistry()
	promRegistry.MustRegister(registry)
	metrics.Register(registry)
	return promRegistry
}

// Run loads all flows, starts them and blocks until ctx is canceled or a
// flow fails. The returned error is context.Canceled if ctx was canceled.
func (r *Runtime) Run(ctx context.Context) (err error) {
	t, ctx := tomb.WithContext(ctx)
	var stopErr error

	defer func() {
		if err != nil {
			// Run failed, kill the tomb to stop goroutines that might have
			// been already started.
			t.Kill(err)
		}
		<-t.Dying()
		r.logger.Warn(ctx).Msg("node-blue is stopping, stand by for shutdown ...")
		err = t.Wait()
		if stopErr != nil {
			err = stopErr
		}
	}()

	// Register cleanup function that will run after tomb is killed
	r.registerCleanup(t, &stopErr)

	flows, err := r.loadFlows(ctx)
	if err != nil {
		return err
	}
	for _, f := range flows {
		if err := r.Pool.AddFlow(f); err != nil {
			return cerrors.Errorf("could not add flow %s: %w", f.ID(), err)
		}
	}

	if len(flows) == 0 {
		r.logger.Warn(ctx).Str(log.FilepathField, r.Config.Flows.Path).Msg("no flows found")
	} else if err := r.Pool.Run(ctx); err != nil {
		return cerrors.Errorf("failed to run flows: %w", err)
	}

	if r.gatherer != nil {
		if _, err := r.serveMetrics(ctx, t); err != nil {
			return err
		}
	}

	r.logger.Info(ctx).Int("flows", len(flows)).Msg("node-blue started")
	close(r.Ready)
	return nil
}

// loadFlows loads the flow files found under the configured flows path,
// sorted by file name. A missing default directory yields no flows.
func (r *Runtime) loadFlows(ctx context.Context) ([]*flow.Flow, error) {
	files, err := flowFiles(r.Config.Flows.Path)
	if err != nil {
		if os.IsNotExist(err) && r.Config.Flows.Path == defaultFlowsPath {
			return nil, nil
		}
		return nil, cerrors.Errorf("could not list flow files: %w", err)
	}

	flows := make([]*flow.Flow, 0, len(files))
	for _, file := range files {
		f, err := r.Loader.LoadFile(ctx, file)
		if err != nil {
			return nil, cerrors.Errorf("could not load flow file %s: %w", file, err)
		}
		r.logger.Info(ctx).
			Str(log.FlowIDField, f.ID()).
			Str(log.FilepathField, file).
			Int("nodes", len(f.Nodes())).
			Msg("flow loaded")
		flows = append(flows, f)
	}
	return flows, nil
}

// flowFiles returns path if it is a file, otherwise the flow files directly
// inside the directory.
func flowFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !loader.IsFlowFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// registerCleanup stops the flow pool after the tomb starts dying. The
// tomb keeps the first reason it was killed with, so the stop error is also
// stored in stopErr.
func (r *Runtime) registerCleanup(t *tomb.Tomb, stopErr *error) {
	t.Go(func() error {
		<-t.Dying()
		// start cleanup with a fresh context
		ctx := context.Background()
		start := time.Now()
		err := r.stopPool(r.Config.Shutdown.Timeout)
		if err != nil {
			r.logger.Err(ctx, err).Dur(log.DurationField, time.Since(start)).Msg("flows did not stop cleanly")
			*stopErr = err
			return err
		}
		r.logger.Info(ctx).Dur(log.DurationField, time.Since(start)).Msg("all flows stopped")
		return nil
	})
}

// stopPool stops all flows and waits at most timeout for them to stop.
func (r *Runtime) stopPool(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- r.Pool.Stop()
	}()

	err, _, recvErr := cchan.RecvTimeout[error](context.Background(), done, timeout)
	switch {
	case recvErr != nil:
		return cerrors.Errorf("flows did not stop in %v: %w", timeout, recvErr)
	case cerrors.Is(err, context.Canceled):
		// flows stopped because the parent context was canceled
		return nil
	default:
		return err
	}
}

func (r *Runtime) serveMetrics(ctx context.Context, t *tomb.Tomb) (net.Addr, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              r.Config.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, cerrors.Errorf("failed to listen on address %q: %w", r.Config.Metrics.Address, err)
	}

	t.Go(func() error {
		err := srv.Serve(ln)
		if err != nil {
			if err == http.ErrServerClosed {
				// ignore expected close
				return nil
			}
			return cerrors.Errorf("metrics server listening on %q stopped with error: %w", ln.Addr(), err)
		}
		return nil
	})
	t.Go(func() error {
		<-t.Dying()
		// start server shutdown with a timeout, use fresh context
		ctx, cancel := context.WithTimeout(context.Background(), metricsServerExitTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	r.logger.Info(ctx).Str(log.ServerAddressField, ln.Addr().String()).Msg("metrics server started")
	return ln.Addr(), nil
}
