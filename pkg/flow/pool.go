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

package flow

import (
	"context"
	"sync"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/sourcegraph/conc/pool"
)

// Pool runs a set of independent flows.
type Pool struct {
	logger log.CtxLogger

	m       sync.Mutex
	flows   []*Flow
	ids     map[string]bool
	running bool
}

func NewPool(logger log.CtxLogger) *Pool {
	return &Pool{
		logger: logger.WithComponent("flow.Pool"),
		ids:    make(map[string]bool),
	}
}

// AddFlow adds a flow to the pool. Flows can't be added while the pool is
// running.
func (p *Pool) AddFlow(f *Flow) error {
	if f == nil {
		return ErrNilFlow
	}
	p.m.Lock()
	defer p.m.Unlock()
	if p.running {
		return ErrPoolRunning
	}
	if p.ids[f.ID()] {
		return cerrors.Errorf("%s: %w", f.ID(), ErrDuplicateFlow)
	}
	p.ids[f.ID()] = true
	p.flows = append(p.flows, f)
	return nil
}

// Flows returns the flows in the order they were added.
func (p *Pool) Flows() []*Flow {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]*Flow, len(p.flows))
	copy(out, p.flows)
	return out
}

// Run starts all flows. If a flow fails to start the flows started before it
// are stopped and the error is returned.
func (p *Pool) Run(ctx context.Context) error {
	p.m.Lock()
	if p.running {
		p.m.Unlock()
		return ErrPoolRunning
	}
	if len(p.flows) == 0 {
		p.m.Unlock()
		return ErrEmptyPool
	}
	p.running = true
	flows := make([]*Flow, len(p.flows))
	copy(flows, p.flows)
	p.m.Unlock()

	for i, f := range flows {
		err := f.Run(ctx)
		if err != nil {
			p.setRunning(false)
			p.logger.Err(ctx, err).Str(log.FlowIDField, f.ID()).Msg("could not start flow, stopping started flows")
			if stopErr := p.stop(ctx, flows[:i]); stopErr != nil {
				p.logger.Warn(ctx).Err(stopErr).Msg("could not stop started flows")
			}
			return cerrors.Errorf("could not start flow %s: %w", f.ID(), err)
		}
	}

	p.logger.Info(ctx).Int("flows", len(flows)).Msg("flow pool started")
	return nil
}

// Stop stops all flows concurrently and waits for them to stop. Stop can be
// called multiple times.
func (p *Pool) Stop() error {
	defer p.setRunning(false)
	return p.stop(context.Background(), p.Flows())
}

func (p *Pool) setRunning(running bool) {
	p.m.Lock()
	defer p.m.Unlock()
	p.running = running
}

func (p *Pool) stop(ctx context.Context, flows []*Flow) error {
	wp := pool.New().WithErrors()
	for _, f := range flows {
		wp.Go(func() error {
			p.logger.Debug(ctx).Str(log.FlowIDField, f.ID()).Msg("stopping flow")
			if err := f.Stop(); err != nil {
				return cerrors.Errorf("flow %s: %w", f.ID(), err)
			}
			return nil
		})
	}
	return wp.Wait()
}

// Wait blocks until all flows stop.
func (p *Pool) Wait() error {
	var errs []error
	for _, f := range p.Flows() {
		if err := f.Wait(); err != nil {
			errs = append(errs, cerrors.Errorf("flow %s: %w", f.ID(), err))
		}
	}
	return cerrors.Join(errs...)
}
