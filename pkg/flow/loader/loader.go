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

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jangwonseong/Node-Blue/pkg/flow"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/ctxutil"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// Loader builds flows out of flow descriptions using the node types of its
// registry.
type Loader struct {
	logger       log.CtxLogger
	registry     *Registry
	pipeCapacity int
}

// New creates a loader. Pipes are created with pipeCapacity unless a
// connection specifies its own capacity, a capacity < 1 falls back to
// stream.DefaultPipeCapacity and a capacity above stream.MaxPipeCapacity is
// capped.
func New(logger log.CtxLogger, registry *Registry, pipeCapacity int) *Loader {
	if registry == nil {
		registry = NewRegistry()
	}
	switch {
	case pipeCapacity < 1:
		pipeCapacity = stream.DefaultPipeCapacity
	case pipeCapacity > stream.MaxPipeCapacity:
		pipeCapacity = stream.MaxPipeCapacity
	}
	return &Loader{
		logger:       logger.WithComponent("loader.Loader"),
		registry:     registry,
		pipeCapacity: pipeCapacity,
	}
}

// LoadJSON parses and loads a JSON flow description.
func (l *Loader) LoadJSON(ctx context.Context, flowID string, data []byte) (*flow.Flow, error) {
	d, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, flowID, d)
}

// LoadYAML parses and loads a YAML flow description.
func (l *Loader) LoadYAML(ctx context.Context, flowID string, data []byte) (*flow.Flow, error) {
	d, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, flowID, d)
}

// LoadFile loads the flow description stored in path. Files ending in .yaml
// or .yml are parsed as YAML, .json files as JSON. The flow ID is the file
// name without the extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*flow.Flow, error) {
	ctx = ctxutil.ContextWithFilepath(ctx, path)

	ext := strings.ToLower(filepath.Ext(path))
	if !IsFlowFile(path) {
		return nil, cerrors.Errorf("%s: %w", path, ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Errorf("could not read flow file: %w", err)
	}

	flowID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if ext == ".json" {
		return l.LoadJSON(ctx, flowID, data)
	}
	return l.LoadYAML(ctx, flowID, data)
}

// IsFlowFile reports whether the file extension is supported by LoadFile.
func IsFlowFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Load builds a flow out of the description. Loading stops at the first
// problem and returns a *LoadError, nodes are never started by Load.
func (l *Loader) Load(ctx context.Context, flowID string, d Description) (*flow.Flow, error) {
	ctx = ctxutil.ContextWithFlowID(ctx, flowID)

	f, err := flow.New(flowID, l.logger)
	if err != nil {
		return nil, newLoadError(KindInvalidDescription, -1, "", err)
	}

	nodes := make(map[string]*stream.Node, len(d.Nodes))
	typeCount := make(map[string]int)
	for i, nd := range d.Nodes {
		n, err := l.buildNode(i, nd, nodes, typeCount)
		if err != nil {
			return nil, err
		}
		if err := f.AddNode(n); err != nil {
			return nil, newLoadError(KindDuplicateID, i, n.ID(), err)
		}
		nodes[n.ID()] = n
		l.logger.Trace(ctx).
			Str(log.NodeIDField, n.ID()).
			Str(log.NodeTypeField, nd.Type).
			Msg("node created")
	}

	var pipes int
	for i, c := range d.Connections {
		if err := l.connect(c, nodes); err != nil {
			err.Index = i
			l.logger.Debug(ctx).
				Err(err).
				Str(log.ConnectionFromField, c.From).
				Str(log.ConnectionToField, c.To).
				Msg("could not connect nodes")
			return nil, err
		}
		l.logger.Trace(ctx).
			Str(log.ConnectionFromField, c.From).
			Str(log.ConnectionToField, c.To).
			Msg("nodes connected")
		pipes++
	}

	if d.ErrorNode != "" {
		if err := l.connectErrorNode(d.ErrorNode, f.Nodes(), nodes); err != nil {
			return nil, err
		}
	}

	l.logger.Info(ctx).
		Int("nodes", len(d.Nodes)).
		Int("pipes", pipes).
		Msg("flow loaded")
	return f, nil
}

func (l *Loader) buildNode(
	index int,
	nd NodeDescription,
	nodes map[string]*stream.Node,
	typeCount map[string]int,
) (*stream.Node, error) {
	if nd.Type == "" {
		return nil, newLoadError(KindInvalidDescription, index, nd.ID, ErrEmptyType)
	}

	// every node counts towards the synthesized IDs, also the ones with an
	// explicit ID
	typeCount[nd.Type]++
	id := nd.ID
	if id == "" {
		id = fmt.Sprintf("%s_%d", nd.Type, typeCount[nd.Type])
	}

	t, ok := l.registry.Lookup(nd.Type)
	if !ok {
		return nil, newLoadError(KindUnsupportedType, index, id, cerrors.Errorf("%q: %w", nd.Type, ErrUnsupportedType))
	}
	if _, ok := nodes[id]; ok {
		return nil, newLoadError(KindDuplicateID, index, id, ErrDuplicateID)
	}

	scan, err := stream.ParseScanPolicy(nd.Scan)
	if err != nil {
		return nil, newLoadError(KindInvalidDescription, index, id, err)
	}

	n, err := construct(t.Factory, id, Properties(nd.Properties))
	switch {
	case err != nil && (cerrors.Is(err, ErrMissingProperty) || cerrors.Is(err, ErrInvalidProperty)):
		return nil, newLoadError(KindInvalidProperty, index, id, err)
	case err != nil:
		return nil, newLoadError(KindNodeConstruction, index, id, err)
	case n == nil:
		return nil, newLoadError(KindNodeConstruction, index, id, ErrNilNode)
	case t.Role != 0 && n.Role() != t.Role:
		return nil, newLoadError(KindNodeConstruction, index, id,
			cerrors.Errorf("want %s, got %s: %w", t.Role, n.Role(), ErrRoleMismatch))
	}

	if in, ok := n.InPort(); ok {
		in.SetScanPolicy(scan)
	}
	return n, nil
}

// construct calls the factory and turns a panic into an error.
func construct(factory Factory, id string, props Properties) (n *stream.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cerrors.Errorf("factory panicked: %v", r)
		}
	}()
	if props == nil {
		props = Properties{}
	}
	return factory(id, props)
}

func (l *Loader) connect(c ConnectionDescription, nodes map[string]*stream.Node) *LoadError {
	if c.From == "" || c.To == "" {
		return newLoadError(KindInvalidWiring, -1, "", ErrEmptyEndpoint)
	}
	from, ok := nodes[c.From]
	if !ok {
		return newLoadError(KindInvalidWiring, -1, c.From, ErrUnknownNode)
	}
	to, ok := nodes[c.To]
	if !ok {
		return newLoadError(KindInvalidWiring, -1, c.To, ErrUnknownNode)
	}
	out, ok := from.OutPort()
	if !ok {
		return newLoadError(KindInvalidWiring, -1, c.From,
			cerrors.Errorf("%s node %s can't be a connection source: %w", from.Role(), from.ID(), ErrNoOutPort))
	}
	in, ok := to.InPort()
	if !ok {
		return newLoadError(KindInvalidWiring, -1, c.To,
			cerrors.Errorf("%s node %s can't be a connection target: %w", to.Role(), to.ID(), ErrNoInPort))
	}
	if c.Capacity < 0 || c.Capacity > stream.MaxPipeCapacity {
		return newLoadError(KindInvalidWiring, -1, c.From,
			cerrors.Errorf("%d is not between 0 and %d: %w", c.Capacity, stream.MaxPipeCapacity, ErrInvalidCapacity))
	}

	capacity := c.Capacity
	if capacity == 0 {
		capacity = l.pipeCapacity
	}
	p := stream.NewPipe(capacity)
	if err := out.AddPipe(p); err != nil {
		return newLoadError(KindInvalidWiring, -1, c.From, err)
	}
	if err := in.AddPipe(p); err != nil {
		return newLoadError(KindInvalidWiring, -1, c.To, err)
	}
	return nil
}

// connectErrorNode attaches a dedicated pipe from the error port of every
// node to the input port of the error node.
func (l *Loader) connectErrorNode(errorNodeID string, ordered []*stream.Node, nodes map[string]*stream.Node) error {
	errorNode, ok := nodes[errorNodeID]
	if !ok {
		return newLoadError(KindInvalidWiring, -1, errorNodeID, cerrors.Errorf("error node: %w", ErrUnknownNode))
	}
	in, ok := errorNode.InPort()
	if !ok {
		return newLoadError(KindInvalidWiring, -1, errorNodeID, cerrors.Errorf("error node: %w", ErrNoInPort))
	}
	for _, n := range ordered {
		if n == errorNode {
			continue
		}
		errPort, ok := n.ErrorPort()
		if !ok {
			continue
		}
		p := stream.NewPipe(l.pipeCapacity)
		if err := errPort.AddPipe(p); err != nil {
			return newLoadError(KindInvalidWiring, -1, n.ID(), err)
		}
		if err := in.AddPipe(p); err != nil {
			return newLoadError(KindInvalidWiring, -1, errorNodeID, err)
		}
	}
	return nil
}
