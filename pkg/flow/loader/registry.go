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
	"slices"
	"sync"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

// Factory creates a node with the given ID configured by the properties.
// Errors caused by the properties should wrap ErrMissingProperty or
// ErrInvalidProperty (the Properties accessors do that already).
type Factory func(id string, props Properties) (*stream.Node, error)

// NodeType describes a node type that can be referenced in a flow
// description.
type NodeType struct {
	// Name is the type name used in flow descriptions.
	Name string
	// Aliases are additional names resolving to the same type.
	Aliases []string
	// Role is the role of the nodes created by Factory.
	Role        stream.Role
	Description string
	Factory     Factory
}

// Registry maps type names to node types. Registries are independent of
// each other, every loader is handed the registry it should use.
type Registry struct {
	m     sync.RWMutex
	types map[string]NodeType
	names []string
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]NodeType)}
}

// Register adds the node type under its name and all aliases. Registering
// fails if any of the names is already taken.
func (r *Registry) Register(t NodeType) error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if t.Factory == nil {
		return cerrors.Errorf("%s: %w", t.Name, ErrNilFactory)
	}

	r.m.Lock()
	defer r.m.Unlock()

	names := append([]string{t.Name}, t.Aliases...)
	for _, name := range names {
		if name == "" {
			return cerrors.Errorf("alias of %s: %w", t.Name, ErrEmptyName)
		}
		if _, ok := r.types[name]; ok {
			return cerrors.Errorf("%s: %w", name, ErrNameRegistered)
		}
	}
	for _, name := range names {
		r.types[name] = t
	}
	r.names = append(r.names, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t NodeType) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the node type registered under name or alias.
func (r *Registry) Lookup(name string) (NodeType, bool) {
	r.m.RLock()
	defer r.m.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Types returns all registered node types sorted by name.
func (r *Registry) Types() []NodeType {
	r.m.RLock()
	defer r.m.RUnlock()
	names := slices.Clone(r.names)
	slices.Sort(names)
	out := make([]NodeType, len(names))
	for i, name := range names {
		out[i] = r.types[name]
	}
	return out
}
