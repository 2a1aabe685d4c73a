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
	"fmt"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

var (
	ErrMissingProperty = cerrors.New("missing property")
	ErrInvalidProperty = cerrors.New("invalid property")

	ErrMissingNodes       = cerrors.New(`description has no "nodes"`)
	ErrMissingConnections = cerrors.New(`description has no "connections"`)
	ErrEmptyType          = cerrors.New("node type must not be empty")
	ErrUnsupportedType    = cerrors.New("unsupported node type")
	ErrDuplicateID        = cerrors.New("duplicate node ID")
	ErrNilNode            = cerrors.New("factory returned no node")
	ErrRoleMismatch       = cerrors.New("factory returned node with unexpected role")
	ErrEmptyEndpoint      = cerrors.New("connection endpoint must not be empty")
	ErrUnknownNode        = cerrors.New("unknown node ID")
	ErrNoOutPort          = cerrors.New("node has no output port")
	ErrNoInPort           = cerrors.New("node has no input port")
	ErrInvalidCapacity    = cerrors.New("invalid pipe capacity")

	ErrEmptyName       = cerrors.New("node type name must not be empty")
	ErrNilFactory      = cerrors.New("node type factory must not be nil")
	ErrNameRegistered  = cerrors.New("node type name already registered")
	ErrUnsupportedFile = cerrors.New("unsupported flow file extension")
)

// Kind classifies a LoadError.
type Kind int

const (
	KindInvalidDescription Kind = iota + 1
	KindUnsupportedType
	KindInvalidProperty
	KindNodeConstruction
	KindDuplicateID
	KindInvalidWiring
)

func (k Kind) String() string {
	switch k {
	case KindInvalidDescription:
		return "invalid description"
	case KindUnsupportedType:
		return "unsupported type"
	case KindInvalidProperty:
		return "invalid property"
	case KindNodeConstruction:
		return "node construction"
	case KindDuplicateID:
		return "duplicate id"
	case KindInvalidWiring:
		return "invalid wiring"
	}
	return "unknown"
}

// LoadError is returned when a flow description can't be loaded. Loading
// stops at the first error, a flow is never partially loaded.
type LoadError struct {
	Kind Kind
	// Index is the position of the offending node or connection in the
	// description, -1 if the error is not tied to a single entry.
	Index int
	// NodeID is the ID of the offending node, if known.
	NodeID string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "could not load flow: " + e.Kind.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at index %d", e.Index)
	}
	if e.NodeID != "" {
		msg += fmt.Sprintf(" (node %q)", e.NodeID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a LoadError of the given kind.
func IsKind(err error, kind Kind) bool {
	var loadErr *LoadError
	return cerrors.As(err, &loadErr) && loadErr.Kind == kind
}

func newLoadError(kind Kind, index int, nodeID string, err error) *LoadError {
	return &LoadError{Kind: kind, Index: index, NodeID: nodeID, Err: err}
}
