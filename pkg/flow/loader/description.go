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
	"bytes"

	"github.com/conduitio/yaml/v3"
	"github.com/goccy/go-json"
)

// Description is the declarative form of a flow.
type Description struct {
	Nodes       []NodeDescription       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDescription `json:"connections" yaml:"connections"`
	// ErrorNode is the ID of the node that receives messages other nodes
	// failed to handle.
	ErrorNode string `json:"errorNode,omitempty" yaml:"errorNode,omitempty"`
}

type NodeDescription struct {
	Type string `json:"type" yaml:"type"`
	// ID is optional, if empty the ID is synthesized as <type>_<n> where n
	// counts the nodes of that type in the description, starting at 1.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Scan selects the scan policy of the input port ("ordered" or
	// "round-robin").
	Scan       string         `json:"scan,omitempty" yaml:"scan,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type ConnectionDescription struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	// Capacity overrides the default pipe capacity of the loader.
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// rawDescription differentiates between missing and empty lists.
type rawDescription struct {
	Nodes       *[]NodeDescription       `json:"nodes" yaml:"nodes"`
	Connections *[]ConnectionDescription `json:"connections" yaml:"connections"`
	ErrorNode   string                   `json:"errorNode" yaml:"errorNode"`
}

func (r rawDescription) toDescription() (Description, error) {
	switch {
	case r.Nodes == nil:
		return Description{}, newLoadError(KindInvalidDescription, -1, "", ErrMissingNodes)
	case r.Connections == nil:
		return Description{}, newLoadError(KindInvalidDescription, -1, "", ErrMissingConnections)
	}
	return Description{
		Nodes:       *r.Nodes,
		Connections: *r.Connections,
		ErrorNode:   r.ErrorNode,
	}, nil
}

// ParseJSON parses a JSON flow description. Both "nodes" and "connections"
// need to be present, unknown fields are rejected.
func ParseJSON(data []byte) (Description, error) {
	var raw rawDescription
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Description{}, newLoadError(KindInvalidDescription, -1, "", err)
	}
	return raw.toDescription()
}

// ParseYAML parses a YAML flow description. Both "nodes" and "connections"
// need to be present, unknown fields are rejected.
func ParseYAML(data []byte) (Description, error) {
	var raw rawDescription
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Description{}, newLoadError(KindInvalidDescription, -1, "", err)
	}
	return raw.toDescription()
}
