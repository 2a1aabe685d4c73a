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

// Package builtin assembles the registry of node types shipped with
// Node-Blue.
package builtin

import (
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/core"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/file"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/function"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/parser"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/postgres"
)

// aliasSuffix is appended to every type name to form its alias, "Inject"
// can also be referenced as "InjectNode".
const aliasSuffix = "Node"

// DefaultNodeTypes are the node types registered by NewRegistry.
var DefaultNodeTypes = []loader.NodeType{
	{
		Name:        "Inject",
		Role:        stream.RoleSource,
		Description: "Emits a fixed payload once or in an interval.",
		Factory:     core.NewInjectNode,
	},
	{
		Name:        "Debug",
		Role:        stream.RoleSink,
		Description: "Logs received messages and keeps the most recent ones.",
		Factory:     core.NewDebugNode,
	},
	{
		Name:        "Change",
		Role:        stream.RoleTransform,
		Description: "Sets a metadata key.",
		Factory:     function.NewChangeNode,
	},
	{
		Name:        "Switch",
		Role:        stream.RoleTransform,
		Description: "Forwards messages matching rules on payload or metadata.",
		Factory:     function.NewSwitchNode,
	},
	{
		Name:        "Range",
		Role:        stream.RoleTransform,
		Description: "Maps a numeric payload from one range to another.",
		Factory:     function.NewRangeNode,
	},
	{
		Name:        "Delay",
		Role:        stream.RoleTransform,
		Description: "Forwards messages after a fixed delay.",
		Factory:     function.NewDelayNode,
	},
	{
		Name:        "Function",
		Role:        stream.RoleTransform,
		Description: "Runs a JavaScript function for every message.",
		Factory:     function.NewFunctionNode,
	},
	{
		Name:        "JsonParser",
		Role:        stream.RoleTransform,
		Description: "Converts payloads from and to JSON.",
		Factory:     parser.NewJSONNode,
	},
	{
		Name:        "YamlParser",
		Role:        stream.RoleTransform,
		Description: "Converts payloads from and to YAML.",
		Factory:     parser.NewYAMLNode,
	},
	{
		Name:        "ReadFile",
		Role:        stream.RoleTransform,
		Description: "Replaces the payload with the content of a file.",
		Factory:     file.NewReadNode,
	},
	{
		Name:        "WriteFile",
		Role:        stream.RoleTransform,
		Description: "Writes payloads as lines to a file.",
		Factory:     file.NewWriteNode,
	},
	{
		Name:        "Postgres",
		Role:        stream.RoleSink,
		Description: "Inserts map payloads as rows into a PostgreSQL table.",
		Factory:     postgres.NewSinkNode,
	},
}

// NewRegistry returns a new registry containing DefaultNodeTypes. Every call
// returns an independent registry, callers may register additional types.
func NewRegistry() *loader.Registry {
	r := loader.NewRegistry()
	for _, t := range DefaultNodeTypes {
		t.Aliases = append([]string{t.Name + aliasSuffix}, t.Aliases...)
		r.MustRegister(t)
	}
	return r
}
