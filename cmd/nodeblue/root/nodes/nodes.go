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

package nodes

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexeyco/simpletable"
	"github.com/conduitio/ecdysis"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/builtin"
)

var (
	_ ecdysis.CommandWithAliases = (*ListCommand)(nil)
	_ ecdysis.CommandWithDocs    = (*ListCommand)(nil)
	_ ecdysis.CommandWithFlags   = (*ListCommand)(nil)
	_ ecdysis.CommandWithExecute = (*ListCommand)(nil)
)

type ListFlags struct {
	Role string `long:"role" usage:"only list node types with the given role; accepts source, sink, transform"`
}

// ListCommand prints the node types that can be used in flow descriptions.
type ListCommand struct {
	flags ListFlags

	registry *loader.Registry
	out      io.Writer
}

func (c *ListCommand) Flags() []ecdysis.Flag {
	return ecdysis.BuildFlags(&c.flags)
}

func (c *ListCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short:   "List the node types available in flow descriptions",
		Example: "nodeblue nodes\nnodeblue nodes --role sink",
	}
}

func (c *ListCommand) Aliases() []string { return []string{"ls"} }

func (c *ListCommand) Usage() string { return "nodes" }

func (c *ListCommand) Execute(_ context.Context) error {
	registry := c.registry
	if registry == nil {
		registry = builtin.NewRegistry()
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	var types []loader.NodeType
	for _, t := range registry.Types() {
		if c.flags.Role != "" && !strings.EqualFold(t.Role.String(), c.flags.Role) {
			continue
		}
		types = append(types, t)
	}

	displayNodeTypes(out, types)
	return nil
}

func displayNodeTypes(out io.Writer, types []loader.NodeType) {
	if len(types) == 0 {
		return
	}

	table := simpletable.New()

	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "TYPE"},
			{Align: simpletable.AlignCenter, Text: "ALIASES"},
			{Align: simpletable.AlignCenter, Text: "ROLE"},
			{Align: simpletable.AlignCenter, Text: "DESCRIPTION"},
		},
	}

	for _, t := range types {
		r := []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: t.Name},
			{Align: simpletable.AlignLeft, Text: strings.Join(t.Aliases, ", ")},
			{Align: simpletable.AlignLeft, Text: t.Role.String()},
			{Align: simpletable.AlignLeft, Text: t.Description},
		}

		table.Body.Cells = append(table.Body.Cells, r)
	}
	table.SetStyle(simpletable.StyleCompact)
	_, _ = fmt.Fprintln(out, table.String())
}
