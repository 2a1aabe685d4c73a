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

package validate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/conduitio/ecdysis"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/jangwonseong/Node-Blue/pkg/nodes/builtin"
)

var (
	_ ecdysis.CommandWithArgs    = (*ValidateCommand)(nil)
	_ ecdysis.CommandWithDocs    = (*ValidateCommand)(nil)
	_ ecdysis.CommandWithExecute = (*ValidateCommand)(nil)
)

type ValidateArgs struct {
	Paths []string
}

// ValidateCommand loads flow description files without running them.
type ValidateCommand struct {
	args ValidateArgs

	registry *loader.Registry
	out      io.Writer
}

func (c *ValidateCommand) Usage() string { return "validate" }

func (c *ValidateCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "Validate flow description files",
		Long: `Loads every given flow description file with the builtin node types and
reports how many nodes and pipes it contains. Nodes are constructed but never
started. The command fails on the first file that can not be loaded.`,
		Example: "nodeblue validate flows/temperature.yaml\nnodeblue validate flows/*.json",
	}
}

func (c *ValidateCommand) Args(args []string) error {
	if len(args) == 0 {
		return cerrors.Errorf("requires at least one flow file")
	}
	c.args.Paths = args
	return nil
}

func (c *ValidateCommand) Execute(ctx context.Context) error {
	registry := c.registry
	if registry == nil {
		registry = builtin.NewRegistry()
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	l := loader.New(log.Nop(), registry, 0)
	for _, path := range c.args.Paths {
		f, err := l.LoadFile(ctx, path)
		if err != nil {
			return cerrors.Errorf("%s: %w", path, err)
		}
		_, _ = fmt.Fprintf(out, "%s: ok (%d nodes, %d pipes)\n", path, len(f.Nodes()), len(f.Pipes()))
	}
	return nil
}
