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

package root

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/conduitio/ecdysis"
	"github.com/jangwonseong/Node-Blue/cmd/nodeblue/root/nodes"
	"github.com/jangwonseong/Node-Blue/cmd/nodeblue/root/validate"
	"github.com/jangwonseong/Node-Blue/cmd/nodeblue/root/version"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/nodeblue"
	"github.com/spf13/viper"
)

var (
	_ ecdysis.CommandWithFlags       = (*RootCommand)(nil)
	_ ecdysis.CommandWithExecute     = (*RootCommand)(nil)
	_ ecdysis.CommandWithDocs        = (*RootCommand)(nil)
	_ ecdysis.CommandWithSubCommands = (*RootCommand)(nil)
)

const (
	EnvPrefix         = "NODEBLUE"
	DefaultConfigPath = "./nodeblue.yaml"
)

type RootFlags struct {
	// Global flags -----------------------------------------------------------

	// Node-Blue configuration file
	ConfigPath string `long:"config.path" usage:"global node-blue configuration file" persistent:"true"`

	// Version
	Version bool `long:"version" short:"v" usage:"show current Node-Blue version" persistent:"true"`

	// Logging configuration
	LogLevel  string `long:"log.level" usage:"sets logging level; accepts debug, info, warn, error, trace"`
	LogFormat string `long:"log.format" usage:"sets the format of the logging; accepts json, cli"`

	// Flow configuration
	FlowsPath         string `long:"flows.path" usage:"path to the directory that has the flow description files, or a single flow description file"`
	FlowsPipeCapacity int    `long:"flows.pipe-capacity" usage:"number of messages a pipe buffers when the connection does not set a capacity"`

	// Metrics configuration
	MetricsEnabled bool   `long:"metrics.enabled" usage:"serve prometheus metrics"`
	MetricsAddress string `long:"metrics.address" usage:"address for serving the prometheus metrics"`

	ShutdownTimeout time.Duration `long:"shutdown.timeout" usage:"maximum time to wait for flows to stop"`
}

type RootCommand struct {
	flags RootFlags
	cfg   nodeblue.Config
}

// values maps config keys to the values of the corresponding flags.
func (f RootFlags) values() map[string]any {
	return map[string]any{
		"log.level":           f.LogLevel,
		"log.format":          f.LogFormat,
		"flows.path":          f.FlowsPath,
		"flows.pipe-capacity": f.FlowsPipeCapacity,
		"metrics.enabled":     f.MetricsEnabled,
		"metrics.address":     f.MetricsAddress,
		"shutdown.timeout":    f.ShutdownTimeout,
	}
}

func flagsFromConfig(cfg nodeblue.Config) RootFlags {
	return RootFlags{
		ConfigPath:        DefaultConfigPath,
		LogLevel:          cfg.Log.Level,
		LogFormat:         cfg.Log.Format,
		FlowsPath:         cfg.Flows.Path,
		FlowsPipeCapacity: cfg.Flows.PipeCapacity,
		MetricsEnabled:    cfg.Metrics.Enabled,
		MetricsAddress:    cfg.Metrics.Address,
		ShutdownTimeout:   cfg.Shutdown.Timeout,
	}
}

// parseConfig merges, from lowest to highest priority, the default
// configuration, the configuration file, environment variables and flags
// that differ from their default value.
func (c *RootCommand) parseConfig() error {
	v := viper.New()

	defaults := flagsFromConfig(nodeblue.DefaultConfig()).values()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read configuration from file, a missing file is ignored
	if c.flags.ConfigPath != "" {
		v.SetConfigFile(c.flags.ConfigPath)
		if err := v.ReadInConfig(); err != nil && !cerrors.Is(err, fs.ErrNotExist) {
			return cerrors.Errorf("could not read config file %q: %w", c.flags.ConfigPath, err)
		}
	}

	// Set environment variable prefix and automatic mapping
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return cerrors.Errorf("error binding environment variable for key %q: %w", key, err)
		}
	}

	for key, value := range c.flags.values() {
		if value != defaults[key] {
			v.Set(key, value)
		}
	}

	cfg := nodeblue.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cerrors.Errorf("unable to unmarshal the configuration: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *RootCommand) Execute(_ context.Context) error {
	if c.flags.Version {
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", nodeblue.Version(true))
		return nil
	}

	if err := c.parseConfig(); err != nil {
		return err
	}

	if c.cfg.Log.Format == "cli" {
		printBanner(os.Stdout)
	}

	e := &nodeblue.Entrypoint{}
	e.Serve(c.cfg)
	return nil
}

func printBanner(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Node-Blue %s\n", nodeblue.Version(false))
}

func (c *RootCommand) Usage() string { return "nodeblue" }

func (c *RootCommand) Flags() []ecdysis.Flag {
	flags := ecdysis.BuildFlags(&c.flags)

	defaults := flagsFromConfig(nodeblue.DefaultConfig())
	flags.SetDefault("config.path", defaults.ConfigPath)
	flags.SetDefault("log.level", defaults.LogLevel)
	flags.SetDefault("log.format", defaults.LogFormat)
	flags.SetDefault("flows.path", defaults.FlowsPath)
	flags.SetDefault("flows.pipe-capacity", defaults.FlowsPipeCapacity)
	flags.SetDefault("metrics.enabled", defaults.MetricsEnabled)
	flags.SetDefault("metrics.address", defaults.MetricsAddress)
	flags.SetDefault("shutdown.timeout", defaults.ShutdownTimeout)
	return flags
}

func (c *RootCommand) Docs() ecdysis.Docs {
	return ecdysis.Docs{
		Short: "Node-Blue runs flow-based message processing graphs",
		Long: `Node-Blue loads the flow descriptions found under flows.path, connects their
nodes with buffered pipes and runs them until it receives an interrupt signal.`,
	}
}

func (c *RootCommand) SubCommands() []ecdysis.Command {
	return []ecdysis.Command{
		&validate.ValidateCommand{},
		&nodes.ListCommand{},
		&version.VersionCommand{},
	}
}
