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

package nodeblue

import (
	"os"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/rs/zerolog"
)

const defaultFlowsPath = "./flows"

// Config holds all configurable values for Node-Blue.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Flows struct {
		// Path is either a single flow description file or a directory
		// containing flow description files.
		Path         string `mapstructure:"path"`
		PipeCapacity int    `mapstructure:"pipe-capacity"`
	} `mapstructure:"flows"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
	} `mapstructure:"metrics"`

	Shutdown struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"shutdown"`

	// NodeRegistry resolves node types used in flow descriptions. When nil
	// the builtin node types are used.
	NodeRegistry *loader.Registry `mapstructure:"-"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Log.Level = "info"
	cfg.Log.Format = "cli"
	cfg.Flows.Path = defaultFlowsPath
	cfg.Flows.PipeCapacity = stream.DefaultPipeCapacity
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = ":9090"
	cfg.Shutdown.Timeout = 10 * time.Second
	return cfg
}

func (c Config) Validate() error {
	if c.Log.Level == "" {
		return requiredConfigFieldErr("log.level")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return invalidConfigFieldErr("log.level")
	}

	if c.Log.Format == "" {
		return requiredConfigFieldErr("log.format")
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return invalidConfigFieldErr("log.format")
	}

	if c.Flows.Path == "" {
		return requiredConfigFieldErr("flows.path")
	}
	// the default folder is allowed to be missing
	_, err := os.Stat(c.Flows.Path)
	if c.Flows.Path != defaultFlowsPath && os.IsNotExist(err) {
		return invalidConfigFieldErr("flows.path")
	}
	if c.Flows.PipeCapacity < 1 || c.Flows.PipeCapacity > stream.MaxPipeCapacity {
		return invalidConfigFieldErr("flows.pipe-capacity")
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return requiredConfigFieldErr("metrics.address")
	}

	if c.Shutdown.Timeout <= 0 {
		return invalidConfigFieldErr("shutdown.timeout")
	}

	return nil
}

func invalidConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is invalid", name)
}

func requiredConfigFieldErr(name string) error {
	return cerrors.Errorf("%q config value is required", name)
}
