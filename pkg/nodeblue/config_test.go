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
	"testing"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/matryer/is"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		setupConfig func(Config) Config
		want        error
	}{{
		name:        "valid",
		setupConfig: func(c Config) Config { return c },
		want:        nil,
	}, {
		name: "required log level",
		setupConfig: func(c Config) Config {
			c.Log.Level = ""
			return c
		},
		want: requiredConfigFieldErr("log.level"),
	}, {
		name: "invalid log level",
		setupConfig: func(c Config) Config {
			c.Log.Level = "loud"
			return c
		},
		want: invalidConfigFieldErr("log.level"),
	}, {
		name: "required log format",
		setupConfig: func(c Config) Config {
			c.Log.Format = ""
			return c
		},
		want: requiredConfigFieldErr("log.format"),
	}, {
		name: "invalid log format",
		setupConfig: func(c Config) Config {
			c.Log.Format = "xml"
			return c
		},
		want: invalidConfigFieldErr("log.format"),
	}, {
		name: "required flows path",
		setupConfig: func(c Config) Config {
			c.Flows.Path = ""
			return c
		},
		want: requiredConfigFieldErr("flows.path"),
	}, {
		name: "missing flows path",
		setupConfig: func(c Config) Config {
			c.Flows.Path = "./does-not-exist"
			return c
		},
		want: invalidConfigFieldErr("flows.path"),
	}, {
		name: "invalid pipe capacity",
		setupConfig: func(c Config) Config {
			c.Flows.PipeCapacity = 0
			return c
		},
		want: invalidConfigFieldErr("flows.pipe-capacity"),
	}, {
		name: "pipe capacity too large",
		setupConfig: func(c Config) Config {
			c.Flows.PipeCapacity = stream.MaxPipeCapacity + 1
			return c
		},
		want: invalidConfigFieldErr("flows.pipe-capacity"),
	}, {
		name: "required metrics address",
		setupConfig: func(c Config) Config {
			c.Metrics.Address = ""
			return c
		},
		want: requiredConfigFieldErr("metrics.address"),
	}, {
		name: "metrics address ignored when disabled",
		setupConfig: func(c Config) Config {
			c.Metrics.Enabled = false
			c.Metrics.Address = ""
			return c
		},
		want: nil,
	}, {
		name: "invalid shutdown timeout",
		setupConfig: func(c Config) Config {
			c.Shutdown.Timeout = -time.Second
			return c
		},
		want: invalidConfigFieldErr("shutdown.timeout"),
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			got := tc.setupConfig(DefaultConfig()).Validate()
			if tc.want == nil {
				is.NoErr(got)
				return
			}
			is.True(got != nil)
			is.Equal(got.Error(), tc.want.Error())
		})
	}
}
