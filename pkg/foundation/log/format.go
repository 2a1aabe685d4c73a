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

package log

import (
	"io"
	"strings"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/rs/zerolog"
)

// Format selects how log events are rendered.
type Format int

const (
	FormatCLI Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCLI:
		return "cli"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// ParseFormat accepts "cli" and "json", ignoring case.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "cli":
		return FormatCLI, nil
	case "json":
		return FormatJSON, nil
	}
	return -1, cerrors.Errorf("unsupported log format %q, accepts cli, json", format)
}

// GetWriter wraps out in a human readable console writer for FormatCLI. JSON
// events are written to out as they are.
func GetWriter(f Format, out io.Writer) io.Writer {
	if f != FormatCLI {
		return out
	}
	cw := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
	})
	cw.TimeFormat = "2006-01-02T15:04:05+00:00"
	return cw
}
