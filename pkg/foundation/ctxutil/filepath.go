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

package ctxutil

import (
	"context"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/rs/zerolog"
)

type filepathCtxKey struct{}

// ContextWithFilepath wraps ctx and returns a context that contains the path
// of the flow file being loaded.
func ContextWithFilepath(ctx context.Context, filepath string) context.Context {
	return context.WithValue(ctx, filepathCtxKey{}, filepath)
}

// FilepathFromContext fetches the path of the flow file being loaded from the
// context. If the context does not contain one it returns an empty string.
func FilepathFromContext(ctx context.Context) string {
	filepath := ctx.Value(filepathCtxKey{})
	if filepath != nil {
		return filepath.(string)
	}
	return ""
}

// FilepathLogCtxHook adds the path of the flow file being loaded to the log
// output if the context contains one.
type FilepathLogCtxHook struct{}

// Run executes the log hook.
func (h FilepathLogCtxHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	p := FilepathFromContext(e.GetCtx())
	if p != "" {
		e.Str(log.FilepathField, p)
	}
}
