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

type messageIDCtxKey struct{}

// ContextWithMessageID wraps ctx and returns a context that contains the message ID.
func ContextWithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, messageIDCtxKey{}, messageID)
}

// MessageIDFromContext fetches the message ID from the context. If the context does
// not contain one it returns an empty string.
func MessageIDFromContext(ctx context.Context) string {
	messageID := ctx.Value(messageIDCtxKey{})
	if messageID != nil {
		return messageID.(string)
	}
	return ""
}

// MessageIDLogCtxHook fetches the message ID from the context and if it exists it
// adds it to the log output.
type MessageIDLogCtxHook struct{}

// Run executes the log hook.
func (h MessageIDLogCtxHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	p := MessageIDFromContext(e.GetCtx())
	if p != "" {
		e.Str(log.MessageIDField, p)
	}
}
