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

package function

import (
	"context"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

const entrypoint = "process"

// Function runs a JavaScript function for every message. The script has to
// define a function process(msg) where msg is an object with the fields
// id, payload and metadata. The function returns the message to forward
// (an object with payload and optionally metadata), an array of such
// objects, or null to drop the message.
//
// The variable logger holds the logger of the node.
type Function struct {
	src    string
	logger log.CtxLogger

	// one runtime per body, a node calls the body from a single goroutine
	m        sync.Mutex
	runtime  *goja.Runtime
	function goja.Callable
}

func NewFunction(src string) (*Function, error) {
	f := &Function{src: src, logger: log.Nop()}
	// check the script before the node is started
	if _, _, err := f.newFunction(); err != nil {
		return nil, cerrors.Errorf("property %q: %v: %w", "script", err, loader.ErrInvalidProperty)
	}
	return f, nil
}

// NewFunctionNode is the factory of the Function node type.
func NewFunctionNode(id string, props loader.Properties) (*stream.Node, error) {
	src, err := props.String("script")
	if err != nil {
		return nil, err
	}
	body, err := NewFunction(src)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (f *Function) SetLogger(logger log.CtxLogger) {
	f.logger = logger
}

func (f *Function) Open(context.Context) error {
	rt, fn, err := f.newFunction()
	if err != nil {
		return cerrors.Errorf("failed initializing JS function: %w", err)
	}
	f.m.Lock()
	defer f.m.Unlock()
	f.runtime, f.function = rt, fn
	return nil
}

func (f *Function) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	results, err := f.call(msg)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		f.logger.Trace(ctx).Msg("message filtered by script")
	}
	for _, r := range results {
		if err := out.Emit(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) call(msg *stream.Message) ([]*stream.Message, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.function == nil {
		return nil, cerrors.New("function is not open")
	}

	jsMsg := f.runtime.ToValue(map[string]any{
		"id":       msg.ID(),
		"payload":  deepCopy(msg.Payload()),
		"metadata": deepCopy(msg.Metadata()),
	})
	result, err := f.function(goja.Undefined(), jsMsg)
	if err != nil {
		return nil, cerrors.Errorf("script failed: %w", err)
	}
	return f.toMessages(msg, result)
}

func (f *Function) newFunction() (*goja.Runtime, goja.Callable, error) {
	rt := goja.New()
	require.NewRegistry().Enable(rt)
	if err := rt.Set("logger", &f.logger); err != nil {
		return nil, nil, cerrors.Errorf("failed to set helper %q: %w", "logger", err)
	}

	prg, err := goja.Compile("", f.src, false)
	if err != nil {
		return nil, nil, cerrors.Errorf("failed to compile script: %w", err)
	}
	if _, err := rt.RunProgram(prg); err != nil {
		return nil, nil, cerrors.Errorf("failed to run program: %w", err)
	}

	fn, ok := goja.AssertFunction(rt.Get(entrypoint))
	if !ok {
		return nil, nil, cerrors.Errorf("failed to get entrypoint function %q", entrypoint)
	}
	return rt, fn, nil
}

func (f *Function) toMessages(in *stream.Message, v goja.Value) ([]*stream.Message, error) {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return nil, nil
	}

	switch raw := v.Export().(type) {
	case []any:
		out := make([]*stream.Message, 0, len(raw))
		for i, item := range raw {
			if item == nil {
				continue
			}
			m, err := toMessage(in, item)
			if err != nil {
				return nil, cerrors.Errorf("result %d: %w", i, err)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		m, err := toMessage(in, raw)
		if err != nil {
			return nil, err
		}
		return []*stream.Message{m}, nil
	}
}

// toMessage converts a value returned by the script into a message with the
// ID of the received message.
func toMessage(in *stream.Message, v any) (*stream.Message, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, cerrors.Errorf("js function expected to return an object, but returned: %T", v)
	}
	payload, ok := obj["payload"]
	if !ok || payload == nil {
		return nil, cerrors.Errorf("js function returned an object without payload: %w", stream.ErrNilPayload)
	}

	out, err := in.WithPayload(payload)
	if err != nil {
		return nil, err
	}
	if md, ok := obj["metadata"]; ok && md != nil {
		mdMap, ok := md.(map[string]any)
		if !ok {
			return nil, cerrors.Errorf("js function returned metadata of type %T", md)
		}
		return out.WithAllMetadata(mdMap)
	}
	return out, nil
}

// deepCopy copies maps and slices so the script can't change the payload or
// metadata of the received message.
func deepCopy(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopy(item)
		}
		return out
	}
	return v
}
