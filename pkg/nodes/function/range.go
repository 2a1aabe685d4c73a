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
	"math"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

var ErrNotANumber = cerrors.New("payload is not a number")

type RangeConfig struct {
	InputMin, InputMax   float64
	OutputMin, OutputMax float64
	// ConstrainToTarget clamps the result to the output range.
	ConstrainToTarget bool
}

func (c RangeConfig) Validate() error {
	var errs []error
	if !(c.InputMin < c.InputMax) {
		errs = append(errs, cerrors.Errorf("input range [%v, %v] is invalid: %w", c.InputMin, c.InputMax, loader.ErrInvalidProperty))
	}
	if !(c.OutputMin < c.OutputMax) {
		errs = append(errs, cerrors.Errorf("output range [%v, %v] is invalid: %w", c.OutputMin, c.OutputMax, loader.ErrInvalidProperty))
	}
	return cerrors.Join(errs...)
}

// Range maps a numeric payload linearly from the input range to the output
// range.
type Range struct {
	config RangeConfig
}

func NewRange(config RangeConfig) (*Range, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Range{config: config}, nil
}

// NewRangeNode is the factory of the Range node type.
func NewRangeNode(id string, props loader.Properties) (*stream.Node, error) {
	var config RangeConfig
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"inputMin", &config.InputMin},
		{"inputMax", &config.InputMax},
		{"outputMin", &config.OutputMin},
		{"outputMax", &config.OutputMax},
	} {
		v, err := props.Float(f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	constrain, err := props.OptionalBool("constrainToTarget", false)
	if err != nil {
		return nil, err
	}
	config.ConstrainToTarget = constrain

	body, err := NewRange(config)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

// Map maps v from the input to the output range.
func (r *Range) Map(v float64) float64 {
	c := r.config
	mapped := (v-c.InputMin)/(c.InputMax-c.InputMin)*(c.OutputMax-c.OutputMin) + c.OutputMin
	if c.ConstrainToTarget {
		mapped = math.Max(c.OutputMin, math.Min(c.OutputMax, mapped))
	}
	return mapped
}

func (r *Range) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	v, ok := number(msg.Payload())
	if !ok {
		return cerrors.Errorf("%w: got %T", ErrNotANumber, msg.Payload())
	}
	mapped, err := msg.WithPayload(r.Map(v))
	if err != nil {
		return err
	}
	return out.Emit(ctx, mapped)
}

// number converts numeric types to float64, strings are not numbers.
func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
