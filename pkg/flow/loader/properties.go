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

package loader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
)

// Properties is the property bag of a node in a flow description. Values
// are the ones produced by the JSON or YAML decoder. The accessors convert
// values where the conversion is lossless and return errors wrapping
// ErrMissingProperty or ErrInvalidProperty otherwise. A key with a null
// value counts as missing.
type Properties map[string]any

func (p Properties) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Any returns the raw value of the property.
func (p Properties) Any(key string) (any, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, cerrors.Errorf("property %q: %w", key, ErrMissingProperty)
	}
	return v, nil
}

func (p Properties) String(key string) (string, error) {
	v, err := p.Any(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidType(key, "string", v)
	}
	return s, nil
}

// Float accepts any number or a string containing a number.
func (p Properties) Float(key string) (float64, error) {
	v, err := p.Any(key)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, invalidType(key, "number", v)
	}
	return f, nil
}

// Int accepts integers, floats without a fractional part and strings
// containing an integer.
func (p Properties) Int(key string) (int, error) {
	v, err := p.Any(key)
	if err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt64 {
			return int(v), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, nil
		}
	}
	return 0, invalidType(key, "integer", v)
}

// Bool accepts booleans and the strings understood by strconv.ParseBool.
func (p Properties) Bool(key string) (bool, error) {
	v, err := p.Any(key)
	if err != nil {
		return false, err
	}
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return false, invalidType(key, "boolean", v)
}

// Duration accepts a duration string (e.g. "1.5s") or a number of
// milliseconds.
func (p Properties) Duration(key string) (time.Duration, error) {
	v, err := p.Any(key)
	if err != nil {
		return 0, err
	}
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			if ms, convErr := strconv.ParseFloat(s, 64); convErr == nil {
				return msToDuration(key, ms)
			}
			return 0, cerrors.Errorf("property %q: %v: %w", key, err, ErrInvalidProperty)
		}
		return d, nil
	}
	ms, ok := toFloat(v)
	if !ok {
		return 0, invalidType(key, "duration", v)
	}
	return msToDuration(key, ms)
}

// maxDurationMs is the largest number of milliseconds a time.Duration holds.
const maxDurationMs = float64(math.MaxInt64 / int64(time.Millisecond))

func msToDuration(key string, ms float64) (time.Duration, error) {
	if math.IsNaN(ms) || math.Abs(ms) > maxDurationMs {
		return 0, cerrors.Errorf("property %q: %v milliseconds is out of range: %w", key, ms, ErrInvalidProperty)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

func (p Properties) Map(key string) (map[string]any, error) {
	v, err := p.Any(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType(key, "object", v)
	}
	return m, nil
}

func (p Properties) Slice(key string) ([]any, error) {
	v, err := p.Any(key)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]any)
	if !ok {
		return nil, invalidType(key, "list", v)
	}
	return s, nil
}

func (p Properties) OptionalAny(key string, def any) (any, error) {
	return optional(p, key, def, p.Any)
}

func (p Properties) OptionalString(key, def string) (string, error) {
	return optional(p, key, def, p.String)
}

func (p Properties) OptionalFloat(key string, def float64) (float64, error) {
	return optional(p, key, def, p.Float)
}

func (p Properties) OptionalInt(key string, def int) (int, error) {
	return optional(p, key, def, p.Int)
}

func (p Properties) OptionalBool(key string, def bool) (bool, error) {
	return optional(p, key, def, p.Bool)
}

func (p Properties) OptionalDuration(key string, def time.Duration) (time.Duration, error) {
	return optional(p, key, def, p.Duration)
}

func (p Properties) OptionalMap(key string, def map[string]any) (map[string]any, error) {
	return optional(p, key, def, p.Map)
}

func (p Properties) OptionalSlice(key string, def []any) ([]any, error) {
	return optional(p, key, def, p.Slice)
}

func optional[T any](p Properties, key string, def T, get func(string) (T, error)) (T, error) {
	if !p.Has(key) {
		return def, nil
	}
	return get(key)
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func invalidType(key, want string, got any) error {
	return cerrors.Errorf("property %q: expected %s, got %T: %w", key, want, got, ErrInvalidProperty)
}
