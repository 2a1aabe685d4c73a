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
	"reflect"
	"regexp"
	"strings"

	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

type Operator string

const (
	OperatorEq       Operator = "eq"
	OperatorNeq      Operator = "neq"
	OperatorLt       Operator = "lt"
	OperatorLte      Operator = "lte"
	OperatorGt       Operator = "gt"
	OperatorGte      Operator = "gte"
	OperatorContains Operator = "contains"
	OperatorRegex    Operator = "regex"
	OperatorExists   Operator = "exists"
)

const (
	propertyPayload  = "payload"
	propertyMetadata = "metadata"
)

// Rule is a condition evaluated against a property of a message. Property
// is either "payload", a path into a map payload ("payload.a.b") or a
// metadata key ("metadata.key").
type Rule struct {
	Property string
	Operator Operator
	Value    any

	path       []string
	isMetadata bool
	re         *regexp.Regexp
}

func (r *Rule) compile() error {
	if r.Property == "" {
		r.Property = propertyPayload
	}
	head, rest, _ := strings.Cut(r.Property, ".")
	switch {
	case r.Property == propertyPayload:
	case head == propertyPayload && rest != "":
		r.path = strings.Split(rest, ".")
	case head == propertyMetadata && rest != "":
		r.isMetadata = true
		r.path = []string{rest}
	default:
		return cerrors.Errorf("unsupported property %q", r.Property)
	}

	switch r.Operator {
	case OperatorExists:
		return nil
	case OperatorEq, OperatorNeq, OperatorLt, OperatorLte, OperatorGt, OperatorGte, OperatorContains:
		if r.Value == nil {
			return cerrors.Errorf("operator %q needs a value", r.Operator)
		}
		return nil
	case OperatorRegex:
		expr, ok := r.Value.(string)
		if !ok {
			return cerrors.Errorf("operator %q needs a string value, got %T", r.Operator, r.Value)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return cerrors.Errorf("invalid regex: %w", err)
		}
		r.re = re
		return nil
	}
	return cerrors.Errorf("unknown operator %q", r.Operator)
}

// Match reports whether the message satisfies the rule.
func (r *Rule) Match(msg *stream.Message) bool {
	v, ok := r.lookup(msg)
	if r.Operator == OperatorExists {
		return ok
	}
	if !ok {
		return false
	}

	switch r.Operator {
	case OperatorEq:
		return equal(v, r.Value)
	case OperatorNeq:
		return !equal(v, r.Value)
	case OperatorLt:
		c, ok := compare(v, r.Value)
		return ok && c < 0
	case OperatorLte:
		c, ok := compare(v, r.Value)
		return ok && c <= 0
	case OperatorGt:
		c, ok := compare(v, r.Value)
		return ok && c > 0
	case OperatorGte:
		c, ok := compare(v, r.Value)
		return ok && c >= 0
	case OperatorContains:
		return contains(v, r.Value)
	case OperatorRegex:
		s, ok := v.(string)
		return ok && r.re.MatchString(s)
	}
	return false
}

func (r *Rule) lookup(msg *stream.Message) (any, bool) {
	if r.isMetadata {
		v, ok := msg.MetadataValue(r.path[0])
		return v, ok && v != nil
	}
	v := msg.Payload()
	for _, key := range r.path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, v != nil
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compare compares two numbers or two strings.
func compare(a, b any) (int, bool) {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		switch {
		case !ok:
			return 0, false
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		return ok && strings.Contains(h, n)
	case []any:
		for _, v := range h {
			if equal(v, needle) {
				return true
			}
		}
	case map[string]any:
		n, ok := needle.(string)
		if !ok {
			return false
		}
		_, ok = h[n]
		return ok
	}
	return false
}

// Switch forwards a message once for every rule it matches. Messages that
// match no rule are dropped.
type Switch struct {
	rules            []Rule
	stopOnFirstMatch bool
	logger           log.CtxLogger
}

func NewSwitch(rules []Rule, stopOnFirstMatch bool) (*Switch, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		if err := r.compile(); err != nil {
			return nil, cerrors.Errorf("property %q: rule %d: %v: %w", "rules", i, err, loader.ErrInvalidProperty)
		}
		compiled[i] = r
	}
	return &Switch{
		rules:            compiled,
		stopOnFirstMatch: stopOnFirstMatch,
		logger:           log.Nop(),
	}, nil
}

// NewSwitchNode is the factory of the Switch node type.
func NewSwitchNode(id string, props loader.Properties) (*stream.Node, error) {
	rawRules, err := props.Slice("rules")
	if err != nil {
		return nil, err
	}
	stopOnFirstMatch, err := props.OptionalBool("stopOnFirstMatch", false)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, len(rawRules))
	for i, raw := range rawRules {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, cerrors.Errorf("property %q: rule %d: expected object, got %T: %w", "rules", i, raw, loader.ErrInvalidProperty)
		}
		rp := loader.Properties(m)
		property, err := rp.OptionalString("property", propertyPayload)
		if err != nil {
			return nil, cerrors.Errorf("rule %d: %w", i, err)
		}
		operator, err := rp.String("operator")
		if err != nil {
			return nil, cerrors.Errorf("rule %d: %w", i, err)
		}
		value, err := rp.OptionalAny("value", nil)
		if err != nil {
			return nil, cerrors.Errorf("rule %d: %w", i, err)
		}
		rules[i] = Rule{Property: property, Operator: Operator(operator), Value: value}
	}

	body, err := NewSwitch(rules, stopOnFirstMatch)
	if err != nil {
		return nil, err
	}
	return stream.NewTransform(id, body)
}

func (s *Switch) SetLogger(logger log.CtxLogger) {
	s.logger = logger
}

func (s *Switch) OnMessage(ctx context.Context, msg *stream.Message, out stream.Emitter) error {
	matched := false
	for i := range s.rules {
		if !s.rules[i].Match(msg) {
			continue
		}
		matched = true
		s.logger.Trace(ctx).Int("rule", i).Msg("rule matched")
		if err := out.Emit(ctx, msg); err != nil {
			return err
		}
		if s.stopOnFirstMatch {
			break
		}
	}
	if !matched {
		s.logger.Trace(ctx).Msg("no rule matched, dropping message")
	}
	return nil
}
