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
	"testing"

	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/matryer/is"
)

func transformFactory(id string, _ Properties) (*stream.Node, error) {
	return stream.NewTransform(id, nil)
}

func TestRegistry_Register(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()

	is.NoErr(r.Register(NodeType{
		Name:    "Change",
		Aliases: []string{"ChangeNode"},
		Role:    stream.RoleTransform,
		Factory: transformFactory,
	}))

	got, ok := r.Lookup("Change")
	is.True(ok)
	is.Equal(got.Name, "Change")

	got, ok = r.Lookup("ChangeNode")
	is.True(ok)
	is.Equal(got.Name, "Change")

	_, ok = r.Lookup("change")
	is.True(!ok) // names are case sensitive
}

func TestRegistry_RegisterErrors(t *testing.T) {
	testCases := []struct {
		name    string
		t       NodeType
		wantErr error
	}{{
		name:    "empty name",
		t:       NodeType{Factory: transformFactory},
		wantErr: ErrEmptyName,
	}, {
		name:    "empty alias",
		t:       NodeType{Name: "X", Aliases: []string{""}, Factory: transformFactory},
		wantErr: ErrEmptyName,
	}, {
		name:    "nil factory",
		t:       NodeType{Name: "X"},
		wantErr: ErrNilFactory,
	}, {
		name:    "name taken",
		t:       NodeType{Name: "Taken", Factory: transformFactory},
		wantErr: ErrNameRegistered,
	}, {
		name:    "alias taken",
		t:       NodeType{Name: "Y", Aliases: []string{"TakenNode"}, Factory: transformFactory},
		wantErr: ErrNameRegistered,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			r := NewRegistry()
			r.MustRegister(NodeType{Name: "Taken", Aliases: []string{"TakenNode"}, Factory: transformFactory})

			err := r.Register(tc.t)
			is.True(cerrors.Is(err, tc.wantErr))

			// a failed registration leaves no names behind
			is.Equal(len(r.Types()), 1)
			if tc.t.Name != "" && tc.t.Name != "Taken" {
				_, ok := r.Lookup(tc.t.Name)
				is.True(!ok)
			}
		})
	}
}

func TestRegistry_Types(t *testing.T) {
	is := is.New(t)
	r := NewRegistry()
	for _, name := range []string{"Switch", "Change", "Range"} {
		r.MustRegister(NodeType{Name: name, Aliases: []string{name + "Node"}, Factory: transformFactory})
	}

	var names []string
	for _, nt := range r.Types() {
		names = append(names, nt.Name)
	}
	is.Equal(names, []string{"Change", "Range", "Switch"}) // aliases are not listed
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	is := is.New(t)
	defer func() {
		is.True(recover() != nil)
	}()
	NewRegistry().MustRegister(NodeType{Name: "X"})
}

func TestRegistry_Independent(t *testing.T) {
	is := is.New(t)
	r1, r2 := NewRegistry(), NewRegistry()
	r1.MustRegister(NodeType{Name: "X", Factory: transformFactory})

	_, ok := r2.Lookup("X")
	is.True(!ok)
	is.NoErr(r2.Register(NodeType{Name: "X", Factory: transformFactory}))
}
