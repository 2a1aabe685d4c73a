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

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
	"github.com/matryer/is"
)

type collector []*stream.Message

func (c *collector) Emit(_ context.Context, msg *stream.Message) error {
	*c = append(*c, msg)
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	is.New(t).NoErr(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRead_OnMessage(t *testing.T) {
	testCases := []struct {
		name         string
		content      string
		readAllLines bool
		want         []any
	}{
		{"first line", "line 1\nline 2\n", false, []any{"line 1"}},
		{"all lines", "line 1\nline 2\n", true, []any{[]any{"line 1", "line 2"}}},
		{"no trailing newline", "only", true, []any{[]any{"only"}}},
		{"empty file", "", false, []any{}},
		{"empty file all lines", "", true, []any{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			underTest, err := NewRead(writeFile(t, tc.content), tc.readAllLines)
			is.NoErr(err)
			underTest.SetLogger(log.Test(t))

			in, err := stream.NewMessageWithMetadata("trigger", map[string]any{"k": "v"})
			is.NoErr(err)
			var out collector
			is.NoErr(underTest.OnMessage(context.Background(), in, &out))

			got := make([]any, 0)
			for _, m := range out {
				is.Equal(m.ID(), in.ID())
				is.Equal(m.Metadata()["k"], "v")
				got = append(got, m.Payload())
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	is := is.New(t)
	underTest, err := NewRead(filepath.Join(t.TempDir(), "missing.txt"), false)
	is.NoErr(err)

	msg, err := stream.NewMessage("trigger")
	is.NoErr(err)
	var out collector
	err = underTest.OnMessage(context.Background(), msg, &out)
	is.True(cerrors.Is(err, os.ErrNotExist))
	is.Equal(len(out), 0)
}

func TestWrite_OnMessage(t *testing.T) {
	testCases := []struct {
		name     string
		existing string
		append   bool
		want     string
	}{
		{"truncate", "old\n", false, "hello\n42\n{\"temp\":21.5}\n[\"a\",1]\nraw\n"},
		{"append", "old\n", true, "old\nhello\n42\n{\"temp\":21.5}\n[\"a\",1]\nraw\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			ctx := context.Background()
			path := writeFile(t, tc.existing)

			underTest, err := NewWrite(path, tc.append)
			is.NoErr(err)
			underTest.SetLogger(log.Test(t))
			is.NoErr(underTest.Open(ctx))

			var out collector
			for _, payload := range []any{"hello", 42, map[string]any{"temp": 21.5}, []any{"a", 1}, []byte("raw")} {
				msg, err := stream.NewMessage(payload)
				is.NoErr(err)
				is.NoErr(underTest.OnMessage(ctx, msg, &out))
				is.Equal(out[len(out)-1], msg) // message is forwarded unchanged
			}
			is.NoErr(underTest.Close(ctx))

			got, err := os.ReadFile(path)
			is.NoErr(err)
			is.Equal(string(got), tc.want)
		})
	}
}

func TestWrite_NotOpen(t *testing.T) {
	is := is.New(t)
	underTest, err := NewWrite(filepath.Join(t.TempDir(), "out.txt"), false)
	is.NoErr(err)

	msg, err := stream.NewMessage("x")
	is.NoErr(err)
	var out collector
	is.True(underTest.OnMessage(context.Background(), msg, &out) != nil)
	is.Equal(len(out), 0)

	// closing a body that was never opened is a noop
	is.NoErr(underTest.Close(context.Background()))
}

func TestWrite_OpenFails(t *testing.T) {
	is := is.New(t)
	underTest, err := NewWrite(filepath.Join(t.TempDir(), "missing", "out.txt"), true)
	is.NoErr(err)
	is.True(cerrors.Is(underTest.Open(context.Background()), os.ErrNotExist))
}

func TestNodes(t *testing.T) {
	testCases := []struct {
		name    string
		factory loader.Factory
		props   loader.Properties
		wantErr error
	}{
		{"read", NewReadNode, loader.Properties{"path": "in.txt", "readAllLines": true}, nil},
		{"read missing path", NewReadNode, loader.Properties{}, loader.ErrMissingProperty},
		{"read empty path", NewReadNode, loader.Properties{"path": ""}, loader.ErrInvalidProperty},
		{"read invalid flag", NewReadNode, loader.Properties{"path": "in.txt", "readAllLines": "maybe"}, loader.ErrInvalidProperty},
		{"write", NewWriteNode, loader.Properties{"path": "out.txt", "append": true}, nil},
		{"write missing path", NewWriteNode, loader.Properties{"append": true}, loader.ErrMissingProperty},
		{"write path not a string", NewWriteNode, loader.Properties{"path": 1.0}, loader.ErrInvalidProperty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			n, err := tc.factory("file", tc.props)
			if tc.wantErr != nil {
				is.True(cerrors.Is(err, tc.wantErr))
				return
			}
			is.NoErr(err)
			is.Equal(n.Role(), stream.RoleTransform)
		})
	}
}
