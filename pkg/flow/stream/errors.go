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

package stream

import "github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"

var (
	ErrNilPayload     = cerrors.New("message payload must not be nil")
	ErrNilMetadata    = cerrors.New("message metadata must not be nil")
	ErrEmptyMessageID = cerrors.New("message ID must not be empty")
	ErrNilMessage     = cerrors.New("message must not be nil")

	ErrNilPipe      = cerrors.New("pipe must not be nil")
	ErrPipeAttached = cerrors.New("pipe is already attached to a port")

	ErrEmptyNodeID   = cerrors.New("node ID must not be empty")
	ErrNilBody       = cerrors.New("node body must not be nil")
	ErrNodeRunning   = cerrors.New("node is already running")
	ErrUnknownPolicy = cerrors.New("unknown scan policy")
)
