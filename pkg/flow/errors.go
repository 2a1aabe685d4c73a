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

package flow

import "github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"

var (
	ErrNilNode       = cerrors.New("node must not be nil")
	ErrDuplicateNode = cerrors.New("node ID already exists in flow")
	ErrFlowRunning   = cerrors.New("flow is running")
	ErrEmptyFlowID   = cerrors.New("flow ID must not be empty")

	ErrNilFlow       = cerrors.New("flow must not be nil")
	ErrDuplicateFlow = cerrors.New("flow ID already exists in pool")
	ErrEmptyPool     = cerrors.New("pool has no flows")
	ErrPoolRunning   = cerrors.New("pool is running")
)
