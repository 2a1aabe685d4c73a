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

import (
	"reflect"

	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

// SetLogger sets the logger of the node. The logger is enriched with the
// node ID and a component named after the body type, and it is handed to the
// ports and to the body if the body implements LoggingBody.
func (n *Node) SetLogger(logger log.CtxLogger) {
	logger = logger.WithComponent(bodyName(n.body)).WithNodeID(n.id)
	n.logger = logger

	if n.out != nil {
		n.out.SetLogger(logger)
	}
	if n.errOut != nil {
		n.errOut.SetLogger(logger)
	}
	if lb, ok := n.body.(LoggingBody); ok {
		lb.SetLogger(logger)
	}
}

func bodyName(body any) string {
	bt := reflect.TypeOf(body)
	for bt.Kind() == reflect.Ptr {
		bt = bt.Elem()
	}
	if bt.Name() == "" {
		return "stream.Node"
	}
	return bt.Name()
}
