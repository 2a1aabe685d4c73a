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

/*
Package stream defines the message, pipe, port and node types that are
composed into a flow. Nodes are connected with pipes, bounded FIFO queues
backed by buffered channels, which are attached to the output port of one
node and the input port of another.

We distinguish 3 node roles: source, sink and transform. A source only owns
an output port and produces messages, a sink only owns an input port and
consumes messages, and a transform owns one of each and processes messages
it receives into zero or more messages it emits.

Every node runs its loop in its own goroutine (see Node.Run). The loop only
suspends while waiting on a pipe (InPort.Consume, Pipe.Offer) or while a
source backs off because it had nothing to emit. All waits observe the
context, cancelling it stops the node.

A failure of a node body while handling a single message never stops the
node. It is logged, counted and, if the node has an error port, the message
is re-emitted on that port annotated with the error (see MetadataError).

Bodies can implement LoggingBody to receive the logger of the node. The body
should use the context passed to it for logging, this way the logger will
automatically attach the message ID as well as the node ID to the log event.
*/
package stream
