// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// InvokeKind is the dispatch mode of an invocation.
type InvokeKind uint8

const (
	// InvokeStatic is a static call with no receiver.
	InvokeStatic InvokeKind = iota
	// InvokeSpecial is a direct call with a receiver (constructors, private
	// and super calls).
	InvokeSpecial
	// InvokeVirtual is a virtually dispatched call.
	InvokeVirtual
	// InvokeInterface is an interface-dispatched call.
	InvokeInterface
)

var invokeKindNames = [...]string{
	InvokeStatic:    "static",
	InvokeSpecial:   "special",
	InvokeVirtual:   "virtual",
	InvokeInterface: "interface",
}

func (k InvokeKind) String() string {
	if int(k) < len(invokeKindNames) {
		return invokeKindNames[k]
	}
	return "invoke?"
}

// HasReceiver reports whether the first argument is a receiver.
func (k InvokeKind) HasReceiver() bool { return k != InvokeStatic }

// InvokeNode is a call that survived plugin processing and inlining decisions
// and will be emitted as a real invocation. Invokes are state splits: the
// interpreter must be resumable right after the call.
type InvokeNode struct {
	valueNode
	target     meta.ResolvedMethod
	invokeKind InvokeKind
	stateAfter *FrameState
}

// NewInvoke returns a detached invocation of target with the given dispatch
// kind and arguments. The node's kind and stamp describe the returned value.
func NewInvoke(invokeKind InvokeKind, target meta.ResolvedMethod, returnStamp ObjectStamp, args ...Node) *InvokeNode {
	return &InvokeNode{
		valueNode:  newValueNode(OpInvoke, target.ReturnKind(), returnStamp, args...),
		target:     target,
		invokeKind: invokeKind,
	}
}

// Target returns the invoked method.
func (n *InvokeNode) Target() meta.ResolvedMethod { return n.target }

// InvokeKind returns the dispatch mode of the call.
func (n *InvokeNode) InvokeKind() InvokeKind { return n.invokeKind }

// StateAfter returns the frame state snapshot after the call, nil until the
// builder attaches one.
func (n *InvokeNode) StateAfter() *FrameState { return n.stateAfter }

// SetStateAfter attaches the post-call frame state snapshot.
func (n *InvokeNode) SetStateAfter(fs *FrameState) {
	if n.graph != nil && n.graph.Frozen() {
		panic(fmt.Errorf("frame state of %v mutated after freeze", n))
	}
	n.stateAfter = fs
}

func (n *InvokeNode) String() string {
	var args []string
	for _, in := range n.inputs {
		args = append(args, fmt.Sprintf("v%d", in))
	}
	return fmt.Sprintf("Invoke[%s] %s(%s)", n.invokeKind, n.target.Qualified(), strings.Join(args, ", "))
}

func (n *InvokeNode) uniqueKey() (string, bool) {
	// calls have effects, two calls to the same target are distinct
	return "", false
}
