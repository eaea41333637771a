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
)

// FrameState is a snapshot of the abstract interpreter state (operand stack,
// locals, instruction position) at one point of the parse. When the snapshot
// belongs to an inlined body it links to the caller's state at the call site;
// the length of that chain equals the inline depth at snapshot time.
//
// A FrameState is immutable once created. The builder snapshots a fresh one
// for every state-split node.
type FrameState struct {
	stack  []Node
	locals []Node
	bci    int
	caller *FrameState
}

// NewFrameState snapshots the given stack and locals at instruction position
// bci. The slices are copied; caller may be nil for the root method.
func NewFrameState(stack []Node, locals []Node, bci int, caller *FrameState) *FrameState {
	return &FrameState{
		stack:  append([]Node(nil), stack...),
		locals: append([]Node(nil), locals...),
		bci:    bci,
		caller: caller,
	}
}

// BCI returns the instruction position of the snapshot.
func (fs *FrameState) BCI() int { return fs.bci }

// Caller returns the enclosing caller's state, nil for the root method.
func (fs *FrameState) Caller() *FrameState { return fs.caller }

// Depth returns the number of caller links, 0 for a root-method state.
func (fs *FrameState) Depth() int {
	d := 0
	for c := fs.caller; c != nil; c = c.caller {
		d++
	}
	return d
}

// StackSize returns the number of operand stack slots in the snapshot.
func (fs *FrameState) StackSize() int { return len(fs.stack) }

// StackAt returns the i-th operand stack slot, 0 being the bottom.
func (fs *FrameState) StackAt(i int) Node { return fs.stack[i] }

// LocalCount returns the number of local variable slots in the snapshot.
func (fs *FrameState) LocalCount() int { return len(fs.locals) }

// LocalAt returns the i-th local slot, nil when the local is unset.
func (fs *FrameState) LocalAt(i int) Node { return fs.locals[i] }

func (fs *FrameState) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state@%d{stack=[", fs.bci)
	for i, n := range fs.stack {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "v%d", n.ID())
	}
	b.WriteString("] locals=[")
	for i, n := range fs.locals {
		if i > 0 {
			b.WriteString(" ")
		}
		if n == nil {
			b.WriteString("_")
		} else {
			fmt.Fprintf(&b, "v%d", n.ID())
		}
	}
	b.WriteString("]")
	if fs.caller != nil {
		fmt.Fprintf(&b, " caller=%v", fs.caller)
	}
	b.WriteString("}")
	return b.String()
}
