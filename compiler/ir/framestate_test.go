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

package ir_test

import (
	"testing"

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

func TestFrameStateSnapshotsSlices(t *testing.T) {
	_, g := newTestGraph(t)
	a := ir.ForBoolean(true, g)
	b := ir.ForBoolean(false, g)
	stack := []ir.Node{a}
	locals := []ir.Node{b}

	fs := ir.NewFrameState(stack, locals, 7, nil)
	stack[0] = b
	locals[0] = a

	if fs.StackAt(0) != a || fs.LocalAt(0) != b {
		t.Errorf("snapshot should be unaffected by later frame mutation")
	}
	if fs.BCI() != 7 {
		t.Errorf("BCI() = %d, want 7", fs.BCI())
	}
	if fs.StackSize() != 1 || fs.LocalCount() != 1 {
		t.Errorf("snapshot sizes %d/%d, want 1/1", fs.StackSize(), fs.LocalCount())
	}
}

func TestFrameStateDepthCountsCallerLinks(t *testing.T) {
	root := ir.NewFrameState(nil, nil, 0, nil)
	mid := ir.NewFrameState(nil, nil, 4, root)
	leaf := ir.NewFrameState(nil, nil, 2, mid)

	if d := root.Depth(); d != 0 {
		t.Errorf("root state depth = %d, want 0", d)
	}
	if d := mid.Depth(); d != 1 {
		t.Errorf("inlined state depth = %d, want 1", d)
	}
	if d := leaf.Depth(); d != 2 {
		t.Errorf("doubly inlined state depth = %d, want 2", d)
	}
	if leaf.Caller() != mid || mid.Caller() != root || root.Caller() != nil {
		t.Errorf("caller chain is wired incorrectly")
	}
}

func TestFrameStateString(t *testing.T) {
	_, g := newTestGraph(t)
	v := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	caller := ir.NewFrameState([]ir.Node{v}, nil, 3, nil)
	fs := ir.NewFrameState(nil, []ir.Node{v, nil}, 1, caller)

	want := "state@1{stack=[] locals=[v0 _] caller=state@3{stack=[v0] locals=[]}}"
	if got := fs.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
