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
	"github.com/awslabs/ar-jit-tools/internal/metatest"
)

func newTestGraph(t *testing.T) (*metatest.Universe, *ir.Graph) {
	t.Helper()
	u := metatest.NewUniverse()
	method := u.AddMethod(u.Object, "test", meta.KindBoolean, nil, meta.KindObject)
	return u, ir.NewGraph(method)
}

func TestUniqueCollapsesEqualConstants(t *testing.T) {
	_, g := newTestGraph(t)
	a := ir.ForBoolean(true, g)
	b := ir.ForBoolean(true, g)
	if a != b {
		t.Errorf("equal boolean constants should be the same node, got v%d and v%d", a.ID(), b.ID())
	}
	c := ir.ForBoolean(false, g)
	if a == c {
		t.Errorf("true and false should be distinct nodes")
	}
	if n1, n2 := ir.NullConstant(g), ir.NullConstant(g); n1 != n2 {
		t.Errorf("null constants should be the same node")
	}
}

func TestUniqueKeepsDistinctObjectInstancesApart(t *testing.T) {
	u, g := newTestGraph(t)
	ref1, ref2 := "dog-1", "dog-2"
	a := g.Unique(ir.NewConstant(meta.ForObject(u.Dog, ref1)))
	b := g.Unique(ir.NewConstant(meta.ForObject(u.Dog, ref2)))
	if a == b {
		t.Errorf("constants for distinct instances should not collapse")
	}
	if again := g.Unique(ir.NewConstant(meta.ForObject(u.Dog, ref1))); again != a {
		t.Errorf("the same instance should collapse to the same node")
	}
}

func TestUniqueCollapsesParametersByIndex(t *testing.T) {
	_, g := newTestGraph(t)
	a := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	b := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	if a != b {
		t.Errorf("parameter 0 should be shared, got v%d and v%d", a.ID(), b.ID())
	}
	if c := g.Unique(ir.NewParameter(1, meta.KindObject, ir.ObjectStamp{})); c == a {
		t.Errorf("distinct parameter indices should not collapse")
	}
}

func TestAddNeverCollapsesInvocations(t *testing.T) {
	u, g := newTestGraph(t)
	target := u.AddMethod(u.Object, "callee", meta.KindVoid, nil)
	a := g.Add(ir.NewInvoke(ir.InvokeStatic, target, ir.ObjectStamp{}))
	b := g.Add(ir.NewInvoke(ir.InvokeStatic, target, ir.ObjectStamp{}))
	if a == b {
		t.Errorf("two calls to the same target must stay distinct")
	}
}

func TestUniqueRejectsForeignNodes(t *testing.T) {
	_, g1 := newTestGraph(t)
	_, g2 := newTestGraph(t)
	n := ir.ForBoolean(true, g1)
	defer func() {
		if recover() == nil {
			t.Errorf("admitting a node of another graph should panic")
		}
	}()
	g2.Unique(n)
}

func TestUniqueIsIdempotentForOwnNodes(t *testing.T) {
	_, g := newTestGraph(t)
	n := ir.ForBoolean(true, g)
	if g.Unique(n) != n {
		t.Errorf("re-admitting an owned node should return it unchanged")
	}
}

func TestReplaceNodeRewiresUses(t *testing.T) {
	u, g := newTestGraph(t)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	test := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false)).(*ir.InstanceOfNode)
	check := g.Unique(ir.NewNullCheck(p, false)).(*ir.NullCheckNode)

	replacement := ir.NullConstant(g)
	g.ReplaceNode(p, replacement)

	if !g.IsDead(p.ID()) {
		t.Errorf("replaced node should be dead")
	}
	if test.Object() != replacement || check.Object() != replacement {
		t.Errorf("users should consume the replacement node")
	}
	uses := replacement.Uses()
	if len(uses) != 2 {
		t.Errorf("replacement should have inherited 2 uses, got %d", len(uses))
	}
	for _, n := range g.Nodes() {
		if n == p {
			t.Errorf("dead node still listed as live")
		}
	}
}

func TestReplaceNodeFreesDedupSlot(t *testing.T) {
	u, g := newTestGraph(t)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{Type: u.Dog, Exact: true, NonNull: true}))
	test := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false))
	g.ReplaceNode(test, ir.ForBoolean(true, g))

	// the slot is free again, a fresh structurally equal node gets a new id
	fresh := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false))
	if fresh == test {
		t.Errorf("dedup should not resurrect a replaced node")
	}
}

func TestFreezeLocksFrameStates(t *testing.T) {
	u, g := newTestGraph(t)
	target := u.AddMethod(u.Object, "callee", meta.KindVoid, nil)
	invoke := g.Add(ir.NewInvoke(ir.InvokeStatic, target, ir.ObjectStamp{})).(*ir.InvokeNode)
	invoke.SetStateAfter(ir.NewFrameState(nil, nil, 0, nil))
	g.Freeze()
	if !g.Frozen() {
		t.Errorf("graph should report frozen")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("mutating a frame state after freeze should panic")
		}
	}()
	invoke.SetStateAfter(ir.NewFrameState(nil, nil, 1, nil))
}
