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

package canon_test

import (
	"testing"

	"github.com/awslabs/ar-jit-tools/compiler/canon"
	"github.com/awslabs/ar-jit-tools/compiler/config"
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"github.com/awslabs/ar-jit-tools/internal/metatest"
)

func newPass(t *testing.T) (*canon.Pass, *metatest.Assumptions) {
	t.Helper()
	assumptions := &metatest.Assumptions{}
	logger := config.NewLogGroup(config.NewDefault())
	return canon.NewPass(logger, assumptions, metatest.Constants{}), assumptions
}

func newTypeTestGraph(t *testing.T, u *metatest.Universe, stamp ir.ObjectStamp, target meta.ResolvedType) (*ir.Graph, *ir.InstanceOfNode) {
	t.Helper()
	method := u.AddMethod(u.Object, "test", meta.KindBoolean, nil, meta.KindObject)
	g := ir.NewGraph(method)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, stamp))
	test := g.Unique(ir.NewInstanceOf(p, target, nil, false)).(*ir.InstanceOfNode)
	g.Freeze()
	return g, test
}

// liveBoolConstant returns the unique live boolean constant of g, failing the
// test when there is none.
func liveBoolConstant(t *testing.T, g *ir.Graph) bool {
	t.Helper()
	for _, n := range g.Nodes() {
		if c, ok := n.AsConstant(); ok && c.Kind == meta.KindBoolean {
			return c.AsBoolean()
		}
	}
	t.Fatalf("no live boolean constant in graph")
	return false
}

func TestRunFoldsExactMismatch(t *testing.T) {
	u := metatest.NewUniverse()
	g, test := newTypeTestGraph(t, u, ir.ObjectStamp{Type: u.Cat, Exact: true, NonNull: true}, u.Dog)

	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 1 {
		t.Fatalf("Run replaced %d nodes, want 1", replaced)
	}
	if !g.IsDead(test.ID()) {
		t.Errorf("the folded test should be dead")
	}
	if liveBoolConstant(t, g) {
		t.Errorf("a Cat can never be a Dog")
	}
}

func TestRunFoldsExactMatchToNullCheck(t *testing.T) {
	u := metatest.NewUniverse()
	g, test := newTypeTestGraph(t, u, ir.ObjectStamp{Type: u.Dog, Exact: true}, u.Animal)

	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 1 {
		t.Fatalf("Run replaced %d nodes, want 1", replaced)
	}
	var check *ir.NullCheckNode
	for _, n := range g.Nodes() {
		if nc, ok := n.(*ir.NullCheckNode); ok {
			check = nc
		}
	}
	if check == nil {
		t.Fatalf("the test should have become a null test")
	}
	if check.ExpectNull() {
		t.Errorf("the residual test should be true for non-null subjects")
	}
	if check.Object() != test.Object() {
		t.Errorf("the null test should keep the original subject")
	}
}

func TestRunLeavesDeclaredMismatchAlone(t *testing.T) {
	u := metatest.NewUniverse()
	g, test := newTypeTestGraph(t, u, ir.ObjectStamp{Type: u.Animal}, u.Dog)

	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 0 {
		t.Fatalf("Run replaced %d nodes, want 0", replaced)
	}
	if g.IsDead(test.ID()) {
		t.Errorf("a declared upper bound outside the target proves nothing")
	}
}

func TestRunRewiresUsersOfFoldedTests(t *testing.T) {
	u := metatest.NewUniverse()
	method := u.AddMethod(u.Object, "test", meta.KindVoid, nil, meta.KindObject)
	consume := u.AddMethod(u.Object, "consume", meta.KindVoid, nil, meta.KindBoolean)

	g := ir.NewGraph(method)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{Type: u.Dog, NonNull: true}))
	test := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false))
	invoke := g.Add(ir.NewInvoke(ir.InvokeStatic, consume, ir.ObjectStamp{}, test)).(*ir.InvokeNode)
	invoke.SetStateAfter(ir.NewFrameState(nil, []ir.Node{p}, 1, nil))
	g.Freeze()

	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 1 {
		t.Fatalf("Run replaced %d nodes, want 1", replaced)
	}
	arg := g.NodeByID(invoke.Inputs()[0])
	c, ok := arg.AsConstant()
	if !ok || !c.AsBoolean() {
		t.Errorf("the call argument should now be the constant true, got %v", arg)
	}
}

func TestRunReachesFixpointAcrossDependentTests(t *testing.T) {
	u := metatest.NewUniverse()
	method := u.AddMethod(u.Object, "test", meta.KindBoolean, nil, meta.KindObject)
	g := ir.NewGraph(method)

	// two independent tests of the same subject, both foldable
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{Type: u.Cat, Exact: true, NonNull: true}))
	first := g.Unique(ir.NewInstanceOf(p, u.Dog, nil, false))
	second := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false))
	g.Freeze()

	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 2 {
		t.Fatalf("Run replaced %d nodes, want 2", replaced)
	}
	if !g.IsDead(first.ID()) || !g.IsDead(second.ID()) {
		t.Errorf("both tests should have folded")
	}
	if pass.Run(g) != 0 {
		t.Errorf("a second run over the fixpoint should replace nothing")
	}
}

func TestRunIgnoresDeadNodes(t *testing.T) {
	u := metatest.NewUniverse()
	g, test := newTypeTestGraph(t, u, ir.ObjectStamp{Type: u.Cat, Exact: true, NonNull: true}, u.Dog)

	// fold by hand first, then make sure the pass does not touch the corpse
	g.ReplaceNode(test, ir.ForBoolean(false, g))
	pass, _ := newPass(t)
	if replaced := pass.Run(g); replaced != 0 {
		t.Errorf("Run replaced %d nodes over an already folded graph, want 0", replaced)
	}
}
