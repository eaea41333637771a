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

// testTool is the oracle surface canonicalization runs against in these tests.
type testTool struct {
	assumptions *metatest.Assumptions
}

func (t testTool) Assumptions() meta.Assumptions {
	if t.assumptions != nil {
		return t.assumptions
	}
	return &metatest.Assumptions{}
}

func (testTool) ConstantOracle() meta.ConstantOracle { return metatest.Constants{} }

func TestNegateTwiceReturnsOriginalInstance(t *testing.T) {
	u, g := newTestGraph(t)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	test := g.Unique(ir.NewInstanceOf(p, u.Animal, nil, false)).(*ir.InstanceOfNode)

	negated := test.Negate().(*ir.InstanceOfNode)
	if negated == test {
		t.Fatalf("negation should produce a different node")
	}
	if !negated.Negated() {
		t.Errorf("negation should set the flag")
	}
	if negated.Object() != test.Object() || negated.TargetClass() != test.TargetClass() {
		t.Errorf("negation should share subject and target")
	}
	if back := negated.Negate(); back != ir.Node(test) {
		t.Errorf("double negation should return the original instance, got v%d", back.ID())
	}
}

func TestNegateNullCheckRoundTrips(t *testing.T) {
	_, g := newTestGraph(t)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	check := g.Unique(ir.NewNullCheck(p, true)).(*ir.NullCheckNode)
	inverted := check.Negate().(*ir.NullCheckNode)
	if inverted.ExpectNull() {
		t.Errorf("negation should invert the polarity")
	}
	if inverted.Negate() != ir.Node(check) {
		t.Errorf("double negation should return the original instance")
	}
}

func asBool(t *testing.T, n ir.Node) bool {
	t.Helper()
	c, ok := n.AsConstant()
	if !ok {
		t.Fatalf("expected a constant, got %v", n)
	}
	return c.AsBoolean()
}

func TestInstanceOfCanonicalAgainstStamps(t *testing.T) {
	u := metatest.NewUniverse()
	tests := []struct {
		name    string
		stamp   ir.ObjectStamp
		target  meta.ResolvedType
		negated bool
		// one of:
		wantConst     *bool
		wantNullCheck bool
		wantUnchanged bool
	}{
		{
			name:      "exact subtype nonnull folds to true",
			stamp:     ir.ObjectStamp{Type: u.Dog, Exact: true, NonNull: true},
			target:    u.Animal,
			wantConst: boolPtr(true),
		},
		{
			name:          "exact subtype nullable keeps only the null test",
			stamp:         ir.ObjectStamp{Type: u.Dog, Exact: true},
			target:        u.Animal,
			wantNullCheck: true,
		},
		{
			name:      "exact non-subtype folds to false",
			stamp:     ir.ObjectStamp{Type: u.Cat, Exact: true, NonNull: true},
			target:    u.Dog,
			wantConst: boolPtr(false),
		},
		{
			name:      "exact non-subtype folds negated test to true",
			stamp:     ir.ObjectStamp{Type: u.Cat, Exact: true},
			target:    u.Dog,
			negated:   true,
			wantConst: boolPtr(true),
		},
		{
			name:      "declared subtype nonnull folds to true",
			stamp:     ir.ObjectStamp{Type: u.Dog, NonNull: true},
			target:    u.Animal,
			wantConst: boolPtr(true),
		},
		{
			name:          "declared subtype nullable keeps only the null test",
			stamp:         ir.ObjectStamp{Type: u.Dog},
			target:        u.Animal,
			wantNullCheck: true,
		},
		{
			name:          "declared non-subtype proves nothing",
			stamp:         ir.ObjectStamp{Type: u.Animal},
			target:        u.Dog,
			wantUnchanged: true,
		},
		{
			name:          "no type information proves nothing",
			stamp:         ir.ObjectStamp{},
			target:        u.Animal,
			wantUnchanged: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			method := u.AddMethod(u.Object, "test", meta.KindBoolean, nil, meta.KindObject)
			g := ir.NewGraph(method)
			p := g.Unique(ir.NewParameter(0, meta.KindObject, test.stamp))
			n := g.Unique(ir.NewInstanceOf(p, test.target, nil, test.negated)).(*ir.InstanceOfNode)

			result := n.Canonical(testTool{})
			switch {
			case test.wantUnchanged:
				if result != ir.Node(n) {
					t.Errorf("expected no simplification, got %v", result)
				}
			case test.wantNullCheck:
				check, ok := result.(*ir.NullCheckNode)
				if !ok {
					t.Fatalf("expected a null test, got %v", result)
				}
				if check.Object() != p {
					t.Errorf("null test should keep the subject")
				}
				if check.ExpectNull() != test.negated {
					t.Errorf("null test polarity %v, want %v", check.ExpectNull(), test.negated)
				}
			default:
				if got := asBool(t, result); got != *test.wantConst {
					t.Errorf("folded to %v, want %v", got, *test.wantConst)
				}
			}
		})
	}
}

func TestInstanceOfCanonicalNullConstant(t *testing.T) {
	u, g := newTestGraph(t)
	null := ir.NullConstant(g)
	test := g.Unique(ir.NewInstanceOf(null, u.Animal, nil, false)).(*ir.InstanceOfNode)
	if got := asBool(t, test.Canonical(testTool{})); got {
		t.Errorf("null is an instance of nothing")
	}

	negated := g.Unique(ir.NewInstanceOf(null, u.Animal, nil, true)).(*ir.InstanceOfNode)
	if got := asBool(t, negated.Canonical(testTool{})); !got {
		t.Errorf("negated test of null should fold to true")
	}
}

func TestInstanceOfCanonicalRejectsUntypedObjectConstant(t *testing.T) {
	u, g := newTestGraph(t)
	c := g.Unique(ir.NewConstant(meta.Constant{Kind: meta.KindObject, Ref: "opaque"}))
	test := g.Unique(ir.NewInstanceOf(c, u.Animal, nil, false)).(*ir.InstanceOfNode)
	defer func() {
		if recover() == nil {
			t.Errorf("a non-null object constant without an exact type should be rejected")
		}
	}()
	test.Canonical(testTool{})
}

func TestInstanceOfProfileNeverFolds(t *testing.T) {
	u, g := newTestGraph(t)
	p := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{}))
	profile := &ir.TypeProfile{Entries: []ir.ProfileEntry{{Type: u.Dog, Probability: 1.0}}}
	test := g.Unique(ir.NewInstanceOf(p, u.Animal, profile, false)).(*ir.InstanceOfNode)
	if result := test.Canonical(testTool{}); result != ir.Node(test) {
		t.Errorf("a profile alone must never fold the test, got %v", result)
	}
}

func TestNullCheckCanonical(t *testing.T) {
	u, g := newTestGraph(t)

	nonnull := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{Type: u.Animal, NonNull: true}))
	check := g.Unique(ir.NewNullCheck(nonnull, true)).(*ir.NullCheckNode)
	if got := asBool(t, check.Canonical(testTool{})); got {
		t.Errorf("null test of a non-null value should fold to false")
	}

	null := ir.NullConstant(g)
	isNull := g.Unique(ir.NewNullCheck(null, true)).(*ir.NullCheckNode)
	if got := asBool(t, isNull.Canonical(testTool{})); !got {
		t.Errorf("null test of the null constant should fold to true")
	}

	unknown := g.Unique(ir.NewParameter(1, meta.KindObject, ir.ObjectStamp{}))
	open := g.Unique(ir.NewNullCheck(unknown, false)).(*ir.NullCheckNode)
	if result := open.Canonical(testTool{}); result != ir.Node(open) {
		t.Errorf("nullness of an unknown value should stay open")
	}
}

func boolPtr(b bool) *bool { return &b }
