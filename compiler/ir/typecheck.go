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

	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// ProfileEntry is one entry of a profiled type distribution.
type ProfileEntry struct {
	Type        meta.ResolvedType
	Probability float64
}

// TypeProfile is the dynamically profiled type distribution of a type test
// subject. Profiles may bias representation choices; they never justify
// folding a test to a constant.
type TypeProfile struct {
	Entries []ProfileEntry
}

// InstanceOfNode tests whether its subject is a non-null instance of a target
// type. With Negated set the node computes the complement.
type InstanceOfNode struct {
	valueNode
	target  meta.ResolvedType
	profile *TypeProfile
	negated bool
}

// NewInstanceOf returns a detached type test of object against target. The
// profile may be nil. The subject must already be admitted to a graph.
func NewInstanceOf(object Node, target meta.ResolvedType, profile *TypeProfile, negated bool) *InstanceOfNode {
	if target == nil {
		panic(fmt.Errorf("instanceof with nil target type"))
	}
	return &InstanceOfNode{
		valueNode: newValueNode(OpInstanceOf, meta.KindBoolean, ObjectStamp{}, object),
		target:    target,
		profile:   profile,
		negated:   negated,
	}
}

// Object returns the subject of the test.
func (n *InstanceOfNode) Object() Node { return n.input(0) }

// TargetClass returns the type tested against.
func (n *InstanceOfNode) TargetClass() meta.ResolvedType { return n.target }

// Profile returns the profiled type distribution, nil if none was recorded.
func (n *InstanceOfNode) Profile() *TypeProfile { return n.profile }

// Negated reports whether the node computes the complement of the test.
func (n *InstanceOfNode) Negated() bool { return n.negated }

// Negate returns the test with the negation flag inverted, sharing all other
// fields, admitted through the graph's dedup. Negating twice therefore yields
// the original node.
func (n *InstanceOfNode) Negate() Node {
	return n.graph.Unique(NewInstanceOf(n.Object(), n.target, n.profile, !n.negated))
}

// Canonical folds the test using only facts that are logical consequences of
// the subject's exact type, declared type, nullness, or constant value. When
// nothing conclusive is known the node is returned unchanged.
func (n *InstanceOfNode) Canonical(tool CanonicalizerTool) Node {
	object := n.Object()
	stamp := object.Stamp()

	if exact := stamp.ExactType(); exact != nil {
		if exact.IsSubtypeOf(n.target) {
			if stamp.NonNull {
				// the test matches, modulo negation
				return ForBoolean(!n.negated, n.graph)
			}
			// only nullity remains undetermined
			return n.graph.Unique(NewNullCheck(object, n.negated))
		}
		// an exact type failing the test can never pass at run time,
		// null subjects fail it too
		return ForBoolean(n.negated, n.graph)
	}

	if declared := stamp.DeclaredType(); declared != nil {
		if declared.IsSubtypeOf(n.target) {
			if stamp.NonNull {
				return ForBoolean(!n.negated, n.graph)
			}
			return n.graph.Unique(NewNullCheck(object, n.negated))
		}
		// declared is only an upper bound, its failure proves nothing
	}

	if c, ok := object.AsConstant(); ok {
		if c.IsNull() {
			return ForBoolean(n.negated, n.graph)
		}
		panic(fmt.Errorf("non-null constant %v is expected to provide an exact type", c))
	}
	return n
}

func (n *InstanceOfNode) String() string {
	if n.negated {
		return fmt.Sprintf("!InstanceOf(v%d, %s)", n.inputs[0], n.target.Name())
	}
	return fmt.Sprintf("InstanceOf(v%d, %s)", n.inputs[0], n.target.Name())
}

func (n *InstanceOfNode) uniqueKey() (string, bool) {
	return fmt.Sprintf("instanceof:%d:%s:%v:%p", n.inputs[0], n.target.Name(), n.negated, n.profile), true
}

// NullCheckNode computes (object == null) == ExpectNull. It is the residue of
// a type test whose outcome depends only on nullness.
type NullCheckNode struct {
	valueNode
	expectNull bool
}

// NewNullCheck returns a detached null test of object. With expectNull the
// node is true when object is null, otherwise when it is not.
func NewNullCheck(object Node, expectNull bool) *NullCheckNode {
	return &NullCheckNode{
		valueNode:  newValueNode(OpNullCheck, meta.KindBoolean, ObjectStamp{}, object),
		expectNull: expectNull,
	}
}

// Object returns the value being tested.
func (n *NullCheckNode) Object() Node { return n.input(0) }

// ExpectNull reports whether the node is true for null subjects.
func (n *NullCheckNode) ExpectNull() bool { return n.expectNull }

// Negate returns the inverted test through the graph's dedup.
func (n *NullCheckNode) Negate() Node {
	return n.graph.Unique(NewNullCheck(n.Object(), !n.expectNull))
}

// Canonical folds the null test against the subject's stamp and constant value.
func (n *NullCheckNode) Canonical(tool CanonicalizerTool) Node {
	object := n.Object()
	if object.Stamp().NonNull {
		return ForBoolean(!n.expectNull, n.graph)
	}
	if c, ok := object.AsConstant(); ok {
		return ForBoolean(c.IsNull() == n.expectNull, n.graph)
	}
	return n
}

func (n *NullCheckNode) String() string {
	if n.expectNull {
		return fmt.Sprintf("NullCheck(v%d)", n.inputs[0])
	}
	return fmt.Sprintf("!NullCheck(v%d)", n.inputs[0])
}

func (n *NullCheckNode) uniqueKey() (string, bool) {
	return fmt.Sprintf("nullcheck:%d:%v", n.inputs[0], n.expectNull), true
}
