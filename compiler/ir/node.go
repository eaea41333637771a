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
	"golang.org/x/tools/container/intsets"
)

// NodeID is the index of a node in its graph's arena.
type NodeID int32

// InvalidID is the id of a node that has not been admitted into a graph.
const InvalidID NodeID = -1

// Op is the operation tag of a node. Behavior that varies per operation
// (canonicalization, state splitting) is dispatched on the concrete node type;
// Op exists for printing and for cheap classification.
type Op uint8

const (
	// OpConstant is an immediate value.
	OpConstant Op = iota
	// OpParameter is an incoming argument of the root method.
	OpParameter
	// OpInstanceOf is a type test.
	OpInstanceOf
	// OpNullCheck is a null test.
	OpNullCheck
	// OpInvoke is a method invocation.
	OpInvoke
)

var opNames = [...]string{
	OpConstant:   "Constant",
	OpParameter:  "Parameter",
	OpInstanceOf: "InstanceOf",
	OpNullCheck:  "NullCheck",
	OpInvoke:     "Invoke",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op?"
}

// Node is a value-producing or effect-only unit of the IR. Node inputs are
// stored as ids into the owning graph's arena; use-backreferences are
// maintained by the graph for edge rewriting and carry no ownership.
type Node interface {
	// ID returns the node's arena id, InvalidID before admission.
	ID() NodeID

	// Graph returns the owning graph, nil before admission.
	Graph() *Graph

	// Op returns the operation tag.
	Op() Op

	// Kind returns the value category the node produces, KindVoid for
	// effect-only nodes.
	Kind() meta.Kind

	// Inputs returns the ids of the nodes this node consumes.
	Inputs() []NodeID

	// Uses returns the ids of the admitted nodes consuming this node.
	Uses() []NodeID

	// Stamp returns the type and nullness information known about the value.
	Stamp() ObjectStamp

	// AsConstant returns the constant the node evaluates to, if it is one.
	AsConstant() (meta.Constant, bool)

	// String returns a short printable form, e.g. "InstanceOf(v1, Animal)".
	String() string

	base() *valueNode
	// uniqueKey returns the structural dedup key and whether the node is
	// subject to dedup at all (side-effecting nodes are not).
	uniqueKey() (string, bool)
}

// StateSplit is implemented by nodes after which the interpreter state must be
// reconstructible. Once construction of such a node completes its frame state
// is non-nil.
type StateSplit interface {
	Node

	// StateAfter returns the frame state snapshot taken after the node.
	StateAfter() *FrameState

	// SetStateAfter attaches the frame state snapshot. Panics if the owning
	// graph is frozen.
	SetStateAfter(fs *FrameState)
}

// CanonicalizerTool gives canonicalization access to the external oracles. It
// never exposes mutation of the graph; a Canonical implementation returns the
// replacement node instead.
type CanonicalizerTool interface {
	Assumptions() meta.Assumptions
	ConstantOracle() meta.ConstantOracle
}

// Canonicalizable is implemented by nodes that can locally simplify
// themselves. Canonical returns a replacement node (possibly a new node
// admitted via Graph.Unique) or the receiver when no sound simplification
// applies. It must not error on insufficient information.
type Canonicalizable interface {
	Node
	Canonical(tool CanonicalizerTool) Node
}

// Negatable is implemented by boolean-valued nodes whose condition can be
// inverted. Negate admits the inverted twin through the graph's dedup.
type Negatable interface {
	Node
	Negate() Node
}

// valueNode is the embedded base of all node variants.
type valueNode struct {
	graph  *Graph
	id     NodeID
	op     Op
	kind   meta.Kind
	stamp  ObjectStamp
	inputs []NodeID
	uses   intsets.Sparse
}

func newValueNode(op Op, kind meta.Kind, stamp ObjectStamp, inputs ...Node) valueNode {
	ids := make([]NodeID, len(inputs))
	for i, in := range inputs {
		if in == nil || in.Graph() == nil {
			panic(fmt.Errorf("input %d of new %s node is not in a graph", i, op))
		}
		ids[i] = in.ID()
	}
	return valueNode{id: InvalidID, op: op, kind: kind, stamp: stamp, inputs: ids}
}

func (v *valueNode) ID() NodeID        { return v.id }
func (v *valueNode) Graph() *Graph     { return v.graph }
func (v *valueNode) Op() Op            { return v.op }
func (v *valueNode) Kind() meta.Kind   { return v.kind }
func (v *valueNode) Inputs() []NodeID  { return append([]NodeID(nil), v.inputs...) }
func (v *valueNode) Stamp() ObjectStamp {
	return v.stamp
}

func (v *valueNode) AsConstant() (meta.Constant, bool) {
	return meta.Constant{}, false
}

func (v *valueNode) Uses() []NodeID {
	var raw []int
	raw = v.uses.AppendTo(raw)
	out := make([]NodeID, len(raw))
	for i, u := range raw {
		out[i] = NodeID(u)
	}
	return out
}

func (v *valueNode) base() *valueNode { return v }

// input resolves the i-th input through the owning graph.
func (v *valueNode) input(i int) Node {
	if v.graph == nil {
		panic(fmt.Errorf("input() on detached %s node", v.op))
	}
	return v.graph.NodeByID(v.inputs[i])
}
