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

// ConstantNode is an immediate value. Constants have no inputs and are always
// canonically shared within a graph.
type ConstantNode struct {
	valueNode
	value meta.Constant
}

// NewConstant returns a detached constant node for value. Admit it through
// Graph.Unique so equal constants collapse.
func NewConstant(value meta.Constant) *ConstantNode {
	stamp := ObjectStamp{}
	if value.Kind == meta.KindObject && !value.IsNull() {
		stamp = ObjectStamp{Type: value.Type, Exact: value.Type != nil, NonNull: true}
	}
	return &ConstantNode{
		valueNode: newValueNode(OpConstant, value.Kind, stamp),
		value:     value,
	}
}

// ForBoolean returns the shared boolean constant node for b in g.
func ForBoolean(b bool, g *Graph) Node {
	return g.Unique(NewConstant(meta.ForBoolean(b)))
}

// NullConstant returns the shared null constant node in g.
func NullConstant(g *Graph) Node {
	return g.Unique(NewConstant(meta.NullObject))
}

// Value returns the constant the node holds.
func (n *ConstantNode) Value() meta.Constant { return n.value }

// AsConstant returns the constant the node holds.
func (n *ConstantNode) AsConstant() (meta.Constant, bool) { return n.value, true }

func (n *ConstantNode) String() string {
	return fmt.Sprintf("Constant(%v)", n.value)
}

func (n *ConstantNode) uniqueKey() (string, bool) {
	return fmt.Sprintf("const:%d:%v:%v:%v:%d", n.value.Kind, n.value.Null, n.value.Type, n.value.Ref, n.value.Bits), true
}

// ParameterNode is an incoming argument of the method being compiled.
// Parameters are shared by index within a graph.
type ParameterNode struct {
	valueNode
	index int
}

// NewParameter returns a detached parameter node for argument index with the
// given kind and stamp.
func NewParameter(index int, kind meta.Kind, stamp ObjectStamp) *ParameterNode {
	return &ParameterNode{
		valueNode: newValueNode(OpParameter, kind, stamp),
		index:     index,
	}
}

// Index returns the argument position of the parameter.
func (n *ParameterNode) Index() int { return n.index }

func (n *ParameterNode) String() string {
	return fmt.Sprintf("Parameter(%d)", n.index)
}

func (n *ParameterNode) uniqueKey() (string, bool) {
	return fmt.Sprintf("param:%d:%d", n.index, n.kind), true
}
