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
	"github.com/google/uuid"
	"golang.org/x/tools/container/intsets"
)

// Graph exclusively owns the nodes of one compilation unit. Nodes are stored
// in an arena indexed by NodeID; side-effect-free nodes are structurally
// deduplicated so that two equal nodes collapse to one instance.
//
// A graph is built by exactly one goroutine. Separate compilation units own
// separate graphs and share nothing, so the graph takes no locks.
type Graph struct {
	// UnitID identifies the compilation unit in logs and reports.
	UnitID string

	method meta.ResolvedMethod
	nodes  []Node
	dedup  map[string]NodeID
	dead   intsets.Sparse
	frozen bool
}

// NewGraph returns an empty graph for a compilation of method.
func NewGraph(method meta.ResolvedMethod) *Graph {
	return &Graph{
		UnitID: uuid.NewString(),
		method: method,
		dedup:  map[string]NodeID{},
	}
}

// Method returns the root method this graph is compiled for.
func (g *Graph) Method() meta.ResolvedMethod { return g.method }

// NodeCount returns the number of arena slots, including dead nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeByID returns the node stored at id.
func (g *Graph) NodeByID(id NodeID) Node {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Errorf("node id %d out of range in graph %s", id, g.UnitID))
	}
	return g.nodes[id]
}

// IsDead reports whether the node at id has been replaced out of the graph.
func (g *Graph) IsDead(id NodeID) bool { return g.dead.Has(int(id)) }

// Nodes returns the live nodes in admission order.
func (g *Graph) Nodes() []Node {
	live := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !g.dead.Has(int(n.ID())) {
			live = append(live, n)
		}
	}
	return live
}

// Unique admits n into the graph, collapsing it with a previously admitted
// structurally equal node when the operation is side-effect free. The caller
// must treat the returned node, not the argument, as authoritative. Passing a
// node already owned by this graph is a no-op; passing a node owned by a
// different graph is a defect.
func (g *Graph) Unique(n Node) Node {
	if n.Graph() == g {
		return n
	}
	if n.Graph() != nil {
		panic(fmt.Errorf("node %v already belongs to another graph", n))
	}
	key, dedupable := n.uniqueKey()
	if dedupable {
		if prev, hit := g.dedup[key]; hit {
			return g.nodes[prev]
		}
	}
	g.admit(n)
	if dedupable {
		g.dedup[key] = n.ID()
	}
	return n
}

// Add admits n without deduplication. Needed for nodes whose identity matters
// even when structurally equal, e.g. distinct invocations of the same target.
func (g *Graph) Add(n Node) Node {
	if n.Graph() == g {
		return n
	}
	if n.Graph() != nil {
		panic(fmt.Errorf("node %v already belongs to another graph", n))
	}
	g.admit(n)
	return n
}

func (g *Graph) admit(n Node) {
	b := n.base()
	b.graph = g
	b.id = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	for _, in := range b.inputs {
		g.nodes[in].base().uses.Insert(int(b.id))
	}
}

// ReplaceNode rewires every use of old to newNode and removes old from the
// graph. Both nodes must already be admitted. This is the only mutation
// allowed after Freeze.
func (g *Graph) ReplaceNode(old Node, newNode Node) {
	if old.Graph() != g || newNode.Graph() != g {
		panic(fmt.Errorf("ReplaceNode with foreign node (old=%v new=%v)", old, newNode))
	}
	if old == newNode {
		return
	}
	ob, nb := old.base(), newNode.base()
	var users []int
	users = ob.uses.AppendTo(users)
	for _, u := range users {
		ub := g.nodes[u].base()
		for i, in := range ub.inputs {
			if in == ob.id {
				ub.inputs[i] = nb.id
			}
		}
		nb.uses.Insert(u)
	}
	ob.uses.Clear()
	if key, dedupable := old.uniqueKey(); dedupable {
		if id, hit := g.dedup[key]; hit && id == ob.id {
			delete(g.dedup, key)
		}
	}
	g.dead.Insert(int(ob.id))
}

// Freeze transitions the graph from construction to the simplification phase.
// Frame states become immutable; node admission and ReplaceNode stay legal so
// canonicalization can substitute nodes.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether construction has completed.
func (g *Graph) Frozen() bool { return g.frozen }
