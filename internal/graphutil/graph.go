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

// Package graphutil adapts an ir.Graph to existing graph libraries and
// provides the structural checks built on them.
package graphutil

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// IGraph is an abstraction over the value dependencies of an ir.Graph that
// satisfies both the yourbasic graph.Iterator and Gonum's graph.Graph
// interfaces. Edges run from a node to each of its inputs.
type IGraph struct {
	order int

	// Graph is the ir graph the IGraph was constructed from
	Graph *ir.Graph

	// IDMap maps node ids to INodes
	IDMap map[int64]INode

	// Keys are all the live node ids, ascending
	Keys []int64

	// Edges is an adjacency representation: Edges[x][y] means node x consumes
	// node y
	Edges map[int64]map[int64]bool
}

// NewIRIterator returns an iterator over the live nodes of g where ids
// correspond to the arena ids of the nodes.
func NewIRIterator(g *ir.Graph) IGraph {
	nodes := g.Nodes()
	idmap := make(map[int64]INode, len(nodes))
	edges := make(map[int64]map[int64]bool, len(nodes))
	keys := make([]int64, len(nodes))

	for i, n := range nodes {
		id := int64(n.ID())
		keys[i] = id
		idmap[id] = INode{n}
		edges[id] = map[int64]bool{}
		for _, in := range n.Inputs() {
			edges[id][int64(in)] = true
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return IGraph{
		order: g.NodeCount(),
		Graph: g,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes
// in include. Only the edges with both endpoints in include are kept. The
// subgraph's order, Graph and IDMap are the same as in the original, so node
// ids stay consistent across subgraphs.
func Subgraph(original IGraph, include []int64) IGraph {
	idmap := make(map[int64]INode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		idmap[i] = original.IDMap[i]
	}
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}

	return IGraph{
		order: original.Order(),
		Graph: original.Graph,
		IDMap: original.IDMap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the IGraph
func (c IGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the IGraph
func (c IGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Node implements the Graph interface
func (c IGraph) Node(v int64) graph.Node {
	return c.IDMap[v]
}

// Nodes returns the set of nodes in the graph
func (c IGraph) Nodes() graph.Nodes {
	return &NodeSet{nodes: c.IDMap, ids: append([]int64(nil), c.Keys...)}
}

// From returns the set of nodes reachable from the id
func (c IGraph) From(id int64) graph.Nodes {
	var keys []int64
	for out := range c.Edges[id] {
		keys = append(keys, out)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{nodes: c.IDMap, ids: keys}
}

// To returns the set of nodes that consume the id
func (c IGraph) To(id int64) graph.Nodes {
	var keys []int64
	for x, inputs := range c.Edges {
		if inputs[id] {
			keys = append(keys, x)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{nodes: c.IDMap, ids: keys}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c IGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns a boolean indicating whether uid consumes vid
func (c IGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c IGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return IEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

// INode wraps an ir.Node to implement the graph.Node interface
type INode struct {
	Node ir.Node
}

// ID returns the arena id of the node
func (n INode) ID() int64 {
	return int64(n.Node.ID())
}

func (n INode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// IEdge is a value dependency edge, from the consumer to the input
type IEdge struct {
	from INode
	to   INode
}

// From returns the consuming node
func (e IEdge) From() graph.Node { return e.from }

// To returns the input node
func (e IEdge) To() graph.Node { return e.to }

// ReversedEdge returns the edge with endpoints swapped
func (e IEdge) ReversedEdge() graph.Edge { return IEdge{from: e.to, to: e.from} }

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	nodes map[int64]INode
	ids   []int64
	cur   int
}

// Len returns the number of remaining nodes
func (s *NodeSet) Len() int { return len(s.ids) - s.cur }

// Next advances the iterator
func (s *NodeSet) Next() bool {
	if s.cur < len(s.ids) {
		s.cur++
		return true
	}
	return false
}

// Node returns the current node
func (s *NodeSet) Node() graph.Node {
	if s.cur == 0 || s.cur > len(s.ids) {
		return nil
	}
	return s.nodes[s.ids[s.cur-1]]
}

// Reset rewinds the iterator
func (s *NodeSet) Reset() { s.cur = 0 }

// TopoOrder returns the live nodes of g ordered so that every node appears
// after all of its inputs. Deterministic for a given graph.
func TopoOrder(g *ir.Graph) ([]ir.Node, error) {
	ig := NewIRIterator(g)
	sorted, err := topo.SortStabilized(ig, func(ns []graph.Node) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("value graph of unit %s is not a DAG: %w", g.UnitID, err)
	}
	out := make([]ir.Node, len(sorted))
	for i, n := range sorted {
		// edges point at inputs, so the topological order comes out reversed
		out[len(sorted)-1-i] = n.(INode).Node
	}
	return out, nil
}

// VerifyAcyclic checks that the value dependencies of g form a DAG. A cycle
// means some node transitively consumes its own value.
func VerifyAcyclic(g *ir.Graph) error {
	cycles := FindAllElementaryCycles(NewIRIterator(g))
	if len(cycles) != 0 {
		return fmt.Errorf("value graph of unit %s has %d dependency cycles, the first involves node v%d",
			g.UnitID, len(cycles), cycles[0][0])
	}
	return nil
}
