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

package canon

import (
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"github.com/awslabs/ar-jit-tools/internal/funcutil"
)

// FeedbackTool accumulates boolean facts about values along one control path
// and re-simplifies type tests against them. One tool instance covers one
// query scope (one path); facts are monotonic within the scope, they are
// recorded and strengthened but never retracted.
type FeedbackTool struct {
	graph     *ir.Graph
	constants meta.ConstantOracle
	queries   map[ir.NodeID]*ObjectQuery
}

// NewFeedbackTool returns an empty query scope over g.
func NewFeedbackTool(g *ir.Graph, constants meta.ConstantOracle) *FeedbackTool {
	return &FeedbackTool{graph: g, constants: constants, queries: map[ir.NodeID]*ObjectQuery{}}
}

// AddObject returns the fact recorder for value, creating it on first use.
func (t *FeedbackTool) AddObject(value ir.Node) *ObjectQuery {
	q, ok := t.queries[value.ID()]
	if !ok {
		q = &ObjectQuery{constants: t.constants}
		t.queries[value.ID()] = q
	}
	return q
}

// QueryObject returns the accumulated facts about value. The result of a
// query with no recorded facts answers false to everything.
func (t *FeedbackTool) QueryObject(value ir.Node) *ObjectQuery {
	if q, ok := t.queries[value.ID()]; ok {
		return q
	}
	return &ObjectQuery{constants: t.constants}
}

// RecordBranch records the facts implied by taking (or not taking) the branch
// guarded by cond. For a type test the taken edge teaches that the subject's
// declared type is the target (the complement when negated); the other edge
// teaches the complement. Null tests teach constant bounds against null.
func (t *FeedbackTool) RecordBranch(cond ir.Node, taken bool) {
	switch n := cond.(type) {
	case *ir.InstanceOfNode:
		passed := taken != n.Negated()
		if passed {
			t.AddObject(n.Object()).DeclaredType(n.TargetClass(), true)
			// a passed instanceof also proves the subject non-null
			t.AddObject(n.Object()).ConstantBound(meta.CondNE, meta.NullObject)
		} else {
			t.AddObject(n.Object()).NotDeclaredType(n.TargetClass(), true)
		}
	case *ir.NullCheckNode:
		isNull := taken == n.ExpectNull()
		if isNull {
			t.AddObject(n.Object()).ConstantBound(meta.CondEQ, meta.NullObject)
		} else {
			t.AddObject(n.Object()).ConstantBound(meta.CondNE, meta.NullObject)
		}
	}
}

// Result is a successful feedback simplification: the replacement node and
// the query that justified it.
type Result struct {
	Node  ir.Node
	Query *ObjectQuery
}

// CanonicalTypeTest re-canonicalizes a type test against the accumulated
// facts about its subject: a provably null subject folds to the negation
// constant, a subject proven outside the target type folds the same way, and
// a subject proven non-null and inside the target type folds to its
// complement. Returns nil when no recorded fact applies.
func (t *FeedbackTool) CanonicalTypeTest(n *ir.InstanceOfNode) *Result {
	query := t.QueryObject(n.Object())
	if query.KnownConstantBound(meta.CondEQ, meta.NullObject) {
		return &Result{Node: ir.ForBoolean(n.Negated(), t.graph), Query: query}
	}
	if target := n.TargetClass(); target != nil {
		if query.KnownNotDeclaredType(target) {
			return &Result{Node: ir.ForBoolean(n.Negated(), t.graph), Query: query}
		}
		if query.KnownConstantBound(meta.CondNE, meta.NullObject) && query.KnownDeclaredType(target) {
			return &Result{Node: ir.ForBoolean(!n.Negated(), t.graph), Query: query}
		}
	}
	return nil
}

// Run re-canonicalizes all live type tests of the scope's graph, applying the
// successful results. Returns the number of replaced nodes.
func (t *FeedbackTool) Run() int {
	replaced := 0
	for _, n := range t.graph.Nodes() {
		test, ok := n.(*ir.InstanceOfNode)
		if !ok || t.graph.IsDead(test.ID()) {
			continue
		}
		if r := t.CanonicalTypeTest(test); r != nil {
			t.graph.ReplaceNode(test, r.Node)
			replaced++
		}
	}
	return replaced
}

type constBound struct {
	cond  meta.Condition
	value meta.Constant
}

// ObjectQuery is the set of accumulated boolean facts about one value along
// one control path: constant bounds and declared-type bounds. Facts are only
// ever added within a scope.
type ObjectQuery struct {
	constants   meta.ConstantOracle
	bounds      []constBound
	declared    []meta.ResolvedType
	notDeclared []meta.ResolvedType
}

// DeclaredType records that the value's declared type is typ. Only positive
// facts, learned from a proven branch outcome, participate in folding.
func (q *ObjectQuery) DeclaredType(typ meta.ResolvedType, positive bool) {
	if positive {
		q.declared = append(q.declared, typ)
	}
}

// NotDeclaredType records that the value's declared type is not typ.
func (q *ObjectQuery) NotDeclaredType(typ meta.ResolvedType, positive bool) {
	if positive {
		q.notDeclared = append(q.notDeclared, typ)
	}
}

// ConstantBound records that the value compares to c under cond.
func (q *ObjectQuery) ConstantBound(cond meta.Condition, c meta.Constant) {
	q.bounds = append(q.bounds, constBound{cond: cond, value: c})
}

// KnownConstantBound reports whether the recorded facts imply that the value
// compares to c under cond.
func (q *ObjectQuery) KnownConstantBound(cond meta.Condition, c meta.Constant) bool {
	for _, b := range q.bounds {
		if b.cond == cond && b.value.Equal(c) {
			return true
		}
		// v == k implies v != c for any constant k distinct from c
		if b.cond == meta.CondEQ && cond == meta.CondNE {
			if distinct, ok := q.constants.FoldCompare(meta.CondNE, b.value, c); ok && distinct {
				return true
			}
		}
	}
	return false
}

// KnownDeclaredType reports whether the recorded facts imply the value's
// declared type is a subtype of typ.
func (q *ObjectQuery) KnownDeclaredType(typ meta.ResolvedType) bool {
	return funcutil.Exists(q.declared, func(d meta.ResolvedType) bool { return d.IsSubtypeOf(typ) })
}

// KnownNotDeclaredType reports whether the recorded facts imply the value
// cannot be an instance of typ. The value is known to be outside some
// recorded type nd, and typ lies inside nd.
func (q *ObjectQuery) KnownNotDeclaredType(typ meta.ResolvedType) bool {
	return funcutil.Exists(q.notDeclared, func(nd meta.ResolvedType) bool { return typ.IsSubtypeOf(nd) })
}
