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

// Package canon simplifies type-test nodes using statically known type facts
// and facts accumulated from branch outcomes. Every simplification is a
// logical consequence of exact type, declared type, nullness or constant
// value; profiled type information never folds a test to a constant.
package canon

import (
	"github.com/awslabs/ar-jit-tools/compiler/config"
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"golang.org/x/tools/container/intsets"
)

// Pass drives local canonicalization over the nodes of a graph. It implements
// ir.CanonicalizerTool; it is total and never fails on insufficient
// information, it simply leaves nodes unchanged.
type Pass struct {
	logger      *config.LogGroup
	assumptions meta.Assumptions
	constants   meta.ConstantOracle
}

// NewPass returns a canonicalization pass using the given oracles.
func NewPass(logger *config.LogGroup, assumptions meta.Assumptions, constants meta.ConstantOracle) *Pass {
	return &Pass{logger: logger, assumptions: assumptions, constants: constants}
}

// Assumptions implements ir.CanonicalizerTool.
func (p *Pass) Assumptions() meta.Assumptions { return p.assumptions }

// ConstantOracle implements ir.CanonicalizerTool.
func (p *Pass) ConstantOracle() meta.ConstantOracle { return p.constants }

// Run canonicalizes every canonicalizable node of g until a fixpoint, using a
// worklist seeded with all live nodes. Replacing a node re-enqueues its users
// since their own simplification may have been unlocked. Returns the number
// of replaced nodes.
func (p *Pass) Run(g *ir.Graph) int {
	logger := p.logger.WithScope("[unit " + g.UnitID[:8] + "]")
	var work intsets.Sparse
	for _, n := range g.Nodes() {
		work.Insert(int(n.ID()))
	}

	replaced := 0
	var id int
	for work.TakeMin(&id) {
		if g.IsDead(ir.NodeID(id)) {
			continue
		}
		n := g.NodeByID(ir.NodeID(id))
		c, ok := n.(ir.Canonicalizable)
		if !ok {
			continue
		}
		result := c.Canonical(p)
		if result == n {
			continue
		}
		logger.Tracef("canonicalized %v to %v", n, result)
		for _, u := range n.Uses() {
			work.Insert(int(u))
		}
		work.Insert(int(result.ID()))
		g.ReplaceNode(n, result)
		replaced++
	}
	if replaced > 0 {
		logger.Debugf("canonicalization replaced %d nodes", replaced)
	}
	return replaced
}
