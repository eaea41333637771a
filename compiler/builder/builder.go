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

package builder

import (
	"fmt"

	"github.com/awslabs/ar-jit-tools/compiler/config"
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"github.com/awslabs/ar-jit-tools/internal/graphutil"
)

// MethodDecoder replays the instruction stream of a method into a parser. It
// is the external collaborator that owns the encoding of method bodies; the
// builder only consumes its effects.
type MethodDecoder interface {
	Decode(p *GraphParser, method meta.ResolvedMethod) error
}

// InvocationPlugin intercepts the processing of one call site. It returns
// true when it handled the invocation (including pushing a result for
// non-void targets); returning false hands the call back to the default
// pipeline.
type InvocationPlugin func(b Context, target meta.ResolvedMethod, args []ir.Node) bool

// Oracles groups the external providers consulted during construction. All of
// them are treated as pure: the builder never caches across units on their
// behalf.
type Oracles struct {
	Stamps      ir.StampProvider
	Meta        meta.MetaProvider
	Assumptions meta.Assumptions
	Constants   meta.ConstantOracle
	Snippets    meta.SnippetReflection
}

// Builder constructs graphs for compilation units. One Builder may be shared
// by several worker goroutines: Build creates all per-unit state afresh and
// the registered plugins and oracles are read-only during builds.
type Builder struct {
	cfg     *config.Config
	logger  *config.LogGroup
	oracles Oracles
	decoder MethodDecoder
	plugins map[string]InvocationPlugin
}

// NewBuilder returns a builder using the given configuration, oracles and
// decoder.
func NewBuilder(cfg *config.Config, logger *config.LogGroup, oracles Oracles, decoder MethodDecoder) *Builder {
	return &Builder{
		cfg:     cfg,
		logger:  logger,
		oracles: oracles,
		decoder: decoder,
		plugins: map[string]InvocationPlugin{},
	}
}

// RegisterPlugin installs plugin for the method with the given qualified
// name. Register all plugins before the first Build.
func (b *Builder) RegisterPlugin(qualified string, plugin InvocationPlugin) {
	b.plugins[qualified] = plugin
}

// Build parses method into a new graph. A *BailoutError is returned when the
// method contains a construct this path does not compile; the attempt's
// partial graph is discarded. Any other panic during construction indicates a
// defect in a plugin or the builder itself and is not caught.
func (b *Builder) Build(method meta.ResolvedMethod) (g *ir.Graph, err error) {
	graph := ir.NewGraph(method)
	logger := b.logger.WithScope(fmt.Sprintf("[unit %.8s]", graph.UnitID))
	logger.Debugf("building %s", method.Qualified())

	defer func() {
		if r := recover(); r != nil {
			if bailout, ok := r.(*BailoutError); ok {
				logger.Infof("%v", bailout)
				g, err = nil, bailout
				return
			}
			panic(r)
		}
	}()

	p := newRootParser(b, graph, method, logger)
	if err := b.decoder.Decode(p, method); err != nil {
		// a decoder that cannot replay the method is an unsupported construct
		p.Bailout(err.Error())
	}

	if b.cfg.VerifyGraph {
		verify(graph)
	}
	graph.Freeze()
	logger.Debugf("built %s: %d nodes", method.Qualified(), graph.NodeCount())
	return graph, nil
}

// verify checks the structural invariants of a completed graph: every state
// split carries a frame state and the value graph is acyclic. A violation is
// a defect in a plugin or the builder, not a bailout.
func verify(g *ir.Graph) {
	for _, n := range g.Nodes() {
		if split, ok := n.(ir.StateSplit); ok && split.StateAfter() == nil {
			panic(fmt.Errorf("state split %v has no frame state after construction", n))
		}
	}
	if err := graphutil.VerifyAcyclic(g); err != nil {
		panic(err)
	}
}
