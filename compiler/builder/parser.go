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
)

// GraphParser is the stateful parsing context for one method body. The root
// parser is created by Build; inlining creates a child parser per inlined
// body, linked through Parent. It implements Context for plugins and exposes
// the richer instruction-effect surface consumed by the MethodDecoder.
type GraphParser struct {
	builder *Builder
	logger  *config.LogGroup
	graph   *ir.Graph
	method  meta.ResolvedMethod
	parent  *GraphParser
	depth   int

	// replacement is the active substitution scope, inherited by nested
	// inlines; orthogonal to depth.
	replacement *Replacement

	// callerState is the caller's frame snapshot at the substituted or
	// inlined call site, nil at the root. All states created by this parser
	// chain to it.
	callerState *ir.FrameState

	stack  []ir.Node
	locals []ir.Node
	bci    int

	// in-flight invocation, valid while invokeActive
	invokeActive     bool
	invokeKind       ir.InvokeKind
	invokeReturnKind meta.Kind
	invokeReturnType meta.ResolvedType

	// retVal is the value the parsed body returned, nil for void returns
	retVal ir.Node
}

func newRootParser(b *Builder, g *ir.Graph, method meta.ResolvedMethod, logger *config.LogGroup) *GraphParser {
	p := &GraphParser{builder: b, logger: logger, graph: g, method: method}
	kinds := method.ParamKinds()
	p.locals = make([]ir.Node, len(kinds))
	for i, kind := range kinds {
		stamp := b.oracles.Stamps.ParameterStamp(method, i)
		p.locals[i] = g.Unique(ir.NewParameter(i, kind, stamp))
	}
	return p
}

// Append admits n through the graph's structural deduplication and returns
// the authoritative instance.
func (p *GraphParser) Append(n ir.Node) ir.Node {
	return p.graph.Unique(n)
}

// Push pushes an already appended value onto the operand stack, typed as
// kind's stack kind.
func (p *GraphParser) Push(kind meta.Kind, value ir.Node) {
	if value.Graph() == nil {
		panic(fmt.Errorf("push of node %v that was not appended", value))
	}
	if kind == meta.KindVoid {
		panic(fmt.Errorf("push of void value %v", value))
	}
	p.checkKind(kind, value)
	p.stack = append(p.stack, value)
}

// Pop pops the top of the operand stack, checking it against kind.
func (p *GraphParser) Pop(kind meta.Kind) ir.Node {
	if len(p.stack) == 0 {
		panic(fmt.Errorf("pop from empty stack at bci %d in %s", p.bci, p.method.Qualified()))
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.checkKind(kind, top)
	return top
}

// StackSize returns the operand stack height.
func (p *GraphParser) StackSize() int { return len(p.stack) }

// checkKind verifies a value flowing through a frame slot has the expected
// stack kind. Suspended inside replacement scopes, where raw machine words
// move through object and integer slots.
func (p *GraphParser) checkKind(expected meta.Kind, value ir.Node) {
	if p.ParsingReplacement() {
		return
	}
	if value.Kind().StackKind() != expected.StackKind() {
		panic(fmt.Errorf("kind mismatch at bci %d in %s: have %s, want %s",
			p.bci, p.method.Qualified(), value.Kind().StackKind(), expected.StackKind()))
	}
}

// SetBCI positions the parser at the instruction being decoded.
func (p *GraphParser) SetBCI(bci int) { p.bci = bci }

// CreateStateAfter snapshots the frame with the position of the next
// instruction. Inside an intrinsic scope the snapshot is the caller's state
// at the substituted call site: the intrinsic is atomic and deoptimization
// restarts the interpreter at that call.
func (p *GraphParser) CreateStateAfter() *ir.FrameState {
	if p.replacement != nil && p.replacement.Intrinsic {
		return p.callerState
	}
	return ir.NewFrameState(p.stack, p.locals, p.bci+1, p.callerState)
}

// Bailout abandons the compilation attempt. It panics with a *BailoutError
// that Build recovers and returns; it never returns to the caller.
func (p *GraphParser) Bailout(msg string) {
	panic(&BailoutError{Method: p.RootMethod(), Msg: msg})
}

// Graph returns the graph under construction.
func (p *GraphParser) Graph() *ir.Graph { return p.graph }

// Method returns the method this parser is parsing.
func (p *GraphParser) Method() meta.ResolvedMethod { return p.method }

// RootMethod returns the outermost method of the build.
func (p *GraphParser) RootMethod() meta.ResolvedMethod {
	root := p
	for root.parent != nil {
		root = root.parent
	}
	return root.method
}

// Depth returns the inline depth of this parser, 0 at the root.
func (p *GraphParser) Depth() int { return p.depth }

// BCI returns the position of the instruction currently being parsed.
func (p *GraphParser) BCI() int { return p.bci }

// Parent returns the parsing context inlining this one, nil at the root.
func (p *GraphParser) Parent() Context {
	if p.parent == nil {
		return nil
	}
	return p.parent
}

// Replacement returns the active substitution scope, nil if none.
func (p *GraphParser) Replacement() *Replacement { return p.replacement }

// ParsingReplacement reports whether a replacement scope is active.
func (p *GraphParser) ParsingReplacement() bool { return p.replacement != nil }

// EagerResolving reports whether references are resolved at parse time.
func (p *GraphParser) EagerResolving() bool { return p.builder.cfg.EagerResolving }

// InvokeKind returns the dispatch mode of the in-flight invocation.
func (p *GraphParser) InvokeKind() ir.InvokeKind {
	p.requireInvoke()
	return p.invokeKind
}

// InvokeReturnKind returns the return kind of the in-flight invocation.
func (p *GraphParser) InvokeReturnKind() meta.Kind {
	p.requireInvoke()
	return p.invokeReturnKind
}

// InvokeReturnType returns the declared return type of the in-flight
// invocation, nil for primitive and void returns.
func (p *GraphParser) InvokeReturnType() meta.ResolvedType {
	p.requireInvoke()
	return p.invokeReturnType
}

func (p *GraphParser) requireInvoke() {
	if !p.invokeActive {
		panic(fmt.Errorf("no invocation in flight at bci %d in %s", p.bci, p.method.Qualified()))
	}
}

// StampProvider returns the stamp oracle.
func (p *GraphParser) StampProvider() ir.StampProvider { return p.builder.oracles.Stamps }

// MetaAccess returns the metadata resolution oracle.
func (p *GraphParser) MetaAccess() meta.MetaProvider { return p.builder.oracles.Meta }

// Assumptions returns the speculation recorder.
func (p *GraphParser) Assumptions() meta.Assumptions { return p.builder.oracles.Assumptions }

// ConstantOracle returns the constant folding oracle.
func (p *GraphParser) ConstantOracle() meta.ConstantOracle { return p.builder.oracles.Constants }

// SnippetReflection returns the replacement-code reflection oracle.
func (p *GraphParser) SnippetReflection() meta.SnippetReflection { return p.builder.oracles.Snippets }

// Logger returns the unit-scoped log group.
func (p *GraphParser) Logger() *config.LogGroup { return p.logger }
