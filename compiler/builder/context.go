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

// Package builder translates one method's instruction stream into a graph,
// maintaining the abstract interpreter state (operand stack, locals, caller
// linkage) while nodes are shared and deduplicated. Instruction decoding is
// supplied by a MethodDecoder collaborator; plugins interact with the build
// through the Context interface.
package builder

import (
	"fmt"

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// Replacement describes a currently active substitution: a snippet or
// intrinsic body parsed in place of the original method. While a replacement
// scope is active the builder does not check the value kinds flowing through
// the frame, since replacement code can move raw machine words through object
// and integer slots.
type Replacement struct {
	// OriginalMethod is the method being replaced.
	OriginalMethod meta.ResolvedMethod

	// ReplacementMethod is the body parsed instead.
	ReplacementMethod meta.ResolvedMethod

	// Intrinsic marks a substitution that is atomic with respect to state
	// reconstruction: deoptimization anywhere inside the body restarts the
	// interpreter at the substituted call site.
	Intrinsic bool
}

// BailoutError signals that the current method cannot be compiled by this
// path. It aborts only the current compilation attempt; the caller is
// expected to fall back to interpretation or retry with different settings.
type BailoutError struct {
	// Method is the method whose compilation was abandoned.
	Method meta.ResolvedMethod

	// Msg names the unsupported construct.
	Msg string
}

func (e *BailoutError) Error() string {
	return fmt.Sprintf("compilation of %s bailed out: %s", e.Method.Qualified(), e.Msg)
}

// Context is the surface a plugin uses to interface with the graph builder.
type Context interface {
	// Append admits a node into the graph through structural deduplication,
	// returning the authoritative instance. This is the raw primitive for
	// introducing a node without touching the operand stack; prefer Add and
	// AddPush, which also initialize frame states.
	Append(n ir.Node) ir.Node

	// Push pushes an already appended value typed as kind's stack kind.
	Push(kind meta.Kind, value ir.Node)

	// CreateStateAfter snapshots the current frame state with the position of
	// the instruction after the one currently being parsed.
	CreateStateAfter() *ir.FrameState

	// HandleReplacedInvoke reprocesses the invocation currently being parsed
	// against a new target, applying all standard processing including any
	// relevant plugins, as if the call site had targeted it directly.
	HandleReplacedInvoke(invokeKind ir.InvokeKind, target meta.ResolvedMethod, args []ir.Node)

	// Bailout abandons the current compilation attempt. It does not return.
	Bailout(msg string)

	// Graph returns the graph under construction.
	Graph() *ir.Graph

	// Method returns the method currently being parsed.
	Method() meta.ResolvedMethod

	// RootMethod returns the outermost method of the build.
	RootMethod() meta.ResolvedMethod

	// Depth returns the inline depth, 0 for the root method's context.
	Depth() int

	// BCI returns the index of the instruction currently being parsed.
	BCI() int

	// InvokeKind returns the dispatch mode of the invocation currently being
	// processed. Only valid while an invocation is in flight.
	InvokeKind() ir.InvokeKind

	// InvokeReturnKind returns the return kind of the in-flight invocation.
	InvokeReturnKind() meta.Kind

	// InvokeReturnType returns the declared return type of the in-flight
	// invocation, nil for primitive and void returns.
	InvokeReturnType() meta.ResolvedType

	// Parent returns the context of the method inlining this one, nil at the
	// root.
	Parent() Context

	// Replacement returns the active substitution, nil if none.
	Replacement() *Replacement

	// ParsingReplacement reports whether a replacement scope is active, i.e.
	// Replacement() is non-nil.
	ParsingReplacement() bool

	// EagerResolving reports whether referenced types and methods are
	// resolved at parse time.
	EagerResolving() bool

	// StampProvider returns the stamp oracle.
	StampProvider() ir.StampProvider

	// MetaAccess returns the metadata resolution oracle.
	MetaAccess() meta.MetaProvider

	// Assumptions returns the speculation recorder.
	Assumptions() meta.Assumptions

	// ConstantOracle returns the constant folding oracle.
	ConstantOracle() meta.ConstantOracle

	// SnippetReflection returns the replacement-code reflection oracle.
	SnippetReflection() meta.SnippetReflection
}

// Add admits value into the graph. A node already attached to a graph is
// returned unchanged; a state split among those must already carry a frame
// state, so calling Add twice is idempotent and creates no second state.
// Otherwise the node is appended, and a fresh frame state is attached if it is
// a state split without one.
func Add[T ir.Node](b Context, value T) T {
	if value.Graph() != nil {
		if split, ok := any(value).(ir.StateSplit); ok && split.StateAfter() == nil {
			panic(fmt.Errorf("%v is attached but has no frame state", value))
		}
		return value
	}
	equivalent := b.Append(value).(T)
	initStateAfter(b, equivalent)
	return equivalent
}

// AddPush admits value like Add and additionally pushes the authoritative
// node onto the operand stack typed as kind's stack kind. Use it when the
// node's own kind differs from the kind the instruction pushes.
func AddPush[T ir.Node](b Context, kind meta.Kind, value T) T {
	var equivalent = value
	if value.Graph() == nil {
		equivalent = b.Append(value).(T)
	}
	b.Push(kind.StackKind(), equivalent)
	initStateAfter(b, equivalent)
	return equivalent
}

func initStateAfter(b Context, n ir.Node) {
	if split, ok := n.(ir.StateSplit); ok && split.StateAfter() == nil {
		split.SetStateAfter(b.CreateStateAfter())
	}
}
