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

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// The methods in this file are the instruction effects a MethodDecoder
// invokes while replaying a method body. Plugins use the narrower Context
// surface instead.

// PushConstant appends the shared constant node for c and pushes it. Object
// constants missing an exact type are completed through the constant oracle.
func (p *GraphParser) PushConstant(c meta.Constant) ir.Node {
	if c.Kind == meta.KindObject && !c.IsNull() && c.Type == nil {
		if typ, ok := p.ConstantOracle().TypeOf(c); ok {
			c.Type = typ
		}
	}
	n := p.Append(ir.NewConstant(c))
	p.Push(c.Kind, n)
	return n
}

// LoadLocal pushes the value of local slot index.
func (p *GraphParser) LoadLocal(index int, kind meta.Kind) ir.Node {
	if index >= len(p.locals) || p.locals[index] == nil {
		panic(fmt.Errorf("load of unset local %d at bci %d in %s", index, p.bci, p.method.Qualified()))
	}
	n := p.locals[index]
	p.Push(kind, n)
	return n
}

// StoreLocal pops the top of stack into local slot index, growing the frame
// when needed.
func (p *GraphParser) StoreLocal(index int, kind meta.Kind) {
	v := p.Pop(kind)
	for len(p.locals) <= index {
		p.locals = append(p.locals, nil)
	}
	p.locals[index] = v
}

// InstanceOf pops the subject and pushes a type test against target. The
// profile may be nil.
func (p *GraphParser) InstanceOf(target meta.ResolvedType, profile *ir.TypeProfile) *ir.InstanceOfNode {
	object := p.Pop(meta.KindObject)
	return AddPush(p, meta.KindBoolean, ir.NewInstanceOf(object, target, profile, false))
}

// NullCheck pops the subject and pushes a null test.
func (p *GraphParser) NullCheck(expectNull bool) *ir.NullCheckNode {
	object := p.Pop(meta.KindObject)
	return AddPush(p, meta.KindBoolean, ir.NewNullCheck(object, expectNull))
}

// Invoke pops the arguments of target from the stack and processes the call
// through the full pipeline: plugins first, then the default emission of an
// invoke node.
func (p *GraphParser) Invoke(invokeKind ir.InvokeKind, target meta.ResolvedMethod) {
	kinds := target.ParamKinds()
	args := make([]ir.Node, len(kinds))
	for i := len(kinds) - 1; i >= 0; i-- {
		args[i] = p.Pop(kinds[i])
	}
	p.processInvoke(invokeKind, target, args)
}

// Return records the value the parsed body produces. Inlined bodies hand the
// value to the inlining context; the root parser keeps it for the unit's
// return linkage.
func (p *GraphParser) Return(kind meta.Kind) {
	if kind == meta.KindVoid {
		p.retVal = nil
		return
	}
	p.retVal = p.Pop(kind)
}

// ReturnedValue returns the value recorded by Return, nil for void.
func (p *GraphParser) ReturnedValue() ir.Node { return p.retVal }

// HandleReplacedInvoke reprocesses the in-flight invocation against a new
// target, as if the call site had targeted it directly. All standard
// processing applies, including plugins registered for the new target.
func (p *GraphParser) HandleReplacedInvoke(invokeKind ir.InvokeKind, target meta.ResolvedMethod, args []ir.Node) {
	p.processInvoke(invokeKind, target, args)
}

func (p *GraphParser) processInvoke(invokeKind ir.InvokeKind, target meta.ResolvedMethod, args []ir.Node) {
	savedActive, savedKind := p.invokeActive, p.invokeKind
	savedRetKind, savedRetType := p.invokeReturnKind, p.invokeReturnType
	p.invokeActive = true
	p.invokeKind = invokeKind
	p.invokeReturnKind = target.ReturnKind()
	p.invokeReturnType = target.ReturnType()
	defer func() {
		p.invokeActive, p.invokeKind = savedActive, savedKind
		p.invokeReturnKind, p.invokeReturnType = savedRetKind, savedRetType
	}()

	if plugin, ok := p.builder.plugins[target.Qualified()]; ok {
		p.logger.Tracef("applying plugin for %s at bci %d", target.Qualified(), p.bci)
		if plugin(p, target, args) {
			return
		}
	}
	p.emitInvoke(invokeKind, target, args)
}

func (p *GraphParser) emitInvoke(invokeKind ir.InvokeKind, target meta.ResolvedMethod, args []ir.Node) {
	stamp := p.StampProvider().ReturnStamp(target)
	invoke := ir.NewInvoke(invokeKind, target, stamp, args...)
	if target.ReturnKind() == meta.KindVoid {
		Add(p, invoke)
	} else {
		AddPush(p, target.ReturnKind(), invoke)
	}
	p.Assumptions().RecordNonInlined(target)
}

// InlineInvoke parses the body of target (or of its replacement) in a child
// context in place of emitting a call. Arguments become the child frame's
// locals. Returns the value the body produced, already pushed for non-void
// targets, and whether inlining was performed; a refusal (maximum inline depth
// reached) leaves the stack untouched so the caller can fall back to
// emitting the invocation.
func (p *GraphParser) InlineInvoke(target meta.ResolvedMethod, args []ir.Node, repl *Replacement) (ir.Node, bool) {
	if p.depth+1 > p.builder.cfg.MaxInlineDepth {
		p.logger.Debugf("refusing to inline %s at depth %d", target.Qualified(), p.depth+1)
		return nil, false
	}
	body := target
	if repl != nil {
		body = repl.ReplacementMethod
	}

	child := &GraphParser{
		builder:     p.builder,
		logger:      p.logger,
		graph:       p.graph,
		method:      body,
		parent:      p,
		depth:       p.depth + 1,
		replacement: repl,
		callerState: ir.NewFrameState(p.stack, p.locals, p.bci, p.callerState),
		locals:      append([]ir.Node(nil), args...),
	}
	if repl == nil {
		// an ordinary inline inside a replacement body stays in its scope
		child.replacement = p.replacement
	}

	if err := p.builder.decoder.Decode(child, body); err != nil {
		p.Bailout(err.Error())
	}
	if len(child.stack) != 0 {
		panic(fmt.Errorf("inlined body %s left %d values on the stack", body.Qualified(), len(child.stack)))
	}

	ret := child.retVal
	if target.ReturnKind() != meta.KindVoid {
		if ret == nil {
			panic(fmt.Errorf("inlined body %s returned no value for %s target", body.Qualified(), target.ReturnKind()))
		}
		if repl != nil {
			// replacement bodies may return raw kinds, skip the frame check
			p.stack = append(p.stack, ret)
		} else {
			p.Push(target.ReturnKind(), ret)
		}
	}
	return ret, true
}
