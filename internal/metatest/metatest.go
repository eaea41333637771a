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

// Package metatest provides a small in-memory type universe and oracle
// implementations for tests and the command-line harnesses. Real deployments
// supply these from the runtime's metadata.
package metatest

import (
	"fmt"

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// Type implements meta.ResolvedType over a single-parent hierarchy.
type Type struct {
	name   string
	parent *Type
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// IsSubtypeOf walks the parent chain.
func (t *Type) IsSubtypeOf(other meta.ResolvedType) bool {
	for c := t; c != nil; c = c.parent {
		if meta.ResolvedType(c) == other {
			return true
		}
	}
	return false
}

func (t *Type) String() string { return t.name }

// Method implements meta.ResolvedMethod.
type Method struct {
	name       string
	declaring  *Type
	returnKind meta.Kind
	returnType meta.ResolvedType
	params     []meta.Kind
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// DeclaringType returns the declaring type.
func (m *Method) DeclaringType() meta.ResolvedType { return m.declaring }

// Qualified returns "Type.method".
func (m *Method) Qualified() string { return m.declaring.name + "." + m.name }

// ReturnKind returns the return value kind.
func (m *Method) ReturnKind() meta.Kind { return m.returnKind }

// ReturnType returns the declared return type, nil for primitives and void.
func (m *Method) ReturnType() meta.ResolvedType { return m.returnType }

// ParamKinds returns the argument kinds, receiver included.
func (m *Method) ParamKinds() []meta.Kind { return append([]meta.Kind(nil), m.params...) }

func (m *Method) String() string { return m.Qualified() }

// Universe is a registry of types and methods acting as the meta.MetaProvider
// of a test. NewUniverse seeds the Object/Animal/Dog/Cat hierarchy most tests
// use.
type Universe struct {
	Object *Type
	Animal *Type
	Dog    *Type
	Cat    *Type

	types   map[string]*Type
	methods map[string]*Method
}

// NewUniverse returns a universe with the default hierarchy registered.
func NewUniverse() *Universe {
	u := &Universe{types: map[string]*Type{}, methods: map[string]*Method{}}
	u.Object = u.AddType("Object", nil)
	u.Animal = u.AddType("Animal", u.Object)
	u.Dog = u.AddType("Dog", u.Animal)
	u.Cat = u.AddType("Cat", u.Animal)
	return u
}

// AddType registers and returns a new type below parent (nil for a root).
func (u *Universe) AddType(name string, parent *Type) *Type {
	t := &Type{name: name, parent: parent}
	u.types[name] = t
	return t
}

// AddMethod registers and returns a new method on declaring. returnType may
// be nil for primitive and void returns; params are the argument kinds,
// receiver included.
func (u *Universe) AddMethod(declaring *Type, name string, returnKind meta.Kind, returnType meta.ResolvedType, params ...meta.Kind) *Method {
	m := &Method{name: name, declaring: declaring, returnKind: returnKind, returnType: returnType, params: params}
	u.methods[m.Qualified()] = m
	return m
}

// LookupType implements meta.MetaProvider.
func (u *Universe) LookupType(name string) (meta.ResolvedType, error) {
	if t, ok := u.types[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unresolved type %s", name)
}

// LookupMethod implements meta.MetaProvider.
func (u *Universe) LookupMethod(qualified string) (meta.ResolvedMethod, error) {
	if m, ok := u.methods[qualified]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("unresolved method %s", qualified)
}

// Stamps is a registry-backed ir.StampProvider. Unregistered slots get the
// unknown stamp.
type Stamps struct {
	params  map[string][]ir.ObjectStamp
	returns map[string]ir.ObjectStamp
}

// NewStamps returns an empty stamp provider.
func NewStamps() *Stamps {
	return &Stamps{params: map[string][]ir.ObjectStamp{}, returns: map[string]ir.ObjectStamp{}}
}

// SetParamStamps registers the parameter stamps of method.
func (s *Stamps) SetParamStamps(method meta.ResolvedMethod, stamps ...ir.ObjectStamp) {
	s.params[method.Qualified()] = stamps
}

// SetReturnStamp registers the return stamp of method.
func (s *Stamps) SetReturnStamp(method meta.ResolvedMethod, stamp ir.ObjectStamp) {
	s.returns[method.Qualified()] = stamp
}

// ParameterStamp implements ir.StampProvider.
func (s *Stamps) ParameterStamp(method meta.ResolvedMethod, index int) ir.ObjectStamp {
	if stamps, ok := s.params[method.Qualified()]; ok && index < len(stamps) {
		return stamps[index]
	}
	return ir.ObjectStamp{}
}

// ReturnStamp implements ir.StampProvider.
func (s *Stamps) ReturnStamp(method meta.ResolvedMethod) ir.ObjectStamp {
	return s.returns[method.Qualified()]
}

// Assumptions records every speculation for inspection by tests.
type Assumptions struct {
	ConcreteSubtypes [][2]meta.ResolvedType
	NonInlined       []meta.ResolvedMethod
}

// RecordConcreteSubtype implements meta.Assumptions.
func (a *Assumptions) RecordConcreteSubtype(typ meta.ResolvedType, sub meta.ResolvedType) {
	a.ConcreteSubtypes = append(a.ConcreteSubtypes, [2]meta.ResolvedType{typ, sub})
}

// RecordNonInlined implements meta.Assumptions.
func (a *Assumptions) RecordNonInlined(target meta.ResolvedMethod) {
	a.NonInlined = append(a.NonInlined, target)
}

// Constants is a meta.ConstantOracle answering from the constant itself.
type Constants struct{}

// TypeOf implements meta.ConstantOracle.
func (Constants) TypeOf(c meta.Constant) (meta.ResolvedType, bool) {
	if c.Kind == meta.KindObject && !c.IsNull() && c.Type != nil {
		return c.Type, true
	}
	return nil, false
}

// FoldCompare implements meta.ConstantOracle. Both constants are fully known
// here, so every comparison is decidable.
func (Constants) FoldCompare(cond meta.Condition, x meta.Constant, y meta.Constant) (bool, bool) {
	eq := x.Equal(y)
	if cond == meta.CondEQ {
		return eq, true
	}
	return !eq, true
}

// Snippets is a meta.SnippetReflection over the Ref handles of constants.
type Snippets struct{}

// Unbox implements meta.SnippetReflection.
func (Snippets) Unbox(c meta.Constant) any { return c.Ref }

// Box implements meta.SnippetReflection.
func (Snippets) Box(obj any, typ meta.ResolvedType) meta.Constant {
	return meta.Constant{Kind: meta.KindObject, Type: typ, Ref: obj}
}
