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

// Package meta defines the metadata interfaces the compiler core consumes from
// its runtime collaborators: resolved type and method identities, value kinds,
// constants, and the oracle interfaces (constant folding, assumptions, snippet
// reflection). The core never implements these oracles; it only queries them.
package meta

import "fmt"

// ResolvedType is the identity of a type that has been resolved by the
// metadata provider. Implementations must be usable as map keys.
type ResolvedType interface {
	// Name returns the unqualified name of the type.
	Name() string

	// IsSubtypeOf reports whether the receiver is equal to or a subtype of other.
	IsSubtypeOf(other ResolvedType) bool
}

// ResolvedMethod is the identity of a method that has been resolved by the
// metadata provider.
type ResolvedMethod interface {
	// Name returns the unqualified name of the method.
	Name() string

	// DeclaringType returns the type declaring the method.
	DeclaringType() ResolvedType

	// Qualified returns the "Type.method" form used to key plugin registries.
	Qualified() string

	// ReturnKind returns the kind of the method's return value, KindVoid for
	// methods that return nothing.
	ReturnKind() Kind

	// ReturnType returns the declared return type for object-kinded methods,
	// nil otherwise.
	ReturnType() ResolvedType

	// ParamKinds returns the kinds of the invocation arguments in order,
	// receiver included for methods that take one.
	ParamKinds() []Kind
}

// MetaProvider resolves names to type and method identities. It is consulted
// by command-line harnesses and plugins; the core itself only passes the
// resolved identities around.
type MetaProvider interface {
	LookupType(name string) (ResolvedType, error)
	LookupMethod(qualified string) (ResolvedMethod, error)
}

// Assumptions records speculative facts the compiled code depends on. The
// runtime must invalidate the compilation unit when a recorded assumption is
// broken.
type Assumptions interface {
	// RecordConcreteSubtype records the assumption that sub is the unique
	// concrete subtype of typ.
	RecordConcreteSubtype(typ ResolvedType, sub ResolvedType)

	// RecordNonInlined records that a call to target was emitted as a real
	// invocation and must deoptimize through the standard path.
	RecordNonInlined(target ResolvedMethod)
}

// ConstantOracle answers questions about constants that require runtime
// knowledge, e.g. the exact type of an object constant.
type ConstantOracle interface {
	// TypeOf returns the exact runtime type of a non-null object constant.
	// The second result is false when the oracle cannot answer.
	TypeOf(c Constant) (ResolvedType, bool)

	// FoldCompare folds a comparison between two constants when possible.
	FoldCompare(cond Condition, x Constant, y Constant) (bool, bool)
}

// SnippetReflection gives replacement (snippet and intrinsic) code access to
// the raw objects boxed inside constants. Only valid while a replacement scope
// is active.
type SnippetReflection interface {
	// Unbox returns the raw object held by an object constant.
	Unbox(c Constant) any

	// Box wraps a raw object into an object constant of the given type.
	Box(obj any, typ ResolvedType) Constant
}

// Condition is a comparison condition used in constant bounds.
type Condition uint8

const (
	// CondEQ is the equality condition.
	CondEQ Condition = iota
	// CondNE is the inequality condition.
	CondNE
)

func (c Condition) String() string {
	if c == CondEQ {
		return "=="
	}
	return "!="
}

// Constant is an immediate value. Object constants carry an optional exact
// type; primitive constants carry their payload in Bits.
type Constant struct {
	// Kind is the value category of the constant.
	Kind Kind

	// Null is true for the null object constant.
	Null bool

	// Type is the exact runtime type of a non-null object constant, when known.
	Type ResolvedType

	// Ref is an opaque, comparable handle identifying the object instance of a
	// non-null object constant. Interpreted only by the runtime oracles.
	Ref any

	// Bits holds the payload of primitive constants (booleans are 0 or 1).
	Bits int64
}

// NullObject is the canonical null constant.
var NullObject = Constant{Kind: KindObject, Null: true}

// ForBoolean returns the boolean constant for b.
func ForBoolean(b bool) Constant {
	var bits int64
	if b {
		bits = 1
	}
	return Constant{Kind: KindBoolean, Bits: bits}
}

// ForInt returns the integer constant for v.
func ForInt(v int64) Constant {
	return Constant{Kind: KindInt, Bits: v}
}

// ForObject returns a non-null object constant with exact type typ and
// instance handle ref.
func ForObject(typ ResolvedType, ref any) Constant {
	return Constant{Kind: KindObject, Type: typ, Ref: ref}
}

// IsNull reports whether the constant is the null object.
func (c Constant) IsNull() bool {
	return c.Kind == KindObject && c.Null
}

// AsBoolean returns the value of a boolean constant.
func (c Constant) AsBoolean() bool {
	if c.Kind != KindBoolean {
		panic(fmt.Errorf("AsBoolean on %v constant", c.Kind))
	}
	return c.Bits != 0
}

func (c Constant) String() string {
	switch {
	case c.IsNull():
		return "null"
	case c.Kind == KindObject:
		return fmt.Sprintf("object<%s>", c.Type.Name())
	case c.Kind == KindBoolean:
		return fmt.Sprintf("%v", c.Bits != 0)
	default:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Bits)
	}
}

// Equal reports structural equality of two constants. Object constants are
// compared by type and instance handle.
func (c Constant) Equal(other Constant) bool {
	return c.Kind == other.Kind && c.Null == other.Null &&
		c.Type == other.Type && c.Ref == other.Ref && c.Bits == other.Bits
}
