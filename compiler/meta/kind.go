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

package meta

// Kind is the value category of a node or constant. Sub-integer kinds exist
// only in locals and field accesses; the operand stack widens them to KindInt.
type Kind uint8

const (
	// KindIllegal marks an unusable value, e.g. the high half of a two-slot value.
	KindIllegal Kind = iota
	// KindVoid is the kind of effect-only nodes.
	KindVoid
	// KindBoolean is a single-bit integer value.
	KindBoolean
	// KindByte is an 8-bit signed integer value.
	KindByte
	// KindShort is a 16-bit signed integer value.
	KindShort
	// KindChar is a 16-bit unsigned integer value.
	KindChar
	// KindInt is a 32-bit signed integer value.
	KindInt
	// KindLong is a 64-bit signed integer value.
	KindLong
	// KindFloat is a 32-bit floating point value.
	KindFloat
	// KindDouble is a 64-bit floating point value.
	KindDouble
	// KindObject is a heap reference.
	KindObject
	// KindWord is a raw machine word. Words only appear inside replacement
	// scopes, where the usual kind checks are suspended.
	KindWord
)

var kindNames = [...]string{
	KindIllegal: "illegal",
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindShort:   "short",
	KindChar:    "char",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindObject:  "object",
	KindWord:    "word",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// StackKind returns the kind used on the operand stack for a value of kind k.
// Sub-integer kinds widen to KindInt; all other kinds are their own stack kind.
func (k Kind) StackKind() Kind {
	switch k {
	case KindBoolean, KindByte, KindShort, KindChar:
		return KindInt
	default:
		return k
	}
}

// IsObject reports whether k is the object reference kind.
func (k Kind) IsObject() bool { return k == KindObject }

// IsPrimitive reports whether k is a primitive value kind.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBoolean, KindByte, KindShort, KindChar, KindInt, KindLong, KindFloat, KindDouble:
		return true
	default:
		return false
	}
}
