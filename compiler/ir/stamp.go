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

package ir

import (
	"fmt"

	"github.com/awslabs/ar-jit-tools/compiler/meta"
)

// ObjectStamp records what is statically known about an object value: an
// optional type bound, whether that bound is exact, and whether the value is
// known to be non-null. The zero value means nothing is known.
type ObjectStamp struct {
	// Type is the type bound, nil when unknown.
	Type meta.ResolvedType

	// Exact is true when Type is the precise runtime type rather than an
	// upper bound.
	Exact bool

	// NonNull is true when the value is known not to be null.
	NonNull bool
}

// ExactType returns the precise runtime type, or nil when only an upper bound
// (or nothing) is known.
func (s ObjectStamp) ExactType() meta.ResolvedType {
	if s.Exact {
		return s.Type
	}
	return nil
}

// DeclaredType returns the static upper bound on the runtime type, nil when
// unknown. When the stamp is exact the exact type is also the bound.
func (s ObjectStamp) DeclaredType() meta.ResolvedType {
	return s.Type
}

func (s ObjectStamp) String() string {
	switch {
	case s.Type == nil && s.NonNull:
		return "!null"
	case s.Type == nil:
		return "-"
	case s.Exact && s.NonNull:
		return fmt.Sprintf("%s! !null", s.Type.Name())
	case s.Exact:
		return s.Type.Name() + "!"
	case s.NonNull:
		return s.Type.Name() + " !null"
	default:
		return s.Type.Name()
	}
}

// StampProvider derives stamps for values the builder introduces, e.g. method
// parameters and return values. Supplied by the runtime collaborator.
type StampProvider interface {
	// ParameterStamp returns the stamp of parameter index of method.
	ParameterStamp(method meta.ResolvedMethod, index int) ObjectStamp

	// ReturnStamp returns the stamp of the value returned by method.
	ReturnStamp(method meta.ResolvedMethod) ObjectStamp
}
