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

package ir_test

import (
	"testing"

	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"github.com/awslabs/ar-jit-tools/internal/metatest"
	"github.com/sebdah/goldie/v2"
)

func TestSprintListing(t *testing.T) {
	u := metatest.NewUniverse()
	example := u.AddType("Example", u.Object)
	method := u.AddMethod(example, "test", meta.KindBoolean, nil, meta.KindObject)
	helper := u.AddMethod(example, "helper", meta.KindVoid, nil, meta.KindObject)

	g := ir.NewGraph(method)
	p0 := g.Unique(ir.NewParameter(0, meta.KindObject, ir.ObjectStamp{Type: u.Dog}))
	test := g.Unique(ir.NewInstanceOf(p0, u.Animal, nil, false))
	invoke := g.Add(ir.NewInvoke(ir.InvokeStatic, helper, ir.ObjectStamp{}, p0)).(*ir.InvokeNode)
	invoke.SetStateAfter(ir.NewFrameState([]ir.Node{test}, []ir.Node{p0}, 3, nil))

	gld := goldie.New(t)
	gld.Assert(t, "graph_listing", []byte(ir.Sprint(g)))
}
