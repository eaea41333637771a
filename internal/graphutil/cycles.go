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

package graphutil

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the graph ig.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975.
// Strongly connected components are computed with the yourbasic graph
// library; the circuit enumeration restarts from the least node of each
// non-trivial component.
func FindAllElementaryCycles(ig IGraph) [][]int64 {
	s := &circuitState{
		blocked:   map[int64]bool{},
		blockedBy: map[int64]map[int64]bool{},
	}
	pos := 0
	for pos < len(ig.Keys) {
		sub := Subgraph(ig, ig.Keys[pos:])
		nontrivial := false
		for _, component := range graph.StrongComponents(sub) {
			if len(component) < 2 {
				continue
			}
			nontrivial = true
			sort.Ints(component)
			start := component[0]
			s.stack = nil
			s.blocked = map[int64]bool{}
			s.blockedBy = map[int64]map[int64]bool{}
			s.circuit(int64(start), int64(start), sub)
			pos = start + 1
		}
		if !nontrivial {
			break
		}
	}
	return s.cycles
}

type circuitState struct {
	blocked   map[int64]bool
	blockedBy map[int64]map[int64]bool
	stack     []int64
	cycles    [][]int64
}

func (s *circuitState) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blockedBy[u] {
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *circuitState) circuit(v int64, start int64, g IGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for w := range g.Edges[v] {
		switch {
		case w == start:
			cycle := append(append([]int64(nil), s.stack...), w)
			s.cycles = append(s.cycles, cycle)
			found = true
		case !s.blocked[w]:
			if s.circuit(w, start, g) {
				found = true
			}
		}
	}

	if found {
		s.unblock(v)
	} else {
		for w := range g.Edges[v] {
			if s.blockedBy[w] == nil {
				s.blockedBy[w] = map[int64]bool{}
			}
			s.blockedBy[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}
