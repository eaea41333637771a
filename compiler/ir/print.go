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
	"io"
	"strings"
)

// Fprint writes a deterministic listing of the live nodes of g in admission
// order. The unit id is deliberately omitted so output is reproducible.
func Fprint(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintf(w, "graph %s\n", g.Method().Qualified()); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		line := fmt.Sprintf("  v%-3d = %s %s", n.ID(), n.String(), n.Kind())
		if s := n.Stamp(); s.Type != nil || s.NonNull {
			line += fmt.Sprintf(" [%s]", s)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		if split, ok := n.(StateSplit); ok && split.StateAfter() != nil {
			if _, err := fmt.Fprintf(w, "         %v\n", split.StateAfter()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sprint returns the listing of g as a string.
func Sprint(g *Graph) string {
	var b strings.Builder
	_ = Fprint(&b, g)
	return b.String()
}
