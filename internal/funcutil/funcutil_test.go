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

package funcutil

import (
	"strconv"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("Map returned %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Map[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if Map(nil, strconv.Itoa) != nil {
		t.Errorf("mapping nothing should yield nothing")
	}
}

func TestIter(t *testing.T) {
	sum := 0
	Iter([]int{1, 2, 3}, func(x int) { sum += x })
	if sum != 6 {
		t.Errorf("Iter visited a sum of %d, want 6", sum)
	}
}

func TestExists(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	if !Exists([]int{1, 3, 4}, even) {
		t.Errorf("Exists should find the even element")
	}
	if Exists([]int{1, 3, 5}, even) {
		t.Errorf("Exists should not find an even element")
	}
	if Exists(nil, even) {
		t.Errorf("nothing exists in an empty slice")
	}
}

func TestContains(t *testing.T) {
	if !Contains([]string{"a", "b"}, "b") || Contains([]string{"a"}, "b") {
		t.Errorf("Contains misjudged membership")
	}
}

func TestSetToOrderedSlice(t *testing.T) {
	got := SetToOrderedSlice(map[int]bool{3: true, 1: true, 2: true})
	for i, want := range []int{1, 2, 3} {
		if got[i] != want {
			t.Errorf("element %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestReverse(t *testing.T) {
	a := []int{1, 2, 3, 4}
	Reverse(a)
	for i, want := range []int{4, 3, 2, 1} {
		if a[i] != want {
			t.Errorf("element %d = %d, want %d", i, a[i], want)
		}
	}
}
