package iteratable_test

import (
	"sort"
	"testing"

	"github.com/RomeCore/rcparsing-go/iteratable"
)

func TestAddDeduplicates(t *testing.T) {
	s := iteratable.NewSet(0)
	s.Add(1, 2, 2, 3)
	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}
	for _, v := range []int{1, 2, 3} {
		if !s.Contains(v) {
			t.Errorf("set should contain %d", v)
		}
	}
}

func TestRemove(t *testing.T) {
	s := iteratable.NewSet(0)
	s.Add("a", "b", "c")
	s.Remove("b")
	if s.Contains("b") {
		t.Fatal("b should have been removed")
	}
	if s.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", s.Size())
	}
	s.Remove("not-there") // no-op, must not panic
	if s.Size() != 2 {
		t.Fatalf("Size() after removing absent item = %d, want 2", s.Size())
	}
}

func TestIterationCursor(t *testing.T) {
	s := iteratable.NewSet(0)
	s.Add(1, 2, 3)
	var seen []int
	s.IterateOnce()
	for s.Next() {
		seen = append(seen, s.Item().(int))
	}
	sort.Ints(seen)
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("iteration collected %v, want [1 2 3]", seen)
	}
	// Exhausted cursor returns false and Item returns nil.
	if s.Next() {
		t.Fatal("Next() after exhaustion should return false")
	}
	if s.Item() != nil {
		t.Fatal("Item() past the end should be nil")
	}
}

func TestEmptyAndCopy(t *testing.T) {
	s := iteratable.NewSet(0)
	if !s.Empty() {
		t.Fatal("fresh set should be empty")
	}
	s.Add(1)
	c := s.Copy()
	c.Add(2)
	if s.Contains(2) {
		t.Fatal("Copy() should not alias the original's storage")
	}
	if !c.Contains(1) || !c.Contains(2) {
		t.Fatal("copy should contain both original and newly-added items")
	}
}

func TestUnionAndDifference(t *testing.T) {
	a := iteratable.NewSet(0)
	a.Add(1, 2)
	b := iteratable.NewSet(0)
	b.Add(2, 3)

	diff := a.Difference(b)
	if diff.Size() != 1 || !diff.Contains(1) {
		t.Fatalf("Difference should contain only 1, got %v", diff.Values())
	}

	a.Union(b)
	if a.Size() != 3 {
		t.Fatalf("Union should merge to size 3, got %d", a.Size())
	}
}

func TestFirstMatch(t *testing.T) {
	s := iteratable.NewSet(0)
	s.Add(1, 2, 3, 4)
	got := s.FirstMatch(func(v interface{}) bool { return v.(int)%2 == 0 })
	if got == nil {
		t.Fatal("FirstMatch should find an even number")
	}
	none := s.FirstMatch(func(v interface{}) bool { return v.(int) > 100 })
	if none != nil {
		t.Fatalf("FirstMatch with no match should return nil, got %v", none)
	}
}

func TestSortReordersAndKeepsIndexConsistent(t *testing.T) {
	s := iteratable.NewSet(0)
	s.Add(3, 1, 2)
	s.Sort(func(a, b interface{}) bool { return a.(int) < b.(int) })
	vals := s.Values()
	if vals[0].(int) != 1 || vals[1].(int) != 2 || vals[2].(int) != 3 {
		t.Fatalf("Sort did not order ascending: %v", vals)
	}
	if !s.Contains(2) {
		t.Fatal("index map should still be consistent after Sort")
	}
}
