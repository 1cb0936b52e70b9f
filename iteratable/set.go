package iteratable

import (
	"fmt"
	"sort"
	"strings"
)

// Set is an unordered collection of items, compared by Go equality (==).
// Union and Sort are destructive: they modify the receiver in place and also
// return it, so call sites may chain them. Difference returns a new set and
// leaves the receiver unchanged.
//
// Iteration is stateful: call IterateOnce to reset the cursor, then Next/Item
// in a loop. This mirrors the teacher package's iteration style.
type Set struct {
	items  []interface{}
	index  map[interface{}]int
	cursor int
}

// NewSet creates an empty set with the given initial capacity hint.
func NewSet(capacityHint int) *Set {
	return &Set{
		items:  make([]interface{}, 0, capacityHint),
		index:  make(map[interface{}]int, capacityHint),
		cursor: -1,
	}
}

// Add inserts items into the set, ignoring items already present.
func (s *Set) Add(items ...interface{}) *Set {
	for _, it := range items {
		if _, ok := s.index[it]; ok {
			continue
		}
		s.index[it] = len(s.items)
		s.items = append(s.items, it)
	}
	return s
}

// Remove deletes an item from the set, if present.
func (s *Set) Remove(item interface{}) *Set {
	i, ok := s.index[item]
	if !ok {
		return s
	}
	last := len(s.items) - 1
	s.items[i] = s.items[last]
	s.index[s.items[i]] = i
	s.items = s.items[:last]
	delete(s.index, item)
	return s
}

// Contains reports whether item is a member of the set.
func (s *Set) Contains(item interface{}) bool {
	_, ok := s.index[item]
	return ok
}

// Empty reports whether the set has no members.
func (s *Set) Empty() bool {
	return len(s.items) == 0
}

// Size returns the number of members.
func (s *Set) Size() int {
	return len(s.items)
}

// Copy returns a shallow copy of the set.
func (s *Set) Copy() *Set {
	c := NewSet(len(s.items))
	c.Add(s.items...)
	return c
}

// Values returns all members in unspecified but stable order.
func (s *Set) Values() []interface{} {
	out := make([]interface{}, len(s.items))
	copy(out, s.items)
	return out
}

// Union destructively adds every member of other into the receiver.
func (s *Set) Union(other *Set) *Set {
	if other == nil {
		return s
	}
	s.Add(other.items...)
	return s
}

// Difference returns a new set containing members of the receiver not
// present in other. The receiver is unchanged; this mirrors usage in
// closure-set construction where the delta drives further work.
func (s *Set) Difference(other *Set) *Set {
	d := NewSet(len(s.items))
	for _, it := range s.items {
		if other == nil || !other.Contains(it) {
			d.Add(it)
		}
	}
	return d
}

// IterateOnce resets the iteration cursor to the start of the set.
func (s *Set) IterateOnce() {
	s.cursor = -1
}

// Next advances the iteration cursor; returns false once exhausted.
func (s *Set) Next() bool {
	s.cursor++
	return s.cursor < len(s.items)
}

// Item returns the member at the current iteration cursor.
func (s *Set) Item() interface{} {
	if s.cursor < 0 || s.cursor >= len(s.items) {
		return nil
	}
	return s.items[s.cursor]
}

// FirstMatch returns the first member for which predicate returns true, or
// nil if none matches.
func (s *Set) FirstMatch(predicate func(interface{}) bool) interface{} {
	for _, it := range s.items {
		if predicate(it) {
			return it
		}
	}
	return nil
}

// Sort orders the internal slice in place according to less. Iteration order
// after Sort reflects the new ordering; the index map is rebuilt.
func (s *Set) Sort(less func(a, b interface{}) bool) *Set {
	sort.Slice(s.items, func(i, j int) bool {
		return less(s.items[i], s.items[j])
	})
	for i, it := range s.items {
		s.index[it] = i
	}
	return s
}

// Dump renders the set's members for debugging.
func (s *Set) Dump() string {
	var b strings.Builder
	b.WriteString("{")
	for i, it := range s.items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", it)
	}
	b.WriteString("}")
	return b.String()
}

func (s *Set) String() string {
	return s.Dump()
}
