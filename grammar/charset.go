package grammar

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// CharSet is a first-character set: the set of runes at which a rule or
// token may possibly begin matching (spec §3, §4.1 step 7). A nil *CharSet
// means "None" — any character, or unknown — and must always be treated as
// "cannot be pruned".
//
// Backed by an emirpasic/gods ordered tree-set so that Dump/debug output is
// deterministic, mirroring lr/tables.go's use of treeset for closure sets.
type CharSet struct {
	set *treeset.Set
}

// NewCharSet builds a CharSet from the given runes.
func NewCharSet(runes ...rune) *CharSet {
	cs := &CharSet{set: treeset.NewWith(runeComparator)}
	for _, r := range runes {
		cs.set.Add(r)
	}
	return cs
}

func runeComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(rune)), int(b.(rune)))
}

// Contains reports whether r is a member. A nil receiver (the "any" set)
// contains everything.
func (cs *CharSet) Contains(r rune) bool {
	if cs == nil {
		return true
	}
	return cs.set.Contains(r)
}

// Union merges two first-character sets. Either argument being nil ("any")
// makes the union "any" as well.
func Union(sets ...*CharSet) *CharSet {
	for _, s := range sets {
		if s == nil {
			return nil
		}
	}
	out := NewCharSet()
	for _, s := range sets {
		for _, v := range s.set.Values() {
			out.set.Add(v)
		}
	}
	return out
}

// Runes returns the set's members in ascending order. Panics if called on
// the "any" (nil) set — callers must check for nil first.
func (cs *CharSet) Runes() []rune {
	vals := cs.set.Values()
	out := make([]rune, len(vals))
	for i, v := range vals {
		out[i] = v.(rune)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsAny reports whether this set represents "any character" (nil).
func (cs *CharSet) IsAny() bool {
	return cs == nil
}
