package engine

import (
	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/iteratable"
)

// memoKey identifies a cached parse attempt by rule, position and the
// fingerprint of the effective settings it ran under (spec §4.7): the same
// rule at the same position can legitimately produce different results
// under different effective settings (e.g. a different skip strategy
// propagated from a different parent), so the fingerprint must be part of
// the key.
type memoKey struct {
	rule        grammar.RuleID
	position    int
	fingerprint uint64
}

type memoEntry struct {
	result  ast.ParsedRule
	success bool
	newPos  int
}

// Memo caches ParsedRule results keyed by (rule_id, position,
// effective_settings_fingerprint) (spec §4.7). It is not safe for
// concurrent use, matching Context's single-threaded contract.
type Memo struct {
	entries map[memoKey]memoEntry
	// keys tracks every live memoKey so InvalidateRange can sweep without
	// walking the whole map's bucket order.
	keys *iteratable.Set
}

// NewMemo creates an empty memo table.
func NewMemo() *Memo {
	return &Memo{entries: make(map[memoKey]memoEntry), keys: iteratable.NewSet(64)}
}

func settingsFingerprint(s grammar.Settings) uint64 {
	var fp uint64
	fp = fp*31 + uint64(s.SkipStrategy)
	fp = fp*31 + uint64(s.SkipRule)
	fp = fp*31 + uint64(s.ErrorHandling)
	if s.IgnoreBarriers {
		fp = fp*31 + 1
	}
	return fp
}

// Get looks up a cached result.
func (m *Memo) Get(rule grammar.RuleID, position int, settings grammar.Settings) (ast.ParsedRule, int, bool, bool) {
	if m == nil {
		return ast.ParsedRule{}, 0, false, false
	}
	e, ok := m.entries[memoKey{rule, position, settingsFingerprint(settings)}]
	if !ok {
		return ast.ParsedRule{}, 0, false, false
	}
	return e.result, e.newPos, e.success, true
}

// Put stores a result.
func (m *Memo) Put(rule grammar.RuleID, position int, settings grammar.Settings, result ast.ParsedRule, newPos int, success bool) {
	if m == nil {
		return
	}
	key := memoKey{rule, position, settingsFingerprint(settings)}
	if _, existed := m.entries[key]; !existed {
		m.keys.Add(key)
	}
	m.entries[key] = memoEntry{result: result, success: success, newPos: newPos}
}

// InvalidateRange evicts every entry whose matched span overlaps
// [start, start+length) (spec §4.7: "in incremental mode, entries whose
// [start, start+length) overlaps the edit range are evicted").
func (m *Memo) InvalidateRange(start, length int) {
	if m == nil {
		return
	}
	end := start + length
	var stale []interface{}
	m.keys.IterateOnce()
	for m.keys.Next() {
		k := m.keys.Item().(memoKey)
		e := m.entries[k]
		entryEnd := k.position + e.result.Length
		if k.position < end && start < entryEnd {
			stale = append(stale, k)
		}
	}
	for _, k := range stale {
		delete(m.entries, k.(memoKey))
		m.keys.Remove(k)
	}
}
