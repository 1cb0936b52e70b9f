package ast

import "github.com/RomeCore/rcparsing-go/grammar"

// Optimization is a bitset of tree-shaping passes applied after parsing
// (spec §4.6).
type Optimization uint8

const (
	// CollapseSingleChild replaces a node with its single child when the
	// node has no attached ValueFactory of its own (so nothing would be
	// lost by disappearing) and exactly one child fully spans it.
	CollapseSingleChild Optimization = 1 << iota
	// DropEmpty removes zero-length rule children; token children are kept
	// even when empty. Nothing is dropped when that would leave a
	// Sequence/Repeat node with no structural record at all.
	DropEmpty
	// Default is the optimization set applied unless the caller overrides
	// it: collapse pass-through nodes, keep empty nodes (some grammars rely
	// on an empty Optional child being present to distinguish "matched
	// nothing" from "didn't run").
	Default = CollapseSingleChild
)

// Optimize applies flags to raw, returning a new tree (raw is left
// unmodified; ParsedRule is a value type, so this only copies slices that
// actually change).
func Optimize(raw ParsedRule, parser *grammar.Parser, flags Optimization) ParsedRule {
	optimized := make([]ParsedRule, len(raw.Children))
	for i, c := range raw.Children {
		optimized[i] = Optimize(c, parser, flags)
	}

	if flags&DropEmpty != 0 {
		kept := make([]ParsedRule, 0, len(optimized))
		for _, oc := range optimized {
			if oc.Length == 0 && !oc.IsToken {
				continue
			}
			kept = append(kept, oc)
		}
		if len(kept) > 0 || len(optimized) == 0 || !needsStructuralRecord(raw, parser) {
			optimized = kept
		}
		// else: raw is a Sequence/Repeat and dropping every child would
		// leave it with no structural record at all, so keep them instead.
	}
	raw.Children = optimized

	if flags&CollapseSingleChild != 0 && len(optimized) == 1 && !hasValueFactory(parser, raw) {
		only := optimized[0]
		if only.Start == raw.Start && only.Length == raw.Length {
			return only
		}
	}
	return raw
}

// needsStructuralRecord reports whether node is a Sequence or Repeat-family
// rule, the kinds whose meaning (what matched, how many times) depends on
// still having at least one child present after DropEmpty runs.
func needsStructuralRecord(node ParsedRule, parser *grammar.Parser) bool {
	if node.IsToken || parser == nil {
		return false
	}
	switch parser.Rule(node.RuleID).Kind {
	case grammar.KindSequence, grammar.KindRepeat, grammar.KindSeparatedRepeat:
		return true
	default:
		return false
	}
}

func hasValueFactory(parser *grammar.Parser, node ParsedRule) bool {
	if node.IsToken || parser == nil {
		return false
	}
	return parser.Rule(node.RuleID).ValueFactory != nil
}
