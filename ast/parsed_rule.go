package ast

import (
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

// ParsedRule is the core AST node (spec §3), a value type so that
// incremental re-parse can share unchanged subtrees by plain copy rather
// than by reference bookkeeping.
type ParsedRule struct {
	RuleID  grammar.RuleID
	TokenID grammar.TokenID
	IsToken bool

	Start  int
	Length int

	PassedBarriers int
	Occurrence     int

	// IntermediateValue is the token's computed value for a token leaf, or
	// (when no rule-level ValueFactory ran yet / at all) the passage-
	// combined value threaded up from children (spec §4.6).
	IntermediateValue value.Value

	Children []ParsedRule

	// Version is bumped on every node actually re-parsed by an incremental
	// reparse; unchanged nodes retain their previous version (spec §3, §4.8).
	Version int

	// recovered marks a node produced by error recovery (spec §4.5): still
	// a success, but diagnostics should keep surfacing the original error.
	Recovered bool
}

// End returns the position just past this node's matched span.
func (p ParsedRule) End() int {
	return p.Start + p.Length
}

// Text returns the substring of source this node matched.
func (p ParsedRule) Text(source string) string {
	end := p.Start + p.Length
	if end > len(source) {
		end = len(source)
	}
	if p.Start > end {
		return ""
	}
	return source[p.Start:end]
}
