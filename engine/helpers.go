package engine

import (
	"unicode/utf8"

	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

// passageOf combines children's intermediate values via passage if supplied,
// otherwise falls back to defaultPassageValue (spec §4.6).
func passageOf(children []value.Value, passage grammar.PassageFunc) value.Value {
	return applyPassage(passage, children)
}

// mayBeginRule reports whether rule id could possibly match starting at
// pos, using its precomputed first-character set (spec §4.1 step 7). This
// is a pruning heuristic only: a nil/"any" set always allows the attempt;
// otherwise, at end of input or at a rune outside the set, only a rule that
// may match the empty string (Rule.IsNullable) is attempted.
func mayBeginRule(p *grammar.Parser, id grammar.RuleID, input string, pos int) bool {
	r := p.Rule(id)
	if r.FirstChars.IsAny() {
		return true
	}
	if pos >= len(input) {
		return r.IsNullable()
	}
	rn, _ := utf8.DecodeRuneInString(input[pos:])
	if r.FirstChars.Contains(rn) {
		return true
	}
	return r.IsNullable()
}
