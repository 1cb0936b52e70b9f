package engine

import (
	"unicode/utf8"

	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
)

// attemptRecovery runs r's RecoveryStrategy after its normal parse has
// already failed at start (spec §4.5). On success it returns a ParsedRule
// marked Recovered so diagnostics still surface the original failure; the
// caller is responsible for recording that failure before returning.
func attemptRecovery(ctx *Context, id grammar.RuleID, r *grammar.Rule, effSelf, effChildren grammar.Settings, start int) (ast.ParsedRule, bool) {
	strat := r.Recovery
	switch strat.Kind {
	case grammar.RecoveryNone:
		return ast.ParsedRule{}, false

	case grammar.RecoveryFindNext:
		return findNextRecovery(ctx, id, r, effChildren, start)

	case grammar.RecoverySkipUntilAnchor:
		return skipAnchorRecovery(ctx, id, r, effChildren, start, false)

	case grammar.RecoverySkipAfterAnchor:
		return skipAnchorRecovery(ctx, id, r, effChildren, start, true)

	default:
		return ast.ParsedRule{}, false
	}
}

// retryAtNoRecord re-attempts id at pos through the ordinary entry point
// (full skip/memo pipeline included) with ErrorHandling forced to NoRecord
// (spec §4.5: "recovery attempts must not themselves record errors"),
// restoring ctx.Position on failure.
func retryAtNoRecord(ctx *Context, id grammar.RuleID, inherited grammar.Settings, pos int) (ast.ParsedRule, bool) {
	ctx.Position = pos
	result, ok := parseRuleAt(ctx, id, forceNoRecord(inherited))
	if !ok {
		ctx.Position = pos
	}
	return result, ok
}

// findNextRecovery scans forward from start one rune at a time, retrying
// r's body at each candidate position, until it succeeds, the configured
// stop rule matches (giving up), or the active bound is reached (spec
// §4.5 "find_next": "skip forward until the rule matches again, a
// configured stop rule matches (giving up), or the next barrier position
// is reached").
func findNextRecovery(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings, start int) (ast.ParsedRule, bool) {
	stop := r.Recovery.Stop
	bound := ctx.bound()
	for pos := start; pos < bound; {
		_, size := utf8.DecodeRuneInString(ctx.Input[pos:bound])
		pos += size
		if stop != grammar.NoRule {
			if _, ok := retryAtNoRecord(ctx, stop, effChildren, pos); ok {
				ctx.Position = start
				return ast.ParsedRule{}, false
			}
		}
		if result, ok := retryAtNoRecord(ctx, id, effChildren, pos); ok {
			return markRecovered(result), true
		}
	}
	return ast.ParsedRule{}, false
}

// skipAnchorRecovery scans forward for strat.Anchor (a rule, typically a
// synchronizing token such as a statement terminator) and resumes parsing
// either at the anchor's start (skip_until_anchor) or right after it
// (skip_after_anchor), per spec §4.5.
func skipAnchorRecovery(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings, start int, after bool) (ast.ParsedRule, bool) {
	strat := r.Recovery
	if strat.Anchor == grammar.NoRule {
		return ast.ParsedRule{}, false
	}
	bound := ctx.bound()

	for pos := start; pos <= bound; pos++ {
		if strat.Stop != grammar.NoRule {
			if _, ok := retryAtNoRecord(ctx, strat.Stop, effChildren, pos); ok {
				ctx.Position = start
				return ast.ParsedRule{}, false
			}
		}
		anchorMatch, ok := retryAtNoRecord(ctx, strat.Anchor, effChildren, pos)
		if !ok {
			continue
		}
		resumeAt := pos
		if after {
			resumeAt = anchorMatchEnd(anchorMatch)
		}
		if strat.RepeatSkip {
			// Keep consuming further anchors as long as they sit exactly at
			// the resume point, per "repeat_skip" (spec §4.5).
			for {
				next, ok2 := retryAtNoRecord(ctx, strat.Anchor, effChildren, resumeAt)
				if !ok2 {
					break
				}
				resumeAt = anchorMatchEnd(next)
			}
		}
		ctx.Position = resumeAt
		if result, ok3 := retryAtNoRecord(ctx, id, effChildren, resumeAt); ok3 {
			return markRecovered(result), true
		}
		// Anchor found but body still doesn't parse there; stop the span
		// we consumed and yield an empty recovered placeholder rather than
		// looping forever re-finding the same anchor.
		return markRecovered(ast.ParsedRule{RuleID: id, Start: start, Length: resumeAt - start}), true
	}
	return ast.ParsedRule{}, false
}

func anchorMatchEnd(m ast.ParsedRule) int {
	return m.Start + m.Length
}

func markRecovered(p ast.ParsedRule) ast.ParsedRule {
	p.Recovered = true
	return p
}
