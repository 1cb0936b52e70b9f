package engine

import (
	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/perror"
	"github.com/RomeCore/rcparsing-go/value"
)

// ParseRule parses rule id at the current cursor position under the
// settings propagated from its caller (spec §4.2). inherited is what the
// parent computed for its children (the parser's global defaults, for a
// top-level call). This is the package's single public entry point into
// the rule interpreter; token.go's ParseToken is its token-side twin.
func ParseRule(ctx *Context, id grammar.RuleID, inherited grammar.Settings) (ast.ParsedRule, bool) {
	return parseRuleAt(ctx, id, inherited)
}

func parseRuleAt(ctx *Context, id grammar.RuleID, inherited grammar.Settings) (ast.ParsedRule, bool) {
	r := ctx.Parser.Rule(id)
	global := ctx.Parser.Defaults.DefaultSettings
	effSelf := grammar.EffectiveSettings(inherited, r.Settings, global, true)
	effChildren := grammar.EffectiveSettings(inherited, r.Settings, global, false)

	start := ctx.Position
	ctx.WalkTrace.Log("ENTER", start, ruleLabel(ctx.Parser, id), "")

	if ctx.Parser.Defaults.UseCaching {
		if cached, newPos, ok, hit := ctx.Memo.Get(id, start, effSelf); hit {
			ctx.Position = newPos
			if ok {
				ctx.WalkTrace.Log("SUCCESS", start, ruleLabel(ctx.Parser, id)+" (cached)", snippet(ctx.Input, start, newPos))
			} else {
				ctx.WalkTrace.Log("FAIL", start, ruleLabel(ctx.Parser, id)+" (cached)", "")
			}
			return cached, ok
		}
	}

	if ctx.tooDeep() {
		ctx.WalkTrace.Log("FAIL", start, ruleLabel(ctx.Parser, id)+" (recursion limit)", "")
		ctx.Errors.Handle(perror.ParsingError{
			Position: start, ElementID: int(id), IsToken: false,
			Message: "recursion limit exceeded in " + ruleLabel(ctx.Parser, id) + ": likely non-trivial left recursion",
		}, grammar.Record)
		return ast.ParsedRule{}, false
	}

	pop := ctx.pushFrame(id, ruleLabel(ctx.Parser, id))
	result, ok := withSkip(ctx, effSelf, func() (ast.ParsedRule, bool) {
		return parseRuleKind(ctx, id, r, effChildren)
	})
	pop()

	if !ok {
		ctx.Position = start
		if r.Recovery != nil && effSelf.ErrorHandling == grammar.Record {
			if recovered, rok := attemptRecovery(ctx, id, r, effSelf, effChildren, start); rok {
				recordFailure(ctx, id, start, effSelf)
				ctx.Memoize(id, start, effSelf, recovered, ctx.Position, true)
				ctx.WalkTrace.Log("SUCCESS", start, ruleLabel(ctx.Parser, id)+" (recovered)", snippet(ctx.Input, start, ctx.Position))
				return recovered, true
			}
		}
		ctx.Position = start // recovery may have left the cursor wherever its scan gave up
		recordFailure(ctx, id, start, effSelf)
		ctx.Memoize(id, start, effSelf, ast.ParsedRule{}, start, false)
		ctx.WalkTrace.Log("FAIL", start, ruleLabel(ctx.Parser, id), "")
		return ast.ParsedRule{}, false
	}
	ctx.Memoize(id, start, effSelf, result, ctx.Position, true)
	ctx.WalkTrace.Log("SUCCESS", start, ruleLabel(ctx.Parser, id), snippet(ctx.Input, start, ctx.Position))
	return result, true
}

// Memoize stores a result, a thin wrapper so callers don't need to reach
// into ctx.Memo directly (and do nothing when caching is off).
func (c *Context) Memoize(id grammar.RuleID, pos int, settings grammar.Settings, result ast.ParsedRule, newPos int, success bool) {
	if c.Parser.Defaults.UseCaching {
		c.Memo.Put(id, pos, settings, result, newPos, success)
	}
}

func snippet(input string, start, end int) string {
	if end > len(input) {
		end = len(input)
	}
	if start > end {
		return ""
	}
	const max = 24
	if end-start > max {
		end = start + max
	}
	return input[start:end]
}

func parseRuleKind(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	switch r.Kind {
	case grammar.KindTokenRule:
		tok, ok := parseTokenAt(ctx, r.Token, effChildren)
		if !ok {
			return ast.ParsedRule{}, false
		}
		return ast.ParsedRule{
			RuleID: id, TokenID: grammar.NoToken, IsToken: false,
			Start: start, Length: tok.Length,
			IntermediateValue: tok.IntermediateValue,
			Children:          []ast.ParsedRule{tok},
			Occurrence:         ctx.nextOccurrence(id),
		}, true

	case grammar.KindSequence:
		return parseSequenceRule(ctx, id, r.Children, effChildren)

	case grammar.KindChoice:
		return parseChoiceRule(ctx, id, r, effChildren)

	case grammar.KindOptional:
		if child, ok := parseRuleAt(ctx, r.Child, effChildren); ok {
			return ast.ParsedRule{RuleID: id, Start: start, Length: child.Length,
				IntermediateValue: child.IntermediateValue, Children: []ast.ParsedRule{child},
				Occurrence: ctx.nextOccurrence(id)}, true
		}
		ctx.Position = start
		return ast.ParsedRule{RuleID: id, Start: start, Length: 0, Occurrence: ctx.nextOccurrence(id)}, true

	case grammar.KindRepeat:
		return parseRepeatRule(ctx, id, r, effChildren)

	case grammar.KindSeparatedRepeat:
		return parseSeparatedRepeatRule(ctx, id, r, effChildren)

	case grammar.KindLookahead:
		return parseLookaheadRule(ctx, id, r, effChildren)

	case grammar.KindIf:
		branch := r.Then
		if r.Predicate != nil && r.Predicate(ctx.Parameter) == 0 {
			branch = r.Else
		}
		if branch == grammar.NoRule {
			return ast.ParsedRule{}, false
		}
		child, ok := parseRuleAt(ctx, branch, effChildren)
		if !ok {
			return ast.ParsedRule{}, false
		}
		return ast.ParsedRule{RuleID: id, Start: start, Length: child.Length,
			IntermediateValue: child.IntermediateValue, Children: []ast.ParsedRule{child},
			Occurrence: ctx.nextOccurrence(id)}, true

	case grammar.KindSwitch:
		branch := r.Default
		if r.Selector != nil {
			if sel := r.Selector(ctx.Parameter); sel >= 0 && sel < len(r.Branches) {
				branch = r.Branches[sel]
			}
		}
		if branch == grammar.NoRule {
			return ast.ParsedRule{}, false
		}
		child, ok := parseRuleAt(ctx, branch, effChildren)
		if !ok {
			return ast.ParsedRule{}, false
		}
		return ast.ParsedRule{RuleID: id, Start: start, Length: child.Length,
			IntermediateValue: child.IntermediateValue, Children: []ast.ParsedRule{child},
			Occurrence: ctx.nextOccurrence(id)}, true

	case grammar.KindCustom:
		return parseCustomRule(ctx, id, r, effChildren)

	default:
		return ast.ParsedRule{}, false
	}
}

func parseSequenceRule(ctx *Context, id grammar.RuleID, childIDs []grammar.RuleID, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	children := make([]ast.ParsedRule, 0, len(childIDs))
	for _, cid := range childIDs {
		child, ok := parseRuleAt(ctx, cid, effChildren)
		if !ok {
			ctx.Position = start
			return ast.ParsedRule{}, false
		}
		children = append(children, child)
	}
	return ast.ParsedRule{
		RuleID: id, Start: start, Length: ctx.Position - start,
		IntermediateValue: passageOf(childValues(children), lookupPassage(ctx.Parser, id)),
		Children:           children,
		Occurrence:         ctx.nextOccurrence(id),
	}, true
}

func parseChoiceRule(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position

	if r.ChoiceMode == grammar.ChoiceFirst {
		for _, cid := range r.Choices {
			if ctx.Parser.Defaults.UseFirstCharacterMatch && !mayBeginRule(ctx.Parser, cid, ctx.Input, ctx.Position) {
				continue
			}
			ctx.Position = start
			if child, ok := parseRuleAt(ctx, cid, forceNoRecord(effChildren)); ok {
				return ast.ParsedRule{RuleID: id, Start: start, Length: child.Length,
					IntermediateValue: child.IntermediateValue, Children: []ast.ParsedRule{child},
					Occurrence: ctx.nextOccurrence(id)}, true
			}
		}
		ctx.Position = start
		return ast.ParsedRule{}, false
	}

	// Shortest / Longest: try every alternative with NoRecord handling,
	// keep the best by length; declaration order breaks ties (spec §4.2).
	var best *ast.ParsedRule
	for _, cid := range r.Choices {
		ctx.Position = start
		child, ok := parseRuleAt(ctx, cid, forceNoRecord(effChildren))
		if !ok {
			continue
		}
		if best == nil {
			c := child
			best = &c
			continue
		}
		if r.ChoiceMode == grammar.ChoiceShortest && child.Length < best.Length {
			best = &child
		}
		if r.ChoiceMode == grammar.ChoiceLongest && child.Length > best.Length {
			best = &child
		}
	}
	if best == nil {
		ctx.Position = start
		return ast.ParsedRule{}, false
	}
	ctx.Position = start + best.Length
	return ast.ParsedRule{RuleID: id, Start: start, Length: best.Length,
		IntermediateValue: best.IntermediateValue, Children: []ast.ParsedRule{*best},
		Occurrence: ctx.nextOccurrence(id)}, true
}

func parseRepeatRule(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	var children []ast.ParsedRule
	for r.Max == grammar.Unbounded || len(children) < r.Max {
		before := ctx.Position
		child, ok := parseRuleAt(ctx, r.RepeatChild, effChildren)
		if !ok {
			ctx.Position = before
			break
		}
		if ctx.Position == before {
			// zero-length match: stop, or the loop never terminates.
			children = append(children, child)
			break
		}
		children = append(children, child)
	}
	if len(children) < r.Min {
		ctx.Position = start
		return ast.ParsedRule{}, false
	}
	return ast.ParsedRule{
		RuleID: id, Start: start, Length: ctx.Position - start,
		IntermediateValue: passageOf(childValues(children), lookupPassage(ctx.Parser, id)),
		Children:           children,
		Occurrence:         ctx.nextOccurrence(id),
	}, true
}

func parseSeparatedRepeatRule(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	var children []ast.ParsedRule
	count := 0
	for r.Max == grammar.Unbounded || count < r.Max {
		before := ctx.Position
		if count > 0 {
			sep, ok := parseRuleAt(ctx, r.Separator, effChildren)
			if !ok {
				ctx.Position = before
				break
			}
			elem, ok2 := parseRuleAt(ctx, r.RepeatChild, effChildren)
			if !ok2 {
				ctx.Position = before
				break
			}
			if r.IncludeSeparatorsInResult {
				children = append(children, sep)
			}
			children = append(children, elem)
		} else {
			elem, ok := parseRuleAt(ctx, r.RepeatChild, effChildren)
			if !ok {
				break
			}
			children = append(children, elem)
		}
		count++
	}
	if r.AllowTrailingSeparator {
		before := ctx.Position
		if sep, ok := parseRuleAt(ctx, r.Separator, effChildren); ok {
			if r.IncludeSeparatorsInResult {
				children = append(children, sep)
			}
		} else {
			ctx.Position = before
		}
	}
	if count < r.Min {
		ctx.Position = start
		return ast.ParsedRule{}, false
	}
	return ast.ParsedRule{
		RuleID: id, Start: start, Length: ctx.Position - start,
		IntermediateValue: passageOf(childValues(children), lookupPassage(ctx.Parser, id)),
		Children:           children,
		Occurrence:         ctx.nextOccurrence(id),
	}, true
}

func parseLookaheadRule(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	_, ok := parseRuleAt(ctx, r.Child, forceNoRecord(effChildren))
	ctx.Position = start
	if ok == r.Positive {
		return ast.ParsedRule{RuleID: id, Start: start, Length: 0, Occurrence: ctx.nextOccurrence(id)}, true
	}
	return ast.ParsedRule{}, false
}

func parseCustomRule(ctx *Context, id grammar.RuleID, r *grammar.Rule, effChildren grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	parsedChildren := make([]ast.ParsedRule, 0, len(r.Children))
	viewChildren := make([]grammar.ParsedChild, 0, len(r.Children))
	for _, cid := range r.Children {
		child, ok := parseRuleAt(ctx, cid, effChildren)
		if !ok {
			ctx.Position = start
			return ast.ParsedRule{}, false
		}
		parsedChildren = append(parsedChildren, child)
		viewChildren = append(viewChildren, grammar.ParsedChild{Start: child.Start, Length: child.Length, Value: child.IntermediateValue})
	}
	if r.CustomFunc == nil {
		ctx.Position = start
		return ast.ParsedRule{}, false
	}
	res := r.CustomFunc(grammar.CustomRuleContext{
		Input: ctx.Input, Position: start, BarrierPos: ctx.nextBarrierPosition(),
		Parameter: ctx.Parameter, Children: viewChildren,
	})
	if !res.Success {
		if res.Message != "" {
			ctx.Errors.Handle(perror.ParsingError{
				Position: start, ElementID: int(id), IsToken: false, Message: res.Message,
			}, effChildren.ErrorHandling)
		}
		ctx.Position = start
		return ast.ParsedRule{}, false
	}
	ctx.Position = res.Start + res.Length
	return ast.ParsedRule{
		RuleID: id, Start: res.Start, Length: res.Length,
		IntermediateValue: res.Value, Children: parsedChildren,
		Occurrence: ctx.nextOccurrence(id),
	}, true
}

func forceNoRecord(s grammar.Settings) grammar.Settings {
	s.ErrorHandling = grammar.NoRecord
	return s
}

func childValues(children []ast.ParsedRule) []value.Value {
	out := make([]value.Value, len(children))
	for i, c := range children {
		out[i] = c.IntermediateValue
	}
	return out
}

func lookupPassage(p *grammar.Parser, id grammar.RuleID) grammar.PassageFunc {
	return p.Rule(id).Passage
}

func ruleLabel(p *grammar.Parser, id grammar.RuleID) string {
	r := p.Rule(id)
	if len(r.Aliases) > 0 {
		return r.Aliases[0]
	}
	return "rule"
}

func recordFailure(ctx *Context, id grammar.RuleID, pos int, settings grammar.Settings) {
	var stack *perror.StackFrame
	if ctx.Parser.Defaults.WriteStackTrace {
		stack = ctx.stack
	}
	ctx.Errors.Handle(perror.ParsingError{
		Position: pos, ElementID: int(id), IsToken: false,
		Message: "expected " + ruleLabel(ctx.Parser, id), Stack: stack,
	}, settings.ErrorHandling)
}
