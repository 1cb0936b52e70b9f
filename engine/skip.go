package engine

import (
	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
)

// withSkip executes attempt under settings.SkipStrategy (spec §4.2 table),
// interleaving skip-rule invocations as the strategy demands. attempt must
// itself restore ctx.Position to its entry value on failure, the ordinary
// PEG backtracking contract that every rule/token parse function in this
// package honours.
func withSkip(ctx *Context, settings grammar.Settings, attempt func() (ast.ParsedRule, bool)) (ast.ParsedRule, bool) {
	switch settings.SkipStrategy {
	case grammar.SkipBeforeParsing:
		skipOnce(ctx, settings)
		return attempt()
	case grammar.SkipBeforeParsingGreedy:
		skipGreedy(ctx, settings)
		return attempt()
	case grammar.SkipBeforeParsingLazy:
		skipOnce(ctx, settings)
		if r, ok := attempt(); ok {
			return r, true
		}
		for skipOnce(ctx, settings) {
			if r, ok := attempt(); ok {
				return r, true
			}
		}
		return ast.ParsedRule{}, false
	case grammar.TryParseThenSkip:
		if r, ok := attempt(); ok {
			return r, true
		}
		skipOnce(ctx, settings)
		return attempt()
	case grammar.TryParseThenSkipLazy:
		if r, ok := attempt(); ok {
			return r, true
		}
		for skipOnce(ctx, settings) {
			if r, ok := attempt(); ok {
				return r, true
			}
		}
		return ast.ParsedRule{}, false
	case grammar.TryParseThenSkipGreedy:
		if r, ok := attempt(); ok {
			return r, true
		}
		skipGreedy(ctx, settings)
		return attempt()
	default: // NoSkipping
		return attempt()
	}
}

// skipOnce runs the effective skip rule a single time, with error_handling
// forced to NoRecord and barrier-ignorance forced (spec §4.2: "the skip
// rule itself parses with error_handling = ignore and barrier-ignorance
// forced"). Reports whether it advanced the cursor.
func skipOnce(ctx *Context, settings grammar.Settings) bool {
	if ctx.Parser.Defaults.OptimizedWhitespaceSkip {
		return skipWhitespaceInline(ctx)
	}
	if settings.SkipRule == grammar.NoRule {
		return false
	}
	start := ctx.Position
	skipSettings := settings
	skipSettings.ErrorHandling = grammar.NoRecord
	skipSettings.IgnoreBarriers = true
	_, ok := parseRuleAt(ctx, settings.SkipRule, skipSettings)
	if ok && ctx.Position > start {
		return true
	}
	ctx.Position = start
	return false
}

// skipGreedy runs skipOnce until it no longer advances (spec: "skip
// repeatedly until skip-rule no longer advances").
func skipGreedy(ctx *Context, settings grammar.Settings) {
	for skipOnce(ctx, settings) {
	}
}

// skipWhitespaceInline is the optimized_whitespace_skip fast path (spec
// §4.2): an inline ASCII whitespace skipper (space, tab, CR, LF) replacing
// any configured skip rule entirely.
func skipWhitespaceInline(ctx *Context) bool {
	start := ctx.Position
	bound := ctx.bound()
	for ctx.Position < bound {
		c := ctx.Input[ctx.Position]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		ctx.Position++
	}
	return ctx.Position > start
}
