package rcparsing

import (
	"sort"
	"unicode/utf8"

	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/engine"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/perror"
)

// Result is what Parse returns on success: the parsed tree, ready for lazy
// or precalculated access, plus any non-fatal errors recorded along the
// way (e.g. from rules that recovered, spec §4.5).
//
// Memo is the memo table built up while producing Root; pass it back into
// Reparse so an incremental re-parse can reuse and selectively invalidate
// cached entries instead of starting from an empty table (spec §4.7, §4.8).
// It is nil when the parser's Config has UseCaching disabled.
type Result struct {
	Root      *ast.Node
	Errors    []perror.ErrorGroup
	WalkTrace *perror.WalkTrace
	Memo      *engine.Memo
}

// Parse runs parser's main rule against input under parameter (spec §4's
// top-level Parse operation). It pre-scans every barrier tokenizer whose
// BarrierGate (if any) allows it, then interprets the main rule from
// position 0.
//
// On failure it returns a *perror.ParsingException as the error, built from
// the accumulator's relevant error groups (spec §7): callers always see at
// least one group, synthesized from perror.UnknownErrorGroup if nothing was
// ever recorded.
func Parse(parser *grammar.Parser, input string, parameter interface{}) (Result, error) {
	return ParseRule(parser, parser.MainRule, input, parameter)
}

// ParseRule is Parse generalized to an arbitrary rule, for grammars that
// expose more than one entry point (e.g. parsing a single expression
// fragment instead of a whole document).
func ParseRule(parser *grammar.Parser, rule grammar.RuleID, input string, parameter interface{}) (Result, error) {
	barriers, err := scanBarriers(parser, input, parameter)
	if err != nil {
		return Result{}, err
	}

	ctx := engine.NewContext(parser, input, parameter, barriers)
	raw, ok := runCatchingThrow(func() (ast.ParsedRule, bool) {
		return engine.ParseRule(ctx, rule, parser.Defaults.DefaultSettings)
	})

	if !ok {
		return Result{}, buildException(parser, ctx, input)
	}

	optimized := ast.Optimize(raw, parser, ast.Default)
	root := ast.NewNode(optimized, parser, input)
	return Result{
		Root:      root,
		Errors:    ctx.Errors.Groups(input, parser.Defaults.TabSize, parser.Defaults.MaxGroups),
		WalkTrace: ctx.WalkTrace,
		Memo:      ctx.Memo,
	}, nil
}

// runCatchingThrow recovers a panic raised by perror.Accumulator.Handle
// under ErrorHandling = Throw (spec §4.4), turning it back into the usual
// (result, ok) shape so callers never see a raw panic escape Parse.
func runCatchingThrow(attempt func() (ast.ParsedRule, bool)) (result ast.ParsedRule, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return attempt()
}

func buildException(parser *grammar.Parser, ctx *engine.Context, input string) *perror.ParsingException {
	groups := ctx.Errors.Groups(input, parser.Defaults.TabSize, parser.Defaults.MaxGroups)
	relevant := ctx.Errors.RelevantGroups(input, parser.Defaults.TabSize)
	if len(relevant) == 0 {
		relevant = []perror.ErrorGroup{perror.UnknownErrorGroup(ctx.Position)}
		groups = relevant
	}
	formatter := perror.NewFormatter(formattingFlags(parser.Defaults.ErrorFormattingFlags), parser.Defaults.MaxStepsToDisplay)
	exc := &perror.ParsingException{Groups: groups, Relevant: relevant}
	exc.Message = formatter.FormatException(input, exc, ctx.WalkTrace)
	return exc
}

func formattingFlags(f grammar.ErrorFormattingFlags) perror.FormattingFlags {
	var out perror.FormattingFlags
	if f&grammar.FormatColor != 0 {
		out |= perror.FlagColor
	}
	if f&grammar.FormatStackTrace != 0 {
		out |= perror.FlagStackTrace
	}
	if f&grammar.FormatWalkTrace != 0 {
		out |= perror.FlagWalkTrace
	}
	if f&grammar.FormatVisualColumn != 0 {
		out |= perror.FlagVisualColumn
	}
	return out
}

// scanBarriers runs every barrier tokenizer attached to parser whose
// BarrierGate (if set) allows parameter, merging their barriers into one
// sequence sorted by position; barriers at equal positions may appear in
// any order relative to each other (spec §4.3).
func scanBarriers(parser *grammar.Parser, input string, parameter interface{}) ([]grammar.Barrier, error) {
	if len(parser.Barriers) == 0 {
		return nil, nil
	}
	if parser.BarrierGate != nil && !parser.BarrierGate(parameter) {
		return nil, nil
	}
	var all []grammar.Barrier
	for _, bt := range parser.Barriers {
		bs, err := bt.Scan(input)
		if err != nil {
			return nil, err
		}
		all = append(all, bs...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Position < all[j].Position })
	return all, nil
}

// TryMatchToken matches token id at the start of input only, reporting its
// matched length on success (spec §4.2's token interpreter, exposed
// directly for callers that want a single token without a surrounding
// grammar).
func TryMatchToken(parser *grammar.Parser, id grammar.TokenID, input string) (ast.ParsedRule, bool) {
	ctx := engine.NewContext(parser, input, nil, nil)
	return engine.ParseToken(ctx, id, parser.Defaults.DefaultSettings)
}

// MatchesToken reports whether token id matches any prefix of input,
// discarding the match itself.
func MatchesToken(parser *grammar.Parser, id grammar.TokenID, input string) bool {
	_, ok := TryMatchToken(parser, id, input)
	return ok
}

// FindAllMatches iterates every non-overlapping match of rule across input,
// advancing past each match; a zero-length match still advances by at least
// one rune so iteration always terminates (spec §9 supplemented behavior).
func FindAllMatches(parser *grammar.Parser, rule grammar.RuleID, input string, parameter interface{}) func(func(*ast.Node) bool) {
	return func(yield func(*ast.Node) bool) {
		pos := 0
		for pos <= len(input) {
			ctx := engine.NewContext(parser, input[pos:], parameter, nil)
			raw, ok := engine.ParseRule(ctx, rule, parser.Defaults.DefaultSettings)
			if !ok {
				pos += advanceByOneRune(input, pos)
				continue
			}
			shifted := shiftParsedRule(raw, pos)
			node := ast.NewNode(ast.Optimize(shifted, parser, ast.Default), parser, input)
			if !yield(node) {
				return
			}
			if shifted.Length == 0 {
				pos += advanceByOneRune(input, pos)
			} else {
				pos = shifted.End()
			}
		}
	}
}

func advanceByOneRune(input string, pos int) int {
	if pos >= len(input) {
		return 1
	}
	_, size := utf8.DecodeRuneInString(input[pos:])
	return size
}

func shiftParsedRule(p ast.ParsedRule, offset int) ast.ParsedRule {
	p.Start += offset
	for i := range p.Children {
		p.Children[i] = shiftParsedRule(p.Children[i], offset)
	}
	return p
}

// Reparse re-interprets only the subtree touched by change, reusing
// unchanged siblings by plain copy (spec §4.8). oldRoot must have been
// produced against the source newSource is an edited version of.
//
// memo should be the Memo from the Result that produced oldRoot (nil is
// fine if caching is disabled). Entries overlapping change are evicted
// before the incremental pass, and the remaining entries are reused and
// extended in place (spec §4.7, §4.8).
func Reparse(parser *grammar.Parser, oldRoot ast.ParsedRule, newSource string, change ast.TextChange, parameter interface{}, memo *engine.Memo) ast.ParsedRule {
	memo.InvalidateRange(change.Start, change.OldLength)
	reparseOne := func(template ast.ParsedRule, src string, start int) (ast.ParsedRule, bool) {
		ctx := engine.NewContext(parser, src, parameter, nil)
		ctx.Position = start
		ctx.Memo = memo
		if template.IsToken {
			return engine.ParseToken(ctx, template.TokenID, parser.Defaults.DefaultSettings)
		}
		return engine.ParseRule(ctx, template.RuleID, parser.Defaults.DefaultSettings)
	}
	return ast.Reparse(oldRoot, newSource, change, reparseOne)
}
