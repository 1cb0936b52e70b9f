package grammar

import (
	"regexp"

	"github.com/RomeCore/rcparsing-go/value"
)

// Minimal default token-primitive constructors (spec §1 lists the
// individual primitives as external collaborators "specified only by
// contract"; these implement that contract just enough to exercise the
// interpreter end-to-end — see SPEC_FULL.md §C).

// Literal matches an exact run of text.
func Literal(text string, caseSensitive bool) *buildNode {
	n := &buildNode{isToken: true, token: TokenPattern{Kind: TLiteral, Literal: text, CaseSensitive: caseSensitive}}
	if text != "" {
		r := []rune(text)[0]
		n.token.FirstChars = NewCharSet(r)
	}
	return n
}

// LiteralChar matches a single exact rune.
func LiteralChar(c rune, caseSensitive bool) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TLiteralChar, Char: c, CaseSensitive: caseSensitive, FirstChars: NewCharSet(c)}}
}

// LiteralChoice matches the longest of a set of literal alternatives.
func LiteralChoice(alts []string, caseSensitive bool) *buildNode {
	t := TokenPattern{Kind: TLiteralChoice, Alternatives: alts, CaseSensitive: caseSensitive}
	cs := NewCharSet()
	allNonEmpty := true
	for _, a := range alts {
		if a == "" {
			allNonEmpty = false
			continue
		}
		cs = Union(cs, NewCharSet([]rune(a)[0]))
	}
	if allNonEmpty {
		t.FirstChars = cs
	}
	return &buildNode{isToken: true, token: t}
}

// RegexToken matches the given compiled regular expression, anchored at the
// current position.
func RegexToken(re *regexp.Regexp) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TRegex, RegexPattern: re}}
}

// Identifier matches a Go-identifier-shaped run: a letter or underscore
// followed by letters, digits or underscores.
func Identifier() *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TIdentifier}}
}

// NumberToken matches an integer or floating point literal.
func NumberToken(flags NumberFlags, kind NumericKind) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TNumber, NumberFlags: flags, NumericKind: kind}}
}

// Whitespaces matches one or more ASCII/unicode space characters.
func Whitespaces() *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TWhitespaces}}
}

// Newline matches a single line terminator (\n, \r\n or \r).
func Newline() *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TNewline, FirstChars: NewCharSet('\n', '\r')}}
}

// EmptyToken always succeeds consuming nothing.
func EmptyToken() *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TEmpty}}
}

// FailToken always fails.
func FailToken(message string) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TFail, FailMessage: message}}
}

// EOFToken matches only at end of input.
func EOFToken() *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TEOF}}
}

// BarrierToken matches a pre-scanned Barrier with the given alias (spec
// §4.3).
func BarrierToken(alias string) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TBarrier, BarrierAlias: alias}}
}

// TextUntilToken consumes characters until stop matches (spec §3).
func TextUntilToken(stop ref, allowEmpty, consumeStop, failOnEOF bool) *buildNode {
	return &buildNode{
		isToken:   true,
		token:     TokenPattern{Kind: TTextUntil, AllowEmpty: allowEmpty, ConsumeStop: consumeStop, FailOnEOF: failOnEOF},
		tokenRefs: []ref{stop},
	}
}

// OneOrMoreChars / ZeroOrMoreChars consume a run of characters matching
// predicate.
func OneOrMoreChars(predicate func(rune) bool) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TOneOrMoreChars, CharPredicate: predicate}}
}
func ZeroOrMoreChars(predicate func(rune) bool) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TZeroOrMoreChars, CharPredicate: predicate}}
}

// --- Token combinators -------------------------------------------------

func TokSeq(children ...ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TSequence}, tokenRefs: children}
}

func TokChoice(mode ChoiceMode, alternatives ...ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TChoice, ChoiceMode: mode}, tokenRefs: alternatives}
}

func TokRepeat(child ref, min, max int) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TRepeat, Min: min, Max: max}, tokenRefs: []ref{child}}
}

func TokSepRepeat(child, sep ref, min, max int, allowTrailing, includeSep bool) *buildNode {
	return &buildNode{
		isToken: true,
		token: TokenPattern{
			Kind: TSeparatedRepeat, Min: min, Max: max,
			AllowTrailingSeparator: allowTrailing, IncludeSeparatorsInResult: includeSep,
		},
		tokenRefs: []ref{child},
		sep:       sep,
	}
}

func TokOptional(child ref, fallback ValueOpt) *buildNode {
	n := &buildNode{isToken: true, token: TokenPattern{Kind: TOptional}, tokenRefs: []ref{child}}
	if fallback.Set {
		n.token.FallbackValue = fallback.V
		n.token.HasFallback = true
	}
	return n
}

// ValueOpt is a small helper to make an optional default value explicit at
// call sites (Go has no nilable value.Value).
type ValueOpt struct {
	V   value.Value
	Set bool
}

// SomeValue wraps a default value for TokOptional.
func SomeValue(v value.Value) ValueOpt { return ValueOpt{V: v, Set: true} }

// NoValue is the absent default for TokOptional.
var NoValue = ValueOpt{}

func TokBetween(open, inner, close ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TBetween}, tokenRefs: []ref{open, inner, close}}
}

func TokFirst(a, b ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TFirst}, tokenRefs: []ref{a, b}}
}

func TokSecond(a, b ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TSecond}, tokenRefs: []ref{a, b}}
}

func TokLookahead(child ref, positive bool) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TLookahead, Positive: positive}, tokenRefs: []ref{child}}
}

func TokCaptureText(child ref, trimStart, trimEnd bool) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TCaptureText, TrimStart: trimStart, TrimEnd: trimEnd}, tokenRefs: []ref{child}}
}

func TokSkipWhitespaces(child ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TSkipWhitespaces}, tokenRefs: []ref{child}}
}

func TokIf(predicate ParameterPredicate, then, els ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TIf, Predicate: predicate}, then: then, els: els}
}

func TokSwitch(selector ParameterPredicate, branches []ref, def ref) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TSwitch, Selector: selector}, branches: branches, def: def}
}

func TokFailIf(child ref, failPredicate func(v value.Value) bool, message string) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TFailIf, FailMessage: message, FailPredicate: failPredicate}, tokenRefs: []ref{child}}
}

func TokCustom(fn CustomTokenFunc) *buildNode {
	return &buildNode{isToken: true, token: TokenPattern{Kind: TCustom, CustomFunc: fn}}
}
