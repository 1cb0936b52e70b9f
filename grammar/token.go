package grammar

import (
	"regexp"

	"github.com/RomeCore/rcparsing-go/value"
)

// TokenKind tags which variant of the TokenPattern tagged union a record
// holds (spec §3). The leaf kinds (up to TFail/TEOF/TBarrier and the text
// primitives) are "external collaborators" per spec §1 in the sense that
// their detailed matching semantics are a builder/application concern; the
// core only needs their data shape and first-character contribution.
type TokenKind int8

const (
	// Leaves
	TLiteral TokenKind = iota
	TLiteralChar
	TLiteralChoice
	TKeyword
	TRegex
	TIdentifier
	TNumber
	TWhitespaces
	TNewline
	TEmpty
	TFail
	TEOF
	TBarrier
	TEscapedTextPrefix
	TEscapedTextDoubleChars
	TTextUntil
	TOneOrMoreChars
	TZeroOrMoreChars
	// Combinators
	TSequence
	TChoice
	TRepeat
	TSeparatedRepeat
	TOptional
	TBetween
	TFirst
	TSecond
	TMap
	TMapSpan
	TReturn
	TCaptureText
	TSkipWhitespaces
	TLookahead
	TIf
	TSwitch
	TFailIf
	TCustom
)

//go:generate stringer -type TokenKind

// NumberFlags are bit flags controlling Number token parsing (sign,
// exponent, fractional part, ...). Left as an opaque bitset: the concrete
// flag values are an external-collaborator concern (spec §1); the core only
// threads the value through.
type NumberFlags uint32

// NumericKind distinguishes the target numeric representation for a Number
// token (int vs float vs decimal, ...).
type NumericKind int8

const (
	NumberInt NumericKind = iota
	NumberFloat
)

// CustomTokenContext is passed to a Custom token's function.
type CustomTokenContext struct {
	Input     string
	Position  int
	Parameter interface{}
}

// CustomTokenResult mirrors CustomRuleResult for token-level custom matchers.
type CustomTokenResult struct {
	Success bool
	Length  int
	Value   value.Value
	Message string
}

// CustomTokenFunc is a user-supplied Custom token implementation.
type CustomTokenFunc func(ctx CustomTokenContext) CustomTokenResult

// TokenValueFactory computes a token's default intermediate value from its
// matched text (spec §3: "Each token carries ... default value-factory").
type TokenValueFactory func(text string) value.Value

// TokenPattern is one record of the tagged union described in spec §3. Only
// the fields relevant to Kind are meaningful.
type TokenPattern struct {
	ID      TokenID
	Aliases []string
	Kind    TokenKind

	// TLiteral, TKeyword (literal prefix for keyword), TEscapedTextPrefix
	Literal string
	// TLiteral/TLiteralChar/TLiteralChoice: case sensitivity
	CaseSensitive bool

	// TLiteralChar
	Char rune

	// TLiteralChoice
	Alternatives []string

	// TKeyword
	TerminatorPredicate func(rune) bool

	// TRegex
	RegexPattern *regexp.Regexp

	// TNumber
	NumberFlags NumberFlags
	NumericKind NumericKind

	// TTextUntil
	Stop         TokenID
	AllowEmpty   bool
	ConsumeStop  bool
	FailOnEOF    bool

	// TOneOrMoreChars, TZeroOrMoreChars
	CharPredicate func(rune) bool

	// TBarrier
	BarrierAlias string

	// TEscapedTextDoubleChars
	EscapeChar rune

	// TSequence, TCustom, TBetween (len 3: open, inner, close)
	Children []TokenID

	// TChoice
	ChoiceMode ChoiceMode
	Choices    []TokenID

	// TRepeat, TSeparatedRepeat
	RepeatChild               TokenID
	Min, Max                  int
	Separator                 TokenID
	AllowTrailingSeparator    bool
	IncludeSeparatorsInResult bool

	// TOptional
	Child          TokenID
	FallbackValue  value.Value
	HasFallback    bool

	// TFirst, TSecond: Children[0], Children[1]

	// TMap
	MapFunc func(value.Value) value.Value
	// TMapSpan
	MapSpanFunc func(text string, v value.Value) value.Value
	// TReturn
	ReturnValue value.Value

	// TCaptureText
	TrimStart, TrimEnd bool

	// TSkipWhitespaces: Child is the inner token

	// TLookahead
	Positive bool

	// TIf
	Predicate ParameterPredicate
	Then, Else TokenID

	// TSwitch
	Selector ParameterPredicate
	Branches []TokenID
	Default  TokenID

	// TFailIf
	FailPredicate func(v value.Value) bool
	FailMessage   string

	// TCustom
	CustomFunc CustomTokenFunc

	Settings     Settings
	ValueFactory TokenValueFactory
	Passage      PassageFunc
	FirstChars   *CharSet

	refName string
}

func (t TokenPattern) nullableHint() bool {
	switch t.Kind {
	case TEmpty, TOptional, TZeroOrMoreChars, TLookahead:
		return true
	case TRepeat, TSeparatedRepeat:
		return t.Min == 0
	case TCustom:
		return true
	default:
		return false
	}
}
