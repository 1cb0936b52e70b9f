package grammar

import "github.com/RomeCore/rcparsing-go/value"

// RuleKind tags which variant of the Rule tagged union a record holds (spec
// §3).
type RuleKind int8

const (
	KindTokenRule RuleKind = iota
	KindSequence
	KindChoice
	KindOptional
	KindRepeat
	KindSeparatedRepeat
	KindLookahead
	KindIf
	KindSwitch
	KindCustom
)

//go:generate stringer -type RuleKind

// ChoiceMode selects how a Choice rule or token picks among alternatives
// (spec §4.2).
type ChoiceMode int8

const (
	ChoiceFirst ChoiceMode = iota
	ChoiceShortest
	ChoiceLongest
)

// Unbounded marks a Repeat/SeparatedRepeat with no upper bound.
const Unbounded = -1

// ParameterPredicate dispatches on the current parser_parameter (spec
// §4.2's If/Switch). For If it returns a bool-like int (0/1); for Switch it
// returns the index of the chosen branch, or -1 for "no branch matches".
type ParameterPredicate func(parameter interface{}) int

// CustomRuleContext is passed to a Custom rule's function (spec §4.2).
type CustomRuleContext struct {
	Input          string
	Position       int
	BarrierPos     int // position of the next unconsumed barrier, or len(Input) if none remain
	Parameter      interface{}
	Children       []ParsedChild
}

// ParsedChild is the minimal view a Custom rule function gets of an already
// parsed child (it does not need the full ast.ParsedRule type, avoiding an
// import cycle between grammar and ast).
type ParsedChild struct {
	Start  int
	Length int
	Value  value.Value
}

// CustomRuleResult is what a Custom rule's function must return (spec
// §4.2: "must return a ParsedElement with success, start, length, and
// optional intermediate_value").
type CustomRuleResult struct {
	Success bool
	Start   int
	Length  int
	Value   value.Value
	Message string // used when !Success, becomes a ParsingError message
}

// CustomRuleFunc is a user-supplied Custom rule implementation.
type CustomRuleFunc func(ctx CustomRuleContext) CustomRuleResult

// RuleValueFactory computes a rule node's final value from its children's
// values and text (spec §4.6). text is supplied lazily via a func to avoid
// forcing a substring allocation when the factory does not need it.
type RuleValueFactory func(children []ParsedChild, text func() string) value.Value

// PassageFunc combines an ordered list of child intermediate values into one
// (spec GLOSSARY: "Passage function"), used by Sequence/Repeat/
// SeparatedRepeat token combinators and also exposed for rule-level
// Sequence/Repeat nodes that have no explicit ValueFactory.
type PassageFunc func(children []value.Value) value.Value

// Rule is one record of the tagged union described in spec §3. Only the
// fields relevant to Kind are meaningful; the others are zero.
type Rule struct {
	ID      RuleID
	Aliases []string
	Kind    RuleKind

	// KindTokenRule
	Token TokenID

	// KindSequence, KindCustom
	Children []RuleID

	// KindChoice
	ChoiceMode ChoiceMode
	Choices    []RuleID

	// KindOptional, KindLookahead
	Child    RuleID
	Positive bool // KindLookahead: true = positive lookahead

	// KindRepeat, KindSeparatedRepeat
	RepeatChild               RuleID
	Min, Max                  int
	Separator                 RuleID
	AllowTrailingSeparator    bool
	IncludeSeparatorsInResult bool

	// KindIf
	Predicate ParameterPredicate
	Then      RuleID
	Else      RuleID

	// KindSwitch
	Selector ParameterPredicate
	Branches []RuleID
	Default  RuleID

	// KindCustom
	CustomFunc CustomRuleFunc

	Settings     Settings
	Recovery     *RecoveryStrategy
	ValueFactory RuleValueFactory
	Passage      PassageFunc
	FirstChars   *CharSet

	// buildable-graph-only fields, cleared/ignored after Build:
	refName string // name this buildable was defined under, if any
}

// IsNullable reports whether the rule may match the empty string, a
// property needed by first-character-set computation for Sequence (spec
// §4.1 step 7: "first(child[0]) if child[0] is non-nullable else ...").
// This is a structural approximation computed from the rule's own kind and
// bounds on each call; it is conservative (true) for Custom rules since
// their nullability cannot be determined statically.
func (r Rule) IsNullable() bool {
	switch r.Kind {
	case KindOptional:
		return true
	case KindRepeat:
		return r.Min == 0
	case KindSeparatedRepeat:
		return r.Min == 0
	case KindLookahead:
		return true // consumes nothing either way
	case KindCustom:
		return true
	default:
		return false
	}
}
