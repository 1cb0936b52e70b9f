package grammar

// Constructor functions for rule buildables. These are the minimal
// combinator surface needed to assemble a buildable graph; the fluent,
// one-factory-method-per-kind builder facade described by spec §1 as an
// external collaborator is not reproduced here.

// TokenRule wraps a token reference as a rule (spec §3 Rule variant
// TokenRule).
func TokenRule(tok ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindTokenRule}, tokenRefs: []ref{tok}}
}

// Seq builds a Sequence rule.
func Seq(children ...ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindSequence}, ruleRefs: children}
}

// ChoiceRule builds a Choice rule with the given resolution mode.
func ChoiceRule(mode ChoiceMode, alternatives ...ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindChoice, ChoiceMode: mode}, ruleRefs: alternatives}
}

// Opt builds an Optional rule.
func Opt(child ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindOptional}, ruleRefs: []ref{child}}
}

// Rep builds a Repeat(min,max) rule. Use Unbounded for max to mean ∞.
func Rep(child ref, min, max int) *buildNode {
	return &buildNode{rule: Rule{Kind: KindRepeat, Min: min, Max: max}, ruleRefs: []ref{child}}
}

// SepRep builds a SeparatedRepeat rule.
func SepRep(child, sep ref, min, max int, allowTrailing, includeSep bool) *buildNode {
	return &buildNode{
		rule: Rule{
			Kind: KindSeparatedRepeat, Min: min, Max: max,
			AllowTrailingSeparator: allowTrailing, IncludeSeparatorsInResult: includeSep,
		},
		ruleRefs: []ref{child},
		sep:      sep,
	}
}

// Lookahead builds a Lookahead rule.
func Lookahead(child ref, positive bool) *buildNode {
	return &buildNode{rule: Rule{Kind: KindLookahead, Positive: positive}, ruleRefs: []ref{child}}
}

// IfRule builds an If rule, dispatching on predicate(parameter) != 0.
func IfRule(predicate ParameterPredicate, then, els ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindIf, Predicate: predicate}, then: then, els: els}
}

// SwitchRule builds a Switch rule; selector returns the chosen branch index
// or -1 to fall through to def (which may itself be the zero ref, meaning
// "no default", handled by the interpreter as failure).
func SwitchRule(selector ParameterPredicate, branches []ref, def ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindSwitch, Selector: selector}, branches: branches, def: def}
}

// CustomRule builds a Custom rule invoking fn with the given ordered
// children already parsed by the time fn runs... actually per spec §4.2,
// Custom rules receive already-parsed children: children are parsed first
// in sequence order by the interpreter and handed to fn.
func CustomRule(fn CustomRuleFunc, children ...ref) *buildNode {
	return &buildNode{rule: Rule{Kind: KindCustom, CustomFunc: fn}, ruleRefs: children}
}

// WithSettings attaches local settings to a buildable.
func (n *buildNode) WithSettings(s Settings) *buildNode {
	if n.isToken {
		n.token.Settings = s
	} else {
		n.rule.Settings = s
	}
	return n
}

// WithRecovery attaches an error-recovery strategy (rules only).
func (n *buildNode) WithRecovery(rs *RecoveryStrategy) *buildNode {
	n.rule.Recovery = rs
	return n
}

// WithValueFactory attaches a rule value factory.
func (n *buildNode) WithValueFactory(f RuleValueFactory) *buildNode {
	n.rule.ValueFactory = f
	return n
}

// WithPassage attaches a passage function used to combine Sequence/Repeat/
// SeparatedRepeat child intermediate values (spec §4.6) when no explicit
// ValueFactory is given.
func (n *buildNode) WithPassage(f PassageFunc) *buildNode {
	if n.isToken {
		n.token.Passage = f
	} else {
		n.rule.Passage = f
	}
	return n
}
