package grammar

import "fmt"

// ruleMandatoryFirstEdges returns the ids of rule children that could be
// entered as the very first step of matching r, without first consuming any
// input (spec §4.1 step 6: "trivially left-recursive" detection only needs
// to follow these edges, never the later children of a non-nullable
// sequence).
func ruleMandatoryFirstEdges(rules []Rule, r Rule) []RuleID {
	switch r.Kind {
	case KindSequence:
		var out []RuleID
		for _, c := range r.Children {
			out = append(out, c)
			if c == NoRule || !rules[c].IsNullable() {
				break
			}
		}
		return out
	case KindChoice:
		return append([]RuleID(nil), r.Choices...)
	case KindOptional, KindLookahead:
		return []RuleID{r.Child}
	case KindRepeat, KindSeparatedRepeat:
		return []RuleID{r.RepeatChild}
	case KindIf:
		return []RuleID{r.Then, r.Else}
	case KindSwitch:
		out := append([]RuleID(nil), r.Branches...)
		return append(out, r.Default)
	default:
		return nil
	}
}

// checkLeftRecursion rejects rules that can recurse into themselves without
// consuming any input — spec §4.1 step 6's "reject trivially
// left-recursive" build failure. Genuine cycles that pass through a
// non-nullable sequence position (ordinary right recursion, e.g.
// `expr := term (op expr)?`) are legitimate and not flagged, since that edge
// is never mandatory-first.
func checkLeftRecursion(rules []Rule) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int8, len(rules))
	var path []RuleID

	var visit func(id RuleID) error
	visit = func(id RuleID) error {
		if id == NoRule {
			return nil
		}
		switch color[id] {
		case black:
			return nil
		case gray:
			cyclePath := make([]string, 0, len(path)+1)
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			for _, p := range path[start:] {
				cyclePath = append(cyclePath, ruleLabel(rules[p]))
			}
			cyclePath = append(cyclePath, ruleLabel(rules[id]))
			return &BuildError{Message: "trivially left-recursive rule", Path: cyclePath}
		}
		color[id] = gray
		path = append(path, id)
		for _, child := range ruleMandatoryFirstEdges(rules, rules[id]) {
			if err := visit(child); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for i := range rules {
		if color[i] == white {
			if err := visit(RuleID(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func ruleLabel(r Rule) string {
	if len(r.Aliases) > 0 {
		return r.Aliases[0]
	}
	return fmt.Sprintf("rule#%d", r.ID)
}

// computeFirstCharSets fills in FirstChars for every rule and token by
// fixpoint relaxation over the (possibly cyclic, via legitimate right
// recursion) resolved graph (spec §4.1 step 7). A nil CharSet ("any") is the
// safe default for anything not yet determined or structurally unknowable
// (Custom rules/tokens).
func computeFirstCharSets(rules []Rule, tokens []TokenPattern) {
	changed := true
	limit := len(rules) + len(tokens) + 2
	for pass := 0; changed && pass < limit; pass++ {
		changed = false
		for i := range tokens {
			next := firstOfTokenKind(tokens, tokens[i])
			if !sameCharSet(tokens[i].FirstChars, next) {
				tokens[i].FirstChars = next
				changed = true
			}
		}
		for i := range rules {
			next := firstOfRuleKind(rules, tokens, rules[i])
			if !sameCharSet(rules[i].FirstChars, next) {
				rules[i].FirstChars = next
				changed = true
			}
		}
	}
}

func sameCharSet(a, b *CharSet) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ar, br := a.Runes(), b.Runes()
	if len(ar) != len(br) {
		return false
	}
	for i := range ar {
		if ar[i] != br[i] {
			return false
		}
	}
	return true
}

func firstOfToken(tokens []TokenPattern, id TokenID) *CharSet {
	if id == NoToken {
		return NewCharSet()
	}
	return tokens[id].FirstChars
}

func firstOfRule(rules []Rule, id RuleID) *CharSet {
	if id == NoRule {
		return NewCharSet()
	}
	return rules[id].FirstChars
}

func firstOfTokenKind(tokens []TokenPattern, t TokenPattern) *CharSet {
	switch t.Kind {
	case TSequence:
		var parts []*CharSet
		for _, c := range t.Children {
			parts = append(parts, firstOfToken(tokens, c))
			if c == NoToken || !tokens[c].nullableHint() {
				break
			}
		}
		return Union(parts...)
	case TChoice:
		var parts []*CharSet
		for _, c := range t.Choices {
			parts = append(parts, firstOfToken(tokens, c))
		}
		return Union(parts...)
	case TBetween:
		if len(t.Children) == 0 {
			return t.FirstChars
		}
		return firstOfToken(tokens, t.Children[0])
	case TFirst, TSecond:
		if len(t.Children) == 0 {
			return t.FirstChars
		}
		return firstOfToken(tokens, t.Children[0])
	case TRepeat, TSeparatedRepeat:
		return firstOfToken(tokens, t.RepeatChild)
	case TOptional, TLookahead, TCaptureText, TSkipWhitespaces, TFailIf, TMap, TMapSpan:
		return firstOfToken(tokens, t.Child)
	case TIf:
		return Union(firstOfToken(tokens, t.Then), firstOfToken(tokens, t.Else))
	case TSwitch:
		var parts []*CharSet
		for _, c := range t.Branches {
			parts = append(parts, firstOfToken(tokens, c))
		}
		parts = append(parts, firstOfToken(tokens, t.Default))
		return Union(parts...)
	default:
		// Leaves (Literal, Regex, Identifier, ...) and TCustom keep whatever
		// FirstChars the constructor set (possibly nil, meaning unknown).
		return t.FirstChars
	}
}

func firstOfRuleKind(rules []Rule, tokens []TokenPattern, r Rule) *CharSet {
	switch r.Kind {
	case KindTokenRule:
		return firstOfToken(tokens, r.Token)
	case KindSequence:
		var parts []*CharSet
		for _, c := range r.Children {
			parts = append(parts, firstOfRule(rules, c))
			if c == NoRule || !rules[c].IsNullable() {
				break
			}
		}
		return Union(parts...)
	case KindChoice:
		var parts []*CharSet
		for _, c := range r.Choices {
			parts = append(parts, firstOfRule(rules, c))
		}
		return Union(parts...)
	case KindOptional, KindLookahead:
		return firstOfRule(rules, r.Child)
	case KindRepeat, KindSeparatedRepeat:
		return firstOfRule(rules, r.RepeatChild)
	case KindIf:
		return Union(firstOfRule(rules, r.Then), firstOfRule(rules, r.Else))
	case KindSwitch:
		var parts []*CharSet
		for _, c := range r.Branches {
			parts = append(parts, firstOfRule(rules, c))
		}
		parts = append(parts, firstOfRule(rules, r.Default))
		return Union(parts...)
	default: // KindCustom
		return nil
	}
}
