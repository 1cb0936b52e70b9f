package grammar

import (
	"fmt"
	"reflect"

	"github.com/cnf/structhash"
)

// funcIdentity renders a stable-enough identity for a function value so it
// can take part in a structural hash (spec §4.1 step 3: "predicate
// identity"). Go funcs are not comparable except against nil, so pointer
// identity is the practical stand-in used here.
func funcIdentity(fn interface{}) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%#x", v.Pointer())
}

// ruleHashKey computes a structural-equality key for dedup: kind,
// operator-specific fields, and the ordered ids of resolved children (spec
// §4.1 step 3). Settings, Recovery and ValueFactory deliberately do not
// participate — the spec defines dedup purely over shape, not over
// per-rule behavioural configuration attached to that shape.
func ruleHashKey(r Rule, childIDs ...interface{}) string {
	shape := struct {
		Kind       RuleKind
		Token      TokenID
		Children   []interface{}
		ChoiceMode ChoiceMode
		Min, Max   int
		AllowTrail bool
		IncludeSep bool
		Positive   bool
		Predicate  string
		Selector   string
		CustomFunc string
	}{
		Kind: r.Kind, Token: r.Token, Children: childIDs, ChoiceMode: r.ChoiceMode,
		Min: r.Min, Max: r.Max, AllowTrail: r.AllowTrailingSeparator, IncludeSep: r.IncludeSeparatorsInResult,
		Positive: r.Positive, Predicate: funcIdentity(r.Predicate), Selector: funcIdentity(r.Selector),
		CustomFunc: funcIdentity(r.CustomFunc),
	}
	h, err := structhash.Hash(shape, 1)
	if err != nil {
		panic(err) // unreachable: shape contains only hashable kinds
	}
	return h
}

func ruleChildIDs(r Rule) []interface{} {
	var ids []interface{}
	switch r.Kind {
	case KindTokenRule:
		ids = []interface{}{int(r.Token)}
	case KindSequence, KindCustom:
		for _, c := range r.Children {
			ids = append(ids, int(c))
		}
	case KindChoice:
		for _, c := range r.Choices {
			ids = append(ids, int(c))
		}
	case KindOptional, KindLookahead:
		ids = []interface{}{int(r.Child)}
	case KindRepeat:
		ids = []interface{}{int(r.RepeatChild)}
	case KindSeparatedRepeat:
		ids = []interface{}{int(r.RepeatChild), int(r.Separator)}
	case KindIf:
		ids = []interface{}{int(r.Then), int(r.Else)}
	case KindSwitch:
		for _, c := range r.Branches {
			ids = append(ids, int(c))
		}
		ids = append(ids, int(r.Default))
	}
	return ids
}

func tokenChildIDs(t TokenPattern) []interface{} {
	var ids []interface{}
	switch t.Kind {
	case TTextUntil:
		ids = []interface{}{int(t.Stop)}
	case TSequence, TCustom, TBetween, TFirst, TSecond:
		for _, c := range t.Children {
			ids = append(ids, int(c))
		}
	case TChoice:
		for _, c := range t.Choices {
			ids = append(ids, int(c))
		}
	case TOptional, TLookahead, TCaptureText, TSkipWhitespaces, TFailIf, TMap, TMapSpan:
		ids = []interface{}{int(t.Child)}
	case TRepeat:
		ids = []interface{}{int(t.RepeatChild)}
	case TSeparatedRepeat:
		ids = []interface{}{int(t.RepeatChild), int(t.Separator)}
	case TIf:
		ids = []interface{}{int(t.Then), int(t.Else)}
	case TSwitch:
		for _, c := range t.Branches {
			ids = append(ids, int(c))
		}
		ids = append(ids, int(t.Default))
	}
	return ids
}

func tokenHashKey(t TokenPattern, childIDs ...interface{}) string {
	shape := struct {
		Kind          TokenKind
		Literal       string
		Char          rune
		Alternatives  []string
		CaseSensitive bool
		RegexPattern  string
		NumberFlags   NumberFlags
		NumericKind   NumericKind
		AllowEmpty    bool
		ConsumeStop   bool
		FailOnEOF     bool
		BarrierAlias  string
		EscapeChar    rune
		Children      []interface{}
		ChoiceMode    ChoiceMode
		Min, Max      int
		AllowTrail    bool
		IncludeSep    bool
		TrimStart     bool
		TrimEnd       bool
		Positive      bool
		ReturnValue   string
		FailMessage   string
		Predicate     string
		Selector      string
		MapFunc       string
		MapSpanFunc   string
		FailPredicate string
		CustomFunc    string
		CharPredicate string
	}{
		Kind: t.Kind, Literal: t.Literal, Char: t.Char, Alternatives: t.Alternatives,
		CaseSensitive: t.CaseSensitive, NumberFlags: t.NumberFlags, NumericKind: t.NumericKind,
		AllowEmpty: t.AllowEmpty, ConsumeStop: t.ConsumeStop, FailOnEOF: t.FailOnEOF,
		BarrierAlias: t.BarrierAlias, EscapeChar: t.EscapeChar, Children: childIDs,
		ChoiceMode: t.ChoiceMode, Min: t.Min, Max: t.Max, AllowTrail: t.AllowTrailingSeparator,
		IncludeSep: t.IncludeSeparatorsInResult, TrimStart: t.TrimStart, TrimEnd: t.TrimEnd,
		Positive: t.Positive, ReturnValue: t.ReturnValue.String(), FailMessage: t.FailMessage,
		Predicate: funcIdentity(t.Predicate), Selector: funcIdentity(t.Selector),
		MapFunc: funcIdentity(t.MapFunc), MapSpanFunc: funcIdentity(t.MapSpanFunc),
		FailPredicate: funcIdentity(t.FailPredicate), CustomFunc: funcIdentity(t.CustomFunc),
		CharPredicate: funcIdentity(t.CharPredicate),
	}
	if t.RegexPattern != nil {
		shape.RegexPattern = t.RegexPattern.String()
	}
	h, err := structhash.Hash(shape, 1)
	if err != nil {
		panic(err)
	}
	return h
}

// dedupRules computes a canonical-id remap, iterating to a fixpoint so that
// nodes whose children were merged on an earlier round can themselves merge
// on a later round (spec §4.1 step 3).
func (st *buildState) dedupRules() (map[RuleID]RuleID, error) {
	remap := make(map[RuleID]RuleID, len(st.rules))
	for i := range st.rules {
		remap[RuleID(i)] = RuleID(i)
	}
	for pass := 0; pass < len(st.rules)+2; pass++ {
		hashOf := make(map[string]RuleID)
		changed := false
		for i := range st.rules {
			id := RuleID(i)
			canon := remapFinal(remap, id)
			if canon != id {
				continue // already merged away this round
			}
			ids := ruleChildIDs(st.rules[i])
			for j, v := range ids {
				ids[j] = int(remapFinal(remap, RuleID(v.(int))))
			}
			h := ruleHashKey(st.rules[i], ids...)
			if existing, ok := hashOf[h]; ok {
				remap[id] = existing
				changed = true
			} else {
				hashOf[h] = id
			}
		}
		if !changed {
			break
		}
	}
	return remap, nil
}

func (st *buildState) dedupTokens() (map[TokenID]TokenID, error) {
	remap := make(map[TokenID]TokenID, len(st.tokens))
	for i := range st.tokens {
		remap[TokenID(i)] = TokenID(i)
	}
	for pass := 0; pass < len(st.tokens)+2; pass++ {
		hashOf := make(map[string]TokenID)
		changed := false
		for i := range st.tokens {
			id := TokenID(i)
			canon := remapFinalTok(remap, id)
			if canon != id {
				continue
			}
			ids := tokenChildIDs(st.tokens[i])
			for j, v := range ids {
				ids[j] = int(remapFinalTok(remap, TokenID(v.(int))))
			}
			h := tokenHashKey(st.tokens[i], ids...)
			if existing, ok := hashOf[h]; ok {
				remap[id] = existing
				changed = true
			} else {
				hashOf[h] = id
			}
		}
		if !changed {
			break
		}
	}
	return remap, nil
}

// inlineSingleChildRules extends remap so every unnamed Sequence rule with
// exactly one child and no per-rule Settings/Recovery override canonicalizes
// to that child (spec §6 use_inlining): such a wrapper parses identically to
// its child, so collapsing it drops a redundant layer from both the parse
// tree and the interpreter's call stack. Named rules are left alone so they
// stay addressable under their own id.
func (st *buildState) inlineSingleChildRules(remap map[RuleID]RuleID) {
	for pass := 0; pass < len(st.rules)+2; pass++ {
		changed := false
		for i := range st.rules {
			id := RuleID(i)
			if remapFinal(remap, id) != id {
				continue
			}
			r := st.rules[i]
			if r.Kind != KindSequence || len(r.Children) != 1 {
				continue
			}
			if len(st.ruleAliases[id]) > 0 {
				continue
			}
			if r.Recovery != nil || r.Settings != (Settings{}) {
				continue
			}
			child := remapFinal(remap, r.Children[0])
			if child == id {
				continue
			}
			remap[id] = child
			changed = true
		}
		if !changed {
			break
		}
	}
}

func remapFinal(remap map[RuleID]RuleID, id RuleID) RuleID {
	if id == NoRule {
		return NoRule
	}
	for {
		next, ok := remap[id]
		if !ok || next == id {
			return id
		}
		id = next
	}
}

func remapFinalTok(remap map[TokenID]TokenID, id TokenID) TokenID {
	if id == NoToken {
		return NoToken
	}
	for {
		next, ok := remap[id]
		if !ok || next == id {
			return id
		}
		id = next
	}
}

// applyRemap rewrites every child-id reference to its canonical id and
// compacts both arrays to dense ids (spec invariant: "IDs are dense,
// stable"), updating aliases and barrier installs accordingly.
func (st *buildState) applyRemap(ruleRemap map[RuleID]RuleID, tokenRemap map[TokenID]TokenID) {
	// compact rules
	newRuleID := make(map[RuleID]RuleID)
	var compactedRules []Rule
	for i := range st.rules {
		id := RuleID(i)
		canon := remapFinal(ruleRemap, id)
		if canon != id {
			continue
		}
		newRuleID[id] = RuleID(len(compactedRules))
		compactedRules = append(compactedRules, st.rules[i])
	}
	newTokenID := make(map[TokenID]TokenID)
	var compactedTokens []TokenPattern
	for i := range st.tokens {
		id := TokenID(i)
		canon := remapFinalTok(tokenRemap, id)
		if canon != id {
			continue
		}
		newTokenID[id] = TokenID(len(compactedTokens))
		compactedTokens = append(compactedTokens, st.tokens[i])
	}

	rr := func(id RuleID) RuleID {
		if id == NoRule {
			return NoRule
		}
		return newRuleID[remapFinal(ruleRemap, id)]
	}
	tr := func(id TokenID) TokenID {
		if id == NoToken {
			return NoToken
		}
		return newTokenID[remapFinalTok(tokenRemap, id)]
	}

	for i := range compactedRules {
		r := &compactedRules[i]
		r.ID = RuleID(i)
		switch r.Kind {
		case KindTokenRule:
			r.Token = tr(r.Token)
		case KindSequence, KindCustom:
			for j := range r.Children {
				r.Children[j] = rr(r.Children[j])
			}
		case KindChoice:
			for j := range r.Choices {
				r.Choices[j] = rr(r.Choices[j])
			}
		case KindOptional, KindLookahead:
			r.Child = rr(r.Child)
		case KindRepeat:
			r.RepeatChild = rr(r.RepeatChild)
		case KindSeparatedRepeat:
			r.RepeatChild = rr(r.RepeatChild)
			r.Separator = rr(r.Separator)
		case KindIf:
			r.Then = rr(r.Then)
			r.Else = rr(r.Else)
		case KindSwitch:
			for j := range r.Branches {
				r.Branches[j] = rr(r.Branches[j])
			}
			r.Default = rr(r.Default)
		}
		if r.Recovery != nil {
			rec := *r.Recovery
			rec.Stop = rr(rec.Stop)
			rec.Anchor = rr(rec.Anchor)
			r.Recovery = &rec
		}
	}

	for i := range compactedTokens {
		t := &compactedTokens[i]
		t.ID = TokenID(i)
		switch t.Kind {
		case TTextUntil:
			t.Stop = tr(t.Stop)
		case TSequence, TCustom, TBetween, TFirst, TSecond:
			for j := range t.Children {
				t.Children[j] = tr(t.Children[j])
			}
		case TChoice:
			for j := range t.Choices {
				t.Choices[j] = tr(t.Choices[j])
			}
		case TOptional, TLookahead, TCaptureText, TSkipWhitespaces, TFailIf, TMap, TMapSpan:
			t.Child = tr(t.Child)
		case TRepeat:
			t.RepeatChild = tr(t.RepeatChild)
		case TSeparatedRepeat:
			t.RepeatChild = tr(t.RepeatChild)
			t.Separator = tr(t.Separator)
		case TIf:
			t.Then = tr(t.Then)
			t.Else = tr(t.Else)
		case TSwitch:
			for j := range t.Branches {
				t.Branches[j] = tr(t.Branches[j])
			}
			t.Default = tr(t.Default)
		}
	}

	// remap aliases (insertion order preserved per name, spec step 4)
	newRuleAliases := make(map[RuleID][]string)
	for id, names := range st.ruleAliases {
		nid := newRuleID[remapFinal(ruleRemap, id)]
		newRuleAliases[nid] = append(newRuleAliases[nid], names...)
	}
	newTokenAliases := make(map[TokenID][]string)
	for id, names := range st.tokenAliases {
		nid := newTokenID[remapFinalTok(tokenRemap, id)]
		newTokenAliases[nid] = append(newTokenAliases[nid], names...)
	}
	for i := range compactedRules {
		compactedRules[i].Aliases = newRuleAliases[RuleID(i)]
	}
	for i := range compactedTokens {
		compactedTokens[i].Aliases = newTokenAliases[TokenID(i)]
	}

	st.rules = compactedRules
	st.tokens = compactedTokens
	st.ruleAliases = newRuleAliases
	st.tokenAliases = newTokenAliases

	// rewrite ruleIDOf/tokenIDOf so the mainRuleName lookup after Build
	// still finds the right (now-compacted) id.
	for n, id := range st.ruleIDOf {
		st.ruleIDOf[n] = newRuleID[remapFinal(ruleRemap, id)]
	}
	for n, id := range st.tokenIDOf {
		st.tokenIDOf[n] = newTokenID[remapFinalTok(tokenRemap, id)]
	}
}
