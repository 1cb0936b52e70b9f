package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'rcparsing.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("rcparsing.grammar")
}

// BuildError is returned by Builder.Build for any of the failure conditions
// listed in spec §4.1: unknown reference, name cycle, empty buildable,
// trivially left-recursive rule, invalid min/max.
type BuildError struct {
	Message string
	Path    []string // cycle/reference path, when applicable
}

func (e *BuildError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	s := e.Message + ": "
	for i, p := range e.Path {
		if i > 0 {
			s += " -> "
		}
		s += p
	}
	return s
}

// Builder accumulates named rule/token definitions and turns them into an
// immutable Parser (spec §4.1).
type Builder struct {
	cfg Config

	ruleDefs   map[string]*buildNode
	ruleOrder  []string
	tokenDefs  map[string]*buildNode
	tokenOrder []string

	barrierToks []BarrierTokenizer
	barrierGate func(interface{}) bool
}

// NewBuilder creates an empty Builder with the given parser-wide defaults.
func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg:       cfg,
		ruleDefs:  make(map[string]*buildNode),
		tokenDefs: make(map[string]*buildNode),
	}
}

// DefineRule registers a named rule root. The same *buildNode may be
// registered under more than one name to declare it an alias (spec §4.1
// step 4).
func (b *Builder) DefineRule(name string, n *buildNode) *Builder {
	if _, exists := b.ruleDefs[name]; !exists {
		b.ruleOrder = append(b.ruleOrder, name)
	}
	b.ruleDefs[name] = n
	return b
}

// DefineToken registers a named token root.
func (b *Builder) DefineToken(name string, n *buildNode) *Builder {
	if _, exists := b.tokenDefs[name]; !exists {
		b.tokenOrder = append(b.tokenOrder, name)
	}
	b.tokenDefs[name] = n
	return b
}

// AddBarrierTokenizer registers a barrier tokenizer whose Barrier(alias)
// leaves become reachable from the built Parser (spec §4.1 step 5).
func (b *Builder) AddBarrierTokenizer(bt BarrierTokenizer) *Builder {
	b.barrierToks = append(b.barrierToks, bt)
	return b
}

// WithBarrierGate installs the optional predicate gating whether barrier
// pre-scanning runs for a given parser_parameter (spec §3 "init-flag
// predicate"; see DESIGN.md for the reading adopted here).
func (b *Builder) WithBarrierGate(gate func(interface{}) bool) *Builder {
	b.barrierGate = gate
	return b
}

// buildState carries the mutable resolution state threaded through Build.
type buildState struct {
	b *Builder

	ruleIDOf  map[*buildNode]RuleID
	onStack   map[*buildNode]bool
	rules     []Rule

	tokenIDOf map[*buildNode]TokenID
	tokOnStack map[*buildNode]bool
	tokens    []TokenPattern

	ruleAliases  map[RuleID][]string
	tokenAliases map[TokenID][]string
}

// Build resolves, deduplicates and validates the registered definitions,
// producing an immutable Parser whose main rule is mainRuleName (spec
// §4.1).
func (b *Builder) Build(mainRuleName string) (*Parser, error) {
	st := &buildState{
		b:            b,
		ruleIDOf:     make(map[*buildNode]RuleID),
		onStack:      make(map[*buildNode]bool),
		tokenIDOf:    make(map[*buildNode]TokenID),
		tokOnStack:   make(map[*buildNode]bool),
		ruleAliases:  make(map[RuleID][]string),
		tokenAliases: make(map[TokenID][]string),
	}

	// Step 1+2: resolve every named root in definition order by a recursive
	// depth-first walk, resolving references and assigning provisional ids.
	// The arraylist worklist records the starting set of named roots.
	worklist := arraylist.New()
	for _, name := range b.ruleOrder {
		worklist.Add(name)
	}
	_ = worklist // not consumed: traversal happens in the recursive resolve
	// calls below.
	if _, ok := b.ruleDefs[mainRuleName]; !ok {
		return nil, &BuildError{Message: fmt.Sprintf("unknown main rule %q", mainRuleName)}
	}

	for _, name := range b.ruleOrder {
		id, err := st.resolveRule(b.ruleDefs[name], []string{name})
		if err != nil {
			return nil, err
		}
		st.ruleAliases[id] = append(st.ruleAliases[id], name)
	}
	for _, name := range b.tokenOrder {
		id, err := st.resolveToken(b.tokenDefs[name], []string{name})
		if err != nil {
			return nil, err
		}
		st.tokenAliases[id] = append(st.tokenAliases[id], name)
	}

	// Step 3+4: structural dedup via content hashing.
	ruleRemap, err := st.dedupRules()
	if err != nil {
		return nil, err
	}
	if b.cfg.UseInlining {
		st.inlineSingleChildRules(ruleRemap)
	}
	tokenRemap, err := st.dedupTokens()
	if err != nil {
		return nil, err
	}
	st.applyRemap(ruleRemap, tokenRemap)

	// Step 6: acyclicity check (trivial left recursion).
	if err := checkLeftRecursion(st.rules); err != nil {
		return nil, err
	}

	// Step 7: first-character sets, fixpoint over the (possibly cyclic)
	// rule/token graph.
	computeFirstCharSets(st.rules, st.tokens)

	// Step 5: install barrier leaves for every alias any tokenizer declares.
	for _, bt := range b.barrierToks {
		for _, alias := range bt.Aliases() {
			if _, ok := findTokenAlias(st.tokens, alias); !ok {
				st.tokens = append(st.tokens, TokenPattern{
					ID: TokenID(len(st.tokens)), Kind: TBarrier, BarrierAlias: alias,
					Aliases: []string{alias},
				})
			}
		}
	}

	mainID := st.ruleIDOf[b.ruleDefs[mainRuleName]]
	mainID = remapFinal(ruleRemap, mainID)

	p := &Parser{
		Rules:       st.rules,
		Tokens:      st.tokens,
		Barriers:    b.barrierToks,
		Defaults:    b.cfg,
		MainRule:    mainID,
		BarrierGate: b.barrierGate,
		ruleByName:  make(map[string]RuleID),
		tokenByName: make(map[string]TokenID),
	}
	for id, aliases := range st.ruleAliases {
		for _, a := range aliases {
			p.ruleByName[a] = id
		}
	}
	for id, aliases := range st.tokenAliases {
		for _, a := range aliases {
			p.tokenByName[a] = id
		}
	}
	tracer().Debugf("built parser: %d rules, %d tokens, main=%d", len(p.Rules), len(p.Tokens), p.MainRule)
	return p, nil
}

func findTokenAlias(tokens []TokenPattern, alias string) (TokenID, bool) {
	for _, t := range tokens {
		for _, a := range t.Aliases {
			if a == alias {
				return t.ID, true
			}
		}
	}
	return NoToken, false
}

// --- alias / reference resolution ------------------------------------------

func (st *buildState) resolveRule(n *buildNode, path []string) (RuleID, error) {
	if n == nil {
		return NoRule, &BuildError{Message: "empty rule buildable", Path: path}
	}
	if n.isAlias {
		for _, seen := range path {
			if seen == n.aliasTarget.name {
				return NoRule, &BuildError{Message: "name cycle", Path: append(path, n.aliasTarget.name)}
			}
		}
		target, ok := st.b.ruleDefs[n.aliasTarget.name]
		if !ok {
			return NoRule, &BuildError{Message: fmt.Sprintf("unknown rule reference %q", n.aliasTarget.name), Path: path}
		}
		return st.resolveRule(target, append(path, n.aliasTarget.name))
	}
	if id, ok := st.ruleIDOf[n]; ok {
		return id, nil
	}
	if st.onStack[n] {
		return NoRule, &BuildError{Message: "name cycle", Path: path}
	}
	st.onStack[n] = true
	defer delete(st.onStack, n)

	id := RuleID(len(st.rules))
	st.ruleIDOf[n] = id
	st.rules = append(st.rules, Rule{ID: id}) // placeholder, filled below

	r := n.rule
	r.ID = id

	resolveRuleRef := func(rf ref, sub string) (RuleID, error) {
		if rf.inline != nil {
			return st.resolveRule(rf.inline, append(path, sub))
		}
		if rf.name == "" {
			return NoRule, nil
		}
		target, ok := st.b.ruleDefs[rf.name]
		if !ok {
			return NoRule, &BuildError{Message: fmt.Sprintf("unknown rule reference %q", rf.name), Path: append(path, sub)}
		}
		return st.resolveRule(target, append(path, rf.name))
	}

	var err error
	switch r.Kind {
	case KindTokenRule:
		tid, terr := st.resolveTokenRef(n.tokenRefs[0], path)
		if terr != nil {
			return NoRule, terr
		}
		r.Token = tid
	case KindSequence, KindCustom:
		r.Children = make([]RuleID, len(n.ruleRefs))
		for i, rf := range n.ruleRefs {
			if r.Children[i], err = resolveRuleRef(rf, fmt.Sprintf("child[%d]", i)); err != nil {
				return NoRule, err
			}
		}
	case KindChoice:
		r.Choices = make([]RuleID, len(n.ruleRefs))
		for i, rf := range n.ruleRefs {
			if r.Choices[i], err = resolveRuleRef(rf, fmt.Sprintf("alt[%d]", i)); err != nil {
				return NoRule, err
			}
		}
		if len(r.Choices) == 0 {
			return NoRule, &BuildError{Message: "empty Choice rule", Path: path}
		}
	case KindOptional, KindLookahead:
		if r.Child, err = resolveRuleRef(n.ruleRefs[0], "child"); err != nil {
			return NoRule, err
		}
	case KindRepeat:
		if err := validateMinMax(r.Min, r.Max); err != nil {
			return NoRule, &BuildError{Message: err.Error(), Path: path}
		}
		if r.RepeatChild, err = resolveRuleRef(n.ruleRefs[0], "child"); err != nil {
			return NoRule, err
		}
	case KindSeparatedRepeat:
		if err := validateMinMax(r.Min, r.Max); err != nil {
			return NoRule, &BuildError{Message: err.Error(), Path: path}
		}
		if r.RepeatChild, err = resolveRuleRef(n.ruleRefs[0], "child"); err != nil {
			return NoRule, err
		}
		if r.Separator, err = resolveRuleRef(n.sep, "separator"); err != nil {
			return NoRule, err
		}
	case KindIf:
		if r.Then, err = resolveRuleRef(n.then, "then"); err != nil {
			return NoRule, err
		}
		if r.Else, err = resolveRuleRef(n.els, "else"); err != nil {
			return NoRule, err
		}
	case KindSwitch:
		r.Branches = make([]RuleID, len(n.branches))
		for i, rf := range n.branches {
			if r.Branches[i], err = resolveRuleRef(rf, fmt.Sprintf("branch[%d]", i)); err != nil {
				return NoRule, err
			}
		}
		if n.def.name != "" || n.def.inline != nil {
			if r.Default, err = resolveRuleRef(n.def, "default"); err != nil {
				return NoRule, err
			}
		} else {
			r.Default = NoRule
		}
	}
	st.rules[id] = r
	return id, nil
}

func (st *buildState) resolveTokenRef(rf ref, path []string) (TokenID, error) {
	if rf.inline != nil {
		return st.resolveToken(rf.inline, path)
	}
	target, ok := st.b.tokenDefs[rf.name]
	if !ok {
		return NoToken, &BuildError{Message: fmt.Sprintf("unknown token reference %q", rf.name), Path: append(path, rf.name)}
	}
	return st.resolveToken(target, append(path, rf.name))
}

func (st *buildState) resolveToken(n *buildNode, path []string) (TokenID, error) {
	if n == nil {
		return NoToken, &BuildError{Message: "empty token buildable", Path: path}
	}
	if n.isAlias {
		for _, seen := range path {
			if seen == n.aliasTarget.name {
				return NoToken, &BuildError{Message: "name cycle", Path: append(path, n.aliasTarget.name)}
			}
		}
		target, ok := st.b.tokenDefs[n.aliasTarget.name]
		if !ok {
			return NoToken, &BuildError{Message: fmt.Sprintf("unknown token reference %q", n.aliasTarget.name), Path: path}
		}
		return st.resolveToken(target, append(path, n.aliasTarget.name))
	}
	if id, ok := st.tokenIDOf[n]; ok {
		return id, nil
	}
	if st.tokOnStack[n] {
		return NoToken, &BuildError{Message: "name cycle", Path: path}
	}
	st.tokOnStack[n] = true
	defer delete(st.tokOnStack, n)

	id := TokenID(len(st.tokens))
	st.tokenIDOf[n] = id
	st.tokens = append(st.tokens, TokenPattern{ID: id})

	t := n.token
	t.ID = id

	child := func(rf ref, sub string) (TokenID, error) {
		return st.resolveTokenRef(rf, append(path, sub))
	}

	var err error
	switch t.Kind {
	case TTextUntil:
		if t.Stop, err = child(n.tokenRefs[0], "stop"); err != nil {
			return NoToken, err
		}
	case TSequence, TCustom:
		t.Children = make([]TokenID, len(n.tokenRefs))
		for i, rf := range n.tokenRefs {
			if t.Children[i], err = child(rf, fmt.Sprintf("child[%d]", i)); err != nil {
				return NoToken, err
			}
		}
	case TBetween:
		t.Children = make([]TokenID, 3)
		for i, rf := range n.tokenRefs {
			if t.Children[i], err = child(rf, fmt.Sprintf("part[%d]", i)); err != nil {
				return NoToken, err
			}
		}
	case TFirst, TSecond:
		t.Children = make([]TokenID, 2)
		for i, rf := range n.tokenRefs {
			if t.Children[i], err = child(rf, fmt.Sprintf("part[%d]", i)); err != nil {
				return NoToken, err
			}
		}
	case TChoice:
		t.Choices = make([]TokenID, len(n.tokenRefs))
		for i, rf := range n.tokenRefs {
			if t.Choices[i], err = child(rf, fmt.Sprintf("alt[%d]", i)); err != nil {
				return NoToken, err
			}
		}
		if len(t.Choices) == 0 {
			return NoToken, &BuildError{Message: "empty Choice token", Path: path}
		}
	case TOptional, TLookahead, TCaptureText, TSkipWhitespaces, TFailIf:
		if t.Child, err = child(n.tokenRefs[0], "child"); err != nil {
			return NoToken, err
		}
	case TRepeat:
		if err := validateMinMax(t.Min, t.Max); err != nil {
			return NoToken, &BuildError{Message: err.Error(), Path: path}
		}
		if t.RepeatChild, err = child(n.tokenRefs[0], "child"); err != nil {
			return NoToken, err
		}
	case TSeparatedRepeat:
		if err := validateMinMax(t.Min, t.Max); err != nil {
			return NoToken, &BuildError{Message: err.Error(), Path: path}
		}
		if t.RepeatChild, err = child(n.tokenRefs[0], "child"); err != nil {
			return NoToken, err
		}
		if t.Separator, err = st.resolveTokenRef(n.sep, path); err != nil {
			return NoToken, err
		}
	case TIf:
		if t.Then, err = st.resolveTokenRef(n.then, path); err != nil {
			return NoToken, err
		}
		if t.Else, err = st.resolveTokenRef(n.els, path); err != nil {
			return NoToken, err
		}
	case TSwitch:
		t.Branches = make([]TokenID, len(n.branches))
		for i, rf := range n.branches {
			if t.Branches[i], err = child(rf, fmt.Sprintf("branch[%d]", i)); err != nil {
				return NoToken, err
			}
		}
		if n.def.name != "" || n.def.inline != nil {
			if t.Default, err = st.resolveTokenRef(n.def, path); err != nil {
				return NoToken, err
			}
		} else {
			t.Default = NoToken
		}
	}

	st.tokens[id] = t
	return id, nil
}

func validateMinMax(min, max int) error {
	if min < 0 {
		return fmt.Errorf("invalid range: min=%d must be >= 0", min)
	}
	if max != Unbounded && max < min {
		return fmt.Errorf("invalid range: max=%d < min=%d", max, min)
	}
	return nil
}
