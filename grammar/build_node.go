package grammar

// ref is a pending reference to a rule or token child within a buildNode,
// before the builder has resolved names and assigned canonical ids (spec
// §4.1 steps 1–2).
type ref struct {
	name   string     // non-empty: resolve against the alias map
	inline *buildNode // non-nil: anonymous buildable, recursed into directly
}

// Ref creates a named reference to a rule or token defined elsewhere (by
// DefineRule/DefineToken), possibly before that definition is seen — the
// builder's alias-resolution pass (spec §4.1 step 1) allows forward and
// mutually-recursive references.
func Ref(name string) ref { return ref{name: name} }

func inlineRef(n *buildNode) ref { return ref{inline: n} }

// AliasOf declares a named rule as a pure alias of another named rule,
// supporting the "A -> B -> A" style chains spec §4.1 step 1 describes.
func AliasOf(name string) *buildNode { return &buildNode{isAlias: true, aliasTarget: Ref(name)} }

// TokenAliasOf is AliasOf for tokens.
func TokenAliasOf(name string) *buildNode {
	return &buildNode{isToken: true, isAlias: true, aliasTarget: Ref(name)}
}

// buildNode is the pre-dedup representation of either a rule or a token
// buildable. Reference fields (children, separators, branches, ...) are
// held in refs/tokenRefs rather than directly as RuleID/TokenID until the
// builder resolves and deduplicates them.
type buildNode struct {
	isToken bool
	rule    Rule
	token   TokenPattern

	// isAlias marks a pure pass-through definition ("A := Ref(B)"); the
	// builder resolves through it without allocating an id of its own,
	// recording name as an alias of whatever B ultimately resolves to
	// (spec §4.1 step 1).
	isAlias     bool
	aliasTarget ref

	// ruleRefs / tokenRefs hold the ordered child references; which one is
	// populated and how its elements map onto rule/token fields depends on
	// Kind (see Builder.resolve).
	ruleRefs  []ref
	tokenRefs []ref
	sep       ref // SeparatedRepeat's separator, when applicable
	then      ref
	els       ref
	branches  []ref
	def       ref
	anchor    ref
	stop      ref
}
