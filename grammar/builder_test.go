package grammar_test

import (
	"strings"
	"testing"

	"github.com/RomeCore/rcparsing-go/grammar"
)

// litGrammar returns a Builder with a single token "lit" (literal "x") and
// a rule "Lit" wrapping it, ready for tests to extend with their own
// top-level rule under name "Main".
func litGrammar() *grammar.Builder {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("lit", grammar.Literal("x", true))
	b.DefineRule("Lit", grammar.TokenRule(grammar.Ref("lit")))
	return b
}

func TestBuildSimpleGrammarSucceeds(t *testing.T) {
	b := litGrammar()
	b.DefineToken("tb", grammar.Literal("y", true))
	b.DefineRule("B", grammar.TokenRule(grammar.Ref("tb")))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Lit"), grammar.Ref("B")))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	mainID, ok := p.RuleByName("Main")
	if !ok {
		t.Fatal("Main should be resolvable by name")
	}
	if p.MainRule != mainID {
		t.Fatalf("Parser.MainRule = %d, want %d", p.MainRule, mainID)
	}
	r := p.Rule(mainID)
	if r.Kind != grammar.KindSequence || len(r.Children) != 2 {
		t.Fatalf("Main should be a 2-child Sequence, got %+v", r)
	}
}

func TestUnknownReferenceFails(t *testing.T) {
	b := litGrammar()
	b.DefineRule("Main", grammar.Seq(grammar.Ref("doesNotExist")))
	_, err := b.Build("Main")
	if err == nil {
		t.Fatal("Build should fail on unknown reference")
	}
	var be *grammar.BuildError
	if !asBuildError(err, &be) {
		t.Fatalf("error should be a *BuildError, got %T", err)
	}
	if !strings.Contains(be.Error(), "unknown") {
		t.Fatalf("error message should mention the unknown reference, got %q", be.Error())
	}
}

func TestUnknownMainRuleFails(t *testing.T) {
	b := litGrammar()
	_, err := b.Build("NoSuchMain")
	if err == nil {
		t.Fatal("Build should fail when the main rule name is unregistered")
	}
}

func TestNameCycleFails(t *testing.T) {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineRule("A", grammar.AliasOf("B"))
	b.DefineRule("B", grammar.AliasOf("A"))
	_, err := b.Build("A")
	if err == nil {
		t.Fatal("Build should fail on a name cycle A -> B -> A")
	}
	if !strings.Contains(err.Error(), "name cycle") {
		t.Fatalf("error should report a name cycle, got %q", err.Error())
	}
}

func TestTriviallyLeftRecursiveRuleFails(t *testing.T) {
	b := litGrammar()
	b.DefineRule("Expr", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("Expr"), grammar.Ref("Lit")))
	_, err := b.Build("Expr")
	if err == nil {
		t.Fatal("Build should reject a trivially left-recursive Choice(Expr, Lit)")
	}
	if !strings.Contains(err.Error(), "left-recursive") {
		t.Fatalf("error should mention left recursion, got %q", err.Error())
	}
}

func TestRightRecursionIsAccepted(t *testing.T) {
	// Expr := Seq(Lit, Opt(Expr)) recurses only through a non-mandatory-
	// first position (after Lit has consumed input), so it must be allowed.
	b := litGrammar()
	b.DefineRule("Expr", grammar.Seq(grammar.Ref("Lit"), grammar.Ref("TailOpt")))
	b.DefineRule("TailOpt", grammar.Opt(grammar.Ref("Expr")))
	_, err := b.Build("Expr")
	if err != nil {
		t.Fatalf("right recursion through a non-nullable first child should build cleanly, got %v", err)
	}
}

func TestInvalidRepeatRangeFails(t *testing.T) {
	b := litGrammar()
	b.DefineRule("Bad", grammar.Rep(grammar.Ref("Lit"), 3, 1))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Bad")))
	_, err := b.Build("Main")
	if err == nil {
		t.Fatal("Build should reject Repeat with max < min")
	}
	if !strings.Contains(err.Error(), "invalid range") {
		t.Fatalf("error should mention invalid range, got %q", err.Error())
	}
}

func TestEmptyChoiceFails(t *testing.T) {
	b := litGrammar()
	b.DefineRule("Main", grammar.ChoiceRule(grammar.ChoiceFirst))
	_, err := b.Build("Main")
	if err == nil {
		t.Fatal("Build should reject a Choice rule with zero alternatives")
	}
	if !strings.Contains(err.Error(), "empty Choice") {
		t.Fatalf("error should mention empty Choice, got %q", err.Error())
	}
}

func TestDedupCollapsesStructurallyEqualRules(t *testing.T) {
	// RuleA and RuleB both wrap the *same already-resolved* Lit rule id, so
	// their child-id lists are identical without needing a second dedup
	// pass: this is the single-pass case spec §4.1 step 3 guarantees.
	b := litGrammar()
	b.DefineRule("RuleA", grammar.Seq(grammar.Ref("Lit")))
	b.DefineRule("RuleB", grammar.Seq(grammar.Ref("Lit")))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("RuleA"), grammar.Ref("RuleB")))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	idA, _ := p.RuleByName("RuleA")
	idB, _ := p.RuleByName("RuleB")
	if idA != idB {
		t.Fatalf("structurally-equal rules should dedup to one id, got %d and %d", idA, idB)
	}
}

func TestDedupCollapsesStructurallyEqualTokens(t *testing.T) {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("ta", grammar.Literal("z", true))
	b.DefineToken("tb", grammar.Literal("z", true)) // structurally identical to ta
	b.DefineRule("RA", grammar.TokenRule(grammar.Ref("ta")))
	b.DefineRule("RB", grammar.TokenRule(grammar.Ref("tb")))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("RA"), grammar.Ref("RB")))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	tidA, _ := p.TokenByName("ta")
	tidB, _ := p.TokenByName("tb")
	if tidA != tidB {
		t.Fatalf("structurally-equal leaf tokens should dedup to one id, got %d and %d", tidA, tidB)
	}
}

func TestAliasOrderIsInsertionOrderForSharedDefinition(t *testing.T) {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("lit", grammar.Literal("x", true))
	shared := grammar.TokenRule(grammar.Ref("lit"))
	// Register the very same buildable under three names, in this order.
	b.DefineRule("Third", shared)
	b.DefineRule("First", shared)
	b.DefineRule("Second", shared)
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Third")))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	id, ok := p.RuleByName("Third")
	if !ok {
		t.Fatal("Third should resolve")
	}
	aliases := p.Rule(id).Aliases
	want := []string{"Third", "First", "Second"}
	if len(aliases) != len(want) {
		t.Fatalf("Aliases = %v, want %v", aliases, want)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Fatalf("Aliases = %v, want %v", aliases, want)
		}
	}
}

func TestMainRuleForwardReference(t *testing.T) {
	// The builder must allow a named rule to reference another named rule
	// declared later in program order (forward reference, spec §4.1 step 1).
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("lit", grammar.Literal("x", true))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Later")))
	b.DefineRule("Later", grammar.TokenRule(grammar.Ref("lit")))

	_, err := b.Build("Main")
	if err != nil {
		t.Fatalf("forward reference should build cleanly, got %v", err)
	}
}

func asBuildError(err error, out **grammar.BuildError) bool {
	be, ok := err.(*grammar.BuildError)
	if ok {
		*out = be
	}
	return ok
}
