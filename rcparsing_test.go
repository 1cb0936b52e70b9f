package rcparsing_test

import (
	"strings"
	"testing"

	rcparsing "github.com/RomeCore/rcparsing-go"
	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

// numberGrammar returns a Builder with a "num" token (plain integer,
// no sign/fraction) and a "Num" rule wrapping it, for tests that just need
// a number primitive to build on.
func numberGrammar() *grammar.Builder {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("num", grammar.NumberToken(0, grammar.NumberInt))
	b.DefineRule("Num", grammar.TokenRule(grammar.Ref("num")))
	return b
}

func TestSumTwoNumbers(t *testing.T) {
	b := numberGrammar()
	b.DefineToken("plus", grammar.LiteralChar('+', true))
	b.DefineRule("Plus", grammar.TokenRule(grammar.Ref("plus")))

	sum := func(children []grammar.ParsedChild, text func() string) value.Value {
		a := children[0].Value.Raw().(int64)
		c := children[2].Value.Raw().(int64)
		return value.Of(a + c)
	}
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Num"), grammar.Ref("Plus"), grammar.Ref("Num")).WithValueFactory(sum))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := rcparsing.Parse(p, "12+34", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := res.Root.Value().Raw()
	if got != int64(46) {
		t.Fatalf("Value() = %v, want 46", got)
	}
	if res.Root.Text() != "12+34" {
		t.Fatalf("Text() = %q, want the full input", res.Root.Text())
	}
	// Num/Plus carry no ValueFactory of their own, so CollapseSingleChild
	// replaces each with its bare token leaf.
	children := res.Root.Children()
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	if !children[0].IsToken() || !children[2].IsToken() {
		t.Fatalf("Num children should have collapsed into token leaves")
	}
}

func TestParseFailureReportsExpectedToken(t *testing.T) {
	b := numberGrammar()
	p, err := b.Build("Num")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_, err = rcparsing.Parse(p, "x", nil)
	if err == nil {
		t.Fatal("Parse should fail on non-digit input")
	}
	if !strings.Contains(err.Error(), "expected num") {
		t.Fatalf("error message should mention the expected token, got %q", err.Error())
	}
}

func TestChoiceFirstRespectsDeclarationOrder(t *testing.T) {
	base := func() *grammar.Builder {
		b := grammar.NewBuilder(grammar.DefaultConfig())
		b.DefineToken("ta", grammar.Literal("a", true))
		b.DefineToken("tab", grammar.Literal("ab", true))
		b.DefineRule("RA", grammar.TokenRule(grammar.Ref("ta")))
		b.DefineRule("RAB", grammar.TokenRule(grammar.Ref("tab")))
		return b
	}
	build := func(shortFirst bool) *grammar.Parser {
		b := base()
		if shortFirst {
			b.DefineRule("Main", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("RA"), grammar.Ref("RAB")))
		} else {
			b.DefineRule("Main", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("RAB"), grammar.Ref("RA")))
		}
		p, err := b.Build("Main")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		return p
	}

	pShort := build(true)
	resShort, err := rcparsing.Parse(pShort, "ab", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if resShort.Root.Length() != 1 {
		t.Fatalf("declaring the shorter alternative first should match length 1, got %d", resShort.Root.Length())
	}

	pLong := build(false)
	resLong, err := rcparsing.Parse(pLong, "ab", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if resLong.Root.Length() != 2 {
		t.Fatalf("declaring the longer alternative first should match length 2, got %d", resLong.Root.Length())
	}
}

func TestLookaheadDoesNotConsumeInput(t *testing.T) {
	b := numberGrammar()
	b.DefineRule("Peek", grammar.Lookahead(grammar.Ref("Num"), true))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Peek"), grammar.Ref("Num")))
	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res, err := rcparsing.Parse(p, "123", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Root.Length() != 3 {
		t.Fatalf("Length() = %d, want 3 (lookahead must not consume)", res.Root.Length())
	}
}

func TestRepeatHonorsMinAndMax(t *testing.T) {
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("a", grammar.LiteralChar('a', true))
	b.DefineRule("A", grammar.TokenRule(grammar.Ref("a")))
	b.DefineRule("Main", grammar.Rep(grammar.Ref("A"), 2, 4))
	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := rcparsing.Parse(p, "aaaaaa", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Root.Length() != 4 {
		t.Fatalf("Length() = %d, want 4 (capped at max)", res.Root.Length())
	}

	_, err = rcparsing.Parse(p, "a", nil)
	if err == nil {
		t.Fatal("a single 'a' should fail the min=2 bound")
	}
}

func TestTryMatchTokenAndMatchesToken(t *testing.T) {
	b := numberGrammar()
	p, err := b.Build("Num")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	id, ok := p.TokenByName("num")
	if !ok {
		t.Fatal("num token should resolve by name")
	}

	parsed, ok := rcparsing.TryMatchToken(p, id, "42abc")
	if !ok {
		t.Fatal("TryMatchToken should match a leading number")
	}
	if parsed.Length != 2 {
		t.Fatalf("matched length = %d, want 2", parsed.Length)
	}

	if !rcparsing.MatchesToken(p, id, "7") {
		t.Fatal("MatchesToken should report true for a leading digit")
	}
	if rcparsing.MatchesToken(p, id, "abc") {
		t.Fatal("MatchesToken should report false with no leading digit")
	}
}

func TestFindAllMatchesExtractsNonOverlappingRuns(t *testing.T) {
	b := numberGrammar()
	p, err := b.Build("Num")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ruleID, ok := p.RuleByName("Num")
	if !ok {
		t.Fatal("Num should resolve by name")
	}

	var texts []string
	rcparsing.FindAllMatches(p, ruleID, "a12b345c6", nil)(func(n *ast.Node) bool {
		texts = append(texts, n.Text())
		return true
	})

	want := []string{"12", "345", "6"}
	if len(texts) != len(want) {
		t.Fatalf("matches = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("matches = %v, want %v", texts, want)
		}
	}
}

func TestReparseRewritesOnlyTheTouchedChild(t *testing.T) {
	b := numberGrammar()
	b.DefineToken("plus", grammar.LiteralChar('+', true))
	b.DefineRule("Plus", grammar.TokenRule(grammar.Ref("plus")))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Num"), grammar.Ref("Plus"), grammar.Ref("Num")))
	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := rcparsing.Parse(p, "12+34", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	oldRoot := res.Root.Raw()

	newSource := "12+94"
	change := ast.TextChange{Start: 3, OldLength: 1, NewLength: 1} // '3' -> '9'
	updated := rcparsing.Reparse(p, oldRoot, newSource, change, nil, res.Memo)

	if updated.Length != 5 {
		t.Fatalf("updated.Length = %d, want 5", updated.Length)
	}
	if len(updated.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(updated.Children))
	}
	if updated.Children[0].Text(newSource) != "12" {
		t.Fatalf("first child should be untouched, got %q", updated.Children[0].Text(newSource))
	}
	if updated.Children[1].Text(newSource) != "+" {
		t.Fatalf("second child should be untouched, got %q", updated.Children[1].Text(newSource))
	}
	if updated.Children[2].Text(newSource) != "94" {
		t.Fatalf("third child should reflect the edit, got %q", updated.Children[2].Text(newSource))
	}
	if updated.Children[2].Version == 0 {
		t.Fatal("the reparsed child should have its version bumped")
	}
	if updated.Children[0].Version != 0 {
		t.Fatal("untouched siblings should keep their original version")
	}
}
