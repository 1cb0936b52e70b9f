package engine_test

import (
	"testing"

	rcparsing "github.com/RomeCore/rcparsing-go"
	"github.com/RomeCore/rcparsing-go/grammar"
)

// recoveryGrammar builds Main = Seq(Num, Semi, Num) plus a Hash rule that
// exists only to serve as a RecoveryStrategy.Stop candidate, returning the
// built Parser and the RuleIDs a test needs to attach a strategy to Num.
func recoveryGrammar(t *testing.T) (p *grammar.Parser, numID, semiID, hashID grammar.RuleID) {
	t.Helper()
	b := grammar.NewBuilder(grammar.DefaultConfig())
	b.DefineToken("digit", grammar.NumberToken(0, grammar.NumberInt))
	b.DefineToken("semi", grammar.LiteralChar(';', true))
	b.DefineToken("hash", grammar.LiteralChar('#', true))
	b.DefineRule("Num", grammar.TokenRule(grammar.Ref("digit")))
	b.DefineRule("Semi", grammar.TokenRule(grammar.Ref("semi")))
	b.DefineRule("Hash", grammar.TokenRule(grammar.Ref("hash")))
	b.DefineRule("Main", grammar.Seq(grammar.Ref("Num"), grammar.Ref("Semi"), grammar.Ref("Num")))

	p, err := b.Build("Main")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var ok bool
	numID, ok = p.RuleByName("Num")
	if !ok {
		t.Fatalf("Num not found")
	}
	semiID, ok = p.RuleByName("Semi")
	if !ok {
		t.Fatalf("Semi not found")
	}
	hashID, ok = p.RuleByName("Hash")
	if !ok {
		t.Fatalf("Hash not found")
	}
	return p, numID, semiID, hashID
}

func TestRecoveryFindNextSkipsForwardToNextMatch(t *testing.T) {
	p, numID, _, _ := recoveryGrammar(t)
	p.Rule(numID).Recovery = &grammar.RecoveryStrategy{Kind: grammar.RecoveryFindNext, Stop: grammar.NoRule}

	res, err := rcparsing.Parse(p, "@@@5;7", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Root.Raw().Length != 6 {
		t.Fatalf("Length = %d, want 6", res.Root.Raw().Length)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected the original failure to still be recorded")
	}
}

func TestRecoveryFindNextGivesUpAtStopRule(t *testing.T) {
	p, numID, _, hashID := recoveryGrammar(t)
	p.Rule(numID).Recovery = &grammar.RecoveryStrategy{Kind: grammar.RecoveryFindNext, Stop: hashID}

	_, err := rcparsing.Parse(p, "@#5;7", nil)
	if err == nil {
		t.Fatalf("expected Parse to fail: the stop rule should short-circuit recovery before reaching '5'")
	}
}

func TestRecoverySkipUntilAnchorResumesAtAnchorStart(t *testing.T) {
	p, numID, semiID, _ := recoveryGrammar(t)
	p.Rule(numID).Recovery = &grammar.RecoveryStrategy{Kind: grammar.RecoverySkipUntilAnchor, Anchor: semiID}

	res, err := rcparsing.Parse(p, "###;7", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Root.Raw().Length != 5 {
		t.Fatalf("Length = %d, want 5", res.Root.Raw().Length)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected the original failure to still be recorded")
	}
}

func TestRecoverySkipAfterAnchorWithRepeatSkipConsumesRunOfAnchors(t *testing.T) {
	p, numID, semiID, _ := recoveryGrammar(t)
	p.Rule(numID).Recovery = &grammar.RecoveryStrategy{
		Kind: grammar.RecoverySkipAfterAnchor, Anchor: semiID, RepeatSkip: true,
	}

	res, err := rcparsing.Parse(p, "@@;;;5;9", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Root.Raw().Length != 8 {
		t.Fatalf("Length = %d, want 8", res.Root.Raw().Length)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected the original failure to still be recorded")
	}
}
