package ast_test

import (
	"testing"

	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

func TestNodeValueIsComputedOnceAndCached(t *testing.T) {
	calls := 0
	factory := func(children []grammar.ParsedChild, text func() string) value.Value {
		calls++
		return value.Of(text())
	}
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindSequence, ValueFactory: factory}}}
	raw := ast.ParsedRule{RuleID: 0, Start: 0, Length: 5}
	n := ast.NewNode(raw, p, "hello")

	first := n.Value()
	second := n.Value()
	if calls != 1 {
		t.Fatalf("ValueFactory called %d times, want 1", calls)
	}
	if first.Raw() != "hello" || second.Raw() != "hello" {
		t.Fatalf("Value() = %v / %v, want both \"hello\"", first.Raw(), second.Raw())
	}
}

func TestNodeValueWithoutFactoryUsesIntermediateValue(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindTokenRule}}}
	raw := ast.ParsedRule{RuleID: 0, Start: 0, Length: 1, IntermediateValue: value.Of(7)}
	n := ast.NewNode(raw, p, "x")
	if n.Value().Raw() != 7 {
		t.Fatalf("Value() = %v, want 7", n.Value().Raw())
	}
}

func TestNodeChildrenIsCachedAcrossCalls(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindSequence}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 2,
		Children: []ast.ParsedRule{
			{TokenID: 0, IsToken: true, Start: 0, Length: 1},
			{TokenID: 0, IsToken: true, Start: 1, Length: 1},
		},
	}
	n := ast.NewNode(raw, p, "ab")
	first := n.Children()
	second := n.Children()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Children() length = %d / %d, want 2", len(first), len(second))
	}
	if &first[0] != &second[0] {
		t.Fatal("Children() should return the same cached slice on repeated calls")
	}
}

func TestNodeTextSlicesSource(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindTokenRule}}}
	raw := ast.ParsedRule{TokenID: 0, IsToken: true, Start: 2, Length: 3}
	n := ast.NewNode(raw, p, "abcdefgh")
	if n.Text() != "cde" {
		t.Fatalf("Text() = %q, want %q", n.Text(), "cde")
	}
}

func TestPrecalculateWalksEveryNode(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindSequence}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 2,
		Children: []ast.ParsedRule{
			{TokenID: 0, IsToken: true, Start: 0, Length: 1, IntermediateValue: value.Of(1)},
			{TokenID: 0, IsToken: true, Start: 1, Length: 1, IntermediateValue: value.Of(2)},
		},
	}
	n := ast.Precalculate(raw, p, "ab")
	children := n.Children()
	if children[0].Value().Raw() != 1 || children[1].Value().Raw() != 2 {
		t.Fatalf("Precalculate should have materialised every child's value")
	}
}
