package ast_test

import (
	"testing"

	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

func TestOptimizeCollapsesSingleChildWithoutValueFactory(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindTokenRule}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 3,
		Children: []ast.ParsedRule{{TokenID: 0, IsToken: true, Start: 0, Length: 3}},
	}
	out := ast.Optimize(raw, p, ast.Default)
	if !out.IsToken {
		t.Fatalf("expected the rule node to collapse into its token child, got %+v", out)
	}
}

func TestOptimizeKeepsNodeWithValueFactory(t *testing.T) {
	factory := func(children []grammar.ParsedChild, text func() string) value.Value { return value.Of(1) }
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindTokenRule, ValueFactory: factory}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 3,
		Children: []ast.ParsedRule{{TokenID: 0, IsToken: true, Start: 0, Length: 3}},
	}
	out := ast.Optimize(raw, p, ast.Default)
	if out.IsToken {
		t.Fatal("a node with its own ValueFactory must not collapse away")
	}
}

func TestOptimizeDoesNotCollapseWhenChildDoesNotFullySpan(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindOptional}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 3,
		Children: []ast.ParsedRule{{TokenID: 0, IsToken: true, Start: 0, Length: 2}},
	}
	out := ast.Optimize(raw, p, ast.Default)
	if out.IsToken {
		t.Fatal("a child that does not fully span its parent must not be collapsed into")
	}
	if len(out.Children) != 1 {
		t.Fatalf("children should be preserved, got %d", len(out.Children))
	}
}

func TestOptimizeDropEmptyRemovesZeroLengthRuleChildren(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{
		{ID: 0, Kind: grammar.KindSequence},
		{ID: 1, Kind: grammar.KindOptional},
	}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 2,
		Children: []ast.ParsedRule{
			{RuleID: 1, IsToken: false, Start: 0, Length: 0}, // empty Optional: dropped
			{TokenID: 0, IsToken: true, Start: 0, Length: 2},
		},
	}
	out := ast.Optimize(raw, p, ast.DropEmpty)
	if len(out.Children) != 1 {
		t.Fatalf("DropEmpty should remove the zero-length rule child, got %d children", len(out.Children))
	}
	if !out.Children[0].IsToken {
		t.Fatalf("the surviving child should be the token leaf, got %+v", out.Children[0])
	}
}

func TestOptimizeDropEmptyKeepsZeroLengthTokenChildren(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{{ID: 0, Kind: grammar.KindSequence}}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 0,
		Children: []ast.ParsedRule{{TokenID: 0, IsToken: true, Start: 0, Length: 0}},
	}
	out := ast.Optimize(raw, p, ast.DropEmpty)
	if len(out.Children) != 1 {
		t.Fatal("DropEmpty must not remove zero-length token children")
	}
}

func TestOptimizeDropEmptyKeepsOneChildWhenAllChildrenAreEmptyRuleChildren(t *testing.T) {
	p := &grammar.Parser{Rules: []grammar.Rule{
		{ID: 0, Kind: grammar.KindSequence},
		{ID: 1, Kind: grammar.KindOptional},
		{ID: 2, Kind: grammar.KindOptional},
	}}
	raw := ast.ParsedRule{
		RuleID: 0, Start: 0, Length: 0,
		Children: []ast.ParsedRule{
			{RuleID: 1, IsToken: false, Start: 0, Length: 0},
			{RuleID: 2, IsToken: false, Start: 0, Length: 0},
		},
	}
	out := ast.Optimize(raw, p, ast.DropEmpty)
	if len(out.Children) == 0 {
		t.Fatal("DropEmpty must not empty out a Sequence entirely: that would leave no structural record")
	}
}
