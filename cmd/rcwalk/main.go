// Command rcwalk is an interactive sandbox for experimenting with a small
// demo grammar: type an arithmetic expression, see its parse tree and the
// interpreter's walk trace. Grounded on terex/terexlang/trepl/repl.go's
// readline + pterm REPL loop, adapted to drive this package's parser
// instead of a term-rewriting evaluator.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	rcparsing "github.com/RomeCore/rcparsing-go"
	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/engine"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

func tracer() tracing.Trace {
	return tracing.Select("rcparsing.rcwalk")
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))

	pterm.Info.Println("rcwalk: type an arithmetic expression, quit with <ctrl>D")

	parser, err := buildDemoGrammar()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	repl, err := readline.New("rcwalk> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(1)
	}
	defer repl.Close()

	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		evalOnce(parser, line)
	}
	pterm.Info.Println("bye")
}

func evalOnce(parser *grammar.Parser, input string) {
	result, err := rcparsing.Parse(parser, input, nil)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	root := pterm.TreeNode{Text: "Expr"}
	buildTree(&root, result.Root)
	pterm.DefaultTree.WithRoot(root).Render()
	if len(result.Errors) > 0 {
		pterm.Warning.Println("recovered from errors along the way")
	}
	if trace := result.WalkTrace; trace != nil {
		events, hidden := trace.Tail(32)
		if hidden > 0 {
			pterm.Info.Printfln("... %d steps hidden ...", hidden)
		}
		for _, e := range events {
			pterm.Info.Printfln("[%s] pos=%d %s %q", e.Kind, e.Position, e.Label, e.Snippet)
		}
	}
}

func buildTree(out *pterm.TreeNode, n *ast.Node) {
	out.Text = n.Label() + ": " + n.Text()
	for _, c := range n.Children() {
		child := pterm.TreeNode{}
		buildTree(&child, c)
		out.Children = append(out.Children, child)
	}
}

// buildDemoGrammar assembles a small arithmetic-expression grammar (numbers,
// + - * /, parentheses) for the REPL to exercise: every leaf token skips
// leading whitespace inline (spec §4.2's TSkipWhitespaces combinator),
// avoiding the need for a builder-wide skip rule.
func buildDemoGrammar() (*grammar.Parser, error) {
	cfg := grammar.DefaultConfig()
	cfg.RecordWalkTrace = true
	cfg.WriteStackTrace = true
	cfg.ErrorFormattingFlags = grammar.FormatColor | grammar.FormatStackTrace | grammar.FormatWalkTrace | grammar.FormatVisualColumn

	b := grammar.NewBuilder(cfg)

	leaf := func(tok, inner string) {
		b.DefineToken(tok, grammar.TokSkipWhitespaces(grammar.Ref(inner)))
	}

	b.DefineToken("_num", grammar.NumberToken(engine.NumberAllowSign|engine.NumberAllowFraction|engine.NumberAllowExponent, grammar.NumberFloat))
	leaf("num", "_num")

	b.DefineToken("_plus", grammar.LiteralChar('+', true))
	leaf("plus", "_plus")
	b.DefineToken("_minus", grammar.LiteralChar('-', true))
	leaf("minus", "_minus")
	b.DefineToken("_star", grammar.LiteralChar('*', true))
	leaf("star", "_star")
	b.DefineToken("_slash", grammar.LiteralChar('/', true))
	leaf("slash", "_slash")
	b.DefineToken("_lparen", grammar.LiteralChar('(', true))
	leaf("lparen", "_lparen")
	b.DefineToken("_rparen", grammar.LiteralChar(')', true))
	leaf("rparen", "_rparen")

	b.DefineRule("Number", grammar.TokenRule(grammar.Ref("num")))
	b.DefineRule("LParen", grammar.TokenRule(grammar.Ref("lparen")))
	b.DefineRule("RParen", grammar.TokenRule(grammar.Ref("rparen")))
	b.DefineRule("PlusOp", grammar.TokenRule(grammar.Ref("plus")))
	b.DefineRule("MinusOp", grammar.TokenRule(grammar.Ref("minus")))
	b.DefineRule("StarOp", grammar.TokenRule(grammar.Ref("star")))
	b.DefineRule("SlashOp", grammar.TokenRule(grammar.Ref("slash")))

	b.DefineRule("AddOp", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("PlusOp"), grammar.Ref("MinusOp")))
	b.DefineRule("MulOp", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("StarOp"), grammar.Ref("SlashOp")))

	b.DefineRule("Factor", grammar.ChoiceRule(grammar.ChoiceFirst, grammar.Ref("Number"), grammar.Ref("Parenthesized")))
	b.DefineRule("Parenthesized", grammar.Seq(grammar.Ref("LParen"), grammar.Ref("Expr"), grammar.Ref("RParen")))
	b.DefineRule("Term", grammar.SepRep(grammar.Ref("Factor"), grammar.Ref("MulOp"), 1, grammar.Unbounded, false, true))
	b.DefineRule("Expr", grammar.SepRep(grammar.Ref("Term"), grammar.Ref("AddOp"), 1, grammar.Unbounded, false, true))

	return b.Build("Expr")
}
