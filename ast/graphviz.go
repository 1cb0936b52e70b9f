package ast

import (
	"fmt"
	"io"

	"github.com/RomeCore/rcparsing-go/grammar"
)

// ToGraphViz exports a parsed tree to w in GraphViz DOT format, grounded on
// lr/sppf/forest.go's exporter of the same name: terminals (token leaves)
// are filled boxes, non-terminals (rule nodes) are plain boxes, and the
// label carries the element's declared alias plus its matched span.
func ToGraphViz(root ParsedRule, parser *grammar.Parser, source string, w io.Writer) {
	io.WriteString(w, `digraph G {
{ graph [fontname="Helvetica"];
  node [fontname="Helvetica",shape=box,fontsize=10];
  edge [fontname="Helvetica",fontsize=9];
`)
	counter := 0
	writeNode(root, parser, source, w, &counter)
	io.WriteString(w, "}\n}\n")
}

func writeNode(n ParsedRule, parser *grammar.Parser, source string, w io.Writer, counter *int) string {
	id := fmt.Sprintf("n%d", *counter)
	*counter++
	label := nodeGraphLabel(n, parser, source)
	if n.IsToken {
		fmt.Fprintf(w, "%q [label=%q,fillcolor=grey90,style=filled]\n", id, label)
	} else {
		fmt.Fprintf(w, "%q [label=%q]\n", id, label)
	}
	for _, c := range n.Children {
		childID := writeNode(c, parser, source, w, counter)
		fmt.Fprintf(w, "%q -> %q\n", id, childID)
	}
	return id
}

func nodeGraphLabel(n ParsedRule, parser *grammar.Parser, source string) string {
	var name string
	if n.IsToken {
		name = tokenLabel(parser, n.TokenID)
	} else {
		name = ruleLabel(parser, n.RuleID)
	}
	return fmt.Sprintf("%s [%d,%d)", name, n.Start, n.End())
}
