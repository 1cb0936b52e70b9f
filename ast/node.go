package ast

import (
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/value"
)

// Node is the user-facing wrapper around a ParsedRule: it resolves text
// against the parsed source, computes the node's final value (via the
// rule's ValueFactory, once, caching the result) and wraps children lazily
// (spec §4.6 "Lazy" presentation). Precalculate walks a tree eagerly to
// produce the "Precalculated" presentation from the same type.
type Node struct {
	raw    ParsedRule
	parser *grammar.Parser
	source string

	valueComputed bool
	value         value.Value

	children []*Node
}

// NewNode wraps a freshly parsed tree for lazy access.
func NewNode(raw ParsedRule, parser *grammar.Parser, source string) *Node {
	return &Node{raw: raw, parser: parser, source: source}
}

// Raw returns the underlying value-type node.
func (n *Node) Raw() ParsedRule { return n.raw }

// Start, Length, End mirror the underlying ParsedRule.
func (n *Node) Start() int  { return n.raw.Start }
func (n *Node) Length() int { return n.raw.Length }
func (n *Node) End() int    { return n.raw.End() }

// IsToken reports whether this node is a token leaf.
func (n *Node) IsToken() bool { return n.raw.IsToken }

// Text returns the matched substring, computed on demand (spec §4.6).
func (n *Node) Text() string {
	return n.raw.Text(n.source)
}

// Label resolves this node's element back to its first declared alias,
// falling back to a plain "rule"/"token" label.
func (n *Node) Label() string {
	if n.raw.IsToken {
		return tokenLabel(n.parser, n.raw.TokenID)
	}
	return ruleLabel(n.parser, n.raw.RuleID)
}

func ruleLabel(p *grammar.Parser, id grammar.RuleID) string {
	if p == nil {
		return "rule"
	}
	r := p.Rule(id)
	if len(r.Aliases) > 0 {
		return r.Aliases[0]
	}
	return "rule"
}

func tokenLabel(p *grammar.Parser, id grammar.TokenID) string {
	if p == nil {
		return "token"
	}
	t := p.Token(id)
	if len(t.Aliases) > 0 {
		return t.Aliases[0]
	}
	return "token"
}

// Children wraps each child ParsedRule as a *Node on first access, caching
// the slice (spec §4.6: children computed "on demand").
func (n *Node) Children() []*Node {
	if n.children == nil && len(n.raw.Children) > 0 {
		n.children = make([]*Node, len(n.raw.Children))
		for i, c := range n.raw.Children {
			n.children[i] = NewNode(c, n.parser, n.source)
		}
	}
	return n.children
}

// Value computes and caches this node's final value (spec §4.6): for a
// token leaf it is the token's computed intermediate value; for a rule node
// with an attached ValueFactory it is that factory's result over children's
// values and text; otherwise it is the intermediate value threaded up by
// the interpreter's default passage handling.
func (n *Node) Value() value.Value {
	if n.valueComputed {
		return n.value
	}
	n.valueComputed = true
	if n.raw.IsToken || n.parser == nil {
		n.value = n.raw.IntermediateValue
		return n.value
	}
	r := n.parser.Rule(n.raw.RuleID)
	if r.ValueFactory == nil {
		n.value = n.raw.IntermediateValue
		return n.value
	}
	children := make([]grammar.ParsedChild, len(n.raw.Children))
	for i, c := range n.raw.Children {
		cn := NewNode(c, n.parser, n.source)
		children[i] = grammar.ParsedChild{Start: c.Start, Length: c.Length, Value: cn.Value()}
	}
	n.value = r.ValueFactory(children, n.Text)
	return n.value
}

// Precalculate eagerly walks raw and materialises every node's value and
// children slice before returning (spec §4.6 "Precalculated" presentation).
func Precalculate(raw ParsedRule, parser *grammar.Parser, source string) *Node {
	n := NewNode(raw, parser, source)
	precalcInPlace(n)
	return n
}

func precalcInPlace(n *Node) {
	n.Value()
	for _, c := range n.Children() {
		precalcInPlace(c)
	}
}
