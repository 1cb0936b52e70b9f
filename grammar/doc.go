/*
Package grammar implements the buildable parser-element graph and the
builder/deduplicator that turns it into an immutable, flat Parser.

Building a Grammar

Clients construct rules and tokens as a graph of named and anonymous
buildables, referencing each other by name, and hand the roots to a Builder:

    b := grammar.NewBuilder(grammar.DefaultConfig())
    b.DefineToken("number", grammar.NumberToken(0, grammar.NumberFloat))
    b.DefineToken("plus", grammar.LiteralChar('+', true))
    b.DefineRule("Number", grammar.TokenRule(grammar.Ref("number")))
    b.DefineRule("Plus", grammar.TokenRule(grammar.Ref("plus")))
    b.DefineRule("expr", grammar.Seq(grammar.Ref("Number"), grammar.Ref("Plus"), grammar.Ref("Number")))
    p, err := b.Build("expr")

The builder resolves references, deduplicates structurally-equal elements
into a single canonical ID, rejects trivially left-recursive rules, and
computes first-character sets bottom-up. The result is an immutable Parser:
flat arrays of Rule and TokenPattern records indexed by small integers, ready
to be handed to the engine package's interpreter.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022–2026 RomeCore contributors

Grounded on github.com/npillmayer/gorgo/lr's GrammarBuilder (alias/name
resolution, BFS-built closures) and lr/tables.go's use of emirpasic/gods for
worklists and ordered sets.
*/
package grammar
