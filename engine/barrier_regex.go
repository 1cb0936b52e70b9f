package engine

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/RomeCore/rcparsing-go/grammar"
)

// RegexBarrierTokenizer pre-scans an input for a fixed set of regex-defined
// barrier patterns using a lexmachine DFA (spec §4.3: "other tokenizer
// kinds are installed symmetrically; each declares the aliases it
// produces"), grounded on lr/scanner/lexmach/lexmachine.go's adapter
// pattern of wrapping a lexmachine.Scanner and turning each match into a
// token via s.Token(id, value, m).
//
// Unlike the indent tokenizer, this one never fails the scan: bytes that
// match none of the registered patterns are simply not barriers, and the
// scanner advances past them the same way lexmachine's own adapter ignores
// UnconsumedInput by nudging its cursor forward.
type RegexBarrierTokenizer struct {
	aliases []string
	ids     map[int]string
	lexer   *lexmachine.Lexer
}

// NewRegexBarrierTokenizer compiles one DFA action per (alias, pattern)
// pair. Patterns follow lexmachine's regex dialect, the same one
// lr/scanner/lexmach builds literal/keyword matchers from.
func NewRegexBarrierTokenizer(patterns map[string]string) (*RegexBarrierTokenizer, error) {
	lex := lexmachine.NewLexer()
	rt := &RegexBarrierTokenizer{ids: make(map[int]string, len(patterns))}
	id := 0
	for alias, pattern := range patterns {
		thisID := id
		id++
		rt.aliases = append(rt.aliases, alias)
		rt.ids[thisID] = alias
		lex.Add([]byte(pattern), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return s.Token(thisID, string(m.Bytes), m), nil
		})
	}
	if err := lex.Compile(); err != nil {
		return nil, err
	}
	rt.lexer = lex
	return rt, nil
}

// Aliases reports every barrier alias this tokenizer may produce.
func (rt *RegexBarrierTokenizer) Aliases() []string {
	return rt.aliases
}

// Scan implements grammar.BarrierTokenizer.
func (rt *RegexBarrierTokenizer) Scan(input string) ([]grammar.Barrier, error) {
	scanner, err := rt.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var barriers []grammar.Barrier
	for {
		tok, err, eof := scanner.Next()
		if eof {
			break
		}
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				scanner.TC = ui.FailTC
				continue
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		barriers = append(barriers, grammar.Barrier{
			Position: t.TC,
			Length:   len(t.Lexeme),
			Alias:    rt.ids[t.Type],
		})
	}
	return barriers, nil
}
