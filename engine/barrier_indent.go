package engine

import (
	"fmt"

	"github.com/RomeCore/rcparsing-go/grammar"
)

// IndentMode selects how IndentTokenizer interprets a line's leading
// whitespace column (spec §4.3).
type IndentMode int8

const (
	IndentStrict IndentMode = iota
	IndentSoft
	IndentHybrid
)

// defaultSoftTabWidth is the tab-expansion width IndentSoft falls back to
// when IndentSize is left at its zero value (Soft mode never needs
// IndentSize for anything else, so it's the one mode that doesn't require
// it to be configured).
const defaultSoftTabWidth = 8

// IndentTokenizer pre-scans an input for INDENT/DEDENT (and optionally
// NEWLINE) barrier positions based on leading-whitespace column counts
// (spec §4.3). It implements grammar.BarrierTokenizer.
type IndentTokenizer struct {
	Mode       IndentMode
	IndentSize int

	// IndentAlias/DedentAlias default to "INDENT"/"DEDENT" when empty.
	IndentAlias string
	DedentAlias string
	// NewlineAlias, when non-empty, additionally emits one barrier per
	// line terminator (spec §4.3: "and optionally NEWLINE").
	NewlineAlias string
}

func (it *IndentTokenizer) aliasNames() (indent, dedent string) {
	indent, dedent = it.IndentAlias, it.DedentAlias
	if indent == "" {
		indent = "INDENT"
	}
	if dedent == "" {
		dedent = "DEDENT"
	}
	return
}

// Aliases implements grammar.BarrierTokenizer.
func (it *IndentTokenizer) Aliases() []string {
	indent, dedent := it.aliasNames()
	out := []string{indent, dedent}
	if it.NewlineAlias != "" {
		out = append(out, it.NewlineAlias)
	}
	return out
}

// Scan implements grammar.BarrierTokenizer (spec §4.3). Blank and
// whitespace-only lines never change indentation state. A tab contributes
// indent_size - (column mod indent_size) columns.
//
// The spec's invariant that barrier positions are "strictly increasing"
// is read here as non-decreasing: hybrid/strict mode can legitimately emit
// a whole run of INDENT or DEDENT tokens at one content position when the
// column jumps by more than one level (spec §4.3: "emit the signed delta
// as a run of INDENT or DEDENT tokens") — see DESIGN.md.
func (it *IndentTokenizer) Scan(input string) ([]grammar.Barrier, error) {
	if it.Mode != IndentSoft && it.IndentSize <= 0 {
		return nil, fmt.Errorf("indent tokenizer: indent_size must be positive")
	}
	indentAlias, dedentAlias := it.aliasNames()

	// Soft mode compares columns structurally and never divides by
	// IndentSize, so it tolerates the zero value; give its tab expansion an
	// independent width rather than inheriting a size that may be 0.
	tabWidth := it.IndentSize
	if tabWidth <= 0 {
		tabWidth = defaultSoftTabWidth
	}

	var barriers []grammar.Barrier
	stack := []int{0}
	level := 0

	emit := func(col, pos int) error {
		switch it.Mode {
		case IndentStrict:
			if col%it.IndentSize != 0 {
				return fmt.Errorf("indent violation at position %d: column %d is not a multiple of %d", pos, col, it.IndentSize)
			}
			want := col / it.IndentSize
			for want > level {
				barriers = append(barriers, grammar.Barrier{Position: pos, Alias: indentAlias})
				level++
			}
			for want < level {
				barriers = append(barriers, grammar.Barrier{Position: pos, Alias: dedentAlias})
				level--
			}
		case IndentSoft:
			top := stack[len(stack)-1]
			if col > top {
				stack = append(stack, col)
				barriers = append(barriers, grammar.Barrier{Position: pos, Alias: indentAlias})
			} else {
				for len(stack) > 1 && col < stack[len(stack)-1] {
					stack = stack[:len(stack)-1]
					barriers = append(barriers, grammar.Barrier{Position: pos, Alias: dedentAlias})
				}
			}
		case IndentHybrid:
			want := col / it.IndentSize
			for want > level {
				barriers = append(barriers, grammar.Barrier{Position: pos, Alias: indentAlias})
				level++
			}
			for want < level {
				barriers = append(barriers, grammar.Barrier{Position: pos, Alias: dedentAlias})
				level--
			}
		}
		return nil
	}

	pos := 0
	for pos <= len(input) {
		col := 0
		p := pos
		for p < len(input) && (input[p] == ' ' || input[p] == '\t') {
			if input[p] == '\t' {
				col += tabWidth - (col % tabWidth)
			} else {
				col++
			}
			p++
		}
		lineEnd := p
		for lineEnd < len(input) && input[lineEnd] != '\n' {
			lineEnd++
		}
		blank := p >= len(input) || input[p] == '\n' || input[p] == '\r'
		if !blank {
			if err := emit(col, p); err != nil {
				return nil, err
			}
		}
		if it.NewlineAlias != "" && lineEnd < len(input) {
			barriers = append(barriers, grammar.Barrier{Position: lineEnd, Length: 1, Alias: it.NewlineAlias})
		}
		if lineEnd >= len(input) {
			break
		}
		pos = lineEnd + 1
	}

	switch it.Mode {
	case IndentSoft:
		for len(stack) > 1 {
			stack = stack[:len(stack)-1]
			barriers = append(barriers, grammar.Barrier{Position: len(input), Alias: dedentAlias})
		}
	default:
		for level > 0 {
			level--
			barriers = append(barriers, grammar.Barrier{Position: len(input), Alias: dedentAlias})
		}
	}
	return barriers, nil
}
