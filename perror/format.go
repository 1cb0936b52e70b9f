package perror

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// FormattingFlags mirrors grammar.ErrorFormattingFlags bit for bit; the root
// package converts one into the other before formatting.
type FormattingFlags uint32

const (
	FlagColor FormattingFlags = 1 << iota
	FlagStackTrace
	FlagWalkTrace
	FlagVisualColumn
)

// Formatter renders ErrorGroups and walk traces into human-readable text
// (spec §4.4, §7), using pterm for optional colorization the way
// terex/terexlang/trepl/repl.go uses it for REPL diagnostics.
type Formatter struct {
	Flags           FormattingFlags
	MaxStepsToShow  int
}

// NewFormatter builds a Formatter from the given flags.
func NewFormatter(flags FormattingFlags, maxSteps int) *Formatter {
	if maxSteps <= 0 {
		maxSteps = 64
	}
	return &Formatter{Flags: flags, MaxStepsToShow: maxSteps}
}

func (f *Formatter) colored(style *pterm.Style, s string) string {
	if f.Flags&FlagColor == 0 {
		return s
	}
	return style.Sprint(s)
}

// FormatGroup renders one ErrorGroup as a caret-annotated source excerpt
// followed by the distinct expected set (spec §4.4/§7).
func (f *Formatter) FormatGroup(source string, g ErrorGroup) string {
	var b strings.Builder
	col := g.Column
	if f.Flags&FlagVisualColumn != 0 {
		col = g.VisualColumn
	}
	header := fmt.Sprintf("line %d, column %d", g.Line, col)
	fmt.Fprintln(&b, f.colored(pterm.NewStyle(pterm.FgRed, pterm.Bold), header))
	fmt.Fprintln(&b, sourceLine(source, g.Line))
	fmt.Fprintln(&b, strings.Repeat(" ", col-1)+f.colored(pterm.NewStyle(pterm.FgRed), "^"))
	if len(g.Expected) > 0 {
		fmt.Fprintln(&b, "expected: "+strings.Join(g.Expected, ", "))
	}
	if g.UnexpectedBarrier != "" {
		fmt.Fprintln(&b, "unexpected barrier: "+g.UnexpectedBarrier)
	}
	for _, m := range g.Messages {
		fmt.Fprintln(&b, m)
	}
	return b.String()
}

// FormatStack renders an ancestor chain, innermost first, when
// FlagStackTrace is set.
func (f *Formatter) FormatStack(frame *StackFrame) string {
	if f.Flags&FlagStackTrace == 0 || frame == nil {
		return ""
	}
	var parts []string
	for fr := frame; fr != nil; fr = fr.Parent {
		label := fr.Label
		if label == "" {
			label = "rule#" + strconv.Itoa(int(fr.RuleID))
		}
		parts = append(parts, label)
	}
	return "  at " + strings.Join(parts, " <- ")
}

// FormatWalkTrace renders the tail of a walk trace when FlagWalkTrace is
// set (spec §4.4: "shows the tail N entries with a count of hidden steps").
func (f *Formatter) FormatWalkTrace(wt *WalkTrace) string {
	if f.Flags&FlagWalkTrace == 0 || wt == nil {
		return ""
	}
	events, hidden := wt.Tail(f.MaxStepsToShow)
	var b strings.Builder
	if hidden > 0 {
		fmt.Fprintf(&b, "... %d steps hidden ...\n", hidden)
	}
	for _, e := range events {
		fmt.Fprintf(&b, "[%s] pos=%d %s %q\n", e.Kind, e.Position, e.Label, e.Snippet)
	}
	return b.String()
}

// FormatException renders a full ParsingException message: every relevant
// group in order, separated by "---", followed by the walk trace tail (if
// enabled). Stack frames are not part of the message; ErrorGroup carries
// none.
func (f *Formatter) FormatException(source string, exc *ParsingException, wt *WalkTrace) string {
	var b strings.Builder
	if len(exc.Relevant) == 0 {
		fmt.Fprintln(&b, "parse failed: unknown error")
	}
	for i, g := range exc.Relevant {
		if i > 0 {
			fmt.Fprintln(&b, "---")
		}
		fmt.Fprint(&b, f.FormatGroup(source, g))
	}
	if trace := f.FormatWalkTrace(wt); trace != "" {
		fmt.Fprintln(&b, "---")
		fmt.Fprint(&b, trace)
	}
	return b.String()
}

func sourceLine(source string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
