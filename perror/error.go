package perror

import (
	"sort"
	"strconv"

	"github.com/RomeCore/rcparsing-go/grammar"
)

// ParsingError is one recorded failure (spec §4.4): the position it
// occurred at, which rule or token was expected, a message, and an optional
// ancestor stack frame recorded only when stack-trace writing is enabled.
type ParsingError struct {
	Position  int
	ElementID int
	IsToken   bool
	Message   string
	Stack     *StackFrame
}

// StackFrame is a linked ancestor chain of rule ids, innermost first.
type StackFrame struct {
	RuleID grammar.RuleID
	Label  string
	Parent *StackFrame
}

// ErrorGroup merges every ParsingError recorded at the same position (spec
// §4.4).
type ErrorGroup struct {
	Position          int
	Line              int
	Column            int
	VisualColumn      int
	Expected          []string
	Messages          []string
	UnexpectedBarrier string // alias, empty if none
}

// Accumulator is the per-Context error sink (spec §4.4, §7). NoRecord
// handling never reaches it; Record appends; under Throw, Handle panics with
// a *ParsingException instead of recording.
type Accumulator struct {
	errs    []ParsingError
	ignore  bool
	detailed bool
	furthest int
	segments []int // positions at which a new recovery segment begins
}

// NewAccumulator creates an accumulator. ignoreErrors mirrors
// Config.IgnoreErrors (spec §6): when set, Record becomes a no-op. detailed
// mirrors Config.DetailedErrors: when set, expectation labels keep the
// element kind/id alongside any custom message instead of the message alone.
func NewAccumulator(ignoreErrors, detailed bool) *Accumulator {
	return &Accumulator{ignore: ignoreErrors, detailed: detailed}
}

// Handle dispatches a failure according to the rule/token's effective
// ErrorHandling (spec §4.4): Record appends, NoRecord discards, Throw
// panics with a *ParsingException so the outermost Parse call can recover
// it.
func (a *Accumulator) Handle(err ParsingError, handling grammar.ErrorHandling) {
	switch handling {
	case grammar.NoRecord:
		return
	case grammar.Throw:
		panic(newException([]ParsingError{err}, "", a.detailed))
	default:
		a.Record(err)
	}
}

// Record unconditionally appends err, honouring Config.IgnoreErrors.
func (a *Accumulator) Record(err ParsingError) {
	if a.ignore {
		return
	}
	a.errs = append(a.errs, err)
	if err.Position > a.furthest {
		a.furthest = err.Position
	}
}

// NoteRecovery marks a recovery segment boundary whenever it fires at a
// position further than any previously known furthest error (spec §4.4:
// "segment boundaries are inserted whenever error recovery fires at a
// further position than the previously-known furthest error").
func (a *Accumulator) NoteRecovery(position int) {
	if position > a.furthest {
		a.segments = append(a.segments, position)
		a.furthest = position
	}
}

// Empty reports whether nothing was recorded.
func (a *Accumulator) Empty() bool {
	return len(a.errs) == 0
}

// Groups aggregates recorded errors into position-keyed ErrorGroups, sorted
// by descending position and capped at maxGroups (0 = unlimited). line,
// column and visualColumn are computed against source using tabSize for
// visual-column tab expansion (spec §4.4).
func (a *Accumulator) Groups(source string, tabSize int, maxGroups int) []ErrorGroup {
	byPos := make(map[int]*ErrorGroup)
	var order []int
	for _, e := range a.errs {
		g, ok := byPos[e.Position]
		if !ok {
			line, col, vcol := locate(source, e.Position, tabSize)
			g = &ErrorGroup{Position: e.Position, Line: line, Column: col, VisualColumn: vcol}
			byPos[e.Position] = g
			order = append(order, e.Position)
		}
		label := expectationLabel(e, a.detailed)
		if !contains(g.Expected, label) {
			g.Expected = append(g.Expected, label)
		}
		if e.Message != "" && !contains(g.Messages, e.Message) {
			g.Messages = append(g.Messages, e.Message)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	out := make([]ErrorGroup, 0, len(order))
	for _, pos := range order {
		out = append(out, *byPos[pos])
		if maxGroups > 0 && len(out) >= maxGroups {
			break
		}
	}
	return out
}

// RelevantGroups returns the last group of each recovery segment (spec
// §4.4, GLOSSARY "Relevant error group"): the furthest group at or before
// each segment boundary, plus the final overall furthest group.
func (a *Accumulator) RelevantGroups(source string, tabSize int) []ErrorGroup {
	all := a.Groups(source, tabSize, 0) // descending by position
	if len(all) == 0 {
		return nil
	}
	boundaries := append([]int(nil), a.segments...)
	sort.Ints(boundaries)
	if len(boundaries) == 0 {
		return all[:1]
	}
	var relevant []ErrorGroup
	seen := make(map[int]bool)
	for _, b := range boundaries {
		for _, g := range all {
			if g.Position <= b && !seen[g.Position] {
				relevant = append(relevant, g)
				seen[g.Position] = true
				break
			}
		}
	}
	if !seen[all[0].Position] {
		relevant = append([]ErrorGroup{all[0]}, relevant...)
	}
	return relevant
}

// expectationLabel renders what was expected at a failure. With detailed
// off this is just the custom message (falling back to a bare "kind#id");
// with it on, the kind/id tag is always appended so the element that failed
// can be pinned down even when messages collide (Config.DetailedErrors).
func expectationLabel(e ParsingError, detailed bool) string {
	kind := "rule"
	if e.IsToken {
		kind = "token"
	}
	tag := kind + "#" + strconv.Itoa(e.ElementID)
	if e.Message == "" {
		return tag
	}
	if detailed {
		return e.Message + " (" + tag + ")"
	}
	return e.Message
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// locate converts a byte offset into 1-based line/column and a tab-expanded
// visual column (spec §4.4).
func locate(source string, pos int, tabSize int) (line, col, vcol int) {
	if pos > len(source) {
		pos = len(source)
	}
	line, col, vcol = 1, 1, 1
	for i := 0; i < pos; i++ {
		c := source[i]
		if c == '\n' {
			line++
			col = 1
			vcol = 1
			continue
		}
		col++
		if c == '\t' && tabSize > 0 {
			vcol += tabSize - ((vcol - 1) % tabSize)
		} else {
			vcol++
		}
	}
	return
}
