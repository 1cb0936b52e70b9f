package perror_test

import (
	"strings"
	"testing"

	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/perror"
)

func TestRecordMergesSamePositionIntoOneGroup(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	a.Record(perror.ParsingError{Position: 5, ElementID: 1, Message: "expected string"})
	a.Record(perror.ParsingError{Position: 5, ElementID: 2, Message: "expected }"})
	a.Record(perror.ParsingError{Position: 2, ElementID: 3, Message: "expected ("})

	groups := a.Groups("abcdefgh", 4, 0)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Descending by position.
	if groups[0].Position != 5 || groups[1].Position != 2 {
		t.Fatalf("groups not sorted by descending position: %+v", groups)
	}
	if len(groups[0].Expected) != 2 {
		t.Fatalf("group at pos 5 should merge 2 distinct expectations, got %v", groups[0].Expected)
	}
}

func TestIgnoreErrorsSuppressesRecording(t *testing.T) {
	a := perror.NewAccumulator(true, false)
	a.Record(perror.ParsingError{Position: 1, Message: "x"})
	if !a.Empty() {
		t.Fatal("Accumulator with ignoreErrors=true should stay empty")
	}
}

func TestHandleNoRecordDiscardsSilently(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	a.Handle(perror.ParsingError{Position: 1, Message: "x"}, grammar.NoRecord)
	if !a.Empty() {
		t.Fatal("NoRecord handling must not append to the accumulator")
	}
}

func TestHandleThrowPanics(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Throw handling should panic")
		}
		if _, ok := r.(*perror.ParsingException); !ok {
			t.Fatalf("panic value = %T, want *ParsingException", r)
		}
	}()
	a.Handle(perror.ParsingError{Position: 1, Message: "fatal"}, grammar.Throw)
}

func TestMaxGroupsCaps(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	for i := 0; i < 5; i++ {
		a.Record(perror.ParsingError{Position: i, Message: "x"})
	}
	groups := a.Groups("0123456789", 4, 2)
	if len(groups) != 2 {
		t.Fatalf("MaxGroups=2 should cap output, got %d", len(groups))
	}
}

func TestGroupsLineColumnComputation(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	src := "abc\ndef\nghi"
	// position 5 is 'e' on line 2, column 2 (0-indexed byte 5: a b c \n d -> index4='d', index5='e')
	a.Record(perror.ParsingError{Position: 5, Message: "expected X"})
	groups := a.Groups(src, 4, 0)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Line != 2 {
		t.Fatalf("Line = %d, want 2", g.Line)
	}
	if g.Column != 2 {
		t.Fatalf("Column = %d, want 2", g.Column)
	}
}

func TestVisualColumnExpandsTabs(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	src := "\tX" // tab then X, tabSize=4 -> visual col of X should be 5
	a.Record(perror.ParsingError{Position: 1, Message: "expected X"})
	groups := a.Groups(src, 4, 0)
	g := groups[0]
	if g.Column != 2 {
		t.Fatalf("raw Column = %d, want 2", g.Column)
	}
	if g.VisualColumn != 5 {
		t.Fatalf("VisualColumn = %d, want 5 (tab expanded to width 4)", g.VisualColumn)
	}
}

func TestRelevantGroupsWithoutRecoverySegments(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	a.Record(perror.ParsingError{Position: 3, Message: "a"})
	a.Record(perror.ParsingError{Position: 7, Message: "b"})
	rel := a.RelevantGroups("0123456789", 4)
	if len(rel) != 1 || rel[0].Position != 7 {
		t.Fatalf("with no recovery, relevant groups should be just the furthest one, got %+v", rel)
	}
}

func TestRelevantGroupsWithRecoverySegments(t *testing.T) {
	a := perror.NewAccumulator(false, false)
	a.Record(perror.ParsingError{Position: 3, Message: "a"})
	a.NoteRecovery(5)
	a.Record(perror.ParsingError{Position: 9, Message: "b"})
	rel := a.RelevantGroups("0123456789x", 4)
	if len(rel) < 2 {
		t.Fatalf("expected at least 2 relevant groups across recovery segments, got %+v", rel)
	}
}

func TestUnknownErrorGroupIsNonEmpty(t *testing.T) {
	g := perror.UnknownErrorGroup(4)
	if len(g.Expected) == 0 || len(g.Messages) == 0 {
		t.Fatal("UnknownErrorGroup should always carry a synthetic expectation and message")
	}
	if g.Position != 4 {
		t.Fatalf("Position = %d, want 4", g.Position)
	}
}

func TestFormatExceptionIncludesGroupAndCaret(t *testing.T) {
	exc := &perror.ParsingException{
		Groups:   []perror.ErrorGroup{{Position: 1, Line: 1, Column: 2, Expected: []string{"expected digit"}}},
		Relevant: []perror.ErrorGroup{{Position: 1, Line: 1, Column: 2, Expected: []string{"expected digit"}}},
	}
	f := perror.NewFormatter(0, 0)
	msg := f.FormatException("a1", exc, nil)
	if !strings.Contains(msg, "line 1, column 2") {
		t.Fatalf("message missing location header: %q", msg)
	}
	if !strings.Contains(msg, "expected digit") {
		t.Fatalf("message missing expectation: %q", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Fatalf("message missing caret: %q", msg)
	}
}

func TestFormatExceptionWithNoRelevantGroupsSaysUnknown(t *testing.T) {
	f := perror.NewFormatter(0, 0)
	msg := f.FormatException("abc", &perror.ParsingException{}, nil)
	if !strings.Contains(msg, "unknown error") {
		t.Fatalf("message should mention unknown error, got %q", msg)
	}
}

func TestFormatStackTraceRespectsFlag(t *testing.T) {
	frame := &perror.StackFrame{Label: "inner", Parent: &perror.StackFrame{Label: "outer"}}
	f := perror.NewFormatter(0, 0)
	if got := f.FormatStack(frame); got != "" {
		t.Fatalf("without FlagStackTrace, FormatStack should be empty, got %q", got)
	}
	f2 := perror.NewFormatter(perror.FlagStackTrace, 0)
	got := f2.FormatStack(frame)
	if !strings.Contains(got, "inner") || !strings.Contains(got, "outer") {
		t.Fatalf("FormatStack should list both frames, got %q", got)
	}
}

func TestWalkTraceTailAndHiddenCount(t *testing.T) {
	wt := perror.NewWalkTrace()
	for i := 0; i < 10; i++ {
		wt.Log("ENTER", i, "rule", "")
	}
	events, hidden := wt.Tail(3)
	if len(events) != 3 {
		t.Fatalf("Tail(3) returned %d events, want 3", len(events))
	}
	if hidden != 7 {
		t.Fatalf("hidden = %d, want 7", hidden)
	}
	if events[len(events)-1].Position != 9 {
		t.Fatalf("Tail should return the most recent events, last position = %d", events[len(events)-1].Position)
	}
}

func TestWalkTraceNilReceiverIsSafe(t *testing.T) {
	var wt *perror.WalkTrace
	wt.Log("ENTER", 0, "x", "") // must not panic
	events, hidden := wt.Tail(5)
	if events != nil || hidden != 0 {
		t.Fatalf("nil WalkTrace.Tail should return (nil, 0), got (%v, %d)", events, hidden)
	}
}
