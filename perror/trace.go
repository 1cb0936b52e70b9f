package perror

// WalkEvent is one append-only entry in a walk trace (spec §4.4).
type WalkEvent struct {
	Kind     string // "ENTER", "SUCCESS" or "FAIL"
	Position int
	Label    string
	Snippet  string
}

// WalkTrace is an optional append-only log of interpreter steps, shown tail-
// first by the formatter with a count of hidden entries (spec §4.4, §6
// "max_steps_to_display"). A nil *WalkTrace silently discards Log calls, so
// callers can pass it unconditionally when recording is disabled.
type WalkTrace struct {
	events []WalkEvent
}

// NewWalkTrace creates an empty walk trace.
func NewWalkTrace() *WalkTrace { return &WalkTrace{} }

// Log appends one step. Safe to call on a nil receiver.
func (w *WalkTrace) Log(kind string, position int, label, snippet string) {
	if w == nil {
		return
	}
	w.events = append(w.events, WalkEvent{Kind: kind, Position: position, Label: label, Snippet: snippet})
}

// Tail returns the last n events (or all of them, plus the count hidden
// before that window).
func (w *WalkTrace) Tail(n int) (events []WalkEvent, hidden int) {
	if w == nil || n <= 0 || len(w.events) <= n {
		if w == nil {
			return nil, 0
		}
		return w.events, 0
	}
	return w.events[len(w.events)-n:], len(w.events) - n
}
