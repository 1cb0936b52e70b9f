package perror

// ParsingException is the user-visible failure raised by the outermost
// Parse call when error_handling = Throw or when nothing succeeded (spec
// §7): it exposes every recorded group, the "relevant" subset (§4.4), and a
// preformatted message.
type ParsingException struct {
	Groups   []ErrorGroup
	Relevant []ErrorGroup
	Message  string
}

func (e *ParsingException) Error() string {
	return e.Message
}

// NewException builds a ParsingException directly from a slice of raw
// errors (used by Accumulator.Handle's Throw path, where no source text is
// available yet to compute line/column); Format should be called again by
// the caller once source is known, via FormatException.
func NewException(errs []ParsingError, message string) *ParsingException {
	return newException(errs, message, false)
}

func newException(errs []ParsingError, message string, detailed bool) *ParsingException {
	groups := make([]ErrorGroup, 0, len(errs))
	for _, e := range errs {
		groups = append(groups, ErrorGroup{
			Position: e.Position,
			Expected: []string{expectationLabel(e, detailed)},
			Messages: nonEmpty(e.Message),
		})
	}
	return &ParsingException{Groups: groups, Relevant: groups, Message: message}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// UnknownErrorGroup is the synthetic group produced when parsing failed but
// nothing was recorded (spec §7: "callers always see at least one").
func UnknownErrorGroup(position int) ErrorGroup {
	return ErrorGroup{Position: position, Expected: []string{"<unknown>"}, Messages: []string{"unknown error"}}
}
