package grammar

// Config carries parser-wide defaults and observability toggles, all
// recognised by the builder (spec §6). There is no global mutable state
// (spec §9): a Config is consumed once at Builder construction and frozen
// into the resulting Parser.
type Config struct {
	DefaultSettings Settings

	OptimizedWhitespaceSkip bool
	UseInlining             bool
	UseFirstCharacterMatch  bool
	UseCaching              bool
	IgnoreErrors            bool

	WriteStackTrace     bool
	RecordWalkTrace     bool
	DetailedErrors      bool
	ErrorFormattingFlags ErrorFormattingFlags
	MaxGroups           int
	MaxStepsToDisplay   int

	TabSize int
}

// ErrorFormattingFlags toggles optional decorations on formatted error
// messages (spec §6).
type ErrorFormattingFlags uint32

const (
	FormatColor ErrorFormattingFlags = 1 << iota
	FormatStackTrace
	FormatWalkTrace
	FormatVisualColumn
)

// DefaultConfig returns the builder defaults used when a Config is not
// otherwise specified.
func DefaultConfig() Config {
	return Config{
		DefaultSettings: Settings{
			SkipRule:      NoRule,
			ErrorHandling: Record,
		},
		UseInlining:            true,
		UseFirstCharacterMatch: true,
		MaxGroups:              8,
		MaxStepsToDisplay:       64,
		TabSize:                 4,
	}
}
