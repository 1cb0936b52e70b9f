package grammar

// RecoveryKind selects an error-recovery strategy (spec §4.5).
type RecoveryKind int8

const (
	RecoveryNone RecoveryKind = iota
	RecoveryFindNext
	RecoverySkipUntilAnchor
	RecoverySkipAfterAnchor
)

// RecoveryStrategy is attached per rule and invoked when the rule fails and
// its effective ErrorHandling is Record (spec §4.5).
type RecoveryStrategy struct {
	Kind RecoveryKind

	// RecoveryFindNext, RecoverySkipUntilAnchor, RecoverySkipAfterAnchor
	Stop RuleID // optional stop rule; NoRule if absent

	// RecoverySkipUntilAnchor, RecoverySkipAfterAnchor
	Anchor     RuleID
	RepeatSkip bool
}
