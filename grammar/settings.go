package grammar

// SkipStrategy selects how whitespace/comment skipping interleaves with
// parsing a rule or token (spec §4.2).
type SkipStrategy int8

const (
	NoSkipping SkipStrategy = iota
	SkipBeforeParsing
	SkipBeforeParsingLazy
	SkipBeforeParsingGreedy
	TryParseThenSkip
	TryParseThenSkipLazy
	TryParseThenSkipGreedy
)

// ErrorHandling selects what happens when a rule or token fails to parse
// (spec §4.4).
type ErrorHandling int8

const (
	Record ErrorHandling = iota
	NoRecord
	Throw
)

// OverrideMode controls how a Settings field combines with its parent's
// effective value and with the global default (spec §3, GLOSSARY).
type OverrideMode int8

const (
	// InheritSelfAndChildren uses the parent-propagated effective value for
	// both this element and everything beneath it.
	InheritSelfAndChildren OverrideMode = iota
	// LocalSelfAndChildren fixes the local value for this element and
	// everything beneath it, ignoring the parent.
	LocalSelfAndChildren
	// LocalSelfOnly fixes the local value for this element only; children
	// receive the value this element itself inherited, unless they
	// override it too.
	LocalSelfOnly
	// LocalChildrenOnly fixes the local value for this element's children,
	// but this element itself inherits from its parent.
	LocalChildrenOnly
	// GlobalSelfAndChildren resets to the parser-wide default for this
	// element and everything beneath it.
	GlobalSelfAndChildren
	// GlobalSelfOnly resets to the parser-wide default for this element
	// only.
	GlobalSelfOnly
	// GlobalChildrenOnly resets to the parser-wide default for this
	// element's children only.
	GlobalChildrenOnly
)

// Settings are the per-rule/per-token effective knobs, each independently
// overridable (spec §3).
type Settings struct {
	SkipStrategy     SkipStrategy
	SkipStrategyMode OverrideMode
	SkipRule         RuleID
	SkipRuleMode     OverrideMode
	ErrorHandling    ErrorHandling
	ErrorHandlingMode OverrideMode
	IgnoreBarriers     bool
	IgnoreBarriersMode OverrideMode
}

// DefaultSettings returns settings that inherit everything from the parent
// (the zero value already does, but this documents intent at call sites).
func DefaultSettings() Settings {
	return Settings{
		SkipRule: NoRule,
	}
}

// resolveMode reports, for one settings field's override mode, whether the
// local value or the global default applies to the element itself
// (selfOrChildren true) or to what it propagates to its children (false);
// when neither applies, the parent-propagated value is kept.
func resolveMode(mode OverrideMode, selfOrChildren bool) (useLocal, useGlobal bool) {
	switch mode {
	case LocalSelfAndChildren:
		return true, false
	case LocalSelfOnly:
		return selfOrChildren, false // true => self
	case LocalChildrenOnly:
		return !selfOrChildren, false // true => children
	case GlobalSelfAndChildren:
		return false, true
	case GlobalSelfOnly:
		return false, selfOrChildren
	case GlobalChildrenOnly:
		return false, !selfOrChildren
	default: // InheritSelfAndChildren
		return false, false
	}
}

// EffectiveSettings computes the settings a rule/token actually parses with,
// combining what was propagated from its parent, its own local settings, and
// the parser-wide global defaults (spec §3: "Effective settings are computed
// by combining parent-propagated, local, and global defaults according to
// the override modes").
//
// selfOrChildren distinguishes evaluating the element itself (true) from
// evaluating what gets propagated to its children (false); see OverrideMode.
func EffectiveSettings(parent, local, global Settings, selfOrChildren bool) Settings {
	eff := parent

	if useLocal, useGlobal := resolveMode(local.SkipStrategyMode, selfOrChildren); useLocal {
		eff.SkipStrategy = local.SkipStrategy
	} else if useGlobal {
		eff.SkipStrategy = global.SkipStrategy
	}

	if useLocal, useGlobal := resolveMode(local.SkipRuleMode, selfOrChildren); useLocal {
		eff.SkipRule = local.SkipRule
	} else if useGlobal {
		eff.SkipRule = global.SkipRule
	}

	if useLocal, useGlobal := resolveMode(local.ErrorHandlingMode, selfOrChildren); useLocal {
		eff.ErrorHandling = local.ErrorHandling
	} else if useGlobal {
		eff.ErrorHandling = global.ErrorHandling
	}

	if useLocal, useGlobal := resolveMode(local.IgnoreBarriersMode, selfOrChildren); useLocal {
		eff.IgnoreBarriers = local.IgnoreBarriers
	} else if useGlobal {
		eff.IgnoreBarriers = global.IgnoreBarriers
	}

	return eff
}
