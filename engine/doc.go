// Copyright © 2022-2026 RomeCore contributors

// Package engine implements the cursor-based parse interpreter described by
// spec §4.2-§4.5: the per-call Context, the skip-strategy table, the rule
// and token interpreters dispatching on grammar.RuleKind/grammar.TokenKind,
// the barrier tokenizers (indent-sensitivity and a lexmachine-driven regex
// variant), memoization, and error-recovery execution. Grounded on
// lr/tables.go's closure-construction worklists and lr/scanner's tokenizer
// adapter shape; it depends on grammar and ast but neither of those depends
// back on it.
package engine
