package engine

import (
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/perror"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'rcparsing.engine'.
func tracer() tracing.Trace {
	return tracing.Select("rcparsing.engine")
}

// Context is the per-parse-call mutable state threaded through every
// interpreter call (spec §3, §5): single-threaded, no suspension points, no
// locking required.
type Context struct {
	Input       string
	Position    int
	MaxPosition int

	Parser *grammar.Parser

	Barriers       []grammar.Barrier
	PassedBarriers int

	Parameter interface{}

	Errors    *perror.Accumulator
	Memo      *Memo
	WalkTrace *perror.WalkTrace

	occurrence map[grammar.RuleID]int
	stack      *perror.StackFrame
	depth      int
}

// MaxRecursionDepth bounds the rule-interpreter call stack (spec §9's
// fallback for non-trivial left recursion, which the builder's acyclicity
// check cannot detect statically: any left recursion that only becomes
// apparent at runtime, e.g. through an Custom rule or an If/Switch branch,
// hits this bound instead of overflowing the Go stack).
const MaxRecursionDepth = 4096

// pushFrame records id on the ancestor stack (spec §4.4 stack_frame),
// returning a function that pops it again; cheap enough to call
// unconditionally. The chain is attached to a recorded error only when
// Config.WriteStackTrace is set.
func (c *Context) pushFrame(id grammar.RuleID, label string) func() {
	prev := c.stack
	c.stack = &perror.StackFrame{RuleID: id, Label: label, Parent: prev}
	c.depth++
	return func() { c.stack = prev; c.depth-- }
}

// tooDeep reports whether the current call stack has exceeded
// MaxRecursionDepth, the runtime backstop for left recursion the builder's
// static check (grammar.checkLeftRecursion) cannot see.
func (c *Context) tooDeep() bool {
	return c.depth > MaxRecursionDepth
}

// NewContext allocates a Context for one parse call. barriers must already
// be fully materialised and sorted by position, equal positions allowed;
// pass nil when no barrier tokenizer is active.
func NewContext(p *grammar.Parser, input string, parameter interface{}, barriers []grammar.Barrier) *Context {
	cfg := p.Defaults
	ctx := &Context{
		Input:       input,
		Position:    0,
		MaxPosition: len(input),
		Parser:      p,
		Barriers:    barriers,
		Parameter:   parameter,
		Errors:      perror.NewAccumulator(cfg.IgnoreErrors, cfg.DetailedErrors),
		occurrence:  make(map[grammar.RuleID]int),
	}
	if cfg.UseCaching {
		ctx.Memo = NewMemo()
	}
	if cfg.RecordWalkTrace {
		ctx.WalkTrace = perror.NewWalkTrace()
	}
	return ctx
}

// nextBarrierPosition returns the position of the next unconsumed barrier,
// or MaxPosition when none remain (spec §4.2: "the cursor is bounded by
// min(end_of_input, position_of_next_barrier)").
func (c *Context) nextBarrierPosition() int {
	if c.PassedBarriers >= len(c.Barriers) {
		return c.MaxPosition
	}
	return c.Barriers[c.PassedBarriers].Position
}

// bound is the furthest position a rule/token may consume up to right now.
func (c *Context) bound() int {
	nb := c.nextBarrierPosition()
	if nb < c.MaxPosition {
		return nb
	}
	return c.MaxPosition
}

// consumeBarrierAt advances PassedBarriers past a barrier exactly at pos,
// if one is pending there; reports whether one was consumed.
func (c *Context) consumeBarrierAt(pos int) (grammar.Barrier, bool) {
	if c.PassedBarriers < len(c.Barriers) && c.Barriers[c.PassedBarriers].Position == pos {
		b := c.Barriers[c.PassedBarriers]
		c.PassedBarriers++
		return b, true
	}
	return grammar.Barrier{}, false
}

// nextOccurrence returns a monotonically increasing per-rule occurrence
// counter (spec §3 ParsedRule.occurrence), for diagnostics that want to
// distinguish repeated matches of the same rule.
func (c *Context) nextOccurrence(id grammar.RuleID) int {
	n := c.occurrence[id]
	c.occurrence[id] = n + 1
	return n
}
