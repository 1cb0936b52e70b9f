package engine

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RomeCore/rcparsing-go/ast"
	"github.com/RomeCore/rcparsing-go/grammar"
	"github.com/RomeCore/rcparsing-go/perror"
	"github.com/RomeCore/rcparsing-go/value"
)

// NumberFlags bit values recognised by the minimal Number token primitive
// (spec §3 "Number(flags, numeric_kind)"; spec §1 treats the concrete
// primitives as external-collaborator contracts — this is the minimal set
// needed to drive the interpreter end-to-end, per SPEC_FULL.md §C).
const (
	NumberAllowSign grammar.NumberFlags = 1 << iota
	NumberAllowFraction
	NumberAllowExponent
)

// ParseToken is the token interpreter's exported entry point, the
// token-side twin of ParseRule (spec §4.2's per-kind behaviour + spec §3's
// TokenPattern variants). Tokens never carry Children in the returned
// ParsedRule (spec §3: "children ... empty for tokens").
func ParseToken(ctx *Context, id grammar.TokenID, settings grammar.Settings) (ast.ParsedRule, bool) {
	return parseTokenAt(ctx, id, settings)
}

func parseTokenAt(ctx *Context, id grammar.TokenID, settings grammar.Settings) (ast.ParsedRule, bool) {
	start := ctx.Position
	length, val, ok := matchToken(ctx, id, start)
	if !ok {
		ctx.Position = start
		recordTokenFailure(ctx, id, start, settings)
		return ast.ParsedRule{}, false
	}
	ctx.Position = start + length
	return ast.ParsedRule{
		TokenID: id, IsToken: true,
		Start: start, Length: length,
		IntermediateValue: val,
	}, true
}

func recordTokenFailure(ctx *Context, id grammar.TokenID, pos int, settings grammar.Settings) {
	var stack *perror.StackFrame
	if ctx.Parser.Defaults.WriteStackTrace {
		stack = ctx.stack
	}
	ctx.Errors.Handle(perror.ParsingError{
		Position: pos, ElementID: int(id), IsToken: true,
		Message: "expected " + tokenLabel(ctx.Parser, id), Stack: stack,
	}, settings.ErrorHandling)
}

func tokenLabel(p *grammar.Parser, id grammar.TokenID) string {
	t := p.Token(id)
	if len(t.Aliases) > 0 {
		return t.Aliases[0]
	}
	return "token"
}

// matchToken matches token id at pos, honouring a default ValueFactory
// override (spec §3: "Each token carries ... default value-factory") before
// returning the combinator's natural value.
func matchToken(ctx *Context, id grammar.TokenID, pos int) (int, value.Value, bool) {
	t := ctx.Parser.Token(id)
	length, val, ok := matchTokenKind(ctx, t, pos)
	if !ok {
		return 0, value.Nil, false
	}
	if t.ValueFactory != nil {
		val = t.ValueFactory(safeSlice(ctx.Input, pos, pos+length))
	}
	return length, val, true
}

func safeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		return ""
	}
	return s[start:end]
}

func matchTokenKind(ctx *Context, t *grammar.TokenPattern, pos int) (int, value.Value, bool) {
	bound := ctx.bound()
	switch t.Kind {
	case grammar.TLiteral:
		return matchLiteral(ctx, t.Literal, t.CaseSensitive, pos, bound)
	case grammar.TLiteralChar:
		return matchLiteralChar(ctx, t.Char, t.CaseSensitive, pos, bound)
	case grammar.TLiteralChoice:
		return matchLiteralChoice(ctx, t.Alternatives, t.CaseSensitive, pos, bound)
	case grammar.TKeyword:
		return matchKeyword(ctx, t, pos, bound)
	case grammar.TRegex:
		return matchRegex(ctx, t, pos, bound)
	case grammar.TIdentifier:
		return matchIdentifier(ctx, pos, bound)
	case grammar.TNumber:
		return matchNumber(ctx, t, pos, bound)
	case grammar.TWhitespaces:
		return matchWhitespaces(ctx, pos, bound)
	case grammar.TNewline:
		return matchNewline(ctx, pos, bound)
	case grammar.TEmpty:
		return 0, value.Nil, true
	case grammar.TFail:
		return 0, value.Nil, false
	case grammar.TEOF:
		if pos >= ctx.MaxPosition {
			return 0, value.Nil, true
		}
		return 0, value.Nil, false
	case grammar.TBarrier:
		return matchBarrier(ctx, t, pos)
	case grammar.TEscapedTextPrefix:
		return matchEscapedTextPrefix(ctx, t, pos, bound)
	case grammar.TEscapedTextDoubleChars:
		return matchEscapedTextDoubleChars(ctx, t, pos, bound)
	case grammar.TTextUntil:
		return matchTextUntil(ctx, t, pos, bound)
	case grammar.TOneOrMoreChars:
		return matchCharsRun(ctx, t.CharPredicate, pos, bound, 1)
	case grammar.TZeroOrMoreChars:
		return matchCharsRun(ctx, t.CharPredicate, pos, bound, 0)
	case grammar.TSequence:
		return matchTokenSequence(ctx, t, pos, bound)
	case grammar.TChoice:
		return matchTokenChoice(ctx, t, pos, bound)
	case grammar.TRepeat:
		return matchTokenRepeat(ctx, t, pos, bound)
	case grammar.TSeparatedRepeat:
		return matchTokenSeparatedRepeat(ctx, t, pos, bound)
	case grammar.TOptional:
		if l, v, ok := matchToken(ctx, t.Child, pos); ok {
			return l, v, true
		}
		if t.HasFallback {
			return 0, t.FallbackValue, true
		}
		return 0, value.Nil, true
	case grammar.TBetween:
		return matchTokenBetween(ctx, t, pos, bound)
	case grammar.TFirst:
		return matchTokenFirstSecond(ctx, t, pos, bound, true)
	case grammar.TSecond:
		return matchTokenFirstSecond(ctx, t, pos, bound, false)
	case grammar.TMap:
		l, v, ok := matchToken(ctx, t.Child, pos)
		if !ok {
			return 0, value.Nil, false
		}
		if t.MapFunc != nil {
			v = t.MapFunc(v)
		}
		return l, v, true
	case grammar.TMapSpan:
		l, v, ok := matchToken(ctx, t.Child, pos)
		if !ok {
			return 0, value.Nil, false
		}
		if t.MapSpanFunc != nil {
			v = t.MapSpanFunc(safeSlice(ctx.Input, pos, pos+l), v)
		}
		return l, v, true
	case grammar.TReturn:
		return 0, t.ReturnValue, true
	case grammar.TCaptureText:
		l, _, ok := matchToken(ctx, t.Child, pos)
		if !ok {
			return 0, value.Nil, false
		}
		text := safeSlice(ctx.Input, pos, pos+l)
		if t.TrimStart {
			text = strings.TrimLeft(text, " \t\r\n")
		}
		if t.TrimEnd {
			text = strings.TrimRight(text, " \t\r\n")
		}
		return l, value.Of(text), true
	case grammar.TSkipWhitespaces:
		p := pos
		for p < bound && isSpaceByte(ctx.Input[p]) {
			p++
		}
		l, v, ok := matchToken(ctx, t.Child, p)
		if !ok {
			return 0, value.Nil, false
		}
		return (p - pos) + l, v, true
	case grammar.TLookahead:
		_, _, matched := matchToken(ctx, t.Child, pos)
		if matched == t.Positive {
			return 0, value.Nil, true
		}
		return 0, value.Nil, false
	case grammar.TIf:
		branch := t.Then
		if t.Predicate != nil && t.Predicate(ctx.Parameter) == 0 {
			branch = t.Else
		}
		if branch == grammar.NoToken {
			return 0, value.Nil, false
		}
		return matchToken(ctx, branch, pos)
	case grammar.TSwitch:
		branch := t.Default
		if t.Selector != nil {
			if sel := t.Selector(ctx.Parameter); sel >= 0 && sel < len(t.Branches) {
				branch = t.Branches[sel]
			}
		}
		if branch == grammar.NoToken {
			return 0, value.Nil, false
		}
		return matchToken(ctx, branch, pos)
	case grammar.TFailIf:
		l, v, ok := matchToken(ctx, t.Child, pos)
		if !ok {
			return 0, value.Nil, false
		}
		if t.FailPredicate != nil && t.FailPredicate(v) {
			return 0, value.Nil, false
		}
		return l, v, true
	case grammar.TCustom:
		return matchTokenCustom(ctx, t, pos)
	default:
		return 0, value.Nil, false
	}
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func matchLiteral(ctx *Context, text string, caseSensitive bool, pos, bound int) (int, value.Value, bool) {
	if text == "" {
		return 0, value.Of(""), true
	}
	end := pos + len(text)
	if end > bound {
		return 0, value.Nil, false
	}
	got := ctx.Input[pos:end]
	if caseSensitive {
		if got != text {
			return 0, value.Nil, false
		}
	} else if !strings.EqualFold(got, text) {
		return 0, value.Nil, false
	}
	return len(text), value.Of(got), true
}

func matchLiteralChar(ctx *Context, c rune, caseSensitive bool, pos, bound int) (int, value.Value, bool) {
	if pos >= bound {
		return 0, value.Nil, false
	}
	r, size := utf8.DecodeRuneInString(ctx.Input[pos:bound])
	match := r == c
	if !match && !caseSensitive {
		match = unicode.ToLower(r) == unicode.ToLower(c)
	}
	if !match {
		return 0, value.Nil, false
	}
	return size, value.Of(r), true
}

func matchLiteralChoice(ctx *Context, alts []string, caseSensitive bool, pos, bound int) (int, value.Value, bool) {
	best := -1
	for _, alt := range alts {
		end := pos + len(alt)
		if end > bound || end-pos <= best {
			continue
		}
		got := ctx.Input[pos:end]
		matched := got == alt
		if !matched && !caseSensitive {
			matched = strings.EqualFold(got, alt)
		}
		if matched {
			best = end - pos
		}
	}
	if best < 0 {
		return 0, value.Nil, false
	}
	return best, value.Of(ctx.Input[pos : pos+best]), true
}

// matchKeyword matches a literal prefix that must be followed by a
// terminator: either end of input, or a rune for which TerminatorPredicate
// returns true (spec §3 "Keyword(terminator_predicate)" — read here as "the
// rune following the literal terminates the keyword", the usual meaning of
// a keyword boundary check; see DESIGN.md).
func matchKeyword(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	end := pos + len(t.Literal)
	if end > bound {
		return 0, value.Nil, false
	}
	got := ctx.Input[pos:end]
	if t.CaseSensitive {
		if got != t.Literal {
			return 0, value.Nil, false
		}
	} else if !strings.EqualFold(got, t.Literal) {
		return 0, value.Nil, false
	}
	if end >= bound {
		return len(t.Literal), value.Of(got), true
	}
	r, _ := utf8.DecodeRuneInString(ctx.Input[end:bound])
	if t.TerminatorPredicate != nil && !t.TerminatorPredicate(r) {
		return 0, value.Nil, false
	}
	return len(t.Literal), value.Of(got), true
}

func matchRegex(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	if t.RegexPattern == nil {
		return 0, value.Nil, false
	}
	loc := t.RegexPattern.FindStringIndex(ctx.Input[pos:bound])
	if loc == nil || loc[0] != 0 {
		return 0, value.Nil, false
	}
	return loc[1], value.Of(ctx.Input[pos : pos+loc[1]]), true
}

func matchIdentifier(ctx *Context, pos, bound int) (int, value.Value, bool) {
	if pos >= bound {
		return 0, value.Nil, false
	}
	r, size := utf8.DecodeRuneInString(ctx.Input[pos:bound])
	if !unicode.IsLetter(r) && r != '_' {
		return 0, value.Nil, false
	}
	p := pos + size
	for p < bound {
		r, size = utf8.DecodeRuneInString(ctx.Input[p:bound])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		p += size
	}
	return p - pos, value.Of(ctx.Input[pos:p]), true
}

func matchWhitespaces(ctx *Context, pos, bound int) (int, value.Value, bool) {
	p := pos
	for p < bound {
		r, size := utf8.DecodeRuneInString(ctx.Input[p:bound])
		if !unicode.IsSpace(r) {
			break
		}
		p += size
	}
	if p == pos {
		return 0, value.Nil, false
	}
	return p - pos, value.Of(ctx.Input[pos:p]), true
}

func matchNewline(ctx *Context, pos, bound int) (int, value.Value, bool) {
	if pos >= bound {
		return 0, value.Nil, false
	}
	if ctx.Input[pos] == '\n' {
		return 1, value.Of("\n"), true
	}
	if ctx.Input[pos] == '\r' {
		if pos+1 < bound && ctx.Input[pos+1] == '\n' {
			return 2, value.Of("\r\n"), true
		}
		return 1, value.Of("\r"), true
	}
	return 0, value.Nil, false
}

func matchBarrier(ctx *Context, t *grammar.TokenPattern, pos int) (int, value.Value, bool) {
	b, ok := ctx.consumeBarrierAt(pos)
	if !ok || b.Alias != t.BarrierAlias {
		return 0, value.Nil, false
	}
	return b.Length, value.Of(b.Alias), true
}

// matchEscapedTextPrefix consumes Literal (the escape prefix, e.g. `\`)
// followed by exactly one more rune — the escaped character — as a single
// unit (spec §3 "EscapedTextPrefix"; see DESIGN.md for the reading adopted
// since the spec specifies this only by contract).
func matchEscapedTextPrefix(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	end := pos + len(t.Literal)
	if end > bound || ctx.Input[pos:end] != t.Literal {
		return 0, value.Nil, false
	}
	if end >= bound {
		return 0, value.Nil, false
	}
	_, size := utf8.DecodeRuneInString(ctx.Input[end:bound])
	total := end + size - pos
	return total, value.Of(ctx.Input[pos : pos+total]), true
}

// matchEscapedTextDoubleChars matches EscapeChar appearing twice in a row
// (e.g. `""` representing an escaped quote inside a quoted string).
func matchEscapedTextDoubleChars(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	r, size := utf8.DecodeRuneInString(ctx.Input[pos:bound])
	if r != t.EscapeChar || size == 0 {
		return 0, value.Nil, false
	}
	p := pos + size
	if p >= bound {
		return 0, value.Nil, false
	}
	r2, size2 := utf8.DecodeRuneInString(ctx.Input[p:bound])
	if r2 != t.EscapeChar {
		return 0, value.Nil, false
	}
	total := size + size2
	return total, value.Of(ctx.Input[pos : pos+total]), true
}

func matchTextUntil(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	p := pos
	for p < bound {
		if stopLen, _, ok := matchToken(ctx, t.Stop, p); ok {
			if p == pos && !t.AllowEmpty {
				return 0, value.Nil, false
			}
			end := p
			if t.ConsumeStop {
				end = p + stopLen
			}
			return end - pos, value.Of(ctx.Input[pos:end]), true
		}
		_, size := utf8.DecodeRuneInString(ctx.Input[p:bound])
		if size == 0 {
			break
		}
		p += size
	}
	if t.FailOnEOF {
		return 0, value.Nil, false
	}
	if p == pos && !t.AllowEmpty {
		return 0, value.Nil, false
	}
	return p - pos, value.Of(ctx.Input[pos:p]), true
}

func matchCharsRun(ctx *Context, pred func(rune) bool, pos, bound, min int) (int, value.Value, bool) {
	if pred == nil {
		return 0, value.Nil, false
	}
	p := pos
	for p < bound {
		r, size := utf8.DecodeRuneInString(ctx.Input[p:bound])
		if !pred(r) {
			break
		}
		p += size
	}
	if p-pos < min {
		return 0, value.Nil, false
	}
	return p - pos, value.Of(ctx.Input[pos:p]), true
}

// defaultPassageValue combines child values with no explicit Passage
// function (spec §4.6 only defines the combination when a passage is
// supplied): children collapse into a Slice value, leaving interpretation
// to whichever rule-level ValueFactory consumes it.
func defaultPassageValue(children []value.Value) value.Value {
	return value.Of(append([]value.Value(nil), children...))
}

func applyPassage(passage grammar.PassageFunc, children []value.Value) value.Value {
	if passage != nil {
		return passage(children)
	}
	return defaultPassageValue(children)
}

func matchTokenSequence(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	p := pos
	vals := make([]value.Value, 0, len(t.Children))
	for _, c := range t.Children {
		l, v, ok := matchToken(ctx, c, p)
		if !ok {
			return 0, value.Nil, false
		}
		p += l
		vals = append(vals, v)
	}
	return p - pos, applyPassage(t.Passage, vals), true
}

func matchTokenChoice(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	if t.ChoiceMode == grammar.ChoiceFirst {
		for _, c := range t.Choices {
			if l, v, ok := matchToken(ctx, c, pos); ok {
				return l, v, true
			}
		}
		return 0, value.Nil, false
	}
	var bestLen int = -1
	var bestVal value.Value
	for _, c := range t.Choices {
		l, v, ok := matchToken(ctx, c, pos)
		if !ok {
			continue
		}
		if bestLen < 0 {
			bestLen, bestVal = l, v
			continue
		}
		if t.ChoiceMode == grammar.ChoiceShortest && l < bestLen {
			bestLen, bestVal = l, v
		}
		if t.ChoiceMode == grammar.ChoiceLongest && l > bestLen {
			bestLen, bestVal = l, v
		}
	}
	if bestLen < 0 {
		return 0, value.Nil, false
	}
	return bestLen, bestVal, true
}

func matchTokenRepeat(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	p := pos
	var vals []value.Value
	for t.Max == grammar.Unbounded || len(vals) < t.Max {
		l, v, ok := matchToken(ctx, t.RepeatChild, p)
		if !ok {
			break
		}
		if l == 0 {
			vals = append(vals, v)
			break
		}
		p += l
		vals = append(vals, v)
	}
	if len(vals) < t.Min {
		return 0, value.Nil, false
	}
	return p - pos, applyPassage(t.Passage, vals), true
}

func matchTokenSeparatedRepeat(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	p := pos
	var vals []value.Value
	count := 0
	for t.Max == grammar.Unbounded || count < t.Max {
		before := p
		if count > 0 {
			sl, sv, ok := matchToken(ctx, t.Separator, p)
			if !ok {
				p = before
				break
			}
			el, ev, ok2 := matchToken(ctx, t.RepeatChild, p+sl)
			if !ok2 {
				p = before
				break
			}
			if t.IncludeSeparatorsInResult {
				vals = append(vals, sv)
			}
			p += sl + el
			vals = append(vals, ev)
		} else {
			el, ev, ok := matchToken(ctx, t.RepeatChild, p)
			if !ok {
				break
			}
			p += el
			vals = append(vals, ev)
		}
		count++
	}
	if t.AllowTrailingSeparator {
		if sl, sv, ok := matchToken(ctx, t.Separator, p); ok {
			p += sl
			if t.IncludeSeparatorsInResult {
				vals = append(vals, sv)
			}
		}
	}
	if count < t.Min {
		return 0, value.Nil, false
	}
	return p - pos, applyPassage(t.Passage, vals), true
}

func matchTokenBetween(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	if len(t.Children) != 3 {
		return 0, value.Nil, false
	}
	ol, _, ok := matchToken(ctx, t.Children[0], pos)
	if !ok {
		return 0, value.Nil, false
	}
	il, iv, ok := matchToken(ctx, t.Children[1], pos+ol)
	if !ok {
		return 0, value.Nil, false
	}
	cl, _, ok := matchToken(ctx, t.Children[2], pos+ol+il)
	if !ok {
		return 0, value.Nil, false
	}
	return ol + il + cl, iv, true
}

func matchTokenFirstSecond(ctx *Context, t *grammar.TokenPattern, pos, bound int, first bool) (int, value.Value, bool) {
	if len(t.Children) != 2 {
		return 0, value.Nil, false
	}
	l1, v1, ok := matchToken(ctx, t.Children[0], pos)
	if !ok {
		return 0, value.Nil, false
	}
	l2, v2, ok := matchToken(ctx, t.Children[1], pos+l1)
	if !ok {
		return 0, value.Nil, false
	}
	if first {
		return l1 + l2, v1, true
	}
	return l1 + l2, v2, true
}

func matchTokenCustom(ctx *Context, t *grammar.TokenPattern, pos int) (int, value.Value, bool) {
	if t.CustomFunc == nil {
		return 0, value.Nil, false
	}
	res := t.CustomFunc(grammar.CustomTokenContext{Input: ctx.Input, Position: pos, Parameter: ctx.Parameter})
	if !res.Success {
		return 0, value.Nil, false
	}
	return res.Length, res.Value, true
}

// matchNumber matches an integer or floating-point literal per flags
// (spec §3 "Number(flags, numeric_kind)"). Sign/fraction/exponent parts are
// each gated by their respective NumberAllow* flag.
func matchNumber(ctx *Context, t *grammar.TokenPattern, pos, bound int) (int, value.Value, bool) {
	p := pos
	if t.NumberFlags&NumberAllowSign != 0 && p < bound && (ctx.Input[p] == '+' || ctx.Input[p] == '-') {
		p++
	}
	digitsStart := p
	for p < bound && isDigit(ctx.Input[p]) {
		p++
	}
	if p == digitsStart {
		return 0, value.Nil, false
	}
	isFloat := false
	if t.NumberFlags&NumberAllowFraction != 0 && p < bound && ctx.Input[p] == '.' {
		fracStart := p + 1
		q := fracStart
		for q < bound && isDigit(ctx.Input[q]) {
			q++
		}
		if q > fracStart {
			isFloat = true
			p = q
		}
	}
	if t.NumberFlags&NumberAllowExponent != 0 && p < bound && (ctx.Input[p] == 'e' || ctx.Input[p] == 'E') {
		q := p + 1
		if q < bound && (ctx.Input[q] == '+' || ctx.Input[q] == '-') {
			q++
		}
		expDigitsStart := q
		for q < bound && isDigit(ctx.Input[q]) {
			q++
		}
		if q > expDigitsStart {
			isFloat = true
			p = q
		}
	}
	text := ctx.Input[pos:p]
	if t.NumericKind == grammar.NumberFloat || isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, value.Nil, false
		}
		return p - pos, value.Of(f), true
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, value.Nil, false
	}
	return p - pos, value.Of(n), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
