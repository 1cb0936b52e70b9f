package value

import "fmt"

// Kind tags the dynamic type carried by a Value.
//
//go:generate stringer -type Kind
type Kind int8

const (
	// None is the zero Value, representing "no value computed".
	None Kind = iota
	Bool
	Number
	String
	Slice
	Map
	Token
	User
	Err
)

// Value is a generic tagged value. It is the only vehicle the core engine
// uses to carry a token's computed value, a rule's intermediate value, and a
// user value-factory's result — the core never reflects on the Go type a
// caller's factory or token returns, it only stores and forwards it.
type Value struct {
	kind Kind
	data interface{}
}

// Nil is the canonical empty value.
var Nil = Value{}

// Of wraps an arbitrary Go value into a Value, tagging it by dynamic type.
func Of(v interface{}) Value {
	if v == nil {
		return Nil
	}
	if val, ok := v.(Value); ok {
		return val
	}
	val := Value{data: v}
	switch v.(type) {
	case bool:
		val.kind = Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		val.kind = Number
	case string:
		val.kind = String
	case []Value:
		val.kind = Slice
	case map[string]Value:
		val.kind = Map
	case error:
		val.kind = Err
	default:
		val.kind = User
	}
	return val
}

// OfToken wraps a computed token value, tagged distinctly so AST consumers
// can distinguish "came from a token leaf" from "came from a rule factory".
func OfToken(v interface{}) Value {
	val := Of(v)
	val.kind = Token
	return val
}

// ErrorValue wraps an error as a Value, used by FailIf/custom rules to carry a
// user-supplied failure message alongside the parsing error (spec §7).
func ErrorValue(err error) Value {
	return Value{kind: Err, data: err}
}

// Kind returns the dynamic tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value carries nothing.
func (v Value) IsNil() bool { return v.kind == None }

// Raw returns the underlying Go value, for callers that already know the
// concrete type (the "caller responsibility" from spec §9).
func (v Value) Raw() interface{} { return v.data }

// AsSlice returns the value as []Value, or nil if it does not carry a slice.
func (v Value) AsSlice() []Value {
	if s, ok := v.data.([]Value); ok {
		return s
	}
	return nil
}

// AsMap returns the value as map[string]Value, or nil if it does not carry a map.
func (v Value) AsMap() map[string]Value {
	if m, ok := v.data.(map[string]Value); ok {
		return m
	}
	return nil
}

func (v Value) String() string {
	if v.kind == None {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v.data)
}
