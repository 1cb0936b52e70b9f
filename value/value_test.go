package value_test

import (
	"errors"
	"testing"

	"github.com/RomeCore/rcparsing-go/value"
)

func TestOfKindTagging(t *testing.T) {
	cases := []struct {
		in   interface{}
		kind value.Kind
	}{
		{nil, value.None},
		{true, value.Bool},
		{42, value.Number},
		{3.14, value.Number},
		{"hi", value.String},
		{[]value.Value{value.Of(1)}, value.Slice},
		{map[string]value.Value{"a": value.Of(1)}, value.Map},
		{errors.New("boom"), value.Err},
		{struct{ X int }{1}, value.User},
	}
	for _, c := range cases {
		got := value.Of(c.in).Kind()
		if got != c.kind {
			t.Errorf("Of(%#v).Kind() = %v, want %v", c.in, got, c.kind)
		}
	}
}

func TestOfValueIsIdempotent(t *testing.T) {
	v := value.Of(5)
	wrapped := value.Of(v)
	if wrapped != v {
		t.Errorf("Of(Value) should return the same Value unchanged, got %#v want %#v", wrapped, v)
	}
}

func TestOfTokenTagsAsToken(t *testing.T) {
	v := value.OfToken("+")
	if v.Kind() != value.Token {
		t.Fatalf("OfToken kind = %v, want Token", v.Kind())
	}
	if v.Raw() != "+" {
		t.Fatalf("OfToken raw = %v, want '+'", v.Raw())
	}
}

func TestErrorValue(t *testing.T) {
	err := errors.New("bad input")
	v := value.ErrorValue(err)
	if v.Kind() != value.Err {
		t.Fatalf("ErrorValue kind = %v, want Err", v.Kind())
	}
	if v.Raw() != err {
		t.Fatalf("ErrorValue raw mismatch")
	}
}

func TestNilValueIsNil(t *testing.T) {
	if !value.Nil.IsNil() {
		t.Fatal("value.Nil.IsNil() should be true")
	}
	if !value.Of(nil).IsNil() {
		t.Fatal("Of(nil).IsNil() should be true")
	}
	if value.Of(0).IsNil() {
		t.Fatal("Of(0) should not be nil (zero is still a Number)")
	}
}

func TestAsSliceAndAsMap(t *testing.T) {
	s := value.Of([]value.Value{value.Of(1), value.Of(2)})
	if got := s.AsSlice(); len(got) != 2 {
		t.Fatalf("AsSlice() = %v, want length 2", got)
	}
	if got := s.AsMap(); got != nil {
		t.Fatalf("AsMap() on a slice value should be nil, got %v", got)
	}

	m := value.Of(map[string]value.Value{"k": value.Of("v")})
	if got := m.AsMap(); len(got) != 1 || got["k"].Raw() != "v" {
		t.Fatalf("AsMap() = %v, want map with k=v", got)
	}
	if got := m.AsSlice(); got != nil {
		t.Fatalf("AsSlice() on a map value should be nil, got %v", got)
	}
}

func TestValueStringFormatting(t *testing.T) {
	if value.Nil.String() != "<nil>" {
		t.Fatalf("Nil.String() = %q, want <nil>", value.Nil.String())
	}
	if value.Of(42).String() != "42" {
		t.Fatalf("Of(42).String() = %q, want 42", value.Of(42).String())
	}
}
