package vm

import (
	"errors"
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b Value) (Value, error)
		a, b Value
		want Value
	}{
		{"int add", Add, FromInt(3), FromInt(4), FromInt(7)},
		{"float add", Add, FromFloat(1.5), FromFloat(2.25), FromFloat(3.75)},
		{"string add", Add, FromString("foo"), FromString("bar"), FromString("foobar")},
		{"sub order", Sub, FromInt(10), FromInt(3), FromInt(7)},
		{"float sub", Sub, FromFloat(1), FromFloat(3), FromFloat(-2)},
		{"mul", Mul, FromInt(6), FromInt(7), FromInt(42)},
		{"div truncates", Div, FromInt(7), FromInt(2), FromInt(3)},
		{"div truncates toward zero", Div, FromInt(-7), FromInt(2), FromInt(-3)},
		{"float div", Div, FromFloat(1), FromFloat(4), FromFloat(0.25)},
		{"mod sign of dividend", Mod, FromInt(-7), FromInt(2), FromInt(-1)},
		{"float mod", Mod, FromFloat(7.5), FromFloat(2), FromFloat(1.5)},
		{"min", Min, FromInt(2), FromInt(9), FromInt(2)},
		{"max", Max, FromInt(2), FromInt(9), FromInt(9)},
		{"string min", Min, FromString("b"), FromString("a"), FromString("a")},
		{"and", And, FromBool(true), FromBool(false), FromBool(false)},
		{"or", Or, FromBool(true), FromBool(false), FromBool(true)},
	}
	for _, tt := range tests {
		got, err := tt.fn(tt.a, tt.b)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b Value) (Value, error)
		a, b Value
	}{
		{"div by zero", Div, FromInt(10), FromInt(0)},
		{"float div by zero", Div, FromFloat(1), FromFloat(0)},
		{"mod by zero", Mod, FromInt(10), FromInt(0)},
		{"mixed add", Add, FromInt(1), FromFloat(1)},
		{"string sub", Sub, FromString("a"), FromString("b")},
		{"bool mul", Mul, FromBool(true), FromBool(true)},
		{"empty add", Add, Empty, Empty},
		{"bool min", Min, FromBool(true), FromBool(false)},
		{"int and", And, FromInt(1), FromInt(1)},
	}
	for _, tt := range tests {
		if _, err := tt.fn(tt.a, tt.b); !errors.Is(err, ErrInvalidOperand) {
			t.Errorf("%s error = %v, want ErrInvalidOperand", tt.name, err)
		}
	}
}

func TestMinMaxTiesKeepLeft(t *testing.T) {
	a, b := FromFloat(0), FromFloat(math.Copysign(0, -1))
	got, err := Min(a, b)
	if err != nil || math.Signbit(got.Float()) {
		t.Errorf("Min(0, -0) = %#v, %v; want the left operand", got, err)
	}
	got, err = Max(b, a)
	if err != nil || !math.Signbit(got.Float()) {
		t.Errorf("Max(-0, 0) = %#v, %v; want the left operand", got, err)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{FromInt(1), FromInt(1), true},
		{FromInt(1), FromInt(2), false},
		{FromString("x"), FromString("x"), true},
		{FromBool(false), FromBool(false), true},
		{Empty, Empty, true},
		{FromFloat(math.NaN()), FromFloat(math.NaN()), false},
	}
	for _, tt := range tests {
		got, err := Equal(tt.a, tt.b)
		if err != nil || got != tt.want {
			t.Errorf("Equal(%#v, %#v) = %v, %v; want %v", tt.a, tt.b, got, err, tt.want)
		}
	}
	if _, err := Equal(FromInt(1), FromFloat(1)); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("Equal(int, float) error = %v, want ErrInvalidOperand", err)
	}
}

func TestNot(t *testing.T) {
	got, err := Not(FromBool(true))
	if err != nil || got != FromBool(false) {
		t.Errorf("Not(true) = %#v, %v", got, err)
	}
	if _, err := Not(FromInt(0)); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("Not(0) error = %v, want ErrInvalidOperand", err)
	}
}

func TestCoercions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(Value) (Value, error)
		in   Value
		want Value
	}{
		{"int of float", ToInt, FromFloat(3.9), FromInt(3)},
		{"int of negative float", ToInt, FromFloat(-3.9), FromInt(-3)},
		{"int of string", ToInt, FromString(" 12 "), FromInt(12)},
		{"int of int", ToInt, FromInt(5), FromInt(5)},
		{"float of int", ToFloat, FromInt(2), FromFloat(2)},
		{"float of string", ToFloat, FromString("2.5"), FromFloat(2.5)},
		{"string of float", toStringValue, FromFloat(2), FromString("2.0")},
		{"string of bool", toStringValue, FromBool(true), FromString("true")},
		{"string of empty", toStringValue, Empty, FromString("")},
	}
	for _, tt := range tests {
		got, err := tt.fn(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("%s = %#v, %v; want %#v", tt.name, got, err, tt.want)
		}
	}

	bad := []struct {
		name string
		fn   func(Value) (Value, error)
		in   Value
	}{
		{"int of nan", ToInt, FromFloat(math.NaN())},
		{"int of huge", ToInt, FromFloat(1e300)},
		{"int of word", ToInt, FromString("abc")},
		{"int of bool", ToInt, FromBool(true)},
		{"float of word", ToFloat, FromString("abc")},
		{"float of empty", ToFloat, Empty},
	}
	for _, tt := range bad {
		if _, err := tt.fn(tt.in); !errors.Is(err, ErrInvalidOperand) {
			t.Errorf("%s error = %v, want ErrInvalidOperand", tt.name, err)
		}
	}
}
