package vm

import (
	"math"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		text    string
		present bool
		kind    Kind
		str     string
		num     float64
	}{
		{"", false, KindEmpty, "", 0},
		{"42", true, KindInt, "42", 42},
		{"-7", true, KindInt, "-7", -7},
		{"+3", true, KindInt, "+3", 3},
		{"007", true, KindInt, "007", 7},
		{"3.14", true, KindFloat, "3.14", 3.14},
		{"2.", true, KindFloat, "2.", 2},
		{".5", true, KindFloat, ".5", 0.5},
		{"1e3", true, KindFloat, "1e3", 1000},
		{"1.0", true, KindFloat, "1.0", 1},
		{"1e999", true, KindString, "1e999", 0},
		{"NaN", true, KindString, "NaN", 0},
		{"Inf", true, KindString, "Inf", 0},
		{"0x10", true, KindString, "0x10", 0},
		{"true", true, KindBool, "true", 0},
		{"FALSE", true, KindBool, "false", 0},
		{"True", true, KindBool, "true", 0},
		{"hello", true, KindString, "hello", 0},
		{"99999999999999999999", true, KindFloat, "99999999999999999999", 1e20},
	}
	for _, tt := range tests {
		got := ParseLiteral(tt.text, tt.present)
		if got.Kind() != tt.kind || got.String() != tt.str {
			t.Errorf("ParseLiteral(%q, %v) = %s %q, want %s %q", tt.text, tt.present, got.Kind(), got.String(), tt.kind, tt.str)
		}
		switch tt.kind {
		case KindInt:
			if float64(got.Int()) != tt.num {
				t.Errorf("ParseLiteral(%q).Int() = %d, want %v", tt.text, got.Int(), tt.num)
			}
		case KindFloat:
			if got.Float() != tt.num {
				t.Errorf("ParseLiteral(%q).Float() = %v, want %v", tt.text, got.Float(), tt.num)
			}
		}
	}
}

func TestCanonicalLiteralsEqualConstructors(t *testing.T) {
	if got := ParseLiteral("42", true); got != FromInt(42) {
		t.Errorf("ParseLiteral(42) = %#v, want FromInt(42)", got)
	}
	if got := ParseLiteral("2.5", true); got != FromFloat(2.5) {
		t.Errorf("ParseLiteral(2.5) = %#v, want FromFloat(2.5)", got)
	}
}

func TestLiteralTextDroppedByArithmetic(t *testing.T) {
	a := ParseLiteral("007", true)
	sum, err := Add(a, FromInt(0))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := sum.String(); got != "7" {
		t.Errorf("007 + 0 = %q, want 7", got)
	}
	i, err := ToInt(a)
	if err != nil {
		t.Fatalf("ToInt: %v", err)
	}
	if got := i.String(); got != "7" {
		t.Errorf("INT of 007 = %q, want 7", got)
	}
	if got := ToString(a).String(); got != "007" {
		t.Errorf("STRING of 007 = %q, want 007", got)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Empty, ""},
		{FromInt(-12), "-12"},
		{FromFloat(4), "4.0"},
		{FromFloat(2.5), "2.5"},
		{FromFloat(1e21), "1e+21"},
		{FromFloat(math.Inf(1)), "+Inf"},
		{FromFloat(math.NaN()), "NaN"},
		{FromFloat(math.Copysign(0, -1)), "-0.0"},
		{FromString("a b"), "a b"},
		{FromBool(true), "true"},
		{FromBool(false), "false"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := KindFloat.String(); got != "float" {
		t.Errorf("KindFloat.String() = %q, want float", got)
	}
	if got := Kind(9).String(); got != "kind(9)" {
		t.Errorf("Kind(9).String() = %q, want kind(9)", got)
	}
}

func TestZeroValueIsEmpty(t *testing.T) {
	var v Value
	if !v.IsEmpty() || v.Kind() != KindEmpty {
		t.Errorf("zero Value kind = %v, want empty", v.Kind())
	}
}
