package vm

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a NALM runtime datum: a closed tagged union over integer, float,
// string, boolean and empty. Only the field selected by kind is meaningful.
// The zero Value is Empty.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool

	// lit is the source text of a number pushed as a literal when it
	// differs from the canonical rendering ("007", "1e3"). PRINT and
	// STRING show it verbatim; arithmetic results drop it.
	lit string
}

// Empty is the value pushed by a PUSH without operand.
var Empty = Value{}

// FromInt returns an integer value.
func FromInt(i int64) Value { return Value{kind: KindInt, i: i} }

// FromFloat returns a float value.
func FromFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// FromString returns a string value.
func FromString(s string) Value { return Value{kind: KindString, s: s} }

// FromBool returns a boolean value.
func FromBool(b bool) Value { return Value{kind: KindBool, b: b} }

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the empty value.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Int returns the integer payload. It is 0 unless v is an integer.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. It is 0 unless v is a float.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload. It is "" unless v is a string; use
// String for the canonical text of any value.
func (v Value) Str() string { return v.s }

// Bool returns the boolean payload. It is false unless v is a boolean.
func (v Value) Bool() bool { return v.b }

// String returns the canonical text of v. PRINT, STRING and variable keys
// all go through this, and the generated program formats values the same way.
func (v Value) String() string {
	if v.lit != "" {
		return v.lit
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// GoString is used by %#v and test failure messages.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	if v.kind == KindEmpty {
		return "<empty>"
	}
	return v.String()
}

// FormatFloat renders f with the shortest round-trip representation and
// appends ".0" when the result would otherwise read as an integer.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

var floatLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseLiteral resolves the tag of a PUSH operand. Integers win over floats,
// floats over booleans, and anything else is a string. The empty literal
// (PUSH without operand) is Empty.
func ParseLiteral(text string, present bool) Value {
	if !present {
		return Empty
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return withLiteral(FromInt(i), text)
	}
	if floatLiteral.MatchString(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return withLiteral(FromFloat(f), text)
		}
	}
	switch strings.ToLower(text) {
	case "true":
		return FromBool(true)
	case "false":
		return FromBool(false)
	}
	return FromString(text)
}

func withLiteral(v Value, text string) Value {
	if v.String() != text {
		v.lit = text
	}
	return v
}
