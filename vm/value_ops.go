package vm

import (
	"math"
	"strconv"
	"strings"
)

// Operator semantics shared by the interpreter. Every function matches on
// the full tag combination; anything not listed is ErrInvalidOperand. The
// scaffold of the generated program (compiler/runtime.go.txt) implements the
// same table.

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// Add returns a+b for matching numeric tags, or the concatenation of two
// strings.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return FromInt(a.i + b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return FromFloat(a.f + b.f), nil
	case a.kind == KindString && b.kind == KindString:
		return FromString(a.s + b.s), nil
	}
	return Empty, mismatch("ADD", a, b)
}

// Sub returns a-b.
func Sub(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return FromInt(a.i - b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return FromFloat(a.f - b.f), nil
	}
	return Empty, mismatch("SUB", a, b)
}

// Mul returns a*b.
func Mul(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return FromInt(a.i * b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return FromFloat(a.f * b.f), nil
	}
	return Empty, mismatch("MUL", a, b)
}

// Div returns a/b. Integer division truncates toward zero.
func Div(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Empty, invalidOperand("DIV by zero")
		}
		return FromInt(a.i / b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		if b.f == 0 {
			return Empty, invalidOperand("DIV by zero")
		}
		return FromFloat(a.f / b.f), nil
	}
	return Empty, mismatch("DIV", a, b)
}

// Mod returns the remainder of a/b with the sign of a.
func Mod(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Empty, invalidOperand("MOD by zero")
		}
		return FromInt(a.i % b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		if b.f == 0 {
			return Empty, invalidOperand("MOD by zero")
		}
		return FromFloat(math.Mod(a.f, b.f)), nil
	}
	return Empty, mismatch("MOD", a, b)
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Equal compares two values of the same tag.
func Equal(a, b Value) (bool, error) {
	if a.kind != b.kind {
		return false, mismatch("EQUAL", a, b)
	}
	switch a.kind {
	case KindInt:
		return a.i == b.i, nil
	case KindFloat:
		return a.f == b.f, nil
	case KindString:
		return a.s == b.s, nil
	case KindBool:
		return a.b == b.b, nil
	case KindEmpty:
		return true, nil
	}
	return false, mismatch("EQUAL", a, b)
}

// Compare orders two integers, floats or strings of the same tag and
// returns -1, 0 or +1.
func Compare(cmd string, a, b Value) (int, error) {
	if a.kind != b.kind {
		return 0, mismatch(cmd, a, b)
	}
	switch a.kind {
	case KindInt:
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		}
		return 0, nil
	case KindFloat:
		switch {
		case a.f < b.f:
			return -1, nil
		case a.f > b.f:
			return 1, nil
		}
		return 0, nil
	case KindString:
		return strings.Compare(a.s, b.s), nil
	}
	return 0, invalidOperand("%s cannot order %s values", cmd, a.kind)
}

// Min returns the lesser of a and b; a wins ties.
func Min(a, b Value) (Value, error) {
	c, err := Compare("MIN", a, b)
	if err != nil {
		return Empty, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// Max returns the greater of a and b; a wins ties.
func Max(a, b Value) (Value, error) {
	c, err := Compare("MAX", a, b)
	if err != nil {
		return Empty, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Logic
// ---------------------------------------------------------------------------

// Not negates a boolean.
func Not(v Value) (Value, error) {
	if v.kind != KindBool {
		return Empty, invalidOperand("NOT needs a boolean, got %s", v.kind)
	}
	return FromBool(!v.b), nil
}

// And is the logical conjunction of two booleans.
func And(a, b Value) (Value, error) {
	if a.kind != KindBool || b.kind != KindBool {
		return Empty, mismatch("AND", a, b)
	}
	return FromBool(a.b && b.b), nil
}

// Or is the logical disjunction of two booleans.
func Or(a, b Value) (Value, error) {
	if a.kind != KindBool || b.kind != KindBool {
		return Empty, mismatch("OR", a, b)
	}
	return FromBool(a.b || b.b), nil
}

// ---------------------------------------------------------------------------
// Coercion
// ---------------------------------------------------------------------------

// ToInt implements INT.
func ToInt(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return FromInt(v.i), nil
	case KindFloat:
		if math.IsNaN(v.f) || v.f < math.MinInt64 || v.f >= math.MaxInt64 {
			return Empty, invalidOperand("INT cannot represent %s", v)
		}
		return FromInt(int64(v.f)), nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return Empty, invalidOperand("INT cannot parse %q", v.s)
		}
		return FromInt(i), nil
	}
	return Empty, invalidOperand("INT cannot convert %s", v.kind)
}

// ToFloat implements FLOAT.
func ToFloat(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return FromFloat(float64(v.i)), nil
	case KindFloat:
		return FromFloat(v.f), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return Empty, invalidOperand("FLOAT cannot parse %q", v.s)
		}
		return FromFloat(f), nil
	}
	return Empty, invalidOperand("FLOAT cannot convert %s", v.kind)
}

// ToString implements STRING.
func ToString(v Value) Value {
	return FromString(v.String())
}
