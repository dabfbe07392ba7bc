package vm

import (
	"math"

	"github.com/dave/jennifer/jen"
)

// Statement builders shared by the Emit methods. The identifiers used here
// (push, pop, top, stack, variables, the operator helpers and the value
// constructors) are declared by the scaffold the compiler package prepends
// to every generated program.

func rt(name string, args ...jen.Code) *jen.Statement {
	return jen.Id(name).Call(args...)
}

func emitPush(v jen.Code) []jen.Code {
	return []jen.Code{rt("push", v)}
}

// emitOperands pops the right operand into b, then the left into a.
func emitOperands() []jen.Code {
	return []jen.Code{
		jen.Id("b").Op(":=").Id("pop").Call(),
		jen.Id("a").Op(":=").Id("pop").Call(),
	}
}

// EmitLiteral returns the scaffold constructor call for v.
func EmitLiteral(v Value) jen.Code {
	switch v.kind {
	case KindInt:
		if v.lit != "" {
			return rt("intText", jen.Lit(v.i), jen.Lit(v.lit))
		}
		return rt("intValue", jen.Lit(v.i))
	case KindFloat:
		f := jen.Lit(v.f)
		if v.f == 0 && math.Signbit(v.f) {
			f = jen.Id("negZero")
		}
		if v.lit != "" {
			return rt("floatText", f, jen.Lit(v.lit))
		}
		return rt("floatValue", f)
	case KindString:
		return rt("stringValue", jen.Lit(v.s))
	case KindBool:
		return rt("boolValue", jen.Lit(v.b))
	}
	return jen.Id("value").Values()
}
