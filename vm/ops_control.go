package vm

import (
	"fmt"
	"math"
	"strings"

	"github.com/dave/jennifer/jen"
)

// ---------------------------------------------------------------------------
// GOTO
// ---------------------------------------------------------------------------

type gotoOp struct{}

// Execute pops the condition, then the target. Both are consumed whether or
// not the jump is taken.
func (gotoOp) Execute(e *Executor, in Instruction) error {
	cond, target, err := e.popJump()
	if err != nil {
		return err
	}
	if cond.kind != KindBool {
		return invalidOperand("GOTO condition must be a boolean, got %s", cond.kind)
	}
	t, err := jumpTarget(target)
	if err != nil {
		return err
	}
	if !cond.b {
		return nil
	}
	dest := t + int64(in.Offset)
	if dest < 0 || dest > int64(len(e.instructions)) {
		return invalidOperand("GOTO destination %d outside 0..%d", dest, len(e.instructions))
	}
	// Step adds one after every instruction.
	e.index = int(dest) - 1
	return nil
}

func (gotoOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{
		jen.If(
			jen.List(jen.Id("dest"), jen.Id("ok")).Op(":=").Id("jump").Call(jen.Lit(in.Offset)),
			jen.Id("ok"),
		).Block(
			jen.Id("pc").Op("=").Id("dest").Op("-").Lit(1),
		),
	}, nil
}

func (e *Executor) popJump() (cond, target Value, err error) {
	if cond, err = e.pop(); err != nil {
		return
	}
	target, err = e.pop()
	return
}

// jumpTarget accepts an integer or an integral float.
func jumpTarget(v Value) (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt32 && v.f <= math.MaxInt32 {
			return int64(v.f), nil
		}
		return 0, invalidOperand("GOTO target %s is not a whole number", v)
	}
	return 0, invalidOperand("GOTO target must be a number, got %s", v.kind)
}

// ---------------------------------------------------------------------------
// END
// ---------------------------------------------------------------------------

type endOp struct{}

func (endOp) Execute(e *Executor, in Instruction) error {
	e.terminated = true
	return nil
}

func (endOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{jen.Return()}, nil
}

// ---------------------------------------------------------------------------
// DEFINE
// ---------------------------------------------------------------------------

type defineOp struct{}

// Execute pops a count, a name and count command tokens. A PUSH token takes
// the next value off the stack as its literal. Redefinition replaces.
func (defineOp) Execute(e *Executor, in Instruction) error {
	count, err := e.pop()
	if err != nil {
		return err
	}
	if count.kind != KindInt || count.i < 0 {
		return fmt.Errorf("%w: DEFINE count must be a non-negative integer, got %s %q",
			ErrParseAmbiguity, count.kind, count.String())
	}
	nameVal, err := e.pop()
	if err != nil {
		return err
	}
	name := strings.ToUpper(strings.TrimSpace(nameVal.String()))
	if nameVal.kind != KindString || name == "" || strings.ContainsAny(name, " \t") {
		return fmt.Errorf("%w: DEFINE name must be a single word, got %s %q",
			ErrParseAmbiguity, nameVal.kind, nameVal.String())
	}

	body := make([]Instruction, 0, min(int(min(count.i, math.MaxInt32)), len(e.stack)))
	for i := int64(0); i < count.i; i++ {
		tok, err := e.pop()
		if err != nil {
			return fmt.Errorf("DEFINE %s: %w", name, err)
		}
		if tok.kind != KindString || tok.s == "" {
			return fmt.Errorf("%w: DEFINE %s token %d must be a command name, got %s %q",
				ErrParseAmbiguity, name, i, tok.kind, tok.String())
		}
		step := Instruction{Command: strings.ToUpper(tok.s), Source: tok.s}
		if step.Command == "PUSH" {
			lit, err := e.pop()
			if err != nil {
				return fmt.Errorf("DEFINE %s: PUSH literal: %w", name, err)
			}
			step.Value = lit.String()
			step.HasValue = !lit.IsEmpty()
			step.Source = "PUSH " + step.Value
		}
		body = append(body, step)
	}
	if IsBuiltin(name) {
		e.log.Warningf("function %s is shadowed by the built-in of the same name", name)
	}
	e.functions[name] = body
	e.log.Debugf("defined %s (%d instructions)", name, len(body))
	return nil
}

// Emit consumes the payload the same way; the body itself is expanded at
// each call site.
func (defineOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{rt("define")}, nil
}
