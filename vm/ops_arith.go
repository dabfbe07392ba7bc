package vm

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// binaryOp pops the right operand, then the left, and pushes fn(left, right).
// helper names the scaffold function with the same semantics.
type binaryOp struct {
	name   string
	fn     func(a, b Value) (Value, error)
	helper string
}

func (op binaryOp) Execute(e *Executor, in Instruction) error {
	a, b, err := e.pop2()
	if err != nil {
		return fmt.Errorf("%s: %w", op.name, err)
	}
	r, err := op.fn(a, b)
	if err != nil {
		return err
	}
	e.push(r)
	return nil
}

func (op binaryOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return append(emitOperands(), rt("push", rt(op.helper, jen.Id("a"), jen.Id("b")))), nil
}

// unaryOp replaces the top of the stack with fn(top).
type unaryOp struct {
	fn     func(Value) (Value, error)
	helper string
}

func (op unaryOp) Execute(e *Executor, in Instruction) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	r, err := op.fn(v)
	if err != nil {
		return err
	}
	e.push(r)
	return nil
}

func (op unaryOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(rt(op.helper, rt("pop"))), nil
}

func equalValues(a, b Value) (Value, error) {
	eq, err := Equal(a, b)
	if err != nil {
		return Empty, err
	}
	return FromBool(eq), nil
}

func greater(a, b Value) (Value, error) {
	c, err := Compare("GREATER", a, b)
	if err != nil {
		return Empty, err
	}
	return FromBool(c > 0), nil
}

func less(a, b Value) (Value, error) {
	c, err := Compare("LESS", a, b)
	if err != nil {
		return Empty, err
	}
	return FromBool(c < 0), nil
}

func toStringValue(v Value) (Value, error) {
	return ToString(v), nil
}
