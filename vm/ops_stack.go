package vm

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// ---------------------------------------------------------------------------
// PUSH
// ---------------------------------------------------------------------------

type pushOp struct{}

func (pushOp) Execute(e *Executor, in Instruction) error {
	e.push(in.Literal())
	return nil
}

func (pushOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(EmitLiteral(in.Literal())), nil
}

// ---------------------------------------------------------------------------
// POP
// ---------------------------------------------------------------------------

type popOp struct{}

func (popOp) Execute(e *Executor, in Instruction) error {
	_, err := e.pop()
	return err
}

func (popOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{rt("pop")}, nil
}

// ---------------------------------------------------------------------------
// PRINT
// ---------------------------------------------------------------------------

type printOp struct{}

func (printOp) Execute(e *Executor, in Instruction) error {
	v, err := e.peek()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(e.out, v.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (printOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{rt("printTop")}, nil
}

// ---------------------------------------------------------------------------
// SWAP, DUP, CLEAR
// ---------------------------------------------------------------------------

type swapOp struct{}

func (swapOp) Execute(e *Executor, in Instruction) error {
	a, b, err := e.pop2()
	if err != nil {
		return err
	}
	e.push(b)
	e.push(a)
	return nil
}

func (swapOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return append(emitOperands(), rt("push", jen.Id("b")), rt("push", jen.Id("a"))), nil
}

type dupOp struct{}

func (dupOp) Execute(e *Executor, in Instruction) error {
	v, err := e.peek()
	if err != nil {
		return err
	}
	e.push(v)
	return nil
}

func (dupOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(rt("top")), nil
}

type clearOp struct{}

func (clearOp) Execute(e *Executor, in Instruction) error {
	e.stack = e.stack[:0]
	return nil
}

func (clearOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{jen.Id("stack").Op("=").Id("stack").Index(jen.Empty(), jen.Lit(0))}, nil
}

// ---------------------------------------------------------------------------
// NUM, COMMENT
// ---------------------------------------------------------------------------

type numOp struct{}

func (numOp) Execute(e *Executor, in Instruction) error {
	e.push(FromInt(int64(len(e.stack))))
	return nil
}

func (numOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(rt("intValue", jen.Int64().Call(jen.Len(jen.Id("stack"))))), nil
}

type commentOp struct{}

func (commentOp) Execute(e *Executor, in Instruction) error { return nil }

func (commentOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) { return nil, nil }
