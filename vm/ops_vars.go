package vm

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// ---------------------------------------------------------------------------
// STORE, LOAD
// ---------------------------------------------------------------------------

type storeOp struct{}

// Execute pops the value, then the key.
func (storeOp) Execute(e *Executor, in Instruction) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	k, err := e.pop()
	if err != nil {
		return err
	}
	e.variables[k.String()] = v
	return nil
}

func (storeOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return []jen.Code{
		jen.Id("v").Op(":=").Id("pop").Call(),
		jen.Id("k").Op(":=").Id("pop").Call(),
		jen.Id("variables").Index(jen.Id("k").Dot("String").Call()).Op("=").Id("v"),
	}, nil
}

type loadOp struct{}

func (loadOp) Execute(e *Executor, in Instruction) error {
	k, err := e.pop()
	if err != nil {
		return err
	}
	v, ok := e.variables[k.String()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndefinedVariable, k.String())
	}
	e.push(v)
	return nil
}

func (loadOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(rt("load", rt("pop"))), nil
}

// ---------------------------------------------------------------------------
// INPUT
// ---------------------------------------------------------------------------

type inputOp struct{}

func (inputOp) Execute(e *Executor, in Instruction) error {
	line, err := e.readLine()
	if err != nil {
		return err
	}
	e.push(FromString(line))
	return nil
}

func (inputOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitPush(rt("readInput")), nil
}
