package vm

import (
	"fmt"
	"os"

	"github.com/dave/jennifer/jen"
)

// IMPORT, INCLUDE and COMPILE act on the host at interpretation time. The
// generated program has no counterpart for them, so emitDiscard only pops
// the file name; the stack then matches the interpreter's at every label.
func emitDiscard() []jen.Code {
	return []jen.Code{rt("pop")}
}

type importOp struct{}

func (importOp) Execute(e *Executor, in Instruction) error {
	name, err := e.pop()
	if err != nil {
		return err
	}
	_, err = e.LoadFile(name.String())
	return err
}

func (importOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitDiscard(), nil
}

// includeOp loads like IMPORT, then moves the index past the new lines so
// they do not run; they stay available to GOTO and COMPILE.
type includeOp struct{}

func (includeOp) Execute(e *Executor, in Instruction) error {
	name, err := e.pop()
	if err != nil {
		return err
	}
	n, err := e.LoadFile(name.String())
	if err != nil {
		return err
	}
	e.index += n
	return nil
}

func (includeOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitDiscard(), nil
}

type compileOp struct{}

func (compileOp) Execute(e *Executor, in Instruction) error {
	name, err := e.pop()
	if err != nil {
		return err
	}
	src, err := e.Compile()
	if err != nil {
		return err
	}
	path := name.String()
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	e.log.Infof("compiled %d instructions to %s", len(e.instructions), path)
	return nil
}

func (compileOp) Emit(e *Executor, in Instruction) ([]jen.Code, error) {
	return emitDiscard(), nil
}

// Compile runs the configured backend over the whole instruction list.
func (e *Executor) Compile() ([]byte, error) {
	if e.compile == nil {
		return nil, ErrNoCompiler
	}
	return e.compile(e)
}
