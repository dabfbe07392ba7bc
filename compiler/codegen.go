package compiler

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"

	"github.com/chazu/nalm/vm"
	"github.com/dave/jennifer/jen"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Codegen: lower an instruction list to a Go program
// ---------------------------------------------------------------------------

// scaffold is the fixed part of every generated program: the tagged value
// type, the stack, the variable table and one helper per operator.
//
//go:embed runtime.go.txt
var scaffold string

// Compile emits a gofmt-formatted package main for the executor's current
// instruction list. Each instruction becomes one case of a switch inside a
// loop over pc, so GOTO can address any instruction by index. Calls to
// functions defined so far are expanded inline. It matches vm.CompileFunc.
func Compile(e *vm.Executor) ([]byte, error) {
	instructions := e.Instructions()
	cases := make([]jen.Code, 0, len(instructions))
	for i, in := range instructions {
		body, err := e.EmitInstruction(in)
		if errors.Is(err, vm.ErrUnknownCommand) {
			// The interpreter only fails when the line is reached.
			body = []jen.Code{jen.Id("fail").Call(jen.Lit(err.Error()))}
		} else if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, in.Command, err)
		}
		clause := append([]jen.Code{jen.Comment(label(i, in))}, body...)
		cases = append(cases, jen.Case(jen.Lit(i)).Block(clause...))
	}

	decls := []*jen.Statement{
		jen.Const().Id("instructionCount").Op("=").Lit(len(instructions)),
		jen.Const().Id("prompt").Op("=").Lit(e.Prompt()),
		jen.Func().Id("run").Params().Block(
			jen.For(
				jen.Id("pc").Op(":=").Lit(0),
				jen.Id("pc").Op("<").Id("instructionCount"),
				jen.Id("pc").Op("++"),
			).Block(
				jen.Switch(jen.Id("pc")).Block(cases...),
			),
		),
	}

	var buf bytes.Buffer
	buf.WriteString(scaffold)
	for _, d := range decls {
		buf.WriteString("\n")
		if err := d.Render(&buf); err != nil {
			return nil, fmt.Errorf("rendering generated code: %w", err)
		}
		buf.WriteString("\n")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	commonlog.GetLogger("nalm.compiler").Debugf("emitted %d instructions (%d bytes)", len(instructions), len(src))
	return src, nil
}

// WriteFile compiles e and writes the program to path, creating parent
// directories as needed.
func WriteFile(e *vm.Executor, path string) error {
	src, err := Compile(e)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", vm.ErrIO, err)
		}
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("%w: %w", vm.ErrIO, err)
	}
	return nil
}

func label(i int, in vm.Instruction) string {
	text := in.String()
	if text == "" {
		text = "(blank)"
	}
	return fmt.Sprintf("instr_%d: %s", i, text)
}
