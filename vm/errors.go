package vm

import (
	"errors"
	"fmt"
)

// Failure classes. Operations wrap these with details, so callers test
// with errors.Is.
var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidOperand    = errors.New("invalid operand")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrIO                = errors.New("i/o error")
	ErrParseAmbiguity    = errors.New("malformed definition")
	ErrCallDepth         = errors.New("function call depth exceeded")
	ErrNoCompiler        = errors.New("no compiler backend configured")
)

// StepError is returned by the run loop when an instruction fails. The
// executor's index still points at the failed instruction.
type StepError struct {
	Index       int
	Instruction Instruction
	Err         error
}

func (e *StepError) Error() string {
	cmd := e.Instruction.Command
	if cmd == "" {
		cmd = "<empty>"
	}
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, cmd, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func invalidOperand(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperand, fmt.Sprintf(format, args...))
}

func mismatch(cmd string, a, b Value) error {
	return invalidOperand("%s cannot combine %s and %s", cmd, a.kind, b.kind)
}
