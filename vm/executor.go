package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/tliron/commonlog"
)

// DefaultPrompt is written before INPUT reads a line.
const DefaultPrompt = "INSERT VALUE: "

// DefaultMaxCallDepth bounds nested function expansion.
const DefaultMaxCallDepth = 1000

// CompileFunc lowers the executor's instruction list to target source text.
// It is set by the CLI layer (compiler.Compile) to avoid circular imports.
type CompileFunc func(e *Executor) ([]byte, error)

// Option configures an Executor.
type Option func(*Executor)

// WithOutput sets where PRINT and the INPUT prompt are written.
func WithOutput(w io.Writer) Option {
	return func(e *Executor) { e.out = w }
}

// WithInput sets where INPUT reads lines from.
func WithInput(r io.Reader) Option {
	return func(e *Executor) { e.SetInput(r) }
}

// WithPrompt sets the INPUT prompt.
func WithPrompt(prompt string) Option {
	return func(e *Executor) { e.prompt = prompt }
}

// WithSearchPaths sets the directories IMPORT and INCLUDE fall back to when
// a relative file name does not exist in the working directory.
func WithSearchPaths(dirs ...string) Option {
	return func(e *Executor) { e.searchPaths = append([]string(nil), dirs...) }
}

// WithMaxCallDepth bounds nested function expansion. Values <= 0 select
// DefaultMaxCallDepth.
func WithMaxCallDepth(n int) Option {
	return func(e *Executor) {
		if n <= 0 {
			n = DefaultMaxCallDepth
		}
		e.maxDepth = n
	}
}

// WithCompiler sets the backend used by COMPILE.
func WithCompiler(fn CompileFunc) Option {
	return func(e *Executor) { e.compile = fn }
}

// ---------------------------------------------------------------------------
// Executor
// ---------------------------------------------------------------------------

// Executor owns all runtime state of one NALM session. It is not safe for
// concurrent use.
type Executor struct {
	stack        []Value
	variables    map[string]Value
	instructions []Instruction
	functions    map[string][]Instruction
	index        int
	terminated   bool

	// depth counts nested function expansions (execution or emission).
	depth int

	out         io.Writer
	in          *bufio.Reader
	prompt      string
	searchPaths []string
	maxDepth    int
	compile     CompileFunc
	log         commonlog.Logger
}

// NewExecutor creates an executor reading stdin and writing stdout unless
// configured otherwise.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		variables: make(map[string]Value),
		functions: make(map[string][]Instruction),
		out:       os.Stdout,
		in:        bufio.NewReader(os.Stdin),
		prompt:    DefaultPrompt,
		maxDepth:  DefaultMaxCallDepth,
		log:       commonlog.GetLogger("nalm.vm"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetInput replaces the INPUT source.
func (e *Executor) SetInput(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		e.in = br
		return
	}
	e.in = bufio.NewReader(r)
}

// SetOutput replaces the PRINT destination.
func (e *Executor) SetOutput(w io.Writer) {
	e.out = w
}

// Prompt returns the INPUT prompt.
func (e *Executor) Prompt() string {
	return e.prompt
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// AddInstruction parses line with offset 0 and appends it. This is how the
// interactive loop feeds the executor.
func (e *Executor) AddInstruction(line string) {
	e.AddInstructionAt(line, 0)
}

// AddInstructionAt parses line loaded at offset and appends it.
func (e *Executor) AddInstructionAt(line string, offset int) {
	e.instructions = append(e.instructions, ParseInstruction(line, offset))
}

// AddSource appends every line of text as an interactive instruction.
// A trailing newline does not produce an extra blank instruction.
func (e *Executor) AddSource(text string) {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		e.AddInstruction(line)
	}
}

// ---------------------------------------------------------------------------
// Run loop
// ---------------------------------------------------------------------------

// Step executes the instruction at the current index. On success the index
// advances by exactly one, whatever the instruction did; GOTO relies on this
// by storing its destination minus one. On failure the index is left on the
// failed instruction and a *StepError is returned.
func (e *Executor) Step() error {
	if e.index < 0 || e.index >= len(e.instructions) {
		return nil
	}
	at := e.index
	in := e.instructions[at]
	if err := e.dispatch(in); err != nil {
		return &StepError{Index: at, Instruction: in, Err: err}
	}
	e.index++
	return nil
}

// Execute runs from the current index until END or the end of the list.
func (e *Executor) Execute() error {
	return e.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with cancellation checked between instructions.
// The language itself has no timeouts; an endless GOTO loop only stops when
// ctx does.
func (e *Executor) ExecuteContext(ctx context.Context) error {
	for !e.terminated && e.index < len(e.instructions) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Skip moves past the current instruction without running it. Interactive
// callers use it to carry on after a failed step.
func (e *Executor) Skip() {
	if e.index < len(e.instructions) {
		e.index++
	}
}

// ResetIndex rewinds the instruction pointer.
func (e *Executor) ResetIndex() {
	e.index = 0
}

// Reset clears all runtime state. Configuration is kept.
func (e *Executor) Reset() {
	e.stack = nil
	e.variables = make(map[string]Value)
	e.instructions = nil
	e.functions = make(map[string][]Instruction)
	e.index = 0
	e.terminated = false
	e.depth = 0
}

// dispatch resolves a command: built-ins first, then user functions.
func (e *Executor) dispatch(in Instruction) error {
	if op, ok := operations[in.Command]; ok {
		return op.Execute(e, in)
	}
	if body, ok := e.functions[in.Command]; ok {
		return e.call(in.Command, body)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, in.Command)
}

// call expands a function inline against the current state.
func (e *Executor) call(name string, body []Instruction) error {
	if e.depth >= e.maxDepth {
		return fmt.Errorf("%w: %s nested %d deep", ErrCallDepth, name, e.depth)
	}
	e.depth++
	defer func() { e.depth-- }()
	for _, in := range body {
		if err := e.dispatch(in); err != nil {
			return fmt.Errorf("in %s: %w", name, err)
		}
		// END ends the program, not just the call.
		if e.terminated {
			return nil
		}
	}
	return nil
}

// EmitInstruction lowers one instruction to Go statements, expanding calls
// to functions defined so far.
func (e *Executor) EmitInstruction(in Instruction) ([]jen.Code, error) {
	if op, ok := operations[in.Command]; ok {
		return op.Emit(e, in)
	}
	body, ok := e.functions[in.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, in.Command)
	}
	if e.depth >= e.maxDepth {
		return nil, fmt.Errorf("%w: %s nested %d deep", ErrCallDepth, in.Command, e.depth)
	}
	e.depth++
	defer func() { e.depth-- }()
	var code []jen.Code
	for _, inner := range body {
		stmts, err := e.EmitInstruction(inner)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", in.Command, err)
		}
		code = append(code, jen.Block(stmts...))
	}
	return code, nil
}

// ---------------------------------------------------------------------------
// Stack primitives
// ---------------------------------------------------------------------------

func (e *Executor) push(v Value) {
	e.stack = append(e.stack, v)
}

func (e *Executor) pop() (Value, error) {
	n := len(e.stack)
	if n == 0 {
		return Empty, ErrStackUnderflow
	}
	v := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return v, nil
}

func (e *Executor) peek() (Value, error) {
	n := len(e.stack)
	if n == 0 {
		return Empty, ErrStackUnderflow
	}
	return e.stack[n-1], nil
}

// pop2 pops the right operand, then the left one.
func (e *Executor) pop2() (left, right Value, err error) {
	if right, err = e.pop(); err != nil {
		return
	}
	left, err = e.pop()
	return
}

func (e *Executor) readLine() (string, error) {
	if _, err := io.WriteString(e.out, e.prompt); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("%w: reading input: %w", ErrIO, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Stack returns a copy of the stack, bottom first.
func (e *Executor) Stack() []Value {
	return append([]Value(nil), e.stack...)
}

// Variables returns a copy of the variable table.
func (e *Executor) Variables() map[string]Value {
	vars := make(map[string]Value, len(e.variables))
	for k, v := range e.variables {
		vars[k] = v
	}
	return vars
}

// Variable looks up one variable.
func (e *Executor) Variable(name string) (Value, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// Instructions returns a copy of the instruction list.
func (e *Executor) Instructions() []Instruction {
	return append([]Instruction(nil), e.instructions...)
}

// Functions returns a copy of the function table.
func (e *Executor) Functions() map[string][]Instruction {
	fns := make(map[string][]Instruction, len(e.functions))
	for name, body := range e.functions {
		fns[name] = append([]Instruction(nil), body...)
	}
	return fns
}

// Index returns the instruction pointer.
func (e *Executor) Index() int {
	return e.index
}

// Terminated reports whether END has run.
func (e *Executor) Terminated() bool {
	return e.terminated
}
