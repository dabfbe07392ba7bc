package vm

import (
	"github.com/dave/jennifer/jen"
)

// Operation is the handler for one built-in command. Execute mutates the
// executor; Emit returns the Go statements the generated program runs for
// the same instruction. Keeping both on one type keeps the two modes in step.
type Operation interface {
	Execute(e *Executor, in Instruction) error
	Emit(e *Executor, in Instruction) ([]jen.Code, error)
}

// Command describes a built-in for HELP and editor tooling.
type Command struct {
	Name  string
	Usage string
	Doc   string
	Op    Operation
}

// commandTable lists the built-ins in HELP order.
var commandTable = []Command{
	{"PUSH", "PUSH <value>", "Pushes a value onto the stack", pushOp{}},
	{"POP", "POP", "Removes the value on top of the stack", popOp{}},
	{"PRINT", "PRINT", "Prints the value on top of the stack without removing it", printOp{}},
	{"ADD", "ADD", "Adds the top two values (concatenates two strings)", binaryOp{"ADD", Add, "add"}},
	{"SUB", "SUB", "Subtracts the top value from the one below it", binaryOp{"SUB", Sub, "sub"}},
	{"MUL", "MUL", "Multiplies the top two values", binaryOp{"MUL", Mul, "mul"}},
	{"DIV", "DIV", "Divides the value below the top by the top value", binaryOp{"DIV", Div, "div"}},
	{"MOD", "MOD", "Remainder of dividing the value below the top by the top value", binaryOp{"MOD", Mod, "mod"}},
	{"SWAP", "SWAP", "Swaps the top two values", swapOp{}},
	{"DUP", "DUP", "Duplicates the value on top of the stack", dupOp{}},
	{"CLEAR", "CLEAR", "Empties the stack", clearOp{}},
	{"MIN", "MIN", "Keeps the lesser of the top two values", binaryOp{"MIN", Min, "minOf"}},
	{"MAX", "MAX", "Keeps the greater of the top two values", binaryOp{"MAX", Max, "maxOf"}},
	{"EQUAL", "EQUAL", "Pushes true if the top two values are equal", binaryOp{"EQUAL", equalValues, "equal"}},
	{"GREATER", "GREATER", "Pushes true if the value below the top is greater than the top", binaryOp{"GREATER", greater, "greater"}},
	{"LESS", "LESS", "Pushes true if the value below the top is less than the top", binaryOp{"LESS", less, "less"}},
	{"NOT", "NOT", "Negates the boolean on top of the stack", unaryOp{Not, "not"}},
	{"AND", "AND", "Pushes true if both top values are true", binaryOp{"AND", And, "and"}},
	{"OR", "OR", "Pushes true if either top value is true", binaryOp{"OR", Or, "or"}},
	{"GOTO", "GOTO", "Pops a condition, then a target; jumps to the target when the condition is true", gotoOp{}},
	{"NUM", "NUM", "Pushes the number of values on the stack", numOp{}},
	{"INPUT", "INPUT", "Reads a line of input and pushes it as a string", inputOp{}},
	{"INT", "INT", "Converts the top value to an integer", unaryOp{ToInt, "toInt"}},
	{"FLOAT", "FLOAT", "Converts the top value to a float", unaryOp{ToFloat, "toFloat"}},
	{"STRING", "STRING", "Converts the top value to a string", unaryOp{toStringValue, "toString"}},
	{"COMMENT", "COMMENT ...", "Does nothing", commentOp{}},
	{"STORE", "STORE", "Pops a value, then a key, and stores the value under the key", storeOp{}},
	{"LOAD", "LOAD", "Pops a key and pushes the value stored under it", loadOp{}},
	{"IMPORT", "IMPORT", "Pops a file name and appends its instructions, which run next", importOp{}},
	{"INCLUDE", "INCLUDE", "Pops a file name and appends its instructions without running them", includeOp{}},
	{"END", "END", "Terminates the program", endOp{}},
	{"DEFINE", "DEFINE", "Pops a count, a name and that many commands, and defines a function", defineOp{}},
	{"COMPILE", "COMPILE", "Pops a file name and writes the program as Go source to it", compileOp{}},
}

var operations = func() map[string]Operation {
	ops := make(map[string]Operation, len(commandTable))
	for _, c := range commandTable {
		ops[c.Name] = c.Op
	}
	return ops
}()

// Commands returns the built-in command table in HELP order.
func Commands() []Command {
	return append([]Command(nil), commandTable...)
}

// LookupCommand returns the built-in named name (already uppercased).
func LookupCommand(name string) (Command, bool) {
	for _, c := range commandTable {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// IsBuiltin reports whether name is a built-in command.
func IsBuiltin(name string) bool {
	_, ok := operations[name]
	return ok
}
