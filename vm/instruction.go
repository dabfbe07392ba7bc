package vm

import "strings"

// Instruction is one parsed line of NALM source. It is never modified after
// parsing.
type Instruction struct {
	// Command is the first token, uppercased. Empty for a blank line.
	Command string

	// Value is the verbatim literal of a PUSH. HasValue distinguishes
	// "PUSH" from a PUSH of some literal.
	Value    string
	HasValue bool

	// Decoration is the trailing token of a non-PUSH line. No operation
	// reads it; it is kept so that source round-trips.
	Decoration string

	// Offset is the instruction-list length at the moment the line was
	// loaded. GOTO targets are relative to it.
	Offset int

	// Source is the raw line.
	Source string
}

// ParseInstruction parses one line loaded at the given offset. It never
// fails: unknown commands are reported when the instruction runs.
func ParseInstruction(line string, offset int) Instruction {
	in := Instruction{
		Source: strings.TrimRight(line, "\r\n"),
		Offset: offset,
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return in
	}
	in.Command = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		if in.Command == "PUSH" {
			in.Value = fields[1]
			in.HasValue = true
		} else {
			in.Decoration = fields[1]
		}
	}
	if len(fields) > 2 {
		in.Decoration = fields[2]
	}
	return in
}

// Literal resolves the PUSH operand to a tagged value.
func (in Instruction) Literal() Value {
	return ParseLiteral(in.Value, in.HasValue)
}

// String renders the instruction in canonical source form.
func (in Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Command)
	if in.HasValue {
		b.WriteByte(' ')
		b.WriteString(in.Value)
	}
	if in.Decoration != "" {
		b.WriteByte(' ')
		b.WriteString(in.Decoration)
	}
	return b.String()
}
