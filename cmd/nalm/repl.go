package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/nalm/vm"
)

const replPrompt = ">>> "

// runREPL feeds one instruction per line to e until END or end of input.
// in must be the reader e uses for INPUT so both share one buffer.
func runREPL(e *vm.Executor, in *bufio.Reader, out io.Writer, text replText) {
	if e.Terminated() {
		return
	}
	e.SetOutput(out)

	for {
		fmt.Fprint(out, replPrompt)

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if strings.EqualFold(strings.TrimSpace(line), "HELP") {
			printHelp(out, text)
			continue
		}

		e.AddInstruction(line)
		if err := e.Execute(); err != nil {
			fmt.Fprintf(out, "%s: %v\n", text.failure, err)
			var stepErr *vm.StepError
			if errors.As(err, &stepErr) {
				e.Skip()
			}
			continue
		}
		if e.Terminated() {
			fmt.Fprintln(out, text.goodbye)
			return
		}
	}
}

func printHelp(out io.Writer, text replText) {
	fmt.Fprintln(out, text.header)
	for _, c := range vm.Commands() {
		fmt.Fprintf(out, "%-18s-->    %s\n", c.Usage, text.doc(c))
	}
}
