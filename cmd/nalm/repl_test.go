package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/nalm/vm"
)

func runScript(t *testing.T, script string) string {
	t.Helper()
	in := bufio.NewReader(strings.NewReader(script))
	e := vm.NewExecutor(vm.WithInput(in))
	var out bytes.Buffer
	runREPL(e, in, &out, replTexts["eng"])
	return out.String()
}

func TestREPLRunsLines(t *testing.T) {
	out := runScript(t, "PUSH 2\nPUSH 3\nADD\nPRINT\nEND\n")
	if !strings.Contains(out, "5\n") {
		t.Errorf("output = %q, want it to contain the sum", out)
	}
	if !strings.HasSuffix(out, "Goodbye\n") {
		t.Errorf("output = %q, want it to end with Goodbye", out)
	}
}

func TestREPLContinuesAfterError(t *testing.T) {
	out := runScript(t, "POP\nPUSH 1\nPRINT\nEND\n")
	if !strings.Contains(out, "An error occurred: ") {
		t.Errorf("output = %q, want an error line", out)
	}
	if !strings.Contains(out, "stack underflow") {
		t.Errorf("output = %q, want the underflow text", out)
	}
	if !strings.Contains(out, ">>> 1\n") {
		t.Errorf("output = %q, want PRINT to run after the failure", out)
	}
}

func TestREPLHelp(t *testing.T) {
	out := runScript(t, "help\nEND\n")
	for _, c := range vm.Commands() {
		if !strings.Contains(out, c.Usage) {
			t.Errorf("help is missing %s", c.Name)
		}
	}
}

func TestREPLInputSharesReader(t *testing.T) {
	out := runScript(t, "INPUT\nhello\nPRINT\nEND\n")
	if !strings.Contains(out, vm.DefaultPrompt+">>> hello\n") {
		t.Errorf("output = %q, want INPUT to consume the next line", out)
	}
}

func TestREPLEndOfInput(t *testing.T) {
	out := runScript(t, "PUSH 1\n")
	if strings.Contains(out, "Goodbye") {
		t.Errorf("output = %q, want no Goodbye without END", out)
	}
	if got := strings.Count(out, replPrompt); got != 2 {
		t.Errorf("prompts = %d, want 2", got)
	}
}

func TestREPLSkipsWhenTerminated(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("PUSH 1\n"))
	e := vm.NewExecutor(vm.WithInput(in))
	e.AddInstruction("END")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var out bytes.Buffer
	runREPL(e, in, &out, replTexts["eng"])
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}

func TestREPLItalian(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("aiuto\nhelp\nEND\n"))
	e := vm.NewExecutor(vm.WithInput(in))
	var out bytes.Buffer
	runREPL(e, in, &out, replTexts["ita"])
	got := out.String()
	for _, want := range []string{
		"Si è verificato un errore: ",
		"I comandi disponibili sono:",
		"Termina l'esecuzione del programma",
		"Arrivederci\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output = %q, want it to contain %q", got, want)
		}
	}
}

func TestItalianDocsCoverCommands(t *testing.T) {
	for _, c := range vm.Commands() {
		if _, ok := replTexts["ita"].docs[c.Name]; !ok {
			t.Errorf("no Italian description for %s", c.Name)
		}
	}
}
