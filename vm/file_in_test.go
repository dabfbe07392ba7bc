package vm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFileKeepsBlankLines(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.nalm", "PUSH 1\n\nPUSH 2\n")
	e, _ := newTestExecutor("")
	e.AddInstruction("NUM")
	n, err := e.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n != 3 {
		t.Errorf("LoadFile appended %d lines, want 3", n)
	}
	ins := e.Instructions()
	if len(ins) != 4 || ins[2].Command != "" {
		t.Fatalf("instructions = %+v", ins)
	}
	for _, in := range ins[1:] {
		if in.Offset != 1 {
			t.Errorf("offset of %q = %d, want 1", in.Source, in.Offset)
		}
	}
}

func TestImportRunsNext(t *testing.T) {
	path := writeSource(t, t.TempDir(), "lib.nalm", "PUSH 5\nPRINT")
	e, out := newTestExecutor("")
	e.AddInstruction("PUSH " + path)
	e.AddInstruction("IMPORT")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "5\n" {
		t.Errorf("output = %q, want 5", out.String())
	}
}

func TestIncludeDoesNotRun(t *testing.T) {
	path := writeSource(t, t.TempDir(), "lib.nalm", "PUSH 5\nPRINT")
	e, out := newTestExecutor("")
	e.AddInstruction("PUSH " + path)
	e.AddInstruction("INCLUDE")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("INCLUDE ran the file: output %q", out.String())
	}
	if got := len(e.Instructions()); got != 4 {
		t.Errorf("instructions = %d, want 4", got)
	}
	if e.Index() != 4 {
		t.Errorf("Index() = %d, want 4", e.Index())
	}
}

func TestImportedGotoIsRelative(t *testing.T) {
	path := writeSource(t, t.TempDir(), "jump.nalm",
		"PUSH 7\nPUSH 5\nPUSH true\nGOTO\nPUSH 99\nPRINT\n")
	e, out := newTestExecutor("")
	e.AddInstruction("PUSH " + path)
	e.AddInstruction("IMPORT")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "7\n" {
		t.Errorf("output = %q, want 7", out.String())
	}
}

func TestImportSearchPaths(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "found-in-search-path.nalm", "PUSH hi\nPRINT")
	e, out := newTestExecutor("", WithSearchPaths(t.TempDir(), dir))
	e.AddSource("PUSH found-in-search-path.nalm\nIMPORT")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "hi\n" {
		t.Errorf("output = %q, want hi", out.String())
	}
}

func TestImportMissingFile(t *testing.T) {
	e, _ := newTestExecutor("", WithSearchPaths(t.TempDir()))
	e.AddSource("PUSH missing.nalm\nIMPORT")
	err := e.Execute()
	if !errors.Is(err, ErrIO) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Execute error = %v, want ErrIO wrapping ErrNotExist", err)
	}
}
