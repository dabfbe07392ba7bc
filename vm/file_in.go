package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// maxLineLength bounds a single source line read by LoadFile.
const maxLineLength = 1 << 20

// LoadFile appends every line of the named file as an instruction whose
// offset is the instruction count before the load. Blank lines are kept so
// that GOTO targets match file line numbers. It returns how many lines were
// appended; lines read before a failure stay appended.
func (e *Executor) LoadFile(name string) (int, error) {
	path := e.resolve(name)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	offset := len(e.instructions)
	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		e.AddInstructionAt(scanner.Text(), offset)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	e.log.Debugf("loaded %d lines from %s at offset %d", n, path, offset)
	return n, nil
}

// resolve finds name in the working directory, then in each search path.
// Unresolvable names are returned unchanged so the open error names them.
func (e *Executor) resolve(name string) string {
	if filepath.IsAbs(name) || len(e.searchPaths) == 0 {
		return name
	}
	if _, err := os.Stat(name); !errors.Is(err, fs.ErrNotExist) {
		return name
	}
	for _, dir := range e.searchPaths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}
