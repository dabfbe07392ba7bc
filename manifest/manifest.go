// Package manifest handles nalm.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazu/nalm/vm"
)

// FileName is the manifest file looked up by FindAndLoad.
const FileName = "nalm.toml"

// Defaults for omitted keys.
const (
	DefaultPort    = 4567
	DefaultTimeout = 10 * time.Second
	DefaultLang    = "eng"
)

// Langs lists the REPL languages run.lang accepts.
var Langs = []string{"eng", "ita"}

// Manifest represents a nalm.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Run     RunConfig     `toml:"run"`
	Compile CompileConfig `toml:"compile"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`

	// Dir is the directory containing the nalm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// RunConfig configures the interpreter.
type RunConfig struct {
	Entry        string   `toml:"entry"`
	SearchPaths  []string `toml:"search-paths"`
	Prompt       *string  `toml:"prompt"`
	MaxCallDepth int      `toml:"max-call-depth"`
	Lang         string   `toml:"lang"`
}

// CompileConfig configures Go output.
type CompileConfig struct {
	Output string `toml:"output"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ServerConfig configures the session service.
type ServerConfig struct {
	Port    int    `toml:"port"`
	Timeout string `toml:"timeout"`

	timeout time.Duration
}

// Default returns the configuration used when no nalm.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses the nalm.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if m.Server.Timeout != "" {
		d, err := time.ParseDuration(m.Server.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: server.timeout %q is not a positive duration", path, m.Server.Timeout)
		}
		m.Server.timeout = d
	}
	if m.Run.MaxCallDepth < 0 {
		return nil, fmt.Errorf("%s: run.max-call-depth must not be negative", path)
	}
	if m.Run.Lang != "" && !slices.Contains(Langs, m.Run.Lang) {
		return nil, fmt.Errorf("%s: run.lang %q is not one of %v", path, m.Run.Lang, Langs)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Run.Prompt == nil {
		p := vm.DefaultPrompt
		m.Run.Prompt = &p
	}
	if m.Run.MaxCallDepth == 0 {
		m.Run.MaxCallDepth = vm.DefaultMaxCallDepth
	}
	if m.Run.Lang == "" {
		m.Run.Lang = DefaultLang
	}
	if m.Server.Port == 0 {
		m.Server.Port = DefaultPort
	}
	if m.Server.timeout == 0 {
		m.Server.timeout = DefaultTimeout
	}
}

// FindAndLoad walks up from startDir to find a nalm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// RequestTimeout returns the per-request execution deadline for sessions.
func (s ServerConfig) RequestTimeout() time.Duration {
	if s.timeout == 0 {
		return DefaultTimeout
	}
	return s.timeout
}

// SearchPathDirs returns the search paths resolved against the manifest
// directory.
func (m *Manifest) SearchPathDirs() []string {
	var paths []string
	for _, d := range m.Run.SearchPaths {
		if !filepath.IsAbs(d) && m.Dir != "" {
			d = filepath.Join(m.Dir, d)
		}
		paths = append(paths, d)
	}
	return paths
}

// EntryPath returns the entry program resolved against the manifest
// directory, or "" when none is configured.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Run.Entry)
}

// OutputPath returns the default compile target, or "".
func (m *Manifest) OutputPath() string {
	return m.resolve(m.Compile.Output)
}

// LogFilePath returns the log file, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	return m.resolve(m.Log.File)
}

// ExecutorOptions returns the vm options this manifest configures.
func (m *Manifest) ExecutorOptions() []vm.Option {
	opts := []vm.Option{
		vm.WithMaxCallDepth(m.Run.MaxCallDepth),
		vm.WithSearchPaths(m.SearchPathDirs()...),
	}
	if m.Run.Prompt != nil {
		opts = append(opts, vm.WithPrompt(*m.Run.Prompt))
	}
	return opts
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
