// NALM CLI - runs, compiles and serves NALM programs
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/nalm/compiler"
	"github.com/chazu/nalm/manifest"
	"github.com/chazu/nalm/server"
	"github.com/chazu/nalm/vm"
)

func main() {
	os.Exit(run(".", os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the whole CLI. nalm.toml discovery starts at dir; file arguments
// are taken as given. It returns the process exit status.
func run(dir string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nalm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	interactive := fs.Bool("i", false, "Start interactive REPL after running files")
	output := fs.String("o", "", "Write the loaded program as Go source to this file instead of running it")
	compile := fs.Bool("compile", false, "Write Go source to -o, or to [compile] output from nalm.toml")
	verbosity := fs.Int("v", 0, "Log verbosity (0 = warnings only)")
	logFile := fs.String("log", "", "Write logs to this file instead of stderr")
	lang := fs.String("lang", manifest.DefaultLang, "REPL language: eng or ita")
	noManifest := fs.Bool("no-manifest", false, "Ignore nalm.toml")
	serveMode := fs.Bool("serve", false, "Start the session service (Connect HTTP/JSON and CBOR)")
	servePort := fs.Int("port", manifest.DefaultPort, "Session service port (used with --serve)")
	lspMode := fs.Bool("lsp", false, "Start the language server on stdio")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: nalm [options] [files...]\n\n")
		fmt.Fprintf(w, "Runs NALM programs. With no files and no manifest entry, starts the REPL.\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  nalm                        # Start REPL\n")
		fmt.Fprintf(w, "  nalm countdown.nalm         # Run a program\n")
		fmt.Fprintf(w, "  nalm -i lib.nalm            # Run lib.nalm, then start REPL\n")
		fmt.Fprintf(w, "  nalm -o out.go prog.nalm    # Compile to Go\n")
		fmt.Fprintf(w, "  nalm --compile              # Compile the manifest entry to [compile] output\n")
		fmt.Fprintf(w, "  nalm -lang ita              # REPL in Italian\n")
		fmt.Fprintf(w, "\nServers:\n")
		fmt.Fprintf(w, "  nalm --serve                # Session service on :4567\n")
		fmt.Fprintf(w, "  nalm --serve --port 8080    # Session service on :8080\n")
		fmt.Fprintf(w, "  nalm --lsp                  # Language server on stdio\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	m := manifest.Default()
	if !*noManifest {
		found, err := manifest.FindAndLoad(dir)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if found != nil {
			m = found
		}
	}

	// Flags override the manifest.
	if !set["v"] {
		*verbosity = m.Log.Verbosity
	}
	if !set["log"] {
		*logFile = m.LogFilePath()
	}
	if !set["port"] {
		*servePort = m.Server.Port
	}
	if !set["lang"] {
		*lang = m.Run.Lang
	}
	text, ok := replTexts[*lang]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown language %q (want one of %v)\n", *lang, manifest.Langs)
		return 2
	}

	// Compiling is opt-in; [compile] output only names the default target.
	target := ""
	if set["o"] || *compile {
		target = *output
		if target == "" {
			target = m.OutputPath()
		}
		if target == "" {
			fmt.Fprintf(stderr, "Error: --compile needs -o or [compile] output in %s\n", manifest.FileName)
			return 2
		}
	}

	var logPath *string
	if *logFile != "" {
		logPath = logFile
	}
	commonlog.Configure(*verbosity, logPath)
	log := commonlog.GetLogger("nalm.cli")
	if m.Dir != "" {
		log.Infof("using manifest %s", m.Dir)
	}

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(stderr, "LSP error: %v\n", err)
			return 1
		}
		return 0
	}

	if *serveMode {
		addr := fmt.Sprintf(":%d", *servePort)
		srv := server.New(
			server.WithCompiler(compiler.Compile),
			server.WithExecutorOptions(m.ExecutorOptions()...),
			server.WithTimeout(m.Server.RequestTimeout()),
		)
		defer srv.Stop()
		if err := srv.ListenAndServe(addr); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return 1
		}
		return 0
	}

	in := bufio.NewReader(stdin)
	opts := append(m.ExecutorOptions(),
		vm.WithCompiler(compiler.Compile),
		vm.WithInput(in),
		vm.WithOutput(stdout),
	)
	e := vm.NewExecutor(opts...)

	paths := fs.Args()
	if len(paths) == 0 && m.EntryPath() != "" {
		paths = []string{m.EntryPath()}
	}

	for _, path := range paths {
		n, err := e.LoadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		log.Debugf("loaded %d instructions from %s", n, path)
	}

	if target != "" {
		if len(paths) == 0 {
			fmt.Fprintf(stderr, "Error: nothing to compile: pass a program file or set [run] entry\n")
			return 2
		}
		if err := compiler.WriteFile(e, target); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		log.Infof("wrote %s", target)
		return 0
	}

	if len(paths) > 0 {
		if err := e.Execute(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *interactive || len(paths) == 0 {
		runREPL(e, in, stdout, text)
	}
	return 0
}
