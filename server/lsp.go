package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/nalm/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "nalm-lsp"

// LspServer provides editor features for .nalm files. It works on document
// text alone; nothing is executed.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
	log     commonlog.Logger
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
		log:     commonlog.GetLogger("nalm.lsp"),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("NALM LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(analyze(text), prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hover(analyze(text), word), nil
}

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text)
	s.log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// ---------------------------------------------------------------------------
// Document analysis
// ---------------------------------------------------------------------------

// docInfo is what the editor features know about one document.
type docInfo struct {
	lines []vm.Instruction

	// functions maps a name defined by the literal pattern
	// PUSH <name> / PUSH <count> / DEFINE to its DEFINE line.
	functions map[string]int

	// pushed holds every word pushed as a literal, uppercased. Such a word
	// may become a function through a DEFINE the analysis cannot follow.
	pushed map[string]bool
}

func analyze(text string) *docInfo {
	info := &docInfo{
		functions: make(map[string]int),
		pushed:    make(map[string]bool),
	}
	for _, line := range strings.Split(text, "\n") {
		info.lines = append(info.lines, vm.ParseInstruction(line, 0))
	}
	for i, in := range info.lines {
		if in.Command == "PUSH" && in.Literal().Kind() == vm.KindString {
			info.pushed[strings.ToUpper(in.Value)] = true
		}
		if in.Command != "DEFINE" || i < 2 {
			continue
		}
		count, name := info.lines[i-1], info.lines[i-2]
		if count.Command == "PUSH" && count.Literal().Kind() == vm.KindInt &&
			name.Command == "PUSH" && name.Literal().Kind() == vm.KindString {
			info.functions[strings.ToUpper(name.Value)] = i
		}
	}
	return info
}

func lineRange(line int, in vm.Instruction) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(len(in.Source))},
	}
}

func diagnostic(line int, in vm.Instruction, severity protocol.DiagnosticSeverity, format string, args ...any) protocol.Diagnostic {
	source := lspName
	return protocol.Diagnostic{
		Range:    lineRange(line, in),
		Severity: &severity,
		Source:   &source,
		Message:  fmt.Sprintf(format, args...),
	}
}

// diagnose flags lines that fail or behave surprisingly when run.
func diagnose(text string) []protocol.Diagnostic {
	info := analyze(text)
	diagnostics := []protocol.Diagnostic{}
	last := len(info.lines) - 1
	for i, in := range info.lines {
		switch {
		case in.Command == "":
			// A trailing newline is not an instruction.
			if i == last {
				continue
			}
			diagnostics = append(diagnostics, diagnostic(i, in, protocol.DiagnosticSeverityWarning,
				"blank line fails as an unknown command when executed"))
		case vm.IsBuiltin(in.Command):
			if in.Command == "PUSH" && !in.HasValue {
				diagnostics = append(diagnostics, diagnostic(i, in, protocol.DiagnosticSeverityInformation,
					"PUSH without a value pushes the empty value"))
			}
			if in.Decoration != "" && in.Command != "COMMENT" && in.Command != "PUSH" {
				diagnostics = append(diagnostics, diagnostic(i, in, protocol.DiagnosticSeverityHint,
					"%q is ignored by %s", in.Decoration, in.Command))
			}
		default:
			if _, ok := info.functions[in.Command]; ok {
				continue
			}
			if info.pushed[in.Command] {
				diagnostics = append(diagnostics, diagnostic(i, in, protocol.DiagnosticSeverityWarning,
					"%s is not a built-in; it must be defined with DEFINE before this line runs", in.Command))
				continue
			}
			diagnostics = append(diagnostics, diagnostic(i, in, protocol.DiagnosticSeverityError,
				"unknown command %s", in.Command))
		}
	}
	return diagnostics
}

func hover(info *docInfo, word string) *protocol.Hover {
	name := strings.ToUpper(word)
	var b strings.Builder
	if cmd, ok := vm.LookupCommand(name); ok {
		fmt.Fprintf(&b, "**%s**\n\n`%s`\n\n%s", cmd.Name, cmd.Usage, cmd.Doc)
	} else if line, ok := info.functions[name]; ok {
		fmt.Fprintf(&b, "**%s**\n\nfunction defined on line %d", name, line+1)
	} else {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

func complete(info *docInfo, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	upperPrefix := strings.ToUpper(prefix)

	for _, cmd := range vm.Commands() {
		if !strings.HasPrefix(cmd.Name, upperPrefix) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := cmd.Usage
		name := cmd.Name
		items = append(items, protocol.CompletionItem{
			Label:         name,
			Kind:          &kind,
			Detail:        &detail,
			Documentation: cmd.Doc,
			InsertText:    &name,
		})
	}

	names := make([]string, 0, len(info.functions))
	for name := range info.functions {
		if strings.HasPrefix(name, upperPrefix) && !vm.IsBuiltin(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		kind := protocol.CompletionItemKindFunction
		detail := "function"
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	return items
}

// --- Text extraction helpers ---

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full word under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
