package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  protocol.Position
		want string
	}{
		{"simple word", "PUSH 5\nDU", protocol.Position{Line: 1, Character: 2}, "DU"},
		{"after space", "PUSH val", protocol.Position{Line: 0, Character: 8}, "val"},
		{"empty line", "", protocol.Position{Line: 0, Character: 0}, ""},
		{"cursor at beginning", "PRINT", protocol.Position{Line: 0, Character: 0}, ""},
		{"cursor past end", "ADD", protocol.Position{Line: 0, Character: 40}, "ADD"},
		{"line beyond document", "ADD", protocol.Position{Line: 5, Character: 0}, ""},
	}
	for _, tt := range tests {
		if got := extractPrefix(tt.text, tt.pos); got != tt.want {
			t.Errorf("%s: extractPrefix = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  protocol.Position
		want string
	}{
		{"middle of word", "PRINT", protocol.Position{Line: 0, Character: 2}, "PRINT"},
		{"at end", "PUSH 5\nSWAP", protocol.Position{Line: 1, Character: 4}, "SWAP"},
		{"second word", "PUSH my_var", protocol.Position{Line: 0, Character: 7}, "my_var"},
		{"at space", "A  B", protocol.Position{Line: 0, Character: 2}, ""},
		{"line beyond document", "ADD", protocol.Position{Line: 3, Character: 0}, ""},
	}
	for _, tt := range tests {
		if got := extractWord(tt.text, tt.pos); got != tt.want {
			t.Errorf("%s: extractWord = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBoolPtr(t *testing.T) {
	if p := boolPtr(true); p == nil || !*p {
		t.Error("boolPtr(true) should point to true")
	}
}

// ---------------------------------------------------------------------------
// Document analysis
// ---------------------------------------------------------------------------

const lspDoc = `PUSH ADD
PUSH DUP
PUSH double
PUSH 2
DEFINE
PUSH 5
DOUBLE
PRINT`

func TestAnalyzeFindsDefinitions(t *testing.T) {
	info := analyze(lspDoc)
	if line, ok := info.functions["DOUBLE"]; !ok || line != 4 {
		t.Errorf("functions[DOUBLE] = %d, %v; want line 4", line, ok)
	}
	if !info.pushed["ADD"] || info.pushed["5"] {
		t.Errorf("pushed = %v", info.pushed)
	}
}

func TestDiagnose(t *testing.T) {
	text := "PUSH\nFROB\nPUSH helper\nHELPER\nADD extra\n\nPRINT\n"
	diags := diagnose(text)

	want := []struct {
		line     protocol.UInteger
		severity protocol.DiagnosticSeverity
		contains string
	}{
		{0, protocol.DiagnosticSeverityInformation, "empty value"},
		{1, protocol.DiagnosticSeverityError, "unknown command FROB"},
		{3, protocol.DiagnosticSeverityWarning, "DEFINE"},
		{4, protocol.DiagnosticSeverityHint, `"extra"`},
		{5, protocol.DiagnosticSeverityWarning, "blank line"},
	}
	if len(diags) != len(want) {
		for _, d := range diags {
			t.Logf("line %d: %s", d.Range.Start.Line, d.Message)
		}
		t.Fatalf("got %d diagnostics, want %d", len(diags), len(want))
	}
	for i, w := range want {
		d := diags[i]
		if d.Range.Start.Line != w.line || *d.Severity != w.severity || !strings.Contains(d.Message, w.contains) {
			t.Errorf("diagnostic %d = line %d severity %d %q; want line %d severity %d containing %q",
				i, d.Range.Start.Line, *d.Severity, d.Message, w.line, w.severity, w.contains)
		}
	}
}

func TestDiagnoseCleanDocument(t *testing.T) {
	if diags := diagnose(lspDoc); len(diags) != 0 {
		t.Errorf("diagnostics = %+v, want none", diags)
	}
}

func TestHover(t *testing.T) {
	info := analyze(lspDoc)

	h := hover(info, "swap")
	if h == nil {
		t.Fatal("hover(swap) = nil")
	}
	content := h.Contents.(protocol.MarkupContent)
	if !strings.Contains(content.Value, "**SWAP**") || !strings.Contains(content.Value, "Swaps") {
		t.Errorf("hover(swap) = %q", content.Value)
	}

	h = hover(info, "double")
	if h == nil || !strings.Contains(h.Contents.(protocol.MarkupContent).Value, "line 5") {
		t.Errorf("hover(double) = %+v", h)
	}

	if h := hover(info, "nothing"); h != nil {
		t.Errorf("hover(nothing) = %+v, want nil", h)
	}
}

func TestComplete(t *testing.T) {
	info := analyze(lspDoc)

	items := complete(info, "d")
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	got := strings.Join(labels, ",")
	if got != "DIV,DUP,DEFINE,DOUBLE" {
		t.Errorf("complete(d) = %s, want DIV,DUP,DEFINE,DOUBLE", got)
	}
	if items[0].Detail == nil || *items[0].Detail != "DIV" {
		t.Errorf("DIV detail = %v", items[0].Detail)
	}
	if *items[3].Kind != protocol.CompletionItemKindFunction {
		t.Errorf("DOUBLE kind = %v, want function", *items[3].Kind)
	}
}

func TestLSP_DocumentStore(t *testing.T) {
	s := NewLSP()
	s.docs["file:///a.nalm"] = "PUSH 1"
	if text, ok := s.document("file:///a.nalm"); !ok || text != "PUSH 1" {
		t.Errorf("document = %q, %v", text, ok)
	}
	if _, ok := s.document("file:///missing.nalm"); ok {
		t.Error("document found for unopened URI")
	}
}
