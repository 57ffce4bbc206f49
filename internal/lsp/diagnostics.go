package lsp

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/parser"
)

// Diagnose lexes and parses content and converts every reported error into
// an LSP diagnostic. A `.json` document is held to strict-JSON rules, the
// same split the embedding API applies by file extension.
func Diagnose(uri, content string) []protocol.Diagnostic {
	var opts []parser.Option
	if strings.HasSuffix(strings.ToLower(uri), ".json") {
		opts = append(opts, parser.WithOnlyJSON(true))
	}
	p := parser.New(lexer.New(content, uri), opts...)
	_, errs := p.ParseProgram()

	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		diagnostics = append(diagnostics, toDiagnostic(e))
	}
	return diagnostics
}

// toDiagnostic maps a pipeline error to a single-character range at its
// structured position. Errors without a position anchor at the document
// start.
func toDiagnostic(e *errors.Error) protocol.Diagnostic {
	var line, col uint32
	if e.Line > 0 {
		line = uint32(e.Line - 1)
	}
	if e.Column > 0 {
		col = uint32(e.Column - 1)
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "vivjson",
		Message:  e.Message,
	}
}
