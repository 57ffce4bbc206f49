package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

func TestDiagnoseCleanSource(t *testing.T) {
	diags := Diagnose("file:///main.viv", "a = 1\nreturn(a + 1)")
	assert.Empty(t, diags)
}

func TestDiagnoseParseError(t *testing.T) {
	diags := Diagnose("file:///main.viv", "x = [1, 2")
	require.NotEmpty(t, diags)
	assert.Equal(t, protocol.DiagnosticSeverityError, diags[0].Severity)
	assert.Equal(t, "vivjson", diags[0].Source)
}

func TestDiagnoseLexError(t *testing.T) {
	diags := Diagnose("file:///main.viv", `x = "unterminated`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "Unterminated")
}

func TestDiagnoseReportsPosition(t *testing.T) {
	// The error is on line 2 (0-based line 1 in LSP terms).
	diags := Diagnose("file:///main.viv", "a = 1\nx = [1, 2")
	require.NotEmpty(t, diags)
	assert.Equal(t, uint32(1), diags[0].Range.Start.Line)
}

func TestDiagnoseJSONDocumentIsStrict(t *testing.T) {
	assert.Empty(t, Diagnose("file:///data.json", `{"a": 3}`))
	assert.NotEmpty(t, Diagnose("file:///data.json", `{"a": 1 + 2}`))
	// The same content is fine as a script.
	assert.Empty(t, Diagnose("file:///data.viv", `{"a": 1 + 2}`))
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(nil)
	require.NotNil(t, s.logger)
	assert.NotNil(t, s.documents)

	s = NewServer(zap.NewNop())
	s.setDocument("file:///a.viv", "a = 1")
	s.mu.Lock()
	content := s.documents["file:///a.viv"]
	s.mu.Unlock()
	assert.Equal(t, "a = 1", content)
}
