package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "EVALUATE ERROR",
				Problem: "undefined name: lenght",
			},
			contains: []string{
				"✗",
				"EVALUATE ERROR",
				"undefined name: lenght",
			},
		},
		{
			name: "error with location",
			opts: ErrorOptions{
				Level:    ErrorLevelError,
				Context:  "PARSE ERROR",
				Problem:  "missing closing bracket",
				Location: "main.viv:3:8",
			},
			contains: []string{
				"missing closing bracket (main.viv:3:8)",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "EVALUATE ERROR",
				Problem:     "undefined name: lenght",
				Suggestions: []string{"length"},
			},
			contains: []string{
				"Did you mean: length?",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "LEX ERROR",
				Problem: "unterminated string",
				HelpCommands: []string{
					"Re-run with --tag-detail for the lex/parse/evaluate phase",
				},
			},
			contains: []string{
				"→ Re-run with --tag-detail for the lex/parse/evaluate phase",
			},
		},
		{
			name: "warning message",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "maxArraySize is close to its cap",
			},
			contains: []string{
				"⚠",
				"maxArraySize is close to its cap",
			},
		},
		{
			name: "info message",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "evaluation finished",
			},
			contains: []string{
				"ℹ",
				"evaluation finished",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError() output missing expected string:\nExpected to contain: %q\nGot: %q", expected, result)
				}
			}
		})
	}
}

func TestEvalErrorWithSuggestions(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := EvalErrorWithSuggestions(
		"EVALUATE ERROR",
		"undefined name: lenght",
		"main.viv:1:1",
		"lenght",
		[]string{"length", "keys", "slugify"},
		true,
	)

	expected := []string{
		"EVALUATE ERROR",
		"undefined name: lenght (main.viv:1:1)",
		"Did you mean: length?",
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("EvalErrorWithSuggestions() missing expected string: %q\ngot: %q", exp, result)
		}
	}
}

func TestWriteError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{
		Level:   ErrorLevelError,
		Context: "TEST ERROR",
		Problem: "this is a test",
	})

	if output := buf.String(); !strings.Contains(output, "TEST ERROR") {
		t.Errorf("WriteError() did not write to buffer correctly, got: %q", output)
	}
}

func TestFormatSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := FormatSuccess("evaluation succeeded", true)
	if !strings.Contains(result, "✓") {
		t.Errorf("FormatSuccess() missing checkmark")
	}
	if !strings.Contains(result, "evaluation succeeded") {
		t.Errorf("FormatSuccess() missing message")
	}
}

func TestWriteSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteSuccess(&buf, "test success", true)

	output := buf.String()
	if !strings.Contains(output, "✓") || !strings.Contains(output, "test success") {
		t.Errorf("WriteSuccess() unexpected output: %q", output)
	}
}

func TestWarning(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := Warning("deprecated builtin used", []string{"use the namespaced form"}, true)
	expected := []string{"⚠", "deprecated builtin used", "Did you mean: use the namespaced form?"}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("Warning() missing expected string: %q", exp)
		}
	}
}

func TestInfo(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := Info("evaluation starting", true)
	expected := []string{"ℹ", "evaluation starting"}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("Info() missing expected string: %q", exp)
		}
	}
}
