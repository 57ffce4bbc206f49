// Package ui renders CLI-facing diagnostics: colored error/warning/info
// banners, a progress spinner, a plain table, and Levenshtein-based
// "did you mean" suggestions. None of it reaches into the evaluator; it
// only formats what the evaluator/parser/lexer already reported.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a CLI-facing message.
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures FormatError's rendering.
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Location     string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a standardized diagnostic banner.
//
// Example output:
//
//	✗ EVALUATE ERROR: undefined name: lenght (source.viv:3:8)
//
//	   Did you mean: length?
//
//	   → Re-run with --tag-detail for the lex/parse/evaluate phase
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "✗"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	problem := opts.Problem
	if opts.Location != "" {
		problem = fmt.Sprintf("%s (%s)", problem, opts.Location)
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to w.
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess renders a single-line success message.
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w.
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// EvalErrorWithSuggestions renders an "undefined name" evaluate error,
// fuzzy-matching candidates (the names the caller supplies, such as the
// builtin registry's names) to suggest the likely intended spelling.
func EvalErrorWithSuggestions(kind, message, location, badName string, candidates []string, noColor bool) string {
	var suggestions []string
	if badName != "" {
		suggestions = FindSimilar(badName, candidates, nil)
	}
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     kind,
		Problem:     message,
		Location:    location,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Warning renders a standardized warning message.
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info renders a standardized info message.
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
