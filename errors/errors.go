// Package errors defines the four error kinds produced across the VivJson
// pipeline: lex, parse, evaluate, and I/O (the last being
// raised only by host-side collaborators, never the pipeline itself). Every
// error carries a kind tag, a message, and a location hint, and can render
// itself either as plain text or as a terminal-friendly colored line.
package errors

import (
	"fmt"

	"github.com/fatih/color"
)

// Kind is the closed set of error kinds.
type Kind int

const (
	Lex Kind = iota
	Parse
	Evaluate
	IO
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lexer"
	case Parse:
		return "parser"
	case Evaluate:
		return "evaluator"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a VivJson pipeline error. Location is the most specific location
// hint available: "medium:line:column" for a token-anchored error, or a
// free-form hint such as "3rd argument" when no token is available. For
// token-anchored errors, Line and Column additionally carry the position in
// structured form (1-based; zero when unknown) so tooling such as the LSP
// diagnostics publisher does not have to re-parse the rendered hint.
type Error struct {
	Kind     Kind
	Message  string
	Location string
	Line     int
	Column   int

	// ShowTag mirrors the enableTagDetail config option: when true, Error()
	// includes the kind tag in the rendered message.
	ShowTag bool
}

func New(kind Kind, message, location string) *Error {
	return &Error{Kind: kind, Message: message, Location: location}
}

// NewAt builds a token-anchored error with both the rendered hint and the
// structured position.
func NewAt(kind Kind, message, location string, line, column int) *Error {
	return &Error{Kind: kind, Message: message, Location: location, Line: line, Column: column}
}

func (e *Error) Error() string {
	loc := e.Location
	if loc != "" {
		loc += ": "
	}
	if e.ShowTag {
		return fmt.Sprintf("%s[%s] %s", loc, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s%s", loc, e.Message)
}

// WithTag returns a copy of e with ShowTag set, for enableTagDetail.
func (e *Error) WithTag() *Error {
	cp := *e
	cp.ShowTag = true
	return &cp
}

// Terminal renders the error as a single colored line, grounded on
// compiler/errors/terminal.go's severity-to-color mapping, collapsed to the
// one severity ("error") this package's callers ever need.
func (e *Error) Terminal() string {
	red := color.New(color.FgRed, color.Bold)
	return red.Sprint("error: ") + e.Error()
}
