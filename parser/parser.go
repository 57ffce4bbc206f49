// Package parser implements VivJson's recursive-descent parser: a flat list
// of top-level statements (an implicit outer block), with controlled
// backtracking via an integer index into a lazily-grown token buffer.
package parser

import (
	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
)

// Parser turns a token stream into a sequence of top-level statements.
type Parser struct {
	lex    *lexer.Lexer
	tokens []lexer.Token
	pos    int
	errs   []*errors.Error

	onlyJSON         bool // enableOnlyJson: accept only strict JSON
	isImplicitAssign bool // true once a direct-value (non-block) parse begins
	infinityName     string
	nanName          string
}

// Option configures a Parser; see New.
type Option func(*Parser)

func WithOnlyJSON(only bool) Option { return func(p *Parser) { p.onlyJSON = only } }
func WithInfinityName(name string) Option { return func(p *Parser) { p.infinityName = name } }
func WithNaNName(name string) Option      { return func(p *Parser) { p.nanName = name } }

// New creates a Parser reading tokens lazily from lex.
func New(lex *lexer.Lexer, opts ...Option) *Parser {
	p := &Parser{lex: lex}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the top-level production and returns the raw statement list,
// with no directly-represented-JSON handling. Most callers want
// ParseProgram instead.
func (p *Parser) Parse() ([]*ast.Node, []*errors.Error) {
	stmts := p.parseStatementsUntilEOS()
	return stmts, p.errs
}

// Program is the result of parsing one input: either an ordinary statement
// list, or (when every top-level statement turned out to be a bare value
// with no script construct among them) a single synthesized "result"
// statement. Direct is non-nil exactly in the latter case.
type Program struct {
	Statements []*ast.Node
	Direct     *ast.Node
}

// ParseProgram parses and applies the directly-represented-JSON rule: a
// top-level sequence consisting solely of bare values (no assignment, call,
// control flow, etc.) is rewritten as a single `:=` result statement, one
// value directly and multiple collected into an array, rather than left to
// evaluate as a set of inert, unbound expression-statements. Rewriting the
// already-parsed statements gives the same observable result as re-parsing
// the input as a value sequence, without requiring the lexer (already
// consumed token-by-token) to be rewound.
func (p *Parser) ParseProgram() (*Program, []*errors.Error) {
	stmts, errs := p.Parse()
	if len(errs) > 0 {
		return &Program{Statements: stmts}, errs
	}

	var values []*ast.Node
	allBare := len(stmts) > 0
	for _, s := range stmts {
		if s.Kind == ast.Blank {
			continue
		}
		if !isBareValue(s) {
			allBare = false
			break
		}
		values = append(values, s)
	}
	if !allBare || len(values) == 0 {
		return &Program{Statements: stmts}, nil
	}

	p.isImplicitAssign = true
	var direct *ast.Node
	if len(values) == 1 {
		direct = values[0]
	} else {
		direct = ast.NewArray(values, values[0].Token)
	}
	return &Program{Statements: stmts, Direct: ast.NewSet(nil, lexer.DEFINE, direct, direct.Token)}, nil
}

// isBareValue reports whether a parsed top-level statement is a plain value
// with no side effect or binding: a literal, or an array literal built
// purely from further bare values. A brace-delimited object is never bare.
func isBareValue(n *ast.Node) bool {
	switch n.Kind {
	case ast.Literal:
		return true
	case ast.Array:
		for _, v := range n.Values {
			if !isBareValue(v) {
				return false
			}
		}
		return true
	case ast.Block:
		// A brace-delimited value used as data (e.g. `{"a": 1}` nested
		// inside an array) still carries assignment statements internally
		// and is not "bare" at top level in the sense this rule cares
		// about: it binds names and must run as ordinary script code.
		return false
	default:
		return false
	}
}

// parseStatementsUntilEOS parses the implicit outer block. A program may
// carry an optional outer `{ ... }` wrapper, recognized here: when
// present, its contents become the whole program and its matching `}` must
// be followed only by trailing whitespace/EOS.
func (p *Parser) parseStatementsUntilEOS() []*ast.Node {
	p.skipNewlines()
	if p.check(lexer.LBRACE) {
		p.advance()
		stmts := p.parseSlotList(lexer.RBRACE, p.parseStatement)
		p.consume(lexer.RBRACE, "Expected '}'")
		p.skipNewlines()
		if !p.isAtEnd() {
			p.errorAt(p.peek(), "Unexpected content after closing '}'")
		}
		return stmts
	}
	return p.parseSlotList(lexer.EOS, func() *ast.Node {
		p.trim()
		return p.parseStatement()
	})
}

// --- token buffer -----------------------------------------------------

func (p *Parser) fill(i int) {
	for len(p.tokens) <= i {
		tok, lexErr := p.lex.Next()
		if lexErr != nil {
			loc := lexErr.Location
			p.errs = append(p.errs, errors.NewAt(errors.Lex, lexErr.Message, loc.String(), loc.Line, loc.Column))
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == lexer.EOS {
			// Keep this slot as the permanent EOS sentinel; further fill
			// calls for larger indices will just keep re-reading EOS from
			// the lexer (which itself always returns EOS at end), so this
			// loop always terminates.
		}
	}
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	p.fill(idx)
	return p.tokens[idx]
}

func (p *Parser) peek() lexer.Token { return p.peekAt(0) }

func (p *Parser) isAtEnd() bool { return p.peek().Kind == lexer.EOS }

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Kind != lexer.EOS {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind lexer.Kind) bool { return p.peek().Kind == kind }

func (p *Parser) checkEnd() bool {
	k := p.peek().Kind
	return k == lexer.SEMICOLON || k == lexer.COMMA || k == lexer.NEW_LINE
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind lexer.Kind, message string) lexer.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorAt(p.peek(), message)
	return p.peek()
}

// skipNewlines discards a run of pure formatting newlines. It never
// consumes `;`/`,`, which are always semantically meaningful separators.
func (p *Parser) skipNewlines() {
	for p.check(lexer.NEW_LINE) {
		p.advance()
	}
}

// checkpoint/restore implement the parser's controlled backtracking: save
// the index before a speculative production, restore it on failure.
func (p *Parser) checkpoint() int { return p.pos }

func (p *Parser) restore(mark int) { p.pos = mark }

// trim drops every token before the current position once it can no longer
// be backtracked into, bounding the buffer's memory. It is safe to call
// between top-level statements.
func (p *Parser) trim() {
	if p.pos == 0 {
		return
	}
	p.tokens = append([]lexer.Token(nil), p.tokens[p.pos:]...)
	p.pos = 0
}

// --- statement-list / argument-list slots -----------------------------

// parseSlotList parses a sequence of items terminated by close, separated by
// <end> tokens (`;`, `,`, `\n`). A run of two or more consecutive <end>
// tokens with nothing between them (including a leading or trailing one)
// produces a Blank placeholder so that positional argument lists such as
// `for(;;)` preserve empty slots; ordinary single separators, and blank
// *lines* (runs of pure newlines) between real items, do not. An entirely empty list (immediately at close) yields no items at
// all, so `f()` has zero arguments rather than one blank argument.
func (p *Parser) parseSlotList(close lexer.Kind, parseItem func() *ast.Node) []*ast.Node {
	p.skipNewlines()
	if p.check(close) {
		return nil
	}
	var items []*ast.Node
	for {
		if p.checkEnd() {
			items = append(items, ast.NewBlank(p.peek()))
		} else {
			items = append(items, parseItem())
		}
		if p.check(close) {
			break
		}
		if !p.checkEnd() {
			p.errorAt(p.peek(), "Expected '"+close.String()+"' or a statement separator")
			break
		}
		p.advance()
		p.skipNewlines()
		if p.check(close) {
			break
		}
	}
	return items
}

// parseBlock parses a brace-delimited block of the given type.
func (p *Parser) parseBlock(kind ast.BlockType) *ast.Node {
	tok := p.consume(lexer.LBRACE, "Expected '{'")
	stmts := p.parseSlotList(lexer.RBRACE, p.parseStatement)
	p.consume(lexer.RBRACE, "Expected '}'")
	return ast.NewBlock(stmts, kind, tok)
}
