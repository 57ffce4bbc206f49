package parser

import (
	"regexp"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/lexer"
)

// Precedence, low to high: or, and, not, equality, comparison, in,
// additive, multiplicative, unary, postfix chain, primary.

func (p *Parser) parseOr() *ast.Node {
	left := p.parseAnd()
	for p.check(lexer.OR) {
		tok := p.advance()
		p.skipNewlines()
		right := p.parseAnd()
		left = ast.NewBinary(left, lexer.OR, right, tok)
	}
	return left
}

func (p *Parser) parseAnd() *ast.Node {
	left := p.parseNot()
	for p.check(lexer.AND) {
		tok := p.advance()
		p.skipNewlines()
		right := p.parseNot()
		left = ast.NewBinary(left, lexer.AND, right, tok)
	}
	return left
}

func (p *Parser) parseNot() *ast.Node {
	if p.check(lexer.NOT) {
		tok := p.advance()
		operand := p.parseNot()
		return ast.NewBinary(ast.NewLiteral(lexer.Token{Kind: lexer.NULL, Lexeme: "null", Location: tok.Location}), lexer.NOT, operand, tok)
	}
	return p.parseEquality()
}

func (p *Parser) parseEquality() *ast.Node {
	left := p.parseComparison()
	for p.check(lexer.EQUAL) || p.check(lexer.NOT_EQUAL) {
		tok := p.advance()
		right := p.parseComparison()
		left = ast.NewBinary(left, tok.Kind, right, tok)
	}
	return left
}

func (p *Parser) parseComparison() *ast.Node {
	left := p.parseIn()
	for p.check(lexer.LESS) || p.check(lexer.LESS_EQUAL) || p.check(lexer.GREATER) || p.check(lexer.GREATER_EQUAL) {
		tok := p.advance()
		right := p.parseIn()
		left = ast.NewBinary(left, tok.Kind, right, tok)
	}
	return left
}

// parseIn parses membership tests. A bare `.` on the right-hand side is the
// "any key/position" form, a non-emptiness test on the left operand; it has
// no primary production of its own, so it is recognized here and carried as
// a literal dot token.
func (p *Parser) parseIn() *ast.Node {
	left := p.parseAdditive()
	for p.check(lexer.IN) {
		tok := p.advance()
		var right *ast.Node
		if p.check(lexer.DOT) {
			right = ast.NewLiteral(p.advance())
		} else {
			right = p.parseAdditive()
		}
		left = ast.NewBinary(left, lexer.IN, right, tok)
	}
	return left
}

func (p *Parser) parseAdditive() *ast.Node {
	left := p.parseMultiplicative()
	for p.check(lexer.PLUS) || p.check(lexer.MINUS) {
		tok := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(left, tok.Kind, right, tok)
	}
	return left
}

func (p *Parser) parseMultiplicative() *ast.Node {
	left := p.parseUnary()
	for p.check(lexer.STAR) || p.check(lexer.SLASH) || p.check(lexer.PERCENT) {
		tok := p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(left, tok.Kind, right, tok)
	}
	return left
}

// parseUnary lowers unary `-` to `(-1) * x` and unary `+` to identity.
func (p *Parser) parseUnary() *ast.Node {
	if p.check(lexer.MINUS) {
		tok := p.advance()
		operand := p.parseUnary()
		negOne := ast.NewLiteral(lexer.Token{Kind: lexer.NUMBER, Lexeme: "-1", Location: tok.Location})
		return ast.NewBinary(negOne, lexer.STAR, operand, tok)
	}
	if p.check(lexer.PLUS) {
		p.advance()
		return p.parseUnary()
	}
	return p.parseChain()
}

// parseChain parses an <element>: a base (identifier or primitive call)
// followed by repeating dot-members or `[...]` subscripts.
func (p *Parser) parseChain() *ast.Node {
	base := p.parsePrimary()
	if base.Kind != ast.Identifier && base.Kind != ast.Call {
		return base
	}
	return p.parseChainFrom(base)
}

func (p *Parser) parseChainFrom(base *ast.Node) *ast.Node {
	members := []*ast.Node{base}
	for {
		switch {
		case p.check(lexer.DOT):
			dotTok := p.advance()
			if p.check(lexer.NUMBER) {
				numTok := p.peek()
				if a, b, ok := splitDotNumber(numTok.Lexeme); ok {
					p.advance()
					members = append(members,
						ast.NewLiteral(lexer.Token{Kind: lexer.NUMBER, Lexeme: a, Location: numTok.Location}),
						ast.NewLiteral(lexer.Token{Kind: lexer.NUMBER, Lexeme: b, Location: numTok.Location}))
					continue
				}
				p.advance()
				members = append(members, ast.NewLiteral(numTok))
				continue
			}
			if p.check(lexer.IDENTIFIER) {
				members = append(members, ast.NewLiteral(p.advance()))
				continue
			}
			p.errorAt(dotTok, "Expected a member name after '.'")
			return ast.NewGet(members, base.Token)
		case p.check(lexer.LBRACKET):
			p.advance()
			p.skipNewlines()
			idx := p.parseOr()
			p.skipNewlines()
			p.consume(lexer.RBRACKET, "Expected ']'")
			members = append(members, idx)
		default:
			if len(members) == 1 {
				return members[0]
			}
			return ast.NewGet(members, base.Token)
		}
	}
}

// dotNumberSplit matches a dot-member NUMBER token that is structurally
// ambiguous between one float literal and two successive integer members
// (e.g. `f.0.2`).
var dotNumberSplit = regexp.MustCompile(`^(\d+)\.(\d+)$`)

func splitDotNumber(lexeme string) (string, string, bool) {
	m := dotNumberSplit.FindStringSubmatch(lexeme)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// parsePrimary parses a literal, parenthesized group, or identifier
// (possibly the start of a call chain).
func (p *Parser) parsePrimary() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case lexer.NUMBER, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NULL:
		p.advance()
		return ast.NewLiteral(tok)
	case lexer.LPAREN:
		p.advance()
		p.skipNewlines()
		expr := p.parseOr()
		p.skipNewlines()
		p.consume(lexer.RPAREN, "Expected ')'")
		return expr
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseBlock(ast.AnonymousBlock)
	case lexer.IDENTIFIER, lexer.SUPER, lexer.INCLUDE, lexer.IMPORT:
		// In JSON-only mode a bare identifier is a value only when it is the
		// configured infinity/NaN token text.
		if p.onlyJSON && tok.Lexeme != p.infinityName && tok.Lexeme != p.nanName {
			p.errorAt(tok, "Unexpected identifier in JSON-only mode: "+tok.Lexeme)
		}
		p.advance()
		return p.parseCallOrIdentifier(tok)
	default:
		p.errorAt(tok, "Unexpected token: "+tok.Lexeme)
		p.advance()
		return ast.NewLiteral(lexer.Token{Kind: lexer.NULL, Lexeme: "null", Location: tok.Location})
	}
}

func (p *Parser) parseArrayLiteral() *ast.Node {
	tok := p.consume(lexer.LBRACKET, "Expected '['")
	values := p.parseSlotList(lexer.RBRACKET, p.parseValueOrExpr)
	p.consume(lexer.RBRACKET, "Expected ']'")
	return ast.NewArray(values, tok)
}

// parseCallOrIdentifier builds either a bare Identifier, a primitive call
// `name(args)`, or an extended call `name(args){...}` / `name{...}` whose
// trailing block becomes the last argument.
func (p *Parser) parseCallOrIdentifier(nameTok lexer.Token) *ast.Node {
	name := ast.NewIdentifier(nameTok)
	if p.check(lexer.LPAREN) {
		args := p.parseArgList()
		call := ast.NewCall(name, args, nameTok)
		if p.check(lexer.LBRACE) {
			call.Values = append(call.Values, p.parseBlock(ast.AnonymousBlock))
		}
		return call
	}
	if p.check(lexer.LBRACE) {
		return ast.NewCall(name, []*ast.Node{p.parseBlock(ast.AnonymousBlock)}, nameTok)
	}
	return name
}

func (p *Parser) parseArgList() []*ast.Node {
	p.consume(lexer.LPAREN, "Expected '('")
	args := p.parseSlotList(lexer.RPAREN, p.parseOr)
	p.consume(lexer.RPAREN, "Expected ')'")
	return args
}
