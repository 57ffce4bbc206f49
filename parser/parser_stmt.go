package parser

import (
	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/lexer"
)

// parseStatement dispatches on the leading token to one of the statement
// forms: break/continue markers, return, remove,
// function/reference definitions, if/elseif/else and for (both lowered to
// Call/Loop nodes), or the default element-or-assignment path.
func (p *Parser) parseStatement() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case lexer.BREAK, lexer.CONTINUE:
		p.advance()
		return ast.NewKeyword(tok)
	case lexer.RETURN:
		p.advance()
		if p.checkEnd() || p.check(lexer.RBRACE) || p.isAtEnd() {
			return ast.NewReturn(nil, tok)
		}
		return ast.NewReturn(p.parseOr(), tok)
	case lexer.REMOVE:
		p.advance()
		return ast.NewRemove(p.parseMemberChain(), tok)
	case lexer.DEFINE:
		// `:= <or>` writes the enclosing frame's result slot; the Set node's
		// empty member list is what marks it.
		p.advance()
		p.skipNewlines()
		return ast.NewSet(nil, lexer.DEFINE, p.parseOr(), tok)
	case lexer.FUNCTION, lexer.REFERENCE:
		return p.parseCalleeDef()
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	default:
		return p.parseAssignmentOrExpr()
	}
}

// parseMemberChain parses a chain expression and reduces it to its member
// steps, for use as a `remove` target.
func (p *Parser) parseMemberChain() []*ast.Node {
	return toMembers(p.parseChain())
}

// toMembers reduces an already-parsed expression to the member-step slice a
// Set/Remove node needs: an Identifier is a one-step chain, a Get node's
// steps are reused directly, and anything else (there is nothing else a
// well-formed assignment target can be) is wrapped as a single step so
// parsing can continue and the evaluator can report a sensible error.
func toMembers(n *ast.Node) []*ast.Node {
	switch n.Kind {
	case ast.Identifier:
		return []*ast.Node{n}
	case ast.Get:
		return n.Members
	default:
		return []*ast.Node{n}
	}
}

// peekAssignOp reports whether the next token introduces an assignment RHS;
// `:` is returned as plain ASSIGN.
func (p *Parser) peekAssignOp() (lexer.Kind, bool) {
	switch p.peek().Kind {
	case lexer.DEFINE, lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.STAR_ASSIGN, lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN:
		return p.peek().Kind, true
	case lexer.COLON:
		return lexer.ASSIGN, true
	default:
		return 0, false
	}
}

// parseAssignmentOrExpr parses a full expression and, if an assignment
// operator follows, lowers it to a Set node; otherwise the expression itself
// is the statement (a bare call, or a bare value contributing to the
// enclosing block's implicit result). In JSON-only mode the grammar is
// restricted to string/identifier keys with `:` and a plain value on the
// right, so strict JSON stays strict.
func (p *Parser) parseAssignmentOrExpr() *ast.Node {
	if p.onlyJSON {
		return p.parseJSONAssignment()
	}
	lhs := p.parseOr()
	if op, ok := p.peekAssignOp(); ok {
		opTok := p.advance()
		p.skipNewlines()
		rhs := p.parseOr()
		return ast.NewSet(toMembers(lhs), op, rhs, opTok)
	}
	return lhs
}

// parseJSONAssignment parses one `"key": value` pair under enableOnlyJson.
func (p *Parser) parseJSONAssignment() *ast.Node {
	keyTok := p.peek()
	if keyTok.Kind != lexer.STRING && keyTok.Kind != lexer.IDENTIFIER {
		p.errorAt(keyTok, "Expected a string or identifier key in JSON-only mode")
	}
	p.advance()
	p.consume(lexer.COLON, "Expected ':' in JSON-only mode")
	p.skipNewlines()
	val := p.parseValueOrExpr()
	return ast.NewSet([]*ast.Node{ast.NewLiteral(keyTok)}, lexer.ASSIGN, val, keyTok)
}

// parseValueOrExpr parses a <thing> in JSON-only mode (no operators, no
// calls) or a full expression otherwise. JSON number literals may carry a
// leading sign, which folds into the literal's lexeme rather than lowering
// to arithmetic the way script-mode unary minus does.
func (p *Parser) parseValueOrExpr() *ast.Node {
	if !p.onlyJSON {
		return p.parseOr()
	}
	if p.check(lexer.MINUS) {
		minusTok := p.advance()
		numTok := p.consume(lexer.NUMBER, "Expected a number after '-' in JSON-only mode")
		return ast.NewLiteral(lexer.Token{
			Kind:     lexer.NUMBER,
			Lexeme:   "-" + numTok.Lexeme,
			Location: minusTok.Location,
		})
	}
	return p.parsePrimary()
}

// parseCalleeDef parses a `function`/`reference` definition: an optional
// name, a parenthesized parameter list, and a trailing pure block body.
func (p *Parser) parseCalleeDef() *ast.Node {
	modTok := p.advance()
	var name *ast.Node
	if p.check(lexer.IDENTIFIER) {
		nameTok := p.advance()
		name = ast.NewParameter(modTok.Kind, nameTok.Lexeme, nameTok)
	}
	p.consume(lexer.LPAREN, "Expected '(' after function/reference")
	params := p.parseSlotList(lexer.RPAREN, p.parseParameter)
	p.consume(lexer.RPAREN, "Expected ')'")
	body := p.parseBlock(ast.PureBlock)
	values := append(params, body)
	return ast.NewCallee(name, values, modTok)
}

// parseParameter parses one formal parameter, with an optional leading
// `function`/`reference` modifier constraining what the caller may pass.
func (p *Parser) parseParameter() *ast.Node {
	mod := lexer.EOS
	if p.check(lexer.FUNCTION) || p.check(lexer.REFERENCE) {
		mod = p.advance().Kind
	}
	nameTok := p.consume(lexer.IDENTIFIER, "Expected parameter name")
	return ast.NewParameter(mod, nameTok.Lexeme, nameTok)
}

// parseIf lowers `if (cond) {..} elseif (cond) {..} else {..}` into a chain
// of Call nodes named by the `if`/`elseif` keyword token, each carrying
// [condition, thenBlock, optional elseNode] as its Values: a single
// uniform shape the evaluator can recurse through without a separate
// conditional-statement Kind.
func (p *Parser) parseIf() *ast.Node {
	tok := p.consume(lexer.IF, "Expected 'if'")
	return p.parseIfTail(tok)
}

func (p *Parser) parseIfTail(tok lexer.Token) *ast.Node {
	p.consume(lexer.LPAREN, "Expected '(' after if/elseif")
	cond := p.parseOr()
	p.consume(lexer.RPAREN, "Expected ')'")
	thenBlock := p.parseBlock(ast.LimitedBlock)
	args := []*ast.Node{cond, thenBlock}
	mark := p.checkpoint()
	p.skipNewlines()
	switch {
	case p.check(lexer.ELSEIF):
		elseifTok := p.advance()
		args = append(args, p.parseIfTail(elseifTok))
	case p.check(lexer.ELSE):
		p.advance()
		args = append(args, p.parseBlock(ast.LimitedBlock))
	default:
		// No else branch: leave the newline as the statement separator.
		p.restore(mark)
	}
	return ast.NewCall(ast.NewKeyword(tok), args, tok)
}

// parseFor parses both lowered `for` forms: the classic
// three-slot `for (init; cond; continuous) body`, and `for (x in iter) body`.
// The two are disambiguated by speculatively parsing an identifier followed
// by `in` and backtracking if that fails.
func (p *Parser) parseFor() *ast.Node {
	tok := p.consume(lexer.FOR, "Expected 'for'")
	p.consume(lexer.LPAREN, "Expected '(' after for")

	if p.check(lexer.IDENTIFIER) {
		mark := p.checkpoint()
		nameTok := p.advance()
		if p.check(lexer.IN) {
			p.advance()
			iter := p.parseOr()
			p.consume(lexer.RPAREN, "Expected ')'")
			body := p.parseBlock(ast.LimitedBlock)
			return ast.NewLoop(nil, nil, nil, body.Values, ast.NewIdentifier(nameTok), iter, tok)
		}
		p.restore(mark)
	}

	init := p.parseForSlot(func() *ast.Node { return p.parseStatement() })
	p.consume(lexer.SEMICOLON, "Expected ';' in for")
	var cond *ast.Node
	if !p.check(lexer.SEMICOLON) {
		cond = p.parseOr()
	}
	p.consume(lexer.SEMICOLON, "Expected ';' in for")
	cont := p.parseForSlot(func() *ast.Node { return p.parseStatement() })
	p.consume(lexer.RPAREN, "Expected ')'")
	body := p.parseBlock(ast.LimitedBlock)
	return ast.NewLoop(cond, init, cont, body.Values, nil, nil, tok)
}

// parseForSlot parses one init/continuous clause of a classic `for`, which
// may be entirely elided (e.g. `for (;;)`), yielding a Blank placeholder.
func (p *Parser) parseForSlot(parseItem func() *ast.Node) []*ast.Node {
	if p.check(lexer.SEMICOLON) || p.check(lexer.RPAREN) {
		return []*ast.Node{ast.NewBlank(p.peek())}
	}
	return []*ast.Node{parseItem()}
}
