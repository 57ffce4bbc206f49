package ast

import (
	"strings"

	"github.com/vivjson/vivjson/lexer"
)

// Print renders a parsed statement list back to source text that re-parses
// to an equal tree. It is the engine behind the `fmt` CLI command. The
// output is normalized, not faithful to the input's spelling: statements are
// `;`-separated, every binary expression is parenthesized, and the `:`
// assignment spelling comes back as `=` (the two parse identically).
func Print(stmts []*Node) string {
	return printStatementList(stmts, "; ")
}

// printStatementList renders a slot list. A Blank slot renders as the empty
// string between separators; a trailing Blank needs its own trailing
// separator to survive a re-parse.
func printStatementList(stmts []*Node, sep string) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = PrintNode(s)
	}
	out := strings.Join(parts, sep)
	if len(stmts) > 0 && stmts[len(stmts)-1].Kind == Blank {
		out += strings.TrimRight(sep, " ")
	}
	return out
}

// PrintNode renders a single node as source text.
func PrintNode(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case Literal:
		return printLiteral(n.Token)
	case Identifier, KeywordNode:
		return n.Token.Lexeme
	case Blank:
		return ""
	case Binary:
		return printBinary(n)
	case Array:
		return "[" + printStatementList(n.Values, ", ") + "]"
	case Block:
		return "{" + printStatementList(n.Values, "; ") + "}"
	case Parameter:
		if n.Modifier == lexer.FUNCTION || n.Modifier == lexer.REFERENCE {
			return n.Modifier.String() + " " + n.Name
		}
		return n.Name
	case Callee:
		return printCallee(n)
	case Call:
		return printCall(n)
	case Loop:
		return printLoop(n)
	case Get:
		return printChain(n.Members)
	case Set:
		if len(n.Members) == 0 {
			return ":= " + PrintNode(n.Value)
		}
		return printChain(n.Members) + " " + n.Operator.String() + " " + PrintNode(n.Value)
	case Remove:
		return "remove " + printChain(n.Members)
	case Return:
		if n.Value == nil {
			return "return"
		}
		return "return(" + PrintNode(n.Value) + ")"
	case Injection:
		return n.Variable + " = " + PrintNode(n.Value)
	default:
		// ValueNode / CalleeRegistry are host-fabricated and have no source
		// spelling; they never occur in a parsed tree.
		return "null"
	}
}

func printLiteral(tok lexer.Token) string {
	if tok.Kind == lexer.STRING {
		return quote(tok.Lexeme)
	}
	return tok.Lexeme
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func printBinary(n *Node) string {
	// Unary lowerings round-trip through their surface spelling: the parser
	// turns `-x` into `(-1) * x` and `not x` into a NOT with a null left.
	if n.Operator == lexer.STAR && n.Left != nil &&
		n.Left.Kind == Literal && n.Left.Token.Lexeme == "-1" {
		return "-(" + PrintNode(n.Right) + ")"
	}
	if n.Operator == lexer.NOT {
		return "not (" + PrintNode(n.Right) + ")"
	}
	return "(" + PrintNode(n.Left) + " " + n.Operator.String() + " " + PrintNode(n.Right) + ")"
}

func printCallee(n *Node) string {
	var b strings.Builder
	b.WriteString(n.Token.Lexeme)
	if n.NameParam != nil {
		b.WriteString(" " + n.NameParam.Name)
	}
	b.WriteString("(")
	b.WriteString(printStatementList(n.FormalParams(), ", "))
	b.WriteString(") ")
	b.WriteString(PrintNode(n.Body()))
	return b.String()
}

func printCall(n *Node) string {
	if n.Left != nil && n.Left.Kind == KeywordNode &&
		(n.Left.Token.Kind == lexer.IF || n.Left.Token.Kind == lexer.ELSEIF) {
		return printIf(n)
	}
	return PrintNode(n.Left) + "(" + printStatementList(n.Values, ", ") + ")"
}

// printIf renders the nested conditional Call chain: Values holds
// [condition, thenBlock, optional elseNode], where elseNode is either
// another such Call (an elseif) or a plain block (a final else).
func printIf(n *Node) string {
	var b strings.Builder
	b.WriteString(n.Left.Token.Lexeme)
	b.WriteString(" (" + PrintNode(n.Values[0]) + ") ")
	b.WriteString(PrintNode(n.Values[1]))
	if len(n.Values) >= 3 {
		tail := n.Values[2]
		b.WriteString(" ")
		if tail.Kind == Call {
			b.WriteString(printIf(tail))
		} else {
			b.WriteString("else " + PrintNode(tail))
		}
	}
	return b.String()
}

func printLoop(n *Node) string {
	body := "{" + printStatementList(n.Statements, "; ") + "}"
	if n.Each != nil {
		return "for (" + n.Each.Token.Lexeme + " in " + PrintNode(n.Iterator) + ") " + body
	}
	var init, cont string
	if len(n.Initial) > 0 && n.Initial[0].Kind != Blank {
		init = PrintNode(n.Initial[0])
	}
	if len(n.Continuous) > 0 && n.Continuous[0].Kind != Blank {
		cont = PrintNode(n.Continuous[0])
	}
	cond := ""
	if n.Call != nil {
		cond = PrintNode(n.Call)
	}
	return "for (" + init + "; " + cond + "; " + cont + ") " + body
}

// printChain renders an access-chain member list: dot members for
// identifier and numeric steps, bracket subscripts for everything else.
func printChain(members []*Node) string {
	var b strings.Builder
	for i, m := range members {
		if i == 0 {
			b.WriteString(PrintNode(m))
			continue
		}
		switch {
		case m.Kind == Literal && m.Token.Kind == lexer.IDENTIFIER:
			b.WriteString("." + m.Token.Lexeme)
		case m.Kind == Literal && m.Token.Kind == lexer.NUMBER:
			b.WriteString("." + m.Token.Lexeme)
		default:
			b.WriteString("[" + PrintNode(m) + "]")
		}
	}
	return b.String()
}
