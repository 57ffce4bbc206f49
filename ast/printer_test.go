package ast_test

import (
	"testing"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/parser"
)

func parseStmts(t *testing.T, source string) []*ast.Node {
	t.Helper()
	p := parser.New(lexer.New(source, "test.viv"))
	stmts, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs)
	}
	return stmts
}

// equalNode compares the semantically meaningful fields of two nodes,
// ignoring source locations.
func equalNode(a, b *ast.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.Literal, ast.Identifier, ast.KeywordNode:
		return a.Token.Kind == b.Token.Kind && a.Token.Lexeme == b.Token.Lexeme
	case ast.Blank:
		return true
	case ast.Binary:
		return a.Operator == b.Operator && equalNode(a.Left, b.Left) && equalNode(a.Right, b.Right)
	case ast.Array:
		return equalNodes(a.Values, b.Values)
	case ast.Block:
		return a.BlockKind == b.BlockKind && equalNodes(a.Values, b.Values)
	case ast.Parameter:
		return a.Modifier == b.Modifier && a.Name == b.Name
	case ast.Callee:
		return equalNode(a.NameParam, b.NameParam) && equalNodes(a.Values, b.Values)
	case ast.Call:
		return equalNode(a.CallName(), b.CallName()) && equalNodes(a.Values, b.Values)
	case ast.Loop:
		return equalNode(a.Call, b.Call) && equalNodes(a.Initial, b.Initial) &&
			equalNodes(a.Continuous, b.Continuous) && equalNodes(a.Statements, b.Statements) &&
			equalNode(a.Each, b.Each) && equalNode(a.Iterator, b.Iterator)
	case ast.Get, ast.Remove:
		return equalNodes(a.Members, b.Members)
	case ast.Set:
		return a.Operator == b.Operator && equalNodes(a.Members, b.Members) && equalNode(a.Value, b.Value)
	case ast.Return:
		return equalNode(a.Value, b.Value)
	default:
		return false
	}
}

func equalNodes(a, b []*ast.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

// TestPrintReparse checks that printing a parsed program yields text that
// re-parses to an equal tree.
func TestPrintReparse(t *testing.T) {
	sources := []string{
		`a = 1`,
		`a: 3, b: 2, return(a + b)`,
		`x = a.b[0]["key"].c`,
		`x = f.0.2`,
		`x = -a; y = not b`,
		`x = (1 + 2) * 3`,
		`x = a == b or c < d and "x" in e`,
		`x = a in .`,
		`function add(a, b) {return(a + b)}`,
		`function apply(function f, reference target) {f(target)}`,
		`if (a) {x = 1} elseif (b) {x = 2} else {x = 3}`,
		`for (i = 0; i < 5; i += 1) {x = i}`,
		`for (;;) {break}`,
		`for (v in items) {z[v] = 1; continue}`,
		`remove a.b[2]`,
		`:= a + 1`,
		`a += 1; a -= 2; a *= 3; a /= 4; a %= 5`,
		`x = [1, "two", true, null, [3.5, {y = 1}]]`,
		`f(1, 2) {a = 2}`,
		`f {a = 2}`,
		`x = "quote \" and \\ and \n"`,
		`a = 1;; b = 2`,
	}
	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			first := parseStmts(t, source)
			printed := ast.Print(first)
			second := parseStmts(t, printed)
			if !equalNodes(first, second) {
				t.Fatalf("round trip changed the tree\nsource:  %q\nprinted: %q", source, printed)
			}
			// And printing is a fixed point after one pass.
			if again := ast.Print(second); again != printed {
				t.Errorf("second print differs:\n%q\n%q", printed, again)
			}
		})
	}
}
