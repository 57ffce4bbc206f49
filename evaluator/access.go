package evaluator

import (
	"math"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/value"
)

// evalGet resolves a read-access chain: the first member names a root
// binding (a variable, or a standard-library builtin if undefined locally);
// each subsequent member indexes into the running value.
func (e *Evaluator) evalGet(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	if len(node.Members) == 0 {
		return nil, e.errAt(node.Token, "empty access chain")
	}
	root := node.Members[0]
	var cur *value.Value
	var err *errors.Error
	if root.Kind == ast.Identifier {
		cur, err = e.lookupIdentifier(root, env)
	} else {
		cur, err = e.eval(root, env, ctx)
	}
	if err != nil {
		return nil, err
	}
	for _, m := range node.Members[1:] {
		cur, err = e.stepInto(cur, m, env, ctx)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (e *Evaluator) lookupIdentifier(node *ast.Node, env *value.Environment) (*value.Value, *errors.Error) {
	name := node.Token.Lexeme
	if v, ok := env.Get(name); ok {
		return v, nil
	}
	if e.infinityName != "" && name == e.infinityName {
		return value.NewFloat(math.Inf(1)), nil
	}
	if e.nanName != "" && name == e.nanName {
		return value.NewFloat(math.NaN()), nil
	}
	if e.stdlib != nil {
		if v, ok := e.stdlib.Lookup(name); ok {
			return v, nil
		}
	}
	return nil, e.errAt(node.Token, "undefined name: "+name)
}

// stepInto evaluates one chain step (a dot-member or bracket subscript) on
// the running value cur. A dot-member step's Literal node evaluates to its
// own name or numeric index as a string/int (see evalLiteral's IDENTIFIER
// case), so this single path serves both dot and bracket members uniformly.
func (e *Evaluator) stepInto(cur *value.Value, m *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	idx, err := e.eval(m, env, ctx)
	if err != nil {
		return nil, err
	}
	switch idx.Kind {
	case value.Int:
		if cur.Kind != value.Array {
			return nil, e.errAt(m.Token, "numeric member access on a non-array value")
		}
		i := int(idx.I)
		if i < 0 || i >= len(cur.A) {
			return nil, e.errAt(m.Token, "array index out of range")
		}
		return cur.A[i], nil
	case value.String:
		if cur.Kind != value.Map {
			return nil, e.errAt(m.Token, "member access on a non-map value")
		}
		v, ok := cur.M.Get(idx.S)
		if !ok {
			return nil, e.errAt(m.Token, "undefined member: "+idx.S)
		}
		return v, nil
	default:
		return nil, e.errAt(m.Token, "invalid access key type")
	}
}

// membersOf reduces an already-evaluated-position AST node (only ever an
// Identifier or a Get chain here) to its member-step slice, mirroring the
// parser's own toMembers used to build these nodes in the first place.
func membersOf(n *ast.Node) []*ast.Node {
	switch n.Kind {
	case ast.Identifier:
		return []*ast.Node{n}
	case ast.Get:
		return n.Members
	default:
		return []*ast.Node{n}
	}
}

func (e *Evaluator) evalSet(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	rhs, err := e.eval(node.Value, env, ctx)
	if err != nil {
		return nil, err
	}
	return e.applySet(node.Members, node.Operator, rhs, node.Token, env, ctx)
}

// applySet implements the three assignment shapes:
// the result slot (`:=`, empty members), a plain name, or a multi-step
// chain whose container is resolved first and whose last step is written.
func (e *Evaluator) applySet(members []*ast.Node, op lexer.Kind, rhs *value.Value, tok lexer.Token, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	if len(members) == 0 {
		env.Define(value.ResultName, rhs)
		return rhs, nil
	}
	if len(members) == 1 {
		name := members[0].Token.Lexeme
		finalVal := rhs
		if op != lexer.ASSIGN && op != lexer.DEFINE {
			cur, ok := env.Get(name)
			if !ok {
				return nil, e.errAt(tok, "undefined variable in compound assignment: "+name)
			}
			var cerr *errors.Error
			finalVal, cerr = e.applyCompound(op, cur, rhs, tok)
			if cerr != nil {
				return nil, cerr
			}
		}
		finalVal = markReferenceIfCallable(finalVal)
		if op == lexer.DEFINE {
			env.Define(name, finalVal)
		} else {
			env.Assign(name, finalVal)
		}
		return finalVal, nil
	}

	rootName := members[0].Token.Lexeme
	cur, ok := env.Get(rootName)
	if !ok {
		return nil, e.errAt(tok, "undefined variable: "+rootName)
	}
	var err *errors.Error
	for _, m := range members[1 : len(members)-1] {
		cur, err = e.stepInto(cur, m, env, ctx)
		if err != nil {
			return nil, err
		}
	}
	leaf := members[len(members)-1]
	leafKey, err := e.eval(leaf, env, ctx)
	if err != nil {
		return nil, err
	}
	return e.setIntoContainer(cur, leafKey, op, rhs, tok)
}

func (e *Evaluator) setIntoContainer(cur, key *value.Value, op lexer.Kind, rhs *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	switch key.Kind {
	case value.Int:
		if cur.Kind != value.Array {
			return nil, e.errAt(tok, "index assignment on a non-array value")
		}
		i := int(key.I)
		finalVal := rhs
		if i >= 0 && i < len(cur.A) {
			if op != lexer.ASSIGN && op != lexer.DEFINE {
				var cerr *errors.Error
				finalVal, cerr = e.applyCompound(op, cur.A[i], rhs, tok)
				if cerr != nil {
					return nil, cerr
				}
			}
			cur.A[i] = finalVal
			return finalVal, nil
		}
		if i == len(cur.A) {
			if op != lexer.ASSIGN && op != lexer.DEFINE {
				return nil, e.errAt(tok, "undefined element in compound assignment")
			}
			if len(cur.A)+1 > e.maxArraySize {
				return nil, e.errAt(tok, "array exceeds maxArraySize")
			}
			cur.A = append(cur.A, finalVal)
			return finalVal, nil
		}
		return nil, e.errAt(tok, "array index out of range")
	case value.String:
		if cur.Kind != value.Map {
			return nil, e.errAt(tok, "member assignment on a non-map value")
		}
		existing, exists := cur.M.Get(key.S)
		finalVal := rhs
		if op != lexer.ASSIGN && op != lexer.DEFINE {
			if !exists {
				return nil, e.errAt(tok, "undefined member in compound assignment: "+key.S)
			}
			var cerr *errors.Error
			finalVal, cerr = e.applyCompound(op, existing, rhs, tok)
			if cerr != nil {
				return nil, cerr
			}
		}
		if !exists && cur.M.Len()+1 > e.maxArraySize {
			return nil, e.errAt(tok, "map exceeds maxArraySize")
		}
		cur.M.Set(key.S, finalVal)
		return finalVal, nil
	default:
		return nil, e.errAt(tok, "invalid assignment key type")
	}
}

// markReferenceIfCallable implements "assigning a callable to a new name
// creates a CalleeRegistry marked isReference=true": only
// names explicitly bound to an existing function value are visible in a
// frame's public projection, not the original `function name(){...}`
// definition itself.
func markReferenceIfCallable(v *value.Value) *value.Value {
	if v.Kind == value.Callable && !v.C.IsReference {
		cp := *v.C
		cp.IsReference = true
		return value.NewCallable(&cp)
	}
	return v
}

func (e *Evaluator) evalRemove(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	members := node.Members
	if len(members) == 0 {
		return nil, e.errAt(node.Token, "empty remove target")
	}
	if len(members) == 1 {
		name := members[0].Token.Lexeme
		if !env.Delete(name) {
			return nil, e.errAt(node.Token, "undefined name: "+name)
		}
		return value.NullValue, nil
	}

	rootName := members[0].Token.Lexeme
	cur, ok := env.Get(rootName)
	if !ok {
		return nil, e.errAt(node.Token, "undefined variable: "+rootName)
	}
	var err *errors.Error
	for _, m := range members[1 : len(members)-1] {
		cur, err = e.stepInto(cur, m, env, ctx)
		if err != nil {
			return nil, err
		}
	}
	leaf := members[len(members)-1]
	leafKey, err := e.eval(leaf, env, ctx)
	if err != nil {
		return nil, err
	}
	switch leafKey.Kind {
	case value.Int:
		if cur.Kind != value.Array {
			return nil, e.errAt(node.Token, "remove index on a non-array value")
		}
		i := int(leafKey.I)
		if i < 0 || i >= len(cur.A) {
			return nil, e.errAt(node.Token, "array index out of range")
		}
		cur.A = append(cur.A[:i], cur.A[i+1:]...)
	case value.String:
		if cur.Kind != value.Map {
			return nil, e.errAt(node.Token, "remove member on a non-map value")
		}
		if !cur.M.Delete(leafKey.S) {
			return nil, e.errAt(node.Token, "undefined member: "+leafKey.S)
		}
	default:
		return nil, e.errAt(node.Token, "invalid remove key type")
	}
	return value.NullValue, nil
}
