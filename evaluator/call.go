package evaluator

import (
	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/value"
)

func (e *Evaluator) evalCallee(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	fn := value.NewCallable(&value.Func{Def: node, Env: env, IsReference: false})
	if node.NameParam != nil {
		env.Define(node.NameParam.Name, fn)
	}
	return fn, nil
}

// evalCall dispatches an invocation node: the `if` keyword-call form is
// routed to evalIfCall (it never evaluates its blocks as ordinary
// arguments); everything else resolves a callable and invokes it.
func (e *Evaluator) evalCall(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	if node.Left.Kind == ast.KeywordNode && node.Left.Token.Kind == lexer.IF {
		return e.evalIfCall(node, env, ctx)
	}
	if v, handled, err := e.dispatchModuleCall(node, env, ctx); handled {
		return v, err
	}

	calleeVal, err := e.eval(node.Left, env, ctx)
	if err != nil {
		return nil, err
	}
	if calleeVal.Kind != value.Callable {
		return nil, e.errAt(node.Token, "value is not callable")
	}

	argVals := make([]*value.Value, 0, len(node.Values))
	for _, a := range node.Values {
		v, aerr := e.eval(a, env, ctx)
		if aerr != nil {
			return nil, aerr
		}
		argVals = append(argVals, v)
	}
	return e.invoke(calleeVal.C, node.Values, argVals, env, ctx, node.Token)
}

// dispatchModuleCall routes an `include(...)`/`import(...)` call to the
// host's ModuleResolver, when one is wired. The keywords have no built-in
// semantics of their own: with no resolver configured, the call falls
// through to the normal path and fails as an undefined name, the same as
// any other unknown identifier.
func (e *Evaluator) dispatchModuleCall(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, bool, *errors.Error) {
	if e.modules == nil || node.Left.Kind != ast.Identifier {
		return nil, false, nil
	}
	kind := node.Left.Token.Kind
	if kind != lexer.INCLUDE && kind != lexer.IMPORT {
		return nil, false, nil
	}
	argVals := make([]*value.Value, 0, len(node.Values))
	for _, a := range node.Values {
		v, err := e.eval(a, env, ctx)
		if err != nil {
			return nil, true, err
		}
		argVals = append(argVals, v)
	}
	v, ok := e.modules.Resolve(node.Left.Token.Lexeme, argVals)
	if !ok {
		return nil, true, e.errAt(node.Token, "module resolution failed")
	}
	return v, true, nil
}

type refBinding struct {
	name    string
	argNode *ast.Node
}

// invoke opens a new frame parented at the callee's captured environment
// (or the call-site frame, for a non-closure), binds parameters, runs the
// body, and unwinds a Return sentinel into the call's own result.
// A `reference` parameter is bound by value for the call and written back
// to its originating argument chain afterward, an alias-by-copy-back
// approximation of "bind by name-alias via Get" that covers the common
// mutate-and-return-by-name pattern without requiring a pointer-based
// environment model.
func (e *Evaluator) invoke(fn *value.Func, argNodes []*ast.Node, argVals []*value.Value, callerEnv *value.Environment, callerCtx evalCtx, tok lexer.Token) (*value.Value, *errors.Error) {
	if fn.Native != nil {
		v, err := fn.Native(argVals)
		if err != nil {
			return nil, e.errAt(tok, err.Error())
		}
		return v, nil
	}

	parent := fn.Env
	if parent == nil {
		parent = callerEnv
	}
	fnFrame := value.NewChild(parent)

	body := fn.Def.Body()
	if body == nil {
		return nil, e.errAt(tok, "malformed function definition")
	}
	params := fn.Def.FormalParams()

	var refs []refBinding
	for i, p := range params {
		var argVal *value.Value
		if i < len(argVals) {
			argVal = argVals[i]
		} else {
			argVal = value.NullValue
		}
		if p.Modifier == lexer.FUNCTION && argVal.Kind != value.Callable {
			return nil, e.errAt(tok, "parameter "+p.Name+" requires a callable argument")
		}
		fnFrame.Define(p.Name, argVal)
		if p.Modifier == lexer.REFERENCE && i < len(argNodes) {
			refs = append(refs, refBinding{p.Name, argNodes[i]})
		}
	}

	bodyCtx := evalCtx{funcFrame: fnFrame}
	if err := e.runStatements(body.Values, fnFrame, bodyCtx); err != nil {
		return nil, err
	}

	var result *value.Value
	if v, ok := fnFrame.Get(value.ReturnName); ok {
		result = v
	} else {
		result = fnFrame.Public()
	}

	for _, r := range refs {
		finalVal, _ := fnFrame.Get(r.name)
		members := membersOf(r.argNode)
		if _, err := e.applySet(members, lexer.ASSIGN, finalVal, tok, callerEnv, callerCtx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// evalIfCall evaluates the nested if/elseif/else Call chain built by
// parser.parseIfTail: Values holds [condition, thenBlock, optional elseNode],
// where elseNode is either another such Call (an elseif) or a plain
// LimitedBlock (a final else).
func (e *Evaluator) evalIfCall(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	cond := node.Values[0]
	thenBlock := node.Values[1]
	var elseNode *ast.Node
	if len(node.Values) >= 3 {
		elseNode = node.Values[2]
	}

	condVal, err := e.eval(cond, env, ctx)
	if err != nil {
		return nil, err
	}
	if condVal.Truthy() {
		if err := e.runLimitedBlock(thenBlock, env, ctx); err != nil {
			return nil, err
		}
		return value.NullValue, nil
	}
	if elseNode == nil {
		return value.NullValue, nil
	}
	if elseNode.Kind == ast.Call {
		return e.evalIfCall(elseNode, env, ctx)
	}
	if err := e.runLimitedBlock(elseNode, env, ctx); err != nil {
		return nil, err
	}
	return value.NullValue, nil
}
