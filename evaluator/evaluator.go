// Package evaluator implements VivJson's tree-walking evaluator: recursive
// dispatch over the closed ast.Kind set, lexically-scoped environments with
// closures, in-band control-flow sentinels (no exceptions/panics), and the
// three resource caps (depth, loop iterations, container growth) that keep a
// misbehaving script from running away.
package evaluator

import (
	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/value"
)

// StdlibResolver is the dispatch contract for standard-library builtins.
// A host wires a concrete implementation (internal/stdlib); the evaluator
// itself only ever calls Lookup.
type StdlibResolver interface {
	Lookup(name string) (*value.Value, bool)
}

// ModuleResolver is the dispatch hook for `include`/`import` module
// resolution. A host wires a concrete implementation
// (internal/modules); the evaluator only ever calls Resolve.
type ModuleResolver interface {
	Resolve(name string, args []*value.Value) (*value.Value, bool)
}

// Evaluator walks an AST against an Environment tree.
type Evaluator struct {
	maxDepth     int
	maxLoopTimes int
	maxArraySize int
	infinityName string
	nanName      string

	depth int

	stdlib  StdlibResolver
	modules ModuleResolver
}

// Option configures an Evaluator; see New.
type Option func(*Evaluator)

func WithMaxDepth(n int) Option     { return func(e *Evaluator) { e.maxDepth = n } }
func WithMaxLoopTimes(n int) Option { return func(e *Evaluator) { e.maxLoopTimes = n } }
func WithMaxArraySize(n int) Option { return func(e *Evaluator) { e.maxArraySize = n } }
func WithInfinityName(s string) Option { return func(e *Evaluator) { e.infinityName = s } }
func WithNaNName(s string) Option      { return func(e *Evaluator) { e.nanName = s } }
func WithStdlib(r StdlibResolver) Option { return func(e *Evaluator) { e.stdlib = r } }
func WithModules(r ModuleResolver) Option { return func(e *Evaluator) { e.modules = r } }

// New creates an Evaluator with the default resource floors, overridable
// via Option.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{maxDepth: 200, maxLoopTimes: 1000, maxArraySize: 1000}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// evalCtx threads the two frames that control-flow sentinels target: the
// nearest enclosing function-call frame (for `return`) and the nearest
// enclosing loop frame (for `break`/`continue`). At the outermost program
// level funcFrame is the root frame itself, so `return` targets it, and
// loopFrame is nil, so `break`/`continue` are errors.
type evalCtx struct {
	funcFrame *value.Environment
	loopFrame *value.Environment
}

// Run evaluates a top-level statement list against root (already seeded
// with any injected bindings) and produces the final result: the value
// passed to an outer `return`, the reserved result slot written by `:=`, or
// else the root frame's public projection.
func (e *Evaluator) Run(stmts []*ast.Node, root *value.Environment) (*value.Value, *errors.Error) {
	ctx := evalCtx{funcFrame: root}
	if err := e.runStatements(stmts, root, ctx); err != nil {
		return nil, err
	}
	if v, ok := root.Get(value.ReturnName); ok {
		return v, nil
	}
	return root.Public(), nil
}

// runStatements evaluates stmts in order against env, stopping early once a
// control-flow sentinel relevant to ctx has been set.
func (e *Evaluator) runStatements(stmts []*ast.Node, env *value.Environment, ctx evalCtx) *errors.Error {
	for _, s := range stmts {
		if _, err := e.eval(s, env, ctx); err != nil {
			return err
		}
		if e.sentinelSet(env, ctx) {
			break
		}
	}
	return nil
}

func (e *Evaluator) sentinelSet(env *value.Environment, ctx evalCtx) bool {
	if ctx.funcFrame != nil && ctx.funcFrame.Has(value.ReturnName) {
		return true
	}
	if ctx.loopFrame != nil && (ctx.loopFrame.Has(value.BreakName) || ctx.loopFrame.Has(value.ContinueName)) {
		return true
	}
	return false
}

// eval dispatches on node.Kind. Every call counts against maxDepth.
func (e *Evaluator) eval(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return nil, e.errAt(node.Token, "maximum evaluation depth exceeded")
	}

	switch node.Kind {
	case ast.Literal:
		return e.evalLiteral(node)
	case ast.Identifier:
		return e.lookupIdentifier(node, env)
	case ast.KeywordNode:
		return e.evalKeyword(node, env, ctx)
	case ast.Blank:
		return value.NullValue, nil
	case ast.Binary:
		return e.evalBinary(node, env, ctx)
	case ast.Array:
		return e.evalArray(node, env, ctx)
	case ast.Block:
		return e.evalBlockExpr(node, env, ctx)
	case ast.Callee:
		return e.evalCallee(node, env, ctx)
	case ast.Call:
		return e.evalCall(node, env, ctx)
	case ast.Loop:
		return e.evalLoop(node, env, ctx)
	case ast.Get:
		return e.evalGet(node, env, ctx)
	case ast.Set:
		return e.evalSet(node, env, ctx)
	case ast.Remove:
		return e.evalRemove(node, env, ctx)
	case ast.Return:
		return e.evalReturn(node, env, ctx)
	case ast.Injection:
		return e.evalInjection(node, env, ctx)
	case ast.ValueNode:
		return e.evalValueNode(node)
	case ast.CalleeRegistry:
		return e.evalCalleeRegistry(node, env)
	default:
		return nil, e.errAt(node.Token, "unhandled AST node kind")
	}
}

func (e *Evaluator) evalLiteral(node *ast.Node) (*value.Value, *errors.Error) {
	tok := node.Token
	switch tok.Kind {
	case lexer.NUMBER:
		v, err := value.ParseNumberLexeme(tok.Lexeme)
		if err != nil {
			return nil, e.errAt(tok, err.Error())
		}
		return v, nil
	case lexer.STRING:
		return value.NewString(tok.Lexeme), nil
	case lexer.IDENTIFIER:
		// A dot-member name used as a chain step
		// evaluates to its own name as a string key.
		return value.NewString(tok.Lexeme), nil
	case lexer.TRUE:
		return value.TrueValue, nil
	case lexer.FALSE:
		return value.FalseValue, nil
	case lexer.NULL:
		return value.NullValue, nil
	default:
		return nil, e.errAt(tok, "malformed literal")
	}
}

func (e *Evaluator) evalKeyword(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	switch node.Token.Kind {
	case lexer.BREAK:
		if ctx.loopFrame == nil {
			return nil, e.errAt(node.Token, "break outside a loop")
		}
		ctx.loopFrame.Define(value.BreakName, value.TrueValue)
		return value.NullValue, nil
	case lexer.CONTINUE:
		if ctx.loopFrame == nil {
			return nil, e.errAt(node.Token, "continue outside a loop")
		}
		ctx.loopFrame.Define(value.ContinueName, value.TrueValue)
		return value.NullValue, nil
	default:
		return nil, e.errAt(node.Token, "unhandled keyword marker")
	}
}

func (e *Evaluator) evalReturn(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	v := value.NullValue
	if node.Value != nil {
		var err *errors.Error
		v, err = e.eval(node.Value, env, ctx)
		if err != nil {
			return nil, err
		}
	}
	target := ctx.funcFrame
	if target == nil {
		target = env
	}
	target.Define(value.ReturnName, v)
	return v, nil
}

func (e *Evaluator) evalBinary(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	switch node.Operator {
	case lexer.OR:
		l, err := e.eval(node.Left, env, ctx)
		if err != nil {
			return nil, err
		}
		if l.Truthy() {
			return value.TrueValue, nil
		}
		r, err := e.eval(node.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		return value.NewBool(r.Truthy()), nil
	case lexer.AND:
		l, err := e.eval(node.Left, env, ctx)
		if err != nil {
			return nil, err
		}
		if !l.Truthy() {
			return value.FalseValue, nil
		}
		r, err := e.eval(node.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		return value.NewBool(r.Truthy()), nil
	case lexer.NOT:
		r, err := e.eval(node.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		return value.NewBool(!r.Truthy()), nil
	default:
		l, err := e.eval(node.Left, env, ctx)
		if err != nil {
			return nil, err
		}
		if node.Operator == lexer.IN && node.Right.Kind == ast.Literal && node.Right.Token.Kind == lexer.DOT {
			return e.inAny(l, node.Token)
		}
		r, err := e.eval(node.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		return e.applyBinary(node.Operator, l, r, node.Token)
	}
}

func (e *Evaluator) evalArray(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	if len(node.Values) > e.maxArraySize {
		return nil, e.errAt(node.Token, "array literal exceeds maxArraySize")
	}
	out := make([]*value.Value, 0, len(node.Values))
	for _, v := range node.Values {
		ev, err := e.eval(v, env, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return value.NewArray(out), nil
}

// evalBlockExpr evaluates a Block node appearing in expression position
// (an AnonymousBlock or PureBlock: either a function body or a brace literal
// used as a value). A LimitedBlock (if/for body) is never eval'd through
// here; it is run in place by evalIfCall/evalLoop via runLimitedBlock.
func (e *Evaluator) evalBlockExpr(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	child := value.NewChild(env)
	childCtx := evalCtx{funcFrame: child, loopFrame: nil}
	if err := e.runStatements(node.Values, child, childCtx); err != nil {
		return nil, err
	}
	if v, ok := child.Get(value.ReturnName); ok {
		return v, nil
	}
	return child.Public(), nil
}

// runLimitedBlock runs an if/for body directly against env (no new frame),
// so that assignments inside it are visible to the enclosing frame and
// break/continue/return sentinels land in the right ancestor frame.
func (e *Evaluator) runLimitedBlock(block *ast.Node, env *value.Environment, ctx evalCtx) *errors.Error {
	return e.runStatements(block.Values, env, ctx)
}

func (e *Evaluator) evalInjection(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	v, err := e.eval(node.Value, env, ctx)
	if err != nil {
		return nil, err
	}
	env.Assign(node.Variable, v)
	return v, nil
}

func (e *Evaluator) evalValueNode(node *ast.Node) (*value.Value, *errors.Error) {
	if v, ok := node.Host.(*value.Value); ok {
		return v, nil
	}
	return value.NullValue, nil
}

func (e *Evaluator) evalCalleeRegistry(node *ast.Node, env *value.Environment) (*value.Value, *errors.Error) {
	var capturedEnv *value.Environment
	if envVal, ok := node.Env.(*value.Environment); ok {
		capturedEnv = envVal
	}
	return value.NewCallable(&value.Func{Def: node.Def, Env: capturedEnv, IsReference: node.IsReference}), nil
}
