package evaluator

import (
	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/value"
)

// evalLoop executes a lowered `for`. The two forms differ in
// where their loop variable lives: `for (x in iter)` binds x into a child
// frame so the iteration variable does not outlive the loop, while the
// classic init/cond/continuous form runs directly against the enclosing
// frame: its body is a limited block whose assignments merge back, and the
// init variable stays visible after the loop ends.
// Break/continue sentinels land in whichever frame is serving as the loop
// frame and are scrubbed from it before evalLoop returns, so an inner
// loop's break can never leak into an enclosing loop sharing the frame.
func (e *Evaluator) evalLoop(node *ast.Node, env *value.Environment, ctx evalCtx) (*value.Value, *errors.Error) {
	if node.Each != nil {
		loopFrame := value.NewChild(env)
		loopCtx := evalCtx{funcFrame: ctx.funcFrame, loopFrame: loopFrame}
		return e.evalForIn(node, env, ctx, loopFrame, loopCtx)
	}
	loopCtx := evalCtx{funcFrame: ctx.funcFrame, loopFrame: env}
	v, err := e.evalClassicFor(node, env, loopCtx, ctx)
	if env.Has(value.BreakName) {
		env.Delete(value.BreakName)
	}
	if env.Has(value.ContinueName) {
		env.Delete(value.ContinueName)
	}
	return v, err
}

func (e *Evaluator) evalForIn(node *ast.Node, env *value.Environment, ctx evalCtx, loopFrame *value.Environment, loopCtx evalCtx) (*value.Value, *errors.Error) {
	iterVal, err := e.eval(node.Iterator, env, ctx)
	if err != nil {
		return nil, err
	}
	varName := node.Each.Token.Lexeme
	count := 0

	runOneRound := func(bound *value.Value) (bool, *errors.Error) {
		if count >= e.maxLoopTimes {
			return false, e.errAt(node.Token, "loop exceeds maxLoopTimes")
		}
		count++
		loopFrame.Define(varName, bound)
		if err := e.runStatements(node.Statements, loopFrame, loopCtx); err != nil {
			return false, err
		}
		if loopFrame.Has(value.BreakName) {
			return true, nil
		}
		if loopFrame.Has(value.ContinueName) {
			loopFrame.Delete(value.ContinueName)
		}
		if ctx.funcFrame != nil && ctx.funcFrame.Has(value.ReturnName) {
			return true, nil
		}
		return false, nil
	}

	switch iterVal.Kind {
	case value.Array:
		for _, elem := range iterVal.A {
			stop, err := runOneRound(elem)
			if err != nil {
				return nil, err
			}
			if stop {
				break
			}
		}
	case value.Map:
		for _, k := range iterVal.M.Keys() {
			stop, err := runOneRound(value.NewString(k))
			if err != nil {
				return nil, err
			}
			if stop {
				break
			}
		}
	default:
		return nil, e.errAt(node.Token, "for-in requires an array or a map")
	}
	return value.NullValue, nil
}

func (e *Evaluator) evalClassicFor(node *ast.Node, loopFrame *value.Environment, loopCtx evalCtx, ctx evalCtx) (*value.Value, *errors.Error) {
	if len(node.Initial) > 0 {
		if _, err := e.eval(node.Initial[0], loopFrame, loopCtx); err != nil {
			return nil, err
		}
	}
	count := 0
	for {
		if node.Call != nil {
			condVal, err := e.eval(node.Call, loopFrame, loopCtx)
			if err != nil {
				return nil, err
			}
			if !condVal.Truthy() {
				break
			}
		}
		if count >= e.maxLoopTimes {
			return nil, e.errAt(node.Token, "loop exceeds maxLoopTimes")
		}
		count++
		if err := e.runStatements(node.Statements, loopFrame, loopCtx); err != nil {
			return nil, err
		}
		if loopFrame.Has(value.BreakName) {
			break
		}
		if loopFrame.Has(value.ContinueName) {
			loopFrame.Delete(value.ContinueName)
		}
		if ctx.funcFrame != nil && ctx.funcFrame.Has(value.ReturnName) {
			break
		}
		if len(node.Continuous) > 0 {
			if _, err := e.eval(node.Continuous[0], loopFrame, loopCtx); err != nil {
				return nil, err
			}
		}
	}
	return value.NullValue, nil
}
