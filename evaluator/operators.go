package evaluator

import (
	"math"
	"strings"

	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/value"
)

// applyBinary implements the non-short-circuit binary operators.
// `or`/`and`/`not` are handled in evalBinary itself since they must not
// evaluate their second operand eagerly.
func (e *Evaluator) applyBinary(op lexer.Kind, l, r *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	switch op {
	case lexer.PLUS:
		return e.add(l, r, tok)
	case lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return e.arith(op, l, r, tok)
	case lexer.EQUAL:
		return value.NewBool(value.DeepEqual(l, r)), nil
	case lexer.NOT_EQUAL:
		return value.NewBool(!value.DeepEqual(l, r)), nil
	case lexer.LESS, lexer.LESS_EQUAL, lexer.GREATER, lexer.GREATER_EQUAL:
		return e.compare(op, l, r, tok)
	case lexer.IN:
		return e.inOp(l, r, tok)
	default:
		return nil, e.errAt(tok, "unsupported operator")
	}
}

// applyCompound maps a `+=`/`-=`/`*=`/`/=`/`%=` token to the arithmetic
// operator it abbreviates.
func (e *Evaluator) applyCompound(op lexer.Kind, cur, rhs *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	switch op {
	case lexer.PLUS_ASSIGN:
		return e.add(cur, rhs, tok)
	case lexer.MINUS_ASSIGN:
		return e.arith(lexer.MINUS, cur, rhs, tok)
	case lexer.STAR_ASSIGN:
		return e.arith(lexer.STAR, cur, rhs, tok)
	case lexer.SLASH_ASSIGN:
		return e.arith(lexer.SLASH, cur, rhs, tok)
	case lexer.PERCENT_ASSIGN:
		return e.arith(lexer.PERCENT, cur, rhs, tok)
	default:
		return nil, e.errAt(tok, "unsupported compound assignment operator")
	}
}

func (e *Evaluator) add(l, r *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	if l.IsNumeric() && r.IsNumeric() {
		if l.Kind == value.Int && r.Kind == value.Int {
			return value.NewInt(l.I + r.I), nil
		}
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return value.NewFloat(lf + rf), nil
	}
	if l.Kind == value.String && r.Kind == value.String {
		return value.NewString(l.S + r.S), nil
	}
	if l.Kind == value.Array && r.Kind == value.Array {
		out := make([]*value.Value, 0, len(l.A)+len(r.A))
		out = append(out, l.A...)
		out = append(out, r.A...)
		return value.NewArray(out), nil
	}
	if l.Kind == value.Map && r.Kind == value.Map {
		return value.NewMap(value.Merge(l.M, r.M)), nil
	}
	return nil, e.errAt(tok, "operands to '+' have incompatible types")
}

func (e *Evaluator) arith(op lexer.Kind, l, r *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return nil, e.errAt(tok, "arithmetic operator requires numeric operands")
	}
	lf, _ := l.AsFloat64()
	rf, _ := r.AsFloat64()
	bothInt := l.Kind == value.Int && r.Kind == value.Int

	switch op {
	case lexer.MINUS:
		if bothInt {
			return value.NewInt(l.I - r.I), nil
		}
		return value.NewFloat(lf - rf), nil
	case lexer.STAR:
		if bothInt {
			return value.NewInt(l.I * r.I), nil
		}
		return value.NewFloat(lf * rf), nil
	case lexer.SLASH:
		if rf == 0 {
			return nil, e.errAt(tok, "division by zero")
		}
		if bothInt && l.I%r.I == 0 {
			return value.NewInt(l.I / r.I), nil
		}
		return value.NewFloat(lf / rf), nil
	case lexer.PERCENT:
		if rf == 0 {
			return nil, e.errAt(tok, "division by zero")
		}
		if bothInt {
			return value.NewInt(l.I % r.I), nil
		}
		return value.NewFloat(math.Mod(lf, rf)), nil
	default:
		return nil, e.errAt(tok, "unsupported arithmetic operator")
	}
}

func (e *Evaluator) compare(op lexer.Kind, l, r *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	if l.IsNumeric() && r.IsNumeric() {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return value.NewBool(compareFloat(op, lf, rf)), nil
	}
	if l.Kind == value.String && r.Kind == value.String {
		return value.NewBool(compareString(op, l.S, r.S)), nil
	}
	return nil, e.errAt(tok, "comparison requires two numbers or two strings")
}

func compareFloat(op lexer.Kind, l, r float64) bool {
	switch op {
	case lexer.LESS:
		return l < r
	case lexer.LESS_EQUAL:
		return l <= r
	case lexer.GREATER:
		return l > r
	default:
		return l >= r
	}
}

func compareString(op lexer.Kind, l, r string) bool {
	switch op {
	case lexer.LESS:
		return l < r
	case lexer.LESS_EQUAL:
		return l <= r
	case lexer.GREATER:
		return l > r
	default:
		return l >= r
	}
}

// inAny implements `x in .`, the "any key/position" form: true when the
// left operand is a container or string with at least one element, key, or
// character.
func (e *Evaluator) inAny(l *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	switch l.Kind {
	case value.Array:
		return value.NewBool(len(l.A) > 0), nil
	case value.Map:
		return value.NewBool(l.M != nil && l.M.Len() > 0), nil
	case value.String:
		return value.NewBool(l.S != ""), nil
	default:
		return nil, e.errAt(tok, "'in .' requires a container or string on the left")
	}
}

// inOp implements membership: array element equality,
// map key lookup, or substring containment for two strings.
func (e *Evaluator) inOp(l, r *value.Value, tok lexer.Token) (*value.Value, *errors.Error) {
	switch r.Kind {
	case value.Array:
		for _, item := range r.A {
			if value.DeepEqual(item, l) {
				return value.TrueValue, nil
			}
		}
		return value.FalseValue, nil
	case value.Map:
		if l.Kind != value.String {
			return value.FalseValue, nil
		}
		_, ok := r.M.Get(l.S)
		return value.NewBool(ok), nil
	case value.String:
		if l.Kind != value.String {
			return nil, e.errAt(tok, "'in' on a string requires a string operand")
		}
		return value.NewBool(strings.Contains(r.S, l.S)), nil
	default:
		return nil, e.errAt(tok, "'in' requires a container or string on the right")
	}
}
