// Package value implements VivJson's runtime value model: JSON-compatible
// dynamic values plus callables, the insertion-order-preserving map type,
// and the lexically-scoped Environment that closures capture.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vivjson/vivjson/ast"
)

// Kind is the closed set of runtime value kinds.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Array
	Map
	Callable
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Map:
		return "map"
	case Callable:
		return "function"
	default:
		return "unknown"
	}
}

// Func is a stored function value (AST terminology: CalleeRegistry). Env is
// the frame captured at definition time; it is nil for a function that was
// not defined inside another function body (no closure needed).
//
// Native, when set, marks a host-supplied builtin: Def and Env are both nil, and the evaluator invokes
// Native directly instead of binding parameters into a function frame.
type Func struct {
	Def         *ast.Node
	Env         *Environment
	IsReference bool
	Native      func(args []*Value) (*Value, error)
}

// NewNativeFunc wraps a host-implemented builtin as a callable Value.
func NewNativeFunc(fn func(args []*Value) (*Value, error)) *Value {
	return NewCallable(&Func{Native: fn})
}

// Value is the single tagged-union runtime value type.
type Value struct {
	Kind Kind
	B    bool
	I    int64
	F    float64
	S    string
	A    []*Value
	M    *Object
	C    *Func
}

// Null / true / false are shared immutable singletons for the common cases;
// callers must still treat every Value as logically immutable.
var (
	NullValue  = &Value{Kind: Null}
	TrueValue  = &Value{Kind: Bool, B: true}
	FalseValue = &Value{Kind: Bool, B: false}
)

func NewBool(b bool) *Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

func NewInt(i int64) *Value        { return &Value{Kind: Int, I: i} }
func NewFloat(f float64) *Value    { return &Value{Kind: Float, F: f} }
func NewString(s string) *Value    { return &Value{Kind: String, S: s} }
func NewArray(a []*Value) *Value   { return &Value{Kind: Array, A: a} }
func NewMap(m *Object) *Value      { return &Value{Kind: Map, M: m} }
func NewCallable(f *Func) *Value   { return &Value{Kind: Callable, C: f} }

// ParseNumberLexeme parses a NUMBER token lexeme into a Value: integer when the literal has no fractional/exponent part and fits
// in an int64, else a double.
func ParseNumberLexeme(lexeme string) (*Value, error) {
	if !strings.ContainsAny(lexeme, ".eE") {
		if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return NewInt(i), nil
		}
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed number %q: %w", lexeme, err)
	}
	return NewFloat(f), nil
}

// Truthy implements the language's truthiness rule: null/false/0/""/empty
// container are falsy, everything else is truthy.
func (v *Value) Truthy() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case Null:
		return false
	case Bool:
		return v.B
	case Int:
		return v.I != 0
	case Float:
		return v.F != 0
	case String:
		return v.S != ""
	case Array:
		return len(v.A) > 0
	case Map:
		return v.M != nil && v.M.Len() > 0
	case Callable:
		return true
	default:
		return false
	}
}

// AsFloat64 returns a numeric value's float64 representation; ok is false
// for non-numeric values.
func (v *Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.I), true
	case Float:
		return v.F, true
	default:
		return 0, false
	}
}

func (v *Value) IsNumeric() bool { return v.Kind == Int || v.Kind == Float }

// DeepEqual implements structural equality, with numeric values compared by
// value across the int/double divide.
func DeepEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af == bf
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Bool:
		return a.B == b.B
	case String:
		return a.S == b.S
	case Array:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !DeepEqual(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	case Map:
		return a.M.Equal(b.M)
	case Callable:
		return a.C == b.C
	default:
		return false
	}
}

// Display renders a value as JSON-ish text, honoring optional infinity/NaN
// token substitution. This is used by the CLI/display layer,
// never by the evaluator itself.
func (v *Value) Display(infinity, nan string) string {
	var b strings.Builder
	v.display(&b, infinity, nan)
	return b.String()
}

func (v *Value) display(b *strings.Builder, infinity, nan string) {
	if v == nil {
		b.WriteString("null")
		return
	}
	switch v.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.B {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(v.I, 10))
	case Float:
		if math.IsInf(v.F, 1) && infinity != "" {
			b.WriteString(infinity)
		} else if math.IsInf(v.F, -1) && infinity != "" {
			b.WriteString("-" + infinity)
		} else if math.IsNaN(v.F) && nan != "" {
			b.WriteString(nan)
		} else {
			b.WriteString(strconv.FormatFloat(v.F, 'g', -1, 64))
		}
	case String:
		b.WriteByte('"')
		for _, r := range v.S {
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
	case Array:
		b.WriteByte('[')
		for i, e := range v.A {
			if i > 0 {
				b.WriteByte(',')
			}
			e.display(b, infinity, nan)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, k := range v.M.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			NewString(k).display(b, infinity, nan)
			b.WriteByte(':')
			val, _ := v.M.Get(k)
			val.display(b, infinity, nan)
		}
		b.WriteByte('}')
	case Callable:
		b.WriteString(`"<function>"`)
	}
}
