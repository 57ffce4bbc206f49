package evaluator_test

import (
	"testing"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/evaluator"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/parser"
	"github.com/vivjson/vivjson/value"
)

func run(t *testing.T, source string, opts ...evaluator.Option) (*value.Value, *errors.Error) {
	t.Helper()
	p := parser.New(lexer.New(source, "test.viv"))
	prog, errs := p.ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs)
	}
	stmts := prog.Statements
	if prog.Direct != nil {
		stmts = append(stmts, prog.Direct)
	}
	return evaluator.New(opts...).Run(stmts, value.New())
}

func runValue(t *testing.T, source string, opts ...evaluator.Option) *value.Value {
	t.Helper()
	v, err := run(t, source, opts...)
	if err != nil {
		t.Fatalf("unexpected evaluate error for %q: %v", source, err)
	}
	return v
}

func runError(t *testing.T, source string, opts ...evaluator.Option) *errors.Error {
	t.Helper()
	v, err := run(t, source, opts...)
	if err == nil {
		t.Fatalf("expected an error for %q, got %v", source, v)
	}
	return err
}

func assertInt(t *testing.T, v *value.Value, expected int64) {
	t.Helper()
	if v.Kind != value.Int || v.I != expected {
		t.Fatalf("expected integer %d, got %v (%v)", expected, v, v.Kind)
	}
}

func assertFloat(t *testing.T, v *value.Value, expected float64) {
	t.Helper()
	if v.Kind != value.Float || v.F != expected {
		t.Fatalf("expected float %g, got %v (%v)", expected, v, v.Kind)
	}
}

func TestArithmetic(t *testing.T) {
	assertInt(t, runValue(t, "return(1 + 2)"), 3)
	assertInt(t, runValue(t, "return(7 - 3)"), 4)
	assertInt(t, runValue(t, "return(6 * 7)"), 42)
	assertInt(t, runValue(t, "return(10 / 5)"), 2)
	assertFloat(t, runValue(t, "return(7 / 2)"), 3.5)
	assertInt(t, runValue(t, "return(7 % 3)"), 1)
	assertFloat(t, runValue(t, "return(1 + 2.5)"), 3.5)
	assertInt(t, runValue(t, "return(-5 + 2)"), -3)
}

func TestDivisionByZero(t *testing.T) {
	runError(t, "return(1 / 0)")
	runError(t, "return(1 % 0)")
}

func TestTypeMismatch(t *testing.T) {
	runError(t, `return(1 + "x")`)
	runError(t, `return("a" - "b")`)
	runError(t, `return(1 < "x")`)
}

func TestStringConcat(t *testing.T) {
	v := runValue(t, `return("foo" + "bar")`)
	if v.Kind != value.String || v.S != "foobar" {
		t.Fatalf("expected foobar, got %v", v)
	}
}

func TestArrayConcat(t *testing.T) {
	v := runValue(t, "return([1, 2] + [3])")
	if v.Kind != value.Array || len(v.A) != 3 {
		t.Fatalf("expected 3 elements, got %v", v)
	}
	assertInt(t, v.A[2], 3)
}

func TestMapMerge(t *testing.T) {
	v := runValue(t, "return({a = 1, b = 2} + {b = 20, c = 30})")
	if v.Kind != value.Map {
		t.Fatalf("expected a map, got %v", v.Kind)
	}
	b, _ := v.M.Get("b")
	assertInt(t, b, 20)
	if v.M.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", v.M.Len())
	}
}

func TestComparisonAndEquality(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"return(1 < 2)", true},
		{"return(2 <= 2)", true},
		{"return(3 > 4)", false},
		{`return("a" < "b")`, true},
		{"return(1 == 1.0)", true},
		{"return(1 != 2)", true},
		{"return([1, [2]] == [1, [2]])", true},
		{"return({a = 1} == {a = 1.0})", true},
		{`return("x" == "y")`, false},
	}
	for _, tt := range tests {
		v := runValue(t, tt.source)
		if v.Kind != value.Bool || v.B != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.source, tt.expected, v)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	// The right operand must not be evaluated when the left decides.
	v := runValue(t, "return(false and missing)")
	if v.B {
		t.Fatal("expected false")
	}
	v = runValue(t, "return(true or missing)")
	if !v.B {
		t.Fatal("expected true")
	}
	runError(t, "return(true and missing)")
}

func TestNot(t *testing.T) {
	if v := runValue(t, "return(not 0)"); !v.B {
		t.Error("not 0 must be true")
	}
	if v := runValue(t, `return(not "x")`); v.B {
		t.Error("not non-empty-string must be false")
	}
}

func TestInOperator(t *testing.T) {
	if v := runValue(t, "return(2 in [1, 2, 3])"); !v.B {
		t.Error("array membership failed")
	}
	if v := runValue(t, `return("a" in {a = 1})`); !v.B {
		t.Error("map key membership failed")
	}
	if v := runValue(t, `return("ell" in "hello")`); !v.B {
		t.Error("substring membership failed")
	}
	if v := runValue(t, "return(9 in [1, 2])"); v.B {
		t.Error("absent element reported present")
	}
}

func TestInAnyKeyOrPosition(t *testing.T) {
	// `x in .` tests the left operand for non-emptiness.
	tests := []struct {
		source   string
		expected bool
	}{
		{"return([1] in .)", true},
		{"return([] in .)", false},
		{"return({a = 1} in .)", true},
		{"return({} in .)", false},
		{`return("x" in .)`, true},
		{`return("" in .)`, false},
	}
	for _, tt := range tests {
		v := runValue(t, tt.source)
		if v.Kind != value.Bool || v.B != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.source, tt.expected, v)
		}
	}
	runError(t, "return(3 in .)")
}

func TestChainAccess(t *testing.T) {
	assertInt(t, runValue(t, `m = {a = [10, 20]}, return(m.a[1])`), 20)
	assertInt(t, runValue(t, `m = {a = {b = 5}}, return(m.a.b)`), 5)
	assertInt(t, runValue(t, `arr = [[1, 2], [3, 4]], return(arr.1.0)`), 3)
}

func TestChainErrors(t *testing.T) {
	runError(t, "a = [1], return(a[5])")
	runError(t, "a = [1], return(a.x)")
	runError(t, "m = {a = 1}, return(m.b)")
	runError(t, "return(missing)")
}

func TestChainAssignment(t *testing.T) {
	assertInt(t, runValue(t, "m = {a = 1}, m.a = 9, return(m.a)"), 9)
	assertInt(t, runValue(t, "a = [1, 2], a[1] = 5, return(a[1])"), 5)
	// Appending exactly at the end grows the array.
	assertInt(t, runValue(t, "a = [1], a[1] = 7, return(a[1])"), 7)
	runError(t, "a = [1], a[5] = 7")
	// New map keys may be created by assignment.
	assertInt(t, runValue(t, "m = {}, m.k = 3, return(m.k)"), 3)
}

func TestCompoundAssignment(t *testing.T) {
	assertInt(t, runValue(t, "a = 1, a += 4, return(a)"), 5)
	assertInt(t, runValue(t, "a = 10, a /= 2, return(a)"), 5)
	assertInt(t, runValue(t, "m = {n = 1}, m.n *= 6, return(m.n)"), 6)
	// The LHS must already exist.
	runError(t, "b += 1")
	runError(t, "m = {}, m.n += 1")
	// The append slot is not an existing element either.
	runError(t, "a = [1], a[1] += 5")
}

func TestRemove(t *testing.T) {
	v := runValue(t, "a = 1, b = 2, remove a, return(b)")
	assertInt(t, v, 2)
	runError(t, "a = 1, remove a, return(a)")
	assertInt(t, runValue(t, "a = [1, 2, 3], remove a[1], return(a[1])"), 3)
	assertInt(t, runValue(t, "m = {x = 1, y = 2}, remove m.x, return(len_keys(m))",
		evaluator.WithStdlib(testStdlib{})), 1)
	runError(t, "remove missing")
	runError(t, "m = {}, remove m.x")
}

func TestIfElse(t *testing.T) {
	assertInt(t, runValue(t, "if (true) {x = 1} else {x = 2}; return(x)"), 1)
	assertInt(t, runValue(t, "if (false) {x = 1} else {x = 2}; return(x)"), 2)
	assertInt(t, runValue(t, "a = 5, if (a < 3) {x = 1} elseif (a < 10) {x = 2} else {x = 3}; return(x)"), 2)
}

func TestLimitedBlockMergesIntoEnclosingFrame(t *testing.T) {
	// An if body writes straight into the enclosing frame.
	assertInt(t, runValue(t, "x = 0, if (true) {x = 9, y = 1}; return(x + y)"), 10)
}

func TestClassicFor(t *testing.T) {
	// The init variable stays visible after the loop.
	assertInt(t, runValue(t, "for (i = 0; i < 5; i += 1) {}; return(i)"), 5)
	assertInt(t, runValue(t, "s = 0, for (i = 1; i <= 4; i += 1) {s += i}; return(s)"), 10)
}

func TestForInArray(t *testing.T) {
	assertInt(t, runValue(t, "s = 0, for (v in [1, 2, 3]) {s += v}; return(s)"), 6)
}

func TestForInMapKeysInOrder(t *testing.T) {
	v := runValue(t, `m = {z = 1, a = 2}, ks = [], i = 0, for (k in m) {ks[i] = k, i += 1}; return(ks)`)
	if len(v.A) != 2 || v.A[0].S != "z" || v.A[1].S != "a" {
		t.Fatalf("expected keys in insertion order [z, a], got %v", v)
	}
}

func TestForInBuildsMap(t *testing.T) {
	v := runValue(t, `z = {}, for (v in [{x = "dog", y = 2}, {x = "cat", y = 3}]) {z[v.x] = v.y}, return(z)`)
	if v.Kind != value.Map || v.M.Len() != 2 {
		t.Fatalf("expected 2-key map, got %v", v)
	}
	dog, _ := v.M.Get("dog")
	assertInt(t, dog, 2)
	cat, _ := v.M.Get("cat")
	assertInt(t, cat, 3)
	if keys := v.M.Keys(); keys[0] != "dog" || keys[1] != "cat" {
		t.Errorf("expected insertion order [dog, cat], got %v", keys)
	}
}

func TestBreakContinue(t *testing.T) {
	assertInt(t, runValue(t, "for (i = 0; i < 10; i += 1) {if (i == 3) {break}}; return(i)"), 3)
	assertInt(t, runValue(t, "c = 0, for (i = 0; i < 5; i += 1) {if (i == 2) {continue}; c += 1}; return(c)"), 4)
}

func TestNestedLoopBreakIsLocal(t *testing.T) {
	v := runValue(t, `
c = 0
for (i = 0; i < 3; i += 1) {
  for (j = 0; j < 10; j += 1) {
    if (j == 1) {break}
    c += 1
  }
}
return(c)`)
	assertInt(t, v, 3)
}

func TestBreakOutsideLoop(t *testing.T) {
	runError(t, "break")
	runError(t, "continue")
}

func TestFunctions(t *testing.T) {
	assertInt(t, runValue(t, "function add(a, b) {return(a + b)}; return(add(3, 4))"), 7)
	// Missing arguments bind null.
	v := runValue(t, "function probe(a, b) {return(b)}; return(probe(1))")
	if v.Kind != value.Null {
		t.Fatalf("expected null for a missing argument, got %v", v)
	}
}

func TestReturnUnwindsThroughLoops(t *testing.T) {
	assertInt(t, runValue(t, "function f() {for (i = 0; i < 10; i += 1) {if (i == 3) {return(i)}}}; return(f())"), 3)
}

func TestFunctionBodyProjectionWhenNoReturn(t *testing.T) {
	v := runValue(t, "function make() {a = 1, b = 2}; return(make())")
	if v.Kind != value.Map || v.M.Len() != 2 {
		t.Fatalf("expected {a, b} projection, got %v", v)
	}
}

func TestClosureCapture(t *testing.T) {
	v := runValue(t, `function enclosure(a) {x = a; function closure(y) {return(x + y)}; return(closure)}
z1 = enclosure(100)
z2 = enclosure(200)
return([z1(5), z2(10)])`)
	if len(v.A) != 2 {
		t.Fatalf("expected 2 results, got %v", v)
	}
	assertInt(t, v.A[0], 105)
	assertInt(t, v.A[1], 210)
}

func TestClosureSeesLaterMutation(t *testing.T) {
	// The capture is shared, not copied: a mutation after the closure is
	// created is visible to later invocations.
	assertInt(t, runValue(t, "function g() {x = 1; function f() {return(x)}; x = 2; return(f)}; h = g(); return(h())"), 2)
}

func TestScopeProjectionHidesDefinitions(t *testing.T) {
	v := runValue(t, "k = {function fn() {return(1)}; y = fn}; return(k)")
	if v.Kind != value.Map {
		t.Fatalf("expected a map, got %v", v.Kind)
	}
	if _, ok := v.M.Get("fn"); ok {
		t.Error("function definition must not appear in the public projection")
	}
	if _, ok := v.M.Get("y"); !ok {
		t.Error("reference binding must appear in the public projection")
	}
}

func TestFunctionParameterModifier(t *testing.T) {
	assertInt(t, runValue(t, "function twice(function f, v) {return(f(f(v)))}; function inc(n) {return(n + 1)}; return(twice(inc, 3))"), 5)
	runError(t, "function ap(function f) {return(f())}; ap(3)")
}

func TestReferenceParameter(t *testing.T) {
	assertInt(t, runValue(t, "function bump(reference o) {o.n += 1}; z = {n = 1}; bump(z); return(z.n)"), 2)
}

func TestResultSlot(t *testing.T) {
	assertInt(t, runValue(t, ":= 41 + 1"), 42)
	// A later := overwrites.
	assertInt(t, runValue(t, ":= 1; := 2"), 2)
}

func TestMaxDepth(t *testing.T) {
	err := runError(t, "function f(n) {return(f(n + 1))}; f(0)")
	if err.Kind != errors.Evaluate {
		t.Errorf("expected an evaluate error, got %v", err.Kind)
	}
	// A shallow program passes under a tight cap; a nested one fails.
	runValue(t, "return(1 + 1)", evaluator.WithMaxDepth(20))
	runError(t, "return(1 + (2 + (3 + (4 + 5))))", evaluator.WithMaxDepth(3))
}

func TestMaxLoopTimes(t *testing.T) {
	runValue(t, "for (i = 0; i < 5; i += 1) {}")
	runError(t, "for (i = 0; i < 5; i += 1) {}", evaluator.WithMaxLoopTimes(3))
	runError(t, "for (;;) {}")
	runError(t, "s = 0, for (v in [1, 2, 3, 4]) {s += v}", evaluator.WithMaxLoopTimes(2))
}

func TestMaxArraySize(t *testing.T) {
	runError(t, "a = [], for (i = 0; i < 5; i += 1) {a[i] = i}", evaluator.WithMaxArraySize(3))
	runError(t, "m = {}, m.a = 1, m.b = 2", evaluator.WithMaxArraySize(1))
	runValue(t, "a = [1, 2, 3]", evaluator.WithMaxArraySize(3))
	runError(t, "a = [1, 2, 3, 4]", evaluator.WithMaxArraySize(3))
}

func TestTopLevelBindingsProjection(t *testing.T) {
	v := runValue(t, "a = 3, b = 2")
	if v.Kind != value.Map || v.M.Len() != 2 {
		t.Fatalf("expected {a, b}, got %v", v)
	}
}

func TestTopLevelReturnWins(t *testing.T) {
	assertInt(t, runValue(t, "a = 3, b = 2, return(a + b)"), 5)
}

// testStdlib exercises the standard-library dispatch contract with a
// resolver the test controls.
type testStdlib struct{}

func (testStdlib) Lookup(name string) (*value.Value, bool) {
	switch name {
	case "double":
		return value.NewNativeFunc(func(args []*value.Value) (*value.Value, error) {
			return value.NewInt(args[0].I * 2), nil
		}), true
	case "len_keys":
		return value.NewNativeFunc(func(args []*value.Value) (*value.Value, error) {
			return value.NewInt(int64(args[0].M.Len())), nil
		}), true
	default:
		return nil, false
	}
}

func TestStdlibDispatch(t *testing.T) {
	assertInt(t, runValue(t, "return(double(21))", evaluator.WithStdlib(testStdlib{})), 42)
	// Local bindings shadow builtins.
	v := runValue(t, "double = 7, return(double)", evaluator.WithStdlib(testStdlib{}))
	assertInt(t, v, 7)
	runError(t, "return(nope(1))", evaluator.WithStdlib(testStdlib{}))
}

// testModules exercises the include/import dispatch hook.
type testModules struct{}

func (testModules) Resolve(name string, args []*value.Value) (*value.Value, bool) {
	if len(args) == 1 && args[0].Kind == value.String && args[0].S == "math" {
		obj := value.NewObject()
		obj.Set("pi", value.NewFloat(3.14))
		return value.NewMap(obj), true
	}
	return nil, false
}

func TestModuleDispatch(t *testing.T) {
	v := runValue(t, `m = include("math"), return(m.pi)`, evaluator.WithModules(testModules{}))
	assertFloat(t, v, 3.14)
	runError(t, `include("nope")`, evaluator.WithModules(testModules{}))
	// Without a resolver the keyword is just an undefined name.
	runError(t, `include("math")`)
}

func TestInfinityNaN(t *testing.T) {
	v := runValue(t, "return(Infinity)", evaluator.WithInfinityName("Infinity"))
	if v.Kind != value.Float || !(v.F > 0) {
		t.Fatalf("expected +Inf, got %v", v)
	}
	v = runValue(t, "return(-Infinity)", evaluator.WithInfinityName("Infinity"))
	if !(v.F < 0) {
		t.Fatalf("expected -Inf, got %v", v)
	}
}

func TestDirectValue(t *testing.T) {
	assertInt(t, runValue(t, "3"), 3)
	v := runValue(t, "[1, 2]")
	if v.Kind != value.Array || len(v.A) != 2 {
		t.Fatalf("expected [1, 2], got %v", v)
	}
}

func TestInjectionNode(t *testing.T) {
	tok := lexer.Token{Kind: lexer.IDENTIFIER, Lexeme: "seed"}
	inj := ast.NewInjection("seed", ast.NewValueNode(value.NewInt(11), nil, tok), nil, tok)
	ret := ast.NewReturn(ast.NewIdentifier(tok), tok)
	v, err := evaluator.New().Run([]*ast.Node{inj, ret}, value.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInt(t, v, 11)
}
