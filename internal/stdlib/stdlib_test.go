package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivjson/vivjson/value"
)

func call(t *testing.T, r *Registry, name string, args ...*value.Value) (*value.Value, error) {
	t.Helper()
	fn, ok := r.Lookup(name)
	require.True(t, ok, "builtin %q not registered", name)
	require.Equal(t, value.Callable, fn.Kind)
	require.NotNil(t, fn.C.Native)
	return fn.C.Native(args)
}

func mustCall(t *testing.T, r *Registry, name string, args ...*value.Value) *value.Value {
	t.Helper()
	v, err := call(t, r, name, args...)
	require.NoError(t, err)
	return v
}

func TestLookupUnknown(t *testing.T) {
	_, ok := New().Lookup("no_such_builtin")
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	r := New()
	assert.Equal(t, int64(5), mustCall(t, r, "len", value.NewString("héllo")).I)
	assert.Equal(t, int64(2), mustCall(t, r, "len", value.NewArray([]*value.Value{value.NewInt(1), value.NewInt(2)})).I)

	obj := value.NewObject()
	obj.Set("a", value.NewInt(1))
	assert.Equal(t, int64(1), mustCall(t, r, "len", value.NewMap(obj)).I)

	_, err := call(t, r, "len", value.NewInt(3))
	assert.Error(t, err)
}

func TestTypeAndConversions(t *testing.T) {
	r := New()
	assert.Equal(t, "integer", mustCall(t, r, "type", value.NewInt(1)).S)
	assert.Equal(t, "string", mustCall(t, r, "type", value.NewString("x")).S)

	assert.Equal(t, "3", mustCall(t, r, "string", value.NewInt(3)).S)
	assert.Equal(t, "raw", mustCall(t, r, "string", value.NewString("raw")).S)

	assert.Equal(t, int64(42), mustCall(t, r, "number", value.NewString(" 42 ")).I)
	assert.Equal(t, 2.5, mustCall(t, r, "number", value.NewString("2.5")).F)
	assert.Equal(t, int64(1), mustCall(t, r, "number", value.TrueValue).I)
	_, err := call(t, r, "number", value.NewString("nope"))
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	r := New()
	obj := value.NewObject()
	obj.Set("z", value.NewInt(1))
	obj.Set("a", value.NewInt(2))

	v := mustCall(t, r, "keys", value.NewMap(obj))
	require.Equal(t, value.Array, v.Kind)
	require.Len(t, v.A, 2)
	assert.Equal(t, "z", v.A[0].S)
	assert.Equal(t, "a", v.A[1].S)
}

func TestStringBuiltins(t *testing.T) {
	r := New()
	assert.Equal(t, "hello-world", mustCall(t, r, "String_slugify", value.NewString("Hello, World!")).S)
	assert.Equal(t, "ABC", mustCall(t, r, "String_upcase", value.NewString("abc")).S)
	assert.Equal(t, "abc", mustCall(t, r, "String_downcase", value.NewString("ABC")).S)
	assert.Equal(t, "x", mustCall(t, r, "String_trim", value.NewString("  x  ")).S)
	assert.True(t, mustCall(t, r, "String_contains", value.NewString("hello"), value.NewString("ell")).B)
	assert.Equal(t, "hullo", mustCall(t, r, "String_replace", value.NewString("hello"), value.NewString("e"), value.NewString("u")).S)

	_, err := call(t, r, "String_length", value.NewInt(3))
	assert.Error(t, err)
}

func TestTimeBuiltins(t *testing.T) {
	r := New()
	now := mustCall(t, r, "Time_now")
	require.Equal(t, value.String, now.Kind)

	later := mustCall(t, r, "Time_add_days", now, value.NewInt(1))
	assert.NotEqual(t, now.S, later.S)

	day := mustCall(t, r, "Time_format", now, value.NewString("2006-01-02"))
	assert.Len(t, day.S, 10)

	parsed := mustCall(t, r, "Time_parse", value.NewString("2026-08-01"), value.NewString("2006-01-02"))
	assert.Contains(t, parsed.S, "2026-08-01")
	// An unparseable input yields null rather than an error.
	assert.Equal(t, value.Null, mustCall(t, r, "Time_parse", value.NewString("nope"), value.NewString("2006-01-02")).Kind)
}

func TestArrayAndHashBuiltins(t *testing.T) {
	r := New()
	arr := value.NewArray([]*value.Value{value.NewInt(1), value.NewString("x")})
	assert.Equal(t, int64(2), mustCall(t, r, "Array_length", arr).I)
	assert.True(t, mustCall(t, r, "Array_contains", arr, value.NewString("x")).B)
	assert.False(t, mustCall(t, r, "Array_contains", arr, value.NewString("y")).B)

	obj := value.NewObject()
	obj.Set("k", value.NewInt(1))
	assert.True(t, mustCall(t, r, "Hash_has_key", value.NewMap(obj), value.NewString("k")).B)
	assert.False(t, mustCall(t, r, "Hash_has_key", value.NewMap(obj), value.NewString("z")).B)
}

func TestUUIDGenerate(t *testing.T) {
	r := New()
	a := mustCall(t, r, "UUID_generate")
	b := mustCall(t, r, "UUID_generate")
	assert.Len(t, a.S, 36)
	assert.NotEqual(t, a.S, b.S)
}

func TestRegisterOverride(t *testing.T) {
	r := New()
	r.Register("len", func(args []*value.Value) (*value.Value, error) {
		return value.NewInt(-1), nil
	})
	assert.Equal(t, int64(-1), mustCall(t, r, "len", value.NewString("abc")).I)
}
