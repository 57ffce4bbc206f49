// Package stdlib is the default StdlibResolver (evaluator.StdlibResolver)
// wired into the CLI and dev server: a name-to-builtin registry of string,
// time, and conversion helpers exposed to scripts as callable values.
//
// Names are flat (String_length, not a String namespace object) because the
// evaluator's Get chain resolves an undefined root identifier through
// StdlibResolver.Lookup by a single name (evaluator/access.go
// lookupIdentifier); there is no notion of a namespace value to route
// through first.
package stdlib

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vivjson/vivjson/value"
)

// Registry is a StdlibResolver backed by a fixed name-to-builtin map.
type Registry struct {
	fns map[string]*value.Value
}

// New builds a Registry preloaded with the default builtin set.
func New() *Registry {
	r := &Registry{fns: make(map[string]*value.Value)}
	r.register("len", builtinLen)
	r.register("type", builtinType)
	r.register("string", builtinString)
	r.register("number", builtinNumber)
	r.register("keys", builtinKeys)

	r.register("String_length", stringLength)
	r.register("String_slugify", stringSlugify)
	r.register("String_upcase", stringUpcase)
	r.register("String_downcase", stringDowncase)
	r.register("String_trim", stringTrim)
	r.register("String_contains", stringContains)
	r.register("String_replace", stringReplace)

	r.register("Time_now", timeNow)
	r.register("Time_format", timeFormat)
	r.register("Time_parse", timeParse)
	r.register("Time_add_days", timeAddDays)

	r.register("Array_length", arrayLength)
	r.register("Array_contains", arrayContains)

	r.register("Hash_has_key", hashHasKey)

	r.register("UUID_generate", uuidGenerate)
	return r
}

// Lookup implements evaluator.StdlibResolver.
func (r *Registry) Lookup(name string) (*value.Value, bool) {
	v, ok := r.fns[name]
	return v, ok
}

// Names returns every registered builtin name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or overrides a builtin by name, for a host embedding its own
// functions alongside the defaults.
func (r *Registry) Register(name string, fn func(args []*value.Value) (*value.Value, error)) {
	r.fns[name] = value.NewNativeFunc(fn)
}

func (r *Registry) register(name string, fn func(args []*value.Value) (*value.Value, error)) {
	r.fns[name] = value.NewNativeFunc(fn)
}

func arg(args []*value.Value, i int) *value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.NullValue
}

func wantString(args []*value.Value, i int, who string) (string, error) {
	v := arg(args, i)
	if v.Kind != value.String {
		return "", fmt.Errorf("%s: argument %d must be a string", who, i+1)
	}
	return v.S, nil
}

// builtinLen returns the length of a string, array, or map.
func builtinLen(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	switch v.Kind {
	case value.String:
		return value.NewInt(int64(len([]rune(v.S)))), nil
	case value.Array:
		return value.NewInt(int64(len(v.A))), nil
	case value.Map:
		return value.NewInt(int64(v.M.Len())), nil
	default:
		return nil, fmt.Errorf("len: unsupported value of kind %s", v.Kind)
	}
}

// builtinType returns the runtime kind name of a value.
func builtinType(args []*value.Value) (*value.Value, error) {
	return value.NewString(arg(args, 0).Kind.String()), nil
}

// builtinString renders a value as display text. A string passes through
// unquoted.
func builtinString(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	if v.Kind == value.String {
		return v, nil
	}
	return value.NewString(v.Display("Infinity", "NaN")), nil
}

// builtinNumber coerces a string or bool to a number, and passes numbers
// through unchanged.
func builtinNumber(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	switch v.Kind {
	case value.Int, value.Float:
		return v, nil
	case value.Bool:
		if v.B {
			return value.NewInt(1), nil
		}
		return value.NewInt(0), nil
	case value.String:
		n, err := value.ParseNumberLexeme(strings.TrimSpace(v.S))
		if err != nil {
			return nil, fmt.Errorf("number: cannot convert %q", v.S)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("number: unsupported value of kind %s", v.Kind)
	}
}

// builtinKeys returns a map's keys in insertion order.
func builtinKeys(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	if v.Kind != value.Map {
		return nil, fmt.Errorf("keys: argument must be a map")
	}
	keys := v.M.Keys()
	out := make([]*value.Value, len(keys))
	for i, k := range keys {
		out[i] = value.NewString(k)
	}
	return value.NewArray(out), nil
}

func stringLength(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_length")
	if err != nil {
		return nil, err
	}
	return value.NewInt(int64(len([]rune(s)))), nil
}

var slugifyPattern = regexp.MustCompile(`[^a-z0-9]+`)

func stringSlugify(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_slugify")
	if err != nil {
		return nil, err
	}
	s = strings.ToLower(s)
	s = slugifyPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return value.NewString(s), nil
}

func stringUpcase(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_upcase")
	if err != nil {
		return nil, err
	}
	return value.NewString(strings.ToUpper(s)), nil
}

func stringDowncase(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_downcase")
	if err != nil {
		return nil, err
	}
	return value.NewString(strings.ToLower(s)), nil
}

func stringTrim(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_trim")
	if err != nil {
		return nil, err
	}
	return value.NewString(strings.TrimSpace(s)), nil
}

func stringContains(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_contains")
	if err != nil {
		return nil, err
	}
	substr, err := wantString(args, 1, "String_contains")
	if err != nil {
		return nil, err
	}
	return value.NewBool(strings.Contains(s, substr)), nil
}

func stringReplace(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "String_replace")
	if err != nil {
		return nil, err
	}
	old, err := wantString(args, 1, "String_replace")
	if err != nil {
		return nil, err
	}
	newStr, err := wantString(args, 2, "String_replace")
	if err != nil {
		return nil, err
	}
	return value.NewString(strings.ReplaceAll(s, old, newStr)), nil
}

// Timestamps are represented as RFC 3339 strings: the runtime value model
// has no distinct timestamp kind, so Time_now and friends round-trip
// through String the same way a host JSON value would.
const timeLayout = time.RFC3339Nano

func timeNow(args []*value.Value) (*value.Value, error) {
	return value.NewString(time.Now().UTC().Format(timeLayout)), nil
}

func timeFormat(args []*value.Value) (*value.Value, error) {
	ts, err := wantString(args, 0, "Time_format")
	if err != nil {
		return nil, err
	}
	layout, err := wantString(args, 1, "Time_format")
	if err != nil {
		return nil, err
	}
	t, perr := time.Parse(timeLayout, ts)
	if perr != nil {
		return nil, fmt.Errorf("Time_format: %w", perr)
	}
	return value.NewString(t.Format(layout)), nil
}

func timeParse(args []*value.Value) (*value.Value, error) {
	s, err := wantString(args, 0, "Time_parse")
	if err != nil {
		return nil, err
	}
	layout, err := wantString(args, 1, "Time_parse")
	if err != nil {
		return nil, err
	}
	t, perr := time.Parse(layout, s)
	if perr != nil {
		return value.NullValue, nil
	}
	return value.NewString(t.UTC().Format(timeLayout)), nil
}

func timeAddDays(args []*value.Value) (*value.Value, error) {
	ts, err := wantString(args, 0, "Time_add_days")
	if err != nil {
		return nil, err
	}
	days := arg(args, 1)
	if !days.IsNumeric() {
		return nil, fmt.Errorf("Time_add_days: argument 2 must be numeric")
	}
	t, perr := time.Parse(timeLayout, ts)
	if perr != nil {
		return nil, fmt.Errorf("Time_add_days: %w", perr)
	}
	n, _ := days.AsFloat64()
	return value.NewString(t.AddDate(0, 0, int(n)).UTC().Format(timeLayout)), nil
}

func arrayLength(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	if v.Kind != value.Array {
		return nil, fmt.Errorf("Array_length: argument must be an array")
	}
	return value.NewInt(int64(len(v.A))), nil
}

func arrayContains(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	if v.Kind != value.Array {
		return nil, fmt.Errorf("Array_contains: argument must be an array")
	}
	needle := arg(args, 1)
	for _, e := range v.A {
		if value.DeepEqual(e, needle) {
			return value.TrueValue, nil
		}
	}
	return value.FalseValue, nil
}

func hashHasKey(args []*value.Value) (*value.Value, error) {
	v := arg(args, 0)
	if v.Kind != value.Map {
		return nil, fmt.Errorf("Hash_has_key: argument must be a map")
	}
	key := arg(args, 1)
	if key.Kind != value.String {
		return nil, fmt.Errorf("Hash_has_key: key must be a string")
	}
	_, ok := v.M.Get(key.S)
	return value.NewBool(ok), nil
}

func uuidGenerate(args []*value.Value) (*value.Value, error) {
	return value.NewString(uuid.New().String()), nil
}
