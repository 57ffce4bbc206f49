// Package vivjson is the thin embedding entry point that wires the
// pipeline (lexer, parser, evaluator) together behind the host-facing Run
// contract. It holds no language semantics of its own, only the plumbing a
// host (the CLI, the dev server, the LSP) needs to run one or more sources
// against one outer frame.
package vivjson

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/evaluator"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/parser"
	"github.com/vivjson/vivjson/value"
)

// Input is one source fed to Run. Exactly one of its fields is meaningful;
// use the New* constructors rather than building one by hand.
type Input struct {
	code     string // inline source
	medium   string // file/argument name, for error locations
	path     string // file path (mutually exclusive with code)
	jsonOnly bool   // force strict-JSON parsing for this input
	value    *value.Value
	bindings map[string]*value.Value
}

// NewCode wraps an inline source string. medium names it in error messages.
func NewCode(source, medium string) Input { return Input{code: source, medium: medium} }

// NewFile wraps a file path; its extension (.json forces strict JSON,
// .viv the extended language) is resolved when Run reads it.
func NewFile(path string) Input { return Input{path: path} }

// NewJSON wraps an inline source string that must parse as strict JSON
// regardless of extension.
func NewJSON(source, medium string) Input {
	return Input{code: source, medium: medium, jsonOnly: true}
}

// NewValue wraps an already-evaluated host value, bound to the implicit `_`
// variable in the outer frame. A direct-value source is not bound to `_`:
// Run writes it to the frame's result slot instead.
func NewValue(v *value.Value) Input { return Input{value: v} }

// NewBindings wraps a mapping of name to pre-evaluated host value, injected
// into the outer frame as if by assignment.
func NewBindings(b map[string]*value.Value) Input { return Input{bindings: b} }

// Config carries every embedding option a host can set.
type Config struct {
	EnableStderr    bool
	EnableTagDetail bool
	EnableOnlyJSON  bool
	Infinity        string
	NaN             string
	MaxArraySize    int
	MaxDepth        int
	MaxLoopTimes    int

	Stdlib  evaluator.StdlibResolver
	Modules evaluator.ModuleResolver
}

// Result is the outcome of Run: either Value is set and Err is nil, or vice
// versa.
type Result struct {
	Value *value.Value
	Err   *errors.Error
}

// Run evaluates inputs against one shared outer frame and returns the final
// result: the value passed to an outer `return`, the frame's reserved
// result slot, or else its public projection. Multiple inputs concatenate
// logically: their statements accumulate into one statement list evaluated
// once, so top-level bindings from an earlier input are visible to a later
// one.
func Run(inputs []Input, cfg Config) Result {
	root := value.New()
	var stmts []*ast.Node
	var directValues []*ast.Node // inner expressions of bare-value inputs; see below

	appendProgram := func(prog *parser.Program) {
		if prog.Direct != nil {
			directValues = append(directValues, prog.Direct.Value)
			return
		}
		stmts = append(stmts, prog.Statements...)
	}

	for _, in := range inputs {
		switch {
		case in.bindings != nil:
			for name, v := range in.bindings {
				root.Define(name, v)
			}
		case in.value != nil:
			root.Define("_", in.value)
		case in.path != "":
			src, medium, jsonOnly, err := readFile(in.path)
			if err != nil {
				return Result{Err: errors.New(errors.IO, err.Error(), in.path)}
			}
			prog, perr := parseOne(src, medium, jsonOnly || cfg.EnableOnlyJSON, cfg)
			if perr != nil {
				return Result{Err: perr}
			}
			appendProgram(prog)
		default:
			prog, perr := parseOne(in.code, in.medium, in.jsonOnly || cfg.EnableOnlyJSON, cfg)
			if perr != nil {
				return Result{Err: perr}
			}
			appendProgram(prog)
		}
	}

	// Multiple direct-value inputs combine into one result: one value
	// directly, or an array collecting all of them.
	if len(directValues) == 1 {
		stmts = append(stmts, ast.NewSet(nil, lexer.DEFINE, directValues[0], directValues[0].Token))
	} else if len(directValues) > 1 {
		arr := ast.NewArray(directValues, directValues[0].Token)
		stmts = append(stmts, ast.NewSet(nil, lexer.DEFINE, arr, arr.Token))
	}

	ev := evaluator.New(
		evaluator.WithMaxDepth(orDefault(cfg.MaxDepth, 200)),
		evaluator.WithMaxLoopTimes(orDefault(cfg.MaxLoopTimes, 1000)),
		evaluator.WithMaxArraySize(orDefault(cfg.MaxArraySize, 1000)),
		evaluator.WithInfinityName(cfg.Infinity),
		evaluator.WithNaNName(cfg.NaN),
		evaluator.WithStdlib(cfg.Stdlib),
		evaluator.WithModules(cfg.Modules),
	)
	v, err := ev.Run(stmts, root)
	if err != nil {
		if cfg.EnableTagDetail {
			err = err.WithTag()
		}
		if cfg.EnableStderr {
			os.Stderr.WriteString(err.Terminal())
		}
		return Result{Err: err}
	}
	return Result{Value: v}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func parseOne(source, medium string, jsonOnly bool, cfg Config) (*parser.Program, *errors.Error) {
	lex := lexer.New(source, medium)
	p := parser.New(lex,
		parser.WithOnlyJSON(jsonOnly),
		parser.WithInfinityName(cfg.Infinity),
		parser.WithNaNName(cfg.NaN),
	)
	prog, errs := p.ParseProgram()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return prog, nil
}

func readFile(path string) (source, medium string, jsonOnly bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", false, err
	}
	return string(b), filepath.Base(path), strings.EqualFold(filepath.Ext(path), ".json"), nil
}
