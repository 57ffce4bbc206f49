package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vivjson/vivjson"
	"github.com/vivjson/vivjson/internal/cli/config"
	"github.com/vivjson/vivjson/internal/cli/ui"
	"github.com/vivjson/vivjson/internal/display"
	"github.com/vivjson/vivjson/internal/modules"
	"github.com/vivjson/vivjson/internal/registry/cache"
	"github.com/vivjson/vivjson/internal/security"
	"github.com/vivjson/vivjson/internal/stdlib"
	"github.com/vivjson/vivjson/value"
)

type runOptions struct {
	jsonOnly  bool
	stdinName string
	tagDetail bool
	infinity  string
	nan       string
	noColor   bool
}

func registerRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVarP(&opts.jsonOnly, "json", "j", false, "accept only strict JSON (no script features)")
	cmd.Flags().StringVarP(&opts.stdinName, "stdin", "i", "", "read stdin as a source, optionally naming it")
	cmd.Flags().Lookup("stdin").NoOptDefVal = "stdin"
	cmd.Flags().BoolVar(&opts.tagDetail, "tag-detail", false, "include the lex/parse/evaluate tag in error output")
	cmd.Flags().StringVar(&opts.infinity, "infinity", "", "token text for ±infinity in JSON input and output")
	cmd.Flags().StringVar(&opts.nan, "nan", "", "token text for NaN in JSON input and output")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
}

// NewRunCommand creates the run command, the explicit form of what the bare
// root command does with its arguments.
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [sources...]",
		Short: "Evaluate sources and print the result",
		Long: `Evaluate one or more sources and print the stringified result.

A source is inline code, a .viv script file, or a .json data file. A bare
+ between two sources concatenates them into one logical source. All
sources share one outer frame: bindings made by an earlier source are
visible to a later one.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd, args, opts)
		},
	}
	registerRunFlags(cmd, opts)
	return cmd
}

func runSources(cmd *cobra.Command, args []string, opts *runOptions) error {
	inputs, err := collectInputs(args, opts, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no sources given")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	vcfg := vivjson.Config{
		EnableTagDetail: opts.tagDetail,
		EnableOnlyJSON:  opts.jsonOnly,
		Infinity:        opts.infinity,
		NaN:             opts.nan,
		MaxArraySize:    cfg.Limits.MaxArraySize,
		MaxDepth:        cfg.Limits.MaxDepth,
		MaxLoopTimes:    cfg.Limits.MaxLoopTimes,
		Stdlib:          stdlib.New(),
	}
	loader, cleanup := buildModuleLoader(cfg, vcfg)
	defer cleanup()
	if loader != nil {
		vcfg.Modules = loader
	}

	result := vivjson.Run(inputs, vcfg)
	if result.Err != nil {
		msg := result.Err.Message
		if badName, ok := strings.CutPrefix(msg, "undefined name: "); ok {
			fmt.Fprint(cmd.ErrOrStderr(), ui.EvalErrorWithSuggestions(
				result.Err.Kind.String()+" error", msg, result.Err.Location,
				badName, stdlib.New().Names(), opts.noColor))
		} else {
			ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
				Level:    ui.ErrorLevelError,
				Context:  result.Err.Kind.String() + " error",
				Problem:  msg,
				Location: result.Err.Location,
				NoColor:  opts.noColor,
			})
		}
		return fmt.Errorf("evaluation failed")
	}

	text, serr := display.Stringify(result.Value, opts.infinity, opts.nan)
	if serr != nil {
		return serr
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// collectInputs resolves the argument list into embedding inputs: files by
// extension, everything else as inline code, `+` concatenating its two
// neighbors into one logical source, and --stdin appending standard input.
func collectInputs(args []string, opts *runOptions, stdin io.Reader) ([]vivjson.Input, error) {
	var sources []pendingSource

	concatNext := false
	for i, arg := range args {
		if arg == "+" {
			if len(sources) == 0 {
				return nil, fmt.Errorf("'+' needs a source before it")
			}
			concatNext = true
			continue
		}

		src := pendingSource{code: arg, medium: fmt.Sprintf("argument %d", i+1)}
		if isSourcePath(arg) {
			src.isFile = true
			src.path = arg
		}

		if concatNext {
			concatNext = false
			prev := &sources[len(sources)-1]
			prevCode, err := prev.text()
			if err != nil {
				return nil, err
			}
			nextCode, err := src.text()
			if err != nil {
				return nil, err
			}
			*prev = pendingSource{code: prevCode + "\n" + nextCode, medium: prev.medium}
			continue
		}
		sources = append(sources, src)
	}
	if concatNext {
		return nil, fmt.Errorf("'+' needs a source after it")
	}

	var inputs []vivjson.Input
	for _, s := range sources {
		if s.isFile {
			inputs = append(inputs, vivjson.NewFile(s.path))
			continue
		}
		inputs = append(inputs, vivjson.NewCode(s.code, s.medium))
	}

	if opts.stdinName != "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, vivjson.NewCode(string(data), opts.stdinName))
	}
	return inputs, nil
}

// pendingSource is one argument on its way to becoming an Input: either
// inline code or a file path, pre-merge.
type pendingSource struct {
	code   string
	medium string
	isFile bool
	path   string
}

func (p pendingSource) text() (string, error) {
	if !p.isFile {
		return p.code, nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isSourcePath decides whether an argument names a file: a recognized
// extension, or an existing file on disk.
func isSourcePath(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".viv", ".json":
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// buildModuleLoader wires the include/import dispatch chain from the
// tooling config: registry backend (Postgres when a DSN is configured, the
// embedded SQLite file otherwise), optional signature verification, and the
// optional shared Redis cache. A registry that fails to open leaves module
// resolution unwired rather than failing the run; scripts that never call
// include/import are unaffected.
func buildModuleLoader(cfg *config.Config, vcfg vivjson.Config) (*modules.Loader, func()) {
	var resolver modules.Resolver
	var closers []func()

	if cfg.Registry.PostgresDSN != "" {
		pg, err := modules.OpenPostgres(cfg.Registry.PostgresDSN)
		if err == nil {
			resolver = pg
			closers = append(closers, func() { pg.Close() })
		}
	} else if cfg.Registry.SQLitePath != "" {
		// The embedded registry is wired only when the file already exists;
		// a plain run should not create registry files as a side effect.
		if _, err := os.Stat(cfg.Registry.SQLitePath); err == nil {
			lite, err := modules.OpenSQLite(cfg.Registry.SQLitePath)
			if err == nil {
				resolver = lite
				closers = append(closers, func() { lite.Close() })
			}
		}
	}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	if resolver == nil {
		return nil, cleanup
	}

	var verifier *security.Verifier
	if cfg.Registry.VerifyKey != "" {
		verifier = security.NewVerifier([]byte(cfg.Registry.VerifyKey))
	}

	var sourceCache modules.SourceCache
	if cfg.Cache.RedisAddr != "" {
		c := cache.New(cfg.Cache.RedisAddr)
		sourceCache = c
		closers = append(closers, func() { c.Close() })
	}

	run := func(source, medium string) (*value.Value, error) {
		moduleCfg := vcfg
		moduleCfg.Modules = nil // modules do not include further modules
		r := vivjson.Run([]vivjson.Input{vivjson.NewCode(source, medium)}, moduleCfg)
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Value, nil
	}
	return modules.NewLoader(resolver, verifier, sourceCache, run), cleanup
}
