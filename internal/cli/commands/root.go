// Package commands implements the vivjson CLI: one-shot evaluation (the
// root command and `run`), project scaffolding (`new`), source formatting
// (`fmt`), the dev console (`serve`), and the language server (`lsp`).
package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information - set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command. The root itself evaluates its
// non-flag arguments as sources, so `vivjson program.viv` and
// `vivjson 'return(1+2)'` both work without a subcommand.
func NewRootCommand() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "vivjson [sources...]",
		Short: "VivJson scripting language interpreter",
		Long: color.CyanString(`VivJson - a scripting language that is a superset of JSON

Every JSON document is a valid program; the language adds variables,
control flow, first-class functions with closures, and composite update.
Sources may be inline code, .viv script files, or .json data files; the
top-level bindings of every source merge into one shared frame.`),
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.stdinName == "" {
				return cmd.Help()
			}
			return runSources(cmd, args, opts)
		},
	}
	registerRunFlags(rootCmd, opts)

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewFmtCommand())
	rootCmd.AddCommand(NewBuiltinsCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewLSPCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(cmd.OutOrStdout(), "VivJson version: ")
			valueColor.Fprintln(cmd.OutOrStdout(), Version)

			titleColor.Fprint(cmd.OutOrStdout(), "Git commit: ")
			valueColor.Fprintln(cmd.OutOrStdout(), GitCommit)

			titleColor.Fprint(cmd.OutOrStdout(), "Build date: ")
			valueColor.Fprintln(cmd.OutOrStdout(), BuildDate)

			titleColor.Fprint(cmd.OutOrStdout(), "Go version: ")
			valueColor.Fprintln(cmd.OutOrStdout(), runtime.Version())
		},
	}
}

// RejectCombinedShortFlags refuses bundled single-letter flags such as
// `-ji`: each flag must be passed on its own. main calls this on the raw
// argument list before cobra parses it.
func RejectCombinedShortFlags(args []string) error {
	for _, arg := range args {
		if len(arg) < 3 || arg[0] != '-' || strings.HasPrefix(arg, "--") {
			continue
		}
		body := arg[1:]
		if i := strings.IndexByte(body, '='); i >= 0 {
			body = body[:i]
		}
		if len(body) < 2 {
			continue
		}
		alpha := true
		for _, r := range body {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				alpha = false
				break
			}
		}
		if alpha {
			return fmt.Errorf("combined flags are not allowed: %s", arg)
		}
	}
	return nil
}
