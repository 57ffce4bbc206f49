package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vivjson/vivjson/ast"
	"github.com/vivjson/vivjson/internal/cli/ui"
	"github.com/vivjson/vivjson/lexer"
	"github.com/vivjson/vivjson/parser"
)

// NewFmtCommand creates the fmt command: parse a source and re-emit it from
// the AST in normalized form.
func NewFmtCommand() *cobra.Command {
	var write bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "fmt [file.viv]",
		Short: "Format a VivJson source file",
		Long: `Parse a source file and print it back in normalized form. The output
re-parses to the same program; only the spelling changes (separator and
parenthesization normalization).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			p := parser.New(lexer.New(string(data), path))
			stmts, errs := p.Parse()
			if len(errs) > 0 {
				for _, e := range errs {
					ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
						Level:    ui.ErrorLevelError,
						Context:  e.Kind.String() + " error",
						Problem:  e.Message,
						Location: e.Location,
						NoColor:  noColor,
					})
				}
				return fmt.Errorf("cannot format a source that does not parse")
			}

			formatted := ast.Print(stmts) + "\n"
			if write {
				return os.WriteFile(path, []byte(formatted), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file instead of stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
