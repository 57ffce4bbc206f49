package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vivjson/vivjson/internal/cli/ui"
	"github.com/vivjson/vivjson/internal/stdlib"
)

// NewBuiltinsCommand creates the builtins command: a table of every
// standard-library function scripts can call.
func NewBuiltinsCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "builtins",
		Short: "List the standard-library builtins",
		Run: func(cmd *cobra.Command, args []string) {
			table := ui.NewTable(cmd.OutOrStdout(), []string{"NAME", "NAMESPACE"}, &ui.TableOptions{NoColor: noColor})
			for _, name := range stdlib.New().Names() {
				namespace := "core"
				if i := strings.IndexByte(name, '_'); i > 0 {
					namespace = name[:i]
				}
				table.AddRow(name, namespace)
			}
			table.Render()
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
