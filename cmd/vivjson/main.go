package main

import (
	"fmt"
	"os"

	"github.com/vivjson/vivjson/internal/cli/commands"
)

func main() {
	// Flag combining (`-ji`) is rejected up front; cobra would otherwise
	// happily expand it.
	if err := commands.RejectCombinedShortFlags(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := commands.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
