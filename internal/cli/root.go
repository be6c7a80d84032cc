package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// ErrUsage marks bad or missing command-line arguments.
var ErrUsage = errors.New("usage error")

// NewRootCmd assembles the fossilscan command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fossilscan",
		Short:         "Fossil image identification and analysis",
		Long:          "fossilscan classifies fossil specimen images and exports the results as JSON or CSV.",
		Version:       version,
		SilenceErrors: true,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newDatabaseCmd())

	return root
}

// Execute runs the CLI and reports whether it failed.
func Execute() error {
	return NewRootCmd().Execute()
}
