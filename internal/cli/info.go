package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paleolab/fossilscan/internal/classifier"
	"github.com/paleolab/fossilscan/internal/system"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show tool capabilities and host information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := system.Collect(version, classifier.Variants())
			fmt.Fprint(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
}
