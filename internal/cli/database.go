package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paleolab/fossilscan/internal/fossil"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Species reference database operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all reference species",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSpecies(cmd, fossil.AllSpecies())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search reference species by name or period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := fossil.SearchSpecies(args[0])
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no species matching %q\n", args[0])
				return nil
			}
			return printSpecies(cmd, matches)
		},
	})

	return cmd
}

func printSpecies(cmd *cobra.Command, species []fossil.Species) error {
	data, err := json.MarshalIndent(species, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
