package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/types"
)

func newCategoriesCmd(_ *rootOptions) *cobra.Command {
	var (
		asJSON   bool
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the default job category set",
		Long:  `Shows the categories a new session starts with, or with --fallback the set used when a category response is unusable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := types.InitialCategories()
			if fallback {
				set = types.FallbackCategories()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(set)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintCategories(set)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "Show the fallback set instead of the initial set")
	return cmd
}
