package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/observability"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect analyses recorded by the CLI",
	}
	cmd.AddCommand(newHistoryListCmd(root), newHistoryShowCmd(root))
	return cmd
}

func newHistoryListCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg, false)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no history configured")
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tCREATED\tTOP CATEGORY\tINPUT")
			for _, e := range entries {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.TopTitle, preview(e.Input, 50))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	return cmd
}

func newHistoryShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a recorded analysis and its chat transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid analysis ID %q", args[0])
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg, false)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no history configured")
			}
			defer store.Close()

			bundle, err := store.Analysis(cmd.Context(), id)
			if err != nil {
				return err
			}
			transcript, err := store.Transcript(cmd.Context(), id)
			if err != nil {
				return err
			}

			printer := observability.NewPrinter(cmd.OutOrStdout())
			printer.PrintBundle(bundle)
			turns := transcript.Turns()
			for i := 0; i+1 < len(turns); i += 2 {
				printer.PrintAnswer(turns[i].Content, turns[i+1].Content)
			}
			return nil
		},
	}
}

// preview shortens s to at most n runes for table output.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
