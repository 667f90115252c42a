package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/db"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect analysis runs stored in PostgreSQL",
		Long:  `Lists, shows and deletes runs recorded by analyze, batch and serve. Requires DATABASE_URL.`,
	}
	cmd.AddCommand(newRunsListCmd(root), newRunsShowCmd(root), newRunsDeleteCmd(root))
	return cmd
}

func newRunsListCmd(root *rootOptions) *cobra.Command {
	var filters db.RunFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := root.openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			runs, err := database.ListRuns(cmd.Context(), filters)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSESSION\tSTATUS\tCREATED\tINPUT")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.SessionID, r.Status, r.CreatedAt.Format("2006-01-02 15:04"), preview(r.Input, 40))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filters.SessionID, "session", "", "Only runs of this session")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Only runs with this status (running, completed, failed)")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 50, "Maximum runs to show")
	return cmd
}

func newRunsShowCmd(root *rootOptions) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and its stage artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID: %w", err)
			}
			database, err := root.openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			// With --step, print that stage's stored output only
			if step != "" {
				if text, err := database.GetTextArtifact(ctx, runID, step); err != nil {
					return err
				} else if text != "" {
					_, _ = fmt.Fprintln(out, text)
					return nil
				}
				content, err := database.GetArtifact(ctx, runID, step)
				if err != nil {
					return err
				}
				if content == nil {
					return fmt.Errorf("run %s has no %s artifact", runID, step)
				}
				_, _ = fmt.Fprintln(out, string(content))
				return nil
			}

			run, err := database.GetRun(ctx, runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run not found: %s", runID)
			}
			artifacts, err := database.ListArtifacts(ctx, runID)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Run:     %s\nSession: %s\nStatus:  %s\n", run.ID, run.SessionID, run.Status)
			if run.Error != "" {
				_, _ = fmt.Fprintf(out, "Error:   %s\n", run.Error)
			}
			_, _ = fmt.Fprintf(out, "Input:   %s\nSkills:  %s\n\n", run.Input, run.Skills)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STEP\tCATEGORY\tJSON\tTEXT")
			for _, a := range artifacts {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", a.Step, a.Category, a.HasJSON, a.HasText)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&step, "step", "", "Print the stored output of one stage")
	return cmd
}

func newRunsDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a run and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID: %w", err)
			}
			database, err := root.openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.DeleteRun(cmd.Context(), runID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", runID)
			return nil
		},
	}
}

func (o *rootOptions) openDB(cmd *cobra.Command) (*db.DB, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return connectDB(cmd.Context(), cfg)
}
