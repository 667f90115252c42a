package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/assistant"
	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/pipeline"
	"github.com/jonathan/career-assistant/internal/types"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		input     string
		inputFile string
		skills    string
		outPath   string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full career analysis",
		Long: `Runs every stage in order: job categories -> mood -> job market alignment -> career path -> skill plan -> industry forecast.

The bundle is recorded in the local history so follow-up questions can be asked with "career_agent chat".
When DATABASE_URL is set, the run and each stage artifact are also stored in PostgreSQL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputFile != "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
				input = string(data)
			}

			req := types.AnalysisRequest{Input: input, Skills: skills}
			if err := req.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			recorder, closeRecorder, err := openRecorder(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeRecorder()

			printer := observability.NewPrinter(cmd.OutOrStdout())
			opts := pipeline.RunOptions{
				SessionID: "cli-" + uuid.NewString(),
				Recorder:  recorder,
				Logger:    e.log,
			}
			if e.cfg.Verbose {
				opts.Printer = printer
			}

			bundle, err := pipeline.RunAnalysis(ctx, assistant.New(e.backends, e.log), req.Input, req.Skills, opts)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			if !e.cfg.Verbose {
				printer.PrintBundle(bundle)
			}

			store, err := openHistory(e.cfg, noHistory)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				id, err := store.SaveAnalysis(ctx, bundle)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved analysis #%d to %s\n", id, e.cfg.HistoryPath)
			}

			if outPath != "" {
				if err := writeJSON(outPath, bundle); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote bundle to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Career aspirations and current situation, in your own words")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Read the input text from a file instead of --input")
	cmd.Flags().StringVarP(&skills, "skills", "s", "", "Current skills, comma separated")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the analysis bundle as JSON to this path")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the analysis in the local history")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")
	return cmd
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
