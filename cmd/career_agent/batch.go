package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-assistant/internal/assistant"
	"github.com/jonathan/career-assistant/internal/pipeline"
	"github.com/jonathan/career-assistant/internal/types"
)

// batchResult is one output line of the batch command.
type batchResult struct {
	ID     string                `json:"id"`
	Bundle *types.AnalysisBundle `json:"bundle,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		filePath    string
		outPath     string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze many inputs from a JSON Lines file",
		Long: `Reads one {"id", "input", "skills"} object per line and runs an independent analysis for each.
Each item gets its own category working set. Results are written as JSON Lines in input order.
A failed item is reported in its result line and does not stop the others.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open batch file: %w", err)
			}
			items, err := readBatchItems(f)
			f.Close()
			if err != nil {
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

			results := runBatch(ctx, items, concurrency, func(ctx context.Context, item types.BatchItem) (*types.AnalysisBundle, error) {
				return pipeline.RunAnalysis(ctx, assistant.New(e.backends, e.log), item.Input, item.Skills, pipeline.RunOptions{
					SessionID: "batch-" + item.ID,
					Recorder:  recorder,
					Logger:    e.log,
				})
			})

			out := cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				out = file
			}
			if err := writeBatchResults(out, results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			e.log.Info("batch finished", "items", len(results), "failed", failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d batch items failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "JSON Lines file of inputs (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Maximum analyses running at once")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readBatchItems parses and validates every line before any analysis starts.
// Blank lines are skipped; items without an ID are named after their line.
func readBatchItems(r io.Reader) ([]types.BatchItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var items []types.BatchItem
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var item types.BatchItem
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("line-%d", line)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("batch file has no items")
	}
	return items, nil
}

// runBatch analyzes items with at most concurrency running at once and
// returns one result per item in input order.
func runBatch(ctx context.Context, items []types.BatchItem, concurrency int, analyze func(context.Context, types.BatchItem) (*types.AnalysisBundle, error)) []batchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]batchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i].ID = item.ID
			bundle, err := analyze(gctx, item)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Bundle = bundle
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func writeBatchResults(w io.Writer, results []batchResult) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write result %s: %w", r.ID, err)
		}
	}
	return nil
}
