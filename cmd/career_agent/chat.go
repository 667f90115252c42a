package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/chat"
	"github.com/jonathan/career-assistant/internal/history"
	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/schemas"
	"github.com/jonathan/career-assistant/internal/types"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		question   string
		bundlePath string
		analysisID int64
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask a follow-up question about an analysis",
		Long: `Asks the chat backend a question grounded in a completed analysis.

By default the latest analysis in the local history is used and the exchange is appended to its transcript.
Use --bundle to answer from a bundle file written by "analyze --out" instead; nothing is recorded then.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := types.ChatRequest{Question: question}
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

			var (
				bundle     *types.AnalysisBundle
				transcript types.Transcript
				store      *history.Store
			)
			if bundlePath != "" {
				if err := schemas.ValidateFile(schemas.Bundle, bundlePath); err != nil {
					return fmt.Errorf("invalid bundle file: %w", err)
				}
				bundle = &types.AnalysisBundle{}
				if err := readJSON(bundlePath, bundle); err != nil {
					return err
				}
			} else {
				store, err = openHistory(e.cfg, false)
				if err != nil {
					return err
				}
				if store == nil {
					return fmt.Errorf("no history configured; pass --bundle or --history")
				}
				defer store.Close()

				if analysisID > 0 {
					bundle, err = store.Analysis(ctx, analysisID)
				} else {
					analysisID, bundle, err = store.Latest(ctx)
				}
				if err != nil {
					return err
				}
				if transcript, err = store.Transcript(ctx, analysisID); err != nil {
					return err
				}
			}

			responder := chat.NewResponder(e.backends.Chat, e.log)
			responder.HistoryTurns = e.cfg.HistoryTurns
			answer, err := responder.Answer(ctx, req.Question, bundle.ContextString(), transcript)
			if err != nil {
				return err
			}

			if store != nil {
				now := time.Now().UTC()
				if err := store.AppendTurns(ctx, analysisID,
					types.ChatTurn{Role: types.RoleUser, Content: req.Question, At: now},
					types.ChatTurn{Role: types.RoleAssistant, Content: answer, At: now},
				); err != nil {
					return err
				}
			}

			observability.NewPrinter(cmd.OutOrStdout()).PrintAnswer(req.Question, answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Follow-up question (required)")
	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "Answer from this bundle file instead of the history")
	cmd.Flags().Int64Var(&analysisID, "analysis", 0, "History ID of the analysis to ask about (default latest)")
	cmd.MarkFlagsMutuallyExclusive("bundle", "analysis")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
