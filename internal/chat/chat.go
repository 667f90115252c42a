// Package chat answers follow-up questions about a completed analysis.
package chat

import (
	"context"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/prompts"
	"github.com/jonathan/career-assistant/internal/types"
)

// Responder sends follow-up questions to the chat backend.
type Responder struct {
	client llm.Client
	log    *logger.Logger
	// HistoryTurns is how many prior turns are included in the prompt.
	// Zero sends the question with the analysis context only.
	HistoryTurns int
}

// NewResponder creates a responder over the chat backend.
func NewResponder(client llm.Client, log *logger.Logger) *Responder {
	return &Responder{
		client: client,
		log:    logger.OrNop(log).With("service", "FollowUpChat"),
	}
}

// Answer makes a single call to the chat backend and returns its raw text.
func (r *Responder) Answer(ctx context.Context, question, contextText string, history types.Transcript) (string, error) {
	prompt := prompts.FollowUp(question, contextText, history.Last(r.HistoryTurns))

	answer, err := r.client.GenerateContent(ctx, prompt)
	if err != nil {
		r.log.Error("follow-up call failed", "backend", r.client.Name(), "error", err.Error())
		return "", &parsing.APICallError{Backend: r.client.Name(), Message: "follow-up chat", Cause: err}
	}

	r.log.Debug("follow-up answered", "backend", r.client.Name(), "question_len", len(question), "answer_len", len(answer))
	return answer, nil
}
