package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-assistant/internal/llm/llmtest"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/types"
)

func transcript() types.Transcript {
	return types.NewTranscript(nil).Append(
		types.ChatTurn{Role: types.RoleUser, Content: "Which role first?"},
		types.ChatTurn{Role: types.RoleAssistant, Content: "Data analyst."},
	)
}

func TestAnswer_ReturnsRawText(t *testing.T) {
	client := llmtest.New("fake/chat", llmtest.Rule{Match: llmtest.MatchFollowUp, Response: "  Start with statistics.\n"})
	r := NewResponder(client, nil)

	answer, err := r.Answer(context.Background(), "What should I learn first?", `{"mood_analysis":{}}`, transcript())
	require.NoError(t, err)
	assert.Equal(t, "  Start with statistics.\n", answer)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "What should I learn first?")
	assert.Contains(t, prompts[0], `{"mood_analysis":{}}`)
	assert.Equal(t, 0, client.JSONCalls())
}

func TestAnswer_HistoryExcludedByDefault(t *testing.T) {
	client := llmtest.New("fake/chat", llmtest.Rule{Match: llmtest.MatchFollowUp, Response: "ok"})
	r := NewResponder(client, nil)

	_, err := r.Answer(context.Background(), "q", "{}", transcript())
	require.NoError(t, err)
	assert.NotContains(t, client.Prompts()[0], "Previous conversation")
}

func TestAnswer_IncludesRecentHistory(t *testing.T) {
	client := llmtest.New("fake/chat", llmtest.Rule{Match: llmtest.MatchFollowUp, Response: "ok"})
	r := NewResponder(client, nil)
	r.HistoryTurns = 1

	_, err := r.Answer(context.Background(), "q", "{}", transcript())
	require.NoError(t, err)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "Previous conversation")
	assert.Contains(t, prompt, "assistant: Data analyst.")
	assert.NotContains(t, prompt, "Which role first?")
}

func TestAnswer_TransportError(t *testing.T) {
	client := llmtest.New("fake/chat", llmtest.Rule{Match: llmtest.MatchFollowUp, Err: errors.New("timeout")})
	r := NewResponder(client, nil)

	answer, err := r.Answer(context.Background(), "q", "{}", types.Transcript{})
	require.Error(t, err)
	assert.Empty(t, answer)

	var apiErr *parsing.APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "fake/chat", apiErr.Backend)
}
