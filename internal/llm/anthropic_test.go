package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_GenerateContent(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "<challenges>Competition</challenges>"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	c, err := NewAnthropicClient(Backend{Model: "claude-3-5-sonnet-20240620", BaseURL: server.URL}, "test-key", nil)
	require.NoError(t, err)

	out, err := c.GenerateContent(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Equal(t, "<challenges>Competition</challenges>", out)
	assert.Equal(t, "claude-3-5-sonnet-20240620", body["model"])
	assert.EqualValues(t, defaultMaxTokens, body["max_tokens"])
	assert.Equal(t, "anthropic/claude-3-5-sonnet-20240620", c.Name())
}

func TestAnthropicClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c, err := NewAnthropicClient(Backend{Model: "claude", BaseURL: server.URL}, "test-key", nil)
	require.NoError(t, err)

	_, err = c.GenerateContent(context.Background(), "analyze")
	assert.Error(t, err)
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(Backend{Model: "claude"}, " ", nil)
	assert.Error(t, err)
}
