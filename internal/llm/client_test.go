package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
}

func (c *countingClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return prompt, nil
}

func (c *countingClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return "{}", nil
}

func (c *countingClient) Name() string { return "fake/model" }
func (c *countingClient) Close() error { return nil }

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), Backend{Provider: "carrier-pigeon", Model: "x"}, Keys{}, nil)
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), Backend{Provider: ProviderOpenAI, Model: "gpt-4o"}, Keys{}, nil)
	assert.Error(t, err)
}

func TestNewClient_WrapsRateLimit(t *testing.T) {
	c, err := NewClient(context.Background(),
		Backend{Provider: ProviderOpenRouter, Model: "m", RequestsPerMinute: 30},
		Keys{OpenRouter: "k"}, nil)
	require.NoError(t, err)
	_, ok := c.(*RateLimited)
	assert.True(t, ok)
	assert.Equal(t, "openrouter/m", c.Name())
}

func TestNewBackends_DefaultConfig(t *testing.T) {
	b, err := NewBackends(context.Background(), nil, Keys{OpenAI: "a", Anthropic: "b", OpenRouter: "c"}, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "openai/gpt-4o", b.Structured.Name())
	assert.Equal(t, "anthropic/claude-3-5-sonnet-20240620", b.Narrative.Name())
	assert.Equal(t, "openrouter/google/gemini-pro-1.5", b.Chat.Name())
}

func TestNewBackends_MissingKeyFails(t *testing.T) {
	_, err := NewBackends(context.Background(), nil, Keys{OpenAI: "a"}, nil)
	assert.ErrorContains(t, err, "narrative")
}

func TestRateLimited_HonorsContext(t *testing.T) {
	inner := &countingClient{}
	limited := NewRateLimited(inner, 1)

	_, err := limited.GenerateContent(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.GenerateJSON(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
