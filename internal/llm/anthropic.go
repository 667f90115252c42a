package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonathan/career-assistant/internal/logger"
)

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client  anthropic.Client
	backend Backend
	log     *logger.Logger
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(backend Backend, apiKey string, log *logger.Logger) (*AnthropicClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing anthropic API key")
	}
	if backend.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithMaxRetries(backend.MaxRetries),
		anthropicopt.WithRequestTimeout(time.Duration(backend.timeoutSeconds()) * time.Second),
	}
	if backend.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(backend.BaseURL))
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(opts...),
		backend: backend,
		log:     logger.OrNop(log).With("service", "AnthropicClient"),
	}, nil
}

func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.backend.Model),
		MaxTokens: int64(c.backend.maxTokens()),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if c.backend.Temperature > 0 {
		params.Temperature = anthropic.Float(c.backend.Temperature)
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}

	c.log.Debug("anthropic response",
		"model", c.backend.Model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
	)
	return sb.String(), nil
}

// GenerateJSON asks for the same completion and strips markdown wrapping; the
// Messages API has no JSON mode.
func (c *AnthropicClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	text, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic) + "/" + c.backend.Model
}

func (c *AnthropicClient) Close() error { return nil }
