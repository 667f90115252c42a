package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/career-assistant/internal/logger"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// OpenRouter uses the same wire format with a different base URL.
type OpenAIClient struct {
	provider   Provider
	backend    Backend
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
	// backoff is the first retry delay; doubled on each attempt
	backoff time.Duration
}

// NewOpenAIClient creates a client for the OpenAI API.
func NewOpenAIClient(backend Backend, apiKey string, log *logger.Logger) (*OpenAIClient, error) {
	return newChatCompletionsClient(ProviderOpenAI, openAIBaseURL, backend, apiKey, log)
}

// NewOpenRouterClient creates a client for the OpenRouter API.
func NewOpenRouterClient(backend Backend, apiKey string, log *logger.Logger) (*OpenAIClient, error) {
	return newChatCompletionsClient(ProviderOpenRouter, openRouterBaseURL, backend, apiKey, log)
}

func newChatCompletionsClient(provider Provider, defaultBaseURL string, backend Backend, apiKey string, log *logger.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing %s API key", provider)
	}
	if backend.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL := strings.TrimSpace(backend.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIClient{
		provider:   provider,
		backend:    backend,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(backend.timeoutSeconds()) * time.Second},
		log:        logger.OrNop(log).With("service", "ChatCompletionsClient", "provider", string(provider)),
		backoff:    time.Second,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent sends the prompt as a single user message.
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.request(prompt, false))
}

// GenerateJSON sends the prompt with JSON mode enabled.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	text, err := c.complete(ctx, c.request(prompt, true))
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) Name() string {
	return string(c.provider) + "/" + c.backend.Model
}

func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *OpenAIClient) request(prompt string, jsonMode bool) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:     c.backend.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.backend.MaxTokens,
	}
	if c.backend.Temperature > 0 {
		t := c.backend.Temperature
		req.Temperature = &t
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return req
}

func (c *OpenAIClient) complete(ctx context.Context, body chatCompletionRequest) (string, error) {
	var out chatCompletionResponse
	if err := c.do(ctx, "/chat/completions", body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("%s error: %s", c.provider, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.provider == ProviderOpenRouter {
		req.Header.Set("X-Title", "career-assistant")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *OpenAIClient) do(ctx context.Context, path string, body any, out any) error {
	backoff := c.backoff
	maxRetries := c.backend.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("%s decode error: %w", c.provider, uErr)
			}
			return nil
		}

		if !isRetryable(err) || attempt == maxRetries {
			return err
		}

		sleepFor := jitter(retryAfter(resp, backoff))
		c.log.Warn("request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := sleepCtx(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
