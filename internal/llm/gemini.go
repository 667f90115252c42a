package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/career-assistant/internal/logger"
)

// GeminiClient implements Client with the Google Generative AI SDK.
type GeminiClient struct {
	client  *genai.Client
	backend Backend
	log     *logger.Logger
	backoff time.Duration
}

// NewGeminiClient creates a Gemini client. backend.BaseURL, when set, replaces
// the API endpoint.
func NewGeminiClient(ctx context.Context, backend Backend, apiKey string, log *logger.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing gemini API key")
	}
	if backend.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if backend.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(backend.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		backend: backend,
		log:     logger.OrNop(log).With("service", "GeminiClient"),
		backoff: time.Second,
	}, nil
}

func (c *GeminiClient) model(jsonMode bool) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.backend.Model)
	model.SetTemperature(float32(c.backend.Temperature))
	model.SetMaxOutputTokens(int32(c.backend.maxTokens()))
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	return model
}

func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.model(false), prompt)
}

// GenerateJSON asks for an application/json response and strips any fences.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, c.model(true), prompt)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) Name() string {
	return string(ProviderGemini) + "/" + c.backend.Model
}

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// generate retries transport failures up to MaxRetries, each attempt bounded
// by the backend timeout.
func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	timeout := time.Duration(c.backend.timeoutSeconds()) * time.Second
	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := model.GenerateContent(attemptCtx, genai.Text(prompt))
		cancel()
		if err == nil {
			if u := resp.UsageMetadata; u != nil {
				c.log.Debug("gemini usage", "model", c.backend.Model,
					"prompt_tokens", u.PromptTokenCount, "output_tokens", u.CandidatesTokenCount)
			}
			return extractTextFromResponse(resp)
		}

		err = classifyGeminiError(err)
		if ctx.Err() != nil || !isRetryable(err) || attempt >= c.backend.MaxRetries {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}

		sleepFor := jitter(backoff)
		c.log.Warn("request retrying", "attempt", attempt+1, "max_retries", c.backend.MaxRetries,
			"sleep", sleepFor.String(), "error", err.Error())
		if err := sleepCtx(ctx, sleepFor); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

// classifyGeminiError turns SDK errors that carry an HTTP status into an
// *HTTPError so retry classification is shared with the other providers.
func classifyGeminiError(err error) error {
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return &HTTPError{Provider: ProviderGemini, StatusCode: coded.HTTPCode(), Body: err.Error()}
	}
	return err
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("response withheld by safety filters")
		}
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
