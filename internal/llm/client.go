package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/career-assistant/internal/logger"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent sends a prompt and returns the raw text answer
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// GenerateJSON sends a prompt asking the provider for a JSON document and
	// returns it with any markdown wrapping removed
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend as "provider/model"
	Name() string
	// Close releases any resources held by the client
	Close() error
}

// Keys carries the API keys for every provider.
type Keys struct {
	OpenAI     string
	Anthropic  string
	OpenRouter string
	Gemini     string
}

func (k Keys) forProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return k.OpenAI
	case ProviderAnthropic:
		return k.Anthropic
	case ProviderOpenRouter:
		return k.OpenRouter
	case ProviderGemini:
		return k.Gemini
	default:
		return ""
	}
}

// NewClient creates a new LLM client for a backend
func NewClient(ctx context.Context, backend Backend, keys Keys, log *logger.Logger) (Client, error) {
	log = logger.OrNop(log)
	apiKey := keys.forProvider(backend.Provider)

	var (
		client Client
		err    error
	)
	switch backend.Provider {
	case ProviderOpenAI:
		client, err = NewOpenAIClient(backend, apiKey, log)
	case ProviderOpenRouter:
		client, err = NewOpenRouterClient(backend, apiKey, log)
	case ProviderAnthropic:
		client, err = NewAnthropicClient(backend, apiKey, log)
	case ProviderGemini:
		client, err = NewGeminiClient(ctx, backend, apiKey, log)
	default:
		return nil, fmt.Errorf("unsupported provider %q", backend.Provider)
	}
	if err != nil {
		return nil, err
	}

	if backend.RequestsPerMinute > 0 {
		client = NewRateLimited(client, backend.RequestsPerMinute)
	}
	return client, nil
}

// Backends holds one client per role.
type Backends struct {
	Structured Client
	Narrative  Client
	Chat       Client
}

// NewBackends creates the clients for every role in config.
func NewBackends(ctx context.Context, config *Config, keys Keys, log *logger.Logger) (*Backends, error) {
	if config == nil {
		config = DefaultConfig()
	}

	clients := make(map[Role]Client, len(Roles))
	for _, role := range Roles {
		backend, ok := config.GetBackend(role)
		if !ok {
			closeAll(clients)
			return nil, fmt.Errorf("no backend configured for role %s", role)
		}
		client, err := NewClient(ctx, backend, keys, logger.OrNop(log).With("role", string(role)))
		if err != nil {
			closeAll(clients)
			return nil, fmt.Errorf("failed to create %s backend: %w", role, err)
		}
		clients[role] = client
	}

	return &Backends{
		Structured: clients[RoleStructured],
		Narrative:  clients[RoleNarrative],
		Chat:       clients[RoleChat],
	}, nil
}

// Close releases every client.
func (b *Backends) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	for _, c := range []Client{b.Structured, b.Narrative, b.Chat} {
		if c != nil {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func closeAll(clients map[Role]Client) {
	for _, c := range clients {
		_ = c.Close()
	}
}
