// Package llm provides the backend configuration and client abstractions for the
// three model roles the assistant uses.
package llm

// Role names the job a backend performs for the assistant.
type Role string

const (
	// RoleStructured answers prompts that must come back as a JSON document.
	RoleStructured Role = "structured"
	// RoleNarrative answers prompts with tag-delimited prose sections.
	RoleNarrative Role = "narrative"
	// RoleChat answers follow-up questions.
	RoleChat Role = "chat"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleStructured, RoleNarrative, RoleChat}

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// Backend describes how one role reaches its model.
type Backend struct {
	Provider    Provider `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature float64  `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// MaxRetries applies to transport-level failures only (429, 5xx, timeouts).
	MaxRetries        int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	TimeoutSeconds    int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	RequestsPerMinute int `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
}

const (
	defaultMaxTokens      = 4096
	defaultTimeoutSeconds = 120
)

// Config holds the backend configuration for each role.
type Config struct {
	Backends map[Role]Backend `json:"backends" yaml:"backends"`
}

// DefaultConfig returns OpenAI for structured output, Anthropic for narrative
// sections and a Gemini model routed through OpenRouter for chat.
func DefaultConfig() *Config {
	return &Config{
		Backends: map[Role]Backend{
			RoleStructured: {Provider: ProviderOpenAI, Model: "gpt-4o", MaxRetries: 2},
			RoleNarrative:  {Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-20240620", MaxTokens: defaultMaxTokens},
			RoleChat:       {Provider: ProviderOpenRouter, Model: "google/gemini-pro-1.5", MaxRetries: 2},
		},
	}
}

// GetBackend returns the backend for a role. Unknown roles fall back to the
// narrative backend, then the structured one.
func (c *Config) GetBackend(role Role) (Backend, bool) {
	if b, ok := c.Backends[role]; ok {
		return b, true
	}
	if b, ok := c.Backends[RoleNarrative]; ok {
		return b, true
	}
	if b, ok := c.Backends[RoleStructured]; ok {
		return b, true
	}
	return Backend{}, false
}

// WithBackend returns a new Config with a specific backend for a role
func (c *Config) WithBackend(role Role, backend Backend) *Config {
	newConfig := &Config{Backends: make(map[Role]Backend, len(c.Backends)+1)}
	for k, v := range c.Backends {
		newConfig.Backends[k] = v
	}
	newConfig.Backends[role] = backend
	return newConfig
}

// WithModel returns a new Config with the model of one role replaced.
func (c *Config) WithModel(role Role, model string) *Config {
	b, _ := c.GetBackend(role)
	b.Model = model
	return c.WithBackend(role, b)
}

func (b Backend) maxTokens() int {
	if b.MaxTokens > 0 {
		return b.MaxTokens
	}
	return defaultMaxTokens
}

func (b Backend) timeoutSeconds() int {
	if b.TimeoutSeconds > 0 {
		return b.TimeoutSeconds
	}
	return defaultTimeoutSeconds
}
