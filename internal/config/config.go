// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/career-assistant/internal/llm"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or come from flags and env.
type Config struct {
	// Logging
	LogMode string `json:"log_mode,omitempty" yaml:"log_mode,omitempty"` // development or production
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`   // Print boxed stage results

	// Model backends per role
	LLM *llm.Config `json:"llm,omitempty" yaml:"llm,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL run persistence
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`       // Session store; memory when empty
	HistoryPath string `json:"history_path,omitempty" yaml:"history_path,omitempty"` // SQLite history for the CLI

	// Sessions and chat
	SessionTTLHours int `json:"session_ttl_hours,omitempty" yaml:"session_ttl_hours,omitempty"`
	HistoryTurns    int `json:"history_turns,omitempty" yaml:"history_turns,omitempty"` // Prior turns sent with each question

	// Server
	Port              int `json:"port,omitempty" yaml:"port,omitempty"`
	RequestsPerMinute int `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"` // Per client IP

	// Secrets, from the environment only
	Keys          llm.Keys `json:"-" yaml:"-"`
	SessionSecret string   `json:"-" yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		LogMode:           "development",
		LLM:               llm.DefaultConfig(),
		HistoryPath:       "career_history.db",
		SessionTTLHours:   24,
		Port:              8080,
		RequestsPerMinute: 60,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: secrets are checked when the backends are built, not here.
func (c *Config) Validate() error {
	switch c.LogMode {
	case "", "development", "production":
	default:
		return fmt.Errorf("config error: 'log_mode' must be development or production, got %q", c.LogMode)
	}

	if c.SessionTTLHours < 0 {
		return fmt.Errorf("config error: 'session_ttl_hours' must be non-negative")
	}
	if c.HistoryTurns < 0 {
		return fmt.Errorf("config error: 'history_turns' must be non-negative")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'requests_per_minute' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.LLM != nil {
		for role, b := range c.LLM.Backends {
			switch b.Provider {
			case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderOpenRouter, llm.ProviderGemini:
			default:
				return fmt.Errorf("config error: unknown provider %q for role %s", b.Provider, role)
			}
			if b.Model == "" {
				return fmt.Errorf("config error: model is required for role %s", role)
			}
			if b.MaxRetries < 0 {
				return fmt.Errorf("config error: 'max_retries' must be non-negative for role %s", role)
			}
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Backends missing from the file keep their default for that role.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.HistoryPath == "" {
		result.HistoryPath = defaults.HistoryPath
	}

	// Int fields: use default if zero
	if result.SessionTTLHours == 0 {
		result.SessionTTLHours = defaults.SessionTTLHours
	}
	if result.HistoryTurns == 0 {
		result.HistoryTurns = defaults.HistoryTurns
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = defaults.RequestsPerMinute
	}

	// Backends: merge per role
	switch {
	case result.LLM == nil:
		result.LLM = defaults.LLM
	case defaults.LLM != nil:
		merged := defaults.LLM
		for role, b := range result.LLM.Backends {
			merged = merged.WithBackend(role, b)
		}
		result.LLM = merged
	}

	// Secrets
	if result.Keys == (llm.Keys{}) {
		result.Keys = defaults.Keys
	}
	if result.SessionSecret == "" {
		result.SessionSecret = defaults.SessionSecret
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills secrets and connection strings from the environment. Connection
// strings from the environment override the file.
func (c *Config) ApplyEnv() {
	c.Keys = llm.Keys{
		OpenAI:     os.Getenv("OPENAI_API_KEY"),
		Anthropic:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenRouter: os.Getenv("OPENROUTER_API_KEY"),
		Gemini:     os.Getenv("GEMINI_API_KEY"),
	}
	c.SessionSecret = os.Getenv("SESSION_SECRET")

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
}
