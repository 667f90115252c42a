// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
)

// Rule answers prompts containing Match. The first matching rule wins.
type Rule struct {
	Match    string
	Response string
	Err      error
}

// Client is a scripted, concurrency-safe llm.Client.
type Client struct {
	name  string
	rules []Rule
	// Default is returned when no rule matches.
	Default string

	mu      sync.Mutex
	prompts []string
	jsonMod []bool
	closed  bool
}

// New creates a fake client with the given rules.
func New(name string, rules ...Rule) *Client {
	return &Client{name: name, rules: rules}
}

func (c *Client) answer(prompt string, jsonMode bool) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.jsonMod = append(c.jsonMod, jsonMode)
	c.mu.Unlock()

	for _, r := range c.rules {
		if strings.Contains(prompt, r.Match) {
			return r.Response, r.Err
		}
	}
	return c.Default, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.answer(prompt, false)
}

func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.answer(prompt, true)
}

func (c *Client) Name() string { return c.name }

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Prompts returns every prompt received, in order.
func (c *Client) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// JSONCalls returns how many prompts were sent through GenerateJSON.
func (c *Client) JSONCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, j := range c.jsonMod {
		if j {
			n++
		}
	}
	return n
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
