package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to a wrapped client.
type RateLimited struct {
	Client
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls with a burst of one.
func NewRateLimited(client Client, requestsPerMinute int) *RateLimited {
	return &RateLimited{
		Client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (r *RateLimited) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Client.GenerateContent(ctx, prompt)
}

func (r *RateLimited) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Client.GenerateJSON(ctx, prompt)
}
