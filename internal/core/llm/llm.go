// Package llm wraps the chat-completion API used to triage captured notes.
package llm

import (
	"context"
	"time"
)

// Client sends one two-turn conversation and returns the raw completion text.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

const (
	defaultModel            = "gpt-4.1-mini"
	defaultTimeout          = 60 * time.Second
	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = time.Minute
	rateLimiterBurst        = 1

	errOpenAIChatCompletion = "openai chat completion: %w"
	errRateLimiter          = "rate limiter: %w"
)
