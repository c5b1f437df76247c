package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
)

// zeroTemperature is sent instead of 0, which go-openai omits from the request
// body and the API would then replace with its default of 1.
const zeroTemperature = math.SmallestNonzeroFloat32

type openaiClient struct {
	client      *openai.Client
	model       string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	circuitThreshold    int
	circuitTimeout      time.Duration
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// NewOpenAI builds a Client backed by an OpenAI-compatible chat completion endpoint.
func NewOpenAI(cfg config.LLMConfig, logger *zerolog.Logger) Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	threshold := cfg.CircuitThreshold
	if threshold <= 0 {
		threshold = defaultCircuitThreshold
	}

	circuitTimeout := cfg.CircuitTimeout
	if circuitTimeout <= 0 {
		circuitTimeout = defaultCircuitTimeout
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}

	return &openaiClient{
		client:           openai.NewClientWithConfig(clientCfg),
		model:            model,
		logger:           logger,
		rateLimiter:      rate.NewLimiter(limit, rateLimiterBurst),
		circuitThreshold: threshold,
		circuitTimeout:   circuitTimeout,
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= c.circuitThreshold {
		c.circuitOpenUntil = time.Now().Add(c.circuitTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

// Complete sends the system prompt and the user's text as the only two turns.
func (c *openaiClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: zeroTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userText,
			},
		},
	})

	observability.LLMRequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		observability.LLMRequests.WithLabelValues(observability.StatusError).Inc()

		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.recordSuccess()
	observability.LLMRequests.WithLabelValues(observability.StatusSuccess).Inc()

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: %w", apperrors.ErrEmptyResponse)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("content", content).Msg("LLM raw response")

	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai chat completion: %w", apperrors.ErrEmptyResponse)
	}

	return content, nil
}
