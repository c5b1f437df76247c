// Package notion writes capture items as pages into a Notion database.
//
// Only page creation is supported. Every failed write is returned to the
// caller so the chat user sees a per-item error instead of a silent drop.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
)

const (
	defaultBaseURL      = "https://api.notion.com"
	defaultVersion      = "2022-06-28"
	defaultTimeout      = 30 * time.Second
	pagesPath           = "/v1/pages"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerVersion       = "Notion-Version"
	contentTypeJSON     = "application/json"
	maxResponseBodySize = 1024 * 1024
)

// Properties is a Notion page property payload keyed by property name.
type Properties map[string]any

// PageRef identifies a created page.
type PageRef struct {
	ID  string
	URL string
}

// APIError is returned when Notion answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d, %s: %s", apperrors.ErrNotionRequest, e.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("%s: status %d, body: %s", apperrors.ErrNotionRequest, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrNotionRequest
}

type createPageRequest struct {
	Parent     parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

// Client talks to the Notion REST API.
type Client struct {
	apiKey     string
	databaseID string
	baseURL    string
	version    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

// New creates a Notion client. Missing credentials are not an error here;
// CreatePage reports them on every call.
func New(cfg config.NotionConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	version := cfg.Version
	if version == "" {
		version = defaultVersion
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		databaseID: cfg.DatabaseID,
		baseURL:    baseURL,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Configured reports whether both the API key and the database id are set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.databaseID != ""
}

// CreatePage creates one page in the configured database.
func (c *Client) CreatePage(ctx context.Context, props Properties) (PageRef, error) {
	if !c.Configured() {
		return PageRef{}, apperrors.ErrNotionNotConfigured
	}

	payload, err := json.Marshal(createPageRequest{
		Parent:     parent{DatabaseID: c.databaseID},
		Properties: props,
	})
	if err != nil {
		return PageRef{}, fmt.Errorf("marshal page payload: %w", err)
	}

	c.logger.Debug().RawJSON("payload", payload).Msg("Notion create page")

	if err := c.limiter.Wait(ctx); err != nil {
		return PageRef{}, fmt.Errorf("notion rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pagesPath, bytes.NewReader(payload))
	if err != nil {
		return PageRef{}, fmt.Errorf("create page request: %w", err)
	}

	req.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	req.Header.Set(headerVersion, c.version)
	req.Header.Set(headerContentType, contentTypeJSON)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	observability.NotionRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.NotionPages.WithLabelValues(observability.StatusError).Inc()
		return PageRef{}, fmt.Errorf("%w: %w", apperrors.ErrNotionRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		observability.NotionPages.WithLabelValues(observability.StatusError).Inc()
		return PageRef{}, fmt.Errorf("read page response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		observability.NotionPages.WithLabelValues(observability.StatusError).Inc()

		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Code:       gjson.GetBytes(body, "code").String(),
			Message:    gjson.GetBytes(body, "message").String(),
			Body:       string(body),
		}

		c.logger.Error().
			Int("status", apiErr.StatusCode).
			Str("reason", apiErr.Status).
			Str("code", apiErr.Code).
			Str("message", apiErr.Message).
			RawJSON("properties", payloadProperties(payload)).
			Str("body", apiErr.Body).
			Msg("Notion create page failed")

		return PageRef{}, apiErr
	}

	observability.NotionPages.WithLabelValues(observability.StatusSuccess).Inc()

	return PageRef{
		ID:  gjson.GetBytes(body, "id").String(),
		URL: gjson.GetBytes(body, "url").String(),
	}, nil
}

func payloadProperties(payload []byte) []byte {
	props := gjson.GetBytes(payload, "properties")
	if !props.Exists() {
		return []byte("null")
	}

	return []byte(props.Raw)
}
