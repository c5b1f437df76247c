// Package triage turns a free-text chat note into one or more GTD capture items.
//
// Classification never fails from the caller's point of view: any transport,
// decoding or shape problem degrades to a single inbox item titled with the
// original text.
package triage

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-gtd-relay/internal/core/domain"
	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/core/llm"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
)

const logTextLimit = 200

// Fallback reasons used as metric labels.
const (
	reasonLLMError   = "llm_error"
	reasonBadJSON    = "invalid_json"
	reasonBadShape   = "unexpected_shape"
	reasonNoItems    = "no_items"
	reasonEmptyReply = "empty_response"
)

// Triager classifies notes with a language model.
type Triager struct {
	llm    llm.Client
	logger *zerolog.Logger
	now    func() time.Time
}

// New returns a Triager. now may be nil, in which case time.Now is used.
func New(client llm.Client, logger *zerolog.Logger, now func() time.Time) *Triager {
	if now == nil {
		now = time.Now
	}

	return &Triager{llm: client, logger: logger, now: now}
}

// Triage classifies rawText. It always returns at least one fully populated item.
func (t *Triager) Triage(ctx context.Context, rawText string) []domain.CaptureItem {
	now := t.now()

	content, err := t.llm.Complete(ctx, SystemPrompt(now), rawText)
	if err != nil {
		return t.fallback(rawText, reasonLLMError, err)
	}

	result := ParseItems(content)
	if !result.OK() {
		return t.fallback(rawText, fallbackReason(result.Err), result.Err)
	}

	items := make([]domain.CaptureItem, 0, len(result.Items))

	for _, obj := range result.Items {
		item, dropped := normalizeItem(obj, rawText, now)
		if len(dropped) > 0 {
			t.logger.Warn().Strs("fields", dropped).Str("title", item.Title).Msg("dropped unparseable dates from triage result")
		}

		observability.CaptureItems.WithLabelValues(item.DisplayType()).Inc()

		items = append(items, item)
	}

	return items
}

func (t *Triager) fallback(rawText, reason string, err error) []domain.CaptureItem {
	observability.TriageFallbacks.WithLabelValues(reason).Inc()
	observability.CaptureItems.WithLabelValues(domain.TypeInbox).Inc()

	t.logger.Warn().
		Err(err).
		Str("reason", reason).
		Str("text", truncate(rawText, logTextLimit)).
		Msg("Triage failed, falling back to inbox")

	return []domain.CaptureItem{fallbackItem(rawText)}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidJSON):
		return reasonBadJSON
	case errors.Is(err, apperrors.ErrUnexpectedShape):
		return reasonBadShape
	case errors.Is(err, apperrors.ErrNoItems):
		return reasonNoItems
	case errors.Is(err, apperrors.ErrEmptyResponse):
		return reasonEmptyReply
	default:
		return reasonNoItems
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max]) + "..."
}
