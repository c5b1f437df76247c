package triage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lueurxax/telegram-gtd-relay/internal/core/domain"
	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
)

// Field names the model is asked to return.
const (
	fieldIntent   = "intent"
	fieldTitle    = "title"
	fieldNotes    = "notes"
	fieldDue      = "due"
	fieldFollowUp = "follow_up"
)

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFences removes a single outer markdown code fence, if present.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	return trimmed
}

// ParseResult is the outcome of decoding one model response.
// Exactly one of Items (non-empty) and Err is set.
type ParseResult struct {
	Items []map[string]any
	Err   error
}

// OK reports whether the response yielded at least one object.
func (r ParseResult) OK() bool {
	return r.Err == nil && len(r.Items) > 0
}

// ParseItems decodes a (possibly fenced) model response into raw item objects.
// A single object is treated as a one-element array; non-object array elements
// are dropped.
func ParseItems(content string) ParseResult {
	cleaned := StripFences(content)
	if cleaned == "" {
		return ParseResult{Err: apperrors.ErrEmptyResponse}
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return ParseResult{Err: fmt.Errorf("%w: %v", apperrors.ErrInvalidJSON, err)}
	}

	switch v := decoded.(type) {
	case map[string]any:
		return ParseResult{Items: []map[string]any{v}}
	case []any:
		items := make([]map[string]any, 0, len(v))

		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				items = append(items, obj)
			}
		}

		if len(items) == 0 {
			return ParseResult{Err: apperrors.ErrNoItems}
		}

		return ParseResult{Items: items}
	default:
		return ParseResult{Err: fmt.Errorf("%w: %T", apperrors.ErrUnexpectedShape, decoded)}
	}
}

// normalizeItem fills every field of a capture item from a decoded object.
func normalizeItem(obj map[string]any, rawText string, now time.Time) (domain.CaptureItem, []string) {
	var dropped []string

	intent := domain.CanonicalIntent(stringField(obj, fieldIntent))
	if !domain.KnownIntent(string(intent)) {
		intent = domain.IntentInbox
	}

	title := strings.TrimSpace(stringField(obj, fieldTitle))
	if title == "" {
		title = rawText
	}

	item := domain.CaptureItem{
		Intent: intent,
		Title:  title,
		Notes:  strings.TrimSpace(stringField(obj, fieldNotes)),
	}

	due, ok := normalizeDate(stringField(obj, fieldDue))
	if !ok {
		dropped = append(dropped, fieldDue)
	}

	followUp, ok := normalizeDate(stringField(obj, fieldFollowUp))
	if !ok {
		dropped = append(dropped, fieldFollowUp)
	}

	item.Due = due
	item.FollowUp = followUp

	if item.Intent == domain.IntentWaitingFor && item.FollowUp == nil {
		item.FollowUp = domain.StringPtr(DefaultFollowUp(now))
	}

	return item, dropped
}

// fallbackItem is what a failed triage degrades to.
func fallbackItem(rawText string) domain.CaptureItem {
	return domain.CaptureItem{
		Intent: domain.IntentInbox,
		Title:  rawText,
		Notes:  "",
	}
}

// stringField returns obj[key] when it is a string; any other type counts as absent.
func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// normalizeDate reformats any recognizable date as YYYY-MM-DD.
// Blank input returns (nil, true); unparseable input returns (nil, false).
func normalizeDate(v string) (*string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "null") {
		return nil, true
	}

	if t, err := time.Parse(isoDate, v); err == nil {
		return domain.StringPtr(t.Format(isoDate)), true
	}

	t, err := dateparse.ParseAny(v)
	if err != nil {
		return nil, false
	}

	return domain.StringPtr(t.Format(isoDate)), true
}
