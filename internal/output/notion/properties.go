package notion

import (
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/telegram-gtd-relay/internal/core/domain"
)

// Database property names.
const (
	PropName     = "Name"
	PropType     = "Type"
	PropStatus   = "Status"
	PropSource   = "Source"
	PropNotes    = "Notes"
	PropDue      = "Due"
	PropFollowUp = "Follow-up"
)

// StatusActive is the status every new page starts with.
const StatusActive = "Active"

// DefaultSourceLabel names the capture channel when none is configured.
const DefaultSourceLabel = "Telegram"

// Notion caps each rich text segment at 2000 characters and each array at 100 segments.
const (
	maxSegmentRunes = 2000
	maxSegments     = 100
)

// BuildProperties maps a capture item onto the database schema.
// Due and Follow-up are omitted when blank. rawText is the message the item came from.
func BuildProperties(item domain.CaptureItem, rawText, source string) Properties {
	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = rawText
	}

	if source == "" {
		source = DefaultSourceLabel
	}

	props := Properties{
		PropName:   titleProp(title),
		PropType:   selectProp(item.DisplayType()),
		PropStatus: selectProp(StatusActive),
		PropSource: richTextProp(source),
		PropNotes:  richTextProp(item.Notes),
	}

	if due := strings.TrimSpace(domain.Deref(item.Due)); due != "" {
		props[PropDue] = dateProp(due)
	}

	if followUp := strings.TrimSpace(domain.Deref(item.FollowUp)); followUp != "" {
		props[PropFollowUp] = dateProp(followUp)
	}

	return props
}

// textContent splits s into segments Notion accepts. Text beyond the
// segment cap is dropped.
func textContent(s string) []map[string]any {
	chunks := splitRunes(s, maxSegmentRunes, maxSegments)
	out := make([]map[string]any, 0, len(chunks))

	for _, c := range chunks {
		out = append(out, map[string]any{"text": map[string]any{"content": c}})
	}

	return out
}

// splitRunes cuts s into at most limit pieces of at most size runes.
// An empty s yields one empty piece.
func splitRunes(s string, size, limit int) []string {
	if utf8.RuneCountInString(s) <= size {
		return []string{s}
	}

	runes := []rune(s)
	pieces := make([]string, 0, len(runes)/size+1)

	for start := 0; start < len(runes) && len(pieces) < limit; start += size {
		end := min(start+size, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}

	return pieces
}

func titleProp(s string) map[string]any {
	return map[string]any{"title": textContent(s)}
}

func richTextProp(s string) map[string]any {
	return map[string]any{"rich_text": textContent(s)}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func dateProp(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}
