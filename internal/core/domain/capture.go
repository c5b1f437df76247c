package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent is a GTD category assigned to a capture item.
type Intent string

const (
	IntentInbox      Intent = "inbox"
	IntentNextAction Intent = "next_action"
	IntentWaitingFor Intent = "waiting_for"
	IntentSomeday    Intent = "someday"
	IntentProject    Intent = "project"
	IntentReference  Intent = "reference"
)

// Display labels used as the Notion "Type" select options.
const (
	TypeInbox      = "Inbox"
	TypeNextAction = "Next Action"
	TypeWaitingFor = "Waiting For"
	TypeSomeday    = "Someday"
	TypeProject    = "Project"
	TypeReference  = "Reference"
)

var typeMap = map[Intent]string{
	IntentInbox:      TypeInbox,
	IntentNextAction: TypeNextAction,
	IntentWaitingFor: TypeWaitingFor,
	IntentSomeday:    TypeSomeday,
	IntentProject:    TypeProject,
	IntentReference:  TypeReference,
}

// intentAliases are spellings the model produces for multi-word intents.
var intentAliases = map[Intent]Intent{
	"nextaction": IntentNextAction,
	"waitingfor": IntentWaitingFor,
}

// CaptureItem is one discrete task or thought extracted from a chat message.
// Due and FollowUp are ISO calendar dates (YYYY-MM-DD) or nil.
type CaptureItem struct {
	Intent   Intent  `json:"intent"`
	Title    string  `json:"title"`
	Notes    string  `json:"notes"`
	Due      *string `json:"due"`
	FollowUp *string `json:"follow_up"`
}

// DisplayType returns the Notion type label for the item's intent.
func (c CaptureItem) DisplayType() string {
	return DisplayType(string(c.Intent))
}

// ChatMessage is the part of an inbound Telegram update the relay cares about.
type ChatMessage struct {
	UpdateID int
	ChatID   int64
	Text     string
}

// Empty reports whether the message has no chat to reply to or no text to triage.
func (m ChatMessage) Empty() bool {
	return m.ChatID == 0 || strings.TrimSpace(m.Text) == ""
}

// NormalizeIntent lower-cases v and maps '-' and ' ' to '_'. Blank input yields inbox.
// The result is not validated; unknown values pass through and are resolved by DisplayType.
func NormalizeIntent(v string) Intent {
	v = strings.TrimSpace(v)
	if v == "" {
		return IntentInbox
	}

	v = cases.Lower(language.Und).String(v)
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)

	return Intent(v)
}

// CanonicalIntent normalizes v and resolves aliases such as "waitingfor" to
// their primary intent. Unknown values are returned normalized but unchanged.
func CanonicalIntent(v string) Intent {
	intent := NormalizeIntent(v)
	if primary, ok := intentAliases[intent]; ok {
		return primary
	}

	return intent
}

// DisplayType maps a raw or normalized intent to its display label, defaulting to Inbox.
func DisplayType(intent string) string {
	if label, ok := typeMap[CanonicalIntent(intent)]; ok {
		return label
	}

	return TypeInbox
}

// KnownIntent reports whether intent resolves to one of the table entries.
func KnownIntent(intent string) bool {
	_, ok := typeMap[CanonicalIntent(intent)]

	return ok
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}

// Deref returns the trimmed value of p, or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}

	return strings.TrimSpace(*p)
}
