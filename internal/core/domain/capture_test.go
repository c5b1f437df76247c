package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"", IntentInbox},
		{"   ", IntentInbox},
		{"inbox", IntentInbox},
		{"Next Action", IntentNextAction},
		{"next-action", IntentNextAction},
		{"  WAITING_FOR ", IntentWaitingFor},
		{"waiting for", IntentWaitingFor},
		{"Someday", IntentSomeday},
		{"nextaction", "nextaction"},
		{"totally-unknown thing", "totally_unknown_thing"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeIntent(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeIntent(string(got)), "normalization must be idempotent")
		})
	}
}

func TestCanonicalIntent(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"waitingfor", IntentWaitingFor},
		{"WaitingFor", IntentWaitingFor},
		{"waiting-for", IntentWaitingFor},
		{"nextaction", IntentNextAction},
		{"NEXTACTION", IntentNextAction},
		{"project", IntentProject},
		{"", IntentInbox},
		{"urgent", "urgent"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CanonicalIntent(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CanonicalIntent(string(got)))
		})
	}
}

func TestDisplayType(t *testing.T) {
	tests := []struct {
		intent string
		want   string
	}{
		{"inbox", TypeInbox},
		{"next_action", TypeNextAction},
		{"nextaction", TypeNextAction},
		{"Next-Action", TypeNextAction},
		{"waiting_for", TypeWaitingFor},
		{"waitingfor", TypeWaitingFor},
		{"someday", TypeSomeday},
		{"project", TypeProject},
		{"reference", TypeReference},
		{"", TypeInbox},
		{"urgent", TypeInbox},
		{"someday maybe", TypeInbox},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayType(tt.intent))
		})
	}
}

func TestDisplayType_UnknownAlwaysInbox(t *testing.T) {
	for _, v := range []string{"todo", "later", "call", "next__action", "42"} {
		assert.False(t, KnownIntent(v), v)
		assert.Equal(t, TypeInbox, DisplayType(v), v)
		assert.Equal(t, TypeInbox, DisplayType(string(NormalizeIntent(v))), v)
	}
}

func TestChatMessageEmpty(t *testing.T) {
	assert.True(t, ChatMessage{ChatID: 0, Text: "hello"}.Empty())
	assert.True(t, ChatMessage{ChatID: 1, Text: "  \n\t"}.Empty())
	assert.False(t, ChatMessage{ChatID: 1, Text: "buy milk"}.Empty())
}

func TestStringPtrAndDeref(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Nil(t, StringPtr("   "))

	p := StringPtr(" 2024-05-01 ")
	if assert.NotNil(t, p) {
		assert.Equal(t, "2024-05-01", *p)
	}

	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(p2("  x ")))
}

func p2(s string) *string { return &s }
