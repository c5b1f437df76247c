package triage

import (
	"strings"
	"time"
)

const (
	isoDate             = "2006-01-02"
	defaultFollowUpDays = 7
)

const systemPromptTemplate = `You triage messages into a GTD system.
Today is {{TODAY}} ({{WEEKDAY}}).

Return ONLY a valid JSON **array** of objects. Each object has these keys:

intent: one of ["next_action","waiting_for","someday","project","reference","inbox"]
title: short, clean action description (strip dates/filler words, keep names and verbs)
notes: optional extra context (may be empty string)
due: YYYY-MM-DD or null (a hard deadline the user must meet)
follow_up: YYYY-MM-DD or null (when to check back)

A message may contain one or many tasks. Split them into separate objects.
If the message contains only one task, still return a one-element array.

Rules:
- If a follow-up date is given or implied → waiting_for. Always set follow_up for waiting_for.
- If no date is given or implied → next_action (follow_up is null).
- If the user is waiting on someone else or delegated → waiting_for (default follow_up to {{DEFAULT_FOLLOW_UP}} if no date mentioned).
- If the user must personally do something and no date is mentioned → next_action.
- If a date IS mentioned for something the user must do → waiting_for with that date as follow_up.
- If an explicit deadline is stated ("by Friday", "due on the 3rd") → also set due to that date.
- If it's a multi-step effort → project.
- If it's just capture with no clear action → inbox.
- If it's an idea with no commitment → someday.
- If it's a question, info, or reference material → reference.
- Resolve relative dates ("tomorrow", "next Monday", "in 3 days") to concrete YYYY-MM-DD using today's date.
No markdown. No commentary. JSON only.
`

// SystemPrompt renders the triage instruction for the calendar day of now.
func SystemPrompt(now time.Time) string {
	return strings.NewReplacer(
		"{{TODAY}}", now.Format(isoDate),
		"{{WEEKDAY}}", now.Weekday().String(),
		"{{DEFAULT_FOLLOW_UP}}", DefaultFollowUp(now),
	).Replace(systemPromptTemplate)
}

// DefaultFollowUp is the check-back date assigned to undated waiting_for items.
func DefaultFollowUp(now time.Time) string {
	return now.AddDate(0, 0, defaultFollowUpDays).Format(isoDate)
}
