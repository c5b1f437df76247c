// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Configuration errors.
var (
	// ErrMissingBotToken indicates the Telegram bot token is not configured.
	ErrMissingBotToken = errors.New("telegram bot token is missing")

	// ErrNotionNotConfigured indicates the Notion API key or database id is missing.
	ErrNotionNotConfigured = errors.New("missing NOTION_API_KEY or NOTION_DATABASE_ID")

	// ErrMissingPostgresDSN indicates the postgres cursor backend was selected without a DSN.
	ErrMissingPostgresDSN = errors.New("postgres cursor backend requires POSTGRES_DSN")

	// ErrUnknownCursorBackend indicates an unsupported cursor backend name.
	ErrUnknownCursorBackend = errors.New("unknown cursor backend")
)

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrInvalidJSON indicates the model output could not be decoded as JSON.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrUnexpectedShape indicates decoded JSON was neither an object nor an array of objects.
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// ErrNoItems indicates the model returned an empty list of items.
	ErrNoItems = errors.New("no capture items in response")
)

// Upstream request errors.
var (
	// ErrNotionRequest indicates the Notion API rejected a request or was unreachable.
	ErrNotionRequest = errors.New("notion request failed")

	// ErrPollFailed indicates a getUpdates call to Telegram failed.
	ErrPollFailed = errors.New("telegram poll failed")

	// ErrBotUnauthorized indicates Telegram rejected the bot token.
	ErrBotUnauthorized = errors.New("telegram rejected the bot token")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
