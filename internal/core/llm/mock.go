package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockAPIKey selects the offline client instead of a real provider.
const MockAPIKey = "mock"

type mockItem struct {
	Intent string `json:"intent"`
	Title  string `json:"title"`
	Notes  string `json:"notes"`
}

// mockClient answers every note with a single inbox item, without network access.
type mockClient struct{}

// NewMock creates an offline client for local runs and tests.
func NewMock() Client {
	return mockClient{}
}

// Complete implements Client.
func (mockClient) Complete(_ context.Context, _, userText string) (string, error) {
	out, err := json.Marshal([]mockItem{{Intent: "inbox", Title: userText}})
	if err != nil {
		return "", fmt.Errorf("marshal mock completion: %w", err)
	}

	return string(out), nil
}
