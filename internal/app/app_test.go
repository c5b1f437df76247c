package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/core/llm"
	"github.com/lueurxax/telegram-gtd-relay/internal/ingest/cursor"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
)

func TestNew_FileBackend(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &config.Config{
		CursorBackend: config.CursorBackendFile,
		OffsetFile:    filepath.Join(t.TempDir(), "offset.txt"),
	}

	a, err := New(context.Background(), cfg, &logger)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &cursor.FileStore{}, a.cursor)
	assert.Nil(t, a.database)
	assert.Equal(t, 0, a.cursor.Load(context.Background()))
}

func TestNew_UnknownBackend(t *testing.T) {
	logger := zerolog.Nop()

	_, err := New(context.Background(), &config.Config{CursorBackend: "redis"}, &logger)

	assert.ErrorIs(t, err, apperrors.ErrUnknownCursorBackend)
}

func TestNewLLM_MockWithoutKey(t *testing.T) {
	logger := zerolog.Nop()

	for _, key := range []string{"", llm.MockAPIKey} {
		a := &App{cfg: &config.Config{LLMAPIKey: key}, logger: &logger}
		assert.Equal(t, llm.NewMock(), a.newLLM(), key)
	}

	a := &App{cfg: &config.Config{LLMAPIKey: "sk-test", LLMModel: "gpt-4.1-mini"}, logger: &logger}
	assert.NotEqual(t, llm.NewMock(), a.newLLM())
}

func TestHealthHandler_ReadinessUsesCursorStore(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &config.Config{
		CursorBackend: config.CursorBackendFile,
		OffsetFile:    filepath.Join(t.TempDir(), "state", "offset.txt"),
	}

	a, err := New(context.Background(), cfg, &logger)
	require.NoError(t, err)

	srv := httptest.NewServer(observability.NewServer(a.cursor, 0, &logger).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "cursor directory does not exist yet")

	require.NoError(t, a.cursor.Save(context.Background(), 12))

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
