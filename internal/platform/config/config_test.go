package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvBotToken       = "BOT_TOKEN"
	testEnvLegacyBotToken = "TELEGRAM_BOT_TOKEN"
	testEnvLLMAPIKey      = "LLM_API_KEY"
	testEnvLegacyOpenAI   = "OPENAI_API_KEY"
	testEnvCursorBackend  = "CURSOR_BACKEND"
	testEnvPostgresDSN    = "POSTGRES_DSN"
	testEnvPersistMode    = "CURSOR_PERSIST_MODE"
)

const testBotToken = "123456:ABC-DEF"

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_MissingBotToken(t *testing.T) {
	unsetEnv(t, testEnvBotToken)
	unsetEnv(t, testEnvLegacyBotToken)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingBotToken)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	unsetEnv(t, testEnvCursorBackend)
	unsetEnv(t, testEnvPersistMode)
	unsetEnv(t, "LLM_MODEL")
	unsetEnv(t, "OFFSET_FILE")
	unsetEnv(t, "POLL_TIMEOUT")
	unsetEnv(t, "TELEGRAM_POLL_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testBotToken, cfg.BotToken)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLMModel)
	assert.Equal(t, "/data/offset.txt", cfg.OffsetFile)
	assert.Equal(t, CursorBackendFile, cfg.CursorBackend)
	assert.Equal(t, PersistPerBatch, cfg.CursorPersistMode)
	assert.Equal(t, 30*time.Second, cfg.PollTimeout)
	assert.Equal(t, 35*time.Second, cfg.PollHTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.Equal(t, 2*time.Second, cfg.PollErrorPause)
	assert.Equal(t, "2022-06-28", cfg.NotionVersion)
	assert.Equal(t, "Telegram", cfg.SourceLabel)
}

func TestLoad_LegacyAliases(t *testing.T) {
	unsetEnv(t, testEnvBotToken)
	unsetEnv(t, testEnvLLMAPIKey)
	unsetEnv(t, "POLL_TIMEOUT")
	t.Setenv(testEnvLegacyBotToken, testBotToken)
	t.Setenv(testEnvLegacyOpenAI, "sk-legacy")
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testBotToken, cfg.BotToken)
	assert.Equal(t, "sk-legacy", cfg.LLMAPIKey)
	assert.Equal(t, 20*time.Second, cfg.PollTimeout)
}

func TestLoad_PrimaryNameWinsOverAlias(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv(testEnvLegacyBotToken, "other-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, testBotToken, cfg.BotToken)
}

func TestLoad_CursorBackend(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv(testEnvCursorBackend, CursorBackendPostgres)
		unsetEnv(t, testEnvPostgresDSN)

		_, err := Load()
		assert.ErrorIs(t, err, apperrors.ErrMissingPostgresDSN)
	})

	t.Run("postgres with dsn", func(t *testing.T) {
		t.Setenv(testEnvCursorBackend, CursorBackendPostgres)
		t.Setenv(testEnvPostgresDSN, "postgres://localhost/test")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/test", cfg.CursorCfg().PostgresDSN)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv(testEnvCursorBackend, "redis")

		_, err := Load()
		assert.ErrorIs(t, err, apperrors.ErrUnknownCursorBackend)
	})
}

func TestLoad_PersistModeFallsBackToBatch(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	unsetEnv(t, testEnvCursorBackend)
	t.Setenv(testEnvPersistMode, "sometimes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PersistPerBatch, cfg.CursorPersistMode)

	t.Setenv(testEnvPersistMode, PersistPerUpdate)

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, PersistPerUpdate, cfg.TelegramCfg().PersistMode)
}

func TestNotionConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.NotionConfigured())

	cfg.NotionAPIKey = "secret"
	assert.False(t, cfg.NotionConfigured())

	cfg.NotionDatabaseID = "db"
	assert.True(t, cfg.NotionConfigured())
	assert.Equal(t, "db", cfg.NotionCfg().DatabaseID)
}
