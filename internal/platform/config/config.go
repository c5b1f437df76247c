package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
)

// Cursor persistence modes.
const (
	PersistPerBatch  = "batch"
	PersistPerUpdate = "update"
)

// Cursor backends.
const (
	CursorBackendFile     = "file"
	CursorBackendPostgres = "postgres"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Telegram
	BotToken            string        `env:"BOT_TOKEN"`
	TelegramAPIEndpoint string        `env:"TELEGRAM_API_ENDPOINT" envDefault:"https://api.telegram.org/bot%s/%s"`
	PollTimeout         time.Duration `env:"POLL_TIMEOUT" envDefault:"30s"`
	PollHTTPTimeout     time.Duration `env:"POLL_HTTP_TIMEOUT" envDefault:"35s"`
	SendTimeout         time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`
	PollErrorPause      time.Duration `env:"POLL_ERROR_PAUSE" envDefault:"2s"`

	// Cursor
	CursorBackend     string `env:"CURSOR_BACKEND" envDefault:"file"`
	CursorPersistMode string `env:"CURSOR_PERSIST_MODE" envDefault:"batch"`
	OffsetFile        string `env:"OFFSET_FILE" envDefault:"/data/offset.txt"`
	CursorStream      string `env:"CURSOR_STREAM" envDefault:"telegram"`
	PostgresDSN       string `env:"POSTGRES_DSN"`

	// LLM
	LLMAPIKey           string        `env:"LLM_API_KEY"`
	LLMBaseURL          string        `env:"LLM_BASE_URL"`
	LLMModel            string        `env:"LLM_MODEL" envDefault:"gpt-4.1-mini"`
	LLMTimeout          time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMRateLimitRPS     float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"1"`
	LLMCircuitThreshold int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	LLMCircuitTimeout   time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`

	// Notion
	NotionAPIKey     string        `env:"NOTION_API_KEY"`
	NotionDatabaseID string        `env:"NOTION_DATABASE_ID"`
	NotionBaseURL    string        `env:"NOTION_BASE_URL" envDefault:"https://api.notion.com"`
	NotionVersion    string        `env:"NOTION_VERSION" envDefault:"2022-06-28"`
	NotionTimeout    time.Duration `env:"NOTION_TIMEOUT" envDefault:"30s"`
	NotionRPS        float64       `env:"NOTION_RPS" envDefault:"3"`
	SourceLabel      string        `env:"CAPTURE_SOURCE_LABEL" envDefault:"Telegram"`
}

// Load reads configuration from the environment (and an optional .env file).
// A missing bot token is the only fatal condition at this stage.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyLegacyAliases(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return apperrors.ErrMissingBotToken
	}

	switch c.CursorBackend {
	case CursorBackendFile:
	case CursorBackendPostgres:
		if c.PostgresDSN == "" {
			return apperrors.ErrMissingPostgresDSN
		}
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownCursorBackend, c.CursorBackend)
	}

	if c.CursorPersistMode != PersistPerUpdate {
		c.CursorPersistMode = PersistPerBatch
	}

	return nil
}

// NotionConfigured reports whether both Notion credentials are present.
func (c *Config) NotionConfigured() bool {
	return c.NotionAPIKey != "" && c.NotionDatabaseID != ""
}

// applyLegacyAliases honours the variable names used by the original deployment.
func applyLegacyAliases(cfg *Config) {
	if !hasEnv("BOT_TOKEN") {
		setStringFromEnv("TELEGRAM_BOT_TOKEN", &cfg.BotToken)
	}

	if !hasEnv("LLM_API_KEY") {
		setStringFromEnv("OPENAI_API_KEY", &cfg.LLMAPIKey)
	}

	if !hasEnv("POLL_TIMEOUT") {
		setSecondsFromEnv("TELEGRAM_POLL_TIMEOUT", &cfg.PollTimeout)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setSecondsFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || parsed <= 0 {
		return
	}

	*target = time.Duration(parsed) * time.Second
}
