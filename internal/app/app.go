// Package app wires configuration into the running relay.
//
// The App owns the delivery cursor backend and builds the Telegram, LLM and
// Notion clients for the poller. It exposes two entry points: the long-poll
// loop and the health/metrics server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/core/llm"
	"github.com/lueurxax/telegram-gtd-relay/internal/ingest/cursor"
	"github.com/lueurxax/telegram-gtd-relay/internal/ingest/poller"
	"github.com/lueurxax/telegram-gtd-relay/internal/output/notion"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/worker"
	"github.com/lueurxax/telegram-gtd-relay/internal/process/triage"
	db "github.com/lueurxax/telegram-gtd-relay/internal/storage"
)

const (
	errBotInit = "bot initialization failed: %w"

	defaultBotInitPause = 2 * time.Second
)

// App holds the application dependencies.
type App struct {
	cfg      *config.Config
	cursor   cursor.Store
	database *db.DB
	logger   *zerolog.Logger
}

// New opens the configured cursor backend. For postgres this connects and
// applies migrations.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	cursorCfg := cfg.CursorCfg()

	switch cursorCfg.Backend {
	case config.CursorBackendPostgres:
		database, err := db.New(ctx, cursorCfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("connect cursor database: %w", err)
		}

		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("migrate cursor database: %w", err)
		}

		a.database = database
		a.cursor = db.NewCursorStore(database, cursorCfg.Stream)
	case config.CursorBackendFile, "":
		a.cursor = cursor.NewFileStore(cursorCfg.OffsetFile, logger)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownCursorBackend, cursorCfg.Backend)
	}

	a.logger.Info().Str("backend", cursorCfg.Backend).Msg("Cursor store ready")

	return a, nil
}

// Close releases the cursor backend.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

// RunPoller runs the Telegram long-poll loop until ctx is canceled.
func (a *App) RunPoller(ctx context.Context) error {
	tgCfg := a.cfg.TelegramCfg()

	// getUpdates holds the connection for the whole poll window, so it gets
	// its own client with a longer timeout than sendMessage.
	updatesAPI, err := a.connectBot(ctx, tgCfg, &http.Client{Timeout: tgCfg.PollHTTP})
	if err != nil {
		return err
	}

	repliesAPI, err := a.connectBot(ctx, tgCfg, &http.Client{Timeout: tgCfg.SendTimeout})
	if err != nil {
		return err
	}

	a.logger.Info().Str("username", updatesAPI.Self.UserName).Msg("Authorized on Telegram")

	if !a.cfg.NotionConfigured() {
		a.logger.Warn().Err(apperrors.ErrNotionNotConfigured).Msg("Notion is not configured; every capture will be reported as an error")
	}

	p := poller.New(poller.Deps{
		Updates: updatesAPI,
		Replies: repliesAPI,
		Triager: triage.New(a.newLLM(), a.logger, nil),
		Saver:   notion.NewWriterFromConfig(a.cfg.NotionCfg(), a.logger),
		Cursor:  a.cursor,
	}, tgCfg, a.logger)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	return nil
}

// connectBot builds a Bot API client, retrying getMe until Telegram answers.
// Only a rejected token (401 or 404) or ctx cancellation stops the retries.
func (a *App) connectBot(ctx context.Context, tgCfg config.TelegramConfig, client *http.Client) (*tgbotapi.BotAPI, error) {
	pause := tgCfg.PollErrorPause
	if pause <= 0 {
		pause = defaultBotInitPause
	}

	for attempt := 1; ; attempt++ {
		api, err := tgbotapi.NewBotAPIWithClient(tgCfg.Token, tgCfg.APIEndpoint, client)
		if err == nil {
			return api, nil
		}

		if tokenRejected(err) {
			return nil, fmt.Errorf(errBotInit, fmt.Errorf("%w: %w", apperrors.ErrBotUnauthorized, err))
		}

		a.logger.Warn().Err(err).Int("attempt", attempt).Dur("pause", pause).Msg("Telegram unreachable, retrying bot initialization")

		if err := worker.Wait(ctx, pause); err != nil {
			return nil, fmt.Errorf(errBotInit, err)
		}
	}
}

func tokenRejected(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusNotFound
}

// newLLM returns the offline client when no real API key is configured.
func (a *App) newLLM() llm.Client {
	llmCfg := a.cfg.LLMCfg()

	if llmCfg.APIKey == "" || llmCfg.APIKey == llm.MockAPIKey {
		a.logger.Warn().Msg("LLM API key not set; every note will be captured to Inbox")
		return llm.NewMock()
	}

	a.logger.Info().Str("model", llmCfg.Model).Str("base_url", llmCfg.BaseURL).Msg("LLM client configured")

	return llm.NewOpenAI(llmCfg, a.logger)
}

// StartHealthServer serves /healthz, /readyz and /metrics. Readiness tracks the cursor store.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.cursor, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}
