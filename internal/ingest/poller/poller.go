// Package poller runs the Telegram long-poll loop that feeds notes into triage
// and writes the results to Notion.
//
// Updates are handled strictly one at a time. The cursor advances past every
// update before it is handled, so a poisoned update cannot stall delivery.
package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-gtd-relay/internal/core/domain"
	apperrors "github.com/lueurxax/telegram-gtd-relay/internal/core/errors"
	"github.com/lueurxax/telegram-gtd-relay/internal/ingest/cursor"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/observability"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/worker"
)

const (
	workerName = "telegram-poller"

	startCommand = "/start"

	// GreetingText answers the /start command.
	GreetingText = "Ready. Send me anything to capture/triage into Notion."

	// GenericErrorText is sent when a reply has no lines at all.
	GenericErrorText = "Error saving to Notion. Check poller logs."

	savedPrefix = "Saved → "
	errorPrefix = "[ERROR] "

	defaultPollTimeout = 30 * time.Second
	defaultErrorPause  = 2 * time.Second
)

// ChatAPI is the subset of the Bot API the poller uses.
type ChatAPI interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Triager turns raw text into capture items. It must never return an empty slice.
type Triager interface {
	Triage(ctx context.Context, rawText string) []domain.CaptureItem
}

// Saver persists one capture item.
type Saver interface {
	SaveItem(ctx context.Context, item domain.CaptureItem, rawText string) error
}

// Deps are the collaborators of a Poller.
type Deps struct {
	// Updates is used for getUpdates. Its HTTP timeout must exceed the poll timeout.
	Updates ChatAPI
	// Replies is used for sendMessage.
	Replies ChatAPI
	Triager Triager
	Saver   Saver
	Cursor  cursor.Store
}

// Poller owns the in-memory delivery cursor.
type Poller struct {
	deps        Deps
	pollTimeout time.Duration
	errorPause  time.Duration
	perUpdate   bool
	logger      *zerolog.Logger

	offset    int
	persisted int
}

// New builds a Poller from Telegram settings.
func New(deps Deps, cfg config.TelegramConfig, logger *zerolog.Logger) *Poller {
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	errorPause := cfg.PollErrorPause
	if errorPause <= 0 {
		errorPause = defaultErrorPause
	}

	if deps.Replies == nil {
		deps.Replies = deps.Updates
	}

	return &Poller{
		deps:        deps,
		pollTimeout: pollTimeout,
		errorPause:  errorPause,
		perUpdate:   cfg.PersistMode == config.PersistPerUpdate,
		logger:      logger,
	}
}

// Offset returns the in-memory cursor.
func (p *Poller) Offset() int {
	return p.offset
}

// Run loads the cursor and polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	p.offset = p.deps.Cursor.Load(ctx)
	p.persisted = p.offset
	observability.CursorOffset.Set(float64(p.offset))

	p.logger.Info().Int("offset", p.offset).Msg("Poller started")

	return worker.Loop(ctx, worker.Config{
		Name:       workerName,
		ErrorPause: p.errorPause,
		Process:    p.pollOnce,
		OnError: func(err error) {
			p.logger.Error().Err(err).Int("offset", p.offset).Msg("Poll loop error")
		},
		Logger: p.logger,
	})
}

// pollOnce performs one long poll and processes the returned batch.
// A failed poll leaves the cursor untouched.
func (p *Poller) pollOnce(ctx context.Context) error {
	updates, err := p.deps.Updates.GetUpdates(tgbotapi.UpdateConfig{
		Offset:  p.offset,
		Timeout: int(p.pollTimeout / time.Second),
	})
	if err != nil {
		observability.PollErrors.Inc()
		return fmt.Errorf("%w: %w", apperrors.ErrPollFailed, err)
	}

	observability.PollBatchSize.Observe(float64(len(updates)))

	// Once polled, a batch runs to completion; shutdown is observed between polls.
	batchCtx := context.WithoutCancel(ctx)

	for _, upd := range updates {
		p.offset = upd.UpdateID + 1

		p.handleUpdate(batchCtx, upd)

		if p.perUpdate {
			if err := p.persist(batchCtx); err != nil {
				return err
			}
		}
	}

	return p.persist(batchCtx)
}

func (p *Poller) persist(ctx context.Context) error {
	if p.offset == p.persisted {
		return nil
	}

	if err := p.deps.Cursor.Save(ctx, p.offset); err != nil {
		observability.CursorSaveErrors.Inc()
		return fmt.Errorf("save cursor %d: %w", p.offset, err)
	}

	p.persisted = p.offset
	observability.CursorOffset.Set(float64(p.offset))

	return nil
}

// handleUpdate processes one update. Panics are contained to the update.
func (p *Poller) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := chatMessage(upd)

	logger := p.logger.With().
		Str("correlation_id", uuid.NewString()).
		Int("update_id", upd.UpdateID).
		Int64("chat_id", msg.ChatID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			observability.UpdatesReceived.WithLabelValues(observability.OutcomeRecovered).Inc()
			logger.Error().Interface("panic", r).Msg("recovered from panic while handling update")
		}
	}()

	if msg.Empty() {
		observability.UpdatesReceived.WithLabelValues(observability.OutcomeSkipped).Inc()
		logger.Debug().Msg("skipping update without chat or text")

		return
	}

	if msg.Text == startCommand {
		observability.UpdatesReceived.WithLabelValues(observability.OutcomeCommand).Inc()
		p.reply(&logger, msg.ChatID, GreetingText)

		return
	}

	items := p.deps.Triager.Triage(ctx, msg.Text)
	lines := make([]string, 0, len(items))

	for _, item := range items {
		if err := p.deps.Saver.SaveItem(ctx, item, msg.Text); err != nil {
			logger.Error().
				Err(err).
				Str("intent", string(item.Intent)).
				Str("title", item.Title).
				Msg("Notion save failed for item")

			lines = append(lines, errorLine(item, msg.Text))

			continue
		}

		lines = append(lines, savedLine(item, msg.Text))
	}

	observability.UpdatesReceived.WithLabelValues(observability.OutcomeTriaged).Inc()
	p.reply(&logger, msg.ChatID, composeReply(lines))
}

func (p *Poller) reply(logger *zerolog.Logger, chatID int64, text string) {
	if _, err := p.deps.Replies.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		observability.RepliesSent.WithLabelValues(observability.StatusError).Inc()
		logger.Error().Err(err).Msg("failed to send reply")

		return
	}

	observability.RepliesSent.WithLabelValues(observability.StatusSuccess).Inc()
}

// chatMessage extracts the fields the poller needs. Text is trimmed.
func chatMessage(upd tgbotapi.Update) domain.ChatMessage {
	msg := domain.ChatMessage{UpdateID: upd.UpdateID}

	if upd.Message == nil {
		return msg
	}

	if upd.Message.Chat != nil {
		msg.ChatID = upd.Message.Chat.ID
	}

	msg.Text = strings.TrimSpace(upd.Message.Text)

	return msg
}

func itemTitle(item domain.CaptureItem, rawText string) string {
	if strings.TrimSpace(item.Title) == "" {
		return rawText
	}

	return item.Title
}

func savedLine(item domain.CaptureItem, rawText string) string {
	return savedPrefix + item.DisplayType() + ": " + itemTitle(item, rawText)
}

func errorLine(item domain.CaptureItem, rawText string) string {
	return errorPrefix + itemTitle(item, rawText)
}

// composeReply joins per-item lines, or returns the generic error when there are none.
func composeReply(lines []string) string {
	if len(lines) == 0 {
		return GenericErrorText
	}

	return strings.Join(lines, "\n")
}
