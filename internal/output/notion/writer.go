package notion

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/telegram-gtd-relay/internal/core/domain"
	"github.com/lueurxax/telegram-gtd-relay/internal/platform/config"
)

// PageCreator is the write side of the Notion API.
type PageCreator interface {
	CreatePage(ctx context.Context, props Properties) (PageRef, error)
}

// Writer saves capture items as Notion pages.
type Writer struct {
	pages  PageCreator
	source string
	logger *zerolog.Logger
}

// NewWriter returns a Writer labelling pages with source.
func NewWriter(pages PageCreator, source string, logger *zerolog.Logger) *Writer {
	if source == "" {
		source = DefaultSourceLabel
	}

	return &Writer{pages: pages, source: source, logger: logger}
}

// NewWriterFromConfig builds the API client and a Writer labelling pages with cfg.SourceLabel.
func NewWriterFromConfig(cfg config.NotionConfig, logger *zerolog.Logger) *Writer {
	return NewWriter(New(cfg, logger), cfg.SourceLabel, logger)
}

// SaveItem creates one page for item. Errors are returned unchanged.
func (w *Writer) SaveItem(ctx context.Context, item domain.CaptureItem, rawText string) error {
	props := BuildProperties(item, rawText, w.source)

	w.logger.Info().Msgf("Saving → Type=%s Title=%s", item.DisplayType(), item.Title)

	ref, err := w.pages.CreatePage(ctx, props)
	if err != nil {
		return err
	}

	w.logger.Debug().Str("page_id", ref.ID).Str("url", ref.URL).Msg("Notion page created")

	return nil
}
