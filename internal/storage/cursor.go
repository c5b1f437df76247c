package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CursorStore keeps one delivery offset per stream in the poll_cursors table.
type CursorStore struct {
	db     *DB
	stream string
}

// NewCursorStore returns a cursor store for the named stream.
func NewCursorStore(database *DB, stream string) *CursorStore {
	return &CursorStore{db: database, stream: stream}
}

// Load returns the stored offset, or 0 when the row is absent or unreadable.
func (s *CursorStore) Load(ctx context.Context) int {
	var offset int64

	err := s.db.Pool.QueryRow(ctx,
		`SELECT next_offset FROM poll_cursors WHERE stream = $1`, s.stream,
	).Scan(&offset)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.db.Logger.Warn().Err(err).Str("stream", s.stream).Msg("cursor row unreadable, starting from 0")
		}

		return 0
	}

	if offset < 0 {
		return 0
	}

	return int(offset)
}

// Save upserts the offset for the stream.
func (s *CursorStore) Save(ctx context.Context, offset int) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO poll_cursors (stream, next_offset, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (stream) DO UPDATE
		SET next_offset = EXCLUDED.next_offset, updated_at = EXCLUDED.updated_at`,
		s.stream, int64(offset),
	)
	if err != nil {
		return fmt.Errorf("save cursor %s: %w", s.stream, err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *CursorStore) Ping(ctx context.Context) error {
	if err := s.db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return nil
}
