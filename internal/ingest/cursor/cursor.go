// Package cursor persists the Telegram delivery offset between restarts.
//
// The offset is the next update_id to request. Losing it is safe (updates are
// redelivered from the beginning); losing a note is not, so Load never fails.
package cursor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store loads and saves the delivery cursor.
type Store interface {
	// Load returns the persisted offset, or 0 when none can be read.
	Load(ctx context.Context) int
	// Save durably replaces the persisted offset.
	Save(ctx context.Context, offset int) error
	// Ping reports whether the backing storage is usable.
	Ping(ctx context.Context) error
}

// FileStore keeps the offset as a decimal string in a single plain-text file.
type FileStore struct {
	path   string
	logger *zerolog.Logger
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, logger *zerolog.Logger) *FileStore {
	return &FileStore{path: filepath.Clean(path), logger: logger}
}

// Load reads the offset. Missing, unreadable, unparsable or negative content yields 0.
func (s *FileStore) Load(_ context.Context) int {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", s.path).Msg("cursor file unreadable, starting from 0")
		return 0
	}

	offset, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || offset < 0 {
		s.logger.Warn().Str("path", s.path).Str("content", truncate(string(data), 64)).Msg("cursor file unparsable, starting from 0")
		return 0
	}

	return offset
}

// Save writes the offset to a temp file in the same directory and renames it
// over the target, so a crash never leaves a truncated cursor behind.
func (s *FileStore) Save(_ context.Context, offset int) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("ensure cursor dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", s.path, err)
	}

	tmpPath := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.WriteString(strconv.Itoa(offset)); err != nil {
		return fmt.Errorf("write temp for %s: %w", s.path, err)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", s.path, err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", s.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", s.path, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename temp for %s: %w", s.path, err)
	}

	return nil
}

// Ping checks that the cursor directory exists.
func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat cursor dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("cursor dir %s is not a directory", dir)
	}

	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}
