// Package worker provides the long-running loop abstraction used by the poller.
// It encapsulates context cancellation, error pauses, and panic recovery so a
// transient failure never terminates the process.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const logFieldWorker = "worker"

// ProcessFunc is called each iteration to process work items.
// A long-poll ProcessFunc may block for the duration of the poll window.
type ProcessFunc func(ctx context.Context) error

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is the time between successful process iterations.
	// Zero means iterate immediately, which suits long-poll sources.
	PollInterval time.Duration

	// ErrorPause is the fixed delay after Process returns an error.
	ErrorPause time.Duration

	// Process is called each iteration to do the main work.
	Process ProcessFunc

	// OnError is called when Process returns an error, before the pause.
	OnError func(err error)

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs Process until ctx is canceled. Errors and panics from Process are
// logged and followed by ErrorPause; they never end the loop.
// Returns a wrapped ctx.Err() when the context is canceled.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("starting worker loop")

	defer func() {
		logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")
	}()

	for {
		if err := checkCanceled(ctx, cfg.Name); err != nil {
			return err
		}

		delay := cfg.PollInterval

		if err := runProcessStep(ctx, cfg, logger); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("worker loop %s: %w", cfg.Name, ctx.Err())
			}

			if cfg.OnError != nil {
				cfg.OnError(err)
			} else {
				logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Msg("process error")
			}

			delay = cfg.ErrorPause
		}

		if err := Wait(ctx, delay); err != nil {
			return err
		}
	}
}

func runProcessStep(ctx context.Context, cfg Config, logger *zerolog.Logger) (err error) {
	if cfg.Process == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str(logFieldWorker, cfg.Name).Msg("recovered from panic")
			err = fmt.Errorf("worker %s panicked: %v", cfg.Name, r)
		}
	}()

	return cfg.Process(ctx)
}

func checkCanceled(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker loop %s: %w", name, ctx.Err())
	default:
		return nil
	}
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
