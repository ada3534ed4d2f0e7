// Package logging provides the structured logger shared by every
// collaborator package: a single slog.Logger writing to stderr, with
// errors wrapped through github.com/mdobak/go-xerrors so a log line
// carries a stack trace alongside its message.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/mdobak/go-xerrors"

	"soundmark/utils"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Get returns the process-wide logger, initializing it on first call. The
// default handler is human-readable text; set SOUNDMARK_LOG_FORMAT=json
// to emit JSON records for a log aggregator instead.
func Get() *slog.Logger {
	once.Do(func() {
		opts := &slog.HandlerOptions{AddSource: true}
		var handler slog.Handler
		if utils.GetEnv("SOUNDMARK_LOG_FORMAT", "text") == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		logger = slog.New(handler)
	})
	return logger
}

// Error logs msg at error level with err wrapped in an xerrors.Error so
// its stack trace is attached, and returns err unchanged so callers can
// log-and-propagate in one line: `return logging.Error(ctx, "...", err)`.
func Error(ctx context.Context, msg string, err error) error {
	Get().ErrorContext(ctx, msg, slog.Any("error", xerrors.New(err)))
	return err
}
