// Package slog provides log/slog decorators for idmbatch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/idmbatch"
)

// Ensure LoggingFetcher implements idmbatch.Fetcher.
var _ idmbatch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with Info-level logging of each call.
type LoggingFetcher struct {
	next   idmbatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next idmbatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, src idmbatch.Source, browser idmbatch.Browser, sink idmbatch.Sink) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", src.Location(),
			"browser", string(browser),
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, src, browser, sink)
}

// Supports delegates to the wrapped fetcher.
func (f *LoggingFetcher) Supports(browser idmbatch.Browser) error {
	return f.next.Supports(browser)
}
