package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/idmbatch"
)

// Ensure LoggingExtractor implements idmbatch.LinkExtractor.
var _ idmbatch.LinkExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a LinkExtractor with Info-level logging of each call.
type LoggingExtractor struct {
	next   idmbatch.LinkExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next idmbatch.LinkExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs the link count.
func (e *LoggingExtractor) ExtractLinks(html string, sink idmbatch.Sink) []string {
	begin := time.Now()
	links := e.next.ExtractLinks(html, sink)
	e.logger.Info("extract links",
		"bytes", len(html),
		"count", len(links),
		"duration", time.Since(begin),
	)
	return links
}
