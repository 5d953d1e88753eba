package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/idmbatch"
)

// Ensure the decorators implement their interfaces.
var (
	_ idmbatch.Dispatcher     = (*LoggingDispatcher)(nil)
	_ idmbatch.ProcessManager = (*LoggingProcessManager)(nil)
)

// LoggingDispatcher wraps a Dispatcher with Info-level logging of each call.
type LoggingDispatcher struct {
	next   idmbatch.Dispatcher
	logger *slog.Logger
}

// NewLoggingDispatcher creates a new LoggingDispatcher.
func NewLoggingDispatcher(next idmbatch.Dispatcher, logger *slog.Logger) *LoggingDispatcher {
	return &LoggingDispatcher{next: next, logger: logger}
}

// Dispatch delegates to the wrapped dispatcher and logs the operation.
func (d *LoggingDispatcher) Dispatch(ctx context.Context, urls []string, execPath string, sink idmbatch.Sink, onCount idmbatch.CountFunc) (sent int, err error) {
	defer func(begin time.Time) {
		d.logger.Info("dispatch",
			"exec", execPath,
			"size", len(urls),
			"sent", sent,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Dispatch(ctx, urls, execPath, sink, onCount)
}

// LoggingProcessManager wraps a ProcessManager with Info-level logging of each call.
type LoggingProcessManager struct {
	next   idmbatch.ProcessManager
	logger *slog.Logger
}

// NewLoggingProcessManager creates a new LoggingProcessManager.
func NewLoggingProcessManager(next idmbatch.ProcessManager, logger *slog.Logger) *LoggingProcessManager {
	return &LoggingProcessManager{next: next, logger: logger}
}

// EnsureRunning delegates to the wrapped manager and logs whether a launch happened.
func (m *LoggingProcessManager) EnsureRunning(ctx context.Context, execPath string) (launched bool, err error) {
	defer func(begin time.Time) {
		m.logger.Info("ensure running",
			"exec", execPath,
			"launched", launched,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.EnsureRunning(ctx, execPath)
}
