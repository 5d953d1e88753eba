package slog

import (
	"log/slog"

	"github.com/fwojciec/idmbatch"
)

// Ensure Sink implements idmbatch.Sink.
var _ idmbatch.Sink = (*Sink)(nil)

// Sink writes pipeline log lines and progress to a logger. Log lines are
// emitted at Info; progress at Debug.
type Sink struct {
	logger *slog.Logger
}

// NewSink creates a new Sink.
func NewSink(logger *slog.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) Log(line string) {
	s.logger.Info(line)
}

func (s *Sink) Progress(fraction float64) {
	s.logger.Debug("progress", "fraction", fraction)
}
