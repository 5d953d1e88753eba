package mock

import (
	"context"

	"github.com/fwojciec/idmbatch"
)

// Compile-time interface verification.
var (
	_ idmbatch.Dispatcher     = (*Dispatcher)(nil)
	_ idmbatch.ProcessManager = (*ProcessManager)(nil)
)

// Dispatcher is a mock implementation of idmbatch.Dispatcher.
type Dispatcher struct {
	DispatchFn func(ctx context.Context, urls []string, execPath string, sink idmbatch.Sink, onCount idmbatch.CountFunc) (int, error)
}

func (d *Dispatcher) Dispatch(ctx context.Context, urls []string, execPath string, sink idmbatch.Sink, onCount idmbatch.CountFunc) (int, error) {
	return d.DispatchFn(ctx, urls, execPath, sink, onCount)
}

// ProcessManager is a mock implementation of idmbatch.ProcessManager.
type ProcessManager struct {
	EnsureRunningFn func(ctx context.Context, execPath string) (bool, error)
}

func (m *ProcessManager) EnsureRunning(ctx context.Context, execPath string) (bool, error) {
	return m.EnsureRunningFn(ctx, execPath)
}
