// Package gopsutil checks for and launches the download manager process
// using gopsutil's process table.
package gopsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fwojciec/idmbatch"
	"github.com/shirou/gopsutil/v3/process"
)

// StartFunc starts name detached and returns without waiting for it.
type StartFunc func(name string) error

// Ensure ProcessManager implements idmbatch.ProcessManager at compile time.
var _ idmbatch.ProcessManager = (*ProcessManager)(nil)

// ProcessManager finds running processes by executable name.
type ProcessManager struct {
	start StartFunc
}

// Option configures a ProcessManager.
type Option func(*ProcessManager)

// WithStartFunc replaces how a missing process is launched.
func WithStartFunc(fn StartFunc) Option {
	return func(m *ProcessManager) {
		m.start = fn
	}
}

// NewProcessManager creates a new ProcessManager.
func NewProcessManager(opts ...Option) *ProcessManager {
	m := &ProcessManager{start: Start}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsRunning reports whether a process named like the base name of execPath
// is running. Names are compared case-insensitively.
func (m *ProcessManager) IsRunning(ctx context.Context, execPath string) (bool, error) {
	want := filepath.Base(execPath)
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("listing processes: %w", err)
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Processes can exit or be inaccessible while we iterate.
			continue
		}
		if strings.EqualFold(name, want) {
			return true, nil
		}
	}
	return false, nil
}

// EnsureRunning launches execPath unless it is already running.
func (m *ProcessManager) EnsureRunning(ctx context.Context, execPath string) (bool, error) {
	running, err := m.IsRunning(ctx, execPath)
	if err != nil {
		return false, err
	}
	if running {
		return false, nil
	}

	if err := m.start(execPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			return false, idmbatch.Errorf(idmbatch.ENOTFOUND, "download manager not found at %s", execPath)
		}
		return false, fmt.Errorf("launching %s: %w", execPath, err)
	}
	return true, nil
}

// Start launches name detached from this process and releases it.
func Start(name string) error {
	cmd := exec.Command(name)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
