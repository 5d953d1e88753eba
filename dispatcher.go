package idmbatch

import "context"

// CountFunc receives the running number of links sent during one Dispatch call.
type CountFunc func(sent int)

// Dispatcher hands links to the external download manager.
type Dispatcher interface {
	// Dispatch invokes the download manager at execPath once per URL, in order.
	// onCount, if non-nil, is called with the cumulative count for this call
	// after each successful invocation.
	//
	// Per-URL failures are logged and skipped. If the executable cannot be
	// found, the rest of the batch is abandoned and an ENOTFOUND error is
	// returned alongside the partial count. The count reflects issued
	// commands, not completed downloads.
	Dispatch(ctx context.Context, urls []string, execPath string, sink Sink, onCount CountFunc) (sent int, err error)
}

// ProcessManager makes sure the download manager is running.
type ProcessManager interface {
	// EnsureRunning starts the executable at execPath unless a process with
	// the same name is already running. launched reports whether a new
	// process was started.
	EnsureRunning(ctx context.Context, execPath string) (launched bool, err error)
}
