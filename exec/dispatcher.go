// Package exec hands links to Internet Download Manager through its
// command-line interface.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/idmbatch"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between two invocations, so the
// download manager can keep up with its command queue.
const DefaultInterval = 500 * time.Millisecond

// Args returns the command-line arguments that enqueue url in IDM without
// prompts and start the queue: /d <url> /n /q /s.
func Args(url string) []string {
	return []string{"/d", url, "/n", "/q", "/s"}
}

// RunFunc runs name with args and waits for it to exit.
type RunFunc func(ctx context.Context, name string, args ...string) error

// Ensure Dispatcher implements idmbatch.Dispatcher at compile time.
var _ idmbatch.Dispatcher = (*Dispatcher)(nil)

// Dispatcher invokes the download manager once per link.
type Dispatcher struct {
	interval time.Duration
	run      RunFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInterval sets the minimum spacing between invocations.
// Defaults to DefaultInterval (500ms) if not specified.
func WithInterval(d time.Duration) Option {
	return func(ds *Dispatcher) {
		ds.interval = d
	}
}

// WithRunFunc replaces the process runner.
func WithRunFunc(fn RunFunc) Option {
	return func(ds *Dispatcher) {
		ds.run = fn
	}
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		interval: DefaultInterval,
		run:      Run,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends each URL to the executable at execPath, in order.
func (d *Dispatcher) Dispatch(ctx context.Context, urls []string, execPath string, sink idmbatch.Sink, onCount idmbatch.CountFunc) (int, error) {
	if onCount == nil {
		onCount = func(int) {}
	}
	if len(urls) == 0 {
		sink.Log("No URLs provided to IDM for this batch.")
		onCount(0)
		return 0, nil
	}

	sink.Log(fmt.Sprintf("Sending %d links to IDM for this batch...", len(urls)))

	limiter := rate.NewLimiter(rate.Every(d.interval), 1)
	sent := 0
	for i, u := range urls {
		if err := limiter.Wait(ctx); err != nil {
			sink.Log(fmt.Sprintf("Batch interrupted after %d/%d requests.", sent, len(urls)))
			return sent, ctxErr(ctx, err)
		}

		name := displayName(u)
		sink.Log(fmt.Sprintf("[%d/%d] Sending: %s", i+1, len(urls), name))

		err := d.run(ctx, execPath, Args(u)...)
		if isNotFound(err) {
			sink.Log(fmt.Sprintf("ERROR: IDM executable not found at '%s'. Aborting batch.", execPath))
			return sent, idmbatch.Errorf(idmbatch.ENOTFOUND, "download manager not found at %s", execPath)
		}
		if err != nil {
			if ctx.Err() != nil {
				sink.Log(fmt.Sprintf("Batch interrupted after %d/%d requests.", sent, len(urls)))
				return sent, ctx.Err()
			}
			sink.Log(fmt.Sprintf("ERROR sending %s to IDM: %v", name, err))
			continue
		}

		sent++
		onCount(sent)
	}

	sink.Log(fmt.Sprintf("Sent %d/%d requests to IDM for this batch.", sent, len(urls)))
	return sent, nil
}

// Run starts name with args without a console window and waits for it.
// A non-zero exit status still counts as an issued command: IDM reports
// nothing useful through its exit code.
func Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)
	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func isNotFound(err error) bool {
	return err != nil && (errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist))
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// displayName returns the file name part of a download URL for log output.
func displayName(u string) string {
	u, _, _ = strings.Cut(u, "?")
	return path.Base(u)
}
