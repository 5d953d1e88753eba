// Package rod renders pages with a headless browser driven by go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fwojciec/idmbatch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultWaitTimeout bounds how long Fetch waits for the download section on
// remote pages.
const DefaultWaitTimeout = 20 * time.Second

// DefaultDriversDir is the directory browser binaries are looked up in,
// relative to the working directory.
const DefaultDriversDir = "drivers"

// Ensure Fetcher implements idmbatch.Fetcher at compile time.
var _ idmbatch.Fetcher = (*Fetcher)(nil)

// Fetcher launches a fresh headless browser for every Fetch and shuts it down
// before returning. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	driversDir  string
	waitTimeout time.Duration
	marker      string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDriversDir sets the directory that holds the browser binaries.
func WithDriversDir(dir string) Option {
	return func(f *Fetcher) {
		f.driversDir = dir
	}
}

// WithWaitTimeout sets how long to wait for the marker element on remote pages.
// Defaults to DefaultWaitTimeout (20s) if not specified.
func WithWaitTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.waitTimeout = d
	}
}

// WithMarker overrides the selector that signals the page has rendered.
func WithMarker(selector string) Option {
	return func(f *Fetcher) {
		f.marker = selector
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		driversDir:  DefaultDriversDir,
		waitTimeout: DefaultWaitTimeout,
		marker:      idmbatch.Marker,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// driver describes how to launch one browser.
type driver struct {
	name      string
	configure func(l *launcher.Launcher) *launcher.Launcher
}

// driverFor returns the launch configuration for b.
func driverFor(b idmbatch.Browser) (driver, error) {
	switch b {
	case idmbatch.BrowserChrome:
		return driver{name: exeName("chrome"), configure: chromium}, nil
	case idmbatch.BrowserEdge:
		return driver{name: exeName("msedge"), configure: chromium}, nil
	case idmbatch.BrowserFirefox:
		// Firefox no longer speaks the DevTools protocol rod drives.
		return driver{}, idmbatch.Errorf(idmbatch.EINVALID, "firefox is not supported; use chrome or edge")
	}
	return driver{}, idmbatch.Errorf(idmbatch.EINVALID, "unsupported browser: %q", string(b))
}

func chromium(l *launcher.Launcher) *launcher.Launcher {
	return l.Headless(true).
		Set("disable-gpu").
		Set("log-level", "3").
		Set("disable-logging")
}

func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// Supports reports whether Fetch can drive b. Only Chromium-based browsers
// are supported.
func (f *Fetcher) Supports(b idmbatch.Browser) error {
	_, err := driverFor(b)
	return err
}

// DriverPath returns where the binary for b is expected.
func (f *Fetcher) DriverPath(b idmbatch.Browser) (string, error) {
	d, err := driverFor(b)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.driversDir, d.name), nil
}

// Fetch loads src in a headless browser and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, src idmbatch.Source, b idmbatch.Browser, sink idmbatch.Sink) (string, error) {
	d, err := driverFor(b)
	if err != nil {
		sink.Log(fmt.Sprintf("ERROR: Unsupported browser: %s.", b))
		return "", err
	}

	if src.IsLocal() {
		sink.Log(fmt.Sprintf("Loading local HTML: %s", src.Location()))
	} else {
		sink.Log(fmt.Sprintf("Fetching web URL via %s: %s", b.Title(), src.Location()))
	}
	sink.Progress(0.05)

	bin := filepath.Join(f.driversDir, d.name)
	if _, err := os.Stat(bin); err != nil {
		sink.Log(fmt.Sprintf("ERROR: WebDriver for %s not found at '%s'. Check '%s' folder.", b, bin, f.driversDir))
		return "", idmbatch.Errorf(idmbatch.ENOTFOUND, "browser binary not found at %s", bin)
	}

	html, err := f.render(ctx, src, d.configure(launcher.New().Bin(bin).Leakless(true)), sink)
	if err != nil {
		return "", f.explain(ctx, err, src, b, sink)
	}

	sink.Log("Successfully fetched/loaded full HTML.")
	sink.Progress(1.0)
	return html, nil
}

// render runs one browser session. The browser and its process are released
// before render returns, whatever the outcome.
func (f *Fetcher) render(ctx context.Context, src idmbatch.Source, l *launcher.Launcher, sink idmbatch.Sink) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := l.Context(ctx).Launch()
	if err != nil {
		l.Kill()
		return "", fmt.Errorf("launching browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connecting to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(src.Location()); err != nil {
		return "", fmt.Errorf("navigating: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for load: %w", err)
	}
	sink.Progress(0.15)

	if src.IsLocal() {
		sink.Log("Local file loaded; skipping dynamic element wait.")
	} else {
		if _, err := page.Timeout(f.waitTimeout).Element(f.marker); err != nil {
			return "", &waitError{err: err}
		}
		sink.Log("Main download section loaded.")
	}
	sink.Progress(0.8)

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading page HTML: %w", err)
	}
	return html, nil
}

// waitError marks a failure while waiting for the marker element.
type waitError struct{ err error }

func (e *waitError) Error() string { return "waiting for download section: " + e.err.Error() }
func (e *waitError) Unwrap() error { return e.err }

// explain logs a diagnosis for err and converts it to an application error.
func (f *Fetcher) explain(ctx context.Context, err error, src idmbatch.Source, b idmbatch.Browser, sink idmbatch.Sink) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var we *waitError
	if errors.As(err, &we) && errors.Is(err, context.DeadlineExceeded) {
		sink.Log(fmt.Sprintf("ERROR: Timeout waiting for download section on %s.", src.Location()))
		return idmbatch.Errorf(idmbatch.ETIMEOUT, "download section did not appear within %s", f.waitTimeout)
	}

	sink.Log(fmt.Sprintf("ERROR: Browser automation failed for %s with %s: %v", b, src.Location(), err))
	if strings.Contains(strings.ToLower(err.Error()), "err_file_not_found") {
		sink.Log(fmt.Sprintf("Hint: Local file path '%s' might be incorrect.", src))
		return idmbatch.Errorf(idmbatch.ENOTFOUND, "local file not found: %s", src)
	}
	return err
}
