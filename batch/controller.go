// Package batch runs the fetch, extract and dispatch pipeline as a resumable
// session that hands links to the download manager one batch at a time.
package batch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fwojciec/idmbatch"
	"github.com/google/uuid"
)

// DefaultLaunchSettle is how long to wait after launching the download
// manager before sending it anything.
const DefaultLaunchSettle = time.Second

// Controller owns one batch session at a time.
//
// Start fetches the source, extracts its links and dispatches the first
// batch. If links remain, the session waits in PhaseAwaitingContinuation
// until Continue sends the next batch or Abort discards it. Only one
// operation runs at a time; a second call while one is in flight fails
// with ECONFLICT.
//
// Abort during an operation cancels that operation's context. Collaborators
// observe it at their next check (between dispatched links, or when the
// browser call returns), so cancellation is best-effort rather than immediate.
//
// Controller is safe for concurrent use.
type Controller struct {
	Fetcher    idmbatch.Fetcher
	Extractor  idmbatch.LinkExtractor
	Dispatcher idmbatch.Dispatcher
	Processes  idmbatch.ProcessManager
	Network    idmbatch.ConnectivityChecker
	Sink       idmbatch.Sink

	// Batches records dispatched batches. Optional.
	Batches idmbatch.BatchService

	ProbeHost    string
	ProbePort    int
	ProbeTimeout time.Duration
	LaunchSettle time.Duration

	mu       sync.Mutex
	phase    idmbatch.Phase
	running  bool
	aborting bool
	cancel   context.CancelFunc
	session  *idmbatch.Session
	progress float64
	browser  idmbatch.Browser
	execPath string
}

// SelectBrowser sets the browser used by the next Start. Browsers the
// Fetcher cannot drive are rejected with EINVALID.
func (c *Controller) SelectBrowser(b idmbatch.Browser) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if c.Fetcher != nil {
		if err := c.Fetcher.Supports(b); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return idmbatch.Errorf(idmbatch.ECONFLICT, "cannot change browser while an operation is running")
	}
	c.browser = b
	return nil
}

// Browser returns the selected browser.
func (c *Controller) Browser() idmbatch.Browser {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == "" {
		return idmbatch.DefaultBrowser
	}
	return c.browser
}

// SetExecPath sets the download manager executable used by Start and Continue.
func (c *Controller) SetExecPath(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return idmbatch.Errorf(idmbatch.ECONFLICT, "cannot change the IDM path while an operation is running")
	}
	c.execPath = path
	return nil
}

// ExecPath returns the download manager executable path.
func (c *Controller) ExecPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execPath
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() idmbatch.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := idmbatch.Status{
		Phase:    c.currentPhase(),
		Running:  c.running,
		Progress: c.progress,
	}
	if c.session != nil {
		st.SessionID = c.session.ID()
		st.Source = c.session.Source().String()
		st.Total = c.session.Total()
		st.Cursor = c.session.Cursor()
	}
	return st
}

// Phase returns the current phase.
func (c *Controller) Phase() idmbatch.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPhase()
}

func (c *Controller) currentPhase() idmbatch.Phase {
	if c.phase == "" {
		return idmbatch.PhaseIdle
	}
	return c.phase
}

// Start runs a new session for source and dispatches its first batch.
// It is only valid while idle.
func (c *Controller) Start(ctx context.Context, source string, batchSize int) (err error) {
	ctx, err = c.begin(ctx, idmbatch.PhaseIdle, "start")
	if err != nil {
		return err
	}
	defer c.end(&err)
	defer c.recoverFault(&err)

	if err := idmbatch.ValidateBatchSize(batchSize); err != nil {
		c.logf("ERROR: %s.", idmbatch.ErrorMessage(err))
		return err
	}
	src, err := idmbatch.ParseSource(source)
	if err != nil {
		c.logf("ERROR: %s.", idmbatch.ErrorMessage(err))
		return err
	}
	execPath := c.ExecPath()
	if err := checkExecPath(execPath); err != nil {
		c.logf("ERROR: Invalid IDM path: '%s'. Please set it correctly.", execPath)
		return err
	}
	browser := c.Browser()

	c.log("--- Starting Download Process ---")
	c.resetProgress()

	c.logf("Performing IDM checks with path: %s", execPath)
	launched, err := c.Processes.EnsureRunning(ctx, execPath)
	if err != nil {
		c.logf("ERROR: Could not launch or verify IDM: %v", err)
		c.finalize("--- Process Failed or Interrupted ---")
		return err
	}
	c.log("IDM is running or launched successfully.")
	if launched {
		if err := sleep(ctx, c.launchSettle()); err != nil {
			return c.interrupted(ctx, err)
		}
	}

	if src.IsLocal() {
		c.log("Input is a local file path; skipping internet check.")
	} else {
		c.log("Checking internet connection for web URL...")
		if !c.Network.CheckConnectivity(ctx, c.probeHost(), c.probePort(), c.probeTimeout()) {
			if ctx.Err() != nil {
				return c.interrupted(ctx, ctx.Err())
			}
			c.log("ERROR: No active internet connection.")
			c.finalize("--- Process Failed or Interrupted ---")
			return idmbatch.Errorf(idmbatch.EUNAVAILABLE, "no active internet connection")
		}
		c.log("Internet connection verified.")
	}

	c.setPhase(idmbatch.PhaseFetching)
	html, err := c.Fetcher.Fetch(ctx, src, browser, idmbatch.ScaleProgress(c.sink(), 0, idmbatch.FetchProgressEnd))
	if err != nil {
		if ctx.Err() != nil {
			return c.interrupted(ctx, err)
		}
		c.log("Failed to retrieve/load HTML. Cannot proceed.")
		c.finalize("--- Process Failed or Interrupted ---")
		return err
	}
	c.emitProgress(idmbatch.FetchProgressEnd)
	if ctx.Err() != nil {
		return c.interrupted(ctx, ctx.Err())
	}

	c.setPhase(idmbatch.PhaseExtracting)
	c.log("Extracting links from HTML...")
	links := c.Extractor.ExtractLinks(html, c.sink())
	c.emitProgress(idmbatch.ExtractProgressEnd)
	if ctx.Err() != nil {
		return c.interrupted(ctx, ctx.Err())
	}
	if len(links) == 0 {
		c.log("No download links were extracted.")
		c.finalize("--- Process Failed or Interrupted ---")
		return idmbatch.Errorf(idmbatch.ENOTFOUND, "no download links found")
	}
	c.logf("Successfully extracted %d total URLs.", len(links))

	s := idmbatch.NewSession(uuid.New().String(), src, links)
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()

	return c.dispatchNext(ctx, batchSize, execPath)
}

// Continue dispatches the next batch of the current session.
// It is only valid while awaiting continuation. Precondition failures leave
// the session untouched.
func (c *Controller) Continue(ctx context.Context, batchSize int) (err error) {
	ctx, err = c.begin(ctx, idmbatch.PhaseAwaitingContinuation, "continue")
	if err != nil {
		return err
	}
	defer c.end(&err)
	defer c.recoverFault(&err)

	if err := idmbatch.ValidateBatchSize(batchSize); err != nil {
		c.logf("ERROR: %s.", idmbatch.ErrorMessage(err))
		return err
	}
	execPath := c.ExecPath()
	if err := checkExecPath(execPath); err != nil {
		c.logf("ERROR: Invalid IDM path: '%s'. Please set it correctly.", execPath)
		return err
	}

	c.logf("--- Continuing with batch (%d links) ---", batchSize)
	return c.dispatchNext(ctx, batchSize, execPath)
}

// Abort discards the current session. If an operation is running, it is
// asked to stop and finalizes the session itself; Abort returns immediately.
func (c *Controller) Abort() error {
	c.mu.Lock()
	if c.running {
		if !c.aborting {
			c.aborting = true
			c.cancel()
		}
		c.mu.Unlock()
		c.log("Abort requested; stopping at the next safe point.")
		return nil
	}
	if c.currentPhase() != idmbatch.PhaseAwaitingContinuation {
		c.mu.Unlock()
		return idmbatch.Errorf(idmbatch.ECONFLICT, "no session to abort")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()
	c.log("Batch process aborted by user.")
	c.finalize("--- Process Aborted ---")
	return nil
}

// dispatchNext sends the next slice of the session and decides where the
// session goes afterwards.
func (c *Controller) dispatchNext(ctx context.Context, batchSize int, execPath string) error {
	c.mu.Lock()
	s := *c.session
	c.phase = idmbatch.PhaseDispatching
	c.mu.Unlock()

	start, end := s.Next(batchSize)
	if start == end {
		c.log("All links from this session have been processed.")
		c.finalize("--- All Batches Processed or Process Ended ---")
		return nil
	}

	urls := s.Batch(start, end)
	sent, err := c.Dispatcher.Dispatch(ctx, urls, execPath, c.sink(), func(n int) {
		c.emitProgress(s.Progress(start + n))
	})

	// A batch cut short by a missing executable or an abort only consumes
	// the links actually sent, so they can be retried.
	advance := end - start
	if err != nil {
		advance = sent
	}
	s = s.Advance(advance)
	c.record(ctx, s, start, len(urls), sent)

	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
	c.emitProgress(s.Progress(s.Cursor()))

	if ctx.Err() != nil {
		return c.interrupted(ctx, ctx.Err())
	}
	if s.Done() {
		c.log("All download links have been sent to IDM.")
		c.finalize("--- All Batches Processed or Process Ended ---")
		return err
	}

	c.logf("Batch of %d links sent. %d remaining.", sent, s.Remaining())
	if !c.park() {
		return c.interrupted(ctx, context.Canceled)
	}
	return err
}

// park moves the session to PhaseAwaitingContinuation unless an abort has
// been requested, in which case it reports false and leaves the phase alone.
func (c *Controller) park() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborting {
		return false
	}
	c.phase = idmbatch.PhaseAwaitingContinuation
	return true
}

// record stores a history entry. Failures are logged and otherwise ignored.
func (c *Controller) record(ctx context.Context, s idmbatch.Session, offset, size, sent int) {
	if c.Batches == nil {
		return
	}
	rec := &idmbatch.BatchRecord{
		SessionID: s.ID(),
		Source:    s.Source().String(),
		Offset:    offset,
		Size:      size,
		Sent:      sent,
	}
	if err := c.Batches.CreateBatch(context.WithoutCancel(ctx), rec); err != nil {
		c.logf("WARNING: Could not record batch history: %v", err)
	}
}

// begin claims the controller for one operation.
func (c *Controller) begin(ctx context.Context, want idmbatch.Phase, op string) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, idmbatch.Errorf(idmbatch.ECONFLICT, "cannot %s: another operation is in progress", op)
	}
	if p := c.currentPhase(); p != want {
		return nil, idmbatch.Errorf(idmbatch.ECONFLICT, "cannot %s while %s", op, p)
	}
	ctx, cancel := context.WithCancel(ctx)
	c.running = true
	c.aborting = false
	c.cancel = cancel
	return ctx, nil
}

// end releases the claim taken by begin. An abort that arrived after the
// session was parked still discards it.
func (c *Controller) end(err *error) {
	c.mu.Lock()
	c.cancel()
	c.cancel = nil
	late := c.aborting && c.phase == idmbatch.PhaseAwaitingContinuation
	c.aborting = false
	if !late {
		c.running = false
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.log("Batch process aborted by user.")
	c.finalize("--- Process Aborted ---")
	if *err == nil {
		*err = idmbatch.Errorf(idmbatch.ECANCELED, "session aborted")
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// recoverFault turns a panic in a collaborator into EINTERNAL and leaves the
// controller idle and clean.
func (c *Controller) recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	c.logf("An unexpected error occurred during processing: %v", r)
	c.finalize("--- Process Failed or Interrupted ---")
	*err = idmbatch.Errorf(idmbatch.EINTERNAL, "unexpected fault: %v", r)
}

// interrupted finalizes after the operation context was canceled, either by
// Abort or by the caller.
func (c *Controller) interrupted(ctx context.Context, cause error) error {
	c.mu.Lock()
	aborting := c.aborting
	c.mu.Unlock()

	if aborting {
		c.log("Batch process aborted by user.")
		c.finalize("--- Process Aborted ---")
		return idmbatch.Errorf(idmbatch.ECANCELED, "session aborted")
	}
	c.logf("Operation canceled: %v", cause)
	c.finalize("--- Process Failed or Interrupted ---")
	if err := ctx.Err(); err != nil {
		return err
	}
	return cause
}

// finalize ends the session: progress goes to 1 if every link was sent and
// to 0 otherwise, the session is discarded and the controller returns to idle.
func (c *Controller) finalize(banner string) {
	c.mu.Lock()
	c.phase = idmbatch.PhaseFinalizing
	complete := c.session != nil && c.session.Total() > 0 && c.session.Done()
	c.session = nil
	c.mu.Unlock()

	c.log(banner)
	if complete {
		c.setProgress(1)
	} else {
		c.setProgress(0)
	}

	c.setPhase(idmbatch.PhaseIdle)
}

func (c *Controller) setPhase(p idmbatch.Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
}

// emitProgress reports p unless it would move progress backwards.
func (c *Controller) emitProgress(p float64) {
	c.mu.Lock()
	if p <= c.progress {
		c.mu.Unlock()
		return
	}
	c.progress = min(p, 1)
	p = c.progress
	c.mu.Unlock()
	c.out().Progress(p)
}

// setProgress reports p unconditionally.
func (c *Controller) setProgress(p float64) {
	c.mu.Lock()
	c.progress = p
	c.mu.Unlock()
	c.out().Progress(p)
}

func (c *Controller) resetProgress() {
	c.setProgress(0)
}

func (c *Controller) log(line string) {
	c.out().Log(line)
}

func (c *Controller) logf(format string, args ...any) {
	c.out().Log(fmt.Sprintf(format, args...))
}

func (c *Controller) out() idmbatch.Sink {
	if c.Sink == nil {
		return idmbatch.NopSink
	}
	return c.Sink
}

// sink returns the Sink handed to collaborators. Their progress goes through
// the monotonic filter.
func (c *Controller) sink() idmbatch.Sink {
	return controllerSink{c}
}

type controllerSink struct{ c *Controller }

func (s controllerSink) Log(line string)    { s.c.log(line) }
func (s controllerSink) Progress(p float64) { s.c.emitProgress(p) }

func (c *Controller) probeHost() string {
	if c.ProbeHost == "" {
		return idmbatch.DefaultProbeHost
	}
	return c.ProbeHost
}

func (c *Controller) probePort() int {
	if c.ProbePort == 0 {
		return idmbatch.DefaultProbePort
	}
	return c.ProbePort
}

func (c *Controller) probeTimeout() time.Duration {
	if c.ProbeTimeout == 0 {
		return idmbatch.DefaultProbeTimeout
	}
	return c.ProbeTimeout
}

func (c *Controller) launchSettle() time.Duration {
	if c.LaunchSettle < 0 {
		return 0
	}
	if c.LaunchSettle == 0 {
		return DefaultLaunchSettle
	}
	return c.LaunchSettle
}

// checkExecPath verifies the download manager executable exists.
func checkExecPath(path string) error {
	if path == "" {
		return idmbatch.Errorf(idmbatch.EINVALID, "IDM path required")
	}
	if _, err := os.Stat(path); err != nil {
		return idmbatch.Errorf(idmbatch.ENOTFOUND, "IDM executable not found at %s", path)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
