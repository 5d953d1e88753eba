package idmbatch

import "time"

// Phase is the state of the batch session state machine.
type Phase string

// Session phases.
const (
	PhaseIdle                 Phase = "idle"
	PhaseFetching             Phase = "fetching"
	PhaseExtracting           Phase = "extracting"
	PhaseDispatching          Phase = "dispatching"
	PhaseAwaitingContinuation Phase = "awaiting_continuation"
	PhaseFinalizing           Phase = "finalizing"
)

// Busy reports whether an operation is running in this phase.
func (p Phase) Busy() bool {
	switch p {
	case PhaseFetching, PhaseExtracting, PhaseDispatching, PhaseFinalizing:
		return true
	}
	return false
}

// Progress split between the pipeline stages.
const (
	FetchProgressEnd   = 0.40
	ExtractProgressEnd = 0.50
)

// Session is the link set extracted for one source plus the cursor of links
// already dispatched. Session values are immutable; Advance returns a copy.
type Session struct {
	id        string
	source    Source
	links     []string
	cursor    int
	createdAt time.Time
}

// NewSession creates a session over links with the cursor at zero.
// links is copied.
func NewSession(id string, src Source, links []string) Session {
	return Session{
		id:        id,
		source:    src,
		links:     append([]string(nil), links...),
		createdAt: time.Now().UTC(),
	}
}

// ID returns the session identifier.
func (s Session) ID() string { return s.id }

// Source returns the page the links came from.
func (s Session) Source() Source { return s.source }

// CreatedAt returns when the links were extracted.
func (s Session) CreatedAt() time.Time { return s.createdAt }

// Total returns the number of extracted links.
func (s Session) Total() int { return len(s.links) }

// Cursor returns how many links have been dispatched.
func (s Session) Cursor() int { return s.cursor }

// Remaining returns how many links are left to dispatch.
func (s Session) Remaining() int { return len(s.links) - s.cursor }

// Done reports whether every link has been dispatched.
func (s Session) Done() bool { return s.cursor >= len(s.links) }

// Next returns the slice bounds of the next batch of at most batchSize links.
// The slice is empty when the session is done.
func (s Session) Next(batchSize int) (start, end int) {
	start = s.cursor
	end = min(start+batchSize, len(s.links))
	if end < start {
		end = start
	}
	return start, end
}

// Batch returns a copy of links[start:end].
func (s Session) Batch(start, end int) []string {
	return append([]string(nil), s.links[start:end]...)
}

// Advance returns a copy of s with the cursor moved forward by n, capped at Total.
func (s Session) Advance(n int) Session {
	s.cursor = min(s.cursor+max(n, 0), len(s.links))
	return s
}

// Progress returns the overall progress for a cursor position: extraction
// accounts for the first half, dispatch for the second.
func (s Session) Progress(cursor int) float64 {
	if len(s.links) == 0 {
		return ExtractProgressEnd
	}
	return clamp01(ExtractProgressEnd + float64(cursor)/float64(len(s.links))*(1-ExtractProgressEnd))
}

// Status is a read-only snapshot of the controller for presentation layers.
type Status struct {
	Phase     Phase
	Running   bool
	SessionID string
	Source    string
	Total     int
	Cursor    int
	Progress  float64
}

// Remaining returns the number of links not yet dispatched.
func (s Status) Remaining() int { return s.Total - s.Cursor }
