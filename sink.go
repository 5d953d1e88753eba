package idmbatch

// Sink receives log lines and progress updates from the pipeline.
// It is the only surface the core reports through; a terminal, a GUI or a
// test recorder can sit behind it.
type Sink interface {
	// Log records a single human-readable line.
	Log(line string)

	// Progress reports a fraction in [0, 1].
	Progress(fraction float64)
}

// NopSink discards everything.
var NopSink Sink = nopSink{}

type nopSink struct{}

func (nopSink) Log(string)       {}
func (nopSink) Progress(float64) {}

// ScaleProgress returns a Sink that maps progress in [0, 1] onto [lo, hi]
// before forwarding it to next. Log lines pass through unchanged.
func ScaleProgress(next Sink, lo, hi float64) Sink {
	return &scaledSink{next: next, lo: lo, hi: hi}
}

type scaledSink struct {
	next   Sink
	lo, hi float64
}

func (s *scaledSink) Log(line string) {
	s.next.Log(line)
}

func (s *scaledSink) Progress(fraction float64) {
	s.next.Progress(s.lo + clamp01(fraction)*(s.hi-s.lo))
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
