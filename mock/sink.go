package mock

import (
	"strings"
	"sync"

	"github.com/fwojciec/idmbatch"
)

var _ idmbatch.Sink = (*RecordingSink)(nil)

// RecordingSink records everything it receives. It is safe for concurrent use.
type RecordingSink struct {
	mu       sync.Mutex
	lines    []string
	progress []float64
}

func (s *RecordingSink) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *RecordingSink) Progress(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, fraction)
}

// Lines returns a copy of the recorded log lines.
func (s *RecordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// ProgressValues returns a copy of the recorded progress values.
func (s *RecordingSink) ProgressValues() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.progress...)
}

// LastProgress returns the most recent progress value, or -1 if none.
func (s *RecordingSink) LastProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.progress) == 0 {
		return -1
	}
	return s.progress[len(s.progress)-1]
}

// Count returns how many log lines contain substr.
func (s *RecordingSink) Count(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
