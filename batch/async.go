package batch

import (
	"sync"

	"github.com/fwojciec/idmbatch"
)

// AsyncSink forwards events to another Sink on a single goroutine, in the
// order they were emitted. Log and Progress never block on the consumer
// beyond enqueueing.
//
// Close must be called to stop the goroutine; it waits for every queued event
// to be delivered. Events emitted after Close are dropped.
type AsyncSink struct {
	next idmbatch.Sink

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []event
	busy   bool
	closed bool
	done   chan struct{}
}

type event struct {
	line     string
	progress float64
	isLog    bool
}

var _ idmbatch.Sink = (*AsyncSink)(nil)

// NewAsyncSink starts delivering events to next.
func NewAsyncSink(next idmbatch.Sink) *AsyncSink {
	s := &AsyncSink{
		next: next,
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

func (s *AsyncSink) Log(line string) {
	s.push(event{line: line, isLog: true})
}

func (s *AsyncSink) Progress(fraction float64) {
	s.push(event{progress: fraction})
}

func (s *AsyncSink) push(e event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, e)
	s.cond.Broadcast()
}

// Flush blocks until every event emitted so far has been delivered.
func (s *AsyncSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 || s.busy {
		s.cond.Wait()
	}
}

// Close drains the queue and stops the consumer goroutine.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	<-s.done
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		pending := s.queue
		s.queue = nil
		s.busy = true
		s.mu.Unlock()

		for _, e := range pending {
			if e.isLog {
				s.next.Log(e.line)
			} else {
				s.next.Progress(e.progress)
			}
		}

		s.mu.Lock()
		s.busy = false
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}
