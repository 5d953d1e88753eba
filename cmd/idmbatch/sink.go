package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/idmbatch"
)

// consoleSink prints log lines to the terminal and reports progress in 5%
// steps. Every event is also forwarded to debug.
type consoleSink struct {
	w     io.Writer
	debug idmbatch.Sink
	step  int
}

func newConsoleSink(w io.Writer, debug idmbatch.Sink) *consoleSink {
	return &consoleSink{w: w, debug: debug, step: -1}
}

func (s *consoleSink) Log(line string) {
	fmt.Fprintln(s.w, line)
	s.debug.Log(line)
}

func (s *consoleSink) Progress(fraction float64) {
	s.debug.Progress(fraction)
	step := int(fraction * 20)
	if step == s.step {
		return
	}
	s.step = step
	if fraction == 0 {
		return
	}
	fmt.Fprintf(s.w, "[%3d%%]\n", step*5)
}
