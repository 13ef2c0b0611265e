package msgscript

import (
	"fmt"
	"io"
)

// DiagSink receives diagnostic messages from the Reader, Writer, and
// Compiler (the Decompiler takes no sink). Implementations must be safe to use from a single
// instance's call chain but need not be safe across instances sharing
// state, matching the single-threaded-per-instance concurrency model.
type DiagSink interface {
	Trace(format string, args ...any)
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}

// NopSink discards every diagnostic. It is the default when no sink is
// configured.
type NopSink struct{}

func (NopSink) Trace(string, ...any)   {}
func (NopSink) Info(string, ...any)    {}
func (NopSink) Warning(string, ...any) {}
func (NopSink) Error(string, ...any)   {}

// WriterSink writes line-oriented, level-prefixed diagnostics to an
// io.Writer.
type WriterSink struct {
	W       io.Writer
	MinTrac bool // if false, Trace calls are dropped
}

// NewWriterSink creates a WriterSink writing to w. Trace-level messages are
// dropped unless traceEnabled is true.
func NewWriterSink(w io.Writer, traceEnabled bool) *WriterSink {
	return &WriterSink{W: w, MinTrac: traceEnabled}
}

func (s *WriterSink) Trace(format string, args ...any) {
	if !s.MinTrac {
		return
	}
	fmt.Fprintf(s.W, "trace: "+format+"\n", args...)
}

func (s *WriterSink) Info(format string, args ...any) {
	fmt.Fprintf(s.W, "info: "+format+"\n", args...)
}

func (s *WriterSink) Warning(format string, args ...any) {
	fmt.Fprintf(s.W, "warning: "+format+"\n", args...)
}

func (s *WriterSink) Error(format string, args ...any) {
	fmt.Fprintf(s.W, "error: "+format+"\n", args...)
}
