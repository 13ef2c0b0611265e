// Package container implements the MessageScript binary container format:
// fixed header, window table, speaker table, and per-window text buffers,
// plus the Lifter/Lowerer that translates the raw layout to and from the
// in-memory msgscript.Script model.
package container

import "github.com/ashfall/msgscript/msgscript"

// EndianHint tells the Reader which byte order to assume when the magic
// alone is ambiguous (it never is for a well-formed header, but a caller
// reading a stream recovered from a corrupted or partial source may want
// to force one).
type EndianHint uint8

const (
	EndianFromMagic EndianHint = iota
	EndianLittle
	EndianBig
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithEndianHint forces the Reader to interpret the header with the given
// byte order instead of deriving it from the magic bytes.
func WithEndianHint(hint EndianHint) ReaderOption {
	return func(r *Reader) { r.endianHint = hint }
}

// WithMaxWindowCount bounds how many window-header entries the Reader will
// accept before it gives up on a stream as malformed. Zero means
// unbounded.
func WithMaxWindowCount(max int) ReaderOption {
	return func(r *Reader) { r.maxWindowCount = max }
}

// WithDiagSink attaches a diagnostic sink for unknown opaque fields and
// other non-fatal observations.
func WithDiagSink(sink msgscript.DiagSink) ReaderOption {
	return func(r *Reader) { r.diag = sink }
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterDiagSink attaches a diagnostic sink to a Writer.
func WithWriterDiagSink(sink msgscript.DiagSink) WriterOption {
	return func(w *Writer) { w.diag = sink }
}

// WithCompression toggles whether per-window text buffers are
// deflate-compressed and the header's is_compressed field set.
func WithCompression(enabled bool) WriterOption {
	return func(w *Writer) { w.compress = enabled }
}

// WithStrictNarrowing makes the Writer return ArgOutOfRangeError instead of
// silently truncating when a value destined for a fixed-width field
// (identifier length aside) does not fit.
func WithStrictNarrowing(strict bool) WriterOption {
	return func(w *Writer) { w.strict = strict }
}
