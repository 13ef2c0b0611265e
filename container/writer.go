package container

import (
	"encoding/binary"
	"io"

	"github.com/ashfall/msgscript/msgscript"
)

// Writer serializes a RawScript (or, via WriteScript, a Model Script) to a
// byte stream. A Writer is not safe for concurrent use; independent
// Writers operating on disjoint output may run in parallel.
type Writer struct {
	diag     msgscript.DiagSink
	compress bool
	strict   bool
}

// NewWriter creates a Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{diag: msgscript.NopSink{}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScript lowers script and writes it to dst in one step.
func (w *Writer) WriteScript(dst io.Writer, script *msgscript.Script) error {
	raw, err := w.lower(script)
	if err != nil {
		return err
	}
	return w.WriteRaw(dst, raw)
}

// WriteRaw serializes an already fully laid-out RawScript (as produced by
// Lower, or by Reader.Read for a round trip) to dst.
func (w *Writer) WriteRaw(dst io.Writer, raw *RawScript) error {
	buf, err := serializeRaw(raw)
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}

func serializeRaw(raw *RawScript) ([]byte, error) {
	order := raw.Header.Order
	if order == nil {
		order = byteOrderFor(msgscript.FormatV1LittleEndian)
	}

	size := int(raw.Header.FileSize)
	if size <= 0 {
		size = computeSize(raw)
	}
	buf := make([]byte, size)

	bodyBase := HeaderSize
	pos := bodyBase
	for i, wh := range raw.WindowHeaders {
		order.PutUint32(buf[pos:pos+4], uint32(wh.WindowType))
		order.PutUint32(buf[pos+4:pos+8], uint32(wh.WindowOffset))
		pos += 8
		_ = i
	}

	order.PutUint32(buf[pos:pos+4], uint32(raw.SpeakerTable.NameArrayOffset))
	order.PutUint32(buf[pos+4:pos+8], uint32(raw.SpeakerTable.SpeakerCount))
	order.PutUint32(buf[pos+8:pos+12], uint32(raw.SpeakerTable.Field08))
	order.PutUint32(buf[pos+12:pos+16], uint32(raw.SpeakerTable.Field0C))
	pos += 16

	nameArrayAbs := bodyBase + int(raw.SpeakerTable.NameArrayOffset)
	for i, off := range raw.SpeakerTable.NameOffsets {
		order.PutUint32(buf[nameArrayAbs+i*4:nameArrayAbs+i*4+4], uint32(off))
	}
	for i, name := range raw.SpeakerTable.Names {
		abs := bodyBase + int(raw.SpeakerTable.NameOffsets[i])
		copy(buf[abs:abs+len(name)], name)
	}

	for i, wh := range raw.WindowHeaders {
		if wh.WindowOffset == 0 {
			continue
		}
		abs := bodyBase + int(wh.WindowOffset)
		switch win := raw.Windows[i].(type) {
		case *RawDialogueWindow:
			writeDialogueWindow(buf, order, abs, win)
		case *RawSelectionWindow:
			writeSelectionWindow(buf, order, abs, win)
		default:
			return nil, &msgscript.UnknownWindowTypeError{Type: wh.WindowType}
		}
	}

	if len(raw.RelocationTable) > 0 {
		off := int(raw.Header.RelocationTableOffset)
		copy(buf[off:off+len(raw.RelocationTable)], raw.RelocationTable)
	}

	hdr := raw.Header
	hdr.Order = order
	copy(buf[0:HeaderSize], writeHeader(hdr))

	return buf, nil
}

func writeDialogueWindow(buf []byte, order binary.ByteOrder, abs int, win *RawDialogueWindow) {
	copy(buf[abs:abs+24], win.Identifier[:])
	pos := abs + 24
	order.PutUint16(buf[pos:pos+2], uint16(win.LineCount))
	pos += 2
	order.PutUint16(buf[pos:pos+2], win.SpeakerID)
	pos += 2

	if win.LineCount <= 0 {
		return
	}
	for _, off := range win.LineStartOffsets {
		order.PutUint32(buf[pos:pos+4], uint32(off))
		pos += 4
	}
	order.PutUint32(buf[pos:pos+4], uint32(len(win.TextBuffer)))
	pos += 4
	copy(buf[pos:pos+len(win.TextBuffer)], win.TextBuffer)
}

func writeSelectionWindow(buf []byte, order binary.ByteOrder, abs int, win *RawSelectionWindow) {
	copy(buf[abs:abs+24], win.Identifier[:])
	pos := abs + 24
	order.PutUint16(buf[pos:pos+2], uint16(win.Field18))
	pos += 2
	order.PutUint16(buf[pos:pos+2], uint16(win.OptionCount))
	pos += 2
	order.PutUint16(buf[pos:pos+2], uint16(win.Field1C))
	pos += 2
	order.PutUint16(buf[pos:pos+2], uint16(win.Field1E))
	pos += 2

	if win.OptionCount <= 0 {
		return
	}
	for _, off := range win.OptionStartOffsets {
		order.PutUint32(buf[pos:pos+4], uint32(off))
		pos += 4
	}
	order.PutUint32(buf[pos:pos+4], uint32(len(win.TextBuffer)))
	pos += 4
	copy(buf[pos:pos+len(win.TextBuffer)], win.TextBuffer)
}

// computeSize recomputes the total file size from a RawScript when the
// header's FileSize field was left unset (e.g. a hand-built RawScript in
// a test). It mirrors the layout serializeRaw assumes.
func computeSize(raw *RawScript) int {
	bodyBase := HeaderSize
	pos := bodyBase + len(raw.WindowHeaders)*8 + 16 + len(raw.SpeakerTable.Names)*4
	for _, name := range raw.SpeakerTable.Names {
		pos += len(name)
	}
	for i, wh := range raw.WindowHeaders {
		if wh.WindowOffset == 0 {
			continue
		}
		switch win := raw.Windows[i].(type) {
		case *RawDialogueWindow:
			end := bodyBase + int(wh.WindowOffset) + 24 + 2 + 2
			if win.LineCount > 0 {
				end += len(win.LineStartOffsets)*4 + 4 + len(win.TextBuffer)
			}
			if end > pos {
				pos = end
			}
		case *RawSelectionWindow:
			end := bodyBase + int(wh.WindowOffset) + 24 + 2 + 2 + 2 + 2
			if win.OptionCount > 0 {
				end += len(win.OptionStartOffsets)*4 + 4 + len(win.TextBuffer)
			}
			if end > pos {
				pos = end
			}
		}
	}
	if int(raw.Header.RelocationTableOffset)+len(raw.RelocationTable) > pos {
		pos = int(raw.Header.RelocationTableOffset) + len(raw.RelocationTable)
	}
	return pos
}
