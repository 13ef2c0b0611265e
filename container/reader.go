package container

import (
	"encoding/binary"
	"io"

	"github.com/ashfall/msgscript/msgscript"
)

// Reader parses a MessageScript container byte stream into a RawScript.
// A Reader is not safe for concurrent use; independent Readers operating
// on disjoint streams may run in parallel.
type Reader struct {
	r              io.Reader
	endianHint     EndianHint
	maxWindowCount int
	diag           msgscript.DiagSink
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{r: r, diag: msgscript.NopSink{}}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Read consumes the entire underlying stream and parses it into a
// RawScript.
func (r *Reader) Read() (*RawScript, error) {
	buf, err := io.ReadAll(r.r)
	if err != nil {
		return nil, err
	}
	return decodeRaw(buf, r.endianHint, r.maxWindowCount, r.diag)
}

func decodeRaw(buf []byte, hint EndianHint, maxWindowCount int, diag msgscript.DiagSink) (*RawScript, error) {
	if diag == nil {
		diag = msgscript.NopSink{}
	}

	header, err := parseHeader(buf, hint)
	if err != nil {
		return nil, err
	}
	order := header.Order

	logUnknownField(diag, "field_0C", header.Field0C)
	logUnknownField(diag, "field_1E", int32(header.Field1E))

	var relocTable []byte
	if header.RelocationTableOffset != 0 {
		off := int(header.RelocationTableOffset)
		size := int(header.RelocationTableSize)
		if off < 0 || size < 0 || off+size > len(buf) {
			return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: off + size}
		}
		relocTable = buf[off : off+size]
	}

	windowCount := int(header.WindowCount)
	if maxWindowCount > 0 && windowCount > maxWindowCount {
		return nil, &msgscript.MalformedTokenStreamError{Reason: "window_count exceeds configured maximum"}
	}

	bodyBase := HeaderSize

	pos := bodyBase
	windowHeaders := make([]RawWindowHeader, windowCount)
	for i := 0; i < windowCount; i++ {
		if pos+8 > len(buf) {
			return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: pos + 8}
		}
		windowHeaders[i] = RawWindowHeader{
			WindowType:   int32(order.Uint32(buf[pos : pos+4])),
			WindowOffset: int32(order.Uint32(buf[pos+4 : pos+8])),
		}
		pos += 8
	}

	speakerTable, diagErr := readSpeakerTable(buf, order, bodyBase, pos, diag)
	if diagErr != nil {
		return nil, diagErr
	}

	windows := make([]RawWindow, windowCount)
	for i, wh := range windowHeaders {
		if wh.WindowOffset == 0 {
			continue
		}
		abs := bodyBase + int(wh.WindowOffset)
		switch wh.WindowType {
		case 0:
			w, err := readDialogueWindow(buf, order, abs)
			if err != nil {
				return nil, err
			}
			windows[i] = w
		case 1:
			w, err := readSelectionWindow(buf, order, abs)
			if err != nil {
				return nil, err
			}
			windows[i] = w
		default:
			return nil, &msgscript.UnknownWindowTypeError{Type: wh.WindowType}
		}
	}

	if header.IsCompressed {
		if err := decompressWindows(windows); err != nil {
			return nil, err
		}
	}

	return &RawScript{
		Header:          header,
		WindowHeaders:   windowHeaders,
		Windows:         windows,
		SpeakerTable:    speakerTable,
		RelocationTable: relocTable,
	}, nil
}

func logUnknownField(diag msgscript.DiagSink, name string, value int32) {
	if value != 0 {
		diag.Trace("unknown opaque field %s = %d preserved verbatim", name, value)
	}
}

func readSpeakerTable(buf []byte, order binary.ByteOrder, bodyBase, pos int, diag msgscript.DiagSink) (RawSpeakerTable, error) {
	if pos+16 > len(buf) {
		return RawSpeakerTable{}, &msgscript.StreamTooSmallError{Available: len(buf), Need: pos + 16}
	}
	st := RawSpeakerTable{
		NameArrayOffset: int32(order.Uint32(buf[pos : pos+4])),
		SpeakerCount:    int32(order.Uint32(buf[pos+4 : pos+8])),
		Field08:         int32(order.Uint32(buf[pos+8 : pos+12])),
		Field0C:         int32(order.Uint32(buf[pos+12 : pos+16])),
	}
	logUnknownField(diag, "speaker.field_08", st.Field08)
	logUnknownField(diag, "speaker.field_0C", st.Field0C)

	count := int(st.SpeakerCount)
	if count == 0 {
		return st, nil
	}

	arrAbs := bodyBase + int(st.NameArrayOffset)
	if arrAbs < 0 || arrAbs+count*4 > len(buf) {
		return RawSpeakerTable{}, &msgscript.StreamTooSmallError{Available: len(buf), Need: arrAbs + count*4}
	}
	st.NameOffsets = make([]int32, count)
	st.Names = make([][]byte, count)
	for i := 0; i < count; i++ {
		off := arrAbs + i*4
		nameOff := int32(order.Uint32(buf[off : off+4]))
		st.NameOffsets[i] = nameOff

		nameAbs := bodyBase + int(nameOff)
		name, err := readCString(buf, nameAbs)
		if err != nil {
			return RawSpeakerTable{}, err
		}
		st.Names[i] = name
	}
	return st, nil
}

func readCString(buf []byte, abs int) ([]byte, error) {
	if abs < 0 || abs > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: abs}
	}
	end := abs
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return nil, &msgscript.MalformedTokenStreamError{Offset: abs, Reason: "unterminated speaker name"}
	}
	return buf[abs:end], nil
}

func readDialogueWindow(buf []byte, order binary.ByteOrder, abs int) (*RawDialogueWindow, error) {
	if abs+24+2+2 > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: abs + 28}
	}
	w := &RawDialogueWindow{}
	copy(w.Identifier[:], buf[abs:abs+24])
	pos := abs + 24
	w.LineCount = int16(order.Uint16(buf[pos : pos+2]))
	pos += 2
	w.SpeakerID = order.Uint16(buf[pos : pos+2])
	pos += 2

	if w.LineCount <= 0 {
		return w, nil
	}

	n := int(w.LineCount)
	if pos+n*4+4 > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: pos + n*4 + 4}
	}
	w.LineStartOffsets = make([]int32, n)
	for i := 0; i < n; i++ {
		w.LineStartOffsets[i] = int32(order.Uint32(buf[pos : pos+4]))
		pos += 4
	}
	size := int32(order.Uint32(buf[pos : pos+4]))
	pos += 4

	textBuf, err := readTextBuffer(buf, pos, int(size))
	if err != nil {
		return nil, err
	}
	w.TextBuffer = textBuf
	return w, nil
}

func readSelectionWindow(buf []byte, order binary.ByteOrder, abs int) (*RawSelectionWindow, error) {
	if abs+24+2*4 > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: abs + 24 + 2*4}
	}
	w := &RawSelectionWindow{}
	copy(w.Identifier[:], buf[abs:abs+24])
	pos := abs + 24
	w.Field18 = int16(order.Uint16(buf[pos : pos+2]))
	pos += 2
	w.OptionCount = int16(order.Uint16(buf[pos : pos+2]))
	pos += 2
	w.Field1C = int16(order.Uint16(buf[pos : pos+2]))
	pos += 2
	w.Field1E = int16(order.Uint16(buf[pos : pos+2]))
	pos += 2

	n := int(w.OptionCount)
	if n <= 0 {
		return w, nil
	}
	if pos+n*4+4 > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: pos + n*4 + 4}
	}
	w.OptionStartOffsets = make([]int32, n)
	for i := 0; i < n; i++ {
		w.OptionStartOffsets[i] = int32(order.Uint32(buf[pos : pos+4]))
		pos += 4
	}
	size := int32(order.Uint32(buf[pos : pos+4]))
	pos += 4

	textBuf, err := readTextBuffer(buf, pos, int(size))
	if err != nil {
		return nil, err
	}
	w.TextBuffer = textBuf
	return w, nil
}

func readTextBuffer(buf []byte, pos, size int) ([]byte, error) {
	if size < 0 || pos+size > len(buf) {
		return nil, &msgscript.StreamTooSmallError{Available: len(buf), Need: pos + size}
	}
	raw := buf[pos : pos+size]
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
