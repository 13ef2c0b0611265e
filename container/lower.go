package container

import (
	"encoding/binary"

	"github.com/ashfall/msgscript/msgscript"
)

// Lower converts a Model Script into a fully laid-out RawScript: every
// absolute-offset field is resolved, the relocation table is regenerated,
// and the header's file_size/window_count/relocation_table_* fields are
// filled in. The result is ready to hand to (*Writer).WriteRaw.
//
// Offset back-patching is avoided by computing the whole layout (sizes
// first, then absolute positions) before any bytes are produced.
func Lower(script *msgscript.Script, opts ...WriterOption) (*RawScript, error) {
	w := &Writer{diag: msgscript.NopSink{}}
	for _, opt := range opts {
		opt(w)
	}
	return w.lower(script)
}

type loweredWindow struct {
	kind    int32 // 0 dialogue, 1 selection
	ident   [24]byte
	lineCnt int16
	// dialogue-only
	speakerID uint16
	// selection-only
	field18, field1C, field1E int16
	optionCnt                 int16

	relOffsets []int32 // 0-based offsets into textBuf
	textBuf    []byte
}

func (w *Writer) lower(script *msgscript.Script) (*RawScript, error) {
	order := byteOrderFor(script.Format)

	// Speaker table: collect named speakers in window order, assigning
	// each a 0-based index. Windows with a VariableIndex speaker reuse
	// the speaker_id field directly and must (by the format's own
	// invariant) stay >= the resulting speaker count.
	var speakerNames [][]byte
	speakerIDs := make([]uint16, len(script.Windows))
	for i, win := range script.Windows {
		dw, ok := win.(*msgscript.DialogueWindow)
		if !ok || dw.Speaker == nil {
			speakerIDs[i] = 0xFFFF
			continue
		}
		switch dw.Speaker.Kind {
		case msgscript.SpeakerNamed:
			nameBuf, err := msgscript.EncodeLine(dw.Speaker.NameLine)
			if err != nil {
				return nil, err
			}
			speakerIDs[i] = uint16(len(speakerNames))
			speakerNames = append(speakerNames, nameBuf)
		case msgscript.SpeakerVariableIndex:
			speakerIDs[i] = dw.Speaker.VariableIndex
		}
	}

	lowered := make([]loweredWindow, len(script.Windows))
	for i, win := range script.Windows {
		lw, err := w.lowerWindow(win, speakerIDs[i])
		if err != nil {
			return nil, err
		}
		lowered[i] = lw
	}

	return w.layout(script, order, lowered, speakerNames)
}

func (w *Writer) lowerWindow(win msgscript.Window, speakerID uint16) (loweredWindow, error) {
	identBytes, err := msgscript.EncodeIdentifier(win.Ident())
	if err != nil {
		return loweredWindow{}, err
	}

	switch v := win.(type) {
	case *msgscript.DialogueWindow:
		relOffsets, textBuf, err := encodeLines(v.Lines)
		if err != nil {
			return loweredWindow{}, err
		}
		lineCnt, err := w.narrowCount(len(v.Lines))
		if err != nil {
			return loweredWindow{}, err
		}
		return loweredWindow{
			kind:       0,
			ident:      identBytes,
			lineCnt:    lineCnt,
			speakerID:  speakerID,
			relOffsets: relOffsets,
			textBuf:    textBuf,
		}, nil

	case *msgscript.SelectionWindow:
		relOffsets, textBuf, err := encodeLines(v.Lines)
		if err != nil {
			return loweredWindow{}, err
		}
		lineCnt, err := w.narrowCount(len(v.Lines))
		if err != nil {
			return loweredWindow{}, err
		}
		return loweredWindow{
			kind:       1,
			ident:      identBytes,
			lineCnt:    lineCnt,
			field18:    v.Field18,
			field1C:    v.Field1C,
			field1E:    v.Field1E,
			optionCnt:  lineCnt,
			relOffsets: relOffsets,
			textBuf:    textBuf,
		}, nil

	default:
		return loweredWindow{}, &msgscript.UnknownWindowTypeError{}
	}
}

// narrowCount narrows a line/option count to the wire's int16 field. In
// strict mode a count that would lose information raises
// ArgOutOfRangeError; otherwise it wraps with a warning.
func (w *Writer) narrowCount(n int) (int16, error) {
	if n < -32768 || n > 32767 {
		if w.strict {
			return 0, &msgscript.ArgOutOfRangeError{Value: int64(n), Target: "i16"}
		}
		w.diag.Warning("narrowing count %d to i16 loses information", n)
	}
	return int16(n), nil
}

// encodeLines encodes each Line and concatenates the results, recording
// each line's 0-based start offset within the concatenated buffer.
func encodeLines(lines []msgscript.Line) ([]int32, []byte, error) {
	if len(lines) == 0 {
		return nil, nil, nil
	}
	offsets := make([]int32, len(lines))
	var buf []byte
	for i, line := range lines {
		offsets[i] = int32(len(buf))
		enc, err := msgscript.EncodeLine(line)
		if err != nil {
			return nil, nil, err
		}
		buf = append(buf, enc...)
	}
	return offsets, buf, nil
}

// relocEntry records the absolute file offset of a pointer field, for the
// regenerated relocation table.
type relocEntry int32

func (w *Writer) layout(script *msgscript.Script, order binary.ByteOrder, lowered []loweredWindow, speakerNames [][]byte) (*RawScript, error) {
	bodyBase := HeaderSize
	var relocs []relocEntry

	windowHeaders := make([]RawWindowHeader, len(lowered))
	pos := bodyBase + len(lowered)*8 // window header array

	// Speaker table header.
	speakerHeaderAbs := pos
	pos += 16

	nameArrayAbs := pos
	pos += len(speakerNames) * 4

	nameOffsets := make([]int32, len(speakerNames))
	for i, name := range speakerNames {
		nameAbs := pos
		nameOffsets[i] = int32(nameAbs - bodyBase)
		relocs = append(relocs, relocEntry(nameArrayAbs+i*4))
		pos += len(name)
	}

	windows := make([]RawWindow, len(lowered))
	for i, lw := range lowered {
		winAbs := pos
		windowHeaders[i] = RawWindowHeader{WindowType: lw.kind, WindowOffset: int32(winAbs - bodyBase)}
		relocs = append(relocs, relocEntry(bodyBase+i*8+4))

		switch lw.kind {
		case 0:
			fixed := 24 + 2 + 2
			textBufAbs := winAbs + fixed + len(lw.relOffsets)*4 + 4
			absOffsets := absolutize(lw.relOffsets, textBufAbs)
			for j := range absOffsets {
				relocs = append(relocs, relocEntry(winAbs+fixed+j*4))
			}
			textBuf := lw.textBuf
			if w.compress {
				var err error
				textBuf, err = deflateBuffer(textBuf)
				if err != nil {
					return nil, err
				}
			}
			windows[i] = &RawDialogueWindow{
				Identifier:       lw.ident,
				LineCount:        lw.lineCnt,
				SpeakerID:        lw.speakerID,
				LineStartOffsets: absOffsets,
				TextBuffer:       textBuf,
			}
			pos = textBufAbs + len(textBuf)

		case 1:
			fixed := 24 + 2 + 2 + 2 + 2
			textBufAbs := winAbs + fixed + len(lw.relOffsets)*4 + 4
			absOffsets := absolutize(lw.relOffsets, textBufAbs)
			for j := range absOffsets {
				relocs = append(relocs, relocEntry(winAbs+fixed+j*4))
			}
			textBuf := lw.textBuf
			if w.compress {
				var err error
				textBuf, err = deflateBuffer(textBuf)
				if err != nil {
					return nil, err
				}
			}
			windows[i] = &RawSelectionWindow{
				Identifier:         lw.ident,
				Field18:            lw.field18,
				OptionCount:        lw.optionCnt,
				Field1C:            lw.field1C,
				Field1E:            lw.field1E,
				OptionStartOffsets: absOffsets,
				TextBuffer:         textBuf,
			}
			pos = textBufAbs + len(textBuf)
		}
	}

	relocs = append(relocs, relocEntry(speakerHeaderAbs))

	relocOff := pos
	relocBuf := make([]byte, len(relocs)*4)
	for i, e := range relocs {
		order.PutUint32(relocBuf[i*4:i*4+4], uint32(e))
	}
	pos += len(relocBuf)

	header := Header{
		FileType:              0,
		IsCompressed:          w.compress,
		UserID:                script.UserID,
		FileSize:              int32(pos),
		Magic:                 magicFor(script.Format),
		RelocationTableOffset: int32(relocOff),
		RelocationTableSize:   int32(len(relocBuf)),
		WindowCount:           int32(len(lowered)),
		IsRelocated:           true,
		Order:                 order,
	}

	return &RawScript{
		Header:        header,
		WindowHeaders: windowHeaders,
		Windows:       windows,
		SpeakerTable: RawSpeakerTable{
			NameArrayOffset: int32(nameArrayAbs - bodyBase),
			SpeakerCount:    int32(len(speakerNames)),
			NameOffsets:     nameOffsets,
			Names:           speakerNames,
		},
		RelocationTable: relocBuf,
	}, nil
}

func absolutize(relOffsets []int32, base int) []int32 {
	if len(relOffsets) == 0 {
		return nil
	}
	out := make([]int32, len(relOffsets))
	for i, off := range relOffsets {
		out[i] = int32(base) + off
	}
	return out
}
