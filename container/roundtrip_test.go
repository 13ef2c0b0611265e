package container

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/ashfall/msgscript/msgscript"
)

func sampleScript() *msgscript.Script {
	return &msgscript.Script{
		UserID: 7,
		Format: msgscript.FormatV1LittleEndian,
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "intro_01",
				Speaker:    msgscript.NamedSpeaker(msgscript.Line{msgscript.TextToken([]byte("Kestrel"))}),
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Hello there."))},
					{
						msgscript.TextToken([]byte("Take ")),
						msgscript.FunctionToken(1, 1, []int16{4}),
						msgscript.TextToken([]byte(" steps.")),
					},
				},
			},
			&msgscript.DialogueWindow{
				Identifier: "intro_02",
				Speaker:    msgscript.VariableIndexSpeaker(0x1234),
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Who said that?"))},
				},
			},
			&msgscript.SelectionWindow{
				Identifier: "choice_01",
				Field18:    1,
				Field1C:    2,
				Field1E:    3,
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Yes"))},
					{msgscript.TextToken([]byte("No"))},
				},
			},
		},
	}
}

func encodeScript(t *testing.T, script *msgscript.Script, opts ...WriterOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(opts...)
	if err := w.WriteScript(&buf, script); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTrip_LowerWriteReadLift(t *testing.T) {
	script := sampleScript()
	encoded := encodeScript(t, script)

	raw, err := NewReader(bytes.NewReader(encoded)).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, err := Lift(raw)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}

	if diffs := msgscript.Diff(got, script); len(diffs) > 0 {
		t.Fatalf("round trip mismatch:\n%s", strings.Join(diffs, "\n"))
	}
}

func assertLinesEqual(t *testing.T, i int, got, want []msgscript.Line) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("window %d Lines len = %d, want %d", i, len(got), len(want))
	}
	for j := range want {
		if !got[j].Equal(want[j]) {
			t.Errorf("window %d line %d = %+v, want %+v", i, j, got[j], want[j])
		}
	}
}

func assertSpeakerEqual(t *testing.T, i int, got, want *msgscript.Speaker) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Fatalf("window %d Speaker nilness mismatch: got %v, want %v", i, got, want)
	}
	if got == nil {
		return
	}
	if got.Kind != want.Kind {
		t.Fatalf("window %d Speaker.Kind = %v, want %v", i, got.Kind, want.Kind)
	}
	switch want.Kind {
	case msgscript.SpeakerNamed:
		if !got.NameLine.Equal(want.NameLine) {
			t.Errorf("window %d Speaker.NameLine = %+v, want %+v", i, got.NameLine, want.NameLine)
		}
	case msgscript.SpeakerVariableIndex:
		if got.VariableIndex != want.VariableIndex {
			t.Errorf("window %d Speaker.VariableIndex = %d, want %d", i, got.VariableIndex, want.VariableIndex)
		}
	}
}

func TestRoundTrip_Compressed(t *testing.T) {
	script := sampleScript()
	encoded := encodeScript(t, script, WithCompression(true))

	raw, err := NewReader(bytes.NewReader(encoded)).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !raw.Header.IsCompressed {
		t.Fatal("Header.IsCompressed = false, want true")
	}

	got, err := Lift(raw)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	dw, ok := got.Windows[0].(*msgscript.DialogueWindow)
	if !ok {
		t.Fatalf("window 0: got %T, want *DialogueWindow", got.Windows[0])
	}
	wantDw := script.Windows[0].(*msgscript.DialogueWindow)
	assertLinesEqual(t, 0, dw.Lines, wantDw.Lines)
}

func TestRoundTrip_BigEndian(t *testing.T) {
	script := sampleScript()
	script.Format = msgscript.FormatV1BigEndian
	encoded := encodeScript(t, script)

	if !bytes.Equal(encoded[0x08:0x0C], magic1GSM[:]) {
		t.Fatalf("magic = %q, want %q", encoded[0x08:0x0C], magic1GSM[:])
	}

	raw, err := NewReader(bytes.NewReader(encoded)).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, err := Lift(raw)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if got.Format != msgscript.FormatV1BigEndian {
		t.Errorf("Format = %v, want FormatV1BigEndian", got.Format)
	}
}

func TestReader_RejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf[0x08:0x0C], "XXXX")
	_, err := NewReader(bytes.NewReader(buf)).Read()
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
	if _, ok := err.(*msgscript.InvalidHeaderMagicError); !ok {
		t.Errorf("error = %T, want *msgscript.InvalidHeaderMagicError", err)
	}
}

func TestReader_RejectsTruncatedStream(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{'M', 'S', 'G', '1'})).Read()
	if err == nil {
		t.Fatal("expected error for truncated stream")
	}
	if _, ok := err.(*msgscript.StreamTooSmallError); !ok {
		t.Errorf("error = %T, want *msgscript.StreamTooSmallError", err)
	}
}

func TestReader_RejectsUnknownWindowType(t *testing.T) {
	script := sampleScript()
	raw, err := Lower(script)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	raw.WindowHeaders[0].WindowType = 9

	var buf bytes.Buffer
	if err := NewWriter().WriteRaw(&buf, raw); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	_, err = NewReader(bytes.NewReader(buf.Bytes())).Read()
	if err == nil {
		t.Fatal("expected error for unknown window type")
	}
	if _, ok := err.(*msgscript.UnknownWindowTypeError); !ok {
		t.Errorf("error = %T, want *msgscript.UnknownWindowTypeError", err)
	}
}

func TestReader_WithMaxWindowCount(t *testing.T) {
	encoded := encodeScript(t, sampleScript())
	_, err := NewReader(bytes.NewReader(encoded), WithMaxWindowCount(1)).Read()
	if err == nil {
		t.Fatal("expected error when window_count exceeds configured maximum")
	}
}

func TestReader_EndianHintOverridesMagic(t *testing.T) {
	script := sampleScript()
	encoded := encodeScript(t, script)

	raw, err := NewReader(bytes.NewReader(encoded), WithEndianHint(EndianLittle)).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if int(raw.Header.FileSize) != len(encoded) {
		t.Errorf("FileSize = %d, want %d", raw.Header.FileSize, len(encoded))
	}

	// A big-endian hint on this little-endian file overrides the magic's
	// byte order.
	h, err := parseHeader(encoded, EndianBig)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.Order != binary.BigEndian {
		t.Errorf("Order = %v, want big endian", h.Order)
	}
	if want := int32(binary.BigEndian.Uint32(encoded[0x04:0x08])); h.FileSize != want {
		t.Errorf("FileSize = %d, want %d", h.FileSize, want)
	}
}
