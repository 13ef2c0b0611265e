package container

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/ashfall/msgscript/msgscript"
)

// deflateBuffer compresses b with DEFLATE (klauspost/compress/flate),
// used for window text buffers when the container header's is_compressed
// flag is set.
func deflateBuffer(b []byte) ([]byte, error) {
	var out bytes.Buffer
	w, err := flate.NewWriter(&out, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// inflateBuffer decompresses a DEFLATE-compressed window text buffer.
func inflateBuffer(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &msgscript.MalformedTokenStreamError{Reason: "failed to inflate compressed text buffer: " + err.Error()}
	}
	return out, nil
}

// decompressWindows inflates every window's TextBuffer in place when the
// container declares itself compressed.
func decompressWindows(windows []RawWindow) error {
	for _, w := range windows {
		switch win := w.(type) {
		case *RawDialogueWindow:
			if len(win.TextBuffer) == 0 {
				continue
			}
			out, err := inflateBuffer(win.TextBuffer)
			if err != nil {
				return err
			}
			win.TextBuffer = out
		case *RawSelectionWindow:
			if len(win.TextBuffer) == 0 {
				continue
			}
			out, err := inflateBuffer(win.TextBuffer)
			if err != nil {
				return err
			}
			win.TextBuffer = out
		}
	}
	return nil
}
