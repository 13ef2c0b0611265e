package container

import "github.com/ashfall/msgscript/msgscript"

// Lift converts a parsed RawScript into the mutable Model.
func Lift(raw *RawScript) (*msgscript.Script, error) {
	format := msgscript.FormatV1LittleEndian
	if raw.Header.Magic == magic1GSM {
		format = msgscript.FormatV1BigEndian
	}

	script := &msgscript.Script{
		UserID:  raw.Header.UserID,
		Format:  format,
		Windows: make([]msgscript.Window, 0, len(raw.Windows)),
	}

	speakerCount := int(raw.SpeakerTable.SpeakerCount)

	for _, rw := range raw.Windows {
		switch w := rw.(type) {
		case nil:
			continue
		case *RawDialogueWindow:
			lines, err := liftLines(int(w.LineCount), w.LineStartOffsets, w.TextBuffer)
			if err != nil {
				return nil, err
			}
			dw := &msgscript.DialogueWindow{
				Identifier: msgscript.DecodeIdentifier(w.Identifier),
				Lines:      lines,
			}
			speaker, err := liftSpeaker(w.SpeakerID, speakerCount, raw.SpeakerTable.Names)
			if err != nil {
				return nil, err
			}
			dw.Speaker = speaker
			script.Windows = append(script.Windows, dw)

		case *RawSelectionWindow:
			lines, err := liftLines(int(w.OptionCount), w.OptionStartOffsets, w.TextBuffer)
			if err != nil {
				return nil, err
			}
			script.Windows = append(script.Windows, &msgscript.SelectionWindow{
				Identifier: msgscript.DecodeIdentifier(w.Identifier),
				Lines:      lines,
				Field18:    w.Field18,
				Field1C:    w.Field1C,
				Field1E:    w.Field1E,
			})
		}
	}

	return script, nil
}

// liftSpeaker resolves a dialogue window's speaker_id against the speaker
// table: in-range indices with a non-nil name entry become Speaker::Named,
// everything else becomes Speaker::VariableIndex.
func liftSpeaker(speakerID uint16, speakerCount int, names [][]byte) (*msgscript.Speaker, error) {
	if int(speakerID) < speakerCount && names[speakerID] != nil {
		nameBuf := append(append([]byte{}, names[speakerID]...), 0x00)
		line, _, err := msgscript.DecodeLine(nameBuf, 0)
		if err != nil {
			return nil, err
		}
		return msgscript.NamedSpeaker(line), nil
	}
	return msgscript.VariableIndexSpeaker(speakerID), nil
}

// liftLines rebases line/option start offsets so the smallest equals 0,
// then decodes each line against the (now 0-based) text buffer.
func liftLines(count int, offsets []int32, textBuffer []byte) ([]msgscript.Line, error) {
	if count <= 0 {
		return nil, nil
	}

	base := offsets[0]
	for _, off := range offsets {
		if off < base {
			base = off
		}
	}

	lines := make([]msgscript.Line, count)
	for i, off := range offsets {
		rebased := int(off - base)
		line, _, err := msgscript.DecodeLine(textBuffer, rebased)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}
