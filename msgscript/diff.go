package msgscript

import "fmt"

// Diff compares two Scripts window by window and returns a human-readable
// description of every mismatch. An empty result means the two Scripts are
// equal in every field the Model carries. Relocation table and file_size
// live outside the Model, so this is the right equality test for the
// "round trip is lossless except those two fields" property.
func Diff(a, b *Script) []string {
	var diffs []string
	if a.UserID != b.UserID {
		diffs = append(diffs, fmt.Sprintf("UserID: %d != %d", a.UserID, b.UserID))
	}
	if a.Format != b.Format {
		diffs = append(diffs, fmt.Sprintf("Format: %v != %v", a.Format, b.Format))
	}
	if len(a.Windows) != len(b.Windows) {
		diffs = append(diffs, fmt.Sprintf("Windows length: %d != %d", len(a.Windows), len(b.Windows)))
		return diffs
	}
	for i := range a.Windows {
		diffs = append(diffs, diffWindow(i, a.Windows[i], b.Windows[i])...)
	}
	return diffs
}

func diffWindow(i int, a, b Window) []string {
	var diffs []string
	prefix := fmt.Sprintf("window %d", i)

	aw, bw := asDialogue(a), asDialogue(b)
	switch {
	case aw != nil && bw != nil:
		return diffDialogueWindow(prefix, aw, bw)
	}
	as, bs := asSelection(a), asSelection(b)
	if as != nil && bs != nil {
		return diffSelectionWindow(prefix, as, bs)
	}
	return append(diffs, fmt.Sprintf("%s: type mismatch %T vs %T", prefix, a, b))
}

func asDialogue(w Window) *DialogueWindow {
	dw, _ := w.(*DialogueWindow)
	return dw
}

func asSelection(w Window) *SelectionWindow {
	sw, _ := w.(*SelectionWindow)
	return sw
}

func diffDialogueWindow(prefix string, a, b *DialogueWindow) []string {
	var diffs []string
	if a.Identifier != b.Identifier {
		diffs = append(diffs, fmt.Sprintf("%s: Identifier %q != %q", prefix, a.Identifier, b.Identifier))
	}
	diffs = append(diffs, diffSpeaker(prefix, a.Speaker, b.Speaker)...)
	diffs = append(diffs, diffLines(prefix, a.Lines, b.Lines)...)
	return diffs
}

func diffSelectionWindow(prefix string, a, b *SelectionWindow) []string {
	var diffs []string
	if a.Identifier != b.Identifier {
		diffs = append(diffs, fmt.Sprintf("%s: Identifier %q != %q", prefix, a.Identifier, b.Identifier))
	}
	if a.Field18 != b.Field18 || a.Field1C != b.Field1C || a.Field1E != b.Field1E {
		diffs = append(diffs, fmt.Sprintf("%s: opaque fields (%d,%d,%d) != (%d,%d,%d)",
			prefix, a.Field18, a.Field1C, a.Field1E, b.Field18, b.Field1C, b.Field1E))
	}
	diffs = append(diffs, diffLines(prefix, a.Lines, b.Lines)...)
	return diffs
}

func diffSpeaker(prefix string, a, b *Speaker) []string {
	if a == nil && b == nil {
		return nil
	}
	if (a == nil) != (b == nil) {
		return []string{fmt.Sprintf("%s: Speaker nilness mismatch (%v vs %v)", prefix, a, b)}
	}
	if a.Kind != b.Kind {
		return []string{fmt.Sprintf("%s: Speaker.Kind %v != %v", prefix, a.Kind, b.Kind)}
	}
	switch a.Kind {
	case SpeakerNamed:
		if !a.NameLine.Equal(b.NameLine) {
			return []string{fmt.Sprintf("%s: Speaker.NameLine %+v != %+v", prefix, a.NameLine, b.NameLine)}
		}
	case SpeakerVariableIndex:
		if a.VariableIndex != b.VariableIndex {
			return []string{fmt.Sprintf("%s: Speaker.VariableIndex %d != %d", prefix, a.VariableIndex, b.VariableIndex)}
		}
	}
	return nil
}

func diffLines(prefix string, a, b []Line) []string {
	if len(a) != len(b) {
		return []string{fmt.Sprintf("%s: Lines length %d != %d", prefix, len(a), len(b))}
	}
	var diffs []string
	for i := range a {
		if !a[i].Equal(b[i]) {
			diffs = append(diffs, fmt.Sprintf("%s line %d: %+v != %+v", prefix, i, a[i], b[i]))
		}
	}
	return diffs
}
