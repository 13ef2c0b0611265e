package surface

import (
	"testing"

	"github.com/ashfall/msgscript/compiler"
)

func TestParse_EmptyDialogueLine(t *testing.T) {
	windows, err := Parse("[dlg greet][e]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("windows len = %d, want 1", len(windows))
	}
	w := windows[0]
	if w.Kind != compiler.KindDialogue || w.Identifier != "greet" {
		t.Errorf("got kind=%v identifier=%q", w.Kind, w.Identifier)
	}
	if len(w.Body) != 1 {
		t.Fatalf("Body len = %d, want 1", len(w.Body))
	}
	tag, ok := w.Body[0].(compiler.TagNode)
	if !ok || tag.Name != "e" {
		t.Errorf("Body[0] = %+v, want TagNode{Name: e}", w.Body[0])
	}
}

func TestParse_NamedSpeakerAndNewline(t *testing.T) {
	windows, err := Parse("[dlg hi [Bob]]Hello[n]world[e]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w := windows[0]
	if w.Identifier != "hi" {
		t.Errorf("Identifier = %q, want hi", w.Identifier)
	}
	if len(w.Speaker) != 1 {
		t.Fatalf("Speaker len = %d, want 1", len(w.Speaker))
	}
	text, ok := w.Speaker[0].(compiler.TextNode)
	if !ok || string(text.Bytes) != "Bob" {
		t.Errorf("Speaker[0] = %+v, want TextNode{Bob}", w.Speaker[0])
	}

	want := []string{"Hello", "[n]", "world", "[e]"}
	if len(w.Body) != 4 {
		t.Fatalf("Body len = %d, want 4", len(w.Body))
	}
	for i, wantKind := range []bool{false, true, false, true} {
		_, isTag := w.Body[i].(compiler.TagNode)
		if isTag != wantKind {
			t.Errorf("Body[%d] kind mismatch for expected %q", i, want[i])
		}
	}
}

func TestParse_MultipleWindows(t *testing.T) {
	src := "[dlg a]text1[e]\n[sel b]opt1[e]opt2[e]\n"
	windows, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("windows len = %d, want 2", len(windows))
	}
	if windows[0].Identifier != "a" || windows[0].Kind != compiler.KindDialogue {
		t.Errorf("window 0 = %+v", windows[0])
	}
	if windows[1].Identifier != "b" || windows[1].Kind != compiler.KindSelection {
		t.Errorf("window 1 = %+v", windows[1])
	}
	if len(windows[1].Body) != 4 {
		t.Errorf("window 1 Body len = %d, want 4 (two text + two [e])", len(windows[1].Body))
	}
}

func TestParse_FunctionTag(t *testing.T) {
	windows, err := Parse("[dlg f][f 1 1 4][e]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tag := windows[0].Body[0].(compiler.TagNode)
	if tag.Name != "f" || len(tag.Literals) != 3 {
		t.Errorf("tag = %+v, want name=f with 3 literals", tag)
	}
}

func TestParse_UnterminatedBracket(t *testing.T) {
	_, err := Parse("[dlg broken")
	if err == nil {
		t.Fatal("expected syntax error for unterminated header")
	}
}

func TestParse_SelectionCannotHaveSpeaker(t *testing.T) {
	_, err := Parse("[sel bad [Bob]]text[e]")
	if err == nil {
		t.Fatal("expected error for selection window with speaker sub-block")
	}
}
