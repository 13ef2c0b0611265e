package compiler

import (
	"testing"

	"github.com/ashfall/msgscript/msgscript"
)

func TestCompileWindows_EmptyDialogueLine(t *testing.T) {
	// [dlg greet][e]
	windows := []WindowNode{
		{
			Kind:       KindDialogue,
			Identifier: "greet",
			Body:       []Node{TagNode{Name: "e"}},
		},
	}

	script, err := NewCompiler().CompileWindows(windows)
	if err != nil {
		t.Fatalf("CompileWindows: %v", err)
	}
	if len(script.Windows) != 1 {
		t.Fatalf("Windows len = %d, want 1", len(script.Windows))
	}
	dw, ok := script.Windows[0].(*msgscript.DialogueWindow)
	if !ok {
		t.Fatalf("window 0 = %T, want *DialogueWindow", script.Windows[0])
	}
	if dw.Identifier != "greet" || dw.Speaker != nil {
		t.Errorf("got identifier=%q speaker=%v", dw.Identifier, dw.Speaker)
	}
	if len(dw.Lines) != 1 || len(dw.Lines[0]) != 0 {
		t.Errorf("Lines = %+v, want one empty line", dw.Lines)
	}
}

func TestCompileWindows_NamedSpeakerAndNewline(t *testing.T) {
	// [dlg hi [Bob]]Hello[n]world[e]
	windows := []WindowNode{
		{
			Kind:       KindDialogue,
			Identifier: "hi",
			Speaker:    []Node{TextNode{Bytes: []byte("Bob")}},
			Body: []Node{
				TextNode{Bytes: []byte("Hello")},
				TagNode{Name: "n"},
				TextNode{Bytes: []byte("world")},
				TagNode{Name: "e"},
			},
		},
	}

	script, err := NewCompiler().CompileWindows(windows)
	if err != nil {
		t.Fatalf("CompileWindows: %v", err)
	}
	dw := script.Windows[0].(*msgscript.DialogueWindow)

	if dw.Speaker == nil || dw.Speaker.Kind != msgscript.SpeakerNamed {
		t.Fatalf("Speaker = %+v, want Named", dw.Speaker)
	}
	wantSpeaker := msgscript.Line{msgscript.TextToken([]byte("Bob"))}
	if !dw.Speaker.NameLine.Equal(wantSpeaker) {
		t.Errorf("Speaker.NameLine = %+v, want %+v", dw.Speaker.NameLine, wantSpeaker)
	}

	wantLine := msgscript.Line{
		msgscript.TextToken([]byte("Hello")),
		msgscript.NewLineTok(),
		msgscript.TextToken([]byte("world")),
	}
	if len(dw.Lines) != 1 || !dw.Lines[0].Equal(wantLine) {
		t.Errorf("Lines = %+v, want [%+v]", dw.Lines, wantLine)
	}
}

func TestCompileWindows_VariableIndexSpeaker(t *testing.T) {
	windows := []WindowNode{
		{
			Kind:       KindDialogue,
			Identifier: "vartest",
			Speaker:    []Node{TextNode{Bytes: []byte("42")}},
			Body:       []Node{TagNode{Name: "e"}},
		},
	}
	script, err := NewCompiler().CompileWindows(windows)
	if err != nil {
		t.Fatalf("CompileWindows: %v", err)
	}
	dw := script.Windows[0].(*msgscript.DialogueWindow)
	if dw.Speaker == nil || dw.Speaker.Kind != msgscript.SpeakerVariableIndex || dw.Speaker.VariableIndex != 42 {
		t.Errorf("Speaker = %+v, want VariableIndex(42)", dw.Speaker)
	}
}

func TestCompileWindows_FunctionTag(t *testing.T) {
	windows := []WindowNode{
		{
			Kind:       KindDialogue,
			Identifier: "ftest",
			Body: []Node{
				TagNode{Name: "f", Literals: []string{"1", "1", "4"}},
				TagNode{Name: "e"},
			},
		},
	}
	script, err := NewCompiler().CompileWindows(windows)
	if err != nil {
		t.Fatalf("CompileWindows: %v", err)
	}
	dw := script.Windows[0].(*msgscript.DialogueWindow)
	want := msgscript.Line{msgscript.FunctionToken(1, 1, []int16{4})}
	if !dw.Lines[0].Equal(want) {
		t.Errorf("Lines[0] = %+v, want %+v", dw.Lines[0], want)
	}
}

func TestCompileWindows_UnknownTag(t *testing.T) {
	windows := []WindowNode{
		{
			Kind:       KindDialogue,
			Identifier: "bad",
			Body: []Node{
				TagNode{Name: "nonsense"},
				TagNode{Name: "e"},
			},
		},
	}
	_, err := NewCompiler().CompileWindows(windows)
	if err == nil {
		t.Fatal("expected error for unresolved tag")
	}
	var failed *FailedError
	if f, ok := err.(*FailedError); ok {
		failed = f
	} else {
		t.Fatalf("error = %T, want *FailedError", err)
	}
	if _, ok := failed.Errs[0].(*msgscript.UnknownTagError); !ok {
		t.Errorf("underlying error = %T, want *msgscript.UnknownTagError", failed.Errs[0])
	}
}

func TestCompileWindows_SelectionWindow(t *testing.T) {
	windows := []WindowNode{
		{
			Kind:       KindSelection,
			Identifier: "choice",
			Body: []Node{
				TextNode{Bytes: []byte("Yes")},
				TagNode{Name: "e"},
				TextNode{Bytes: []byte("No")},
				TagNode{Name: "e"},
			},
		},
	}
	script, err := NewCompiler().CompileWindows(windows)
	if err != nil {
		t.Fatalf("CompileWindows: %v", err)
	}
	sw, ok := script.Windows[0].(*msgscript.SelectionWindow)
	if !ok {
		t.Fatalf("window 0 = %T, want *SelectionWindow", script.Windows[0])
	}
	if len(sw.Lines) != 2 {
		t.Fatalf("Lines len = %d, want 2", len(sw.Lines))
	}
}
