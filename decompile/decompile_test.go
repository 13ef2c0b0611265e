package decompile

import (
	"strings"
	"testing"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/library"
)

func TestDecompileScript_VariableIndexSpeakerNoLibrary(t *testing.T) {
	script := &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "greet",
				Speaker:    msgscript.VariableIndexSpeaker(3),
				Lines: []msgscript.Line{
					{msgscript.FunctionToken(0, 2, []int16{100})},
				},
			},
		},
	}

	got, err := NewDecompiler().DecompileScript(script)
	if err != nil {
		t.Fatalf("DecompileScript: %v", err)
	}
	want := "[dlg greet [3]]\n[f 0 2 100][e]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecompileScript_NamedSpeaker(t *testing.T) {
	script := &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "intro",
				Speaker:    msgscript.NamedSpeaker(msgscript.Line{msgscript.TextToken([]byte("Kestrel"))}),
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Hi")), msgscript.NewLineTok(), msgscript.TextToken([]byte("there"))},
				},
			},
		},
	}

	got, err := NewDecompiler().DecompileScript(script)
	if err != nil {
		t.Fatalf("DecompileScript: %v", err)
	}
	want := "[dlg intro [Kestrel]]\nHi[n]there[e]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecompileScript_LibraryResolvesName(t *testing.T) {
	set, err := library.LoadFromReader(strings.NewReader(`
libraries:
  - index: 0
    functions:
      - name: GiveItem
        index: 2
        parameters: ["count"]
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	script := &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "reward",
				Lines: []msgscript.Line{
					{msgscript.FunctionToken(0, 2, []int16{5})},
				},
			},
		},
	}

	got, err := NewDecompiler(WithLibrary(set)).DecompileScript(script)
	if err != nil {
		t.Fatalf("DecompileScript: %v", err)
	}
	want := "[dlg reward]\n[GiveItem 5][e]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecompileScript_OmitUnused(t *testing.T) {
	set, err := library.LoadFromReader(strings.NewReader(`
libraries:
  - index: 0
    functions:
      - name: "@Unused"
        index: 2
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	script := &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "skip",
				Lines: []msgscript.Line{
					{msgscript.FunctionToken(0, 2, nil)},
				},
			},
		},
	}

	got, err := NewDecompiler(WithLibrary(set), WithOmitUnused(true)).DecompileScript(script)
	if err != nil {
		t.Fatalf("DecompileScript: %v", err)
	}
	want := "[dlg skip]\n[e]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecompileScript_CodePointToken(t *testing.T) {
	script := &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.SelectionWindow{
				Identifier: "opt",
				Lines: []msgscript.Line{
					{msgscript.CodePointTok(0x12, 0xAB)},
				},
			},
		},
	}
	got, err := NewDecompiler().DecompileScript(script)
	if err != nil {
		t.Fatalf("DecompileScript: %v", err)
	}
	want := "[sel opt]\n[x 0x12 0xAB][e]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
