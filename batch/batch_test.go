package batch

import (
	"context"
	"testing"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/compiler"
)

func TestCompileFiles(t *testing.T) {
	jobs := []CompileJob{
		{
			Path: "a.mscr",
			Windows: []compiler.WindowNode{
				{Kind: compiler.KindDialogue, Identifier: "a", Body: []compiler.Node{compiler.TagNode{Name: "e"}}},
			},
		},
		{
			Path: "b.mscr",
			Windows: []compiler.WindowNode{
				{Kind: compiler.KindDialogue, Identifier: "b", Body: []compiler.Node{compiler.TagNode{Name: "e"}}},
			},
		},
	}

	results, err := CompileFiles(context.Background(), jobs, WithWorkers(1))
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("job %d: %v", i, r.Err)
		}
		if r.Path != jobs[i].Path {
			t.Errorf("job %d Path = %q, want %q", i, r.Path, jobs[i].Path)
		}
		if len(r.Script.Windows) != 1 {
			t.Errorf("job %d Windows len = %d, want 1", i, len(r.Script.Windows))
		}
	}
}

func TestCompileFiles_PerJobErrorDoesNotAbortOthers(t *testing.T) {
	jobs := []CompileJob{
		{
			Path: "bad.mscr",
			Windows: []compiler.WindowNode{
				{Kind: compiler.KindDialogue, Identifier: "bad", Body: []compiler.Node{
					compiler.TagNode{Name: "nonsense"},
					compiler.TagNode{Name: "e"},
				}},
			},
		},
		{
			Path: "good.mscr",
			Windows: []compiler.WindowNode{
				{Kind: compiler.KindDialogue, Identifier: "good", Body: []compiler.Node{compiler.TagNode{Name: "e"}}},
			},
		},
	}

	results, err := CompileFiles(context.Background(), jobs)
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if results[0].Err == nil {
		t.Error("job 0 expected a compile error")
	}
	if results[1].Err != nil {
		t.Errorf("job 1 unexpected error: %v", results[1].Err)
	}
}

func TestDecompileScripts(t *testing.T) {
	jobs := []DecompileJob{
		{Path: "a.bin", Script: &msgscript.Script{Windows: []msgscript.Window{
			&msgscript.DialogueWindow{Identifier: "a", Lines: []msgscript.Line{{msgscript.TextToken([]byte("hi"))}}},
		}}},
	}

	results, err := DecompileScripts(context.Background(), jobs)
	if err != nil {
		t.Fatalf("DecompileScripts: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("job 0: %v", results[0].Err)
	}
	want := "[dlg a]\nhi[e]\n"
	if results[0].Text != want {
		t.Errorf("got %q, want %q", results[0].Text, want)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("NewRunID produced two identical IDs")
	}
}
