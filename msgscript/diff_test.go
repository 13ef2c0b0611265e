package msgscript

import "testing"

func TestDiff_Equal(t *testing.T) {
	a := &Script{
		UserID: 3,
		Windows: []Window{
			&DialogueWindow{Identifier: "w", Lines: []Line{{TextToken([]byte("hi"))}}},
		},
	}
	b := &Script{
		UserID: 3,
		Windows: []Window{
			&DialogueWindow{Identifier: "w", Lines: []Line{{TextToken([]byte("hi"))}}},
		},
	}
	if diffs := Diff(a, b); len(diffs) != 0 {
		t.Errorf("Diff = %v, want none", diffs)
	}
}

func TestDiff_ReportsMismatches(t *testing.T) {
	a := &Script{
		Windows: []Window{
			&DialogueWindow{Identifier: "a", Lines: []Line{{TextToken([]byte("hi"))}}},
		},
	}
	b := &Script{
		Windows: []Window{
			&DialogueWindow{Identifier: "b", Lines: []Line{{TextToken([]byte("bye"))}}},
		},
	}
	diffs := Diff(a, b)
	if len(diffs) == 0 {
		t.Fatal("expected mismatches, got none")
	}
}

func TestDiff_TypeMismatch(t *testing.T) {
	a := &Script{Windows: []Window{&DialogueWindow{Identifier: "x"}}}
	b := &Script{Windows: []Window{&SelectionWindow{Identifier: "x"}}}
	diffs := Diff(a, b)
	if len(diffs) != 1 {
		t.Fatalf("Diff = %v, want one type-mismatch entry", diffs)
	}
}
