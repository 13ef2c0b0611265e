// Package decompile walks msgscript.Model windows and emits MessageScript
// tag surface syntax text, the inverse of package compiler.
package decompile

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/library"
)

// Option configures a Decompiler.
type Option func(*Decompiler)

// WithLibrary attaches a function Library used to resolve FunctionToken
// opcodes back to human-readable tag names.
func WithLibrary(set *library.Set) Option {
	return func(d *Decompiler) { d.library = set }
}

// WithOmitUnused suppresses emitting a FunctionToken whose Library name
// resolves to library.UnusedName.
func WithOmitUnused(omit bool) Option {
	return func(d *Decompiler) { d.omitUnused = omit }
}

// Decompiler emits surface syntax for Model windows. A Decompiler is not
// safe for concurrent use; independent Decompilers operating on disjoint
// input may run in parallel.
type Decompiler struct {
	library    *library.Set
	omitUnused bool
}

// NewDecompiler creates a Decompiler.
func NewDecompiler(opts ...Option) *Decompiler {
	d := &Decompiler{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecompileScript emits every window of script as surface syntax text.
func (d *Decompiler) DecompileScript(script *msgscript.Script) (string, error) {
	var buf bytes.Buffer
	for _, win := range script.Windows {
		if err := d.decompileWindow(&buf, win); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (d *Decompiler) decompileWindow(buf *bytes.Buffer, win msgscript.Window) error {
	switch w := win.(type) {
	case *msgscript.DialogueWindow:
		if err := d.writeDialogueHeader(buf, w); err != nil {
			return err
		}
		return d.writeLines(buf, w.Lines)
	case *msgscript.SelectionWindow:
		fmt.Fprintf(buf, "[sel %s]\n", w.Identifier)
		return d.writeLines(buf, w.Lines)
	default:
		return &msgscript.MalformedTokenStreamError{Reason: "unknown window kind in model"}
	}
}

// writeDialogueHeader emits one of the three dialogue header forms: no
// speaker, a named speaker, or a variable-index speaker.
func (d *Decompiler) writeDialogueHeader(buf *bytes.Buffer, w *msgscript.DialogueWindow) error {
	if w.Speaker == nil {
		fmt.Fprintf(buf, "[dlg %s]\n", w.Identifier)
		return nil
	}
	switch w.Speaker.Kind {
	case msgscript.SpeakerNamed:
		var nameBuf bytes.Buffer
		if err := d.writeTokens(&nameBuf, w.Speaker.NameLine); err != nil {
			return err
		}
		fmt.Fprintf(buf, "[dlg %s [%s]]\n", w.Identifier, nameBuf.String())
	case msgscript.SpeakerVariableIndex:
		fmt.Fprintf(buf, "[dlg %s [%d]]\n", w.Identifier, w.Speaker.VariableIndex)
	}
	return nil
}

// writeLines emits each line's tokens followed by [e], one source line per
// Line.
func (d *Decompiler) writeLines(buf *bytes.Buffer, lines []msgscript.Line) error {
	for _, line := range lines {
		if err := d.writeTokens(buf, line); err != nil {
			return err
		}
		buf.WriteString("[e]\n")
	}
	return nil
}

func (d *Decompiler) writeTokens(buf *bytes.Buffer, line msgscript.Line) error {
	for _, tok := range line {
		if err := d.writeToken(buf, tok); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decompiler) writeToken(buf *bytes.Buffer, tok msgscript.Token) error {
	switch tok.Kind {
	case msgscript.KindText:
		buf.Write(tok.Text)
	case msgscript.KindNewLine:
		buf.WriteString("[n]")
	case msgscript.KindCodePoint:
		fmt.Fprintf(buf, "[x 0x%02X 0x%02X]", tok.High, tok.Low)
	case msgscript.KindFunction:
		return d.writeFunctionToken(buf, tok.Function)
	default:
		return &msgscript.MalformedTokenStreamError{Reason: "unknown token kind in model"}
	}
	return nil
}

func (d *Decompiler) writeFunctionToken(buf *bytes.Buffer, fn msgscript.FunctionCall) error {
	if d.library != nil {
		if name, ok := d.library.ResolveCode(fn.TableIndex, fn.FunctionIndex); ok {
			if d.omitUnused && name == library.UnusedName {
				return nil
			}
			buf.WriteByte('[')
			buf.WriteString(name)
			for _, arg := range fn.Args {
				buf.WriteByte(' ')
				buf.WriteString(strconv.Itoa(int(arg)))
			}
			buf.WriteByte(']')
			return nil
		}
	}

	fmt.Fprintf(buf, "[f %d %d", fn.TableIndex, fn.FunctionIndex)
	for _, arg := range fn.Args {
		fmt.Fprintf(buf, " %d", arg)
	}
	buf.WriteByte(']')
	return nil
}
