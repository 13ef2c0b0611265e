// Package compiler walks a grammar-produced parse tree of MessageScript's
// tag surface syntax and produces msgscript.Model windows.
package compiler

import (
	"strconv"
	"strings"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/library"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLibrary attaches a function Library used to resolve named tags that
// are not one of the four reserved tags (f, n, e, x).
func WithLibrary(set *library.Set) Option {
	return func(c *Compiler) { c.library = set }
}

// WithStrictNarrowing makes integer-literal narrowing (i64 → i16/u8) raise
// ArgOutOfRangeError instead of silently truncating; default is silent
// truncation, matching the historical source's behavior.
func WithStrictNarrowing(strict bool) Option {
	return func(c *Compiler) { c.strict = strict }
}

// WithDiagSink attaches a diagnostic sink for warnings and errors.
func WithDiagSink(sink msgscript.DiagSink) Option {
	return func(c *Compiler) { c.diag = sink }
}

// WithAllowNonASCII lets free-text fragments carry bytes ≥ 0x80 through to
// the encoded TextToken unchanged (the game's own multi-byte encoding, if
// any, is opaque to the Compiler). When false (the default), such bytes
// are dropped with a warning unless the source wrote them explicitly as
// `[x HH LL]`.
func WithAllowNonASCII(allow bool) Option {
	return func(c *Compiler) { c.allowNonASCII = allow }
}

// Compiler translates a tree of Nodes into msgscript Windows. A Compiler is
// not safe for concurrent use; independent Compilers operating on disjoint
// input may run in parallel.
type Compiler struct {
	library       *library.Set
	strict        bool
	allowNonASCII bool
	diag          msgscript.DiagSink
	errs          []error
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{diag: msgscript.NopSink{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FailedError is returned by CompileWindows when one or more windows
// failed to compile; the individual errors were already reported to the
// Compiler's diagnostic sink.
type FailedError struct {
	Errs []error
}

func (e *FailedError) Error() string {
	if len(e.Errs) == 1 {
		return "compiler: compile failed: " + e.Errs[0].Error()
	}
	return "compiler: compile failed with " + strconv.Itoa(len(e.Errs)) + " errors"
}

// CompileWindows compiles a sequence of WindowNodes into a Script. Errors
// are accumulated: compilation does not stop at the first failing window,
// but the returned error is non-nil if any window failed.
func (c *Compiler) CompileWindows(windows []WindowNode) (*msgscript.Script, error) {
	c.errs = nil
	script := &msgscript.Script{Format: msgscript.FormatV1LittleEndian}

	for _, wn := range windows {
		win, err := c.compileWindow(wn)
		if err != nil {
			c.fail(err)
			continue
		}
		script.Windows = append(script.Windows, win)
	}

	if len(c.errs) > 0 {
		return script, &FailedError{Errs: c.errs}
	}
	return script, nil
}

func (c *Compiler) fail(err error) {
	c.errs = append(c.errs, err)
	c.diag.Error("%s", err.Error())
}

func (c *Compiler) compileWindow(wn WindowNode) (msgscript.Window, error) {
	lines, err := c.compileBody(wn.Body)
	if err != nil {
		return nil, err
	}

	switch wn.Kind {
	case KindDialogue:
		dw := &msgscript.DialogueWindow{Identifier: wn.Identifier, Lines: lines}
		if wn.Speaker != nil {
			speaker, err := c.compileSpeaker(wn.Speaker)
			if err != nil {
				return nil, err
			}
			dw.Speaker = speaker
		}
		return dw, nil
	case KindSelection:
		return &msgscript.SelectionWindow{Identifier: wn.Identifier, Lines: lines}, nil
	default:
		return nil, &msgscript.CompileSyntaxError{Message: "unknown window kind"}
	}
}

// compileSpeaker implements the speaker sub-block rule: the first line's
// single text token, if it parses as an integer, becomes VariableIndex;
// otherwise the first line becomes Named. Additional lines trigger a
// warning and are ignored. The sub-block has no `[e]` terminator of its
// own, so the trailing line left open at the end of the walk is the
// speaker's line, not a dropped fragment.
func (c *Compiler) compileSpeaker(body []Node) (*msgscript.Speaker, error) {
	lines, trailing, err := c.compileBodyTokens(body)
	if err != nil {
		return nil, err
	}
	if len(trailing) > 0 {
		lines = append(lines, trailing)
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if len(lines) > 1 {
		c.diag.Warning("speaker sub-block has %d lines, only the first is used", len(lines))
	}

	first := lines[0]
	if len(first) == 1 && first[0].Kind == msgscript.KindText {
		if n, err := strconv.ParseInt(string(first[0].Text), 10, 32); err == nil {
			return msgscript.VariableIndexSpeaker(uint16(n)), nil
		}
	}
	return msgscript.NamedSpeaker(first), nil
}

// compileBody implements the tagText walk: text fragments become
// TextTokens, `[e]` closes the current line (pushing an empty line
// if nothing was emitted since the last `[e]`), and the other reserved
// tags and Library-resolved names become the remaining token kinds. Any
// trailing, unterminated line is discarded; window bodies are expected to
// close every line with `[e]`.
func (c *Compiler) compileBody(body []Node) ([]msgscript.Line, error) {
	lines, _, err := c.compileBodyTokens(body)
	return lines, err
}

// compileBodyTokens is the shared walk behind compileBody and
// compileSpeaker. It returns the completed lines plus whatever current
// line was still open when body ran out, so callers that don't have an
// `[e]` to rely on (the speaker sub-block) can decide whether that
// trailing content is a line of its own.
func (c *Compiler) compileBodyTokens(body []Node) ([]msgscript.Line, msgscript.Line, error) {
	var lines []msgscript.Line
	var current msgscript.Line

	for _, node := range body {
		switch n := node.(type) {
		case TextNode:
			text := c.filterText(n.Bytes)
			if len(text) == 0 {
				continue
			}
			current = append(current, msgscript.TextToken(text))

		case TagNode:
			tok, isEnd, err := c.compileTag(n)
			if err != nil {
				return nil, nil, err
			}
			if isEnd {
				lines = append(lines, current)
				current = nil
				continue
			}
			current = append(current, tok)

		default:
			return nil, nil, &msgscript.CompileSyntaxError{Message: "unknown parse-tree node kind"}
		}
	}

	return lines, current, nil
}

// compileTag resolves one TagNode into a Token. isEnd reports the `[e]`
// case, which produces no token of its own.
func (c *Compiler) compileTag(n TagNode) (msgscript.Token, bool, error) {
	switch strings.ToLower(n.Name) {
	case "f":
		if len(n.Literals) < 2 {
			return msgscript.Token{}, false, &msgscript.CompileSyntaxError{Message: "[f] requires table and function index"}
		}
		table, err := c.parseU8(n.Literals[0])
		if err != nil {
			return msgscript.Token{}, false, err
		}
		fn, err := c.parseU8(n.Literals[1])
		if err != nil {
			return msgscript.Token{}, false, err
		}
		args, err := c.parseI16Args(n.Literals[2:])
		if err != nil {
			return msgscript.Token{}, false, err
		}
		return msgscript.FunctionToken(table, fn, args), false, nil

	case "n":
		return msgscript.NewLineTok(), false, nil

	case "e":
		return msgscript.Token{}, true, nil

	case "x":
		if len(n.Literals) != 2 {
			return msgscript.Token{}, false, &msgscript.CompileSyntaxError{Message: "[x] requires exactly two byte literals"}
		}
		high, err := c.parseU8(n.Literals[0])
		if err != nil {
			return msgscript.Token{}, false, err
		}
		low, err := c.parseU8(n.Literals[1])
		if err != nil {
			return msgscript.Token{}, false, err
		}
		return msgscript.CodePointTok(high, low), false, nil

	default:
		return c.compileNamedTag(n)
	}
}

func (c *Compiler) compileNamedTag(n TagNode) (msgscript.Token, bool, error) {
	if c.library == nil {
		return msgscript.Token{}, false, &msgscript.UnknownTagError{Name: n.Name}
	}
	table, fn, paramCount, ok := c.library.ResolveName(n.Name)
	if !ok {
		return msgscript.Token{}, false, &msgscript.UnknownTagError{Name: n.Name}
	}
	if len(n.Literals) < paramCount {
		return msgscript.Token{}, false, &msgscript.CompileSyntaxError{
			Message: "tag " + n.Name + " requires " + strconv.Itoa(paramCount) + " argument(s)",
		}
	}
	args, err := c.parseI16Args(n.Literals[:paramCount])
	if err != nil {
		return msgscript.Token{}, false, err
	}
	return msgscript.FunctionToken(table, fn, args), false, nil
}

func (c *Compiler) parseI16Args(literals []string) ([]int16, error) {
	args := make([]int16, 0, len(literals))
	for _, lit := range literals {
		v, err := c.parseLiteral(lit)
		if err != nil {
			return nil, err
		}
		n, err := c.narrowI16(v)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}
	return args, nil
}

func (c *Compiler) parseU8(lit string) (uint8, error) {
	v, err := c.parseLiteral(lit)
	if err != nil {
		return 0, err
	}
	return c.narrowU8(v)
}

// parseLiteral parses a decimal or 0x-prefixed hex integer literal.
func (c *Compiler) parseLiteral(lit string) (int64, error) {
	v, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		return 0, &msgscript.IntLiteralFormatError{Literal: lit}
	}
	return v, nil
}

func (c *Compiler) narrowI16(v int64) (int16, error) {
	if v < -32768 || v > 32767 {
		if c.strict {
			return 0, &msgscript.ArgOutOfRangeError{Value: v, Target: "i16"}
		}
		c.diag.Warning("narrowing %d to i16 loses information", v)
	}
	return int16(v), nil
}

func (c *Compiler) narrowU8(v int64) (uint8, error) {
	if v < 0 || v > 255 {
		if c.strict {
			return 0, &msgscript.ArgOutOfRangeError{Value: v, Target: "u8"}
		}
		c.diag.Warning("narrowing %d to u8 loses information", v)
	}
	return uint8(v), nil
}

// filterText strips bare CR/LF bytes (line breaks are expressed with the
// explicit [n] tag, not literal newlines in the source) and, unless
// WithAllowNonASCII was set, drops bytes ≥ 0x80 with a warning.
func (c *Compiler) filterText(b []byte) []byte {
	out := make([]byte, 0, len(b))
	dropped := false
	for _, ch := range b {
		if ch == '\r' || ch == '\n' {
			continue
		}
		if ch >= 0x80 && !c.allowNonASCII {
			dropped = true
			continue
		}
		out = append(out, ch)
	}
	if dropped {
		c.diag.Warning("dropped non-ASCII byte(s) from free text; use [x HH LL] to encode explicitly")
	}
	return out
}
