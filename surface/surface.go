// Package surface is a minimal grammar front end for MessageScript's
// bracketed tag syntax. It is an external collaborator to package
// compiler, not part of the core codec: compiler.Compiler never imports
// this package, and any grammar front end that can produce compiler.Node
// values may be substituted for it.
package surface

import (
	"fmt"
	"strings"

	"github.com/ashfall/msgscript/compiler"
)

// Position identifies a location in the source for error reporting.
type Position struct {
	Line, Col int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// SyntaxError reports a malformed bracketed construct.
type SyntaxError struct {
	Pos     Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("surface: %s: %s", e.Pos, e.Message)
}

// Parse scans src for a sequence of window headers (`[dlg ident]`,
// `[dlg ident [speaker]]`, `[sel ident]`) each followed by a tagText body,
// and returns the equivalent compiler.WindowNode tree.
func Parse(src string) ([]compiler.WindowNode, error) {
	p := &parser{src: src}
	return p.parseWindows()
}

type parser struct {
	src string
	pos int
}

func (p *parser) parseWindows() ([]compiler.WindowNode, error) {
	var windows []compiler.WindowNode

	for {
		p.skipBlank()
		if p.pos >= len(p.src) {
			return windows, nil
		}
		if p.src[p.pos] != '[' {
			return nil, p.errAt("expected a window header ('[dlg ...]' or '[sel ...]')")
		}

		header, end, err := readBracket(p.src, p.pos)
		if err != nil {
			return nil, p.wrapErr(err)
		}
		win, err := p.parseHeader(header)
		if err != nil {
			return nil, err
		}
		p.pos = end

		bodyEnd := p.nextHeaderStart()
		body, err := parseTagText(p.src[p.pos:bodyEnd])
		if err != nil {
			return nil, p.wrapErr(err)
		}
		win.Body = body
		p.pos = bodyEnd

		windows = append(windows, win)
	}
}

// nextHeaderStart finds the offset of the next line that begins a new
// window header (a '[' immediately following a newline, ignoring leading
// whitespace), or len(src) if none remains.
func (p *parser) nextHeaderStart() int {
	s := p.src
	for i := p.pos; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j < len(s) && s[j] == '[' && startsHeaderKeyword(s[j:]) {
			return j
		}
	}
	return len(s)
}

func startsHeaderKeyword(s string) bool {
	return strings.HasPrefix(s, "[dlg ") || strings.HasPrefix(s, "[dlg]") ||
		strings.HasPrefix(s, "[sel ") || strings.HasPrefix(s, "[sel]")
}

// parseHeader interprets the content of a window header's outer bracket:
// "dlg ident" | "dlg ident [speakerBody]" | "sel ident".
func (p *parser) parseHeader(content string) (compiler.WindowNode, error) {
	content = strings.TrimSpace(content)
	bracketPos := strings.IndexByte(content, '[')

	head := content
	var speakerBody string
	hasSpeaker := false
	if bracketPos >= 0 {
		head = strings.TrimSpace(content[:bracketPos])
		inner, end, err := readBracket(content, bracketPos)
		if err != nil {
			return compiler.WindowNode{}, p.wrapErr(err)
		}
		if strings.TrimSpace(content[end:]) != "" {
			return compiler.WindowNode{}, p.errAt("unexpected content after speaker sub-block")
		}
		speakerBody = inner
		hasSpeaker = true
	}

	fields := strings.Fields(head)
	if len(fields) != 2 {
		return compiler.WindowNode{}, p.errAt("window header must be '[dlg identifier]' or '[sel identifier]'")
	}

	var kind compiler.WindowKind
	switch strings.ToLower(fields[0]) {
	case "dlg":
		kind = compiler.KindDialogue
	case "sel":
		kind = compiler.KindSelection
	default:
		return compiler.WindowNode{}, p.errAt(fmt.Sprintf("unknown window keyword %q", fields[0]))
	}
	if kind == compiler.KindSelection && hasSpeaker {
		return compiler.WindowNode{}, p.errAt("selection windows cannot carry a speaker sub-block")
	}

	win := compiler.WindowNode{Kind: kind, Identifier: fields[1]}
	if hasSpeaker {
		speaker, err := parseTagText(speakerBody)
		if err != nil {
			return compiler.WindowNode{}, p.wrapErr(err)
		}
		win.Speaker = speaker
	}
	return win, nil
}

func (p *parser) skipBlank() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) errAt(msg string) error {
	return &SyntaxError{Pos: p.lineCol(p.pos), Message: msg}
}

func (p *parser) wrapErr(err error) error {
	if se, ok := err.(*SyntaxError); ok && se.Pos == (Position{}) {
		se.Pos = p.lineCol(p.pos)
	}
	return err
}

func (p *parser) lineCol(offset int) Position {
	line, col := 1, 1
	for i := 0; i < offset && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Col: col}
}

// parseTagText scans a tagText fragment (no window headers inside it) into
// a mix of TextNode and TagNode values. Body tags are not expected to
// nest further brackets.
func parseTagText(s string) ([]compiler.Node, error) {
	var nodes []compiler.Node
	var textBuf []byte
	i := 0

	flush := func() {
		if len(textBuf) > 0 {
			nodes = append(nodes, compiler.TextNode{Bytes: textBuf})
			textBuf = nil
		}
	}

	for i < len(s) {
		if s[i] != '[' {
			textBuf = append(textBuf, s[i])
			i++
			continue
		}
		flush()
		inner, end, err := readBracket(s, i)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(inner)
		if len(fields) == 0 {
			return nil, &SyntaxError{Message: "empty tag '[]'"}
		}
		nodes = append(nodes, compiler.TagNode{Name: fields[0], Literals: fields[1:]})
		i = end
	}
	flush()
	return nodes, nil
}

// readBracket reads a bracketed construct starting at s[start] == '['
// (bracket-depth aware, so a tag's speaker sub-block may itself contain
// brackets), returning its inner content and the offset just past the
// matching ']'.
func readBracket(s string, start int) (inner string, end int, err error) {
	if start >= len(s) || s[start] != '[' {
		return "", 0, &SyntaxError{Message: "expected '['"}
	}
	depth := 1
	i := start + 1
	for i < len(s) && depth > 0 {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		i++
	}
	if depth != 0 {
		return "", 0, &SyntaxError{Message: "unterminated '['"}
	}
	return s[start+1 : i-1], i, nil
}
