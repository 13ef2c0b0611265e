package msgscript

// MaxIdentifierBytes is the fixed, NUL-padded size of a window identifier
// slot on disk.
const MaxIdentifierBytes = 24

// FormatVersion identifies the container layout and byte order that a
// Script was read from, or should be written as.
type FormatVersion uint8

const (
	FormatV1LittleEndian FormatVersion = iota
	FormatV1BigEndian
)

// String returns a human-readable format name.
func (f FormatVersion) String() string {
	switch f {
	case FormatV1LittleEndian:
		return "v1-le"
	case FormatV1BigEndian:
		return "v1-be"
	default:
		return "unknown"
	}
}

// Script is the root of the in-memory MessageScript model: an ordered list
// of dialogue/selection Windows plus the metadata carried in the container
// header.
type Script struct {
	UserID  int16
	Format  FormatVersion
	Windows []Window
}

// Window is either a *DialogueWindow or a *SelectionWindow.
type Window interface {
	// Ident returns the window's identifier string.
	Ident() string
	isWindow()
}

// DialogueWindow is a window with an optional Speaker and an ordered list
// of spoken Lines.
type DialogueWindow struct {
	Identifier string
	Speaker    *Speaker // nil means no speaker attached
	Lines      []Line
}

func (w *DialogueWindow) Ident() string { return w.Identifier }
func (*DialogueWindow) isWindow()       {}

// SelectionWindow is a window whose Lines are player-facing choices, plus
// four opaque 16-bit fields preserved verbatim across round trips.
type SelectionWindow struct {
	Identifier string
	Lines      []Line // each Line is one choice

	// Field18, Field1C, Field1E are unknown-semantics fields read from
	// the on-disk selection window header and written back unchanged.
	Field18 int16
	Field1C int16
	Field1E int16
}

func (w *SelectionWindow) Ident() string { return w.Identifier }
func (*SelectionWindow) isWindow()       {}

// SpeakerKind distinguishes the two Speaker variants.
type SpeakerKind uint8

const (
	SpeakerNamed SpeakerKind = iota
	SpeakerVariableIndex
)

// Speaker is a dialogue window's attribution: either a Named speaker whose
// name is itself a Line of tokens, or a run-time VariableIndex.
type Speaker struct {
	Kind          SpeakerKind
	NameLine      Line   // valid when Kind == SpeakerNamed
	VariableIndex uint16 // valid when Kind == SpeakerVariableIndex
}

// NamedSpeaker builds a Speaker whose name is the given Line.
func NamedSpeaker(name Line) *Speaker {
	return &Speaker{Kind: SpeakerNamed, NameLine: name}
}

// VariableIndexSpeaker builds a Speaker that indexes a run-time variable.
func VariableIndexSpeaker(index uint16) *Speaker {
	return &Speaker{Kind: SpeakerVariableIndex, VariableIndex: index}
}

// Line is an ordered sequence of Tokens. A dialogue window's Lines are
// spoken in order; a selection window's Lines are its choices.
type Line []Token

// TokenKind distinguishes the four closed Token variants.
type TokenKind uint8

const (
	KindText TokenKind = iota
	KindFunction
	KindNewLine
	KindCodePoint
)

// Token is a closed sum of TextToken, FunctionToken, NewLineToken, and
// CodePointToken. Exactly one of the type-specific fields is meaningful,
// selected by Kind.
type Token struct {
	Kind TokenKind

	// Text holds the bytes of a KindText token.
	Text []byte

	// Function holds the opcode and arguments of a KindFunction token.
	Function FunctionCall

	// High and Low hold the two escape bytes of a KindCodePoint token.
	High, Low byte
}

// FunctionCall is the payload of a FunctionToken: a call into one of eight
// opcode tables, one of 32 functions within that table, with up to 14
// signed 16-bit arguments (EncodeLine rejects more).
type FunctionCall struct {
	TableIndex    uint8
	FunctionIndex uint8
	Args          []int16
}

// TextToken builds a Token carrying a run of raw character bytes.
func TextToken(b []byte) Token { return Token{Kind: KindText, Text: b} }

// FunctionToken builds a Token carrying an opcode call.
func FunctionToken(tableIndex, functionIndex uint8, args []int16) Token {
	return Token{
		Kind: KindFunction,
		Function: FunctionCall{
			TableIndex:    tableIndex,
			FunctionIndex: functionIndex,
			Args:          args,
		},
	}
}

// NewLineTok builds a within-line break token.
func NewLineTok() Token { return Token{Kind: KindNewLine} }

// CodePointTok builds a two-byte explicit character escape token.
func CodePointTok(high, low byte) Token {
	return Token{Kind: KindCodePoint, High: high, Low: low}
}

// Equal reports whether two Lines carry the same token sequence.
func (l Line) Equal(other Line) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two Tokens are identical.
func (t Token) Equal(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindText:
		return string(t.Text) == string(other.Text)
	case KindFunction:
		if t.Function.TableIndex != other.Function.TableIndex ||
			t.Function.FunctionIndex != other.Function.FunctionIndex ||
			len(t.Function.Args) != len(other.Function.Args) {
			return false
		}
		for i := range t.Function.Args {
			if t.Function.Args[i] != other.Function.Args[i] {
				return false
			}
		}
		return true
	case KindNewLine:
		return true
	case KindCodePoint:
		return t.High == other.High && t.Low == other.Low
	default:
		return false
	}
}
