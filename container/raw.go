package container

// RawWindowHeader is one 8-byte entry in the window-header array.
type RawWindowHeader struct {
	WindowType   int32 // 0 = dialogue, 1 = selection
	WindowOffset int32 // relative to base + HeaderSize; 0 means skip
}

// RawDialogueWindow is the on-disk layout of a dialogue window.
type RawDialogueWindow struct {
	Identifier       [24]byte
	LineCount        int16
	SpeakerID        uint16
	LineStartOffsets []int32
	TextBuffer       []byte
}

// RawSelectionWindow is the on-disk layout of a selection window.
type RawSelectionWindow struct {
	Identifier         [24]byte
	Field18            int16
	OptionCount        int16
	Field1C            int16
	Field1E            int16
	OptionStartOffsets []int32
	TextBuffer         []byte
}

// RawWindow is either a *RawDialogueWindow or a *RawSelectionWindow.
type RawWindow interface {
	isRawWindow()
}

func (*RawDialogueWindow) isRawWindow()  {}
func (*RawSelectionWindow) isRawWindow() {}

// RawSpeakerTable is the on-disk speaker table: a header followed by an
// array of absolute name offsets and the NUL-terminated name bytes they
// point at.
type RawSpeakerTable struct {
	NameArrayOffset int32 // from base + HeaderSize
	SpeakerCount    int32
	Field08         int32
	Field0C         int32
	NameOffsets     []int32 // from base + HeaderSize, one per speaker
	Names           [][]byte
}

// RawScript is the fully parsed, un-lifted container: everything
// BinaryReader produces and BinaryWriter consumes.
type RawScript struct {
	Header          Header
	WindowHeaders   []RawWindowHeader
	Windows         []RawWindow // parallel to WindowHeaders; nil entries for skipped (offset==0) windows
	SpeakerTable    RawSpeakerTable
	RelocationTable []byte // opaque on read, regenerated on write
}
