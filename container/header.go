package container

import (
	"encoding/binary"

	"github.com/ashfall/msgscript/msgscript"
)

// HeaderSize is the fixed size, in bytes, of a MessageScript container
// header.
const HeaderSize = 32

var (
	magicMSG1 = [4]byte{'M', 'S', 'G', '1'}
	magicMSG0 = [4]byte{'M', 'S', 'G', '0'}
	magic1GSM = [4]byte{'1', 'G', 'S', 'M'}
)

// Header is the fixed 32-byte container header.
type Header struct {
	FileType               uint8
	IsCompressed            bool
	UserID                  int16
	FileSize                int32
	Magic                   [4]byte
	Field0C                 int32
	RelocationTableOffset   int32
	RelocationTableSize     int32
	WindowCount             int32
	IsRelocated             bool
	Field1E                 int16

	Order binary.ByteOrder
}

// parseHeader reads and validates the fixed header at the start of buf,
// returning the endianness it determined from the magic.
func parseHeader(buf []byte, hint EndianHint) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &msgscript.StreamTooSmallError{Available: len(buf), Need: HeaderSize}
	}

	var magic [4]byte
	copy(magic[:], buf[0x08:0x0C])

	order, forward, err := resolveEndian(magic, hint)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		FileType:     buf[0x00],
		IsCompressed: buf[0x01] != 0,
		UserID:       int16(order.Uint16(buf[0x02:0x04])),
		FileSize:     int32(order.Uint32(buf[0x04:0x08])),
		Magic:        magic,
		Field0C:      int32(order.Uint32(buf[0x0C:0x10])),
		RelocationTableOffset: int32(order.Uint32(buf[0x10:0x14])),
		RelocationTableSize:   int32(order.Uint32(buf[0x14:0x18])),
		WindowCount:           int32(order.Uint32(buf[0x18:0x1C])),
		IsRelocated:           order.Uint16(buf[0x1C:0x1E]) != 0,
		Field1E:               int16(order.Uint16(buf[0x1E:0x20])),
		Order:                 order,
	}
	_ = forward
	return h, nil
}

// resolveEndian validates magic against the three recognized forms and
// derives the byte order forward decoding would use, then lets an
// explicit hint override that byte order. The hint never bypasses magic
// recognition: an unrecognized magic is InvalidHeaderMagicError regardless
// of hint.
func resolveEndian(magic [4]byte, hint EndianHint) (binary.ByteOrder, bool, error) {
	var forwardOrder binary.ByteOrder
	var forward bool
	switch magic {
	case magicMSG1, magicMSG0:
		forwardOrder, forward = binary.LittleEndian, true
	case magic1GSM:
		forwardOrder, forward = binary.BigEndian, false
	default:
		return nil, false, &msgscript.InvalidHeaderMagicError{Magic: magic}
	}

	switch hint {
	case EndianLittle:
		return binary.LittleEndian, true, nil
	case EndianBig:
		return binary.BigEndian, false, nil
	default:
		return forwardOrder, forward, nil
	}
}

// writeHeader serializes h into a fresh HeaderSize-byte slice.
func writeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	order := h.Order
	if order == nil {
		order = binary.LittleEndian
	}

	buf[0x00] = h.FileType
	if h.IsCompressed {
		buf[0x01] = 1
	}
	order.PutUint16(buf[0x02:0x04], uint16(h.UserID))
	order.PutUint32(buf[0x04:0x08], uint32(h.FileSize))
	copy(buf[0x08:0x0C], h.Magic[:])
	order.PutUint32(buf[0x0C:0x10], uint32(h.Field0C))
	order.PutUint32(buf[0x10:0x14], uint32(h.RelocationTableOffset))
	order.PutUint32(buf[0x14:0x18], uint32(h.RelocationTableSize))
	order.PutUint32(buf[0x18:0x1C], uint32(h.WindowCount))
	relocated := uint16(0)
	if h.IsRelocated {
		relocated = 1
	}
	order.PutUint16(buf[0x1C:0x1E], relocated)
	order.PutUint16(buf[0x1E:0x20], uint16(h.Field1E))
	return buf
}

// magicFor returns the on-disk magic for the given msgscript.FormatVersion.
func magicFor(format msgscript.FormatVersion) [4]byte {
	if format == msgscript.FormatV1BigEndian {
		return magic1GSM
	}
	return magicMSG1
}

// byteOrderFor returns the binary.ByteOrder for the given format version.
func byteOrderFor(format msgscript.FormatVersion) binary.ByteOrder {
	if format == msgscript.FormatV1BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
