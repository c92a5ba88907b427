package wire

import "fmt"

// Kind is the wire type carried in the low 3 bits of a field tag header.
type Kind int

const (
	// Varint fields carry an arbitrary-precision base-128 integer.
	Varint Kind = iota
	// Fixed64 fields carry 8 raw little-endian bytes.
	Fixed64
	// LengthDelimited fields carry a varint length followed by that many
	// raw bytes.
	LengthDelimited
	// Fixed32 fields carry 4 raw little-endian bytes.
	Fixed32
)

// UnsupportedWireTypeError reports wire type 3, 4, 6 or 7: the deprecated
// group encoding (3, 4) or a code the format never assigned (6, 7).
type UnsupportedWireTypeError struct {
	WireType uint32
}

func (e *UnsupportedWireTypeError) Error() string {
	return fmt.Sprintf("unsupported wire type %d", e.WireType)
}

// ErrZeroTag reports a field tag header whose tag id decoded to zero. Tag
// zero is never assigned in a well-formed protobuf message.
var ErrZeroTag = fmt.Errorf("field tag is zero")

// parseTagHeader splits a decoded tag varint into its field id and wire
// kind, enforcing spec.md's rule that tag 0 and wire types 3/4/6/7 are
// always invalid regardless of what follows them.
func parseTagHeader(raw uint32) (tag uint32, kind Kind, err error) {
	tag = raw >> 3
	if tag == 0 {
		return 0, 0, ErrZeroTag
	}
	switch raw & 0x7 {
	case 0:
		kind = Varint
	case 1:
		kind = Fixed64
	case 2:
		kind = LengthDelimited
	case 5:
		kind = Fixed32
	default:
		return 0, 0, &UnsupportedWireTypeError{WireType: raw & 0x7}
	}
	return tag, kind, nil
}

// FieldValue is the decoded inline value of a non-length-delimited field, or
// the declared length of a length-delimited field's payload.
type FieldValue struct {
	Varint  uint64
	Fixed32 uint32
	Fixed64 uint64
	// DataLen is only meaningful when Kind == LengthDelimited: the number
	// of payload bytes immediately following the header, not yet
	// consumed by Reader.Next.
	DataLen uint32
}

// Field is a fully decoded field header: its tag, wire kind and inline
// value or length, plus how many header bytes were consumed to produce it.
type Field struct {
	Tag      uint32
	Kind     Kind
	Value    FieldValue
	Consumed int
}

// Reader decodes one field header (and, for non-length-delimited kinds, its
// inline value) at a time from the front of a byte window. It is stateless
// beyond the input it is given; callers may create one per call or reuse a
// single instance.
type Reader struct{}

// Next decodes the field at the front of data. It returns (Field{}, min,
// StatusNeedMore, nil) when the window ends before a complete header (and inline
// value, if any) has been read; the caller must supply at least
// min additional bytes and retry with the header still at offset 0 of the
// new window. It returns a non-nil error for malformed input: a zero tag,
// an unsupported wire type, or an over-long/overflowing varint.
//
// For LengthDelimited fields, Next only decodes the length prefix. The
// payload bytes themselves remain in the window for the caller (pbstream's
// Scanner) to skip, buffer or recurse into.
func (Reader) Next(data []byte) (field Field, min int, status Status, err error) {
	if len(data) == 0 {
		return Field{}, 1, StatusNeedMore, nil
	}

	rawTag, tagLen, tagStatus := DecodeVarint32(data)
	switch tagStatus {
	case StatusNeedMore:
		return Field{}, 1, StatusNeedMore, nil
	case StatusInvalid:
		return Field{}, 0, StatusInvalid, fmt.Errorf("invalid varint in field tag")
	}

	tag, kind, err := parseTagHeader(rawTag)
	if err != nil {
		return Field{}, 0, StatusInvalid, err
	}

	rest := data[tagLen:]

	switch kind {
	case Varint:
		v, n, s := DecodeVarint(rest)
		switch s {
		case StatusNeedMore:
			return Field{}, 1, StatusNeedMore, nil
		case StatusInvalid:
			return Field{}, 0, StatusInvalid, fmt.Errorf("invalid varint in field value")
		}
		return Field{Tag: tag, Kind: kind, Value: FieldValue{Varint: v}, Consumed: tagLen + n}, 0, StatusOK, nil

	case Fixed32:
		v, s := DecodeFixed32(rest)
		if s == StatusNeedMore {
			return Field{}, 4 - len(rest), StatusNeedMore, nil
		}
		return Field{Tag: tag, Kind: kind, Value: FieldValue{Fixed32: v}, Consumed: tagLen + 4}, 0, StatusOK, nil

	case Fixed64:
		v, s := DecodeFixed64(rest)
		if s == StatusNeedMore {
			return Field{}, 8 - len(rest), StatusNeedMore, nil
		}
		return Field{Tag: tag, Kind: kind, Value: FieldValue{Fixed64: v}, Consumed: tagLen + 8}, 0, StatusOK, nil

	case LengthDelimited:
		length, n, s := DecodeVarint32(rest)
		switch s {
		case StatusNeedMore:
			return Field{}, 1, StatusNeedMore, nil
		case StatusInvalid:
			return Field{}, 0, StatusInvalid, fmt.Errorf("invalid varint in length prefix")
		}
		return Field{Tag: tag, Kind: kind, Value: FieldValue{DataLen: length}, Consumed: tagLen + n}, 0, StatusOK, nil
	}

	// unreachable: parseTagHeader only returns the four Kind values above
	panic("wire: unreachable wire kind")
}
