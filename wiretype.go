package pbstream

import "github.com/aristanetworks/pbstream/internal/wire"

// WireType identifies the payload shape of a field, as carried in the low 3
// bits of its tag header. Wire types 3 and 4 (the deprecated group
// encoding) and 6, 7 (never assigned) are rejected while decoding a header
// and therefore never appear as a WireType value here.
type WireType int

const (
	// VarintType fields carry an arbitrary-precision base-128 integer.
	VarintType WireType = iota
	// Fixed64Type fields carry 8 raw little-endian bytes.
	Fixed64Type
	// LengthDelimitedType fields carry a varint length followed by that
	// many raw bytes.
	LengthDelimitedType
	// Fixed32Type fields carry 4 raw little-endian bytes.
	Fixed32Type
)

func (w WireType) String() string {
	switch w {
	case VarintType:
		return "varint"
	case Fixed64Type:
		return "fixed64"
	case LengthDelimitedType:
		return "length-delimited"
	case Fixed32Type:
		return "fixed32"
	default:
		return "unknown"
	}
}

func fromWireKind(k wire.Kind) WireType {
	switch k {
	case wire.Varint:
		return VarintType
	case wire.Fixed64:
		return Fixed64Type
	case wire.LengthDelimited:
		return LengthDelimitedType
	case wire.Fixed32:
		return Fixed32Type
	default:
		panic("pbstream: unreachable wire kind")
	}
}

// FieldID identifies a field within the message scope it was read in: its
// tag number plus its wire type. Both are decoded atomically from a single
// varint header.
type FieldID struct {
	Tag  uint32
	Kind WireType
}

// ValueKind discriminates which field of Value is meaningful.
type ValueKind int

const (
	// MarkerValue carries no data; it represents a state change the
	// Matcher chose to surface (entering or leaving a scope) rather than
	// an actual field value.
	MarkerValue ValueKind = iota
	// VarintValue holds a decoded base-128 integer.
	VarintValue
	// Fixed32Value holds a raw little-endian 32-bit value.
	Fixed32Value
	// Fixed64Value holds a raw little-endian 64-bit value.
	Fixed64Value
	// SliceValue holds the absolute offset and length of a
	// length-delimited payload buffered by the scanner.
	SliceValue
)

// Value is a matched field's payload. Exactly one field is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind

	Varint  uint64
	Fixed32 uint32
	Fixed64 uint64

	// SliceOffset and SliceLen locate a LengthDelimited payload in the
	// adapter's buffer, in absolute input coordinates. Only an Emit'd
	// field carries them; a Skip'd field produces no Value at all.
	SliceOffset uint64
	SliceLen    uint64
}

// SlicedValue is Value with a SliceValue resolved to an actual byte slice
// borrowed from the adapter's buffer. The borrow is only valid until the
// next Adapter call; callers that need to retain it must copy.
type SlicedValue struct {
	Value
	Bytes []byte
}
