package pbstream

import "fmt"

// UnsupportedWireTypeError reports a field header naming wire type 3, 4, 6
// or 7. 3 and 4 are the deprecated group encoding; 6 and 7 were never
// assigned.
type UnsupportedWireTypeError struct {
	WireType uint32
}

func (e *UnsupportedWireTypeError) Error() string {
	return fmt.Sprintf("pbstream: unsupported wire type %d", e.WireType)
}

// InvalidVarintError reports a base-128 varint that ran past the 10-byte
// envelope a 64-bit value can occupy, or whose 10th byte carried more than
// one data bit. Tag headers and length prefixes are held to the 32-bit
// limit instead: at most 5 bytes, with at most 4 data bits in the 5th.
type InvalidVarintError struct {
	Offset uint64
}

func (e *InvalidVarintError) Error() string {
	return fmt.Sprintf("pbstream: invalid varint at offset %d", e.Offset)
}

// ErrZeroTag reports a field tag that decoded to field number 0, which is
// never assigned in a well-formed message.
var ErrZeroTag = fmt.Errorf("pbstream: field tag is zero")

// FramingError reports a field whose footprint (its header plus, for a
// length-delimited field, its declared payload) runs past the end of the
// scope that contains it.
type FramingError struct {
	// DeclaredLen is the payload length a length-delimited field's header
	// claimed; it is 0 for the other wire types.
	DeclaredLen uint64
	// RemainingInFrame is how many bytes were left in the enclosing scope
	// after the field's header (0 if the header itself did not fit).
	RemainingInFrame uint64
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("pbstream: field declares length %d but only %d bytes remain in its enclosing scope",
		e.DeclaredLen, e.RemainingInFrame)
}

// NestingTooDeepError reports a chain of Enter decisions deeper than the
// Scanner's configured MaxDepth. It guards against adversarial input
// driving unbounded frame-stack growth.
type NestingTooDeepError struct {
	MaxDepth int
}

func (e *NestingTooDeepError) Error() string {
	return fmt.Sprintf("pbstream: nesting exceeds configured max depth %d", e.MaxDepth)
}

// RecordTooLargeError reports a Gatherer-assembled record whose span from
// its opening to closing tag exceeded Options.MaxRecordSize.
type RecordTooLargeError struct {
	Size  uint64
	Limit uint64
}

func (e *RecordTooLargeError) Error() string {
	return fmt.Sprintf("pbstream: record of %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// ErrTooManyGatheredEvents reports a Gatherer that accumulated more Matched
// events for a single record than Options.MaxGatheredEvents permits,
// without the record ever closing.
var ErrTooManyGatheredEvents = fmt.Errorf("pbstream: record gathered more events than the configured limit")

// ErrUnexpectedEOF reports the byte source reaching end of file while the
// Scanner was mid-field: a complete header or value was promised but never
// arrived.
var ErrUnexpectedEOF = fmt.Errorf("pbstream: unexpected end of file mid-field")
