package wire

import "encoding/binary"

// DecodeFixed32 reads a little-endian 4-byte value. Status is StatusNeedMore
// when fewer than 4 bytes are available; it never reports StatusInvalid.
func DecodeFixed32(data []byte) (value uint32, status Status) {
	if len(data) < 4 {
		return 0, StatusNeedMore
	}
	return binary.LittleEndian.Uint32(data), StatusOK
}

// DecodeFixed64 reads a little-endian 8-byte value. Status is StatusNeedMore
// when fewer than 8 bytes are available; it never reports StatusInvalid.
func DecodeFixed64(data []byte) (value uint64, status Status) {
	if len(data) < 8 {
		return 0, StatusNeedMore
	}
	return binary.LittleEndian.Uint64(data), StatusOK
}
