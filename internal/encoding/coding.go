// Package encoding provides the fixed-width little-endian encoding
// primitives the record frame header and trailer (recordstore/frame.go)
// are built from.
//
// Reference: RocksDB v10.7.5 util/coding.h/.cc (fixed-width section only;
// the varint/zigzag/length-prefixed-slice machinery that package also
// provides has no counterpart in the record frame format and was not
// carried over).
package encoding

import "encoding/binary"

// EncodeFixed16 encodes a uint16 into a 2-byte little-endian buffer.
// REQUIRES: dst has at least 2 bytes.
func EncodeFixed16(dst []byte, value uint16) {
	binary.LittleEndian.PutUint16(dst, value)
}

// DecodeFixed16 decodes a uint16 from a 2-byte little-endian buffer.
// REQUIRES: src has at least 2 bytes.
func DecodeFixed16(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src)
}

// DecodeFixed32 decodes a uint32 from a 4-byte little-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// AppendFixed32 appends a little-endian uint32 to dst and returns the
// extended slice.
func AppendFixed32(dst []byte, value uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, value)
}
