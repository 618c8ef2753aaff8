package recordstore

import (
	"github.com/embedstore/recordstore/internal/checksum"
	"github.com/embedstore/recordstore/internal/encoding"
)

// frameMagic is the fixed first byte of every record frame.
const frameMagic = 0xF0

// headerLen is the size in bytes of the frame header (magic, wrapcnt,
// size-lo, size-hi), read as a unit by the in-sector scan.
const headerLen = 4

// crcLen is the size in bytes of the trailing CRC-32 field.
const crcLen = 4

// frameOverhead is headerLen+crcLen, the non-payload bytes of a frame.
// Spec section 3's "Total frame length = align_up(8 + P, W)" reads this
// 8 as headerLen+crcLen; section 4.2.4 calls the header itself "8 bytes"
// in passing, which would double-count the CRC. headerLen=4 matches
// section 4.2.3's explicit "read 4 bytes (magic, wrapcnt, size-lo,
// size-hi)", so that reading is treated as authoritative here.
const frameOverhead = headerLen + crcLen

// fillByte pads frames out to a write-block multiple.
const fillByte = 0xFF

// frameHeader is the decoded fixed portion of a frame.
type frameHeader struct {
	magic   byte
	wrapcnt uint8
	size    uint16
}

func decodeFrameHeader(b []byte) frameHeader {
	return frameHeader{
		magic:   b[0],
		wrapcnt: b[1],
		size:    encoding.DecodeFixed16(b[2:4]),
	}
}

func encodeFrameHeader(dst []byte, wrapcnt uint8, size uint16) {
	dst[0] = frameMagic
	dst[1] = wrapcnt
	encoding.EncodeFixed16(dst[2:4], size)
}

// alignedFrameLen returns align_up(frameOverhead+P, w).
func alignedFrameLen(payloadLen int, w uint32) int64 {
	total := int64(frameOverhead) + int64(payloadLen)
	return alignUp64(total, int64(w))
}

func alignUp64(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// crcOver computes the CRC-32/IEEE checksum of payload[skip:], matching
// spec section 3's "crc32 (4 byte little-endian) = CRC-32/IEEE over
// payload[δ..P]".
func crcOver(payload []byte, skip uint32) uint32 {
	if int(skip) >= len(payload) {
		return checksum.IEEE(nil)
	}
	return checksum.IEEE(payload[skip:])
}
