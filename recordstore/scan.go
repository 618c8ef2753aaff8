package recordstore

import (
	"github.com/embedstore/recordstore/internal/encoding"
	"github.com/embedstore/recordstore/storagearea"
)

// frameAt reads and validates the candidate frame at (sector, offset)
// per spec section 4.2.3: magic must match, the declared payload size
// must leave the frame fitting within the sector, and — when checkWrap is
// set — the wrap counter must equal expectedWrap. A structurally valid
// header with a CRC mismatch is still reported invalid (ok=false): CRC
// failures are corruption, not absence, but both are "no usable frame
// here" to a scan.
func (c *core) frameAt(sector uint32, offset int64, expectedWrap uint8, checkWrap bool) (hdr frameHeader, ok bool, frameLen int64, err error) {
	sectorSize := int64(c.cfg.SectorSize)
	if offset < 0 || offset+headerLen > sectorSize {
		return frameHeader{}, false, 0, nil
	}

	base := c.sectorOffset(sector)
	hbuf := make([]byte, headerLen)
	if err := storagearea.Read(c.cfg.Area, base+offset, hbuf); err != nil {
		return frameHeader{}, false, 0, wrapMediumErr(err)
	}
	hdr = decodeFrameHeader(hbuf)
	if hdr.magic != frameMagic || hdr.size == 0 {
		return frameHeader{}, false, 0, nil
	}

	flen := alignedFrameLen(int(hdr.size), c.desc.WriteBlockSize)
	if offset+flen > sectorSize {
		return frameHeader{}, false, 0, nil
	}
	if checkWrap && hdr.wrapcnt != expectedWrap {
		return frameHeader{}, false, 0, nil
	}

	payload := make([]byte, hdr.size)
	if err := storagearea.Read(c.cfg.Area, base+offset+headerLen, payload); err != nil {
		return frameHeader{}, false, 0, wrapMediumErr(err)
	}
	crcBuf := make([]byte, crcLen)
	if err := storagearea.Read(c.cfg.Area, base+offset+headerLen+int64(hdr.size), crcBuf); err != nil {
		return frameHeader{}, false, 0, wrapMediumErr(err)
	}
	stored := encoding.DecodeFixed32(crcBuf)
	if stored != crcOver(payload, c.cfg.CrcSkip) {
		return frameHeader{}, false, 0, nil
	}

	return hdr, true, flen, nil
}

// expectedWrapForSector returns the wrap counter a valid frame in sector
// should carry: sectors at or before the write frontier s have already
// been (re)written during the current lap and so carry the current wrap
// counter omega; sectors after s have not yet been reached this lap and
// still hold the previous lap's records, wrap counter omega-1 (mod 256).
// This is how section 4.2.3's "+1 adjustment for sectors logically
// before s" is realised here: the adjustment is folded into this single
// comparison point used by both the cursor and compaction.
func (c *core) expectedWrapForSector(sector uint32) uint8 {
	if sector <= c.s {
		return c.w
	}
	return c.w - 1
}

// scanOneFrom finds the first valid frame at or after offset within
// [offset, limit) in sector, stepping by one write block past any
// invalid position (the same torn-write tolerance in-sector scan uses
// elsewhere). It returns the frame's payload offset, its declared size,
// the offset just past the frame, and whether one was found.
func (c *core) scanOneFrom(sector uint32, offset, limit int64, expectedWrap uint8) (payloadOffset int64, size int, next int64, found bool, err error) {
	w := int64(c.desc.WriteBlockSize)
	for offset < limit {
		hdr, ok, flen, ferr := c.frameAt(sector, offset, expectedWrap, true)
		if ferr != nil {
			return 0, 0, offset, false, ferr
		}
		if !ok {
			offset += w
			continue
		}
		return offset + headerLen, int(hdr.size), offset + flen, true, nil
	}
	return 0, 0, offset, false, nil
}

// peekFirstFrame checks, without recovery step-over, whether a
// structurally valid frame begins right after the cookie in sector. It
// does not filter by wrap counter: spec section 4.2.2 step 2 reads
// whatever wrapcnt is there to discover the active generation.
func (c *core) peekFirstFrame(sector uint32) (frameHeader, bool, error) {
	hdr, ok, _, err := c.frameAt(sector, int64(c.cfg.cookieSpace()), 0, false)
	return hdr, ok, err
}

// scanRecords walks sector starting just after the cookie, validating
// each frame against expectedWrap. With recovery enabled, a position
// that fails validation is skipped by exactly one write block and the
// scan resumes (spec section 4.2.3); without it, the scan stops there.
// visit, if non-nil, is called with each valid frame's payload offset
// (relative to the sector start) and payload size; returning false from
// visit stops the walk early.
//
// end is the offset just past the last valid frame found, not the
// position the scan eventually gives up at: with recovery enabled, the
// scan keeps stepping one write block at a time through the sector's
// trailing erased region looking for a frame that isn't there, and that
// step-over must never be mistaken for "the log's logical head" (spec
// section 4.2.2 step 4) — mount uses end as the active frontier sector's
// write offset, and reporting the fully-stepped-over position there
// would make the first post-mount append see the sector as full.
func (c *core) scanRecords(sector uint32, expectedWrap uint8, recovery bool, visit func(payloadOffset int64, size int) bool) (end int64, lastSize int, count int, err error) {
	offset := int64(c.cfg.cookieSpace())
	sectorSize := int64(c.cfg.SectorSize)
	w := int64(c.desc.WriteBlockSize)
	end = offset

	for offset < sectorSize {
		hdr, ok, flen, ferr := c.frameAt(sector, offset, expectedWrap, true)
		if ferr != nil {
			return end, lastSize, count, ferr
		}
		if !ok {
			if recovery && offset+w <= sectorSize {
				offset += w
				continue
			}
			break
		}
		count++
		lastSize = int(hdr.size)
		stop := visit != nil && !visit(offset+headerLen, int(hdr.size))
		offset += flen
		end = offset
		if stop {
			break
		}
	}
	return end, lastSize, count, nil
}
