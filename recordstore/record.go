package recordstore

import (
	"github.com/embedstore/recordstore/storagearea"
)

// Record is an immutable handle to a record's location: (store
// reference, sector, offset, payload size). Per design note 8, it holds
// no backpointer ownership, only the location triple plus the core it
// was produced against.
type Record struct {
	c             *core
	sector        uint32
	payloadOffset int64 // offset of the payload's first byte within the sector
	size          int
	wrap          uint8 // wrap counter recorded in the frame header at discovery time
}

// Valid reports whether the record's frame still reads back as the same
// live frame it was discovered as: same magic, wrap counter and declared
// size. A record becomes invalid once the write frontier wraps back
// around and overwrites its sector, or once compaction reclaims it.
// update() never invalidates a record this way: it only ever touches the
// CrcSkip-excluded prefix of the payload.
func (r Record) Valid() bool {
	if r.c == nil {
		return false
	}
	hdr, ok, _, err := r.c.frameAt(r.sector, r.payloadOffset-headerLen, r.wrap, true)
	if err != nil || !ok {
		return false
	}
	return int(hdr.size) == r.size
}

// Size returns the record's payload length P.
func (r Record) Size() int { return r.size }

// Sector returns the sector index the record's frame was read from.
func (r Record) Sector() uint32 { return r.sector }

// Offset returns the byte offset of the record's payload within its
// sector.
func (r Record) Offset() int64 { return r.payloadOffset }

// Read copies bytes from the record's payload at offset into p, failing
// if offset+len(p) exceeds the payload size.
func (r Record) Read(offset int, p []byte) error {
	if r.c == nil {
		return ErrNotMounted
	}
	if offset < 0 || offset+len(p) > r.size {
		return ErrOutOfRange
	}
	if len(p) == 0 {
		return nil
	}
	base := r.c.sectorOffset(r.sector) + r.payloadOffset + int64(offset)
	if err := storagearea.Read(r.c.cfg.Area, base, p); err != nil {
		return wrapMediumErr(err)
	}
	return nil
}

// ReadAll reads the entire payload.
func (r Record) ReadAll() ([]byte, error) {
	buf := make([]byte, r.size)
	if err := r.Read(0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Update performs a read-modify-write of the first len(data) bytes of
// the payload, permitted only when len(data) <= the store's configured
// CrcSkip and the area supports FullOverwrite or LimitedOverwrite. The
// write happens at write-block granularity: bytes of the touched blocks
// outside [0, len(data)) are preserved by reading them back first. The
// CRC stays valid because the modified range never extends past
// CrcSkip, which the CRC already excludes (spec section 4.2.9,
// property P9).
func (r Record) Update(data []byte) error {
	if r.c == nil {
		return ErrNotMounted
	}
	if uint32(len(data)) > r.c.cfg.CrcSkip {
		return ErrInvalidArgument
	}
	desc := r.c.desc
	if !desc.Props.Has(storagearea.FullOverwrite) && !desc.Props.Has(storagearea.LimitedOverwrite) {
		return ErrNotSupported
	}
	if len(data) == 0 {
		return nil
	}

	w := int64(desc.WriteBlockSize)
	recordStart := r.c.sectorOffset(r.sector) + r.payloadOffset
	blockStart := recordStart &^ (w - 1)
	blockEnd := alignUp64(recordStart+int64(len(data)), w)

	buf := make([]byte, blockEnd-blockStart)
	if err := storagearea.Read(r.c.cfg.Area, blockStart, buf); err != nil {
		return wrapMediumErr(err)
	}
	copy(buf[recordStart-blockStart:], data)
	if err := storagearea.Write(r.c.cfg.Area, blockStart, buf); err != nil {
		return wrapMediumErr(err)
	}
	return nil
}
