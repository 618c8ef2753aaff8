package recordstore

import (
	"github.com/embedstore/recordstore/internal/logging"
	"github.com/embedstore/recordstore/internal/testutil"
	"github.com/embedstore/recordstore/storagearea"
)

// doCompact implements spec section 4.2.6 (PCB only).
func (c *core) doCompact(move MoveFunc, moved MovedFunc) error {
	if err := c.doAdvance(); err != nil {
		return err
	}
	if c.sectorOffset(c.s)%int64(c.desc.EraseBlockSize) != 0 {
		return nil
	}

	testutil.MaybeKill(testutil.KPCompactStart0)
	c.log.Infof("%sreclaiming window behind sector=%d", logging.NSCompact, c.s)

	spare := c.cfg.SpareSectors
	for k := uint32(0); k < spare; k++ {
		windowSector := (c.s + spare + k) % c.cfg.SectorCount
		if err := c.compactSector(windowSector, move, moved); err != nil {
			return err
		}
	}
	return nil
}

// compactSector walks sector's valid records and relocates every one
// move marks for retention.
func (c *core) compactSector(sector uint32, move MoveFunc, moved MovedFunc) error {
	expectedWrap := c.expectedWrapForSector(sector)
	offset := int64(c.cfg.cookieSpace())
	sectorSize := int64(c.cfg.SectorSize)
	w := int64(c.desc.WriteBlockSize)

	for offset < sectorSize {
		hdr, ok, flen, err := c.frameAt(sector, offset, expectedWrap, true)
		if err != nil {
			return err
		}
		if !ok {
			offset += w
			continue
		}

		if move != nil {
			src := Record{c: c, sector: sector, payloadOffset: offset + headerLen, size: int(hdr.size), wrap: expectedWrap}
			if move(src) {
				dst, err := c.relocateFrame(sector, offset, flen)
				if err != nil {
					return err
				}
				if moved != nil {
					moved(src, dst)
				}
			}
		}
		offset += flen
	}
	return nil
}

// relocateFrame copies the raw bytes of the frame at (srcSector,
// srcOffset) of length flen to the current write head, stamping the
// wrap counter byte with the current generation, per spec section
// 4.2.6 step 2.b. If the current sector cannot hold the frame, it
// advances to a fresh sector and retries.
func (c *core) relocateFrame(srcSector uint32, srcOffset, flen int64) (Record, error) {
	raw := make([]byte, flen)
	if err := storagearea.Read(c.cfg.Area, c.sectorOffset(srcSector)+srcOffset, raw); err != nil {
		return Record{}, wrapMediumErr(err)
	}
	for int64(c.cfg.SectorSize)-c.l < flen {
		if err := c.doAdvance(); err != nil {
			return Record{}, err
		}
	}
	raw[1] = c.w

	testutil.MaybeKill(testutil.KPCompactCopy0)
	dstSector, dstOffset := c.s, c.l
	if err := storagearea.Write(c.cfg.Area, c.sectorOffset(dstSector)+dstOffset, raw); err != nil {
		return Record{}, wrapMediumErr(err)
	}
	testutil.MaybeKill(testutil.KPCompactCopy1)
	c.l += flen

	size := int(decodeFrameHeader(raw[:headerLen]).size)
	return Record{c: c, sector: dstSector, payloadOffset: dstOffset + headerLen, size: size, wrap: c.w}, nil
}

// stepBackSector moves sector backwards by count positions in a κ-sector
// ring, decrementing w (mod 256) each time the step crosses the sector-0
// boundary going backward — the inverse of the forward wrap increment in
// doAdvance.
func stepBackSector(sector uint32, w uint8, count, k uint32) (uint32, uint8) {
	for i := uint32(0); i < count; i++ {
		if sector == 0 {
			sector = k - 1
			w--
		} else {
			sector--
		}
	}
	return sector, w
}

// recover implements spec section 4.2.7: detect and repair a compaction
// interrupted by power loss.
func (c *core) recover() error {
	testutil.MaybeKill(testutil.KPRecoveryRescan0)

	snapS, snapL, snapW := c.s, c.l, c.w

	sectorsPerEraseBlock := uint32(1)
	if int64(c.cfg.SectorSize) < int64(c.desc.EraseBlockSize) {
		sectorsPerEraseBlock = c.desc.EraseBlockSize / c.cfg.SectorSize
	}
	eraseBlockStart := snapS - (snapS % sectorsPerEraseBlock)
	steps := snapS - eraseBlockStart + 1
	rolledS, rolledW := stepBackSector(snapS, snapW, steps, c.cfg.SectorCount)

	spare := c.cfg.SpareSectors

	// M: records the reclamation window relative to the snapshot
	// frontier marks for retention.
	m := 0
	for k := uint32(0); k < spare; k++ {
		sector := (snapS + spare + k) % c.cfg.SectorCount
		expectedWrap := c.expectedWrapForSector(sector)
		_, _, _, err := c.scanRecords(sector, expectedWrap, true, func(payloadOffset int64, size int) bool {
			if c.move != nil {
				rec := Record{c: c, sector: sector, payloadOffset: payloadOffset, size: size, wrap: expectedWrap}
				if c.move(rec) {
					m++
				}
			}
			return true
		})
		if err != nil {
			return err
		}
	}

	// V: CRC-valid records already present in the destination region
	// between the rolled-back frontier and the snapshot — i.e. what a
	// partially completed relocation would have written so far.
	v := 0
	for sector := (rolledS + 1) % c.cfg.SectorCount; ; sector = (sector + 1) % c.cfg.SectorCount {
		expectedWrap := c.expectedWrapForSector(sector)
		_, _, count, err := c.scanRecords(sector, expectedWrap, true, nil)
		if err != nil {
			return err
		}
		v += count
		if sector == snapS {
			break
		}
	}

	c.log.Infof("%srecovery check M=%d V=%d", logging.NSRecovery, m, v)

	if v >= m {
		c.s, c.l, c.w = snapS, snapL, snapW
		return nil
	}

	c.log.Warnf("%sinterrupted compaction detected, re-running from rolled-back frontier sector=%d", logging.NSRecovery, rolledS)
	c.s, c.l, c.w = rolledS, int64(c.cfg.SectorSize), rolledW
	return c.doCompact(c.move, c.moved)
}
