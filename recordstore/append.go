package recordstore

import (
	"errors"

	"github.com/embedstore/recordstore/internal/checksum"
	"github.com/embedstore/recordstore/internal/encoding"
	"github.com/embedstore/recordstore/internal/logging"
	"github.com/embedstore/recordstore/internal/testutil"
	"github.com/embedstore/recordstore/storagearea"
)

// doAppend implements spec section 4.2.4. iov's total length P must
// satisfy 0 < P < sectorSize-10.
func (c *core) doAppend(iov storagearea.IOVec) error {
	p := iov.Len()
	if p <= 0 || p >= int64(c.cfg.SectorSize)-10 {
		return ErrInvalidArgument
	}

	for {
		need := alignedFrameLen(int(p), c.desc.WriteBlockSize)
		avail := int64(c.cfg.SectorSize) - c.l
		if avail < need {
			return ErrNoSpace
		}

		err := c.writeFrame(c.s, c.l, p, iov)
		if err == nil {
			c.log.Debugf("%swrote frame sector=%d offset=%d size=%d", logging.NSAppend, c.s, c.l, p)
			c.l += need
			return nil
		}
		if !errors.Is(err, storagearea.ErrMediumError) {
			return err
		}

		// A medium write failure leaves the write block it targeted in an
		// unknown state; per spec section 4.2.4/7, step past it by one
		// write block and retry. The skipped bytes read back as an
		// invalid frame on the next mount and are stepped over by
		// recovery.
		c.log.Warnf("%swrite failed at sector=%d offset=%d, retrying at next write block: %v", logging.NSAppend, c.s, c.l, err)
		c.l += int64(c.desc.WriteBlockSize)
	}
}

// writeFrame emits the header, payload and CRC+padding regions of one
// frame as a single writev call, per spec section 4.2.4.
func (c *core) writeFrame(sector uint32, offset int64, payloadLen int64, iov storagearea.IOVec) error {
	testutil.MaybeKill(testutil.KPAppendHeader0)

	header := make([]byte, headerLen)
	encodeFrameHeader(header, c.w, uint16(payloadLen))

	testutil.MaybeKill(testutil.KPAppendPayload0)

	crc := c.accumulateCRC(iov)

	trailer := make([]byte, 0, crcLen)
	trailer = encoding.AppendFixed32(trailer, crc)

	total := alignedFrameLen(int(payloadLen), c.desc.WriteBlockSize)
	padLen := total - frameOverhead - payloadLen
	if padLen > 0 {
		pad := make([]byte, padLen)
		for i := range pad {
			pad[i] = fillByte
		}
		trailer = append(trailer, pad...)
	}

	testutil.MaybeKill(testutil.KPAppendCRC0)

	spans := make(storagearea.IOVec, 0, len(iov)+2)
	spans = append(spans, storagearea.IOSpan{Data: header})
	spans = append(spans, iov...)
	spans = append(spans, storagearea.IOSpan{Data: trailer})

	base := c.sectorOffset(sector) + offset
	if err := c.cfg.Area.WriteV(base, spans); err != nil {
		return wrapMediumErr(err)
	}
	testutil.MaybeKill(testutil.KPAppendCRC1)
	return nil
}

// accumulateCRC computes CRC-32/IEEE over the payload spans of iov,
// skipping the leading CrcSkip bytes even when that skip straddles more
// than one span.
func (c *core) accumulateCRC(iov storagearea.IOVec) uint32 {
	skip := int64(c.cfg.CrcSkip)
	var crc uint32
	for _, span := range iov {
		data := span.Data
		if skip > 0 {
			if int64(len(data)) <= skip {
				skip -= int64(len(data))
				continue
			}
			data = data[skip:]
			skip = 0
		}
		crc = checksum.IEEEUpdate(crc, data)
	}
	return crc
}

// doAdvance implements spec section 4.2.5.
func (c *core) doAdvance() error {
	desc := c.desc

	if desc.Props.Has(storagearea.FullOverwrite) && c.l < int64(c.cfg.SectorSize) {
		testutil.MaybeKill(testutil.KPAdvanceFill0)
		remaining := int64(c.cfg.SectorSize) - c.l
		fill := make([]byte, remaining)
		for i := range fill {
			fill[i] = fillByte
		}
		off := c.sectorOffset(c.s) + c.l
		if err := storagearea.Write(c.cfg.Area, off, fill); err != nil {
			return wrapMediumErr(err)
		}
	}

	c.s = (c.s + 1) % c.cfg.SectorCount
	if c.s == 0 {
		c.w++
	}
	c.l = 0

	if !desc.Props.Has(storagearea.FullOverwrite) && !desc.Props.Has(storagearea.AutoErase) {
		sectorStart := c.sectorOffset(c.s)
		e := int64(desc.EraseBlockSize)
		if sectorStart%e == 0 {
			blocksPerSector := int64(c.cfg.SectorSize) / e
			if blocksPerSector < 1 {
				blocksPerSector = 1
			}
			startBlock := uint32(sectorStart / e)
			testutil.MaybeKill(testutil.KPAdvanceErase0)
			if err := c.cfg.Area.Erase(startBlock, uint32(blocksPerSector)); err != nil {
				return wrapMediumErr(err)
			}
			testutil.MaybeKill(testutil.KPAdvanceErase1)
		}
	}

	if len(c.cfg.Cookie) > 0 {
		pad := c.cfg.cookieSpace()
		buf := make([]byte, pad)
		copy(buf, c.cfg.Cookie)
		for i := len(c.cfg.Cookie); i < len(buf); i++ {
			buf[i] = fillByte
		}
		testutil.MaybeKill(testutil.KPAdvanceCookie0)
		if err := storagearea.Write(c.cfg.Area, c.sectorOffset(c.s), buf); err != nil {
			return wrapMediumErr(err)
		}
		c.l = int64(pad)
	}

	c.log.Infof("%sadvanced to sector=%d wrap=%d", logging.NSAdvance, c.s, c.w)
	return nil
}

// GetSectorCookie reads the configured cookie bytes back from the start
// of sector. It does not require the store to be mounted: the cookie is
// configuration stamped by advance, not runtime state.
func (c *core) getSectorCookie(sector uint32) ([]byte, error) {
	if sector >= c.cfg.SectorCount {
		return nil, ErrInvalidArgument
	}
	if len(c.cfg.Cookie) == 0 {
		return nil, ErrNotSupported
	}
	out := make([]byte, len(c.cfg.Cookie))
	if err := storagearea.Read(c.cfg.Area, c.sectorOffset(sector), out); err != nil {
		return nil, wrapMediumErr(err)
	}
	return out, nil
}
