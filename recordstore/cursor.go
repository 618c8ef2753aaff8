package recordstore

// Cursor walks records across sectors in the order they were appended,
// starting just past the reclamation window (or just past the write
// sector in modes without one) and ending at the write frontier. Cursor
// reads do not take the store's semaphore: concurrent appends are
// tolerated by wrap-counter comparison (frameAt's checkWrap), so a
// record from a stale generation is simply invisible rather than
// corrupting the walk.
type Cursor struct {
	c           *core
	initialized bool
	sector      uint32
	offset      int64
}

// NewCursor returns a cursor over c's records, positioned before the
// first one. The zero Cursor is not usable; always obtain one from a
// store's NewCursor method.
func newCursor(c *core) *Cursor {
	return &Cursor{c: c}
}

func (cur *Cursor) init() {
	c := cur.c
	spare := uint32(0)
	if c.mode == modePCB {
		spare = c.cfg.SpareSectors
	}
	cur.sector = (c.s + spare + 1) % c.cfg.SectorCount
	cur.offset = int64(c.cfg.cookieSpace())
	cur.initialized = true
}

// Next returns the next live record, or ErrNotFound once the cursor has
// reached the write frontier with nothing left to return.
func (cur *Cursor) Next() (Record, error) {
	c := cur.c
	if !c.mounted {
		return Record{}, ErrNotMounted
	}
	if !cur.initialized {
		cur.init()
	}

	for {
		limit := int64(c.cfg.SectorSize)
		atFrontier := cur.sector == c.s
		if atFrontier {
			limit = c.l
		}

		expectedWrap := c.expectedWrapForSector(cur.sector)
		payloadOffset, size, next, found, err := c.scanOneFrom(cur.sector, cur.offset, limit, expectedWrap)
		if err != nil {
			return Record{}, err
		}
		if found {
			cur.offset = next
			return Record{
				c:             c,
				sector:        cur.sector,
				payloadOffset: payloadOffset,
				size:          size,
				wrap:          expectedWrap,
			}, nil
		}

		if atFrontier {
			return Record{}, ErrNotFound
		}
		cur.sector = (cur.sector + 1) % c.cfg.SectorCount
		cur.offset = int64(c.cfg.cookieSpace())
	}
}
