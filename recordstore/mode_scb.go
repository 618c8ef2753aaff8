package recordstore

import "github.com/embedstore/recordstore/storagearea"

// SCB is the Simple Circular Buffer variant (design note 9): records can
// be appended and sectors advanced, but nothing is ever relocated —
// once the write frontier wraps back onto a sector, that sector's
// records are simply gone.
type SCB struct{ c *core }

// NewSCB constructs a Simple Circular Buffer store over cfg.
func NewSCB(cfg Config) (*SCB, error) {
	if cfg.Area == nil {
		return nil, ErrInvalidConfig
	}
	return &SCB{c: newCore(cfg, modeSCB)}, nil
}

// Mount implements spec section 4.2.2.
func (s *SCB) Mount() error { return s.c.mount() }

// Unmount implements spec section 4.2.2.
func (s *SCB) Unmount() error { return s.c.unmount() }

// Wipe erases the entire area. Permitted only while unmounted.
func (s *SCB) Wipe() error { return s.c.wipe() }

// Writev appends a record assembled from iov's spans, per spec section
// 4.2.4.
func (s *SCB) Writev(iov storagearea.IOVec) error { return s.c.writev(iov) }

// Write appends a single contiguous record.
func (s *SCB) Write(data []byte) error {
	return s.c.writev(storagearea.SingleSpan(data))
}

// Advance closes the current sector and moves the write frontier to the
// next one, per spec section 4.2.5.
func (s *SCB) Advance() error { return s.c.advance() }

// NewCursor returns a cursor over the store's records.
func (s *SCB) NewCursor() *Cursor { return newCursor(s.c) }

// GetSectorCookie reads back the cookie bytes stamped at the head of
// sector.
func (s *SCB) GetSectorCookie(sector uint32) ([]byte, error) {
	return s.c.getSectorCookie(sector)
}
