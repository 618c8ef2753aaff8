package recordstore

import "github.com/embedstore/recordstore/storagearea"

// PCB is the Persistent Circular Buffer variant (design note 9): it adds
// compaction, relocating records move marks for retention out of the
// reclamation window ahead of the sectors about to be overwritten, and
// recovers a compaction interrupted by power loss at mount time (spec
// section 4.2.7).
type PCB struct{ c *core }

// NewPCB constructs a Persistent Circular Buffer store over cfg.
func NewPCB(cfg Config) (*PCB, error) {
	if cfg.Area == nil {
		return nil, ErrInvalidConfig
	}
	return &PCB{c: newCore(cfg, modePCB)}, nil
}

// Mount implements spec section 4.2.2. move and moved are the
// compaction callback pair: move is consulted both by Compact and, if
// mount finds a compaction was interrupted by power loss, by the
// recovery it runs before returning (spec section 4.2.7). Either may be
// nil: with a nil move no record ever survives reclamation, and a nil
// moved is simply not called.
func (s *PCB) Mount(move MoveFunc, moved MovedFunc) error {
	return s.c.mountWithCallback(move, moved)
}

// Unmount implements spec section 4.2.2.
func (s *PCB) Unmount() error { return s.c.unmount() }

// Wipe erases the entire area. Permitted only while unmounted.
func (s *PCB) Wipe() error { return s.c.wipe() }

// Writev appends a record assembled from iov's spans, per spec section
// 4.2.4.
func (s *PCB) Writev(iov storagearea.IOVec) error { return s.c.writev(iov) }

// Write appends a single contiguous record.
func (s *PCB) Write(data []byte) error {
	return s.c.writev(storagearea.SingleSpan(data))
}

// Advance closes the current sector and moves the write frontier to the
// next one, per spec section 4.2.5.
func (s *PCB) Advance() error { return s.c.advance() }

// Compact reclaims the sectors about to be overwritten, relocating
// every record move marks true and invoking moved with each record's
// old and new location, per spec section 4.2.6.
func (s *PCB) Compact(move MoveFunc, moved MovedFunc) error { return s.c.compact(move, moved) }

// NewCursor returns a cursor over the store's records.
func (s *PCB) NewCursor() *Cursor { return newCursor(s.c) }

// GetSectorCookie reads back the cookie bytes stamped at the head of
// sector.
func (s *PCB) GetSectorCookie(sector uint32) ([]byte, error) {
	return s.c.getSectorCookie(sector)
}
