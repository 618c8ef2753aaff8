package recordstore

// ReadOnly is the Read-only variant (design note 9): it never writes to
// the medium, so it exposes no Write/Advance/Compact methods at all —
// the restriction is enforced by the type, not by a runtime check.
type ReadOnly struct{ c *core }

// NewReadOnly constructs a Read-only store over cfg. The area is
// expected to already hold the records (factory-provisioned or written
// by a prior SCB/PCB store); mounting scans it but never writes, unless
// the area is entirely empty, in which case mount establishes a bare
// head sector and fails with ErrReadOnly if the area itself rejects the
// write.
func NewReadOnly(cfg Config) (*ReadOnly, error) {
	if cfg.Area == nil {
		return nil, ErrInvalidConfig
	}
	return &ReadOnly{c: newCore(cfg, modeRO)}, nil
}

// Mount implements spec section 4.2.2.
func (s *ReadOnly) Mount() error { return s.c.mount() }

// Unmount implements spec section 4.2.2.
func (s *ReadOnly) Unmount() error { return s.c.unmount() }

// Wipe erases the entire area. Permitted only while unmounted, same as
// the other variants, even though Read-only mode otherwise never
// writes: wipe is a maintenance operation performed between uses, not
// part of normal operation.
func (s *ReadOnly) Wipe() error { return s.c.wipe() }

// NewCursor returns a cursor over the store's records.
func (s *ReadOnly) NewCursor() *Cursor { return newCursor(s.c) }

// GetSectorCookie reads back the cookie bytes stamped at the head of
// sector.
func (s *ReadOnly) GetSectorCookie(sector uint32) ([]byte, error) {
	return s.c.getSectorCookie(sector)
}
