// Package memmedium implements the byte-level simulation shared by the
// ram, flash and eeprom storage area adapters: a flat in-memory buffer plus
// the two write disciplines described in spec section 3 (FULL_OVERWRITE
// and LIMITED_OVERWRITE), and per-erase-block auto-erase tracking for
// AUTO_ERASE media.
//
// It has no storagearea import so it can be unit-tested independently of
// the Area interface; each adapter package wraps a Medium to implement
// storagearea.Area.
package memmedium

import "sync"

// Medium is a flat byte array standing in for a physical chip.
type Medium struct {
	mu sync.Mutex

	buf        []byte
	erasedByte byte
	limited    bool // LIMITED_OVERWRITE: writes AND-merge instead of replacing
	autoErase  bool // AUTO_ERASE: first write to a block erases it first
	eraseBlock uint32

	// erased[i] is true once erase block i is known to hold only
	// erasedByte, either from construction, an explicit Erase, or (for
	// autoErase media) a prior write's implicit erase.
	erased []bool

	// curBlock is the erase block the previous write ended in (valid once
	// hasCur is set); for autoErase media, writes that stay in it do not
	// erase.
	curBlock uint32
	hasCur   bool
}

// New creates a Medium of the given size, pre-filled with erasedByte.
func New(size int64, eraseBlockSize uint32, erasedByte byte, limited, autoErase bool) *Medium {
	nBlocks := uint32(0)
	if eraseBlockSize > 0 {
		nBlocks = uint32(size / int64(eraseBlockSize))
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = erasedByte
	}
	erased := make([]bool, nBlocks)
	for i := range erased {
		erased[i] = true
	}
	return &Medium{
		buf:        buf,
		erasedByte: erasedByte,
		limited:    limited,
		autoErase:  autoErase,
		eraseBlock: eraseBlockSize,
		erased:     erased,
	}
}

// ReadAt copies m.buf[offset:offset+len(p)] into p.
func (m *Medium) ReadAt(offset int64, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(p, m.buf[offset:offset+int64(len(p))])
}

// WriteAt writes p at offset, applying the medium's overwrite discipline.
// For AUTO_ERASE media, an erase block that this write enters from another
// block (the "new erase block" case from spec section 4.1) is cleared first
// unless it is already known-erased; later writes that stay within the
// block the previous write ended in skip the auto-erase.
func (m *Medium) WriteAt(offset int64, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.autoErase && m.eraseBlock > 0 {
		first := uint32(offset / int64(m.eraseBlock))
		last := uint32((offset + int64(len(p)) - 1) / int64(m.eraseBlock))
		for b := first; b <= last; b++ {
			if !m.erased[b] && !(m.hasCur && b == m.curBlock) {
				m.eraseBlockLocked(b)
			}
		}
		m.curBlock, m.hasCur = last, true
	}

	dst := m.buf[offset : offset+int64(len(p))]
	if m.limited {
		for i := range p {
			dst[i] &= p[i]
		}
	} else {
		copy(dst, p)
	}

	if m.eraseBlock > 0 {
		first := uint32(offset / int64(m.eraseBlock))
		last := uint32((offset + int64(len(p)) - 1) / int64(m.eraseBlock))
		for b := first; b <= last; b++ {
			m.erased[b] = false
		}
	}
}

// Erase clears count erase blocks starting at startBlock to erasedByte and
// marks them known-erased.
func (m *Medium) Erase(startBlock, count uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for b := startBlock; b < startBlock+count; b++ {
		m.eraseBlockLocked(b)
	}
}

func (m *Medium) eraseBlockLocked(b uint32) {
	start := int64(b) * int64(m.eraseBlock)
	end := start + int64(m.eraseBlock)
	region := m.buf[start:end]
	for i := range region {
		region[i] = m.erasedByte
	}
	m.erased[b] = true
}

// Len returns the medium's total size in bytes.
func (m *Medium) Len() int64 {
	return int64(len(m.buf))
}
