package recordstore

import (
	"github.com/embedstore/recordstore/internal/logging"
	"github.com/embedstore/recordstore/storagearea"
)

// Config is the immutable configuration of a record store, supplied once
// at construction. It is never mutated after a successful New call.
type Config struct {
	// Area is the backing storage area.
	Area storagearea.Area

	// SectorSize (σ) partitions the area into fixed-size sectors. Must be
	// a multiple of the area's write block size, and either a multiple
	// of the erase block size or a divisor of it.
	SectorSize uint32

	// SectorCount (κ) is the number of sectors the store uses. SectorSize
	// * SectorCount must not exceed the area size.
	SectorCount uint32

	// SpareSectors (ς) is the number of sectors held in reserve for
	// compaction copies. Ignored outside PCB mode. SpareSectors *
	// SectorSize must be at least one erase block.
	SpareSectors uint32

	// Cookie, if non-empty, is stamped at the start of every sector
	// (padded to the write block size) on each sector advance.
	Cookie []byte

	// CrcSkip (δ) is the number of leading payload bytes excluded from
	// the CRC, so update can mutate them in place post-write.
	CrcSkip uint32

	// Logger receives diagnostic messages. A nil Logger defaults to
	// logging.Discard.
	Logger logging.Logger
}

func (c Config) logger() logging.Logger {
	if logging.IsNil(c.Logger) {
		return logging.Discard
	}
	return c.Logger
}

// cookieSpace returns the write-block-aligned space the cookie occupies
// at the head of every sector.
func (c Config) cookieSpace() uint32 {
	if len(c.Cookie) == 0 {
		return 0
	}
	return alignUp32(uint32(len(c.Cookie)), c.Area.Descriptor().WriteBlockSize)
}

// validate checks the invariants of spec section 3. A nil Area fails with
// ErrInvalidConfig like any violated invariant; the NewSCB/NewPCB/
// NewReadOnly constructors also reject a nil Area before mount.
func (c Config) validate() error {
	if c.Area == nil {
		return ErrInvalidConfig
	}
	desc := c.Area.Descriptor()
	w := desc.WriteBlockSize
	e := desc.EraseBlockSize

	if c.SectorSize == 0 || c.SectorSize%w != 0 {
		return ErrInvalidConfig
	}
	if e%c.SectorSize != 0 && c.SectorSize%e != 0 {
		return ErrInvalidConfig
	}
	if c.SectorCount == 0 {
		return ErrInvalidConfig
	}
	if int64(c.SectorSize)*int64(c.SectorCount) > desc.Size() {
		return ErrInvalidConfig
	}
	if uint32(len(c.Cookie)) > 0 && c.cookieSpace() >= c.SectorSize {
		return ErrInvalidConfig
	}
	if c.CrcSkip > 0 {
		// crc_skip must leave room for at least one payload byte given
		// the smallest representable frame; checked precisely per-write
		// in append, but a skip that can never fit any payload at all is
		// rejected up front.
		if c.CrcSkip >= c.SectorSize {
			return ErrInvalidConfig
		}
	}
	return nil
}

// validatePCB additionally checks the PCB-only spare sector invariant:
// spare_sectors * sector_size >= erase_block_size.
func (c Config) validatePCB() error {
	if err := c.validate(); err != nil {
		return err
	}
	desc := c.Area.Descriptor()
	if c.SpareSectors == 0 {
		return ErrInvalidConfig
	}
	if int64(c.SpareSectors)*int64(c.SectorSize) < int64(desc.EraseBlockSize) {
		return ErrInvalidConfig
	}
	if c.SpareSectors >= c.SectorCount {
		return ErrInvalidConfig
	}
	return nil
}

func alignUp32(n, align uint32) uint32 {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
