// Package storagearea provides a uniform read/write/erase abstraction over
// non-volatile and volatile storage media (NOR flash, EEPROM, RAM, disk
// sectors), parameterised by write granularity, erase granularity, and
// medium properties.
//
// An Area is an immutable descriptor plus a handle to the backing medium.
// Concrete adapters live in the ram, flash, eeprom and disk subpackages;
// this package defines only the contract they implement and the
// scatter/gather write-alignment helper (AlignBuffer) they share.
//
// Reference: Laczen/zephyr_goodies include/zephyr/storage/storage_area/storage_area.h
package storagearea

import "fmt"

// Property is a single bit of medium capability or restriction.
type Property uint8

const (
	// ReadOnly means writes and erases are refused.
	ReadOnly Property = 1 << iota
	// FullOverwrite means any byte may be rewritten to any value without a
	// prior erase (RAM, some RRAM).
	FullOverwrite
	// LimitedOverwrite means bits may only transition in the erase
	// direction (NOR flash: 1->0). Rewriting arbitrary patterns requires
	// an erase.
	LimitedOverwrite
	// ZeroErase means the erased-byte value is 0x00 instead of 0xFF.
	ZeroErase
	// AutoErase means the medium erases implicitly on write; an explicit
	// erase may still be required for the first access within an erase
	// block.
	AutoErase
)

// Properties is a bitset of Property values.
type Properties uint8

// Has reports whether p is set in ps.
func (ps Properties) Has(p Property) bool {
	return ps&Properties(p) != 0
}

// With returns ps with p set.
func (ps Properties) With(p Property) Properties {
	return ps | Properties(p)
}

func (ps Properties) String() string {
	names := []struct {
		p Property
		s string
	}{
		{ReadOnly, "ReadOnly"},
		{FullOverwrite, "FullOverwrite"},
		{LimitedOverwrite, "LimitedOverwrite"},
		{ZeroErase, "ZeroErase"},
		{AutoErase, "AutoErase"},
	}
	out := ""
	for _, n := range names {
		if ps.Has(n.p) {
			if out != "" {
				out += "|"
			}
			out += n.s
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Descriptor is the immutable description of a storage area. It may be
// shared freely across goroutines once constructed: it is a plain value,
// and the adapters never modify the copy they hold.
type Descriptor struct {
	// WriteBlockSize (W) is the minimum unit the medium accepts as a
	// write. Must be a power of two.
	WriteBlockSize uint32
	// EraseBlockSize (E) is the minimum unit the medium can erase. Must
	// be a multiple of WriteBlockSize.
	EraseBlockSize uint32
	// EraseBlockCount (N) is the number of erase blocks in the area.
	EraseBlockCount uint32
	// Props is the medium's property bitset.
	Props Properties
}

// Size returns the derived area size S = E*N.
func (d Descriptor) Size() int64 {
	return int64(d.EraseBlockSize) * int64(d.EraseBlockCount)
}

// ErasedByte returns the byte value an erase resets storage to: 0x00 if
// ZeroErase is set, else 0xFF.
func (d Descriptor) ErasedByte() byte {
	if d.Props.Has(ZeroErase) {
		return 0x00
	}
	return 0xFF
}

// Validate checks the invariants from spec section 3: W >= 1 and a power
// of two, E a multiple of W, and a sane (non-zero) block count.
func (d Descriptor) Validate() error {
	if d.WriteBlockSize == 0 {
		return fmt.Errorf("%w: write block size must be >= 1", ErrInvalidArea)
	}
	if d.WriteBlockSize&(d.WriteBlockSize-1) != 0 {
		return fmt.Errorf("%w: write block size %d is not a power of two", ErrInvalidArea, d.WriteBlockSize)
	}
	if d.EraseBlockSize == 0 || d.EraseBlockSize%d.WriteBlockSize != 0 {
		return fmt.Errorf("%w: erase block size %d is not a multiple of write block size %d", ErrInvalidArea, d.EraseBlockSize, d.WriteBlockSize)
	}
	if d.EraseBlockCount == 0 {
		return fmt.Errorf("%w: erase block count must be >= 1", ErrInvalidArea)
	}
	return nil
}

// IOSpan is one (pointer, length) element of an IOVec.
type IOSpan struct {
	Data []byte
}

// IOVec is a list of spans whose logical concatenation is the payload of a
// ReadV or WriteV call.
type IOVec []IOSpan

// Len returns the total length of all spans.
func (v IOVec) Len() int64 {
	var n int64
	for _, s := range v {
		n += int64(len(s.Data))
	}
	return n
}

// SingleSpan wraps one buffer as a one-element IOVec, the common case for
// callers that are not themselves doing scatter/gather.
func SingleSpan(b []byte) IOVec {
	return IOVec{{Data: b}}
}

// IOCtlCmd identifies an Ioctl operation.
type IOCtlCmd int

const (
	// IOCtlXipAddress requests the memory-mapped base address of the
	// area. arg must be a *uintptr. Returns ErrNotSupported on media
	// without execute-in-place support.
	IOCtlXipAddress IOCtlCmd = iota + 1
)

// Area is the uniform contract every medium adapter implements.
//
// Concurrency: an Area's descriptor is immutable and may be read from many
// goroutines concurrently. Concurrent ReadV/WriteV/Erase calls on the same
// Area are the caller's responsibility to serialise — the record store
// above this layer does so with its own semaphore (see recordstore.Store).
type Area interface {
	// Descriptor returns the area's immutable descriptor.
	Descriptor() Descriptor

	// ReadV copies vec.Len() bytes starting at offset into the iovec
	// buffers. Returns ErrOutOfRange if offset+vec.Len() exceeds the area
	// size.
	ReadV(offset int64, vec IOVec) error

	// WriteV writes vec.Len() bytes starting at offset. vec.Len() must be
	// a multiple of the write block size (ErrInvalidAlignment otherwise).
	// Span boundaries within vec need not be write-block aligned; the
	// adapter buffers internally (see AlignBuffer) so that every write it
	// issues to the underlying medium is itself write-block aligned and
	// sized.
	WriteV(offset int64, vec IOVec) error

	// Erase erases count erase blocks starting at startBlock. On
	// AUTO_ERASE media this may be a no-op or a logical marker; see the
	// individual adapter's documentation.
	Erase(startBlock, count uint32) error

	// Ioctl issues a side-channel command. The only command defined by
	// this package is IOCtlXipAddress.
	Ioctl(cmd IOCtlCmd, arg any) error
}

// Read is a convenience wrapper around ReadV for a single contiguous
// buffer.
func Read(a Area, offset int64, p []byte) error {
	return a.ReadV(offset, SingleSpan(p))
}

// Write is a convenience wrapper around WriteV for a single contiguous
// buffer.
func Write(a Area, offset int64, p []byte) error {
	return a.WriteV(offset, SingleSpan(p))
}
