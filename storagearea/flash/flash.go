// Package flash implements a storagearea.Area simulating NOR flash:
// LIMITED_OVERWRITE (bits only transition in the erase direction) with an
// optional AUTO_ERASE variant where the medium erases an erase block
// implicitly on the first write that touches it.
//
// Reference: Laczen/zephyr_goodies
//   - include/zephyr/storage/storage_area/storage_area_flash.h
//   - subsys/storage/storage_area/storage_area_flash.c
package flash

import (
	"github.com/embedstore/recordstore/internal/memmedium"
	"github.com/embedstore/recordstore/storagearea"
)

// Area is a simulated NOR flash storage area.
type Area struct {
	desc storagearea.Descriptor
	med  *memmedium.Medium
}

// New creates a flash-backed Area. desc.Props must include
// LimitedOverwrite; AutoErase is optional and selects the "erase
// implicitly on first write to a block" variant from spec section 4.1.
func New(desc storagearea.Descriptor) (*Area, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if !desc.Props.Has(storagearea.LimitedOverwrite) {
		return nil, storagearea.ErrInvalidArea
	}
	if desc.Props.Has(storagearea.FullOverwrite) {
		return nil, storagearea.ErrInvalidArea
	}

	return &Area{
		desc: desc,
		med: memmedium.New(desc.Size(), desc.EraseBlockSize, desc.ErasedByte(),
			true, desc.Props.Has(storagearea.AutoErase)),
	}, nil
}

func (a *Area) Descriptor() storagearea.Descriptor { return a.desc }

func (a *Area) ReadV(offset int64, vec storagearea.IOVec) error {
	if err := storagearea.CheckReadBounds(a.desc.Size(), offset, vec.Len()); err != nil {
		return err
	}
	off := offset
	for _, span := range vec {
		a.med.ReadAt(off, span.Data)
		off += int64(len(span.Data))
	}
	return nil
}

func (a *Area) WriteV(offset int64, vec storagearea.IOVec) error {
	if err := storagearea.CheckWriteBounds(a.desc, offset, vec.Len()); err != nil {
		return err
	}
	buf := storagearea.NewAlignBuffer(int(a.desc.WriteBlockSize), offset, func(off int64, chunk []byte) error {
		a.med.WriteAt(off, chunk)
		return nil
	})
	for _, span := range vec {
		if err := buf.Write(span.Data); err != nil {
			return err
		}
	}
	return buf.Done()
}

// Erase erases count erase blocks starting at startBlock. On AUTO_ERASE
// media this is a logical marker only: it resets the adapter's
// known-erased tracking for those blocks (and physically clears them, so
// wipe() still has observable effect at the unmounted state), but the
// record store never issues it as part of normal operation since spec
// section 4.2.5 step 4 excludes AUTO_ERASE media from the sector-advance
// erase call.
func (a *Area) Erase(startBlock, count uint32) error {
	if err := storagearea.CheckErase(a.desc, startBlock, count); err != nil {
		return err
	}
	a.med.Erase(startBlock, count)
	return nil
}

func (a *Area) Ioctl(cmd storagearea.IOCtlCmd, arg any) error {
	return storagearea.ErrNotSupported
}
