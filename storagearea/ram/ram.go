// Package ram implements a storagearea.Area backed by a plain in-memory
// buffer: FULL_OVERWRITE, any byte may be rewritten to any value without a
// prior erase. Useful for metric rings that do not need to survive a
// restart, and as a fast fixture for recordstore tests.
//
// Reference: Laczen/zephyr_goodies
//   - include/zephyr/storage/storage_area/storage_area_ram.h
//   - subsys/storage/storage_area/storage_area_ram.c
package ram

import (
	"github.com/embedstore/recordstore/internal/memmedium"
	"github.com/embedstore/recordstore/storagearea"
)

// Area is a RAM-backed storage area.
type Area struct {
	desc storagearea.Descriptor
	med  *memmedium.Medium
}

// New creates a RAM-backed Area. desc.Props must not include
// LimitedOverwrite or AutoErase: RAM is unconditionally FULL_OVERWRITE.
func New(desc storagearea.Descriptor) (*Area, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Props.Has(storagearea.LimitedOverwrite) || desc.Props.Has(storagearea.AutoErase) {
		return nil, storagearea.ErrInvalidArea
	}
	desc.Props = desc.Props.With(storagearea.FullOverwrite)

	return &Area{
		desc: desc,
		med:  memmedium.New(desc.Size(), desc.EraseBlockSize, desc.ErasedByte(), false, false),
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
