// Package disk implements a storagearea.Area backed by a single file
// (real or in-memory, via internal/vfs): FULL_OVERWRITE, since a disk
// sector can be rewritten freely. Erase is a logical housekeeping
// operation — it overwrites the range with the erased-byte pattern so
// mount-time scans see a clean boundary — rather than a hardware
// requirement.
//
// Reference: Laczen/zephyr_goodies drivers/disk/eepromdisk.c
package disk

import (
	"fmt"

	"github.com/embedstore/recordstore/internal/testutil"
	"github.com/embedstore/recordstore/internal/vfs"
	"github.com/embedstore/recordstore/storagearea"
)

// Area is a file-backed storage area.
type Area struct {
	desc storagearea.Descriptor
	f    vfs.RandomReadWriteFile
}

// Open opens (creating if necessary) path on fs as a disk-backed storage
// area of the given descriptor. desc.Props must not include
// LimitedOverwrite: disk sectors are always fully rewritable.
func Open(fs vfs.FS, path string, desc storagearea.Descriptor) (*Area, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Props.Has(storagearea.LimitedOverwrite) || desc.Props.Has(storagearea.AutoErase) {
		return nil, storagearea.ErrInvalidArea
	}
	desc.Props = desc.Props.With(storagearea.FullOverwrite)

	f, err := fs.OpenReadWrite(path, desc.Size())
	if err != nil {
		return nil, err
	}
	return &Area{desc: desc, f: f}, nil
}

// Close releases the backing file handle.
func (a *Area) Close() error { return a.f.Close() }

func (a *Area) Descriptor() storagearea.Descriptor { return a.desc }

func (a *Area) ReadV(offset int64, vec storagearea.IOVec) error {
	if err := storagearea.CheckReadBounds(a.desc.Size(), offset, vec.Len()); err != nil {
		return err
	}
	off := offset
	for _, span := range vec {
		if len(span.Data) == 0 {
			continue
		}
		if _, err := a.f.ReadAt(span.Data, off); err != nil {
			return wrapMediumError(err)
		}
		off += int64(len(span.Data))
	}
	return nil
}

func (a *Area) WriteV(offset int64, vec storagearea.IOVec) error {
	if err := storagearea.CheckWriteBounds(a.desc, offset, vec.Len()); err != nil {
		return err
	}
	var flushErr error
	buf := storagearea.NewAlignBuffer(int(a.desc.WriteBlockSize), offset, func(off int64, chunk []byte) error {
		testutil.MaybeKill(testutil.KPAreaWriteBlock0)
		if _, err := a.f.WriteAt(chunk, off); err != nil {
			flushErr = wrapMediumError(err)
			return flushErr
		}
		return nil
	})
	for _, span := range vec {
		if err := buf.Write(span.Data); err != nil {
			return err
		}
	}
	if flushErr != nil {
		return flushErr
	}
	return buf.Done()
}

// Erase overwrites count erase blocks with the erased-byte pattern. It is
// a logical convenience, not a hardware necessity, for this adapter.
func (a *Area) Erase(startBlock, count uint32) error {
	if err := storagearea.CheckErase(a.desc, startBlock, count); err != nil {
		return err
	}
	erasedByte := a.desc.ErasedByte()
	pattern := make([]byte, a.desc.EraseBlockSize)
	for i := range pattern {
		pattern[i] = erasedByte
	}
	off := int64(startBlock) * int64(a.desc.EraseBlockSize)
	for b := uint32(0); b < count; b++ {
		if _, err := a.f.WriteAt(pattern, off); err != nil {
			return wrapMediumError(err)
		}
		off += int64(a.desc.EraseBlockSize)
	}
	return nil
}

func (a *Area) Ioctl(cmd storagearea.IOCtlCmd, arg any) error {
	return storagearea.ErrNotSupported
}

func wrapMediumError(err error) error {
	return fmt.Errorf("%w: %v", storagearea.ErrMediumError, err)
}
