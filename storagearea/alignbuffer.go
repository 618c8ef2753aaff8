package storagearea

import "fmt"

// FlushFunc writes an aligned chunk to the medium: offset is a multiple of
// the write block size and len(chunk) is a multiple of the write block
// size.
type FlushFunc func(offset int64, chunk []byte) error

// AlignBuffer implements the write-block buffering algorithm mandatory for
// all adapters (spec section 4.1): it lets a caller emit a logically
// contiguous byte stream assembled from arbitrary-length iovec spans while
// the underlying medium only ever sees writes that are exactly a multiple
// of the write block size W, starting at a W-aligned offset.
//
// Usage: construct one AlignBuffer per WriteV call, feed it every span in
// iovec order via Write, then call Done to confirm the stream ended
// exactly on a write-block boundary (guaranteed by the WriteV contract
// that the total length is a multiple of W).
type AlignBuffer struct {
	w      int
	scratch []byte
	n      int
	offset int64
	flush  FlushFunc
}

// NewAlignBuffer creates a buffer that will flush write-block-sized,
// write-block-aligned chunks starting at baseOffset via flush. baseOffset
// itself must already be a multiple of w; callers write into an Area at
// arbitrary (non-aligned-looking) logical offsets, but every concrete
// storage area in this module places sector/frame boundaries on
// write-block multiples, so the base offset passed to WriteV is always
// W-aligned in practice.
func NewAlignBuffer(w int, baseOffset int64, flush FlushFunc) *AlignBuffer {
	return &AlignBuffer{
		w:       w,
		scratch: make([]byte, w),
		offset:  baseOffset,
		flush:   flush,
	}
}

// Write buffers p, flushing any full write blocks as they accumulate.
func (a *AlignBuffer) Write(p []byte) error {
	for len(p) > 0 {
		if a.n > 0 {
			k := copy(a.scratch[a.n:a.w], p)
			a.n += k
			p = p[k:]
			if a.n == a.w {
				if err := a.flush(a.offset, a.scratch); err != nil {
					return err
				}
				a.offset += int64(a.w)
				a.n = 0
			}
			continue
		}

		if len(p) >= a.w {
			direct := len(p) - len(p)%a.w
			if err := a.flush(a.offset, p[:direct]); err != nil {
				return err
			}
			a.offset += int64(direct)
			p = p[direct:]
			continue
		}

		a.n = copy(a.scratch, p)
		p = nil
	}
	return nil
}

// Done confirms the buffer ended exactly on a write-block boundary. A
// non-zero leftover means the caller violated the WriteV contract (total
// length not a multiple of W): spec section 4.1 calls this an
// implementation error rather than a runtime condition to recover from.
func (a *AlignBuffer) Done() error {
	if a.n != 0 {
		return fmt.Errorf("storagearea: internal error: %d unaligned tail bytes left in write-block buffer", a.n)
	}
	return nil
}
