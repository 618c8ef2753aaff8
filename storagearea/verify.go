//go:build areaverify

package storagearea

import "fmt"

// verifyEnabled reports whether the areaverify build tag is set; no
// adapter in this module reads it. It is compiled out entirely
// without the areaverify build tag (see verify_noop.go), matching spec
// section 4.1's "compile-time toggle" requirement: the check costs nothing
// in a production build.
const verifyEnabled = true

// VerifyGeometry checks that a descriptor is consistent with a medium's
// actual geometry: the medium's native write block size must divide W, the
// medium's native erase page size must divide E (or vice versa, callers
// pass whichever direction applies), and the area must fit within the
// medium's total extent. None of the adapters in this module call it.
func VerifyGeometry(d Descriptor, mediumWriteBlock, mediumErasePage uint32, mediumExtent int64) error {
	if mediumWriteBlock != 0 && d.WriteBlockSize%mediumWriteBlock != 0 {
		return fmt.Errorf("%w: write block size %d is not a multiple of medium write granularity %d", ErrInvalidArea, d.WriteBlockSize, mediumWriteBlock)
	}
	if mediumErasePage != 0 && d.EraseBlockSize%mediumErasePage != 0 {
		return fmt.Errorf("%w: erase block size %d is not a multiple of medium erase granularity %d", ErrInvalidArea, d.EraseBlockSize, mediumErasePage)
	}
	if mediumExtent != 0 && d.Size() > mediumExtent {
		return fmt.Errorf("%w: area size %d exceeds medium extent %d", ErrInvalidArea, d.Size(), mediumExtent)
	}
	return nil
}
