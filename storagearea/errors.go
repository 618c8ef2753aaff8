package storagearea

import "errors"

// Errors returned by Area implementations and the AlignBuffer helper. The
// same sentinels are reused by package recordstore, which propagates medium
// errors unchanged per spec section 7.
var (
	// ErrOutOfRange is returned when an offset/length falls outside the
	// area's size.
	ErrOutOfRange = errors.New("storagearea: out of range")

	// ErrInvalidAlignment is returned when a WriteV length is not a
	// multiple of the write block size.
	ErrInvalidAlignment = errors.New("storagearea: invalid alignment")

	// ErrReadOnly is returned when a write or erase is attempted on a
	// ReadOnly area.
	ErrReadOnly = errors.New("storagearea: area is read-only")

	// ErrNotSupported is returned by Ioctl for unrecognised commands or
	// commands the medium cannot service.
	ErrNotSupported = errors.New("storagearea: not supported")

	// ErrInvalidArea is returned when a Descriptor fails validation, or
	// (with the areaverify build tag) when a descriptor does not match
	// the medium's actual geometry.
	ErrInvalidArea = errors.New("storagearea: invalid area")

	// ErrMediumError marks an underlying medium I/O failure (file system
	// error, simulated fault, etc.); match it with errors.Is. The disk
	// adapter adds the cause's text to the message with %v, so errors.Unwrap
	// yields ErrMediumError itself, not the cause.
	ErrMediumError = errors.New("storagearea: medium error")
)
