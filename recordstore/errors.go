package recordstore

import (
	"errors"

	"github.com/embedstore/recordstore/storagearea"
)

// Errors specific to the record store. Medium-level failures (out of
// range, invalid alignment, read-only, not supported, medium error) are
// propagated unchanged from package storagearea per spec section 7 — use
// errors.Is against storagearea.ErrOutOfRange and friends to detect them.
var (
	// ErrInvalidArgument is returned for malformed call arguments that
	// are rejected before any state change.
	ErrInvalidArgument = errors.New("recordstore: invalid argument")

	// ErrNoSpace is returned by a write when the current sector cannot
	// hold the frame.
	ErrNoSpace = errors.New("recordstore: no space")

	// ErrNotFound is returned by a cursor walk that reaches the write
	// frontier without producing a record, and internally by in-sector
	// scan when no valid frame starts at the scan position.
	ErrNotFound = errors.New("recordstore: not found")

	// ErrCrcMismatch names a candidate frame whose stored CRC does not
	// match the computed CRC over its payload. No operation in this
	// package returns it: the scan and the cursor skip such frames.
	ErrCrcMismatch = errors.New("recordstore: crc mismatch")

	// ErrInvalidConfig is returned by mount when the configuration
	// violates an invariant from spec section 3 (sector/erase-block
	// alignment, spare sector sizing, and so on).
	ErrInvalidConfig = errors.New("recordstore: invalid config")

	// ErrAlreadyMounted is returned by mount on an already-mounted store.
	ErrAlreadyMounted = errors.New("recordstore: already mounted")

	// ErrNotMounted is returned by any operation that requires the
	// Mounted state (writev, advance, compact, next, record operations)
	// when the store has not been mounted, and by wipe when it has.
	ErrNotMounted = errors.New("recordstore: not mounted")
)

// reexported for callers that only import recordstore and still want to
// check medium-level failures with errors.Is.
var (
	ErrOutOfRange       = storagearea.ErrOutOfRange
	ErrInvalidAlignment = storagearea.ErrInvalidAlignment
	ErrReadOnly         = storagearea.ErrReadOnly
	ErrNotSupported     = storagearea.ErrNotSupported
	ErrMediumError      = storagearea.ErrMediumError
)
