// Package faultarea wraps a storagearea.Area to inject write failures and
// simulate power loss, for exercising the record store's torn-write
// tolerance (spec section 8, properties P3/P4/P7 and scenario 4, "power
// loss mid-compact").
//
// Reference: aalhour/rockyardkv internal/vfs/fault_injection.go — same
// idea (wrap the real thing, track what has and hasn't been made durable,
// let tests revert to the last durable state), retargeted from whole files
// to the write-block granularity that matters for a record store.
package faultarea

import (
	"errors"
	"sync"

	"github.com/embedstore/recordstore/storagearea"
)

// ErrInjectedWrite is returned by WriteV when an injected write failure
// fires.
var ErrInjectedWrite = errors.New("faultarea: injected write failure")

type pendingWrite struct {
	offset   int64
	preImage []byte
}

// Area wraps a storagearea.Area, recording the pre-image of every
// write-block write since the last Sync so Crash can undo them, simulating
// asynchronous power loss mid-write.
//
// Crash works at write-block granularity: a single write-block write is
// all-or-nothing (the medium either completed it or didn't), but of the
// write blocks belonging to one WriteV call, a prefix may have landed and
// the rest lost — exactly the torn-write scenario spec section 4.2.3 is
// designed to tolerate.
type Area struct {
	storagearea.Area

	mu sync.Mutex

	// failAfter, if >= 0, counts down write-block writes (not WriteV
	// calls) until the next one fails with ErrInjectedWrite; the counter
	// is then left at -1 (disarmed) so later writes succeed again.
	failAfter int

	pending []pendingWrite
}

// Wrap returns a fault-injecting wrapper around a.
func Wrap(a storagearea.Area) *Area {
	return &Area{Area: a, failAfter: -1}
}

// FailNextWriteBlockAfter arms the injector to fail the n-th write-block
// write counting from now (n=0 fails the very next one).
func (a *Area) FailNextWriteBlockAfter(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failAfter = n
}

// Sync discards the pre-image log: every write issued so far is now
// durable and Crash will no longer be able to undo it.
func (a *Area) Sync() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = a.pending[:0]
}

// Crash reverts, in reverse order, every write-block write issued since
// the last Sync, restoring the medium to the state it would be in had
// power been lost before any of them landed durably. It then clears the
// pre-image log: a second Crash with no intervening writes is a no-op.
func (a *Area) Crash() error {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.failAfter = -1
	a.mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		p := pending[i]
		if err := a.Area.WriteV(p.offset, storagearea.SingleSpan(p.preImage)); err != nil {
			return err
		}
	}
	return nil
}

// WriteV writes vec, failing individual write-block chunks per the armed
// fault schedule. A failure leaves every write block before it durable (it
// reached the wrapped Area) and every write block at or after it
// unwritten — the same partial-success shape a real medium failure would
// leave the record store to recover from via spec section 4.2.4's
// retry-at-next-write-block rule.
func (a *Area) WriteV(offset int64, vec storagearea.IOVec) error {
	w := int(a.Area.Descriptor().WriteBlockSize)
	off := offset
	pos := 0
	buf := make([]byte, 0, vec.Len())
	for _, s := range vec {
		buf = append(buf, s.Data...)
	}

	for pos < len(buf) {
		end := pos + w
		if end > len(buf) {
			end = len(buf)
		}
		chunk := buf[pos:end]

		a.mu.Lock()
		fail := a.failAfter == 0
		if a.failAfter >= 0 {
			a.failAfter--
		}
		a.mu.Unlock()

		if fail {
			return ErrInjectedWrite
		}

		preImage := make([]byte, len(chunk))
		if err := a.Area.ReadV(off, storagearea.SingleSpan(preImage)); err != nil {
			return err
		}
		if err := a.Area.WriteV(off, storagearea.SingleSpan(chunk)); err != nil {
			return err
		}
		a.mu.Lock()
		a.pending = append(a.pending, pendingWrite{offset: off, preImage: preImage})
		a.mu.Unlock()

		off += int64(len(chunk))
		pos = end
	}
	return nil
}
