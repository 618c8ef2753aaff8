package faultarea

import (
	"bytes"
	"errors"
	"testing"

	"github.com/embedstore/recordstore/storagearea"
	"github.com/embedstore/recordstore/storagearea/ram"
)

func testDescriptor() storagearea.Descriptor {
	return storagearea.Descriptor{
		WriteBlockSize:  8,
		EraseBlockSize:  256,
		EraseBlockCount: 4,
	}
}

func TestWriteVPassesThroughWithoutFault(t *testing.T) {
	base, err := ram.New(testDescriptor())
	if err != nil {
		t.Fatalf("ram.New: %v", err)
	}
	a := Wrap(base)

	payload := bytes.Repeat([]byte{0x5A}, 16)
	if err := storagearea.Write(a, 0, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := make([]byte, 16)
	if err := storagearea.Read(a, 0, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}

func TestFailNextWriteBlockAfter(t *testing.T) {
	base, _ := ram.New(testDescriptor())
	a := Wrap(base)

	a.FailNextWriteBlockAfter(0)
	err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x11}, 8))
	if !errors.Is(err, ErrInjectedWrite) {
		t.Fatalf("got %v, want ErrInjectedWrite", err)
	}
}

func TestCrashRevertsWritesSinceLastSync(t *testing.T) {
	base, _ := ram.New(testDescriptor())
	a := Wrap(base)

	original := bytes.Repeat([]byte{0x00}, 8)
	if err := storagearea.Write(a, 0, original); err != nil {
		t.Fatal(err)
	}
	a.Sync()

	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0xFF}, 8)); err != nil {
		t.Fatal(err)
	}
	if err := a.Crash(); err != nil {
		t.Fatalf("Crash: %v", err)
	}

	got := make([]byte, 8)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, original) {
		t.Fatalf("expected crash to revert to pre-sync state, got %x, want %x", got, original)
	}
}

func TestCrashOnlyRevertsOneWriteBlockOfATornMultiBlockWrite(t *testing.T) {
	base, _ := ram.New(testDescriptor())
	a := Wrap(base)

	// Two write blocks of initial content, synced durable.
	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x00}, 16)); err != nil {
		t.Fatal(err)
	}
	a.Sync()

	// Fail the second write-block write of a 2-block WriteV: the first
	// block's write should land (and be reverted by Crash), the second
	// should never have been attempted.
	a.FailNextWriteBlockAfter(1)
	err := storagearea.Write(a, 0, bytes.Repeat([]byte{0xFF}, 16))
	if !errors.Is(err, ErrInjectedWrite) {
		t.Fatalf("got %v, want ErrInjectedWrite", err)
	}

	if err := a.Crash(); err != nil {
		t.Fatalf("Crash: %v", err)
	}
	got := make([]byte, 16)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0x00}, 16)) {
		t.Fatalf("expected full revert to pre-write state, got %x", got)
	}
}

func TestSyncClearsPendingLog(t *testing.T) {
	base, _ := ram.New(testDescriptor())
	a := Wrap(base)

	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x01}, 8)); err != nil {
		t.Fatal(err)
	}
	a.Sync()
	// A Crash right after Sync, with no intervening writes, must be a
	// no-op: the written data must remain.
	if err := a.Crash(); err != nil {
		t.Fatalf("Crash: %v", err)
	}
	got := make([]byte, 8)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0x01}, 8)) {
		t.Fatalf("expected synced data to survive a no-op crash, got %x", got)
	}
}
