package eeprom

import (
	"bytes"
	"testing"

	"github.com/embedstore/recordstore/storagearea"
)

func testDescriptor() storagearea.Descriptor {
	return storagearea.Descriptor{
		WriteBlockSize:  8,
		EraseBlockSize:  256,
		EraseBlockCount: 4,
		Props:           storagearea.Properties(0).With(storagearea.LimitedOverwrite),
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	a, err := New(testDescriptor())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	payload := []byte("eeprom12")
	if err := storagearea.Write(a, 0, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := make([]byte, len(payload))
	if err := storagearea.Read(a, 0, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestNeverAutoErasesOnWrite(t *testing.T) {
	a, err := New(testDescriptor())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x00}, 8)); err != nil {
		t.Fatal(err)
	}
	// An unerased EEPROM write must never set bits, even though nothing
	// in this block has ever been explicitly erased: unlike flash's
	// AutoErase variant, EEPROM requires an explicit Erase every time.
	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0xFF}, 8)); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 8)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0x00}, 8)) {
		t.Fatalf("expected no implicit erase, got %x", got)
	}

	if err := a.Erase(0, 1); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0xFF}, 8)); err != nil {
		t.Fatal(err)
	}
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0xFF}, 8)) {
		t.Fatalf("expected explicit erase to allow setting bits, got %x", got)
	}
}

func TestRejectsAutoEraseProperty(t *testing.T) {
	d := testDescriptor()
	d.Props = d.Props.With(storagearea.AutoErase)
	if _, err := New(d); err == nil {
		t.Fatal("expected eeprom area to reject AutoErase")
	}
}

func TestRejectsFullOverwriteProperty(t *testing.T) {
	d := testDescriptor()
	d.Props = d.Props.With(storagearea.FullOverwrite)
	if _, err := New(d); err == nil {
		t.Fatal("expected eeprom area to reject FullOverwrite")
	}
}

func TestRequiresLimitedOverwrite(t *testing.T) {
	d := storagearea.Descriptor{WriteBlockSize: 8, EraseBlockSize: 256, EraseBlockCount: 4}
	if _, err := New(d); err == nil {
		t.Fatal("expected eeprom area to require LimitedOverwrite")
	}
}

func TestOutOfRange(t *testing.T) {
	a, _ := New(testDescriptor())
	err := storagearea.Read(a, a.Descriptor().Size()-4, make([]byte, 8))
	if err != storagearea.ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}
