package disk

import (
	"bytes"
	"testing"

	"github.com/embedstore/recordstore/internal/vfs"
	"github.com/embedstore/recordstore/storagearea"
)

func testDescriptor() storagearea.Descriptor {
	return storagearea.Descriptor{
		WriteBlockSize:  16,
		EraseBlockSize:  512,
		EraseBlockCount: 4,
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	fs := vfs.NewMemFS()
	a, err := Open(fs, "area.img", testDescriptor())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	payload := bytes.Repeat([]byte{0xAB}, 16)
	if err := storagearea.Write(a, 32, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := make([]byte, 16)
	if err := storagearea.Read(a, 32, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}

func TestArbitraryRewrite(t *testing.T) {
	fs := vfs.NewMemFS()
	a, err := Open(fs, "area.img", testDescriptor())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x00}, 16)); err != nil {
		t.Fatal(err)
	}
	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0xFF}, 16)); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 16)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0xFF}, 16)) {
		t.Fatalf("expected disk area to allow arbitrary rewrite, got %x", got)
	}
}

func TestErase(t *testing.T) {
	fs := vfs.NewMemFS()
	a, err := Open(fs, "area.img", testDescriptor())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if err := storagearea.Write(a, 0, bytes.Repeat([]byte{0x11}, 16)); err != nil {
		t.Fatal(err)
	}
	if err := a.Erase(0, 1); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	got := make([]byte, 16)
	_ = storagearea.Read(a, 0, got)
	if !bytes.Equal(got, bytes.Repeat([]byte{0xFF}, 16)) {
		t.Fatalf("expected erased-byte pattern, got %x", got)
	}
}

func TestReopenPreservesContent(t *testing.T) {
	fs := vfs.NewMemFS()
	desc := testDescriptor()
	a, err := Open(fs, "area.img", desc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := storagearea.Write(a, 16, bytes.Repeat([]byte{0x77}, 16)); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := Open(fs, "area.img", desc)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got := make([]byte, 16)
	if err := storagearea.Read(b, 16, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte{0x77}, 16)) {
		t.Fatalf("content did not survive reopen, got %x", got)
	}
}

func TestRejectsLimitedOverwriteProperty(t *testing.T) {
	fs := vfs.NewMemFS()
	d := testDescriptor()
	d.Props = d.Props.With(storagearea.LimitedOverwrite)
	if _, err := Open(fs, "bad.img", d); err == nil {
		t.Fatal("expected disk area to reject LimitedOverwrite")
	}
}
