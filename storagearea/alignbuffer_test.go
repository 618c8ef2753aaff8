package storagearea

import (
	"bytes"
	"testing"
)

func TestAlignBufferFlushesOnlyAlignedChunks(t *testing.T) {
	const w = 8
	var flushed [][]byte
	var offsets []int64

	buf := NewAlignBuffer(w, 16, func(off int64, chunk []byte) error {
		cp := append([]byte(nil), chunk...)
		flushed = append(flushed, cp)
		offsets = append(offsets, off)
		if len(chunk)%w != 0 || off%w != 0 {
			t.Fatalf("flush called with unaligned chunk: off=%d len=%d", off, len(chunk))
		}
		return nil
	})

	// Three spans whose boundaries do not land on write-block multiples.
	spans := [][]byte{
		[]byte("12345"),   // 5
		[]byte("6789012"), // 7 -> 12 total, crosses one boundary
		[]byte("345678"),  // 6 -> 18 total
		[]byte("90123456"), // 8 -> 26 total
	}
	var want []byte
	for _, s := range spans {
		want = append(want, s...)
		if err := buf.Write(s); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	// pad want out to a write-block multiple and feed the remainder so Done succeeds
	tail := len(want) % w
	if tail != 0 {
		pad := make([]byte, w-tail)
		for i := range pad {
			pad[i] = 'x'
		}
		want = append(want, pad...)
		if err := buf.Write(pad); err != nil {
			t.Fatalf("Write pad: %v", err)
		}
	}

	if err := buf.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}

	var got []byte
	for _, f := range flushed {
		got = append(got, f...)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("flushed bytes = %q, want %q", got, want)
	}
	if offsets[0] != 16 {
		t.Fatalf("first flush offset = %d, want 16", offsets[0])
	}
}

func TestAlignBufferRejectsUnalignedTotal(t *testing.T) {
	buf := NewAlignBuffer(8, 0, func(int64, []byte) error { return nil })
	if err := buf.Write([]byte("123")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Done(); err == nil {
		t.Fatal("expected Done to report the unaligned tail")
	}
}

func TestDescriptorValidate(t *testing.T) {
	good := Descriptor{WriteBlockSize: 8, EraseBlockSize: 4096, EraseBlockCount: 4}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid descriptor, got %v", err)
	}

	cases := []Descriptor{
		{WriteBlockSize: 0, EraseBlockSize: 4096, EraseBlockCount: 4},
		{WriteBlockSize: 3, EraseBlockSize: 4096, EraseBlockCount: 4},
		{WriteBlockSize: 8, EraseBlockSize: 100, EraseBlockCount: 4},
		{WriteBlockSize: 8, EraseBlockSize: 4096, EraseBlockCount: 0},
	}
	for i, d := range cases {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, d)
		}
	}
}

func TestPropertiesString(t *testing.T) {
	p := Properties(0).With(LimitedOverwrite).With(AutoErase)
	if got := p.String(); got != "LimitedOverwrite|AutoErase" {
		t.Fatalf("String() = %q", got)
	}
	if Properties(0).String() != "none" {
		t.Fatalf("empty Properties.String() should be none")
	}
}
