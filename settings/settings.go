// Package settings is a key/value config-store layer built on top of a
// recordstore.PCB: each record's payload is [name_len(1)][name][value],
// and the latest record for a given name wins. A value of zero length is
// a tombstone: Delete writes one, and compaction never relocates it, so
// the key vanishes once the reclamation window sweeps past it.
//
// Illustrative only: it is not part of the record store's own contract,
// and nothing it adds should be taken as a second implementation of the
// invariants recordstore itself already guarantees (the frame CRC already
// protects [name_len,name,value] as a whole).
//
// Reference: Laczen/zephyr_goodies subsys/settings/settings_storage_area_store.c
package settings

import (
	"errors"

	"github.com/embedstore/recordstore/internal/checksum"
	"github.com/embedstore/recordstore/internal/compression"
	"github.com/embedstore/recordstore/recordstore"
)

// ErrNotFound is returned by Get when no live value exists for a name.
var ErrNotFound = errors.New("settings: not found")

// ErrNameTooLong is returned when a name's length does not fit the
// single length-prefix byte (max 255).
var ErrNameTooLong = errors.New("settings: name too long")

// Store is a name/value store backed by a recordstore.PCB.
type Store struct {
	pcb         *recordstore.PCB
	sectorCount uint32
}

// Open mounts a settings store over cfg, which must describe a PCB-
// capable area (spare sectors configured): compaction is how superseded
// values are ever reclaimed.
func Open(cfg recordstore.Config) (*Store, error) {
	pcb, err := recordstore.NewPCB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{pcb: pcb, sectorCount: cfg.SectorCount}
	if err := pcb.Mount(s.recoveryMove, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// Close unmounts the underlying store.
func (s *Store) Close() error { return s.pcb.Unmount() }

func decodeEntry(rec recordstore.Record) (name string, valueOffset int, err error) {
	var nsz [1]byte
	if err := rec.Read(0, nsz[:]); err != nil {
		return "", 0, err
	}
	n := int(nsz[0])
	if n == 0 || 1+n > rec.Size() {
		return "", 0, errMalformed
	}
	buf := make([]byte, n)
	if err := rec.Read(1, buf); err != nil {
		return "", 0, err
	}
	return string(buf), 1 + n, nil
}

var errMalformed = errors.New("settings: malformed entry")

func isTombstone(rec recordstore.Record, valueOffset int) bool {
	return rec.Size() == valueOffset
}

// recoveryMove is the compaction callback used while mount is recovering
// an interrupted compaction (spec section 4.2.7 territory): it has no
// mounted cursor available yet to compute which entries are superseded,
// so it conservatively keeps every live, non-tombstone entry. A normal
// Compact call afterwards reclaims anything this left behind.
func (s *Store) recoveryMove(rec recordstore.Record) bool {
	if !rec.Valid() {
		return false
	}
	_, valueOffset, err := decodeEntry(rec)
	if err != nil {
		return false
	}
	return !isTombstone(rec, valueOffset)
}

// latestIndex maps name to the most recently written live record for it,
// built by a single forward walk (later records overwrite earlier ones
// for the same name).
func (s *Store) latestIndex() (map[string]recordstore.Record, error) {
	idx := make(map[string]recordstore.Record)
	cur := s.pcb.NewCursor()
	for {
		rec, err := cur.Next()
		if errors.Is(err, recordstore.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		name, _, err := decodeEntry(rec)
		if err != nil {
			continue
		}
		idx[name] = rec
	}
	return idx, nil
}

func sameRecord(a, b recordstore.Record) bool {
	return a == b
}

// Compact reclaims the sectors behind the write frontier, relocating the
// latest record for each name and dropping every superseded or tombstone
// entry.
func (s *Store) Compact() error {
	idx, err := s.latestIndex()
	if err != nil {
		return err
	}
	move := func(rec recordstore.Record) bool {
		name, valueOffset, err := decodeEntry(rec)
		if err != nil {
			return false
		}
		if isTombstone(rec, valueOffset) {
			return false
		}
		latest, ok := idx[name]
		return ok && sameRecord(latest, rec)
	}
	return s.pcb.Compact(move, nil)
}

// Get returns the latest live value stored for name.
func (s *Store) Get(name string) ([]byte, error) {
	idx, err := s.latestIndex()
	if err != nil {
		return nil, err
	}
	rec, ok := idx[name]
	if !ok {
		return nil, ErrNotFound
	}
	_, valueOffset, err := decodeEntry(rec)
	if err != nil {
		return nil, err
	}
	if isTombstone(rec, valueOffset) {
		return nil, ErrNotFound
	}
	value := make([]byte, rec.Size()-valueOffset)
	if err := rec.Read(valueOffset, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Each calls visit for every live, non-tombstone name/value pair.
func (s *Store) Each(visit func(name string, value []byte) error) error {
	idx, err := s.latestIndex()
	if err != nil {
		return err
	}
	for name, rec := range idx {
		_, valueOffset, err := decodeEntry(rec)
		if err != nil {
			continue
		}
		if isTombstone(rec, valueOffset) {
			continue
		}
		value := make([]byte, rec.Size()-valueOffset)
		if err := rec.Read(valueOffset, value); err != nil {
			return err
		}
		if err := visit(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Set writes value for name, compacting and retrying once per sector if
// the store is full, per the original save loop's "compact then retry"
// pattern.
func (s *Store) Set(name string, value []byte) error {
	return s.save(name, value)
}

// Delete writes a tombstone for name: a zero-length value that Get and
// Each treat as absent, and that compaction never relocates.
func (s *Store) Delete(name string) error {
	return s.save(name, nil)
}

func (s *Store) save(name string, value []byte) error {
	if len(name) == 0 || len(name) > 255 {
		return ErrNameTooLong
	}
	if existing, err := s.Get(name); err == nil && bytesEqual(existing, value) {
		return nil
	}

	entry := make([]byte, 1+len(name)+len(value))
	entry[0] = byte(len(name))
	copy(entry[1:], name)
	copy(entry[1+len(name):], value)

	// Mirrors the original save loop: try the write, and on ErrNoSpace
	// compact (which itself advances to a fresh sector before reclaiming)
	// and retry, bounded by the sector count so a store with no
	// reclaimable space at all fails rather than looping forever.
	var lastErr error
	for attempt := uint32(0); attempt < s.sectorCount; attempt++ {
		err := s.pcb.Write(entry)
		if err == nil {
			return nil
		}
		if !errors.Is(err, recordstore.ErrNoSpace) {
			return err
		}
		lastErr = err
		if cErr := s.Compact(); cErr != nil {
			return cErr
		}
	}
	return lastErr
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EncodeCompressed wraps value as [compression.Type(1)][checksum.Type(1)]
// [checksum(4 LE)][payload], compressing with t when that shrinks the
// value and falling back to storing it raw otherwise. New values always
// checksum with XXH3; CRC32C is only ever produced by a value migrated
// in from an older CRC32C-checksummed store (see EncodeCompressedChecksum),
// and DecodeCompressed dispatches on the stored checksum.Type so such
// values keep decoding correctly. This guards against corruption
// introduced between compression and the frame CRC covering it (the
// frame CRC verifies what was written, not what compression produced
// from the caller's original bytes).
func EncodeCompressed(t compression.Type, value []byte) ([]byte, error) {
	return EncodeCompressedChecksum(t, checksum.TypeXXH3, value)
}

// EncodeCompressedChecksum is EncodeCompressed with an explicit checksum
// algorithm, for producing values compatible with a store migrating away
// from CRC32C.
func EncodeCompressedChecksum(t compression.Type, csum checksum.Type, value []byte) ([]byte, error) {
	packed, err := compression.Compress(t, value)
	if err != nil {
		return nil, err
	}
	if packed == nil || len(packed) >= len(value) {
		t = compression.NoCompression
		packed = value
	}
	sum := checksum.Compute(csum, value)
	out := make([]byte, 2+4+len(packed))
	out[0] = byte(t)
	out[1] = byte(csum)
	out[2] = byte(sum)
	out[3] = byte(sum >> 8)
	out[4] = byte(sum >> 16)
	out[5] = byte(sum >> 24)
	copy(out[6:], packed)
	return out, nil
}

// DecodeCompressed reverses EncodeCompressed/EncodeCompressedChecksum,
// decompressing with the caller-supplied uncompressedSize hint and verifying
// with whichever checksum algorithm the value was encoded with.
func DecodeCompressed(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) < 6 {
		return nil, errMalformed
	}
	t := compression.Type(data[0])
	csum := checksum.Type(data[1])
	sum := uint32(data[2]) | uint32(data[3])<<8 | uint32(data[4])<<16 | uint32(data[5])<<24
	value, err := compression.DecompressWithSize(t, data[6:], uncompressedSize)
	if err != nil {
		return nil, err
	}
	if checksum.Compute(csum, value) != sum {
		return nil, errMalformed
	}
	return value, nil
}
