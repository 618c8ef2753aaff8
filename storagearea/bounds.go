package storagearea

// CheckReadBounds validates a ReadV/ReadAt request against the area size.
func CheckReadBounds(size int64, offset, length int64) error {
	if offset < 0 || length < 0 || offset+length > size {
		return ErrOutOfRange
	}
	return nil
}

// CheckWriteBounds validates a WriteV request: bounds, write-block
// alignment of the total length, and the ReadOnly property.
func CheckWriteBounds(d Descriptor, offset, length int64) error {
	if d.Props.Has(ReadOnly) {
		return ErrReadOnly
	}
	if offset < 0 || length < 0 || offset+length > d.Size() {
		return ErrOutOfRange
	}
	if length%int64(d.WriteBlockSize) != 0 {
		return ErrInvalidAlignment
	}
	return nil
}

// CheckErase validates an Erase request against the area's erase block
// count and the ReadOnly property.
func CheckErase(d Descriptor, startBlock, count uint32) error {
	if d.Props.Has(ReadOnly) {
		return ErrReadOnly
	}
	if count == 0 {
		return nil
	}
	if uint64(startBlock)+uint64(count) > uint64(d.EraseBlockCount) {
		return ErrOutOfRange
	}
	return nil
}
