package recordstore

import "github.com/embedstore/recordstore/storagearea"

// mountWithCallback mounts the store, recording move/moved for use by
// both compact and (PCB only) mount-time recovery, per spec section 6:
// "compact_cb is a pair of function references... invoked synchronously
// from within compact/mount."
func (c *core) mountWithCallback(move MoveFunc, moved MovedFunc) error {
	c.move = move
	c.moved = moved
	return c.mount()
}

func (c *core) writev(iov storagearea.IOVec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return ErrNotMounted
	}
	if c.mode == modeRO {
		return ErrReadOnly
	}
	return c.doAppend(iov)
}

func (c *core) advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return ErrNotMounted
	}
	if c.mode == modeRO {
		return ErrReadOnly
	}
	return c.doAdvance()
}

func (c *core) compact(move MoveFunc, moved MovedFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return ErrNotMounted
	}
	if c.mode != modePCB {
		return ErrNotSupported
	}
	return c.doCompact(move, moved)
}
