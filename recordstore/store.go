package recordstore

import (
	"errors"
	"sync"

	"github.com/embedstore/recordstore/internal/logging"
	"github.com/embedstore/recordstore/internal/testutil"
	"github.com/embedstore/recordstore/storagearea"
)

// mode identifies the operating mode of a store (design note 9: tagged
// variants, not a runtime vtable).
type mode uint8

const (
	modeRO mode = iota
	modeSCB
	modePCB
)

// MoveFunc decides, during compaction, whether a record must survive
// reclamation. It is invoked synchronously with the store's semaphore
// held.
type MoveFunc func(r Record) bool

// MovedFunc is notified after a record has been relocated by compaction.
type MovedFunc func(src, dst Record)

// core holds the runtime state and logic shared by the RO, SCB and PCB
// variants. It is never exposed directly; RO, SCB and PCB each embed a
// *core and expose only the operations their mode supports.
type core struct {
	cfg  Config
	mode mode
	desc storagearea.Descriptor
	log  logging.Logger

	// mu is the optional binary semaphore from spec section 5, guarding
	// writev/advance/compact/mount/unmount. Cursor walks and record
	// read/update do not take it.
	mu sync.Mutex

	mounted bool

	s uint32 // current write sector
	l int64  // current write offset within the sector
	w uint8  // wrap counter

	move  MoveFunc
	moved MovedFunc
}

func newCore(cfg Config, md mode) *core {
	return &core{
		cfg:  cfg,
		mode: md,
		desc: cfg.Area.Descriptor(),
		log:  cfg.logger(),
	}
}

func (c *core) sectorOffset(sector uint32) int64 {
	return int64(sector) * int64(c.cfg.SectorSize)
}

func (c *core) cookieEnd(sector uint32) int64 {
	return c.sectorOffset(sector) + int64(c.cfg.cookieSpace())
}

func (c *core) sectorCount() uint32 { return c.cfg.SectorCount }

func wrapMediumErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storagearea.ErrMediumError) {
		return err
	}
	return err
}

// mount implements spec section 4.2.2.
func (c *core) mount() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		return ErrAlreadyMounted
	}

	var cfgErr error
	if c.mode == modePCB {
		cfgErr = c.cfg.validatePCB()
	} else {
		cfgErr = c.cfg.validate()
	}
	if cfgErr != nil {
		return cfgErr
	}

	c.log.Infof("%smounting, mode=%d sectors=%d sector_size=%d", logging.NSMount, c.mode, c.cfg.SectorCount, c.cfg.SectorSize)

	s, omega, found, err := c.locateFrontierSector()
	if err != nil {
		return err
	}

	if !found {
		c.s = c.cfg.SectorCount - 1
		c.l = int64(c.cfg.SectorSize)
		c.w = 0
		if err := c.doAdvance(); err != nil {
			return err
		}
		c.log.Infof("%sno existing records, established fresh head at sector %d", logging.NSMount, c.s)
	} else {
		c.s = s
		c.w = omega
		end, _, _, err := c.scanRecords(s, omega, true, nil)
		if err != nil {
			return err
		}
		c.l = end
		c.log.Infof("%sfound write frontier sector=%d offset=%d wrap=%d", logging.NSMount, c.s, c.l, c.w)
	}

	if c.mode == modePCB {
		if err := c.recover(); err != nil {
			return err
		}
	}

	c.mounted = true
	return nil
}

// unmount clears the mount flag. Runtime state is left as-is; a
// subsequent mount reconstructs it from the medium, so nothing needs
// clearing for correctness (spec section 4.2.10, idempotent-mount
// property P6).
func (c *core) unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return ErrNotMounted
	}
	c.mounted = false
	return nil
}

// wipe erases every erase block of the area. Permitted only while
// unmounted.
func (c *core) wipe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return ErrNotMounted
	}
	if err := c.cfg.validate(); err != nil {
		return err
	}
	if err := c.cfg.Area.Erase(0, c.desc.EraseBlockCount); err != nil {
		return wrapMediumErr(err)
	}
	c.s = 0
	c.l = 0
	c.w = 0
	return nil
}

// locateFrontierSector implements spec section 4.2.2 step 2: find the
// contiguous run of sectors, starting at 0, whose first frame shares a
// common wrap counter, and return the last sector in that run.
func (c *core) locateFrontierSector() (s uint32, omega uint8, found bool, err error) {
	s = c.cfg.SectorCount
	haveOmega := false

	for i := uint32(0); i < c.cfg.SectorCount; i++ {
		hdr, ok, serr := c.peekFirstFrame(i)
		if serr != nil {
			return 0, 0, false, serr
		}
		if !ok {
			break
		}
		if !haveOmega {
			omega = hdr.wrapcnt
			haveOmega = true
		}
		if hdr.wrapcnt != omega {
			break
		}
		s = i
		found = true
	}
	return s, omega, found, nil
}

// testutilHook lets tests inject a kill point without requiring the
// crashtest build tag to know about recordstore's kill point names.
func testutilHook(name string) { testutil.MaybeKill(name) }
