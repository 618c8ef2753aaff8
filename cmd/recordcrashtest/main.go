// Command recordcrashtest repeatedly kills a record store mid-operation
// and verifies that the next mount recovers to a consistent state.
//
// It re-execs itself as a child process with a kill point armed via
// RECORDSTORE_KILL_POINT (internal/testutil); the child writes records
// against a real file-backed area until internal/testutil.MaybeKill exits
// it out from under the write. The parent then remounts the same area and
// confirms Mount succeeds and every record the cursor walk yields reads
// back without error.
//
// Kill points only fire in binaries built with the crashtest tag:
//
//	go build -tags crashtest -o recordcrashtest ./cmd/recordcrashtest
//
// Without that tag this still runs, but no kill point is ever hit and
// every cycle exits the child cleanly instead of crashing it.
//
// Reference: aalhour/rockyardkv cmd/crashtest (kill-and-verify loop),
// scoped down to a single area/store pair with no campaign, oracle, or
// fault-injection-FS machinery.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"github.com/embedstore/recordstore/internal/testutil"
	"github.com/embedstore/recordstore/internal/vfs"
	"github.com/embedstore/recordstore/recordstore"
	"github.com/embedstore/recordstore/storagearea"
	"github.com/embedstore/recordstore/storagearea/disk"
)

var (
	areaPath    = flag.String("area", "", "Path to the backing file (required)")
	cycles      = flag.Int("cycles", 20, "Number of kill-and-verify cycles")
	sectorSize  = flag.Uint("sector-size", 256, "Store sector size in bytes")
	sectorCount = flag.Uint("sector-count", 8, "Store sector count")
	spare       = flag.Uint("spare-sectors", 2, "Spare sectors (PCB mode only)")
	pcb         = flag.Bool("pcb", false, "Use PCB mode instead of SCB")
	recordSize  = flag.Int("record-size", 32, "Payload size of each written record")
	child       = flag.Bool("child", false, "Internal: run as the subprocess that gets killed")
	seed        = flag.Int64("seed", 0, "Random seed (0 = time-based)")
)

var killPoints = []string{
	testutil.KPAppendHeader0,
	testutil.KPAppendPayload0,
	testutil.KPAppendCRC0,
	testutil.KPAdvanceFill0,
	testutil.KPAdvanceErase0,
	testutil.KPAdvanceErase1,
	testutil.KPAdvanceCookie0,
	testutil.KPCompactStart0,
	testutil.KPCompactCopy0,
	testutil.KPAreaWriteBlock0,
}

func main() {
	flag.Parse()

	if *areaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --area is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *child {
		runChild()
		return
	}

	if err := runParent(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func descriptor() storagearea.Descriptor {
	return storagearea.Descriptor{
		WriteBlockSize:  8,
		EraseBlockSize:  uint32(*sectorSize),
		EraseBlockCount: uint32(*sectorCount),
	}
}

func openArea() (*disk.Area, error) {
	return disk.Open(vfs.Default(), *areaPath, descriptor())
}

// runChild mounts the store and writes records until killed or done.
func runChild() {
	area, err := openArea()
	if err != nil {
		fmt.Fprintf(os.Stderr, "child: opening area: %v\n", err)
		os.Exit(1)
	}
	defer area.Close()

	cfg := recordstore.Config{
		Area:         area,
		SectorSize:   uint32(*sectorSize),
		SectorCount:  uint32(*sectorCount),
		SpareSectors: uint32(*spare),
	}

	payload := make([]byte, *recordSize)
	for i := range payload {
		payload[i] = byte(i)
	}

	write := func(w func([]byte) error, advance func() error) {
		for i := 0; i < 100000; i++ {
			if err := w(payload); err != nil {
				if errors.Is(err, recordstore.ErrNoSpace) {
					if err := advance(); err != nil {
						fmt.Fprintf(os.Stderr, "child: advance: %v\n", err)
						os.Exit(1)
					}
					continue
				}
				fmt.Fprintf(os.Stderr, "child: write: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if *pcb {
		store, err := recordstore.NewPCB(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "child: constructing store: %v\n", err)
			os.Exit(1)
		}
		move := func(r recordstore.Record) bool { return true }
		if err := store.Mount(move, nil); err != nil {
			fmt.Fprintf(os.Stderr, "child: mounting: %v\n", err)
			os.Exit(1)
		}
		write(store.Write, func() error { return store.Compact(move, nil) })
		store.Unmount()
		return
	}

	store, err := recordstore.NewSCB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "child: constructing store: %v\n", err)
		os.Exit(1)
	}
	if err := store.Mount(); err != nil {
		fmt.Fprintf(os.Stderr, "child: mounting: %v\n", err)
		os.Exit(1)
	}
	write(store.Write, store.Advance)
	store.Unmount()
}

// runParent drives *cycles kill-and-verify rounds.
func runParent() error {
	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	area, err := openArea()
	if err != nil {
		return fmt.Errorf("opening area: %w", err)
	}
	area.Close()

	for i := 0; i < *cycles; i++ {
		kp := killPoints[rng.Intn(len(killPoints))]

		args := append(os.Args[1:], "-child")
		cmd := exec.Command(os.Args[0], args...)
		cmd.Env = append(os.Environ(), testutil.KillPointEnvVar+"="+kp)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("cycle %d: child (kill point %s) failed: %w", i, kp, err)
		}

		if err := verify(); err != nil {
			return fmt.Errorf("cycle %d: verify after kill point %s: %w", i, kp, err)
		}
		fmt.Printf("cycle %d: kill point %s survived\n", i, kp)
	}
	fmt.Printf("%d cycles passed\n", *cycles)
	return nil
}

// verify remounts the area in the same mode the child used (SCB, or PCB
// with its mount-time recovery) and walks every record, confirming
// the store recovers to a readable, internally consistent state.
func verify() error {
	area, err := openArea()
	if err != nil {
		return fmt.Errorf("opening area: %w", err)
	}
	defer area.Close()

	cfg := recordstore.Config{
		Area:         area,
		SectorSize:   uint32(*sectorSize),
		SectorCount:  uint32(*sectorCount),
		SpareSectors: uint32(*spare),
	}

	if *pcb {
		store, err := recordstore.NewPCB(cfg)
		if err != nil {
			return err
		}
		move := func(r recordstore.Record) bool { return true }
		if err := store.Mount(move, nil); err != nil {
			return fmt.Errorf("mount: %w", err)
		}
		defer store.Unmount()
		return walkAndVerify(store.NewCursor())
	}

	store, err := recordstore.NewSCB(cfg)
	if err != nil {
		return err
	}
	if err := store.Mount(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer store.Unmount()
	return walkAndVerify(store.NewCursor())
}

func walkAndVerify(cur *recordstore.Cursor) error {
	n := 0
	for {
		rec, err := cur.Next()
		if err != nil {
			if errors.Is(err, recordstore.ErrNotFound) {
				break
			}
			return fmt.Errorf("cursor walk: %w", err)
		}
		if _, err := rec.ReadAll(); err != nil {
			return fmt.Errorf("reading record at sector %d offset %d: %w", rec.Sector(), rec.Offset(), err)
		}
		n++
	}
	fmt.Printf("  verified %d record(s)\n", n)
	return nil
}
