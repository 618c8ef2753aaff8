//go:build crashtest

// Package testutil provides test utilities for stress testing and verification.
//
// Kill points provide a mechanism to deterministically exit a process at specific
// code locations for whitebox crash testing. Unlike sync points (which pause
// execution), kill points terminate the process to simulate crashes.
//
// Reference: RocksDB v10.7.5
//   - test_util/sync_point.h (TEST_KILL_RANDOM macros)
//   - tools/db_crashtest.py (whitebox mode)
//
// Usage:
//
//	// In production code (compiled out without build tag):
//	testutil.MaybeKill(testutil.KPAppendCRC0)
//
//	// In test harness (set via env var or API):
//	testutil.SetKillPoint(testutil.KPAppendCRC0)
//
// Build with kill points enabled:
//
//	go build -tags crashtest ./...
package testutil

import (
	"os"
	"sync"
	"sync/atomic"
)

// killPointState holds the global kill point configuration.
type killPointState struct {
	// target is the name of the kill point that should trigger exit.
	// Empty string means no kill point is set.
	target atomic.Value // stores string

	// armed controls whether kill points are active.
	// This allows temporarily disabling kill points without clearing the target.
	armed atomic.Bool

	// hitCount tracks how many times each kill point was reached.
	// Useful for debugging and verification.
	mu        sync.RWMutex
	hitCounts map[string]int64
}

// globalKillPoint is the singleton kill point state.
var globalKillPoint = &killPointState{
	hitCounts: make(map[string]int64),
}

// KillPointEnvVar is the environment variable used to set the kill point target.
const KillPointEnvVar = "RECORDSTORE_KILL_POINT"

func init() {
	// Check environment variable on startup
	if target := os.Getenv(KillPointEnvVar); target != "" {
		globalKillPoint.target.Store(target)
		globalKillPoint.armed.Store(true)
	}
}

// SetKillPoint sets the target kill point name.
// When MaybeKill is called with this name, the process will exit.
func SetKillPoint(name string) {
	globalKillPoint.target.Store(name)
	globalKillPoint.armed.Store(true)
}

// ClearKillPoint clears the kill point target.
func ClearKillPoint() {
	globalKillPoint.target.Store("")
	globalKillPoint.armed.Store(false)
}

// ArmKillPoint enables kill point processing.
func ArmKillPoint() {
	globalKillPoint.armed.Store(true)
}

// DisarmKillPoint disables kill point processing without clearing the target.
func DisarmKillPoint() {
	globalKillPoint.armed.Store(false)
}

// IsKillPointArmed returns whether kill points are currently armed.
func IsKillPointArmed() bool {
	return globalKillPoint.armed.Load()
}

// GetKillPointTarget returns the current kill point target.
func GetKillPointTarget() string {
	if v := globalKillPoint.target.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// GetKillPointHitCount returns how many times a kill point was reached.
func GetKillPointHitCount(name string) int64 {
	globalKillPoint.mu.RLock()
	defer globalKillPoint.mu.RUnlock()
	return globalKillPoint.hitCounts[name]
}

// ResetKillPointCounts resets all hit counts.
func ResetKillPointCounts() {
	globalKillPoint.mu.Lock()
	defer globalKillPoint.mu.Unlock()
	globalKillPoint.hitCounts = make(map[string]int64)
}

// MaybeKill checks if the named kill point matches the target and exits if so.
// This is the primary entry point for kill points in production code.
//
// If the kill point is armed and the name matches the target, the process
// exits with code 0 (clean exit, not a crash signal).
func MaybeKill(name string) {
	if !globalKillPoint.armed.Load() {
		return
	}

	// Track hit count
	globalKillPoint.mu.Lock()
	globalKillPoint.hitCounts[name]++
	globalKillPoint.mu.Unlock()

	// Check if this is the target
	target, ok := globalKillPoint.target.Load().(string)
	if !ok || target == "" {
		return
	}

	if target == name {
		// Exit cleanly to simulate a crash
		// Exit code 0 indicates intentional kill, not an error
		os.Exit(0)
	}
}

// KillPointNames defines the standard kill point names.
// These follow the convention "Component.Operation:N" where N is 0 for
// "before" and 1 for "after".
const (
	// Append kill points
	KPAppendHeader0  = "Append.Header:0"  // Before the header write block lands
	KPAppendPayload0 = "Append.Payload:0" // Mid payload, before the CRC trailer lands
	KPAppendCRC0     = "Append.CRC:0"     // Before the CRC+padding write block lands
	KPAppendCRC1     = "Append.CRC:1"     // After the frame is fully durable

	// Sector advance kill points
	KPAdvanceFill0  = "Advance.Fill:0"  // Before the full-overwrite fill pass
	KPAdvanceErase0 = "Advance.Erase:0" // Before the erase of the sector's block
	KPAdvanceErase1 = "Advance.Erase:1" // After the erase, before the cookie write
	KPAdvanceCookie0 = "Advance.Cookie:0" // Before the cookie write lands

	// Compaction kill points
	KPCompactStart0    = "Compact.Start:0"    // At compaction start, before any copy
	KPCompactCopy0      = "Compact.Copy:0"     // Before a single record's relocated frame lands
	KPCompactCopy1      = "Compact.Copy:1"     // After a relocated frame lands, before moved() fires
	KPCompactReclaim0   = "Compact.Reclaim:0" // Before the reclaimed block's physical erase

	// Mount-time recovery kill points
	KPRecoveryRescan0 = "Recovery.Rescan:0" // Before the rolled-back-frontier recount

	// Area adapter kill points
	KPAreaWriteBlock0 = "Area.WriteBlock:0" // Before a single write-block write lands
)
