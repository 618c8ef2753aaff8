//go:build !crashtest

// Package testutil provides test utilities for stress testing and verification.
//
// This file provides no-op implementations of kill point functions for
// production builds. When built without the "crashtest" tag, all kill point
// calls are effectively eliminated by the compiler.
//
// Reference: RocksDB v10.7.5
//   - test_util/sync_point.h (TEST_KILL_RANDOM macros)
//   - tools/db_crashtest.py (whitebox mode)
package testutil

// KillPointEnvVar is the environment variable used to set the kill point target.
// In production builds, this is defined but ignored.
const KillPointEnvVar = "RECORDSTORE_KILL_POINT"

// SetKillPoint is a no-op in production builds.
func SetKillPoint(_ string) {}

// ClearKillPoint is a no-op in production builds.
func ClearKillPoint() {}

// ArmKillPoint is a no-op in production builds.
func ArmKillPoint() {}

// DisarmKillPoint is a no-op in production builds.
func DisarmKillPoint() {}

// IsKillPointArmed always returns false in production builds.
func IsKillPointArmed() bool { return false }

// GetKillPointTarget always returns empty string in production builds.
func GetKillPointTarget() string { return "" }

// GetKillPointHitCount always returns 0 in production builds.
func GetKillPointHitCount(_ string) int64 { return 0 }

// ResetKillPointCounts is a no-op in production builds.
func ResetKillPointCounts() {}

// MaybeKill is a no-op in production builds.
// The compiler should inline and eliminate this entirely.
func MaybeKill(_ string) {}

// Kill point name constants - defined for API compatibility even in prod builds.
const (
	KPAppendHeader0  = "Append.Header:0"
	KPAppendPayload0 = "Append.Payload:0"
	KPAppendCRC0     = "Append.CRC:0"
	KPAppendCRC1     = "Append.CRC:1"

	KPAdvanceFill0   = "Advance.Fill:0"
	KPAdvanceErase0  = "Advance.Erase:0"
	KPAdvanceErase1  = "Advance.Erase:1"
	KPAdvanceCookie0 = "Advance.Cookie:0"

	KPCompactStart0   = "Compact.Start:0"
	KPCompactCopy0    = "Compact.Copy:0"
	KPCompactCopy1    = "Compact.Copy:1"
	KPCompactReclaim0 = "Compact.Reclaim:0"

	KPRecoveryRescan0 = "Recovery.Rescan:0"

	KPAreaWriteBlock0 = "Area.WriteBlock:0"
)
