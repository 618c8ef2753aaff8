// Package recordstore implements a log-structured, sector-partitioned
// circular record store on top of a storagearea.Area: per-record framing
// with a magic byte, wrap counter and CRC-32, mount-time scanning to
// locate the write frontier, append with write-block-granularity retry,
// and (in persistent mode) predicate-driven compaction with crash
// recovery.
//
// Three tagged variants model the operating modes from a factory-table
// read-only store through a simple circular log to a persistent circular
// buffer that relocates marked records before reclaiming a sector: RO,
// SCB and PCB. Each exposes only the operations its mode supports rather
// than dispatching through a shared interface at runtime.
//
// Reference: Laczen/zephyr_goodies subsys/storage/storage_area/storage_area_record.c
package recordstore
