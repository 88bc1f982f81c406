// Package store provides a SQLite journal of trace records.
//
// Every record produced by a machine or a dataflow graph can be appended to
// the journal through the trace.Recorder returned by Recorder. The journal
// is append-only and keyed by (subject, seq): writing the same record twice
// is a no-op, so a run can be journaled again without duplicating it.
//
// Records are ordered by their logical sequence number, never by wall
// time; ties between subjects sort by subject in byte order. MaxSeq lets a
// new trace.Clock continue numbering after what is already journaled.
//
// The database runs in WAL mode with synchronous=NORMAL and waits up to
// five seconds for a lock. Schema changes are applied as numbered
// migrations tracked in PRAGMA user_version.
package store
