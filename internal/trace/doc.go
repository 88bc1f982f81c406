// Package trace records what the engines did, in order.
//
// Every record is stamped with a monotonic logical sequence number from
// Clock.Next(). Wall-clock time is never used for ordering, so a trace of
// the same inputs is byte-for-byte reproducible and can be compared against
// golden files.
//
// Recorders are optional. Engines built without one do no tracing work.
package trace
