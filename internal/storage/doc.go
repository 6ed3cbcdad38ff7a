// Package storage holds the latest parking snapshot in memory.
//
// A Store keeps exactly one collection of lots. A successful refresh replaces
// the collection wholesale; a failed refresh only records the error, so readers
// keep seeing the last good lots together with the reason they may be stale.
// Concurrent writers are not ordered: the last write wins. Subscribers receive
// the newest state on a channel that never blocks writers.
package storage
