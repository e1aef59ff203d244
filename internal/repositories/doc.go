// Package repositories implements SQLite persistence for the tune library.
//
// Key Implementations:
//   - [TuneRepository] : Saved tunes with name lookups and soft deletes
//   - [PlayRepository] : Append-only playback history
//
// Sequence numbers give saved tunes a stable order independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
