// Package store provides SQLite-backed durable storage shared by every
// spiritcast process on a machine.
//
// The store holds:
//   - Slots: keyed single-value cells; the projection channel keeps the
//     current frame under ProjectionKey
//   - Activity: an append-only journal of detection samples
//
// # Ordering
//
// Slot writes are "last write wins by sequence": an upsert only replaces the
// stored value when the incoming sequence is strictly greater. Writers never
// lock or coordinate beyond that.
//
// # Change notification
//
// WatchSlot observes writes made by other processes. It watches the database
// directory with fsnotify (the main file and its -wal file) and falls back to
// polling, re-reading the slot on every trigger and reporting only changed
// values.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
