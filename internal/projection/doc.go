// Package projection implements the projection channel: the broadcast
// primitive that carries the operator's current frame to every view.
//
// ARCHITECTURE:
//
// A Channel publishes frames into a shared-state Port and notifies its own
// subscribers synchronously. Other processes (or other Channels on the same
// Port) learn about the write through Port.Watch, driven by Channel.Run.
// Both paths pass through the same per-subscription sequence gate:
//
//	Publish ──► stamp(Clock) ──► Port.Store ──► gate ──► local subscribers
//	                                 │
//	                  Port.Watch ◄───┘ (other processes)
//	                      │
//	                      └──► Channel.Run ──► gate ──► their subscribers
//
// Sequence Gate:
// A subscription accepts a frame only if its sequence is strictly greater
// than the last one it accepted. Late, duplicated and echoed notifications
// are dropped silently.
//
// Clock:
// Sequences are wall-clock milliseconds, bumped to last+1 when the wall
// clock does not advance, and floored at the highest sequence observed from
// the Port so a restarted producer never stamps below the stored frame.
//
// Failure Semantics:
// A missing, unreadable or corrupt stored frame never reaches a view.
// Subscribe falls back to content.Blank() and logs a warning; corrupt
// notifications are logged and dropped.
//
// Callbacks run one at a time, in publish order, and must not call Publish
// or Clear on the same Channel. Unsubscribe is safe from anywhere,
// including inside the callback.
package projection
