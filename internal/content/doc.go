// Package content defines the data model shared by every spiritcast component.
//
// This package contains type definitions and the projection frame wire codec
// only. All other internal packages import content; content imports nothing
// internal, so it stays the foundational layer.
//
// Key constraints:
//   - Frame is a value type; the zero Frame is not valid, use Blank()
//   - Frame.Sequence is assigned by the projection channel at publish time
//   - Song bodies keep their embedded line breaks byte-for-byte
package content
