package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ProjectionKey is the fixed slot holding the serialized current frame.
const ProjectionKey = "spiritcast-projection-content"

// Slot is one stored value.
type Slot struct {
	Key       string
	Sequence  int64
	Payload   []byte
	UpdatedAt time.Time
}

// WriteSlot stores payload under key when seq is strictly greater than the
// stored sequence. Returns applied=false when a newer or equal value is
// already stored; that is not an error.
func (s *Store) WriteSlot(ctx context.Context, key string, seq int64, payload []byte) (applied bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, sequence, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			sequence   = excluded.sequence,
			payload    = excluded.payload,
			updated_at = excluded.updated_at
		WHERE excluded.sequence > slots.sequence
	`,
		key,
		seq,
		string(payload),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("write slot %q: %w", key, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write slot %q: rows affected: %w", key, err)
	}
	return n > 0, nil
}

// ReadSlot returns the value stored under key. ok is false when the slot
// has never been written.
func (s *Store) ReadSlot(ctx context.Context, key string) (slot Slot, ok bool, err error) {
	var payload string
	var updated int64
	err = s.db.QueryRowContext(ctx, `
		SELECT key, sequence, payload, updated_at
		FROM slots
		WHERE key = ?
	`, key).Scan(&slot.Key, &slot.Sequence, &payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, fmt.Errorf("read slot %q: %w", key, err)
	}

	slot.Payload = []byte(payload)
	slot.UpdatedAt = time.UnixMilli(updated)
	return slot, true, nil
}
