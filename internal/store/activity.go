package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/spiritcast/internal/content"
)

// RecordActivity appends a detection sample to the journal.
// Uses ON CONFLICT(id) DO NOTHING - duplicate IDs are silently ignored.
func (s *Store) RecordActivity(ctx context.Context, rec content.ActivityRecord) error {
	matched := 0
	if rec.Matched {
		matched = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (id, sampled_text, observed_at, matched)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.SampledText,
		rec.ObservedAt.UnixMilli(),
		matched,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// ReadActivity returns up to limit journal entries, newest first.
// Returns an empty slice (not nil) when the journal is empty.
func (s *Store) ReadActivity(ctx context.Context, limit int) ([]content.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sampled_text, observed_at, matched
		FROM activity
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	records := []content.ActivityRecord{}
	for rows.Next() {
		var rec content.ActivityRecord
		var observed int64
		var matched int
		if err := rows.Scan(&rec.ID, &rec.SampledText, &observed, &matched); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		rec.ObservedAt = time.UnixMilli(observed)
		rec.Matched = matched == 1
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return records, nil
}
