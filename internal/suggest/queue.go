package suggest

import "github.com/roach88/spiritcast/internal/content"

const (
	// DefaultQueueCapacity bounds the pending suggestions.
	DefaultQueueCapacity = 5
	// DefaultActivityCapacity bounds the activity log.
	DefaultActivityCapacity = 10
)

// Queue holds pending suggestions newest-first. Captions are unique; when
// full, adding evicts the oldest entry.
//
// Thread-safety: not safe for concurrent use; the Engine guards it.
type Queue struct {
	items    []content.Suggestion
	capacity int
}

// NewQueue returns an empty queue holding at most capacity suggestions.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{capacity: capacity}
}

// Add prepends s. Returns false, leaving the queue unchanged, when a
// suggestion with the same caption is already pending.
func (q *Queue) Add(s content.Suggestion) bool {
	for _, it := range q.items {
		if it.Caption == s.Caption {
			return false
		}
	}
	q.items = append([]content.Suggestion{s}, q.items...)
	if len(q.items) > q.capacity {
		q.items = q.items[:q.capacity]
	}
	return true
}

// Remove deletes the suggestion with the given id and returns it.
func (q *Queue) Remove(id string) (content.Suggestion, bool) {
	for i, it := range q.items {
		if it.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return it, true
		}
	}
	return content.Suggestion{}, false
}

// Items returns a copy of the pending suggestions, newest first.
func (q *Queue) Items() []content.Suggestion {
	out := make([]content.Suggestion, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of pending suggestions.
func (q *Queue) Len() int { return len(q.items) }

// ActivityLog keeps the most recent samples newest-first.
//
// Thread-safety: not safe for concurrent use; the Engine guards it.
type ActivityLog struct {
	items    []content.ActivityRecord
	capacity int
}

// NewActivityLog returns an empty log holding at most capacity records.
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{capacity: capacity}
}

// Add prepends rec, dropping the oldest record when full.
func (l *ActivityLog) Add(rec content.ActivityRecord) {
	l.items = append([]content.ActivityRecord{rec}, l.items...)
	if len(l.items) > l.capacity {
		l.items = l.items[:l.capacity]
	}
}

// Items returns a copy of the records, newest first.
func (l *ActivityLog) Items() []content.ActivityRecord {
	out := make([]content.ActivityRecord, len(l.items))
	copy(out, l.items)
	return out
}

// Clear empties the log.
func (l *ActivityLog) Clear() { l.items = nil }

// Len returns the number of records.
func (l *ActivityLog) Len() int { return len(l.items) }
