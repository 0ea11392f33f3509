package suggest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spiritcast/internal/content"
)

func suggestion(id, caption string, at int64) content.Suggestion {
	return content.Suggestion{
		ID:        id,
		Kind:      content.KindVerse,
		Caption:   caption,
		CreatedAt: time.UnixMilli(at),
	}
}

func captions(items []content.Suggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Caption
	}
	return out
}

func TestQueue_NewestFirst(t *testing.T) {
	q := NewQueue(5)
	require.True(t, q.Add(suggestion("1", "A", 1)))
	require.True(t, q.Add(suggestion("2", "B", 2)))

	assert.Equal(t, []string{"B", "A"}, captions(q.Items()))
}

func TestQueue_DedupesByCaption(t *testing.T) {
	q := NewQueue(5)
	require.True(t, q.Add(suggestion("1", "John 3:16", 1)))

	assert.False(t, q.Add(suggestion("2", "John 3:16", 2)))
	require.Equal(t, 1, q.Len())
	assert.Equal(t, "1", q.Items()[0].ID, "original entry is kept")
}

func TestQueue_EvictsOldestWhenFull(t *testing.T) {
	q := NewQueue(5)
	for i := 1; i <= 6; i++ {
		require.True(t, q.Add(suggestion(fmt.Sprint(i), fmt.Sprintf("C%d", i), int64(i))))
	}

	items := q.Items()
	require.Len(t, items, 5)
	assert.Equal(t, []string{"C6", "C5", "C4", "C3", "C2"}, captions(items))
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt))
	}
}

func TestQueue_EvictedCaptionCanReturn(t *testing.T) {
	q := NewQueue(1)
	require.True(t, q.Add(suggestion("1", "A", 1)))
	require.True(t, q.Add(suggestion("2", "B", 2)))

	assert.True(t, q.Add(suggestion("3", "A", 3)))
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue(5)
	q.Add(suggestion("1", "A", 1))
	q.Add(suggestion("2", "B", 2))
	q.Add(suggestion("3", "C", 3))

	got, ok := q.Remove("2")
	require.True(t, ok)
	assert.Equal(t, "B", got.Caption)
	assert.Equal(t, []string{"C", "A"}, captions(q.Items()))

	_, ok = q.Remove("2")
	assert.False(t, ok)
}

func TestQueue_ItemsIsACopy(t *testing.T) {
	q := NewQueue(5)
	q.Add(suggestion("1", "A", 1))

	items := q.Items()
	items[0].Caption = "mutated"

	assert.Equal(t, "A", q.Items()[0].Caption)
}

func TestQueue_NonPositiveCapacityUsesDefault(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 10; i++ {
		q.Add(suggestion(fmt.Sprint(i), fmt.Sprint(i), int64(i)))
	}
	assert.Equal(t, DefaultQueueCapacity, q.Len())
}

func TestActivityLog_BoundedNewestFirst(t *testing.T) {
	l := NewActivityLog(10)
	for i := 1; i <= 12; i++ {
		l.Add(content.ActivityRecord{ID: fmt.Sprint(i), SampledText: fmt.Sprintf("line %d", i)})
	}

	items := l.Items()
	require.Len(t, items, 10)
	assert.Equal(t, "line 12", items[0].SampledText)
	assert.Equal(t, "line 3", items[9].SampledText)

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Items())
}
