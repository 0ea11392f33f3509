package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRecorder struct {
	mu    sync.Mutex
	slots []Slot
}

func (r *slotRecorder) record(s Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = append(r.slots, s)
}

func (r *slotRecorder) sequences() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Sequence
	}
	return out
}

func TestWatchSlot_SeesOtherConnectionWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	display, err := Open(path)
	require.NoError(t, err)
	defer display.Close()
	operator, err := Open(path)
	require.NoError(t, err)
	defer operator.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &slotRecorder{}
	done := make(chan error, 1)
	go func() {
		done <- display.WatchSlot(ctx, ProjectionKey, WatchOptions{Poll: 20 * time.Millisecond}, rec.record)
	}()

	// Let the watcher start
	time.Sleep(50 * time.Millisecond)

	_, err = operator.WriteSlot(context.Background(), ProjectionKey, 1, []byte("first"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.sequences()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = operator.WriteSlot(context.Background(), ProjectionKey, 2, []byte("second"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.sequences()) == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []int64{1, 2}, rec.sequences())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchSlot did not return after cancel")
	}
}

func TestWatchSlot_ReportsInitialValueOnce(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteSlot(context.Background(), ProjectionKey, 7, []byte("existing"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	rec := &slotRecorder{}
	err = s.WatchSlot(ctx, ProjectionKey, WatchOptions{Poll: 10 * time.Millisecond}, rec.record)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []int64{7}, rec.sequences())
}

func TestWatchSlot_EmptySlotReportsNothing(t *testing.T) {
	s := createTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	rec := &slotRecorder{}
	err := s.WatchSlot(ctx, ProjectionKey, WatchOptions{Poll: 10 * time.Millisecond}, rec.record)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rec.sequences())
}
