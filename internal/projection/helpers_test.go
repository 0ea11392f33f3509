package projection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/testutil"
)

// recorder collects frames delivered to a subscription.
type recorder struct {
	mu     sync.Mutex
	frames []content.Frame
}

func (r *recorder) on(f content.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) all() []content.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]content.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) last() content.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *recorder) sequences() []int64 {
	frames := r.all()
	out := make([]int64, len(frames))
	for i, f := range frames {
		out[i] = f.Sequence
	}
	return out
}

// steppingClock returns a clock that advances one millisecond per call.
func steppingClock() *Clock {
	return NewClockWith(testutil.NewDeterministicClockAt(time.UnixMilli(1_001), time.Millisecond).Now)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestChannel(port Port) *Channel {
	return New(port, WithClock(steppingClock()), WithLogger(quietLogger()))
}

// startRun runs ch.Run until the test ends.
func startRun(t *testing.T, ch *Channel) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("Run() returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not stop")
		}
	})
}

// waitWatchers blocks until port has n active watchers.
func waitWatchers(t *testing.T, port *MemoryPort, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for port.Watchers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("port has %d watchers, want %d", port.Watchers(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func mustEncode(t *testing.T, f content.Frame) []byte {
	t.Helper()
	data, err := content.EncodeFrame(f)
	if err != nil {
		t.Fatalf("EncodeFrame() failed: %v", err)
	}
	return data
}

// subscriberCount returns the number of registered subscriptions on c.
func subscriberCount(c *Channel) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
