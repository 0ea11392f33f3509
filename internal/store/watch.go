package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the fallback re-read interval for WatchSlot.
const DefaultPollInterval = 500 * time.Millisecond

// WatchOptions configures WatchSlot.
type WatchOptions struct {
	// Poll is the fallback re-read interval. Zero uses DefaultPollInterval.
	Poll time.Duration

	// Logger receives watcher diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// WatchSlot calls fn each time the value stored under key changes, until
// ctx is cancelled. It returns ctx.Err().
//
// The value present when WatchSlot starts is reported first, so a write
// landing between the caller's own read and the watch is never lost;
// callers drop the repeat by sequence. fn runs on the watcher goroutine; a
// slow fn delays later notifications but never drops the latest value,
// since every trigger re-reads the slot.
//
// Filesystem notifications are an accelerator only: if fsnotify cannot be
// set up (in-memory database, unsupported platform) the watcher polls.
func (s *Store) WatchSlot(ctx context.Context, key string, opts WatchOptions, fn func(Slot)) error {
	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w := s.newFSWatcher(logger); w != nil {
		defer w.Close()
		events = w.Events
		errs = w.Errors
	}

	var lastSeq int64
	var lastPayload []byte
	check := func() {
		slot, ok, err := s.ReadSlot(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("watch: read slot failed", "key", key, "error", err)
			}
			return
		}
		if !ok || (slot.Sequence == lastSeq && bytes.Equal(slot.Payload, lastPayload)) {
			return
		}
		lastSeq, lastPayload = slot.Sequence, slot.Payload
		fn(slot)
	}

	check()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !relevant(ev, base) {
				continue
			}
			check()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch: fsnotify error", "error", err)

		case <-ticker.C:
			check()
		}
	}
}

// newFSWatcher watches the database directory, or returns nil when
// notifications are unavailable.
func (s *Store) newFSWatcher(logger *slog.Logger) *fsnotify.Watcher {
	if s.path == "" || s.path == ":memory:" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("watch: fsnotify unavailable, polling only", "error", err)
		return nil
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		logger.Warn("watch: cannot watch database directory, polling only", "dir", dir, "error", err)
		w.Close()
		return nil
	}
	return w
}

// relevant reports whether ev touches the database or its WAL file.
func relevant(ev fsnotify.Event, base string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == base || name == base+"-wal"
}
