// Package playback drives a song section by section onto the projection
// channel.
//
// The engine is a two-state machine, Idle and Active(song, index). Every
// transition publishes a frame derived from the active section; the engine
// never reads the channel back.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/spiritcast/internal/content"
)

// ErrSectionOutOfRange is returned by Start and GoTo for an index outside
// the song. The engine state is left unchanged.
var ErrSectionOutOfRange = errors.New("section index out of range")

// Publisher is the projection channel surface the engine writes to.
type Publisher interface {
	Publish(ctx context.Context, f content.Frame) (content.Frame, error)
	Clear(ctx context.Context) (content.Frame, error)
}

// Engine tracks the active song and section.
//
// Thread-safety: all methods are safe for concurrent use. Transitions are
// serialized and publish while holding the engine lock, so frames reach the
// channel in transition order. Channel subscribers must not call back into
// the engine synchronously.
type Engine struct {
	mu     sync.Mutex
	pub    Publisher
	logger *slog.Logger

	active bool
	song   content.Song
	index  int
}

// New creates an idle engine publishing to pub.
func New(pub Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{pub: pub, logger: logger}
}

// Start activates song at section index and publishes that section. Starting
// the section that is already active publishes a fresh frame anyway, so the
// display refreshes.
func (e *Engine) Start(ctx context.Context, song content.Song, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(song.Sections) {
		return fmt.Errorf("%w: %d not in [0,%d) for song %q", ErrSectionOutOfRange, index, len(song.Sections), song.ID)
	}

	e.active = true
	e.song = song
	e.index = index
	return e.publishLocked(ctx)
}

// GoTo jumps to section index of song. It behaves exactly like Start.
func (e *Engine) GoTo(ctx context.Context, song content.Song, index int) error {
	return e.Start(ctx, song, index)
}

// Next advances to the following section. Returns false without publishing
// when idle or already at the last section.
func (e *Engine) Next(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || e.index+1 >= len(e.song.Sections) {
		return false, nil
	}
	e.index++
	return true, e.publishLocked(ctx)
}

// Previous steps back one section. Returns false without publishing when
// idle or already at the first section.
func (e *Engine) Previous(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || e.index-1 < 0 {
		return false, nil
	}
	e.index--
	return true, e.publishLocked(ctx)
}

// Stop discards the playback state and publishes the blank frame.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		e.logger.Debug("playback stopped", "song", e.song.ID, "section", e.index)
	}
	e.active = false
	e.song = content.Song{}
	e.index = 0

	if _, err := e.pub.Clear(ctx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// State returns the playback position, or false when idle.
func (e *Engine) State() (content.PlaybackState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return content.PlaybackState{}, false
	}
	return content.PlaybackState{SongID: e.song.ID, SectionIndex: e.index}, true
}

// Song returns the active song, or false when idle.
func (e *Engine) Song() (content.Song, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.song, e.active
}

func (e *Engine) publishLocked(ctx context.Context) error {
	f := e.song.SectionFrame(e.index)
	e.logger.Debug("playback section", "song", e.song.ID, "section", e.index, "caption", f.Caption)
	if _, err := e.pub.Publish(ctx, f); err != nil {
		return fmt.Errorf("publish section %d of %q: %w", e.index, e.song.ID, err)
	}
	return nil
}
