// Package operator turns operator decisions into projection writes: manual
// verse, song and announcement picks, song navigation, and accepting or
// rejecting detection suggestions.
package operator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/spiritcast/internal/catalog"
	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/playback"
	"github.com/roach88/spiritcast/internal/suggest"
)

var (
	// ErrEmptyAnnouncement is returned when an announcement has no text.
	ErrEmptyAnnouncement = errors.New("announcement text is empty")

	// ErrUnknownSuggestion is returned when no pending suggestion has the id.
	ErrUnknownSuggestion = errors.New("no pending suggestion with that id")

	// ErrDetectionDisabled is returned by suggestion actions when the console
	// has no detection engine.
	ErrDetectionDisabled = errors.New("detection is not enabled")
)

// Projector is the projection surface the console writes to.
// *projection.Channel implements it.
type Projector interface {
	Publish(ctx context.Context, f content.Frame) (content.Frame, error)
	Clear(ctx context.Context) (content.Frame, error)
	Current() content.Frame
}

// Console is the operator's control surface.
//
// Manual verse and announcement picks do not touch song playback, so Next
// and Previous resume the song where it was left.
type Console struct {
	catalog   catalog.Catalog
	versionID string
	proj      Projector
	playback  *playback.Engine
	detection *suggest.Engine
	logger    *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithVersion sets the default Bible version for verse picks.
func WithVersion(id string) Option {
	return func(c *Console) { c.versionID = id }
}

// WithDetection attaches a suggestion engine.
func WithDetection(e *suggest.Engine) Option {
	return func(c *Console) { c.detection = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// New creates a console projecting catalog content to proj.
func New(cat catalog.Catalog, proj Projector, opts ...Option) *Console {
	c := &Console{
		catalog: cat,
		proj:    proj,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.playback = playback.New(proj, c.logger)
	return c
}

// Current returns the frame on screen as far as this console knows.
func (c *Console) Current() content.Frame {
	return c.proj.Current()
}

// Playback returns the song playback position, or false when no song is
// active.
func (c *Console) Playback() (content.PlaybackState, bool) {
	return c.playback.State()
}

// Detection returns the attached suggestion engine, or nil.
func (c *Console) Detection() *suggest.Engine {
	return c.detection
}

// ProjectVerse projects reference in versionID. An empty versionID uses the
// console default, then the catalog default.
func (c *Console) ProjectVerse(ctx context.Context, reference, versionID string) (content.Frame, error) {
	if versionID == "" {
		versionID = c.versionID
	}
	v, err := c.catalog.GetVerse(reference, versionID)
	if err != nil {
		return content.Frame{}, err
	}
	c.logger.Info("projecting verse", "reference", v.Reference, "version", v.Version.ID)
	return c.proj.Publish(ctx, v.Frame())
}

// ProjectSong starts song playback at section.
func (c *Console) ProjectSong(ctx context.Context, songID string, section int) (content.Frame, error) {
	song, err := c.catalog.GetSong(songID)
	if err != nil {
		return content.Frame{}, err
	}
	if err := c.playback.Start(ctx, song, section); err != nil {
		return content.Frame{}, err
	}
	c.logger.Info("projecting song", "song", song.ID, "section", section)
	return c.proj.Current(), nil
}

// NextSection advances the active song. Returns false when there is no
// active song or it is on its last section.
func (c *Console) NextSection(ctx context.Context) (bool, error) {
	return c.playback.Next(ctx)
}

// PreviousSection steps the active song back. Returns false when there is
// no active song or it is on its first section.
func (c *Console) PreviousSection(ctx context.Context) (bool, error) {
	return c.playback.Previous(ctx)
}

// StopSong ends playback and blanks the display.
func (c *Console) StopSong(ctx context.Context) error {
	return c.playback.Stop(ctx)
}

// Announce projects free text. caption is optional.
func (c *Console) Announce(ctx context.Context, text, caption string) (content.Frame, error) {
	if strings.TrimSpace(text) == "" {
		return content.Frame{}, ErrEmptyAnnouncement
	}
	c.logger.Info("projecting announcement", "caption", caption)
	return c.proj.Publish(ctx, content.Frame{
		Kind:    content.KindAnnouncement,
		Body:    text,
		Caption: caption,
	})
}

// Clear blanks the display. Song playback state is kept.
func (c *Console) Clear(ctx context.Context) (content.Frame, error) {
	c.logger.Info("clearing projection")
	return c.proj.Clear(ctx)
}

// Accept removes the suggestion from the queue and projects it. A song
// suggestion whose song is still in the catalog goes through playback, so
// Next and Previous work from the accepted section; otherwise the
// suggestion's own frame is projected as is.
func (c *Console) Accept(ctx context.Context, id string) (content.Frame, error) {
	if c.detection == nil {
		return content.Frame{}, ErrDetectionDisabled
	}
	sug, ok := c.detection.Accept(id)
	if !ok {
		return content.Frame{}, fmt.Errorf("accept %q: %w", id, ErrUnknownSuggestion)
	}
	c.logger.Info("suggestion accepted", "id", sug.ID, "caption", sug.Caption, "confidence", sug.Confidence)

	if sug.Kind == content.KindSong && sug.Song != nil {
		song, err := c.catalog.GetSong(sug.Song.SongID)
		switch {
		case err == nil && sug.Song.SectionIndex < len(song.Sections):
			if err := c.playback.GoTo(ctx, song, sug.Song.SectionIndex); err != nil {
				return content.Frame{}, err
			}
			return c.proj.Current(), nil
		case err != nil && !errors.Is(err, catalog.ErrNotFound):
			return content.Frame{}, err
		default:
			c.logger.Warn("accepted song not playable from catalog, projecting as suggested", "song", sug.Song.SongID)
		}
	}
	return c.proj.Publish(ctx, sug.Frame())
}

// Reject discards the suggestion.
func (c *Console) Reject(id string) error {
	if c.detection == nil {
		return ErrDetectionDisabled
	}
	if !c.detection.Reject(id) {
		return fmt.Errorf("reject %q: %w", id, ErrUnknownSuggestion)
	}
	c.logger.Info("suggestion rejected", "id", id)
	return nil
}
