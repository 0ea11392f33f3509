package operator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spiritcast/internal/catalog"
	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/playback"
	"github.com/roach88/spiritcast/internal/projection"
	"github.com/roach88/spiritcast/internal/suggest"
	"github.com/roach88/spiritcast/internal/testutil"
)

type fixture struct {
	console   *Console
	channel   *projection.Channel
	detection *suggest.Engine
	lib       *catalog.Library
	seen      []content.Frame
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, consoleCatalog catalog.Catalog) *fixture {
	t.Helper()
	lib, err := catalog.Builtin()
	require.NoError(t, err)
	if consoleCatalog == nil {
		consoleCatalog = lib
	}
	m, err := suggest.NewMatcher(lib, "")
	require.NoError(t, err)

	f := &fixture{lib: lib}
	f.channel = projection.New(projection.NewMemoryPort(), projection.WithLogger(quietLogger()))
	f.detection = suggest.New(m,
		suggest.WithScheduler(suggest.NewManualScheduler()),
		suggest.WithRand(testutil.NewFixedRand()),
		suggest.WithIDGenerator(testutil.NewSequentialIDs("s")),
		suggest.WithLogger(quietLogger()),
	)
	f.console = New(consoleCatalog, f.channel,
		WithDetection(f.detection),
		WithLogger(quietLogger()),
	)

	sub := f.channel.Subscribe(context.Background(), func(fr content.Frame) {
		f.seen = append(f.seen, fr)
	})
	t.Cleanup(sub.Unsubscribe)
	return f
}

func (f *fixture) last() content.Frame {
	return f.seen[len(f.seen)-1]
}

func TestProjectVerse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	fr, err := f.console.ProjectVerse(ctx, "john 3:16", "esv")
	require.NoError(t, err)

	want, err := f.lib.GetVerse("John 3:16", "esv")
	require.NoError(t, err)
	assert.Equal(t, content.KindVerse, fr.Kind)
	assert.Equal(t, "John 3:16", fr.Caption)
	assert.Equal(t, want.Body, fr.Body)
	assert.Equal(t, fr, f.last())
}

func TestProjectVerse_DefaultVersion(t *testing.T) {
	lib, err := catalog.Builtin()
	require.NoError(t, err)
	f := newFixture(t, nil)
	f.console = New(lib, f.channel, WithVersion("kjv"), WithLogger(quietLogger()))

	fr, err := f.console.ProjectVerse(context.Background(), "Psalm 23:1", "")
	require.NoError(t, err)

	kjv, err := lib.GetVerse("Psalm 23:1", "kjv")
	require.NoError(t, err)
	assert.Equal(t, kjv.Body, fr.Body)
}

func TestProjectVerse_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.console.ProjectVerse(context.Background(), "Hezekiah 1:1", "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Len(t, f.seen, 1, "only the bootstrap frame")
}

func TestProjectSongAndNavigate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	fr, err := f.console.ProjectSong(ctx, "how-great-thou-art", 0)
	require.NoError(t, err)
	assert.Equal(t, "How Great Thou Art - Verse 1", fr.Caption)

	moved, err := f.console.NextSection(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "How Great Thou Art - Chorus", f.last().Caption)

	moved, err = f.console.PreviousSection(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "How Great Thou Art - Verse 1", f.last().Caption)

	require.NoError(t, f.console.StopSong(ctx))
	assert.True(t, f.last().IsBlank())
	_, active := f.console.Playback()
	assert.False(t, active)
}

func TestProjectSong_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.console.ProjectSong(ctx, "missing", 0)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = f.console.ProjectSong(ctx, "amazing-grace", 3)
	assert.ErrorIs(t, err, playback.ErrSectionOutOfRange)
	assert.Len(t, f.seen, 1)
}

func TestVerseDuringSongKeepsPlayback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.console.ProjectSong(ctx, "amazing-grace", 0)
	require.NoError(t, err)
	_, err = f.console.ProjectVerse(ctx, "Romans 8:28", "")
	require.NoError(t, err)

	state, ok := f.console.Playback()
	require.True(t, ok)
	assert.Equal(t, content.PlaybackState{SongID: "amazing-grace", SectionIndex: 0}, state)

	moved, err := f.console.NextSection(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "Amazing Grace - Verse 2", f.last().Caption)
}

func TestAnnounce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	fr, err := f.console.Announce(ctx, "Potluck after service", "Today")
	require.NoError(t, err)
	assert.Equal(t, content.KindAnnouncement, fr.Kind)
	assert.Equal(t, "Today", fr.Caption)

	_, err = f.console.Announce(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrEmptyAnnouncement)
}

func TestClear(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.console.Announce(ctx, "Welcome", "")
	require.NoError(t, err)

	fr, err := f.console.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, fr.IsBlank())
	assert.Equal(t, fr, f.console.Current())
}

func TestAcceptVerseSuggestion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sug, ok := f.detection.Ingest("Jeremiah 29:11")
	require.True(t, ok)

	fr, err := f.console.Accept(ctx, sug.ID)
	require.NoError(t, err)

	assert.Equal(t, content.KindVerse, fr.Kind)
	assert.Equal(t, sug.Body, fr.Body)
	assert.Equal(t, sug.Caption, fr.Caption)
	assert.Equal(t, fr, f.last())
	assert.Empty(t, f.detection.Suggestions())
}

func TestAcceptSongSuggestionStartsPlayback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sug, ok := f.detection.Ingest("How Great Thou Art")
	require.True(t, ok)

	fr, err := f.console.Accept(ctx, sug.ID)
	require.NoError(t, err)
	assert.Equal(t, sug.Caption, fr.Caption)
	assert.Equal(t, sug.Song, fr.Song)

	state, ok := f.console.Playback()
	require.True(t, ok)
	assert.Equal(t, "how-great-thou-art", state.SongID)

	moved, err := f.console.NextSection(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
}

func TestAcceptSongMissingFromCatalog(t *testing.T) {
	minimal, err := catalog.LoadFile("../catalog/testdata/minimal.yaml")
	require.NoError(t, err)
	f := newFixture(t, minimal)
	sug, ok := f.detection.Ingest("Amazing Grace")
	require.True(t, ok)

	fr, err := f.console.Accept(context.Background(), sug.ID)
	require.NoError(t, err)

	assert.Equal(t, sug.Body, fr.Body)
	assert.Equal(t, sug.Caption, fr.Caption)
	_, active := f.console.Playback()
	assert.False(t, active)
}

func TestAcceptUnknown(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.console.Accept(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownSuggestion)
	assert.Len(t, f.seen, 1)
}

func TestReject(t *testing.T) {
	f := newFixture(t, nil)
	sug, ok := f.detection.Ingest("Romans 8:28")
	require.True(t, ok)

	require.NoError(t, f.console.Reject(sug.ID))
	assert.Empty(t, f.detection.Suggestions())
	assert.Len(t, f.seen, 1, "reject never projects")

	assert.ErrorIs(t, f.console.Reject(sug.ID), ErrUnknownSuggestion)
}

func TestSuggestionActionsWithoutDetection(t *testing.T) {
	lib, err := catalog.Builtin()
	require.NoError(t, err)
	c := New(lib, projection.New(projection.NewMemoryPort()), WithLogger(quietLogger()))

	_, err = c.Accept(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDetectionDisabled)
	assert.ErrorIs(t, c.Reject("x"), ErrDetectionDisabled)
	assert.Nil(t, c.Detection())
}
