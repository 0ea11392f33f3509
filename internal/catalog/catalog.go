package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/spiritcast/internal/content"
)

var (
	// ErrNotFound is returned for a verse, song or version the catalog
	// does not hold. It is a normal outcome, not a failure.
	ErrNotFound = errors.New("not found in catalog")

	// ErrInvalidCatalog is returned when a catalog document fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Catalog is the read-only content source consumed by the playback engine,
// the suggestion engine and the operator actions.
//
// An empty versionID selects the catalog default version.
type Catalog interface {
	Versions() []content.BibleVersion
	DefaultVersion() content.BibleVersion
	GetVerse(reference, versionID string) (content.VerseLookupResult, error)
	SearchVerses(query, versionID string) []content.VerseLookupResult
	VerseReferences() []string
	GetSong(id string) (content.Song, error)
	SearchSongs(query string) []content.Song
	Songs() []content.Song
}

type verse struct {
	reference string
	bodies    map[string]string // version id -> text
}

// Library is the in-memory Catalog built from a validated document.
// It is immutable and safe for concurrent use.
type Library struct {
	versions       []content.BibleVersion
	defaultVersion content.BibleVersion
	verses         []verse
	songs          []content.Song
}

var _ Catalog = (*Library)(nil)

// Builtin returns the embedded demo catalog.
func Builtin() (*Library, error) {
	return Parse(builtinYAML)
}

// Load reads and validates a catalog document.
func Load(r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and validates the catalog document at path.
func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Parse validates a YAML catalog document and builds a Library.
func Parse(data []byte) (*Library, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}

	lib := &Library{}
	for _, v := range doc.Versions {
		bv := content.BibleVersion{
			ID:           v.ID,
			Name:         v.Name,
			Abbreviation: v.Abbreviation,
			Language:     v.Language,
			Description:  v.Description,
		}
		lib.versions = append(lib.versions, bv)
		if v.ID == doc.DefaultVersion {
			lib.defaultVersion = bv
		}
	}

	for _, v := range doc.Verses {
		bodies := make(map[string]string, len(v.Versions))
		for id, text := range v.Versions {
			bodies[id] = text
		}
		lib.verses = append(lib.verses, verse{reference: v.Reference, bodies: bodies})
	}

	for _, s := range doc.Songs {
		song := content.Song{ID: s.ID, Title: s.Title, Artist: s.Artist}
		for _, sec := range s.Sections {
			cs := content.SongSection{ID: sec.ID, Type: content.SectionType(sec.Type), Content: sec.Content}
			if sec.Number != nil {
				cs.Number = *sec.Number
			}
			song.Sections = append(song.Sections, cs)
		}
		lib.songs = append(lib.songs, song)
	}

	return lib, nil
}

// Versions returns the available translations in catalog order.
func (l *Library) Versions() []content.BibleVersion {
	out := make([]content.BibleVersion, len(l.versions))
	copy(out, l.versions)
	return out
}

// DefaultVersion returns the translation used when none is requested.
func (l *Library) DefaultVersion() content.BibleVersion {
	return l.defaultVersion
}

// version resolves a version id, falling back to the default for "".
func (l *Library) version(id string) (content.BibleVersion, bool) {
	if id == "" {
		return l.defaultVersion, true
	}
	for _, v := range l.versions {
		if strings.EqualFold(v.ID, id) {
			return v, true
		}
	}
	return content.BibleVersion{}, false
}

// GetVerse returns the verse whose reference equals reference, ignoring
// case, rendered in the requested version.
func (l *Library) GetVerse(reference, versionID string) (content.VerseLookupResult, error) {
	ver, ok := l.version(versionID)
	if !ok {
		return content.VerseLookupResult{}, fmt.Errorf("version %q: %w", versionID, ErrNotFound)
	}
	ref := strings.TrimSpace(reference)
	for _, v := range l.verses {
		if !strings.EqualFold(v.reference, ref) {
			continue
		}
		body, ok := v.bodies[ver.ID]
		if !ok {
			return content.VerseLookupResult{}, fmt.Errorf("verse %q in %s: %w", reference, ver.Abbreviation, ErrNotFound)
		}
		return content.VerseLookupResult{Reference: v.reference, Body: body, Version: ver}, nil
	}
	return content.VerseLookupResult{}, fmt.Errorf("verse %q: %w", reference, ErrNotFound)
}

// SearchVerses returns the verses whose reference or text in the requested
// version contains query. An unknown version yields no results.
func (l *Library) SearchVerses(query, versionID string) []content.VerseLookupResult {
	ver, ok := l.version(versionID)
	if !ok {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var out []content.VerseLookupResult
	for _, v := range l.verses {
		body, ok := v.bodies[ver.ID]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(v.reference), q) || strings.Contains(strings.ToLower(body), q) {
			out = append(out, content.VerseLookupResult{Reference: v.reference, Body: body, Version: ver})
		}
	}
	return out
}

// VerseReferences returns every verse reference in catalog order.
func (l *Library) VerseReferences() []string {
	out := make([]string, len(l.verses))
	for i, v := range l.verses {
		out[i] = v.reference
	}
	return out
}

// GetSong returns the song with the given id.
func (l *Library) GetSong(id string) (content.Song, error) {
	for _, s := range l.songs {
		if strings.EqualFold(s.ID, id) {
			return cloneSong(s), nil
		}
	}
	return content.Song{}, fmt.Errorf("song %q: %w", id, ErrNotFound)
}

// SearchSongs returns songs whose title or artist contains query.
// A blank query returns the whole catalog in order.
func (l *Library) SearchSongs(query string) []content.Song {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []content.Song
	for _, s := range l.songs {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Artist), q) {
			out = append(out, cloneSong(s))
		}
	}
	return out
}

// Songs returns the whole song catalog in order.
func (l *Library) Songs() []content.Song {
	return l.SearchSongs("")
}

// cloneSong copies the section slice so callers cannot mutate the catalog.
func cloneSong(s content.Song) content.Song {
	sections := make([]content.SongSection, len(s.Sections))
	copy(sections, s.Sections)
	s.Sections = sections
	return s
}
