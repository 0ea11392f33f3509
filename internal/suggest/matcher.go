package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/spiritcast/internal/catalog"
	"github.com/roach88/spiritcast/internal/content"
)

const (
	verseConfidenceMin  = 80
	verseConfidenceSpan = 20 // [80, 99]
	songConfidenceMin   = 75
	songConfidenceSpan  = 15 // [75, 89]
)

// songCues are words that route any utterance to the song path.
var songCues = []string{"sing", "worship"}

var referencePattern = regexp.MustCompile(`^(.+?)\s+(\d+):(\d+)$`)

// Match is a matcher hit, not yet stamped with id and creation time.
type Match struct {
	Kind       content.Kind
	Body       string
	Caption    string
	Confidence int
	Song       *content.SongContext
}

type versePattern struct {
	reference string
	re        *regexp.Regexp
}

// Matcher maps utterances to catalog content.
//
// Verse references are tried first, in catalog order, then songs in catalog
// order. The first hit wins.
type Matcher struct {
	catalog   catalog.Catalog
	versionID string
	verses    []versePattern
}

// NewMatcher compiles one pattern per catalog verse reference. Verse bodies
// are rendered in versionID; empty selects the catalog default.
func NewMatcher(cat catalog.Catalog, versionID string) (*Matcher, error) {
	m := &Matcher{
		catalog:   cat,
		versionID: versionID,
	}
	for _, ref := range cat.VerseReferences() {
		re, err := m.compileReference(ref)
		if err != nil {
			return nil, err
		}
		m.verses = append(m.verses, versePattern{reference: ref, re: re})
	}
	return m, nil
}

// compileReference turns "1 John 4:8" into a pattern accepting
// "1 john 4:8" and "1 john 4 8" with any run of spaces between tokens.
func (m *Matcher) compileReference(ref string) (*regexp.Regexp, error) {
	parts := referencePattern.FindStringSubmatch(strings.TrimSpace(ref))
	if parts == nil {
		return nil, fmt.Errorf("verse reference %q: want \"Book C:V\"", ref)
	}
	book := strings.Fields(m.normalize(parts[1]))
	for i, w := range book {
		book[i] = regexp.QuoteMeta(w)
	}
	expr := `\b` + strings.Join(book, `\s+`) + `\s+` + parts[2] + `(?::|\s+)` + parts[3] + `\b`
	return regexp.Compile(expr)
}

// normalize composes, case-folds and collapses whitespace. A Caser holds
// state, so each call takes a fresh one.
func (m *Matcher) normalize(s string) string {
	s = cases.Fold().String(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// Match runs utterance through the verse path then the song path.
// r picks the song section and the confidence.
func (m *Matcher) Match(utterance string, r Rand) (Match, bool) {
	text := m.normalize(utterance)
	if text == "" {
		return Match{}, false
	}

	for _, vp := range m.verses {
		if !vp.re.MatchString(text) {
			continue
		}
		v, err := m.catalog.GetVerse(vp.reference, m.versionID)
		if err != nil {
			// Not available in the configured version; keep scanning.
			continue
		}
		return Match{
			Kind:       content.KindVerse,
			Body:       v.Body,
			Caption:    v.Reference,
			Confidence: verseConfidenceMin + r.IntN(verseConfidenceSpan),
		}, true
	}

	cued := false
	for _, cue := range songCues {
		if strings.Contains(text, cue) {
			cued = true
			break
		}
	}
	for _, song := range m.catalog.Songs() {
		if len(song.Sections) == 0 {
			continue
		}
		if !cued && !strings.Contains(text, m.normalize(song.Title)) {
			continue
		}
		i := r.IntN(len(song.Sections))
		f := song.SectionFrame(i)
		return Match{
			Kind:       content.KindSong,
			Body:       f.Body,
			Caption:    f.Caption,
			Confidence: songConfidenceMin + r.IntN(songConfidenceSpan),
			Song:       f.Song,
		}, true
	}
	return Match{}, false
}
