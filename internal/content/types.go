package content

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a frame or suggestion projects.
type Kind string

const (
	KindVerse        Kind = "verse"
	KindSong         Kind = "song"
	KindAnnouncement Kind = "announcement"
	KindBlank        Kind = "blank"
)

// Valid reports whether k is one of the known frame kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVerse, KindSong, KindAnnouncement, KindBlank:
		return true
	}
	return false
}

// SongContext locates a projected song section within its song.
type SongContext struct {
	SongID        string `json:"songId"`
	SectionIndex  int    `json:"sectionIndex"`
	TotalSections int    `json:"totalSections"`
}

// Frame is one unit of projected state.
type Frame struct {
	Kind     Kind
	Body     string
	Caption  string
	Sequence int64
	Song     *SongContext // Only for KindSong frames driven by playback
}

// Blank returns the idle frame: no body, no caption, sequence 0.
func Blank() Frame {
	return Frame{Kind: KindBlank}
}

// IsBlank reports whether f is an idle frame.
func (f Frame) IsBlank() bool {
	return f.Kind == KindBlank
}

// SectionType is the structural role of a song section.
type SectionType string

const (
	SectionIntro     SectionType = "intro"
	SectionVerse     SectionType = "verse"
	SectionChorus    SectionType = "chorus"
	SectionBridge    SectionType = "bridge"
	SectionPreChorus SectionType = "pre-chorus"
	SectionOutro     SectionType = "outro"
)

// SongSection is one performable unit of a song.
type SongSection struct {
	ID      string
	Type    SectionType
	Number  int // 0 when the section is unnumbered
	Content string
}

// Label renders the section type with a capital first letter, followed by
// the section number when one is set: "Verse 2", "Chorus", "Pre-chorus".
func (s SongSection) Label() string {
	t := string(s.Type)
	if t == "" {
		return ""
	}
	label := strings.ToUpper(t[:1]) + t[1:]
	if s.Number > 0 {
		label += " " + strconv.Itoa(s.Number)
	}
	return label
}

// Song is an ordered list of sections in performance order.
// Songs are immutable once loaded from the catalog.
type Song struct {
	ID       string
	Title    string
	Artist   string
	Sections []SongSection
}

// SectionCaption returns the caption projected for section i of s.
func (s Song) SectionCaption(i int) string {
	return s.Title + " - " + s.Sections[i].Label()
}

// SectionFrame derives the projection frame for section i of s.
// The caller must ensure 0 <= i < len(s.Sections).
func (s Song) SectionFrame(i int) Frame {
	return Frame{
		Kind:    KindSong,
		Body:    s.Sections[i].Content,
		Caption: s.SectionCaption(i),
		Song: &SongContext{
			SongID:        s.ID,
			SectionIndex:  i,
			TotalSections: len(s.Sections),
		},
	}
}

// PlaybackState is the song playback position.
type PlaybackState struct {
	SongID       string
	SectionIndex int
}

// Suggestion is a candidate the detection engine proposes to the operator.
type Suggestion struct {
	ID         string
	Kind       Kind // KindVerse or KindSong
	Body       string
	Caption    string
	Confidence int // 0-100
	CreatedAt  time.Time
	Song       *SongContext
}

// Frame derives the projection frame published when s is accepted.
func (s Suggestion) Frame() Frame {
	f := Frame{Kind: s.Kind, Body: s.Body, Caption: s.Caption}
	if s.Song != nil {
		sc := *s.Song
		f.Song = &sc
	}
	return f
}

// ActivityRecord logs one sampled utterance and whether it matched.
type ActivityRecord struct {
	ID          string
	SampledText string
	ObservedAt  time.Time
	Matched     bool
}

// BibleVersion is a static translation descriptor.
type BibleVersion struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
	Description  string `json:"description"`
}

// VerseLookupResult is a verse rendered in one version.
type VerseLookupResult struct {
	Reference string
	Body      string
	Version   BibleVersion
}

// Frame derives the projection frame for the verse.
func (v VerseLookupResult) Frame() Frame {
	return Frame{Kind: KindVerse, Body: v.Body, Caption: v.Reference}
}
