// Package render draws projection frames as bordered text blocks for
// terminal displays.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/roach88/spiritcast/internal/content"
)

// DefaultWidth is the total block width, borders included.
const DefaultWidth = 60

// minWidth leaves room for the borders and a few columns of text.
const minWidth = 20

// Size is the text size tier a display would use for a body.
type Size string

const (
	SizeLarge  Size = "large"
	SizeMedium Size = "medium"
	SizeSmall  Size = "small"
)

// SizeFor picks the size tier: long bodies render smaller.
func SizeFor(body string) Size {
	switch n := utf8.RuneCountInString(body); {
	case n > 200:
		return SizeSmall
	case n > 100:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// Style is the per-kind look of a block.
type Style struct {
	Label  string
	Border byte
}

var styles = map[content.Kind]Style{
	content.KindVerse:        {Label: "VERSE", Border: '='},
	content.KindSong:         {Label: "SONG", Border: '~'},
	content.KindAnnouncement: {Label: "ANNOUNCEMENT", Border: '*'},
	content.KindBlank:        {Label: "", Border: '-'},
}

// StyleFor returns the style for kind. Unknown kinds render as blank.
func StyleFor(kind content.Kind) Style {
	if s, ok := styles[kind]; ok {
		return s
	}
	return styles[content.KindBlank]
}

// Renderer draws frames at a fixed width.
type Renderer struct {
	width int
}

// New creates a renderer. Widths below the minimum are raised to it.
func New(width int) *Renderer {
	if width < minWidth {
		width = minWidth
	}
	return &Renderer{width: width}
}

// Frame writes f to w. Each body line starts a new text line; lines wider
// than the block wrap at spaces.
func (r *Renderer) Frame(w io.Writer, f content.Frame) error {
	bw := bufio.NewWriter(w)
	style := StyleFor(f.Kind)
	inner := r.width - 4

	rule := "+" + strings.Repeat(string(style.Border), r.width-2) + "+\n"
	bw.WriteString(rule)

	if f.IsBlank() || !f.Kind.Valid() {
		r.blankBody(bw, inner)
		bw.WriteString(rule)
		return bw.Flush()
	}

	r.row(bw, inner, fmt.Sprintf("%s | %s", style.Label, SizeFor(f.Body)), alignLeft)
	r.row(bw, inner, "", alignLeft)
	for _, line := range strings.Split(f.Body, "\n") {
		for _, wrapped := range wrap(line, inner) {
			r.row(bw, inner, wrapped, alignCenter)
		}
	}
	if f.Caption != "" {
		r.row(bw, inner, "", alignLeft)
		for _, wrapped := range wrap(f.Caption, inner) {
			r.row(bw, inner, wrapped, alignRight)
		}
	}
	if f.Kind == content.KindSong && f.Song != nil && f.Song.TotalSections > 0 {
		r.row(bw, inner, "", alignLeft)
		r.row(bw, inner, progress(f.Song), alignCenter)
	}

	bw.WriteString(rule)
	return bw.Flush()
}

func (r *Renderer) blankBody(bw *bufio.Writer, inner int) {
	r.row(bw, inner, "", alignLeft)
	r.row(bw, inner, "SpiritCast", alignCenter)
	r.row(bw, inner, "Ready for projection", alignCenter)
	r.row(bw, inner, "", alignLeft)
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

func (r *Renderer) row(bw *bufio.Writer, inner int, text string, a align) {
	pad := inner - displayWidth(text)
	if pad < 0 {
		pad = 0
	}
	left := 0
	switch a {
	case alignCenter:
		left = pad / 2
	case alignRight:
		left = pad
	}
	bw.WriteString("| ")
	bw.WriteString(strings.Repeat(" ", left))
	bw.WriteString(text)
	bw.WriteString(strings.Repeat(" ", pad-left))
	bw.WriteString(" |\n")
}

// progress draws one mark per section: '*' played, '#' current,
// '.' upcoming, then "n / total".
func progress(sc *content.SongContext) string {
	var b strings.Builder
	for i := 0; i < sc.TotalSections; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case i == sc.SectionIndex:
			b.WriteByte('#')
		case i < sc.SectionIndex:
			b.WriteByte('*')
		default:
			b.WriteByte('.')
		}
	}
	fmt.Fprintf(&b, "  %d / %d", sc.SectionIndex+1, sc.TotalSections)
	return b.String()
}

// displayWidth counts terminal columns; wide East Asian runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// wrap breaks line into pieces no wider than limit, preferring spaces.
// Words wider than limit are split.
func wrap(line string, limit int) []string {
	line = strings.TrimRight(line, " \t\r")
	if displayWidth(line) <= limit {
		return []string{line}
	}

	var out []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		out = append(out, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, word := range strings.Fields(line) {
		ww := displayWidth(word)
		if curW > 0 && curW+1+ww > limit {
			flush()
		}
		if ww > limit {
			for _, r := range word {
				rw := runeWidth(r)
				if curW+rw > limit {
					flush()
				}
				cur.WriteRune(r)
				curW += rw
			}
			continue
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	if curW > 0 {
		flush()
	}
	return out
}
