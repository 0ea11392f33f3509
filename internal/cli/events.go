package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/roach88/spiritcast/internal/content"
	"github.com/roach88/spiritcast/internal/suggest"
)

// syncWriter serializes writes from the REPL and engine timer goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type suggestionView struct {
	ID         string               `json:"id"`
	Kind       content.Kind         `json:"kind"`
	Caption    string               `json:"caption"`
	Body       string               `json:"content"`
	Confidence int                  `json:"confidence"`
	CreatedAt  time.Time            `json:"createdAt"`
	Song       *content.SongContext `json:"songContext,omitempty"`
}

func newSuggestionView(s content.Suggestion) suggestionView {
	return suggestionView{
		ID:         s.ID,
		Kind:       s.Kind,
		Caption:    s.Caption,
		Body:       s.Body,
		Confidence: s.Confidence,
		CreatedAt:  s.CreatedAt,
		Song:       s.Song,
	}
}

type eventView struct {
	Type       string          `json:"type"`
	Listening  bool            `json:"listening"`
	Processing bool            `json:"processing"`
	Activity   *activityView   `json:"activity,omitempty"`
	Suggestion *suggestionView `json:"suggestion,omitempty"`
}

func newEventView(ev suggest.Event) eventView {
	v := eventView{Type: ev.Type.String(), Listening: ev.Listening, Processing: ev.Processing}
	if ev.Activity != nil {
		a := activityViews([]content.ActivityRecord{*ev.Activity})[0]
		v.Activity = &a
	}
	if ev.Suggestion != nil {
		s := newSuggestionView(*ev.Suggestion)
		v.Suggestion = &s
	}
	return v
}

// writeEvent prints one engine event as a human-readable line. Processing
// changes are diagnostics and go through out.VerboseLog.
func writeEvent(out *OutputFormatter, ev suggest.Event) {
	w := out.Writer
	switch ev.Type {
	case suggest.EventListening:
		if ev.Listening {
			fmt.Fprintln(w, "* listening")
		} else {
			fmt.Fprintln(w, "* stopped listening")
		}
	case suggest.EventProcessing:
		if ev.Processing {
			out.VerboseLog("* processing...")
		}
	case suggest.EventActivity:
		writeActivity(w, *ev.Activity)
	case suggest.EventSuggestion:
		s := ev.Suggestion
		fmt.Fprintf(w, "? %s %s (%d%%) id=%s\n", s.Kind, s.Caption, s.Confidence, s.ID)
	}
}
