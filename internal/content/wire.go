package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ErrCorruptFrame is returned when a persisted frame cannot be decoded.
var ErrCorruptFrame = errors.New("corrupt projection frame")

// wireFrame is the JSON object stored in the durable slot and carried by
// cross-context notifications.
type wireFrame struct {
	Kind        Kind         `json:"kind"`
	Content     string       `json:"content"`
	Reference   string       `json:"reference,omitempty"`
	Timestamp   int64        `json:"timestamp"`
	SongContext *SongContext `json:"songContext,omitempty"`
}

// EncodeFrame serializes f to its wire JSON form.
// Text fields are NFC normalized at the serialization boundary and HTML
// escaping is disabled so lyrics round-trip unchanged.
func EncodeFrame(f Frame) ([]byte, error) {
	if !f.Kind.Valid() {
		return nil, fmt.Errorf("encode frame: unknown kind %q", f.Kind)
	}
	w := wireFrame{
		Kind:        f.Kind,
		Content:     norm.NFC.String(f.Body),
		Reference:   norm.NFC.String(f.Caption),
		Timestamp:   f.Sequence,
		SongContext: f.Song,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeFrame parses a wire frame. Any parse failure or unknown kind is
// reported as ErrCorruptFrame.
func DecodeFrame(data []byte) (Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	if !w.Kind.Valid() {
		return Frame{}, fmt.Errorf("%w: unknown kind %q", ErrCorruptFrame, w.Kind)
	}
	if w.Timestamp < 0 {
		return Frame{}, fmt.Errorf("%w: negative timestamp %d", ErrCorruptFrame, w.Timestamp)
	}
	f := Frame{
		Kind:     w.Kind,
		Body:     w.Content,
		Caption:  w.Reference,
		Sequence: w.Timestamp,
	}
	if w.Kind == KindSong {
		f.Song = w.SongContext
	}
	return f, nil
}
