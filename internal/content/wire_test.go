package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame_WireShape(t *testing.T) {
	data, err := EncodeFrame(Frame{
		Kind:     KindVerse,
		Body:     "The Lord is my shepherd, I lack nothing.",
		Caption:  "Psalm 23:1",
		Sequence: 1700000000000,
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"verse","content":"The Lord is my shepherd, I lack nothing.","reference":"Psalm 23:1","timestamp":1700000000000}`,
		string(data))
}

func TestEncodeFrame_BlankOmitsReference(t *testing.T) {
	data, err := EncodeFrame(Blank())
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"blank","content":"","timestamp":0}`, string(data))
}

func TestEncodeFrame_NoHTMLEscaping(t *testing.T) {
	data, err := EncodeFrame(Frame{Kind: KindAnnouncement, Body: "Coffee & cake <after>"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "Coffee & cake <after>")
}

func TestEncodeFrame_UnknownKind(t *testing.T) {
	_, err := EncodeFrame(Frame{Kind: "video"})
	assert.Error(t, err)
}

func TestDecodeFrame_SongPreservesLineBreaks(t *testing.T) {
	in := Frame{
		Kind:     KindSong,
		Body:     "Then sings my soul\nHow great Thou art\n\nHow great Thou art",
		Caption:  "How Great Thou Art - Chorus",
		Sequence: 42,
		Song:     &SongContext{SongID: "how-great-thou-art", SectionIndex: 1, TotalSections: 3},
	}

	data, err := EncodeFrame(in)
	require.NoError(t, err)

	out, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeFrame_DropsSongContextOnNonSongKinds(t *testing.T) {
	out, err := DecodeFrame([]byte(`{"kind":"verse","content":"x","timestamp":3,"songContext":{"songId":"a","sectionIndex":0,"totalSections":1}}`))
	require.NoError(t, err)
	assert.Nil(t, out.Song)
}

func TestDecodeFrame_Corrupt(t *testing.T) {
	inputs := map[string]string{
		"not json":           `{"kind":`,
		"unknown kind":       `{"kind":"video","content":"","timestamp":1}`,
		"missing kind":       `{"content":"x","timestamp":1}`,
		"negative timestamp": `{"kind":"verse","content":"x","timestamp":-5}`,
		"wrong type":         `{"kind":"verse","content":12,"timestamp":1}`,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptFrame))
		})
	}
}
