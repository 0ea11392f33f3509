package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSlot_Empty(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.ReadSlot(context.Background(), ProjectionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteSlot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	applied, err := s.WriteSlot(ctx, ProjectionKey, 10, []byte(`{"kind":"blank"}`))
	require.NoError(t, err)
	assert.True(t, applied)

	slot, ok, err := s.ReadSlot(ctx, ProjectionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ProjectionKey, slot.Key)
	assert.Equal(t, int64(10), slot.Sequence)
	assert.Equal(t, `{"kind":"blank"}`, string(slot.Payload))
	assert.False(t, slot.UpdatedAt.IsZero())
}

func TestWriteSlot_LastWriteWinsBySequence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteSlot(ctx, ProjectionKey, 20, []byte("B"))
	require.NoError(t, err)

	applied, err := s.WriteSlot(ctx, ProjectionKey, 10, []byte("A"))
	require.NoError(t, err)
	assert.False(t, applied, "older sequence must not overwrite")

	applied, err = s.WriteSlot(ctx, ProjectionKey, 20, []byte("B2"))
	require.NoError(t, err)
	assert.False(t, applied, "equal sequence must not overwrite")

	slot, _, err := s.ReadSlot(ctx, ProjectionKey)
	require.NoError(t, err)
	assert.Equal(t, "B", string(slot.Payload))

	applied, err = s.WriteSlot(ctx, ProjectionKey, 21, []byte("C"))
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestWriteSlot_KeysAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteSlot(ctx, "a", 5, []byte("a"))
	require.NoError(t, err)
	applied, err := s.WriteSlot(ctx, "b", 1, []byte("b"))
	require.NoError(t, err)
	assert.True(t, applied)
}
