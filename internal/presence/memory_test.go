package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
)

func TestMemoryStore_MultipleConnections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.Connect(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = s.Connect(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, first)

	last, err := s.Disconnect(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, last)

	e, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PresenceOnline, e.Status)
	assert.EqualValues(t, 1, e.Connections)

	last, err = s.Disconnect(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, last)

	n, _ := s.Count(ctx)
	assert.Zero(t, n)
}

func TestMemoryStore_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	changed, err := s.SetStatus(ctx, "ghost", models.PresenceIdle)
	require.NoError(t, err)
	assert.False(t, changed, "offline users have no status")

	_, _ = s.Connect(ctx, "u1")
	_, _ = s.Connect(ctx, "u2")

	changed, _ = s.SetStatus(ctx, "u1", models.PresenceOnline)
	assert.False(t, changed)

	changed, _ = s.SetStatus(ctx, "u1", models.PresenceAway)
	assert.True(t, changed)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1", list[0].UserID)
	assert.Equal(t, models.PresenceAway, list[0].Status)
}

func TestMemoryStore_DisconnectUnknown(t *testing.T) {
	last, err := NewMemoryStore().Disconnect(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, last)
}
