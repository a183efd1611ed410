package push

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/data/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_LoadEmpty(t *testing.T) {
	st, err := newStates(t).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, st.LastRegisteredAt.IsZero())
	assert.Empty(t, st.Token)
}

func TestStateStore_UpdatePersistsUnderNamespace(t *testing.T) {
	ctx := context.Background()
	backing := stores.NewMemoryKV()
	s := NewStateStore(backing)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(ctx, func(st *RegistrationState) {
		st.LastRegisteredAt = at
		st.Token = "tok"
	}))

	var raw RegistrationState
	require.NoError(t, backing.Get(ctx, "registration:device", &raw))
	assert.Equal(t, "tok", raw.Token)
	assert.True(t, at.Equal(raw.LastRegisteredAt))

	// A second store over the same backing sees the write.
	st, err := NewStateStore(backing).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", st.Token)
}

func TestStateStore_DeviceIDStable(t *testing.T) {
	ctx := context.Background()
	s := newStates(t)

	first, err := s.DeviceID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStateStore_DeviceIDSurvivesUpdates(t *testing.T) {
	ctx := context.Background()
	s := newStates(t)

	id, err := s.DeviceID(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(st *RegistrationState) { st.Token = "x" }))

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, st.DeviceID)
}
