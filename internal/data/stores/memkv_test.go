package stores

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/herald/internal/core/kv"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKV()

	require.NoError(t, store.Set(ctx, "b", 2))
	require.NoError(t, store.Set(ctx, "a", 1))

	var v int
	require.NoError(t, store.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(ctx, "a"))
	err = store.Get(ctx, "a", &v)
	assert.True(t, kv.IsNotFound(err))

	var wrong string
	require.Error(t, store.Get(ctx, "b", &wrong))
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Options{Driver: DriverMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, mem)

	file, err := Open(ctx, Options{Path: t.TempDir() + "/state.json"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, file)
	require.NoError(t, file.Close())

	_, err = Open(ctx, Options{Driver: "etcd"}, zerolog.Nop())
	require.Error(t, err)
}
