package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFallbackStore wires a fallback store over miniredis plus memory.
func newTestFallbackStore(t *testing.T) (*FallbackStore, *miniredis.Miniredis, *MemoryStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	remote := NewRedisStore(client, testLogger())
	local := NewMemoryStore(time.Minute, testLogger())

	return NewFallbackStore(remote, local, testLogger()), mr, local
}

func TestFallbackStoreUsesRemoteWhenHealthy(t *testing.T) {
	store, mr, local := newTestFallbackStore(t)
	defer store.Close()
	ctx := context.Background()

	id, created, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)

	assert.True(t, mr.Exists(keyPrefix+id), "healthy path should write to redis")
	assert.Equal(t, 0, local.Len(), "healthy path should not touch memory")

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestFallbackStoreDegradesOnOutage(t *testing.T) {
	store, mr, local := newTestFallbackStore(t)
	defer store.Close()
	ctx := context.Background()

	mr.Close()

	// Callers observe no error while redis is down.
	id, created, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x", Tags: []string{"staff"}})
	require.NoError(t, err)
	assert.Equal(t, 1, local.Len(), "outage path should write to memory")

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackStoreGetChecksLocalOnRemoteMiss(t *testing.T) {
	store, mr, _ := newTestFallbackStore(t)
	defer store.Close()
	ctx := context.Background()

	// Session created during an outage lives only in memory.
	mr.SetError("LOADING Redis is loading the dataset in memory")
	id, created, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)

	// Redis recovers, cleanly reports a miss; the local record still wins.
	mr.SetError("")
	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestFallbackStoreDeleteIsBestEffortDuringOutage(t *testing.T) {
	store, mr, local := newTestFallbackStore(t)
	defer store.Close()
	ctx := context.Background()

	// Create while healthy so the record reaches redis.
	id, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix + id))

	mr.Close()

	// Remote delete fails silently; the local store is still cleared and
	// the caller sees success.
	assert.NoError(t, store.Delete(ctx, id))
	assert.Equal(t, 0, local.Len())
}

func TestFallbackStoreUnknownIDIsNotFound(t *testing.T) {
	store, _, _ := newTestFallbackStore(t)
	defer store.Close()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
