package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStoreCreateGetRoundtrip(t *testing.T) {
	store := NewMemoryStore(time.Minute, testLogger())
	defer store.Close()
	ctx := context.Background()

	params := CreateParams{
		UserID: "user-1",
		UUID:   "ext-uuid-1",
		Email:  "ada@example.com",
		Name:   "Ada",
		Tags:   []string{"staff", "vip"},
	}

	id, created, err := store.Create(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Len(t, id, 64, "identifier should be 32 random bytes hex-encoded")

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "ext-uuid-1", got.UUID)
	assert.Equal(t, []string{"staff", "vip"}, got.Tags)
	assert.Equal(t, created.CreatedAt+Lifetime.Milliseconds(), got.ExpiresAt)
}

func TestMemoryStoreGetReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Minute, testLogger())
	defer store.Close()
	ctx := context.Background()

	id, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x", Tags: []string{"a"}})
	require.NoError(t, err)

	first, err := store.Get(ctx, id)
	require.NoError(t, err)
	first.Tags[0] = "mutated"

	second, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, second.Tags, "caller mutation must not reach the stored record")
}

func TestMemoryStoreExpiredRecordIsDeletedOnGet(t *testing.T) {
	store := NewMemoryStore(time.Hour, testLogger())
	defer store.Close()
	store.lifetime = time.Millisecond
	ctx := context.Background()

	id, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len(), "expired record should be deleted implicitly")
}

func TestMemoryStoreDeleteThenGet(t *testing.T) {
	store := NewMemoryStore(time.Minute, testLogger())
	defer store.Close()
	ctx := context.Background()

	id, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, id))
}

func TestMemoryStoreGetUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Minute, testLogger())
	defer store.Close()

	_, err := store.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweepRemovesExpired(t *testing.T) {
	store := NewMemoryStore(time.Hour, testLogger())
	defer store.Close()
	ctx := context.Background()

	store.lifetime = time.Millisecond
	_, _, err := store.Create(ctx, CreateParams{UserID: "old", UUID: "a"})
	require.NoError(t, err)

	store.lifetime = Lifetime
	liveID, _, err := store.Create(ctx, CreateParams{UserID: "new", UUID: "b"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	removed := store.sweep(time.Now())

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, liveID)
	assert.NoError(t, err)
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Minute, testLogger())
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
