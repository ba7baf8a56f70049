package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisStore spins up a miniredis instance and a store on top of it.
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, testLogger()), mr
}

func TestRedisStoreCreateGetRoundtrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer store.Close()
	ctx := context.Background()

	id, created, err := store.Create(ctx, CreateParams{
		UserID: "user-1",
		UUID:   "ext-1",
		Email:  "ada@example.com",
		Name:   "Ada",
		Tags:   []string{"staff"},
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// The Redis TTL should match the record lifetime.
	ttl := mr.TTL(keyPrefix + id)
	assert.InDelta(t, Lifetime.Seconds(), ttl.Seconds(), 5)
}

func TestRedisStoreExpiredRecordStillInRedis(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer store.Close()
	ctx := context.Background()

	// Plant a record whose expiry has passed but whose Redis TTL has not
	// fired, as happens when clocks drift or TTLs are extended by hand.
	record := Data{
		UserID:    "user-1",
		UUID:      "ext-1",
		Tags:      []string{},
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour).UnixMilli(),
		ExpiresAt: time.Now().Add(-24 * time.Hour).UnixMilli(),
	}
	payload, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, mr.Set(keyPrefix+"stale-id", string(payload)))

	_, err = store.Get(ctx, "stale-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(keyPrefix+"stale-id"), "expired record should be deleted implicitly")
}

func TestRedisStoreCorruptRecordIsDiscarded(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer store.Close()

	require.NoError(t, mr.Set(keyPrefix+"bad-id", "{not json"))

	_, err := store.Get(context.Background(), "bad-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(keyPrefix+"bad-id"))
}

func TestRedisStoreDeleteThenGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	defer store.Close()
	ctx := context.Background()

	id, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, id))
}

func TestRedisStoreUnreachable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer store.Close()
	ctx := context.Background()

	mr.Close()

	_, _, err := store.Create(ctx, CreateParams{UserID: "u", UUID: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.Get(ctx, "any")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = store.Delete(ctx, "any")
	assert.ErrorIs(t, err, ErrUnavailable)
}
