package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wanderspace/overseer/internal/metrics"
)

// ErrUnavailable wraps backend transport failures. The fallback wrapper
// matches on it to decide when to degrade to the in-process store.
var ErrUnavailable = errors.New("session store unavailable")

// keyPrefix namespaces session keys in a shared Redis.
const keyPrefix = "overseer:session:"

const redisBackend = "redis"

// RedisStore persists session records in Redis as JSON values with a TTL
// matching the record lifetime, so abandoned sessions evict themselves.
type RedisStore struct {
	client   redis.UniversalClient
	lifetime time.Duration
	logger   *slog.Logger
}

// NewRedisStore creates a Redis-backed store using the given client. The
// caller owns the client; Close closes it.
func NewRedisStore(client redis.UniversalClient, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client:   client,
		lifetime: Lifetime,
		logger:   logger,
	}
}

func (s *RedisStore) key(id string) string {
	return keyPrefix + id
}

// Create generates an identifier and writes a stamped record.
func (s *RedisStore) Create(ctx context.Context, params CreateParams) (string, Data, error) {
	id, err := newSessionID()
	if err != nil {
		return "", Data{}, err
	}
	record := newRecord(params, time.Now(), s.lifetime)

	payload, err := json.Marshal(record)
	if err != nil {
		return "", Data{}, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(id), payload, record.TTL(time.Now())).Err(); err != nil {
		metrics.SessionOp("create", redisBackend, "error")
		return "", Data{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.SessionOp("create", redisBackend, "ok")
	return id, record, nil
}

// Get returns the record for id. Records past their expiry are deleted and
// reported as ErrNotFound, even when the Redis TTL has not fired yet.
func (s *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.SessionOp("get", redisBackend, "miss")
			return Data{}, ErrNotFound
		}
		metrics.SessionOp("get", redisBackend, "error")
		return Data{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var record Data
	if err := json.Unmarshal(payload, &record); err != nil {
		// A corrupt blob can never validate again; discard it.
		s.logger.Warn("discarding corrupt session record", "session_id", id, "error", err)
		_ = s.client.Del(ctx, s.key(id)).Err()
		metrics.SessionOp("get", redisBackend, "miss")
		return Data{}, ErrNotFound
	}

	if record.Expired(time.Now()) {
		if err := s.client.Del(ctx, s.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			metrics.SessionOp("get", redisBackend, "error")
			return Data{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		metrics.SessionOp("get", redisBackend, "miss")
		return Data{}, ErrNotFound
	}
	metrics.SessionOp("get", redisBackend, "ok")
	return record, nil
}

// Delete removes the record for id. Absent records are not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		metrics.SessionOp("delete", redisBackend, "error")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.SessionOp("delete", redisBackend, "ok")
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
