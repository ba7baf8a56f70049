package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wanderspace/overseer/internal/metrics"
)

const memoryBackend = "memory"

// MemoryStore keeps session records in a process-local map. It is the
// standalone store for single-instance deployments without Redis, and the
// degraded path behind FallbackStore otherwise.
//
// Expiry is checked lazily on Get; a janitor goroutine additionally sweeps
// the map so abandoned sessions don't accumulate for their full lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Data

	lifetime time.Duration
	logger   *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates an in-process store and starts its sweep goroutine.
// A sweepInterval of zero uses DefaultSweepInterval. Call Close to stop the
// sweeper.
func NewMemoryStore(sweepInterval time.Duration, logger *slog.Logger) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &MemoryStore{
		records:  make(map[string]Data),
		lifetime: Lifetime,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

// Create generates an identifier and stores a stamped record.
func (s *MemoryStore) Create(_ context.Context, params CreateParams) (string, Data, error) {
	id, err := newSessionID()
	if err != nil {
		return "", Data{}, err
	}
	record := newRecord(params, time.Now(), s.lifetime)

	s.mu.Lock()
	s.records[id] = record
	s.mu.Unlock()

	metrics.SessionOp("create", memoryBackend, "ok")
	return id, record.clone(), nil
}

// Get returns the record for id, deleting it first if it has expired.
func (s *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		metrics.SessionOp("get", memoryBackend, "miss")
		return Data{}, ErrNotFound
	}
	if record.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		metrics.SessionOp("get", memoryBackend, "miss")
		return Data{}, ErrNotFound
	}
	metrics.SessionOp("get", memoryBackend, "ok")
	return record.clone(), nil
}

// Delete removes the record for id. Absent records are not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	metrics.SessionOp("delete", memoryBackend, "ok")
	return nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// Len reports the number of records currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// sweepLoop periodically removes expired records.
func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.sweep(time.Now()); n > 0 {
				s.logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}

// sweep removes records expired at the given time and returns how many.
func (s *MemoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		if record.Expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}
