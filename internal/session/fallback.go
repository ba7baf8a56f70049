package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wanderspace/overseer/internal/metrics"
)

// FallbackStore serves sessions from a shared remote store, degrading
// transparently to a process-local store whenever the remote one is
// unreachable. Callers never see the distinction; the cost is that sessions
// created during an outage are neither durable nor shared across processes.
//
// Degradations are logged at debug level only, so they surface in
// development but stay quiet in production, where the fallback counter
// metric is the operator's signal.
type FallbackStore struct {
	remote Store
	local  Store
	logger *slog.Logger
}

// NewFallbackStore wraps remote with local as the degraded path.
func NewFallbackStore(remote, local Store, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		remote: remote,
		local:  local,
		logger: logger,
	}
}

// Create writes to the remote store, falling back to the local one on
// transport failure.
func (s *FallbackStore) Create(ctx context.Context, params CreateParams) (string, Data, error) {
	id, record, err := s.remote.Create(ctx, params)
	if !errors.Is(err, ErrUnavailable) {
		return id, record, err
	}
	s.degraded(ctx, "create", err)
	return s.local.Create(ctx, params)
}

// Get reads from the remote store. On transport failure it reads from the
// local store; on a clean remote miss it still checks the local store, which
// may hold sessions created during an earlier outage.
func (s *FallbackStore) Get(ctx context.Context, id string) (Data, error) {
	record, err := s.remote.Get(ctx, id)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, ErrUnavailable):
		s.degraded(ctx, "get", err)
		return s.local.Get(ctx, id)
	case errors.Is(err, ErrNotFound):
		return s.local.Get(ctx, id)
	default:
		return Data{}, err
	}
}

// Delete removes the record from both stores, best effort. A remote
// transport failure is logged and swallowed; the local delete still runs so
// this process stops honoring the session either way.
func (s *FallbackStore) Delete(ctx context.Context, id string) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrUnavailable) {
			return err
		}
		s.degraded(ctx, "delete", err)
	}
	return s.local.Delete(ctx, id)
}

// Close closes both stores, returning the first error.
func (s *FallbackStore) Close() error {
	remoteErr := s.remote.Close()
	localErr := s.local.Close()
	if remoteErr != nil {
		return remoteErr
	}
	return localErr
}

func (s *FallbackStore) degraded(ctx context.Context, op string, err error) {
	metrics.SessionFallbackTotal.WithLabelValues(op).Inc()
	s.logger.DebugContext(ctx, "session store degraded to memory", "op", op, "error", err)
}
