package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/worker"
)

// AccessRollupHandler processes jobs that aggregate raw room access records
// into the room_access_daily table backing the analytics endpoint.
type AccessRollupHandler struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAccessRollupHandler creates a new handler for access rollup jobs.
func NewAccessRollupHandler(queries *repository.Queries, logger *slog.Logger) *AccessRollupHandler {
	return &AccessRollupHandler{
		queries: queries,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *AccessRollupHandler) Type() string {
	return worker.JobTypeAccessRollup
}

// Handle executes the access rollup job.
func (h *AccessRollupHandler) Handle(ctx context.Context, payload []byte) error {
	// Unmarshal the payload
	var p worker.AccessRollupPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	day, err := time.Parse("2006-01-02", p.Day)
	if err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid day %q: %w", p.Day, err))
	}

	rows, err := h.queries.RollupRoomAccessDaily(ctx, day)
	if err != nil {
		// Database error - retryable
		return fmt.Errorf("rollup room access for %s: %w", p.Day, err)
	}

	h.logger.Info("Access rollup completed", "day", p.Day, "rows", rows)
	return nil
}
