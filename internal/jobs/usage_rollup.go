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

// UsageRollupHandler processes jobs that aggregate raw AI usage records into
// the usage_daily table. The rollup is an upsert, so re-running a day is safe
// and late-arriving records are folded in on the next pass.
type UsageRollupHandler struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUsageRollupHandler creates a new handler for usage rollup jobs.
func NewUsageRollupHandler(queries *repository.Queries, logger *slog.Logger) *UsageRollupHandler {
	return &UsageRollupHandler{
		queries: queries,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *UsageRollupHandler) Type() string {
	return worker.JobTypeUsageRollup
}

// Handle executes the usage rollup job.
func (h *UsageRollupHandler) Handle(ctx context.Context, payload []byte) error {
	// Unmarshal the payload
	var p worker.UsageRollupPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	day, err := time.Parse("2006-01-02", p.Day)
	if err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid day %q: %w", p.Day, err))
	}

	rows, err := h.queries.RollupUsageDaily(ctx, day)
	if err != nil {
		// Database error - retryable
		return fmt.Errorf("rollup usage for %s: %w", p.Day, err)
	}

	h.logger.Info("Usage rollup completed", "day", p.Day, "rows", rows)
	return nil
}
