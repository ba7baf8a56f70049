package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderspace/overseer/internal/repository"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeWorldWamSync     = "world_wam_sync"
	JobTypeRoomAccessNotify = "room_access_notify"
	JobTypeUsageRollup      = "usage_rollup"
	JobTypeAccessRollup     = "access_rollup"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// WorldWamSyncPayload is the payload for world map sync jobs.
type WorldWamSyncPayload struct {
	WorldID uuid.UUID `json:"world_id"`
}

// RoomAccessNotifyPayload is the payload for room access notification jobs.
type RoomAccessNotifyPayload struct {
	RoomID   uuid.UUID `json:"room_id"`
	UserUUID string    `json:"user_uuid"`
	Granted  bool      `json:"granted"`
}

// UsageRollupPayload is the payload for daily AI usage rollup jobs.
// Day is formatted as YYYY-MM-DD.
type UsageRollupPayload struct {
	Day string `json:"day"`
}

// AccessRollupPayload is the payload for daily room access rollup jobs.
// Day is formatted as YYYY-MM-DD.
type AccessRollupPayload struct {
	Day string `json:"day"`
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	// Marshal the payload to JSON
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	// Default parameters
	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	// Apply options
	for _, opt := range opts {
		opt(&params)
	}

	// Enqueue the job
	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueueWorldWamSync enqueues a job to push every room map in a world to the
// universe's map storage. This is typically called after rooms change or when
// an operator requests a manual re-sync.
func EnqueueWorldWamSync(
	ctx context.Context,
	queries *repository.Queries,
	worldID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := WorldWamSyncPayload{
		WorldID: worldID,
	}

	return EnqueueJob(ctx, queries, JobTypeWorldWamSync, payload, opts...)
}

// EnqueueRoomAccessNotify enqueues a job to deliver a Discord notification for
// a room access decision.
func EnqueueRoomAccessNotify(
	ctx context.Context,
	queries *repository.Queries,
	roomID uuid.UUID,
	userUUID string,
	granted bool,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := RoomAccessNotifyPayload{
		RoomID:   roomID,
		UserUUID: userUUID,
		Granted:  granted,
	}

	return EnqueueJob(ctx, queries, JobTypeRoomAccessNotify, payload, opts...)
}

// EnqueueUsageRollup enqueues a job to roll AI usage records for a day into
// the daily aggregate table. The day should be formatted as YYYY-MM-DD.
func EnqueueUsageRollup(
	ctx context.Context,
	queries *repository.Queries,
	day string,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := UsageRollupPayload{
		Day: day,
	}

	return EnqueueJob(ctx, queries, JobTypeUsageRollup, payload, opts...)
}

// EnqueueAccessRollup enqueues a job to roll room access records for a day
// into the daily aggregate table. The day should be formatted as YYYY-MM-DD.
func EnqueueAccessRollup(
	ctx context.Context,
	queries *repository.Queries,
	day string,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := AccessRollupPayload{
		Day: day,
	}

	return EnqueueJob(ctx, queries, JobTypeAccessRollup, payload, opts...)
}
