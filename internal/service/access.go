// Package service contains the business logic layer.
//
// This file implements the room access service. The game server reports each
// entry attempt; the admission decision travels back in the same call, the
// attempt is recorded for analytics, and a notification job is enqueued.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/metrics"
	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/worker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// AccessService defines the interface for room access decisions and
// analytics.
type AccessService interface {
	// Check resolves a room reference (room ID or WAM path), decides whether
	// the visitor may enter, records the attempt, and schedules a Discord
	// notification. The decision itself is always returned with a nil error;
	// errors are reserved for unknown rooms and infrastructure failures.
	Check(ctx context.Context, roomRef, userUUID string) (*domain.AccessDecision, error)

	// Analytics retrieves per-room daily access aggregates for a universe.
	// A zero from or to defaults to a trailing 30 day window ending now.
	Analytics(ctx context.Context, universeID uuid.UUID, from, to time.Time) ([]domain.RoomAccessDaily, error)
}

// =============================================================================
// Implementation
// =============================================================================

// accessService implements the AccessService interface.
type accessService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAccessService creates a new AccessService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewAccessService(
	queries *repository.Queries,
	logger *slog.Logger,
) AccessService {
	return &accessService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Check
// =============================================================================

// Check decides whether a visitor may enter a room.
func (s *accessService) Check(ctx context.Context, roomRef, userUUID string) (*domain.AccessDecision, error) {
	const op = "access.check"

	if roomRef == "" {
		return nil, domain.Invalid(op, "room reference is required")
	}
	if userUUID == "" {
		return nil, domain.Invalid(op, "user UUID is required")
	}

	room, err := s.resolveRoom(ctx, roomRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "room", roomRef)
		}
		return nil, domain.Internal(err, op, "failed to resolve room")
	}

	// Visitors unknown to the platform carry no tags but are still admitted
	// to unrestricted rooms.
	decision := &domain.AccessDecision{
		UserUUID: userUUID,
		Tags:     []string{},
	}
	var userID uuid.NullUUID
	user, err := s.queries.GetUserByUUID(ctx, userUUID)
	switch {
	case err == nil:
		userID = uuid.NullUUID{UUID: user.ID, Valid: true}
		decision.Email = domain.NullStringValue(user.Email)
		decision.Name = domain.NullStringValue(user.Name)
		if user.Tags != nil {
			decision.Tags = user.Tags
		}
	case errors.Is(err, sql.ErrNoRows):
		// Leave the decision anonymous
	default:
		return nil, domain.Internal(err, op, "failed to get user")
	}

	domainRoom := domain.Room{Tags: room.Tags}
	switch {
	case !room.Active:
		decision.Granted = false
		decision.Reason = "room is not active"
	case !domainRoom.AdmitsTags(decision.Tags):
		decision.Granted = false
		decision.Reason = "visitor does not carry a required tag"
	default:
		decision.Granted = true
	}

	// Record the attempt, granted or not, for analytics
	if _, err := s.queries.CreateRoomAccess(ctx, repository.CreateRoomAccessParams{
		RoomID:   room.ID,
		UserID:   userID,
		UserUuid: userUUID,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to record access")
	}

	metrics.RoomAccessTotal.Inc()
	if !decision.Granted {
		metrics.RoomAccessDenied.Inc()
	}

	// Schedule the Discord notification. Failing to enqueue does not change
	// the decision already recorded.
	if _, err := worker.EnqueueRoomAccessNotify(ctx, s.queries, room.ID, userUUID, decision.Granted); err != nil {
		s.logger.Warn("failed to enqueue access notification", "room_id", room.ID, "error", err)
	}

	s.logger.Info("room access decided",
		"room_id", room.ID,
		"user_uuid", userUUID,
		"granted", decision.Granted,
	)

	return decision, nil
}

// resolveRoom accepts either a room ID or a WAM path.
func (s *accessService) resolveRoom(ctx context.Context, roomRef string) (repository.GetRoomWithUniverseRow, error) {
	if id, err := uuid.Parse(roomRef); err == nil {
		return s.queries.GetRoomWithUniverse(ctx, id)
	}
	row, err := s.queries.GetRoomWithUniverseByWamPath(ctx, roomRef)
	if err != nil {
		return repository.GetRoomWithUniverseRow{}, err
	}
	return repository.GetRoomWithUniverseRow(row), nil
}

// =============================================================================
// Analytics
// =============================================================================

// Analytics retrieves per-room daily access aggregates for a universe.
func (s *accessService) Analytics(ctx context.Context, universeID uuid.UUID, from, to time.Time) ([]domain.RoomAccessDaily, error) {
	const op = "access.analytics"

	from, to, err := normalizeWindow(op, from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.queries.ListRoomAccessDailyByUniverse(ctx, repository.ListRoomAccessDailyByUniverseParams{
		UniverseID: universeID,
		StartDay:   from,
		EndDay:     to,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list access aggregates")
	}

	daily := make([]domain.RoomAccessDaily, 0, len(rows))
	for _, row := range rows {
		daily = append(daily, domain.RoomAccessDaily{
			RoomID:      row.RoomID,
			RoomName:    row.RoomName,
			WorldID:     row.WorldID,
			Day:         row.Day,
			AccessCount: row.AccessCount,
			UniqueUsers: row.UniqueUsers,
		})
	}

	return daily, nil
}
