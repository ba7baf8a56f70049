package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/notify"
	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/worker"
)

// RoomAccessNotifyHandler processes jobs that announce a room access decision
// to the owning universe's Discord webhook. Delivery runs on the queue so a
// slow or unreachable webhook never delays the access check itself.
type RoomAccessNotifyHandler struct {
	queries  *repository.Queries
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewRoomAccessNotifyHandler creates a new handler for access notification jobs.
func NewRoomAccessNotifyHandler(
	queries *repository.Queries,
	notifier notify.Notifier,
	logger *slog.Logger,
) *RoomAccessNotifyHandler {
	return &RoomAccessNotifyHandler{
		queries:  queries,
		notifier: notifier,
		logger:   logger,
	}
}

// Type returns the job type identifier.
func (h *RoomAccessNotifyHandler) Type() string {
	return worker.JobTypeRoomAccessNotify
}

// Handle executes the access notification job.
func (h *RoomAccessNotifyHandler) Handle(ctx context.Context, payload []byte) error {
	// Unmarshal the payload
	var p worker.RoomAccessNotifyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	// 1. Fetch the room with its owning universe
	room, err := h.queries.GetRoomWithUniverse(ctx, p.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Room deleted since the access was recorded, nothing to announce
			return worker.NewPermanentError(fmt.Errorf("room not found: %s", p.RoomID))
		}
		// Database error - retryable
		return fmt.Errorf("fetch room: %w", err)
	}

	world, err := h.queries.GetWorldByID(ctx, room.WorldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("world not found: %s", room.WorldID))
		}
		return fmt.Errorf("fetch world: %w", err)
	}

	universe, err := h.queries.GetUniverseByID(ctx, room.UniverseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("universe not found: %s", room.UniverseID))
		}
		return fmt.Errorf("fetch universe: %w", err)
	}

	// 2. Resolve the visitor's display name. Unknown visitors keep the UUID.
	userName := p.UserUUID
	user, err := h.queries.GetUserByUUID(ctx, p.UserUUID)
	switch {
	case err == nil:
		if name := domain.NullStringValue(user.Name); name != "" {
			userName = name
		} else if email := domain.NullStringValue(user.Email); email != "" {
			userName = email
		}
	case errors.Is(err, sql.ErrNoRows):
		// Visitor has never signed in to the admin, keep the UUID
	default:
		h.logger.Warn("Failed to resolve visitor name",
			"user_uuid", p.UserUUID,
			"error", err,
		)
	}

	// 3. Deliver the notification. The notifier is a no-op when neither the
	// universe nor the service has a webhook configured.
	ev := notify.RoomAccessEvent{
		UniverseName: universe.Name,
		WorldName:    world.Name,
		RoomName:     room.Name,
		UserName:     userName,
		UserUUID:     p.UserUUID,
		Granted:      p.Granted,
		At:           time.Now(),
	}
	webhook := domain.NullStringValue(universe.DiscordWebhookUrl)
	if err := h.notifier.NotifyRoomAccess(ctx, webhook, ev); err != nil {
		// Webhook outage - retryable
		return fmt.Errorf("notify room access: %w", err)
	}

	h.logger.Info("Access notification delivered",
		"room_id", p.RoomID,
		"user_uuid", p.UserUUID,
		"granted", p.Granted,
	)

	return nil
}
