package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wanderspace/overseer/internal/mapstorage"
	"github.com/wanderspace/overseer/internal/metrics"
	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/worker"
)

// wamVersion is the descriptor format version map-storage expects.
const wamVersion = "1.0.0"

// WorldWamSyncHandler processes jobs that push a world's room WAM descriptors
// to the map-storage service. The admin database is the source of truth for
// room metadata; this job propagates it so game servers pick up renames, tag
// changes, and occupancy limits.
type WorldWamSyncHandler struct {
	queries *repository.Queries
	maps    mapstorage.Client
	logger  *slog.Logger
}

// NewWorldWamSyncHandler creates a new handler for WAM sync jobs.
func NewWorldWamSyncHandler(
	queries *repository.Queries,
	maps mapstorage.Client,
	logger *slog.Logger,
) *WorldWamSyncHandler {
	return &WorldWamSyncHandler{
		queries: queries,
		maps:    maps,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *WorldWamSyncHandler) Type() string {
	return worker.JobTypeWorldWamSync
}

// Handle executes the WAM sync job.
// It rebuilds the descriptor for every room in the world and uploads each to
// its wam_path. Individual upload failures do not stop the pass; any failure
// makes the job retryable so the remaining rooms converge on a later attempt.
func (h *WorldWamSyncHandler) Handle(ctx context.Context, payload []byte) error {
	// Unmarshal the payload
	var p worker.WorldWamSyncPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	h.logger.Info("Syncing world maps", "world_id", p.WorldID)

	// 1. Fetch the world
	world, err := h.queries.GetWorldByID(ctx, p.WorldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// World deleted since the job was enqueued, nothing left to sync
			return worker.NewPermanentError(fmt.Errorf("world not found: %s", p.WorldID))
		}
		// Database error - retryable
		return fmt.Errorf("fetch world: %w", err)
	}

	// 2. Fetch the owning universe for descriptor metadata
	universe, err := h.queries.GetUniverseByID(ctx, world.UniverseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("universe not found: %s", world.UniverseID))
		}
		return fmt.Errorf("fetch universe: %w", err)
	}

	// 3. Fetch all rooms in the world
	rooms, err := h.queries.ListRoomsByWorldID(ctx, p.WorldID)
	if err != nil {
		return fmt.Errorf("fetch rooms: %w", err)
	}

	h.logger.Info("Found rooms to sync", "world_id", p.WorldID, "count", len(rooms))

	// 4. Upload a descriptor per room
	var failed int
	for _, room := range rooms {
		wam, err := buildWamDescriptor(universe, world, room)
		if err != nil {
			h.logger.Error("Failed to build wam descriptor",
				"room_id", room.ID,
				"wam_path", room.WamPath,
				"error", err,
			)
			metrics.WamSynced("error")
			failed++
			continue
		}

		if err := h.maps.UploadWAM(ctx, room.WamPath, wam); err != nil {
			h.logger.Error("Failed to upload wam descriptor",
				"room_id", room.ID,
				"wam_path", room.WamPath,
				"error", err,
			)
			metrics.WamSynced("error")
			failed++
			continue
		}

		metrics.WamSynced("ok")
	}

	if failed > 0 {
		return fmt.Errorf("sync world %s: %d of %d rooms failed", p.WorldID, failed, len(rooms))
	}

	h.logger.Info("World maps synced",
		"world_id", p.WorldID,
		"universe_id", world.UniverseID,
		"rooms", len(rooms),
	)

	return nil
}

// wamDescriptor is the document uploaded to map-storage for a room.
type wamDescriptor struct {
	Version    string          `json:"version"`
	Metadata   wamMetadata     `json:"metadata"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// wamMetadata carries the admin-owned room attributes.
type wamMetadata struct {
	UniverseID   string   `json:"universeId"`
	UniverseSlug string   `json:"universeSlug"`
	WorldID      string   `json:"worldId"`
	WorldSlug    string   `json:"worldSlug"`
	RoomID       string   `json:"roomId"`
	RoomSlug     string   `json:"roomSlug"`
	Name         string   `json:"name"`
	Tags         []string `json:"tags"`
	MaxOccupancy int32    `json:"maxOccupancy,omitempty"`
	Active       bool     `json:"active"`
}

// buildWamDescriptor serializes the descriptor for a single room.
func buildWamDescriptor(universe repository.Universe, world repository.World, room repository.Room) ([]byte, error) {
	tags := room.Tags
	if tags == nil {
		tags = []string{}
	}

	desc := wamDescriptor{
		Version: wamVersion,
		Metadata: wamMetadata{
			UniverseID:   universe.ID.String(),
			UniverseSlug: universe.Slug,
			WorldID:      world.ID.String(),
			WorldSlug:    world.Slug,
			RoomID:       room.ID.String(),
			RoomSlug:     room.Slug,
			Name:         room.Name,
			Tags:         tags,
			MaxOccupancy: room.MaxOccupancy,
			Active:       room.Active && world.Active,
		},
	}
	if room.Properties.Valid {
		desc.Properties = room.Properties.RawMessage
	}

	return json.Marshal(desc)
}
