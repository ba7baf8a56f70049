// Package service contains the business logic layer.
//
// This file implements the room service. Rooms point at WAM map artifacts in
// the external map-storage service; creating a room from a template copies
// the template's source map into a room-owned path.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/mapstorage"
	"github.com/wanderspace/overseer/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// RoomService defines the interface for room-related operations.
type RoomService interface {
	// Create creates a new room in a world. When the parameters name a
	// template, the template's source map is copied into a path owned by
	// the new room and the template's properties seed the room's.
	// Returns domain.EINVALID for validation errors, domain.ENOTFOUND when
	// the world or template does not exist, and domain.ECONFLICT when the
	// slug is already taken within the world.
	Create(ctx context.Context, params domain.CreateRoomParams) (*domain.Room, error)

	// GetByID retrieves a room by ID.
	// Returns domain.ENOTFOUND if the room does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)

	// ListByWorld retrieves all rooms in a world.
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]domain.Room, error)

	// Update applies a partial update to a room.
	// Returns domain.ENOTFOUND if the room does not exist.
	Update(ctx context.Context, params domain.UpdateRoomParams) (*domain.Room, error)

	// Delete removes a room. Maps provisioned from a template are removed
	// from map storage as well; directly referenced maps are left alone
	// because other rooms may share them.
	Delete(ctx context.Context, id uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

// roomService implements the RoomService interface.
type roomService struct {
	queries *repository.Queries
	maps    mapstorage.Client
	logger  *slog.Logger
}

// NewRoomService creates a new RoomService.
//
// Parameters:
// - queries: Repository queries for database access
// - maps: Client for the external map-storage service
// - logger: Structured logger for operation logging
func NewRoomService(
	queries *repository.Queries,
	maps mapstorage.Client,
	logger *slog.Logger,
) RoomService {
	return &roomService{
		queries: queries,
		maps:    maps,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create creates a new room in a world.
func (s *roomService) Create(ctx context.Context, params domain.CreateRoomParams) (*domain.Room, error) {
	const op = "room.create"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Load the world and its universe for path construction
	world, err := s.queries.GetWorldByID(ctx, params.WorldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "world", params.WorldID.String())
		}
		return nil, domain.Internal(err, op, "failed to get world")
	}
	universe, err := s.queries.GetUniverseByID(ctx, world.UniverseID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to get universe")
	}

	// Derive the slug from the name when not provided
	slug := params.Slug
	if slug == "" {
		slug = domain.Slugify(params.Name)
	}
	if slug == "" {
		return nil, domain.Invalid(op, "name does not reduce to a usable slug")
	}

	// Check slug availability before touching map storage
	if _, err := s.queries.GetRoomBySlug(ctx, repository.GetRoomBySlugParams{
		WorldID: params.WorldID,
		Slug:    slug,
	}); err == nil {
		return nil, domain.Conflict(op, "a room with this slug already exists in the world")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to check slug availability")
	}

	wamPath := params.WamPath
	properties := params.Properties

	// Provision the map from the template when one is named
	if params.TemplateID != nil {
		template, err := s.queries.GetRoomTemplateByID(ctx, *params.TemplateID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.NotFound(op, "room template", params.TemplateID.String())
			}
			return nil, domain.Internal(err, op, "failed to get room template")
		}
		if template.UniverseID != world.UniverseID {
			return nil, domain.Invalid(op, "template belongs to a different universe")
		}

		dst := fmt.Sprintf("%s/%s/%s.wam", universe.Slug, world.Slug, slug)
		if err := s.maps.CopyWAM(ctx, template.WamSourcePath, dst); err != nil {
			if errors.Is(err, mapstorage.ErrNotFound) {
				return nil, domain.Invalid(op, "template source map does not exist in map storage")
			}
			return nil, domain.Internal(err, op, "failed to copy template map")
		}
		wamPath = dst

		// Template properties seed the room when the caller provided none
		if len(properties) == 0 && template.Properties.Valid {
			properties = template.Properties.RawMessage
		}
	}

	row, err := s.queries.CreateRoom(ctx, repository.CreateRoomParams{
		WorldID:      params.WorldID,
		Name:         strings.TrimSpace(params.Name),
		Slug:         slug,
		WamPath:      wamPath,
		TemplateID:   domain.ToNullUUID(params.TemplateID),
		MaxOccupancy: params.MaxOccupancy,
		Tags:         params.Tags,
		Properties:   domain.ToNullRawMessage(properties),
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "a room with this slug already exists in the world")
		}
		return nil, domain.Internal(err, op, "failed to create room")
	}

	room := rowToRoom(row)

	s.logger.Info("room created",
		"room_id", room.ID,
		"world_id", room.WorldID,
		"slug", room.Slug,
		"wam_path", room.WamPath,
	)

	return room, nil
}

// =============================================================================
// GetByID
// =============================================================================

// GetByID retrieves a room by ID.
func (s *roomService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	const op = "room.get"

	row, err := s.queries.GetRoomByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "room", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get room")
	}

	return rowToRoom(row), nil
}

// =============================================================================
// ListByWorld
// =============================================================================

// ListByWorld retrieves all rooms in a world.
func (s *roomService) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]domain.Room, error) {
	const op = "room.list"

	rows, err := s.queries.ListRoomsByWorldID(ctx, worldID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list rooms")
	}

	rooms := make([]domain.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, *rowToRoom(row))
	}

	return rooms, nil
}

// =============================================================================
// Update
// =============================================================================

// Update applies a partial update to a room.
func (s *roomService) Update(ctx context.Context, params domain.UpdateRoomParams) (*domain.Room, error) {
	const op = "room.update"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Load the current row and merge the requested changes
	current, err := s.queries.GetRoomByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "room", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to get room")
	}

	name := current.Name
	if params.Name != nil {
		name = strings.TrimSpace(*params.Name)
	}
	wamPath := current.WamPath
	if params.WamPath != nil {
		wamPath = *params.WamPath
	}
	maxOccupancy := current.MaxOccupancy
	if params.MaxOccupancy != nil {
		maxOccupancy = *params.MaxOccupancy
	}
	tags := current.Tags
	if params.Tags != nil {
		tags = params.Tags
	}
	properties := current.Properties
	if params.Properties != nil {
		properties = domain.ToNullRawMessage(params.Properties)
	}
	active := current.Active
	if params.Active != nil {
		active = *params.Active
	}

	row, err := s.queries.UpdateRoom(ctx, repository.UpdateRoomParams{
		ID:           params.ID,
		Name:         name,
		WamPath:      wamPath,
		MaxOccupancy: maxOccupancy,
		Tags:         tags,
		Properties:   properties,
		Active:       active,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update room")
	}

	s.logger.Info("room updated", "room_id", params.ID)

	return rowToRoom(row), nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes a room.
func (s *roomService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "room.delete"

	room, err := s.queries.GetRoomByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "room", id.String())
		}
		return domain.Internal(err, op, "failed to get room")
	}

	if err := s.queries.DeleteRoom(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete room")
	}

	// A template-provisioned map is owned by this room alone, so remove it.
	// Directly referenced maps may be shared and are left in place.
	if room.TemplateID.Valid {
		if err := s.maps.DeleteWAM(ctx, room.WamPath); err != nil {
			s.logger.Warn("failed to delete room map", "room_id", id, "wam_path", room.WamPath, "error", err)
		}
	}

	s.logger.Info("room deleted", "room_id", id)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToRoom converts a repository.Room to a domain.Room.
func rowToRoom(row repository.Room) *domain.Room {
	return &domain.Room{
		ID:           row.ID,
		WorldID:      row.WorldID,
		Name:         row.Name,
		Slug:         row.Slug,
		WamPath:      row.WamPath,
		TemplateID:   domain.NullUUIDValue(row.TemplateID),
		MaxOccupancy: row.MaxOccupancy,
		Tags:         row.Tags,
		Properties:   domain.NullRawMessageValue(row.Properties),
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
