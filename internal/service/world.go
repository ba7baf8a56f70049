// Package service contains the business logic layer.
//
// This file implements the world service, including the preview image
// pipeline and map sync scheduling.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/storage"
	"github.com/wanderspace/overseer/internal/worker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// WorldService defines the interface for world-related operations.
type WorldService interface {
	// Create creates a new world in a universe.
	// Returns domain.EINVALID for validation errors, domain.ENOTFOUND when
	// the universe does not exist, and domain.ECONFLICT when the slug is
	// already taken within the universe.
	Create(ctx context.Context, params domain.CreateWorldParams) (*domain.World, error)

	// GetByID retrieves a world by ID, including its room count.
	// Returns domain.ENOTFOUND if the world does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error)

	// ListByUniverse retrieves all worlds in a universe with room counts.
	ListByUniverse(ctx context.Context, universeID uuid.UUID) ([]domain.World, error)

	// Update applies a partial update to a world.
	// Returns domain.ENOTFOUND if the world does not exist.
	Update(ctx context.Context, params domain.UpdateWorldParams) (*domain.World, error)

	// Delete removes an empty world along with its stored preview images.
	// Returns domain.EINVALID if the world still has rooms.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetPreview uploads a preview image for a world. The image is decoded,
	// fitted to the preview box, re-encoded as JPEG, and stored together
	// with a half-size thumbnail.
	// Returns domain.ETOOLARGE when the upload exceeds the size cap and
	// domain.EINVALID for unsupported image types.
	SetPreview(ctx context.Context, worldID uuid.UUID, filename, contentType string, data io.Reader) (*domain.World, error)

	// DeletePreview removes a world's preview images. Removing a preview
	// that does not exist is not an error.
	DeletePreview(ctx context.Context, worldID uuid.UUID) error

	// PreviewURLs returns serving URLs for a world's preview image and
	// thumbnail. Both are empty when no preview has been uploaded.
	PreviewURLs(ctx context.Context, world *domain.World) (previewURL, thumbURL string, err error)

	// Sync schedules a background job that pushes every room map in the
	// world to the universe's map storage.
	Sync(ctx context.Context, worldID uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

// worldService implements the WorldService interface.
type worldService struct {
	queries     *repository.Queries
	store       storage.Storage
	thumbnailer ThumbnailProcessor
	logger      *slog.Logger
}

// NewWorldService creates a new WorldService.
//
// Parameters:
// - queries: Repository queries for database access
// - store: Object storage for preview images
// - thumbnailer: Processor used to scale and re-encode preview uploads
// - logger: Structured logger for operation logging
func NewWorldService(
	queries *repository.Queries,
	store storage.Storage,
	thumbnailer ThumbnailProcessor,
	logger *slog.Logger,
) WorldService {
	return &worldService{
		queries:     queries,
		store:       store,
		thumbnailer: thumbnailer,
		logger:      logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create creates a new world in a universe.
func (s *worldService) Create(ctx context.Context, params domain.CreateWorldParams) (*domain.World, error) {
	const op = "world.create"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Verify the universe exists
	if _, err := s.queries.GetUniverseByID(ctx, params.UniverseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "universe", params.UniverseID.String())
		}
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

	// Create the world
	row, err := s.queries.CreateWorld(ctx, repository.CreateWorldParams{
		UniverseID:  params.UniverseID,
		Name:        strings.TrimSpace(params.Name),
		Slug:        slug,
		Description: domain.ToNullString(params.Description),
		Tags:        params.Tags,
		Properties:  domain.ToNullRawMessage(params.Properties),
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "a world with this slug already exists in the universe")
		}
		return nil, domain.Internal(err, op, "failed to create world")
	}

	world := rowToWorld(row)

	s.logger.Info("world created",
		"world_id", world.ID,
		"universe_id", world.UniverseID,
		"slug", world.Slug,
	)

	return world, nil
}

// =============================================================================
// GetByID
// =============================================================================

// GetByID retrieves a world by ID, including its room count.
func (s *worldService) GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error) {
	const op = "world.get"

	row, err := s.queries.GetWorldWithRoomCount(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "world", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get world")
	}

	world := &domain.World{
		ID:          row.ID,
		UniverseID:  row.UniverseID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: domain.NullStringValue(row.Description),
		Tags:        row.Tags,
		PreviewKey:  domain.NullStringValue(row.PreviewKey),
		Properties:  domain.NullRawMessageValue(row.Properties),
		Active:      row.Active,
		RoomCount:   row.RoomCount,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	return world, nil
}

// =============================================================================
// ListByUniverse
// =============================================================================

// ListByUniverse retrieves all worlds in a universe with room counts.
func (s *worldService) ListByUniverse(ctx context.Context, universeID uuid.UUID) ([]domain.World, error) {
	const op = "world.list"

	rows, err := s.queries.ListWorldsByUniverseID(ctx, universeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list worlds")
	}

	worlds := make([]domain.World, 0, len(rows))
	for _, row := range rows {
		worlds = append(worlds, domain.World{
			ID:          row.ID,
			UniverseID:  row.UniverseID,
			Name:        row.Name,
			Slug:        row.Slug,
			Description: domain.NullStringValue(row.Description),
			Tags:        row.Tags,
			PreviewKey:  domain.NullStringValue(row.PreviewKey),
			Properties:  domain.NullRawMessageValue(row.Properties),
			Active:      row.Active,
			RoomCount:   row.RoomCount,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	return worlds, nil
}

// =============================================================================
// Update
// =============================================================================

// Update applies a partial update to a world.
func (s *worldService) Update(ctx context.Context, params domain.UpdateWorldParams) (*domain.World, error) {
	const op = "world.update"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Load the current row and merge the requested changes
	current, err := s.queries.GetWorldByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "world", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to get world")
	}

	name := current.Name
	if params.Name != nil {
		name = strings.TrimSpace(*params.Name)
	}
	description := current.Description
	if params.Description != nil {
		description = domain.ToNullString(*params.Description)
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

	row, err := s.queries.UpdateWorld(ctx, repository.UpdateWorldParams{
		ID:          params.ID,
		Name:        name,
		Description: description,
		Tags:        tags,
		Properties:  properties,
		Active:      active,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update world")
	}

	s.logger.Info("world updated", "world_id", params.ID)

	return rowToWorld(row), nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes an empty world along with its stored preview images.
func (s *worldService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "world.delete"

	world, err := s.queries.GetWorldByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "world", id.String())
		}
		return domain.Internal(err, op, "failed to get world")
	}

	// Refuse to delete a world that still has rooms
	roomCount, err := s.queries.CountRoomsByWorldID(ctx, id)
	if err != nil {
		return domain.Internal(err, op, "failed to count rooms")
	}
	if roomCount > 0 {
		return domain.Invalid(op, "cannot delete a world that still has rooms")
	}

	if err := s.queries.DeleteWorld(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete world")
	}

	// Remove stored previews. The row is already gone, so failures here only
	// leave orphaned objects behind.
	if world.PreviewKey.Valid {
		key := world.PreviewKey.String
		thumbKey := strings.TrimSuffix(key, ".jpg") + "_thumb.jpg"
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete preview object", "world_id", id, "key", key, "error", err)
		}
		if err := s.store.Delete(ctx, thumbKey); err != nil {
			s.logger.Warn("failed to delete preview thumbnail object", "world_id", id, "key", thumbKey, "error", err)
		}
	}

	s.logger.Info("world deleted", "world_id", id)

	return nil
}

// =============================================================================
// Preview Pipeline
// =============================================================================

// SetPreview uploads a preview image for a world.
func (s *worldService) SetPreview(ctx context.Context, worldID uuid.UUID, filename, contentType string, data io.Reader) (*domain.World, error) {
	const op = "world.set_preview"

	world, err := s.queries.GetWorldByID(ctx, worldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "world", worldID.String())
		}
		return nil, domain.Internal(err, op, "failed to get world")
	}

	// Buffer the upload so the size cap can be enforced before decoding
	buf, err := io.ReadAll(io.LimitReader(data, domain.MaxPreviewUploadSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read upload")
	}
	if len(buf) > domain.MaxPreviewUploadSize {
		return nil, domain.TooLarge(op, "preview upload exceeds 10MB")
	}
	if len(buf) == 0 {
		return nil, domain.Invalid(op, "preview upload is empty")
	}

	// Only decodable image types are accepted
	detected := storage.DetectContentType(contentType, filename, bytes.NewReader(buf))
	if !storage.IsAllowedImageType(detected) {
		return nil, domain.Invalid(op, "preview must be a JPEG, PNG, or GIF image")
	}

	// Scale to the preview box and again to the thumbnail box
	preview, _, _, err := s.thumbnailer.GenerateThumbnail(bytes.NewReader(buf), domain.PreviewMaxWidth, domain.PreviewMaxHeight)
	if err != nil {
		return nil, domain.Invalid(op, "preview image could not be decoded")
	}
	thumb, _, _, err := s.thumbnailer.GenerateThumbnail(bytes.NewReader(buf), domain.PreviewThumbWidth, domain.PreviewThumbHeight)
	if err != nil {
		return nil, domain.Invalid(op, "preview image could not be decoded")
	}

	key := storage.WorldPreviewKey(world.UniverseID, world.ID)
	thumbKey := storage.WorldPreviewThumbKey(world.UniverseID, world.ID)

	// Store both renditions, replacing any previous preview
	opts := storage.PutOptions{
		ContentType: "image/jpeg",
		Overwrite:   true,
		Public:      true,
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(preview), opts); err != nil {
		return nil, domain.Internal(err, op, "failed to store preview image")
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(thumb), opts); err != nil {
		return nil, domain.Internal(err, op, "failed to store preview thumbnail")
	}

	if err := s.queries.UpdateWorldPreviewKey(ctx, repository.UpdateWorldPreviewKeyParams{
		ID:         worldID,
		PreviewKey: domain.ToNullString(key),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to update preview key")
	}

	s.logger.Info("world preview updated",
		"world_id", worldID,
		"key", key,
		"upload_bytes", len(buf),
	)

	result := rowToWorld(world)
	result.PreviewKey = key
	return result, nil
}

// DeletePreview removes a world's preview images.
func (s *worldService) DeletePreview(ctx context.Context, worldID uuid.UUID) error {
	const op = "world.delete_preview"

	world, err := s.queries.GetWorldByID(ctx, worldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "world", worldID.String())
		}
		return domain.Internal(err, op, "failed to get world")
	}

	if !world.PreviewKey.Valid {
		return nil
	}

	key := world.PreviewKey.String
	thumbKey := strings.TrimSuffix(key, ".jpg") + "_thumb.jpg"
	if err := s.store.Delete(ctx, key); err != nil {
		return domain.Internal(err, op, "failed to delete preview image")
	}
	if err := s.store.Delete(ctx, thumbKey); err != nil {
		return domain.Internal(err, op, "failed to delete preview thumbnail")
	}

	if err := s.queries.UpdateWorldPreviewKey(ctx, repository.UpdateWorldPreviewKeyParams{
		ID:         worldID,
		PreviewKey: sql.NullString{},
	}); err != nil {
		return domain.Internal(err, op, "failed to clear preview key")
	}

	s.logger.Info("world preview deleted", "world_id", worldID)

	return nil
}

// PreviewURLs returns serving URLs for a world's preview image and thumbnail.
func (s *worldService) PreviewURLs(ctx context.Context, world *domain.World) (string, string, error) {
	const op = "world.preview_urls"

	if world == nil || !world.HasPreview() {
		return "", "", nil
	}

	previewURL, err := s.store.URL(ctx, world.PreviewKey, 0)
	if err != nil {
		return "", "", domain.Internal(err, op, "failed to build preview URL")
	}
	thumbURL, err := s.store.URL(ctx, world.PreviewThumbKey(), 0)
	if err != nil {
		return "", "", domain.Internal(err, op, "failed to build thumbnail URL")
	}

	return previewURL, thumbURL, nil
}

// =============================================================================
// Sync
// =============================================================================

// Sync schedules a background job that pushes every room map in the world to
// the universe's map storage.
func (s *worldService) Sync(ctx context.Context, worldID uuid.UUID) error {
	const op = "world.sync"

	if _, err := s.queries.GetWorldByID(ctx, worldID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "world", worldID.String())
		}
		return domain.Internal(err, op, "failed to get world")
	}

	job, err := worker.EnqueueWorldWamSync(ctx, s.queries, worldID)
	if err != nil {
		return domain.Internal(err, op, "failed to enqueue sync job")
	}

	s.logger.Info("world sync scheduled", "world_id", worldID, "job_id", job.ID)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToWorld converts a repository.World to a domain.World.
func rowToWorld(row repository.World) *domain.World {
	return &domain.World{
		ID:          row.ID,
		UniverseID:  row.UniverseID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: domain.NullStringValue(row.Description),
		Tags:        row.Tags,
		PreviewKey:  domain.NullStringValue(row.PreviewKey),
		Properties:  domain.NullRawMessageValue(row.Properties),
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
