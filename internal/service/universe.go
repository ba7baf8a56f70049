// Package service contains the business logic layer.
//
// This file implements the universe service for managing platform tenants.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UniverseService defines the interface for universe-related operations.
//
// This interface enables:
// - Mocking in unit tests
// - Clear contract definition for handlers
type UniverseService interface {
	// Create creates a new universe.
	// Returns domain.EINVALID for validation errors and domain.ECONFLICT
	// when the slug is already taken.
	Create(ctx context.Context, params domain.CreateUniverseParams) (*domain.Universe, error)

	// GetByID retrieves a universe by ID.
	// Returns domain.ENOTFOUND if the universe does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Universe, error)

	// ListAll retrieves every universe on the platform (super admin view).
	ListAll(ctx context.Context) ([]domain.Universe, error)

	// ListForUser retrieves the universes the user is a member of.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Universe, error)

	// Update applies a partial update to a universe.
	// Returns domain.ENOTFOUND if the universe does not exist.
	Update(ctx context.Context, params domain.UpdateUniverseParams) (*domain.Universe, error)

	// Delete removes an empty universe.
	// Returns domain.EINVALID if the universe still has worlds.
	Delete(ctx context.Context, id uuid.UUID) error

	// Counts returns the platform headline numbers for the dashboard.
	Counts(ctx context.Context) (*domain.PlatformCounts, error)
}

// =============================================================================
// Implementation
// =============================================================================

// universeService implements the UniverseService interface.
type universeService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUniverseService creates a new UniverseService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewUniverseService(
	queries *repository.Queries,
	logger *slog.Logger,
) UniverseService {
	return &universeService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create creates a new universe.
func (s *universeService) Create(ctx context.Context, params domain.CreateUniverseParams) (*domain.Universe, error) {
	const op = "universe.create"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Derive the slug from the name when not provided
	slug := params.Slug
	if slug == "" {
		slug = domain.Slugify(params.Name)
	}
	if slug == "" {
		return nil, domain.Invalid(op, "name does not reduce to a usable slug")
	}

	// Check slug availability before inserting for a clean error message
	if _, err := s.queries.GetUniverseBySlug(ctx, slug); err == nil {
		return nil, domain.Conflict(op, "a universe with this slug already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to check slug availability")
	}

	// Create the universe
	row, err := s.queries.CreateUniverse(ctx, repository.CreateUniverseParams{
		Name:              strings.TrimSpace(params.Name),
		Slug:              slug,
		AdminEmail:        domain.ToNullString(params.AdminEmail),
		MapStorageUrl:     domain.ToNullString(params.MapStorageURL),
		OidcIssuer:        domain.ToNullString(params.OIDCIssuer),
		DiscordWebhookUrl: domain.ToNullString(params.DiscordWebhookURL),
	})
	if err != nil {
		// Handle the race where the slug was taken between check and insert
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "a universe with this slug already exists")
		}
		return nil, domain.Internal(err, op, "failed to create universe")
	}

	// Convert to domain type
	universe := s.rowToUniverse(row)

	s.logger.Info("universe created",
		"universe_id", universe.ID,
		"slug", universe.Slug,
		"name", universe.Name,
	)

	return universe, nil
}

// =============================================================================
// GetByID
// =============================================================================

// GetByID retrieves a universe by ID.
func (s *universeService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Universe, error) {
	const op = "universe.get"

	row, err := s.queries.GetUniverseByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "universe", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get universe")
	}

	return s.rowToUniverse(row), nil
}

// =============================================================================
// List
// =============================================================================

// ListAll retrieves every universe on the platform.
func (s *universeService) ListAll(ctx context.Context) ([]domain.Universe, error) {
	const op = "universe.list_all"

	rows, err := s.queries.ListUniverses(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list universes")
	}

	universes := make([]domain.Universe, 0, len(rows))
	for _, row := range rows {
		universes = append(universes, *s.rowToUniverse(row))
	}

	return universes, nil
}

// ListForUser retrieves the universes the user is a member of.
func (s *universeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Universe, error) {
	const op = "universe.list_for_user"

	rows, err := s.queries.ListUniversesByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list universes")
	}

	universes := make([]domain.Universe, 0, len(rows))
	for _, row := range rows {
		universes = append(universes, *s.rowToUniverse(row))
	}

	return universes, nil
}

// =============================================================================
// Update
// =============================================================================

// Update applies a partial update to a universe.
func (s *universeService) Update(ctx context.Context, params domain.UpdateUniverseParams) (*domain.Universe, error) {
	const op = "universe.update"

	// Load the current row and merge the requested changes
	current, err := s.queries.GetUniverseByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "universe", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to get universe")
	}

	name := current.Name
	if params.Name != nil {
		name = strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, domain.Invalid(op, "name must not be empty")
		}
		if len(name) > 255 {
			return nil, domain.Invalid(op, "name must be 255 characters or less")
		}
	}
	adminEmail := current.AdminEmail
	if params.AdminEmail != nil {
		if *params.AdminEmail != "" && !domain.ValidEmail(*params.AdminEmail) {
			return nil, domain.Invalid(op, "admin email is not a valid address")
		}
		adminEmail = domain.ToNullString(*params.AdminEmail)
	}
	mapStorageURL := current.MapStorageUrl
	if params.MapStorageURL != nil {
		mapStorageURL = domain.ToNullString(*params.MapStorageURL)
	}
	webhookURL := current.DiscordWebhookUrl
	if params.DiscordWebhookURL != nil {
		webhookURL = domain.ToNullString(*params.DiscordWebhookURL)
	}
	active := current.Active
	if params.Active != nil {
		active = *params.Active
	}

	row, err := s.queries.UpdateUniverse(ctx, repository.UpdateUniverseParams{
		ID:                params.ID,
		Name:              name,
		AdminEmail:        adminEmail,
		MapStorageUrl:     mapStorageURL,
		DiscordWebhookUrl: webhookURL,
		Active:            active,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update universe")
	}

	s.logger.Info("universe updated", "universe_id", params.ID)

	return s.rowToUniverse(row), nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes an empty universe.
func (s *universeService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "universe.delete"

	// Verify the universe exists
	if _, err := s.queries.GetUniverseByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "universe", id.String())
		}
		return domain.Internal(err, op, "failed to get universe")
	}

	// Refuse to delete a universe that still has worlds
	worldCount, err := s.queries.CountWorldsByUniverseID(ctx, id)
	if err != nil {
		return domain.Internal(err, op, "failed to count worlds")
	}
	if worldCount > 0 {
		return domain.Invalid(op, "cannot delete a universe that still has worlds")
	}

	if err := s.queries.DeleteUniverse(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete universe")
	}

	s.logger.Info("universe deleted", "universe_id", id)

	return nil
}

// =============================================================================
// Counts
// =============================================================================

// Counts returns the platform headline numbers for the dashboard.
func (s *universeService) Counts(ctx context.Context) (*domain.PlatformCounts, error) {
	const op = "universe.counts"

	row, err := s.queries.GetPlatformCounts(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to get platform counts")
	}

	return &domain.PlatformCounts{
		Universes: row.UniverseCount,
		Worlds:    row.WorldCount,
		Rooms:     row.RoomCount,
		Users:     row.UserCount,
		Bots:      row.BotCount,
	}, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToUniverse converts a repository.Universe to a domain.Universe.
func (s *universeService) rowToUniverse(row repository.Universe) *domain.Universe {
	return &domain.Universe{
		ID:                row.ID,
		Name:              row.Name,
		Slug:              row.Slug,
		AdminEmail:        domain.NullStringValue(row.AdminEmail),
		MapStorageURL:     domain.NullStringValue(row.MapStorageUrl),
		OIDCIssuer:        domain.NullStringValue(row.OidcIssuer),
		DiscordWebhookURL: domain.NullStringValue(row.DiscordWebhookUrl),
		Active:            row.Active,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
