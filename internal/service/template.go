// Package service contains the business logic layer.
//
// This file implements the room template service.
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

// TemplateService defines the interface for room template operations.
type TemplateService interface {
	// Create creates a new room template in a universe. The source map is
	// not checked for existence here; a missing source surfaces when a room
	// is created from the template.
	// Returns domain.EINVALID for validation errors and domain.ENOTFOUND
	// when the universe does not exist.
	Create(ctx context.Context, params domain.CreateRoomTemplateParams) (*domain.RoomTemplate, error)

	// GetByID retrieves a template by ID.
	// Returns domain.ENOTFOUND if the template does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RoomTemplate, error)

	// ListByUniverse retrieves all templates in a universe.
	ListByUniverse(ctx context.Context, universeID uuid.UUID) ([]domain.RoomTemplate, error)

	// Delete removes a template that no room references.
	// Returns domain.EINVALID if rooms still reference the template.
	Delete(ctx context.Context, id uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

// templateService implements the TemplateService interface.
type templateService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewTemplateService creates a new TemplateService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewTemplateService(
	queries *repository.Queries,
	logger *slog.Logger,
) TemplateService {
	return &templateService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create creates a new room template in a universe.
func (s *templateService) Create(ctx context.Context, params domain.CreateRoomTemplateParams) (*domain.RoomTemplate, error) {
	const op = "template.create"

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

	row, err := s.queries.CreateRoomTemplate(ctx, repository.CreateRoomTemplateParams{
		UniverseID:    params.UniverseID,
		Name:          strings.TrimSpace(params.Name),
		Description:   domain.ToNullString(params.Description),
		WamSourcePath: params.WamSourcePath,
		Properties:    domain.ToNullRawMessage(params.Properties),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create room template")
	}

	template := rowToTemplate(row)

	s.logger.Info("room template created",
		"template_id", template.ID,
		"universe_id", template.UniverseID,
		"wam_source_path", template.WamSourcePath,
	)

	return template, nil
}

// =============================================================================
// GetByID
// =============================================================================

// GetByID retrieves a template by ID.
func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RoomTemplate, error) {
	const op = "template.get"

	row, err := s.queries.GetRoomTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "room template", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get room template")
	}

	return rowToTemplate(row), nil
}

// =============================================================================
// ListByUniverse
// =============================================================================

// ListByUniverse retrieves all templates in a universe.
func (s *templateService) ListByUniverse(ctx context.Context, universeID uuid.UUID) ([]domain.RoomTemplate, error) {
	const op = "template.list"

	rows, err := s.queries.ListRoomTemplatesByUniverseID(ctx, universeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list room templates")
	}

	templates := make([]domain.RoomTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, *rowToTemplate(row))
	}

	return templates, nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes a template that no room references.
func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "template.delete"

	if _, err := s.queries.GetRoomTemplateByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "room template", id.String())
		}
		return domain.Internal(err, op, "failed to get room template")
	}

	// Refuse to delete a template that rooms still reference
	roomCount, err := s.queries.CountRoomsByTemplateID(ctx, uuid.NullUUID{UUID: id, Valid: true})
	if err != nil {
		return domain.Internal(err, op, "failed to count referencing rooms")
	}
	if roomCount > 0 {
		return domain.Invalid(op, "cannot delete a template that rooms still reference")
	}

	if err := s.queries.DeleteRoomTemplate(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete room template")
	}

	s.logger.Info("room template deleted", "template_id", id)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToTemplate converts a repository.RoomTemplate to a domain.RoomTemplate.
func rowToTemplate(row repository.RoomTemplate) *domain.RoomTemplate {
	return &domain.RoomTemplate{
		ID:            row.ID,
		UniverseID:    row.UniverseID,
		Name:          row.Name,
		Description:   domain.NullStringValue(row.Description),
		WamSourcePath: row.WamSourcePath,
		Properties:    domain.NullRawMessageValue(row.Properties),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
