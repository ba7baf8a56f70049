// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories, external APIs,
// and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Transaction coordination
// - Error translation (database errors -> domain errors)
//
// This file implements the user service. Users are provisioned from OIDC
// claims at login rather than registered locally.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/repository"
)

// Default and maximum page sizes for user listings.
const (
	DefaultUserPageSize = 50
	MaxUserPageSize     = 200
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user-related operations.
//
// This interface enables:
// - Mocking in unit tests
// - Clear contract definition for handlers
type UserService interface {
	// Upsert creates or refreshes a user row from identity claims. Existing
	// tags are merged with the incoming ones, so tags assigned through the
	// dashboard survive logins that omit them.
	// Returns domain.EINVALID for validation errors.
	Upsert(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error)

	// GetByID retrieves a user by internal ID.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUUID retrieves a user by OIDC subject identifier.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByUUID(ctx context.Context, subject string) (*domain.User, error)

	// List retrieves a page of users ordered by most recent first.
	List(ctx context.Context, params domain.ListUsersParams) (*domain.ListUsersResult, error)

	// UpdateTags replaces a user's tag set.
	// Returns domain.ENOTFOUND if the user does not exist.
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) (*domain.User, error)
}

// =============================================================================
// Implementation
// =============================================================================

// userService implements the UserService interface.
type userService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewUserService(
	queries *repository.Queries,
	logger *slog.Logger,
) UserService {
	return &userService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Upsert
// =============================================================================

// Upsert creates or refreshes a user row from identity claims.
func (s *userService) Upsert(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error) {
	const op = "user.upsert"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	row, err := s.queries.UpsertUser(ctx, repository.UpsertUserParams{
		Uuid:  params.UUID,
		Email: domain.ToNullString(params.Email),
		Name:  domain.ToNullString(params.Name),
		Tags:  params.Tags,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to upsert user")
	}

	user := rowToUser(row)

	s.logger.Info("user signed in",
		"user_id", user.ID,
		"subject", user.UUID,
	)

	return user, nil
}

// =============================================================================
// Get
// =============================================================================

// GetByID retrieves a user by internal ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get"

	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	return rowToUser(row), nil
}

// GetByUUID retrieves a user by OIDC subject identifier.
func (s *userService) GetByUUID(ctx context.Context, subject string) (*domain.User, error) {
	const op = "user.get_by_uuid"

	if subject == "" {
		return nil, domain.Invalid(op, "subject identifier is required")
	}

	row, err := s.queries.GetUserByUUID(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", subject)
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	return rowToUser(row), nil
}

// =============================================================================
// List
// =============================================================================

// List retrieves a page of users ordered by most recent first.
func (s *userService) List(ctx context.Context, params domain.ListUsersParams) (*domain.ListUsersResult, error) {
	const op = "user.list"

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultUserPageSize
	}
	if limit > MaxUserPageSize {
		limit = MaxUserPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.queries.ListUsers(ctx, repository.ListUsersParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list users")
	}

	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count users")
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *rowToUser(row))
	}

	return &domain.ListUsersResult{
		Users:  users,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// =============================================================================
// UpdateTags
// =============================================================================

// UpdateTags replaces a user's tag set.
func (s *userService) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) (*domain.User, error) {
	const op = "user.update_tags"

	if err := domain.ValidateTags(tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	row, err := s.queries.UpdateUserTags(ctx, repository.UpdateUserTagsParams{
		ID:   id,
		Tags: tags,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update user tags")
	}

	user := rowToUser(row)

	s.logger.Info("user tags updated",
		"user_id", id,
		"tag_count", len(user.Tags),
	)

	return user, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToUser converts a repository.User to a domain.User.
func rowToUser(row repository.User) *domain.User {
	return &domain.User{
		ID:          row.ID,
		UUID:        row.Uuid,
		Email:       domain.NullStringValue(row.Email),
		Name:        domain.NullStringValue(row.Name),
		Tags:        row.Tags,
		SuperAdmin:  row.SuperAdmin,
		LastLoginAt: domain.NullTimeValue(row.LastLoginAt),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
