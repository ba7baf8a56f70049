// Package service contains the business logic layer.
//
// This file implements the bot service. Bots authenticate to the API with a
// bearer service token; the raw token is handed out exactly once and only
// its hash is stored.
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

// BotService defines the interface for bot-related operations.
type BotService interface {
	// Create creates a new bot in a world and returns it together with its
	// raw service token. The token cannot be retrieved again.
	// Returns domain.EINVALID for validation errors and domain.ENOTFOUND
	// when the world does not exist.
	Create(ctx context.Context, params domain.CreateBotParams) (*domain.BotCredentials, error)

	// GetByID retrieves a bot by ID.
	// Returns domain.ENOTFOUND if the bot does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error)

	// GetByToken resolves a raw service token to its active bot. The
	// returned bot carries the owning universe ID.
	// Returns domain.ENOTFOUND for unknown or deactivated tokens.
	GetByToken(ctx context.Context, token string) (*domain.Bot, error)

	// ListByWorld retrieves all bots in a world.
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]domain.Bot, error)

	// Update applies a partial update to a bot.
	// Returns domain.ENOTFOUND if the bot does not exist.
	Update(ctx context.Context, params domain.UpdateBotParams) (*domain.Bot, error)

	// RotateToken replaces a bot's service token and returns the new raw
	// token. The previous token stops working immediately.
	RotateToken(ctx context.Context, id uuid.UUID) (*domain.BotCredentials, error)

	// Delete removes a bot.
	// Returns domain.ENOTFOUND if the bot does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

// botService implements the BotService interface.
type botService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewBotService creates a new BotService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewBotService(
	queries *repository.Queries,
	logger *slog.Logger,
) BotService {
	return &botService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create creates a new bot in a world.
func (s *botService) Create(ctx context.Context, params domain.CreateBotParams) (*domain.BotCredentials, error) {
	const op = "bot.create"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Verify the world exists
	if _, err := s.queries.GetWorldByID(ctx, params.WorldID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "world", params.WorldID.String())
		}
		return nil, domain.Internal(err, op, "failed to get world")
	}

	// Generate the service token; only its hash is stored
	token, err := generateToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate service token")
	}

	row, err := s.queries.CreateBot(ctx, repository.CreateBotParams{
		WorldID:      params.WorldID,
		Name:         strings.TrimSpace(params.Name),
		Provider:     params.Provider.String(),
		Model:        strings.TrimSpace(params.Model),
		SystemPrompt: domain.ToNullString(params.SystemPrompt),
		Config:       domain.ToNullRawMessage(params.Config),
		TokenHash:    hashToken(token),
		TokenPrefix:  tokenPrefix(token),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create bot")
	}

	bot := rowToBot(row)

	s.logger.Info("bot created",
		"bot_id", bot.ID,
		"world_id", bot.WorldID,
		"provider", bot.Provider,
		"model", bot.Model,
	)

	return &domain.BotCredentials{
		Bot:   bot,
		Token: token,
	}, nil
}

// =============================================================================
// Get
// =============================================================================

// GetByID retrieves a bot by ID.
func (s *botService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error) {
	const op = "bot.get"

	row, err := s.queries.GetBotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "bot", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get bot")
	}

	return rowToBot(row), nil
}

// GetByToken resolves a raw service token to its active bot.
func (s *botService) GetByToken(ctx context.Context, token string) (*domain.Bot, error) {
	const op = "bot.get_by_token"

	if token == "" {
		return nil, domain.Unauthorized(op, "service token is required")
	}

	row, err := s.queries.GetBotByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "bot", tokenPrefix(token))
		}
		return nil, domain.Internal(err, op, "failed to look up service token")
	}

	bot := &domain.Bot{
		ID:           row.ID,
		WorldID:      row.WorldID,
		Name:         row.Name,
		Provider:     domain.AIProvider(row.Provider),
		Model:        row.Model,
		SystemPrompt: domain.NullStringValue(row.SystemPrompt),
		Config:       domain.NullRawMessageValue(row.Config),
		TokenHash:    row.TokenHash,
		TokenPrefix:  row.TokenPrefix,
		Active:       row.Active,
		UniverseID:   row.UniverseID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}

	return bot, nil
}

// =============================================================================
// ListByWorld
// =============================================================================

// ListByWorld retrieves all bots in a world.
func (s *botService) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]domain.Bot, error) {
	const op = "bot.list"

	rows, err := s.queries.ListBotsByWorldID(ctx, worldID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list bots")
	}

	bots := make([]domain.Bot, 0, len(rows))
	for _, row := range rows {
		bots = append(bots, *rowToBot(row))
	}

	return bots, nil
}

// =============================================================================
// Update
// =============================================================================

// Update applies a partial update to a bot.
func (s *botService) Update(ctx context.Context, params domain.UpdateBotParams) (*domain.Bot, error) {
	const op = "bot.update"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Load the current row and merge the requested changes
	current, err := s.queries.GetBotByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "bot", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to get bot")
	}

	name := current.Name
	if params.Name != nil {
		name = strings.TrimSpace(*params.Name)
	}
	model := current.Model
	if params.Model != nil {
		model = strings.TrimSpace(*params.Model)
	}
	systemPrompt := current.SystemPrompt
	if params.SystemPrompt != nil {
		systemPrompt = domain.ToNullString(*params.SystemPrompt)
	}
	config := current.Config
	if params.Config != nil {
		config = domain.ToNullRawMessage(params.Config)
	}
	active := current.Active
	if params.Active != nil {
		active = *params.Active
	}

	row, err := s.queries.UpdateBot(ctx, repository.UpdateBotParams{
		ID:           params.ID,
		Name:         name,
		Model:        model,
		SystemPrompt: systemPrompt,
		Config:       config,
		Active:       active,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update bot")
	}

	s.logger.Info("bot updated", "bot_id", params.ID)

	return rowToBot(row), nil
}

// =============================================================================
// RotateToken
// =============================================================================

// RotateToken replaces a bot's service token.
func (s *botService) RotateToken(ctx context.Context, id uuid.UUID) (*domain.BotCredentials, error) {
	const op = "bot.rotate_token"

	current, err := s.queries.GetBotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "bot", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get bot")
	}

	token, err := generateToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate service token")
	}

	if err := s.queries.UpdateBotToken(ctx, repository.UpdateBotTokenParams{
		ID:          id,
		TokenHash:   hashToken(token),
		TokenPrefix: tokenPrefix(token),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to rotate service token")
	}

	s.logger.Info("bot token rotated", "bot_id", id)

	bot := rowToBot(current)
	bot.TokenHash = hashToken(token)
	bot.TokenPrefix = tokenPrefix(token)

	return &domain.BotCredentials{
		Bot:   bot,
		Token: token,
	}, nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes a bot.
func (s *botService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "bot.delete"

	if _, err := s.queries.GetBotByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "bot", id.String())
		}
		return domain.Internal(err, op, "failed to get bot")
	}

	if err := s.queries.DeleteBot(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete bot")
	}

	s.logger.Info("bot deleted", "bot_id", id)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToBot converts a repository.Bot to a domain.Bot.
func rowToBot(row repository.Bot) *domain.Bot {
	return &domain.Bot{
		ID:           row.ID,
		WorldID:      row.WorldID,
		Name:         row.Name,
		Provider:     domain.AIProvider(row.Provider),
		Model:        row.Model,
		SystemPrompt: domain.NullStringValue(row.SystemPrompt),
		Config:       domain.NullRawMessageValue(row.Config),
		TokenHash:    row.TokenHash,
		TokenPrefix:  row.TokenPrefix,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
