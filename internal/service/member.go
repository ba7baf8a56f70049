// Package service contains the business logic layer.
//
// This file implements the member service: universe memberships and the
// invite flow that feeds them.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/notify"
	"github.com/wanderspace/overseer/internal/repository"
)

// InviteDuration is how long an invite remains acceptable.
const InviteDuration = 7 * 24 * time.Hour

// =============================================================================
// Interface Definition
// =============================================================================

// MemberService defines the interface for membership and invite operations.
type MemberService interface {
	// Add directly attaches an existing user to a universe.
	// Returns domain.ECONFLICT if the user is already a member.
	Add(ctx context.Context, params domain.AddMemberParams) (*domain.Membership, error)

	// Get retrieves a user's membership in a universe.
	// Returns domain.ENOTFOUND if the user is not a member.
	Get(ctx context.Context, universeID, userID uuid.UUID) (*domain.Membership, error)

	// List retrieves all memberships in a universe with joined user fields.
	List(ctx context.Context, universeID uuid.UUID) ([]domain.Membership, error)

	// UpdateRole changes a member's role.
	// Returns domain.EINVALID when demoting the universe's last admin.
	UpdateRole(ctx context.Context, universeID, userID uuid.UUID, role domain.Role) (*domain.Membership, error)

	// Remove detaches a user from a universe.
	// Returns domain.EINVALID when removing the universe's last admin.
	Remove(ctx context.Context, universeID, userID uuid.UUID) error

	// CreateInvite issues an invite addressed to an email. The raw accept
	// token is returned exactly once; only its hash is stored.
	CreateInvite(ctx context.Context, params domain.CreateInviteParams) (*domain.InviteCredentials, error)

	// ListInvites retrieves a universe's pending invites.
	ListInvites(ctx context.Context, universeID uuid.UUID) ([]domain.Invite, error)

	// RevokeInvite withdraws a pending invite.
	// Returns domain.ENOTFOUND if the invite does not exist in the universe.
	RevokeInvite(ctx context.Context, universeID, inviteID uuid.UUID) error

	// AcceptInvite redeems an invite token for the authenticated user.
	// Returns domain.ENOTFOUND for unknown tokens, domain.EGONE for expired
	// or already-used invites, and domain.EFORBIDDEN when the user's email
	// does not match the invite.
	AcceptInvite(ctx context.Context, token string, user *domain.User) (*domain.Membership, error)
}

// =============================================================================
// Implementation
// =============================================================================

// memberService implements the MemberService interface.
type memberService struct {
	queries  *repository.Queries
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewMemberService creates a new MemberService.
//
// Parameters:
// - queries: Repository queries for database access
// - notifier: Notifier for member join announcements
// - logger: Structured logger for operation logging
func NewMemberService(
	queries *repository.Queries,
	notifier notify.Notifier,
	logger *slog.Logger,
) MemberService {
	return &memberService{
		queries:  queries,
		notifier: notifier,
		logger:   logger,
	}
}

// =============================================================================
// Add
// =============================================================================

// Add directly attaches an existing user to a universe.
func (s *memberService) Add(ctx context.Context, params domain.AddMemberParams) (*domain.Membership, error) {
	const op = "member.add"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Verify the universe and user exist
	if _, err := s.queries.GetUniverseByID(ctx, params.UniverseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "universe", params.UniverseID.String())
		}
		return nil, domain.Internal(err, op, "failed to get universe")
	}
	if _, err := s.queries.GetUserByID(ctx, params.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", params.UserID.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	row, err := s.queries.CreateMembership(ctx, repository.CreateMembershipParams{
		UniverseID: params.UniverseID,
		UserID:     params.UserID,
		Role:       params.Role.String(),
		InvitedBy:  domain.ToNullUUID(params.InvitedBy),
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "user is already a member of this universe")
		}
		return nil, domain.Internal(err, op, "failed to create membership")
	}

	s.logger.Info("member added",
		"universe_id", params.UniverseID,
		"user_id", params.UserID,
		"role", params.Role,
	)

	return rowToMembership(row), nil
}

// =============================================================================
// Get
// =============================================================================

// Get retrieves a user's membership in a universe.
func (s *memberService) Get(ctx context.Context, universeID, userID uuid.UUID) (*domain.Membership, error) {
	const op = "member.get"

	row, err := s.queries.GetMembership(ctx, repository.GetMembershipParams{
		UniverseID: universeID,
		UserID:     userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "membership", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to get membership")
	}

	return rowToMembership(row), nil
}

// =============================================================================
// List
// =============================================================================

// List retrieves all memberships in a universe with joined user fields.
func (s *memberService) List(ctx context.Context, universeID uuid.UUID) ([]domain.Membership, error) {
	const op = "member.list"

	rows, err := s.queries.ListMembershipsByUniverseID(ctx, universeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list memberships")
	}

	members := make([]domain.Membership, 0, len(rows))
	for _, row := range rows {
		members = append(members, domain.Membership{
			ID:         row.ID,
			UniverseID: row.UniverseID,
			UserID:     row.UserID,
			Role:       domain.Role(row.Role),
			InvitedBy:  domain.NullUUIDValue(row.InvitedBy),
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
			UserUUID:   row.UserUuid,
			UserEmail:  domain.NullStringValue(row.UserEmail),
			UserName:   domain.NullStringValue(row.UserName),
		})
	}

	return members, nil
}

// =============================================================================
// UpdateRole
// =============================================================================

// UpdateRole changes a member's role.
func (s *memberService) UpdateRole(ctx context.Context, universeID, userID uuid.UUID, role domain.Role) (*domain.Membership, error) {
	const op = "member.update_role"

	if !role.IsValid() {
		return nil, domain.Invalid(op, "role must be one of member, editor, admin")
	}

	current, err := s.queries.GetMembership(ctx, repository.GetMembershipParams{
		UniverseID: universeID,
		UserID:     userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "membership", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to get membership")
	}

	// Demoting the last admin would lock everyone out of the universe
	if domain.Role(current.Role) == domain.RoleAdmin && role != domain.RoleAdmin {
		admins, err := s.queries.CountAdminsByUniverseID(ctx, universeID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to count admins")
		}
		if admins <= 1 {
			return nil, domain.Invalid(op, "cannot demote the last admin of a universe")
		}
	}

	row, err := s.queries.UpdateMembershipRole(ctx, repository.UpdateMembershipRoleParams{
		UniverseID: universeID,
		UserID:     userID,
		Role:       role.String(),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update membership role")
	}

	s.logger.Info("member role updated",
		"universe_id", universeID,
		"user_id", userID,
		"role", role,
	)

	return rowToMembership(row), nil
}

// =============================================================================
// Remove
// =============================================================================

// Remove detaches a user from a universe.
func (s *memberService) Remove(ctx context.Context, universeID, userID uuid.UUID) error {
	const op = "member.remove"

	current, err := s.queries.GetMembership(ctx, repository.GetMembershipParams{
		UniverseID: universeID,
		UserID:     userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "membership", userID.String())
		}
		return domain.Internal(err, op, "failed to get membership")
	}

	// Removing the last admin would lock everyone out of the universe
	if domain.Role(current.Role) == domain.RoleAdmin {
		admins, err := s.queries.CountAdminsByUniverseID(ctx, universeID)
		if err != nil {
			return domain.Internal(err, op, "failed to count admins")
		}
		if admins <= 1 {
			return domain.Invalid(op, "cannot remove the last admin of a universe")
		}
	}

	if err := s.queries.DeleteMembership(ctx, repository.DeleteMembershipParams{
		UniverseID: universeID,
		UserID:     userID,
	}); err != nil {
		return domain.Internal(err, op, "failed to delete membership")
	}

	s.logger.Info("member removed",
		"universe_id", universeID,
		"user_id", userID,
	)

	return nil
}

// =============================================================================
// Invites
// =============================================================================

// CreateInvite issues an invite addressed to an email.
func (s *memberService) CreateInvite(ctx context.Context, params domain.CreateInviteParams) (*domain.InviteCredentials, error) {
	const op = "member.create_invite"

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

	// Generate the accept token; only its hash is stored
	token, err := generateToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate invite token")
	}

	row, err := s.queries.CreateInvite(ctx, repository.CreateInviteParams{
		UniverseID: params.UniverseID,
		Email:      strings.ToLower(strings.TrimSpace(params.Email)),
		Role:       params.Role.String(),
		TokenHash:  hashToken(token),
		ExpiresAt:  time.Now().Add(InviteDuration),
		CreatedBy:  params.CreatedBy,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create invite")
	}

	invite := rowToInvite(row)

	s.logger.Info("invite created",
		"invite_id", invite.ID,
		"universe_id", invite.UniverseID,
		"role", invite.Role,
	)

	return &domain.InviteCredentials{
		Invite: invite,
		Token:  token,
	}, nil
}

// ListInvites retrieves a universe's pending invites.
func (s *memberService) ListInvites(ctx context.Context, universeID uuid.UUID) ([]domain.Invite, error) {
	const op = "member.list_invites"

	rows, err := s.queries.ListInvitesByUniverseID(ctx, universeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list invites")
	}

	invites := make([]domain.Invite, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, *rowToInvite(row))
	}

	return invites, nil
}

// RevokeInvite withdraws a pending invite.
func (s *memberService) RevokeInvite(ctx context.Context, universeID, inviteID uuid.UUID) error {
	const op = "member.revoke_invite"

	// Invites are only addressable through their universe
	rows, err := s.queries.ListInvitesByUniverseID(ctx, universeID)
	if err != nil {
		return domain.Internal(err, op, "failed to list invites")
	}
	found := false
	for _, row := range rows {
		if row.ID == inviteID {
			found = true
			break
		}
	}
	if !found {
		return domain.NotFound(op, "invite", inviteID.String())
	}

	if err := s.queries.DeleteInvite(ctx, inviteID); err != nil {
		return domain.Internal(err, op, "failed to delete invite")
	}

	s.logger.Info("invite revoked",
		"invite_id", inviteID,
		"universe_id", universeID,
	)

	return nil
}

// AcceptInvite redeems an invite token for the authenticated user.
func (s *memberService) AcceptInvite(ctx context.Context, token string, user *domain.User) (*domain.Membership, error) {
	const op = "member.accept_invite"

	if token == "" {
		return nil, domain.Invalid(op, "invite token is required")
	}
	if user == nil {
		return nil, domain.Unauthorized(op, "authentication required")
	}

	row, err := s.queries.GetInviteByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "invite", tokenPrefix(token))
		}
		return nil, domain.Internal(err, op, "failed to get invite")
	}
	invite := rowToInvite(row)

	if invite.IsAccepted() {
		return nil, domain.Gone(op, "invite has already been used")
	}
	if invite.IsExpired() {
		return nil, domain.Gone(op, "invite has expired")
	}
	if !strings.EqualFold(invite.Email, user.Email) {
		return nil, domain.Forbidden(op, "invite was addressed to a different email")
	}

	membership, err := s.queries.CreateMembership(ctx, repository.CreateMembershipParams{
		UniverseID: invite.UniverseID,
		UserID:     user.ID,
		Role:       invite.Role.String(),
		InvitedBy:  uuid.NullUUID{UUID: invite.CreatedBy, Valid: true},
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "user is already a member of this universe")
		}
		return nil, domain.Internal(err, op, "failed to create membership")
	}

	if err := s.queries.MarkInviteAccepted(ctx, invite.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to mark invite accepted")
	}

	s.logger.Info("invite accepted",
		"invite_id", invite.ID,
		"universe_id", invite.UniverseID,
		"user_id", user.ID,
	)

	// Announce the join. Delivery failures are logged, not surfaced.
	if universe, err := s.queries.GetUniverseByID(ctx, invite.UniverseID); err == nil {
		event := notify.MemberEvent{
			UniverseName: universe.Name,
			Email:        user.Email,
			Role:         invite.Role.String(),
			At:           time.Now(),
		}
		if err := s.notifier.NotifyMemberJoined(ctx, domain.NullStringValue(universe.DiscordWebhookUrl), event); err != nil {
			s.logger.Warn("failed to announce member join", "universe_id", invite.UniverseID, "error", err)
		}
	}

	return rowToMembership(membership), nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// rowToMembership converts a repository.Membership to a domain.Membership.
func rowToMembership(row repository.Membership) *domain.Membership {
	return &domain.Membership{
		ID:         row.ID,
		UniverseID: row.UniverseID,
		UserID:     row.UserID,
		Role:       domain.Role(row.Role),
		InvitedBy:  domain.NullUUIDValue(row.InvitedBy),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// rowToInvite converts a repository.Invite to a domain.Invite.
func rowToInvite(row repository.Invite) *domain.Invite {
	return &domain.Invite{
		ID:         row.ID,
		UniverseID: row.UniverseID,
		Email:      row.Email,
		Role:       domain.Role(row.Role),
		TokenHash:  row.TokenHash,
		ExpiresAt:  row.ExpiresAt,
		AcceptedAt: domain.NullTimeValue(row.AcceptedAt),
		CreatedBy:  row.CreatedBy,
		CreatedAt:  row.CreatedAt,
	}
}
