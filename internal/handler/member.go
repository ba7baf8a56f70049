// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements membership and invite handlers. Members are added
// either directly by a universe admin or by redeeming an invite token; the
// token is returned exactly once at creation and delivery to the invitee
// happens out of band.
//
// Routes:
//   - POST   /api/universes/{id}/members          -> Add          (universe admin)
//   - GET    /api/universes/{id}/members          -> List         (member)
//   - PATCH  /api/universes/{id}/members/{userId} -> UpdateRole   (universe admin)
//   - DELETE /api/universes/{id}/members/{userId} -> Remove       (universe admin)
//   - POST   /api/universes/{id}/invites          -> CreateInvite (universe admin)
//   - GET    /api/universes/{id}/invites          -> ListInvites  (universe admin)
//   - DELETE /api/universes/{id}/invites/{inviteId} -> RevokeInvite (universe admin)
//   - POST   /api/invites/accept                  -> AcceptInvite (any session)
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// MemberHandler handles membership and invite requests.
type MemberHandler struct {
	members service.MemberService
	logger  *slog.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members service.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers membership routes on the provided mux.
func (h *MemberHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/universes/{id}/members", requireAuth(http.HandlerFunc(h.Add)))
	mux.Handle("GET /api/universes/{id}/members", requireAuth(http.HandlerFunc(h.List)))
	mux.Handle("PATCH /api/universes/{id}/members/{userId}", requireAuth(http.HandlerFunc(h.UpdateRole)))
	mux.Handle("DELETE /api/universes/{id}/members/{userId}", requireAuth(http.HandlerFunc(h.Remove)))
	mux.Handle("POST /api/universes/{id}/invites", requireAuth(http.HandlerFunc(h.CreateInvite)))
	mux.Handle("GET /api/universes/{id}/invites", requireAuth(http.HandlerFunc(h.ListInvites)))
	mux.Handle("DELETE /api/universes/{id}/invites/{inviteId}", requireAuth(http.HandlerFunc(h.RevokeInvite)))
	mux.Handle("POST /api/invites/accept", requireAuth(http.HandlerFunc(h.AcceptInvite)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type createInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

type membershipResponse struct {
	ID         string    `json:"id"`
	UniverseID string    `json:"universeId"`
	UserID     string    `json:"userId"`
	Role       string    `json:"role"`
	UserUUID   string    `json:"userUuid,omitempty"`
	UserEmail  string    `json:"userEmail,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toMembershipResponse(m *domain.Membership) membershipResponse {
	return membershipResponse{
		ID:         m.ID.String(),
		UniverseID: m.UniverseID.String(),
		UserID:     m.UserID.String(),
		Role:       m.Role.String(),
		UserUUID:   m.UserUUID,
		UserEmail:  m.UserEmail,
		UserName:   m.UserName,
		CreatedAt:  m.CreatedAt,
	}
}

type inviteResponse struct {
	ID         string    `json:"id"`
	UniverseID string    `json:"universeId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"createdAt"`

	// Token is only present in the create response.
	Token string `json:"token,omitempty"`
}

func toInviteResponse(i *domain.Invite) inviteResponse {
	return inviteResponse{
		ID:         i.ID.String(),
		UniverseID: i.UniverseID.String(),
		Email:      i.Email,
		Role:       i.Role.String(),
		ExpiresAt:  i.ExpiresAt,
		Accepted:   i.IsAccepted(),
		CreatedAt:  i.CreatedAt,
	}
}

// =============================================================================
// Membership Handlers
// =============================================================================

// Add attaches an existing user to a universe with a role.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("member.add", "userId is not a valid identifier"))
		return
	}

	params := domain.AddMemberParams{
		UniverseID: universeID,
		UserID:     userID,
		Role:       domain.Role(req.Role),
	}
	if p := auth.PrincipalFrom(r.Context()); p != nil && p.User != nil {
		inviter := p.User.ID
		params.InvitedBy = &inviter
	}

	membership, err := h.members.Add(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMembershipResponse(membership))
}

// List returns a universe's members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleMember); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	memberships, err := h.members.List(r.Context(), universeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]membershipResponse, len(memberships))
	for i := range memberships {
		out[i] = toMembershipResponse(&memberships[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": out})
}

// UpdateRole changes a member's role.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	membership, err := h.members.UpdateRole(r.Context(), universeID, userID, domain.Role(req.Role))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toMembershipResponse(membership))
}

// Remove detaches a member from a universe.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.members.Remove(r.Context(), universeID, userID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Invite Handlers
// =============================================================================

// CreateInvite issues an invite addressed to an email. The accept token in
// the response is shown exactly once.
func (h *MemberHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Invites record their creator, so the static admin token cannot issue
	// them.
	p := auth.PrincipalFrom(r.Context())
	if p == nil || p.User == nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("member.create_invite", "Invites must be created from a signed-in session"))
		return
	}

	var req createInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	creds, err := h.members.CreateInvite(r.Context(), domain.CreateInviteParams{
		UniverseID: universeID,
		Email:      req.Email,
		Role:       domain.Role(req.Role),
		CreatedBy:  p.User.ID,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := toInviteResponse(creds.Invite)
	out.Token = creds.Token
	respondJSON(w, http.StatusCreated, out)
}

// ListInvites returns a universe's invites.
func (h *MemberHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	invites, err := h.members.ListInvites(r.Context(), universeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]inviteResponse, len(invites))
	for i := range invites {
		out[i] = toInviteResponse(&invites[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"invites": out})
}

// RevokeInvite withdraws a pending invite.
func (h *MemberHandler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	inviteID, err := pathID(r, "inviteId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.members.RevokeInvite(r.Context(), universeID, inviteID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvite redeems an invite token for the calling session's user.
func (h *MemberHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil || p.User == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req acceptInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	membership, err := h.members.AcceptInvite(r.Context(), req.Token, p.User)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMembershipResponse(membership))
}
