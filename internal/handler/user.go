// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements platform user handlers. Users are created by the
// OIDC login flow, never through this API; what admins manage here is
// visibility and the tag set the game servers authorize against.
//
// Routes:
//   - GET   /api/users           -> List       (platform admin)
//   - GET   /api/users/{id}      -> Get        (platform admin or self)
//   - PATCH /api/users/{id}/tags -> UpdateTags (platform admin)
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// UserHandler handles platform user requests.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// RegisterRoutes registers user routes on the provided mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/users", requireAdmin(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/users/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/users/{id}/tags", requireAdmin(http.HandlerFunc(h.UpdateTags)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type updateTagsRequest struct {
	Tags []string `json:"tags"`
}

type userResponse struct {
	ID          string     `json:"id"`
	UUID        string     `json:"uuid"`
	Email       string     `json:"email,omitempty"`
	Name        string     `json:"name,omitempty"`
	Tags        []string   `json:"tags"`
	SuperAdmin  bool       `json:"superAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	tags := u.Tags
	if tags == nil {
		tags = []string{}
	}
	return userResponse{
		ID:          u.ID.String(),
		UUID:        u.UUID,
		Email:       u.Email,
		Name:        u.Name,
		Tags:        tags,
		SuperAdmin:  u.SuperAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// List returns a page of platform users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := domain.ListUsersParams{}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			ErrorResponse(w, r, h.logger, domain.Invalid("user.list", "limit must be a non-negative integer"))
			return
		}
		params.Limit = int32(n)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			ErrorResponse(w, r, h.logger, domain.Invalid("user.list", "offset must be a non-negative integer"))
			return
		}
		params.Offset = int32(n)
	}

	result, err := h.users.List(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]userResponse, len(result.Users))
	for i := range result.Users {
		out[i] = toUserResponse(&result.Users[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"users": out,
		"total": result.Total,
	})
}

// Get returns a single user. Non-admin sessions may only fetch themselves.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	p := auth.PrincipalFrom(r.Context())
	if !isPlatformAdmin(p) {
		if p == nil || p.User == nil || p.User.ID != id {
			ForbiddenResponse(w, r, h.logger)
			return
		}
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateTags replaces a user's tag set.
func (h *UserHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateTagsRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.Tags == nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("user.update_tags", "tags is required; send an empty array to clear"))
		return
	}

	user, err := h.users.UpdateTags(r.Context(), id, req.Tags)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
