// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements the session-gated dashboard surface. These routes sit
// under the gate's path prefix, so a request only reaches them carrying a
// verified session principal.
//
// Routes:
//   - GET /admin/me       -> Me
//   - GET /admin/overview -> Overview
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// AdminHandler serves the dashboard's own endpoints.
type AdminHandler struct {
	universes   service.UniverseService
	users       service.UserService
	superAdmins map[string]bool
	logger      *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. superAdminEmails mirrors the
// allowlist the authorizer uses, so the dashboard can learn it is talking to
// a super admin without probing.
func NewAdminHandler(universes service.UniverseService, users service.UserService, superAdminEmails []string, logger *slog.Logger) *AdminHandler {
	admins := make(map[string]bool, len(superAdminEmails))
	for _, email := range superAdminEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			admins[email] = true
		}
	}
	return &AdminHandler{
		universes:   universes,
		users:       users,
		superAdmins: admins,
		logger:      logger,
	}
}

// RegisterRoutes registers dashboard routes on the provided mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/me", h.Me)
	mux.HandleFunc("GET /admin/overview", h.Overview)
}

// =============================================================================
// Response Types
// =============================================================================

type sessionResponse struct {
	UserID    string    `json:"userId"`
	UUID      string    `json:"uuid"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type meResponse struct {
	Session    sessionResponse `json:"session"`
	User       userResponse    `json:"user"`
	SuperAdmin bool            `json:"superAdmin"`
}

// =============================================================================
// Handlers
// =============================================================================

// Me returns the calling session together with the freshly loaded user
// record behind it.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil || p.Session == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	userID, err := uuid.Parse(p.Session.UserID)
	if err != nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			// The session outlived its user
			UnauthorizedResponse(w, r, h.logger)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	tags := p.Session.Tags
	if tags == nil {
		tags = []string{}
	}
	respondJSON(w, http.StatusOK, meResponse{
		Session: sessionResponse{
			UserID:    p.Session.UserID,
			UUID:      p.Session.UUID,
			Email:     p.Session.Email,
			Name:      p.Session.Name,
			Tags:      tags,
			CreatedAt: time.UnixMilli(p.Session.CreatedAt),
			ExpiresAt: time.UnixMilli(p.Session.ExpiresAt),
		},
		User:       toUserResponse(user),
		SuperAdmin: user.SuperAdmin || (user.Email != "" && h.superAdmins[strings.ToLower(user.Email)]),
	})
}

// Overview returns platform counts for the dashboard landing page.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	counts, err := h.universes.Counts(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"counts": counts})
}
