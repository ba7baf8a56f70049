// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements universe management handlers.
//
// Routes:
//   - POST   /api/universes      -> Create   (platform admin)
//   - GET    /api/universes      -> List     (filtered to memberships)
//   - GET    /api/universes/{id} -> Get      (member)
//   - PATCH  /api/universes/{id} -> Update   (universe admin)
//   - DELETE /api/universes/{id} -> Delete   (platform admin)
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// UniverseHandler handles universe management requests.
type UniverseHandler struct {
	universes service.UniverseService
	members   service.MemberService
	logger    *slog.Logger
}

// NewUniverseHandler creates a new UniverseHandler.
func NewUniverseHandler(universes service.UniverseService, members service.MemberService, logger *slog.Logger) *UniverseHandler {
	return &UniverseHandler{
		universes: universes,
		members:   members,
		logger:    logger,
	}
}

// RegisterRoutes registers universe routes on the provided mux. requireAuth
// admits any authenticated principal; requireAdmin admits only the admin
// token and super-admin sessions.
func (h *UniverseHandler) RegisterRoutes(mux *http.ServeMux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("POST /api/universes", requireAdmin(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/universes", requireAuth(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/universes/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/universes/{id}", requireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/universes/{id}", requireAdmin(http.HandlerFunc(h.Delete)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createUniverseRequest struct {
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	AdminEmail        string `json:"adminEmail"`
	MapStorageURL     string `json:"mapStorageUrl"`
	OIDCIssuer        string `json:"oidcIssuer"`
	DiscordWebhookURL string `json:"discordWebhookUrl"`
}

type updateUniverseRequest struct {
	Name              *string `json:"name"`
	AdminEmail        *string `json:"adminEmail"`
	MapStorageURL     *string `json:"mapStorageUrl"`
	DiscordWebhookURL *string `json:"discordWebhookUrl"`
	Active            *bool   `json:"active"`
}

type universeResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	AdminEmail        string    `json:"adminEmail"`
	MapStorageURL     string    `json:"mapStorageUrl"`
	OIDCIssuer        string    `json:"oidcIssuer"`
	DiscordWebhookURL string    `json:"discordWebhookUrl,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toUniverseResponse(u *domain.Universe) universeResponse {
	return universeResponse{
		ID:                u.ID.String(),
		Name:              u.Name,
		Slug:              u.Slug,
		AdminEmail:        u.AdminEmail,
		MapStorageURL:     u.MapStorageURL,
		OIDCIssuer:        u.OIDCIssuer,
		DiscordWebhookURL: u.DiscordWebhookURL,
		Active:            u.Active,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// Create provisions a new universe.
func (h *UniverseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUniverseRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	universe, err := h.universes.Create(r.Context(), domain.CreateUniverseParams{
		Name:              req.Name,
		Slug:              req.Slug,
		AdminEmail:        req.AdminEmail,
		MapStorageURL:     req.MapStorageURL,
		OIDCIssuer:        req.OIDCIssuer,
		DiscordWebhookURL: req.DiscordWebhookURL,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUniverseResponse(universe))
}

// List returns the universes visible to the caller. Platform admins see
// everything; session users see the universes they belong to.
func (h *UniverseHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())

	var (
		universes []domain.Universe
		err       error
	)
	if isPlatformAdmin(p) {
		universes, err = h.universes.ListAll(r.Context())
	} else if p != nil && p.User != nil {
		universes, err = h.universes.ListForUser(r.Context(), p.User.ID)
	} else {
		ForbiddenResponse(w, r, h.logger)
		return
	}
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]universeResponse, len(universes))
	for i := range universes {
		out[i] = toUniverseResponse(&universes[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"universes": out})
}

// Get returns a single universe.
func (h *UniverseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, id, domain.RoleMember); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	universe, err := h.universes.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUniverseResponse(universe))
}

// Update applies partial changes to a universe.
func (h *UniverseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, id, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateUniverseRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	universe, err := h.universes.Update(r.Context(), domain.UpdateUniverseParams{
		ID:                id,
		Name:              req.Name,
		AdminEmail:        req.AdminEmail,
		MapStorageURL:     req.MapStorageURL,
		DiscordWebhookURL: req.DiscordWebhookURL,
		Active:            req.Active,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUniverseResponse(universe))
}

// Delete removes a universe and everything under it.
func (h *UniverseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.universes.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
