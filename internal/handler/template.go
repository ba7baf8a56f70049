// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements room template handlers. Templates are per-universe
// starting points for rooms: creating a room from one copies the template's
// map in map storage.
//
// Routes:
//   - POST   /api/universes/{id}/templates -> Create         (universe admin)
//   - GET    /api/universes/{id}/templates -> ListByUniverse (member)
//   - DELETE /api/templates/{id}           -> Delete         (universe admin)
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// TemplateHandler handles room template requests.
type TemplateHandler struct {
	templates service.TemplateService
	members   service.MemberService
	logger    *slog.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templates service.TemplateService, members service.MemberService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		members:   members,
		logger:    logger,
	}
}

// RegisterRoutes registers template routes on the provided mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/universes/{id}/templates", requireAuth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/universes/{id}/templates", requireAuth(http.HandlerFunc(h.ListByUniverse)))
	mux.Handle("DELETE /api/templates/{id}", requireAuth(http.HandlerFunc(h.Delete)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createTemplateRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	WamSourcePath string          `json:"wamSourcePath"`
	Properties    json.RawMessage `json:"properties"`
}

type templateResponse struct {
	ID            string          `json:"id"`
	UniverseID    string          `json:"universeId"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	WamSourcePath string          `json:"wamSourcePath"`
	Properties    json.RawMessage `json:"properties,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toTemplateResponse(t *domain.RoomTemplate) templateResponse {
	return templateResponse{
		ID:            t.ID.String(),
		UniverseID:    t.UniverseID.String(),
		Name:          t.Name,
		Description:   t.Description,
		WamSourcePath: t.WamSourcePath,
		Properties:    t.Properties,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// Create adds a template to a universe.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	template, err := h.templates.Create(r.Context(), domain.CreateRoomTemplateParams{
		UniverseID:    universeID,
		Name:          req.Name,
		Description:   req.Description,
		WamSourcePath: req.WamSourcePath,
		Properties:    req.Properties,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTemplateResponse(template))
}

// ListByUniverse returns the templates of a universe.
func (h *TemplateHandler) ListByUniverse(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleMember); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	templates, err := h.templates.ListByUniverse(r.Context(), universeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]templateResponse, len(templates))
	for i := range templates {
		out[i] = toTemplateResponse(&templates[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": out})
}

// Delete removes a template. Rooms created from it keep their maps.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	template, err := h.templates.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, template.UniverseID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.templates.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
