// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements room management handlers.
//
// Routes:
//   - POST   /api/worlds/{id}/rooms -> Create      (universe editor)
//   - GET    /api/worlds/{id}/rooms -> ListByWorld (member)
//   - GET    /api/rooms/{id}        -> Get         (member)
//   - PATCH  /api/rooms/{id}        -> Update      (universe editor)
//   - DELETE /api/rooms/{id}        -> Delete      (universe editor)
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// RoomHandler handles room management requests.
type RoomHandler struct {
	rooms   service.RoomService
	worlds  service.WorldService
	members service.MemberService
	logger  *slog.Logger
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms service.RoomService, worlds service.WorldService, members service.MemberService, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:   rooms,
		worlds:  worlds,
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers room routes on the provided mux.
func (h *RoomHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/worlds/{id}/rooms", requireAuth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/worlds/{id}/rooms", requireAuth(http.HandlerFunc(h.ListByWorld)))
	mux.Handle("GET /api/rooms/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/rooms/{id}", requireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/rooms/{id}", requireAuth(http.HandlerFunc(h.Delete)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createRoomRequest struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	WamPath      string          `json:"wamPath"`
	TemplateID   string          `json:"templateId"`
	MaxOccupancy int32           `json:"maxOccupancy"`
	Tags         []string        `json:"tags"`
	Properties   json.RawMessage `json:"properties"`
}

type updateRoomRequest struct {
	Name         *string         `json:"name"`
	WamPath      *string         `json:"wamPath"`
	MaxOccupancy *int32          `json:"maxOccupancy"`
	Tags         []string        `json:"tags"`
	Properties   json.RawMessage `json:"properties"`
	Active       *bool           `json:"active"`
}

type roomResponse struct {
	ID           string          `json:"id"`
	WorldID      string          `json:"worldId"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	WamPath      string          `json:"wamPath"`
	TemplateID   string          `json:"templateId,omitempty"`
	MaxOccupancy int32           `json:"maxOccupancy"`
	Tags         []string        `json:"tags"`
	Properties   json.RawMessage `json:"properties,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toRoomResponse(room *domain.Room) roomResponse {
	tags := room.Tags
	if tags == nil {
		tags = []string{}
	}
	out := roomResponse{
		ID:           room.ID.String(),
		WorldID:      room.WorldID.String(),
		Name:         room.Name,
		Slug:         room.Slug,
		WamPath:      room.WamPath,
		MaxOccupancy: room.MaxOccupancy,
		Tags:         tags,
		Properties:   room.Properties,
		Active:       room.Active,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
	if room.TemplateID != nil {
		out.TemplateID = room.TemplateID.String()
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

// Create adds a room to a world. A templateId seeds the room's map from the
// template and registers the copy with the universe's map storage.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	world, err := h.worlds.GetByID(r.Context(), worldID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, domain.RoleEditor); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.CreateRoomParams{
		WorldID:      worldID,
		Name:         req.Name,
		Slug:         req.Slug,
		WamPath:      req.WamPath,
		MaxOccupancy: req.MaxOccupancy,
		Tags:         req.Tags,
		Properties:   req.Properties,
	}
	if req.TemplateID != "" {
		templateID, err := uuid.Parse(req.TemplateID)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("room.create", "templateId is not a valid identifier"))
			return
		}
		params.TemplateID = &templateID
	}

	room, err := h.rooms.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRoomResponse(room))
}

// ListByWorld returns the rooms of a world.
func (h *RoomHandler) ListByWorld(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	world, err := h.worlds.GetByID(r.Context(), worldID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, domain.RoleMember); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rooms, err := h.rooms.ListByWorld(r.Context(), worldID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]roomResponse, len(rooms))
	for i := range rooms {
		out[i] = toRoomResponse(&rooms[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

// Get returns a single room.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r, domain.RoleMember)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toRoomResponse(room))
}

// Update applies partial changes to a room.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	updated, err := h.rooms.Update(r.Context(), domain.UpdateRoomParams{
		ID:           room.ID,
		Name:         req.Name,
		WamPath:      req.WamPath,
		MaxOccupancy: req.MaxOccupancy,
		Tags:         req.Tags,
		Properties:   req.Properties,
		Active:       req.Active,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toRoomResponse(updated))
}

// Delete removes a room.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	if err := h.rooms.Delete(r.Context(), room.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadRoom resolves the {id} path segment, loads the room, and checks the
// caller's role in the universe owning the room's world.
func (h *RoomHandler) loadRoom(w http.ResponseWriter, r *http.Request, minRole domain.Role) (*domain.Room, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	room, err := h.rooms.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	world, err := h.worlds.GetByID(r.Context(), room.WorldID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, minRole); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	return room, true
}
