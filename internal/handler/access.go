// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements room access handlers. The game server calls Check at
// the moment a visitor enters a room; the admission decision travels back in
// the same response, the attempt is recorded for analytics, and a Discord
// notification is scheduled.
//
// Routes:
//   - POST /api/rooms/access                    -> Check     (platform admin)
//   - GET  /api/universes/{id}/analytics/rooms  -> Analytics (universe admin)
package handler

import (
	"log/slog"
	"net/http"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// AccessHandler handles room access checks and analytics queries.
type AccessHandler struct {
	access  service.AccessService
	members service.MemberService
	logger  *slog.Logger
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(access service.AccessService, members service.MemberService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		access:  access,
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers access routes on the provided mux. Check is called
// by the game server with the platform admin token.
func (h *AccessHandler) RegisterRoutes(mux *http.ServeMux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("POST /api/rooms/access", requireAdmin(http.HandlerFunc(h.Check)))
	mux.Handle("GET /api/universes/{id}/analytics/rooms", requireAuth(http.HandlerFunc(h.Analytics)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type checkAccessRequest struct {
	UserUUID     string `json:"userUuid"`
	RoomSlugOrID string `json:"roomSlugOrId"`
}

type roomAccessDailyResponse struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	WorldID     string `json:"worldId"`
	Day         string `json:"day"`
	AccessCount int64  `json:"accessCount"`
	UniqueUsers int64  `json:"uniqueUsers"`
}

// =============================================================================
// Handlers
// =============================================================================

// Check decides whether a visitor may enter a room and records the attempt.
func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	decision, err := h.access.Check(r.Context(), req.RoomSlugOrID, req.UserUUID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

// Analytics returns per-room daily access aggregates for a universe.
func (h *AccessHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	from, to, err := queryTimeRange(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	daily, err := h.access.Analytics(r.Context(), universeID, from, to)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]roomAccessDailyResponse, len(daily))
	for i, d := range daily {
		out[i] = roomAccessDailyResponse{
			RoomID:      d.RoomID.String(),
			RoomName:    d.RoomName,
			WorldID:     d.WorldID.String(),
			Day:         d.Day.Format("2006-01-02"),
			AccessCount: d.AccessCount,
			UniqueUsers: d.UniqueUsers,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"rooms": out})
}
