// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements world management handlers, including the preview
// image upload and the map sync trigger.
//
// Routes:
//   - POST   /api/universes/{id}/worlds -> Create        (universe editor)
//   - GET    /api/universes/{id}/worlds -> ListByUniverse (member)
//   - GET    /api/worlds/{id}           -> Get            (member)
//   - PATCH  /api/worlds/{id}           -> Update         (universe editor)
//   - DELETE /api/worlds/{id}           -> Delete         (universe editor)
//   - POST   /api/worlds/{id}/preview   -> UploadPreview  (universe editor)
//   - DELETE /api/worlds/{id}/preview   -> DeletePreview  (universe editor)
//   - POST   /api/worlds/{id}/sync      -> Sync           (universe editor)
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// WorldHandler handles world management requests.
type WorldHandler struct {
	worlds  service.WorldService
	members service.MemberService
	logger  *slog.Logger
}

// NewWorldHandler creates a new WorldHandler.
func NewWorldHandler(worlds service.WorldService, members service.MemberService, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		worlds:  worlds,
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers world routes on the provided mux.
func (h *WorldHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/universes/{id}/worlds", requireAuth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/universes/{id}/worlds", requireAuth(http.HandlerFunc(h.ListByUniverse)))
	mux.Handle("GET /api/worlds/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/worlds/{id}", requireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/worlds/{id}", requireAuth(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/worlds/{id}/preview", requireAuth(http.HandlerFunc(h.UploadPreview)))
	mux.Handle("DELETE /api/worlds/{id}/preview", requireAuth(http.HandlerFunc(h.DeletePreview)))
	mux.Handle("POST /api/worlds/{id}/sync", requireAuth(http.HandlerFunc(h.Sync)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createWorldRequest struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Properties  json.RawMessage `json:"properties"`
}

type updateWorldRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Tags        []string        `json:"tags"`
	Properties  json.RawMessage `json:"properties"`
	Active      *bool           `json:"active"`
}

type worldResponse struct {
	ID           string          `json:"id"`
	UniverseID   string          `json:"universeId"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	Tags         []string        `json:"tags"`
	Properties   json.RawMessage `json:"properties,omitempty"`
	Active       bool            `json:"active"`
	RoomCount    int64           `json:"roomCount"`
	PreviewURL   string          `json:"previewUrl,omitempty"`
	ThumbnailURL string          `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toWorldResponse(world *domain.World) worldResponse {
	tags := world.Tags
	if tags == nil {
		tags = []string{}
	}
	return worldResponse{
		ID:          world.ID.String(),
		UniverseID:  world.UniverseID.String(),
		Name:        world.Name,
		Slug:        world.Slug,
		Description: world.Description,
		Tags:        tags,
		Properties:  world.Properties,
		Active:      world.Active,
		RoomCount:   world.RoomCount,
		CreatedAt:   world.CreatedAt,
		UpdatedAt:   world.UpdatedAt,
	}
}

// respondWorld writes a world with its preview URLs resolved. Presign
// failures degrade to a response without URLs rather than failing the call.
func (h *WorldHandler) respondWorld(w http.ResponseWriter, r *http.Request, status int, world *domain.World) {
	out := toWorldResponse(world)
	if world.PreviewKey != "" {
		previewURL, thumbURL, err := h.worlds.PreviewURLs(r.Context(), world)
		if err != nil {
			h.logger.Warn("failed to presign preview urls", "world_id", world.ID, "error", err)
		} else {
			out.PreviewURL = previewURL
			out.ThumbnailURL = thumbURL
		}
	}
	respondJSON(w, status, out)
}

// =============================================================================
// Handlers
// =============================================================================

// Create adds a world to a universe.
func (h *WorldHandler) Create(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleEditor); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createWorldRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	world, err := h.worlds.Create(r.Context(), domain.CreateWorldParams{
		UniverseID:  universeID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Tags:        req.Tags,
		Properties:  req.Properties,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toWorldResponse(world))
}

// ListByUniverse returns the worlds of a universe.
func (h *WorldHandler) ListByUniverse(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleMember); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	worlds, err := h.worlds.ListByUniverse(r.Context(), universeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]worldResponse, len(worlds))
	for i := range worlds {
		out[i] = toWorldResponse(&worlds[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"worlds": out})
}

// Get returns a single world with its preview URLs.
func (h *WorldHandler) Get(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleMember)
	if !ok {
		return
	}
	h.respondWorld(w, r, http.StatusOK, world)
}

// Update applies partial changes to a world.
func (h *WorldHandler) Update(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	var req updateWorldRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	updated, err := h.worlds.Update(r.Context(), domain.UpdateWorldParams{
		ID:          world.ID,
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Properties:  req.Properties,
		Active:      req.Active,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toWorldResponse(updated))
}

// Delete removes a world and its rooms.
func (h *WorldHandler) Delete(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	if err := h.worlds.Delete(r.Context(), world.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPreview accepts a multipart image upload for the world preview.
// The image is resized and stored alongside a generated thumbnail.
func (h *WorldHandler) UploadPreview(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(domain.MaxPreviewUploadSize); err != nil {
		ErrorResponse(w, r, h.logger, domain.TooLarge("world.preview", "Preview upload exceeds the size limit"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("world.preview", "An image file is required in the image field"))
		return
	}
	defer file.Close()

	updated, err := h.worlds.SetPreview(r.Context(), world.ID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.respondWorld(w, r, http.StatusOK, updated)
}

// DeletePreview removes the world's preview image and thumbnail.
func (h *WorldHandler) DeletePreview(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	if err := h.worlds.DeletePreview(r.Context(), world.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Sync enqueues a map sync job pushing every room's WAM descriptor to the
// universe's map-storage service.
func (h *WorldHandler) Sync(w http.ResponseWriter, r *http.Request) {
	world, ok := h.loadWorld(w, r, domain.RoleEditor)
	if !ok {
		return
	}

	if err := h.worlds.Sync(r.Context(), world.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sync scheduled"})
}

// loadWorld resolves the {id} path segment, loads the world, and checks the
// caller's role in the owning universe. On failure it writes the error
// response and reports false.
func (h *WorldHandler) loadWorld(w http.ResponseWriter, r *http.Request, minRole domain.Role) (*domain.World, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	world, err := h.worlds.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, minRole); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	return world, true
}
