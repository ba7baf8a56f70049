// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements bot management handlers. Bots are AI characters that
// run outside this service; creating or rotating one returns its service
// token exactly once, and only the token's hash is kept.
//
// Routes:
//   - POST   /api/worlds/{id}/bots  -> Create     (universe admin)
//   - GET    /api/worlds/{id}/bots  -> ListByWorld (member)
//   - GET    /api/bots/{id}         -> Get        (member)
//   - PATCH  /api/bots/{id}         -> Update     (universe admin)
//   - POST   /api/bots/{id}/rotate  -> Rotate     (universe admin)
//   - DELETE /api/bots/{id}         -> Delete     (universe admin)
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// BotHandler handles bot management requests.
type BotHandler struct {
	bots    service.BotService
	worlds  service.WorldService
	members service.MemberService
	logger  *slog.Logger
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(bots service.BotService, worlds service.WorldService, members service.MemberService, logger *slog.Logger) *BotHandler {
	return &BotHandler{
		bots:    bots,
		worlds:  worlds,
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers bot routes on the provided mux.
func (h *BotHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/worlds/{id}/bots", requireAuth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/worlds/{id}/bots", requireAuth(http.HandlerFunc(h.ListByWorld)))
	mux.Handle("GET /api/bots/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/bots/{id}", requireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("POST /api/bots/{id}/rotate", requireAuth(http.HandlerFunc(h.Rotate)))
	mux.Handle("DELETE /api/bots/{id}", requireAuth(http.HandlerFunc(h.Delete)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createBotRequest struct {
	Name         string          `json:"name"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	SystemPrompt string          `json:"systemPrompt"`
	Config       json.RawMessage `json:"config"`
}

type updateBotRequest struct {
	Name         *string         `json:"name"`
	Model        *string         `json:"model"`
	SystemPrompt *string         `json:"systemPrompt"`
	Config       json.RawMessage `json:"config"`
	Active       *bool           `json:"active"`
}

// botResponse never carries the token hash; TokenPrefix is the only stored
// remnant of the raw token that dashboards get to see.
type botResponse struct {
	ID           string          `json:"id"`
	WorldID      string          `json:"worldId"`
	Name         string          `json:"name"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	SystemPrompt string          `json:"systemPrompt,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
	TokenPrefix  string          `json:"tokenPrefix"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type botCredentialsResponse struct {
	botResponse

	// Token is shown exactly once in this response.
	Token string `json:"token"`
}

func toBotResponse(b *domain.Bot) botResponse {
	return botResponse{
		ID:           b.ID.String(),
		WorldID:      b.WorldID.String(),
		Name:         b.Name,
		Provider:     b.Provider.String(),
		Model:        b.Model,
		SystemPrompt: b.SystemPrompt,
		Config:       b.Config,
		TokenPrefix:  b.TokenPrefix,
		Active:       b.Active,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// loadBot resolves the bot from the URL, walks up to its universe, and checks
// the caller holds at least minRole there. Writes the error response and
// returns false when any step fails.
func (h *BotHandler) loadBot(w http.ResponseWriter, r *http.Request, minRole domain.Role) (*domain.Bot, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}
	bot, err := h.bots.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}
	world, err := h.worlds.GetByID(r.Context(), bot.WorldID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}
	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, minRole); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}
	return bot, true
}

// =============================================================================
// Handlers
// =============================================================================

// Create creates a bot in a world and returns its service token once.
func (h *BotHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	if err := requireUniverseRole(r.Context(), h.members, world.UniverseID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createBotRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	creds, err := h.bots.Create(r.Context(), domain.CreateBotParams{
		WorldID:      world.ID,
		Name:         req.Name,
		Provider:     domain.AIProvider(req.Provider),
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Config:       req.Config,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, botCredentialsResponse{
		botResponse: toBotResponse(creds.Bot),
		Token:       creds.Token,
	})
}

// ListByWorld returns all bots in a world.
func (h *BotHandler) ListByWorld(w http.ResponseWriter, r *http.Request) {
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

	bots, err := h.bots.ListByWorld(r.Context(), world.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]botResponse, len(bots))
	for i := range bots {
		out[i] = toBotResponse(&bots[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"bots": out})
}

// Get returns a single bot.
func (h *BotHandler) Get(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.loadBot(w, r, domain.RoleMember)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toBotResponse(bot))
}

// Update applies a partial update to a bot.
func (h *BotHandler) Update(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.loadBot(w, r, domain.RoleAdmin)
	if !ok {
		return
	}

	var req updateBotRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	updated, err := h.bots.Update(r.Context(), domain.UpdateBotParams{
		ID:           bot.ID,
		Name:         req.Name,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Config:       req.Config,
		Active:       req.Active,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toBotResponse(updated))
}

// Rotate replaces a bot's service token and returns the new one once. The
// previous token stops working immediately.
func (h *BotHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.loadBot(w, r, domain.RoleAdmin)
	if !ok {
		return
	}

	creds, err := h.bots.RotateToken(r.Context(), bot.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, botCredentialsResponse{
		botResponse: toBotResponse(creds.Bot),
		Token:       creds.Token,
	})
}

// Delete removes a bot.
func (h *BotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.loadBot(w, r, domain.RoleAdmin)
	if !ok {
		return
	}

	if err := h.bots.Delete(r.Context(), bot.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
