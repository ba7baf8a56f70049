// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements AI usage accounting handlers. Bots report raw token
// counts against their own service token; the bot, universe, and provider
// come from the token, never from the request body, and pricing happens
// server-side.
//
// Routes:
//   - POST /api/usage                            -> Report  (service token)
//   - GET  /api/universes/{id}/usage             -> Totals  (universe admin)
//   - GET  /api/universes/{id}/usage/daily       -> Daily   (universe admin)
//   - GET  /api/universes/{id}/usage/export      -> Export  (universe admin)
package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// UsageHandler handles AI usage reporting and aggregate queries.
type UsageHandler struct {
	usage   service.UsageService
	members service.MemberService
	logger  *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usage service.UsageService, members service.MemberService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		usage:   usage,
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers usage routes on the provided mux. Report is bot
// facing and takes the service-token middleware; the aggregate queries are
// dashboard facing.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux, requireAuth, requireService func(http.Handler) http.Handler) {
	mux.Handle("POST /api/usage", requireService(http.HandlerFunc(h.Report)))
	mux.Handle("GET /api/universes/{id}/usage", requireAuth(http.HandlerFunc(h.Totals)))
	mux.Handle("GET /api/universes/{id}/usage/daily", requireAuth(http.HandlerFunc(h.Daily)))
	mux.Handle("GET /api/universes/{id}/usage/export", requireAuth(http.HandlerFunc(h.Export)))
}

// =============================================================================
// Request / Response Types
// =============================================================================

type reportUsageRequest struct {
	Model        string          `json:"model"`
	InputTokens  int64           `json:"inputTokens"`
	OutputTokens int64           `json:"outputTokens"`
	Metadata     json.RawMessage `json:"metadata"`
}

type usageRecordResponse struct {
	ID           string          `json:"id"`
	BotID        string          `json:"botId"`
	UniverseID   string          `json:"universeId"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	InputTokens  int64           `json:"inputTokens"`
	OutputTokens int64           `json:"outputTokens"`
	CostCents    int64           `json:"costCents"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	RecordedAt   time.Time       `json:"recordedAt"`
}

type botUsageResponse struct {
	BotID        string `json:"botId"`
	BotName      string `json:"botName"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	CostCents    int64  `json:"costCents"`
}

type usageTotalsResponse struct {
	UniverseID   string             `json:"universeId"`
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	InputTokens  int64              `json:"inputTokens"`
	OutputTokens int64              `json:"outputTokens"`
	CostCents    int64              `json:"costCents"`
	ByBot        []botUsageResponse `json:"byBot"`
}

type usageDailyResponse struct {
	Day          string `json:"day"`
	BotID        string `json:"botId"`
	BotName      string `json:"botName"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	CostCents    int64  `json:"costCents"`
}

// =============================================================================
// Handlers
// =============================================================================

// Report records one priced usage report for the calling bot.
func (h *UsageHandler) Report(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil || p.Bot == nil {
		ForbiddenResponse(w, r, h.logger)
		return
	}

	var req reportUsageRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	record, err := h.usage.Report(r.Context(), domain.ReportUsageParams{
		BotID:        p.Bot.ID,
		UniverseID:   p.Bot.UniverseID,
		Provider:     p.Bot.Provider,
		Model:        req.Model,
		InputTokens:  req.InputTokens,
		OutputTokens: req.OutputTokens,
		Metadata:     req.Metadata,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, usageRecordResponse{
		ID:           record.ID.String(),
		BotID:        record.BotID.String(),
		UniverseID:   record.UniverseID.String(),
		Provider:     record.Provider.String(),
		Model:        record.Model,
		InputTokens:  record.InputTokens,
		OutputTokens: record.OutputTokens,
		CostCents:    record.CostCents,
		Metadata:     record.Metadata,
		RecordedAt:   record.RecordedAt,
	})
}

// Totals returns a universe's aggregated usage over a window.
func (h *UsageHandler) Totals(w http.ResponseWriter, r *http.Request) {
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

	totals, err := h.usage.Totals(r.Context(), universeID, from, to)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := usageTotalsResponse{
		UniverseID:   totals.UniverseID.String(),
		From:         totals.From,
		To:           totals.To,
		InputTokens:  totals.InputTokens,
		OutputTokens: totals.OutputTokens,
		CostCents:    totals.CostCents,
		ByBot:        make([]botUsageResponse, 0, len(totals.ByBot)),
	}
	for _, b := range totals.ByBot {
		out.ByBot = append(out.ByBot, botUsageResponse{
			BotID:        b.BotID.String(),
			BotName:      b.BotName,
			Provider:     b.Provider.String(),
			Model:        b.Model,
			InputTokens:  b.InputTokens,
			OutputTokens: b.OutputTokens,
			CostCents:    b.CostCents,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Daily returns rolled-up per-day usage rows over a window.
func (h *UsageHandler) Daily(w http.ResponseWriter, r *http.Request) {
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

	daily, err := h.usage.ListDaily(r.Context(), universeID, from, to)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]usageDailyResponse, len(daily))
	for i, d := range daily {
		out[i] = usageDailyResponse{
			Day:          d.Day.Format("2006-01-02"),
			BotID:        d.BotID.String(),
			BotName:      d.BotName,
			Provider:     d.Provider.String(),
			Model:        d.Model,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			CostCents:    d.CostCents,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"daily": out})
}

// Export streams one calendar month of rolled-up usage as a CSV download.
func (h *UsageHandler) Export(w http.ResponseWriter, r *http.Request) {
	universeID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := requireUniverseRole(r.Context(), h.members, universeID, domain.RoleAdmin); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	month := r.URL.Query().Get("month")
	start, err := time.Parse("2006-01", month)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("usage.export", "month must be a YYYY-MM month"))
		return
	}
	end := start.AddDate(0, 1, 0)

	// Render into a buffer first so a query failure still gets a clean JSON
	// error instead of a truncated download. Rollup rows are bounded per
	// universe and month.
	var buf bytes.Buffer
	if err := h.usage.ExportDailyCSV(r.Context(), &buf, universeID, start, end); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("usage-%s-%s.csv", universeID, month)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write usage export", "error", err)
	}
}
