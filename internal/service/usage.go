// Package service contains the business logic layer.
//
// This file implements the AI usage service. Bots report raw token counts;
// pricing happens here, server-side, so a misbehaving bot cannot set its own
// cost. Aggregates are served for dashboards and exported as CSV.
package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/ai"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/metrics"
	"github.com/wanderspace/overseer/internal/repository"
)

// DefaultUsageWindow is the query window applied when the caller does not
// bound a usage aggregate.
const DefaultUsageWindow = 30 * 24 * time.Hour

// =============================================================================
// Interface Definition
// =============================================================================

// UsageService defines the interface for AI usage accounting.
type UsageService interface {
	// Report prices and records one usage report. Unknown models are priced
	// at the provider's default rate and flagged in the record metadata.
	// Returns domain.EINVALID for validation errors.
	Report(ctx context.Context, params domain.ReportUsageParams) (*domain.UsageRecord, error)

	// Totals aggregates a universe's usage over a window. A zero from or to
	// defaults to a trailing 30 day window ending now.
	Totals(ctx context.Context, universeID uuid.UUID, from, to time.Time) (*domain.UsageTotals, error)

	// ListDaily retrieves rolled-up per-day usage rows for a universe.
	ListDaily(ctx context.Context, universeID uuid.UUID, from, to time.Time) ([]domain.UsageDaily, error)

	// ExportDailyCSV writes rolled-up per-day usage rows for a universe as
	// CSV, one row per bot, model, and day.
	ExportDailyCSV(ctx context.Context, w io.Writer, universeID uuid.UUID, from, to time.Time) error
}

// =============================================================================
// Implementation
// =============================================================================

// usageService implements the UsageService interface.
type usageService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUsageService creates a new UsageService.
//
// Parameters:
// - queries: Repository queries for database access
// - logger: Structured logger for operation logging
func NewUsageService(
	queries *repository.Queries,
	logger *slog.Logger,
) UsageService {
	return &usageService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Report
// =============================================================================

// Report prices and records one usage report.
func (s *usageService) Report(ctx context.Context, params domain.ReportUsageParams) (*domain.UsageRecord, error) {
	const op = "usage.report"

	// Validate parameters
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Price the report server-side
	costCents, exact, err := ai.Price(params.Provider, params.Model, params.InputTokens, params.OutputTokens)
	if err != nil {
		return nil, domain.Invalid(op, "provider has no pricing table")
	}

	metadata := params.Metadata
	if !exact {
		// Flag records priced at the provider default so billing reviews
		// can find them
		merged, err := mergeMetadataFlag(metadata, "unpriced_model", true)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to annotate metadata")
		}
		metadata = merged
		s.logger.Warn("usage report for unpriced model",
			"bot_id", params.BotID,
			"provider", params.Provider,
			"model", params.Model,
		)
	}

	row, err := s.queries.CreateUsageRecord(ctx, repository.CreateUsageRecordParams{
		BotID:        params.BotID,
		UniverseID:   params.UniverseID,
		Provider:     params.Provider.String(),
		Model:        params.Model,
		InputTokens:  params.InputTokens,
		OutputTokens: params.OutputTokens,
		CostCents:    costCents,
		Metadata:     domain.ToNullRawMessage(metadata),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create usage record")
	}

	metrics.AITokensTotal.WithLabelValues("input").Add(float64(params.InputTokens))
	metrics.AITokensTotal.WithLabelValues("output").Add(float64(params.OutputTokens))
	metrics.AICostCentsTotal.Add(float64(costCents))

	s.logger.Info("usage recorded",
		"bot_id", params.BotID,
		"universe_id", params.UniverseID,
		"model", params.Model,
		"input_tokens", params.InputTokens,
		"output_tokens", params.OutputTokens,
		"cost_cents", costCents,
	)

	return rowToUsageRecord(row), nil
}

// =============================================================================
// Totals
// =============================================================================

// Totals aggregates a universe's usage over a window.
func (s *usageService) Totals(ctx context.Context, universeID uuid.UUID, from, to time.Time) (*domain.UsageTotals, error) {
	const op = "usage.totals"

	from, to, err := normalizeWindow(op, from, to)
	if err != nil {
		return nil, err
	}

	sums, err := s.queries.SumUsageByUniverse(ctx, repository.SumUsageByUniverseParams{
		UniverseID: universeID,
		StartTime:  from,
		EndTime:    to,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sum usage")
	}

	byBot, err := s.queries.SumUsageByBot(ctx, repository.SumUsageByBotParams{
		UniverseID: universeID,
		StartTime:  from,
		EndTime:    to,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sum usage by bot")
	}

	totals := &domain.UsageTotals{
		UniverseID:   universeID,
		From:         from,
		To:           to,
		InputTokens:  sums.InputTokens,
		OutputTokens: sums.OutputTokens,
		CostCents:    sums.CostCents,
		ByBot:        make([]domain.BotUsage, 0, len(byBot)),
	}
	for _, row := range byBot {
		totals.ByBot = append(totals.ByBot, domain.BotUsage{
			BotID:        row.BotID,
			BotName:      row.BotName,
			Provider:     domain.AIProvider(row.Provider),
			Model:        row.Model,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			CostCents:    row.CostCents,
		})
	}

	return totals, nil
}

// =============================================================================
// Daily Rows and Export
// =============================================================================

// ListDaily retrieves rolled-up per-day usage rows for a universe.
func (s *usageService) ListDaily(ctx context.Context, universeID uuid.UUID, from, to time.Time) ([]domain.UsageDaily, error) {
	const op = "usage.list_daily"

	from, to, err := normalizeWindow(op, from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.queries.ListUsageDailyByUniverse(ctx, repository.ListUsageDailyByUniverseParams{
		UniverseID: universeID,
		StartDay:   from,
		EndDay:     to,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list daily usage")
	}

	daily := make([]domain.UsageDaily, 0, len(rows))
	for _, row := range rows {
		daily = append(daily, domain.UsageDaily{
			UniverseID:   row.UniverseID,
			BotID:        row.BotID,
			BotName:      row.BotName,
			Provider:     domain.AIProvider(row.Provider),
			Model:        row.Model,
			Day:          row.Day,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			CostCents:    row.CostCents,
		})
	}

	return daily, nil
}

// ExportDailyCSV writes rolled-up per-day usage rows for a universe as CSV.
func (s *usageService) ExportDailyCSV(ctx context.Context, w io.Writer, universeID uuid.UUID, from, to time.Time) error {
	const op = "usage.export_csv"

	daily, err := s.ListDaily(ctx, universeID, from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"day", "bot_id", "bot_name", "provider", "model", "input_tokens", "output_tokens", "cost_usd"}
	if err := cw.Write(header); err != nil {
		return domain.Internal(err, op, "failed to write CSV header")
	}
	for _, row := range daily {
		record := []string{
			row.Day.Format("2006-01-02"),
			row.BotID.String(),
			row.BotName,
			row.Provider.String(),
			row.Model,
			strconv.FormatInt(row.InputTokens, 10),
			strconv.FormatInt(row.OutputTokens, 10),
			centsToUSD(row.CostCents),
		}
		if err := cw.Write(record); err != nil {
			return domain.Internal(err, op, "failed to write CSV row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return domain.Internal(err, op, "failed to flush CSV")
	}

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// normalizeWindow applies the default trailing window and rejects inverted
// bounds.
func normalizeWindow(op string, from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultUsageWindow)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, domain.Invalid(op, "window start must be before its end")
	}
	return from, to, nil
}

// centsToUSD renders integer cents as a dollar string, e.g. 1234 -> "12.34".
func centsToUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// mergeMetadataFlag sets a boolean key on a metadata document, creating the
// document when absent.
func mergeMetadataFlag(metadata json.RawMessage, key string, value bool) (json.RawMessage, error) {
	doc := map[string]interface{}{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc); err != nil {
			return nil, err
		}
	}
	doc[key] = value
	return json.Marshal(doc)
}

// rowToUsageRecord converts a repository.UsageRecord to a domain.UsageRecord.
func rowToUsageRecord(row repository.UsageRecord) *domain.UsageRecord {
	return &domain.UsageRecord{
		ID:           row.ID,
		BotID:        row.BotID,
		UniverseID:   row.UniverseID,
		Provider:     domain.AIProvider(row.Provider),
		Model:        row.Model,
		InputTokens:  row.InputTokens,
		OutputTokens: row.OutputTokens,
		CostCents:    row.CostCents,
		Metadata:     domain.NullRawMessageValue(row.Metadata),
		RecordedAt:   row.RecordedAt,
	}
}
