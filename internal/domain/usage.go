// Package domain contains core business types and interfaces.
//
// This file defines AI usage accounting types. Bots report raw token counts;
// the server prices them and keeps the ledger.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one priced usage report from a bot.
type UsageRecord struct {
	ID           uuid.UUID
	BotID        uuid.UUID
	UniverseID   uuid.UUID
	Provider     AIProvider
	Model        string
	InputTokens  int64
	OutputTokens int64
	CostCents    int64
	Metadata     json.RawMessage
	RecordedAt   time.Time
}

// ReportUsageParams contains a bot's raw usage report. Provider, bot, and
// universe are derived from the authenticated service token, never from the
// request body.
type ReportUsageParams struct {
	BotID        uuid.UUID
	UniverseID   uuid.UUID
	Provider     AIProvider
	Model        string
	InputTokens  int64
	OutputTokens int64
	Metadata     json.RawMessage
}

// Validate checks a usage report.
func (p ReportUsageParams) Validate() error {
	const op = "usage.validate"

	if p.BotID == uuid.Nil {
		return Invalid(op, "bot ID is required")
	}
	if p.Model == "" {
		return Invalid(op, "model is required")
	}
	if p.InputTokens < 0 || p.OutputTokens < 0 {
		return Invalid(op, "token counts must not be negative")
	}
	if p.InputTokens == 0 && p.OutputTokens == 0 {
		return Invalid(op, "at least one token count must be positive")
	}
	return validateProperties(op, p.Metadata)
}

// UsageTotals aggregates usage over a query window.
type UsageTotals struct {
	UniverseID   uuid.UUID
	From         time.Time
	To           time.Time
	InputTokens  int64
	OutputTokens int64
	CostCents    int64
	ByBot        []BotUsage
}

// BotUsage is the per-bot, per-model slice of a usage aggregate.
type BotUsage struct {
	BotID        uuid.UUID
	BotName      string
	Provider     AIProvider
	Model        string
	InputTokens  int64
	OutputTokens int64
	CostCents    int64
}

// UsageDaily is one day's priced aggregate for a bot and model, maintained by
// the nightly rollup job and served by the CSV export.
type UsageDaily struct {
	UniverseID   uuid.UUID
	BotID        uuid.UUID
	BotName      string
	Provider     AIProvider
	Model        string
	Day          time.Time
	InputTokens  int64
	OutputTokens int64
	CostCents    int64
}
