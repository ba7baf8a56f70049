// Package domain contains core business types and interfaces.
//
// This file defines the Bot domain type. Bots are AI-driven characters that
// run outside this service; they authenticate to the API with a service
// token and report their provider usage for accounting.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AIProvider identifies which vendor a bot talks to.
type AIProvider string

const (
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOpenAI    AIProvider = "openai"
)

// String returns the string representation of the provider.
func (p AIProvider) String() string {
	return string(p)
}

// IsValid returns true if the provider is a recognized value.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAnthropic, AIProviderOpenAI:
		return true
	}
	return false
}

// Bot represents an AI character configured for a world.
//
// The service token is generated once at creation (or rotation) and handed
// to the caller a single time; only its SHA-256 hash is stored. TokenPrefix
// keeps the first characters of the raw token so dashboards can tell tokens
// apart without storing them.
type Bot struct {
	ID           uuid.UUID
	WorldID      uuid.UUID
	Name         string
	Provider     AIProvider
	Model        string
	SystemPrompt string
	Config       json.RawMessage
	TokenHash    string // Never expose this in API responses
	TokenPrefix  string
	Active       bool
	UniverseID   uuid.UUID // Joined from the owning world, populated on token lookup
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateBotParams contains parameters for creating a bot.
type CreateBotParams struct {
	WorldID      uuid.UUID
	Name         string
	Provider     AIProvider
	Model        string
	SystemPrompt string
	Config       json.RawMessage
}

// UpdateBotParams contains parameters for updating a bot.
// Nil pointer fields are left unchanged.
type UpdateBotParams struct {
	ID           uuid.UUID
	Name         *string
	Model        *string
	SystemPrompt *string
	Config       json.RawMessage
	Active       *bool
}

// Validate checks bot creation parameters.
func (p CreateBotParams) Validate() error {
	const op = "bot.validate"

	if p.WorldID == uuid.Nil {
		return Invalid(op, "world ID is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Invalid(op, "name is required")
	}
	if len(name) > 255 {
		return Invalid(op, "name must be 255 characters or less")
	}
	if !p.Provider.IsValid() {
		return Invalid(op, "provider must be one of anthropic, openai")
	}
	if strings.TrimSpace(p.Model) == "" {
		return Invalid(op, "model is required")
	}
	if len(p.SystemPrompt) > 32*1024 {
		return TooLarge(op, "system prompt exceeds 32KB")
	}
	return validateProperties(op, p.Config)
}

// Validate checks bot update parameters. Nil fields are skipped.
func (p UpdateBotParams) Validate() error {
	const op = "bot.validate"

	if p.ID == uuid.Nil {
		return Invalid(op, "bot ID is required")
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Invalid(op, "name must not be empty")
		}
		if len(name) > 255 {
			return Invalid(op, "name must be 255 characters or less")
		}
	}
	if p.Model != nil && strings.TrimSpace(*p.Model) == "" {
		return Invalid(op, "model must not be empty")
	}
	if p.SystemPrompt != nil && len(*p.SystemPrompt) > 32*1024 {
		return TooLarge(op, "system prompt exceeds 32KB")
	}
	return validateProperties(op, p.Config)
}

// BotCredentials pairs a bot with its raw service token. Returned exactly
// once from create and rotate operations.
type BotCredentials struct {
	Bot   *Bot
	Token string // Raw service token, never stored
}
