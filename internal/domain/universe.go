// Package domain contains core business types and interfaces.
//
// This file defines the Universe domain type, the top-level tenant of the
// platform. A universe owns worlds, room templates, and memberships.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Universe represents a platform tenant: an organization's collection of
// worlds, rooms, templates, members, and bots.
//
// This is the domain representation designed for business logic. It differs
// from repository.Universe in that it uses plain Go types instead of
// sql.Null* types and carries helper methods.
type Universe struct {
	ID                uuid.UUID
	Name              string
	Slug              string
	AdminEmail        string
	MapStorageURL     string
	OIDCIssuer        string
	DiscordWebhookURL string // Empty when the universe has no webhook configured
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NotifiesDiscord returns true if access events in this universe should be
// forwarded to a Discord webhook.
func (u *Universe) NotifiesDiscord() bool {
	return u.DiscordWebhookURL != ""
}

// CreateUniverseParams contains parameters for creating a universe.
type CreateUniverseParams struct {
	Name              string
	Slug              string // Optional; derived from Name when empty
	AdminEmail        string
	MapStorageURL     string
	OIDCIssuer        string
	DiscordWebhookURL string
}

// UpdateUniverseParams contains parameters for updating a universe.
// Nil pointer fields are left unchanged.
type UpdateUniverseParams struct {
	ID                uuid.UUID
	Name              *string
	AdminEmail        *string
	MapStorageURL     *string
	DiscordWebhookURL *string
	Active            *bool
}

// Validate checks universe creation parameters.
func (p CreateUniverseParams) Validate() error {
	const op = "universe.validate"

	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Invalid(op, "name is required")
	}
	if len(name) > 255 {
		return Invalid(op, "name must be 255 characters or less")
	}
	if p.AdminEmail != "" && !ValidEmail(p.AdminEmail) {
		return Invalid(op, "admin email is not a valid address")
	}
	if p.MapStorageURL != "" && !validHTTPURL(p.MapStorageURL) {
		return Invalid(op, "map storage URL must be an absolute http(s) URL")
	}
	if p.DiscordWebhookURL != "" && !validHTTPURL(p.DiscordWebhookURL) {
		return Invalid(op, "discord webhook URL must be an absolute http(s) URL")
	}
	if p.Slug != "" && !ValidSlug(p.Slug) {
		return Invalid(op, "slug may only contain lowercase letters, digits, and hyphens")
	}
	return nil
}

// PlatformCounts holds the headline numbers shown on the dashboard overview.
type PlatformCounts struct {
	Universes int64 `json:"universes"`
	Worlds    int64 `json:"worlds"`
	Rooms     int64 `json:"rooms"`
	Users     int64 `json:"users"`
	Bots      int64 `json:"bots"`
}

// validHTTPURL reports whether s parses as an absolute http or https URL.
func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidEmail performs a light-weight sanity check on an email address.
// Full RFC validation is deliberately avoided; the OIDC provider is the
// authority on addresses.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
