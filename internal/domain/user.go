// Package domain contains core business types and interfaces.
//
// This file defines the User domain type. Users are provisioned from OIDC
// claims at login rather than registered locally; the external subject
// identifier (UUID) is the stable key.
package domain

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// User represents a person known to the platform.
//
// This is the domain representation of a user, designed for use in business
// logic. It differs from repository.User in that it uses plain Go types
// instead of sql.Null* types and provides helper methods.
type User struct {
	ID          uuid.UUID
	UUID        string // OIDC subject identifier, stable across logins
	Email       string // Empty when the provider withheld it
	Name        string
	Tags        []string
	SuperAdmin  bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName returns the user's name, falling back to email, then UUID.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.UUID
}

// HasTag reports whether the user carries the given tag.
func (u *User) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// UpsertUserParams contains the identity claims applied at login.
// The user row is created on first login and refreshed on every subsequent
// one; Tags are merged server-side, not overwritten, so dashboard-assigned
// tags survive provider logins that omit them.
type UpsertUserParams struct {
	UUID  string // Required: OIDC subject
	Email string
	Name  string
	Tags  []string
}

// Validate checks upsert parameters.
func (p UpsertUserParams) Validate() error {
	const op = "user.validate"

	if p.UUID == "" {
		return Invalid(op, "subject identifier is required")
	}
	if len(p.UUID) > 255 {
		return Invalid(op, "subject identifier must be 255 characters or less")
	}
	if p.Email != "" && !ValidEmail(p.Email) {
		return Invalid(op, "email is not a valid address")
	}
	return ValidateTags(p.Tags)
}

// ListUsersParams contains pagination parameters for listing users.
type ListUsersParams struct {
	Limit  int32
	Offset int32
}

// ListUsersResult contains a page of users with the overall total.
type ListUsersResult struct {
	Users  []User
	Total  int64
	Limit  int32
	Offset int32
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// ToNullString converts a string to sql.NullString, treating empty as NULL.
func ToNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ToNullTime converts a time pointer to sql.NullTime.
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ToNullUUID converts a uuid pointer to uuid.NullUUID.
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// NullUUIDValue safely extracts a uuid pointer from uuid.NullUUID.
func NullUUIDValue(nu uuid.NullUUID) *uuid.UUID {
	if nu.Valid {
		id := nu.UUID
		return &id
	}
	return nil
}

// ToNullRawMessage converts a raw JSON document to pqtype.NullRawMessage,
// treating nil as NULL.
func ToNullRawMessage(m json.RawMessage) pqtype.NullRawMessage {
	if len(m) == 0 {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: m, Valid: true}
}

// NullRawMessageValue safely extracts a raw JSON document from
// pqtype.NullRawMessage.
func NullRawMessageValue(n pqtype.NullRawMessage) json.RawMessage {
	if n.Valid {
		return n.RawMessage
	}
	return nil
}
