package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Store errors. Everything except ErrNotFound is treated by the fallback
// wrapper as a backend failure.
var (
	// ErrNotFound is returned when no live session exists for an identifier.
	// Expired records are reported as not found, never as expired.
	ErrNotFound = errors.New("session not found")
)

// CreateParams carries the session fields supplied at login. Timestamps are
// computed by the store.
type CreateParams struct {
	UserID string
	UUID   string
	Email  string
	Name   string
	Tags   []string
}

// Store persists session records.
//
// Implementations are selected at startup and injected; there is no package
// level store. All three operations take the request context so callers
// keep control of timeouts.
type Store interface {
	// Create generates an identifier, stamps the record, and persists it
	// with a TTL matching its lifetime. Returns the identifier and the
	// stored record.
	Create(ctx context.Context, params CreateParams) (string, Data, error)

	// Get returns the record for id. A record past its expiry is deleted
	// and reported as ErrNotFound.
	Get(ctx context.Context, id string) (Data, error)

	// Delete removes the record for id. Deleting an absent record is not
	// an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store (clients, sweeper
	// goroutines). The store must not be used afterwards.
	Close() error
}

// sessionIDBytes is the entropy of a session identifier. 32 bytes = 256
// bits, hex-encoded to 64 characters.
const sessionIDBytes = 32

// newSessionID generates a cryptographically random session identifier.
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newRecord stamps a fresh record from create params. The lifetime is a
// parameter so tests can mint sessions that expire almost immediately.
func newRecord(params CreateParams, now time.Time, lifetime time.Duration) Data {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}
	return Data{
		UserID:    params.UserID,
		UUID:      params.UUID,
		Email:     params.Email,
		Name:      params.Name,
		Tags:      tags,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(lifetime).UnixMilli(),
	}
}
