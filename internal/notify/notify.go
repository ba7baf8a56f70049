// Package notify delivers operational notifications to universe operators.
//
// This package defines a Notifier interface with implementations for:
// - Discord (webhook embeds)
// - Nop (no webhook configured)
package notify

import (
	"context"
	"time"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Notifier defines the interface for operator notifications.
//
// The webhookURL parameter is the per-universe webhook; when empty the
// implementation falls back to its configured default, and when neither is
// set the call is a no-op.
type Notifier interface {
	// NotifyRoomAccess announces a room access decision.
	NotifyRoomAccess(ctx context.Context, webhookURL string, ev RoomAccessEvent) error

	// NotifyMemberJoined announces a new universe membership.
	NotifyMemberJoined(ctx context.Context, webhookURL string, ev MemberEvent) error
}

// =============================================================================
// Event Types
// =============================================================================

// RoomAccessEvent describes a user entering (or being refused from) a room.
type RoomAccessEvent struct {
	UniverseName string
	WorldName    string
	RoomName     string
	UserName     string // Display name if known, otherwise the UUID
	UserUUID     string
	Granted      bool
	At           time.Time
}

// MemberEvent describes a membership change in a universe.
type MemberEvent struct {
	UniverseName string
	Email        string
	Role         string
	At           time.Time
}
