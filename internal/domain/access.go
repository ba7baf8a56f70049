package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomAccess records one user entering a room. Reported by the game server
// at the moment of entry; the admission decision travels back in the same
// API call.
type RoomAccess struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	UserID     *uuid.UUID // Nil when the visitor has never logged in here
	UserUUID   string
	AccessedAt time.Time
}

// RecordAccessParams contains parameters for recording a room access.
type RecordAccessParams struct {
	RoomID   uuid.UUID
	UserUUID string
}

// Validate checks access recording parameters.
func (p RecordAccessParams) Validate() error {
	const op = "access.validate"

	if p.RoomID == uuid.Nil {
		return Invalid(op, "room ID is required")
	}
	if p.UserUUID == "" {
		return Invalid(op, "user UUID is required")
	}
	return nil
}

// AccessDecision is the admission answer returned to the game server.
type AccessDecision struct {
	Granted  bool     `json:"granted"`
	UserUUID string   `json:"userUuid"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Tags     []string `json:"tags"`
	Reason   string   `json:"reason,omitempty"` // Set when Granted is false
}

// RoomAccessDaily is one day's aggregate for a room, maintained by the
// rollup job.
type RoomAccessDaily struct {
	RoomID      uuid.UUID
	RoomName    string
	WorldID     uuid.UUID
	Day         time.Time
	AccessCount int64
	UniqueUsers int64
}
