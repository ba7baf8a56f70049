package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoomTemplate is a blueprint for new rooms. Creating a room from a template
// copies the template's WAM artifact into the world's map-storage namespace
// and seeds the room's properties.
type RoomTemplate struct {
	ID            uuid.UUID
	UniverseID    uuid.UUID
	Name          string
	Description   string
	WamSourcePath string
	Properties    json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateRoomTemplateParams contains parameters for creating a room template.
type CreateRoomTemplateParams struct {
	UniverseID    uuid.UUID
	Name          string
	Description   string
	WamSourcePath string
	Properties    json.RawMessage
}

// Validate checks template creation parameters.
func (p CreateRoomTemplateParams) Validate() error {
	const op = "template.validate"

	if p.UniverseID == uuid.Nil {
		return Invalid(op, "universe ID is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Invalid(op, "name is required")
	}
	if len(name) > 255 {
		return Invalid(op, "name must be 255 characters or less")
	}
	if !ValidWamPath(p.WamSourcePath) {
		return Invalid(op, "WAM source path must be a relative .wam path without traversal")
	}
	return validateProperties(op, p.Properties)
}
