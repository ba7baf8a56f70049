// Package domain contains core business types and interfaces.
//
// This file defines the World domain type. A world groups the rooms of a
// universe and carries the preview artwork shown in the dashboard.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// World represents a named space inside a universe, containing rooms.
type World struct {
	ID          uuid.UUID
	UniverseID  uuid.UUID
	Name        string
	Slug        string
	Description string
	Tags        []string
	PreviewKey  string // Object storage key of the preview image, empty if none
	Properties  json.RawMessage
	Active      bool
	RoomCount   int64 // Joined aggregate, populated on list queries
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPreview returns true if a preview image has been uploaded.
func (w *World) HasPreview() bool {
	return w.PreviewKey != ""
}

// PreviewThumbKey returns the storage key of the preview thumbnail.
func (w *World) PreviewThumbKey() string {
	if w.PreviewKey == "" {
		return ""
	}
	return strings.TrimSuffix(w.PreviewKey, ".jpg") + "_thumb.jpg"
}

// CreateWorldParams contains parameters for creating a world.
type CreateWorldParams struct {
	UniverseID  uuid.UUID
	Name        string
	Slug        string // Optional; derived from Name when empty
	Description string
	Tags        []string
	Properties  json.RawMessage
}

// UpdateWorldParams contains parameters for updating a world.
// Nil pointer fields are left unchanged.
type UpdateWorldParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Tags        []string // Nil leaves tags unchanged; empty slice clears them
	Properties  json.RawMessage
	Active      *bool
}

// Validate checks world creation parameters.
func (p CreateWorldParams) Validate() error {
	const op = "world.validate"

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
	if p.Slug != "" && !ValidSlug(p.Slug) {
		return Invalid(op, "slug may only contain lowercase letters, digits, and hyphens")
	}
	if err := ValidateTags(p.Tags); err != nil {
		return err
	}
	return validateProperties(op, p.Properties)
}

// Validate checks world update parameters. Nil fields are skipped.
func (p UpdateWorldParams) Validate() error {
	const op = "world.validate"

	if p.ID == uuid.Nil {
		return Invalid(op, "world ID is required")
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
	if p.Tags != nil {
		if err := ValidateTags(p.Tags); err != nil {
			return err
		}
	}
	return validateProperties(op, p.Properties)
}

// ValidateTags checks a tag list shared by worlds, rooms, and users.
// Tags gate room entry on the game side, so they are kept short and plain.
func ValidateTags(tags []string) error {
	const op = "tags.validate"

	if len(tags) > 32 {
		return Invalid(op, "at most 32 tags are allowed")
	}
	for _, tag := range tags {
		if tag == "" {
			return Invalid(op, "tags must not be empty")
		}
		if len(tag) > 64 {
			return Invalid(op, "tags must be 64 characters or less")
		}
		if strings.ContainsAny(tag, " ,\t\n") {
			return Invalid(op, "tags must not contain spaces or commas")
		}
	}
	return nil
}

// validateProperties checks that a properties payload, when present, is a
// JSON object within the size cap.
func validateProperties(op string, props json.RawMessage) error {
	if len(props) == 0 {
		return nil
	}
	if len(props) > MaxPropertiesSize {
		return TooLarge(op, "properties payload exceeds 64KB")
	}
	trimmed := strings.TrimSpace(string(props))
	if !strings.HasPrefix(trimmed, "{") {
		return Invalid(op, "properties must be a JSON object")
	}
	if !json.Valid(props) {
		return Invalid(op, "properties is not valid JSON")
	}
	return nil
}

// MaxPropertiesSize caps the free-form properties JSON carried by worlds,
// rooms, templates, and bots (64KB).
const MaxPropertiesSize = 64 * 1024

// Preview image pipeline constants. Uploads are decoded, fitted, and
// re-encoded as JPEG; the thumbnail is half the preview's box.
const (
	MaxPreviewUploadSize = 10 * 1024 * 1024 // 10MB upload cap

	PreviewMaxWidth  = 1280
	PreviewMaxHeight = 720

	PreviewThumbWidth  = 640
	PreviewThumbHeight = 360

	PreviewJPEGQuality = 85
)
