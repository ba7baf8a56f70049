// Package domain contains core business types and interfaces.
//
// This file defines the Room domain type. Rooms are the leaf spaces users
// actually enter; each one points at a WAM map artifact held by the external
// map-storage service.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room represents an enterable space inside a world.
type Room struct {
	ID           uuid.UUID
	WorldID      uuid.UUID
	Name         string
	Slug         string
	WamPath      string // Path of the map artifact in the map-storage service
	TemplateID   *uuid.UUID
	MaxOccupancy int32 // 0 means unlimited
	Tags         []string
	Properties   json.RawMessage
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Restricted returns true if entry requires at least one matching tag.
func (r *Room) Restricted() bool {
	return len(r.Tags) > 0
}

// AdmitsTags reports whether a visitor carrying the given tags may enter.
// Unrestricted rooms admit everyone; restricted rooms require an overlap.
func (r *Room) AdmitsTags(tags []string) bool {
	if !r.Restricted() {
		return true
	}
	for _, want := range r.Tags {
		for _, have := range tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// CreateRoomParams contains parameters for creating a room.
type CreateRoomParams struct {
	WorldID      uuid.UUID
	Name         string
	Slug         string // Optional; derived from Name when empty
	WamPath      string // Required unless TemplateID seeds it
	TemplateID   *uuid.UUID
	MaxOccupancy int32
	Tags         []string
	Properties   json.RawMessage
}

// UpdateRoomParams contains parameters for updating a room.
// Nil pointer fields are left unchanged.
type UpdateRoomParams struct {
	ID           uuid.UUID
	Name         *string
	WamPath      *string
	MaxOccupancy *int32
	Tags         []string // Nil leaves tags unchanged; empty slice clears them
	Properties   json.RawMessage
	Active       *bool
}

// Validate checks room creation parameters.
func (p CreateRoomParams) Validate() error {
	const op = "room.validate"

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
	if p.Slug != "" && !ValidSlug(p.Slug) {
		return Invalid(op, "slug may only contain lowercase letters, digits, and hyphens")
	}
	if p.WamPath == "" && p.TemplateID == nil {
		return Invalid(op, "either a WAM path or a template is required")
	}
	if p.WamPath != "" && !ValidWamPath(p.WamPath) {
		return Invalid(op, "WAM path must be a relative .wam path without traversal")
	}
	if p.MaxOccupancy < 0 {
		return Invalid(op, "max occupancy must not be negative")
	}
	if err := ValidateTags(p.Tags); err != nil {
		return err
	}
	return validateProperties(op, p.Properties)
}

// Validate checks room update parameters. Nil fields are skipped.
func (p UpdateRoomParams) Validate() error {
	const op = "room.validate"

	if p.ID == uuid.Nil {
		return Invalid(op, "room ID is required")
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
	if p.WamPath != nil && !ValidWamPath(*p.WamPath) {
		return Invalid(op, "WAM path must be a relative .wam path without traversal")
	}
	if p.MaxOccupancy != nil && *p.MaxOccupancy < 0 {
		return Invalid(op, "max occupancy must not be negative")
	}
	if p.Tags != nil {
		if err := ValidateTags(p.Tags); err != nil {
			return err
		}
	}
	return validateProperties(op, p.Properties)
}

// ValidWamPath reports whether p is an acceptable map artifact path:
// relative, ending in .wam, with no traversal or backslash segments.
func ValidWamPath(p string) bool {
	if p == "" || len(p) > 512 {
		return false
	}
	if !strings.HasSuffix(p, ".wam") {
		return false
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
