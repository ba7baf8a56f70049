// Package mapstorage provides the client for the external map-storage
// service that hosts WAM map descriptors for every room.
//
// This package defines a Client interface with implementations for:
// - HTTP (resty client against the map-storage REST API)
// - Nop (development and tests without a map-storage deployment)
package mapstorage

import (
	"context"
	"errors"
	"strings"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Client defines the interface for map-storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Client interface {
	// UploadWAM writes a WAM descriptor at the given path, replacing any
	// existing descriptor.
	// Parameters:
	// - path: Storage path, e.g. "universe/world/room.wam"
	// - wam: Raw WAM descriptor bytes (JSON)
	UploadWAM(ctx context.Context, path string, wam []byte) error

	// CopyWAM copies the descriptor at src to dst. Used to seed a room's
	// map from a template.
	// Returns ErrNotFound if src does not exist.
	CopyWAM(ctx context.Context, src, dst string) error

	// DeleteWAM removes the descriptor at the given path. Deleting a
	// missing descriptor is not an error.
	DeleteWAM(ctx context.Context, path string) error

	// Ping checks that the map-storage service is reachable and the
	// credentials are accepted.
	Ping(ctx context.Context) error
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNotFound is returned when a descriptor does not exist.
	ErrNotFound = errors.New("map descriptor not found")

	// ErrUnauthorized is returned when map-storage rejects the credentials.
	ErrUnauthorized = errors.New("map-storage rejected credentials")

	// ErrInvalidPath is returned for empty paths or path traversal attempts.
	ErrInvalidPath = errors.New("invalid map path")
)

// validatePath checks a WAM path before it is sent to map-storage.
func validatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return ErrInvalidPath
	}
	return nil
}
