// Package storage provides object storage abstraction for the Overseer
// application.
//
// This package defines a Storage interface with implementations for:
// - S3Storage: any S3-compatible object store (MinIO, R2, AWS) for production
// - MemoryStorage: in-process storage for tests
//
// The storage service holds world preview images and their thumbnails.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for object storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key with the given options.
	// Returns ErrKeyExists if the key is taken and overwrite is disabled.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object
	// metadata, and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for accessing the object at the specified key.
	// With a public base URL configured and expires 0, this is a permanent
	// URL; otherwise a presigned URL valid for the given duration.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it will be auto-detected from the key or content.
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	// If false and the key exists, ErrKeyExists is returned.
	Overwrite bool

	// Public determines if the object should be publicly accessible.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// S3Config holds configuration for an S3-compatible object store.
type S3Config struct {
	// Endpoint is the HTTP(S) endpoint of the store.
	// Example: "https://minio.internal:9000"
	Endpoint string

	// Region is the region string the SDK signs requests with.
	// Default: "auto"
	Region string

	// Bucket is the name of the bucket to use.
	Bucket string

	// AccessKeyID and SecretAccessKey are the store credentials.
	AccessKeyID     string
	SecretAccessKey string

	// PublicURL is the public URL prefix for the bucket (custom domain or
	// CDN). If empty, presigned URLs are used for all access.
	PublicURL string
}

// =============================================================================
// Key Generation Helpers
// =============================================================================

// WorldPreviewKey generates the storage key for a world's preview image.
// Format: universes/{universeID}/worlds/{worldID}/preview.jpg
func WorldPreviewKey(universeID, worldID uuid.UUID) string {
	return fmt.Sprintf("universes/%s/worlds/%s/preview.jpg", universeID, worldID)
}

// WorldPreviewThumbKey generates the storage key for a world's preview
// thumbnail. Format: universes/{universeID}/worlds/{worldID}/preview_thumb.jpg
func WorldPreviewThumbKey(universeID, worldID uuid.UUID) string {
	return fmt.Sprintf("universes/%s/worlds/%s/preview_thumb.jpg", universeID, worldID)
}
