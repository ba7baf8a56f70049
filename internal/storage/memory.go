package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// MemoryStorage Implementation
// =============================================================================

// MemoryStorage implements the Storage interface with an in-process map.
// It exists for tests and local development without an object store.
// Safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
	}
}

// =============================================================================
// Interface Implementation
// =============================================================================

// Put stores data at the specified key.
func (s *MemoryStorage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	if err := validateMemoryKey(key); err != nil {
		return &StorageError{Op: "Put", Key: key, Err: err}
	}

	var reader io.Reader = data
	if opts.MaxSize > 0 {
		reader = io.LimitReader(data, opts.MaxSize+1)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return &StorageError{Op: "Put", Key: key, Err: fmt.Errorf("failed to read payload: %w", err)}
	}
	if opts.MaxSize > 0 && int64(len(buf)) > opts.MaxSize {
		return &StorageError{Op: "Put", Key: key, Err: ErrTooLarge}
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = DetectContentType("", key, bytes.NewReader(buf))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; exists && !opts.Overwrite {
		return &StorageError{Op: "Put", Key: key, Err: ErrKeyExists}
	}

	s.objects[key] = memoryObject{
		data: buf,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(buf)),
			ContentType:  contentType,
			LastModified: time.Now(),
		},
	}

	return nil
}

// Get retrieves the data at the specified key.
func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateMemoryKey(key); err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: ErrNotFound}
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

// Delete removes the object at the specified key. Idempotent.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := validateMemoryKey(key); err != nil {
		return &StorageError{Op: "Delete", Key: key, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

// URL returns a synthetic URL for the object. The object does not need
// to exist; keys are addressable before upload, matching S3 semantics.
func (s *MemoryStorage) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if err := validateMemoryKey(key); err != nil {
		return "", &StorageError{Op: "URL", Key: key, Err: err}
	}

	return fmt.Sprintf("memory://%s", key), nil
}

// Exists checks if an object exists at the specified key.
func (s *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateMemoryKey(key); err != nil {
		return false, &StorageError{Op: "Exists", Key: key, Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.objects[key]
	return exists, nil
}

// Len reports how many objects are stored. Intended for test assertions.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}

// =============================================================================
// Internal Helpers
// =============================================================================

func validateMemoryKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
