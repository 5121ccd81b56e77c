package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryObject is one object held by MemoryObjectStorage
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps uploads in memory. publish --dry-run uses it to
// report what would be uploaded without touching a bucket.
type MemoryObjectStorage struct {
	mu      sync.Mutex
	objects map[string]MemoryObject
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]MemoryObject)}
}

// EnsureBucket always succeeds
func (s *MemoryObjectStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

// Upload records the object
func (s *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = MemoryObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Get returns a stored object
func (s *MemoryObjectStorage) Get(storageKey string) (MemoryObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[storageKey]
	return obj, ok
}

// Keys returns the stored keys, sorted
func (s *MemoryObjectStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
