// Package memory provides an in-memory annotation cache for a single
// documentation build. Reads may happen concurrently with writes for
// different keys; the zero value is not usable, use New.
package memory

import (
	"context"
	"sync"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.AnnotationCache = (*Cache)(nil)

// Cache is a mutex-guarded map from cache key to annotation set.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]domain.RawAnnotation
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{entries: make(map[string][]domain.RawAnnotation)}
}

// Get returns the cached annotations for key.
func (c *Cache) Get(_ context.Context, key string) ([]domain.RawAnnotation, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	// Return a copy so callers can't mutate the cached set.
	out := make([]domain.RawAnnotation, len(entry))
	copy(out, entry)
	return out, true, nil
}

// Put stores annotations under key. Storing an empty set is valid: it
// records that the analyzer reported nothing for this text.
func (c *Cache) Put(_ context.Context, key string, annotations []domain.RawAnnotation) error {
	stored := make([]domain.RawAnnotation, len(annotations))
	copy(stored, annotations)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stored
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases resources.
func (c *Cache) Close() error {
	return nil
}
