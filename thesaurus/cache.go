package thesaurus

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// Store persists cached terms between runs.
type Store interface {
	Load(ctx context.Context) (map[string]CachedTerm, error)
	Save(ctx context.Context, terms map[string]CachedTerm) error
}

// Cache holds the term data of one run. It is loaded from a Store once,
// consulted and extended while records are mapped, and saved once at the end.
type Cache struct {
	mu    sync.RWMutex
	terms map[string]CachedTerm
	added int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{terms: make(map[string]CachedTerm)}
}

// LoadCache creates a cache filled from store.
func LoadCache(ctx context.Context, store Store) (*Cache, error) {
	terms, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load term cache: %w", err)
	}
	c := NewCache()
	for id, term := range terms {
		if term.ID == "" {
			term.ID = id
		}
		c.terms[id] = term
	}
	return c, nil
}

// Get returns the cached term for id.
func (c *Cache) Get(id string) (CachedTerm, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.terms[id]
	return t, ok
}

// Put adds or replaces a term.
func (c *Cache) Put(term CachedTerm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.terms[term.ID]; !ok {
		c.added++
	}
	c.terms[term.ID] = term
}

// Len returns the number of cached terms.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.terms)
}

// Added returns the number of terms added since the cache was created.
func (c *Cache) Added() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.added
}

// Snapshot returns a copy of all cached terms.
func (c *Cache) Snapshot() map[string]CachedTerm {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.terms)
}

// Save writes all cached terms to store.
func (c *Cache) Save(ctx context.Context, store Store) error {
	if err := store.Save(ctx, c.Snapshot()); err != nil {
		return fmt.Errorf("save term cache: %w", err)
	}
	return nil
}
