package engine

import "sync"

// Cache is the process-wide store of compiled component definitions, keyed
// by component identity. It is read-mostly: concurrent lookups share a read
// lock, and a population race between two renders compiling the same
// component resolves safely because entries are immutable once stored.
//
// The cache is an explicit dependency of the engine rather than a package
// global so tests can isolate cache state per run.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Compiled
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Compiled)}
}

// Get returns the cached entry for key, if any.
func (c *Cache) Get(key string) (*Compiled, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// GetOrCompile returns the cached entry for key, calling compile to populate
// the cache on a miss. compile runs outside the lock, so two concurrent
// misses may both compile; the first stored immutable entry wins and the
// loser's result is discarded.
func (c *Cache) GetOrCompile(key string, compile func() (*Compiled, error)) (*Compiled, error) {
	if e, ok := c.Get(key); ok {
		return e, nil
	}

	e, err := compile()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = e
	return e, nil
}

// Invalidate drops one entry. The host loader calls this on its reload
// signal; invalidation is never automatic.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Compiled)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
