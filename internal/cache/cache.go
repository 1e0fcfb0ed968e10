package cache

import (
	"strings"
	"sync"
	"time"
)

// Rendered holds one rendered dashboard response.
type Rendered struct {
	ContentType string
	Body        []byte
}

// entry wraps a rendered response with expiry and insertion order tracking.
type entry struct {
	out       *Rendered
	expiry    time.Time
	insertIdx int64
}

// RenderCache keeps recently rendered pages and API payloads so repeated
// requests against an unchanged snapshot skip the render pass.
// Keys are "kind:variant", e.g. "page:holdings" or "chart:valueChart".
// A zero TTL disables caching. Safe for concurrent use.
type RenderCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a RenderCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *RenderCache {
	return &RenderCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// MakeKey builds a cache key from a response kind and its variant.
func MakeKey(kind, variant string) string {
	return kind + ":" + variant
}

// Enabled reports whether entries are retained at all.
func (c *RenderCache) Enabled() bool {
	return c != nil && c.ttl > 0 && c.maxEntries > 0
}

// Get returns a rendered response if found and not expired.
func (c *RenderCache) Get(key string) (*Rendered, bool) {
	if !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.out, true
}

// Set stores a rendered response. Evicts the oldest entry if at capacity.
func (c *RenderCache) Set(key string, out *Rendered) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		out:       out,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// GetOrRender returns the cached response for key, or calls render and caches
// its result. Render errors are returned and nothing is stored.
func (c *RenderCache) GetOrRender(key string, render func() (*Rendered, error)) (*Rendered, error) {
	if out, ok := c.Get(key); ok {
		return out, nil
	}
	out, err := render()
	if err != nil {
		return nil, err
	}
	c.Set(key, out)
	return out, nil
}

// InvalidateKind removes every entry of the given kind.
func (c *RenderCache) InvalidateKind(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, kind+":") {
			delete(c.items, key)
		}
	}
}

// Clear drops every entry.
func (c *RenderCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *RenderCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *RenderCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
