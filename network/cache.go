package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultTTL applies to responses that carry no freshness information.
const defaultTTL = 5 * time.Minute

// CacheEntry is a stored response with its freshness data.
type CacheEntry struct {
	Response  *Response
	StoredAt  time.Time
	MaxAge    time.Duration
	HasMaxAge bool
	Expires   time.Time
}

// Fresh reports whether the entry may be served without a network round trip.
func (e *CacheEntry) Fresh(now time.Time) bool {
	switch {
	case e.HasMaxAge:
		return now.Sub(e.StoredAt) < e.MaxAge
	case !e.Expires.IsZero():
		return now.Before(e.Expires)
	default:
		return now.Sub(e.StoredAt) < defaultTTL
	}
}

// Cache is a bounded in-memory response cache keyed by URL.
// It is shared between the engine's loader goroutines and the icon service.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	maxSize int
	now     func() time.Time
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &Cache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a fresh entry for key. Stale entries are dropped.
func (c *Cache) Get(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.Fresh(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e, true
}

// Put stores resp under key unless its headers forbid storing.
func (c *Cache) Put(key string, resp *Response) {
	var headers http.Header
	if resp.Headers != nil {
		headers = resp.Headers
	} else {
		headers = http.Header{}
	}

	directives := parseCacheControl(headers.Get("Cache-Control"))
	if _, ok := directives["no-store"]; ok {
		return
	}

	e := &CacheEntry{Response: resp, StoredAt: c.now()}
	if v, ok := directives["max-age"]; ok {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			e.MaxAge = time.Duration(secs) * time.Second
			e.HasMaxAge = true
		}
	}
	if !e.HasMaxAge {
		if exp := headers.Get("Expires"); exp != "" {
			if t, err := http.ParseTime(exp); err == nil {
				e.Expires = t
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = e
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// must be called with c.mu held.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.StoredAt.Before(oldest) {
			oldestKey, oldest = k, e.StoredAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// parseCacheControl maps lower-cased directive names to their values.
func parseCacheControl(value string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, _ := strings.Cut(part, "=")
		out[strings.ToLower(strings.TrimSpace(name))] = strings.Trim(strings.TrimSpace(val), `"`)
	}
	return out
}
