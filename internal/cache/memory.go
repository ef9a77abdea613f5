package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds oracle replies in process memory. Replies survive
// across runs within one batch invocation but not across processes.
type MemoryCache struct {
	replies *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		replies: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached raw reply for a call, if present and fresh
func (c *MemoryCache) Get(key string) (string, bool) {
	if val, found := c.replies.Get(key); found {
		return val.(string), true
	}
	return "", false
}

// Set stores one raw reply with the given TTL
func (c *MemoryCache) Set(key string, rawReply string, ttl time.Duration) error {
	c.replies.Set(key, rawReply, ttl)
	return nil
}

// Delete evicts one entry
func (c *MemoryCache) Delete(key string) error {
	c.replies.Delete(key)
	return nil
}

// Clear evicts everything
func (c *MemoryCache) Clear() error {
	c.replies.Flush()
	return nil
}
