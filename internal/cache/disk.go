package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists oracle replies between processes, useful when
// iterating on quorum policy without re-spending API calls.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type replyEntry struct {
	RawReply  string    `json:"raw_reply"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the cached raw reply for a call, if present and fresh.
// Expired and unreadable entries read as misses; stale files are removed
// on the way out.
func (c *DiskCache) Get(key string) (string, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var entry replyEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return "", false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return "", false
	}

	return entry.RawReply, true
}

// Set stores one raw reply with the given TTL (0 means the cache default)
func (c *DiskCache) Set(key string, rawReply string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	entry := replyEntry{
		RawReply:  rawReply,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete evicts one entry
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear evicts everything
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// path maps a key to its file. The key prefix carries colons, which some
// filesystems reject, so filenames keep only the hex digest.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.TrimPrefix(key, keyPrefix)+".json")
}
