// Package cache memoizes raw oracle replies so repeated verifications of
// the same subject don't re-spend API calls. Entries are keyed by the full
// call identity (oracle + prompt pair), so any change to the prompt
// contract invalidates old replies naturally.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw oracle reply text under opaque call-identity keys
type Cache interface {
	// Get returns the cached raw reply for a call, if present and fresh
	Get(key string) (string, bool)

	// Set stores one raw reply with the given TTL
	Set(key string, rawReply string, ttl time.Duration) error

	// Delete evicts one entry
	Delete(key string) error

	// Clear evicts everything
	Clear() error
}

// keyPrefix versions the key space; bumping it invalidates every entry
const keyPrefix = "verifact:v1:"

// Key derives the cache key for one oracle call. Identity is the oracle
// plus the exact prompt text.
func Key(callIdentity string) string {
	hash := sha256.Sum256([]byte(callIdentity))
	return keyPrefix + hex.EncodeToString(hash[:])
}
