package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-oracle rate limiting. Fan-out within a run stays
// fully concurrent; the limiter only throttles how fast calls reach each
// vendor across runs.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 2
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given oracle
func (l *Limiter) Wait(ctx context.Context, oracleID string) error {
	return l.getLimiter(oracleID).Wait(ctx)
}

// Allow checks if a call is allowed without waiting
func (l *Limiter) Allow(oracleID string) bool {
	return l.getLimiter(oracleID).Allow()
}

// getLimiter returns the rate limiter for an oracle
func (l *Limiter) getLimiter(oracleID string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[oracleID]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[oracleID]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[oracleID] = limiter

	return limiter
}

// SetOracleRate sets a custom rate limit for a specific oracle
func (l *Limiter) SetOracleRate(oracleID string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[oracleID] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
