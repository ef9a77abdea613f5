// Package store persists accepted facts. The verifier treats every write as
// an independent keyed upsert: re-running a verification re-derives and
// re-writes the same facts, so partial persistence is recoverable by retry.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/verifact/verifact/internal/model"
)

// Store is the fact store capability interface
type Store interface {
	// UpsertFact writes one accepted fact, keyed by (subject, fact key).
	// Later runs overwrite earlier generations of the same fact.
	UpsertFact(ctx context.Context, fact model.AcceptedFact) error

	// Facts returns a subject's facts with confidence >= minConfidence,
	// ordered by descending confidence, capped at limit (0 = no cap).
	Facts(ctx context.Context, subjectID string, minConfidence float64, limit int) ([]model.AcceptedFact, error)

	// Prune deletes facts below minConfidence or with unverified status,
	// returning the number deleted. Idempotent.
	Prune(ctx context.Context, minConfidence float64) (int64, error)

	// Count returns the total number of stored facts
	Count(ctx context.Context) (int64, error)

	// Close releases backend resources
	Close() error
}

// New creates a fact store from configuration
func New(cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil

	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN)

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, postgres)", cfg.Backend)
	}
}
