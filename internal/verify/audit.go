package verify

import (
	"context"
	"fmt"
)

// AuditResult reports what a prune pass did
type AuditResult struct {
	Pruned    int64 `json:"pruned"`
	Remaining int64 `json:"remaining"`
}

// AuditPrune re-applies the current acceptance policy retroactively:
// previously accepted facts below the audit confidence floor, or persisted
// as unverified, are deleted. Quorum policy changes over the system's life;
// this keeps old generations honest. Idempotent - a second pass with no
// intervening writes deletes nothing.
func (v *Verifier) AuditPrune(ctx context.Context) (*AuditResult, error) {
	pruned, err := v.store.Prune(ctx, v.cfg.Audit.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}

	remaining, err := v.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	return &AuditResult{Pruned: pruned, Remaining: remaining}, nil
}
