package store

import (
	"context"
	"sort"
	"sync"

	"github.com/verifact/verifact/internal/model"
)

// MemoryStore is an in-process fact store for tests and local runs
type MemoryStore struct {
	mu    sync.RWMutex
	facts map[string]map[string]model.AcceptedFact // subjectID -> fact key -> fact
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		facts: make(map[string]map[string]model.AcceptedFact),
	}
}

// UpsertFact writes one fact, replacing any previous generation
func (s *MemoryStore) UpsertFact(ctx context.Context, fact model.AcceptedFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.facts[fact.SubjectID]
	if !ok {
		subject = make(map[string]model.AcceptedFact)
		s.facts[fact.SubjectID] = subject
	}
	subject[fact.Key] = fact
	return nil
}

// Facts returns a subject's facts at or above minConfidence, highest first
func (s *MemoryStore) Facts(ctx context.Context, subjectID string, minConfidence float64, limit int) ([]model.AcceptedFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AcceptedFact
	for _, fact := range s.facts[subjectID] {
		if fact.Confidence >= minConfidence {
			out = append(out, fact)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Key < out[j].Key
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune applies the current acceptance policy retroactively
func (s *MemoryStore) Prune(ctx context.Context, minConfidence float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for subjectID, subject := range s.facts {
		for key, fact := range subject {
			if fact.Confidence < minConfidence || fact.Status == model.LevelUnverified {
				delete(subject, key)
				deleted++
			}
		}
		if len(subject) == 0 {
			delete(s.facts, subjectID)
		}
	}
	return deleted, nil
}

// Count returns the total number of stored facts
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, subject := range s.facts {
		n += int64(len(subject))
	}
	return n, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
