package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/verifact/verifact/internal/model"
)

// PostgresStore persists facts in a relational table with keyed upserts
type PostgresStore struct {
	db *sql.DB
}

const factsSchema = `
CREATE TABLE IF NOT EXISTS verified_facts (
    subject_id   TEXT             NOT NULL,
    fact_type    TEXT             NOT NULL,
    fact_key     TEXT             NOT NULL,
    display      TEXT             NOT NULL,
    claim_text   TEXT             NOT NULL,
    confidence   DOUBLE PRECISION NOT NULL,
    oracles      TEXT[]           NOT NULL,
    status       TEXT             NOT NULL,
    run_id       TEXT             NOT NULL,
    created_at   TIMESTAMPTZ      NOT NULL DEFAULT now(),
    PRIMARY KEY (subject_id, fact_key)
);
CREATE INDEX IF NOT EXISTS verified_facts_confidence_idx
    ON verified_facts (subject_id, confidence DESC);
`

// NewPostgresStore opens a connection and ensures the schema exists
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(factsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// UpsertFact writes one fact; later runs overwrite earlier generations
func (s *PostgresStore) UpsertFact(ctx context.Context, fact model.AcceptedFact) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO verified_facts (subject_id, fact_type, fact_key, display, claim_text, confidence, oracles, status, run_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (subject_id, fact_key) DO UPDATE SET
    fact_type  = EXCLUDED.fact_type,
    display    = EXCLUDED.display,
    claim_text = EXCLUDED.claim_text,
    confidence = EXCLUDED.confidence,
    oracles    = EXCLUDED.oracles,
    status     = EXCLUDED.status,
    run_id     = EXCLUDED.run_id,
    created_at = EXCLUDED.created_at`,
		fact.SubjectID, string(fact.Type), fact.Key, fact.Display, fact.ClaimText,
		fact.Confidence, pq.Array(fact.Oracles), string(fact.Status), fact.RunID, fact.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert fact %s: %w", fact.Key, err)
	}
	return nil
}

// Facts returns a subject's facts at or above minConfidence, highest first
func (s *PostgresStore) Facts(ctx context.Context, subjectID string, minConfidence float64, limit int) ([]model.AcceptedFact, error) {
	query := `
SELECT subject_id, fact_type, fact_key, display, claim_text, confidence, oracles, status, run_id, created_at
FROM verified_facts
WHERE subject_id = $1 AND confidence >= $2
ORDER BY confidence DESC, fact_key`
	args := []interface{}{subjectID, minConfidence}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var facts []model.AcceptedFact
	for rows.Next() {
		var f model.AcceptedFact
		var factType, status string
		if err := rows.Scan(&f.SubjectID, &factType, &f.Key, &f.Display, &f.ClaimText,
			&f.Confidence, pq.Array(&f.Oracles), &status, &f.RunID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.Type = model.FactType(factType)
		f.Status = model.VerificationLevel(status)
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

// Prune applies the current acceptance policy retroactively
func (s *PostgresStore) Prune(ctx context.Context, minConfidence float64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verified_facts WHERE confidence < $1 OR status = $2`,
		minConfidence, string(model.LevelUnverified))
	if err != nil {
		return 0, fmt.Errorf("prune facts: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the total number of stored facts
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM verified_facts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count facts: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
