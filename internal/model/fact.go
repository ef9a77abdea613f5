package model

import "time"

// FactType categorizes the nature of a normalized fact
type FactType string

const (
	FactRealName     FactType = "real_name"
	FactBirthYear    FactType = "birth_year"
	FactBirthplace   FactType = "birthplace"
	FactNationality  FactType = "nationality"
	FactLabel        FactType = "label"
	FactAlias        FactType = "alias"
	FactCollaborator FactType = "collaborator"
	FactRelease      FactType = "release"
	FactStyle        FactType = "style"
)

// NormalizedFact is the canonical unit of comparison between oracles.
// Two oracle responses are "saying the same thing" iff their keys are equal.
type NormalizedFact struct {
	Type     FactType `json:"type"`
	Key      string   `json:"key"`               // canonical identity, e.g. "label:tresor"
	Display  string   `json:"display"`           // human-readable value (original casing, collapsed whitespace)
	Release  *Release `json:"release,omitempty"` // sub-fields for release facts
	OracleID string   `json:"oracle_id"`         // which oracle produced this candidate
}

// Release holds the structured sub-fields of a release fact.
// Identity is title+year; label text may differ between oracles.
type Release struct {
	Title string `json:"title"`
	Year  string `json:"year,omitempty"`
	Label string `json:"label,omitempty"`
}

// AcceptedFact is a normalized fact that cleared quorum.
// Never mutated after creation within a run.
type AcceptedFact struct {
	SubjectID  string            `json:"subject_id"`
	Type       FactType          `json:"type"`
	Key        string            `json:"key"`
	Display    string            `json:"display"`
	ClaimText  string            `json:"claim_text"`
	Confidence float64           `json:"confidence"`
	Oracles    []string          `json:"oracles"` // distinct contributing oracle IDs
	Status     VerificationLevel `json:"status"`
	RunID      string            `json:"run_id"`
	CreatedAt  time.Time         `json:"created_at"`
}

// VerificationLevel classifies how well a run was corroborated
type VerificationLevel string

const (
	LevelVerified          VerificationLevel = "verified"           // >= 3 responses and at least one accepted fact
	LevelPartiallyVerified VerificationLevel = "partially_verified" // >= 2 responses and at least one accepted fact
	LevelUnverified        VerificationLevel = "unverified"
)

// VerificationRun is the aggregate record of one fan-out, returned to the
// caller and handed to evidence synthesis.
type VerificationRun struct {
	ID               string            `json:"id"`
	SubjectID        string            `json:"subject_id"`
	Subject          string            `json:"subject"`
	OraclesQueried   int               `json:"oracles_queried"`
	OraclesResponded int               `json:"oracles_responded"` // non-error, non-refused
	Refusals         int               `json:"refusals"`
	Errors           int               `json:"errors"`
	Facts            []AcceptedFact    `json:"facts"`
	Level            VerificationLevel `json:"level"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}

// LevelFor derives the verification level from response and acceptance counts
func LevelFor(responded, accepted int) VerificationLevel {
	switch {
	case responded >= 3 && accepted > 0:
		return LevelVerified
	case responded >= 2 && accepted > 0:
		return LevelPartiallyVerified
	default:
		return LevelUnverified
	}
}
