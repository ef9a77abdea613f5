// Package archive stores raw oracle output verbatim for provenance.
// Archival is strictly best-effort: verification correctness never depends
// on an append succeeding.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verifact/verifact/internal/model"
)

// Archive is the raw document archive capability interface
type Archive interface {
	// Append stores one oracle's raw reply for a subject
	Append(ctx context.Context, subjectID, oracleID, runID, rawText string) error

	// Close releases backend resources
	Close() error
}

// Entry is the archived record for one oracle reply
type Entry struct {
	SubjectID  string    `json:"subject_id"`
	OracleID   string    `json:"oracle_id"`
	RunID      string    `json:"run_id"`
	RawText    string    `json:"raw_text"`
	ArchivedAt time.Time `json:"archived_at"`
}

// New creates an archive from configuration
func New(cfg model.ArchiveConfig) (Archive, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return NopArchive{}, nil

	case "disk":
		return NewDiskArchive(cfg.Dir), nil

	case "redis":
		return NewRedisArchive(cfg)

	default:
		return nil, fmt.Errorf("unknown archive backend: %s (supported: none, disk, redis)", cfg.Backend)
	}
}

// NopArchive discards everything
type NopArchive struct{}

// Append discards the entry
func (NopArchive) Append(ctx context.Context, subjectID, oracleID, runID, rawText string) error {
	return nil
}

// Close is a no-op
func (NopArchive) Close() error {
	return nil
}
