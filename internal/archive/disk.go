package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskArchive appends raw oracle replies to per-subject JSONL files
type DiskArchive struct {
	dir string
}

// NewDiskArchive creates a disk archive rooted at dir
func NewDiskArchive(dir string) *DiskArchive {
	if dir == "" {
		dir = ".verifact-archive"
	}
	return &DiskArchive{dir: dir}
}

// Append writes one entry as a JSON line
func (a *DiskArchive) Append(ctx context.Context, subjectID, oracleID, runID, rawText string) error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	entry := Entry{
		SubjectID:  subjectID,
		OracleID:   oracleID,
		RunID:      runID,
		RawText:    rawText,
		ArchivedAt: time.Now().UTC(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(a.path(subjectID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// Close is a no-op for the disk archive
func (a *DiskArchive) Close() error {
	return nil
}

// path generates the file path for a subject. Subject IDs are hashed so
// arbitrary external keys can't escape the archive directory.
func (a *DiskArchive) path(subjectID string) string {
	hash := sha256.Sum256([]byte(subjectID))
	return filepath.Join(a.dir, hex.EncodeToString(hash[:8])+".jsonl")
}
