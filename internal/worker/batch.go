package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/verifact/verifact/internal/model"
)

// Runner defines the interface for verifying a single subject
type Runner interface {
	Run(ctx context.Context, subjectID, subject string) (*model.VerificationRun, error)
}

// VerifyJob represents one subject verification job
type VerifyJob struct {
	SubjectID string
	Subject   string
	Runner    Runner
}

// Execute executes the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	run, err := j.Runner.Run(ctx, j.SubjectID, j.Subject)
	return &VerifyResult{
		Subject: j.Subject,
		Run:     run,
		Error:   err,
	}
}

// VerifyResult represents the result of a verification job
type VerifyResult struct {
	Subject string
	Run     *model.VerificationRun
	Error   error
}

// GetError returns the error from the verification result
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple subjects concurrently. Oracle fan-out
// inside each run stays concurrent too; the pool only bounds how many
// subjects are in flight at once.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessSubjects verifies multiple subjects concurrently. Subject IDs are
// derived from the display names.
func (b *BatchProcessor) ProcessSubjects(ctx context.Context, subjects []string) []*VerifyResult {
	if len(subjects) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, subject := range subjects {
		pool.Submit(&VerifyJob{
			SubjectID: SubjectID(subject),
			Subject:   subject,
			Runner:    b.runner,
		})
	}

	results := pool.Wait()

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		verifyResults[i] = result.(*VerifyResult)
	}

	return verifyResults
}

// ProcessFile reads subjects from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	subjects, err := ReadSubjectsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}

	return b.ProcessSubjects(ctx, subjects), nil
}

// SubjectID derives a stable opaque key from a display name
func SubjectID(subject string) string {
	return strings.ReplaceAll(strings.ToLower(strings.Join(strings.Fields(subject), " ")), " ", "-")
}

// ReadSubjectsFromFile reads subject names from a file (one per line)
func ReadSubjectsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var subjects []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate subjects
		key := SubjectID(line)
		if !seen[key] {
			seen[key] = true
			subjects = append(subjects, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return subjects, nil
}
