package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusValidating JobStatus = "validating"
	JobStatusValidated  JobStatus = "validated"
	JobStatusCommitting JobStatus = "committing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// statusRank orders the job state machine. Transitions move forward, with one
// re-entry point: validation can be re-run until a commit claims the job.
var statusRank = map[JobStatus]int{
	JobStatusPending:    0,
	JobStatusValidating: 1,
	JobStatusValidated:  2,
	JobStatusCommitting: 3,
	JobStatusCompleted:  4,
	JobStatusFailed:     4,
}

func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	// Re-validation: a stranded or empty validation run can be retried, and a
	// "nothing to import" commit leaves the job open for a fresh upload.
	if next == JobStatusValidating {
		return from <= statusRank[JobStatusValidated]
	}
	return to > from
}

// RowError records a commit-time failure for one staged row. Validation-stage
// problems live on StagingRow.ValidationErrors; the job keeps a snapshot of
// both so the caller always sees a per-row report.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

type ImportJob struct {
	ID                string     `json:"id"`
	TargetClubID      string     `json:"target_club_id"`
	TotalRows         int        `json:"total_rows"`
	ValidRows         int        `json:"valid_rows"`
	InvalidRows       int        `json:"invalid_rows"`
	SuccessfulImports int        `json:"successful_imports"`
	FailedImports     int        `json:"failed_imports"`
	Status            JobStatus  `json:"status"`
	Errors            []RowError `json:"errors"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

func NewImportJob(targetClubID string) *ImportJob {
	return &ImportJob{
		ID:           uuid.New().String(),
		TargetClubID: targetClubID,
		Status:       JobStatusPending,
		CreatedAt:    time.Now(),
	}
}
