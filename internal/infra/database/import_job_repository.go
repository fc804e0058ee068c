package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/anglerclubs/roster-api/internal/entity"
)

type ImportJobRepository struct {
	DB *sql.DB
}

func NewImportJobRepository(db *sql.DB) *ImportJobRepository {
	return &ImportJobRepository{DB: db}
}

func (r *ImportJobRepository) Create(ctx context.Context, job *entity.ImportJob) error {
	query := `
		INSERT INTO import_jobs (id, target_club_id, status, errors, created_at)
		VALUES ($1, $2, $3, '[]', $4)
	`
	_, err := r.DB.ExecContext(ctx, query, job.ID, job.TargetClubID, job.Status, job.CreatedAt)
	return err
}

func (r *ImportJobRepository) FindByID(ctx context.Context, id string) (*entity.ImportJob, error) {
	query := `
		SELECT id, target_club_id, total_rows, valid_rows, invalid_rows,
		       successful_imports, failed_imports, status, errors, created_at, completed_at
		FROM import_jobs
		WHERE id = $1
	`

	var job entity.ImportJob
	var rawErrors []byte
	var completedAt sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.TargetClubID,
		&job.TotalRows,
		&job.ValidRows,
		&job.InvalidRows,
		&job.SuccessfulImports,
		&job.FailedImports,
		&job.Status,
		&rawErrors,
		&job.CreatedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(rawErrors) > 0 {
		if err := json.Unmarshal(rawErrors, &job.Errors); err != nil {
			return nil, err
		}
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

// MarkValidating claims a job for a validation run. Any pre-commit status can
// be (re)validated: a fresh job, a run stranded at "validating" by a transient
// failure, or a validated job whose rows all turned out unimportable. Once a
// commit has claimed the job the update matches zero rows and the caller gets
// ErrJobNotClaimable; ClaimForCommit stays the sole mutual-exclusion point.
func (r *ImportJobRepository) MarkValidating(ctx context.Context, id string) error {
	query := `UPDATE import_jobs SET status = $1 WHERE id = $2 AND status = ANY($3)`
	return r.transition(ctx, id, query, entity.JobStatusValidating, id, pq.Array([]string{
		string(entity.JobStatusPending),
		string(entity.JobStatusValidating),
		string(entity.JobStatusValidated),
	}))
}

func (r *ImportJobRepository) MarkValidated(ctx context.Context, id string, totalRows, validRows, invalidRows int, errs []entity.RowError) error {
	rawErrors, err := marshalRowErrors(errs)
	if err != nil {
		return err
	}

	query := `
		UPDATE import_jobs
		SET status = $1, total_rows = $2, valid_rows = $3, invalid_rows = $4, errors = $5
		WHERE id = $6 AND status = $7
	`
	return r.transition(ctx, id, query,
		entity.JobStatusValidated, totalRows, validRows, invalidRows, rawErrors, id, entity.JobStatusValidating)
}

// ClaimForCommit is the compare-and-set validated -> committing.
func (r *ImportJobRepository) ClaimForCommit(ctx context.Context, id string) error {
	query := `UPDATE import_jobs SET status = $1 WHERE id = $2 AND status = $3`
	return r.transition(ctx, id, query, entity.JobStatusCommitting, id, entity.JobStatusValidated)
}

func (r *ImportJobRepository) Complete(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error {
	rawErrors, err := marshalRowErrors(errs)
	if err != nil {
		return err
	}

	query := `
		UPDATE import_jobs
		SET status = $1, successful_imports = $2, failed_imports = $3, errors = $4, completed_at = $5
		WHERE id = $6 AND status = $7
	`
	return r.transition(ctx, id, query,
		entity.JobStatusCompleted, successful, failed, rawErrors, time.Now(), id, entity.JobStatusCommitting)
}

// Fail closes out a commit run that could not finish, recording whatever
// counts it got through before stopping.
func (r *ImportJobRepository) Fail(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error {
	rawErrors, err := marshalRowErrors(errs)
	if err != nil {
		return err
	}

	query := `
		UPDATE import_jobs
		SET status = $1, successful_imports = $2, failed_imports = $3, errors = $4, completed_at = $5
		WHERE id = $6 AND status = $7
	`
	return r.transition(ctx, id, query,
		entity.JobStatusFailed, successful, failed, rawErrors, time.Now(), id, entity.JobStatusCommitting)
}

// transition runs a status-guarded update and translates "zero rows touched"
// into the right domain error.
func (r *ImportJobRepository) transition(ctx context.Context, id, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM import_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return entity.ErrJobNotFound
		}
		return entity.ErrJobNotClaimable
	}
	return nil
}

func marshalRowErrors(errs []entity.RowError) ([]byte, error) {
	if errs == nil {
		errs = []entity.RowError{}
	}
	return json.Marshal(errs)
}
