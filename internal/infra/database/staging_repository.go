package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/anglerclubs/roster-api/internal/entity"
)

type StagingRepository struct {
	DB *sql.DB
}

func NewStagingRepository(db *sql.DB) *StagingRepository {
	return &StagingRepository{DB: db}
}

// BulkInsert stages every row of a validation run in one COPY inside one
// transaction. Either the whole batch lands or none of it does.
func (r *StagingRepository) BulkInsert(ctx context.Context, rows []entity.StagingRow) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("member_staging",
		"job_id", "row_number", "name", "email", "phone", "home_state", "city",
		"club_role", "signature_techniques", "emergency_contact",
		"boat_registration", "validation_errors", "is_duplicate", "is_valid",
	))
	if err != nil {
		return err
	}

	for _, row := range rows {
		fieldErrors := row.ValidationErrors
		if fieldErrors == nil {
			fieldErrors = []entity.FieldError{}
		}
		rawErrors, err := json.Marshal(fieldErrors)
		if err != nil {
			return fmt.Errorf("failed to marshal validation errors for row %d: %w", row.RowNumber, err)
		}

		if _, err := stmt.ExecContext(ctx,
			row.JobID,
			row.RowNumber,
			row.Name,
			row.Email,
			row.Phone,
			row.HomeState,
			row.City,
			row.ClubRole,
			pq.Array(row.SignatureTechniques),
			row.EmergencyContact,
			row.BoatRegistration,
			string(rawErrors),
			row.IsDuplicate,
			row.IsValid,
		); err != nil {
			return err
		}
	}

	// Flush the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

// FindValidByJob returns the importable rows in row_number order, so the
// commit stage walks the file top to bottom.
func (r *StagingRepository) FindValidByJob(ctx context.Context, jobID string) ([]entity.StagingRow, error) {
	query := `
		SELECT job_id, row_number, name, email, phone, home_state, city,
		       club_role, signature_techniques, emergency_contact,
		       boat_registration, validation_errors, is_duplicate, is_valid
		FROM member_staging
		WHERE job_id = $1 AND is_valid = true
		ORDER BY row_number
	`

	dbRows, err := r.DB.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var rows []entity.StagingRow
	for dbRows.Next() {
		var row entity.StagingRow
		var rawErrors []byte

		if err := dbRows.Scan(
			&row.JobID,
			&row.RowNumber,
			&row.Name,
			&row.Email,
			&row.Phone,
			&row.HomeState,
			&row.City,
			&row.ClubRole,
			pq.Array(&row.SignatureTechniques),
			&row.EmergencyContact,
			&row.BoatRegistration,
			&rawErrors,
			&row.IsDuplicate,
			&row.IsValid,
		); err != nil {
			return nil, err
		}
		if len(rawErrors) > 0 {
			if err := json.Unmarshal(rawErrors, &row.ValidationErrors); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}

	return rows, dbRows.Err()
}

func (r *StagingRepository) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM member_staging WHERE job_id = $1`, jobID)
	return err
}
