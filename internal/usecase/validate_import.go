package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/anglerclubs/roster-api/internal/entity"
)

func NewStartValidationUseCase(
	jobRepo ImportJobRepositoryInterface,
	staging StagingRepositoryInterface,
	identity IdentityProvider,
) *StartValidationUseCase {
	return &StartValidationUseCase{
		JobRepo:  jobRepo,
		Staging:  staging,
		Identity: identity,
	}
}

// Execute runs the validation stage: normalize every row, flag duplicates
// against the identity provider, stage everything, mark the job validated.
// All rows are staged, valid or not, so the commit stage and the caller see
// the same picture.
func (uc *StartValidationUseCase) Execute(ctx context.Context, input StartValidationInput) (*StartValidationOutput, error) {
	if input.JobID == "" || input.ClubID == "" {
		return nil, &DomainError{
			Code:    "INVALID_INPUT",
			Message: "job id and club id are required",
		}
	}
	if len(input.Rows) == 0 {
		return nil, &DomainError{
			Code:    "EMPTY_IMPORT",
			Message: "no rows to validate",
		}
	}

	if err := uc.JobRepo.MarkValidating(ctx, input.JobID); err != nil {
		if errors.Is(err, entity.ErrJobNotClaimable) {
			return nil, &DomainError{
				Code:    "INVALID_JOB_STATE",
				Message: "job has already been claimed for commit",
			}
		}
		if errors.Is(err, entity.ErrJobNotFound) {
			return nil, &DomainError{
				Code:    "JOB_NOT_FOUND",
				Message: "import job not found",
			}
		}
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to claim job for validation: " + err.Error(),
		}
	}

	// A re-validation restages from scratch. Rows left behind by a previous
	// run are swept first so (job_id, row_number) stays unique.
	if err := uc.Staging.DeleteByJob(ctx, input.JobID); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to clear previous staging rows: " + err.Error(),
		}
	}

	// One bulk fetch before the loop. A per-row lookup would turn a large
	// roster against a large member base into a quadratic run.
	existing, err := uc.Identity.ListExistingEmails(ctx)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "IDENTITY_PROVIDER_ERROR",
			Message: "failed to list existing accounts: " + err.Error(),
		}
	}

	rows := make([]entity.StagingRow, 0, len(input.Rows))
	var validRows, invalidRows int
	var snapshot []entity.RowError

	for i, raw := range input.Rows {
		row := BuildStagingRow(input.JobID, i+1, raw)

		if row.Email != "" {
			if _, taken := existing[row.Email]; taken {
				row.IsDuplicate = true
			}
		}
		row.Classify()

		if row.IsValid {
			validRows++
		} else {
			invalidRows++
			snapshot = append(snapshot, entity.RowError{
				RowNumber: row.RowNumber,
				Email:     row.Email,
				Message:   invalidRowMessage(row),
			})
		}
		rows = append(rows, row)
	}

	// Staging and the job update succeed or fail together. If marking the
	// job validated fails, the staged rows are swept so a later retry of
	// validation starts clean.
	txn := NewTransaction()
	txn.AddOperation("stage_rows", func(ctx context.Context) error {
		return uc.Staging.BulkInsert(ctx, rows)
	})
	txn.AddCompensation("unstage_rows", func(ctx context.Context) error {
		return uc.Staging.DeleteByJob(ctx, input.JobID)
	})
	txn.AddOperation("mark_validated", func(ctx context.Context) error {
		return uc.JobRepo.MarkValidated(ctx, input.JobID, len(rows), validRows, invalidRows, snapshot)
	})

	if err := txn.Execute(ctx); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist validation results: " + err.Error(),
		}
	}

	return &StartValidationOutput{
		JobID:       input.JobID,
		TotalRows:   len(rows),
		ValidRows:   validRows,
		InvalidRows: invalidRows,
	}, nil
}

func invalidRowMessage(row entity.StagingRow) string {
	parts := make([]string, 0, len(row.ValidationErrors)+1)
	for _, fe := range row.ValidationErrors {
		parts = append(parts, fe.Message)
	}
	if row.IsDuplicate {
		parts = append(parts, "Email already registered")
	}
	return strings.Join(parts, "; ")
}
