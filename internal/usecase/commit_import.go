package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/anglerclubs/roster-api/internal/entity"
	"github.com/anglerclubs/roster-api/internal/infra/queue"
)

func NewCommitImportUseCase(
	jobRepo ImportJobRepositoryInterface,
	staging StagingRepositoryInterface,
	identity IdentityProvider,
	profileRepo ProfileRepositoryInterface,
	roleRepo RoleRepositoryInterface,
	producer QueueProducerInterface,
	email EmailService,
	recoveryRedirectURL string,
) *CommitImportUseCase {
	return &CommitImportUseCase{
		JobRepo:             jobRepo,
		Staging:             staging,
		Identity:            identity,
		ProfileRepo:         profileRepo,
		RoleRepo:            roleRepo,
		Queue:               producer,
		Email:               email,
		RecoveryRedirectURL: recoveryRedirectURL,
	}
}

// Execute runs the commit stage: provision an account, profile, and role
// grant for every valid staged row. Rows are processed sequentially in
// row_number order; account creation against the identity provider is rate
// limited, and the counters below assume no concurrent mutation.
func (uc *CommitImportUseCase) Execute(ctx context.Context, input CommitImportInput) (*CommitImportOutput, error) {
	if input.JobID == "" || input.ClubID == "" {
		return nil, &DomainError{
			Code:    "INVALID_INPUT",
			Message: "job id and club id are required",
		}
	}

	job, err := uc.JobRepo.FindByID(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, entity.ErrJobNotFound) {
			return nil, &DomainError{
				Code:    "JOB_NOT_FOUND",
				Message: "import job not found",
			}
		}
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to load job: " + err.Error(),
		}
	}
	if job.Status != entity.JobStatusValidated {
		return nil, &DomainError{
			Code:    "INVALID_JOB_STATE",
			Message: "job must be validated before commit, current status: " + string(job.Status),
		}
	}

	rows, err := uc.Staging.FindValidByJob(ctx, input.JobID)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to load staged rows: " + err.Error(),
		}
	}
	// Leave the job at "validated" so validation can be retried later.
	if len(rows) == 0 {
		return nil, &DomainError{
			Code:    "NOTHING_TO_IMPORT",
			Message: "no valid rows staged for this job",
		}
	}

	// Compare-and-set into "committing". A concurrent commit on the same
	// job loses the race here instead of double-provisioning accounts.
	if err := uc.JobRepo.ClaimForCommit(ctx, input.JobID); err != nil {
		if errors.Is(err, entity.ErrJobNotClaimable) {
			return nil, &DomainError{
				Code:    "COMMIT_IN_PROGRESS",
				Message: "another commit already claimed this job",
			}
		}
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to claim job for commit: " + err.Error(),
		}
	}

	var successCount, failureCount int
	var rowErrors []entity.RowError

	for i, row := range rows {
		// Cooperative cancellation between rows. Already-provisioned members
		// are kept; the unprocessed remainder is recorded as failed, the job
		// closes out as "failed", and staging is purged. A fresh upload is
		// the retry path, with the provider reporting the finished rows as
		// duplicates.
		if err := ctx.Err(); err != nil {
			return nil, uc.abortCancelled(ctx, input.JobID, job, rows[i:], successCount, failureCount, rowErrors, err)
		}

		handle, err := uc.createAccount(ctx, row)
		if err != nil {
			failureCount++
			rowErrors = append(rowErrors, entity.RowError{
				RowNumber: row.RowNumber,
				Email:     row.Email,
				Message:   err.Error(),
			})
			continue
		}

		// Steps below are best-effort: a failure is logged and queued
		// for reconciliation, never promoted to a row failure. The row
		// already has a working account, which is the part that counts.
		uc.provisionProfile(ctx, row, handle, input.ClubID)
		uc.grantRole(ctx, row, handle, input.ClubID)
		uc.sendWelcome(ctx, row, handle, input.ClubID)

		successCount++
	}

	// Exactly one final write, after all rows. A crash mid-loop leaves the
	// job at "committing" rather than reporting half-finished counts. The
	// persisted failure count folds in the rows validation already rejected,
	// keeping total_rows == successful_imports + failed_imports on the
	// completed job; the snapshot of their errors is merged the same way.
	finalFailed := failureCount + job.InvalidRows
	finalErrors := mergeRowErrors(job.Errors, rowErrors)
	if err := uc.JobRepo.Complete(ctx, input.JobID, successCount, finalFailed, finalErrors); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to finalize job: " + err.Error(),
		}
	}

	// Staging rows are scratch space. Purge them regardless of how many
	// rows failed; a failed purge is not worth failing a finished import.
	if err := uc.Staging.DeleteByJob(ctx, input.JobID); err != nil {
		log.Printf("WARNING: failed to purge staging rows for job %s: %v", input.JobID, err)
	}

	return &CommitImportOutput{
		SuccessCount: successCount,
		FailureCount: failureCount,
		Errors:       rowErrors,
	}, nil
}

// abortCancelled closes out a cancelled run. Finalization runs on a context
// detached from the cancellation, otherwise the closing writes would fail for
// the same reason the loop stopped.
func (uc *CommitImportUseCase) abortCancelled(ctx context.Context, jobID string, job *entity.ImportJob, remaining []entity.StagingRow, successCount, failureCount int, rowErrors []entity.RowError, cause error) error {
	for _, row := range remaining {
		failureCount++
		rowErrors = append(rowErrors, entity.RowError{
			RowNumber: row.RowNumber,
			Email:     row.Email,
			Message:   "Import cancelled before this row was processed",
		})
	}

	cleanupCtx := context.WithoutCancel(ctx)
	finalFailed := failureCount + job.InvalidRows
	finalErrors := mergeRowErrors(job.Errors, rowErrors)
	if err := uc.JobRepo.Fail(cleanupCtx, jobID, successCount, finalFailed, finalErrors); err != nil {
		log.Printf("WARNING: failed to close out cancelled job %s: %v", jobID, err)
	}
	if err := uc.Staging.DeleteByJob(cleanupCtx, jobID); err != nil {
		log.Printf("WARNING: failed to purge staging rows for job %s: %v", jobID, err)
	}

	return &TechnicalError{
		Code:    "COMMIT_CANCELLED",
		Message: "commit aborted after " + strconv.Itoa(successCount) + " imported rows: " + cause.Error(),
	}
}

func mergeRowErrors(validation, commit []entity.RowError) []entity.RowError {
	merged := make([]entity.RowError, 0, len(validation)+len(commit))
	merged = append(merged, validation...)
	merged = append(merged, commit...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].RowNumber < merged[j].RowNumber
	})
	return merged
}

func (uc *CommitImportUseCase) createAccount(ctx context.Context, row entity.StagingRow) (string, error) {
	credential, err := NewOpaqueCredential()
	if err != nil {
		return "", err
	}

	metadata := map[string]interface{}{
		"name":              row.Name,
		"phone":             row.Phone,
		"home_state":        row.HomeState,
		"city":              row.City,
		"emergency_contact": row.EmergencyContact,
		"boat_registration": row.BoatRegistration,
	}

	return uc.Identity.CreateAccount(ctx, row.Email, credential, metadata)
}

func (uc *CommitImportUseCase) provisionProfile(ctx context.Context, row entity.StagingRow, handle, clubID string) {
	now := time.Now()
	profile := &entity.MemberProfile{
		UserID:              handle,
		ClubID:              clubID,
		Name:                row.Name,
		City:                row.City,
		HomeState:           row.HomeState,
		SignatureTechniques: row.SignatureTechniques,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.ProfileRepo.Upsert(ctx, profile); err != nil {
		log.Printf("profile upsert failed for row %d (%s): %v", row.RowNumber, row.Email, err)
		uc.publishReconcile(ctx, queue.StepProfile, row, handle, clubID)
	}
}

func (uc *CommitImportUseCase) grantRole(ctx context.Context, row entity.StagingRow, handle, clubID string) {
	grant := &entity.RoleGrant{
		UserID: handle,
		ClubID: clubID,
		Role:   row.ClubRole,
		Active: true,
	}
	if err := uc.RoleRepo.Grant(ctx, grant); err != nil {
		log.Printf("role grant failed for row %d (%s): %v", row.RowNumber, row.Email, err)
		uc.publishReconcile(ctx, queue.StepRoleGrant, row, handle, clubID)
	}
}

func (uc *CommitImportUseCase) sendWelcome(ctx context.Context, row entity.StagingRow, handle, clubID string) {
	link, err := uc.Identity.GenerateRecoveryLink(ctx, row.Email, uc.RecoveryRedirectURL)
	if err != nil {
		log.Printf("recovery link generation failed for row %d (%s): %v", row.RowNumber, row.Email, err)
		uc.publishReconcile(ctx, queue.StepNotification, row, handle, clubID)
		return
	}
	if uc.Email == nil {
		return
	}
	if err := uc.Email.SendWelcome(row.Email, row.Name, link); err != nil {
		log.Printf("welcome email failed for row %d (%s): %v", row.RowNumber, row.Email, err)
		uc.publishReconcile(ctx, queue.StepNotification, row, handle, clubID)
	}
}

func (uc *CommitImportUseCase) publishReconcile(ctx context.Context, step string, row entity.StagingRow, handle, clubID string) {
	if uc.Queue == nil {
		return
	}
	payload := queue.ReconcilePayload{
		JobID:               row.JobID,
		Step:                step,
		UserID:              handle,
		Email:               row.Email,
		RowNumber:           row.RowNumber,
		ClubID:              clubID,
		Name:                row.Name,
		City:                row.City,
		HomeState:           row.HomeState,
		ClubRole:            string(row.ClubRole),
		SignatureTechniques: row.SignatureTechniques,
	}
	if err := uc.Queue.PublishReconcile(ctx, payload); err != nil {
		log.Printf("reconcile publish failed for row %d step %s: %v", row.RowNumber, step, err)
	}
}
