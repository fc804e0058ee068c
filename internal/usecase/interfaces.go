package usecase

import (
	"context"

	"github.com/anglerclubs/roster-api/internal/entity"
	"github.com/anglerclubs/roster-api/internal/infra/queue"
)

// IdentityProvider is the auth backend that owns accounts and credentials.
// ListExistingEmails feeds duplicate detection and is called exactly once per
// validation run, before the row loop.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, credential string, metadata map[string]interface{}) (string, error)
	ListExistingEmails(ctx context.Context) (map[string]struct{}, error)
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
}

type ImportJobRepositoryInterface interface {
	Create(ctx context.Context, job *entity.ImportJob) error
	FindByID(ctx context.Context, id string) (*entity.ImportJob, error)
	// MarkValidating claims a job for a validation run. Re-validation is
	// allowed from any pre-commit status; entity.ErrJobNotClaimable means a
	// commit already claimed the job.
	MarkValidating(ctx context.Context, id string) error
	MarkValidated(ctx context.Context, id string, totalRows, validRows, invalidRows int, errs []entity.RowError) error
	// ClaimForCommit is a compare-and-set validated -> committing, so two
	// concurrent commit calls cannot both proceed.
	ClaimForCommit(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error
	// Fail closes out a commit run that stopped before finishing.
	Fail(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error
}

type StagingRepositoryInterface interface {
	BulkInsert(ctx context.Context, rows []entity.StagingRow) error
	FindValidByJob(ctx context.Context, jobID string) ([]entity.StagingRow, error)
	DeleteByJob(ctx context.Context, jobID string) error
}

type ProfileRepositoryInterface interface {
	Upsert(ctx context.Context, profile *entity.MemberProfile) error
}

type RoleRepositoryInterface interface {
	Grant(ctx context.Context, grant *entity.RoleGrant) error
}

type QueueProducerInterface interface {
	PublishReconcile(ctx context.Context, payload queue.ReconcilePayload) error
}

type EmailService interface {
	SendWelcome(to, name, recoveryLink string) error
}

type StartValidationUseCase struct {
	JobRepo  ImportJobRepositoryInterface
	Staging  StagingRepositoryInterface
	Identity IdentityProvider
}

type CommitImportUseCase struct {
	JobRepo     ImportJobRepositoryInterface
	Staging     StagingRepositoryInterface
	Identity    IdentityProvider
	ProfileRepo ProfileRepositoryInterface
	RoleRepo    RoleRepositoryInterface
	Queue       QueueProducerInterface
	Email       EmailService

	// RecoveryRedirectURL is where the recovery link in the welcome email
	// lands the new member (the password-setup page of the frontend).
	RecoveryRedirectURL string
}
