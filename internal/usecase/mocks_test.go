package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/anglerclubs/roster-api/internal/entity"
	"github.com/anglerclubs/roster-api/internal/infra/queue"
)

// MockImportJobRepository
type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) Create(ctx context.Context, job *entity.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) FindByID(ctx context.Context, id string) (*entity.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) MarkValidating(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockImportJobRepository) MarkValidated(ctx context.Context, id string, totalRows, validRows, invalidRows int, errs []entity.RowError) error {
	args := m.Called(ctx, id, totalRows, validRows, invalidRows, errs)
	return args.Error(0)
}

func (m *MockImportJobRepository) ClaimForCommit(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockImportJobRepository) Complete(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error {
	args := m.Called(ctx, id, successful, failed, errs)
	return args.Error(0)
}

func (m *MockImportJobRepository) Fail(ctx context.Context, id string, successful, failed int, errs []entity.RowError) error {
	args := m.Called(ctx, id, successful, failed, errs)
	return args.Error(0)
}

// MockStagingRepository
type MockStagingRepository struct {
	mock.Mock
}

func (m *MockStagingRepository) BulkInsert(ctx context.Context, rows []entity.StagingRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStagingRepository) FindValidByJob(ctx context.Context, jobID string) ([]entity.StagingRow, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StagingRow), args.Error(1)
}

func (m *MockStagingRepository) DeleteByJob(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockIdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, credential string, metadata map[string]interface{}) (string, error) {
	args := m.Called(ctx, email, credential, metadata)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) ListExistingEmails(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockIdentityProvider) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	args := m.Called(ctx, email, redirectTo)
	return args.String(0), args.Error(1)
}

// MockProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *entity.MemberProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockRoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Grant(ctx context.Context, grant *entity.RoleGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishReconcile(ctx context.Context, payload queue.ReconcilePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(to, name, recoveryLink string) error {
	args := m.Called(to, name, recoveryLink)
	return args.Error(0)
}
