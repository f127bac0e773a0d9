package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"baryabazaar-api/internal/models"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) CountPendingByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetBankBalance(ctx context.Context, userID, bank string, amount decimal.Decimal, expectedVersion int64) error {
	args := m.Called(ctx, userID, bank, amount, expectedVersion)
	return args.Error(0)
}

func (m *MockUserRepository) SetLoginState(ctx context.Context, userID string, loggedIn bool, at time.Time) error {
	args := m.Called(ctx, userID, loggedIn, at)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) AnyBalanceInBank(ctx context.Context, bank string) (bool, error) {
	args := m.Called(ctx, bank)
	return args.Bool(0), args.Error(1)
}

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) CreatePlatform(ctx context.Context, platform *models.PlatformBalance) error {
	args := m.Called(ctx, platform)
	return args.Error(0)
}

func (m *MockRegistryRepository) GetPlatform(ctx context.Context, name string) (*models.PlatformBalance, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformBalance), args.Error(1)
}

func (m *MockRegistryRepository) GetPlatforms(ctx context.Context) ([]*models.PlatformBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlatformBalance), args.Error(1)
}

func (m *MockRegistryRepository) SetPlatformBalance(ctx context.Context, name string, amount decimal.Decimal, expectedVersion int64) error {
	args := m.Called(ctx, name, amount, expectedVersion)
	return args.Error(0)
}

func (m *MockRegistryRepository) DeletePlatform(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRegistryRepository) CreateBank(ctx context.Context, bank *models.Bank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockRegistryRepository) GetBanks(ctx context.Context) ([]*models.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bank), args.Error(1)
}

func (m *MockRegistryRepository) DeleteBank(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) GetFiltered(ctx context.Context, filter *models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.SessionLog) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) CloseOpenSession(ctx context.Context, userID string, at time.Time) (*models.SessionLog, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionLog), args.Error(1)
}

func (m *MockSessionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.SessionLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionLog), args.Error(1)
}

func (m *MockSessionRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishLargeTransaction(ctx context.Context, transactionID, userName string, phpAmount decimal.Decimal) error {
	args := m.Called(ctx, transactionID, userName, phpAmount)
	return args.Error(0)
}

func (m *MockAlertPublisher) PublishLowBalance(ctx context.Context, platform string, usdt, threshold decimal.Decimal) error {
	args := m.Called(ctx, platform, usdt, threshold)
	return args.Error(0)
}

func (m *MockAlertPublisher) PublishSystemError(ctx context.Context, component, message string) error {
	args := m.Called(ctx, component, message)
	return args.Error(0)
}

func (m *MockAlertPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
