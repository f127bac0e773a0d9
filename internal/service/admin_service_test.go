package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
)

func newTestAdminService() (AdminService, *MockUserRepository, *MockRegistryRepository, *MockTransactionRepository, *MockAuditRepository) {
	userRepo := &MockUserRepository{}
	registryRepo := &MockRegistryRepository{}
	txRepo := &MockTransactionRepository{}
	auditRepo := &MockAuditRepository{}
	return NewAdminService(userRepo, registryRepo, txRepo, auditRepo), userRepo, registryRepo, txRepo, auditRepo
}

func TestAdminService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("new user is created and audited", func(t *testing.T) {
		svc, userRepo, _, _, auditRepo := newTestAdminService()

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
			Return(nil, fmt.Errorf("user alice@example.com: %w", repository.ErrNotFound))
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Type == models.AuditUserAdded && entry.Target == "alice"
		})).Return(nil)

		err := svc.CreateUser(ctx, testUser(nil, 0), "boss")

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})

	t.Run("email already in use is rejected", func(t *testing.T) {
		svc, userRepo, _, _, _ := newTestAdminService()

		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(testUser(nil, 1), nil)

		err := svc.CreateUser(ctx, &models.User{
			UserID: "alice2",
			Name:   "Alice Two",
			Email:  "alice@example.com",
			Role:   models.RoleTrader,
		}, "boss")

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAdminService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("role change is persisted and audited", func(t *testing.T) {
		svc, userRepo, _, _, auditRepo := newTestAdminService()

		user := testUser(nil, 1)
		userRepo.On("GetByUserID", mock.Anything, "alice").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Type == models.AuditRoleChange &&
				entry.Target == "alice" &&
				entry.OldValue == models.RoleTrader &&
				entry.NewValue == models.RoleAdmin
		})).Return(nil)

		err := svc.ChangeRole(ctx, "alice", models.RoleAdmin, "boss", "promotion")

		assert.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		userRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		svc, userRepo, _, _, auditRepo := newTestAdminService()

		userRepo.On("GetByUserID", mock.Anything, "alice").Return(testUser(nil, 1), nil)

		err := svc.ChangeRole(ctx, "alice", models.RoleTrader, "boss", "no change")

		assert.NoError(t, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("requires a reason", func(t *testing.T) {
		svc, _, _, _, _ := newTestAdminService()

		err := svc.ChangeRole(ctx, "alice", models.RoleAdmin, "boss", "")
		assert.ErrorIs(t, err, ErrReasonRequired)
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while bank balances remain", func(t *testing.T) {
		svc, userRepo, _, _, _ := newTestAdminService()

		userRepo.On("GetByUserID", mock.Anything, "alice").
			Return(testUser(map[string]decimal.Decimal{"BDO": decimal.NewFromInt(500)}, 1), nil)

		err := svc.DeleteUser(ctx, "alice", "boss", "offboarding")

		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("blocked while pending transactions remain", func(t *testing.T) {
		svc, userRepo, _, txRepo, _ := newTestAdminService()

		userRepo.On("GetByUserID", mock.Anything, "alice").Return(testUser(nil, 1), nil)
		txRepo.On("CountPendingByUser", mock.Anything, "alice").Return(int64(2), nil)

		err := svc.DeleteUser(ctx, "alice", "boss", "offboarding")

		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("clean user is deleted with an audited snapshot", func(t *testing.T) {
		svc, userRepo, _, txRepo, auditRepo := newTestAdminService()

		user := testUser(map[string]decimal.Decimal{"BDO": decimal.Zero}, 1)
		userRepo.On("GetByUserID", mock.Anything, "alice").Return(user, nil)
		txRepo.On("CountPendingByUser", mock.Anything, "alice").Return(int64(0), nil)
		userRepo.On("Delete", mock.Anything, "alice").Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Type == models.AuditUserDeleted &&
				entry.Target == "alice" &&
				entry.OldValue != nil &&
				entry.NewValue == nil
		})).Return(nil)

		err := svc.DeleteUser(ctx, "alice", "boss", "offboarding")

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})
}

func TestAdminService_UpdateUser(t *testing.T) {
	svc, userRepo, _, _, auditRepo := newTestAdminService()

	user := testUser(nil, 1)
	userRepo.On("GetByUserID", mock.Anything, "alice").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Type == models.AuditUserUpdated && entry.Target == "alice"
	})).Return(nil)

	newName := "Alice Reyes"
	updated, err := svc.UpdateUser(context.Background(), "alice", &UserUpdate{Name: &newName}, "boss")

	assert.NoError(t, err)
	assert.Equal(t, "Alice Reyes", updated.Name)
	auditRepo.AssertExpectations(t)
}

func TestAdminService_DeletePlatform(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while USDT remains", func(t *testing.T) {
		svc, _, registryRepo, _, _ := newTestAdminService()

		registryRepo.On("GetPlatform", mock.Anything, "Binance").
			Return(&models.PlatformBalance{Name: "Binance", USDT: decimal.NewFromInt(10)}, nil)

		err := svc.DeletePlatform(ctx, "Binance", "boss")

		assert.Error(t, err)
		registryRepo.AssertNotCalled(t, "DeletePlatform", mock.Anything, mock.Anything)
	})

	t.Run("empty platform is deleted and audited", func(t *testing.T) {
		svc, _, registryRepo, _, auditRepo := newTestAdminService()

		registryRepo.On("GetPlatform", mock.Anything, "Binance").
			Return(&models.PlatformBalance{Name: "Binance"}, nil)
		registryRepo.On("DeletePlatform", mock.Anything, "Binance").Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Type == models.AuditPlatformDeleted && entry.Target == "Binance"
		})).Return(nil)

		err := svc.DeletePlatform(ctx, "Binance", "boss")

		assert.NoError(t, err)
		registryRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})
}

func TestAdminService_DeleteBank(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while users hold balances in it", func(t *testing.T) {
		svc, userRepo, registryRepo, _, _ := newTestAdminService()

		userRepo.On("AnyBalanceInBank", mock.Anything, "BDO").Return(true, nil)

		err := svc.DeleteBank(ctx, "BDO", "boss")

		assert.Error(t, err)
		registryRepo.AssertNotCalled(t, "DeleteBank", mock.Anything, mock.Anything)
	})

	t.Run("unused bank is deleted", func(t *testing.T) {
		svc, userRepo, registryRepo, _, auditRepo := newTestAdminService()

		userRepo.On("AnyBalanceInBank", mock.Anything, "BDO").Return(false, nil)
		registryRepo.On("DeleteBank", mock.Anything, "BDO").Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Type == models.AuditBankDeleted && entry.Target == "BDO"
		})).Return(nil)

		err := svc.DeleteBank(ctx, "BDO", "boss")

		assert.NoError(t, err)
		registryRepo.AssertExpectations(t)
	})
}
