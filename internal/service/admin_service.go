package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
)

// AdminService manages the user roster and the platform/bank registries.
// Every mutation writes an audit log entry; removals are guarded so that no
// balance can be orphaned.
type AdminService interface {
	CreateUser(ctx context.Context, user *models.User, actor string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, userID string, update *UserUpdate, actor string) (*models.User, error)
	ChangeRole(ctx context.Context, userID, newRole, actor, reason string) error
	DeleteUser(ctx context.Context, userID, actor, reason string) error

	AddPlatform(ctx context.Context, name, actor string) (*models.PlatformBalance, error)
	DeletePlatform(ctx context.Context, name, actor string) error

	AddBank(ctx context.Context, name, actor string) (*models.Bank, error)
	GetBanks(ctx context.Context) ([]*models.Bank, error)
	DeleteBank(ctx context.Context, name, actor string) error

	GetAuditTrail(ctx context.Context, filter *models.AuditFilter, limit, offset int) ([]*models.AuditLog, error)
}

// UserUpdate carries the editable profile fields. Nil fields are untouched.
type UserUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Email         *string   `json:"email,omitempty"`
	AssignedBanks *[]string `json:"assigned_banks,omitempty"`
}

type adminService struct {
	userRepo     repository.UserRepository
	registryRepo repository.RegistryRepository
	txRepo       repository.TransactionRepository
	auditRepo    repository.AuditRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	registryRepo repository.RegistryRepository,
	txRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		registryRepo: registryRepo,
		txRepo:       txRepo,
		auditRepo:    auditRepo,
	}
}

func (s *adminService) CreateUser(ctx context.Context, user *models.User, actor string) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("email %s already belongs to user %s: %w", user.Email, existing.UserID, repository.ErrDuplicate)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	entry := models.NewAuditLog(models.AuditUserAdded, actor, user.UserID, "", nil, user)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"role":    user.Role,
		"actor":   actor,
	}).Info("User created")

	return nil
}

func (s *adminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByUserID(ctx, userID)
}

func (s *adminService) GetUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *adminService) UpdateUser(ctx context.Context, userID string, update *UserUpdate, actor string) (*models.User, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldSnapshot := *user
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.AssignedBanks != nil {
		user.AssignedBanks = *update.AssignedBanks
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	entry := models.NewAuditLog(models.AuditUserUpdated, actor, userID, "", oldSnapshot, user)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangeRole sets a user's role. The old and new roles are audited.
func (s *adminService) ChangeRole(ctx context.Context, userID, newRole, actor, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}

	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	oldRole := user.Role
	if oldRole == newRole {
		return nil
	}

	user.Role = newRole
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid role change: %w", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	entry := models.NewAuditLog(models.AuditRoleChange, actor, userID, reason, oldRole, newRole)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"old_role": oldRole,
		"new_role": newRole,
		"actor":    actor,
	}).Info("User role changed")

	return nil
}

// DeleteUser removes a user. Deletion is blocked while the user holds any
// non-zero bank balance or has pending transactions.
func (s *adminService) DeleteUser(ctx context.Context, userID, actor, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}

	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if user.HasOutstandingBalance() {
		return fmt.Errorf("user %s still holds bank balances and cannot be deleted", userID)
	}

	pending, err := s.txRepo.CountPendingByUser(ctx, userID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("user %s has %d pending transactions and cannot be deleted", userID, pending)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	entry := models.NewAuditLog(models.AuditUserDeleted, actor, userID, reason, user, nil)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"actor":   actor,
	}).Info("User deleted")

	return nil
}

func (s *adminService) AddPlatform(ctx context.Context, name, actor string) (*models.PlatformBalance, error) {
	if name == "" {
		return nil, fmt.Errorf("platform name is required")
	}

	platform := &models.PlatformBalance{Name: name}
	if err := s.registryRepo.CreatePlatform(ctx, platform); err != nil {
		return nil, err
	}

	entry := models.NewAuditLog(models.AuditPlatformAdded, actor, name, "", nil, platform)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return platform, nil
}

// DeletePlatform removes a platform from the registry. A platform still
// holding USDT cannot be removed; its balance must be transferred or adjusted
// to zero first.
func (s *adminService) DeletePlatform(ctx context.Context, name, actor string) error {
	platform, err := s.registryRepo.GetPlatform(ctx, name)
	if err != nil {
		return err
	}

	if !platform.USDT.IsZero() {
		return fmt.Errorf("platform %s still holds %s USDT and cannot be deleted", name, platform.USDT.String())
	}

	if err := s.registryRepo.DeletePlatform(ctx, name); err != nil {
		return err
	}

	entry := models.NewAuditLog(models.AuditPlatformDeleted, actor, name, "", platform, nil)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"platform": name,
		"actor":    actor,
	}).Info("Platform deleted")

	return nil
}

func (s *adminService) AddBank(ctx context.Context, name, actor string) (*models.Bank, error) {
	if name == "" {
		return nil, fmt.Errorf("bank name is required")
	}

	bank := &models.Bank{Name: name}
	if err := s.registryRepo.CreateBank(ctx, bank); err != nil {
		return nil, err
	}

	entry := models.NewAuditLog(models.AuditBankAdded, actor, name, "", nil, bank)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return bank, nil
}

func (s *adminService) GetBanks(ctx context.Context) ([]*models.Bank, error) {
	return s.registryRepo.GetBanks(ctx)
}

// DeleteBank removes a bank from the registry. Removal is blocked while any
// user still holds a non-zero balance in that bank.
func (s *adminService) DeleteBank(ctx context.Context, name, actor string) error {
	held, err := s.userRepo.AnyBalanceInBank(ctx, name)
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("bank %s still holds user balances and cannot be deleted", name)
	}

	if err := s.registryRepo.DeleteBank(ctx, name); err != nil {
		return err
	}

	entry := models.NewAuditLog(models.AuditBankDeleted, actor, name, "", nil, nil)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"bank":  name,
		"actor": actor,
	}).Info("Bank deleted")

	return nil
}

func (s *adminService) GetAuditTrail(ctx context.Context, filter *models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	if filter == nil {
		return s.auditRepo.GetAll(ctx, limit, offset)
	}
	return s.auditRepo.GetFiltered(ctx, filter, limit, offset)
}
