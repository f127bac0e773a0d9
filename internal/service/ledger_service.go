package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/cache"
	"baryabazaar-api/internal/config"
	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/messaging"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/monitoring"
	"baryabazaar-api/internal/repository"
	"baryabazaar-api/internal/validation"
)

// ErrReasonRequired is returned when a mutation that must be audited is
// attempted without a reason.
var ErrReasonRequired = errors.New("a non-empty reason is required")

// ErrWarningsNotAcknowledged is returned when a trade raises advisory
// warnings and the caller has not acknowledged them.
var ErrWarningsNotAcknowledged = errors.New("trade warnings must be acknowledged")

// LedgerService owns the transaction ledger and the balance projections
// derived from it. Every balance write goes through compare-and-swap with
// bounded retry; edits and deletions rebuild the projections by replaying
// the full history.
type LedgerService interface {
	RecordTrade(ctx context.Context, input *models.TransactionInput, acknowledgeWarnings bool) (*models.Transaction, validation.Result, error)
	RecordTransfer(ctx context.Context, input *TransferInput) (*models.Transaction, error)
	ValidateTrade(ctx context.Context, input *models.TransactionInput) (validation.Result, error)

	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error)
	GetTransactionsByPeriod(ctx context.Context, period string, customStart, customEnd time.Time) ([]*models.Transaction, error)

	UpdateTransaction(ctx context.Context, transactionID string, patch *models.TransactionPatch, actor, reason string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID, actor, reason string) (*models.Transaction, error)

	AdjustUserBalance(ctx context.Context, userID, bank string, amount decimal.Decimal, actor, reason string) error
	AdjustPlatformBalance(ctx context.Context, platform string, amount decimal.Decimal, actor, reason string) error

	UserBalances(ctx context.Context) (map[string]map[string]decimal.Decimal, error)
	PlatformBalances(ctx context.Context) ([]*models.PlatformBalance, error)
	TotalCompanyUSDT(ctx context.Context) (decimal.Decimal, error)
}

// TransferInput describes an internal USDT movement between two platforms.
// The fee is charged on the source platform.
type TransferInput struct {
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name"`
	FromPlatform string          `json:"from_platform"`
	ToPlatform   string          `json:"to_platform"`
	USDTAmount   decimal.Decimal `json:"usdt_amount"`
	Fee          decimal.Decimal `json:"fee"`
	Note         string          `json:"note"`
}

type ledgerService struct {
	txRepo       repository.TransactionRepository
	userRepo     repository.UserRepository
	registryRepo repository.RegistryRepository
	auditRepo    repository.AuditRepository
	validator    *validation.TradeValidator
	cache        cache.BalanceCache
	publisher    messaging.AlertPublisher
	metrics      *monitoring.Metrics
	windower     *ledger.Windower

	casMaxRetries   int
	largeTradePHP   decimal.Decimal
	lowBalanceUSDT  decimal.Decimal
	balanceCacheTTL time.Duration
}

func NewLedgerService(
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	registryRepo repository.RegistryRepository,
	auditRepo repository.AuditRepository,
	validator *validation.TradeValidator,
	balanceCache cache.BalanceCache,
	publisher messaging.AlertPublisher,
	metrics *monitoring.Metrics,
	windower *ledger.Windower,
	cfg *config.Config,
) LedgerService {
	return &ledgerService{
		txRepo:          txRepo,
		userRepo:        userRepo,
		registryRepo:    registryRepo,
		auditRepo:       auditRepo,
		validator:       validator,
		cache:           balanceCache,
		publisher:       publisher,
		metrics:         metrics,
		windower:        windower,
		casMaxRetries:   cfg.Trading.CASMaxRetries,
		largeTradePHP:   decimal.NewFromFloat(cfg.Trading.LargeTransactionPHP),
		lowBalanceUSDT:  decimal.NewFromFloat(cfg.Trading.LowBalanceUSDT),
		balanceCacheTTL: cfg.Redis.BalanceTTL,
	}
}

// ValidateTrade runs the pre-submission checks without recording anything.
func (s *ledgerService) ValidateTrade(ctx context.Context, input *models.TransactionInput) (validation.Result, error) {
	balances, err := s.balancesFor(ctx, input)
	if err != nil {
		return validation.Result{}, err
	}
	reference, err := s.referenceRate(ctx, input.Type)
	if err != nil {
		reference = decimal.Zero
	}
	return s.validator.ValidateTrade(input, balances, reference), nil
}

// RecordTrade validates and records a BUY or SELL, then applies its balance
// effect to the user's bank and the platform. A trade that fails validation
// is returned unrecorded with the findings; warnings block recording until
// acknowledged.
func (s *ledgerService) RecordTrade(ctx context.Context, input *models.TransactionInput, acknowledgeWarnings bool) (*models.Transaction, validation.Result, error) {
	balances, err := s.balancesFor(ctx, input)
	if err != nil {
		return nil, validation.Result{}, err
	}
	reference, err := s.referenceRate(ctx, input.Type)
	if err != nil {
		reference = decimal.Zero
	}

	result := s.validator.ValidateTrade(input, balances, reference)
	if !result.Valid {
		return nil, result, nil
	}
	if len(result.Warnings) > 0 && !acknowledgeWarnings {
		return nil, result, ErrWarningsNotAcknowledged
	}

	tx := models.NewTransaction(input)
	if err := tx.Validate(); err != nil {
		return nil, result, fmt.Errorf("invalid transaction: %w", err)
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, result, err
	}

	if err := s.applyEffect(ctx, tx); err != nil {
		// The ledger entry must not survive without its balance effect.
		if delErr := s.txRepo.Delete(ctx, tx.TransactionID); delErr != nil {
			logrus.WithError(delErr).WithField("transaction_id", tx.TransactionID).
				Error("Failed to roll back transaction after balance write failure")
		}
		return nil, result, fmt.Errorf("failed to apply balance effect: %w", err)
	}

	s.invalidateBalanceCache(ctx)

	if s.metrics != nil {
		usdt, _ := tx.USDTAmount.Float64()
		s.metrics.RecordTransaction(tx.Type, tx.Status, usdt)
	}

	s.publishTradeAlerts(ctx, tx)

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.TransactionID,
		"type":           tx.Type,
		"user_id":        tx.UserID,
		"usdt_amount":    tx.USDTAmount.String(),
		"php_amount":     tx.PHPAmount.String(),
	}).Info("Transaction recorded")

	return tx, result, nil
}

// RecordTransfer records an internal USDT movement between two platforms.
// The source pays the amount plus fee and the destination receives the
// amount; a failed leg is compensated so no partial movement survives.
func (s *ledgerService) RecordTransfer(ctx context.Context, input *TransferInput) (*models.Transaction, error) {
	if input.FromPlatform == "" || input.ToPlatform == "" {
		return nil, fmt.Errorf("both source and destination platforms are required")
	}
	if input.FromPlatform == input.ToPlatform {
		return nil, fmt.Errorf("source and destination platforms must differ")
	}
	if !input.USDTAmount.IsPositive() {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if input.Fee.IsNegative() {
		return nil, fmt.Errorf("fee cannot be negative")
	}

	tx := models.NewTransaction(&models.TransactionInput{
		Type:       models.TypeInternalTransfer,
		UserID:     input.UserID,
		UserName:   input.UserName,
		USDTAmount: input.USDTAmount,
		Platform:   input.FromPlatform,
		ToPlatform: input.ToPlatform,
		Fee:        input.Fee,
		Note:       input.Note,
	})

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	outgoing := input.USDTAmount.Add(input.Fee).Neg()
	if err := s.applyPlatformDelta(ctx, input.FromPlatform, outgoing); err != nil {
		if delErr := s.txRepo.Delete(ctx, tx.TransactionID); delErr != nil {
			logrus.WithError(delErr).WithField("transaction_id", tx.TransactionID).
				Error("Failed to roll back transfer after balance write failure")
		}
		return nil, fmt.Errorf("failed to debit source platform: %w", err)
	}
	if err := s.applyPlatformDelta(ctx, input.ToPlatform, input.USDTAmount); err != nil {
		// Re-credit the source so the failed transfer leaves no partial movement.
		if compErr := s.applyPlatformDelta(ctx, input.FromPlatform, outgoing.Neg()); compErr != nil {
			logrus.WithError(compErr).WithField("platform", input.FromPlatform).
				Error("Failed to re-credit source platform after destination write failure")
			s.publishSystemError(ctx, "transfer", fmt.Sprintf(
				"transfer %s left source platform %s debited: %v", tx.TransactionID, input.FromPlatform, compErr))
		}
		if delErr := s.txRepo.Delete(ctx, tx.TransactionID); delErr != nil {
			logrus.WithError(delErr).WithField("transaction_id", tx.TransactionID).
				Error("Failed to roll back transfer after balance write failure")
		}
		return nil, fmt.Errorf("failed to credit destination platform: %w", err)
	}

	s.invalidateBalanceCache(ctx)

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.TransactionID,
		"from_platform":  input.FromPlatform,
		"to_platform":    input.ToPlatform,
		"usdt_amount":    input.USDTAmount.String(),
	}).Info("Internal transfer recorded")

	return tx, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return s.txRepo.GetByTransactionID(ctx, transactionID)
}

func (s *ledgerService) GetTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	return s.txRepo.GetAll(ctx, limit, offset)
}

func (s *ledgerService) GetUserTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error) {
	return s.txRepo.GetByUserID(ctx, userID, limit, offset)
}

// GetTransactionsByPeriod lists the transactions of a named reporting period.
// Custom periods use the supplied bounds.
func (s *ledgerService) GetTransactionsByPeriod(ctx context.Context, period string, customStart, customEnd time.Time) ([]*models.Transaction, error) {
	start, end := customStart, customEnd
	if period != ledger.PeriodCustom {
		start, end = s.windower.Window(period, time.Now())
	}
	return s.txRepo.GetByDateRange(ctx, start, end)
}

// UpdateTransaction applies an edit to an existing transaction. It returns
// (nil, nil) when the id does not exist. The full old and new snapshots are
// written to the audit log, and all balance projections are rebuilt from the
// complete history so the edit's effect is fully reflected.
func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID string, patch *models.TransactionPatch, actor, reason string) (*models.Transaction, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := s.txRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	oldSnapshot := tx.Snapshot()
	tx.Apply(patch)
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("edit produces invalid transaction: %w", err)
	}

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	if err := s.rebuildBalances(ctx); err != nil {
		s.publishSystemError(ctx, "balance_rebuild", fmt.Sprintf("rebuild after edit of %s failed: %v", transactionID, err))
		return nil, fmt.Errorf("failed to rebuild balances after edit: %w", err)
	}

	s.appendAudit(ctx, models.NewAuditLog(models.AuditTransactionEdit, actor, transactionID, reason, oldSnapshot, tx.Snapshot()))

	logrus.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"actor":          actor,
	}).Info("Transaction edited")

	return tx, nil
}

// DeleteTransaction removes a transaction from the ledger. It returns
// (nil, nil) when the id does not exist. The deleted snapshot is preserved in
// the audit log and balances are rebuilt from the remaining history.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID, actor, reason string) (*models.Transaction, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := s.txRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	oldSnapshot := tx.Snapshot()
	if err := s.txRepo.Delete(ctx, transactionID); err != nil {
		return nil, err
	}

	if err := s.rebuildBalances(ctx); err != nil {
		s.publishSystemError(ctx, "balance_rebuild", fmt.Sprintf("rebuild after deletion of %s failed: %v", transactionID, err))
		return nil, fmt.Errorf("failed to rebuild balances after deletion: %w", err)
	}

	s.appendAudit(ctx, models.NewAuditLog(models.AuditTransactionDelete, actor, transactionID, reason, oldSnapshot, nil))

	logrus.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"actor":          actor,
	}).Info("Transaction deleted")

	return tx, nil
}

// AdjustUserBalance sets a user's balance in one bank to an absolute value.
// The old and new values are recorded in the audit log.
func (s *ledgerService) AdjustUserBalance(ctx context.Context, userID, bank string, amount decimal.Decimal, actor, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if amount.IsNegative() {
		return fmt.Errorf("balance cannot be set to a negative value")
	}

	var oldValue decimal.Decimal
	err := s.withCASRetry(func() error {
		user, err := s.userRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		oldValue = user.BankBalance(bank)
		return s.userRepo.SetBankBalance(ctx, userID, bank, amount, user.Version)
	})
	if err != nil {
		return err
	}

	s.appendAudit(ctx, models.NewAuditLog(models.AuditBalanceAdjustment, actor, fmt.Sprintf("%s/%s", userID, bank), reason,
		oldValue.String(), amount.String()))

	s.invalidateBalanceCache(ctx)
	if s.metrics != nil {
		s.metrics.RecordBalanceAdjustment("user_bank")
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"bank":    bank,
		"old":     oldValue.String(),
		"new":     amount.String(),
		"actor":   actor,
	}).Info("User balance adjusted")

	return nil
}

// AdjustPlatformBalance sets a platform's USDT holding to an absolute value.
func (s *ledgerService) AdjustPlatformBalance(ctx context.Context, platform string, amount decimal.Decimal, actor, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if amount.IsNegative() {
		return fmt.Errorf("balance cannot be set to a negative value")
	}

	var oldValue decimal.Decimal
	err := s.withCASRetry(func() error {
		p, err := s.registryRepo.GetPlatform(ctx, platform)
		if err != nil {
			return err
		}
		oldValue = p.USDT
		return s.registryRepo.SetPlatformBalance(ctx, platform, amount, p.Version)
	})
	if err != nil {
		return err
	}

	s.appendAudit(ctx, models.NewAuditLog(models.AuditBalanceAdjustment, actor, platform, reason,
		oldValue.String(), amount.String()))

	s.invalidateBalanceCache(ctx)
	if s.metrics != nil {
		s.metrics.RecordBalanceAdjustment("platform")
		usdt, _ := amount.Float64()
		s.metrics.SetPlatformBalance(platform, usdt)
	}

	logrus.WithFields(logrus.Fields{
		"platform": platform,
		"old":      oldValue.String(),
		"new":      amount.String(),
		"actor":    actor,
	}).Info("Platform balance adjusted")

	return nil
}

// UserBalances returns every user's per-bank balances, served from cache when
// fresh.
func (s *ledgerService) UserBalances(ctx context.Context) (map[string]map[string]decimal.Decimal, error) {
	if s.cache != nil {
		var cached map[string]map[string]decimal.Decimal
		if err := s.cache.Get(ctx, cache.KeyUserBalances, &cached); err == nil {
			return cached, nil
		}
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]map[string]decimal.Decimal, len(users))
	for _, user := range users {
		balances[user.UserID] = user.BankBalances
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.KeyUserBalances, balances, s.balanceCacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache user balances")
		}
	}
	return balances, nil
}

// PlatformBalances returns the platform registry with current USDT holdings.
func (s *ledgerService) PlatformBalances(ctx context.Context) ([]*models.PlatformBalance, error) {
	if s.cache != nil {
		var cached []*models.PlatformBalance
		if err := s.cache.Get(ctx, cache.KeyPlatformBalances, &cached); err == nil {
			return cached, nil
		}
	}

	platforms, err := s.registryRepo.GetPlatforms(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.KeyPlatformBalances, platforms, s.balanceCacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache platform balances")
		}
	}
	return platforms, nil
}

// TotalCompanyUSDT sums the USDT holdings across all platforms.
func (s *ledgerService) TotalCompanyUSDT(ctx context.Context) (decimal.Decimal, error) {
	platforms, err := s.PlatformBalances(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range platforms {
		total = total.Add(p.USDT)
	}
	return total, nil
}

// balancesFor loads the projector state a trade is validated against.
func (s *ledgerService) balancesFor(ctx context.Context, input *models.TransactionInput) (validation.Balances, error) {
	balances := validation.Balances{}

	if input.UserID != "" && input.Bank != "" {
		user, err := s.userRepo.GetByUserID(ctx, input.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return balances, err
			}
		} else {
			balances.BankBalance = user.BankBalance(input.Bank)
		}
	}

	if input.Platform != "" {
		platform, err := s.registryRepo.GetPlatform(ctx, input.Platform)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return balances, err
			}
		} else {
			balances.PlatformBalance = platform.USDT
		}
	}

	return balances, nil
}

// referenceRate derives the deviation-check reference from the current
// trading day's completed trades of the same type.
func (s *ledgerService) referenceRate(ctx context.Context, txType string) (decimal.Decimal, error) {
	start, end := s.windower.DailyWindow(time.Now())
	txs, err := s.txRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	completed := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == models.StatusCompleted && tx.Type == txType {
			completed = append(completed, tx)
		}
	}
	return ledger.WeightedAverageRate(completed), nil
}

// applyEffect applies a trade's balance effect to the user's bank and the
// platform, each through compare-and-swap with retry.
func (s *ledgerService) applyEffect(ctx context.Context, tx *models.Transaction) error {
	effect := ledger.TransactionEffect(tx)

	if effect.Bank != "" && !effect.BankDelta.IsZero() {
		if err := s.applyBankDelta(ctx, tx.UserID, effect.Bank, effect.BankDelta); err != nil {
			return err
		}
	}
	if effect.Platform != "" && !effect.PlatformDelta.IsZero() {
		if err := s.applyPlatformDelta(ctx, effect.Platform, effect.PlatformDelta); err != nil {
			return err
		}
	}
	if effect.ToPlatform != "" && !effect.ToPlatformDelta.IsZero() {
		if err := s.applyPlatformDelta(ctx, effect.ToPlatform, effect.ToPlatformDelta); err != nil {
			return err
		}
	}
	return nil
}

func (s *ledgerService) applyBankDelta(ctx context.Context, userID, bank string, delta decimal.Decimal) error {
	return s.withCASRetry(func() error {
		user, err := s.userRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		next := user.BankBalance(bank).Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("bank %s balance for user %s would go negative", bank, userID)
		}
		return s.userRepo.SetBankBalance(ctx, userID, bank, next, user.Version)
	})
}

func (s *ledgerService) applyPlatformDelta(ctx context.Context, platform string, delta decimal.Decimal) error {
	var next decimal.Decimal
	err := s.withCASRetry(func() error {
		p, err := s.registryRepo.GetPlatform(ctx, platform)
		if err != nil {
			return err
		}
		next = p.USDT.Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("platform %s balance would go negative", platform)
		}
		return s.registryRepo.SetPlatformBalance(ctx, platform, next, p.Version)
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		usdt, _ := next.Float64()
		s.metrics.SetPlatformBalance(platform, usdt)
	}
	return nil
}

// withCASRetry runs a read-modify-write closure, retrying on version
// conflicts up to the configured bound.
func (s *ledgerService) withCASRetry(op func() error) error {
	retries := s.casMaxRetries
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 0; attempt < retries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		if s.metrics != nil {
			s.metrics.RecordVersionConflict()
		}
	}
	return err
}

// rebuildBalances replays the full transaction history and overwrites every
// user bank balance and platform holding with the derived values.
func (s *ledgerService) rebuildBalances(ctx context.Context) error {
	txs, err := s.txRepo.GetAll(ctx, 0, 0)
	if err != nil {
		return err
	}

	userBalances := ledger.ReplayUserBalances(txs)
	platformBalances := ledger.ReplayPlatformBalances(txs)

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		derived := userBalances[user.UserID]
		// Union of stored and derived banks, so stale balances reset to zero.
		banks := make(map[string]struct{})
		for bank := range user.BankBalances {
			banks[bank] = struct{}{}
		}
		for bank := range derived {
			banks[bank] = struct{}{}
		}
		for bank := range banks {
			target := decimal.Zero
			if derived != nil {
				target = derived[bank]
			}
			userID := user.UserID
			bankName := bank
			if err := s.withCASRetry(func() error {
				current, err := s.userRepo.GetByUserID(ctx, userID)
				if err != nil {
					return err
				}
				return s.userRepo.SetBankBalance(ctx, userID, bankName, target, current.Version)
			}); err != nil {
				return err
			}
		}
	}

	platforms, err := s.registryRepo.GetPlatforms(ctx)
	if err != nil {
		return err
	}
	for _, platform := range platforms {
		target := platformBalances[platform.Name]
		name := platform.Name
		if err := s.withCASRetry(func() error {
			current, err := s.registryRepo.GetPlatform(ctx, name)
			if err != nil {
				return err
			}
			return s.registryRepo.SetPlatformBalance(ctx, name, target, current.Version)
		}); err != nil {
			return err
		}
		if s.metrics != nil {
			usdt, _ := target.Float64()
			s.metrics.SetPlatformBalance(name, usdt)
		}
	}

	s.invalidateBalanceCache(ctx)
	return nil
}

// appendAudit writes the audit entry for a mutation that has already
// persisted. An append failure is surfaced loudly but does not unwind the
// mutation; the change happened and must be reported as such.
func (s *ledgerService) appendAudit(ctx context.Context, entry *models.AuditLog) {
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"audit_type": entry.Type,
			"target":     entry.Target,
		}).Error("Failed to append audit entry for persisted mutation")
		s.publishSystemError(ctx, "audit", fmt.Sprintf("audit entry %s for %s was not persisted: %v", entry.Type, entry.Target, err))
	}
}

// publishSystemError emits a system-error alert, best effort.
func (s *ledgerService) publishSystemError(ctx context.Context, component, message string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSystemError(ctx, component, message); err != nil {
		logrus.WithError(err).Warn("Failed to publish system error alert")
	} else if s.metrics != nil {
		s.metrics.RecordAlertPublished(messaging.AlertSystemError)
	}
}

func (s *ledgerService) invalidateBalanceCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.KeyUserBalances, cache.KeyPlatformBalances); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate balance cache")
	}
}

// publishTradeAlerts emits advisory events after a trade. Alert delivery is
// best effort and never fails the trade.
func (s *ledgerService) publishTradeAlerts(ctx context.Context, tx *models.Transaction) {
	if s.publisher == nil {
		return
	}

	if !s.largeTradePHP.IsZero() && tx.PHPAmount.GreaterThan(s.largeTradePHP) {
		if err := s.publisher.PublishLargeTransaction(ctx, tx.TransactionID, tx.UserName, tx.PHPAmount); err != nil {
			logrus.WithError(err).Warn("Failed to publish large transaction alert")
		} else if s.metrics != nil {
			s.metrics.RecordAlertPublished(messaging.AlertLargeTransaction)
		}
	}

	if tx.Type == models.TypeSell && tx.Platform != "" && !s.lowBalanceUSDT.IsZero() {
		platform, err := s.registryRepo.GetPlatform(ctx, tx.Platform)
		if err != nil {
			return
		}
		if platform.USDT.LessThan(s.lowBalanceUSDT) {
			if err := s.publisher.PublishLowBalance(ctx, platform.Name, platform.USDT, s.lowBalanceUSDT); err != nil {
				logrus.WithError(err).Warn("Failed to publish low balance alert")
			} else if s.metrics != nil {
				s.metrics.RecordAlertPublished(messaging.AlertLowBalance)
			}
		}
	}
}
