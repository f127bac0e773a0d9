package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/config"
	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/messaging"
	"baryabazaar-api/internal/service"
)

// Scheduler runs the periodic background jobs: the daily snapshot at the
// trading-day reset, a low-balance sweep, and a stale-session sweep. All jobs
// run in the configured trading timezone.
type Scheduler struct {
	cron      *cron.Cron
	ledger    service.LedgerService
	admin     service.AdminService
	analytics service.AnalyticsService
	sessions  service.SessionService
	publisher messaging.AlertPublisher

	resetTime      string
	lowBalanceUSDT decimal.Decimal
	staleSession   time.Duration
}

func New(
	ledgerSvc service.LedgerService,
	adminSvc service.AdminService,
	analyticsSvc service.AnalyticsService,
	sessionSvc service.SessionService,
	publisher messaging.AlertPublisher,
	cfg *config.Config,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Trading.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone: %w", err)
	}

	return &Scheduler{
		cron:           cron.New(cron.WithLocation(loc)),
		ledger:         ledgerSvc,
		admin:          adminSvc,
		analytics:      analyticsSvc,
		sessions:       sessionSvc,
		publisher:      publisher,
		resetTime:      cfg.Trading.DailyResetTime,
		lowBalanceUSDT: decimal.NewFromFloat(cfg.Trading.LowBalanceUSDT),
		staleSession:   12 * time.Hour,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	resetSpec, err := cronSpecFromResetTime(s.resetTime)
	if err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(resetSpec, s.dailySnapshot); err != nil {
		return fmt.Errorf("failed to schedule daily snapshot: %w", err)
	}
	if _, err := s.cron.AddFunc("*/15 * * * *", s.lowBalanceSweep); err != nil {
		return fmt.Errorf("failed to schedule low balance sweep: %w", err)
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.staleSessionSweep); err != nil {
		return fmt.Errorf("failed to schedule stale session sweep: %w", err)
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Scheduler stopped")
}

// cronSpecFromResetTime converts "HH:MM" into a daily cron expression.
func cronSpecFromResetTime(resetTime string) (string, error) {
	t, err := time.Parse("15:04", resetTime)
	if err != nil {
		return "", fmt.Errorf("invalid daily reset time %q: %w", resetTime, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// dailySnapshot logs the closing numbers of the finished trading day and
// warms the analytics cache for the new one.
func (s *Scheduler) dailySnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.analytics.Summary(ctx, ledger.PeriodToday, time.Time{}, time.Time{})
	if err != nil {
		logrus.WithError(err).Error("Daily snapshot failed")
		return
	}

	total, err := s.ledger.TotalCompanyUSDT(ctx)
	if err != nil {
		logrus.WithError(err).Error("Daily snapshot failed to read company balance")
		return
	}

	logrus.WithFields(logrus.Fields{
		"net_profit":   summary.Profit.NetProfit.String(),
		"total_volume": summary.TotalVolume.String(),
		"trade_count":  summary.TradeCount,
		"company_usdt": total.String(),
	}).Info("Daily trading snapshot")
}

// lowBalanceSweep alerts on every platform below the configured threshold.
func (s *Scheduler) lowBalanceSweep() {
	if s.publisher == nil || s.lowBalanceUSDT.IsZero() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	platforms, err := s.ledger.PlatformBalances(ctx)
	if err != nil {
		logrus.WithError(err).Error("Low balance sweep failed")
		return
	}

	for _, platform := range platforms {
		if platform.USDT.GreaterThanOrEqual(s.lowBalanceUSDT) {
			continue
		}
		if err := s.publisher.PublishLowBalance(ctx, platform.Name, platform.USDT, s.lowBalanceUSDT); err != nil {
			logrus.WithError(err).WithField("platform", platform.Name).
				Warn("Failed to publish low balance alert")
		}
	}
}

// staleSessionSweep force-closes sessions left open past the cutoff, so
// forgotten logouts do not inflate the active-trader numbers.
func (s *Scheduler) staleSessionSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.staleSession)

	users, err := s.admin.GetUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("Stale session sweep failed")
		return
	}

	for _, user := range users {
		if !user.IsLoggedIn || user.LoginTime.After(cutoff) {
			continue
		}
		if _, err := s.sessions.RecordLogout(ctx, user.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", user.UserID).
				Warn("Failed to close stale session")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    user.UserID,
			"login_time": user.LoginTime,
		}).Info("Closed stale session")
	}
}
