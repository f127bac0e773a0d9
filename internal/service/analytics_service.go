package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/analytics"
	"baryabazaar-api/internal/cache"
	"baryabazaar-api/internal/config"
	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/messaging"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/monitoring"
	"baryabazaar-api/internal/repository"
)

// AnalyticsSummary is the full reporting payload for one period. All values
// derive from the completed transactions inside the resolved window.
type AnalyticsSummary struct {
	Period        string                   `json:"period"`
	WindowStart   time.Time                `json:"window_start"`
	WindowEnd     time.Time                `json:"window_end"`
	Profit        analytics.ProfitResult   `json:"profit"`
	Trends        analytics.TrendResult    `json:"trends"`
	Risk          analytics.RiskResult     `json:"risk"`
	Forecast      analytics.ForecastResult `json:"forecast"`
	TotalVolume   decimal.Decimal          `json:"total_volume"`
	TotalRevenue  decimal.Decimal          `json:"total_revenue"`
	TradeCount    int                      `json:"trade_count"`
	ActiveTraders int64                    `json:"active_traders"`
	ROIPercent    decimal.Decimal          `json:"roi_percent"`
}

// RateSummary carries the weighted average rates of a period.
type RateSummary struct {
	Period       string          `json:"period"`
	AvgBuyRate   decimal.Decimal `json:"avg_buy_rate"`
	AvgSellRate  decimal.Decimal `json:"avg_sell_rate"`
	WeightedRate decimal.Decimal `json:"weighted_rate"`
}

// AnalyticsService serves derived reporting metrics. It is read-only over
// the ledger: a retrieval failure degrades the summary to zero values rather
// than failing the report.
type AnalyticsService interface {
	Summary(ctx context.Context, period string, customStart, customEnd time.Time) (*AnalyticsSummary, error)
	Rates(ctx context.Context, period string) (*RateSummary, error)
}

type analyticsService struct {
	txRepo      repository.TransactionRepository
	sessionRepo repository.SessionRepository
	cache       cache.BalanceCache
	publisher   messaging.AlertPublisher
	metrics     *monitoring.Metrics
	windower    *ledger.Windower

	profit   *analytics.ProfitCalculator
	trends   *analytics.TrendCalculator
	risk     *analytics.RiskCalculator
	forecast *analytics.ForecastCalculator

	location         *time.Location
	totalInvestedPHP decimal.Decimal
	analyticsTTL     time.Duration
}

func NewAnalyticsService(
	txRepo repository.TransactionRepository,
	sessionRepo repository.SessionRepository,
	analyticsCache cache.BalanceCache,
	publisher messaging.AlertPublisher,
	metrics *monitoring.Metrics,
	windower *ledger.Windower,
	cfg *config.Config,
) AnalyticsService {
	loc, err := time.LoadLocation(cfg.Trading.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return &analyticsService{
		txRepo:           txRepo,
		sessionRepo:      sessionRepo,
		cache:            analyticsCache,
		publisher:        publisher,
		metrics:          metrics,
		windower:         windower,
		profit:           analytics.NewProfitCalculator(),
		trends:           analytics.NewTrendCalculator(),
		risk:             analytics.NewRiskCalculator(),
		forecast:         analytics.NewForecastCalculator(),
		location:         loc,
		totalInvestedPHP: decimal.NewFromFloat(cfg.Trading.TotalInvestedPHP),
		analyticsTTL:     cfg.Redis.AnalyticsTTL,
	}
}

// Summary computes the full analytics payload for a period. Named periods
// are cached briefly; custom windows always hit the store.
func (s *analyticsService) Summary(ctx context.Context, period string, customStart, customEnd time.Time) (*AnalyticsSummary, error) {
	cacheable := period != ledger.PeriodCustom
	cacheKey := cache.KeyAnalyticsPrefix + period

	if cacheable && s.cache != nil {
		var cached AnalyticsSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	start, end := customStart, customEnd
	if cacheable {
		start, end = s.windower.Window(period, time.Now())
	}

	summary := &AnalyticsSummary{
		Period:      period,
		WindowStart: start,
		WindowEnd:   end,
	}

	txs, err := s.txRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		// Reports degrade to zero values instead of failing outright.
		logrus.WithError(err).Error("Failed to load transactions for analytics, returning zero summary")
		if s.publisher != nil {
			if pubErr := s.publisher.PublishSystemError(ctx, "analytics",
				fmt.Sprintf("analytics summary for period %s degraded to zero values: %v", period, err)); pubErr != nil {
				logrus.WithError(pubErr).Warn("Failed to publish system error alert")
			} else if s.metrics != nil {
				s.metrics.RecordAlertPublished(messaging.AlertSystemError)
			}
		}
		return summary, nil
	}

	completed := completedTrades(txs)

	summary.Profit = s.profit.Calculate(completed)
	summary.Trends = s.trends.Calculate(completed, start, end)
	summary.Risk = s.risk.Calculate(completed)
	summary.Forecast = s.forecast.Calculate(completed, s.location)
	summary.TotalVolume = ledger.TotalUSDT(completed)
	summary.TotalRevenue = ledger.TotalPHP(ledger.FilterByType(completed, models.TypeSell))
	summary.TradeCount = len(completed)

	if s.sessionRepo != nil {
		s.fillActiveTraders(ctx, summary, start, end)
	}

	if !s.totalInvestedPHP.IsZero() {
		summary.ROIPercent = summary.Profit.NetProfit.Div(s.totalInvestedPHP).Mul(decimal.NewFromInt(100))
	}

	if s.metrics != nil {
		s.metrics.RecordProfitComputation()
	}

	if cacheable && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.analyticsTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache analytics summary")
		}
	}

	return summary, nil
}

// Rates reports the weighted average buy, sell and overall rates of a period.
func (s *analyticsService) Rates(ctx context.Context, period string) (*RateSummary, error) {
	start, end := s.windower.Window(period, time.Now())

	txs, err := s.txRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	completed := completedTrades(txs)

	return &RateSummary{
		Period:       period,
		AvgBuyRate:   ledger.AverageBuyRate(completed),
		AvgSellRate:  ledger.AverageSellRate(completed),
		WeightedRate: ledger.WeightedAverageRate(completed),
	}, nil
}

// fillActiveTraders sets the active-trader count for the window and its
// split-half delta, mirroring the transaction-derived trend metrics.
func (s *analyticsService) fillActiveTraders(ctx context.Context, summary *AnalyticsSummary, start, end time.Time) {
	sinceStart, err := s.sessionRepo.CountActiveSince(ctx, start)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count active traders")
		return
	}
	summary.ActiveTraders = sinceStart

	mid := analytics.Midpoint(start, end)
	sinceMid, err := s.sessionRepo.CountActiveSince(ctx, mid)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count active traders for trend delta")
		return
	}

	older := sinceStart - sinceMid
	summary.Trends.ActiveTradersChange = analytics.PercentChange(
		decimal.NewFromInt(older), decimal.NewFromInt(sinceMid))
}

// completedTrades keeps only completed BUY/SELL records; pending, rejected
// and transfer entries carry no analytics weight.
func completedTrades(txs []*models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status != models.StatusCompleted {
			continue
		}
		if tx.Type != models.TypeBuy && tx.Type != models.TypeSell {
			continue
		}
		out = append(out, tx)
	}
	return out
}
