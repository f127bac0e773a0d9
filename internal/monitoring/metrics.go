package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the Prometheus instruments the ledger records into.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	transactionsTotal     *prometheus.CounterVec
	transactionVolumeUSDT *prometheus.CounterVec
	balanceAdjustments    *prometheus.CounterVec
	versionConflictsTotal prometheus.Counter

	platformBalanceGauge *prometheus.GaugeVec
	profitComputations   prometheus.Counter
	alertsPublished      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		transactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Recorded transactions by type and status",
		}, []string{"type", "status"}),
		transactionVolumeUSDT: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transaction_volume_usdt_total",
			Help: "Cumulative USDT volume by transaction type",
		}, []string{"type"}),
		balanceAdjustments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_balance_adjustments_total",
			Help: "Manual balance adjustments by target kind",
		}, []string{"kind"}),
		versionConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_version_conflicts_total",
			Help: "Optimistic-concurrency conflicts retried on balance writes",
		}),
		platformBalanceGauge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_platform_balance_usdt",
			Help: "Current USDT balance per platform",
		}, []string{"platform"}),
		profitComputations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_profit_computations_total",
			Help: "Analytics profit computations served",
		}),
		alertsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_alerts_published_total",
			Help: "Alert events published by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordTransaction(txType, status string, usdtAmount float64) {
	m.transactionsTotal.WithLabelValues(txType, status).Inc()
	m.transactionVolumeUSDT.WithLabelValues(txType).Add(usdtAmount)
}

func (m *Metrics) RecordBalanceAdjustment(kind string) {
	m.balanceAdjustments.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordVersionConflict() {
	m.versionConflictsTotal.Inc()
}

func (m *Metrics) SetPlatformBalance(platform string, usdt float64) {
	m.platformBalanceGauge.WithLabelValues(platform).Set(usdt)
}

func (m *Metrics) RecordProfitComputation() {
	m.profitComputations.Inc()
}

func (m *Metrics) RecordAlertPublished(alertType string) {
	m.alertsPublished.WithLabelValues(alertType).Inc()
}
