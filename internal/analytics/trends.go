package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/models"
)

// TrendResult carries the period-over-period percentage change of the core
// reporting metrics. Each delta splits the window at its midpoint and
// compares the recent half against the older half.
type TrendResult struct {
	RevenueChange decimal.Decimal `json:"revenue_change"`
	VolumeChange  decimal.Decimal `json:"volume_change"`
	MarginChange  decimal.Decimal `json:"margin_change"`
	TradesChange  decimal.Decimal `json:"trades_change"`

	// ActiveTradersChange is derived from session counts, not transactions;
	// the caller fills it from the session store over the same half-windows.
	ActiveTradersChange decimal.Decimal `json:"active_traders_change"`
}

// Midpoint returns the instant that splits [start, end] into the two halves
// every trend delta compares.
func Midpoint(start, end time.Time) time.Time {
	return start.Add(end.Sub(start) / 2)
}

// TrendCalculator computes split-half change metrics over a time window.
type TrendCalculator struct {
	profit *ProfitCalculator
}

func NewTrendCalculator() *TrendCalculator {
	return &TrendCalculator{profit: NewProfitCalculator()}
}

// Calculate splits [start, end] at its midpoint and reports the percentage
// change of revenue, volume, margin and trade count between the halves.
func (c *TrendCalculator) Calculate(txs []*models.Transaction, start, end time.Time) TrendResult {
	mid := Midpoint(start, end)

	older := ledger.FilterByWindow(txs, start, mid)
	recent := ledger.FilterByWindow(txs, mid.Add(time.Nanosecond), end)

	olderProfit := c.profit.Calculate(older)
	recentProfit := c.profit.Calculate(recent)

	return TrendResult{
		RevenueChange: PercentChange(olderProfit.NetProfit, recentProfit.NetProfit),
		VolumeChange:  PercentChange(ledger.TotalUSDT(older), ledger.TotalUSDT(recent)),
		MarginChange:  PercentChange(olderProfit.MarginPercent, recentProfit.MarginPercent),
		TradesChange: PercentChange(
			decimal.NewFromInt(int64(len(older))),
			decimal.NewFromInt(int64(len(recent))),
		),
	}
}

// PercentChange returns (recent - older) / older * 100, or zero when the
// older value is zero.
func PercentChange(older, recent decimal.Decimal) decimal.Decimal {
	if older.IsZero() {
		return decimal.Zero
	}
	return recent.Sub(older).Div(older).Mul(hundred)
}
