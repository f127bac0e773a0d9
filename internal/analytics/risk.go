package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/models"
)

// RiskResult carries the simplified risk metrics of a transaction set.
type RiskResult struct {
	Volatility  decimal.Decimal `json:"volatility"`
	MaxDrawdown decimal.Decimal `json:"max_drawdown"`
	SharpeRatio decimal.Decimal `json:"sharpe_ratio"`
}

// RiskCalculator computes volatility, drawdown and a Sharpe-like ratio from
// per-transaction USDT amounts. These are descriptive metrics over recorded
// trades, not portfolio-level statistics; all division-by-zero paths return
// zero.
type RiskCalculator struct{}

func NewRiskCalculator() *RiskCalculator {
	return &RiskCalculator{}
}

// Calculate derives all risk metrics from the given transactions.
func (c *RiskCalculator) Calculate(txs []*models.Transaction) RiskResult {
	amounts := amountSeries(txs)

	return RiskResult{
		Volatility:  Volatility(amounts),
		MaxDrawdown: MaxDrawdown(amounts),
		SharpeRatio: SharpeRatio(returns(amounts)),
	}
}

// Volatility is the population standard deviation of the amount series.
func Volatility(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) < 2 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(amounts))))

	variance := decimal.Zero
	for _, a := range amounts {
		diff := a.Sub(mean)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(amounts))))

	varianceFloat, _ := variance.Float64()
	if varianceFloat <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Sqrt(varianceFloat))
}

// MaxDrawdown walks the amount sequence in chronological order and returns
// the largest peak-to-trough percentage decline.
func MaxDrawdown(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) < 2 {
		return decimal.Zero
	}

	maxDrawdown := decimal.Zero
	peak := amounts[0]
	for _, a := range amounts[1:] {
		if a.GreaterThan(peak) {
			peak = a
			continue
		}
		if peak.IsZero() {
			continue
		}
		drawdown := peak.Sub(a).Div(peak).Mul(hundred)
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}

// SharpeRatio is mean(returns) / stdev(returns), zero when undefined.
func SharpeRatio(rets []decimal.Decimal) decimal.Decimal {
	if len(rets) < 2 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, r := range rets {
		sum = sum.Add(r)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(rets))))

	stdev := Volatility(rets)
	if stdev.IsZero() {
		return decimal.Zero
	}
	return mean.Div(stdev)
}

func amountSeries(txs []*models.Transaction) []decimal.Decimal {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	amounts := make([]decimal.Decimal, 0, len(ordered))
	for _, tx := range ordered {
		amounts = append(amounts, tx.USDTAmount)
	}
	return amounts
}

func returns(amounts []decimal.Decimal) []decimal.Decimal {
	if len(amounts) < 2 {
		return nil
	}
	rets := make([]decimal.Decimal, 0, len(amounts)-1)
	for i := 1; i < len(amounts); i++ {
		if amounts[i-1].IsZero() {
			continue
		}
		rets = append(rets, amounts[i].Sub(amounts[i-1]).Div(amounts[i-1]))
	}
	return rets
}
