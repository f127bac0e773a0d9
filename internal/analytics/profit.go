package analytics

import (
	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/models"
)

// ProfitResult is the realized-profit breakdown over a transaction set.
type ProfitResult struct {
	AvgBuyRate    decimal.Decimal `json:"avg_buy_rate"`
	AvgSellRate   decimal.Decimal `json:"avg_sell_rate"`
	MatchedVolume decimal.Decimal `json:"matched_volume"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	BuyVolume     decimal.Decimal `json:"buy_volume"`
	SellVolume    decimal.Decimal `json:"sell_volume"`
	BuyCount      int             `json:"buy_count"`
	SellCount     int             `json:"sell_count"`
}

// ProfitCalculator computes realized profit from transaction sets. It never
// errors: degenerate input yields a zero result.
type ProfitCalculator struct{}

func NewProfitCalculator() *ProfitCalculator {
	return &ProfitCalculator{}
}

var hundred = decimal.NewFromInt(100)

// Calculate computes realized profit over the given transactions.
//
// Profit is only realized on matched volume, the smaller of total bought and
// total sold USDT: gross = (avgSellRate - avgBuyRate) * matchedVolume. Fees
// across the whole set are always subtracted before flooring at zero; a
// trading loss is reported as zero profit, not a negative number.
func (c *ProfitCalculator) Calculate(txs []*models.Transaction) ProfitResult {
	buys := ledger.FilterByType(txs, models.TypeBuy)
	sells := ledger.FilterByType(txs, models.TypeSell)

	result := ProfitResult{
		AvgBuyRate:    decimal.Zero,
		AvgSellRate:   decimal.Zero,
		MatchedVolume: decimal.Zero,
		GrossProfit:   decimal.Zero,
		TotalFees:     ledger.TotalFees(txs),
		NetProfit:     decimal.Zero,
		MarginPercent: decimal.Zero,
		BuyVolume:     ledger.TotalUSDT(buys),
		SellVolume:    ledger.TotalUSDT(sells),
		BuyCount:      len(buys),
		SellCount:     len(sells),
	}

	// No realized round-trip without both legs.
	if len(buys) == 0 || len(sells) == 0 {
		return result
	}

	result.AvgBuyRate = ledger.WeightedAverageRate(buys)
	result.AvgSellRate = ledger.WeightedAverageRate(sells)

	result.MatchedVolume = result.BuyVolume
	if result.SellVolume.LessThan(result.BuyVolume) {
		result.MatchedVolume = result.SellVolume
	}

	result.GrossProfit = result.AvgSellRate.Sub(result.AvgBuyRate).Mul(result.MatchedVolume)

	net := result.GrossProfit.Sub(result.TotalFees)
	if net.IsNegative() {
		net = decimal.Zero
	}
	result.NetProfit = net

	if !result.AvgBuyRate.IsZero() {
		result.MarginPercent = result.AvgSellRate.Sub(result.AvgBuyRate).
			Div(result.AvgBuyRate).Mul(hundred)
	}

	return result
}
