package ledger

import (
	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/models"
)

// WeightedAverageRate computes the volume-weighted rate of the given
// transactions: sum of fiat legs over sum of USDT legs. It returns zero when
// the USDT denominator is zero, never an error.
func WeightedAverageRate(txs []*models.Transaction) decimal.Decimal {
	totalPHP := decimal.Zero
	totalUSDT := decimal.Zero
	for _, tx := range txs {
		totalPHP = totalPHP.Add(tx.PHPAmount)
		totalUSDT = totalUSDT.Add(tx.USDTAmount)
	}
	if totalUSDT.IsZero() {
		return decimal.Zero
	}
	return totalPHP.Div(totalUSDT)
}

// AverageBuyRate is the volume-weighted rate over the BUY subset.
func AverageBuyRate(txs []*models.Transaction) decimal.Decimal {
	return WeightedAverageRate(FilterByType(txs, models.TypeBuy))
}

// AverageSellRate is the volume-weighted rate over the SELL subset.
func AverageSellRate(txs []*models.Transaction) decimal.Decimal {
	return WeightedAverageRate(FilterByType(txs, models.TypeSell))
}

// FilterByType returns the transactions of the given type.
func FilterByType(txs []*models.Transaction, txType string) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// TotalUSDT sums the USDT legs of the given transactions.
func TotalUSDT(txs []*models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.USDTAmount)
	}
	return total
}

// TotalPHP sums the fiat legs of the given transactions.
func TotalPHP(txs []*models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.PHPAmount)
	}
	return total
}

// TotalFees sums the fees of the given transactions.
func TotalFees(txs []*models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Fee)
	}
	return total
}
