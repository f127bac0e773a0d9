package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func trade(txType string, usdt, php, fee float64, ts time.Time) *models.Transaction {
	return &models.Transaction{
		Type:       txType,
		Status:     models.StatusCompleted,
		USDTAmount: decimal.NewFromFloat(usdt),
		PHPAmount:  decimal.NewFromFloat(php),
		Fee:        decimal.NewFromFloat(fee),
		Timestamp:  ts,
	}
}

func TestProfitCalculator_Calculate(t *testing.T) {
	now := time.Now()
	calc := NewProfitCalculator()

	t.Run("matched round trip", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5600, 0, now),
			trade(models.TypeSell, 100, 5700, 0, now),
		}

		result := calc.Calculate(txs)

		// avgBuy 56, avgSell 57, matched 100 -> gross 100.
		assert.True(t, result.AvgBuyRate.Equal(decimal.NewFromInt(56)))
		assert.True(t, result.AvgSellRate.Equal(decimal.NewFromInt(57)))
		assert.True(t, result.MatchedVolume.Equal(decimal.NewFromInt(100)))
		assert.True(t, result.GrossProfit.Equal(decimal.NewFromInt(100)))
		assert.True(t, result.NetProfit.Equal(decimal.NewFromInt(100)))
	})

	t.Run("matched volume is the smaller side", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 200, 11200, 0, now),
			trade(models.TypeSell, 50, 2850, 0, now),
		}

		result := calc.Calculate(txs)
		assert.True(t, result.MatchedVolume.Equal(decimal.NewFromInt(50)))
		assert.True(t, result.GrossProfit.Equal(decimal.NewFromInt(50)))
	})

	t.Run("fees subtracted before flooring at zero", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5600, 30, now),
			trade(models.TypeSell, 100, 5700, 30, now),
		}

		result := calc.Calculate(txs)
		assert.True(t, result.TotalFees.Equal(decimal.NewFromInt(60)))
		assert.True(t, result.NetProfit.Equal(decimal.NewFromInt(40)))
	})

	t.Run("loss floors to zero, never negative", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5700, 50, now),
			trade(models.TypeSell, 100, 5600, 0, now),
		}

		result := calc.Calculate(txs)
		assert.True(t, result.GrossProfit.Equal(decimal.NewFromInt(-100)))
		assert.True(t, result.NetProfit.IsZero())
	})

	t.Run("buys only yields zero profit", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5600, 10, now),
		}

		result := calc.Calculate(txs)
		assert.True(t, result.NetProfit.IsZero())
		assert.True(t, result.MatchedVolume.IsZero())
		assert.True(t, result.TotalFees.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 1, result.BuyCount)
		assert.Equal(t, 0, result.SellCount)
	})

	t.Run("empty set yields zero result", func(t *testing.T) {
		result := calc.Calculate(nil)
		assert.True(t, result.NetProfit.IsZero())
		assert.True(t, result.MarginPercent.IsZero())
	})

	t.Run("margin percent", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5000, 0, now),
			trade(models.TypeSell, 100, 5500, 0, now),
		}

		result := calc.Calculate(txs)
		// (55 - 50) / 50 * 100 = 10%
		assert.True(t, result.MarginPercent.Equal(decimal.NewFromInt(10)),
			"got %s", result.MarginPercent.String())
	})
}
