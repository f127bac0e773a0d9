package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func tx(txType string, usdt, php, fee float64, ts time.Time) *models.Transaction {
	return &models.Transaction{
		Type:       txType,
		Status:     models.StatusCompleted,
		USDTAmount: decimal.NewFromFloat(usdt),
		PHPAmount:  decimal.NewFromFloat(php),
		Fee:        decimal.NewFromFloat(fee),
		Timestamp:  ts,
	}
}

func TestWeightedAverageRate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		txs      []*models.Transaction
		expected string
	}{
		{
			name:     "empty set yields zero",
			txs:      nil,
			expected: "0",
		},
		{
			name: "single transaction",
			txs: []*models.Transaction{
				tx(models.TypeBuy, 100, 5600, 0, now),
			},
			expected: "56",
		},
		{
			name: "weighted by volume, not simple average",
			txs: []*models.Transaction{
				tx(models.TypeBuy, 100, 5600, 0, now),
				tx(models.TypeBuy, 300, 17100, 0, now),
			},
			// (5600 + 17100) / (100 + 300) = 56.75
			expected: "56.75",
		},
		{
			name: "zero USDT denominator yields zero",
			txs: []*models.Transaction{
				tx(models.TypeBuy, 0, 5000, 0, now),
			},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverageRate(tt.txs)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestAverageRatesByType(t *testing.T) {
	now := time.Now()
	txs := []*models.Transaction{
		tx(models.TypeBuy, 100, 5600, 0, now),
		tx(models.TypeSell, 50, 2850, 0, now),
		tx(models.TypeBuy, 100, 5700, 0, now),
	}

	assert.True(t, AverageBuyRate(txs).Equal(decimal.RequireFromString("56.5")))
	assert.True(t, AverageSellRate(txs).Equal(decimal.RequireFromString("57")))
}

func TestAverageRate_MissingSideYieldsZero(t *testing.T) {
	now := time.Now()
	buysOnly := []*models.Transaction{
		tx(models.TypeBuy, 100, 5600, 0, now),
	}

	assert.True(t, AverageSellRate(buysOnly).IsZero())
}

func TestTotals(t *testing.T) {
	now := time.Now()
	txs := []*models.Transaction{
		tx(models.TypeBuy, 100, 5600, 10, now),
		tx(models.TypeSell, 40, 2280, 5, now),
	}

	assert.True(t, TotalUSDT(txs).Equal(decimal.NewFromInt(140)))
	assert.True(t, TotalPHP(txs).Equal(decimal.NewFromInt(7880)))
	assert.True(t, TotalFees(txs).Equal(decimal.NewFromInt(15)))
}

func TestFilterByType(t *testing.T) {
	now := time.Now()
	txs := []*models.Transaction{
		tx(models.TypeBuy, 100, 5600, 0, now),
		tx(models.TypeSell, 50, 2850, 0, now),
		tx(models.TypeInternalTransfer, 20, 0, 0, now),
	}

	assert.Len(t, FilterByType(txs, models.TypeBuy), 1)
	assert.Len(t, FilterByType(txs, models.TypeSell), 1)
	assert.Len(t, FilterByType(txs, models.TypeInternalTransfer), 1)
}
