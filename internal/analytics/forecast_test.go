package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func TestForecastCalculator_Calculate(t *testing.T) {
	calc := NewForecastCalculator()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty history yields zero forecast", func(t *testing.T) {
		result := calc.Calculate(nil, time.UTC)
		assert.True(t, result.NextPeriodVolume.IsZero())
		assert.True(t, result.Confidence.IsZero())
		assert.Equal(t, 0, result.SampleDays)
	})

	t.Run("single day projects itself", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5600, 0, base),
		}
		result := calc.Calculate(txs, time.UTC)
		assert.True(t, result.NextPeriodVolume.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 1, result.SampleDays)
	})

	t.Run("linear growth projected forward", func(t *testing.T) {
		// Daily volumes 100, 200, 300: slope 100, mean 200.
		txs := []*models.Transaction{
			trade(models.TypeBuy, 100, 5600, 0, base),
			trade(models.TypeBuy, 200, 11200, 0, base.AddDate(0, 0, 1)),
			trade(models.TypeBuy, 300, 16800, 0, base.AddDate(0, 0, 2)),
		}
		result := calc.Calculate(txs, time.UTC)

		// last * (1 + slope/mean) = 300 * 1.5 = 450.
		assert.True(t, result.NextPeriodVolume.Equal(decimal.NewFromInt(450)),
			"got %s", result.NextPeriodVolume.String())
		// slope/mean * 100 = 50%.
		assert.True(t, result.TrendSlope.Equal(decimal.NewFromInt(50)),
			"got %s", result.TrendSlope.String())
		assert.Equal(t, 3, result.SampleDays)
	})

	t.Run("declining volume floors at zero", func(t *testing.T) {
		txs := []*models.Transaction{
			trade(models.TypeBuy, 300, 16800, 0, base),
			trade(models.TypeBuy, 10, 560, 0, base.AddDate(0, 0, 1)),
		}
		result := calc.Calculate(txs, time.UTC)
		assert.False(t, result.NextPeriodVolume.IsNegative())
	})

	t.Run("confidence grows with samples and caps", func(t *testing.T) {
		assert.True(t, confidence(3).Equal(decimal.NewFromInt(3).Div(decimal.NewFromInt(30))))
		assert.True(t, confidence(60).Equal(decimal.NewFromFloat(0.95)))
	})
}
