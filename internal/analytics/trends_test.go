package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		older    string
		recent   string
		expected string
	}{
		{"increase", "100", "150", "50"},
		{"decrease", "100", "75", "-25"},
		{"zero base yields zero", "0", "100", "0"},
		{"no change", "100", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(
				decimal.RequireFromString(tt.older),
				decimal.RequireFromString(tt.recent))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestTrendCalculator_SplitHalf(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	// Older half: 100 USDT volume. Recent half: 150 USDT volume.
	txs := []*models.Transaction{
		trade(models.TypeBuy, 100, 5600, 0, start.Add(6*time.Hour)),
		trade(models.TypeBuy, 150, 8550, 0, start.Add(30*time.Hour)),
	}

	calc := NewTrendCalculator()
	result := calc.Calculate(txs, start, end)

	assert.True(t, result.VolumeChange.Equal(decimal.NewFromInt(50)),
		"got %s", result.VolumeChange.String())
	// One trade in each half.
	assert.True(t, result.TradesChange.IsZero())
}

func TestTrendCalculator_EmptyWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	calc := NewTrendCalculator()

	result := calc.Calculate(nil, start, start.Add(24*time.Hour))
	assert.True(t, result.RevenueChange.IsZero())
	assert.True(t, result.VolumeChange.IsZero())
}
