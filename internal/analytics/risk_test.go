package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amounts(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromFloat(v))
	}
	return out
}

func TestVolatility(t *testing.T) {
	t.Run("fewer than two points yields zero", func(t *testing.T) {
		assert.True(t, Volatility(amounts(100)).IsZero())
		assert.True(t, Volatility(nil).IsZero())
	})

	t.Run("constant series yields zero", func(t *testing.T) {
		assert.True(t, Volatility(amounts(100, 100, 100)).IsZero())
	})

	t.Run("population stddev", func(t *testing.T) {
		// mean 20, squared diffs 100+0+100, variance 200/3.
		got := Volatility(amounts(10, 20, 30))
		expected := decimal.NewFromFloat(8.16496580927726)
		assert.True(t, got.Sub(expected).Abs().LessThan(decimal.NewFromFloat(0.0001)),
			"got %s", got.String())
	})
}

func TestMaxDrawdown(t *testing.T) {
	t.Run("monotonic rise has no drawdown", func(t *testing.T) {
		assert.True(t, MaxDrawdown(amounts(10, 20, 30)).IsZero())
	})

	t.Run("largest peak to trough decline", func(t *testing.T) {
		// Peak 100, trough 60 -> 40%.
		got := MaxDrawdown(amounts(50, 100, 60, 80))
		assert.True(t, got.Equal(decimal.NewFromInt(40)), "got %s", got.String())
	})

	t.Run("later higher peak tracked", func(t *testing.T) {
		// Second peak 200, drop to 150 -> 25%.
		got := MaxDrawdown(amounts(100, 90, 200, 150))
		assert.True(t, got.Equal(decimal.NewFromInt(25)), "got %s", got.String())
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("insufficient data yields zero", func(t *testing.T) {
		assert.True(t, SharpeRatio(nil).IsZero())
		assert.True(t, SharpeRatio(amounts(0.1)).IsZero())
	})

	t.Run("zero stdev yields zero", func(t *testing.T) {
		assert.True(t, SharpeRatio(amounts(0.1, 0.1, 0.1)).IsZero())
	})

	t.Run("positive mean over spread", func(t *testing.T) {
		got := SharpeRatio(amounts(0.1, 0.3))
		// mean 0.2, population stdev 0.1 -> 2.
		assert.True(t, got.Sub(decimal.NewFromInt(2)).Abs().LessThan(decimal.NewFromFloat(0.0001)),
			"got %s", got.String())
	})
}
