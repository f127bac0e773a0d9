package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/models"
)

// ForecastResult is a low-confidence heuristic projection of next-period
// trading volume, not a statistical forecast.
type ForecastResult struct {
	NextPeriodVolume decimal.Decimal `json:"next_period_volume"`
	TrendSlope       decimal.Decimal `json:"trend_slope"`
	Confidence       decimal.Decimal `json:"confidence"`
	SampleDays       int             `json:"sample_days"`
}

// ForecastCalculator projects next-period volume from daily volume history.
type ForecastCalculator struct{}

func NewForecastCalculator() *ForecastCalculator {
	return &ForecastCalculator{}
}

var maxConfidence = decimal.NewFromFloat(0.95)

// Calculate buckets the transactions into daily volumes in the given
// location, fits an ordinary least-squares line over (day-index, volume)
// pairs, normalizes the slope by mean volume, and projects the last observed
// day forward by that percentage. Confidence grows with sample size and is
// capped at 95%.
func (c *ForecastCalculator) Calculate(txs []*models.Transaction, loc *time.Location) ForecastResult {
	volumes := dailyVolumes(txs, loc)

	result := ForecastResult{
		NextPeriodVolume: decimal.Zero,
		TrendSlope:       decimal.Zero,
		Confidence:       decimal.Zero,
		SampleDays:       len(volumes),
	}
	if len(volumes) == 0 {
		return result
	}

	last := volumes[len(volumes)-1]
	result.Confidence = confidence(len(volumes))

	if len(volumes) < 2 {
		result.NextPeriodVolume = last
		return result
	}

	mean := decimal.Zero
	for _, v := range volumes {
		mean = mean.Add(v)
	}
	mean = mean.Div(decimal.NewFromInt(int64(len(volumes))))

	slope := olsSlope(volumes)
	if !mean.IsZero() {
		result.TrendSlope = slope.Div(mean).Mul(hundred)
	}

	growth := decimal.NewFromInt(1)
	if !mean.IsZero() {
		growth = growth.Add(slope.Div(mean))
	}
	projected := last.Mul(growth)
	if projected.IsNegative() {
		projected = decimal.Zero
	}
	result.NextPeriodVolume = projected

	return result
}

// olsSlope fits volume = a + b*dayIndex by least squares and returns b.
func olsSlope(volumes []decimal.Decimal) decimal.Decimal {
	n := decimal.NewFromInt(int64(len(volumes)))

	sumX := decimal.Zero
	sumY := decimal.Zero
	sumXY := decimal.Zero
	sumXX := decimal.Zero
	for i, v := range volumes {
		x := decimal.NewFromInt(int64(i))
		sumX = sumX.Add(x)
		sumY = sumY.Add(v)
		sumXY = sumXY.Add(x.Mul(v))
		sumXX = sumXX.Add(x.Mul(x))
	}

	denominator := n.Mul(sumXX).Sub(sumX.Mul(sumX))
	if denominator.IsZero() {
		return decimal.Zero
	}
	return n.Mul(sumXY).Sub(sumX.Mul(sumY)).Div(denominator)
}

// confidence is a monotonic function of sample size capped at 95%.
func confidence(sampleDays int) decimal.Decimal {
	c := decimal.NewFromInt(int64(sampleDays)).Div(decimal.NewFromInt(30))
	if c.GreaterThan(maxConfidence) {
		return maxConfidence
	}
	return c
}

func dailyVolumes(txs []*models.Transaction, loc *time.Location) []decimal.Decimal {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		day := tx.Timestamp.In(loc).Format("2006-01-02")
		byDay[day] = byDay[day].Add(tx.USDTAmount)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	volumes := make([]decimal.Decimal, 0, len(days))
	for _, day := range days {
		volumes = append(volumes, byDay[day])
	}
	return volumes
}
