package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func TestNewWindower_FallsBackOnBadInput(t *testing.T) {
	w := NewWindower("Not/AZone", "nonsense")

	assert.Equal(t, time.UTC, w.location)
	assert.Equal(t, 1, w.resetHour)
	assert.Equal(t, 0, w.resetMinute)
}

func TestDailyWindow(t *testing.T) {
	w := NewWindower("UTC", "01:00")

	tests := []struct {
		name          string
		now           time.Time
		expectedStart time.Time
	}{
		{
			name:          "after reset starts at today's reset",
			now:           time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC),
		},
		{
			name:          "before reset starts at yesterday's reset",
			now:           time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC),
		},
		{
			name:          "exactly at reset starts today",
			now:           time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := w.DailyWindow(tt.now)
			assert.True(t, start.Equal(tt.expectedStart), "expected %v, got %v", tt.expectedStart, start)
			assert.True(t, end.Equal(tt.now))
		})
	}
}

func TestWindow_WeekStartsMonday(t *testing.T) {
	w := NewWindower("UTC", "01:00")

	// Wednesday 2026-03-11.
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	start, _ := w.Window(PeriodWeek, now)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.True(t, start.Equal(time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)))

	// Sunday rolls back to the previous Monday, not forward.
	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start, _ = w.Window(PeriodWeek, sunday)
	assert.True(t, start.Equal(time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)))
}

func TestWindow_Month(t *testing.T) {
	w := NewWindower("UTC", "01:00")

	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	start, _ := w.Window(PeriodMonth, now)
	assert.True(t, start.Equal(time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)))

	// First of the month before the reset belongs to the previous month.
	early := time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC)
	start, _ = w.Window(PeriodMonth, early)
	assert.True(t, start.Equal(time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC)))
}

func TestInWindow_Boundaries(t *testing.T) {
	start := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	assert.True(t, InWindow(start, start, end), "start boundary is inclusive")
	assert.True(t, InWindow(end, start, end), "end boundary is inclusive")
	assert.False(t, InWindow(start.Add(-time.Nanosecond), start, end))
	assert.False(t, InWindow(end.Add(time.Nanosecond), start, end))
}

func TestFilterByWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	txs := []*models.Transaction{
		{TransactionID: "in", Timestamp: start.Add(time.Hour)},
		{TransactionID: "at-start", Timestamp: start},
		{TransactionID: "out", Timestamp: start.Add(-time.Hour)},
	}

	got := FilterByWindow(txs, start, end)
	assert.Len(t, got, 2)
}
