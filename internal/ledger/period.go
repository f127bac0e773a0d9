package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"baryabazaar-api/internal/models"
)

// Reporting periods accepted by the windower.
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// Windower resolves reporting periods into concrete time windows using
// calendar boundaries in a configured timezone. The trading day does not
// start at midnight but at a configurable reset time, default 01:00.
type Windower struct {
	location    *time.Location
	resetHour   int
	resetMinute int
}

// NewWindower builds a windower for the given timezone and "HH:MM" daily
// reset time. Unparseable inputs fall back to UTC and 01:00.
func NewWindower(timezone, resetTime string) *Windower {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	hour, minute := 1, 0
	if h, m, err := parseResetTime(resetTime); err == nil {
		hour, minute = h, m
	}

	return &Windower{
		location:    loc,
		resetHour:   hour,
		resetMinute: minute,
	}
}

func parseResetTime(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("reset time must be HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid reset hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid reset minute %q", parts[1])
	}
	return hour, minute, nil
}

// DailyWindow returns the current trading-day window ending at now. If now
// is before today's reset time the window started at yesterday's reset.
func (w *Windower) DailyWindow(now time.Time) (time.Time, time.Time) {
	now = now.In(w.location)
	reset := time.Date(now.Year(), now.Month(), now.Day(), w.resetHour, w.resetMinute, 0, 0, w.location)
	if now.Before(reset) {
		reset = reset.AddDate(0, 0, -1)
	}
	return reset, now
}

// Window resolves a named period into [start, end]. Week and month use
// calendar boundaries; today uses the daily reset time. For custom periods
// the caller supplies the bounds directly and this function is bypassed.
func (w *Windower) Window(period string, now time.Time) (time.Time, time.Time) {
	now = now.In(w.location)

	switch period {
	case PeriodToday:
		return w.DailyWindow(now)
	case PeriodWeek:
		// Week starts Monday at the daily reset time.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := now.AddDate(0, 0, -(weekday - 1))
		start := time.Date(monday.Year(), monday.Month(), monday.Day(), w.resetHour, w.resetMinute, 0, 0, w.location)
		if now.Before(start) {
			start = start.AddDate(0, 0, -7)
		}
		return start, now
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, w.resetHour, w.resetMinute, 0, 0, w.location)
		if now.Before(start) {
			start = start.AddDate(0, -1, 0)
		}
		return start, now
	default:
		return w.DailyWindow(now)
	}
}

// InWindow reports whether the timestamp falls inside [start, end]. The
// start boundary is inclusive; a transaction stamped exactly at a window's
// start belongs to that window.
func InWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}

// FilterByWindow returns the transactions whose timestamps fall in
// [start, end].
func FilterByWindow(txs []*models.Transaction, start, end time.Time) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if InWindow(tx.Timestamp, start, end) {
			out = append(out, tx)
		}
	}
	return out
}
