package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageSnapshot is the consumption in the current day and month windows.
type UsageSnapshot struct {
	Daily   int64
	Monthly int64
}

// UsageLedger keeps per-account prompt counters over UTC day and month
// windows. Increment must be atomic under concurrent calls for the same
// account and returns the counts after the increment. Absent rows read as 0.
type UsageLedger interface {
	GetUsage(ctx context.Context, accountID uuid.UUID, now time.Time) (UsageSnapshot, error)
	Increment(ctx context.Context, accountID uuid.UUID, now time.Time) (UsageSnapshot, error)
	History(ctx context.Context, accountID uuid.UUID, now time.Time, months int) ([]MonthlyUsage, error)
}

// MonthlyUsage is one month window in an account's usage history.
type MonthlyUsage struct {
	PeriodStart time.Time
	Count       int64
}

// DayWindow returns the start of the UTC calendar day containing now.
func DayWindow(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthWindow returns the first instant of the UTC calendar month containing now.
func MonthWindow(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// MonthWindows returns the starts of the last n UTC months ending with the
// month containing now, newest first.
func MonthWindows(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	start := MonthWindow(now)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, -i, 0))
	}
	return out
}

// NextDayWindow returns when the daily counter resets.
func NextDayWindow(now time.Time) time.Time {
	return DayWindow(now).AddDate(0, 0, 1)
}

// NextMonthWindow returns when the monthly counter resets.
func NextMonthWindow(now time.Time) time.Time {
	return MonthWindow(now).AddDate(0, 1, 0)
}
