// Package schedule implements the temporal arithmetic for recurring rules.
// It is pure: no clock access, no persistence. All inputs and outputs are UTC.
package schedule

import (
	"fmt"
	"time"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// InitialNextRun computes the first occurrence of a schedule on or after startAt.
//
// Weekly: the next date whose weekday equals dayOfWeek, counting startAt's own
// weekday as a match. Monthly: the current month's dayOfMonth if that instant
// falls on or after startAt, otherwise the next month's. The time-of-day of
// startAt is preserved in either case.
func InitialNextRun(cadence string, dayOfWeek, dayOfMonth int, startAt time.Time) (time.Time, error) {
	startAt = startAt.UTC()
	switch cadence {
	case model.CadenceWeekly:
		delta := (dayOfWeek - int(startAt.Weekday()) + 7) % 7
		return startAt.AddDate(0, 0, delta), nil
	case model.CadenceMonthly:
		candidate := time.Date(
			startAt.Year(), startAt.Month(), dayOfMonth,
			startAt.Hour(), startAt.Minute(), startAt.Second(), startAt.Nanosecond(),
			time.UTC,
		)
		if candidate.Before(startAt) {
			candidate = candidate.AddDate(0, 1, 0)
		}
		return candidate, nil
	default:
		return time.Time{}, fmt.Errorf("unknown cadence: %q", cadence)
	}
}

// AdvanceOnce moves one cadence step forward from current: +7 days for weekly,
// same day-of-month in the next calendar month for monthly. Because dayOfMonth
// is capped at 28, the monthly step never overflows into the following month.
func AdvanceOnce(current time.Time, cadence string) time.Time {
	if cadence == model.CadenceWeekly {
		return current.AddDate(0, 0, 7)
	}
	return current.AddDate(0, 1, 0)
}

// NextFromNow computes the first strictly future occurrence relative to now.
// Used when a rule's schedule is edited or a paused rule with a stale cursor is
// resumed: the cursor restarts from the present instead of catching up.
func NextFromNow(cadence string, dayOfWeek, dayOfMonth int, now time.Time) (time.Time, error) {
	next, err := InitialNextRun(cadence, dayOfWeek, dayOfMonth, now.UTC())
	if err != nil {
		return time.Time{}, err
	}
	for !next.After(now) {
		next = AdvanceOnce(next, cadence)
	}
	return next, nil
}
