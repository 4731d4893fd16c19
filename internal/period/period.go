// Package period maps a period kind and an anchor date onto inclusive
// calendar bounds. Starts normalize to 00:00:00.000 and ends to
// 23:59:59.999 in the anchor's location. All functions are pure.
package period

import (
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// Start returns the first instant of the period containing d.
//
//	weekly:    most recent Sunday on or before d
//	monthly:   first calendar day of d's month
//	quarterly: first day of the month beginning d's quarter
//	yearly:    January 1 of d's year
//
// An unrecognized kind is a programming error surfaced as
// core.ErrInvalidPeriodKind; it is never silently defaulted.
func Start(kind core.PeriodKind, d time.Time) (time.Time, error) {
	switch kind {
	case core.PeriodWeekly:
		return startOfDay(d.AddDate(0, 0, -int(d.Weekday()))), nil
	case core.PeriodMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()), nil
	case core.PeriodQuarterly:
		quarter := (int(d.Month()) - 1) / 3
		return time.Date(d.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, d.Location()), nil
	case core.PeriodYearly:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location()), nil
	default:
		return time.Time{}, core.ErrInvalidPeriodKind
	}
}

// End returns the last instant of the period containing d, one millisecond
// before the next period's start.
func End(kind core.PeriodKind, d time.Time) (time.Time, error) {
	next, err := NextStart(kind, d)
	if err != nil {
		return time.Time{}, err
	}
	return next.Add(-time.Millisecond), nil
}

// NextStart returns the first instant of the period following the one that
// contains d: the day after the current period's end.
func NextStart(kind core.PeriodKind, d time.Time) (time.Time, error) {
	start, err := Start(kind, d)
	if err != nil {
		return time.Time{}, err
	}
	switch kind {
	case core.PeriodWeekly:
		return start.AddDate(0, 0, 7), nil
	case core.PeriodMonthly:
		return start.AddDate(0, 1, 0), nil
	case core.PeriodQuarterly:
		return start.AddDate(0, 3, 0), nil
	default: // yearly; Start already rejected unknown kinds
		return start.AddDate(1, 0, 0), nil
	}
}

// NextEnd returns the last instant of the period following the one that
// contains d. Together with NextStart it preserves the period length for
// rollover successor bounds.
func NextEnd(kind core.PeriodKind, d time.Time) (time.Time, error) {
	next, err := NextStart(kind, d)
	if err != nil {
		return time.Time{}, err
	}
	return End(kind, next)
}

// Bounds returns both ends of the period containing d.
func Bounds(kind core.PeriodKind, d time.Time) (start, end time.Time, err error) {
	if start, err = Start(kind, d); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = End(kind, d); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func startOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
