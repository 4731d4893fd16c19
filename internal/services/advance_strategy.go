// Package services provides the scheduling engine's business logic.
//
// This file implements the Strategy Pattern for advancing a recurring
// template's next occurrence. Each frequency (daily, weekly, monthly,
// yearly) has its own strategy encapsulating the calendar arithmetic.
package services

import (
	"fmt"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// OccurrenceAdvancer is the strategy interface for computing the occurrence
// following from. Implementations must be strictly monotonic: the result is
// always after from.
type OccurrenceAdvancer interface {
	Next(from time.Time) time.Time
}

// DailyAdvancer implements OccurrenceAdvancer for daily templates.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(from time.Time) time.Time {
	return from.AddDate(0, 0, 1)
}

// WeeklyAdvancer implements OccurrenceAdvancer for weekly templates.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(from time.Time) time.Time {
	return from.AddDate(0, 0, 7)
}

// MonthlyAdvancer implements OccurrenceAdvancer for monthly templates.
// The day of month is preserved, clamped to the target month's length
// (Jan 31 advances to Feb 28, or Feb 29 in a leap year).
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(from time.Time) time.Time {
	return addMonthsClamped(from, 1)
}

// YearlyAdvancer implements OccurrenceAdvancer for yearly templates.
// Feb 29 clamps to Feb 28 in non-leap years.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(from time.Time) time.Time {
	return addMonthsClamped(from, 12)
}

func addMonthsClamped(from time.Time, months int) time.Time {
	firstOfMonth := time.Date(from.Year(), from.Month(), 1,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	target := firstOfMonth.AddDate(0, months, 0)

	day := from.Day()
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// advanceStrategies maps frequencies to their corresponding advancers.
var advanceStrategies = map[core.Frequency]OccurrenceAdvancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancer for a frequency.
// Returns an error if the frequency is not supported.
func GetAdvancer(frequency core.Frequency) (OccurrenceAdvancer, error) {
	advancer, ok := advanceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s: %w", frequency, core.ErrInvalidFrequency)
	}
	return advancer, nil
}

// RegisterAdvancer allows registering custom advancers for new frequencies
// without modifying the dispatch.
func RegisterAdvancer(frequency core.Frequency, advancer OccurrenceAdvancer) {
	advanceStrategies[frequency] = advancer
}
