package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

const (
	// ForecastMonth looks back 6 months of history.
	ForecastMonth ForecastMode = "month"
	// ForecastYear looks back 2 years of history.
	ForecastYear ForecastMode = "year"
)

type ForecastMode string

// CategoryForecast projects a category's spending from its historical
// per-period totals.
type CategoryForecast struct {
	// Average is the arithmetic mean of the historical totals.
	Average float64
	// TrendPct is the OLS regression slope of totals against period index,
	// expressed as percentage change per period (slope / average * 100).
	// Zero when fewer than two data points exist.
	TrendPct float64
	// Totals is the historical series the projection was computed from.
	Totals []core.Money
}

// ForecastWindow returns the history window ending at now for a mode:
// 6 months back for month mode, 2 years back for year mode. The caller
// pre-filters the transaction series; Forecast only consumes totals.
func ForecastWindow(mode ForecastMode, now time.Time) (from, to time.Time) {
	if mode == ForecastYear {
		return now.AddDate(-2, 0, 0), now
	}
	return now.AddDate(0, -6, 0), now
}

// Forecast computes per-category averages and trends from monthly totals.
// Pure: history is a pre-aggregated series per category, oldest first.
func Forecast(history map[int64][]core.Money) map[int64]CategoryForecast {
	forecasts := make(map[int64]CategoryForecast, len(history))
	for categoryID, totals := range history {
		if len(totals) == 0 {
			continue
		}
		forecasts[categoryID] = forecastSeries(totals)
	}
	return forecasts
}

// ForecastCategories aggregates a user's monthly category history from the
// store over the mode's window and projects each category.
func ForecastCategories(ctx context.Context, budgets BudgetStore, userID int64, mode ForecastMode, now time.Time) (map[int64]CategoryForecast, error) {
	from, to := ForecastWindow(mode, now)
	history, err := budgets.MonthlyCategoryTotals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	return Forecast(history), nil
}

func forecastSeries(totals []core.Money) CategoryForecast {
	var sum float64
	for _, t := range totals {
		sum += t.Float()
	}
	average := sum / float64(len(totals))

	fc := CategoryForecast{Average: average, Totals: totals}
	if len(totals) < 2 || average == 0 {
		return fc
	}

	// Ordinary least squares slope of totals against period index 0..n-1.
	n := float64(len(totals))
	var sumX, sumY, sumXY, sumXX float64
	for i, t := range totals {
		x, y := float64(i), t.Float()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)

	fc.TrendPct = slope / average * 100
	return fc
}
