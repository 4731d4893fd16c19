package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
	"github.com/Chinweike99/expense-tracker-backend/internal/period"
)

// BudgetAlert is the payload emitted when spending crosses a budget's
// notification threshold. Remaining keeps its raw (possibly negative)
// value; flooring it is a display concern. Progress is capped at 100, the
// raw percentage is preserved alongside to signal overspend.
type BudgetAlert struct {
	BudgetID    int64
	BudgetName  string
	CategoryID  int64
	Amount      core.Money
	Spent       core.Money
	Remaining   core.Money
	Progress    int     // min(100, raw), rounded
	RawProgress float64 // may exceed 100 when overspent
	Threshold   int
	Period      core.PeriodKind
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// EvaluateBudget compares live spend against the budget's threshold. It
// returns nil when notifications are disabled or the threshold has not been
// reached. Pure: the spend aggregate is supplied by the caller.
func EvaluateBudget(b core.Budget, spent core.Money, now time.Time) (*BudgetAlert, error) {
	if !b.Notifications.Enabled {
		return nil, nil
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget: %w", err)
	}

	raw := spent.Float() / b.Amount.Float() * 100
	if raw < float64(b.Notifications.Threshold) {
		return nil, nil
	}

	start, end, err := period.Bounds(b.Period, now)
	if err != nil {
		return nil, fmt.Errorf("period bounds: %w", err)
	}

	return &BudgetAlert{
		BudgetID:    b.ID,
		BudgetName:  b.Name,
		CategoryID:  b.CategoryID,
		Amount:      b.Amount,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		Progress:    int(math.Min(100, math.Round(raw))),
		RawProgress: raw,
		Threshold:   b.Notifications.Threshold,
		Period:      b.Period,
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

// ThresholdEvaluator sweeps notifying budgets and pushes alerts to the
// notification sink.
type ThresholdEvaluator struct {
	budgets BudgetStore
	sink    NotificationSink
}

func NewThresholdEvaluator(budgets BudgetStore, sink NotificationSink) *ThresholdEvaluator {
	return &ThresholdEvaluator{budgets: budgets, sink: sink}
}

// CheckBudgets evaluates every budget with notifications enabled against
// its current period spend and emits an alert for each one over threshold.
// Sink failures are logged, not propagated: alert delivery is
// fire-and-forget and never poisons the computation result.
func (e *ThresholdEvaluator) CheckBudgets(ctx context.Context, now time.Time) ([]BudgetAlert, error) {
	budgets, err := e.budgets.ListNotifying(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifying budgets: %w", err)
	}

	var alerts []BudgetAlert
	for _, b := range budgets {
		spent, err := e.budgets.PeriodSpend(ctx, b.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get period spend",
				"budget_id", b.ID,
				"error", err)
			continue
		}

		alert, err := EvaluateBudget(b, spent, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to evaluate budget threshold",
				"budget_id", b.ID,
				"error", err)
			continue
		}
		if alert == nil {
			continue
		}

		alerts = append(alerts, *alert)

		if e.sink != nil {
			if err := e.sink.EmitBudgetAlert(ctx, *alert); err != nil {
				slog.WarnContext(ctx, "Failed to emit budget alert",
					"budget_id", b.ID,
					"error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Budget threshold sweep complete",
		"checked", len(budgets),
		"alerts", len(alerts))

	return alerts, nil
}
