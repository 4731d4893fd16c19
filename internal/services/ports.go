package services

import (
	"context"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// Ports for the collaborator stores. The engine is a library: it consumes a
// persisted ledger through these contracts and emits computed results or
// mutation instructions back, never touching persistence directly.
type (
	// LedgerStore holds recurring templates and their materialized
	// transaction instances.
	LedgerStore interface {
		// FindDueTemplates returns active recurring templates with
		// NextOccurrence <= asOf, scoped per owner by the store.
		FindDueTemplates(ctx context.Context, asOf time.Time) ([]core.RecurringTemplate, error)

		// AdvanceNextOccurrence conditionally moves a template's
		// NextOccurrence from one value to the next. It fails with
		// core.ErrStaleOccurrence when the stored value no longer matches
		// from, which is how the store provides at-most-one in-flight
		// advance per template.
		AdvanceNextOccurrence(ctx context.Context, templateID int64, from, to time.Time) error

		AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error)

		// ClearSeries stops a series: clears NextOccurrence and the
		// recurring flag for every template and instance sharing seriesID.
		ClearSeries(ctx context.Context, seriesID int64) error

		// SetSeriesFrequency changes the frequency for the whole series,
		// not just one member.
		SetSeriesFrequency(ctx context.Context, seriesID int64, f core.Frequency) error
	}

	BudgetStore interface {
		// FindDueBudgets returns recurring budgets whose EndDate <= asOf,
		// plus open-ended recurring budgets (no EndDate), which the
		// rollover processor demotes to non-recurring.
		FindDueBudgets(ctx context.Context, asOf time.Time) ([]core.Budget, error)

		// PeriodSpend is the aggregated expense total for the budget's
		// category within its current period.
		PeriodSpend(ctx context.Context, budgetID int64) (core.Money, error)

		CreateBudget(ctx context.Context, b core.Budget) (int64, error)

		SetRecurring(ctx context.Context, budgetID int64, recurring bool) error

		// SuccessorExists reports whether a rollover successor starting at
		// startDate was already created for the budget. Guards idempotency
		// of rollover processing per closed period.
		SuccessorExists(ctx context.Context, budgetID int64, startDate time.Time) (bool, error)

		// ListNotifying returns budgets with notifications enabled.
		ListNotifying(ctx context.Context) ([]core.Budget, error)

		// MonthlyCategoryTotals returns per-category expense totals grouped
		// by calendar month, ordered oldest first, for the owner's
		// transactions between from and to. Each series is dense: months
		// with no expenses between a category's first and last observed
		// month carry a zero total, so slice index i is always the i-th
		// calendar month of the series.
		MonthlyCategoryTotals(ctx context.Context, userID int64, from, to time.Time) (map[int64][]core.Money, error)
	}

	DebtStore interface {
		Debt(ctx context.Context, id int64) (core.Debt, error)
		SaveDebt(ctx context.Context, d core.Debt) error
		FindUnpaidDebts(ctx context.Context) ([]core.Debt, error)
	}

	// NotificationSink delivers alerts. Emission is fire-and-forget from
	// the engine's perspective: failures are logged, never folded into a
	// batch result.
	NotificationSink interface {
		EmitBudgetAlert(ctx context.Context, alert BudgetAlert) error
		EmitDebtReminder(ctx context.Context, reminder DebtReminder) error
	}
)

// EntityError records a single entity's failure inside a batch. One bad
// entity never aborts the rest of the batch.
type EntityError struct {
	ID  int64
	Err error
}
