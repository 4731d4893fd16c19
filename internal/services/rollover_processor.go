package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
	"github.com/Chinweike99/expense-tracker-backend/internal/period"
)

// RolloverProcessor closes recurring budgets whose period has ended and
// schedules their successors, carrying unspent amounts forward per policy.
type RolloverProcessor struct {
	budgets BudgetStore
}

func NewRolloverProcessor(budgets BudgetStore) *RolloverProcessor {
	return &RolloverProcessor{budgets: budgets}
}

// RolloverEntry describes the outcome for one closed budget.
type RolloverEntry struct {
	ClosedBudgetID    int64
	NewBudgetID       int64 // zero when no successor was created
	RolloverAmount    core.Money
	NewStart          time.Time
	NewEnd            time.Time
	RecurrenceStopped bool // open-ended budget demoted instead of rolled
}

type RolloverResult struct {
	Entries  []RolloverEntry
	Deferred int
	Failures []EntityError
}

// ProcessDueBudgets handles every recurring budget due at asOf. Remaining
// budget never carries over negative: overspent periods roll zero. A
// successor is only created when the rollover amount is positive, and at
// most once per closed period: a successor already starting at the computed
// date makes the budget a no-op on retry.
func (p *RolloverProcessor) ProcessDueBudgets(ctx context.Context, asOf time.Time) (RolloverResult, error) {
	var result RolloverResult

	if p.budgets == nil {
		return result, fmt.Errorf("processor not properly initialized")
	}

	due, err := p.budgets.FindDueBudgets(ctx, asOf)
	if err != nil {
		return result, fmt.Errorf("find due budgets: %w", err)
	}

	slog.InfoContext(ctx, "Processing budget rollovers",
		"total_due", len(due),
		"as_of", asOf.Format("2006-01-02"))

	for i, b := range due {
		if ctx.Err() != nil {
			result.Deferred = len(due) - i
			slog.WarnContext(ctx, "Batch deadline reached, deferring remaining budgets",
				"deferred", result.Deferred)
			break
		}

		entry, err := p.rollover(ctx, b)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process budget rollover",
				"budget_id", b.ID,
				"name", b.Name,
				"error", err)
			result.Failures = append(result.Failures, EntityError{ID: b.ID, Err: err})
			continue
		}
		if entry != nil {
			result.Entries = append(result.Entries, *entry)
		}
	}

	slog.InfoContext(ctx, "Budget rollover processing complete",
		"processed", len(result.Entries),
		"failed", len(result.Failures),
		"deferred", result.Deferred)

	return result, nil
}

// rollover handles one due budget. A nil entry means the budget was already
// processed for this period.
func (p *RolloverProcessor) rollover(ctx context.Context, b core.Budget) (*RolloverEntry, error) {
	// An open-ended budget never had a period boundary to roll at; stop its
	// recurrence instead.
	if b.OpenEnded() {
		if err := p.budgets.SetRecurring(ctx, b.ID, false); err != nil {
			return nil, fmt.Errorf("disable recurrence: %w", err)
		}
		slog.InfoContext(ctx, "Open-ended recurring budget demoted",
			"budget_id", b.ID,
			"name", b.Name)
		return &RolloverEntry{ClosedBudgetID: b.ID, RecurrenceStopped: true}, nil
	}

	newStart, err := period.NextStart(b.Period, b.EndDate)
	if err != nil {
		return nil, fmt.Errorf("compute successor start: %w", err)
	}
	newEnd, err := period.End(b.Period, newStart)
	if err != nil {
		return nil, fmt.Errorf("compute successor end: %w", err)
	}

	exists, err := p.budgets.SuccessorExists(ctx, b.ID, newStart)
	if err != nil {
		return nil, fmt.Errorf("check successor: %w", err)
	}
	if exists {
		slog.DebugContext(ctx, "Rollover successor already exists, skipping",
			"budget_id", b.ID,
			"successor_start", newStart.Format("2006-01-02"))
		return nil, nil
	}

	spent, err := p.budgets.PeriodSpend(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("period spend: %w", err)
	}

	remaining := b.Amount.Sub(spent).ClampFloor()
	rollover := rolloverAmount(b.Rollover, remaining)

	entry := &RolloverEntry{
		ClosedBudgetID: b.ID,
		RolloverAmount: rollover,
		NewStart:       newStart,
		NewEnd:         newEnd,
	}

	if rollover.Cents <= 0 {
		slog.InfoContext(ctx, "Budget closed without rollover",
			"budget_id", b.ID,
			"name", b.Name,
			"policy", b.Rollover.Type)
		return entry, nil
	}

	successor := core.Budget{
		UserID:        b.UserID,
		Name:          b.Name,
		Amount:        b.Amount.Add(rollover),
		Period:        b.Period,
		StartDate:     newStart,
		EndDate:       newEnd,
		CategoryID:    b.CategoryID,
		IsRecurring:   b.IsRecurring,
		Rollover:      b.Rollover,
		Notifications: b.Notifications,
		PredecessorID: b.ID,
	}

	newID, err := p.budgets.CreateBudget(ctx, successor)
	if err != nil {
		return nil, fmt.Errorf("create successor budget: %w", err)
	}
	entry.NewBudgetID = newID

	slog.InfoContext(ctx, "Budget rolled over",
		"budget_id", b.ID,
		"successor_id", newID,
		"rollover_cents", rollover.Cents,
		"new_start", newStart.Format("2006-01-02"),
		"new_end", newEnd.Format("2006-01-02"))

	return entry, nil
}

// rolloverAmount applies the rollover policy to the clamped remaining
// amount. For partial policy the result is bounded by both the remaining
// amount and the policy's maximum.
func rolloverAmount(policy core.RolloverPolicy, remaining core.Money) core.Money {
	switch policy.Type {
	case core.RolloverFull:
		return remaining
	case core.RolloverPartial:
		return core.MinMoney(remaining, policy.MaxAmount)
	default:
		return core.Money{}
	}
}
