package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// RecurrenceProcessor materializes transaction instances from recurring
// templates that have come due.
type RecurrenceProcessor struct {
	ledger LedgerStore
}

// NewRecurrenceProcessor creates a new recurring transaction processor.
func NewRecurrenceProcessor(ledger LedgerStore) *RecurrenceProcessor {
	return &RecurrenceProcessor{ledger: ledger}
}

// RecurrenceResult reports one batch invocation. Deltas are explicit
// balance-adjustment instructions for the created instances; applying them
// is the caller's job, the engine stays side-effect-free.
type RecurrenceResult struct {
	Created  []core.Transaction
	Deltas   []core.AccountDelta
	Deferred int
	Failures []EntityError
}

// ProcessDueTemplates materializes at most one instance per due template.
// The template's NextOccurrence is advanced with a conditional update
// before the instance is appended, so a retried batch can never
// double-advance nor double-create for the same due timestamp: a stale
// advance is treated as an idempotent no-op. Catch-up beyond the first
// missed occurrence is deliberately left to subsequent ticks.
//
// Failure on one template is logged and skipped; the batch continues. When
// the context deadline expires mid-batch the remaining templates are
// deferred to the next tick, not aborted.
func (p *RecurrenceProcessor) ProcessDueTemplates(ctx context.Context, asOf time.Time) (RecurrenceResult, error) {
	var result RecurrenceResult

	if p.ledger == nil {
		return result, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.ledger.FindDueTemplates(ctx, asOf)
	if err != nil {
		return result, fmt.Errorf("find due templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring templates",
		"total_due", len(templates),
		"as_of", asOf.Format("2006-01-02"))

	for i, tpl := range templates {
		if ctx.Err() != nil {
			result.Deferred = len(templates) - i
			slog.WarnContext(ctx, "Batch deadline reached, deferring remaining templates",
				"deferred", result.Deferred)
			break
		}

		tx, err := p.materialize(ctx, tpl)
		if err != nil {
			if errors.Is(err, core.ErrStaleOccurrence) {
				// Another invocation already advanced this template for the
				// same due timestamp. Safe to skip.
				slog.DebugContext(ctx, "Template already advanced, skipping",
					"template_id", tpl.ID)
				continue
			}
			slog.ErrorContext(ctx, "Failed to process recurring template",
				"template_id", tpl.ID,
				"description", tpl.Description,
				"error", err)
			result.Failures = append(result.Failures, EntityError{ID: tpl.ID, Err: err})
			continue
		}

		result.Created = append(result.Created, tx)
		result.Deltas = append(result.Deltas, tx.BalanceDelta())

		slog.InfoContext(ctx, "Created transaction from recurring template",
			"template_id", tpl.ID,
			"series_id", tx.SeriesID,
			"description", tx.Description,
			"amount_cents", tx.Amount.Cents,
			"date", tx.Date.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Recurring template processing complete",
		"created", len(result.Created),
		"failed", len(result.Failures),
		"deferred", result.Deferred,
		"total_due", len(templates))

	return result, nil
}

// materialize advances the template and appends its instance. The advance
// commits first: a crash between the two steps loses at most one instance,
// never duplicates one.
func (p *RecurrenceProcessor) materialize(ctx context.Context, tpl core.RecurringTemplate) (core.Transaction, error) {
	if err := tpl.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid template: %w", err)
	}

	advancer, err := GetAdvancer(tpl.Frequency)
	if err != nil {
		return core.Transaction{}, err
	}
	next := advancer.Next(tpl.NextOccurrence)

	if err := p.ledger.AdvanceNextOccurrence(ctx, tpl.ID, tpl.NextOccurrence, next); err != nil {
		return core.Transaction{}, fmt.Errorf("advance next occurrence: %w", err)
	}

	tx := core.Transaction{
		UserID:      tpl.UserID,
		AccountID:   tpl.AccountID,
		CategoryID:  tpl.CategoryID,
		Description: tpl.Description,
		Amount:      tpl.Amount,
		Type:        tpl.Type,
		Date:        tpl.NextOccurrence,
		Tags:        tpl.Tags,
		Notes:       tpl.Notes,
		SeriesID:    tpl.Series(),
	}

	id, err := p.ledger.AppendTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	tx.ID = id

	return tx, nil
}

// DisableSeries turns a series off: no further instances are generated and
// NextOccurrence is cleared for every member sharing the series id.
func (p *RecurrenceProcessor) DisableSeries(ctx context.Context, seriesID int64) error {
	if err := p.ledger.ClearSeries(ctx, seriesID); err != nil {
		return fmt.Errorf("clear series %d: %w", seriesID, err)
	}
	slog.InfoContext(ctx, "Recurring series disabled", "series_id", seriesID)
	return nil
}

// ChangeSeriesFrequency applies a frequency change to the whole series,
// not just the member that was edited.
func (p *RecurrenceProcessor) ChangeSeriesFrequency(ctx context.Context, seriesID int64, f core.Frequency) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := p.ledger.SetSeriesFrequency(ctx, seriesID, f); err != nil {
		return fmt.Errorf("set series %d frequency: %w", seriesID, err)
	}
	slog.InfoContext(ctx, "Recurring series frequency changed",
		"series_id", seriesID,
		"frequency", f)
	return nil
}
