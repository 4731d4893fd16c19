// Package worker drives the engine's periodic sweeps: recurring template
// materialization, budget rollover, threshold alerts, and debt payment
// reminders.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Chinweike99/expense-tracker-backend/internal/backend"
	"github.com/Chinweike99/expense-tracker-backend/internal/services"
)

// Clock supplies the current time. Injected so ticks are deterministic in
// tests.
type Clock func() time.Time

// TickResult aggregates the outcome of one scheduler tick across all four
// sweeps.
type TickResult struct {
	Recurrence services.RecurrenceResult
	Rollover   services.RolloverResult
	Alerts     []services.BudgetAlert
	Reminders  []services.DebtReminder
}

// Scheduler runs the engine's sweeps on a fixed cadence. Each tick fans the
// independent sweeps out concurrently and bounds the whole batch with a
// timeout; entities not reached before the deadline are deferred to the
// next tick by the processors themselves.
type Scheduler struct {
	recurrence *services.RecurrenceProcessor
	rollover   *services.RolloverProcessor
	thresholds *services.ThresholdEvaluator
	debts      *services.DebtService

	tickInterval time.Duration
	batchTimeout time.Duration
	now          Clock
}

func NewScheduler(stores backend.Stores, sink services.NotificationSink, tickInterval, batchTimeout time.Duration) *Scheduler {
	return &Scheduler{
		recurrence:   services.NewRecurrenceProcessor(stores),
		rollover:     services.NewRolloverProcessor(stores),
		thresholds:   services.NewThresholdEvaluator(stores, sink),
		debts:        services.NewDebtService(stores, sink),
		tickInterval: tickInterval,
		batchTimeout: batchTimeout,
		now:          time.Now,
	}
}

// WithClock replaces the scheduler's time source.
func (s *Scheduler) WithClock(clock Clock) *Scheduler {
	s.now = clock
	return s
}

// RunTick executes one full sweep pass at the current clock time. The four
// sweeps are independent and run concurrently; the first error cancels the
// shared context, and partial results from completed sweeps are still
// returned.
func (s *Scheduler) RunTick(ctx context.Context) (TickResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	now := s.now()
	var result TickResult

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.recurrence.ProcessDueTemplates(ctx, now)
		result.Recurrence = r
		return err
	})

	g.Go(func() error {
		r, err := s.rollover.ProcessDueBudgets(ctx, now)
		result.Rollover = r
		return err
	})

	g.Go(func() error {
		alerts, err := s.thresholds.CheckBudgets(ctx, now)
		result.Alerts = alerts
		return err
	})

	g.Go(func() error {
		reminders, err := s.debts.CheckUpcomingPayments(ctx, now)
		result.Reminders = reminders
		return err
	})

	err := g.Wait()

	slog.InfoContext(ctx, "Scheduler tick complete",
		"created", len(result.Recurrence.Created),
		"rollovers", len(result.Rollover.Entries),
		"alerts", len(result.Alerts),
		"reminders", len(result.Reminders),
		"as_of", now.Format(time.RFC3339))

	return result, err
}

// Run ticks immediately, then at every interval until the context is
// cancelled. Tick errors are logged; the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Scheduler started",
		"tick_interval", s.tickInterval,
		"batch_timeout", s.batchTimeout)

	if _, err := s.RunTick(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial tick failed", "error", err)
	}

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Scheduler stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunTick(ctx); err != nil {
				slog.ErrorContext(ctx, "Tick failed", "error", err)
			}
		}
	}
}
