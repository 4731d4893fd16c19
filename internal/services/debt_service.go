package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// reminderLookahead is how far ahead of a due payment a reminder fires.
const reminderLookahead = 3 * 24 * time.Hour

// DebtService combines the pure amortization math with the debt store and
// notification sink.
type DebtService struct {
	debts DebtStore
	sink  NotificationSink
}

func NewDebtService(debts DebtStore, sink NotificationSink) *DebtService {
	return &DebtService{debts: debts, sink: sink}
}

// DebtReminder notifies that a debt payment is coming due.
type DebtReminder struct {
	DebtID        int64
	DebtName      string
	Lender        string
	PaymentAmount core.Money
	DueDate       time.Time
	Balance       core.Money
	AccountID     int64
}

// PaymentRecord is the outcome of recording one real payment: the updated
// debt plus an explicit transaction instruction for the caller to persist.
// The engine does not write the ledger entry itself.
type PaymentRecord struct {
	Debt        core.Debt
	Split       PaymentSplit
	Transaction core.Transaction
}

// PayoffPlan projects the payoff of a stored debt from its current
// balance, optionally with an extra amount added to each payment.
func (s *DebtService) PayoffPlan(ctx context.Context, debtID int64, extraPayment core.Money, now time.Time) (Amortization, error) {
	d, err := s.debts.Debt(ctx, debtID)
	if err != nil {
		return Amortization{}, fmt.Errorf("load debt %d: %w", debtID, err)
	}
	return Amortize(d.CurrentAmount, d.InterestRate, d.PaymentAmount.Add(extraPayment), d.PaymentFrequency, now)
}

// RecordPayment applies a real payment to a stored debt and saves the
// result. The returned transaction instruction carries the full payment
// amount with the principal/interest split in its notes.
func (s *DebtService) RecordPayment(ctx context.Context, debtID int64, amount core.Money, accountID int64, now time.Time) (PaymentRecord, error) {
	if err := amount.Validate(); err != nil {
		return PaymentRecord{}, err
	}

	d, err := s.debts.Debt(ctx, debtID)
	if err != nil {
		return PaymentRecord{}, fmt.Errorf("load debt %d: %w", debtID, err)
	}

	updated, split := ApplyPayment(d, amount, now)
	if err := s.debts.SaveDebt(ctx, updated); err != nil {
		return PaymentRecord{}, fmt.Errorf("save debt %d: %w", debtID, err)
	}

	if updated.IsPaid {
		slog.InfoContext(ctx, "Debt paid off",
			"debt_id", updated.ID,
			"name", updated.Name)
	}

	return PaymentRecord{
		Debt:  updated,
		Split: split,
		Transaction: core.Transaction{
			UserID:      d.UserID,
			AccountID:   accountID,
			Description: fmt.Sprintf("Payment for %s", d.Name),
			Amount:      amount,
			Type:        core.TxExpense,
			Date:        now,
			Notes: fmt.Sprintf("Debt payment: %.2f principal, %.2f interest",
				split.Principal.Float(), split.Interest.Float()),
		},
	}, nil
}

// CheckUpcomingPayments emits a reminder for every unpaid debt whose next
// scheduled payment falls within the look-ahead window. Sink failures are
// logged and skipped; one bad debt never stops the sweep.
func (s *DebtService) CheckUpcomingPayments(ctx context.Context, now time.Time) ([]DebtReminder, error) {
	debts, err := s.debts.FindUnpaidDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("find unpaid debts: %w", err)
	}

	var reminders []DebtReminder
	for _, d := range debts {
		due, err := NextPaymentDate(d.StartDate, d.PaymentFrequency, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to compute next payment date",
				"debt_id", d.ID,
				"error", err)
			continue
		}
		if due.After(now.Add(reminderLookahead)) {
			continue
		}

		reminder := DebtReminder{
			DebtID:        d.ID,
			DebtName:      d.Name,
			Lender:        d.Lender,
			PaymentAmount: d.PaymentAmount,
			DueDate:       due,
			Balance:       d.CurrentAmount,
			AccountID:     d.AccountID,
		}
		reminders = append(reminders, reminder)

		if s.sink != nil {
			if err := s.sink.EmitDebtReminder(ctx, reminder); err != nil {
				slog.WarnContext(ctx, "Failed to emit debt reminder",
					"debt_id", d.ID,
					"error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Debt payment reminder sweep complete",
		"checked", len(debts),
		"reminders", len(reminders))

	return reminders, nil
}

// NextPaymentDate rolls forward from the debt's start date by payment
// frequency until reaching the first scheduled payment on or after now.
func NextPaymentDate(start time.Time, frequency core.PaymentFrequency, now time.Time) (time.Time, error) {
	if err := frequency.Validate(); err != nil {
		return time.Time{}, err
	}
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("start date must be set")
	}

	next := start
	for next.Before(now) {
		switch frequency {
		case core.PayWeekly:
			next = next.AddDate(0, 0, 7)
		case core.PayBiWeekly:
			next = next.AddDate(0, 0, 14)
		case core.PayMonthly:
			next = addMonthsClamped(next, 1)
		case core.PayYearly:
			next = addMonthsClamped(next, 12)
		}
	}
	return next, nil
}
