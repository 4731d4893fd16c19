package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
	"github.com/Chinweike99/expense-tracker-backend/internal/memory"
	"github.com/Chinweike99/expense-tracker-backend/internal/services"
)

func carLoan() core.Debt {
	return core.Debt{
		UserID:           7,
		AccountID:        3,
		Name:             "Car loan",
		Lender:           "Credit Union",
		InitialAmount:    core.NewMoney(1000000),
		CurrentAmount:    core.NewMoney(100000),
		InterestRate:     12,
		PaymentFrequency: core.PayMonthly,
		PaymentAmount:    core.NewMoney(30000),
		StartDate:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecordPayment(t *testing.T) {
	store := memory.NewDebts()
	id := store.AddDebt(carLoan())
	svc := services.NewDebtService(store, nil)
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	rec, err := svc.RecordPayment(context.Background(), id, core.NewMoney(30000), 3, now)
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	// 1000.00 at 1%/month: 10.00 interest, 290.00 principal.
	if rec.Split.Interest.Cents != 1000 {
		t.Errorf("interest = %d cents, want 1000", rec.Split.Interest.Cents)
	}
	if rec.Split.Principal.Cents != 29000 {
		t.Errorf("principal = %d cents, want 29000", rec.Split.Principal.Cents)
	}
	if rec.Debt.CurrentAmount.Cents != 71000 {
		t.Errorf("balance = %d cents, want 71000", rec.Debt.CurrentAmount.Cents)
	}

	saved, err := store.Debt(context.Background(), id)
	if err != nil {
		t.Fatalf("Debt() error = %v", err)
	}
	if saved.CurrentAmount.Cents != 71000 {
		t.Errorf("persisted balance = %d cents, want 71000", saved.CurrentAmount.Cents)
	}

	tx := rec.Transaction
	if tx.Type != core.TxExpense {
		t.Errorf("transaction type = %q, want expense", tx.Type)
	}
	if tx.Amount.Cents != 30000 {
		t.Errorf("transaction amount = %d cents, want full payment", tx.Amount.Cents)
	}
	if tx.AccountID != 3 || tx.UserID != 7 {
		t.Errorf("transaction routing = account %d user %d, want 3/7", tx.AccountID, tx.UserID)
	}
	if tx.Description != "Payment for Car loan" {
		t.Errorf("description = %q", tx.Description)
	}
	if !strings.Contains(tx.Notes, "principal") || !strings.Contains(tx.Notes, "interest") {
		t.Errorf("notes missing split breakdown: %q", tx.Notes)
	}
}

func TestRecordPayment_PayoffMarksDebtPaid(t *testing.T) {
	d := carLoan()
	d.CurrentAmount = core.NewMoney(5000)
	d.InterestRate = 0
	store := memory.NewDebts()
	id := store.AddDebt(d)
	svc := services.NewDebtService(store, nil)
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	rec, err := svc.RecordPayment(context.Background(), id, core.NewMoney(5000), 3, now)
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if !rec.Debt.IsPaid {
		t.Error("debt not marked paid")
	}
	if !rec.Debt.EndDate.Equal(now) {
		t.Errorf("end date = %v, want %v", rec.Debt.EndDate, now)
	}

	saved, _ := store.Debt(context.Background(), id)
	if !saved.IsPaid {
		t.Error("paid flag not persisted")
	}
}

func TestRecordPayment_RejectsInvalidAmount(t *testing.T) {
	store := memory.NewDebts()
	id := store.AddDebt(carLoan())
	svc := services.NewDebtService(store, nil)

	_, err := svc.RecordPayment(context.Background(), id, core.Money{}, 3, time.Now())
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
}

func TestRecordPayment_UnknownDebt(t *testing.T) {
	svc := services.NewDebtService(memory.NewDebts(), nil)
	_, err := svc.RecordPayment(context.Background(), 42, core.NewMoney(1000), 3, time.Now())
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPayoffPlan_ExtraPaymentShortensSchedule(t *testing.T) {
	store := memory.NewDebts()
	id := store.AddDebt(carLoan())
	svc := services.NewDebtService(store, nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	base, err := svc.PayoffPlan(context.Background(), id, core.Money{}, now)
	if err != nil {
		t.Fatalf("PayoffPlan() error = %v", err)
	}
	extra, err := svc.PayoffPlan(context.Background(), id, core.NewMoney(20000), now)
	if err != nil {
		t.Fatalf("PayoffPlan(extra) error = %v", err)
	}

	if !base.Converged || !extra.Converged {
		t.Fatal("expected both plans to converge")
	}
	if extra.TotalPayments >= base.TotalPayments {
		t.Errorf("extra payment schedule has %d payments, base %d; want fewer",
			extra.TotalPayments, base.TotalPayments)
	}
	if extra.TotalInterest.Cents >= base.TotalInterest.Cents {
		t.Errorf("extra payment interest = %d, base %d; want less",
			extra.TotalInterest.Cents, base.TotalInterest.Cents)
	}
}

func TestCheckUpcomingPayments(t *testing.T) {
	now := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	store := memory.NewDebts()

	// Monthly from Jan 15: next payment Jun 15, two days out.
	dueSoon := carLoan()
	dueID := store.AddDebt(dueSoon)

	// Monthly from Jan 25: next payment Jun 25, outside the window.
	notDue := carLoan()
	notDue.Name = "Student loan"
	notDue.StartDate = time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)
	store.AddDebt(notDue)

	// Paid-off debts are never swept.
	paid := carLoan()
	paid.Name = "Old card"
	paid.IsPaid = true
	store.AddDebt(paid)

	sink := memory.NewSink()
	svc := services.NewDebtService(store, sink)

	reminders, err := svc.CheckUpcomingPayments(context.Background(), now)
	if err != nil {
		t.Fatalf("CheckUpcomingPayments() error = %v", err)
	}

	if len(reminders) != 1 {
		t.Fatalf("got %d reminders, want 1", len(reminders))
	}
	r := reminders[0]
	if r.DebtID != dueID {
		t.Errorf("reminder for debt %d, want %d", r.DebtID, dueID)
	}
	if want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC); !r.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", r.DueDate, want)
	}
	if r.PaymentAmount.Cents != 30000 {
		t.Errorf("payment amount = %d cents, want 30000", r.PaymentAmount.Cents)
	}

	if got := sink.Reminders(); len(got) != 1 {
		t.Errorf("sink received %d reminders, want 1", len(got))
	}
}

func TestCheckUpcomingPayments_SinkFailureNotPropagated(t *testing.T) {
	store := memory.NewDebts()
	store.AddDebt(carLoan())
	sink := memory.NewSink()
	sink.FailEmit = true
	svc := services.NewDebtService(store, sink)

	now := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	reminders, err := svc.CheckUpcomingPayments(context.Background(), now)
	if err != nil {
		t.Fatalf("CheckUpcomingPayments() error = %v", err)
	}
	if len(reminders) != 1 {
		t.Errorf("got %d reminders, want 1 despite sink failure", len(reminders))
	}
}
