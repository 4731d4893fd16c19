package services

import (
	"testing"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

var amortizeNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestAmortize_ZeroInterestExactSplit(t *testing.T) {
	// 1200.00 at 0% with 100.00/month: exactly 12 payments, no interest.
	result, err := Amortize(core.NewMoney(120000), 0, core.NewMoney(10000), core.PayMonthly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize() error = %v", err)
	}

	if !result.Converged {
		t.Fatal("expected convergence")
	}
	if result.TotalPayments != 12 {
		t.Errorf("payments = %d, want 12", result.TotalPayments)
	}
	if result.TotalInterest.Cents != 0 {
		t.Errorf("interest = %d cents, want 0", result.TotalInterest.Cents)
	}
	if got := result.Schedule[len(result.Schedule)-1].Balance; got.Cents != 0 {
		t.Errorf("final balance = %d cents, want 0", got.Cents)
	}
	if want := amortizeNow.AddDate(0, 12, 0); !result.PayoffDate.Equal(want) {
		t.Errorf("payoff date = %v, want %v", result.PayoffDate, want)
	}
}

func TestAmortize_InterestAccruesMonthly(t *testing.T) {
	// 1000.00 at 12% (1%/month) with 500.00/month.
	// Month 1: interest 10.00, principal 490.00, balance 510.00.
	// Month 2: interest 5.10, principal 494.90... clamped to 510.00 left.
	result, err := Amortize(core.NewMoney(100000), 12, core.NewMoney(50000), core.PayMonthly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize() error = %v", err)
	}

	if !result.Converged {
		t.Fatal("expected convergence")
	}
	if result.TotalPayments != 3 {
		t.Fatalf("payments = %d, want 3", result.TotalPayments)
	}

	first := result.Schedule[0]
	if first.Interest.Cents != 1000 {
		t.Errorf("first interest = %d cents, want 1000", first.Interest.Cents)
	}
	if first.Principal.Cents != 49000 {
		t.Errorf("first principal = %d cents, want 49000", first.Principal.Cents)
	}
	if first.Balance.Cents != 51000 {
		t.Errorf("balance after first = %d cents, want 51000", first.Balance.Cents)
	}

	last := result.Schedule[len(result.Schedule)-1]
	if last.Balance.Cents != 0 {
		t.Errorf("final balance = %d cents, want exactly 0", last.Balance.Cents)
	}
	// Final payment shrinks: principal equals what was left, not the full payment.
	if last.Principal.Cents >= 50000 {
		t.Errorf("final principal = %d cents, want clamped below full payment", last.Principal.Cents)
	}
}

// Payment at or below the running interest never converges. 1000.00 at 24%
// accrues 20.00/month against a 10.00 payment: the safety cap must trip and
// report the non-convergent variant rather than a truncated schedule.
func TestAmortize_NonConvergent(t *testing.T) {
	result, err := Amortize(core.NewMoney(100000), 24, core.NewMoney(1000), core.PayMonthly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize() error = %v", err)
	}

	if result.Converged {
		t.Fatal("expected non-convergent result")
	}
	if result.Schedule != nil {
		t.Errorf("non-convergent schedule should be nil, got %d rows", len(result.Schedule))
	}
	if !result.PayoffDate.IsZero() {
		t.Errorf("non-convergent payoff date should be zero, got %v", result.PayoffDate)
	}
	if result.TotalPayments != maxAmortizationMonths {
		t.Errorf("payments = %d, want cap %d", result.TotalPayments, maxAmortizationMonths)
	}
}

func TestAmortize_NonConvergentHighRate(t *testing.T) {
	// 60% APR accrues $50 of interest on $1000 in the first month; a $10
	// payment never touches principal, so the balance would compound
	// without bound if the simulation kept going.
	result, err := Amortize(core.NewMoney(100000), 60, core.NewMoney(1000), core.PayMonthly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize() error = %v", err)
	}

	if result.Converged {
		t.Fatal("expected non-convergent result")
	}
	if result.Schedule != nil {
		t.Errorf("non-convergent schedule should be nil, got %d rows", len(result.Schedule))
	}
	if !result.PayoffDate.IsZero() {
		t.Errorf("non-convergent payoff date should be zero, got %v", result.PayoffDate)
	}
	if result.TotalInterest.Cents < 0 {
		t.Errorf("total interest = %d cents, want non-negative", result.TotalInterest.Cents)
	}
	if result.TotalPayments != maxAmortizationMonths {
		t.Errorf("payments = %d, want cap %d", result.TotalPayments, maxAmortizationMonths)
	}
}

func TestAmortize_PaymentFrequencyNormalization(t *testing.T) {
	// Weekly payments count four per month: 25.00/week behaves like
	// 100.00/month against a 1200.00 zero-interest balance.
	weekly, err := Amortize(core.NewMoney(120000), 0, core.NewMoney(2500), core.PayWeekly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize(weekly) error = %v", err)
	}
	biweekly, err := Amortize(core.NewMoney(120000), 0, core.NewMoney(5000), core.PayBiWeekly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize(bi-weekly) error = %v", err)
	}

	if weekly.TotalPayments != 12 || biweekly.TotalPayments != 12 {
		t.Errorf("payments = %d (weekly), %d (bi-weekly), want 12 monthly steps each",
			weekly.TotalPayments, biweekly.TotalPayments)
	}
}

func TestAmortize_TerminatesWithinCap(t *testing.T) {
	// Payment just above the first month's interest converges, slowly but
	// within the cap.
	firstInterest := int64(2000) // 1000.00 at 24% -> 20.00
	result, err := Amortize(core.NewMoney(100000), 24, core.NewMoney(firstInterest+500), core.PayMonthly, amortizeNow)
	if err != nil {
		t.Fatalf("Amortize() error = %v", err)
	}
	if !result.Converged {
		t.Fatal("expected convergence for payment above first interest")
	}
	if result.TotalPayments >= maxAmortizationMonths {
		t.Errorf("payments = %d, want under cap", result.TotalPayments)
	}
	if got := result.Schedule[len(result.Schedule)-1].Balance.Cents; got != 0 {
		t.Errorf("final balance = %d cents, want 0", got)
	}
}

func TestAmortize_RejectsInvalidInput(t *testing.T) {
	if _, err := Amortize(core.Money{}, 12, core.NewMoney(1000), core.PayMonthly, amortizeNow); err == nil {
		t.Error("expected error for zero principal")
	}
	if _, err := Amortize(core.NewMoney(1000), 12, core.Money{}, core.PayMonthly, amortizeNow); err == nil {
		t.Error("expected error for zero payment")
	}
	if _, err := Amortize(core.NewMoney(1000), 12, core.NewMoney(100), "quarterly", amortizeNow); err == nil {
		t.Error("expected error for unsupported payment frequency")
	}
}

func TestApplyPayment(t *testing.T) {
	debt := core.Debt{
		ID:               1,
		UserID:           1,
		Name:             "Car loan",
		Lender:           "Bank",
		InitialAmount:    core.NewMoney(500000),
		CurrentAmount:    core.NewMoney(100000),
		InterestRate:     12, // 1% per month
		PaymentFrequency: core.PayMonthly,
		PaymentAmount:    core.NewMoney(20000),
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	updated, split := ApplyPayment(debt, core.NewMoney(20000), now)
	if split.Interest.Cents != 1000 {
		t.Errorf("interest = %d cents, want 1000", split.Interest.Cents)
	}
	if split.Principal.Cents != 19000 {
		t.Errorf("principal = %d cents, want 19000", split.Principal.Cents)
	}
	if updated.CurrentAmount.Cents != 81000 {
		t.Errorf("balance = %d cents, want 81000", updated.CurrentAmount.Cents)
	}
	if updated.IsPaid {
		t.Error("debt marked paid with balance outstanding")
	}
}

func TestApplyPayment_PayoffStampsEndDate(t *testing.T) {
	debt := core.Debt{
		ID:               1,
		Name:             "Last stretch",
		CurrentAmount:    core.NewMoney(5000),
		InterestRate:     0,
		PaymentFrequency: core.PayMonthly,
		PaymentAmount:    core.NewMoney(5000),
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	updated, _ := ApplyPayment(debt, core.NewMoney(10000), now)
	if updated.CurrentAmount.Cents != 0 {
		t.Errorf("balance = %d cents, want floored at 0", updated.CurrentAmount.Cents)
	}
	if !updated.IsPaid {
		t.Error("debt not marked paid at zero balance")
	}
	if !updated.EndDate.Equal(now) {
		t.Errorf("end date = %v, want stamped %v", updated.EndDate, now)
	}
}

func TestNextPaymentDate(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq core.PaymentFrequency
		want time.Time
	}{
		{"weekly", core.PayWeekly, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)},
		{"bi-weekly", core.PayBiWeekly, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)},
		{"monthly", core.PayMonthly, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"yearly", core.PayYearly, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextPaymentDate(start, tt.freq, now)
			if err != nil {
				t.Fatalf("NextPaymentDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextPaymentDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextPaymentDate_FutureStartUnchanged(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := NextPaymentDate(start, core.PayMonthly, now)
	if err != nil {
		t.Fatalf("NextPaymentDate() error = %v", err)
	}
	if !got.Equal(start) {
		t.Errorf("NextPaymentDate() = %v, want start date %v", got, start)
	}
}
