package core

import (
	"errors"
	"testing"
	"time"
)

func TestMoneyFromFloat_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{12.34, 1234},
		{0.005, 1},
		{-0.005, -1},
		{99.999, 10000},
	}
	for _, tt := range tests {
		if got := MoneyFromFloat(tt.in); got.Cents != tt.want {
			t.Errorf("MoneyFromFloat(%v) = %d cents, want %d", tt.in, got.Cents, tt.want)
		}
	}
}

func TestMoneyClampFloor(t *testing.T) {
	if got := NewMoney(-500).ClampFloor(); got.Cents != 0 {
		t.Errorf("ClampFloor(-500) = %d, want 0", got.Cents)
	}
	if got := NewMoney(500).ClampFloor(); got.Cents != 500 {
		t.Errorf("ClampFloor(500) = %d, want unchanged", got.Cents)
	}
}

func TestMinMoney(t *testing.T) {
	if got := MinMoney(NewMoney(100), NewMoney(200)); got.Cents != 100 {
		t.Errorf("MinMoney = %d, want 100", got.Cents)
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	valid := RecurringTemplate{
		ID:             1,
		Description:    "Rent",
		Amount:         NewMoney(120000),
		Type:           TxExpense,
		Frequency:      Monthly,
		NextOccurrence: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(*RecurringTemplate)
		wantErr error
	}{
		{"valid", func(*RecurringTemplate) {}, nil},
		{"bad frequency", func(t *RecurringTemplate) { t.Frequency = "fortnightly" }, ErrInvalidFrequency},
		{"blank description", func(t *RecurringTemplate) { t.Description = "   " }, ErrEmptyDescription},
		{"zero amount", func(t *RecurringTemplate) { t.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(t *RecurringTemplate) { t.Amount = NewMoney(-100) }, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := valid
			tt.mutate(&tpl)
			err := tpl.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplateSeries(t *testing.T) {
	own := RecurringTemplate{ID: 5}
	if got := own.Series(); got != 5 {
		t.Errorf("Series() = %d, want own ID 5", got)
	}
	linked := RecurringTemplate{ID: 5, SeriesID: 2}
	if got := linked.Series(); got != 2 {
		t.Errorf("Series() = %d, want explicit 2", got)
	}
}

func TestTransactionBalanceDelta(t *testing.T) {
	expense := Transaction{AccountID: 9, Amount: NewMoney(4500), Type: TxExpense}
	if got := expense.BalanceDelta(); got.Delta.Cents != -4500 || got.AccountID != 9 {
		t.Errorf("expense delta = %+v, want -4500 on account 9", got)
	}

	income := Transaction{AccountID: 9, Amount: NewMoney(4500), Type: TxIncome}
	if got := income.BalanceDelta(); got.Delta.Cents != 4500 {
		t.Errorf("income delta = %d, want +4500", got.Delta.Cents)
	}
}

func TestRolloverPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RolloverPolicy
		wantErr bool
	}{
		{"none", RolloverPolicy{Type: RolloverNone}, false},
		{"full", RolloverPolicy{Type: RolloverFull}, false},
		{"partial with max", RolloverPolicy{Type: RolloverPartial, MaxAmount: NewMoney(5000)}, false},
		{"partial without max", RolloverPolicy{Type: RolloverPartial}, true},
		{"unknown type", RolloverPolicy{Type: "half"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := Budget{
		Name:      "Groceries",
		Amount:    NewMoney(50000),
		Period:    PeriodMonthly,
		StartDate: start,
		EndDate:   time.Date(2025, 6, 30, 23, 59, 59, 999000000, time.UTC),
		Rollover:  RolloverPolicy{Type: RolloverNone},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	openEnded := valid
	openEnded.EndDate = time.Time{}
	if err := openEnded.Validate(); err != nil {
		t.Errorf("open-ended Validate() = %v, want nil", err)
	}
	if !openEnded.OpenEnded() {
		t.Error("zero end date should report open-ended")
	}

	inverted := valid
	inverted.EndDate = start.AddDate(0, 0, -1)
	if err := inverted.Validate(); err == nil {
		t.Error("end before start should fail validation")
	}

	badThreshold := valid
	badThreshold.Notifications = NotificationPolicy{Enabled: true, Threshold: 150}
	if err := badThreshold.Validate(); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("threshold 150 Validate() = %v, want ErrInvalidThreshold", err)
	}
}

func TestDebtValidate(t *testing.T) {
	valid := Debt{
		Name:             "Mortgage",
		InitialAmount:    NewMoney(20000000),
		CurrentAmount:    NewMoney(18000000),
		InterestRate:     4.5,
		PaymentFrequency: PayMonthly,
		PaymentAmount:    NewMoney(120000),
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	overRate := valid
	overRate.InterestRate = 120
	if err := overRate.Validate(); err == nil {
		t.Error("interest rate over 100 should fail validation")
	}

	badFreq := valid
	badFreq.PaymentFrequency = "quarterly"
	if err := badFreq.Validate(); err == nil {
		t.Error("unsupported payment frequency should fail validation")
	}
}
