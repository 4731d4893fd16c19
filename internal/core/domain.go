package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	PeriodWeekly    PeriodKind = "weekly"
	PeriodMonthly   PeriodKind = "monthly"
	PeriodQuarterly PeriodKind = "quarterly"
	PeriodYearly    PeriodKind = "yearly"
)

const (
	RolloverNone    RolloverType = "none"
	RolloverFull    RolloverType = "full"
	RolloverPartial RolloverType = "partial"
)

const (
	PayWeekly   PaymentFrequency = "weekly"
	PayBiWeekly PaymentFrequency = "bi-weekly"
	PayMonthly  PaymentFrequency = "monthly"
	PayYearly   PaymentFrequency = "yearly"
)

const (
	TxExpense TransactionType = "expense"
	TxIncome  TransactionType = "income"
)

type (
	// Frequency is how often a recurring template materializes an instance.
	Frequency string

	// PeriodKind is the calendar bucket a budget is tracked against.
	PeriodKind string

	// RolloverType controls how unspent budget carries into the next period.
	RolloverType string

	// PaymentFrequency is the cadence of scheduled debt payments.
	PaymentFrequency string

	// TransactionType distinguishes outflows from inflows.
	TransactionType string

	Money struct {
		Cents int64
	}

	// RecurringTemplate spawns dated transaction instances on a schedule.
	// NextOccurrence is monotonically advanced after each materialization
	// and never rewound. SeriesID groups generated instances; zero means
	// the template's own ID is the series key.
	RecurringTemplate struct {
		ID             int64
		UserID         int64
		AccountID      int64
		CategoryID     int64
		Description    string
		Amount         Money
		Type           TransactionType
		Tags           []string
		Notes          string
		Frequency      Frequency
		NextOccurrence time.Time
		SeriesID       int64
		IsRecurring    bool
	}

	// Transaction is a materialized ledger entry. SeriesID links instances
	// generated from the same recurring template.
	Transaction struct {
		ID          int64
		UserID      int64
		AccountID   int64
		CategoryID  int64
		Description string
		Amount      Money
		Type        TransactionType
		Date        time.Time
		Tags        []string
		Notes       string
		SeriesID    int64
	}

	RolloverPolicy struct {
		Type      RolloverType
		MaxAmount Money // upper bound for partial rollover
	}

	NotificationPolicy struct {
		Enabled   bool
		Threshold int // percent of budget spent, 0-100
	}

	// Budget caps spending for one calendar period. A zero EndDate means
	// open-ended recurring; such budgets have no boundary to roll over at.
	Budget struct {
		ID            int64
		UserID        int64
		Name          string
		Amount        Money
		Period        PeriodKind
		StartDate     time.Time
		EndDate       time.Time
		CategoryID    int64 // zero means uncategorized
		IsRecurring   bool
		Rollover      RolloverPolicy
		Notifications NotificationPolicy
		// PredecessorID links a rollover successor to the budget it was
		// carried over from; zero for budgets created directly.
		PredecessorID int64
	}

	// Debt is an amortizing balance. CurrentAmount is the running balance;
	// IsPaid flips and EndDate is stamped when it reaches zero.
	Debt struct {
		ID               int64
		UserID           int64
		AccountID        int64
		Name             string
		Lender           string
		InitialAmount    Money
		CurrentAmount    Money
		InterestRate     float64 // annual percent
		PaymentFrequency PaymentFrequency
		PaymentAmount    Money
		StartDate        time.Time
		EndDate          time.Time
		IsPaid           bool
		Notes            string
	}

	// AccountDelta is an explicit balance-adjustment instruction returned to
	// the caller instead of being applied as a persistence side effect.
	AccountDelta struct {
		AccountID int64
		Delta     Money
	}
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidPeriodKind = errors.New("invalid period kind")
	ErrInvalidRollover   = errors.New("invalid rollover policy")
	ErrInvalidThreshold  = errors.New("invalid notification threshold")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")

	// ErrStaleOccurrence is returned by the ledger store when a conditional
	// advance of NextOccurrence finds the template already advanced. Callers
	// treat it as a no-op: retries must be safe.
	ErrStaleOccurrence = errors.New("next occurrence already advanced")
)

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (k PeriodKind) Validate() error {
	switch k {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return nil
	default:
		return ErrInvalidPeriodKind
	}
}

func (tt TransactionType) Validate() error {
	switch tt {
	case TxExpense, TxIncome:
		return nil
	default:
		return errors.New("invalid transaction type")
	}
}

func (p PaymentFrequency) Validate() error {
	switch p {
	case PayWeekly, PayBiWeekly, PayMonthly, PayYearly:
		return nil
	default:
		return errors.New("invalid payment frequency")
	}
}

func (rp RolloverPolicy) Validate() error {
	switch rp.Type {
	case RolloverNone, RolloverFull:
		return nil
	case RolloverPartial:
		if rp.MaxAmount.Cents <= 0 {
			return ErrInvalidRollover
		}
		return nil
	default:
		return ErrInvalidRollover
	}
}

func (np NotificationPolicy) Validate() error {
	if np.Threshold < 0 || np.Threshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}

// Series returns the key grouping all instances generated from this
// template: the explicit SeriesID when set, the template's own ID otherwise.
func (t RecurringTemplate) Series() int64 {
	if t.SeriesID != 0 {
		return t.SeriesID
	}
	return t.ID
}

func (t RecurringTemplate) Validate() error {
	if err := t.Frequency.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.NextOccurrence.IsZero() {
		return errors.New("next occurrence must be set")
	}
	return nil
}

// BalanceDelta is the signed effect of the transaction on its account
// balance: negative for expenses, positive for income.
func (tx Transaction) BalanceDelta() AccountDelta {
	delta := tx.Amount
	if tx.Type == TxExpense {
		delta = Money{Cents: -delta.Cents}
	}
	return AccountDelta{AccountID: tx.AccountID, Delta: delta}
}

func (b Budget) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return errors.New("empty budget name")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if b.StartDate.IsZero() {
		return errors.New("start date must be set")
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		return errors.New("end date before start date")
	}
	if err := b.Rollover.Validate(); err != nil {
		return err
	}
	return b.Notifications.Validate()
}

// OpenEnded reports whether the budget has no natural period boundary.
func (b Budget) OpenEnded() bool {
	return b.EndDate.IsZero()
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return errors.New("empty debt name")
	}
	if d.InitialAmount.Cents < 0 || d.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.InterestRate < 0 || d.InterestRate > 100 {
		return errors.New("interest rate out of range")
	}
	if err := d.PaymentFrequency.Validate(); err != nil {
		return err
	}
	if d.PaymentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.StartDate.IsZero() {
		return errors.New("start date must be set")
	}
	return nil
}
