// Package memory provides in-memory implementations of the engine's store
// contracts. Used by the memory backend and as deterministic fixtures in
// tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// Ledger is an in-memory LedgerStore.
type Ledger struct {
	mu           sync.Mutex
	templates    map[int64]core.RecurringTemplate
	transactions []core.Transaction
	nextID       int64
}

func NewLedger() *Ledger {
	return &Ledger{templates: make(map[int64]core.RecurringTemplate)}
}

// AddTemplate stores a template, assigning an ID when missing. Seeding
// helper for tests and the memory backend.
func (l *Ledger) AddTemplate(t core.RecurringTemplate) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.ID == 0 {
		l.nextID++
		t.ID = l.nextID
	} else if t.ID > l.nextID {
		l.nextID = t.ID
	}
	l.templates[t.ID] = t
	return t.ID
}

func (l *Ledger) Template(id int64) (core.RecurringTemplate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.templates[id]
	return t, ok
}

func (l *Ledger) FindDueTemplates(_ context.Context, asOf time.Time) ([]core.RecurringTemplate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var due []core.RecurringTemplate
	for _, t := range l.templates {
		if t.IsRecurring && !t.NextOccurrence.IsZero() && !t.NextOccurrence.After(asOf) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (l *Ledger) AdvanceNextOccurrence(_ context.Context, templateID int64, from, to time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.templates[templateID]
	if !ok {
		return core.ErrNotFound
	}
	if !t.NextOccurrence.Equal(from) {
		return core.ErrStaleOccurrence
	}
	t.NextOccurrence = to
	l.templates[templateID] = t
	return nil
}

func (l *Ledger) AppendTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	tx.ID = l.nextID
	l.transactions = append(l.transactions, tx)
	return tx.ID, nil
}

func (l *Ledger) ClearSeries(_ context.Context, seriesID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.templates {
		if t.Series() == seriesID {
			t.NextOccurrence = time.Time{}
			t.IsRecurring = false
			l.templates[id] = t
		}
	}
	return nil
}

func (l *Ledger) SetSeriesFrequency(_ context.Context, seriesID int64, f core.Frequency) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.templates {
		if t.Series() == seriesID {
			t.Frequency = f
			l.templates[id] = t
		}
	}
	return nil
}

// Transactions returns a snapshot of the appended instances.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Budgets is an in-memory BudgetStore. Period spend and monthly totals are
// seeded directly rather than derived from a ledger.
type Budgets struct {
	mu      sync.Mutex
	budgets map[int64]core.Budget
	spend   map[int64]core.Money
	totals  map[int64]map[int64][]core.Money // userID -> categoryID -> series
	nextID  int64
}

func NewBudgets() *Budgets {
	return &Budgets{
		budgets: make(map[int64]core.Budget),
		spend:   make(map[int64]core.Money),
		totals:  make(map[int64]map[int64][]core.Money),
	}
}

func (s *Budgets) AddBudget(b core.Budget) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(b)
}

func (s *Budgets) addLocked(b core.Budget) int64 {
	if b.ID == 0 {
		s.nextID++
		b.ID = s.nextID
	} else if b.ID > s.nextID {
		s.nextID = b.ID
	}
	s.budgets[b.ID] = b
	return b.ID
}

func (s *Budgets) Budget(id int64) (core.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	return b, ok
}

// SetSpend seeds the period spend aggregate for a budget.
func (s *Budgets) SetSpend(budgetID int64, spent core.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spend[budgetID] = spent
}

// SetMonthlyTotals seeds a category's monthly expense series for a user.
func (s *Budgets) SetMonthlyTotals(userID, categoryID int64, totals []core.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totals[userID] == nil {
		s.totals[userID] = make(map[int64][]core.Money)
	}
	s.totals[userID][categoryID] = totals
}

func (s *Budgets) FindDueBudgets(_ context.Context, asOf time.Time) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []core.Budget
	for _, b := range s.budgets {
		if !b.IsRecurring {
			continue
		}
		if b.OpenEnded() || !b.EndDate.After(asOf) {
			due = append(due, b)
		}
	}
	return due, nil
}

func (s *Budgets) PeriodSpend(_ context.Context, budgetID int64) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[budgetID]; !ok {
		return core.Money{}, core.ErrNotFound
	}
	return s.spend[budgetID], nil
}

func (s *Budgets) CreateBudget(_ context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(b), nil
}

func (s *Budgets) SetRecurring(_ context.Context, budgetID int64, recurring bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return core.ErrNotFound
	}
	b.IsRecurring = recurring
	s.budgets[budgetID] = b
	return nil
}

func (s *Budgets) SuccessorExists(_ context.Context, budgetID int64, startDate time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.PredecessorID == budgetID && b.StartDate.Equal(startDate) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Budgets) ListNotifying(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Notifications.Enabled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Budgets) MonthlyCategoryTotals(_ context.Context, userID int64, _, _ time.Time) (map[int64][]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64][]core.Money, len(s.totals[userID]))
	for cat, series := range s.totals[userID] {
		cp := make([]core.Money, len(series))
		copy(cp, series)
		out[cat] = cp
	}
	return out, nil
}

// Debts is an in-memory DebtStore.
type Debts struct {
	mu     sync.Mutex
	debts  map[int64]core.Debt
	nextID int64
}

func NewDebts() *Debts {
	return &Debts{debts: make(map[int64]core.Debt)}
}

func (s *Debts) AddDebt(d core.Debt) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		s.nextID++
		d.ID = s.nextID
	} else if d.ID > s.nextID {
		s.nextID = d.ID
	}
	s.debts[d.ID] = d
	return d.ID
}

func (s *Debts) Debt(_ context.Context, id int64) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[id]
	if !ok {
		return core.Debt{}, core.ErrNotFound
	}
	return d, nil
}

func (s *Debts) SaveDebt(_ context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[d.ID]; !ok {
		return core.ErrNotFound
	}
	s.debts[d.ID] = d
	return nil
}

func (s *Debts) FindUnpaidDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Debt
	for _, d := range s.debts {
		if !d.IsPaid {
			out = append(out, d)
		}
	}
	return out, nil
}
