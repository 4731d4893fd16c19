package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Chinweike99/expense-tracker-backend/internal/services"
)

// Sink records emitted notifications. FailEmit makes every emit fail, for
// exercising the fire-and-forget contract.
type Sink struct {
	mu        sync.Mutex
	alerts    []services.BudgetAlert
	reminders []services.DebtReminder
	FailEmit  bool
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) EmitBudgetAlert(_ context.Context, alert services.BudgetAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailEmit {
		return errors.New("sink unavailable")
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *Sink) EmitDebtReminder(_ context.Context, reminder services.DebtReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailEmit {
		return errors.New("sink unavailable")
	}
	s.reminders = append(s.reminders, reminder)
	return nil
}

func (s *Sink) Alerts() []services.BudgetAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.BudgetAlert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *Sink) Reminders() []services.DebtReminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]services.DebtReminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}
