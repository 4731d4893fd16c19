package amqp

import (
	"encoding/json"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/services"
)

// BudgetAlertMessage is the wire form of a budget threshold alert. Amounts
// are integer cents; consumers format them.
type BudgetAlertMessage struct {
	BudgetID       int64     `json:"budget_id"`
	BudgetName     string    `json:"budget_name"`
	CategoryID     int64     `json:"category_id,omitempty"`
	AmountCents    int64     `json:"amount_cents"`
	SpentCents     int64     `json:"spent_cents"`
	RemainingCents int64     `json:"remaining_cents"`
	Progress       int       `json:"progress"`
	RawProgress    float64   `json:"raw_progress"`
	Threshold      int       `json:"threshold"`
	Period         string    `json:"period"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(alert services.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		BudgetID:       alert.BudgetID,
		BudgetName:     alert.BudgetName,
		CategoryID:     alert.CategoryID,
		AmountCents:    alert.Amount.Cents,
		SpentCents:     alert.Spent.Cents,
		RemainingCents: alert.Remaining.Cents,
		Progress:       alert.Progress,
		RawProgress:    alert.RawProgress,
		Threshold:      alert.Threshold,
		Period:         string(alert.Period),
		PeriodStart:    alert.PeriodStart,
		PeriodEnd:      alert.PeriodEnd,
		Timestamp:      time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DebtReminderMessage is the wire form of an upcoming-payment reminder.
type DebtReminderMessage struct {
	DebtID       int64     `json:"debt_id"`
	DebtName     string    `json:"debt_name"`
	Lender       string    `json:"lender,omitempty"`
	PaymentCents int64     `json:"payment_cents"`
	DueDate      time.Time `json:"due_date"`
	BalanceCents int64     `json:"balance_cents"`
	AccountID    int64     `json:"account_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewDebtReminderMessage(reminder services.DebtReminder) *DebtReminderMessage {
	return &DebtReminderMessage{
		DebtID:       reminder.DebtID,
		DebtName:     reminder.DebtName,
		Lender:       reminder.Lender,
		PaymentCents: reminder.PaymentAmount.Cents,
		DueDate:      reminder.DueDate,
		BalanceCents: reminder.Balance.Cents,
		AccountID:    reminder.AccountID,
		Timestamp:    time.Now(),
	}
}

func (m *DebtReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DebtReminderMessageFromJSON(data []byte) (*DebtReminderMessage, error) {
	var msg DebtReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
