package services

import (
	"math"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"
)

// maxAmortizationMonths bounds the payoff simulation at 100 years so
// payments that shrink the balance only by a few cents per month still
// terminate.
const maxAmortizationMonths = 1200

// ScheduleRow is one simulated monthly payment.
type ScheduleRow struct {
	Payment   int // 1-based payment index
	Date      time.Time
	Principal core.Money
	Interest  core.Money
	Balance   core.Money
}

// Amortization is a payoff projection. Converged=false is the distinct
// non-convergent variant: the payment cannot retire the balance within
// the cap, the schedule is nil and PayoffDate is zero. It is an
// expected outcome for bad payment/rate combinations, not an error.
type Amortization struct {
	Converged     bool
	PayoffDate    time.Time
	TotalInterest core.Money
	TotalPayments int
	Schedule      []ScheduleRow
}

// Amortize simulates paying off principal at an annual percentage rate
// with the given per-period payment. The model iterates in monthly steps
// regardless of payment frequency: weekly payments count four per month,
// bi-weekly two. The final payment shrinks to exactly close the balance.
func Amortize(principal core.Money, annualRatePct float64, payment core.Money, frequency core.PaymentFrequency, now time.Time) (Amortization, error) {
	if principal.Cents <= 0 || payment.Cents <= 0 {
		return Amortization{}, core.ErrInvalidAmount
	}
	if err := frequency.Validate(); err != nil {
		return Amortization{}, err
	}

	monthlyRate := annualRatePct / 100 / 12
	monthlyPayment := monthlyEquivalent(payment, frequency)

	balance := principal.Cents
	var totalInterest int64
	var schedule []ScheduleRow

	for balance > 0 && len(schedule) < maxAmortizationMonths {
		interest := int64(math.Round(float64(balance) * monthlyRate))
		principalPortion := monthlyPayment.Cents - interest
		if principalPortion <= 0 {
			// The payment no longer covers the running interest, so the
			// balance can never shrink again. At high rates it would grow
			// past the int64 range well before the cap, so stop here.
			return Amortization{
				Converged:     false,
				TotalInterest: core.NewMoney(totalInterest),
				TotalPayments: maxAmortizationMonths,
			}, nil
		}
		if principalPortion > balance {
			// Last payment: pay exactly what is left.
			principalPortion = balance
		}
		balance -= principalPortion
		totalInterest += interest

		schedule = append(schedule, ScheduleRow{
			Payment:   len(schedule) + 1,
			Date:      now.AddDate(0, len(schedule)+1, 0),
			Principal: core.NewMoney(principalPortion),
			Interest:  core.NewMoney(interest),
			Balance:   core.NewMoney(balance),
		})
	}

	if balance > 0 {
		// Cap reached without converging. Report it explicitly rather than
		// returning a silently truncated schedule.
		return Amortization{
			Converged:     false,
			TotalInterest: core.NewMoney(totalInterest),
			TotalPayments: maxAmortizationMonths,
		}, nil
	}

	return Amortization{
		Converged:     true,
		PayoffDate:    schedule[len(schedule)-1].Date,
		TotalInterest: core.NewMoney(totalInterest),
		TotalPayments: len(schedule),
		Schedule:      schedule,
	}, nil
}

// monthlyEquivalent normalizes a per-period payment to the monthly amount
// the simulation steps by: weekly x4, bi-weekly x2, monthly and yearly
// unchanged per period.
func monthlyEquivalent(payment core.Money, frequency core.PaymentFrequency) core.Money {
	switch frequency {
	case core.PayWeekly:
		return core.NewMoney(payment.Cents * 4)
	case core.PayBiWeekly:
		return core.NewMoney(payment.Cents * 2)
	default:
		return payment
	}
}

// ApplyPayment splits one real payment into interest and principal at the
// debt's monthly rate and reduces the running balance. The balance floors
// at zero; when it gets there IsPaid flips and EndDate is stamped.
func ApplyPayment(d core.Debt, amount core.Money, now time.Time) (core.Debt, PaymentSplit) {
	monthlyRate := d.InterestRate / 100 / 12
	interest := int64(math.Round(float64(d.CurrentAmount.Cents) * monthlyRate))
	principal := amount.Cents - interest

	d.CurrentAmount = core.NewMoney(d.CurrentAmount.Cents - principal).ClampFloor()
	if d.CurrentAmount.Cents <= 0 {
		d.IsPaid = true
		d.EndDate = now
	}

	return d, PaymentSplit{
		Interest:  core.NewMoney(interest),
		Principal: core.NewMoney(principal),
	}
}

// PaymentSplit is the interest/principal breakdown of one payment.
type PaymentSplit struct {
	Principal core.Money
	Interest  core.Money
}
