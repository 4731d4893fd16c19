// Package core provides the domain types shared by the scheduling engine.
//
// Money is stored as integer cents; use cents for calculations to avoid
// floating-point drift, and convert to float only at the interest-math and
// display boundaries.
package core

import "math"

// NewMoney builds a Money value from whole cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents}
}

// MoneyFromFloat converts a float amount (e.g. 12.34) to cents with half-up
// rounding. Used at the boundary where interest math produces fractions.
func MoneyFromFloat(amount float64) Money {
	return Money{Cents: int64(math.Round(amount * 100))}
}

// Float returns the amount as a float64 for rate math and display.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// ClampFloor returns m, floored at zero. Rollover and remaining amounts
// never go negative.
func (m Money) ClampFloor() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

// MinMoney returns the smaller of two amounts.
func MinMoney(a, b Money) Money {
	if a.Cents < b.Cents {
		return a
	}
	return b
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
