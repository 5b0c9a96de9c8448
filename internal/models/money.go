package models

import (
	"github.com/shopspring/decimal"
)

// moneyScale is the fixed number of decimal places for every monetary value.
const moneyScale = 2

// Money is a monetary amount held at exactly two decimal places. It embeds
// decimal.Decimal, so database Scan/Value and comparison helpers are
// available directly.
type Money struct {
	decimal.Decimal
}

// NewMoney creates a Money rounded to the fixed scale, half up.
func NewMoney(d decimal.Decimal) Money {
	return Money{d.Round(moneyScale)}
}

// MoneyFromString parses a decimal string into Money.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{decimal.Zero.Round(moneyScale)}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.Decimal.Add(other.Decimal))
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return NewMoney(m.Decimal.Sub(other.Decimal))
}

// MulInt returns m × n.
func (m Money) MulInt(n int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(n))))
}

// Equal reports whether m and other are the same amount.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// GreaterThan reports whether m exceeds other.
func (m Money) GreaterThan(other Money) bool {
	return m.Decimal.GreaterThan(other.Decimal)
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal.StringFixed(moneyScale)
}

// MarshalJSON renders the amount as a bare JSON number with two decimal
// places, e.g. 199.90.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(moneyScale)), nil
}

// UnmarshalJSON accepts a JSON number or numeric string and rounds it to the
// fixed scale.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}
