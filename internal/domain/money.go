package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits a Money may carry. It matches
// the NUMERIC(20,2) columns that store balances and entry values.
const MoneyScale = 2

// Money is a non-negative monetary amount. The zero value is a valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{}

// NewMoney validates d and wraps it. Negative amounts and amounts with more
// than MoneyScale fractional digits are rejected.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidMoney, d.String())
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidMoney, d.String(), MoneyScale)
	}
	return Money{amount: d}, nil
}

// MoneyFromFloat rejects non-finite values and anything NewMoney rejects.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidMoney, f)
	}
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney parses a decimal string such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return NewMoney(d)
}

// MustMoney is NewMoney for constants and tests; it panics on invalid input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other, failing with ErrInsufficientFunds when the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	d := m.amount.Sub(other.amount)
	if d.IsNegative() {
		return Money{}, ErrInsufficientFunds
	}
	return Money{amount: d}, nil
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Neg returns the signed negative delta for this amount.
func (m Money) Neg() decimal.Decimal {
	return m.amount.Neg()
}

func (m Money) String() string {
	return m.amount.String()
}

// Float64 returns the nearest float64, for metrics only.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MarshalJSON encodes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMoney, string(data))
	}

	parsed, err := NewMoney(d)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}
