// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals so sums over the transaction log never drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the ledger's single currency.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

// MoneyFromCents returns the amount for a count of minor units.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// ParseMoney converts a decimal string to a positive amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Signs, exponents, zero and anything
// unparsable are rejected.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,34")  -> 12.34
//	ParseMoney("12.345") -> 12.35
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, Invalid(ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return Money{}, Invalid(ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Invalid(ErrInvalidAmount)
	}
	m := Money{Decimal: d.Round(2)}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if !m.Decimal.IsPositive() {
		return Invalid(ErrInvalidAmount)
	}
	return nil
}

func (m Money) Add(n Money) Money { return Money{Decimal: m.Decimal.Add(n.Decimal)} }
func (m Money) Sub(n Money) Money { return Money{Decimal: m.Decimal.Sub(n.Decimal)} }

func (m Money) Equal(n Money) bool       { return m.Decimal.Equal(n.Decimal) }
func (m Money) GreaterThan(n Money) bool { return m.Decimal.GreaterThan(n.Decimal) }
func (m Money) LessThan(n Money) bool    { return m.Decimal.LessThan(n.Decimal) }

// Cents returns the amount in minor units, rounded half away from zero.
// It is meant for logs and display, never for arithmetic.
func (m Money) Cents() int64 {
	return m.Decimal.Shift(2).Round(0).IntPart()
}

// Fixed renders the amount with exactly two decimals.
func (m Money) Fixed() string {
	return m.Decimal.StringFixed(2)
}
