// Package money converts amounts between decimal values and the "€12.34"
// display form used on screen and in persisted ledger state.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol prefixes every formatted amount.
const Symbol = "€"

var ErrInvalidAmount = errors.New("invalid amount")

// Amounts must stay finite as float64, which is how they are persisted.
// Input is bounded before parsing so a huge exponent never gets expanded.
const (
	maxInputLen = 64
	maxExponent = 32
)

// Format renders d with the currency symbol and exactly two decimals.
func Format(d decimal.Decimal) string {
	return Symbol + d.StringFixed(2)
}

// Parse reads an amount typed by a user or stored by Format. The currency
// symbol and surrounding whitespace are optional. Values that do not fit a
// finite float64 are rejected.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, Symbol))
	if s == "" || len(s) > maxInputLen {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseOrZero is Parse for stored data: anything unreadable counts as zero.
func ParseOrZero(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
