// Package core provides money parsing and handling utilities.
//
// Amounts are decimal.Decimal throughout so that per-entry and per-category
// summation always agree; floats never enter a total.
package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// amountPattern admits plain decimal notation: no exponent, at most 15
// integer and 6 fractional digits.
var amountPattern = regexp.MustCompile(`^-?\d{1,15}([.,]\d{1,6})?$`)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. An empty
// string is zero, matching an untouched amount field. Negative values are
// accepted; rejecting them is the caller's choice. Scientific notation and
// more than 15 integer or 6 fractional digits are ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("")      -> 0, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("1e5")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimals and no symbol.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// sumJourney adds up the amounts of a journey list.
func sumJourney(items []JourneyItem) decimal.Decimal {
	total := decimal.Zero
	for _, j := range items {
		total = total.Add(j.Amount)
	}
	return total
}
