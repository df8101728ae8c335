package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const holidayLabel = "Holiday"

// DefaultCurrency is used when neither tour nor profile names one.
const DefaultCurrency = "INR"

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Display is how an entry is presented in report tables and exports.
type Display struct {
	Status      string `json:"status"`
	Branch      string `json:"branch"`
	Category    string `json:"category"`
	AutoHoliday bool   `json:"autoHoliday"`
}

// DisplayFor applies the holiday override: on an automatic holiday status,
// branch and category all read "Holiday" whatever was recorded. Otherwise
// non-inspection days show their status in place of branch and category.
// Claim eligibility is decided by ComputeTotals, never by this.
func DisplayFor(e InspectionEntry) Display {
	if IsHoliday(e.Date) {
		return Display{Status: holidayLabel, Branch: holidayLabel, Category: holidayLabel, AutoHoliday: true}
	}
	status := e.DayStatus
	if status == "" {
		status = Inspection
	}
	if status != Inspection {
		return Display{Status: status.String(), Branch: status.String(), Category: status.String()}
	}
	return Display{Status: status.String(), Branch: e.Branch, Category: e.InspectionType}
}

// CurrencySymbol returns the symbol for a known code, or "" when unknown.
func CurrencySymbol(code string) string {
	return currencySymbols[strings.ToUpper(strings.TrimSpace(code))]
}

// FormatCurrency renders an amount with two decimals behind the currency
// symbol (₹1234.50). Unknown codes are prefixed verbatim with a space
// (XXX 5.00).
func FormatCurrency(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	if sym := CurrencySymbol(code); sym != "" {
		return sign + sym + amount.StringFixed(2)
	}
	return sign + code + " " + amount.StringFixed(2)
}
