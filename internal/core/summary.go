package core

import "github.com/shopspring/decimal"

// Totals holds the monetary rollup of a set of entries.
type Totals struct {
	Halting decimal.Decimal `json:"halting"`
	Lodging decimal.Decimal `json:"lodging"`
	Travel  decimal.Decimal `json:"travel"`
	Total   decimal.Decimal `json:"total"`
}

// EntryAmounts is the arithmetic breakdown of a single entry's lists,
// independent of its day status.
type EntryAmounts struct {
	Onward  decimal.Decimal
	Return  decimal.Decimal
	Halting decimal.Decimal
	Lodging decimal.Decimal
}

// Travel is the onward plus return fare.
func (a EntryAmounts) Travel() decimal.Decimal {
	return a.Onward.Add(a.Return)
}

// Total is travel plus halting plus lodging.
func (a EntryAmounts) Total() decimal.Decimal {
	return a.Travel().Add(a.Halting).Add(a.Lodging)
}

// AmountsOf sums every item list of the entry. Status is ignored: this is
// the ledger view used by the exporter.
func AmountsOf(e InspectionEntry) EntryAmounts {
	a := EntryAmounts{
		Onward:  sumJourney(e.OnwardJourney),
		Return:  sumJourney(e.ReturnJourney),
		Halting: decimal.Zero,
		Lodging: decimal.Zero,
	}
	for _, o := range e.OtherExpenses {
		a.Halting = a.Halting.Add(o.Halting)
		a.Lodging = a.Lodging.Add(o.Lodging)
	}
	return a
}

// ComputeTotals rolls up the claimable amounts. Only entries whose stored
// status is Inspection contribute; the holiday calendar is not consulted.
func ComputeTotals(entries []InspectionEntry) Totals {
	t := Totals{
		Halting: decimal.Zero,
		Lodging: decimal.Zero,
		Travel:  decimal.Zero,
		Total:   decimal.Zero,
	}
	for _, e := range entries {
		if e.DayStatus != Inspection {
			continue
		}
		a := AmountsOf(e)
		t.Travel = t.Travel.Add(a.Travel())
		t.Halting = t.Halting.Add(a.Halting)
		t.Lodging = t.Lodging.Add(a.Lodging)
		t.Total = t.Total.Add(a.Total())
	}
	return t
}

// Consistent reports whether Total equals the sum of the three categories.
func (t Totals) Consistent() bool {
	return t.Total.Equal(t.Halting.Add(t.Lodging).Add(t.Travel))
}
