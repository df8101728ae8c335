// Package report assembles a month of saved entries into a printable report
// and renders it as CSV, PDF or an aligned text summary.
package report

import (
	"tourreport/internal/core"
)

// MonthRef points at a neighbouring report month.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Row is one entry as it appears in the report: the stored entry, its
// presentation after the holiday override, and its ledger amounts.
type Row struct {
	Entry   core.InspectionEntry
	Display core.Display
	Amounts core.EntryAmounts
}

// Report is a fully assembled month.
type Report struct {
	Year     int
	Month    int
	Label    string
	TourName string
	Profile  core.UserProfile
	Currency string
	Rows     []Row
	Totals   core.Totals
	Prev     MonthRef
	Next     MonthRef
}

// Build collects everything a month report needs from a tour snapshot.
// Rows keep the order produced by core.EntriesForMonth.
func Build(tour core.TourData, profile core.UserProfile, year, month int) Report {
	entries := core.EntriesForMonth(tour.Entries, year, month)
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Entry:   e,
			Display: core.DisplayFor(e),
			Amounts: core.AmountsOf(e),
		}
	}

	py, pm := core.NavigateMonth(year, month, -1)
	ny, nm := core.NavigateMonth(year, month, 1)

	return Report{
		Year:     year,
		Month:    month,
		Label:    core.MonthLabel(year, month),
		TourName: tour.TourName,
		Profile:  profile,
		Currency: core.ReportCurrency(tour, profile),
		Rows:     rows,
		Totals:   core.ComputeTotals(entries),
		Prev:     MonthRef{Year: py, Month: pm},
		Next:     MonthRef{Year: ny, Month: nm},
	}
}

// Key identifies the report month, e.g. "2024-03".
func (r Report) Key() string {
	return core.MonthKey(r.Year, r.Month)
}

// Entries returns the stored entries in row order.
func (r Report) Entries() []core.InspectionEntry {
	out := make([]core.InspectionEntry, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Entry
	}
	return out
}

func firstJourney(items []core.JourneyItem) core.JourneyItem {
	if len(items) == 0 {
		return core.JourneyItem{}
	}
	return items[0]
}
