package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"tourreport/internal/core"
)

// Columns is the fixed header of the entry table. Row values match it
// positionally; downstream spreadsheets parse the file by position.
var Columns = []string{
	"Date", "Status", "Branch", "DP Code", "Category",
	"Onward From", "Onward To", "Onward Start", "Onward Arrived", "Onward Amount",
	"Return From", "Return To", "Return Start", "Return Arrived", "Return Amount",
	"Halting", "Lodging", "Day Total",
}

// field is one cell of an entry row. Free-text cells are quoted on output.
type field struct {
	value  string
	quoted bool
}

func bare(s string) field   { return field{value: s} }
func quoted(s string) field { return field{value: s, quoted: true} }

func amount(d decimal.Decimal) field { return bare(core.FormatAmount(d)) }

func rowFields(row Row) []field {
	onward := firstJourney(row.Entry.OnwardJourney)
	ret := firstJourney(row.Entry.ReturnJourney)
	a := row.Amounts
	return []field{
		bare(row.Entry.Date.Display()),
		bare(row.Display.Status),
		quoted(row.Display.Branch),
		quoted(row.Entry.DPCode),
		quoted(row.Display.Category),
		quoted(onward.From),
		quoted(onward.To),
		bare(onward.StartTime),
		bare(onward.ArrivedTime),
		amount(a.Onward),
		quoted(ret.From),
		quoted(ret.To),
		bare(ret.StartTime),
		bare(ret.ArrivedTime),
		amount(a.Return),
		amount(a.Halting),
		amount(a.Lodging),
		amount(a.Total()),
	}
}

// RenderCSV writes the month report in the canonical export layout: title,
// quoted metadata, the entry table and the summary totals.
//
// Row amounts are the arithmetic sums of each entry's lists whatever its
// status; the summary section carries the claimable totals. Free text is
// wrapped in double quotes but embedded quotes and commas are not escaped.
func RenderCSV(r Report) string {
	var b strings.Builder

	b.WriteString("TOUR EXPENSE REPORT - " + r.Label + "\n")
	writeMeta(&b, "Tour Name", r.TourName)
	writeMeta(&b, "Inspector", r.Profile.Name)
	writeMeta(&b, "Employee ID", r.Profile.EmployeeID)
	b.WriteString("\n")

	b.WriteString(strings.Join(Columns, ",") + "\n")
	for _, row := range r.Rows {
		fields := rowFields(row)
		cells := make([]string, len(fields))
		for i, f := range fields {
			if f.quoted {
				cells[i] = `"` + f.value + `"`
			} else {
				cells[i] = f.value
			}
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}

	b.WriteString("\n")
	b.WriteString("SUMMARY TOTALS\n")
	for _, line := range SummaryLines(r) {
		b.WriteString(line[0] + "," + line[1] + " " + r.Currency + "\n")
	}
	return b.String()
}

func writeMeta(b *strings.Builder, key, value string) {
	b.WriteString(`"` + key + `","` + value + `"` + "\n")
}

// SummaryLines lists the four summary categories with their fixed-point
// amounts, in export order.
func SummaryLines(r Report) [][2]string {
	t := r.Totals
	return [][2]string{
		{"Halting Allowance", core.FormatAmount(t.Halting)},
		{"Lodging Allowance", core.FormatAmount(t.Lodging)},
		{"Travel Expenses", core.FormatAmount(t.Travel)},
		{"Total Claim", core.FormatAmount(t.Total)},
	}
}

// Records returns the header and entry rows as plain cells, with the same
// values RenderCSV writes but without any quoting.
func Records(r Report) [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	out = append(out, append([]string(nil), Columns...))
	for _, row := range r.Rows {
		fields := rowFields(row)
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = f.value
		}
		out = append(out, cells)
	}
	return out
}

// Filename is the suggested download name, e.g. "tour-report-2024-03.csv".
func Filename(r Report, ext string) string {
	return "tour-report-" + r.Key() + "." + ext
}
