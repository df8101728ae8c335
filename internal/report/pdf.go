package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"tourreport/internal/core"
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{"Date", 24, "L"},
	{"Status", 24, "L"},
	{"Branch", 44, "L"},
	{"Category", 34, "L"},
	{"Onward", 30, "L"},
	{"Return", 30, "L"},
	{"Travel", 22, "R"},
	{"Halting", 22, "R"},
	{"Lodging", 22, "R"},
	{"Day Total", 25, "R"},
}

// pdfMoney prefixes the currency code; the core PDF fonts have no rupee glyph.
func pdfMoney(d decimal.Decimal, code string) string {
	return code + " " + core.FormatAmount(d)
}

func leg(items []core.JourneyItem) string {
	j := firstJourney(items)
	if j.From == "" && j.To == "" {
		return ""
	}
	return j.From + " - " + j.To
}

// RenderPDF writes the printable A4 landscape version of the report.
func RenderPDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Tour Expense Report - "+r.Label, true)
	pdf.SetAuthor(r.Profile.Name, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "TOUR EXPENSE REPORT - "+r.Label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, kv := range [][2]string{
		{"Tour Name", r.TourName},
		{"Inspector", r.Profile.Name},
		{"Employee ID", r.Profile.EmployeeID},
	} {
		pdf.CellFormat(30, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(226, 232, 240)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	if len(r.Rows) == 0 {
		pdf.CellFormat(0, 8, "No saved entries for this month.", "1", 1, "C", false, 0, "")
	}
	for _, row := range r.Rows {
		_, pageHeight := pdf.GetPageSize()
		if pdf.GetY()+7 > pageHeight-12 {
			pdf.AddPage()
			header()
		}
		a := row.Amounts
		cells := []string{
			row.Entry.Date.Display(),
			row.Display.Status,
			tr(row.Display.Branch),
			tr(row.Display.Category),
			tr(leg(row.Entry.OnwardJourney)),
			tr(leg(row.Entry.ReturnJourney)),
			core.FormatAmount(a.Travel()),
			core.FormatAmount(a.Halting),
			core.FormatAmount(a.Lodging),
			core.FormatAmount(a.Total()),
		}
		fill := row.Display.AutoHoliday
		if fill {
			pdf.SetFillColor(254, 243, 199)
		}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "SUMMARY TOTALS", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	t := r.Totals
	for _, kv := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Halting Allowance", t.Halting},
		{"Lodging Allowance", t.Lodging},
		{"Travel Expenses", t.Travel},
		{"Total Claim", t.Total},
	} {
		pdf.CellFormat(50, 7, kv.label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, pdfMoney(kv.amount, r.Currency), "B", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
