package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"tourreport/internal/core"
)

// RenderText renders an aligned plain-text summary for terminals: one line
// per row followed by the formatted totals. Widths are measured in display
// cells so that non-ASCII branch names and currency symbols line up.
func RenderText(r Report) string {
	var b strings.Builder

	b.WriteString(r.Label)
	if r.TourName != "" {
		b.WriteString(" | " + r.TourName)
	}
	b.WriteString("\n\n")

	headers := []string{"Date", "Status", "Branch", "Category", "Day Total"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Entry.Date.Display(),
			row.Display.Status,
			row.Display.Branch,
			row.Display.Category,
			core.FormatCurrency(row.Amounts.Total(), r.Currency),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(runewidth.FillLeft(cell, widths[i]))
				continue
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString("\n")
	}

	if len(rows) == 0 {
		b.WriteString("No saved entries.\n")
	} else {
		writeRow(headers)
		for _, row := range rows {
			writeRow(row)
		}
	}

	b.WriteString("\n")
	summary := SummaryLines(r)
	labelWidth := 0
	for _, line := range summary {
		if w := runewidth.StringWidth(line[0]); w > labelWidth {
			labelWidth = w
		}
	}
	t := r.Totals
	for i, amt := range []string{
		core.FormatCurrency(t.Halting, r.Currency),
		core.FormatCurrency(t.Lodging, r.Currency),
		core.FormatCurrency(t.Travel, r.Currency),
		core.FormatCurrency(t.Total, r.Currency),
	} {
		b.WriteString(runewidth.FillRight(summary[i][0], labelWidth) + "  " + amt + "\n")
	}
	return b.String()
}
