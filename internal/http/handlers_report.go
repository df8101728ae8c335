package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"tourreport/internal/core"
	"tourreport/internal/report"
)

type amountsResponse struct {
	Onward  decimal.Decimal `json:"onward"`
	Return  decimal.Decimal `json:"return"`
	Travel  decimal.Decimal `json:"travel"`
	Halting decimal.Decimal `json:"halting"`
	Lodging decimal.Decimal `json:"lodging"`
	Total   decimal.Decimal `json:"total"`
}

type reportRowResponse struct {
	Entry   core.InspectionEntry `json:"entry"`
	Date    string               `json:"date"`
	Display core.Display         `json:"display"`
	Amounts amountsResponse      `json:"amounts"`
}

type totalsResponse struct {
	core.Totals
	Formatted map[string]string `json:"formatted"`
}

type summaryLine struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type reportResponse struct {
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	Key        string              `json:"key"`
	Label      string              `json:"label"`
	TourName   string              `json:"tourName"`
	Inspector  string              `json:"inspector"`
	EmployeeID string              `json:"employeeId"`
	Currency   string              `json:"currency"`
	Prev       report.MonthRef     `json:"prev"`
	Next       report.MonthRef     `json:"next"`
	Entries    []reportRowResponse `json:"entries"`
	Totals     totalsResponse      `json:"totals"`
	Summary    []summaryLine       `json:"summary"`
}

func newReportResponse(rep report.Report) reportResponse {
	rows := make([]reportRowResponse, len(rep.Rows))
	for i, row := range rep.Rows {
		a := row.Amounts
		rows[i] = reportRowResponse{
			Entry:   row.Entry,
			Date:    row.Entry.Date.Display(),
			Display: row.Display,
			Amounts: amountsResponse{
				Onward:  a.Onward,
				Return:  a.Return,
				Travel:  a.Travel(),
				Halting: a.Halting,
				Lodging: a.Lodging,
				Total:   a.Total(),
			},
		}
	}

	t := rep.Totals
	lines := report.SummaryLines(rep)
	summary := make([]summaryLine, len(lines))
	for i, l := range lines {
		summary[i] = summaryLine{Label: l[0], Amount: l[1]}
	}

	return reportResponse{
		Year:       rep.Year,
		Month:      rep.Month,
		Key:        rep.Key(),
		Label:      rep.Label,
		TourName:   rep.TourName,
		Inspector:  rep.Profile.Name,
		EmployeeID: rep.Profile.EmployeeID,
		Currency:   rep.Currency,
		Prev:       rep.Prev,
		Next:       rep.Next,
		Entries:    rows,
		Totals: totalsResponse{
			Totals: t,
			Formatted: map[string]string{
				"halting": core.FormatCurrency(t.Halting, rep.Currency),
				"lodging": core.FormatCurrency(t.Lodging, rep.Currency),
				"travel":  core.FormatCurrency(t.Travel, rep.Currency),
				"total":   core.FormatCurrency(t.Total, rep.Currency),
			},
		},
		Summary: summary,
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rep, err := s.svc.MonthReport(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	name, body, err := s.svc.ExportCSV(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeFile(w, "text/csv; charset=utf-8", name, body)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	name, body, err := s.svc.ExportPDF(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeFile(w, "application/pdf", name, body)
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	text, err := s.svc.SummaryText(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
