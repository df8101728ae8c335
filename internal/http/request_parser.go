package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tourreport/internal/core"
	"tourreport/internal/session"
)

// errBadRequest marks malformed input that never reached the domain.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("invalid JSON body: trailing data")
	}
	return nil
}

// parseMonthPath reads the {year} and {month} path values.
func parseMonthPath(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return 0, 0, badRequest("invalid year %q", r.PathValue("year"))
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		return 0, 0, badRequest("invalid month %q", r.PathValue("month"))
	}
	return year, month, nil
}

func parseSectionPath(r *http.Request) (core.Section, error) {
	return core.ParseSection(r.PathValue("section"))
}

func parseDatePart(s string) (core.DatePart, error) {
	switch p := core.DatePart(strings.ToLower(strings.TrimSpace(s))); p {
	case core.PartDay, core.PartMonth, core.PartYear:
		return p, nil
	}
	return "", badRequest("unknown date part %q", s)
}

// optionalDate parses a date field that may be absent or empty.
func optionalDate(s *string) (*core.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optionalAmount parses a user-entered amount. Amounts travel as strings so
// that "12,50" and "" are accepted the way the form sends them.
func optionalAmount(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := core.ParseAmount(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, *s)
	}
	return &d, nil
}

func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

type createEntryRequest struct {
	Date *string `json:"date"`
}

type tourRequest struct {
	TourName  string `json:"tourName"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Currency  string `json:"currency"`
}

func (req tourRequest) settings() (session.TourSettings, error) {
	var t session.TourSettings
	t.TourName = sanitizeInput(req.TourName)
	t.Currency = strings.ToUpper(sanitizeInput(req.Currency))
	if t.Currency != "" && len(t.Currency) != 3 {
		return t, badRequest("currency must be a 3-letter code, got %q", req.Currency)
	}
	start, err := optionalDate(&req.StartDate)
	if err != nil {
		return t, err
	}
	end, err := optionalDate(&req.EndDate)
	if err != nil {
		return t, err
	}
	if start != nil {
		t.StartDate = *start
	}
	if end != nil {
		t.EndDate = *end
	}
	if start != nil && end != nil && end.Before(start.Time) {
		return t, badRequest("endDate is before startDate")
	}
	return t, nil
}

type profileRequest struct {
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	HomeCurrency string `json:"homeCurrency"`
	Avatar       string `json:"avatar"`
	EmployeeID   string `json:"employeeId"`
}

func (req profileRequest) profile() (core.UserProfile, error) {
	p := core.UserProfile{
		Name:         sanitizeInput(req.Name),
		Bio:          sanitizeInput(req.Bio),
		HomeCurrency: strings.ToUpper(sanitizeInput(req.HomeCurrency)),
		Avatar:       strings.TrimSpace(req.Avatar),
		EmployeeID:   sanitizeInput(req.EmployeeID),
	}
	if p.HomeCurrency != "" && len(p.HomeCurrency) != 3 {
		return p, badRequest("homeCurrency must be a 3-letter code, got %q", req.HomeCurrency)
	}
	return p, nil
}

type entryPatchRequest struct {
	Date           *string `json:"date"`
	Branch         *string `json:"branch"`
	DPCode         *string `json:"dpCode"`
	InspectionType *string `json:"inspectionType"`
	DayStatus      *string `json:"dayStatus"`
}

func (req entryPatchRequest) patch() (session.EntryPatch, error) {
	p := session.EntryPatch{
		Branch:         optionalText(req.Branch),
		DPCode:         optionalText(req.DPCode),
		InspectionType: optionalText(req.InspectionType),
	}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if req.DayStatus != nil {
		st, err := core.ParseDayStatus(*req.DayStatus)
		if err != nil {
			return p, err
		}
		p.DayStatus = &st
	}
	return p, nil
}

type datePartRequest struct {
	Value int `json:"value"`
}

type journeyPatchRequest struct {
	From        *string `json:"from"`
	To          *string `json:"to"`
	StartTime   *string `json:"startTime"`
	ArrivedTime *string `json:"arrivedTime"`
	Amount      *string `json:"amount"`
}

func (req journeyPatchRequest) patch() (session.JourneyPatch, error) {
	amount, err := optionalAmount(req.Amount)
	if err != nil {
		return session.JourneyPatch{}, err
	}
	return session.JourneyPatch{
		From:        optionalText(req.From),
		To:          optionalText(req.To),
		StartTime:   optionalText(req.StartTime),
		ArrivedTime: optionalText(req.ArrivedTime),
		Amount:      amount,
	}, nil
}

type expensePatchRequest struct {
	Halting *string `json:"halting"`
	Lodging *string `json:"lodging"`
}

func (req expensePatchRequest) patch() (session.ExpensePatch, error) {
	halting, err := optionalAmount(req.Halting)
	if err != nil {
		return session.ExpensePatch{}, err
	}
	lodging, err := optionalAmount(req.Lodging)
	if err != nil {
		return session.ExpensePatch{}, err
	}
	return session.ExpensePatch{Halting: halting, Lodging: lodging}, nil
}

// itemPatchRequest accepts the fields of either item kind; the section in
// the path decides which apply.
type itemPatchRequest struct {
	journeyPatchRequest
	expensePatchRequest
}

func (req itemPatchRequest) hasJourneyFields() bool {
	j := req.journeyPatchRequest
	return j.From != nil || j.To != nil || j.StartTime != nil || j.ArrivedTime != nil || j.Amount != nil
}

func (req itemPatchRequest) hasExpenseFields() bool {
	return req.Halting != nil || req.Lodging != nil
}
