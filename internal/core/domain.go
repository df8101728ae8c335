package core

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Inspection DayStatus = "Inspection"
	Leave      DayStatus = "Leave"
	Holiday    DayStatus = "Holiday"
)

const (
	OnwardJourney Section = "onwardJourney"
	ReturnJourney Section = "returnJourney"
	OtherExpenses Section = "otherExpenses"
)

// InspectionTypeRBIA is the one inspection category offered as a fixed choice;
// anything else is entered as free text.
const InspectionTypeRBIA = "RBIA"

type (
	// DayStatus classifies a recorded day. Only Inspection days carry a claim.
	DayStatus string

	// Section names one of the three item lists of an entry.
	Section string

	JourneyItem struct {
		ID          string          `json:"id"`
		From        string          `json:"from"`
		To          string          `json:"to"`
		StartTime   string          `json:"startTime"`
		ArrivedTime string          `json:"arrivedTime"`
		Amount      decimal.Decimal `json:"amount"`
	}

	ExpenseItem struct {
		ID      string          `json:"id"`
		Halting decimal.Decimal `json:"halting"`
		Lodging decimal.Decimal `json:"lodging"`
	}

	InspectionEntry struct {
		ID             string        `json:"id"`
		Date           Date          `json:"date"`
		Branch         string        `json:"branch"`
		DPCode         string        `json:"dpCode"`
		InspectionType string        `json:"inspectionType"`
		OnwardJourney  []JourneyItem `json:"onwardJourney"`
		ReturnJourney  []JourneyItem `json:"returnJourney"`
		OtherExpenses  []ExpenseItem `json:"otherExpenses"`
		DayStatus      DayStatus     `json:"dayStatus"`
		LastSavedAt    *time.Time    `json:"lastSavedAt,omitempty"`
	}

	TourData struct {
		TourName  string            `json:"tourName"`
		StartDate Date              `json:"startDate"`
		EndDate   Date              `json:"endDate"`
		Currency  string            `json:"currency"`
		Entries   []InspectionEntry `json:"entries"`
	}

	UserProfile struct {
		Name         string `json:"name"`
		Bio          string `json:"bio"`
		HomeCurrency string `json:"homeCurrency"`
		Avatar       string `json:"avatar,omitempty"`
		EmployeeID   string `json:"employeeId"`
	}
)

var (
	ErrEntryNotFound         = errors.New("entry not found")
	ErrItemNotFound          = errors.New("item not found")
	ErrEntryLocked           = errors.New("entry already saved")
	ErrMissingBranch         = errors.New("branch is required for inspection days")
	ErrMissingInspectionType = errors.New("inspection category is required for inspection days")
	ErrInvalidDayStatus      = errors.New("invalid day status")
	ErrInvalidSection        = errors.New("invalid section")
	ErrSectionMismatch       = errors.New("item kind does not match section")
)

// ParseDayStatus accepts the status names case-insensitively.
func ParseDayStatus(s string) (DayStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inspection":
		return Inspection, nil
	case "leave":
		return Leave, nil
	case "holiday":
		return Holiday, nil
	}
	return "", ErrInvalidDayStatus
}

func (s DayStatus) IsValid() bool {
	switch s {
	case Inspection, Leave, Holiday:
		return true
	default:
		return false
	}
}

func (s DayStatus) String() string {
	return string(s)
}

func ParseSection(s string) (Section, error) {
	switch Section(strings.TrimSpace(s)) {
	case OnwardJourney:
		return OnwardJourney, nil
	case ReturnJourney:
		return ReturnJourney, nil
	case OtherExpenses:
		return OtherExpenses, nil
	}
	return "", ErrInvalidSection
}

// IsJourney reports whether the section holds JourneyItems.
func (s Section) IsJourney() bool {
	return s == OnwardJourney || s == ReturnJourney
}

func (s Section) String() string {
	return string(s)
}

// IsSaved reports whether the entry has been committed to the report.
func (e InspectionEntry) IsSaved() bool {
	return e.LastSavedAt != nil
}

// Journey returns the journey list for a journey section.
func (e *InspectionEntry) Journey(s Section) (*[]JourneyItem, error) {
	switch s {
	case OnwardJourney:
		return &e.OnwardJourney, nil
	case ReturnJourney:
		return &e.ReturnJourney, nil
	case OtherExpenses:
		return nil, ErrSectionMismatch
	}
	return nil, ErrInvalidSection
}

// Clone returns a deep copy so callers can't alias the owner's slices.
func (e InspectionEntry) Clone() InspectionEntry {
	out := e
	out.OnwardJourney = slices.Clone(e.OnwardJourney)
	out.ReturnJourney = slices.Clone(e.ReturnJourney)
	out.OtherExpenses = slices.Clone(e.OtherExpenses)
	if e.LastSavedAt != nil {
		t := *e.LastSavedAt
		out.LastSavedAt = &t
	}
	return out
}

// Validate checks the fields the save action requires. Non-inspection days
// need nothing; inspection days need a branch and a category.
func (e InspectionEntry) Validate() error {
	if !e.DayStatus.IsValid() {
		return ErrInvalidDayStatus
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.DayStatus != Inspection {
		return nil
	}
	var errs []error
	if strings.TrimSpace(e.Branch) == "" {
		errs = append(errs, ErrMissingBranch)
	}
	if strings.TrimSpace(e.InspectionType) == "" {
		errs = append(errs, ErrMissingInspectionType)
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy of the tour and all its entries.
func (t TourData) Clone() TourData {
	out := t
	out.Entries = make([]InspectionEntry, len(t.Entries))
	for i, e := range t.Entries {
		out.Entries[i] = e.Clone()
	}
	return out
}

// ReportCurrency picks the tour currency, then the profile's home currency.
func ReportCurrency(t TourData, p UserProfile) string {
	if c := strings.TrimSpace(t.Currency); c != "" {
		return strings.ToUpper(c)
	}
	if c := strings.TrimSpace(p.HomeCurrency); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCurrency
}
