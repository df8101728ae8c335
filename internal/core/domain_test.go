package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 2 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-03-02" || d.Display() != "02/03/2024" {
		t.Fatalf("unexpected rendering %q %q", d.String(), d.Display())
	}
	for _, bad := range []string{"", "2024-13-01", "02/03/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateWithPart(t *testing.T) {
	cases := []struct {
		from  Date
		part  DatePart
		value int
		want  Date
		ok    bool
	}{
		{NewDate(2024, 1, 31), PartMonth, 2, NewDate(2024, 2, 29), true},
		{NewDate(2023, 1, 31), PartMonth, 2, NewDate(2023, 2, 28), true},
		{NewDate(2024, 2, 29), PartYear, 2023, NewDate(2023, 2, 28), true},
		{NewDate(2024, 3, 2), PartDay, 15, NewDate(2024, 3, 15), true},
		{NewDate(2024, 4, 2), PartDay, 31, Date{}, false},
		{NewDate(2024, 4, 2), PartMonth, 13, Date{}, false},
		{NewDate(2024, 4, 2), DatePart("week"), 1, Date{}, false},
	}
	for i, tc := range cases {
		got, err := tc.from.WithPart(tc.part, tc.value)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("case %d expected %v, got %v (err=%v)", i, tc.want, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 2)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2024-03-02"` {
		t.Fatalf("unexpected marshal %s (err=%v)", b, err)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil || !back.Equal(d.Time) {
		t.Fatalf("unexpected unmarshal %v (err=%v)", back, err)
	}
	if err := back.UnmarshalJSON([]byte(`""`)); err != nil || !back.IsZero() {
		t.Fatalf("empty string should give zero date, got %v (err=%v)", back, err)
	}
}

func TestParseDayStatus(t *testing.T) {
	cases := map[string]DayStatus{
		"Inspection": Inspection,
		"leave":      Leave,
		" HOLIDAY ":  Holiday,
	}
	for in, want := range cases {
		got, err := ParseDayStatus(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseDayStatus("weekend"); !errors.Is(err, ErrInvalidDayStatus) {
		t.Fatalf("expected ErrInvalidDayStatus, got %v", err)
	}
}

func TestParseSection(t *testing.T) {
	for _, s := range []Section{OnwardJourney, ReturnJourney, OtherExpenses} {
		got, err := ParseSection(string(s))
		if err != nil || got != s {
			t.Fatalf("%s: got %s err=%v", s, got, err)
		}
	}
	if _, err := ParseSection("expenseGroup"); !errors.Is(err, ErrInvalidSection) {
		t.Fatalf("expected ErrInvalidSection, got %v", err)
	}
	if !OnwardJourney.IsJourney() || OtherExpenses.IsJourney() {
		t.Fatalf("unexpected IsJourney results")
	}
}

func TestEntryValidate(t *testing.T) {
	good := InspectionEntry{
		Date:           NewDate(2024, 3, 4),
		Branch:         "Main",
		InspectionType: InspectionTypeRBIA,
		DayStatus:      Inspection,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	leave := InspectionEntry{Date: NewDate(2024, 3, 4), DayStatus: Leave}
	if err := leave.Validate(); err != nil {
		t.Fatalf("leave day needs no branch, got %v", err)
	}

	missing := InspectionEntry{Date: NewDate(2024, 3, 4), DayStatus: Inspection, Branch: "  "}
	err := missing.Validate()
	if !errors.Is(err, ErrMissingBranch) || !errors.Is(err, ErrMissingInspectionType) {
		t.Fatalf("expected both missing-field errors, got %v", err)
	}

	bad := InspectionEntry{Date: NewDate(2024, 3, 4), DayStatus: "Weekend"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDayStatus) {
		t.Fatalf("expected ErrInvalidDayStatus, got %v", err)
	}
}

func TestEntryCloneIsDeep(t *testing.T) {
	saved := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	e := InspectionEntry{
		ID:            "e1",
		OnwardJourney: []JourneyItem{{ID: "j1", Amount: decimal.NewFromInt(10)}},
		OtherExpenses: []ExpenseItem{{ID: "o1"}},
		LastSavedAt:   &saved,
	}
	c := e.Clone()
	c.OnwardJourney[0].From = "changed"
	c.OtherExpenses[0].Halting = decimal.NewFromInt(5)
	*c.LastSavedAt = saved.Add(time.Hour)

	if e.OnwardJourney[0].From != "" || !e.OtherExpenses[0].Halting.IsZero() || !e.LastSavedAt.Equal(saved) {
		t.Fatalf("clone aliases the original: %+v", e)
	}
}

func TestEntryJourney(t *testing.T) {
	var e InspectionEntry
	list, err := e.Journey(ReturnJourney)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	*list = append(*list, JourneyItem{ID: "r1"})
	if len(e.ReturnJourney) != 1 {
		t.Fatalf("journey pointer does not write through")
	}
	if _, err := e.Journey(OtherExpenses); !errors.Is(err, ErrSectionMismatch) {
		t.Fatalf("expected ErrSectionMismatch, got %v", err)
	}
}

func TestReportCurrency(t *testing.T) {
	if got := ReportCurrency(TourData{Currency: "usd"}, UserProfile{HomeCurrency: "EUR"}); got != "USD" {
		t.Fatalf("tour currency should win, got %s", got)
	}
	if got := ReportCurrency(TourData{}, UserProfile{HomeCurrency: "gbp"}); got != "GBP" {
		t.Fatalf("profile currency expected, got %s", got)
	}
	if got := ReportCurrency(TourData{}, UserProfile{}); got != DefaultCurrency {
		t.Fatalf("default currency expected, got %s", got)
	}
}
