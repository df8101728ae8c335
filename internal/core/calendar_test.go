package core

import (
	"testing"
	"time"
)

func saved(at time.Time) *time.Time { return &at }

func TestIsHoliday(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"2024-03-02", true},  // Saturday
		{"2024-03-03", true},  // Sunday
		{"2024-03-04", false}, // Monday
		{"2024-03-08", false}, // Friday
		{"2023-12-31", true},  // Sunday across a year boundary
	}
	for _, tc := range cases {
		if got := IsHoliday(MustParseDate(tc.date)); got != tc.want {
			t.Fatalf("IsHoliday(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestNavigateMonth(t *testing.T) {
	cases := []struct {
		year, month, dir int
		wantY, wantM     int
	}{
		{2024, 1, -1, 2023, 12},
		{2024, 12, 1, 2025, 1},
		{2024, 6, 1, 2024, 7},
		{2024, 6, -1, 2024, 5},
		{2024, 6, 0, 2024, 6},
		{2024, 12, 5, 2025, 1}, // only the sign matters
	}
	for _, tc := range cases {
		y, m := NavigateMonth(tc.year, tc.month, tc.dir)
		if y != tc.wantY || m != tc.wantM {
			t.Fatalf("NavigateMonth(%d, %d, %d) = (%d, %d), want (%d, %d)", tc.year, tc.month, tc.dir, y, m, tc.wantY, tc.wantM)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(2024, 3); got != "March 2024" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestEntriesForMonth(t *testing.T) {
	at := saved(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))
	entries := []InspectionEntry{
		{ID: "late", Date: MustParseDate("2024-03-15"), LastSavedAt: at},
		{ID: "draft", Date: MustParseDate("2024-03-01")},
		{ID: "first-of-day", Date: MustParseDate("2024-03-05"), LastSavedAt: at},
		{ID: "april", Date: MustParseDate("2024-04-01"), LastSavedAt: at},
		{ID: "second-of-day", Date: MustParseDate("2024-03-05"), LastSavedAt: at},
		{ID: "last-year", Date: MustParseDate("2023-03-05"), LastSavedAt: at},
	}

	got := EntriesForMonth(entries, 2024, 3)
	want := []string{"first-of-day", "second-of-day", "late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	if empty := EntriesForMonth(entries, 2024, 2); len(empty) != 0 {
		t.Fatalf("expected no entries for February, got %d", len(empty))
	}
}

func TestDrafts(t *testing.T) {
	at := saved(time.Now())
	entries := []InspectionEntry{
		{ID: "b", Date: MustParseDate("2024-03-09")},
		{ID: "saved", Date: MustParseDate("2024-03-01"), LastSavedAt: at},
		{ID: "a", Date: MustParseDate("2024-03-02")},
	}
	got := Drafts(entries)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected drafts: %+v", got)
	}
}

func TestSavedMonths(t *testing.T) {
	at := saved(time.Now())
	entries := []InspectionEntry{
		{Date: MustParseDate("2024-03-09"), LastSavedAt: at},
		{Date: MustParseDate("2023-12-01"), LastSavedAt: at},
		{Date: MustParseDate("2024-03-01"), LastSavedAt: at},
		{Date: MustParseDate("2024-05-01")},
	}
	got := SavedMonths(entries)
	if len(got) != 2 || got[0] != [2]int{2023, 12} || got[1] != [2]int{2024, 3} {
		t.Fatalf("unexpected months: %v", got)
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(2024, 3); got != "2024-03" {
		t.Fatalf("unexpected key %q", got)
	}
	y, m, err := ParseMonthKey("2023-12")
	if err != nil || y != 2023 || m != 12 {
		t.Fatalf("unexpected parse (%d, %d, %v)", y, m, err)
	}
	if _, _, err := ParseMonthKey("2023-13"); err == nil {
		t.Fatalf("expected error for month 13")
	}
}
