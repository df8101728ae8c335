package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// IsHoliday reports whether the date is an automatic holiday. Only the
// weekday matters: Saturdays and Sundays are holidays.
func IsHoliday(d Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// EntriesForMonth returns the saved entries dated in the given month, oldest
// first. Entries sharing a date keep their original order.
func EntriesForMonth(entries []InspectionEntry, year, month int) []InspectionEntry {
	out := make([]InspectionEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsSaved() || !e.Date.InMonth(year, month) {
			continue
		}
		out = append(out, e)
	}
	sortByDate(out)
	return out
}

// Drafts returns the unsaved entries, oldest first.
func Drafts(entries []InspectionEntry) []InspectionEntry {
	out := make([]InspectionEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsSaved() {
			continue
		}
		out = append(out, e)
	}
	sortByDate(out)
	return out
}

func sortByDate(entries []InspectionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date.Time)
	})
}

// NavigateMonth steps one month back (direction < 0) or forward (direction > 0),
// wrapping across year boundaries. A zero direction returns the input.
func NavigateMonth(year, month, direction int) (int, int) {
	switch {
	case direction < 0:
		month--
	case direction > 0:
		month++
	}
	if month < 1 {
		return year - 1, 12
	}
	if month > 12 {
		return year + 1, 1
	}
	return year, month
}

// MonthLabel renders "March 2024".
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// ValidMonth reports whether month is in 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// SavedMonths lists the distinct year-months that have saved entries, oldest first.
func SavedMonths(entries []InspectionEntry) [][2]int {
	seen := map[[2]int]struct{}{}
	var out [][2]int
	for _, e := range entries {
		if !e.IsSaved() || e.Date.IsZero() {
			continue
		}
		k := [2]int{e.Date.Year(), e.Date.Month()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// MonthKey renders a year-month as "2024-03".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(s string) (int, int, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t.Year(), int(t.Month()), nil
}
