package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DatePart names one component of a date edited on its own.
type DatePart string

const (
	PartDay   DatePart = "day"
	PartMonth DatePart = "month"
	PartYear  DatePart = "year"
)

type Date struct {
	time.Time
}

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("invalid month")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a timestamp to its calendar date in the timestamp's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Display renders the date as DD/MM/YYYY.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// WithPart replaces one date component. The day is clamped to the length of
// the resulting month so that e.g. 31 January moved to February stays valid.
func (d Date) WithPart(part DatePart, value int) (Date, error) {
	year, month, day := d.Year(), d.Month(), d.Day()
	switch part {
	case PartDay:
		day = value
	case PartMonth:
		if value < 1 || value > 12 {
			return Date{}, ErrInvalidMonth
		}
		month = value
	case PartYear:
		if value < 1 || value > 9999 {
			return Date{}, fmt.Errorf("%w: year %d", ErrInvalidDate, value)
		}
		year = value
	default:
		return Date{}, fmt.Errorf("%w: unknown part %q", ErrInvalidDate, part)
	}
	last := DaysIn(year, month)
	if part == PartDay && (day < 1 || day > last) {
		return Date{}, fmt.Errorf("%w: day %d", ErrInvalidDate, day)
	}
	if day > last {
		day = last
	}
	return NewDate(year, month, day), nil
}

// DaysIn returns the number of days in the month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
