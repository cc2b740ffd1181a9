package core

import (
	"fmt"
	"time"
)

// Supported calendar range. Anything outside is rejected as InvalidDate.
const (
	MinYear = 1
	MaxYear = 9999
)

// Date is a timezone-naive calendar date. The embedded time.Time is always
// UTC midnight; no timezone conversion is ever performed on it.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, NewError(KindInvalidDate, "date", fmt.Sprintf("malformed date %q", s))
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return NewError(KindInvalidDate, "date", "date cannot be zero")
	}
	if y := d.Time.Year(); y < MinYear || y > MaxYear {
		return NewError(KindInvalidDate, "year", fmt.Sprintf("year %d outside supported range", y))
	}
	return nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DayOfWeek returns the day of the week, Sunday=0 through Saturday=6.
func (d Date) DayOfWeek() int {
	return int(d.Time.Weekday())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// DaysBetween returns the number of whole days from a to b. Negative when b
// precedes a.
func DaysBetween(a, b Date) int {
	return int(b.Time.Sub(a.Time).Hours() / 24)
}

func validateYearMonth(year, month int) error {
	if year < MinYear || year > MaxYear {
		return NewError(KindInvalidDate, "year", fmt.Sprintf("year %d outside supported range", year))
	}
	if month < 1 || month > 12 {
		return NewError(KindInvalidDate, "month", fmt.Sprintf("month %d outside 1-12", month))
	}
	return nil
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year, month int) (int, error) {
	if err := validateYearMonth(year, month); err != nil {
		return 0, err
	}
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(), nil
}

// WeekWindow returns the Sunday-to-Saturday range containing d.
func WeekWindow(d Date) (Date, Date) {
	start := d.AddDays(-d.DayOfWeek())
	return start, start.AddDays(6)
}

// MonthWindow returns the first and last calendar day of the given month.
func MonthWindow(year, month int) (Date, Date, error) {
	if err := validateYearMonth(year, month); err != nil {
		return Date{}, Date{}, err
	}
	days, _ := DaysInMonth(year, month)
	return NewDate(year, month, 1), NewDate(year, month, days), nil
}
