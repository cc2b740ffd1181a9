package core

import (
	"errors"
	"testing"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   int
		want    int
		wantErr bool
	}{
		{"january", 2024, 1, 31, false},
		{"february leap year", 2024, 2, 29, false},
		{"february non-leap year", 2023, 2, 28, false},
		{"april", 2024, 4, 30, false},
		{"december", 2024, 12, 31, false},
		{"month zero", 2024, 0, 0, true},
		{"month thirteen", 2024, 13, 0, true},
		{"year out of range", 10000, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysInMonth(tt.year, tt.month)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DaysInMonth() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("DaysInMonth() error kind = %v, want invalid_date", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DaysInMonth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayOfWeek(t *testing.T) {
	// 2024-01-01 was a Monday.
	if got := NewDate(2024, 1, 1).DayOfWeek(); got != 1 {
		t.Errorf("DayOfWeek(2024-01-01) = %d, want 1", got)
	}
	if got := NewDate(2024, 1, 7).DayOfWeek(); got != 0 {
		t.Errorf("DayOfWeek(2024-01-07) = %d, want 0", got)
	}
}

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name      string
		date      Date
		wantStart string
		wantEnd   string
	}{
		{"midweek", NewDate(2024, 1, 3), "2023-12-31", "2024-01-06"},
		{"on sunday", NewDate(2024, 1, 7), "2024-01-07", "2024-01-13"},
		{"on saturday", NewDate(2024, 1, 13), "2024-01-07", "2024-01-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.date)
			if start.ISO() != tt.wantStart || end.ISO() != tt.wantEnd {
				t.Errorf("WeekWindow() = %s..%s, want %s..%s",
					start.ISO(), end.ISO(), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	first, last, err := MonthWindow(2024, 2)
	if err != nil {
		t.Fatalf("MonthWindow() error = %v", err)
	}
	if first.ISO() != "2024-02-01" || last.ISO() != "2024-02-29" {
		t.Errorf("MonthWindow() = %s..%s, want 2024-02-01..2024-02-29", first.ISO(), last.ISO())
	}

	if _, _, err := MonthWindow(2024, 0); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("MonthWindow(2024, 0) error = %v, want invalid_date", err)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b Date
		want int
	}{
		{"same day", NewDate(2024, 3, 1), NewDate(2024, 3, 1), 0},
		{"forward", NewDate(2024, 1, 1), NewDate(2024, 1, 11), 10},
		{"backward", NewDate(2024, 1, 11), NewDate(2024, 1, 1), -10},
		{"across leap day", NewDate(2024, 2, 28), NewDate(2024, 3, 1), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.ISO() != "2024-06-15" {
		t.Errorf("ParseDate() = %s, want 2024-06-15", d.ISO())
	}

	if _, err := ParseDate("15/06/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(malformed) error = %v, want invalid_date", err)
	}
}
