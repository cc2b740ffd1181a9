package recurrence

import (
	"errors"
	"testing"
	"time"

	"routina/internal/core"
)

func fixedHabit(days ...int) core.Habit {
	return core.Habit{
		ID:              "h-fixed",
		Title:           "Gym",
		DefaultDuration: 45,
		Frequency:       core.Fixed,
		DaysOfWeek:      days,
		CreatedAt:       time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func alternateHabit(created core.Date) core.Habit {
	return core.Habit{
		ID:              "h-alt",
		Title:           "Stretching",
		DefaultDuration: 15,
		Frequency:       core.Alternate,
		CreatedAt:       created.Time,
	}
}

func flexibleHabit(timesPerWeek int) core.Habit {
	return core.Habit{
		ID:              "h-flex",
		Title:           "Reading",
		DefaultDuration: 20,
		Frequency:       core.Flexible,
		TimesPerWeek:    timesPerWeek,
		CreatedAt:       time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestFixedChecker_IsDue(t *testing.T) {
	// Habit scheduled Mon/Wed/Fri, created Monday 2024-01-01.
	habit := fixedHabit(1, 3, 5)

	tests := []struct {
		name string
		date core.Date
		want bool
	}{
		{"wednesday is scheduled", core.NewDate(2024, 1, 3), true},
		{"tuesday is not scheduled", core.NewDate(2024, 1, 2), false},
		{"monday is scheduled", core.NewDate(2024, 1, 1), true},
		{"sunday is not scheduled", core.NewDate(2024, 1, 7), false},
		{"future friday is scheduled", core.NewDate(2025, 6, 6), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsDue(habit, tt.date)
			if err != nil {
				t.Fatalf("IsDue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDue(%s) = %v, want %v", tt.date.ISO(), got, tt.want)
			}
		})
	}
}

func TestAlternateChecker_IsDue(t *testing.T) {
	created := core.NewDate(2024, 3, 10)
	habit := alternateHabit(created)

	tests := []struct {
		name string
		date core.Date
		want bool
	}{
		{"creation day", created, true},
		{"next day is off", core.NewDate(2024, 3, 11), false},
		{"two days later is on", core.NewDate(2024, 3, 12), true},
		{"ten days later is on", core.NewDate(2024, 3, 20), true},
		{"eleven days later is off", core.NewDate(2024, 3, 21), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsDue(habit, tt.date)
			if err != nil {
				t.Fatalf("IsDue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDue(%s) = %v, want %v", tt.date.ISO(), got, tt.want)
			}
		})
	}

	t.Run("date before creation fails", func(t *testing.T) {
		_, err := IsDue(habit, core.NewDate(2024, 3, 9))
		if !errors.Is(err, core.ErrInvalidHabit) {
			t.Errorf("IsDue(before creation) error = %v, want invalid_habit", err)
		}
	})
}

func TestFlexibleChecker_IsDue(t *testing.T) {
	habit := flexibleHabit(3)

	tests := []struct {
		name string
		date core.Date
		want bool
	}{
		{"creation day", core.NewDate(2024, 1, 1), true},
		{"any later day", core.NewDate(2024, 5, 20), true},
		{"before creation", core.NewDate(2023, 12, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsDue(habit, tt.date)
			if err != nil {
				t.Fatalf("IsDue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDue(%s) = %v, want %v", tt.date.ISO(), got, tt.want)
			}
		})
	}
}

func TestGetChecker(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		wantErr   bool
	}{
		{"fixed", core.Fixed, false},
		{"flexible", core.Flexible, false},
		{"alternate", core.Alternate, false},
		{"unknown", core.Frequency("hourly"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := GetChecker(tt.frequency)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetChecker() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && checker == nil {
				t.Error("GetChecker() returned nil checker")
			}
		})
	}
}

func TestRegisterChecker(t *testing.T) {
	custom := core.Frequency("weekend")
	RegisterChecker(custom, FixedChecker{})
	defer delete(checkers, custom)

	if _, err := GetChecker(custom); err != nil {
		t.Errorf("GetChecker() after register error = %v", err)
	}
}

func TestDueSet(t *testing.T) {
	// Mon/Wed/Fri over the first week of January 2024.
	habit := fixedHabit(1, 3, 5)
	due, err := DueSet(habit, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 7))
	if err != nil {
		t.Fatalf("DueSet() error = %v", err)
	}

	want := []string{"2024-01-01", "2024-01-03", "2024-01-05"}
	if len(due) != len(want) {
		t.Fatalf("DueSet() returned %d dates, want %d", len(due), len(want))
	}
	for i, d := range due {
		if d.ISO() != want[i] {
			t.Errorf("DueSet()[%d] = %s, want %s", i, d.ISO(), want[i])
		}
	}
}

func TestDueSetSkipsPreCreationForAlternate(t *testing.T) {
	habit := alternateHabit(core.NewDate(2024, 1, 10))
	due, err := DueSet(habit, core.NewDate(2024, 1, 8), core.NewDate(2024, 1, 13))
	if err != nil {
		t.Fatalf("DueSet() error = %v", err)
	}

	want := []string{"2024-01-10", "2024-01-12"}
	if len(due) != len(want) {
		t.Fatalf("DueSet() returned %d dates, want %d", len(due), len(want))
	}
	for i, d := range due {
		if d.ISO() != want[i] {
			t.Errorf("DueSet()[%d] = %s, want %s", i, d.ISO(), want[i])
		}
	}
}
