package core

import (
	"errors"
	"testing"
	"time"
)

func validFixedHabit() Habit {
	return Habit{
		ID:              "h1",
		UserID:          "u1",
		Title:           "Morning run",
		DefaultDuration: 30,
		Frequency:       Fixed,
		DaysOfWeek:      []int{1, 3, 5},
		CreatedAt:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHabitValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Habit)
		wantErr bool
	}{
		{"valid fixed", func(h *Habit) {}, false},
		{"valid flexible", func(h *Habit) {
			h.Frequency = Flexible
			h.DaysOfWeek = nil
			h.TimesPerWeek = 3
		}, false},
		{"valid alternate", func(h *Habit) {
			h.Frequency = Alternate
			h.DaysOfWeek = nil
		}, false},
		{"empty title", func(h *Habit) { h.Title = "  " }, true},
		{"zero duration", func(h *Habit) { h.DefaultDuration = 0 }, true},
		{"negative duration", func(h *Habit) { h.DefaultDuration = -10 }, true},
		{"unknown frequency", func(h *Habit) { h.Frequency = "biweekly" }, true},
		{"fixed without days", func(h *Habit) { h.DaysOfWeek = nil }, true},
		{"fixed with day out of range", func(h *Habit) { h.DaysOfWeek = []int{7} }, true},
		{"fixed with duplicate day", func(h *Habit) { h.DaysOfWeek = []int{1, 1} }, true},
		{"fixed with timesPerWeek", func(h *Habit) { h.TimesPerWeek = 2 }, true},
		{"flexible without timesPerWeek", func(h *Habit) {
			h.Frequency = Flexible
			h.DaysOfWeek = nil
		}, true},
		{"flexible with daysOfWeek", func(h *Habit) {
			h.Frequency = Flexible
			h.TimesPerWeek = 3
		}, true},
		{"alternate with daysOfWeek", func(h *Habit) { h.Frequency = Alternate }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validFixedHabit()
			tt.mutate(&h)
			err := h.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidHabit) {
				t.Errorf("Validate() error kind = %v, want invalid_habit", err)
			}
		})
	}
}

func TestExperienceFromXP(t *testing.T) {
	tests := []struct {
		xp        int
		wantLevel int
	}{
		{0, 1},
		{90, 1},
		{100, 2},
		{250, 3},
		{990, 10},
	}

	for _, tt := range tests {
		got := ExperienceFromXP(tt.xp)
		if got.Level != tt.wantLevel {
			t.Errorf("ExperienceFromXP(%d).Level = %d, want %d", tt.xp, got.Level, tt.wantLevel)
		}
		if got.XP != tt.xp {
			t.Errorf("ExperienceFromXP(%d).XP = %d", tt.xp, got.XP)
		}
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := NewError(KindNotDue, "date", "habit is not scheduled for 2024-01-02")
	if !errors.Is(err, ErrNotDue) {
		t.Error("errors.Is should match by kind")
	}
	if errors.Is(err, ErrFutureDate) {
		t.Error("errors.Is should not match a different kind")
	}

	wrapped := WrapRepository("list habits", errors.New("disk gone"))
	if !errors.Is(wrapped, ErrRepository) {
		t.Error("repository wrap should match ErrRepository")
	}
}
