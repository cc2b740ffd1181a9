package progress

import (
	"context"
	"testing"
	"time"

	"routina/internal/core"
	"routina/internal/ledger"
	"routina/internal/memstore"
)

// today is Wednesday 2024-03-13.
var today = core.NewDate(2024, 3, 13)

func seed(t *testing.T, store *memstore.Store, habit core.Habit, dates []core.Date, completed bool) {
	t.Helper()
	l := ledger.New(store)
	for _, d := range dates {
		if _, err := l.Record(context.Background(), habit, d, completed, habit.DefaultDuration, today); err != nil {
			t.Fatalf("seed Record(%s): %v", d.ISO(), err)
		}
	}
}

func TestStreakFixed(t *testing.T) {
	habit := core.Habit{
		ID:              "h1",
		UserID:          "u1",
		Title:           "Run",
		DefaultDuration: 30,
		Frequency:       core.Fixed,
		DaysOfWeek:      []int{1, 3, 5},
		CreatedAt:       time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		completed []core.Date
		skipped   []core.Date
		want      int
	}{
		{
			name: "no events",
			want: 0,
		},
		{
			name: "three consecutive due days",
			completed: []core.Date{
				core.NewDate(2024, 3, 8),  // Fri
				core.NewDate(2024, 3, 11), // Mon
				core.NewDate(2024, 3, 13), // Wed, today
			},
			want: 3,
		},
		{
			name: "today unlogged does not break",
			completed: []core.Date{
				core.NewDate(2024, 3, 8),
				core.NewDate(2024, 3, 11),
			},
			want: 2,
		},
		{
			name: "missed due day before the run",
			completed: []core.Date{
				core.NewDate(2024, 3, 6), // Wed
				// Friday 2024-03-08 missed
				core.NewDate(2024, 3, 11),
				core.NewDate(2024, 3, 13),
			},
			want: 2,
		},
		{
			name: "explicit skip today breaks",
			completed: []core.Date{
				core.NewDate(2024, 3, 8),
				core.NewDate(2024, 3, 11),
			},
			skipped: []core.Date{today},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			seed(t, store, habit, tt.completed, true)
			seed(t, store, habit, tt.skipped, false)

			got, err := NewCalculator(store).Streak(context.Background(), habit, today)
			if err != nil {
				t.Fatalf("Streak() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakFixedCountsBackfill(t *testing.T) {
	// The ledger lets fixed habits log due days that predate the habit.
	// Those completions count in the walk.
	habit := core.Habit{
		ID:              "h1b",
		UserID:          "u1",
		Title:           "Run",
		DefaultDuration: 30,
		Frequency:       core.Fixed,
		DaysOfWeek:      []int{1, 3, 5},
		CreatedAt:       time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), // today
	}

	store := memstore.New()
	seed(t, store, habit, []core.Date{
		core.NewDate(2024, 3, 11), // Mon, before creation
		core.NewDate(2024, 3, 13), // Wed, today
	}, true)

	got, err := NewCalculator(store).Streak(context.Background(), habit, today)
	if err != nil {
		t.Fatalf("Streak() error = %v", err)
	}
	if got != 2 {
		t.Errorf("Streak() = %d, want 2", got)
	}
}

func TestStreakFlexible(t *testing.T) {
	habit := core.Habit{
		ID:              "h2",
		UserID:          "u1",
		Title:           "Reading",
		DefaultDuration: 20,
		Frequency:       core.Flexible,
		TimesPerWeek:    3,
		CreatedAt:       time.Date(2024, 2, 25, 9, 0, 0, 0, time.UTC), // Sunday
	}

	tests := []struct {
		name      string
		completed []core.Date
		want      int
	}{
		{
			name: "current week satisfied counts immediately",
			completed: []core.Date{
				core.NewDate(2024, 3, 11),
				core.NewDate(2024, 3, 12),
				core.NewDate(2024, 3, 13),
			},
			want: 1,
		},
		{
			name: "current week short does not count and does not break",
			completed: []core.Date{
				// previous week, satisfied
				core.NewDate(2024, 3, 4),
				core.NewDate(2024, 3, 5),
				core.NewDate(2024, 3, 7),
				// current week, two of three so far
				core.NewDate(2024, 3, 11),
				core.NewDate(2024, 3, 12),
			},
			want: 1,
		},
		{
			name: "two satisfied weeks plus current",
			completed: []core.Date{
				core.NewDate(2024, 2, 26),
				core.NewDate(2024, 2, 27),
				core.NewDate(2024, 2, 29),
				core.NewDate(2024, 3, 4),
				core.NewDate(2024, 3, 5),
				core.NewDate(2024, 3, 7),
				core.NewDate(2024, 3, 10),
				core.NewDate(2024, 3, 11),
				core.NewDate(2024, 3, 12),
			},
			want: 3,
		},
		{
			name: "unsatisfied past week breaks the walk",
			completed: []core.Date{
				// week of Feb 25 satisfied but unreachable
				core.NewDate(2024, 2, 26),
				core.NewDate(2024, 2, 27),
				core.NewDate(2024, 2, 29),
				// week of Mar 3 only one completion
				core.NewDate(2024, 3, 5),
				// current week satisfied
				core.NewDate(2024, 3, 10),
				core.NewDate(2024, 3, 11),
				core.NewDate(2024, 3, 12),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			seed(t, store, habit, tt.completed, true)

			got, err := NewCalculator(store).Streak(context.Background(), habit, today)
			if err != nil {
				t.Fatalf("Streak() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakAlternate(t *testing.T) {
	habit := core.Habit{
		ID:              "h3",
		UserID:          "u1",
		Title:           "Stretch",
		DefaultDuration: 10,
		Frequency:       core.Alternate,
		CreatedAt:       time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC), // Thursday
	}
	// Due dates: Mar 7, 9, 11, 13.

	store := memstore.New()
	seed(t, store, habit, []core.Date{
		core.NewDate(2024, 3, 9),
		core.NewDate(2024, 3, 11),
		core.NewDate(2024, 3, 13),
	}, true)

	got, err := NewCalculator(store).Streak(context.Background(), habit, today)
	if err != nil {
		t.Fatalf("Streak() error = %v", err)
	}
	if got != 3 {
		t.Errorf("Streak() = %d, want 3", got)
	}
}

func TestStreakBeforeCreation(t *testing.T) {
	habit := core.Habit{
		ID:              "h4",
		UserID:          "u1",
		Title:           "New habit",
		DefaultDuration: 15,
		Frequency:       core.Flexible,
		TimesPerWeek:    2,
		CreatedAt:       time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	got, err := NewCalculator(memstore.New()).Streak(context.Background(), habit, today)
	if err != nil {
		t.Fatalf("Streak() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Streak() = %d, want 0 before creation", got)
	}
}

func TestExperience(t *testing.T) {
	habit := core.Habit{
		ID:              "h5",
		UserID:          "u1",
		Title:           "Walk",
		DefaultDuration: 30,
		Frequency:       core.Flexible,
		TimesPerWeek:    7,
		CreatedAt:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	store := memstore.New()
	if _, err := store.CreateHabit(context.Background(), habit); err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	var dates []core.Date
	for i := 0; i < 12; i++ {
		dates = append(dates, core.NewDate(2024, 3, 1).AddDays(i))
	}
	seed(t, store, habit, dates, true)
	// Skips must not award experience.
	seed(t, store, habit, []core.Date{core.NewDate(2024, 2, 28)}, false)

	exp, err := NewCalculator(store).Experience(context.Background(), "u1", today)
	if err != nil {
		t.Fatalf("Experience() error = %v", err)
	}
	if exp.XP != 120 {
		t.Errorf("XP = %d, want 120", exp.XP)
	}
	if exp.Level != 2 {
		t.Errorf("Level = %d, want 2", exp.Level)
	}
}
