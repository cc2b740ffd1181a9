package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"routina/internal/core"
	"routina/internal/memstore"
)

var today = core.NewDate(2024, 3, 15) // a Friday

func fixedHabit() core.Habit {
	return core.Habit{
		ID:              "h-fixed",
		UserID:          "u1",
		Title:           "Gym",
		DefaultDuration: 45,
		Frequency:       core.Fixed,
		DaysOfWeek:      []int{1, 3, 5},
		CreatedAt:       time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func flexibleHabit() core.Habit {
	return core.Habit{
		ID:              "h-flex",
		UserID:          "u1",
		Title:           "Reading",
		DefaultDuration: 20,
		Frequency:       core.Flexible,
		TimesPerWeek:    3,
		CreatedAt:       time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newLedger() (*Ledger, *memstore.Store) {
	store := memstore.New()
	return New(store), store
}

func TestRecordValidation(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()

	tests := []struct {
		name     string
		habit    core.Habit
		date     core.Date
		duration int
		wantKind error
	}{
		{"negative duration", fixedHabit(), today, -5, core.ErrInvalidDuration},
		{"tomorrow always fails", fixedHabit(), today.AddDays(1), 30, core.ErrFutureDate},
		{"tomorrow fails for flexible too", flexibleHabit(), today.AddDays(1), 30, core.ErrFutureDate},
		{"not scheduled day", fixedHabit(), core.NewDate(2024, 3, 14), 30, core.ErrNotDue}, // Thursday
		{"flexible before creation", flexibleHabit(), core.NewDate(2023, 12, 25), 30, core.ErrNotDue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Record(ctx, tt.habit, tt.date, true, tt.duration, today)
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("Record() error = %v, want kind of %v", err, tt.wantKind)
			}
		})
	}
}

func TestRecordSuccess(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()

	event, err := l.Record(ctx, fixedHabit(), today, true, 40, today)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !event.Completed || event.Duration != 40 || event.HabitID != "h-fixed" {
		t.Errorf("Record() stored %+v", event)
	}

	status, err := l.StatusOn(ctx, fixedHabit(), today, today)
	if err != nil {
		t.Fatalf("StatusOn() error = %v", err)
	}
	if status != core.StatusCompleted {
		t.Errorf("StatusOn() = %s, want completed", status)
	}
}

func TestRecordSupersedesEarlierWrite(t *testing.T) {
	l, store := newLedger()
	ctx := context.Background()
	habit := fixedHabit()
	date := core.NewDate(2024, 3, 1) // a due Friday in the past

	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	if _, err := l.Record(ctx, habit, date, true, 30, today); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	if _, err := l.Record(ctx, habit, date, false, 10, today); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	// Exactly one authoritative event remains, carrying the later values.
	latest, err := store.LatestCompletion(ctx, habit.ID, date)
	if err != nil {
		t.Fatalf("LatestCompletion() error = %v", err)
	}
	if latest == nil {
		t.Fatal("LatestCompletion() = nil, want the superseding event")
	}
	if latest.Completed || latest.Duration != 10 {
		t.Errorf("authoritative event = %+v, want the second write's values", latest)
	}

	status, err := l.StatusOn(ctx, habit, date, today)
	if err != nil {
		t.Fatalf("StatusOn() error = %v", err)
	}
	if status != core.StatusSkipped {
		t.Errorf("StatusOn() = %s, want skipped after supersede", status)
	}
}

func TestRecordIdempotentRepeat(t *testing.T) {
	l, store := newLedger()
	ctx := context.Background()
	habit := fixedHabit()

	for i := 0; i < 2; i++ {
		if _, err := l.Record(ctx, habit, today, true, 30, today); err != nil {
			t.Fatalf("Record() #%d error = %v", i+1, err)
		}
	}

	events, err := store.ListCompletions(ctx, habit.ID, today, today)
	if err != nil {
		t.Fatalf("ListCompletions() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("ledger holds %d events for the key, want 1", len(events))
	}
}

func TestStatusOn(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()
	habit := fixedHabit()

	tests := []struct {
		name string
		date core.Date
		want core.Status
	}{
		{"past due day without event", core.NewDate(2024, 3, 11), core.StatusUnlogged}, // Monday
		{"today without event", today, core.StatusPending},
		{"future due day", core.NewDate(2024, 3, 18), core.StatusPending},
		{"day not scheduled", core.NewDate(2024, 3, 12), core.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.StatusOn(ctx, habit, tt.date, today)
			if err != nil {
				t.Fatalf("StatusOn() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("StatusOn(%s) = %s, want %s", tt.date.ISO(), got, tt.want)
			}
		})
	}
}

func TestStatusOnSkipped(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()
	habit := fixedHabit()
	date := core.NewDate(2024, 3, 13) // due Wednesday

	if _, err := l.Record(ctx, habit, date, false, 0, today); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	status, err := l.StatusOn(ctx, habit, date, today)
	if err != nil {
		t.Fatalf("StatusOn() error = %v", err)
	}
	if status != core.StatusSkipped {
		t.Errorf("StatusOn() = %s, want skipped", status)
	}
}

func TestConcurrentWritesToOneKey(t *testing.T) {
	l, store := newLedger()
	ctx := context.Background()
	habit := fixedHabit()
	date := core.NewDate(2024, 3, 8) // due Friday in the past

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(i int) {
			_, err := l.Record(ctx, habit, date, i%2 == 0, i, today)
			done <- err
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Record() error = %v", err)
		}
	}

	events, err := store.ListCompletions(ctx, habit.ID, date, date)
	if err != nil {
		t.Fatalf("ListCompletions() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("ledger holds %d events after concurrent writes, want 1", len(events))
	}
}
