package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"routina/internal/core"
	"routina/internal/engine"
	"routina/internal/memstore"
)

type fakePublisher struct {
	published []string
	err       error
	closed    bool
}

func (f *fakePublisher) PublishCompletionSync(_ context.Context, completionID, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, completionID)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func setup(t *testing.T) (*engine.Engine, core.Habit) {
	t.Helper()
	store := memstore.New()
	store.SeedUser(core.User{ID: "u1", Username: "dana", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	eng := engine.New(engine.Stores{Habits: store, Completions: store, Events: store, Users: store},
		func() time.Time { return time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC) })

	habit, err := eng.CreateHabit(context.Background(), "u1", core.Habit{
		Title: "Gym", DefaultDuration: 45, Frequency: core.Fixed, DaysOfWeek: []int{3},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	return eng, habit
}

func TestRecordPublishesSyncMessage(t *testing.T) {
	eng, habit := setup(t)
	pub := &fakePublisher{}
	svc := NewCompletionService(eng, pub)

	event, err := svc.Record(context.Background(), "u1", habit.ID, core.Date{}, true, 40)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != event.ID {
		t.Errorf("published = %v, want [%s]", pub.published, event.ID)
	}
}

func TestRecordAbsorbsPublishFailure(t *testing.T) {
	eng, habit := setup(t)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewCompletionService(eng, pub)

	// The local write is authoritative; publish failure must not surface.
	if _, err := svc.Record(context.Background(), "u1", habit.ID, core.Date{}, true, 40); err != nil {
		t.Fatalf("Record() error = %v, want nil despite publish failure", err)
	}
}

func TestRecordWithoutPublisher(t *testing.T) {
	eng, habit := setup(t)
	svc := NewCompletionService(eng, nil)

	if _, err := svc.Record(context.Background(), "u1", habit.ID, core.Date{}, true, 40); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRecordPropagatesDomainErrors(t *testing.T) {
	eng, habit := setup(t)
	pub := &fakePublisher{}
	svc := NewCompletionService(eng, pub)

	// Thursday is not scheduled; nothing must be published.
	_, err := svc.Record(context.Background(), "u1", habit.ID, core.NewDate(2024, 3, 7), true, 40)
	if !errors.Is(err, core.ErrNotDue) {
		t.Fatalf("Record() error = %v, want not due", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("published = %v, want none", pub.published)
	}
}
