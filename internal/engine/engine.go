// Package engine is the facade the API layer talks to. It composes the
// recurrence evaluator, the completion ledger, the progress calculator, and
// the aggregator behind user-scoped operations, with every "today" supplied
// by an injected clock so the domain never reads the wall clock directly.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"routina/internal/core"
	"routina/internal/ledger"
	"routina/internal/progress"
	"routina/internal/recurrence"
	"routina/internal/repo"
	"routina/internal/summary"
)

// Clock supplies the engine's notion of now.
type Clock func() time.Time

// Stores bundles the repositories the engine operates on. A single
// implementation (memstore or the SQLite repository) usually backs all four.
type Stores struct {
	Habits      repo.HabitRepository
	Completions repo.CompletionRepository
	Events      repo.EventRepository
	Users       repo.UserRepository
}

type Engine struct {
	stores   Stores
	ledger   *ledger.Ledger
	progress *progress.Calculator
	agg      *summary.Aggregator
	clock    Clock
	newID    func() string
}

func New(stores Stores, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	l := ledger.New(stores.Completions)
	return &Engine{
		stores:   stores,
		ledger:   l,
		progress: progress.NewCalculator(stores.Completions),
		agg:      summary.New(stores.Habits, stores.Completions, stores.Users, l),
		clock:    clock,
		newID:    uuid.NewString,
	}
}

func (e *Engine) today() core.Date {
	return core.DateOf(e.clock())
}

// repoErr classifies a store failure for the API layer. Errors the store
// already classified pass through so a not-found stays a not-found.
func repoErr(op string, err error) error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return err
	}
	return core.WrapRepository(op, err)
}

// EnsureUser provisions the user record the first time an authenticated
// subject shows up. Identity lives with the auth collaborator; the row
// anchors account age for the summary views.
func (e *Engine) EnsureUser(ctx context.Context, userID string) error {
	_, err := e.stores.Users.GetUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return repoErr("get user", err)
	}
	u := core.User{ID: userID, Username: userID, CreatedAt: e.clock()}
	if err := e.stores.Users.UpsertUser(ctx, u); err != nil {
		return repoErr("ensure user", err)
	}
	return nil
}

// RoutineEntry is one habit in the routine view, annotated with whether the
// habit is due on the reference date and what its logged status is.
type RoutineEntry struct {
	Habit   core.Habit
	IsToday bool
	Status  core.Status
}

// Routine returns the user's habits annotated for today.
func (e *Engine) Routine(ctx context.Context, userID string) ([]RoutineEntry, error) {
	today := e.today()
	habits, err := e.stores.Habits.ListHabits(ctx, userID)
	if err != nil {
		return nil, core.WrapRepository("list habits", err)
	}
	out := make([]RoutineEntry, 0, len(habits))
	for _, h := range habits {
		due, err := recurrence.IsDue(h, today)
		if err != nil {
			return nil, err
		}
		status, err := e.ledger.StatusOn(ctx, h, today, today)
		if err != nil {
			return nil, err
		}
		out = append(out, RoutineEntry{Habit: h, IsToday: due, Status: status})
	}
	return out, nil
}

// ListHabits returns the user's habits without derived annotations, for the
// edit view.
func (e *Engine) ListHabits(ctx context.Context, userID string) ([]core.Habit, error) {
	habits, err := e.stores.Habits.ListHabits(ctx, userID)
	if err != nil {
		return nil, core.WrapRepository("list habits", err)
	}
	return habits, nil
}

func (e *Engine) GetHabit(ctx context.Context, userID, habitID string) (core.Habit, error) {
	h, err := e.stores.Habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return core.Habit{}, repoErr("get habit", err)
	}
	return h, nil
}

// CreateHabit validates and persists a new habit owned by the user.
func (e *Engine) CreateHabit(ctx context.Context, userID string, h core.Habit) (core.Habit, error) {
	h.UserID = userID
	if h.ID == "" {
		h.ID = e.newID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = e.clock()
	}
	if err := h.Validate(); err != nil {
		return core.Habit{}, err
	}
	created, err := e.stores.Habits.CreateHabit(ctx, h)
	if err != nil {
		return core.Habit{}, core.WrapRepository("create habit", err)
	}
	return created, nil
}

// UpdateHabit replaces the habit's definition. The creation timestamp is
// preserved so recurrence anchoring does not shift.
func (e *Engine) UpdateHabit(ctx context.Context, userID, habitID string, h core.Habit) (core.Habit, error) {
	existing, err := e.stores.Habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return core.Habit{}, repoErr("get habit", err)
	}
	h.ID = existing.ID
	h.UserID = existing.UserID
	h.CreatedAt = existing.CreatedAt
	if err := h.Validate(); err != nil {
		return core.Habit{}, err
	}
	updated, err := e.stores.Habits.UpdateHabit(ctx, h)
	if err != nil {
		return core.Habit{}, core.WrapRepository("update habit", err)
	}
	return updated, nil
}

func (e *Engine) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := e.stores.Habits.DeleteHabit(ctx, userID, habitID); err != nil {
		return repoErr("delete habit", err)
	}
	return nil
}

// RecordCompletion logs an outcome for the habit on the given date. A zero
// date means today. Whatever the stored event was before, the returned event
// is the authoritative one afterward.
func (e *Engine) RecordCompletion(ctx context.Context, userID, habitID string, date core.Date, completed bool, duration int) (core.CompletionEvent, error) {
	habit, err := e.stores.Habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return core.CompletionEvent{}, repoErr("get habit", err)
	}
	today := e.today()
	if date.IsZero() {
		date = today
	}
	if duration == 0 && completed {
		duration = habit.DefaultDuration
	}
	return e.ledger.Record(ctx, habit, date, completed, duration, today)
}

// Streak returns the habit's current streak.
func (e *Engine) Streak(ctx context.Context, userID, habitID string) (int, error) {
	habit, err := e.stores.Habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return 0, repoErr("get habit", err)
	}
	return e.progress.Streak(ctx, habit, e.today())
}

// Experience returns the user's accumulated XP and level.
func (e *Engine) Experience(ctx context.Context, userID string) (core.ExperienceState, error) {
	return e.progress.Experience(ctx, userID, e.today())
}

// WeeklySummary covers the week containing today.
func (e *Engine) WeeklySummary(ctx context.Context, userID string) ([]summary.DaySummary, error) {
	weekStart, _ := core.WeekWindow(e.today())
	return e.agg.Weekly(ctx, userID, weekStart)
}

// MonthlySummary covers the given 1-based month.
func (e *Engine) MonthlySummary(ctx context.Context, userID string, year, month int) (summary.MonthSummary, error) {
	return e.agg.Monthly(ctx, userID, year, month, e.today())
}

// CreateEvent persists a one-off scheduled entry.
func (e *Engine) CreateEvent(ctx context.Context, userID string, ev core.Event) (core.Event, error) {
	ev.UserID = userID
	if ev.ID == "" {
		ev.ID = e.newID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = e.clock()
	}
	if err := ev.Validate(); err != nil {
		return core.Event{}, err
	}
	created, err := e.stores.Events.CreateEvent(ctx, ev)
	if err != nil {
		return core.Event{}, core.WrapRepository("create event", err)
	}
	return created, nil
}

// SetEventCompleted flips the completion flag of a one-off event.
func (e *Engine) SetEventCompleted(ctx context.Context, userID, eventID string, completed bool) (core.Event, error) {
	ev, err := e.stores.Events.SetEventCompleted(ctx, userID, eventID, completed)
	if err != nil {
		return core.Event{}, repoErr("update event", err)
	}
	return ev, nil
}

func (e *Engine) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if err := e.stores.Events.DeleteEvent(ctx, userID, eventID); err != nil {
		return repoErr("delete event", err)
	}
	return nil
}

// ListEvents returns the user's one-off events inside [from, to].
func (e *Engine) ListEvents(ctx context.Context, userID string, from, to core.Date) ([]core.Event, error) {
	if to.Before(from.Time) {
		return nil, core.NewError(core.KindInvalidDate, "end",
			fmt.Sprintf("range end %s precedes start %s", to.ISO(), from.ISO()))
	}
	events, err := e.stores.Events.ListEvents(ctx, userID, from, to)
	if err != nil {
		return nil, core.WrapRepository("list events", err)
	}
	return events, nil
}

// TodayEvents returns the one-off events scheduled for today.
func (e *Engine) TodayEvents(ctx context.Context, userID string) ([]core.Event, error) {
	today := e.today()
	return e.ListEvents(ctx, userID, today, today)
}
