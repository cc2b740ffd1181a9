// Package ledger is the append-only completion log. It validates completion
// requests against the recurrence evaluator and enforces at most one
// authoritative event per (habit, date) key.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"routina/internal/core"
	"routina/internal/recurrence"
	"routina/internal/repo"
)

// Ledger records and reads completion events. Reads never block writers;
// a reader observes either the pre- or post-write state of an in-flight
// supersede, never a partially applied event.
type Ledger struct {
	completions repo.CompletionRepository
	keys        *keyedMutex
	now         func() time.Time
	newID       func() string
}

func New(completions repo.CompletionRepository) *Ledger {
	return &Ledger{
		completions: completions,
		keys:        newKeyedMutex(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// WithClock overrides the write-timestamp source, for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func completionKey(habitID string, date core.Date) string {
	return habitID + "@" + date.ISO()
}

// Record validates and appends a completion event for (habit, date). A later
// write for the same key supersedes the earlier one for all subsequent reads.
func (l *Ledger) Record(ctx context.Context, habit core.Habit, date core.Date, completed bool, duration int, today core.Date) (core.CompletionEvent, error) {
	if duration < 0 {
		return core.CompletionEvent{}, core.NewError(core.KindInvalidDuration, "duration",
			fmt.Sprintf("duration %d cannot be negative", duration))
	}
	if err := date.Validate(); err != nil {
		return core.CompletionEvent{}, err
	}
	if date.After(today.Time) {
		return core.CompletionEvent{}, core.NewError(core.KindFutureDate, "date",
			fmt.Sprintf("%s has not occurred yet", date.ISO()))
	}

	due, err := recurrence.IsDue(habit, date)
	if err != nil {
		return core.CompletionEvent{}, err
	}
	if !due {
		return core.CompletionEvent{}, core.NewError(core.KindNotDue, "date",
			fmt.Sprintf("habit %q is not scheduled for %s", habit.Title, date.ISO()))
	}

	event := core.CompletionEvent{
		ID:         l.newID(),
		HabitID:    habit.ID,
		Date:       date,
		Completed:  completed,
		Duration:   duration,
		RecordedAt: l.now(),
	}

	// Concurrent supersede-writes to the same key are serialized here so
	// last-write-wins is well defined; writes to other keys never contend.
	unlock := l.keys.lock(completionKey(habit.ID, date))
	defer unlock()

	stored, err := l.completions.UpsertCompletion(ctx, event)
	if err != nil {
		return core.CompletionEvent{}, core.WrapRepository("record completion", err)
	}
	return stored, nil
}

// StatusOn reports the habit's status for a date relative to today:
// completed/skipped from the latest event, pending for a due date not yet
// reached, unlogged for a past due date with no event, none when not due.
func (l *Ledger) StatusOn(ctx context.Context, habit core.Habit, date core.Date, today core.Date) (core.Status, error) {
	due, err := recurrence.IsDue(habit, date)
	if err != nil {
		// Days before an alternate habit existed are simply not due.
		return core.StatusNone, nil
	}
	if !due {
		return core.StatusNone, nil
	}

	event, err := l.completions.LatestCompletion(ctx, habit.ID, date)
	if err != nil {
		return core.StatusNone, core.WrapRepository("read completion", err)
	}
	if event != nil {
		if event.Completed {
			return core.StatusCompleted, nil
		}
		return core.StatusSkipped, nil
	}
	if !date.Before(today.Time) {
		return core.StatusPending, nil
	}
	return core.StatusUnlogged, nil
}
