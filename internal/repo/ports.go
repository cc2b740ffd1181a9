// Package repo declares the ports the engine needs from durable storage.
// The engine holds no persistent state of its own; implementations live in
// internal/storage (SQLite) and internal/memstore (in-memory).
package repo

import (
	"context"

	"routina/internal/core"
)

type (
	HabitRepository interface {
		CreateHabit(ctx context.Context, h core.Habit) (core.Habit, error)
		UpdateHabit(ctx context.Context, h core.Habit) (core.Habit, error)
		DeleteHabit(ctx context.Context, userID, habitID string) error
		GetHabit(ctx context.Context, userID, habitID string) (core.Habit, error)
		ListHabits(ctx context.Context, userID string) ([]core.Habit, error)
	}

	// CompletionRepository stores completion events, at most one
	// authoritative row per (habit, date) key.
	CompletionRepository interface {
		// UpsertCompletion applies the event if the key has no row yet or
		// the event's RecordedAt is not older than the stored one
		// (last-write-wins). It returns the authoritative event after the
		// write, which may be the pre-existing one when the write lost.
		UpsertCompletion(ctx context.Context, e core.CompletionEvent) (core.CompletionEvent, error)

		// LatestCompletion returns the authoritative event for the key, or
		// nil when none exists.
		LatestCompletion(ctx context.Context, habitID string, date core.Date) (*core.CompletionEvent, error)

		// ListCompletions returns the authoritative events for one habit
		// with dates inside [from, to], ordered by date.
		ListCompletions(ctx context.Context, habitID string, from, to core.Date) ([]core.CompletionEvent, error)

		// ListUserCompletions returns the authoritative events across all of
		// the user's habits with dates inside [from, to], ordered by date.
		ListUserCompletions(ctx context.Context, userID string, from, to core.Date) ([]core.CompletionEvent, error)

		// CountCompleted returns the number of completed events across the
		// user's habits dated on or before asOf.
		CountCompleted(ctx context.Context, userID string, asOf core.Date) (int, error)
	}

	EventRepository interface {
		CreateEvent(ctx context.Context, e core.Event) (core.Event, error)
		SetEventCompleted(ctx context.Context, userID, eventID string, completed bool) (core.Event, error)
		DeleteEvent(ctx context.Context, userID, eventID string) error
		ListEvents(ctx context.Context, userID string, from, to core.Date) ([]core.Event, error)
	}

	UserRepository interface {
		GetUser(ctx context.Context, userID string) (core.User, error)

		// UpsertUser registers or refreshes a user record. Existing
		// accounts keep their CreatedAt; identity itself belongs to the
		// auth collaborator.
		UpsertUser(ctx context.Context, u core.User) error
	}
)
