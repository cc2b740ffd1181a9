// Package memstore is an in-memory implementation of the repository ports,
// used as the default backend for local development and throughout tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"routina/internal/core"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]core.User
	habits      map[string]core.Habit           // habit ID -> habit
	completions map[string]core.CompletionEvent // habitID@date -> authoritative event
	events      map[string]core.Event           // event ID -> event
}

func New() *Store {
	return &Store{
		users:       make(map[string]core.User),
		habits:      make(map[string]core.Habit),
		completions: make(map[string]core.CompletionEvent),
		events:      make(map[string]core.Event),
	}
}

func completionKey(habitID string, date core.Date) string {
	return habitID + "@" + date.ISO()
}

// SeedUser registers a user record; accounts are owned by an external
// collaborator, so the memory backend just accepts whatever it is given.
func (s *Store) SeedUser(u core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) UpsertUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return core.User{}, core.NewError(core.KindNotFound, "userId", "user not found")
	}
	return u, nil
}

func (s *Store) CreateHabit(_ context.Context, h core.Habit) (core.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) UpdateHabit(_ context.Context, h core.Habit) (core.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.habits[h.ID]
	if !ok || existing.UserID != h.UserID {
		return core.Habit{}, core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) DeleteHabit(_ context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.habits[habitID]
	if !ok || existing.UserID != userID {
		return core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	delete(s.habits, habitID)
	return nil
}

func (s *Store) GetHabit(_ context.Context, userID, habitID string) (core.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return core.Habit{}, core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	return h, nil
}

func (s *Store) ListHabits(_ context.Context, userID string) ([]core.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpsertCompletion(_ context.Context, e core.CompletionEvent) (core.CompletionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := completionKey(e.HabitID, e.Date)
	if existing, ok := s.completions[key]; ok && existing.RecordedAt.After(e.RecordedAt) {
		// The stored event is newer; the incoming write lost the race.
		return existing, nil
	}
	s.completions[key] = e
	return e, nil
}

func (s *Store) LatestCompletion(_ context.Context, habitID string, date core.Date) (*core.CompletionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.completions[completionKey(habitID, date)]
	if !ok {
		return nil, nil
	}
	out := e
	return &out, nil
}

func inRange(d, from, to core.Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

func (s *Store) ListCompletions(_ context.Context, habitID string, from, to core.Date) ([]core.CompletionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.CompletionEvent
	for _, e := range s.completions {
		if e.HabitID == habitID && inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *Store) ListUserCompletions(_ context.Context, userID string, from, to core.Date) ([]core.CompletionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.CompletionEvent
	for _, e := range s.completions {
		h, ok := s.habits[e.HabitID]
		if ok && h.UserID == userID && inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *Store) CountCompleted(_ context.Context, userID string, asOf core.Date) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.completions {
		h, ok := s.habits[e.HabitID]
		if ok && h.UserID == userID && e.Completed && !e.Date.After(asOf.Time) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateEvent(_ context.Context, e core.Event) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) SetEventCompleted(_ context.Context, userID, eventID string, completed bool) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.UserID != userID {
		return core.Event{}, core.NewError(core.KindNotFound, "eventId", "event not found")
	}
	e.Completed = completed
	s.events[eventID] = e
	return e, nil
}

func (s *Store) DeleteEvent(_ context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.UserID != userID {
		return core.NewError(core.KindNotFound, "eventId", "event not found")
	}
	delete(s.events, eventID)
	return nil
}

func (s *Store) ListEvents(_ context.Context, userID string, from, to core.Date) ([]core.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Event
	for _, e := range s.events {
		if e.UserID == userID && inRange(e.ScheduledDate, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate.Equal(out[j].ScheduledDate.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledDate.Before(out[j].ScheduledDate.Time)
	})
	return out, nil
}

func sortByDate(events []core.CompletionEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date.Time) {
			return events[i].HabitID < events[j].HabitID
		}
		return events[i].Date.Before(events[j].Date.Time)
	})
}
