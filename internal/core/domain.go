package core

import (
	"fmt"
	"strings"
	"time"
)

// Frequency selects the recurrence kind of a habit.
const (
	Fixed     Frequency = "fixed"     // due on specific days of the week
	Flexible  Frequency = "flexible"  // attemptable any day, judged per week
	Alternate Frequency = "alternate" // every other day from creation
)

type (
	Frequency string

	// Habit is a recurring task definition. The frequency and its companion
	// field (DaysOfWeek for fixed, TimesPerWeek for flexible) are always
	// consistent; Validate rejects any other combination.
	Habit struct {
		ID              string
		UserID          string
		Title           string
		DefaultDuration int // minutes
		Frequency       Frequency
		DaysOfWeek      []int // 0-6, Sunday=0; fixed habits only
		TimesPerWeek    int   // flexible habits only
		CreatedAt       time.Time
	}

	// CompletionEvent is one authoritative completion record for a
	// (habit, date) key. Later writes supersede earlier ones for the same
	// key by RecordedAt; duplicate rows never accumulate.
	CompletionEvent struct {
		ID         string
		HabitID    string
		Date       Date
		Completed  bool
		Duration   int // actual minutes spent
		RecordedAt time.Time
	}

	// Event is a one-off scheduled entry. It does not participate in
	// recurrence, streak, or XP logic.
	Event struct {
		ID            string
		UserID        string
		Title         string
		ScheduledDate Date
		Completed     bool
		CreatedAt     time.Time
	}

	User struct {
		ID        string
		Username  string
		CreatedAt time.Time
	}

	// ExperienceState is derived from the completion ledger, never stored.
	ExperienceState struct {
		XP    int
		Level int
	}
)

// Status of a habit on a given date.
type Status string

const (
	StatusNone      Status = "none"      // habit not due that date
	StatusUnlogged  Status = "unlogged"  // due, past, no event recorded
	StatusPending   Status = "pending"   // due, not yet reached
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// XPPerCompletion is the fixed point value awarded per completed event.
const XPPerCompletion = 10

// ExperienceFromXP derives the level from cumulative experience points.
func ExperienceFromXP(xp int) ExperienceState {
	return ExperienceState{XP: xp, Level: xp/100 + 1}
}

func ValidFrequency(f Frequency) bool {
	switch f {
	case Fixed, Flexible, Alternate:
		return true
	}
	return false
}

// CreationDate is the calendar date the habit came into existence, the
// anchor for alternate-day recurrence.
func (h Habit) CreationDate() Date {
	return DateOf(h.CreatedAt)
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.Title) == "" {
		return NewError(KindInvalidHabit, "title", "title cannot be empty")
	}
	if len(h.Title) > 200 {
		return NewError(KindInvalidHabit, "title", "title too long (max 200 characters)")
	}
	if h.DefaultDuration <= 0 {
		return NewError(KindInvalidHabit, "defaultDuration", "default duration must be a positive number of minutes")
	}
	if !ValidFrequency(h.Frequency) {
		return NewError(KindInvalidHabit, "frequency", fmt.Sprintf("unknown frequency %q", h.Frequency))
	}

	switch h.Frequency {
	case Fixed:
		if len(h.DaysOfWeek) == 0 {
			return NewError(KindInvalidHabit, "daysOfWeek", "fixed habits require at least one day of the week")
		}
		seen := map[int]bool{}
		for _, dow := range h.DaysOfWeek {
			if dow < 0 || dow > 6 {
				return NewError(KindInvalidHabit, "daysOfWeek", fmt.Sprintf("day %d outside 0-6", dow))
			}
			if seen[dow] {
				return NewError(KindInvalidHabit, "daysOfWeek", fmt.Sprintf("day %d listed twice", dow))
			}
			seen[dow] = true
		}
		if h.TimesPerWeek != 0 {
			return NewError(KindInvalidHabit, "timesPerWeek", "timesPerWeek is only valid for flexible habits")
		}
	case Flexible:
		if h.TimesPerWeek <= 0 {
			return NewError(KindInvalidHabit, "timesPerWeek", "flexible habits require a positive timesPerWeek")
		}
		if len(h.DaysOfWeek) != 0 {
			return NewError(KindInvalidHabit, "daysOfWeek", "daysOfWeek is only valid for fixed habits")
		}
	case Alternate:
		if len(h.DaysOfWeek) != 0 {
			return NewError(KindInvalidHabit, "daysOfWeek", "daysOfWeek is only valid for fixed habits")
		}
		if h.TimesPerWeek != 0 {
			return NewError(KindInvalidHabit, "timesPerWeek", "timesPerWeek is only valid for flexible habits")
		}
	}
	return nil
}

// ScheduledOn reports whether the fixed habit lists the given weekday.
func (h Habit) ScheduledOn(dayOfWeek int) bool {
	for _, dow := range h.DaysOfWeek {
		if dow == dayOfWeek {
			return true
		}
	}
	return false
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewError(KindInvalidHabit, "title", "title cannot be empty")
	}
	if len(e.Title) > 200 {
		return NewError(KindInvalidHabit, "title", "title too long (max 200 characters)")
	}
	return e.ScheduledDate.Validate()
}
