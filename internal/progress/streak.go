// Package progress derives streaks and experience points from the
// completion ledger. It holds no state; every call reads the current
// authoritative events.
package progress

import (
	"context"

	"routina/internal/core"
	"routina/internal/recurrence"
	"routina/internal/repo"
)

// Calculator answers streak and experience queries for habits and users.
type Calculator struct {
	completions repo.CompletionRepository
}

func NewCalculator(completions repo.CompletionRepository) *Calculator {
	return &Calculator{completions: completions}
}

// Streak returns the habit's current streak as of today.
//
// For fixed and alternate habits a period is one due day; for flexible
// habits a period is one Sunday-to-Saturday week and qualifies when the
// completed count reaches the weekly target. The walk runs backward from
// today and stops at the first non-qualifying period. The period containing
// today is still in progress: it extends the streak when already satisfied
// but never breaks it.
func (c *Calculator) Streak(ctx context.Context, habit core.Habit, today core.Date) (int, error) {
	created := habit.CreationDate()
	if today.Before(created.Time) {
		return 0, nil
	}

	from := created
	if habit.Frequency == core.Fixed {
		// Fixed schedules accept backfilled completions dated before the
		// habit existed, so the walk must see the full ledger.
		from = core.NewDate(1, 1, 1)
	}
	events, err := c.completions.ListCompletions(ctx, habit.ID, from, today)
	if err != nil {
		return 0, core.WrapRepository("list completions", err)
	}
	byDate := make(map[string]core.CompletionEvent, len(events))
	for _, e := range events {
		byDate[e.Date.ISO()] = e
	}

	if habit.Frequency == core.Flexible {
		return weeklyStreak(habit, byDate, created, today), nil
	}
	return dailyStreak(habit, byDate, created, today)
}

func dailyStreak(habit core.Habit, byDate map[string]core.CompletionEvent, created, today core.Date) (int, error) {
	// Fixed schedules keep walking past the creation date so backfilled
	// completions count; alternate schedules are anchored at creation.
	floor := created
	if habit.Frequency == core.Fixed {
		floor = core.NewDate(1, 1, 1)
	}
	streak := 0
	idle := 0
	for date := today; !date.Before(floor.Time); date = date.AddDays(-1) {
		due, err := recurrence.IsDue(habit, date)
		if err != nil {
			return 0, err
		}
		if !due {
			// A fixed schedule with any weekday set is due within a week;
			// a longer dry run means there is nothing left to walk.
			idle++
			if habit.Frequency == core.Fixed && idle > 7 {
				break
			}
			continue
		}
		idle = 0
		event, logged := byDate[date.ISO()]
		if logged && event.Completed {
			streak++
			continue
		}
		// Today's due slot is still open unless explicitly skipped.
		if !logged && date.Equal(today.Time) {
			continue
		}
		break
	}
	return streak, nil
}

func weeklyStreak(habit core.Habit, byDate map[string]core.CompletionEvent, created, today core.Date) int {
	streak := 0
	current := true
	for weekStart, weekEnd := core.WeekWindow(today); !weekEnd.Before(created.Time); weekStart, weekEnd = weekStart.AddDays(-7), weekEnd.AddDays(-7) {
		completed := 0
		for d := weekStart; !d.After(weekEnd.Time); d = d.AddDays(1) {
			if e, ok := byDate[d.ISO()]; ok && e.Completed {
				completed++
			}
		}
		if completed >= habit.TimesPerWeek {
			streak++
		} else if !current {
			break
		}
		// A shortfall in the running week does not end the streak; the
		// target can still be reached before Saturday.
		current = false
	}
	return streak
}
