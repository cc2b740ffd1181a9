// Package summary builds the weekly and monthly aggregation views. Both
// views are derived on demand from the completion ledger and the due-set
// computation; nothing here is persisted.
package summary

import (
	"context"
	"errors"
	"math"

	"routina/internal/core"
	"routina/internal/ledger"
	"routina/internal/repo"
)

// Aggregator joins the due-set computation with the ledger to answer
// weekly and monthly summary queries.
type Aggregator struct {
	habits      repo.HabitRepository
	completions repo.CompletionRepository
	users       repo.UserRepository
	ledger      *ledger.Ledger
}

func New(habits repo.HabitRepository, completions repo.CompletionRepository, users repo.UserRepository, l *ledger.Ledger) *Aggregator {
	return &Aggregator{habits: habits, completions: completions, users: users, ledger: l}
}

type (
	// TaskTime is one habit's logged time within a day.
	TaskTime struct {
		HabitID  string  `json:"habitId"`
		Name     string  `json:"name"`
		Duration int     `json:"duration"`
		Percent  float64 `json:"percent"`
	}

	// DaySummary is one day of the weekly view.
	DaySummary struct {
		Date         string     `json:"date"`
		DayName      string     `json:"dayName"`
		Tasks        []TaskTime `json:"tasks"`
		TotalMinutes int        `json:"totalMinutes"`
	}

	// StatusCell is one (habit, date) cell of the monthly grid. Cells are
	// emitted only for due dates, so a missing cell reads as "none".
	StatusCell struct {
		TaskID string      `json:"taskId"`
		Date   string      `json:"date"`
		Status core.Status `json:"status"`
	}

	// MonthSummary is the monthly view: the habits active in the month and
	// the status of each due (habit, date) pair.
	MonthSummary struct {
		TaskIDs []string     `json:"tasksList"`
		Cells   []StatusCell `json:"tasks"`
	}
)

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Weekly returns the seven days starting at weekStart with each day's
// completed tasks, their share of the day's total time, and the day total.
// Windows entirely before the user's account existed yield seven empty days.
func (a *Aggregator) Weekly(ctx context.Context, userID string, weekStart core.Date) ([]DaySummary, error) {
	weekEnd := weekStart.AddDays(6)

	days := make([]DaySummary, 7)
	for i := range days {
		d := weekStart.AddDays(i)
		days[i] = DaySummary{Date: d.ISO(), DayName: dayNames[d.DayOfWeek()], Tasks: []TaskTime{}}
	}

	before, err := a.beforeAccount(ctx, userID, weekEnd)
	if err != nil || before {
		return days, err
	}

	habits, err := a.habits.ListHabits(ctx, userID)
	if err != nil {
		return nil, core.WrapRepository("list habits", err)
	}
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Title
	}

	events, err := a.completions.ListUserCompletions(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, core.WrapRepository("list completions", err)
	}
	for _, e := range events {
		if !e.Completed {
			continue
		}
		i := core.DaysBetween(weekStart, e.Date)
		if i < 0 || i > 6 {
			continue
		}
		days[i].Tasks = append(days[i].Tasks, TaskTime{
			HabitID:  e.HabitID,
			Name:     names[e.HabitID],
			Duration: e.Duration,
		})
		days[i].TotalMinutes += e.Duration
	}

	for i := range days {
		total := days[i].TotalMinutes
		if total == 0 {
			continue
		}
		for j := range days[i].Tasks {
			share := float64(days[i].Tasks[j].Duration) / float64(total) * 100
			days[i].Tasks[j].Percent = math.Round(share*10) / 10
		}
	}
	return days, nil
}

// Monthly returns the status grid for every day of the given month. The
// month is 1-based. Months entirely before the user's account existed
// yield an empty grid.
func (a *Aggregator) Monthly(ctx context.Context, userID string, year, month int, today core.Date) (MonthSummary, error) {
	empty := MonthSummary{TaskIDs: []string{}, Cells: []StatusCell{}}

	first, last, err := core.MonthWindow(year, month)
	if err != nil {
		return empty, err
	}

	before, err := a.beforeAccount(ctx, userID, last)
	if err != nil || before {
		return empty, err
	}

	habits, err := a.habits.ListHabits(ctx, userID)
	if err != nil {
		return empty, core.WrapRepository("list habits", err)
	}

	out := empty
	for _, h := range habits {
		active := false
		for d := first; !d.After(last.Time); d = d.AddDays(1) {
			status, err := a.ledger.StatusOn(ctx, h, d, today)
			if err != nil {
				return empty, err
			}
			if status == core.StatusNone {
				continue
			}
			active = true
			out.Cells = append(out.Cells, StatusCell{TaskID: h.ID, Date: d.ISO(), Status: status})
		}
		if active {
			out.TaskIDs = append(out.TaskIDs, h.ID)
		}
	}
	return out, nil
}

// beforeAccount reports whether the whole window [.., windowEnd] predates
// the user's account.
func (a *Aggregator) beforeAccount(ctx context.Context, userID string, windowEnd core.Date) (bool, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		var coreErr *core.Error
		if errors.As(err, &coreErr) {
			return false, err
		}
		return false, core.WrapRepository("get user", err)
	}
	return windowEnd.Before(core.DateOf(user.CreatedAt).Time), nil
}
