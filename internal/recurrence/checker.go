// Package recurrence decides whether a habit is due on a given calendar date.
//
// Each frequency kind (fixed, flexible, alternate) has its own checker that
// encapsulates the dueness rule for that kind.
package recurrence

import (
	"fmt"

	"routina/internal/core"
)

// Checker is the strategy interface for dueness evaluation. Implementations
// are pure: the result depends only on the habit definition and the date.
type Checker interface {
	// IsDue reports whether the habit should be attempted on the given date.
	IsDue(habit core.Habit, date core.Date) (bool, error)
}

// FixedChecker implements Checker for habits scheduled on specific weekdays.
type FixedChecker struct{}

func (FixedChecker) IsDue(habit core.Habit, date core.Date) (bool, error) {
	return habit.ScheduledOn(date.DayOfWeek()), nil
}

// AlternateChecker implements Checker for every-other-day habits, anchored
// on the habit's creation date.
type AlternateChecker struct{}

func (AlternateChecker) IsDue(habit core.Habit, date core.Date) (bool, error) {
	created := habit.CreationDate()
	gap := core.DaysBetween(created, date)
	if gap < 0 {
		return false, core.NewError(core.KindInvalidHabit, "date",
			fmt.Sprintf("date %s precedes habit creation %s", date.ISO(), created.ISO()))
	}
	return gap%2 == 0, nil
}

// FlexibleChecker implements Checker for quota-per-week habits. Any date on
// or after creation is attemptable; whether the week is satisfied is judged
// against TimesPerWeek by the streak and summary calculators.
type FlexibleChecker struct{}

func (FlexibleChecker) IsDue(habit core.Habit, date core.Date) (bool, error) {
	return core.DaysBetween(habit.CreationDate(), date) >= 0, nil
}

// checkers maps frequency kinds to their corresponding checker.
var checkers = map[core.Frequency]Checker{
	core.Fixed:     FixedChecker{},
	core.Flexible:  FlexibleChecker{},
	core.Alternate: AlternateChecker{},
}

// GetChecker returns the checker for a frequency kind.
func GetChecker(freq core.Frequency) (Checker, error) {
	checker, ok := checkers[freq]
	if !ok {
		return nil, core.NewError(core.KindInvalidHabit, "frequency",
			fmt.Sprintf("unknown frequency %q", freq))
	}
	return checker, nil
}

// RegisterChecker registers a custom checker for a new frequency kind,
// allowing extension without modifying the registry.
func RegisterChecker(freq core.Frequency, checker Checker) {
	checkers[freq] = checker
}

// IsDue evaluates the habit's dueness on the given date using the checker
// registered for its frequency.
func IsDue(habit core.Habit, date core.Date) (bool, error) {
	checker, err := GetChecker(habit.Frequency)
	if err != nil {
		return false, err
	}
	return checker.IsDue(habit, date)
}

// DueSet enumerates the due dates for a habit over the inclusive range
// [from, to]. Future dates are valid due instances, used for calendar
// previews; they only become loggable once reached.
func DueSet(habit core.Habit, from, to core.Date) ([]core.Date, error) {
	var due []core.Date
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		ok, err := IsDue(habit, d)
		if err != nil {
			// An alternate habit's pre-creation days are simply not due
			// within a wider preview window.
			continue
		}
		if ok {
			due = append(due, d)
		}
	}
	return due, nil
}
