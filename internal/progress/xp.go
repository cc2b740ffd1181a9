package progress

import (
	"context"

	"routina/internal/core"
)

// Experience returns the user's accumulated experience as of today. Every
// completed event is worth the same fixed amount; superseded events never
// count because the ledger keeps one authoritative row per (habit, date).
func (c *Calculator) Experience(ctx context.Context, userID string, today core.Date) (core.ExperienceState, error) {
	count, err := c.completions.CountCompleted(ctx, userID, today)
	if err != nil {
		return core.ExperienceState{}, core.WrapRepository("count completions", err)
	}
	return core.ExperienceFromXP(count * core.XPPerCompletion), nil
}
