package sheets

import (
	"context"
	"time"
)

// CompletionRow is the flattened form of a completion event the worker
// mirrors to a spreadsheet backlog.
type CompletionRow struct {
	CompletionID string
	HabitID      string
	HabitTitle   string
	Date         string
	Completed    bool
	Duration     int
	RecordedAt   time.Time
}

// CompletionAppender is the outbound port the mirror worker writes through.
type CompletionAppender interface {
	Append(ctx context.Context, row CompletionRow) (rowRef string, err error)
}
