package memory

import (
	"context"
	"testing"
	"time"

	"routina/internal/sheets"
)

func TestAppendAndRows(t *testing.T) {
	s := New()

	ref, err := s.Append(context.Background(), sheets.CompletionRow{
		CompletionID: "c1",
		HabitID:      "h1",
		HabitTitle:   "Gym",
		Date:         "2024-03-13",
		Completed:    true,
		Duration:     45,
		RecordedAt:   time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	ref, err = s.Append(context.Background(), sheets.CompletionRow{CompletionID: "c2"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].CompletionID != "c1" || rows[1].CompletionID != "c2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
