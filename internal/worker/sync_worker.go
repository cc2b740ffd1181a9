// Package worker mirrors confirmed completion rows from SQLite to the
// spreadsheet backlog. The AMQP queue is the fast path; the pending sweep
// covers lost messages and downtime.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"routina/internal/amqp"
	"routina/internal/core"
	"routina/internal/sheets"
	"routina/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.CompletionAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheets sheets.CompletionAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one completion sync message. The row is
// re-read from SQLite so a write superseded after publish is mirrored at
// its current state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.CompletionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"completion_id", msg.CompletionID,
		"habit_id", msg.HabitID)

	event, err := w.storage.GetCompletion(ctx, msg.CompletionID)
	if err != nil {
		return fmt.Errorf("get completion from storage: %w", err)
	}
	if event == nil {
		// Superseded between publish and delivery; the newer row carries
		// its own message.
		slog.InfoContext(ctx, "Completion row superseded, skipping",
			"completion_id", msg.CompletionID)
		return nil
	}

	if err := w.syncCompletionToSheets(ctx, event); err != nil {
		return fmt.Errorf("sync completion to sheets: %w", err)
	}

	return nil
}

// ProcessPendingCompletions mirrors rows the queue missed. It is the backup
// mechanism behind the AMQP fast path.
func (w *SyncWorker) ProcessPendingCompletions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncCompletions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending completions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending completions", "count", len(pending))

	for _, p := range pending {
		event, err := w.storage.GetCompletion(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get completion", "completion_id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "completion_id", p.ID, "error", err)
			}
			continue
		}
		if event == nil {
			continue
		}

		if err := w.syncCompletionToSheets(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to sync completion", "completion_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains rows left pending across worker downtime, with a
// larger batch than the periodic sweep.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncCompletions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending completions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending completions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending completions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		event, err := w.storage.GetCompletion(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get completion for startup sync",
				"completion_id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "completion_id", p.ID, "error", err)
			}
			errorCount++
			continue
		}
		if event == nil {
			continue
		}

		if err := w.syncCompletionToSheets(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to sync completion during startup",
				"completion_id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncCompletionToSheets(ctx context.Context, event *core.CompletionEvent) error {
	title := ""
	if habit, err := w.storage.GetHabitByID(ctx, event.HabitID); err == nil {
		title = habit.Title
	} else {
		slog.WarnContext(ctx, "Habit lookup failed, mirroring without title",
			"habit_id", event.HabitID, "error", err)
	}

	row := sheets.CompletionRow{
		CompletionID: event.ID,
		HabitID:      event.HabitID,
		HabitTitle:   title,
		Date:         event.Date.ISO(),
		Completed:    event.Completed,
		Duration:     event.Duration,
		RecordedAt:   event.RecordedAt,
	}

	ref, err := w.sheets.Append(ctx, row)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, event.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "completion_id", event.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, event.ID); err != nil {
		// The mirror write itself succeeded.
		slog.ErrorContext(ctx, "Failed to mark as synced", "completion_id", event.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced completion",
		"completion_id", event.ID,
		"sheets_ref", ref,
		"date", event.Date.ISO())

	return nil
}
