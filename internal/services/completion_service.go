// Package services orchestrates engine operations with the outbound AMQP
// queue and owns the worker-side sweep lifecycle.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"routina/internal/core"
	"routina/internal/engine"
)

// SyncPublisher is the queue side of completion recording. *amqp.Client
// satisfies it.
type SyncPublisher interface {
	PublishCompletionSync(ctx context.Context, completionID, habitID, date string) error
	Close() error
}

// CompletionService records completions through the engine and enqueues a
// mirror message for each authoritative write.
type CompletionService struct {
	engine    *engine.Engine
	publisher SyncPublisher
}

// NewCompletionService wires the engine to an optional publisher. A nil
// publisher disables the fast path; the worker's sweep still mirrors rows.
func NewCompletionService(eng *engine.Engine, publisher SyncPublisher) *CompletionService {
	return &CompletionService{
		engine:    eng,
		publisher: publisher,
	}
}

// Record validates and stores the completion, then publishes the sync
// message. The local write is authoritative; a publish failure is logged
// and absorbed.
func (s *CompletionService) Record(ctx context.Context, userID, habitID string, date core.Date, completed bool, duration int) (core.CompletionEvent, error) {
	event, err := s.engine.RecordCompletion(ctx, userID, habitID, date, completed, duration)
	if err != nil {
		return core.CompletionEvent{}, fmt.Errorf("record completion: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, relying on sweep",
			"completion_id", event.ID)
		return event, nil
	}

	if err := s.publisher.PublishCompletionSync(ctx, event.ID, event.HabitID, event.Date.ISO()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish completion sync message",
			"completion_id", event.ID, "error", err)
	}

	return event, nil
}

// Close releases the publisher connection.
func (s *CompletionService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
