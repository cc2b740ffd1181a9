package http

import (
	"time"

	"routina/internal/core"
	"routina/internal/engine"
)

// The client keys entities by "_id", a leftover of its first backend. The
// field name is part of the wire contract and is preserved here.

type habitDTO struct {
	ID              string   `json:"_id"`
	Title           string   `json:"title"`
	DefaultDuration int      `json:"defaultDuration"`
	Frequency       string   `json:"frequency"`
	DaysOfWeek      []int    `json:"daysOfWeek"`
	TimesPerWeek    int      `json:"timesPerWeek,omitempty"`
	CreatedAt       string   `json:"createdAt"`
}

type routineDTO struct {
	habitDTO
	IsToday   bool   `json:"isToday"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

type eventDTO struct {
	ID            string `json:"_id"`
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduledDate"`
	Completed     bool   `json:"completed"`
}

type completionDTO struct {
	ID         string `json:"_id"`
	TaskID     string `json:"taskId"`
	Date       string `json:"date"`
	Completed  bool   `json:"completed"`
	Duration   int    `json:"duration"`
	RecordedAt string `json:"recordedAt"`
}

type habitRequest struct {
	Title           string `json:"title"`
	DefaultDuration int    `json:"defaultDuration"`
	Frequency       string `json:"frequency"`
	DaysOfWeek      []int  `json:"daysOfWeek"`
	TimesPerWeek    int    `json:"timesPerWeek"`
}

type completeRequest struct {
	TaskID    string `json:"taskId"`
	Date      string `json:"date"`
	Duration  int    `json:"duration"`
	Completed bool   `json:"completed"`
}

type eventCreateRequest struct {
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduledDate"`
}

type eventUpdateRequest struct {
	EventID   string `json:"eventId"`
	Completed bool   `json:"completed"`
}

func toHabitDTO(h core.Habit) habitDTO {
	days := h.DaysOfWeek
	if days == nil {
		days = []int{}
	}
	return habitDTO{
		ID:              h.ID,
		Title:           h.Title,
		DefaultDuration: h.DefaultDuration,
		Frequency:       string(h.Frequency),
		DaysOfWeek:      days,
		TimesPerWeek:    h.TimesPerWeek,
		CreatedAt:       h.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRoutineDTO(entry engine.RoutineEntry) routineDTO {
	return routineDTO{
		habitDTO:  toHabitDTO(entry.Habit),
		IsToday:   entry.IsToday,
		Status:    string(entry.Status),
		Completed: entry.Status == core.StatusCompleted,
	}
}

func toEventDTO(ev core.Event) eventDTO {
	return eventDTO{
		ID:            ev.ID,
		Title:         ev.Title,
		ScheduledDate: ev.ScheduledDate.Format(time.RFC3339),
		Completed:     ev.Completed,
	}
}

func toCompletionDTO(c core.CompletionEvent) completionDTO {
	return completionDTO{
		ID:         c.ID,
		TaskID:     c.HabitID,
		Date:       c.Date.ISO(),
		Completed:  c.Completed,
		Duration:   c.Duration,
		RecordedAt: c.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func (req habitRequest) toHabit() core.Habit {
	return core.Habit{
		Title:           sanitizeInput(req.Title),
		DefaultDuration: req.DefaultDuration,
		Frequency:       core.Frequency(req.Frequency),
		DaysOfWeek:      req.DaysOfWeek,
		TimesPerWeek:    req.TimesPerWeek,
	}
}
