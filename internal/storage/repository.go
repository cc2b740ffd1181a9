// Package storage is the durable SQLite repository behind the engine's
// ports, plus the sync-queue queries the mirror worker uses.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"routina/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of a completion row, consumed by the mirror worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, len(parts))
	for i, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("decode days of week %q: %w", s, err)
		}
		days[i] = d
	}
	return days, nil
}

// GetUser implements repo.UserRepository.
func (r *SQLiteRepository) GetUser(ctx context.Context, userID string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = ?`, userID).
		Scan(&u.ID, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NewError(core.KindNotFound, "userId", "user not found")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpsertUser registers or refreshes a user record on first sight of a token.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET username = excluded.username`,
		u.ID, u.Username, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateHabit(ctx context.Context, h core.Habit) (core.Habit, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, title, default_duration, frequency, days_of_week, times_per_week, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Title, h.DefaultDuration, string(h.Frequency), encodeDays(h.DaysOfWeek), h.TimesPerWeek, h.CreatedAt)
	if err != nil {
		return core.Habit{}, fmt.Errorf("insert habit: %w", err)
	}

	slog.InfoContext(ctx, "Habit saved",
		"habit_id", h.ID,
		"user_id", h.UserID,
		"frequency", h.Frequency)
	return h, nil
}

func (r *SQLiteRepository) UpdateHabit(ctx context.Context, h core.Habit) (core.Habit, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE habits SET title = ?, default_duration = ?, frequency = ?, days_of_week = ?, times_per_week = ?
		 WHERE id = ? AND user_id = ?`,
		h.Title, h.DefaultDuration, string(h.Frequency), encodeDays(h.DaysOfWeek), h.TimesPerWeek, h.ID, h.UserID)
	if err != nil {
		return core.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Habit{}, core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	return h, nil
}

func (r *SQLiteRepository) DeleteHabit(ctx context.Context, userID, habitID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	return nil
}

func (r *SQLiteRepository) GetHabit(ctx context.Context, userID, habitID string) (core.Habit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, default_duration, frequency, days_of_week, times_per_week, created_at
		 FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Habit{}, core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	if err != nil {
		return core.Habit{}, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// GetHabitByID looks a habit up without an owner check, for the worker's
// message handler.
func (r *SQLiteRepository) GetHabitByID(ctx context.Context, habitID string) (core.Habit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, default_duration, frequency, days_of_week, times_per_week, created_at
		 FROM habits WHERE id = ?`, habitID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Habit{}, core.NewError(core.KindNotFound, "habitId", "habit not found")
	}
	if err != nil {
		return core.Habit{}, fmt.Errorf("get habit by id: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) ListHabits(ctx context.Context, userID string) ([]core.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, default_duration, frequency, days_of_week, times_per_week, created_at
		 FROM habits WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var out []core.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (core.Habit, error) {
	var h core.Habit
	var freq, days string
	if err := row.Scan(&h.ID, &h.UserID, &h.Title, &h.DefaultDuration, &freq, &days, &h.TimesPerWeek, &h.CreatedAt); err != nil {
		return core.Habit{}, err
	}
	h.Frequency = core.Frequency(freq)
	decoded, err := decodeDays(days)
	if err != nil {
		return core.Habit{}, err
	}
	h.DaysOfWeek = decoded
	return h, nil
}

// UpsertCompletion implements the last-write-wins rule in SQL: the incoming
// row replaces the stored one only when its recorded_at is not older.
func (r *SQLiteRepository) UpsertCompletion(ctx context.Context, e core.CompletionEvent) (core.CompletionEvent, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO completions (id, habit_id, date, completed, duration, recorded_at, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (habit_id, date) DO UPDATE SET
		   id = excluded.id,
		   completed = excluded.completed,
		   duration = excluded.duration,
		   recorded_at = excluded.recorded_at,
		   sync_status = excluded.sync_status
		 WHERE excluded.recorded_at >= completions.recorded_at`,
		e.ID, e.HabitID, e.Date.ISO(), e.Completed, e.Duration, e.RecordedAt, SyncPending)
	if err != nil {
		return core.CompletionEvent{}, fmt.Errorf("upsert completion: %w", err)
	}

	stored, err := r.LatestCompletion(ctx, e.HabitID, e.Date)
	if err != nil {
		return core.CompletionEvent{}, err
	}
	if stored == nil {
		return core.CompletionEvent{}, fmt.Errorf("completion vanished after upsert for habit %s on %s", e.HabitID, e.Date.ISO())
	}

	slog.InfoContext(ctx, "Completion recorded",
		"completion_id", stored.ID,
		"habit_id", stored.HabitID,
		"date", stored.Date.ISO(),
		"completed", stored.Completed)
	return *stored, nil
}

func (r *SQLiteRepository) LatestCompletion(ctx context.Context, habitID string, date core.Date) (*core.CompletionEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, habit_id, date, completed, duration, recorded_at
		 FROM completions WHERE habit_id = ? AND date = ?`, habitID, date.ISO())
	e, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return &e, nil
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, habitID string, from, to core.Date) ([]core.CompletionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, habit_id, date, completed, duration, recorded_at
		 FROM completions WHERE habit_id = ? AND date BETWEEN ? AND ? ORDER BY date`,
		habitID, from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return collectCompletions(rows)
}

func (r *SQLiteRepository) ListUserCompletions(ctx context.Context, userID string, from, to core.Date) ([]core.CompletionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.habit_id, c.date, c.completed, c.duration, c.recorded_at
		 FROM completions c JOIN habits h ON h.id = c.habit_id
		 WHERE h.user_id = ? AND c.date BETWEEN ? AND ? ORDER BY c.date, c.habit_id`,
		userID, from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("list user completions: %w", err)
	}
	return collectCompletions(rows)
}

func (r *SQLiteRepository) CountCompleted(ctx context.Context, userID string, asOf core.Date) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions c JOIN habits h ON h.id = c.habit_id
		 WHERE h.user_id = ? AND c.completed = 1 AND c.date <= ?`,
		userID, asOf.ISO()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}

func scanCompletion(row rowScanner) (core.CompletionEvent, error) {
	var e core.CompletionEvent
	var iso string
	if err := row.Scan(&e.ID, &e.HabitID, &iso, &e.Completed, &e.Duration, &e.RecordedAt); err != nil {
		return core.CompletionEvent{}, err
	}
	date, err := core.ParseDate(iso)
	if err != nil {
		return core.CompletionEvent{}, err
	}
	e.Date = date
	return e, nil
}

func collectCompletions(rows *sql.Rows) ([]core.CompletionEvent, error) {
	defer rows.Close()
	var out []core.CompletionEvent
	for rows.Next() {
		e, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateEvent(ctx context.Context, e core.Event) (core.Event, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, title, scheduled_date, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.ScheduledDate.ISO(), e.Completed, e.CreatedAt)
	if err != nil {
		return core.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) SetEventCompleted(ctx context.Context, userID, eventID string, completed bool) (core.Event, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET completed = ? WHERE id = ? AND user_id = ?`,
		completed, eventID, userID)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Event{}, core.NewError(core.KindNotFound, "eventId", "event not found")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, scheduled_date, completed, created_at FROM events WHERE id = ?`, eventID)
	return scanEvent(row)
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, userID, eventID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewError(core.KindNotFound, "eventId", "event not found")
	}
	return nil
}

func (r *SQLiteRepository) ListEvents(ctx context.Context, userID string, from, to core.Date) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, scheduled_date, completed, created_at
		 FROM events WHERE user_id = ? AND scheduled_date BETWEEN ? AND ?
		 ORDER BY scheduled_date, id`,
		userID, from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []core.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (core.Event, error) {
	var e core.Event
	var iso string
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &iso, &e.Completed, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Event{}, core.NewError(core.KindNotFound, "eventId", "event not found")
		}
		return core.Event{}, fmt.Errorf("scan event: %w", err)
	}
	date, err := core.ParseDate(iso)
	if err != nil {
		return core.Event{}, err
	}
	e.ScheduledDate = date
	return e, nil
}

// PendingSyncCompletion is the minimal row the worker needs to enqueue or
// retry a mirror write.
type PendingSyncCompletion struct {
	ID         string
	HabitID    string
	Date       core.Date
	RecordedAt time.Time
}

// GetPendingSyncCompletions returns completions not yet mirrored, oldest
// first.
func (r *SQLiteRepository) GetPendingSyncCompletions(ctx context.Context, limit int) ([]PendingSyncCompletion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, habit_id, date, recorded_at FROM completions
		 WHERE sync_status = ? ORDER BY recorded_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync completions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncCompletion
	for rows.Next() {
		var p PendingSyncCompletion
		var iso string
		if err := rows.Scan(&p.ID, &p.HabitID, &iso, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan pending completion: %w", err)
		}
		date, err := core.ParseDate(iso)
		if err != nil {
			return nil, err
		}
		p.Date = date
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetCompletion fetches one completion row by ID, for the worker's message
// handler. Returns nil when the row was superseded since the message was
// published.
func (r *SQLiteRepository) GetCompletion(ctx context.Context, id string) (*core.CompletionEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, habit_id, date, completed, duration, recorded_at
		 FROM completions WHERE id = ?`, id)
	e, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion by id: %w", err)
	}
	return &e, nil
}

// MarkSynced records a successful mirror write.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE completions SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark completion synced: %w", err)
	}
	slog.InfoContext(ctx, "Completion marked as synced", "completion_id", id)
	return nil
}

// MarkSyncError records a failed mirror write so a sweep can retry it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE completions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark completion sync error: %w", err)
	}
	slog.WarnContext(ctx, "Completion marked with sync error", "completion_id", id)
	return nil
}
