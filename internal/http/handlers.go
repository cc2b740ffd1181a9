package http

import (
	"net/http"
	"strconv"

	"routina/internal/core"
)

// handleRoutine returns the user's habits annotated with dueness and
// today's logged status.
func (s *Server) handleRoutine(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	entries, err := s.engine.Routine(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	out := make([]routineDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toRoutineDTO(entry))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListHabits returns the raw habit list for the edit view.
func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	habits, err := s.engine.ListHabits(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	out := make([]habitDTO, 0, len(habits))
	for _, h := range habits {
		out = append(out, toHabitDTO(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	habit, err := s.engine.GetHabit(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitDTO(habit))
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	userID := userIDFrom(r.Context())
	created, err := s.engine.CreateHabit(r.Context(), userID, req.toHabit())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	s.invalidateUserCaches(userID)
	writeJSON(w, http.StatusCreated, toHabitDTO(created))
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	userID := userIDFrom(r.Context())
	updated, err := s.engine.UpdateHabit(r.Context(), userID, r.PathValue("id"), req.toHabit())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	s.invalidateUserCaches(userID)
	writeJSON(w, http.StatusOK, toHabitDTO(updated))
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if err := s.engine.DeleteHabit(r.Context(), userID, r.PathValue("id")); err != nil {
		writeEngineError(w, r, err)
		return
	}

	s.invalidateUserCaches(userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// handleComplete records or corrects a completion for a due habit. The
// write goes through the completion service so the mirror worker hears
// about it.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusUnprocessableEntity, "taskId is required")
		return
	}

	var date core.Date
	if req.Date != "" {
		parsed, err := parseWireDate(req.Date)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		date = parsed
	}

	userID := userIDFrom(r.Context())
	event, err := s.completions.Record(r.Context(), userID, req.TaskID, date, req.Completed, req.Duration)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	recordCompletion(event.Completed)
	s.invalidateUserCaches(userID)
	writeJSON(w, http.StatusOK, toCompletionDTO(event))
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	weekStart, _ := core.WeekWindow(core.DateOf(s.clock()))
	key := userID + ":w:" + weekStart.ISO()

	if days, ok := s.weeklyCache.Get(key); ok {
		recordCacheLookup("weekly", true)
		writeJSON(w, http.StatusOK, days)
		return
	}
	recordCacheLookup("weekly", false)

	days, err := s.engine.WeeklySummary(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	s.weeklyCache.Set(key, days)
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	year, month, err := monthParams(r, s.clock())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	key := userID + ":m:" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	if cached, ok := s.monthlyCache.Get(key); ok {
		recordCacheLookup("monthly", true)
		writeJSON(w, http.StatusOK, cached)
		return
	}
	recordCacheLookup("monthly", false)

	monthly, err := s.engine.MonthlySummary(r.Context(), userID, year, month)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	s.monthlyCache.Set(key, monthly)
	writeJSON(w, http.StatusOK, monthly)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	if taskID == "" {
		writeError(w, http.StatusUnprocessableEntity, "taskId is required")
		return
	}

	userID := userIDFrom(r.Context())
	streak, err := s.engine.Streak(r.Context(), userID, taskID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

func (s *Server) handleExperience(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	state, err := s.engine.Experience(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"xp": state.XP, "level": state.Level})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusUnprocessableEntity, "start and end are required")
		return
	}

	start, err := parseWireDate(q.Get("start"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	end, err := parseWireDate(q.Get("end"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	userID := userIDFrom(r.Context())
	events, err := s.engine.ListEvents(r.Context(), userID, start, end)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

func (s *Server) handleTodayEvents(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	events, err := s.engine.TodayEvents(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	scheduled, err := parseWireDate(req.ScheduledDate)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	userID := userIDFrom(r.Context())
	created, err := s.engine.CreateEvent(r.Context(), userID, core.Event{
		Title:         sanitizeInput(req.Title),
		ScheduledDate: scheduled,
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventDTO(created))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusUnprocessableEntity, "eventId is required")
		return
	}

	userID := userIDFrom(r.Context())
	updated, err := s.engine.SetEventCompleted(r.Context(), userID, req.EventID, req.Completed)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDTO(updated))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if err := s.engine.DeleteEvent(r.Context(), userID, r.PathValue("id")); err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func toEventDTOs(events []core.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out
}
