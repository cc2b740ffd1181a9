// Package http exposes the engine over a JSON API for the mobile client.
//
// This file implements response writing and the translation from engine
// error kinds to HTTP status codes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"routina/internal/core"
	applog "routina/internal/log"
	"routina/internal/middleware/trace"
)

// errorBody is the JSON error envelope. The mobile client reads the
// "message" field for its toasts.
type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeEngineError maps an engine error to a status code. Validation
// failures are 422, rejected writes against the recurrence rules are 409,
// missing entities 404, persistence failures 500.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		logger.ErrorContext(r.Context(), "Unclassified handler error",
			applog.FieldError, err.Error(), applog.FieldPath, r.URL.Path,
			"request_id", trace.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch coreErr.Kind {
	case core.KindInvalidDate, core.KindInvalidHabit, core.KindInvalidDuration, core.KindFutureDate:
		status = http.StatusUnprocessableEntity
	case core.KindNotDue:
		status = http.StatusConflict
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindRepository:
		logger.ErrorContext(r.Context(), "Repository error",
			applog.FieldError, err.Error(), applog.FieldPath, r.URL.Path,
			"request_id", trace.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, status, errorBody{Message: coreErr.Error(), Field: coreErr.Field})
}
