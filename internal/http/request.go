package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"routina/internal/core"
)

// maxBodyBytes caps request bodies; every payload in this API is tiny.
const maxBodyBytes = 1 << 20

// decodeJSON reads and decodes a JSON request body into dst, rejecting
// unknown fields and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseWireDate accepts the formats the client sends for dates, either a
// plain calendar date or a full RFC 3339 timestamp.
func parseWireDate(value string) (core.Date, error) {
	value = strings.TrimSpace(value)
	if d, err := core.ParseDate(value); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return core.Date{}, core.NewError(core.KindInvalidDate, "date", "date must be YYYY-MM-DD or RFC 3339")
	}
	return core.DateOf(t), nil
}

// monthParams extracts year and month from the query string. The client
// counts months from zero, so the wire value is shifted to 1-12 here and
// nowhere else. Missing parameters default to the current month.
func monthParams(r *http.Request, now time.Time) (year, month int, err error) {
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, core.NewError(core.KindInvalidDate, "year", "year must be an integer")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		wireMonth, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, core.NewError(core.KindInvalidDate, "month", "month must be an integer")
		}
		month = wireMonth + 1
	}

	return year, month, nil
}
