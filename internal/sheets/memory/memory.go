// Package memory is an in-process CompletionAppender, used by tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"routina/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.CompletionRow
}

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row sheets.CompletionRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.CompletionRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.CompletionRow(nil), s.rows...)
}
