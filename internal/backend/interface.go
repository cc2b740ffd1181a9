// Package backend selects and constructs the persistence layer the engine
// runs on.
package backend

import (
	"context"

	"routina/internal/engine"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the constructed stores and optional cleanup function.
type Result struct {
	Stores  engine.Stores
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// IsValid reports whether the backend type is supported.
func (t BackendType) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}
