// Package store provides an optional archive for finished discussion
// sessions.
//
// The orchestrator itself never requires persistence; callers that want a
// session history wire a Store in. Backends: in-memory (tests,
// prototyping), SQLite (single-process, zero setup) and MySQL (shared
// deployments).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("not found")

// Record is one archived discussion result.
type Record struct {
	// SessionID is the discussion's unique identifier.
	SessionID string

	// Mode is the discussion mode ("simple" or "deep").
	Mode string

	// Rounds is the number of rounds the discussion ran.
	Rounds int

	// Result holds the JSON-encoded consensus result.
	Result []byte

	// CreatedAt records when the result was archived.
	CreatedAt time.Time
}

// Store archives finished discussions.
//
// Implementations must be safe for concurrent use; a process may run many
// sessions at once.
type Store interface {
	// SaveResult archives one finished discussion. Saving the same session
	// twice overwrites the earlier record.
	SaveResult(ctx context.Context, rec Record) error

	// LoadResult retrieves an archived discussion by session ID.
	// Returns ErrNotFound for unknown sessions.
	LoadResult(ctx context.Context, sessionID string) (Record, error)

	// ListSessions returns all archived session IDs, newest first.
	ListSessions(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
