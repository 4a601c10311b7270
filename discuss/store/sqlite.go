package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed Store.
//
// Designed for single-process deployments with zero setup: one file (or
// ":memory:" for tests), auto-migration on first use, WAL mode for
// concurrent reads.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) a SQLite archive at the
// given path. ":memory:" yields an in-memory database that is lost on
// Close.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS discussion_results (
			session_id TEXT PRIMARY KEY,
			mode       TEXT NOT NULL,
			rounds     INTEGER NOT NULL,
			result     BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`)
	return err
}

// SaveResult implements Store.
func (s *SQLiteStore) SaveResult(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discussion_results (session_id, mode, rounds, result, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			mode = excluded.mode,
			rounds = excluded.rounds,
			result = excluded.result,
			created_at = excluded.created_at`,
		rec.SessionID, rec.Mode, rec.Rounds, rec.Result, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// LoadResult implements Store.
func (s *SQLiteStore) LoadResult(ctx context.Context, sessionID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, mode, rounds, result, created_at
		FROM discussion_results
		WHERE session_id = ?`, sessionID)

	var rec Record
	err := row.Scan(&rec.SessionID, &rec.Mode, &rec.Rounds, &rec.Result, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load result: %w", err)
	}
	return rec, nil
}

// ListSessions implements Store.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id
		FROM discussion_results
		ORDER BY created_at DESC, session_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
