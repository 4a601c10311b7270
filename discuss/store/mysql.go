package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// Designed for deployments where results must outlive the process or be
// shared between hosts. Uses connection pooling and auto-migrates its
// schema on first use.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a new MySQL-backed store.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// parseTime=true is required so created_at scans into time.Time:
//
//	user:password@tcp(localhost:3306)/consensus?parseTime=true
//
// Never hardcode credentials in source. Read the DSN from the
// environment:
//
//	dsn := os.Getenv("MYSQL_DSN")
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (m *MySQLStore) createTables(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS discussion_results (
			session_id VARCHAR(255) PRIMARY KEY,
			mode       VARCHAR(32) NOT NULL,
			rounds     INT NOT NULL,
			result     JSON NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`)
	if err != nil {
		return fmt.Errorf("failed to create discussion_results table: %w", err)
	}
	return nil
}

// SaveResult implements Store.
//
// Thread-safe for concurrent writes.
func (m *MySQLStore) SaveResult(ctx context.Context, rec Record) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO discussion_results (session_id, mode, rounds, result, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			mode = VALUES(mode),
			rounds = VALUES(rounds),
			result = VALUES(result),
			created_at = VALUES(created_at)
	`

	if _, err := m.db.ExecContext(ctx, query, rec.SessionID, rec.Mode, rec.Rounds, rec.Result, createdAt); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// LoadResult implements Store.
//
// Returns ErrNotFound if no result exists for the session.
func (m *MySQLStore) LoadResult(ctx context.Context, sessionID string) (Record, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return Record{}, fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	query := `
		SELECT session_id, mode, rounds, result, created_at
		FROM discussion_results
		WHERE session_id = ?
	`

	var rec Record
	err := m.db.QueryRowContext(ctx, query, sessionID).Scan(
		&rec.SessionID, &rec.Mode, &rec.Rounds, &rec.Result, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load result: %w", err)
	}
	return rec, nil
}

// ListSessions implements Store.
func (m *MySQLStore) ListSessions(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	rows, err := m.db.QueryContext(ctx, `
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

// Ping verifies the database connection is alive.
func (m *MySQLStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	return m.db.PingContext(ctx)
}

// Close closes the database connection pool.
//
// Calling Close multiple times is safe (subsequent calls are no-ops).
func (m *MySQLStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
