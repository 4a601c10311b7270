package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory Store implementation.
//
// Intended for tests and prototyping; all data is lost when the process
// exits. Safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]Record)}
}

// SaveResult implements Store.
func (s *MemStore) SaveResult(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy the payload so later caller mutations don't leak in.
	stored := rec
	stored.Result = append([]byte(nil), rec.Result...)
	s.records[rec.SessionID] = stored
	return nil
}

// LoadResult implements Store.
func (s *MemStore) LoadResult(ctx context.Context, sessionID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	out := rec
	out.Result = append([]byte(nil), rec.Result...)
	return out, nil
}

// ListSessions implements Store.
func (s *MemStore) ListSessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].SessionID < recs[j].SessionID
	})

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.SessionID
	}
	return ids, nil
}

// Close implements Store. It is a no-op for MemStore.
func (s *MemStore) Close() error { return nil }
