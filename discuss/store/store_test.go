package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("load missing", func(t *testing.T) {
		if _, err := s.LoadResult(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		rec := Record{
			SessionID: "s1",
			Mode:      "deep",
			Rounds:    3,
			Result:    []byte(`{"sessionId":"s1"}`),
			CreatedAt: base,
		}
		if err := s.SaveResult(ctx, rec); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}

		got, err := s.LoadResult(ctx, "s1")
		if err != nil {
			t.Fatalf("LoadResult failed: %v", err)
		}
		if got.SessionID != "s1" || got.Mode != "deep" || got.Rounds != 3 {
			t.Errorf("loaded = %+v", got)
		}
		if string(got.Result) != `{"sessionId":"s1"}` {
			t.Errorf("payload = %s", got.Result)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		rec := Record{
			SessionID: "s1",
			Mode:      "simple",
			Rounds:    1,
			Result:    []byte(`{"updated":true}`),
			CreatedAt: base.Add(time.Hour),
		}
		if err := s.SaveResult(ctx, rec); err != nil {
			t.Fatalf("SaveResult overwrite failed: %v", err)
		}

		got, err := s.LoadResult(ctx, "s1")
		if err != nil {
			t.Fatalf("LoadResult failed: %v", err)
		}
		if got.Mode != "simple" || string(got.Result) != `{"updated":true}` {
			t.Errorf("overwrite not applied: %+v", got)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		older := Record{SessionID: "s0", Mode: "simple", Rounds: 1, Result: []byte(`{}`), CreatedAt: base.Add(-time.Hour)}
		newer := Record{SessionID: "s2", Mode: "simple", Rounds: 1, Result: []byte(`{}`), CreatedAt: base.Add(2 * time.Hour)}
		for _, rec := range []Record{older, newer} {
			if err := s.SaveResult(ctx, rec); err != nil {
				t.Fatalf("SaveResult(%s) failed: %v", rec.SessionID, err)
			}
		}

		ids, err := s.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if want := []string{"s2", "s1", "s0"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("ListSessions = %v, want %v", ids, want)
		}
	})
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	runStoreSuite(t, s)
}

func TestMemStore_CopiesPayload(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	payload := []byte(`{"a":1}`)
	if err := s.SaveResult(ctx, Record{SessionID: "s1", Result: payload}); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	payload[2] = 'X'

	got, err := s.LoadResult(ctx, "s1")
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if string(got.Result) != `{"a":1}` {
		t.Errorf("stored payload mutated: %s", got.Result)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consensus.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	runStoreSuite(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consensus.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	rec := Record{SessionID: "persist", Mode: "simple", Rounds: 1, Result: []byte(`{}`), CreatedAt: time.Now().UTC()}
	if err := s.SaveResult(ctx, rec); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.LoadResult(ctx, "persist"); err != nil {
		t.Errorf("LoadResult after reopen failed: %v", err)
	}
}

func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set; skipping MySQL integration test")
	}

	s, err := NewMySQLStore(dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore failed: %v", err)
	}
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	runStoreSuite(t, s)
}
