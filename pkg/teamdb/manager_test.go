package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// countingStats records cache activity for assertions.
type countingStats struct {
	hits, misses, opened, closed atomic.Int64
}

func (s *countingStats) CacheHit()     { s.hits.Add(1) }
func (s *countingStats) CacheMiss()    { s.misses.Add(1) }
func (s *countingStats) HandleOpened() { s.opened.Add(1) }
func (s *countingStats) HandleClosed() { s.closed.Add(1) }

func newTestManager(t *testing.T) (*Manager, *countingStats) {
	t.Helper()
	stats := &countingStats{}
	m, err := NewManager(Config{BaseDir: t.TempDir(), Stats: stats})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, stats
}

func TestGetCreatesAndCaches(t *testing.T) {
	m, stats := newTestManager(t)
	ctx := context.Background()

	db1, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	db2, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if db1 != db2 {
		t.Error("expected the same handle on cache hit")
	}
	if got := stats.opened.Load(); got != 1 {
		t.Errorf("expected 1 open, got %d", got)
	}
	if got := stats.hits.Load(); got != 1 {
		t.Errorf("expected 1 cache hit, got %d", got)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 cached handle, got %d", m.Len())
	}
}

func TestConcurrentFirstRequestsShareOneCreation(t *testing.T) {
	m, stats := newTestManager(t)
	ctx := context.Background()

	const n = 20
	handles := make([]*sql.DB, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := m.Get(ctx, "lions_db")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			handles[i] = db
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("handle %d differs from handle 0", i)
		}
	}
	if got := stats.opened.Load(); got != 1 {
		t.Errorf("expected exactly 1 open for %d concurrent requests, got %d", n, got)
	}

	// One provisioning run: the baseline seed must appear exactly once.
	db, _ := m.Get(ctx, "lions_db")
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&count); err != nil {
		t.Fatalf("count positions: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 seeded positions, got %d", count)
	}
}

func TestDifferentTeamsGetDifferentDatabases(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	lions, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("Get lions: %v", err)
	}
	tigers, err := m.Get(ctx, "tigers_db")
	if err != nil {
		t.Fatalf("Get tigers: %v", err)
	}
	if lions == tigers {
		t.Fatal("expected distinct handles for distinct teams")
	}

	// Data written via one team's handle must not be visible via the other.
	if _, err := lions.Exec(
		`INSERT INTO players (name, position_id) VALUES (?, ?)`, "Zlatan", 4,
	); err != nil {
		t.Fatalf("insert player: %v", err)
	}
	var lionCount, tigerCount int
	if err := lions.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&lionCount); err != nil {
		t.Fatalf("count lions players: %v", err)
	}
	if err := tigers.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&tigerCount); err != nil {
		t.Fatalf("count tigers players: %v", err)
	}
	if lionCount != 1 || tigerCount != 0 {
		t.Errorf("isolation violated: lions=%d tigers=%d", lionCount, tigerCount)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	m, stats := newTestManager(t)
	ctx := context.Background()

	db, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := db.Ping(); err == nil {
		t.Error("expected cached handle to be closed after Close")
	}
	if _, err := m.Get(ctx, "lions_db"); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("expected ErrManagerClosed, got %v", err)
	}
	if _, err := m.Get(ctx, "new_team"); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("expected ErrManagerClosed for unseen team, got %v", err)
	}
	if got := stats.closed.Load(); got != 1 {
		t.Errorf("expected 1 closed handle, got %d", got)
	}

	// Second Close is a no-op.
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestBrokenHandleIsRecreated(t *testing.T) {
	m, stats := newTestManager(t)
	ctx := context.Background()

	db, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Simulate a handle gone bad behind the manager's back.
	_ = db.Close()

	fresh, err := m.Get(ctx, "lions_db")
	if err != nil {
		t.Fatalf("Get after breakage: %v", err)
	}
	if fresh == db {
		t.Error("expected a fresh handle after eviction")
	}
	if err := fresh.Ping(); err != nil {
		t.Errorf("fresh handle not usable: %v", err)
	}
	if got := stats.opened.Load(); got != 2 {
		t.Errorf("expected 2 opens (initial + recreate), got %d", got)
	}
}

func TestCanceledRequestDoesNotEvictSharedHandle(t *testing.T) {
	m, stats := newTestManager(t)

	db, err := m.Get(context.Background(), "lions_db")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Get(canceled, "lions_db"); err == nil {
		t.Fatal("expected an error for a canceled request")
	}

	// The canceled request fails alone; the shared handle stays cached,
	// open, and is handed out unchanged to the next caller.
	if got := stats.closed.Load(); got != 0 {
		t.Errorf("expected 0 closed handles, got %d", got)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 cached handle, got %d", m.Len())
	}
	if err := db.Ping(); err != nil {
		t.Errorf("shared handle unusable after canceled request: %v", err)
	}
	again, err := m.Get(context.Background(), "lions_db")
	if err != nil {
		t.Fatalf("Get after canceled request: %v", err)
	}
	if again != db {
		t.Error("expected the same handle after a canceled request")
	}
}

func TestConcurrentEvictionsCloseHandleOnce(t *testing.T) {
	m, stats := newTestManager(t)

	db, err := m.Get(context.Background(), "lions_db")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Several goroutines deciding the same handle is broken must close it
	// exactly once, or the open-handles gauge drifts negative.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.evict("lions_db", db)
		}()
	}
	wg.Wait()

	if got := stats.closed.Load(); got != 1 {
		t.Errorf("expected exactly 1 close, got %d", got)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty cache after eviction, got %d", m.Len())
	}
}

func TestGetRejectsInvalidDatabaseNames(t *testing.T) {
	m, stats := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{
		"",
		"../escape",
		"UPPER",
		"has space",
		"semi;colon",
		"-leading-hyphen",
	} {
		if _, err := m.Get(ctx, name); !errors.Is(err, ErrInvalidDatabaseName) {
			t.Errorf("Get(%q): expected ErrInvalidDatabaseName, got %v", name, err)
		}
	}
	if got := stats.opened.Load(); got != 0 {
		t.Errorf("invalid names must not open anything, got %d opens", got)
	}
}

func TestPathIsDeterministic(t *testing.T) {
	m, _ := newTestManager(t)
	if m.Path("lions_db") != m.Path("lions_db") {
		t.Error("Path must be deterministic")
	}
	if m.Path("lions_db") == m.Path("tigers_db") {
		t.Error("distinct names must map to distinct paths")
	}
}
