// Package teamdb owns the lifecycle of per-team SQLite databases: one
// database file per team, opened lazily on first use, provisioned with
// the team schema, and shared by every request for that team until the
// process shuts down.
package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sync/singleflight"

	_ "modernc.org/sqlite"
)

var (
	// ErrManagerClosed is returned by Get after Close has been called.
	ErrManagerClosed = errors.New("team database manager is closed")
	// ErrInvalidDatabaseName is returned for names that could escape the
	// base directory or were never valid slugs to begin with.
	ErrInvalidDatabaseName = errors.New("invalid team database name")
)

// databaseNameRegex matches the slugs the registry assigns at team
// creation. Anything else is rejected before touching the filesystem.
var databaseNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// StatsRecorder receives connection cache activity. Implementations must
// be safe for concurrent use.
type StatsRecorder interface {
	CacheHit()
	CacheMiss()
	HandleOpened()
	HandleClosed()
}

// Config holds manager configuration.
type Config struct {
	// BaseDir is the directory holding all team database files.
	BaseDir string
	// Stats is optional; nil disables recording.
	Stats StatsRecorder
}

// Manager is the process-wide cache of open team database handles.
// There is at most one live handle per team database; handles are owned
// by the manager and must never be closed by request-scoped code.
type Manager struct {
	baseDir string
	stats   StatsRecorder

	mu     sync.Mutex
	conns  map[string]*sql.DB
	closed bool

	// group coalesces concurrent creation for the same database name so
	// that first requests for different teams do not serialize on one lock.
	group singleflight.Group
}

// NewManager creates a manager rooted at cfg.BaseDir, creating the
// directory if needed.
func NewManager(cfg Config) (*Manager, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create team db dir: %w", err)
	}
	return &Manager{
		baseDir: cfg.BaseDir,
		stats:   cfg.Stats,
		conns:   make(map[string]*sql.DB),
	}, nil
}

// Path returns the database file location for a team database name.
// The mapping is deterministic: one name, one file.
func (m *Manager) Path(databaseName string) string {
	return filepath.Join(m.baseDir, databaseName+".db")
}

// Get returns the open handle for the named team database, creating and
// provisioning the database on first use. Concurrent callers for the same
// unseen name share a single creation; the winner's handle is cached and
// returned to everyone.
func (m *Manager) Get(ctx context.Context, databaseName string) (*sql.DB, error) {
	if !databaseNameRegex.MatchString(databaseName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDatabaseName, databaseName)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	db, ok := m.conns[databaseName]
	m.mu.Unlock()

	if ok {
		err := db.PingContext(ctx)
		if err == nil {
			m.recordHit()
			return db, nil
		}
		// A canceled or expired request makes the ping fail without saying
		// anything about the handle. Fail this request only; the shared
		// handle stays cached for everyone else.
		if ctx.Err() != nil {
			return nil, err
		}
		// Broken handle: evict it so the slow path recreates from scratch.
		m.evict(databaseName, db)
	}

	m.recordMiss()
	v, err, _ := m.group.Do(databaseName, func() (any, error) {
		return m.create(ctx, databaseName)
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// create runs on the creation slow path, at most once per in-flight name.
func (m *Manager) create(ctx context.Context, databaseName string) (*sql.DB, error) {
	// Re-check under the lock: a caller that lost the race to an earlier
	// flight finds the cached handle here instead of reopening.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if db, ok := m.conns[databaseName]; ok {
		m.mu.Unlock()
		return db, nil
	}
	m.mu.Unlock()

	db, err := m.open(ctx, databaseName)
	if err != nil {
		return nil, fmt.Errorf("open team database %s: %w", databaseName, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("provision team database %s: %w", databaseName, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = db.Close()
		return nil, ErrManagerClosed
	}
	m.conns[databaseName] = db
	m.mu.Unlock()

	m.recordOpened()
	return db, nil
}

// open opens the SQLite file, creating it if absent. Command execution is
// serialized per handle via MaxOpenConns(1); with WAL and a busy timeout
// this keeps one team's writes from tripping over each other.
func (m *Manager) open(ctx context.Context, databaseName string) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_time_format=sqlite&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		m.Path(databaseName),
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// evict removes a broken handle from the cache and closes it. If the
// cache already holds a different (newer) handle for the name, or another
// caller evicted first, the handle was closed elsewhere and nothing
// happens here.
func (m *Manager) evict(databaseName string, old *sql.DB) {
	m.mu.Lock()
	cur, ok := m.conns[databaseName]
	if ok && cur == old {
		delete(m.conns, databaseName)
	}
	m.mu.Unlock()

	if ok && cur == old {
		_ = old.Close()
		m.recordClosed()
	}
}

// Len reports how many handles are currently cached.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// Close closes every cached handle and marks the manager disposed.
// Close failures are accumulated, not fatal to the remaining handles.
// After Close, Get fails with ErrManagerClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conns := m.conns
	m.conns = nil
	m.mu.Unlock()

	var errs []error
	for name, db := range conns {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
		m.recordClosed()
	}
	return errors.Join(errs...)
}

func (m *Manager) recordHit() {
	if m.stats != nil {
		m.stats.CacheHit()
	}
}

func (m *Manager) recordMiss() {
	if m.stats != nil {
		m.stats.CacheMiss()
	}
}

func (m *Manager) recordOpened() {
	if m.stats != nil {
		m.stats.HandleOpened()
	}
}

func (m *Manager) recordClosed() {
	if m.stats != nil {
		m.stats.HandleClosed()
	}
}
