package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/ports"
)

// SQLiteStore keeps the seen set in memory and mirrors every change into an
// embedded SQLite database. Failure semantics match the file driver: the
// in-memory set is authoritative while the process runs.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	maxBytes int64
	logger   *slog.Logger

	mu   sync.RWMutex
	keys map[domain.SeenKey]struct{}
}

var _ ports.SeenStore = (*SQLiteStore)(nil)

// OpenSQLite opens the database at path, creating it and its schema when
// absent, and loads the persisted set. A corrupt database file is replaced
// with a fresh one and the set starts empty, never an error to the caller.
func OpenSQLite(path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	s := &SQLiteStore{
		path:     path,
		maxBytes: MaxStateBytes,
		logger:   log,
		keys:     map[domain.SeenKey]struct{}{},
	}

	db, err := openDatabase(path)
	if err != nil {
		s.warn("state database is unreadable, starting empty", "path", path, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("remove corrupt database: %w", rmErr)
		}
		db, err = openDatabase(path)
		if err != nil {
			return nil, err
		}
	}

	s.db = db
	s.load()
	return s, nil
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS seen_keys (key TEXT PRIMARY KEY)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create seen_keys table: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) load() {
	query, args, err := sq.Select("key").From("seen_keys").ToSql()
	if err != nil {
		s.warn("build load query", "error", err)
		return
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.warn("load seen set, starting empty", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			s.warn("scan seen key", "error", err)
			return
		}
		s.keys[domain.SeenKey(key)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		s.warn("iterate seen keys", "error", err)
	}
}

// Contains reports whether the key has already been recorded.
func (s *SQLiteStore) Contains(key domain.SeenKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Record adds the key and inserts it into the database. When the database
// file exceeds the size bound, all rows are deleted and the in-memory set is
// reset to just this key. Persistence failures are logged and swallowed; the
// in-memory set stays authoritative for the rest of the run.
func (s *SQLiteStore) Record(ctx context.Context, key domain.SeenKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, err := os.Stat(s.path); err == nil && info.Size() > s.maxBytes {
		s.warn("database exceeds size bound, resetting seen set", "path", s.path, "bytes", info.Size())
		s.keys = map[domain.SeenKey]struct{}{}
		if err := s.reset(ctx); err != nil {
			s.warn("reset seen set", "error", err)
		}
	}

	s.keys[key] = struct{}{}

	query, args, err := sq.Insert("seen_keys").Columns("key").Values(string(key)).
		Suffix("ON CONFLICT(key) DO NOTHING").ToSql()
	if err != nil {
		s.warn("build insert", "error", err)
		return
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.warn("persist seen key", "key", string(key), "error", err)
	}
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) reset(ctx context.Context) error {
	query, args, err := sq.Delete("seen_keys").ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete seen keys: %w", err)
	}
	// Deleted pages stay in the file until vacuumed.
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func (s *SQLiteStore) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
