package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"KeywordWatcher/internal/config"
	"KeywordWatcher/internal/domain"
)

func TestSQLiteStoreRecordAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.db")

	store, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}

	ctx := context.Background()
	key := domain.NewSeenKey("golang", "abc1")

	if store.Contains(key) {
		t.Fatalf("fresh store should not contain %s", key)
	}

	store.Record(ctx, key)
	if !store.Contains(key) {
		t.Fatalf("recorded key not found")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reloaded, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = reloaded.Close() }()

	if !reloaded.Contains(key) {
		t.Fatalf("key should survive a reopen")
	}
}

func TestSQLiteStoreCorruptStateStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.db")
	if err := os.WriteFile(path, []byte("not a database"), 0o644); err != nil {
		t.Fatalf("seed corrupt state: %v", err)
	}

	store, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	if store.Contains(domain.SeenKey("golang-abc1")) {
		t.Fatalf("corrupt state should degrade to an empty set")
	}

	store.Record(context.Background(), domain.SeenKey("golang-abc1"))
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reloaded, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = reloaded.Close() }()

	if !reloaded.Contains(domain.SeenKey("golang-abc1")) {
		t.Fatalf("recording over corrupt state should produce a readable database")
	}
}

func TestSQLiteStoreRecordIsIdempotent(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "seen.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	key := domain.NewSeenKey("golang", "abc1")
	store.Record(ctx, key)
	store.Record(ctx, key)

	if !store.Contains(key) {
		t.Fatalf("recorded key not found")
	}
}

func TestSQLiteStoreSizeBoundResets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.db")

	store, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	store.maxBytes = 1

	ctx := context.Background()
	first := domain.SeenKey("golang-first")
	second := domain.SeenKey("golang-second")

	store.Record(ctx, first)
	store.Record(ctx, second)

	if store.Contains(first) {
		t.Fatalf("reset should drop previously seen keys")
	}
	if !store.Contains(second) {
		t.Fatalf("the key that triggered the reset must be kept")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reloaded, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = reloaded.Close() }()

	if reloaded.Contains(first) {
		t.Fatalf("dropped key should not survive a reopen")
	}
	if !reloaded.Contains(second) {
		t.Fatalf("kept key should survive a reopen")
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	fromDefault, err := Open(config.StorageConfig{Path: filepath.Join(dir, "default.json")}, nil)
	if err != nil {
		t.Fatalf("Open default driver: %v", err)
	}
	if _, ok := fromDefault.(*FileStore); !ok {
		t.Fatalf("expected *FileStore for empty driver, got %T", fromDefault)
	}

	fromSQLite, err := Open(config.StorageConfig{Driver: "sqlite", Path: filepath.Join(dir, "seen.db")}, nil)
	if err != nil {
		t.Fatalf("Open sqlite driver: %v", err)
	}
	if _, ok := fromSQLite.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", fromSQLite)
	}
	_ = fromSQLite.Close()

	if _, err := Open(config.StorageConfig{Driver: "redis", Path: "x"}, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
