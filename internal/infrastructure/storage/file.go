package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/ports"
)

// FileStore keeps the seen set in memory and mirrors every change into a
// single JSON file. The file is the crash-recovery copy; while the process
// runs, the in-memory set is authoritative.
type FileStore struct {
	path     string
	maxBytes int64
	logger   *slog.Logger

	mu   sync.RWMutex
	keys map[domain.SeenKey]struct{}
}

var _ ports.SeenStore = (*FileStore)(nil)

// OpenFile loads the persisted set from path. A missing or undecodable file
// degrades to an empty set, never an error.
func OpenFile(path string, log *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	s := &FileStore{
		path:     path,
		maxBytes: MaxStateBytes,
		logger:   log,
		keys:     map[domain.SeenKey]struct{}{},
	}
	s.load()
	return s, nil
}

func (s *FileStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("read state file, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		s.warn("state file is not valid JSON, starting empty", "path", s.path, "error", err)
		return
	}

	for _, key := range keys {
		s.keys[domain.SeenKey(key)] = struct{}{}
	}
}

// Contains reports whether the key has already been recorded.
func (s *FileStore) Contains(key domain.SeenKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Record adds the key and rewrites the state file. When the previous save
// exceeds the size bound, the set is reset to just this key and the old file
// removed before writing. Persistence failures are logged and swallowed; the
// in-memory set stays authoritative for the rest of the run.
func (s *FileStore) Record(ctx context.Context, key domain.SeenKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, err := os.Stat(s.path); err == nil && info.Size() > s.maxBytes {
		s.warn("state file exceeds size bound, resetting seen set", "path", s.path, "bytes", info.Size())
		s.keys = map[domain.SeenKey]struct{}{}
		if err := os.Remove(s.path); err != nil {
			s.warn("remove oversized state file", "path", s.path, "error", err)
		}
	}

	s.keys[key] = struct{}{}

	if err := s.persist(); err != nil {
		s.warn("persist seen set", "path", s.path, "error", err)
	}
}

// Close implements Store; the file driver has nothing to release.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) persist() error {
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	raw, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (s *FileStore) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
