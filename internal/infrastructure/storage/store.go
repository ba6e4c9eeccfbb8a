package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"KeywordWatcher/internal/config"
	"KeywordWatcher/internal/ports"
)

// MaxStateBytes is the on-disk size past which the persisted seen set is
// hard-reset instead of pruned.
const MaxStateBytes = 5 << 20

// Store is a SeenStore whose resources can be released on shutdown.
type Store interface {
	ports.SeenStore
	Close() error
}

// Open initializes the configured seen-set store.
func Open(cfg config.StorageConfig, log *slog.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return OpenFile(cfg.Path, log)
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg.Path, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
