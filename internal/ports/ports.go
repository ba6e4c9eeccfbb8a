package ports

import (
	"context"
	"time"

	"KeywordWatcher/internal/domain"
)

// SourceClient fetches the most recent items for a named source.
// Implementations return a *source.FetchError describing the source and cause
// on network, auth, or rate-limit problems.
type SourceClient interface {
	FetchRecent(ctx context.Context, source string, limit int) ([]domain.Item, error)
}

// Notifier delivers operator messages. Both channels are best-effort: callers
// log a returned error and move on, implementations never retry.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyError(ctx context.Context, message string) error
}

// SeenStore is the durable record of item keys already notified.
// Contains is safe for concurrent readers. Record adds the key and persists
// the full set synchronously; persistence failures are logged inside the
// store and swallowed, leaving the in-memory set authoritative for the rest
// of the process run.
type SeenStore interface {
	Contains(key domain.SeenKey) bool
	Record(ctx context.Context, key domain.SeenKey)
}

// Scheduler controls when watch cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
