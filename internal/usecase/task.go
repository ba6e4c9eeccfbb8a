package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/ports"
)

// fetchLimit is how many of the newest items one pass examines per source.
const fetchLimit = 10

// WatchTask runs one full pass for a single WatchSpec: fetch the newest
// items, drop the already seen, match the rest, notify.
type WatchTask struct {
	spec     domain.WatchSpec
	source   ports.SourceClient
	store    ports.SeenStore
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewWatchTask binds a WatchSpec to the collaborators one pass needs.
func NewWatchTask(spec domain.WatchSpec, src ports.SourceClient, store ports.SeenStore, notifier ports.Notifier, log *slog.Logger) *WatchTask {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &WatchTask{
		spec:     spec,
		source:   src,
		store:    store,
		notifier: notifier,
		logger:   log,
	}
}

// Source names the watched source.
func (t *WatchTask) Source() string { return t.spec.Source }

// Run executes one pass. A failed fetch aborts the pass and is returned to
// the caller; per-item problems (notify failures) are logged and never stop
// the remaining items.
func (t *WatchTask) Run(ctx context.Context) error {
	t.logger.Info("searching source for keywords", "source", t.spec.Source)

	items, err := t.source.FetchRecent(ctx, t.spec.Source, fetchLimit)
	if err != nil {
		return err
	}

	matches := 0
	for _, item := range items {
		key := domain.NewSeenKey(t.spec.Source, item.ID)
		if t.store.Contains(key) {
			t.logger.Debug("skipping already seen item", "source", t.spec.Source, "title", item.Title)
			continue
		}

		if !t.spec.Matches(item) {
			continue
		}

		t.logger.Info("match found", "source", t.spec.Source, "title", item.Title, "score", item.Score)

		if err := t.notifier.Notify(ctx, formatMatch(t.spec.Source, item)); err != nil {
			t.logger.Error("notify match", "source", t.spec.Source, "title", item.Title, "error", err)
		}

		// The attempt gates dedup: the next cycle must not re-notify the
		// same item even when this delivery failed.
		t.store.Record(ctx, key)
		matches++
	}

	t.logger.Info("finished searching source", "source", t.spec.Source, "items", len(items), "matches", matches)
	return nil
}

func formatMatch(source string, item domain.Item) string {
	return fmt.Sprintf("Match found in '%s':\nTitle: %s\nURL: %s\nScore: %d\nPermalink: %s",
		source, item.Title, item.URL, item.Score, item.Permalink)
}
