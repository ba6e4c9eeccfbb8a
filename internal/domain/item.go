package domain

import "strings"

// Item is a single unit of content fetched from a source, immutable once built.
type Item struct {
	ID        string
	Title     string
	Score     int
	URL       string
	Permalink string
}

// WatchSpec is the filter configuration bound to one source.
// Keywords are expected in lower case (config normalizes them on load);
// a nil MinScore means no score threshold.
type WatchSpec struct {
	Source   string
	Keywords []string
	MinScore *int
}

// Matches reports whether the item satisfies the watch criteria: every
// keyword must appear as a substring of the lower-cased title (AND, not OR),
// and the score must reach MinScore when one is set (inclusive).
// An empty keyword set matches every title.
func (w WatchSpec) Matches(item Item) bool {
	title := strings.ToLower(item.Title)
	for _, keyword := range w.Keywords {
		if !strings.Contains(title, keyword) {
			return false
		}
	}
	if w.MinScore != nil && item.Score < *w.MinScore {
		return false
	}
	return true
}

// SeenKey identifies an already-notified item across sources.
type SeenKey string

// NewSeenKey combines the source name with the item identifier so the same
// item id on two sources never collides.
func NewSeenKey(source, itemID string) SeenKey {
	return SeenKey(source + "-" + itemID)
}
