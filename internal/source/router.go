package source

import (
	"context"
	"fmt"
	"log/slog"

	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/ports"
)

// DefaultClient handles watches that do not name a client explicitly.
const DefaultClient = "reddit"

// Router implements SourceClient by resolving each source name to its
// configured client strategy.
type Router struct {
	registry *Registry
	routes   map[string]string
	logger   *slog.Logger
}

var _ ports.SourceClient = (*Router)(nil)

// NewRouter wires the client registry with config-defined routes from source
// names to client names.
func NewRouter(reg *Registry, routes map[string]string, log *slog.Logger) *Router {
	return &Router{
		registry: reg,
		routes:   routes,
		logger:   log,
	}
}

// FetchRecent resolves the client responsible for the source and fetches its
// newest items. Every failure comes back as a *FetchError naming the source.
func (r *Router) FetchRecent(ctx context.Context, src string, limit int) ([]domain.Item, error) {
	if r.registry == nil {
		return nil, &FetchError{Source: src, Err: fmt.Errorf("client registry is not configured")}
	}

	name := r.routes[src]
	if name == "" {
		name = DefaultClient
	}

	r.debug("fetch recent", "source", src, "client", name, "limit", limit)

	client, err := r.registry.Resolve(name)
	if err != nil {
		return nil, &FetchError{Source: src, Err: err}
	}

	items, err := client.Fetch(ctx, Request{Source: src, Limit: limit})
	if err != nil {
		return nil, &FetchError{Source: src, Err: err}
	}

	r.debug("client produced items", "source", src, "count", len(items))
	return items, nil
}

func (r *Router) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
