package source

import (
	"context"
	"fmt"

	"KeywordWatcher/internal/domain"
)

// Request carries all parameters required to execute a fetch.
type Request struct {
	Source string
	Limit  int
}

// Client captures a single source implementation (Reddit, Hacker News, etc.).
type Client interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry keeps a mapping from client names to their implementations.
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: map[string]Client{}}
}

// Register adds or replaces a client implementation.
func (r *Registry) Register(client Client) {
	if r.clients == nil {
		r.clients = map[string]Client{}
	}
	r.clients[client.Name()] = client
}

// Resolve returns a client by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Client, error) {
	if client, ok := r.clients[name]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("source client %s is not registered", name)
}

// FetchError attributes a failed fetch to the source it was issued for, so
// callers can report the failure without parsing message text.
type FetchError struct {
	Source string
	Err    error
}

// Error describes the failed fetch with its source name.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }
