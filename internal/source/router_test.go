package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"KeywordWatcher/internal/domain"
)

type stubClient struct {
	name  string
	items []domain.Item
	err   error

	gotRequest Request
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Fetch(_ context.Context, req Request) ([]domain.Item, error) {
	s.gotRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&stubClient{name: "reddit"})

	if _, err := reg.Resolve("reddit"); err != nil {
		t.Fatalf("Resolve registered client: %v", err)
	}
	if _, err := reg.Resolve("usenet"); err == nil {
		t.Fatalf("expected error for unregistered client")
	}
}

func TestRouterFetchRecentRoutesBySource(t *testing.T) {
	t.Parallel()

	reddit := &stubClient{name: "reddit", items: []domain.Item{{ID: "r1"}}}
	hn := &stubClient{name: "hackernews", items: []domain.Item{{ID: "h1"}}}

	reg := NewRegistry()
	reg.Register(reddit)
	reg.Register(hn)

	router := NewRouter(reg, map[string]string{"frontpage": "hackernews"}, nil)

	items, err := router.FetchRecent(context.Background(), "frontpage", 10)
	if err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "h1" {
		t.Fatalf("expected hackernews items, got %+v", items)
	}
	if hn.gotRequest.Source != "frontpage" || hn.gotRequest.Limit != 10 {
		t.Fatalf("unexpected request: %+v", hn.gotRequest)
	}
}

func TestRouterFetchRecentDefaultsToReddit(t *testing.T) {
	t.Parallel()

	reddit := &stubClient{name: "reddit", items: []domain.Item{{ID: "r1"}}}

	reg := NewRegistry()
	reg.Register(reddit)

	router := NewRouter(reg, nil, nil)

	items, err := router.FetchRecent(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "r1" {
		t.Fatalf("expected reddit items, got %+v", items)
	}
	if reddit.gotRequest.Source != "golang" {
		t.Fatalf("unexpected request source: %s", reddit.gotRequest.Source)
	}
}

func TestRouterFetchRecentWrapsFailures(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("listing request failed: status 503")
	reg := NewRegistry()
	reg.Register(&stubClient{name: "reddit", err: cause})

	router := NewRouter(reg, nil, nil)

	_, err := router.FetchRecent(context.Background(), "golang", 5)
	if err == nil {
		t.Fatalf("expected error")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.Source != "golang" {
		t.Fatalf("unexpected source: %s", fetchErr.Source)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestRouterFetchRecentUnknownClient(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewRegistry(), map[string]string{"golang": "usenet"}, nil)

	_, err := router.FetchRecent(context.Background(), "golang", 5)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Source != "golang" {
		t.Fatalf("unexpected source: %s", fetchErr.Source)
	}
}
