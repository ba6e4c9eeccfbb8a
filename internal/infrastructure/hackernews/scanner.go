package hackernews

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/source"
)

const hnBaseURL = "https://news.ycombinator.com"

// Scanner scrapes the Hacker News newest-stories page. The listing markup is
// stable: each story is a tr.athing row whose following row carries the score.
type Scanner struct {
	client  *http.Client
	baseURL string
}

var _ source.Client = (*Scanner)(nil)

// NewScanner wires an HTTP client; a nil client gets a default timeout.
func NewScanner(client *http.Client) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scanner{client: client, baseURL: hnBaseURL}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "hackernews"
}

// Fetch scrapes the newest page and returns up to req.Limit items in page
// order (newest first).
func (s *Scanner) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	doc, err := s.fetchDocument(ctx, s.baseURL+"/newest")
	if err != nil {
		return nil, err
	}

	items := s.extractItems(doc)
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}
	return items, nil
}

func (s *Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "KeywordWatcher/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hacker news returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *Scanner) extractItems(doc *goquery.Document) []domain.Item {
	var items []domain.Item

	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		id, ok := row.Attr("id")
		if !ok || id == "" {
			return
		}

		link := row.Find(".titleline a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		href, _ := link.Attr("href")

		items = append(items, domain.Item{
			ID:        id,
			Title:     title,
			Score:     parseScore(row.Next()),
			URL:       absoluteURL(href),
			Permalink: hnBaseURL + "/item?id=" + id,
		})
	})

	return items
}

// parseScore reads "N points" from the subtext row that follows an athing
// row. Jobs and ads carry no score span and map to 0.
func parseScore(subtext *goquery.Selection) int {
	text := strings.TrimSpace(subtext.Find(".score").First().Text())
	if text == "" {
		return 0
	}

	fields := strings.Fields(text)
	score, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return score
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return hnBaseURL + href
}
