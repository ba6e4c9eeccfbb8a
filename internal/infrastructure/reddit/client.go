package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"KeywordWatcher/internal/config"
	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/source"
)

const (
	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
	grantTokenURL = "https://www.reddit.com/api/v1/access_token"
	permalinkHost = "https://www.reddit.com"
)

// Client fetches subreddit listings from the Reddit JSON API. With script-app
// credentials configured it authenticates through the OAuth password grant and
// reads the oauth host; without them it reads the public JSON endpoints.
type Client struct {
	userAgent    string
	clientID     string
	clientSecret string
	username     string
	password     string

	baseURL    string
	oauthURL   string
	tokenURL   string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ source.Client = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.RedditConfig) *Client {
	return &Client{
		userAgent:    cfg.UserAgent,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		username:     cfg.Username,
		password:     cfg.Password,
		baseURL:      publicBaseURL,
		oauthURL:     oauthBaseURL,
		tokenURL:     grantTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name implements source.Client.
func (c *Client) Name() string { return "reddit" }

// Fetch returns the newest submissions of the subreddit named by the request,
// in the order Reddit serves them (newest first).
func (c *Client) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	base := c.baseURL
	token := ""
	if c.authConfigured() {
		tok, err := c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		token = tok
		base = c.oauthURL
	}

	endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d", base, url.PathEscape(req.Source), req.Limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new listing request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing status %s", resp.Status)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]domain.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		items = append(items, domain.Item{
			ID:        child.Data.ID,
			Title:     child.Data.Title,
			Score:     child.Data.Score,
			URL:       child.Data.URL,
			Permalink: absolutePermalink(child.Data.Permalink),
		})
	}
	return items, nil
}

func (c *Client) authConfigured() bool {
	return c.clientID != "" && c.clientSecret != "" && c.username != "" && c.password != ""
}

// ensureToken returns a valid bearer token, requesting a new one when the
// cached token is missing or close to expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token status %s", resp.Status)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).Add(-time.Minute)
	return c.token, nil
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				Score     int    `json:"score"`
				URL       string `json:"url"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func absolutePermalink(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return permalinkHost + path
}
