package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"KeywordWatcher/internal/ports"
)

const defaultAPIBase = "https://api.pushover.net"

// Notifier delivers watch notifications through the Pushover message API.
// Pushover enforces per-application quotas, so dispatches queue behind a
// limiter instead of failing.
type Notifier struct {
	appToken string
	userKey  string
	apiBase  string
	client   *http.Client
	limiter  *rate.Limiter
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the application token and user key.
func NewNotifier(appToken, userKey string) *Notifier {
	return &Notifier{
		appToken: appToken,
		userKey:  userKey,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// Notify sends a match notification.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	return n.send(ctx, message, 0)
}

// NotifyError sends an operational failure at high priority.
func (n *Notifier) NotifyError(ctx context.Context, message string) error {
	return n.send(ctx, message, 1)
}

func (n *Notifier) send(ctx context.Context, message string, priority int) error {
	if n.appToken == "" || n.userKey == "" || n.client == nil {
		return fmt.Errorf("pushover notifier misconfigured")
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("token", n.appToken)
	form.Set("user", n.userKey)
	form.Set("message", message)
	if priority != 0 {
		form.Set("priority", strconv.Itoa(priority))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiBase+"/1/messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}

	return nil
}
