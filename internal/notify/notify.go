// Package notify delivers reminder notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Notifier sends a single notification. Implementations report failure per
// request; callers decide whether to retry or move on.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Terminal writes notifications to a writer. Used when no push service is
// configured.
type Terminal struct {
	Out io.Writer
}

// NewTerminal returns a Terminal notifier writing to stdout.
func NewTerminal() *Terminal {
	return &Terminal{Out: os.Stdout}
}

func (t *Terminal) Notify(_ context.Context, title, body string) error {
	_, err := fmt.Fprintf(t.Out, "[%s] %s: %s\n", time.Now().Format("15:04"), title, body)
	return err
}

// pushoverEndpoint is the Pushover message API.
const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// Pushover sends notifications through the Pushover push service.
type Pushover struct {
	Token string
	User  string

	client   *http.Client
	endpoint string
}

// NewPushover creates a Pushover notifier with the given app token and user
// key.
func NewPushover(token, user string) *Pushover {
	return &Pushover{
		Token:    token,
		User:     user,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: pushoverEndpoint,
	}
}

func (p *Pushover) Notify(ctx context.Context, title, body string) error {
	form := url.Values{}
	form.Set("token", p.Token)
	form.Set("user", p.User)
	form.Set("title", title)
	form.Set("message", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pushover notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
