package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const lineNotifyURL = "https://notify-api.line.me/api/notify"

// LineNotify sends messages through the LINE Notify push API.
type LineNotify struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewLineNotify creates a LINE Notify channel. An empty endpoint uses the
// public API.
func NewLineNotify(endpoint, token string) *LineNotify {
	if endpoint == "" {
		endpoint = lineNotifyURL
	}
	return &LineNotify{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Sender.
func (l *LineNotify) Name() string {
	return "line"
}

// Send implements Sender.
func (l *LineNotify) Send(message string) error {
	form := url.Values{}
	form.Set("message", message)

	req, err := http.NewRequest(http.MethodPost, l.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send line message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("line returned HTTP %d", resp.StatusCode)
	}
	return nil
}
