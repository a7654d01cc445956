// Package notify delivers push notifications through Pushbullet.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dayplan/internal/config"
	"dayplan/internal/log"
)

const (
	// DefaultBaseURL is the public Pushbullet API host.
	DefaultBaseURL = "https://api.pushbullet.com"

	// APITimeout is the timeout for one push.
	APITimeout = 15 * time.Second
)

// Pushbullet implements service.Notifier.
type Pushbullet struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewPushbullet creates a Pushbullet notifier. An empty baseURL selects
// DefaultBaseURL; a nil httpClient selects a client with APITimeout.
func NewPushbullet(baseURL, token string, httpClient *http.Client) *Pushbullet {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: APITimeout}
	}
	return &Pushbullet{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// FromConfig creates a Pushbullet notifier from run configuration.
func FromConfig(cfg *config.Config) *Pushbullet {
	return NewPushbullet(cfg.PushbulletBaseURL, cfg.PushbulletKey, nil)
}

type push struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// StatusError is a non-200 response from the pushes endpoint.
// ReadErr is set when the response body could not be read.
type StatusError struct {
	Code    int
	Body    string
	ReadErr error
}

func (e *StatusError) Error() string {
	if e.ReadErr != nil {
		return fmt.Sprintf("pushbullet: HTTP %d: read body: %v", e.Code, e.ReadErr)
	}
	return fmt.Sprintf("pushbullet: HTTP %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return e.ReadErr }

// Notify posts a note push. Only HTTP 200 counts as delivered.
//
// Expectations:
//   - POSTs {"type":"note","title":...,"body":...} to /v2/pushes
//   - Sends the API key in the Access-Token header
//   - Returns *StatusError for any status other than 200
func (p *Pushbullet) Notify(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(push{Type: "note", Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("pushbullet: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/pushes", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("pushbullet: create request: %w", err)
	}
	req.Header.Set("Access-Token", p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pushbullet: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(respBody), ReadErr: err}
	}

	log.Info().Str("title", title).Msg("pushbullet: notification sent")
	return nil
}
