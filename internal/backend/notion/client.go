// Package notion implements service.TaskSource over the Notion database query API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dayplan/internal/config"
	"dayplan/internal/log"
	"dayplan/internal/service"
)

const (
	// DefaultBaseURL is the public Notion API host.
	DefaultBaseURL = "https://api.notion.com"

	// DefaultVersion is the Notion-Version header value.
	DefaultVersion = "2022-06-28"

	// PageSize is the default and largest number of records per page.
	PageSize = 100

	// MaxPages bounds the pagination loop.
	MaxPages = 50

	// APITimeout is the default timeout for a single page request.
	APITimeout = 30 * time.Second
)

// Options configures a Client. Zero values select the defaults above.
type Options struct {
	BaseURL    string
	Token      string
	Version    string
	DatabaseID string
	Schema     Schema
	PageSize   int
	MaxPages   int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements service.TaskSource for one Notion database.
type Client struct {
	baseURL    string
	token      string
	version    string
	databaseID string
	schema     Schema
	pageSize   int
	maxPages   int
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a Client. DatabaseID must be non-empty.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.DatabaseID) == "" {
		return nil, errors.New("notion: database id is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		version:    opts.Version,
		databaseID: opts.DatabaseID,
		schema:     opts.Schema,
		pageSize:   opts.PageSize,
		maxPages:   opts.MaxPages,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.pageSize <= 0 || c.pageSize > PageSize {
		c.pageSize = PageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = MaxPages
	}
	if c.timeout <= 0 {
		c.timeout = APITimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c, nil
}

// FromConfig creates a Client from run configuration.
func FromConfig(cfg *config.Config) (*Client, error) {
	return New(Options{
		BaseURL:    cfg.NotionBaseURL,
		Token:      cfg.NotionToken,
		Version:    cfg.NotionVersion,
		DatabaseID: cfg.DatabaseID,
		Schema: Schema{
			Title:       cfg.TitleProperty,
			Description: cfg.DescProperty,
			Status:      cfg.StatusProperty,
			Deadline:    cfg.DeadlineProperty,
		},
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
		Timeout:  cfg.RequestTimeout,
	})
}

type queryRequest struct {
	PageSize    int    `json:"page_size"`
	Filter      any    `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

// buildFilter translates f into the Notion compound filter shape.
func buildFilter(f *service.Filter, schema Schema) any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"and": []any{
			map[string]any{
				"property": schema.Status,
				"checkbox": map[string]any{"equals": f.Done},
			},
			map[string]any{
				"property": schema.Deadline,
				"date":     map[string]any{"equals": f.Date},
			},
		},
	}
}

// QueryTasks implements service.TaskSource.
func (c *Client) QueryTasks(ctx context.Context, filter *service.Filter) ([]service.Task, error) {
	pages, err := c.Query(ctx, filter)
	return Tasks(pages, c.schema), err
}

// Query returns every page of the database matching filter, following
// start_cursor/next_cursor until has_more is false.
//
// Expectations:
//   - Sends page_size on every request and filter only when non-nil
//   - Sends the previous response's next_cursor as start_cursor
//   - Concatenates results in server order
//   - On a failed page returns the pages accumulated so far and an error wrapping service.ErrPartial
//   - Stops with service.ErrPartial after maxPages requests
//   - Stops without error when has_more is true but next_cursor is empty
func (c *Client) Query(ctx context.Context, filter *service.Filter) ([]Page, error) {
	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	req := queryRequest{
		PageSize: c.pageSize,
		Filter:   buildFilter(filter, c.schema),
	}

	var pages []Page
	for n := 1; ; n++ {
		if n > c.maxPages {
			log.Warn().Int("max_pages", c.maxPages).Int("total", len(pages)).Msg("notion: page limit reached")
			return pages, fmt.Errorf("notion: stopped after %d pages: %w", c.maxPages, service.ErrPartial)
		}

		resp, err := c.queryPage(ctx, url, n, req)
		if err != nil {
			log.Error().Err(err).Int("page", n).Int("total", len(pages)).Msg("notion: query failed")
			return pages, fmt.Errorf("%w: %w", service.ErrPartial, err)
		}
		for _, raw := range resp.Results {
			var p Page
			if err := json.Unmarshal(raw, &p); err != nil {
				log.Warn().Err(err).Int("page", n).Msg("notion: malformed result")
				p = Page{}
			}
			pages = append(pages, p)
		}

		if !resp.HasMore {
			break
		}
		if resp.NextCursor == nil || *resp.NextCursor == "" {
			log.Warn().Int("page", n).Msg("notion: has_more without next_cursor")
			break
		}
		req.StartCursor = *resp.NextCursor
	}

	log.Info().Int("total", len(pages)).Msg("notion: tasks found")
	return pages, nil
}

func (c *Client) queryPage(ctx context.Context, url string, n int, payload queryRequest) (*queryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notion: marshal request: %w", err)
	}
	log.Info().Int("page", n).RawJSON("payload", body).Msg("notion: querying")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notion: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notion: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var qr queryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("notion: unmarshal response: %w", err)
	}
	return &qr, nil
}

// StatusError is a non-success HTTP response from the query endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notion: HTTP %d: %s", e.Code, e.Body)
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("notion: request timed out")
	}
	return fmt.Errorf("notion: http request: %w", err)
}
